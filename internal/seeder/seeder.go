// Package seeder bootstraps the project roster from a static repository
// list. Deployments that track a fixed set of repositories use it instead of
// waiting for GitHub App installation webhooks.
package seeder

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/typetrace/typetrace/internal/data"
	"github.com/typetrace/typetrace/internal/service"
)

// SeedProjects registers every listed "owner/name" repository, reusing the
// installation intake path so language detection, tracking eligibility and
// the initial clone all behave exactly as they do for a webhook. Seeding is
// skipped when the roster already has projects.
func SeedProjects(ctx context.Context, projects data.ProjectStore, intake *service.Intake,
	fullNames []string, log *zap.SugaredLogger) error {

	count, err := projects.CountProjects()
	if err != nil {
		return fmt.Errorf("count projects: %w", err)
	}
	if count > 0 {
		log.Infow("roster not empty, seeding skipped", "projects", count)
		return nil
	}

	added := make([]service.InstalledRepo, 0, len(fullNames))
	for _, fullName := range fullNames {
		added = append(added, service.InstalledRepo{FullName: fullName})
	}

	log.Infow("seeding project roster", "repositories", len(added))
	return intake.HandleInstallation(ctx, "seed", added, nil)
}
