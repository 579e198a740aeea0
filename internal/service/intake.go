package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/typetrace/typetrace/internal/classify"
	"github.com/typetrace/typetrace/internal/data"
	"github.com/typetrace/typetrace/internal/queue"
)

// PushCommit is one commit from a push event.
type PushCommit struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// PushEvent is the subset of a push webhook the intake needs.
type PushEvent struct {
	Owner   string       `json:"owner"`
	Repo    string       `json:"repo"`
	Commits []PushCommit `json:"commits"`
}

// InstalledRepo is one repository of an installation event.
type InstalledRepo struct {
	FullName string `json:"full_name"`
	Private  bool   `json:"private"`
}

// Intake turns webhook events into projects, commit stubs and queued jobs.
type Intake struct {
	stores Stores
	gh     GitHub
	repos  GitRepo
	queue  Enqueuer
	clock  func() time.Time
	log    *zap.SugaredLogger
}

func NewIntake(stores Stores, gh GitHub, repos GitRepo, q Enqueuer, log *zap.SugaredLogger) *Intake {
	return &Intake{
		stores: stores,
		gh:     gh,
		repos:  repos,
		queue:  q,
		clock:  time.Now,
		log:    log,
	}
}

// HandlePush records one commit stub per pushed commit and enqueues an
// evaluation for each. Pushes to untracked or removed projects are ignored.
func (i *Intake) HandlePush(ctx context.Context, ev PushEvent) error {
	project, err := i.stores.Projects.GetProjectByOwnerName(ev.Owner, ev.Repo)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("look up project %s/%s: %w", ev.Owner, ev.Repo, err)
	}
	if !project.TrackChanges || project.RemovedAt != nil {
		return nil
	}

	if _, err := i.queue.Enqueue(ctx, JobFetchProject, FetchPayload{ProjectID: project.ID}); err != nil {
		return fmt.Errorf("enqueue fetch of %s/%s: %w", ev.Owner, ev.Repo, err)
	}

	for _, pushed := range ev.Commits {
		commit, _, err := i.stores.Commits.GetOrCreateCommit(&data.Commit{
			ProjectID: project.ID,
			Hash:      pushed.ID,
			Message:   pushed.Message,
		})
		if err != nil {
			i.log.Errorw("commit stub insert failed", "commit", pushed.ID, "error", err)
			continue
		}
		if _, err := i.queue.Enqueue(ctx, JobEvaluateCommit, EvaluatePayload{CommitID: commit.ID}); err != nil {
			i.log.Errorw("evaluation enqueue failed", "commit", pushed.ID, "error", err)
		}
	}
	return nil
}

// HandleInstallation creates or reactivates projects for added repositories
// and soft-removes projects for removed ones.
func (i *Intake) HandleInstallation(ctx context.Context, installationID string, added, removed []InstalledRepo) error {
	for _, repo := range added {
		if repo.Private {
			continue
		}
		owner, name, ok := splitFullName(repo.FullName)
		if !ok {
			i.log.Warnw("malformed repository name in installation event", "full_name", repo.FullName)
			continue
		}
		if err := i.installProject(ctx, owner, name, installationID); err != nil {
			i.log.Errorw("project install failed", "repo", repo.FullName, "error", err)
		}
	}

	for _, repo := range removed {
		owner, name, ok := splitFullName(repo.FullName)
		if !ok {
			continue
		}
		if err := i.stores.Projects.SoftRemoveProject(owner, name, i.clock()); err != nil {
			i.log.Errorw("project removal failed", "repo", repo.FullName, "error", err)
		}
	}
	return nil
}

func (i *Intake) installProject(ctx context.Context, owner, name, installationID string) error {
	meta, err := i.gh.GetRepository(ctx, owner, name)
	if err != nil {
		return fmt.Errorf("fetch repository metadata: %w", err)
	}

	project, err := i.stores.Projects.GetProjectByOwnerName(owner, name)
	created := false
	if errors.Is(err, gorm.ErrRecordNotFound) {
		project = &data.Project{Owner: owner, Name: name}
		created = true
	} else if err != nil {
		return fmt.Errorf("look up project: %w", err)
	}

	project.InstallationID = installationID
	project.PrimaryLanguage = meta.Language
	project.CloneURL = meta.CloneURL
	project.TrackChanges = classify.Language(meta.Language).Supported() && !meta.Archived
	project.RemovedAt = nil

	if created {
		err = i.stores.Projects.CreateProject(project)
	} else {
		err = i.stores.Projects.SaveProject(project)
	}
	if err != nil {
		return fmt.Errorf("persist project: %w", err)
	}
	i.log.Infow("project installed", "project", owner+"/"+name,
		"language", project.PrimaryLanguage, "tracked", project.TrackChanges)

	if project.TrackChanges {
		if _, err := i.queue.Enqueue(ctx, JobFetchProject, FetchPayload{ProjectID: project.ID}); err != nil {
			return fmt.Errorf("enqueue clone: %w", err)
		}
	}
	return nil
}

// FetchProject creates or refreshes the local clone of a project.
func (i *Intake) FetchProject(ctx context.Context, payload FetchPayload) error {
	project, err := i.stores.Projects.GetProjectByID(payload.ProjectID)
	if err != nil {
		return fmt.Errorf("load project %d: %w", payload.ProjectID, err)
	}
	if err := i.repos.Ensure(ctx, project.Owner, project.Name, project.CloneURL); err != nil {
		return queue.Transient(fmt.Errorf("sync clone of %s/%s: %w", project.Owner, project.Name, err))
	}
	return nil
}

func splitFullName(fullName string) (owner, name string, ok bool) {
	owner, name, ok = strings.Cut(fullName, "/")
	return owner, name, ok && owner != "" && name != ""
}
