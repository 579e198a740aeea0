package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/typetrace/typetrace/internal/seeder"
)

var trackCmd = &cobra.Command{
	Use:   "track owner/repo [owner/repo ...]",
	Short: "Seed the project roster with repositories to track",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := buildApp()
		defer a.log.Sync()

		if err := seeder.SeedProjects(context.Background(), a.stores.Projects, a.intake, args, a.log); err != nil {
			return fmt.Errorf("seed projects: %w", err)
		}
		return nil
	},
}
