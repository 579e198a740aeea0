package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print study progress counters",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := buildApp()
		defer a.log.Sync()

		projects, err := a.stores.Projects.CountProjects()
		if err != nil {
			return err
		}
		commits, err := a.stores.Commits.CountCommits()
		if err != nil {
			return err
		}
		relevant, err := a.stores.Commits.CountRelevantCommits()
		if err != nil {
			return err
		}
		committers, err := a.stores.Committers.CountCommitters()
		if err != nil {
			return err
		}
		responses, err := a.stores.Responses.CountResponses()
		if err != nil {
			return err
		}

		fmt.Printf("projects:   %d\n", projects)
		fmt.Printf("commits:    %d (%d relevant)\n", commits, relevant)
		fmt.Printf("committers: %d\n", committers)
		fmt.Printf("responses:  %d\n", responses)
		return nil
	},
}
