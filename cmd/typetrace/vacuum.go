package main

import (
	"time"

	"github.com/spf13/cobra"
)

var vacuumCmd = &cobra.Command{
	Use:   "vacuum",
	Short: "Delete old irrelevant commits",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := buildApp()
		defer a.log.Sync()

		cutoff := time.Now().Add(-a.cfg.VacuumAge)
		deleted, err := a.stores.Commits.DeleteIrrelevantBefore(cutoff)
		if err != nil {
			return err
		}
		a.log.Infow("vacuum finished", "deleted", deleted, "cutoff", cutoff)
		return nil
	},
}
