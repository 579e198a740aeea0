package main

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/typetrace/typetrace/internal/routes"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the webhook HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := buildApp()
		defer a.log.Sync()

		server := routes.NewServer(a.stores, a.intake, a.queue, a.log)
		router := routes.NewRouter(server)

		a.log.Infow("server running", "addr", a.cfg.HTTPAddr)
		return http.ListenAndServe(a.cfg.HTTPAddr, router)
	},
}
