package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report health of the relational and graph stores",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		app, err := buildApp(ctx)
		if err != nil {
			return err
		}
		defer app.close(ctx)

		dbHealth := app.db.Health(ctx)
		graphHealth := app.graphClient.Health(ctx)

		cmd.Printf("database: %-10s %s\n", dbHealth.State, dbHealth.Message)
		cmd.Printf("graph:    %-10s %s\n", graphHealth.State, graphHealth.Message)

		if !dbHealth.IsHealthy() || !graphHealth.IsHealthy() {
			return fmt.Errorf("one or more stores are unhealthy")
		}
		return nil
	},
}
