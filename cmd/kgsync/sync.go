package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync <entity-type> [record.json]",
	Short: "Synchronize a single record into the graph",
	Long: `Reads one record as JSON, from the given file or stdin, and projects
it into the graph. The entity type selects the node label, key field,
and relationship rules.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var (
			data []byte
			err  error
		)
		if len(args) == 2 {
			data, err = os.ReadFile(args[1])
		} else {
			data, err = io.ReadAll(cmd.InOrStdin())
		}
		if err != nil {
			return fmt.Errorf("failed to read record: %w", err)
		}

		var record map[string]any
		if err := json.Unmarshal(data, &record); err != nil {
			return fmt.Errorf("failed to parse record JSON: %w", err)
		}

		app, err := buildApp(ctx)
		if err != nil {
			return err
		}
		defer app.close(ctx)

		if !app.engine.Sync(ctx, args[0], record) {
			return fmt.Errorf("record failed to synchronize, see log for details")
		}
		cmd.Println("record synchronized")
		return nil
	},
}
