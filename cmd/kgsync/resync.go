package main

import (
	"sort"

	"github.com/spf13/cobra"
)

var (
	resyncOntology  bool
	resyncEntity    string
	resyncInitFirst bool
)

var resyncCmd = &cobra.Command{
	Use:   "resync",
	Short: "Bulk synchronize the relational store into the graph",
	Long: `Re-projects every record of every entity type into the graph in
dependency order. Safe to re-run: nodes and relationships are merged
in place. Use --entity to limit the pass to one type.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		app, err := buildApp(ctx)
		if err != nil {
			return err
		}
		defer app.close(ctx)

		if resyncInitFirst {
			if err := app.initializer.Initialize(ctx); err != nil {
				return err
			}
		}

		if resyncEntity != "" {
			count := app.engine.BulkSync(ctx, resyncEntity)
			cmd.Printf("%s: %d records synchronized\n", resyncEntity, count)
			return nil
		}

		counts, err := app.engine.BulkSyncAll(ctx, resyncOntology)

		types := make([]string, 0, len(counts))
		for entityType := range counts {
			types = append(types, entityType)
		}
		sort.Strings(types)

		total := 0
		for _, entityType := range types {
			cmd.Printf("%-20s %d\n", entityType, counts[entityType])
			total += counts[entityType]
		}
		cmd.Printf("%-20s %d\n", "total", total)
		return err
	},
}

func init() {
	resyncCmd.Flags().BoolVar(&resyncOntology, "ontology", false,
		"reconcile ontology instance links after the pass")
	resyncCmd.Flags().StringVar(&resyncEntity, "entity", "",
		"limit the pass to one entity type")
	resyncCmd.Flags().BoolVar(&resyncInitFirst, "init", false,
		"initialize constraints and class nodes before synchronizing")
}
