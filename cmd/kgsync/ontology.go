package main

import (
	"github.com/spf13/cobra"
)

var ontologyCmd = &cobra.Command{
	Use:   "ontology",
	Short: "Manage the ontology layer of the graph",
}

var ontologyInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create constraints, class nodes, and the class hierarchy",
	Long: `Applies uniqueness constraints on every class key, merges one node
per ontology class, and links the IS_A hierarchy. Idempotent; safe to
run on every deployment.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		app, err := buildApp(ctx)
		if err != nil {
			return err
		}
		defer app.close(ctx)

		if err := app.initializer.Initialize(ctx); err != nil {
			return err
		}
		cmd.Println("ontology initialized")
		return nil
	},
}

var ontologyReconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Link instance nodes to their ontology classes",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		app, err := buildApp(ctx)
		if err != nil {
			return err
		}
		defer app.close(ctx)

		linked, err := app.reconciler.ReconcileInstances(ctx)
		if err != nil {
			return err
		}
		cmd.Printf("%d instance links in place\n", linked)
		return nil
	},
}

func init() {
	ontologyCmd.AddCommand(ontologyInitCmd)
	ontologyCmd.AddCommand(ontologyReconcileCmd)
}
