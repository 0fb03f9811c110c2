package main

import (
	"fmt"

	"github.com/avohilabs/destiin"
	"github.com/spf13/cobra"
)

func newSetupWorkflowCmd(c *cli) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "setup-workflow",
		Short: "Create or complete the Travel Request approval workflow",
		Long: `Ensures the roles, states and transitions of the Travel Request approval workflow exist.
Existing states and transitions are never modified, so the command can be run repeatedly.
Use --file to provision a different workflow definition.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := destiin.TravelRequestWorkflow()
			if file != "" {
				def, err = destiin.LoadWorkflowDefinition(file)
			}
			if err != nil {
				return err
			}

			app, closeApp, err := c.openApp()
			if err != nil {
				return err
			}
			defer closeApp()

			report, err := app.SetupWorkflow(cmd.Context(), def)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, role := range report.Roles {
				fmt.Fprintf(out, "Created missing Role: %s\n", role)
			}
			for _, state := range report.States {
				fmt.Fprintf(out, "Added missing state: %s\n", state)
			}
			for _, transition := range report.Transitions {
				fmt.Fprintf(out, "Added missing transition: %s\n", transition)
			}
			if report.Created {
				fmt.Fprintf(out, "Created new workflow: %s\n", report.Workflow)
			} else {
				fmt.Fprintf(out, "Updated existing workflow: %s\n", report.Workflow)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML workflow definition to provision instead of the built-in one")
	return cmd
}
