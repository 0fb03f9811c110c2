package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func newErrorLogsCmd(c *cli) *cobra.Command {
	var limit int
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "error-logs",
		Short: "Print the persisted error log, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, closeApp, err := c.openApp()
			if err != nil {
				return err
			}
			defer closeApp()

			logs, err := app.GetErrorLogs(cmd.Context(), limit)
			if err != nil {
				return err
			}

			if asJSON {
				encoder := json.NewEncoder(cmd.OutOrStdout())
				encoder.SetIndent("", "  ")
				return encoder.Encode(logs)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TIME\tLEVEL\tTITLE\tMESSAGE\tREQUEST")
			for _, log := range logs {
				request := "-"
				if log.RequestID != nil {
					request = log.RequestID.String()
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					log.Timestamp.Format(time.RFC3339), log.Level, log.Title, log.Message, request)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of entries to print, 0 for all")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print entries as JSON")
	return cmd
}
