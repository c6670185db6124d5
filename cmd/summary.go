package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func summaryCommand(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print insights over all stored reviews",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore(a.cfg.DSN())
			if err != nil {
				return fmt.Errorf("connect to PostgreSQL: %w", err)
			}
			defer store.Close()

			reviews, err := store.FetchAll(cmd.Context())
			if err != nil {
				return err
			}

			report := a.insights.Generate(reviews)
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), report)
			}
			a.insights.Print(cmd.OutOrStdout(), report)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the summary as JSON")

	return cmd
}
