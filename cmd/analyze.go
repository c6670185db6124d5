package cmd

import (
	"strings"

	"github.com/spf13/cobra"
)

func analyzeCommand(a *app) *cobra.Command {
	var rating int

	cmd := &cobra.Command{
		Use:   "analyze <text>",
		Short: "Classify a single piece of review text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r *int
			if cmd.Flags().Changed("rating") {
				r = &rating
			}
			result := a.analyzer.Analyze(cmd.Context(), strings.Join(args, " "), r)
			return writeJSON(cmd.OutOrStdout(), result)
		},
	}
	cmd.Flags().IntVarP(&rating, "rating", "r", 0, "Star rating (1-5) used to reconcile the sentiment")

	return cmd
}
