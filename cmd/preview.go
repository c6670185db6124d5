package cmd

import (
	"github.com/spf13/cobra"
)

func previewCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "preview <file.csv>",
		Short: "Validate a review export without importing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := a.readUpload(args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), a.pipeline.Preview(content))
		},
	}
}
