package cmd

import (
	"github.com/spf13/cobra"

	"review-importer/services"
)

func formatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List the supported review export formats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeJSON(cmd.OutOrStdout(), services.SupportedFormats())
		},
	}
}
