package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"review-importer/models"
	"review-importer/services"
)

func reanalyzeCommand(a *app) *cobra.Command {
	var (
		ids       []int64
		sentiment string
		source    string
	)

	cmd := &cobra.Command{
		Use:   "reanalyze",
		Short: "Re-classify stored reviews",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := services.ReanalyzeFilter{IDs: ids, Source: source}
			if sentiment != "" {
				filter.Sentiment = models.Sentiment(sentiment)
				if !filter.Sentiment.Valid() {
					return fmt.Errorf("invalid sentiment %q", sentiment)
				}
			}

			store, err := a.openStore(a.cfg.DSN())
			if err != nil {
				return fmt.Errorf("connect to PostgreSQL: %w", err)
			}
			defer store.Close()

			report, err := a.pipeline.Reanalyze(cmd.Context(), store, filter)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), report)
		},
	}
	cmd.Flags().Int64SliceVar(&ids, "ids", nil, "Only re-classify these review ids")
	cmd.Flags().StringVar(&sentiment, "sentiment", "", "Only re-classify reviews with this sentiment")
	cmd.Flags().StringVar(&source, "source", "", "Only re-classify reviews from this source")

	return cmd
}
