package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"review-importer/services"
	"review-importer/storage"
)

func importCommand(a *app) *cobra.Command {
	var (
		noDB   bool
		csvOut string
	)

	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import and classify a review export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			content, err := a.readUpload(args[0])
			if err != nil {
				return err
			}

			result, err := a.pipeline.Import(ctx, content)
			if err != nil {
				var ie *services.InputError
				if errors.As(err, &ie) {
					for _, s := range ie.Suggestions {
						fmt.Fprintf(cmd.ErrOrStderr(), "  - %s\n", s)
					}
				}
				return err
			}

			writers := make([]storage.ReviewWriter, 0, 2)
			csvWriter, err := storage.NewCSVWriter(csvOut)
			if err != nil {
				return err
			}
			writers = append(writers, csvWriter)

			if !noDB {
				store, err := a.openStore(a.cfg.DSN())
				if err != nil {
					_ = csvWriter.Close()
					a.logger.Error("[cmd] Make sure PostgreSQL is running: docker compose up -d")
					return fmt.Errorf("connect to PostgreSQL: %w", err)
				}
				writers = append(writers, store)
			}
			defer func() {
				for _, w := range writers {
					_ = w.Close()
				}
			}()

			g, gctx := errgroup.WithContext(ctx)
			for _, w := range writers {
				g.Go(func() error {
					return w.Write(gctx, result.Reviews)
				})
			}
			if err := g.Wait(); err != nil {
				return fmt.Errorf("store reviews: %w", err)
			}
			a.logger.Info("[cmd] Enriched reviews saved to %s", csvOut)

			out := cmd.OutOrStdout()
			if err := writeJSON(out, result.Report); err != nil {
				return err
			}
			a.insights.Print(out, a.insights.Generate(result.Reviews))
			return nil
		},
	}
	cmd.Flags().BoolVar(&noDB, "no-db", false, "Skip writing to PostgreSQL")
	cmd.Flags().StringVarP(&csvOut, "csv-out", "o", a.cfg.CSVOutputPath, "Path of the enriched CSV export")

	return cmd
}
