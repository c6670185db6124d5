package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"review-importer/backend"
	"review-importer/config"
	"review-importer/metrics"
	"review-importer/services"
	"review-importer/storage"
	"review-importer/utils"
)

// app carries the collaborators shared by the sub-commands.
type app struct {
	cfg       *config.Config
	logger    *utils.Logger
	metrics   *metrics.PipelineMetrics
	analyzer  *services.Analyzer
	pipeline  *services.Pipeline
	insights  *services.InsightService
	server    *http.Server
	openStore func(dsn string) (storage.ReviewStore, error)
}

func newApp(cfg *config.Config, logger *utils.Logger) *app {
	return &app{
		cfg:    cfg,
		logger: logger,
		openStore: func(dsn string) (storage.ReviewStore, error) {
			pw, err := storage.NewPostgresWriter(dsn)
			if err != nil {
				return nil, err
			}
			return pw, nil
		},
	}
}

// RootCommand creates and returns the root command.
func RootCommand(cfg *config.Config, logger *utils.Logger) *cobra.Command {
	return newRootCommand(newApp(cfg, logger))
}

func newRootCommand(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "review-importer",
		Short:         "Import review exports and classify their sentiment and topics",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	setupFlags(rootCmd, a.cfg)

	formatsCmd := formatsCommand()
	subcommands := []*cobra.Command{
		previewCommand(a),
		importCommand(a),
		analyzeCommand(a),
		formatsCmd,
		reanalyzeCommand(a),
		summaryCommand(a),
	}
	rootCmd.AddCommand(subcommands...)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// The formats catalog is static.
		if cmd.Name() == formatsCmd.Name() {
			return nil
		}
		return a.initialize()
	}
	rootCmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		a.shutdown()
		return nil
	}

	return rootCmd
}

func setupFlags(rootCmd *cobra.Command, cfg *config.Config) {
	rootCmd.PersistentFlags().StringVar(&cfg.AIServiceType, "ai-service", cfg.AIServiceType, "Classification backend: claude, openai or local")
	rootCmd.PersistentFlags().IntVarP(&cfg.MaxConcurrency, "concurrency", "c", cfg.MaxConcurrency, "Number of records classified in parallel")
	rootCmd.PersistentFlags().StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "Serve Prometheus metrics on this address")
}

// initialize builds the classification pipeline from configuration.
func (a *app) initialize() error {
	registry := prometheus.NewRegistry()
	m, err := metrics.NewPipelineMetrics(registry)
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	a.metrics = m

	client, err := backend.New(a.cfg.AIServiceType, backend.OptionsFromConfig(a.cfg, a.logger))
	switch {
	case errors.Is(err, backend.ErrMissingCredential):
		a.logger.Warn("[cmd] %v, using local analysis only", err)
	case err != nil:
		return err
	}

	var remote services.Classifier
	if client != nil {
		remote = client
		a.logger.Info("[cmd] Using %s for classification", client.Name())
	}

	a.analyzer = services.NewAnalyzer(remote,
		services.NewTopicNormalizer(services.DefaultTaxonomy()),
		a.logger,
		services.WithTimeout(a.cfg.AITimeout),
		services.WithCache(a.cfg.CacheTTL),
		services.WithMetrics(m),
	)
	a.pipeline = services.NewPipeline(services.PipelineConfig{
		Analyzer:       a.analyzer,
		Logger:         a.logger,
		Metrics:        m,
		MaxConcurrency: a.cfg.MaxConcurrency,
		RateLimitMs:    a.cfg.RateLimitMs,
	})
	a.insights = services.NewInsightService(a.logger)

	if a.cfg.MetricsAddr != "" {
		a.startMetricsServer()
	}
	return nil
}

func (a *app) startMetricsServer() {
	a.server = &http.Server{
		Addr:              a.cfg.MetricsAddr,
		Handler:           a.metrics.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("[metrics] Server stopped: %v", err)
		}
	}()
	a.logger.Info("[metrics] Serving metrics on %s", a.cfg.MetricsAddr)
}

func (a *app) shutdown() {
	if a.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = a.server.Shutdown(ctx)
	}
	a.logger.Sync()
}

// readUpload loads a CSV file, refusing anything over the upload limit.
func (a *app) readUpload(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if limit := a.cfg.MaxUploadSize; limit > 0 && info.Size() > limit {
		return nil, fmt.Errorf("%s is %d bytes, larger than the %d byte upload limit", path, info.Size(), limit)
	}
	return os.ReadFile(path)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
