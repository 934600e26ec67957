package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ortelius/scec-spog/api"
	"github.com/ortelius/scec-spog/config"
	"github.com/ortelius/scec-spog/database"
	"github.com/ortelius/scec-spog/metrics"
	"github.com/ortelius/scec-spog/sbom"
	"github.com/ortelius/scec-spog/search"
	"github.com/ortelius/scec-spog/util"
	"github.com/ortelius/scec-spog/vex"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// serveCmd runs the gateway
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the package search gateway",
	Long: `Starts the HTTP gateway serving /api/v1/package/search and /api/v1/package.
Settings come from flags, SPOG_* environment variables and the --config file.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("port", "3000", "Port to listen on")
	serveCmd.Flags().String("sbom.url", "http://localhost:8082", "SBOM backend base URL")
	serveCmd.Flags().Duration("sbom.timeout", 30*time.Second, "Dial and response header timeout for SBOM backend calls")
	serveCmd.Flags().String("vex.source", config.VexSourceNone, "VEX index source: none, file or arangodb")
	serveCmd.Flags().String("vex.file", "", "VEX documents file for the file source")
	serveCmd.Flags().Duration("vex.refresh", 0, "Interval between VEX index rebuilds (0 disables)")
	serveCmd.Flags().Int("vex.limit", search.DefaultVexLimit, "Maximum VEX matches per package")
	serveCmd.Flags().Bool("metrics", true, "Expose Prometheus metrics on /metrics")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger := util.InitLogger()
	defer logger.Sync() //nolint:errcheck

	client, err := sbom.NewClient(cfg.SBOMURL, cfg.SBOMTimeout)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.NewMetrics()
	index := vex.NewShared(nil)

	loader, err := vexLoader(ctx, cfg)
	if err != nil {
		return err
	}
	if loader != nil {
		refresher := &vex.Refresher{
			Index:      index,
			Loader:     loader,
			Interval:   cfg.VexRefresh,
			Logger:     logger,
			Metrics:    m,
			MaxElapsed: 2 * time.Minute,
		}
		if err := refresher.Refresh(ctx); err != nil {
			return fmt.Errorf("failed to build VEX index: %w", err)
		}
		go refresher.Run(ctx)
	} else {
		logger.Warn("No VEX source configured, packages will have no vulnerabilities")
	}

	enricher := search.NewEnricher(index, cfg.VexLimit, logger, m)
	aggregator := search.NewAggregator(client, enricher, logger, m)

	var routeMetrics *metrics.Metrics
	if cfg.MetricsRoute {
		routeMetrics = m
	}
	app := api.NewApp(api.NewHandler(aggregator), routeMetrics)

	go func() {
		<-ctx.Done()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.Warn("Error shutting down server", zap.Error(err))
		}
	}()

	logger.Info("Starting server", zap.String("port", cfg.Port), zap.String("sbom", cfg.SBOMURL), zap.String("vex", cfg.VexSource))
	return app.Listen(":" + cfg.Port)
}

func vexLoader(ctx context.Context, cfg *config.Config) (vex.Loader, error) {
	switch cfg.VexSource {
	case config.VexSourceFile:
		return vex.FileLoader{Path: cfg.VexFile}, nil
	case config.VexSourceArangoDB:
		conn, err := database.InitializeDatabase(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to ArangoDB: %w", err)
		}
		return database.VexStore{Conn: conn}, nil
	}
	return nil, nil
}
