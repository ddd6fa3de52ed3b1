package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/turtacn/kcfgraph/internal/config"
	"github.com/turtacn/kcfgraph/internal/infrastructure/monitoring/logging"
	khttp "github.com/turtacn/kcfgraph/internal/interfaces/http"
	"github.com/turtacn/kcfgraph/internal/interfaces/http/handlers"
	"github.com/turtacn/kcfgraph/internal/interfaces/http/middleware"
)

func NewServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the parse API over HTTP",
		Long: "Serve POST /api/v1/kcf/parse, POST /api/v1/kcf/batch and\n" +
			"GET /api/v1/kcf/objects/<key>, plus /healthz, /readyz and /metrics.\n" +
			"The log level follows edits of the config file without a restart.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			cfg := *cliCtx.Config
			if addr != "" {
				cfg.Server.Addr = addr
			}
			return runServe(cmd.Context(), cliCtx, &cfg)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config: :8080)")
	return cmd
}

func runServe(ctx context.Context, cliCtx *CLIContext, cfg *config.Config) error {
	logger := cliCtx.Logger
	b, err := openBackends(cfg, logger, true)
	if err != nil {
		return err
	}
	defer b.Close()

	watchLogLevel(cliCtx)

	router := khttp.NewRouter(khttp.RouterConfig{
		KCFHandler:       handlers.NewKCFHandler(b.service(cfg), cfg.Parser.MaxRecordBytes, logger),
		HealthHandler:    handlers.NewHealthHandler(Version, b.healthCheckers()...),
		Logger:           logger,
		Logging:          middleware.DefaultLoggingConfig(),
		Metrics:          b.metrics,
		MetricsCollector: b.collector,
		MetricsPath:      cfg.Metrics.Path,
	})
	srv := khttp.NewServer(cfg.Server, router, logger)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	// The parent context is already done; shutdown gets a fresh deadline.
	if err := srv.Shutdown(context.Background()); err != nil {
		return err
	}
	return <-errCh
}

// watchLogLevel applies log level edits of the config file at runtime.
func watchLogLevel(cliCtx *CLIContext) {
	if cliCtx.ConfigPath == "" {
		return
	}
	logger := cliCtx.Logger
	err := config.Watch(cliCtx.ConfigPath, func(next *config.Config) {
		changed, err := logging.SetLevel(logger, next.Log.Level)
		if err != nil {
			logger.Warn("ignoring invalid log level", logging.String("level", next.Log.Level), logging.Err(err))
			return
		}
		if changed {
			logger.Info("log level reloaded", logging.String("level", next.Log.Level))
		}
	}, func(err error) {
		logger.Warn("config reload rejected", logging.Err(err))
	})
	if err != nil {
		logger.Warn("config watch disabled", logging.Err(err))
	}
}

//Personal.AI order the ending
