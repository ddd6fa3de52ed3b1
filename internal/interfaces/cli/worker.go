package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/kcfgraph/internal/config"
	"github.com/turtacn/kcfgraph/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/kcfgraph/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/kcfgraph/internal/interfaces/worker"
)

func NewWorkerCmd() *cobra.Command {
	var (
		brokers      string
		ensureTopics bool
	)
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Consume KCF records from Kafka and publish parsed graphs",
		Long: "Consume records from the input topic (value = KCF text, key = record id),\n" +
			"publish each graph as a kcf.graph.parsed event on the output topic and\n" +
			"route malformed records to the dead-letter topic with the error in headers.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			cfg := *cliCtx.Config
			if brokers != "" {
				cfg.Kafka.Brokers = strings.Split(brokers, ",")
			}
			return runWorker(cmd.Context(), cliCtx, &cfg, ensureTopics)
		},
	}
	cmd.Flags().StringVar(&brokers, "brokers", "", "comma-separated broker list (default from config)")
	cmd.Flags().BoolVar(&ensureTopics, "ensure-topics", false, "create the record, graph and dead-letter topics if missing")
	return cmd
}

func runWorker(ctx context.Context, cliCtx *CLIContext, cfg *config.Config, ensureTopics bool) error {
	logger := cliCtx.Logger
	if ensureTopics {
		if err := createTopics(ctx, cfg.Kafka, logger); err != nil {
			return err
		}
	}

	b, err := openBackends(cfg, logger, true)
	if err != nil {
		return err
	}
	defer b.Close()
	watchLogLevel(cliCtx)

	w, err := worker.New(cfg.Kafka, b.service(cfg), b.metrics, logger)
	if err != nil {
		return err
	}
	if err := w.Run(ctx); err != nil {
		return err
	}

	stats := w.Stats()
	logger.Info("worker stopped",
		logging.Int64("consumed", stats.MessagesConsumed),
		logging.Int64("processed", stats.MessagesProcessed),
		logging.Int64("dead_lettered", stats.MessagesDeadLettered))
	return nil
}

func createTopics(ctx context.Context, cfg config.KafkaConfig, logger logging.Logger) error {
	tm, err := kafka.NewTopicManager(cfg.Brokers, logger)
	if err != nil {
		return err
	}
	defer tm.Close()
	return tm.EnsureTopics(ctx, kafka.DefaultTopics(cfg))
}

//Personal.AI order the ending
