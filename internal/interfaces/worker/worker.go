// Package worker streams KCF records from Kafka through the parse service
// and publishes the resulting graphs.
package worker

import (
	"context"
	"io"
	"strconv"
	"time"

	appkcf "github.com/turtacn/kcfgraph/internal/application/kcf"
	"github.com/turtacn/kcfgraph/internal/config"
	"github.com/turtacn/kcfgraph/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/kcfgraph/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/kcfgraph/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/kcfgraph/pkg/errors"
	"github.com/turtacn/kcfgraph/pkg/types/common"
)

const headerTraceID = "trace_id"

// RecordHandler parses one record message and publishes a graph event.
// Records that can never parse are marked permanent so the consumer
// dead-letters them at once; publish failures are retried.
type RecordHandler struct {
	svc      appkcf.Service
	out      kafka.Publisher
	outTopic string
	metrics  *prometheus.AppMetrics
	logger   logging.Logger
}

func NewRecordHandler(svc appkcf.Service, out kafka.Publisher, outTopic string, metrics *prometheus.AppMetrics, logger logging.Logger) *RecordHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &RecordHandler{svc: svc, out: out, outTopic: outTopic, metrics: metrics, logger: logger.Named("worker")}
}

func recordName(msg *common.Message) string {
	if len(msg.Key) > 0 {
		return string(msg.Key)
	}
	return msg.Topic + "/" + strconv.Itoa(msg.Partition) + "/" + strconv.FormatInt(msg.Offset, 10)
}

// permanent reports whether err is a property of the record itself.
func permanent(err error) bool {
	return errors.IsFormatViolation(err) ||
		errors.IsCode(err, errors.ErrCodeKCFEmptyRecord) ||
		errors.IsCode(err, errors.ErrCodeValidation)
}

// Handle implements common.MessageHandler.
func (h *RecordHandler) Handle(ctx context.Context, msg *common.Message) error {
	name := recordName(msg)
	res, err := h.svc.Parse(ctx, appkcf.ParseInput{Name: name, Text: string(msg.Value), Source: prometheus.SourceKafka})
	if err != nil {
		if permanent(err) {
			h.record(msg.Topic, prometheus.StatusViolation)
			return kafka.Permanent(err)
		}
		h.record(msg.Topic, prometheus.StatusError)
		return err
	}

	entry := res.Graph.Entry
	env, err := kafka.NewEventEnvelope(kafka.EventGraphParsed, kafka.SourceService, kafka.GraphParsedPayload{
		RecordKey:  name,
		Entry:      entry,
		SourceHash: res.Key,
		Graph:      res.Graph,
		ParsedAt:   time.Now().UTC(),
	})
	if err != nil {
		h.record(msg.Topic, prometheus.StatusError)
		return kafka.Permanent(err)
	}
	env.TraceID = msg.Headers[headerTraceID]

	key := entry
	if key == "" {
		key = name
	}
	out, err := env.ToMessage(h.outTopic, key)
	if err != nil {
		h.record(msg.Topic, prometheus.StatusError)
		return kafka.Permanent(err)
	}
	if err := h.out.Publish(ctx, out); err != nil {
		h.record(msg.Topic, prometheus.StatusError)
		return err
	}

	h.record(msg.Topic, prometheus.StatusOK)
	h.logger.Debug("graph published",
		logging.String("record", name),
		logging.String("event_id", env.EventID),
		logging.Bool("cached", res.Cached))
	return nil
}

func (h *RecordHandler) record(topic, status string) {
	if h.metrics != nil {
		h.metrics.RecordWorkerMessage(topic, status)
	}
}

// deadLetterPublisher counts successful dead-letter writes.
type deadLetterPublisher struct {
	kafka.Publisher
	metrics *prometheus.AppMetrics
}

func (p *deadLetterPublisher) Publish(ctx context.Context, msg *common.ProducerMessage) error {
	if err := p.Publisher.Publish(ctx, msg); err != nil {
		return err
	}
	if p.metrics != nil {
		p.metrics.RecordDLQ(msg.Headers[kafka.HeaderOriginalTopic])
	}
	return nil
}

// PublishCloser is a producer the worker owns.
type PublishCloser interface {
	kafka.Publisher
	io.Closer
}

// Worker couples a consumer on the record topic with the graph producer.
type Worker struct {
	consumer *kafka.Consumer
	producer PublishCloser
	logger   logging.Logger
}

// New connects a worker from cfg. The graph topic and the dead-letter topic
// share one producer.
func New(cfg config.KafkaConfig, svc appkcf.Service, metrics *prometheus.AppMetrics, logger logging.Logger) (*Worker, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	producer, err := kafka.NewProducer(kafka.ProducerConfig{
		Brokers:    cfg.Brokers,
		Acks:       "all",
		MaxRetries: cfg.MaxRetries,
	}, logger)
	if err != nil {
		return nil, err
	}

	consumer, err := kafka.NewConsumer(ConsumerConfig(cfg), &deadLetterPublisher{Publisher: producer, metrics: metrics}, logger)
	if err != nil {
		producer.Close()
		return nil, err
	}
	return Assemble(consumer, producer, cfg, svc, metrics, logger), nil
}

// ConsumerConfig maps the worker settings onto the consumer.
func ConsumerConfig(cfg config.KafkaConfig) kafka.ConsumerConfig {
	return kafka.ConsumerConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.GroupID,
		Topics:      []string{cfg.InputTopic},
		StartOffset: cfg.StartOffset,
		RetryConfig: kafka.RetryConfig{
			MaxRetries:      cfg.MaxRetries,
			RetryBackoff:    cfg.RetryBackoff,
			DeadLetterTopic: cfg.DLQTopic,
		},
	}
}

// Assemble builds a worker from existing parts and subscribes the record
// handler to cfg.InputTopic.
func Assemble(consumer *kafka.Consumer, producer PublishCloser, cfg config.KafkaConfig, svc appkcf.Service, metrics *prometheus.AppMetrics, logger logging.Logger) *Worker {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	h := NewRecordHandler(svc, producer, cfg.OutputTopic, metrics, logger)
	consumer.Subscribe(cfg.InputTopic, h.Handle)
	return &Worker{consumer: consumer, producer: producer, logger: logger.Named("worker")}
}

// Run consumes until ctx is done, then closes the consumer before the
// producer so in-flight graphs are still published.
func (w *Worker) Run(ctx context.Context) error {
	if err := w.consumer.Start(ctx); err != nil {
		return err
	}
	w.logger.Info("worker running")
	<-ctx.Done()

	w.logger.Info("worker stopping")
	cerr := w.consumer.Close()
	perr := w.producer.Close()
	if cerr != nil {
		return cerr
	}
	return perr
}

// Stats exposes the consumer counters.
func (w *Worker) Stats() kafka.ConsumerStats {
	return w.consumer.Stats()
}

//Personal.AI order the ending
