package kafka

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/kcfgraph/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/kcfgraph/pkg/errors"
	"github.com/turtacn/kcfgraph/pkg/types/common"
)

var (
	ErrProducerClosed = errors.New(errors.ErrCodeMessagingError, "producer closed")
)

// ProducerConfig holds configuration for the Producer.
type ProducerConfig struct {
	Brokers          []string
	Acks             string
	MaxRetries       int
	BatchSize        int
	BatchTimeout     time.Duration
	MaxMessageBytes  int
	CompressionCodec string
	WriteTimeout     time.Duration
}

// ProducerStats is a point-in-time copy of the producer counters.
type ProducerStats struct {
	MessagesSent   int64
	MessagesFailed int64
	BytesSent      int64
}

// WriterInterface abstracts kafka.Writer for testing.
type WriterInterface interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher is what the consumer needs to dead-letter a message.
type Publisher interface {
	Publish(ctx context.Context, msg *common.ProducerMessage) error
}

// BatchItemError is the failure of one message of a batch.
type BatchItemError struct {
	Index int
	Topic string
	Error error
}

// BatchPublishResult summarises PublishBatch.
type BatchPublishResult struct {
	Succeeded int
	Failed    int
	Errors    []BatchItemError
}

// Producer manages message production.
type Producer struct {
	writer WriterInterface
	config ProducerConfig
	logger logging.Logger
	closed atomic.Bool

	sent   atomic.Int64
	failed atomic.Int64
	bytes  atomic.Int64
}

func applyProducerDefaults(cfg *ProducerConfig) {
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 100
	}
	if cfg.BatchTimeout == 0 {
		cfg.BatchTimeout = 50 * time.Millisecond
	}
	if cfg.MaxMessageBytes == 0 {
		cfg.MaxMessageBytes = 1024 * 1024
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
}

// NewProducer creates a Producer backed by a kafka.Writer. Messages are
// partitioned by key hash so all versions of a record land together.
func NewProducer(cfg ProducerConfig, logger logging.Logger) (*Producer, error) {
	if err := ValidateProducerConfig(cfg); err != nil {
		return nil, err
	}
	applyProducerDefaults(&cfg)

	var requiredAcks kafka.RequiredAcks
	switch cfg.Acks {
	case "none":
		requiredAcks = kafka.RequireNone
	case "all":
		requiredAcks = kafka.RequireAll
	default:
		requiredAcks = kafka.RequireOne
	}

	var compression kafka.Compression
	switch cfg.CompressionCodec {
	case "gzip":
		compression = kafka.Gzip
	case "snappy":
		compression = kafka.Snappy
	case "lz4":
		compression = kafka.Lz4
	case "zstd":
		compression = kafka.Zstd
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.Hash{},
		MaxAttempts:  cfg.MaxRetries + 1,
		BatchSize:    cfg.BatchSize,
		BatchTimeout: cfg.BatchTimeout,
		WriteTimeout: cfg.WriteTimeout,
		RequiredAcks: requiredAcks,
		Compression:  compression,
		Transport:    &kafka.Transport{DialTimeout: 10 * time.Second},
	}
	return NewProducerWithWriter(writer, cfg, logger), nil
}

// NewProducerWithWriter wraps an existing writer.
func NewProducerWithWriter(w WriterInterface, cfg ProducerConfig, logger logging.Logger) *Producer {
	applyProducerDefaults(&cfg)
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Producer{writer: w, config: cfg, logger: logger.Named("kafka.producer")}
}

func (p *Producer) validate(msg *common.ProducerMessage) error {
	if msg == nil || msg.Topic == "" {
		return errors.New(errors.ErrCodeValidation, "topic required")
	}
	if len(msg.Value) == 0 {
		return errors.New(errors.ErrCodeValidation, "value required")
	}
	if len(msg.Value) > p.config.MaxMessageBytes {
		return errors.New(errors.ErrCodeValidation, "message too large").
			WithDetailf("%d > %d bytes", len(msg.Value), p.config.MaxMessageBytes)
	}
	return nil
}

// Publish publishes a single message.
func (p *Producer) Publish(ctx context.Context, msg *common.ProducerMessage) error {
	if p.closed.Load() {
		return ErrProducerClosed
	}
	if err := p.validate(msg); err != nil {
		return err
	}

	start := time.Now()
	if err := p.writer.WriteMessages(ctx, toKafkaMessage(msg)); err != nil {
		p.failed.Add(1)
		return errors.Wrap(err, errors.ErrCodeMessagingError, "publish failed").WithDetail(msg.Topic)
	}
	p.sent.Add(1)
	p.bytes.Add(int64(len(msg.Value)))

	p.logger.Debug("Message published",
		logging.String("topic", msg.Topic),
		logging.Duration("latency", time.Since(start)))
	return nil
}

// PublishBatch publishes msgs in one write and reports per-message failures.
func (p *Producer) PublishBatch(ctx context.Context, msgs []*common.ProducerMessage) (*BatchPublishResult, error) {
	if p.closed.Load() {
		return nil, ErrProducerClosed
	}
	if len(msgs) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "messages empty")
	}

	kMsgs := make([]kafka.Message, len(msgs))
	for i, msg := range msgs {
		if err := p.validate(msg); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeValidation, "invalid batch message").WithDetailf("index %d", i)
		}
		kMsgs[i] = toKafkaMessage(msg)
	}

	result := &BatchPublishResult{}
	err := p.writer.WriteMessages(ctx, kMsgs...)
	switch werrs := err.(type) {
	case nil:
		result.Succeeded = len(msgs)
	case kafka.WriteErrors:
		for i, we := range werrs {
			if we != nil {
				result.Failed++
				result.Errors = append(result.Errors, BatchItemError{Index: i, Topic: msgs[i].Topic, Error: we})
			} else {
				result.Succeeded++
			}
		}
	default:
		result.Failed = len(msgs)
		result.Errors = append(result.Errors, BatchItemError{Index: -1, Error: err})
	}

	p.sent.Add(int64(result.Succeeded))
	p.failed.Add(int64(result.Failed))
	p.logger.Info("Batch published",
		logging.Int("succeeded", result.Succeeded),
		logging.Int("failed", result.Failed))
	return result, nil
}

// Stats returns a snapshot of the counters.
func (p *Producer) Stats() ProducerStats {
	return ProducerStats{
		MessagesSent:   p.sent.Load(),
		MessagesFailed: p.failed.Load(),
		BytesSent:      p.bytes.Load(),
	}
}

// Close closes the producer.
func (p *Producer) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	err := p.writer.Close()
	p.logger.Info("Kafka producer closed", logging.Int64("sent", p.sent.Load()))
	return err
}

func toKafkaMessage(msg *common.ProducerMessage) kafka.Message {
	headers := make([]kafka.Header, 0, len(msg.Headers))
	for _, k := range sortedKeys(msg.Headers) {
		headers = append(headers, kafka.Header{Key: k, Value: []byte(msg.Headers[k])})
	}
	ts := msg.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	return kafka.Message{
		Topic:   msg.Topic,
		Key:     msg.Key,
		Value:   msg.Value,
		Headers: headers,
		Time:    ts,
	}
}

func ValidateProducerConfig(cfg ProducerConfig) error {
	if len(cfg.Brokers) == 0 {
		return errors.New(errors.ErrCodeValidation, "brokers required")
	}
	if cfg.MaxRetries < 0 {
		return errors.New(errors.ErrCodeValidation, "max retries must be >= 0")
	}
	switch cfg.Acks {
	case "", "none", "one", "all":
	default:
		return errors.New(errors.ErrCodeValidation, "invalid acks").WithDetail(cfg.Acks)
	}
	return nil
}

//Personal.AI order the ending
