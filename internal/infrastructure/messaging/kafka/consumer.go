package kafka

import (
	"context"
	stderrors "errors"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/kcfgraph/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/kcfgraph/pkg/errors"
	"github.com/turtacn/kcfgraph/pkg/types/common"
)

var (
	ErrAlreadyRunning = errors.New(errors.ErrCodeConflict, "consumer already running")
)

// Dead-letter headers added to the original message headers.
const (
	HeaderOriginalTopic     = "original_topic"
	HeaderOriginalPartition = "original_partition"
	HeaderOriginalOffset    = "original_offset"
	HeaderErrorCode         = "error_code"
	HeaderErrorMessage      = "error_message"
	HeaderErrorDetail       = "error_detail"
	HeaderAttempts          = "attempts"
)

// RetryConfig defines retry behavior.
type RetryConfig struct {
	MaxRetries      int
	RetryBackoff    time.Duration
	MaxRetryBackoff time.Duration
	DeadLetterTopic string
}

// ConsumerConfig holds configuration for the Consumer.
type ConsumerConfig struct {
	Brokers        []string
	GroupID        string
	Topics         []string
	StartOffset    string
	CommitInterval time.Duration
	MaxWait        time.Duration
	MaxBytes       int
	RetryConfig    RetryConfig
}

// ConsumerStats is a point-in-time copy of the consumer counters.
type ConsumerStats struct {
	MessagesConsumed     int64
	MessagesProcessed    int64
	MessagesFailed       int64
	MessagesRetried      int64
	MessagesDeadLettered int64
	Lag                  int64
}

// ReaderInterface abstracts kafka.Reader for testing.
type ReaderInterface interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// permanentError marks a handler failure that retrying cannot fix.
type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent wraps err so the consumer dead-letters the message without
// retrying. A nil err stays nil.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	var pe *permanentError
	return stderrors.As(err, &pe)
}

// Consumer reads a consumer group and dispatches messages per topic.
// Every fetched message is committed once it was handled, dead-lettered or
// dropped, so a poisoned record never stalls its partition.
type Consumer struct {
	reader ReaderInterface
	config ConsumerConfig
	logger logging.Logger

	handlers map[string]common.MessageHandler
	mu       sync.RWMutex

	running atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	deadLetter Publisher

	consumed     atomic.Int64
	processed    atomic.Int64
	failed       atomic.Int64
	retried      atomic.Int64
	deadLettered atomic.Int64
	lag          atomic.Int64
}

// NewConsumer creates a group consumer for cfg.Topics. deadLetter may be nil,
// in which case exhausted messages are logged and dropped.
func NewConsumer(cfg ConsumerConfig, deadLetter Publisher, logger logging.Logger) (*Consumer, error) {
	if err := ValidateConsumerConfig(cfg); err != nil {
		return nil, err
	}
	if cfg.CommitInterval == 0 {
		cfg.CommitInterval = time.Second
	}
	if cfg.MaxWait == 0 {
		cfg.MaxWait = 500 * time.Millisecond
	}
	if cfg.MaxBytes == 0 {
		cfg.MaxBytes = 10 * 1024 * 1024
	}

	readerCfg := kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		GroupID:        cfg.GroupID,
		GroupTopics:    cfg.Topics,
		MinBytes:       1,
		MaxBytes:       cfg.MaxBytes,
		MaxWait:        cfg.MaxWait,
		CommitInterval: cfg.CommitInterval,
		StartOffset:    kafka.FirstOffset,
		Dialer:         &kafka.Dialer{Timeout: 10 * time.Second, DualStack: true},
	}
	if cfg.StartOffset == "latest" {
		readerCfg.StartOffset = kafka.LastOffset
	}

	return NewConsumerWithReader(kafka.NewReader(readerCfg), cfg, deadLetter, logger), nil
}

// NewConsumerWithReader wraps an existing reader.
func NewConsumerWithReader(r ReaderInterface, cfg ConsumerConfig, deadLetter Publisher, logger logging.Logger) *Consumer {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Consumer{
		reader:     r,
		config:     cfg,
		logger:     logger.Named("kafka.consumer"),
		handlers:   make(map[string]common.MessageHandler),
		deadLetter: deadLetter,
	}
}

// Subscribe registers handler for topic, replacing any previous one.
func (c *Consumer) Subscribe(topic string, handler common.MessageHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[topic] = handler
	c.logger.Info("Subscribed to topic", logging.String("topic", topic))
}

// Start runs the consume loop in the background until ctx is done or Close
// is called.
func (c *Consumer) Start(ctx context.Context) error {
	if c.running.Swap(true) {
		return ErrAlreadyRunning
	}
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.wg.Add(1)
	go c.consumeLoop(ctx)

	c.logger.Info("Kafka consumer started", logging.String("group", c.config.GroupID))
	return nil
}

// Wait blocks until the consume loop has exited.
func (c *Consumer) Wait() {
	c.wg.Wait()
}

func (c *Consumer) consumeLoop(ctx context.Context) {
	defer c.wg.Done()

	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Error("FetchMessage error", logging.Err(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}

		c.consumed.Add(1)
		if m.HighWaterMark > 0 {
			c.lag.Store(m.HighWaterMark - m.Offset - 1)
		}

		msg := fromKafkaMessage(m)

		c.mu.RLock()
		handler, ok := c.handlers[m.Topic]
		c.mu.RUnlock()

		if !ok {
			c.logger.Warn("No handler for topic", logging.String("topic", m.Topic))
		} else if err := c.processMessage(ctx, msg, handler); err != nil {
			// Only cancellation aborts processing; leave the offset for the
			// next group member.
			return
		}

		if err := c.reader.CommitMessages(ctx, m); err != nil && ctx.Err() == nil {
			c.logger.Error("CommitMessages failed", logging.Err(err),
				logging.String("topic", m.Topic), logging.Int64("offset", m.Offset))
		}
	}
}

// processMessage runs handler with retries. It returns an error only when
// ctx is cancelled; exhausted and permanent failures are dead-lettered.
func (c *Consumer) processMessage(ctx context.Context, msg *common.Message, handler common.MessageHandler) error {
	err := handler(ctx, msg)
	if err == nil {
		c.processed.Add(1)
		return nil
	}

	maxRetries := c.config.RetryConfig.MaxRetries
	backoff := c.config.RetryConfig.RetryBackoff
	if backoff == 0 {
		backoff = 100 * time.Millisecond
	}
	maxBackoff := c.config.RetryConfig.MaxRetryBackoff
	if maxBackoff == 0 {
		maxBackoff = 30 * time.Second
	}

	attempts := 1
	for i := 0; i < maxRetries && !IsPermanent(err); i++ {
		c.retried.Add(1)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}

		attempts++
		if err = handler(ctx, msg); err == nil {
			c.processed.Add(1)
			return nil
		}
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}
	c.failed.Add(1)
	c.logger.Warn("Message processing failed",
		logging.String("topic", msg.Topic),
		logging.Int64("offset", msg.Offset),
		logging.Int("attempts", attempts),
		logging.Bool("permanent", IsPermanent(err)),
		logging.Err(err))

	if c.deadLetter == nil || c.config.RetryConfig.DeadLetterTopic == "" {
		return nil
	}
	dl := DeadLetterMessage(c.config.RetryConfig.DeadLetterTopic, msg, err, attempts)
	if dlErr := c.deadLetter.Publish(ctx, dl); dlErr != nil {
		c.logger.Error("Failed to send to dead letter queue", logging.Err(dlErr))
		return nil
	}
	c.deadLettered.Add(1)
	return nil
}

// DeadLetterMessage builds the dead-letter copy of msg. The original
// headers are kept and the failure is described in extra headers.
func DeadLetterMessage(topic string, msg *common.Message, cause error, attempts int) *common.ProducerMessage {
	headers := make(map[string]string, len(msg.Headers)+7)
	for k, v := range msg.Headers {
		headers[k] = v
	}
	headers[HeaderOriginalTopic] = msg.Topic
	headers[HeaderOriginalPartition] = strconv.Itoa(msg.Partition)
	headers[HeaderOriginalOffset] = strconv.FormatInt(msg.Offset, 10)
	headers[HeaderErrorCode] = string(errors.GetCode(cause))
	headers[HeaderErrorMessage] = cause.Error()
	headers[HeaderAttempts] = strconv.Itoa(attempts)
	var ae *errors.AppError
	if errors.As(cause, &ae) && ae.Detail != "" {
		headers[HeaderErrorDetail] = ae.Detail
	}
	return &common.ProducerMessage{
		Topic:     topic,
		Key:       msg.Key,
		Value:     msg.Value,
		Headers:   headers,
		Timestamp: time.Now().UTC(),
	}
}

// Stats returns a snapshot of the counters.
func (c *Consumer) Stats() ConsumerStats {
	return ConsumerStats{
		MessagesConsumed:     c.consumed.Load(),
		MessagesProcessed:    c.processed.Load(),
		MessagesFailed:       c.failed.Load(),
		MessagesRetried:      c.retried.Load(),
		MessagesDeadLettered: c.deadLettered.Load(),
		Lag:                  c.lag.Load(),
	}
}

// Close stops the loop and closes the reader.
func (c *Consumer) Close() error {
	if !c.running.CompareAndSwap(true, false) {
		return nil
	}
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()

	var err error
	if c.reader != nil {
		err = c.reader.Close()
	}
	c.logger.Info("Kafka consumer closed", logging.Int64("consumed", c.consumed.Load()))
	return err
}

func fromKafkaMessage(m kafka.Message) *common.Message {
	msg := &common.Message{
		Topic:     m.Topic,
		Partition: m.Partition,
		Offset:    m.Offset,
		Key:       m.Key,
		Value:     m.Value,
		Timestamp: m.Time,
		Headers:   make(map[string]string, len(m.Headers)),
	}
	for _, h := range m.Headers {
		msg.Headers[h.Key] = string(h.Value)
	}
	return msg
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ValidateConsumerConfig validates configuration.
func ValidateConsumerConfig(cfg ConsumerConfig) error {
	if len(cfg.Brokers) == 0 {
		return errors.New(errors.ErrCodeValidation, "brokers required")
	}
	if cfg.GroupID == "" {
		return errors.New(errors.ErrCodeValidation, "group id required")
	}
	if len(cfg.Topics) == 0 {
		return errors.New(errors.ErrCodeValidation, "at least one topic required")
	}
	if cfg.StartOffset != "" && cfg.StartOffset != "earliest" && cfg.StartOffset != "latest" {
		return errors.New(errors.ErrCodeValidation, "invalid start offset").WithDetail(cfg.StartOffset)
	}
	if cfg.RetryConfig.MaxRetries < 0 {
		return errors.New(errors.ErrCodeValidation, "max retries must be >= 0")
	}
	return nil
}

//Personal.AI order the ending
