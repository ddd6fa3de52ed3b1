package kafka

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/turtacn/kcfgraph/internal/config"
	"github.com/turtacn/kcfgraph/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/kcfgraph/pkg/errors"
	"github.com/turtacn/kcfgraph/pkg/types/common"
	moltypes "github.com/turtacn/kcfgraph/pkg/types/molecule"
)

// Topic Constants
const (
	TopicKCFRecords    = "kcf.records"
	TopicKCFGraphs     = "kcf.graphs"
	TopicKCFRecordsDLQ = "kcf.records.dlq"
)

// Event types
const (
	EventGraphParsed = "kcf.graph.parsed"
	SchemaVersion    = "v1"
	SourceService    = "kcfgraph-worker"
)

// TopicConfig describes a topic to create.
type TopicConfig struct {
	Name              string
	NumPartitions     int
	ReplicationFactor int
	RetentionMs       int64
	CleanupPolicy     string
	MaxMessageBytes   int
	Configs           map[string]string
}

// EventEnvelope standardizes event messages.
type EventEnvelope struct {
	EventID       string            `json:"event_id"`
	EventType     string            `json:"event_type"`
	Source        string            `json:"source"`
	Timestamp     time.Time         `json:"timestamp"`
	SchemaVersion string            `json:"schema_version"`
	TraceID       string            `json:"trace_id,omitempty"`
	Payload       json.RawMessage   `json:"payload"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// GraphParsedPayload is published on TopicKCFGraphs for each parsed record.
type GraphParsedPayload struct {
	RecordKey  string             `json:"record_key,omitempty"`
	Entry      string             `json:"entry"`
	SourceHash string             `json:"source_hash"`
	Graph      *moltypes.GraphDTO `json:"graph"`
	ParsedAt   time.Time          `json:"parsed_at"`
}

func NewEventEnvelope(eventType string, source string, payload interface{}) (*EventEnvelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal payload")
	}
	return &EventEnvelope{
		EventID:       uuid.New().String(),
		EventType:     eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		SchemaVersion: SchemaVersion,
		Payload:       data,
	}, nil
}

// DecodePayload unmarshals the payload into target.
func (e *EventEnvelope) DecodePayload(target interface{}) error {
	if len(e.Payload) == 0 || string(e.Payload) == "null" {
		return errors.New(errors.ErrCodeValidation, "envelope has no payload")
	}
	if err := json.Unmarshal(e.Payload, target); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to unmarshal payload")
	}
	return nil
}

// ToMessage renders the envelope as a message keyed by key.
func (e *EventEnvelope) ToMessage(topic, key string) (*common.ProducerMessage, error) {
	val, err := json.Marshal(e)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal envelope")
	}
	headers := map[string]string{
		"event_id":       e.EventID,
		"event_type":     e.EventType,
		"source_service": e.Source,
		"schema_version": e.SchemaVersion,
	}
	if e.TraceID != "" {
		headers["trace_id"] = e.TraceID
	}
	msg := &common.ProducerMessage{
		Topic:     topic,
		Value:     val,
		Headers:   headers,
		Timestamp: e.Timestamp,
	}
	if key != "" {
		msg.Key = []byte(key)
	}
	return msg, nil
}

func MessageToEventEnvelope(msg *common.Message) (*EventEnvelope, error) {
	if len(msg.Value) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "empty message value")
	}
	var env EventEnvelope
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to unmarshal envelope")
	}
	return &env, nil
}

// ConnInterface abstracts kafka.Conn for testing.
type ConnInterface interface {
	CreateTopics(topics ...kafka.TopicConfig) error
	DeleteTopics(topics ...string) error
	ReadPartitions(topics ...string) ([]kafka.Partition, error)
	Close() error
}

// TopicManager manages Kafka topics.
type TopicManager struct {
	conn   ConnInterface
	logger logging.Logger
}

func NewTopicManager(brokers []string, logger logging.Logger) (*TopicManager, error) {
	if len(brokers) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "brokers required")
	}
	conn, err := kafka.Dial("tcp", brokers[0])
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeMessagingError, "failed to dial kafka").WithDetail(brokers[0])
	}
	return NewTopicManagerWithConn(conn, logger), nil
}

func NewTopicManagerWithConn(conn ConnInterface, logger logging.Logger) *TopicManager {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &TopicManager{conn: conn, logger: logger.Named("kafka.topics")}
}

func (m *TopicManager) CreateTopic(ctx context.Context, cfg TopicConfig) error {
	if cfg.Name == "" {
		return errors.New(errors.ErrCodeValidation, "topic name required")
	}
	if cfg.NumPartitions <= 0 {
		return errors.New(errors.ErrCodeValidation, "NumPartitions must be > 0")
	}
	if cfg.ReplicationFactor <= 0 {
		return errors.New(errors.ErrCodeValidation, "ReplicationFactor must be > 0")
	}

	kCfg := kafka.TopicConfig{
		Topic:             cfg.Name,
		NumPartitions:     cfg.NumPartitions,
		ReplicationFactor: cfg.ReplicationFactor,
	}
	if cfg.RetentionMs > 0 {
		kCfg.ConfigEntries = append(kCfg.ConfigEntries, kafka.ConfigEntry{ConfigName: "retention.ms", ConfigValue: strconv.FormatInt(cfg.RetentionMs, 10)})
	}
	if cfg.CleanupPolicy != "" {
		kCfg.ConfigEntries = append(kCfg.ConfigEntries, kafka.ConfigEntry{ConfigName: "cleanup.policy", ConfigValue: cfg.CleanupPolicy})
	}
	if cfg.MaxMessageBytes > 0 {
		kCfg.ConfigEntries = append(kCfg.ConfigEntries, kafka.ConfigEntry{ConfigName: "max.message.bytes", ConfigValue: strconv.Itoa(cfg.MaxMessageBytes)})
	}
	for _, k := range sortedKeys(cfg.Configs) {
		kCfg.ConfigEntries = append(kCfg.ConfigEntries, kafka.ConfigEntry{ConfigName: k, ConfigValue: cfg.Configs[k]})
	}

	if err := m.conn.CreateTopics(kCfg); err != nil {
		if errors.Is(err, kafka.TopicAlreadyExists) || strings.Contains(err.Error(), "already exists") {
			return nil
		}
		if exists, _ := m.TopicExists(ctx, cfg.Name); exists {
			return nil
		}
		return errors.Wrap(err, errors.ErrCodeMessagingError, "failed to create topic").WithDetail(cfg.Name)
	}
	m.logger.Info("Topic created", logging.String("topic", cfg.Name), logging.Int("partitions", cfg.NumPartitions))
	return nil
}

func (m *TopicManager) DeleteTopic(ctx context.Context, name string) error {
	if err := m.conn.DeleteTopics(name); err != nil {
		return errors.Wrap(err, errors.ErrCodeMessagingError, "failed to delete topic").WithDetail(name)
	}
	m.logger.Warn("Topic deleted", logging.String("topic", name))
	return nil
}

// TopicExists treats a metadata error as absence.
func (m *TopicManager) TopicExists(ctx context.Context, name string) (bool, error) {
	partitions, err := m.conn.ReadPartitions(name)
	if err != nil {
		return false, nil
	}
	return len(partitions) > 0, nil
}

func (m *TopicManager) ListTopics(ctx context.Context) ([]string, error) {
	partitions, err := m.conn.ReadPartitions()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeMessagingError, "failed to read partitions")
	}

	seen := make(map[string]bool)
	var topics []string
	for _, p := range partitions {
		if !seen[p.Topic] {
			seen[p.Topic] = true
			topics = append(topics, p.Topic)
		}
	}
	return topics, nil
}

func (m *TopicManager) EnsureTopics(ctx context.Context, topics []TopicConfig) error {
	for _, topic := range topics {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := m.CreateTopic(ctx, topic); err != nil {
			return err
		}
	}
	return nil
}

func (m *TopicManager) Close() error {
	return m.conn.Close()
}

// DefaultTopics returns the worker topics named by cfg.
func DefaultTopics(cfg config.KafkaConfig) []TopicConfig {
	name := func(v, def string) string {
		if v == "" {
			return def
		}
		return v
	}
	const day = int64(24 * 3600 * 1000)
	return []TopicConfig{
		{Name: name(cfg.InputTopic, TopicKCFRecords), NumPartitions: 6, ReplicationFactor: 1, RetentionMs: 7 * day},
		{Name: name(cfg.OutputTopic, TopicKCFGraphs), NumPartitions: 6, ReplicationFactor: 1, RetentionMs: 7 * day},
		{Name: name(cfg.DLQTopic, TopicKCFRecordsDLQ), NumPartitions: 1, ReplicationFactor: 1, RetentionMs: 30 * day},
	}
}

//Personal.AI order the ending
