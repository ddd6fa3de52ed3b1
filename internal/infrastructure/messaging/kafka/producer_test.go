package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/turtacn/kcfgraph/pkg/errors"
	"github.com/turtacn/kcfgraph/pkg/types/common"
)

// mockKafkaWriter
type mockKafkaWriter struct {
	writeFunc func(ctx context.Context, msgs ...kafka.Message) error
	written   []kafka.Message
	closed    int
}

func (m *mockKafkaWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if m.writeFunc != nil {
		if err := m.writeFunc(ctx, msgs...); err != nil {
			return err
		}
	}
	m.written = append(m.written, msgs...)
	return nil
}

func (m *mockKafkaWriter) Close() error {
	m.closed++
	return nil
}

func newTestProducerConfig() ProducerConfig {
	return ProducerConfig{
		Brokers:         []string{"localhost:9092"},
		MaxMessageBytes: 64,
	}
}

func newTestProducerMessage(topic, key, value string) *common.ProducerMessage {
	return &common.ProducerMessage{
		Topic: topic,
		Key:   []byte(key),
		Value: []byte(value),
	}
}

func TestValidateProducerConfig(t *testing.T) {
	assert.NoError(t, ValidateProducerConfig(newTestProducerConfig()))
	assert.Error(t, ValidateProducerConfig(ProducerConfig{}))

	cfg := newTestProducerConfig()
	cfg.Acks = "most"
	assert.True(t, pkgerrors.IsCode(ValidateProducerConfig(cfg), pkgerrors.ErrCodeValidation))

	cfg = newTestProducerConfig()
	cfg.MaxRetries = -1
	assert.Error(t, ValidateProducerConfig(cfg))
}

func TestNewProducer(t *testing.T) {
	p, err := NewProducer(ProducerConfig{Brokers: []string{"localhost:9092"}, Acks: "all", CompressionCodec: "snappy"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, p.config.MaxRetries)
	assert.Equal(t, 1024*1024, p.config.MaxMessageBytes)
	require.NoError(t, p.Close())
}

func TestProducer_Publish(t *testing.T) {
	w := &mockKafkaWriter{}
	p := NewProducerWithWriter(w, newTestProducerConfig(), nil)

	msg := newTestProducerMessage(TopicKCFGraphs, "C00033", "{}")
	msg.Headers = map[string]string{"z": "1", "a": "2"}
	require.NoError(t, p.Publish(context.Background(), msg))

	require.Len(t, w.written, 1)
	got := w.written[0]
	assert.Equal(t, TopicKCFGraphs, got.Topic)
	assert.Equal(t, "C00033", string(got.Key))
	assert.False(t, got.Time.IsZero())
	require.Len(t, got.Headers, 2)
	assert.Equal(t, "a", got.Headers[0].Key)
	assert.Equal(t, "z", got.Headers[1].Key)

	stats := p.Stats()
	assert.Equal(t, int64(1), stats.MessagesSent)
	assert.Equal(t, int64(2), stats.BytesSent)
}

func TestProducer_PublishKeepsTimestamp(t *testing.T) {
	w := &mockKafkaWriter{}
	p := NewProducerWithWriter(w, newTestProducerConfig(), nil)
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	msg := newTestProducerMessage("t", "", "v")
	msg.Timestamp = ts
	require.NoError(t, p.Publish(context.Background(), msg))
	assert.True(t, ts.Equal(w.written[0].Time))
}

func TestProducer_PublishValidation(t *testing.T) {
	p := NewProducerWithWriter(&mockKafkaWriter{}, newTestProducerConfig(), nil)
	ctx := context.Background()

	assert.Error(t, p.Publish(ctx, nil))
	assert.Error(t, p.Publish(ctx, newTestProducerMessage("", "k", "v")))
	assert.Error(t, p.Publish(ctx, newTestProducerMessage("t", "k", "")))

	big := newTestProducerMessage("t", "k", string(make([]byte, 65)))
	assert.True(t, pkgerrors.IsCode(p.Publish(ctx, big), pkgerrors.ErrCodeValidation))
}

func TestProducer_PublishWriteError(t *testing.T) {
	w := &mockKafkaWriter{writeFunc: func(context.Context, ...kafka.Message) error {
		return errors.New("leader not available")
	}}
	p := NewProducerWithWriter(w, newTestProducerConfig(), nil)

	err := p.Publish(context.Background(), newTestProducerMessage("t", "k", "v"))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeMessagingError))
	assert.Equal(t, int64(1), p.Stats().MessagesFailed)
}

func TestProducer_PublishBatch(t *testing.T) {
	w := &mockKafkaWriter{}
	p := NewProducerWithWriter(w, newTestProducerConfig(), nil)

	res, err := p.PublishBatch(context.Background(), []*common.ProducerMessage{
		newTestProducerMessage("t", "a", "1"),
		newTestProducerMessage("t", "b", "2"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Succeeded)
	assert.Zero(t, res.Failed)
	assert.Len(t, w.written, 2)
}

func TestProducer_PublishBatchPartialFailure(t *testing.T) {
	w := &mockKafkaWriter{writeFunc: func(_ context.Context, msgs ...kafka.Message) error {
		return kafka.WriteErrors{nil, errors.New("timeout"), nil}
	}}
	p := NewProducerWithWriter(w, newTestProducerConfig(), nil)

	res, err := p.PublishBatch(context.Background(), []*common.ProducerMessage{
		newTestProducerMessage("t", "a", "1"),
		newTestProducerMessage("u", "b", "2"),
		newTestProducerMessage("t", "c", "3"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Succeeded)
	assert.Equal(t, 1, res.Failed)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, 1, res.Errors[0].Index)
	assert.Equal(t, "u", res.Errors[0].Topic)
}

func TestProducer_PublishBatchInvalid(t *testing.T) {
	p := NewProducerWithWriter(&mockKafkaWriter{}, newTestProducerConfig(), nil)
	_, err := p.PublishBatch(context.Background(), nil)
	assert.Error(t, err)

	_, err = p.PublishBatch(context.Background(), []*common.ProducerMessage{
		newTestProducerMessage("t", "a", "1"),
		newTestProducerMessage("", "b", "2"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "index 1")
}

func TestProducer_Close(t *testing.T) {
	w := &mockKafkaWriter{}
	p := NewProducerWithWriter(w, newTestProducerConfig(), nil)
	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	assert.Equal(t, 1, w.closed)

	assert.Equal(t, ErrProducerClosed, p.Publish(context.Background(), newTestProducerMessage("t", "k", "v")))
	_, err := p.PublishBatch(context.Background(), []*common.ProducerMessage{newTestProducerMessage("t", "k", "v")})
	assert.Equal(t, ErrProducerClosed, err)
}

//Personal.AI order the ending
