package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/turtacn/kcfgraph/pkg/errors"
	"github.com/turtacn/kcfgraph/pkg/types/common"
)

// chanReader feeds queued messages, then blocks until ctx is cancelled.
type chanReader struct {
	msgs chan kafka.Message

	mu        sync.Mutex
	committed []int64
	closed    bool
}

func newChanReader(msgs ...kafka.Message) *chanReader {
	r := &chanReader{msgs: make(chan kafka.Message, len(msgs))}
	for _, m := range msgs {
		r.msgs <- m
	}
	return r
}

func (r *chanReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	select {
	case m := <-r.msgs:
		return m, nil
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	}
}

func (r *chanReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *chanReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *chanReader) commits() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.committed...)
}

// recordingPublisher captures dead-lettered messages.
type recordingPublisher struct {
	mu   sync.Mutex
	msgs []*common.ProducerMessage
	err  error
}

func (p *recordingPublisher) Publish(_ context.Context, msg *common.ProducerMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, msg)
	return nil
}

func (p *recordingPublisher) published() []*common.ProducerMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*common.ProducerMessage(nil), p.msgs...)
}

func newTestConsumerConfig() ConsumerConfig {
	return ConsumerConfig{
		Brokers: []string{"localhost:9092"},
		GroupID: "test-group",
		Topics:  []string{TopicKCFRecords},
		RetryConfig: RetryConfig{
			MaxRetries:      2,
			RetryBackoff:    time.Millisecond,
			MaxRetryBackoff: 2 * time.Millisecond,
			DeadLetterTopic: TopicKCFRecordsDLQ,
		},
	}
}

func recordMessage(offset int64, value string) kafka.Message {
	return kafka.Message{
		Topic:     TopicKCFRecords,
		Partition: 2,
		Offset:    offset,
		Key:       []byte("C00033"),
		Value:     []byte(value),
		Headers:   []kafka.Header{{Key: "trace_id", Value: []byte("t-1")}},
	}
}

func TestValidateConsumerConfig(t *testing.T) {
	assert.NoError(t, ValidateConsumerConfig(newTestConsumerConfig()))

	cases := map[string]func(*ConsumerConfig){
		"no brokers":   func(c *ConsumerConfig) { c.Brokers = nil },
		"no group":     func(c *ConsumerConfig) { c.GroupID = "" },
		"no topics":    func(c *ConsumerConfig) { c.Topics = nil },
		"bad offset":   func(c *ConsumerConfig) { c.StartOffset = "middle" },
		"neg. retries": func(c *ConsumerConfig) { c.RetryConfig.MaxRetries = -1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := newTestConsumerConfig()
			mutate(&cfg)
			err := ValidateConsumerConfig(cfg)
			assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeValidation))
		})
	}
}

func TestNewConsumer_InvalidConfig(t *testing.T) {
	_, err := NewConsumer(ConsumerConfig{}, nil, nil)
	assert.Error(t, err)
}

func TestConsumer_ProcessesAndCommits(t *testing.T) {
	reader := newChanReader(recordMessage(10, "a"), recordMessage(11, "b"))
	c := NewConsumerWithReader(reader, newTestConsumerConfig(), nil, nil)

	var mu sync.Mutex
	var seen []string
	c.Subscribe(TopicKCFRecords, func(_ context.Context, msg *common.Message) error {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, string(msg.Value))
		assert.Equal(t, "t-1", msg.Headers["trace_id"])
		assert.Equal(t, 2, msg.Partition)
		return nil
	})

	require.NoError(t, c.Start(context.Background()))
	assert.Eventually(t, func() bool { return c.Stats().MessagesProcessed == 2 }, time.Second, 5*time.Millisecond)
	require.NoError(t, c.Close())

	assert.Equal(t, []string{"a", "b"}, seen)
	assert.Equal(t, []int64{10, 11}, reader.commits())
	assert.True(t, reader.closed)
}

func TestConsumer_StartTwice(t *testing.T) {
	c := NewConsumerWithReader(newChanReader(), newTestConsumerConfig(), nil, nil)
	require.NoError(t, c.Start(context.Background()))
	defer c.Close()
	assert.Equal(t, ErrAlreadyRunning, c.Start(context.Background()))
}

func TestConsumer_RetryThenSucceed(t *testing.T) {
	reader := newChanReader(recordMessage(1, "x"))
	dlq := &recordingPublisher{}
	c := NewConsumerWithReader(reader, newTestConsumerConfig(), dlq, nil)

	calls := 0
	c.Subscribe(TopicKCFRecords, func(context.Context, *common.Message) error {
		calls++
		if calls < 2 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, c.Start(context.Background()))
	assert.Eventually(t, func() bool { return c.Stats().MessagesProcessed == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, c.Close())

	assert.Equal(t, 2, calls)
	assert.Equal(t, int64(1), c.Stats().MessagesRetried)
	assert.Empty(t, dlq.published())
}

func TestConsumer_ExhaustedGoesToDeadLetter(t *testing.T) {
	reader := newChanReader(recordMessage(7, "bad"))
	dlq := &recordingPublisher{}
	c := NewConsumerWithReader(reader, newTestConsumerConfig(), dlq, nil)

	calls := 0
	c.Subscribe(TopicKCFRecords, func(context.Context, *common.Message) error {
		calls++
		return pkgerrors.New(pkgerrors.ErrCodeStorageError, "object store down")
	})

	require.NoError(t, c.Start(context.Background()))
	assert.Eventually(t, func() bool { return c.Stats().MessagesDeadLettered == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, c.Close())

	assert.Equal(t, 3, calls)
	out := dlq.published()
	require.Len(t, out, 1)
	assert.Equal(t, TopicKCFRecordsDLQ, out[0].Topic)
	assert.Equal(t, "bad", string(out[0].Value))
	assert.Equal(t, TopicKCFRecords, out[0].Headers[HeaderOriginalTopic])
	assert.Equal(t, "2", out[0].Headers[HeaderOriginalPartition])
	assert.Equal(t, "7", out[0].Headers[HeaderOriginalOffset])
	assert.Equal(t, string(pkgerrors.ErrCodeStorageError), out[0].Headers[HeaderErrorCode])
	assert.Equal(t, "3", out[0].Headers[HeaderAttempts])
	assert.Equal(t, "t-1", out[0].Headers["trace_id"])
	assert.Equal(t, []int64{7}, reader.commits())
}

func TestConsumer_PermanentSkipsRetries(t *testing.T) {
	reader := newChanReader(recordMessage(3, "ATOM"))
	dlq := &recordingPublisher{}
	c := NewConsumerWithReader(reader, newTestConsumerConfig(), dlq, nil)

	calls := 0
	c.Subscribe(TopicKCFRecords, func(context.Context, *common.Message) error {
		calls++
		return Permanent(pkgerrors.FormatViolation("ATOM line has too few fields").WithDetail("line 2"))
	})

	require.NoError(t, c.Start(context.Background()))
	assert.Eventually(t, func() bool { return c.Stats().MessagesDeadLettered == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, c.Close())

	assert.Equal(t, 1, calls)
	assert.Zero(t, c.Stats().MessagesRetried)
	out := dlq.published()
	require.Len(t, out, 1)
	assert.Equal(t, string(pkgerrors.ErrCodeKCFFormatViolation), out[0].Headers[HeaderErrorCode])
	assert.Equal(t, "line 2", out[0].Headers[HeaderErrorDetail])
}

func TestConsumer_DeadLetterFailureStillCommits(t *testing.T) {
	reader := newChanReader(recordMessage(5, "v"))
	dlq := &recordingPublisher{err: errors.New("broker down")}
	c := NewConsumerWithReader(reader, newTestConsumerConfig(), dlq, nil)
	c.Subscribe(TopicKCFRecords, func(context.Context, *common.Message) error {
		return Permanent(errors.New("nope"))
	})

	require.NoError(t, c.Start(context.Background()))
	assert.Eventually(t, func() bool { return len(reader.commits()) == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, c.Close())
	assert.Zero(t, c.Stats().MessagesDeadLettered)
	assert.Equal(t, int64(1), c.Stats().MessagesFailed)
}

func TestConsumer_UnknownTopicCommitted(t *testing.T) {
	m := recordMessage(9, "v")
	m.Topic = "other"
	reader := newChanReader(m)
	c := NewConsumerWithReader(reader, newTestConsumerConfig(), nil, nil)

	require.NoError(t, c.Start(context.Background()))
	assert.Eventually(t, func() bool { return len(reader.commits()) == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, c.Close())
	assert.Zero(t, c.Stats().MessagesProcessed)
}

func TestConsumer_CloseIdempotent(t *testing.T) {
	c := NewConsumerWithReader(newChanReader(), newTestConsumerConfig(), nil, nil)
	assert.NoError(t, c.Close())
	require.NoError(t, c.Start(context.Background()))
	assert.NoError(t, c.Close())
	assert.NoError(t, c.Close())
}

func TestPermanent(t *testing.T) {
	assert.Nil(t, Permanent(nil))
	base := pkgerrors.FormatViolation("bad")
	err := Permanent(base)
	assert.True(t, IsPermanent(err))
	assert.False(t, IsPermanent(base))
	assert.True(t, pkgerrors.IsFormatViolation(err))
	assert.Equal(t, base.Error(), err.Error())
}

func TestDeadLetterMessage_CopiesHeaders(t *testing.T) {
	msg := &common.Message{Topic: "t", Offset: 1, Value: []byte("v"), Headers: map[string]string{"k": "v"}}
	dl := DeadLetterMessage("t.dlq", msg, errors.New("plain"), 1)

	dl.Headers["k"] = "changed"
	assert.Equal(t, "v", msg.Headers["k"])
	assert.Equal(t, string(pkgerrors.CodeUnknown), dl.Headers[HeaderErrorCode])
	assert.Equal(t, "plain", dl.Headers[HeaderErrorMessage])
}

//Personal.AI order the ending
