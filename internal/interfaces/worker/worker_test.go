package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appkcf "github.com/turtacn/kcfgraph/internal/application/kcf"
	"github.com/turtacn/kcfgraph/internal/config"
	"github.com/turtacn/kcfgraph/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/kcfgraph/internal/infrastructure/monitoring/prometheus"
	pkgerrors "github.com/turtacn/kcfgraph/pkg/errors"
	"github.com/turtacn/kcfgraph/pkg/types/common"
)

const acetateKCF = "ENTRY       C00033                      Compound\n" +
	"ATOM        2\n" +
	"            1   C1a C    22.2500  -16.3000\n" +
	"            2   C5a C    23.4624  -15.6000\n" +
	"BOND        1\n" +
	"            1     1   2 1\n" +
	"///\n"

const brokenKCF = "ENTRY       X00001                      Compound\n" +
	"ATOM        1\n" +
	"            1   C1a C    22.2500\n" +
	"///\n"

type fakeProducer struct {
	mu     sync.Mutex
	msgs   []*common.ProducerMessage
	err    error
	closed bool
}

func (p *fakeProducer) Publish(_ context.Context, msg *common.ProducerMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, msg)
	return nil
}

func (p *fakeProducer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

func (p *fakeProducer) byTopic(topic string) []*common.ProducerMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []*common.ProducerMessage
	for _, m := range p.msgs {
		if m.Topic == topic {
			out = append(out, m)
		}
	}
	return out
}

type sliceReader struct {
	msgs chan kafkago.Message
}

func (r *sliceReader) FetchMessage(ctx context.Context) (kafkago.Message, error) {
	select {
	case m := <-r.msgs:
		return m, nil
	case <-ctx.Done():
		return kafkago.Message{}, ctx.Err()
	}
}

func (r *sliceReader) CommitMessages(context.Context, ...kafkago.Message) error { return nil }
func (r *sliceReader) Close() error                                              { return nil }

func testKafkaConfig() config.KafkaConfig {
	return config.KafkaConfig{
		Brokers:      []string{"localhost:9092"},
		GroupID:      "kcfgraph-test",
		InputTopic:   kafka.TopicKCFRecords,
		OutputTopic:  kafka.TopicKCFGraphs,
		DLQTopic:     kafka.TopicKCFRecordsDLQ,
		MaxRetries:   1,
		RetryBackoff: time.Millisecond,
	}
}

func newService() appkcf.Service {
	return appkcf.NewService(config.ParserConfig{}, config.BatchConfig{}, nil)
}

func TestRecordHandler_PublishesGraph(t *testing.T) {
	out := &fakeProducer{}
	h := NewRecordHandler(newService(), out, kafka.TopicKCFGraphs, prometheus.NewAppMetrics(prometheus.NewNopCollector()), nil)

	err := h.Handle(context.Background(), &common.Message{
		Topic:   kafka.TopicKCFRecords,
		Key:     []byte("rec-1"),
		Value:   []byte(acetateKCF),
		Headers: map[string]string{"trace_id": "abc"},
	})
	require.NoError(t, err)

	msgs := out.byTopic(kafka.TopicKCFGraphs)
	require.Len(t, msgs, 1)
	assert.Equal(t, "C00033", string(msgs[0].Key))
	assert.Equal(t, "abc", msgs[0].Headers["trace_id"])

	env, err := kafka.MessageToEventEnvelope(&common.Message{Value: msgs[0].Value})
	require.NoError(t, err)
	assert.Equal(t, kafka.EventGraphParsed, env.EventType)
	var payload kafka.GraphParsedPayload
	require.NoError(t, env.DecodePayload(&payload))
	assert.Equal(t, "rec-1", payload.RecordKey)
	assert.Equal(t, 2, payload.Graph.NumAtoms)
	assert.NotEmpty(t, payload.SourceHash)
}

func TestRecordHandler_MalformedIsPermanent(t *testing.T) {
	h := NewRecordHandler(newService(), &fakeProducer{}, kafka.TopicKCFGraphs, nil, nil)

	err := h.Handle(context.Background(), &common.Message{Topic: "t", Value: []byte(brokenKCF)})
	require.Error(t, err)
	assert.True(t, kafka.IsPermanent(err))
	assert.True(t, pkgerrors.IsFormatViolation(err))

	err = h.Handle(context.Background(), &common.Message{Topic: "t"})
	assert.True(t, kafka.IsPermanent(err))
}

func TestRecordHandler_PublishFailureRetryable(t *testing.T) {
	out := &fakeProducer{err: errors.New("broker unavailable")}
	h := NewRecordHandler(newService(), out, kafka.TopicKCFGraphs, nil, nil)

	err := h.Handle(context.Background(), &common.Message{Topic: "t", Value: []byte(acetateKCF)})
	require.Error(t, err)
	assert.False(t, kafka.IsPermanent(err))
}

func TestRecordName(t *testing.T) {
	assert.Equal(t, "k", recordName(&common.Message{Key: []byte("k")}))
	assert.Equal(t, "t/3/42", recordName(&common.Message{Topic: "t", Partition: 3, Offset: 42}))
}

func TestWorker_RunRoutesGoodAndBadRecords(t *testing.T) {
	cfg := testKafkaConfig()
	out := &fakeProducer{}
	metrics := prometheus.NewAppMetrics(prometheus.NewNopCollector())

	reader := &sliceReader{msgs: make(chan kafkago.Message, 2)}
	reader.msgs <- kafkago.Message{Topic: cfg.InputTopic, Offset: 0, Key: []byte("good"), Value: []byte(acetateKCF)}
	reader.msgs <- kafkago.Message{Topic: cfg.InputTopic, Offset: 1, Key: []byte("bad"), Value: []byte(brokenKCF)}

	consumer := kafka.NewConsumerWithReader(reader, ConsumerConfig(cfg), &deadLetterPublisher{Publisher: out, metrics: metrics}, nil)
	w := Assemble(consumer, out, cfg, newService(), metrics, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	assert.Eventually(t, func() bool {
		return len(out.byTopic(cfg.OutputTopic)) == 1 && len(out.byTopic(cfg.DLQTopic)) == 1
	}, 2*time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	dead := out.byTopic(cfg.DLQTopic)[0]
	assert.Equal(t, "bad", string(dead.Key))
	assert.Equal(t, string(pkgerrors.ErrCodeKCFFormatViolation), dead.Headers[kafka.HeaderErrorCode])
	assert.Equal(t, "1", dead.Headers[kafka.HeaderAttempts])
	assert.True(t, out.closed)
	assert.Equal(t, int64(1), w.Stats().MessagesDeadLettered)
}

func TestConsumerConfig(t *testing.T) {
	cc := ConsumerConfig(testKafkaConfig())
	assert.Equal(t, []string{kafka.TopicKCFRecords}, cc.Topics)
	assert.Equal(t, kafka.TopicKCFRecordsDLQ, cc.RetryConfig.DeadLetterTopic)
	assert.NoError(t, kafka.ValidateConsumerConfig(cc))
}

//Personal.AI order the ending
