// Package common holds the broker message types shared by the Kafka
// infrastructure and the stream worker.
package common

import (
	"context"
	"time"
)

// Message is a record received from the broker.
type Message struct {
	Topic     string            `json:"topic"`
	Partition int               `json:"partition"`
	Offset    int64             `json:"offset"`
	Key       []byte            `json:"key,omitempty"`
	Value     []byte            `json:"value"`
	Headers   map[string]string `json:"headers,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// ProducerMessage is a record to publish.
type ProducerMessage struct {
	Topic     string            `json:"topic"`
	Key       []byte            `json:"key,omitempty"`
	Value     []byte            `json:"value"`
	Headers   map[string]string `json:"headers,omitempty"`
	Timestamp time.Time         `json:"timestamp,omitempty"`
}

// MessageHandler processes one received message.  A returned error makes
// the consumer retry and eventually dead-letter the message.
type MessageHandler func(ctx context.Context, msg *Message) error

//Personal.AI order the ending
