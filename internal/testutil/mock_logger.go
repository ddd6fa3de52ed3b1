// Package testutil provides common test utilities for kcfgraph.
package testutil

import (
	"sync"

	"github.com/turtacn/kcfgraph/internal/infrastructure/monitoring/logging"
)

// MockLogger implements logging.Logger for testing purposes.
// It records log messages and can be used to verify logging behavior.
// Children made by With and Named record into the same buffer.
type MockLogger struct {
	sink   *sink
	name   string
	fields []logging.Field
}

type sink struct {
	mu       sync.Mutex
	messages []LogMessage
}

// LogMessage represents a single log entry captured by MockLogger.
// Fields holds the logger's bound fields followed by the call's fields.
type LogMessage struct {
	Level   string
	Logger  string
	Message string
	Fields  []logging.Field
}

// Field returns the first field with the given key.
func (m LogMessage) Field(key string) (logging.Field, bool) {
	for _, f := range m.Fields {
		if f.Key == key {
			return f, true
		}
	}
	return logging.Field{}, false
}

// NewMockLogger creates a new MockLogger instance.
func NewMockLogger() *MockLogger {
	return &MockLogger{sink: &sink{}}
}

func (m *MockLogger) log(level, msg string, fields []logging.Field) {
	all := make([]logging.Field, 0, len(m.fields)+len(fields))
	all = append(all, m.fields...)
	all = append(all, fields...)

	m.sink.mu.Lock()
	defer m.sink.mu.Unlock()
	m.sink.messages = append(m.sink.messages, LogMessage{
		Level:   level,
		Logger:  m.name,
		Message: msg,
		Fields:  all,
	})
}

func (m *MockLogger) Debug(msg string, fields ...logging.Field) {
	m.log("debug", msg, fields)
}

func (m *MockLogger) Info(msg string, fields ...logging.Field) {
	m.log("info", msg, fields)
}

func (m *MockLogger) Warn(msg string, fields ...logging.Field) {
	m.log("warn", msg, fields)
}

func (m *MockLogger) Error(msg string, fields ...logging.Field) {
	m.log("error", msg, fields)
}

// Fatal records the entry without exiting.
func (m *MockLogger) Fatal(msg string, fields ...logging.Field) {
	m.log("fatal", msg, fields)
}

func (m *MockLogger) With(fields ...logging.Field) logging.Logger {
	child := *m
	child.fields = append(append([]logging.Field(nil), m.fields...), fields...)
	return &child
}

func (m *MockLogger) Named(name string) logging.Logger {
	child := *m
	if child.name == "" {
		child.name = name
	} else {
		child.name += "." + name
	}
	return &child
}

func (m *MockLogger) Sync() error {
	return nil
}

// GetMessages returns a copy of all logged messages.
func (m *MockLogger) GetMessages() []LogMessage {
	m.sink.mu.Lock()
	defer m.sink.mu.Unlock()
	result := make([]LogMessage, len(m.sink.messages))
	copy(result, m.sink.messages)
	return result
}

// Clear removes all logged messages.
func (m *MockLogger) Clear() {
	m.sink.mu.Lock()
	defer m.sink.mu.Unlock()
	m.sink.messages = m.sink.messages[:0]
}

// HasMessage checks if a message with the given level and content was logged.
func (m *MockLogger) HasMessage(level, msg string) bool {
	_, ok := m.Find(level, msg)
	return ok
}

// Find returns the first message with the given level and content.
func (m *MockLogger) Find(level, msg string) (LogMessage, bool) {
	m.sink.mu.Lock()
	defer m.sink.mu.Unlock()
	for _, logged := range m.sink.messages {
		if logged.Level == level && logged.Message == msg {
			return logged, true
		}
	}
	return LogMessage{}, false
}

//Personal.AI order the ending
