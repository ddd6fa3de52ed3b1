package testutil_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/kcfgraph/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/kcfgraph/internal/testutil"
)

func TestMockLogger(t *testing.T) {
	logger := testutil.NewMockLogger()

	logger.Info("test info", logging.String("key", "value"))

	messages := logger.GetMessages()
	assert.Len(t, messages, 1)
	assert.Equal(t, "info", messages[0].Level)
	assert.Equal(t, "test info", messages[0].Message)

	logger.Clear()
	assert.Len(t, logger.GetMessages(), 0)

	logger.Error("test error")
	assert.True(t, logger.HasMessage("error", "test error"))
	assert.False(t, logger.HasMessage("info", "test info"))
}

func TestMockLogger_ChildrenShareBuffer(t *testing.T) {
	logger := testutil.NewMockLogger()
	child := logger.Named("kcf").With(logging.String("batch_id", "b1"))
	child.Named("worker").Warn("slow record", logging.Int("atoms", 12))
	logger.Debug("root entry")

	msg, ok := logger.Find("warn", "slow record")
	require.True(t, ok)
	assert.Equal(t, "kcf.worker", msg.Logger)
	f, ok := msg.Field("batch_id")
	require.True(t, ok)
	assert.Equal(t, "b1", f.Value)
	_, ok = msg.Field("atoms")
	assert.True(t, ok)

	root, ok := logger.Find("debug", "root entry")
	require.True(t, ok)
	assert.Empty(t, root.Fields)
}

//Personal.AI order the ending
