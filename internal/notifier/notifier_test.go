package notifier

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunner_RunsEnqueuedTasks(t *testing.T) {
	logger, _ := test.NewNullLogger()
	runner := NewRunner(logger, 8)

	var ran atomic.Int32
	for i := 0; i < 5; i++ {
		runner.Enqueue("count", func(ctx context.Context) error {
			ran.Add(1)
			return nil
		})
	}

	runner.Close()
	assert.Equal(t, int32(5), ran.Load())
}

func TestRunner_TaskFailureIsLoggedNotSurfaced(t *testing.T) {
	logger, hook := test.NewNullLogger()
	runner := NewRunner(logger, 8)

	// Enqueue never reports the task's error back to the caller.
	runner.Enqueue("broken", func(ctx context.Context) error {
		return errors.New("smtp unreachable")
	})

	runner.Close()

	require.NotEmpty(t, hook.Entries)
	entry := hook.LastEntry()
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Equal(t, "Deferred task failed", entry.Message)
	assert.Equal(t, "broken", entry.Data["task"])
}

func TestRunner_FailureDoesNotStopLaterTasks(t *testing.T) {
	logger, _ := test.NewNullLogger()
	runner := NewRunner(logger, 8)

	var ran atomic.Bool
	runner.Enqueue("broken", func(ctx context.Context) error {
		return errors.New("boom")
	})
	runner.Enqueue("after", func(ctx context.Context) error {
		ran.Store(true)
		return nil
	})

	runner.Close()
	assert.True(t, ran.Load())
}

func TestRunner_EnqueueAfterCloseIsDropped(t *testing.T) {
	logger, hook := test.NewNullLogger()
	runner := NewRunner(logger, 8)
	runner.Close()

	runner.Enqueue("late", func(ctx context.Context) error {
		t.Error("task should not run after close")
		return nil
	})

	require.NotEmpty(t, hook.Entries)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestRunner_CloseIsIdempotent(t *testing.T) {
	logger, _ := test.NewNullLogger()
	runner := NewRunner(logger, 8)

	runner.Close()
	runner.Close()
}
