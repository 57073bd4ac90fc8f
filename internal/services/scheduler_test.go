package services

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClearScheduler_RunsAfterDelay(t *testing.T) {
	s := NewClearScheduler(testLog)
	var ran atomic.Int32

	s.Schedule(20*time.Millisecond, func() { ran.Add(1) })
	assert.Equal(t, int32(0), ran.Load())
	assert.Equal(t, 1, s.Pending())

	require.Eventually(t, func() bool { return ran.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, s.Pending())
}

func TestClearScheduler_Cancel(t *testing.T) {
	s := NewClearScheduler(testLog)
	var ran atomic.Int32

	task := s.Schedule(20*time.Millisecond, func() { ran.Add(1) })
	assert.True(t, task.Cancel())
	assert.False(t, task.Cancel())
	assert.Equal(t, 0, s.Pending())

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), ran.Load())
}

func TestClearScheduler_FlushRunsPendingOnce(t *testing.T) {
	s := NewClearScheduler(testLog)
	var ran atomic.Int32

	task := s.Schedule(time.Hour, func() { ran.Add(1) })
	s.Schedule(time.Hour, func() { ran.Add(1) })

	require.NoError(t, s.Flush(context.Background()))
	assert.Equal(t, int32(2), ran.Load())
	assert.Equal(t, 0, s.Pending())
	assert.False(t, task.Cancel())

	require.NoError(t, s.Flush(context.Background()))
	assert.Equal(t, int32(2), ran.Load())
}

func TestClearScheduler_FlushHonoursContext(t *testing.T) {
	s := NewClearScheduler(testLog)
	s.Schedule(time.Hour, func() {})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Flush(ctx), context.Canceled)
	assert.Equal(t, 1, s.Pending())
}
