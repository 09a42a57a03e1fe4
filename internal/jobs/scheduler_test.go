package jobs

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSweeper struct {
	calls atomic.Int32
}

func (c *countingSweeper) SweepIdleSessions(context.Context, time.Time) int {
	c.calls.Add(1)
	return 1
}

func TestScheduler_RejectsBadSchedule(t *testing.T) {
	s := NewScheduler(&countingSweeper{}, "not a schedule")
	assert.Error(t, s.Start(context.Background()))
}

func TestScheduler_RunsSweep(t *testing.T) {
	sw := &countingSweeper{}
	s := NewScheduler(sw, "@every 1s")
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	assert.Eventually(t, func() bool { return sw.calls.Load() > 0 }, 5*time.Second, 50*time.Millisecond)
}

func TestScheduler_SkipsAfterCancel(t *testing.T) {
	sw := &countingSweeper{}
	s := NewScheduler(sw, "@every 1s")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s.sweep(ctx)
	assert.Zero(t, sw.calls.Load())

	s.sweep(context.Background())
	assert.Equal(t, int32(1), sw.calls.Load())
}
