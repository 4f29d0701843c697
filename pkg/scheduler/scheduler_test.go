// Test Type: Unit Test
// Description: Tests for debouncing, keyed coalescing and activity settle waits

package scheduler_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/arthur-debert/dodex/pkg/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebouncer(t *testing.T) {
	t.Run("coalesces_rapid_triggers", func(t *testing.T) {
		d := scheduler.NewDebouncer(30 * time.Millisecond)
		var calls, last int32
		for i := int32(1); i <= 5; i++ {
			i := i
			d.Trigger(func() {
				atomic.AddInt32(&calls, 1)
				atomic.StoreInt32(&last, i)
			})
		}
		assert.Eventually(t, func() bool { return atomic.LoadInt32(&calls) == 1 }, time.Second, 5*time.Millisecond)
		time.Sleep(60 * time.Millisecond)
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
		assert.Equal(t, int32(5), atomic.LoadInt32(&last), "the latest function wins")
	})

	t.Run("cancel_drops_pending", func(t *testing.T) {
		d := scheduler.NewDebouncer(20 * time.Millisecond)
		var calls int32
		d.Trigger(func() { atomic.AddInt32(&calls, 1) })
		require.True(t, d.Pending())
		d.Cancel()
		assert.False(t, d.Pending())
		time.Sleep(50 * time.Millisecond)
		assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
	})

	t.Run("flush_runs_now_once", func(t *testing.T) {
		d := scheduler.NewDebouncer(time.Hour)
		var calls int32
		d.Trigger(func() { atomic.AddInt32(&calls, 1) })
		d.Flush()
		d.Flush()
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	})
}

func TestCoalescer(t *testing.T) {
	t.Run("keys_are_independent", func(t *testing.T) {
		c := scheduler.NewCoalescer()
		defer c.Stop()
		var a, b int32
		for i := 0; i < 3; i++ {
			c.Schedule("a", 20*time.Millisecond, func() { atomic.AddInt32(&a, 1) })
			c.Schedule("b", 20*time.Millisecond, func() { atomic.AddInt32(&b, 1) })
		}
		assert.Eventually(t, func() bool {
			return atomic.LoadInt32(&a) == 1 && atomic.LoadInt32(&b) == 1
		}, time.Second, 5*time.Millisecond)
	})

	t.Run("flush_and_pending", func(t *testing.T) {
		c := scheduler.NewCoalescer()
		defer c.Stop()
		var calls int32
		c.Schedule("save", time.Hour, func() { atomic.AddInt32(&calls, 1) })
		assert.True(t, c.Pending("save"))
		c.Flush("save")
		assert.False(t, c.Pending("save"))
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
		c.Flush("missing")
	})

	t.Run("stop_cancels_everything", func(t *testing.T) {
		c := scheduler.NewCoalescer()
		var calls int32
		c.Schedule("x", 10*time.Millisecond, func() { atomic.AddInt32(&calls, 1) })
		c.Stop()
		c.Schedule("x", 10*time.Millisecond, func() { atomic.AddInt32(&calls, 1) })
		time.Sleep(40 * time.Millisecond)
		assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
	})
}

func TestActivity(t *testing.T) {
	t.Run("no_activity_returns_immediately", func(t *testing.T) {
		a := scheduler.NewActivity()
		assert.True(t, a.Last().IsZero())
		start := time.Now()
		require.NoError(t, a.WaitSettled(context.Background(), time.Second))
		assert.Less(t, time.Since(start), 100*time.Millisecond)
	})

	t.Run("waits_for_window_after_touch", func(t *testing.T) {
		a := scheduler.NewActivity()
		a.Touch()
		start := time.Now()
		require.NoError(t, a.WaitSettled(context.Background(), 40*time.Millisecond))
		assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
	})

	t.Run("context_cancellation", func(t *testing.T) {
		a := scheduler.NewActivity()
		a.Touch()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.ErrorIs(t, a.WaitSettled(ctx, time.Hour), context.Canceled)
	})
}
