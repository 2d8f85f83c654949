package schedule

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAfterCancel(t *testing.T) {
	var fired atomic.Int32
	h := After(time.Hour, func() { fired.Add(1) })
	require.True(t, h.Cancel())
	require.False(t, h.Cancel())
	require.Zero(t, fired.Load())
}

func TestDebouncerCoalesces(t *testing.T) {
	var fired atomic.Int32
	done := make(chan struct{}, 4)
	d := NewDebouncer(20*time.Millisecond, func() {
		fired.Add(1)
		done <- struct{}{}
	})
	for i := 0; i < 5; i++ {
		d.Trigger()
	}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("debounced call never ran")
	}
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, int32(1), fired.Load())
}

func TestDebouncerCancel(t *testing.T) {
	var fired atomic.Int32
	d := NewDebouncer(10*time.Millisecond, func() { fired.Add(1) })
	d.Trigger()
	d.Cancel()
	time.Sleep(40 * time.Millisecond)
	require.Zero(t, fired.Load())
}

func TestThrottler(t *testing.T) {
	now := time.Unix(100, 0)
	th := NewThrottler(time.Second)
	th.now = func() time.Time { return now }

	require.True(t, th.Allow())
	require.False(t, th.Allow())
	now = now.Add(999 * time.Millisecond)
	require.False(t, th.Allow())
	now = now.Add(time.Millisecond)
	require.True(t, th.Allow())
}
