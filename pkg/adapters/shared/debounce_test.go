package shared

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncer(t *testing.T) {
	t.Run("Coalesces Bursts Per Key", func(t *testing.T) {
		d := newDebouncer(20 * time.Millisecond)
		var a, b atomic.Int32

		for range 5 {
			d.add("a", func() { a.Add(1) })
		}
		d.add("b", func() { b.Add(1) })

		time.Sleep(100 * time.Millisecond)
		if got := a.Load(); got != 1 {
			t.Errorf("Expected 1 call for key a, got %d", got)
		}
		if got := b.Load(); got != 1 {
			t.Errorf("Expected 1 call for key b, got %d", got)
		}
		if !d.stopAndWait(time.Second) {
			t.Error("stopAndWait timed out")
		}
	})

	t.Run("Stop Drops Pending Calls", func(t *testing.T) {
		d := newDebouncer(time.Hour)
		var calls atomic.Int32
		d.add("a", func() { calls.Add(1) })

		if !d.stopAndWait(time.Second) {
			t.Fatal("stopAndWait timed out")
		}
		d.add("a", func() { calls.Add(1) })
		if got := calls.Load(); got != 0 {
			t.Errorf("Expected no calls after stop, got %d", got)
		}
	})
}
