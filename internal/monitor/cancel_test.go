package monitor

import (
	"sync"
	"testing"
)

func TestCanceller(t *testing.T) {
	t.Run("GivenNewCanceller_WhenChecked_ThenNotCancelled", func(t *testing.T) {
		c := NewCanceller()
		if c.Cancelled() {
			t.Error("Cancelled() = true, want false")
		}
		select {
		case <-c.Done():
			t.Error("Done() closed before Cancel")
		default:
		}
	})

	t.Run("GivenCancelled_WhenCancelledAgain_ThenNoEffect", func(t *testing.T) {
		c := NewCanceller()
		c.Cancel()
		c.Cancel()

		if !c.Cancelled() {
			t.Error("Cancelled() = false, want true")
		}
		select {
		case <-c.Done():
		default:
			t.Error("Done() should be closed")
		}
	})

	t.Run("GivenManyGoroutines_WhenAllCancel_ThenNoPanic", func(t *testing.T) {
		c := NewCanceller()
		var wg sync.WaitGroup
		for range 16 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				c.Cancel()
			}()
		}
		wg.Wait()
		if !c.Cancelled() {
			t.Error("Cancelled() = false, want true")
		}
	})
}
