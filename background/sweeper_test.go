package background

import (
	"sync"
	"testing"
	"time"
)

// countingStore records Sweep calls so the test can observe ticks.
type countingStore struct {
	mu     sync.Mutex
	sweeps int
}

func (c *countingStore) Start(userID int) string          { return "" }
func (c *countingStore) Resolve(token string) (int, bool) { return 0, false }
func (c *countingStore) End(token string)                 {}

func (c *countingStore) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sweeps++
	return 0
}

func (c *countingStore) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sweeps
}

func TestSweeperRunsAndStops(t *testing.T) {
	store := &countingStore{}
	stopChan := make(chan struct{})

	wg := StartSessionSweeper(store, 5*time.Millisecond, stopChan)

	// Give the ticker a few intervals to fire.
	deadline := time.After(2 * time.Second)
	for store.count() == 0 {
		select {
		case <-deadline:
			t.Fatal("sweeper never swept")
		case <-time.After(5 * time.Millisecond):
		}
	}

	close(stopChan)

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not stop after stopChan was closed")
	}
}
