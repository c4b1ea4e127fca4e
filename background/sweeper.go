// Package background contains services that run independently of the HTTP
// request-response cycle. The only worker here is the session sweeper, which
// periodically evicts expired sessions from the store.
package background

import (
	"log"
	"sync"
	"time"

	"github.com/user/tareas-go/sessions"
)

// StartSessionSweeper launches a goroutine that calls store.Sweep on every
// tick until stopChan is closed. The returned WaitGroup lets the caller wait
// for the sweeper to finish during graceful shutdown.
func StartSessionSweeper(store sessions.Store, interval time.Duration, stopChan <-chan struct{}) *sync.WaitGroup {
	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		log.Printf("session sweeper started (interval %s)", interval)
		for {
			select {
			case <-ticker.C:
				if removed := store.Sweep(); removed > 0 {
					log.Printf("session sweeper evicted %d expired session(s)", removed)
				}
			case <-stopChan:
				log.Println("session sweeper stopping")
				return
			}
		}
	}()

	return &wg
}
