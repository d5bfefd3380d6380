// Package cache keeps rendered report payloads between writes so the
// read-heavy report endpoints do not hit the store on every request.
package cache

import "time"

// Evictable is implemented by caches the sweeper prunes.
type Evictable interface {
	EvictExpired() int
}

// Sweeper evicts expired entries from tracked caches on an interval.
// Expired entries are also dropped lazily on read; the sweeper only
// keeps memory bounded for keys that are never read again.
type Sweeper struct {
	tracked []Evictable
	done    chan struct{}
	stopped chan struct{}
}

func NewSweeper() *Sweeper {
	return &Sweeper{
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// Track registers a cache. Not safe to call after Run.
func (s *Sweeper) Track(c Evictable) {
	s.tracked = append(s.tracked, c)
}

// Run starts the sweep loop in a goroutine.
func (s *Sweeper) Run(interval time.Duration) {
	go func() {
		defer close(s.stopped)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				for _, c := range s.tracked {
					c.EvictExpired()
				}
			case <-s.done:
				return
			}
		}
	}()
}

// Stop ends the sweep loop and waits for it to exit.
func (s *Sweeper) Stop() {
	close(s.done)
	<-s.stopped
}
