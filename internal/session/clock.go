package session

import (
	"sync"
	"time"
)

// Clock counts whole seconds of play. It can be stopped and restarted any
// number of times; the elapsed time carries over.
type Clock struct {
	mu        sync.Mutex
	base      time.Duration
	startedAt time.Time
	stop      chan struct{}
	now       func() time.Time
	interval  time.Duration
}

func NewClock() *Clock {
	return &Clock{now: time.Now, interval: time.Second}
}

// Reset stops the clock and sets it to elapsedSeconds.
func (c *Clock) Reset(elapsedSeconds int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
	c.base = time.Duration(max(elapsedSeconds, 0)) * time.Second
}

func (c *Clock) IsStopped() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stop == nil
}

// Start runs the clock and calls tick with the elapsed seconds once per
// second until Stop. It reports false if the clock was already running.
func (c *Clock) Start(tick func(elapsedSeconds int64)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stop != nil {
		return false
	}
	c.startedAt = c.now()
	stop := make(chan struct{})
	c.stop = stop

	go func() {
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if tick != nil {
					tick(c.Time())
				}
			}
		}
	}()
	return true
}

func (c *Clock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

func (c *Clock) stopLocked() {
	if c.stop == nil {
		return
	}
	close(c.stop)
	c.stop = nil
	c.base += c.now().Sub(c.startedAt)
}

// Time returns the elapsed whole seconds.
func (c *Clock) Time() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	d := c.base
	if c.stop != nil {
		d += c.now().Sub(c.startedAt)
	}
	return int64(d / time.Second)
}
