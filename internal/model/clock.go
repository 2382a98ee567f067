package model

import (
	"sync"
	"time"
)

// Clock accumulates one side's thinking time. There is no time control; the
// totals only feed the game duration.
type Clock struct {
	mu          sync.Mutex
	used        time.Duration
	lastStarted time.Time
	isRunning   bool
	now         func() time.Time
}

func NewClock() *Clock {
	return &Clock{now: time.Now}
}

func (c *Clock) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.isRunning {
		c.lastStarted = c.now()
		c.isRunning = true
	}
}

func (c *Clock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.isRunning {
		c.used += c.now().Sub(c.lastStarted)
		c.isRunning = false
	}
}

func (c *Clock) Elapsed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.isRunning {
		return c.used + c.now().Sub(c.lastStarted)
	}
	return c.used
}
