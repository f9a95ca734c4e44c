package carousel

import (
	"errors"
	"sync"
	"time"
)

// ErrClosed is returned when starting a controller after Close.
var ErrClosed = errors.New("carousel: controller closed")

// Controller runs a task every interval until closed. Two independent holds
// suspend it: an open-ended hold (Pause/Resume) and a timed cooldown
// (PauseFor). The task does not run while either hold is active, and the
// interval restarts once both are released. At most one cooldown timer is
// pending at any time.
type Controller struct {
	sched    Scheduler
	interval time.Duration
	task     func()

	mu      sync.Mutex
	running bool
	closed  bool
	held    bool
	cooling bool
	tick    Timer
	resume  Timer
	tickGen uint64
	coolGen uint64
}

// NewController prepares a controller; nothing is scheduled before Start.
func NewController(sched Scheduler, interval time.Duration, task func()) (*Controller, error) {
	if interval <= 0 {
		return nil, errors.New("carousel: interval must be positive")
	}
	if task == nil {
		return nil, errors.New("carousel: task is required")
	}
	if sched == nil {
		sched = RealScheduler()
	}
	return &Controller{sched: sched, interval: interval, task: task}, nil
}

func (c *Controller) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if c.running {
		return nil
	}
	c.running = true
	c.rescheduleLocked()
	return nil
}

// Pause holds the task until Resume, regardless of any cooldown.
func (c *Controller) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.held = true
	c.rescheduleLocked()
}

// Resume releases the open-ended hold.
func (c *Controller) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.held = false
	c.rescheduleLocked()
}

// PauseFor suspends the task for d, replacing any cooldown still pending.
func (c *Controller) PauseFor(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.stopResumeLocked()
	if d <= 0 {
		c.cooling = false
		c.rescheduleLocked()
		return
	}
	c.cooling = true
	gen := c.coolGen
	c.resume = c.sched.AfterFunc(d, func() { c.endCooldown(gen) })
	c.rescheduleLocked()
}

// Paused reports whether either hold is active.
func (c *Controller) Paused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.held || c.cooling
}

// CooldownPending reports whether a resume timer is scheduled.
func (c *Controller) CooldownPending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resume != nil
}

// Close cancels the interval and any pending cooldown. It is idempotent.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.running = false
	c.stopTickLocked()
	c.stopResumeLocked()
}

func (c *Controller) endCooldown(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.coolGen || c.closed {
		return
	}
	c.resume = nil
	c.cooling = false
	c.rescheduleLocked()
}

func (c *Controller) fire(gen uint64) {
	c.mu.Lock()
	if gen != c.tickGen || !c.running || c.held || c.cooling {
		c.mu.Unlock()
		return
	}
	c.tick = nil
	c.scheduleTickLocked()
	c.mu.Unlock()

	c.task()
}

// rescheduleLocked makes the tick timer match the current state: pending when
// running and unheld, absent otherwise. A running tick is left untouched.
func (c *Controller) rescheduleLocked() {
	if !c.running || c.closed || c.held || c.cooling {
		c.stopTickLocked()
		return
	}
	if c.tick == nil {
		c.scheduleTickLocked()
	}
}

func (c *Controller) scheduleTickLocked() {
	gen := c.tickGen
	c.tick = c.sched.AfterFunc(c.interval, func() { c.fire(gen) })
}

func (c *Controller) stopTickLocked() {
	if c.tick != nil {
		c.tick.Stop()
		c.tick = nil
	}
	c.tickGen++
}

func (c *Controller) stopResumeLocked() {
	if c.resume != nil {
		c.resume.Stop()
		c.resume = nil
	}
	c.coolGen++
}
