// Package carousel implements the auto-advancing showcase: an active index
// over a fixed item count that moves on a timer and yields to the visitor.
package carousel

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

const (
	DefaultInterval = 4 * time.Second
	DefaultCooldown = 8 * time.Second
)

var ErrNoItems = errors.New("carousel: at least one item is required")

// Config tunes a Carousel. Zero durations take the defaults.
type Config struct {
	Interval  time.Duration
	Cooldown  time.Duration
	Scheduler Scheduler
	// OnChange is called with the new index after every change, outside
	// the carousel's lock.
	OnChange func(index int)
}

func (cfg Config) withDefaults() Config {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = DefaultCooldown
	}
	return cfg
}

// State is a snapshot of a carousel, as handed to the client script.
type State struct {
	Count    int
	Active   int
	Interval time.Duration
	Cooldown time.Duration
	// AutoAdvance is false when there is only one item.
	AutoAdvance bool
}

// InitialState is the state New(n, cfg) starts in, without creating timers.
func InitialState(n int, cfg Config) (State, error) {
	if n < 1 {
		return State{}, ErrNoItems
	}
	cfg = cfg.withDefaults()
	return State{Count: n, Interval: cfg.Interval, Cooldown: cfg.Cooldown, AutoAdvance: n > 1}, nil
}

// Carousel tracks the active slide of n items.
type Carousel struct {
	n        int
	interval time.Duration
	cooldown time.Duration
	onChange func(int)
	ctrl     *Controller

	mu       sync.Mutex
	active   int
	hovering bool
}

func New(n int, cfg Config) (*Carousel, error) {
	if n < 1 {
		return nil, ErrNoItems
	}
	cfg = cfg.withDefaults()
	c := &Carousel{n: n, interval: cfg.Interval, cooldown: cfg.Cooldown, onChange: cfg.OnChange}
	ctrl, err := NewController(cfg.Scheduler, cfg.Interval, c.advance)
	if err != nil {
		return nil, err
	}
	c.ctrl = ctrl
	return c, nil
}

// Start begins auto-advance. A single item never advances.
func (c *Carousel) Start() error {
	if c.n < 2 {
		return nil
	}
	return c.ctrl.Start()
}

func (c *Carousel) Len() int { return c.n }

func (c *Carousel) Active() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

func (c *Carousel) State() State {
	return State{Count: c.n, Active: c.Active(), Interval: c.interval, Cooldown: c.cooldown, AutoAdvance: c.n > 1}
}

// Paused reports whether hover or a cooldown currently holds auto-advance.
func (c *Carousel) Paused() bool { return c.ctrl.Paused() }

// Next is the visitor's "next" control; it wraps and starts a cooldown.
func (c *Carousel) Next() { c.manual(func(i int) int { return (i + 1) % c.n }) }

// Prev is the visitor's "previous" control; it wraps and starts a cooldown.
func (c *Carousel) Prev() { c.manual(func(i int) int { return (i - 1 + c.n) % c.n }) }

// Select jumps to index, as when a dot or thumbnail is clicked.
func (c *Carousel) Select(index int) error {
	if index < 0 || index >= c.n {
		return fmt.Errorf("carousel: index %d out of range [0,%d)", index, c.n)
	}
	c.manual(func(int) int { return index })
	return nil
}

func (c *Carousel) HoverStart() {
	c.mu.Lock()
	if c.hovering {
		c.mu.Unlock()
		return
	}
	c.hovering = true
	c.mu.Unlock()
	c.ctrl.Pause()
}

func (c *Carousel) HoverEnd() {
	c.mu.Lock()
	if !c.hovering {
		c.mu.Unlock()
		return
	}
	c.hovering = false
	c.mu.Unlock()
	c.ctrl.Resume()
}

// Close stops auto-advance and cancels the pending cooldown.
func (c *Carousel) Close() { c.ctrl.Close() }

func (c *Carousel) manual(next func(int) int) {
	c.mu.Lock()
	c.active = next(c.active)
	active := c.active
	c.mu.Unlock()

	c.ctrl.PauseFor(c.cooldown)
	c.notify(active)
}

func (c *Carousel) advance() {
	c.mu.Lock()
	c.active = (c.active + 1) % c.n
	active := c.active
	c.mu.Unlock()
	c.notify(active)
}

func (c *Carousel) notify(active int) {
	if c.onChange != nil {
		c.onChange(active)
	}
}
