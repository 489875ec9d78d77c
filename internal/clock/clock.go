// Package clock provides the adaptive wall-clock tick that drives growth
// re-evaluation. Ticks never touch economy state; listeners only read.
package clock

import (
	"context"
	"sync"
	"time"

	"github.com/osse101/idlegarden/internal/logger"
)

// NextFunc reports the nearest upcoming completion, if any
type NextFunc func(now time.Time) (time.Time, bool)

// Listener is invoked on every tick
type Listener func(now time.Time)

// Config controls interval bounds
type Config struct {
	IdleInterval time.Duration
	MinInterval  time.Duration
}

// GrowthClock ticks slowly while idle and tightens as the nearest completion approaches.
type GrowthClock struct {
	cfg  Config
	now  func() time.Time
	next NextFunc

	mu        sync.RWMutex
	listeners []Listener

	poke chan struct{}
}

// New creates a GrowthClock. A nil now means time.Now.
func New(cfg Config, now func() time.Time, next NextFunc) *GrowthClock {
	if cfg.IdleInterval <= 0 {
		cfg.IdleInterval = DefaultIdleInterval
	}
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = DefaultMinInterval
	}
	if now == nil {
		now = time.Now
	}
	return &GrowthClock{
		cfg:  cfg,
		now:  now,
		next: next,
		poke: make(chan struct{}, 1),
	}
}

// OnTick registers a listener
func (c *GrowthClock) OnTick(l Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, l)
}

// Poke forces an immediate tick and interval recalculation, e.g. after a plant or harvest.
func (c *GrowthClock) Poke() {
	select {
	case c.poke <- struct{}{}:
	default:
	}
}

// Interval returns the delay before the next tick at now.
func (c *GrowthClock) Interval(now time.Time) time.Duration {
	if c.next == nil {
		return c.cfg.IdleInterval
	}
	at, ok := c.next(now)
	if !ok {
		return c.cfg.IdleInterval
	}
	return Interval(at.Sub(now), c.cfg)
}

// Interval maps the time remaining until the nearest completion to a tick interval.
func Interval(remaining time.Duration, cfg Config) time.Duration {
	idle := cfg.IdleInterval
	if idle <= 0 {
		idle = DefaultIdleInterval
	}
	minimum := cfg.MinInterval
	if minimum <= 0 {
		minimum = DefaultMinInterval
	}

	var d time.Duration
	switch {
	case remaining > FarThreshold:
		d = FarInterval
	case remaining > NearThreshold:
		d = NearInterval
	default:
		d = minimum
	}
	// Never sleep past the completion itself
	if remaining > 0 && remaining < d {
		d = remaining
	}
	if d < minimum {
		d = minimum
	}
	if d > idle {
		d = idle
	}
	return d
}

// Tick runs every listener once at the current time.
func (c *GrowthClock) Tick() time.Time {
	now := c.now()
	c.mu.RLock()
	listeners := append([]Listener(nil), c.listeners...)
	c.mu.RUnlock()

	for _, l := range listeners {
		l(now)
	}
	return now
}

// Run ticks until ctx is cancelled.
func (c *GrowthClock) Run(ctx context.Context) error {
	log := logger.FromContext(ctx)
	log.Info(LogMsgClockStarted, "idle_interval", c.cfg.IdleInterval, "min_interval", c.cfg.MinInterval)

	timer := time.NewTimer(c.Interval(c.now()))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info(LogMsgClockStopped)
			return ctx.Err()
		case <-timer.C:
		case <-c.poke:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
		}

		now := c.Tick()
		d := c.Interval(now)
		log.Debug(LogMsgClockTick, "next_in", d)
		timer.Reset(d)
	}
}
