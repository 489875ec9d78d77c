// Package leaktest detects goroutines left running by a test.
package leaktest

import (
	"runtime"
	"testing"
	"time"
)

// DefaultSettleTimeout bounds how long Check waits for goroutines to exit
const DefaultSettleTimeout = time.Second

// GoroutineChecker records the goroutine count at creation and compares on Check
type GoroutineChecker struct {
	before  int
	t       testing.TB
	timeout time.Duration
}

// NewGoroutineChecker creates a new checker and records the current goroutine count
func NewGoroutineChecker(t testing.TB) *GoroutineChecker {
	t.Helper()

	runtime.Gosched()
	time.Sleep(10 * time.Millisecond)

	return &GoroutineChecker{
		before:  runtime.NumGoroutine(),
		t:       t,
		timeout: DefaultSettleTimeout,
	}
}

// Check fails the test if more than tolerance goroutines remain after the settle timeout
func (g *GoroutineChecker) Check(tolerance int) {
	g.t.Helper()

	limit := g.before + tolerance
	deadline := time.Now().Add(g.timeout)
	after := runtime.NumGoroutine()
	for after > limit && time.Now().Before(deadline) {
		runtime.Gosched()
		time.Sleep(10 * time.Millisecond)
		after = runtime.NumGoroutine()
	}

	if after > limit {
		g.t.Errorf("Potential goroutine leak: before=%d, after=%d, leaked=%d (tolerance=%d)",
			g.before, after, after-g.before, tolerance)
	}
}

// CheckNoGoroutineLeak runs fn and verifies it leaves no goroutines behind
func CheckNoGoroutineLeak(t testing.TB, fn func()) {
	t.Helper()

	checker := NewGoroutineChecker(t)
	fn()
	checker.Check(0)
}

// WaitForGoroutines waits until at most target goroutines are running
func WaitForGoroutines(t testing.TB, target int, timeout time.Duration) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		runtime.Gosched()
		if runtime.NumGoroutine() <= target {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}

	t.Errorf("Timeout waiting for goroutines to complete: current=%d, target=%d",
		runtime.NumGoroutine(), target)
}
