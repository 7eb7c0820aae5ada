// Package leaktest verifies that background machinery — the worker pool, the
// autosave loop, the event ticker — winds down cleanly when stopped. Tests
// snapshot the goroutine count or heap before the exercise and compare after.
package leaktest

import (
	"runtime"
	"testing"
	"time"
)

// settle gives the runtime a moment to retire finished goroutines before a
// count is taken.
func settle(d time.Duration) {
	runtime.Gosched()
	time.Sleep(d)
}

// GoroutineChecker compares the goroutine count against a snapshot taken at
// construction.
type GoroutineChecker struct {
	t      testing.TB
	before int
}

func NewGoroutineChecker(t testing.TB) *GoroutineChecker {
	t.Helper()
	settle(10 * time.Millisecond)
	return &GoroutineChecker{t: t, before: runtime.NumGoroutine()}
}

// Check fails the test when more goroutines than tolerance outlive the
// snapshot.
func (c *GoroutineChecker) Check(tolerance int) {
	c.t.Helper()

	settle(50 * time.Millisecond)
	runtime.GC()
	settle(50 * time.Millisecond)

	after := runtime.NumGoroutine()
	if leaked := after - c.before; leaked > tolerance {
		c.t.Errorf("goroutine leak: %d before, %d after, %d over tolerance %d",
			c.before, after, leaked, tolerance)
	}
}

// MemoryChecker compares heap allocation against a snapshot taken at
// construction.
type MemoryChecker struct {
	t      testing.TB
	before runtime.MemStats
}

func NewMemoryChecker(t testing.TB) *MemoryChecker {
	t.Helper()

	runtime.GC()
	settle(10 * time.Millisecond)

	c := &MemoryChecker{t: t}
	runtime.ReadMemStats(&c.before)
	return c
}

// Check fails the test when the heap grew beyond maxGrowthMB.
func (c *MemoryChecker) Check(maxGrowthMB float64) {
	c.t.Helper()

	runtime.GC()
	settle(50 * time.Millisecond)

	var after runtime.MemStats
	runtime.ReadMemStats(&after)

	const mb = 1024 * 1024
	growthMB := (float64(after.Alloc) - float64(c.before.Alloc)) / mb
	if growthMB > maxGrowthMB {
		c.t.Errorf("heap grew %.2fMB (limit %.2fMB): %.2fMB -> %.2fMB",
			growthMB, maxGrowthMB, float64(c.before.Alloc)/mb, float64(after.Alloc)/mb)
	}
}

// CheckNoGoroutineLeak runs fn and fails if any goroutine it started is still
// alive afterwards.
func CheckNoGoroutineLeak(t *testing.T, fn func()) {
	t.Helper()

	checker := NewGoroutineChecker(t)
	fn()
	checker.Check(0)
}

// CheckNoMemoryLeak runs fn and fails if the heap grew beyond maxGrowthMB.
func CheckNoMemoryLeak(t *testing.T, maxGrowthMB float64, fn func()) {
	t.Helper()

	checker := NewMemoryChecker(t)
	fn()
	checker.Check(maxGrowthMB)
}

// WaitForGoroutines blocks until the goroutine count drops to target, or
// fails the test after timeout.
func WaitForGoroutines(t *testing.T, target int, timeout time.Duration) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		runtime.Gosched()
		if runtime.NumGoroutine() <= target {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}

	t.Errorf("still %d goroutines after %v, wanted at most %d",
		runtime.NumGoroutine(), timeout, target)
}
