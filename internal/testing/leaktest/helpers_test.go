package leaktest

import (
	"runtime"
	"sync"
	"testing"
	"time"
)

func TestGoroutineChecker_CleanRun(t *testing.T) {
	checker := NewGoroutineChecker(t)
	checker.Check(0)
}

func TestGoroutineChecker_Tolerance(t *testing.T) {
	checker := NewGoroutineChecker(t)

	// One goroutine deliberately left parked; tolerance covers it.
	done := make(chan struct{})
	go func() {
		<-done
	}()

	time.Sleep(20 * time.Millisecond)
	checker.Check(2)

	close(done)
}

func TestMemoryChecker_SmallAllocation(t *testing.T) {
	checker := NewMemoryChecker(t)
	_ = make([]byte, 1024)
	checker.Check(1.0)
}

func TestCheckNoGoroutineLeak(t *testing.T) {
	CheckNoGoroutineLeak(t, func() {
		// A save-fanout shaped workload: start, wait, all done.
		var wg sync.WaitGroup
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				time.Sleep(time.Millisecond)
			}()
		}
		wg.Wait()
	})
}

func TestCheckNoMemoryLeak(t *testing.T) {
	CheckNoMemoryLeak(t, 1.0, func() {
		buf := make([]byte, 1024)
		_ = buf
	})
}

func TestWaitForGoroutines(t *testing.T) {
	before := runtime.NumGoroutine()

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			time.Sleep(10 * time.Millisecond)
		}()
	}
	wg.Wait()

	WaitForGoroutines(t, before, time.Second)
}
