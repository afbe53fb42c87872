// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package strpipe_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"code.hybscloud.com/strpipe"
)

// =============================================================================
// Monitor - Construction
// =============================================================================

func TestNewMonitorNilMutex(t *testing.T) {
	if _, err := strpipe.NewMonitor(nil); !errors.Is(err, strpipe.ErrInvalidArgument) {
		t.Fatalf("NewMonitor(nil): got %v, want ErrInvalidArgument", err)
	}
}

func TestMonitorZeroValue(t *testing.T) {
	var mon strpipe.Monitor
	if err := mon.Wait(); !errors.Is(err, strpipe.ErrMonitor) {
		t.Fatalf("Wait on zero monitor: got %v, want ErrMonitor", err)
	}
	// Signal, Broadcast and Reset on an unconstructed monitor must not panic.
	mon.Signal()
	mon.Broadcast()
	mon.Reset()
}

func TestMonitorNil(t *testing.T) {
	var mon *strpipe.Monitor
	if err := mon.Wait(); !errors.Is(err, strpipe.ErrMonitor) {
		t.Fatalf("Wait on nil monitor: got %v, want ErrMonitor", err)
	}
	mon.Signal()
	mon.Broadcast()
}

// =============================================================================
// Monitor - Wakeup Semantics
// =============================================================================

// TestMonitorSignalWakesWaiter parks one waiter on a predicate and verifies
// a single Signal under the mutex wakes it.
func TestMonitorSignalWakesWaiter(t *testing.T) {
	var mu sync.Mutex
	mon, err := strpipe.NewMonitor(&mu)
	if err != nil {
		t.Fatalf("NewMonitor: %v", err)
	}

	ready := false
	woke := make(chan struct{})
	go func() {
		mu.Lock()
		for !ready {
			if err := mon.Wait(); err != nil {
				t.Errorf("Wait: %v", err)
				break
			}
		}
		mu.Unlock()
		close(woke)
	}()

	// Let the waiter park. A missed park is still correct: the predicate is
	// set before Signal, so the waiter loop observes it either way.
	time.Sleep(10 * time.Millisecond)

	mu.Lock()
	ready = true
	mon.Signal()
	mu.Unlock()

	select {
	case <-woke:
	case <-time.After(2 * time.Second):
		t.Fatal("waiter did not wake after Signal")
	}
}

// TestMonitorBroadcastWakesAll parks several waiters and verifies a single
// Broadcast releases every one of them.
func TestMonitorBroadcastWakesAll(t *testing.T) {
	var mu sync.Mutex
	mon, err := strpipe.NewMonitor(&mu)
	if err != nil {
		t.Fatalf("NewMonitor: %v", err)
	}

	const waiters = 4
	ready := false
	var wg sync.WaitGroup
	for range waiters {
		wg.Add(1)
		go func() {
			defer wg.Done()
			mu.Lock()
			for !ready {
				if err := mon.Wait(); err != nil {
					t.Errorf("Wait: %v", err)
					break
				}
			}
			mu.Unlock()
		}()
	}

	time.Sleep(10 * time.Millisecond)

	mu.Lock()
	ready = true
	mon.Broadcast()
	mu.Unlock()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("not all waiters woke after Broadcast")
	}
}

// TestMonitorSignalNoWaiter verifies signalling an idle monitor is a no-op
// and does not satisfy a later wait by itself (edge-triggered, no memory).
func TestMonitorSignalNoWaiter(t *testing.T) {
	var mu sync.Mutex
	mon, err := strpipe.NewMonitor(&mu)
	if err != nil {
		t.Fatalf("NewMonitor: %v", err)
	}

	mu.Lock()
	mon.Signal()
	mon.Reset()
	mu.Unlock()

	// A fresh waiter must still depend on its predicate, not on the earlier
	// signal.
	ready := false
	woke := make(chan struct{})
	go func() {
		mu.Lock()
		for !ready {
			mon.Wait()
		}
		mu.Unlock()
		close(woke)
	}()

	select {
	case <-woke:
		t.Fatal("waiter woke without predicate")
	case <-time.After(50 * time.Millisecond):
	}

	mu.Lock()
	ready = true
	mon.Signal()
	mu.Unlock()
	<-woke
}
