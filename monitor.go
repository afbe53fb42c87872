// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package strpipe

import "sync"

// Monitor is an edge-triggered condition signal bound to an externally held
// mutex. It carries no queue of its own: the predicate it guards lives in the
// caller, and the caller must hold the associated mutex around every predicate
// check, Wait, Signal, and Broadcast.
//
// All three monitors of a [BoundedQueue] share the queue's single mutex so
// that predicates over (count, finished) are evaluated atomically. A monitor
// that owned its own mutex would either force nested locking or break that
// atomicity.
//
// Spurious wakeups are permitted; callers always recheck their predicate in
// a loop:
//
//	mu.Lock()
//	for !predicate() {
//	    if err := mon.Wait(); err != nil {
//	        break
//	    }
//	}
//	mu.Unlock()
type Monitor struct {
	cond        *sync.Cond
	initialized bool
}

// NewMonitor creates a monitor bound to the given mutex.
// Returns ErrInvalidArgument if mu is nil.
func NewMonitor(mu *sync.Mutex) (*Monitor, error) {
	if mu == nil {
		return nil, ErrInvalidArgument
	}
	return &Monitor{cond: sync.NewCond(mu), initialized: true}, nil
}

// Wait atomically releases the associated mutex and blocks until signalled;
// on wake it reacquires the mutex before returning. The caller must hold the
// mutex on entry and holds it again on return.
//
// Returns ErrMonitor if the monitor was never constructed via NewMonitor.
func (m *Monitor) Wait() error {
	if m == nil || !m.initialized {
		return ErrMonitor
	}
	m.cond.Wait()
	return nil
}

// Signal wakes exactly one waiter, if any. The caller must hold the
// associated mutex to rule out a lost-wakeup race against the predicate.
// Signalling with no waiter parked is a no-op.
func (m *Monitor) Signal() {
	if m == nil || !m.initialized {
		return
	}
	m.cond.Signal()
}

// Broadcast wakes every parked waiter. Used on shutdown so that all blocked
// takers observe the finished flag; a single Signal would leak wakeups when
// more than one waiter is parked.
func (m *Monitor) Broadcast() {
	if m == nil || !m.initialized {
		return
	}
	m.cond.Broadcast()
}

// Reset is a no-op under condition-variable semantics; it exists for
// interface symmetry with edge-triggered event primitives.
func (m *Monitor) Reset() {}
