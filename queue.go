// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package strpipe

import (
	"sync"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// parkSpinBudget bounds how many times Insert and Take briefly release the
// lock and spin before parking on a monitor. Spinning wins when the peer
// stage is actively draining; parking wins when it is not.
const parkSpinBudget = 4

// BoundedQueue is a fixed-capacity blocking FIFO of strings connecting two
// adjacent pipeline stages.
//
// The queue is designed for one producer-side caller and one consumer-side
// worker, but remains correct for concurrent producers because every state
// transition happens under the single mutex. Capacity is exact: a queue
// created with capacity 7 holds at most 7 items.
//
// Blocking discipline:
//
//   - Insert blocks while the queue is full.
//   - Take blocks while the queue is empty and not finished.
//   - TryInsert / TryTake never block; they return ErrWouldBlock instead.
//   - MarkFinished flips the monotonic finished flag and wakes every
//     blocked taker; remaining items still drain in FIFO order, and a Take
//     on an empty finished queue returns ErrShutdown.
//
// Example:
//
//	q, _ := strpipe.NewBoundedQueue(8)
//	go func() {
//	    q.Insert("hello")
//	    q.MarkFinished()
//	}()
//	for {
//	    s, err := q.Take()
//	    if strpipe.IsShutdown(err) {
//	        break
//	    }
//	    fmt.Println(s)
//	}
type BoundedQueue struct {
	mu       sync.Mutex
	items    []string
	head     int
	tail     int
	count    int
	capacity int
	finished bool

	notFull    *Monitor
	notEmpty   *Monitor
	finishedEv *Monitor

	initialized bool

	// Counters are observable without the lock; see Stats.
	inserted   atomix.Uint64
	taken      atomix.Uint64
	fullWaits  atomix.Uint64
	emptyWaits atomix.Uint64
}

// QueueStats is a point-in-time snapshot of a queue's counters.
type QueueStats struct {
	Inserted   uint64 // items accepted by Insert/TryInsert
	Taken      uint64 // items handed out by Take/TryTake
	FullWaits  uint64 // times an inserter parked on a full queue
	EmptyWaits uint64 // times a taker parked on an empty queue
}

// NewBoundedQueue creates a queue holding at most capacity items.
// Returns ErrInvalidArgument if capacity < 1.
func NewBoundedQueue(capacity int) (*BoundedQueue, error) {
	if capacity < 1 {
		return nil, ErrInvalidArgument
	}
	q := &BoundedQueue{
		items:    make([]string, capacity),
		capacity: capacity,
	}
	var err error
	if q.notFull, err = NewMonitor(&q.mu); err != nil {
		return nil, err
	}
	if q.notEmpty, err = NewMonitor(&q.mu); err != nil {
		return nil, err
	}
	if q.finishedEv, err = NewMonitor(&q.mu); err != nil {
		return nil, err
	}
	q.initialized = true
	return q, nil
}

// Insert adds an item to the tail, blocking while the queue is full.
// The insert is atomic: it never returns while holding a slot reservation.
// Returns ErrUninitialized on a zero-value queue.
func (q *BoundedQueue) Insert(item string) error {
	if q == nil || !q.initialized {
		return ErrUninitialized
	}
	sw := spin.Wait{}
	q.mu.Lock()
	for spins := 0; q.count == q.capacity && spins < parkSpinBudget; spins++ {
		q.mu.Unlock()
		sw.Once()
		q.mu.Lock()
	}
	for q.count == q.capacity {
		q.fullWaits.AddAcqRel(1)
		if err := q.notFull.Wait(); err != nil {
			q.mu.Unlock()
			return err
		}
	}
	q.enqueueLocked(item)
	q.mu.Unlock()
	return nil
}

// TryInsert adds an item without blocking.
// Returns ErrWouldBlock if the queue is full.
func (q *BoundedQueue) TryInsert(item string) error {
	if q == nil || !q.initialized {
		return ErrUninitialized
	}
	q.mu.Lock()
	if q.count == q.capacity {
		q.mu.Unlock()
		return ErrWouldBlock
	}
	q.enqueueLocked(item)
	q.mu.Unlock()
	return nil
}

// Take removes and returns the head item, blocking while the queue is empty
// and not finished. Once finished, remaining items drain in FIFO order and
// a Take on the empty queue returns ("", ErrShutdown).
func (q *BoundedQueue) Take() (string, error) {
	if q == nil || !q.initialized {
		return "", ErrUninitialized
	}
	sw := spin.Wait{}
	q.mu.Lock()
	for spins := 0; q.count == 0 && !q.finished && spins < parkSpinBudget; spins++ {
		q.mu.Unlock()
		sw.Once()
		q.mu.Lock()
	}
	for q.count == 0 && !q.finished {
		q.emptyWaits.AddAcqRel(1)
		if err := q.notEmpty.Wait(); err != nil {
			q.mu.Unlock()
			return "", err
		}
	}
	if q.count == 0 {
		q.mu.Unlock()
		return "", ErrShutdown
	}
	item := q.dequeueLocked()
	q.mu.Unlock()
	return item, nil
}

// TryTake removes and returns the head item without blocking.
// Returns ErrWouldBlock when empty and not finished, ErrShutdown when empty
// and finished.
func (q *BoundedQueue) TryTake() (string, error) {
	if q == nil || !q.initialized {
		return "", ErrUninitialized
	}
	q.mu.Lock()
	if q.count == 0 {
		finished := q.finished
		q.mu.Unlock()
		if finished {
			return "", ErrShutdown
		}
		return "", ErrWouldBlock
	}
	item := q.dequeueLocked()
	q.mu.Unlock()
	return item, nil
}

// MarkFinished sets the monotonic finished flag, wakes every WaitFinished
// caller and broadcasts to every blocked taker so all of them observe
// termination. Idempotent.
func (q *BoundedQueue) MarkFinished() {
	if q == nil || !q.initialized {
		return
	}
	q.mu.Lock()
	if !q.finished {
		q.finished = true
		q.finishedEv.Broadcast()
		q.notEmpty.Broadcast()
	}
	q.mu.Unlock()
}

// WaitFinished blocks until MarkFinished has been called.
// Multiple concurrent waiters are permitted.
func (q *BoundedQueue) WaitFinished() error {
	if q == nil || !q.initialized {
		return ErrUninitialized
	}
	q.mu.Lock()
	for !q.finished {
		if err := q.finishedEv.Wait(); err != nil {
			q.mu.Unlock()
			return err
		}
	}
	q.mu.Unlock()
	return nil
}

// Finished reports whether MarkFinished has been called.
func (q *BoundedQueue) Finished() bool {
	if q == nil || !q.initialized {
		return false
	}
	q.mu.Lock()
	finished := q.finished
	q.mu.Unlock()
	return finished
}

// Len returns the current number of queued items.
func (q *BoundedQueue) Len() int {
	if q == nil || !q.initialized {
		return 0
	}
	q.mu.Lock()
	n := q.count
	q.mu.Unlock()
	return n
}

// Cap returns the queue capacity.
func (q *BoundedQueue) Cap() int {
	if q == nil {
		return 0
	}
	return q.capacity
}

// Stats returns a snapshot of the queue's counters. The counters are read
// with acquire loads, so Stats is safe to call from any goroutine without
// the queue lock.
func (q *BoundedQueue) Stats() QueueStats {
	if q == nil {
		return QueueStats{}
	}
	return QueueStats{
		Inserted:   q.inserted.LoadAcquire(),
		Taken:      q.taken.LoadAcquire(),
		FullWaits:  q.fullWaits.LoadAcquire(),
		EmptyWaits: q.emptyWaits.LoadAcquire(),
	}
}

// enqueueLocked links item at the tail. Caller holds q.mu and has verified
// count < capacity.
func (q *BoundedQueue) enqueueLocked(item string) {
	q.items[q.tail] = item
	q.tail = (q.tail + 1) % q.capacity
	q.count++
	q.inserted.AddAcqRel(1)
	q.notEmpty.Signal()
}

// dequeueLocked unlinks the head item. Caller holds q.mu and has verified
// count > 0.
func (q *BoundedQueue) dequeueLocked() string {
	item := q.items[q.head]
	q.items[q.head] = ""
	q.head = (q.head + 1) % q.capacity
	q.count--
	q.taken.AddAcqRel(1)
	q.notFull.Signal()
	return item
}
