// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package strpipe

// EndMarker is the in-band sentinel that shuts the pipeline down. A user
// line equal to EndMarker is indistinguishable from a shutdown request and
// terminates the pipeline; no escape mechanism exists.
const EndMarker = "<END>"

// Inserter is the producer-side view of a queue. A stage's forward handle is
// a [ForwardFunc] (the successor's PlaceWork), which inserts through the
// blocking Insert of the successor's inbox.
type Inserter interface {
	// Insert adds an item, blocking while the queue is full.
	Insert(item string) error

	// TryInsert adds an item without blocking.
	// Returns ErrWouldBlock if the queue is full.
	TryInsert(item string) error
}

// Taker is the consumer-side view of a queue, used by exactly one stage
// worker.
type Taker interface {
	// Take removes and returns the head item, blocking while empty and not
	// finished. Returns ErrShutdown once the queue is empty and finished.
	Take() (string, error)

	// TryTake removes and returns the head item without blocking.
	// Returns ErrWouldBlock when empty and not finished.
	TryTake() (string, error)
}

// Queue is the combined producer-consumer contract of a stage inbox.
type Queue interface {
	Inserter
	Taker
	Cap() int
	Len() int
}

var _ Queue = (*BoundedQueue)(nil)
