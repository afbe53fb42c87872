// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package strpipe

import (
	"errors"

	"code.hybscloud.com/iox"
)

// ErrWouldBlock indicates a non-blocking operation cannot proceed immediately.
//
// For TryInsert: the queue is full (backpressure)
// For TryTake: the queue is empty and not finished
//
// ErrWouldBlock is a control flow signal, not a failure. The caller should
// retry the operation later (with backoff or yield) rather than propagating
// the error.
//
// This is an alias for [iox.ErrWouldBlock] for ecosystem consistency.
//
// Example:
//
//	backoff := iox.Backoff{}
//	for {
//	    err := q.TryInsert(line)
//	    if err == nil {
//	        backoff.Reset()
//	        break
//	    }
//	    if strpipe.IsWouldBlock(err) {
//	        backoff.Wait()  // Adaptive backpressure
//	        continue
//	    }
//	    return err  // Unexpected error
//	}
var ErrWouldBlock = iox.ErrWouldBlock

// ErrShutdown is returned by Take and TryTake when the queue is empty and
// finished. It marks orderly end-of-stream, not a failure: every item that
// was ever inserted has already been taken.
var ErrShutdown = errors.New("strpipe: queue is drained and finished")

// ErrUninitialized is returned by queue and stage operations invoked before
// a successful Init, or after Fini has released the stage's resources.
var ErrUninitialized = errors.New("strpipe: not initialized")

// ErrInvalidArgument is returned on construction or registration with a
// non-positive capacity, an empty name, or a nil transform.
var ErrInvalidArgument = errors.New("strpipe: invalid argument")

// ErrMonitor is returned when a monitor operation is attempted on a monitor
// that was never constructed. It is fatal for the surrounding operation; the
// queue lifecycle guarantees it cannot occur after NewBoundedQueue succeeds.
var ErrMonitor = errors.New("strpipe: monitor failure")

// IsWouldBlock reports whether err indicates the operation would block.
// Delegates to [iox.IsWouldBlock] for wrapped error support.
func IsWouldBlock(err error) bool {
	return iox.IsWouldBlock(err)
}

// IsShutdown reports whether err marks orderly end-of-stream on a queue.
func IsShutdown(err error) bool {
	return errors.Is(err, ErrShutdown)
}
