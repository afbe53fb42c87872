// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package strpipe provides a linear string-processing pipeline built on
// bounded, condition-variable-based queues.
//
// A pipeline is a chain of stages S1 → S2 → … → Sn. Each stage owns a
// bounded inbox queue and one worker goroutine that drains it, applies the
// stage's transform and forwards the result to the next stage's inbox. The
// terminal stage emits its output through a line-atomic sink. The in-band
// sentinel "<END>" propagates stage by stage and shuts the chain down
// deterministically: each stage forwards exactly one sentinel downstream,
// marks its inbox finished and exits.
//
// # Quick Start
//
// Assemble and run a pipeline with the fluent builder:
//
//	p, err := strpipe.New(8).Build("uppercase", "reverse")
//	if err != nil {
//	    // unknown transform or invalid capacity
//	}
//	err = p.Run(os.Stdin) // Start → Feed → Wait → Close
//
// Or drive the phases individually:
//
//	p, _ := strpipe.New(8).Build("uppercase")
//	p.Start()
//	p.PlaceWork("hello")
//	p.PlaceWork(strpipe.EndMarker)
//	p.Wait()
//	p.Close()
//
// # Queues
//
// [BoundedQueue] is the transport between adjacent stages: a fixed-capacity
// FIFO with blocking Insert (waits while full), blocking Take (waits while
// empty unless finished), non-blocking Try variants returning
// [ErrWouldBlock], and a monotonic finished flag with its own wait. All
// state transitions happen under a single mutex shared by the queue's three
// monitors, so predicates over (count, finished) are always evaluated
// atomically and no two queue locks are ever nested.
//
// # Transforms
//
// Transforms are pure string functions resolved from a static [Registry].
// The default set: identity-log, uppercase, reverse, rotate-right-1,
// letter-space, typewriter. Duplicate stage names in one pipeline are
// first-class; each is a distinct stage sharing only the function.
//
// # Concurrency Model
//
// For n stages the pipeline runs n worker goroutines plus the caller
// feeding the head. Adjacent workers synchronize only through their shared
// queue; the forward call is made on the upstream worker's goroutine after
// its inbox lock is released. Shutdown is cooperative via the sentinel;
// there is no asynchronous cancellation.
package strpipe
