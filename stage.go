// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package strpipe

import (
	"fmt"
	"sync"

	"code.hybscloud.com/atomix"
	"github.com/rs/zerolog"
)

// ForwardFunc inserts an item into the next stage's inbox. A stage's forward
// handle is nil on the terminal stage.
type ForwardFunc func(item string) error

// Stage is one step of the pipeline: an inbox queue plus a single worker
// goroutine draining it through the stage's transform.
//
// Lifecycle: Created → Initialized (Init) → Attached (Attach) → Running →
// Drained (sentinel observed) → Finalized (Fini). The assembler guarantees
// Attach happens before the first item is fed, so the worker observes a
// stable forward handle for every non-sentinel item.
//
// The forward call runs on the worker goroutine with no queue lock held:
// a worker releases its inbox before inserting downstream, so no two queue
// locks are ever nested regardless of pipeline length.
type Stage struct {
	zerolog.Logger

	name      string
	transform Transform

	inbox *BoundedQueue
	done  chan struct{}

	attachMu sync.Mutex
	forward  ForwardFunc

	sink         *Sink
	selfEmitting bool

	initialized  atomix.Bool
	sentinelSeen atomix.Bool
	finished     atomix.Bool
}

// NewStage creates a stage in the Created state. The stage logs nowhere
// until a logger is supplied via WithLogger.
func NewStage(name string, fn Transform) *Stage {
	return &Stage{
		Logger:    zerolog.Nop(),
		name:      name,
		transform: fn,
	}
}

// WithLogger scopes l to this stage and installs it.
func (s *Stage) WithLogger(l zerolog.Logger) *Stage {
	s.Logger = l.With().Str("stage", s.name).Logger()
	return s
}

// WithSink installs the terminal sink used when the stage has no successor.
func (s *Stage) WithSink(sink *Sink) *Stage {
	s.sink = sink
	return s
}

// WithSelfEmitting marks the stage's transform as writing its own terminal
// output, suppressing the default bracketed emission.
func (s *Stage) WithSelfEmitting(selfEmitting bool) *Stage {
	s.selfEmitting = selfEmitting
	return s
}

// Name returns the stage's constant identifier.
func (s *Stage) Name() string { return s.name }

// Init validates the stage, constructs its inbox with the given capacity and
// spawns the worker. A failed Init leaves the stage uninitialized; the caller
// must not Attach or Fini it.
func (s *Stage) Init(capacity int) error {
	if s.name == "" {
		return fmt.Errorf("%w: empty stage name", ErrInvalidArgument)
	}
	if s.transform == nil {
		s.Error().Msg("init: nil transform")
		return fmt.Errorf("%w: stage %q has no transform", ErrInvalidArgument, s.name)
	}
	if s.initialized.LoadAcquire() {
		s.Error().Msg("init: already initialized")
		return fmt.Errorf("%w: stage %q already initialized", ErrInvalidArgument, s.name)
	}
	q, err := NewBoundedQueue(capacity)
	if err != nil {
		s.Error().Err(err).Int("capacity", capacity).Msg("init: queue construction failed")
		return fmt.Errorf("stage %q: %w", s.name, err)
	}
	s.inbox = q
	s.done = make(chan struct{})
	s.initialized.StoreRelease(true)
	go s.run()
	s.Debug().Int("capacity", capacity).Msg("initialized")
	return nil
}

// Attach records the forward handle to the successor's inbox insert. Nil
// marks the stage terminal. Attaching before Init is ignored and logged.
func (s *Stage) Attach(forward ForwardFunc) {
	if !s.initialized.LoadAcquire() {
		s.Warn().Msg("attach before init ignored")
		return
	}
	s.attachMu.Lock()
	s.forward = forward
	s.attachMu.Unlock()
	s.Debug().Bool("terminal", forward == nil).Msg("attached")
}

// PlaceWork enqueues one item into the stage's inbox, blocking while the
// inbox is full.
func (s *Stage) PlaceWork(item string) error {
	if !s.initialized.LoadAcquire() {
		return fmt.Errorf("stage %q: %w", s.name, ErrUninitialized)
	}
	if err := s.inbox.Insert(item); err != nil {
		s.Error().Err(err).Msg("place work failed")
		return fmt.Errorf("stage %q: %w", s.name, err)
	}
	return nil
}

// WaitFinished blocks until the stage has observed the sentinel and drained.
func (s *Stage) WaitFinished() error {
	if !s.initialized.LoadAcquire() {
		return fmt.Errorf("stage %q: %w", s.name, ErrUninitialized)
	}
	if s.finished.LoadAcquire() {
		return nil
	}
	return s.inbox.WaitFinished()
}

// Fini finalizes the stage: if the worker has not yet observed the sentinel,
// one is forced into the own inbox; then the worker is joined and the
// stage's resources are released. Operations after Fini report
// ErrUninitialized.
func (s *Stage) Fini() error {
	if !s.initialized.LoadAcquire() {
		return fmt.Errorf("stage %q: %w", s.name, ErrUninitialized)
	}
	if !s.sentinelSeen.LoadAcquire() {
		if err := s.inbox.Insert(EndMarker); err != nil {
			s.Error().Err(err).Msg("fini: forcing sentinel failed")
		}
	}
	<-s.done
	s.initialized.StoreRelease(false)
	s.Debug().Msg("finalized")
	return nil
}

// forwardHandle returns the current forward handle. Attach is serialized
// against worker reads so a handle installed mid-run is observed intact.
func (s *Stage) forwardHandle() ForwardFunc {
	s.attachMu.Lock()
	fwd := s.forward
	s.attachMu.Unlock()
	return fwd
}

// run is the worker loop: take, transform, forward or emit; on sentinel,
// forward it once (or drop it when terminal), mark the inbox finished and
// exit.
func (s *Stage) run() {
	defer close(s.done)
	for {
		item, err := s.inbox.Take()
		if err != nil {
			if !IsShutdown(err) {
				s.Error().Err(err).Msg("take failed")
			}
			break
		}
		if item == EndMarker {
			s.sentinelSeen.StoreRelease(true)
			if fwd := s.forwardHandle(); fwd != nil {
				if err := fwd(item); err != nil {
					s.Error().Err(err).Msg("forwarding sentinel failed")
				}
			}
			s.inbox.MarkFinished()
			break
		}
		out := s.transform(item)
		if fwd := s.forwardHandle(); fwd != nil {
			if err := fwd(out); err != nil {
				s.Error().Err(err).Msg("forward failed")
			}
			continue
		}
		if !s.selfEmitting && s.sink != nil {
			if err := s.sink.Emit(s.name, out); err != nil {
				s.Error().Err(err).Msg("emit failed")
			}
		}
	}
	s.finished.StoreRelease(true)
	stats := s.inbox.Stats()
	s.Debug().
		Uint64("inserted", stats.Inserted).
		Uint64("taken", stats.Taken).
		Uint64("full_waits", stats.FullWaits).
		Uint64("empty_waits", stats.EmptyWaits).
		Msg("drained")
}
