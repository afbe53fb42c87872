// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package strpipe

import (
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"
)

// Pipeline is a linear sequence of stages wired head to tail. It is built
// via [Builder.Build]; length is fixed at construction.
//
// The assembler methods are single-threaded and never on the hot path:
// Start must complete before the first line is fed, and Wait must complete
// before Close begins. Run composes the full sequence:
//
//	p, err := strpipe.New(8).Build("uppercase", "reverse")
//	if err != nil { ... }
//	if err := p.Run(os.Stdin); err != nil { ... }
type Pipeline struct {
	log      zerolog.Logger
	stages   []*Stage
	feeder   *Feeder
	capacity int
	started  bool
}

// StageNames returns the configured stage names in pipeline order.
func (p *Pipeline) StageNames() []string {
	names := make([]string, len(p.stages))
	for i, st := range p.stages {
		names[i] = st.Name()
	}
	return names
}

// Start initializes every stage in order, then attaches forward handles:
// stage i forwards into stage i+1's inbox; the last stage gets a nil handle
// and emits to the sink. On an init failure the previously initialized
// stages are finalized in reverse order and the error is surfaced.
func (p *Pipeline) Start() error {
	if p.started {
		return fmt.Errorf("pipeline: %w: already started", ErrInvalidArgument)
	}
	for i, st := range p.stages {
		if err := st.Init(p.capacity); err != nil {
			p.log.Error().Err(err).Str("stage", st.Name()).Msg("init failed, unwinding")
			for j := i - 1; j >= 0; j-- {
				if ferr := p.stages[j].Fini(); ferr != nil {
					p.log.Error().Err(ferr).Str("stage", p.stages[j].Name()).Msg("unwind fini failed")
				}
			}
			return err
		}
	}
	for i, st := range p.stages {
		if i < len(p.stages)-1 {
			st.Attach(p.stages[i+1].PlaceWork)
		} else {
			st.Attach(nil)
		}
	}
	p.started = true
	p.log.Debug().Strs("stages", p.StageNames()).Int("capacity", p.capacity).Msg("pipeline started")
	return nil
}

// PlaceWork inserts one item into the head stage's inbox.
func (p *Pipeline) PlaceWork(item string) error {
	if !p.started {
		return fmt.Errorf("pipeline: %w", ErrUninitialized)
	}
	return p.stages[0].PlaceWork(item)
}

// Feed reads lines from r into the head stage until the sentinel or
// end-of-stream; see [Feeder.Feed].
func (p *Pipeline) Feed(r io.Reader) error {
	if !p.started {
		return fmt.Errorf("pipeline: %w", ErrUninitialized)
	}
	return p.feeder.Feed(r, p.stages[0].PlaceWork)
}

// Wait blocks until every stage has drained, in pipeline order. Each
// stage's own sentinel forwarding guarantees its successor terminates too.
func (p *Pipeline) Wait() error {
	if !p.started {
		return fmt.Errorf("pipeline: %w", ErrUninitialized)
	}
	for _, st := range p.stages {
		if err := st.WaitFinished(); err != nil {
			return err
		}
	}
	return nil
}

// Close finalizes every stage in reverse order and releases its resources.
// Safe to call after Wait; a Close without a prior sentinel forces one into
// each stage's inbox (see [Stage.Fini]).
func (p *Pipeline) Close() error {
	if !p.started {
		return fmt.Errorf("pipeline: %w", ErrUninitialized)
	}
	var errs []error
	for i := len(p.stages) - 1; i >= 0; i-- {
		if err := p.stages[i].Fini(); err != nil {
			p.log.Error().Err(err).Str("stage", p.stages[i].Name()).Msg("fini failed")
			errs = append(errs, err)
		}
	}
	p.started = false
	return errors.Join(errs...)
}

// Run starts the pipeline, feeds it from r, waits for the chain to drain
// and tears it down. Once Start succeeds, teardown always runs; the feed,
// wait and close errors are combined with errors.Join.
func (p *Pipeline) Run(r io.Reader) error {
	if err := p.Start(); err != nil {
		return err
	}
	feedErr := p.Feed(r)
	waitErr := p.Wait()
	closeErr := p.Close()
	return errors.Join(feedErr, waitErr, closeErr)
}
