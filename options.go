// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package strpipe

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Options configures pipeline construction.
type Options struct {
	// Per-stage inbox capacity (exact, >= 1).
	capacity int

	// Feeder per-line byte limit.
	maxLineLen int

	// Terminal output destination.
	output io.Writer

	// Inter-byte delay of the typewriter transform.
	typewriterDelay time.Duration

	// Structured logger; Nop by default.
	logger zerolog.Logger

	// Transform table; DefaultRegistry when nil.
	registry *Registry
}

// Builder assembles pipelines with fluent configuration.
//
// Example:
//
//	p, err := strpipe.New(4).
//	    Logger(log).
//	    Output(os.Stdout).
//	    Build("uppercase", "reverse")
type Builder struct {
	opts Options
}

// New creates a pipeline builder with the given per-stage queue capacity.
// Capacity is validated in Build so the CLI can surface a usage error
// instead of a panic.
func New(capacity int) *Builder {
	return &Builder{opts: Options{
		capacity:        capacity,
		maxLineLen:      DefaultMaxLineLength,
		output:          os.Stdout,
		typewriterDelay: DefaultTypewriterDelay,
		logger:          zerolog.Nop(),
	}}
}

// Logger installs the structured logger; each stage derives a scoped child.
func (b *Builder) Logger(l zerolog.Logger) *Builder {
	b.opts.logger = l
	return b
}

// Output sets the terminal sink destination. Defaults to os.Stdout.
func (b *Builder) Output(w io.Writer) *Builder {
	b.opts.output = w
	return b
}

// MaxLineLength sets the feeder's per-line byte limit.
// Defaults to DefaultMaxLineLength.
func (b *Builder) MaxLineLength(n int) *Builder {
	b.opts.maxLineLen = n
	return b
}

// TypewriterDelay sets the typewriter transform's inter-byte delay.
// Zero disables the delay.
func (b *Builder) TypewriterDelay(d time.Duration) *Builder {
	b.opts.typewriterDelay = d
	return b
}

// Registry overrides the transform table. When set, the builder does not
// construct the default transforms and the caller's closures decide where
// side effects go.
func (b *Builder) Registry(r *Registry) *Builder {
	b.opts.registry = r
	return b
}

// Build resolves the named transforms and assembles a pipeline of one stage
// per name, in order. Duplicate names yield distinct stages sharing the same
// pure function.
//
// Returns ErrInvalidArgument when capacity < 1, no names are given, or a
// name is not registered.
func (b *Builder) Build(names ...string) (*Pipeline, error) {
	if b.opts.capacity < 1 {
		return nil, fmt.Errorf("%w: capacity must be >= 1, got %d", ErrInvalidArgument, b.opts.capacity)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: at least one stage required", ErrInvalidArgument)
	}
	sink := NewSink(b.opts.output)
	reg := b.opts.registry
	if reg == nil {
		reg = DefaultRegistry(sink, b.opts.typewriterDelay)
	}
	stages := make([]*Stage, len(names))
	for i, name := range names {
		fn, ok := reg.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("%w: unknown transform %q", ErrInvalidArgument, name)
		}
		stages[i] = NewStage(name, fn).
			WithLogger(b.opts.logger).
			WithSink(sink).
			WithSelfEmitting(reg.SelfEmitting(name))
	}
	return &Pipeline{
		log:      b.opts.logger.With().Str("component", "pipeline").Logger(),
		stages:   stages,
		feeder:   NewFeeder(b.opts.maxLineLen).WithLogger(b.opts.logger),
		capacity: b.opts.capacity,
	}, nil
}
