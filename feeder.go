// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package strpipe

import (
	"bufio"
	"fmt"
	"io"

	"github.com/rs/zerolog"
)

// DefaultMaxLineLength is the feeder's per-line byte limit.
const DefaultMaxLineLength = 1024

// Feeder reads lines from an input stream and places them into the head
// stage. Trailing newlines are stripped, empty lines are preserved. Feeding
// stops after the sentinel line; on end-of-stream without a sentinel one is
// injected so the pipeline always terminates.
type Feeder struct {
	log        zerolog.Logger
	maxLineLen int
}

// NewFeeder creates a feeder with the given per-line byte limit.
// A limit < 1 falls back to DefaultMaxLineLength.
func NewFeeder(maxLineLen int) *Feeder {
	if maxLineLen < 1 {
		maxLineLen = DefaultMaxLineLength
	}
	return &Feeder{log: zerolog.Nop(), maxLineLen: maxLineLen}
}

// WithLogger installs l scoped to the feeder.
func (f *Feeder) WithLogger(l zerolog.Logger) *Feeder {
	f.log = l.With().Str("stage", "feeder").Logger()
	return f
}

// Feed copies lines from r through place until the sentinel line or
// end-of-stream. Blocks naturally while the head inbox is full; no data is
// ever dropped. A line longer than the limit aborts the feed with an error
// after injecting the sentinel.
func (f *Feeder) Feed(r io.Reader, place ForwardFunc) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, f.maxLineLen+1), f.maxLineLen+1)
	for sc.Scan() {
		line := sc.Text()
		if err := place(line); err != nil {
			return fmt.Errorf("feeder: %w", err)
		}
		if line == EndMarker {
			return nil
		}
	}
	if err := sc.Err(); err != nil {
		f.log.Error().Err(err).Int("max_line_length", f.maxLineLen).Msg("scan failed")
		if insErr := place(EndMarker); insErr != nil {
			f.log.Error().Err(insErr).Msg("injecting sentinel failed")
		}
		return fmt.Errorf("feeder: %w", err)
	}
	f.log.Debug().Msg("end of stream, injecting sentinel")
	if err := place(EndMarker); err != nil {
		return fmt.Errorf("feeder: %w", err)
	}
	return nil
}
