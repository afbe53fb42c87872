// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package strpipe_test

import (
	"bufio"
	"errors"
	"strings"
	"testing"

	"code.hybscloud.com/strpipe"
)

// drain empties q via TryTake and returns the items in order.
func drain(t *testing.T, q *strpipe.BoundedQueue) []string {
	t.Helper()
	var items []string
	for {
		item, err := q.TryTake()
		if err != nil {
			if strpipe.IsWouldBlock(err) || strpipe.IsShutdown(err) {
				return items
			}
			t.Fatalf("TryTake: %v", err)
		}
		items = append(items, item)
	}
}

func feedInto(t *testing.T, input string, maxLineLen int) ([]string, error) {
	t.Helper()
	q, err := strpipe.NewBoundedQueue(64)
	if err != nil {
		t.Fatalf("NewBoundedQueue: %v", err)
	}
	ferr := strpipe.NewFeeder(maxLineLen).Feed(strings.NewReader(input), q.Insert)
	return drain(t, q), ferr
}

// =============================================================================
// Feeder
// =============================================================================

func TestFeederInjectsSentinelOnEOF(t *testing.T) {
	items, err := feedInto(t, "a\nb\n", 0)
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	want := []string{"a", "b", strpipe.EndMarker}
	assertItems(t, items, want)
}

func TestFeederStopsAtSentinel(t *testing.T) {
	items, err := feedInto(t, "a\n<END>\nunread\n", 0)
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	assertItems(t, items, []string{"a", strpipe.EndMarker})
}

// TestFeederBackToBackSentinels verifies the first sentinel terminates the
// feed and the second sentinel line is never placed, so exactly one sentinel
// enters the pipeline.
func TestFeederBackToBackSentinels(t *testing.T) {
	items, err := feedInto(t, "x\n<END>\n<END>\n", 0)
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	assertItems(t, items, []string{"x", strpipe.EndMarker})
}

func TestFeederPreservesEmptyLines(t *testing.T) {
	items, err := feedInto(t, "\nx\n\n", 0)
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	assertItems(t, items, []string{"", "x", "", strpipe.EndMarker})
}

func TestFeederNoTrailingNewline(t *testing.T) {
	items, err := feedInto(t, "last", 0)
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	assertItems(t, items, []string{"last", strpipe.EndMarker})
}

// TestFeederLineTooLong verifies an over-limit line aborts the feed with the
// scanner's error after injecting the sentinel, so the pipeline still
// terminates.
func TestFeederLineTooLong(t *testing.T) {
	long := strings.Repeat("x", 64)
	items, err := feedInto(t, long+"\n", 16)
	if !errors.Is(err, bufio.ErrTooLong) {
		t.Fatalf("Feed: got %v, want bufio.ErrTooLong", err)
	}
	assertItems(t, items, []string{strpipe.EndMarker})
}

func TestFeederEmptyInput(t *testing.T) {
	items, err := feedInto(t, "", 0)
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	assertItems(t, items, []string{strpipe.EndMarker})
}

func assertItems(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("fed items: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("fed items[%d]: got %q, want %q", i, got[i], want[i])
		}
	}
}
