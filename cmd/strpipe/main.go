// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command strpipe runs a string-processing pipeline over standard input.
//
//	strpipe [flags] <queue_capacity> <stage> [<stage> ...]
//
// Lines are fed through the named transforms in order; the terminal stage
// prints to standard output. The line "<END>" shuts the pipeline down.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"code.hybscloud.com/strpipe"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet("strpipe", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.String("log-level", "error", "log level (trace, debug, info, warn, error, fatal, disabled)")
	fs.Int("max-line-length", strpipe.DefaultMaxLineLength, "maximum input line length in bytes")
	fs.Duration("typewriter-delay", strpipe.DefaultTypewriterDelay, "typewriter inter-byte delay")
	fs.Usage = func() { printUsage(stdout, fs) }
	if err := fs.Parse(args); err != nil {
		return invalidInput(stdout, stderr, fs)
	}

	k := koanf.New(".")
	if err := k.Load(posflag.Provider(fs, ".", k), nil); err != nil {
		fmt.Fprintf(stderr, "[ERROR] loading configuration: %v\n", err)
		return 1
	}

	level, err := zerolog.ParseLevel(k.String("log-level"))
	if err != nil {
		return invalidInput(stdout, stderr, fs)
	}

	rest := fs.Args()
	if len(rest) < 2 || !validCapacity(rest[0]) {
		return invalidInput(stdout, stderr, fs)
	}
	capacity, err := strconv.Atoi(rest[0])
	if err != nil {
		return invalidInput(stdout, stderr, fs)
	}

	logger := zerolog.New(stageWriter(stderr)).Level(level)

	p, err := strpipe.New(capacity).
		Logger(logger).
		Output(stdout).
		MaxLineLength(k.Int("max-line-length")).
		TypewriterDelay(k.Duration("typewriter-delay")).
		Build(rest[1:]...)
	if err != nil {
		if errors.Is(err, strpipe.ErrInvalidArgument) {
			return invalidInput(stdout, stderr, fs)
		}
		fmt.Fprintf(stderr, "[ERROR] %v\n", err)
		return 1
	}

	if err := p.Start(); err != nil {
		fmt.Fprintf(stderr, "[ERROR] %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	feedCh := make(chan error, 1)
	go func() { feedCh <- p.Feed(stdin) }()
	go func() {
		// On SIGINT/SIGTERM inject one sentinel so the chain drains instead
		// of dying mid-item. Post-drain the insert lands in a finished, empty
		// inbox and is simply discarded with it.
		<-ctx.Done()
		_ = p.PlaceWork(strpipe.EndMarker)
	}()

	waitErr := p.Wait()

	var feedErr error
	if ctx.Err() == nil {
		// No signal: the sentinel came through the feeder, which has
		// therefore returned.
		feedErr = <-feedCh
	} else {
		// Signalled: the feeder may still be parked on a stdin read that
		// cannot be interrupted portably; don't join it.
		select {
		case feedErr = <-feedCh:
		default:
		}
	}
	stop()

	closeErr := p.Close()
	if waitErr != nil || feedErr != nil || closeErr != nil {
		for _, err := range []error{waitErr, feedErr, closeErr} {
			if err != nil {
				fmt.Fprintf(stderr, "[ERROR] %v\n", err)
			}
		}
		return 1
	}

	fmt.Fprintln(stdout, "Pipeline shutdown complete")
	return 0
}

// validCapacity reports whether s is a positive decimal integer with no
// leading zero.
func validCapacity(s string) bool {
	if s == "" || s[0] < '1' || s[0] > '9' {
		return false
	}
	for i := 1; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// stageWriter formats stage errors as "[ERROR][<stage>] <message>".
func stageWriter(w io.Writer) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:           w,
		NoColor:       true,
		PartsOrder:    []string{zerolog.LevelFieldName, "stage", zerolog.MessageFieldName},
		FieldsExclude: []string{"stage", "component"},
		FormatLevel: func(i interface{}) string {
			return "[" + strings.ToUpper(fmt.Sprint(i)) + "]"
		},
		FormatPartValueByName: func(i interface{}, name string) string {
			if i == nil {
				return ""
			}
			return "[" + fmt.Sprint(i) + "]"
		},
	}
}

func invalidInput(stdout, stderr io.Writer, fs *pflag.FlagSet) int {
	fmt.Fprintln(stderr, "Invalid input.")
	printUsage(stdout, fs)
	return 1
}

func printUsage(w io.Writer, fs *pflag.FlagSet) {
	fmt.Fprintln(w, "Usage: strpipe [flags] <queue_capacity> <stage1> <stage2> ... <stageN>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  queue_capacity  Maximum number of items in each stage's queue")
	fmt.Fprintln(w, "  stage1..N       Names of transforms to run, in pipeline order")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Available transforms:")
	fmt.Fprintln(w, "  identity-log    - Logs all strings that pass through")
	fmt.Fprintln(w, "  typewriter      - Simulates typewriter effect with delays")
	fmt.Fprintln(w, "  uppercase       - Converts strings to uppercase")
	fmt.Fprintln(w, "  rotate-right-1  - Moves every character right; the last wraps to the front")
	fmt.Fprintln(w, "  reverse         - Reverses the order of characters")
	fmt.Fprintln(w, "  letter-space    - Inserts a space between adjacent characters")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprint(w, fs.FlagUsages())
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Example:")
	fmt.Fprintln(w, "  strpipe 20 uppercase rotate-right-1 identity-log")
}
