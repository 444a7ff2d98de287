package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/tonimelisma/gofile-go/internal/gofile"
	"github.com/tonimelisma/gofile-go/internal/transfer"
)

// progressFactory returns a per-item progress renderer writing an
// in-place status line to stderr. Rendering is disabled in JSON and
// quiet modes and when stderr is not a terminal, so scripted use never
// sees carriage returns.
func progressFactory(verb string) transfer.ProgressFactory {
	if flagJSON || flagQuiet || !isatty.IsTerminal(os.Stderr.Fd()) {
		return func(string, int64) (gofile.ProgressFunc, func()) {
			return nil, func() {}
		}
	}

	return func(name string, size int64) (gofile.ProgressFunc, func()) {
		var transferred int64

		rendered := false

		cb := func(n int) {
			transferred += int64(n)
			rendered = true

			if size > 0 {
				fmt.Fprintf(os.Stderr, "\r%s %s: %s / %s", verb, name, formatSize(transferred), formatSize(size))
			} else {
				fmt.Fprintf(os.Stderr, "\r%s %s: %s", verb, name, formatSize(transferred))
			}
		}

		done := func() {
			if rendered {
				fmt.Fprint(os.Stderr, "\n")
			}
		}

		return cb, done
	}
}
