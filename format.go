package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/tonimelisma/gofile-go/internal/transfer"
)

// statusf prints a status message to stderr unless quiet or JSON mode is set.
func statusf(format string, args ...any) {
	if !flagQuiet && !flagJSON {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}

// Size unit constants for human-readable formatting.
const (
	sizeKB = 1024
	sizeMB = 1024 * 1024
	sizeGB = 1024 * 1024 * 1024
	sizeTB = 1024 * 1024 * 1024 * 1024
)

// formatSize returns a human-readable size string (e.g. "1.2 MB").
func formatSize(bytes int64) string {
	switch {
	case bytes >= sizeTB:
		return fmt.Sprintf("%.1f TB", float64(bytes)/float64(sizeTB))
	case bytes >= sizeGB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/float64(sizeGB))
	case bytes >= sizeMB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(sizeMB))
	case bytes >= sizeKB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(sizeKB))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// outputResults renders batch results and returns an error when any item
// failed so the process exits non-zero.
func outputResults(results []transfer.Result, download bool) error {
	failures := writeResults(os.Stdout, results, flagJSON, download)
	if failures > 0 {
		return fmt.Errorf("%d of %d transfers failed", failures, len(results))
	}

	return nil
}

// writeResults writes the per-item result lines (or the JSON document) to
// w and returns the failure count.
func writeResults(w io.Writer, results []transfer.Result, jsonMode, download bool) int {
	failures := 0

	for i := range results {
		if results[i].Status != transfer.StatusSuccess {
			failures++
		}
	}

	if jsonMode {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		// Encoding []Result cannot fail; ignore the writer error here and
		// let the failure count drive the exit status.
		_ = enc.Encode(results)

		return failures
	}

	for i := range results {
		r := &results[i]

		switch {
		case r.Status != transfer.StatusSuccess:
			fmt.Fprintf(w, "failed  %s: %s\n", r.File, r.Message)
		case download:
			fmt.Fprintf(w, "ok      %s -> %s (%s)\n", r.File, r.Path, formatSize(r.Size))
		default:
			fmt.Fprintf(w, "ok      %s -> %s\n", r.File, r.DownloadPage)
		}
	}

	statusf("%d succeeded, %d failed\n", len(results)-failures, failures)

	return failures
}
