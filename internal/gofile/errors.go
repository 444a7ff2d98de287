// Package gofile provides an HTTP client for the Gofile API with
// streaming uploads and downloads, response envelope validation, and
// error classification.
package gofile

import (
	"errors"
	"fmt"
)

// Sentinel errors for failure classification.
// Use errors.Is(err, gofile.ErrAPI) to check.
var (
	// ErrNetwork means the request never received a valid response:
	// DNS, TLS, connection, or timeout faults at the transport layer,
	// or an HTTP-level failure on a direct download link.
	ErrNetwork = errors.New("gofile: network failure")

	// ErrAPI means a response was received but the envelope signals
	// failure, is malformed, or reports an unrecognized content type.
	ErrAPI = errors.New("gofile: api error")

	// ErrUpload means the multipart POST itself failed. Upload timeouts
	// are the dominant real-world failure mode for large transfers, so
	// they are reported distinctly from generic network faults.
	ErrUpload = errors.New("gofile: upload failed")
)

// Error wraps a sentinel error with the operation, endpoint, remote
// status, and a diagnostic message.
type Error struct {
	Op       string // logical operation, e.g. "upload", "contents"
	Endpoint string
	Status   string // remote envelope status or HTTP status, if known
	Message  string
	Err      error // sentinel, for errors.Is()
}

func (e *Error) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("gofile: %s: %s (%s)", e.Op, e.Message, e.Status)
	}

	return fmt.Sprintf("gofile: %s: %s", e.Op, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Kind labels for batch result records.
const (
	KindNetwork = "network_error"
	KindAPI     = "api_error"
	KindUpload  = "upload_error"
	KindLocal   = "local_error"
)

// Kind maps an error to a stable classification label. Errors carrying
// no sentinel are local I/O failures that never touched the network.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrUpload):
		return KindUpload
	case errors.Is(err, ErrAPI):
		return KindAPI
	case errors.Is(err, ErrNetwork):
		return KindNetwork
	default:
		return KindLocal
	}
}
