package gofile

import "io"

// ProgressFunc receives the number of bytes transferred in the most
// recent chunk. It is invoked zero or more times, never with a zero
// value. Accumulating a running total is the caller's responsibility.
type ProgressFunc func(n int)

// ProgressReader is a pass-through reader that reports bytes read.
// Reads are forwarded lazily to the underlying source so memory use
// stays bounded regardless of file size.
type ProgressReader struct {
	r      io.Reader
	fn     ProgressFunc
	closed bool
}

// NewProgressReader wraps r so that every non-empty read invokes fn with
// the byte count actually returned. A nil fn disables reporting.
func NewProgressReader(r io.Reader, fn ProgressFunc) *ProgressReader {
	return &ProgressReader{r: r, fn: fn}
}

func (p *ProgressReader) Read(buf []byte) (int, error) {
	n, err := p.r.Read(buf)
	if n > 0 && p.fn != nil {
		p.fn(n)
	}

	return n, err
}

// Close closes the underlying source exactly once, when it is a closer.
func (p *ProgressReader) Close() error {
	if p.closed {
		return nil
	}

	p.closed = true

	if closer, ok := p.r.(io.Closer); ok {
		return closer.Close()
	}

	return nil
}
