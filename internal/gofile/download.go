package gofile

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
)

// downloadChunkSize is the read size for streaming downloads to disk.
const downloadChunkSize = 8 * 1024

// DownloadFile streams a direct download link to a local path, creating
// intermediate directories as needed. The session credential, when held,
// is sent as the accountToken cookie the download hosts require. Uses
// the transfer client: no request timeout.
//
// HTTP-level failures classify as ErrNetwork; local write failures are
// plain wrapped os errors.
func (c *Client) DownloadFile(ctx context.Context, link, destPath string, progress ProgressFunc) error {
	c.logger.Info("starting download", slog.String("dest", destPath))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, http.NoBody)
	if err != nil {
		return fmt.Errorf("gofile: creating download request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)

	if c.token != "" {
		req.AddCookie(&http.Cookie{Name: "accountToken", Value: c.token})
	}

	resp, err := c.xferClient.Do(req)
	if err != nil {
		c.logger.Error("download request failed", slog.String("error", err.Error()))

		return &Error{
			Op:       "download",
			Endpoint: link,
			Message:  err.Error(),
			Err:      ErrNetwork,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &Error{
			Op:       "download",
			Endpoint: link,
			Status:   fmt.Sprintf("HTTP %d", resp.StatusCode),
			Message:  fmt.Sprintf("download failed with HTTP %d", resp.StatusCode),
			Err:      ErrNetwork,
		}
	}

	if dir := filepath.Dir(destPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("gofile: creating directory %s: %w", dir, err)
		}
	}

	f, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("gofile: creating %s: %w", destPath, err)
	}

	if err := copyChunks(f, NewProgressReader(resp.Body, progress), link, destPath); err != nil {
		f.Close()

		return err
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("gofile: closing %s: %w", destPath, err)
	}

	c.logger.Info("download complete", slog.String("dest", destPath))

	return nil
}

// copyChunks streams src to dst in fixed-size chunks. The source is a
// ProgressReader, so progress fires once per chunk actually read.
func copyChunks(dst io.Writer, src io.Reader, link, destPath string) error {
	buf := make([]byte, downloadChunkSize)

	for {
		n, readErr := src.Read(buf)
		if n > 0 {
			if _, writeErr := dst.Write(buf[:n]); writeErr != nil {
				return fmt.Errorf("gofile: writing %s: %w", destPath, writeErr)
			}
		}

		if readErr == io.EOF {
			return nil
		}

		if readErr != nil {
			return &Error{
				Op:       "download",
				Endpoint: link,
				Message:  fmt.Sprintf("streaming download content: %v", readErr),
				Err:      ErrNetwork,
			}
		}
	}
}
