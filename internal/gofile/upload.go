package gofile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// fallbackUploadName is used when a stream source carries no usable name.
const fallbackUploadName = "uploaded_file"

// UploadSource is a tagged variant over "path to open" and "already-open
// stream", resolved once at the Upload entry point.
type UploadSource struct {
	path string
	name string
	r    io.Reader
}

// PathSource uploads the file at the given local path.
func PathSource(path string) UploadSource {
	return UploadSource{path: path}
}

// StreamSource uploads from an already-open reader. The name may be empty
// or path-like; Upload derives the display name from it.
func StreamSource(name string, r io.Reader) UploadSource {
	return UploadSource{name: name, r: r}
}

// displayName resolves the file name sent in the multipart form.
func (s UploadSource) displayName() string {
	if s.path != "" {
		return filepath.Base(s.path)
	}

	name := s.name
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}

	if name == "" {
		return fallbackUploadName
	}

	return name
}

// Upload posts a file as multipart form data to the upload endpoint and
// returns the resulting file record. folderID is optional; when empty
// the server places the file in a fresh guest folder. The file part is
// streamed through a ProgressReader, never buffered whole.
//
// Local open failures are reported before any network call. Transport
// faults during the POST itself classify as ErrUpload; envelope failures
// classify as ErrAPI.
func (c *Client) Upload(
	ctx context.Context, src UploadSource, folderID string, progress ProgressFunc,
) (*FileRecord, error) {
	source := src.r
	name := src.displayName()

	if src.path != "" {
		f, err := os.Open(src.path)
		if err != nil {
			return nil, fmt.Errorf("gofile: opening %s: %w", src.path, err)
		}
		defer f.Close()

		source = f
	}

	endpoint := c.uploadBase + "/uploadfile"

	c.logger.Info("starting upload",
		slog.String("name", name),
		slog.String("endpoint", endpoint),
	)

	resp, err := c.postMultipart(ctx, endpoint, folderID, name, NewProgressReader(source, progress))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := c.decodeEnvelope(resp, "upload", endpoint)
	if err != nil {
		return nil, err
	}

	rec, err := fileRecordFromPayload(raw)
	if err != nil {
		return nil, err
	}

	c.logger.Info("upload finished",
		slog.String("name", rec.Name),
		slog.String("file_id", rec.FileID),
	)

	return rec, nil
}

// postMultipart streams the multipart form through an io.Pipe so the
// request body is produced as the file is read. Uses the transfer client:
// no request timeout.
func (c *Client) postMultipart(
	ctx context.Context, endpoint, folderID, name string, file io.Reader,
) (*http.Response, error) {
	token := c.token

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		err := writeUploadForm(mw, token, folderID, name, file)
		if closeErr := mw.Close(); err == nil {
			err = closeErr
		}

		pw.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, pr)
	if err != nil {
		return nil, fmt.Errorf("gofile: creating upload request: %w", err)
	}

	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("User-Agent", userAgent)

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.xferClient.Do(req)
	if err != nil {
		msg := "upload failed: " + err.Error()
		if isTimeout(err) {
			msg = "upload timed out"
		}

		c.logger.Error("upload request failed",
			slog.String("endpoint", endpoint),
			slog.String("error", err.Error()),
		)

		return nil, &Error{
			Op:       "upload",
			Endpoint: endpoint,
			Message:  msg,
			Err:      ErrUpload,
		}
	}

	return resp, nil
}

// writeUploadForm writes the credential, folder id, and file parts.
func writeUploadForm(mw *multipart.Writer, token, folderID, name string, file io.Reader) error {
	if token != "" {
		if err := mw.WriteField("token", token); err != nil {
			return err
		}
	}

	if folderID != "" {
		if err := mw.WriteField("folderId", folderID); err != nil {
			return err
		}
	}

	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		return err
	}

	_, err = io.Copy(part, file)

	return err
}

// isTimeout reports whether err is a connection-level timeout.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error

	return errors.As(err, &netErr) && netErr.Timeout()
}
