// Package transfer orchestrates sequential upload and download batches
// over a gofile client: per-item result records, guest-session upgrade,
// and folder continuity across a batch.
package transfer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/tonimelisma/gofile-go/internal/gofile"
)

// Result statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Result is the per-item record a batch produces. It is the shape the
// CLI/JSON layer consumes.
type Result struct {
	File         string `json:"file"`
	Status       string `json:"status"`
	Message      string `json:"message,omitempty"`
	ErrorKind    string `json:"errorType,omitempty"`
	DownloadPage string `json:"downloadPage,omitempty"`
	DirectLink   string `json:"directLink,omitempty"`
	ParentFolder string `json:"parentFolder,omitempty"`
	Path         string `json:"path,omitempty"`
	Size         int64  `json:"size,omitempty"`
}

// ProgressFactory builds a progress callback and a completion func for a
// named transfer of the given size. Either return value may be a no-op.
// Injected so tests can supply a counting callback with no I/O.
type ProgressFactory func(name string, size int64) (gofile.ProgressFunc, func())

// Manager runs batches against one client session. Batches are strictly
// sequential: guest-token and folder continuity depend on upload order.
type Manager struct {
	client   *gofile.Client
	logger   *slog.Logger
	progress ProgressFactory
}

// NewManager creates a batch manager. progress may be nil.
func NewManager(client *gofile.Client, logger *slog.Logger, progress ProgressFactory) *Manager {
	if logger == nil {
		logger = slog.Default()
	}

	return &Manager{client: client, logger: logger, progress: progress}
}

// progressFor resolves the progress callback for one item.
func (m *Manager) progressFor(name string, size int64) (gofile.ProgressFunc, func()) {
	if m.progress == nil {
		return nil, func() {}
	}

	cb, done := m.progress(name, size)
	if done == nil {
		done = func() {}
	}

	return cb, done
}

// UploadOptions controls a batch upload.
type UploadOptions struct {
	// FolderID is an existing target folder. Empty means the server
	// default (a fresh guest folder per file).
	FolderID string

	// SingleFolder accumulates all files of the batch into the folder
	// created for the first upload, adopting its guest token so later
	// uploads land in the same place.
	SingleFolder bool
}

// UploadAll uploads each path sequentially and collects per-item results.
// One item's failure never aborts the batch. Missing local files are
// reported without any network call.
func (m *Manager) UploadAll(ctx context.Context, paths []string, opts UploadOptions) []Result {
	results := make([]Result, 0, len(paths))
	folderID := opts.FolderID

	for _, path := range paths {
		fi, err := os.Stat(path)
		if err != nil {
			m.logger.Error("file not found", slog.String("path", path))
			results = append(results, errorResult(path, fmt.Errorf("stating %s: %w", path, err)))

			continue
		}

		name := filepath.Base(path)

		cb, done := m.progressFor(name, fi.Size())
		rec, err := m.client.Upload(ctx, gofile.PathSource(path), folderID, cb)
		done()

		if err != nil {
			m.logger.Error("upload failed",
				slog.String("name", name),
				slog.String("error", err.Error()),
			)
			results = append(results, errorResult(name, err))

			continue
		}

		// First success in single-folder mode fixes the target folder and
		// upgrades a guest session so the rest of the batch lands together.
		if opts.SingleFolder && folderID == "" {
			if rec.ParentFolder != "" {
				folderID = rec.ParentFolder
				m.logger.Debug("batch folder fixed", slog.String("folder_id", folderID))
			}

			if m.client.Token() == "" && rec.GuestToken != "" {
				m.client.SetToken(rec.GuestToken)
				m.logger.Debug("guest token adopted for batch")
			}
		}

		results = append(results, uploadSuccess(name, rec))
	}

	return results
}

// uploadSuccess builds the success record for one uploaded file.
func uploadSuccess(name string, rec *gofile.FileRecord) Result {
	r := Result{
		File:         name,
		Status:       StatusSuccess,
		DownloadPage: rec.DownloadPage,
		ParentFolder: rec.ParentFolder,
	}

	if link, ok := rec.Raw["directLink"].(string); ok {
		r.DirectLink = link
	}

	return r
}

// DownloadAll downloads a resolved content node into destDir and returns
// per-item results. Folders are traversed one level deep: file children
// are downloaded, nested subfolders are skipped. A single file node is
// treated as a one-element batch.
func (m *Manager) DownloadAll(ctx context.Context, node *gofile.ContentNode, destDir string) []Result {
	if node.Type == gofile.ContentTypeFile {
		name := node.Name
		if name == "" {
			name = "downloaded_file"
		}

		return []Result{m.downloadOne(ctx, name, node.Link, node.Size, destDir)}
	}

	m.logger.Info("downloading folder",
		slog.String("name", node.Name),
		slog.Int("children", len(node.Children)),
	)

	results := make([]Result, 0, len(node.Children))

	for _, child := range sortedChildren(node) {
		if child.Type != gofile.ContentTypeFile {
			m.logger.Debug("skipping non-file child", slog.String("child_id", child.ID))

			continue
		}

		name := child.Name
		if name == "" {
			name = "file_" + child.ID
		}

		results = append(results, m.downloadOne(ctx, name, child.Link, child.Size, destDir))
	}

	return results
}

// sortedChildren returns a folder's children ordered by name, then id.
// The API sorts listings by name, but JSON objects lose their order when
// decoded into a map, so ordering is restored here.
func sortedChildren(node *gofile.ContentNode) []gofile.ContentNode {
	children := make([]gofile.ContentNode, 0, len(node.Children))
	for _, child := range node.Children {
		children = append(children, child)
	}

	sort.Slice(children, func(i, j int) bool {
		if children[i].Name != children[j].Name {
			return children[i].Name < children[j].Name
		}

		return children[i].ID < children[j].ID
	})

	return children
}

// downloadOne downloads a single file and converts any failure into an
// error record so sibling items keep processing.
func (m *Manager) downloadOne(ctx context.Context, name, link string, size int64, destDir string) Result {
	if link == "" {
		m.logger.Warn("no download link", slog.String("name", name))

		return errorResult(name, &gofile.Error{
			Op:      "download",
			Message: "no download link",
			Err:     gofile.ErrAPI,
		})
	}

	destPath := filepath.Join(destDir, name)

	cb, done := m.progressFor(name, size)
	err := m.client.DownloadFile(ctx, link, destPath, cb)
	done()

	if err != nil {
		m.logger.Error("download failed",
			slog.String("name", name),
			slog.String("error", err.Error()),
		)

		return errorResult(name, err)
	}

	return Result{
		File:   name,
		Status: StatusSuccess,
		Path:   destPath,
		Size:   size,
	}
}

// errorResult builds the failure record for one item.
func errorResult(file string, err error) Result {
	return Result{
		File:      file,
		Status:    StatusError,
		Message:   err.Error(),
		ErrorKind: gofile.Kind(err),
	}
}
