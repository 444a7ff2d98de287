package transfer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonimelisma/gofile-go/internal/gofile"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

// uploadRequest captures the fields of one multipart upload the fake
// server received.
type uploadRequest struct {
	token    string
	folderID string
	bearer   string
	fileName string
}

// newUploadServer returns a server that records every upload request and
// answers with the queued responses, one per request, in order.
func newUploadServer(t *testing.T, responses []string, requests *[]uploadRequest) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))

		req := uploadRequest{
			token:    r.FormValue("token"),
			folderID: r.FormValue("folderId"),
			bearer:   r.Header.Get("Authorization"),
		}

		if _, header, err := r.FormFile("file"); err == nil {
			req.fileName = header.Filename
		}

		*requests = append(*requests, req)
		require.LessOrEqual(t, len(*requests), len(responses), "more uploads than queued responses")

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, responses[len(*requests)-1])
	}))
}

func okUpload(fileName, parentFolder, guestToken string) string {
	payload := fmt.Sprintf(
		`{"fileName":%q,"downloadPage":"https://gofile.io/d/%s","fileId":"fid-%s","parentFolder":%q`,
		fileName, parentFolder, fileName, parentFolder,
	)

	if guestToken != "" {
		payload += fmt.Sprintf(`,"guestToken":%q`, guestToken)
	}

	return `{"status":"ok","data":` + payload + `}}`
}

func TestUploadAll_FolderContinuity(t *testing.T) {
	var requests []uploadRequest

	srv := newUploadServer(t, []string{
		okUpload("a.txt", "folder-F", ""),
		okUpload("b.txt", "folder-F", ""),
	}, &requests)
	defer srv.Close()

	client := gofile.NewClient(srv.URL, srv.URL, "", testLogger())
	mgr := NewManager(client, testLogger(), nil)

	dir := t.TempDir()
	paths := []string{
		writeTempFile(t, dir, "a.txt", "first"),
		writeTempFile(t, dir, "b.txt", "second"),
	}

	results := mgr.UploadAll(context.Background(), paths, UploadOptions{SingleFolder: true})

	require.Len(t, results, 2)
	assert.Equal(t, StatusSuccess, results[0].Status)
	assert.Equal(t, StatusSuccess, results[1].Status)

	// The first upload fixes the batch folder; the second must carry it.
	require.Len(t, requests, 2)
	assert.Empty(t, requests[0].folderID)
	assert.Equal(t, "folder-F", requests[1].folderID)
}

func TestUploadAll_GuestTokenUpgrade(t *testing.T) {
	var requests []uploadRequest

	srv := newUploadServer(t, []string{
		okUpload("a.txt", "folder-F", "guest-G"),
		okUpload("b.txt", "folder-F", ""),
	}, &requests)
	defer srv.Close()

	client := gofile.NewClient(srv.URL, srv.URL, "", testLogger())
	mgr := NewManager(client, testLogger(), nil)

	dir := t.TempDir()
	paths := []string{
		writeTempFile(t, dir, "a.txt", "first"),
		writeTempFile(t, dir, "b.txt", "second"),
	}

	results := mgr.UploadAll(context.Background(), paths, UploadOptions{SingleFolder: true})
	require.Len(t, results, 2)

	// First request is anonymous; the issued guest token must ride every
	// subsequent request of the batch.
	require.Len(t, requests, 2)
	assert.Empty(t, requests[0].bearer)
	assert.Equal(t, "Bearer guest-G", requests[1].bearer)
	assert.Equal(t, "guest-G", requests[1].token)
	assert.Equal(t, "guest-G", client.Token())
}

func TestUploadAll_NoContinuityWithoutSingleFolder(t *testing.T) {
	var requests []uploadRequest

	srv := newUploadServer(t, []string{
		okUpload("a.txt", "folder-1", "guest-G"),
		okUpload("b.txt", "folder-2", ""),
	}, &requests)
	defer srv.Close()

	client := gofile.NewClient(srv.URL, srv.URL, "", testLogger())
	mgr := NewManager(client, testLogger(), nil)

	dir := t.TempDir()
	paths := []string{
		writeTempFile(t, dir, "a.txt", "first"),
		writeTempFile(t, dir, "b.txt", "second"),
	}

	mgr.UploadAll(context.Background(), paths, UploadOptions{})

	require.Len(t, requests, 2)
	assert.Empty(t, requests[1].folderID)
	assert.Empty(t, requests[1].bearer)
}

func TestUploadAll_ExplicitFolderIDWins(t *testing.T) {
	var requests []uploadRequest

	srv := newUploadServer(t, []string{
		okUpload("a.txt", "folder-X", ""),
		okUpload("b.txt", "folder-X", ""),
	}, &requests)
	defer srv.Close()

	client := gofile.NewClient(srv.URL, srv.URL, "", testLogger())
	mgr := NewManager(client, testLogger(), nil)

	dir := t.TempDir()
	paths := []string{
		writeTempFile(t, dir, "a.txt", "first"),
		writeTempFile(t, dir, "b.txt", "second"),
	}

	mgr.UploadAll(context.Background(), paths, UploadOptions{FolderID: "folder-X", SingleFolder: true})

	require.Len(t, requests, 2)
	assert.Equal(t, "folder-X", requests[0].folderID)
	assert.Equal(t, "folder-X", requests[1].folderID)
}

func TestUploadAll_MissingFileReportedWithoutNetworkCall(t *testing.T) {
	var requests []uploadRequest

	srv := newUploadServer(t, []string{
		okUpload("b.txt", "folder-1", ""),
	}, &requests)
	defer srv.Close()

	client := gofile.NewClient(srv.URL, srv.URL, "", testLogger())
	mgr := NewManager(client, testLogger(), nil)

	dir := t.TempDir()
	missing := filepath.Join(dir, "missing.txt")
	paths := []string{
		missing,
		writeTempFile(t, dir, "b.txt", "second"),
	}

	results := mgr.UploadAll(context.Background(), paths, UploadOptions{})

	// The missing file fails locally, the sibling still uploads.
	require.Len(t, results, 2)
	assert.Equal(t, StatusError, results[0].Status)
	assert.Equal(t, missing, results[0].File)
	assert.Equal(t, gofile.KindLocal, results[0].ErrorKind)
	assert.Equal(t, StatusSuccess, results[1].Status)
	assert.Len(t, requests, 1)
}

func TestUploadAll_SuccessRecordFields(t *testing.T) {
	var requests []uploadRequest

	srv := newUploadServer(t, []string{
		okUpload("a.txt", "folder-1", ""),
	}, &requests)
	defer srv.Close()

	client := gofile.NewClient(srv.URL, srv.URL, "", testLogger())
	mgr := NewManager(client, testLogger(), nil)

	dir := t.TempDir()
	results := mgr.UploadAll(context.Background(), []string{writeTempFile(t, dir, "a.txt", "x")}, UploadOptions{})

	require.Len(t, results, 1)
	require.Len(t, requests, 1)
	assert.Equal(t, "a.txt", requests[0].fileName)
	assert.Equal(t, "a.txt", results[0].File)
	assert.Equal(t, StatusSuccess, results[0].Status)
	assert.Equal(t, "https://gofile.io/d/folder-1", results[0].DownloadPage)
	assert.Equal(t, "folder-1", results[0].ParentFolder)
}

func TestDownloadAll_SingleFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("0123456789"))
	}))
	defer srv.Close()

	client := gofile.NewClient(srv.URL, srv.URL, "", testLogger())
	mgr := NewManager(client, testLogger(), nil)

	destDir := t.TempDir()
	node := &gofile.ContentNode{
		Type: gofile.ContentTypeFile,
		Name: "a.txt",
		Size: 10,
		Link: srv.URL + "/a.txt",
	}

	results := mgr.DownloadAll(context.Background(), node, destDir)

	require.Len(t, results, 1)
	assert.Equal(t, StatusSuccess, results[0].Status)
	assert.Equal(t, "a.txt", results[0].File)
	assert.Equal(t, filepath.Join(destDir, "a.txt"), results[0].Path)
	assert.Equal(t, int64(10), results[0].Size)

	written, err := os.ReadFile(results[0].Path)
	require.NoError(t, err)
	assert.Equal(t, "0123456789", string(written))
}

func TestDownloadAll_PartialFailureIsolation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/b.txt" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		_, _ = w.Write([]byte("content"))
	}))
	defer srv.Close()

	client := gofile.NewClient(srv.URL, srv.URL, "", testLogger())
	mgr := NewManager(client, testLogger(), nil)

	node := &gofile.ContentNode{
		Type: gofile.ContentTypeFolder,
		Name: "shared",
		Children: map[string]gofile.ContentNode{
			"c1": {ID: "c1", Type: gofile.ContentTypeFile, Name: "a.txt", Size: 7, Link: srv.URL + "/a.txt"},
			"c2": {ID: "c2", Type: gofile.ContentTypeFile, Name: "b.txt", Size: 7, Link: srv.URL + "/b.txt"},
			"c3": {ID: "c3", Type: gofile.ContentTypeFile, Name: "c.txt", Size: 7, Link: srv.URL + "/c.txt"},
		},
	}

	results := mgr.DownloadAll(context.Background(), node, t.TempDir())

	// One child failing must not abort its siblings.
	require.Len(t, results, 3)
	assert.Equal(t, StatusSuccess, results[0].Status)
	assert.Equal(t, "a.txt", results[0].File)
	assert.Equal(t, StatusError, results[1].Status)
	assert.Equal(t, "b.txt", results[1].File)
	assert.Equal(t, gofile.KindNetwork, results[1].ErrorKind)
	assert.Equal(t, StatusSuccess, results[2].Status)
	assert.Equal(t, "c.txt", results[2].File)
}

func TestDownloadAll_SkipsNestedFolders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("content"))
	}))
	defer srv.Close()

	client := gofile.NewClient(srv.URL, srv.URL, "", testLogger())
	mgr := NewManager(client, testLogger(), nil)

	node := &gofile.ContentNode{
		Type: gofile.ContentTypeFolder,
		Children: map[string]gofile.ContentNode{
			"c1": {ID: "c1", Type: gofile.ContentTypeFile, Name: "a.txt", Link: srv.URL + "/a.txt"},
			"c2": {ID: "c2", Type: gofile.ContentTypeFolder, Name: "nested"},
		},
	}

	results := mgr.DownloadAll(context.Background(), node, t.TempDir())

	// No recursive descent: nested subfolders are skipped.
	require.Len(t, results, 1)
	assert.Equal(t, "a.txt", results[0].File)
}

func TestDownloadAll_NameFallbackAndMissingLink(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("content"))
	}))
	defer srv.Close()

	client := gofile.NewClient(srv.URL, srv.URL, "", testLogger())
	mgr := NewManager(client, testLogger(), nil)

	node := &gofile.ContentNode{
		Type: gofile.ContentTypeFolder,
		Children: map[string]gofile.ContentNode{
			"c1": {ID: "c1", Type: gofile.ContentTypeFile, Link: srv.URL + "/f"},
			"c2": {ID: "c2", Type: gofile.ContentTypeFile, Name: "no-link.txt"},
		},
	}

	results := mgr.DownloadAll(context.Background(), node, t.TempDir())

	require.Len(t, results, 2)

	// Children sort by name, so the nameless child comes first and gets a
	// synthesized "file_<id>" name.
	assert.Equal(t, "file_c1", results[0].File)
	assert.Equal(t, StatusSuccess, results[0].Status)

	assert.Equal(t, "no-link.txt", results[1].File)
	assert.Equal(t, StatusError, results[1].Status)
	assert.Contains(t, results[1].Message, "no download link")
	assert.Equal(t, gofile.KindAPI, results[1].ErrorKind)
}

func TestDownloadAll_ProgressFactoryReceivesBytes(t *testing.T) {
	content := []byte("some file content")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(content)
	}))
	defer srv.Close()

	client := gofile.NewClient(srv.URL, srv.URL, "", testLogger())

	var (
		reported  int
		doneCalls int
	)

	factory := func(name string, size int64) (gofile.ProgressFunc, func()) {
		assert.Equal(t, "a.txt", name)
		assert.Equal(t, int64(len(content)), size)

		return func(n int) { reported += n }, func() { doneCalls++ }
	}

	mgr := NewManager(client, testLogger(), factory)

	node := &gofile.ContentNode{
		Type: gofile.ContentTypeFile,
		Name: "a.txt",
		Size: int64(len(content)),
		Link: srv.URL + "/a.txt",
	}

	results := mgr.DownloadAll(context.Background(), node, t.TempDir())

	require.Len(t, results, 1)
	assert.Equal(t, StatusSuccess, results[0].Status)
	assert.Equal(t, len(content), reported)
	assert.Equal(t, 1, doneCalls)
}
