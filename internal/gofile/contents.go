package gofile

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// websiteToken is a fixed public token the contents endpoint requires to
// avoid an "error-notPremium" rejection.
const websiteToken = "4fd6sg89d7s6"

// serviceDomain and sharePathMarker drive content-id extraction from URLs.
const (
	serviceDomain   = "gofile.io"
	sharePathMarker = serviceDomain + "/d/"
)

// ExtractID returns the bare content identifier from a share URL, any
// other service URL, or an already-bare id. Pure string transform, no
// I/O, and idempotent: extracting an extracted id is a no-op.
func ExtractID(urlOrID string) string {
	if i := strings.Index(urlOrID, sharePathMarker); i >= 0 {
		id := urlOrID[i+len(sharePathMarker):]
		if j := strings.IndexByte(id, '?'); j >= 0 {
			id = id[:j]
		}

		if j := strings.IndexByte(id, '/'); j >= 0 {
			id = id[:j]
		}

		return id
	}

	if strings.Contains(urlOrID, serviceDomain) {
		id := strings.TrimRight(urlOrID, "/")
		if j := strings.LastIndexByte(id, '/'); j >= 0 {
			id = id[j+1:]
		}

		if j := strings.IndexByte(id, '?'); j >= 0 {
			id = id[:j]
		}

		return id
	}

	return urlOrID
}

// CreateGuestAccount creates a throwaway guest account and adopts its
// token as the session credential. Returns the token.
func (c *Client) CreateGuestAccount(ctx context.Context) (string, error) {
	c.logger.Debug("creating guest account")

	raw, err := c.doJSON(ctx, http.MethodPost, c.apiBase+"/accounts", nil, nil, nil, "accounts")
	if err != nil {
		return "", err
	}

	var payload struct {
		Token string `json:"token"`
	}

	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", fmt.Errorf("gofile: decoding account payload: %w", err)
	}

	if payload.Token != "" {
		c.SetToken(payload.Token)
		c.logger.Debug("guest account created")
	}

	return payload.Token, nil
}

// Resolve fetches metadata for a content id: a single file or a folder
// with its immediate children. A lookup must never fail purely for lack
// of identity, so a guest account is created first when the session
// holds no credential.
func (c *Client) Resolve(ctx context.Context, contentID string) (*ContentNode, error) {
	if c.token == "" {
		c.logger.Debug("no token held, creating guest account before lookup")

		if _, err := c.CreateGuestAccount(ctx); err != nil {
			return nil, err
		}
	}

	endpoint := fmt.Sprintf("%s/contents/%s", c.apiBase, contentID)
	query := url.Values{
		"contentFilter": {""},
		"page":          {"1"},
		"pageSize":      {"1000"},
		"sortField":     {"name"},
		"sortDirection": {"1"},
	}
	headers := map[string]string{"x-website-token": websiteToken}

	c.logger.Info("resolving content", slog.String("content_id", contentID))

	raw, err := c.doJSON(ctx, http.MethodGet, endpoint, nil, query, headers, "contents")
	if err != nil {
		return nil, err
	}

	return contentNodeFromPayload(raw)
}

// CreateFolder creates a folder under the given parent folder.
func (c *Client) CreateFolder(ctx context.Context, parentFolderID, folderName string) (*Folder, error) {
	c.logger.Info("creating folder",
		slog.String("parent_folder_id", parentFolderID),
		slog.String("name", folderName),
	)

	body := map[string]string{
		"parentFolderId": parentFolderID,
		"folderName":     folderName,
	}

	raw, err := c.doJSON(ctx, http.MethodPost, c.apiBase+"/contents/createFolder", body, nil, nil, "createFolder")
	if err != nil {
		return nil, err
	}

	return folderFromPayload(raw)
}

// DeleteContents deletes one or more items by content id.
func (c *Client) DeleteContents(ctx context.Context, contentIDs []string) error {
	c.logger.Info("deleting contents", slog.Int("count", len(contentIDs)))

	body := map[string]string{
		"contentsId": strings.Join(contentIDs, ","),
	}

	_, err := c.doJSON(ctx, http.MethodDelete, c.apiBase+"/contents", body, nil, nil, "deleteContents")

	return err
}
