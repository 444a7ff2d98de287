package gofile

import (
	"encoding/json"
	"fmt"
)

// Content type values reported by the contents endpoint.
const (
	ContentTypeFile   = "file"
	ContentTypeFolder = "folder"
)

// FileRecord is the result of a successful upload. Raw retains the full
// response payload for fields the record does not promote to named
// attributes. Immutable once constructed.
type FileRecord struct {
	Name         string
	DownloadPage string
	FileID       string
	ParentFolder string
	GuestToken   string // present only when the server issued a guest account
	Raw          map[string]any
}

// fileRecordPayload mirrors the upload response payload JSON exactly.
type fileRecordPayload struct {
	FileName     string `json:"fileName"`
	DownloadPage string `json:"downloadPage"`
	FileID       string `json:"fileId"`
	ParentFolder string `json:"parentFolder"`
	GuestToken   string `json:"guestToken"`
}

// fileRecordFromPayload builds a FileRecord from a normalized upload payload.
func fileRecordFromPayload(raw json.RawMessage) (*FileRecord, error) {
	var p fileRecordPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("gofile: decoding upload payload: %w", err)
	}

	rec := &FileRecord{
		Name:         p.FileName,
		DownloadPage: p.DownloadPage,
		FileID:       p.FileID,
		ParentFolder: p.ParentFolder,
		GuestToken:   p.GuestToken,
	}

	if err := json.Unmarshal(raw, &rec.Raw); err != nil {
		return nil, fmt.Errorf("gofile: decoding upload payload: %w", err)
	}

	return rec, nil
}

// ContentNode is the result of resolving a content identifier: a single
// file or a folder with its immediate children. Children is populated one
// level deep, nested subfolders are not recursed. Read-only.
type ContentNode struct {
	ID       string
	Type     string
	Name     string
	Size     int64
	Link     string // files only
	Children map[string]ContentNode
}

// contentPayload mirrors the contents response payload JSON exactly.
type contentPayload struct {
	ID       string                    `json:"id"`
	Type     string                    `json:"type"`
	Name     string                    `json:"name"`
	Size     int64                     `json:"size"`
	Link     string                    `json:"link"`
	Children map[string]contentPayload `json:"children"`
}

// contentNodeFromPayload normalizes a contents payload into a ContentNode.
// Unknown content types are rejected.
func contentNodeFromPayload(raw json.RawMessage) (*ContentNode, error) {
	var p contentPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("gofile: decoding contents payload: %w", err)
	}

	if p.Type != ContentTypeFile && p.Type != ContentTypeFolder {
		return nil, &Error{
			Op:      "contents",
			Message: fmt.Sprintf("unknown content type: %s", p.Type),
			Err:     ErrAPI,
		}
	}

	node := &ContentNode{
		ID:   p.ID,
		Type: p.Type,
		Name: p.Name,
		Size: p.Size,
		Link: p.Link,
	}

	if len(p.Children) > 0 {
		node.Children = make(map[string]ContentNode, len(p.Children))
		for childID, child := range p.Children {
			node.Children[childID] = ContentNode{
				ID:   childID,
				Type: child.Type,
				Name: child.Name,
				Size: child.Size,
				Link: child.Link,
			}
		}
	}

	return node, nil
}

// Folder is the result of creating a folder.
type Folder struct {
	ID           string
	Name         string
	ParentFolder string
	Code         string
	Raw          map[string]any
}

// folderPayload mirrors the createFolder response payload JSON exactly.
type folderPayload struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ParentFolder string `json:"parentFolder"`
	Code         string `json:"code"`
}

func folderFromPayload(raw json.RawMessage) (*Folder, error) {
	var p folderPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("gofile: decoding folder payload: %w", err)
	}

	folder := &Folder{
		ID:           p.ID,
		Name:         p.Name,
		ParentFolder: p.ParentFolder,
		Code:         p.Code,
	}

	if err := json.Unmarshal(raw, &folder.Raw); err != nil {
		return nil, fmt.Errorf("gofile: decoding folder payload: %w", err)
	}

	return folder, nil
}
