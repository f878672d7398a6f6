package dropbox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// FileMetadata describes a single entry returned by ListFolder.
type FileMetadata struct {
	Tag  string `json:".tag"`
	Name string `json:"name"`
	Path string `json:"path_lower"`
	Rev  string `json:"rev"`
	Size uint64 `json:"size"`
}

// IsFile reports whether the entry is a regular file (not a folder).
func (m FileMetadata) IsFile() bool {
	return m.Tag == "file"
}

// uploadArg is the Dropbox-API-Arg payload for files/upload.
type uploadArg struct {
	Path string `json:"path"`
	Mode any    `json:"mode"`
}

// updateMode requests a write conditional on the current revision.
type updateMode struct {
	Tag    string `json:".tag"`
	Update string `json:"update"`
}

// Download fetches the file at path. Returns the content and the file's
// revision token, or ErrNotFound when the path does not exist.
func (c *Client) Download(ctx context.Context, path string) ([]byte, string, error) {
	tok, err := c.token(ctx)
	if err != nil {
		return nil, "", err
	}

	arg, err := json.Marshal(map[string]string{"path": path})
	if err != nil {
		return nil, "", fmt.Errorf("could not marshal download arg: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.contentURL+"/2/files/download", nil)
	if err != nil {
		return nil, "", fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+tok)
	req.Header.Set("Dropbox-API-Arg", string(arg))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", &ConnectivityError{Op: "download", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body := readErrorBody(resp.Body)
		return nil, "", classifyStatus("download", path, resp.StatusCode, []byte(body))
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", &ConnectivityError{Op: "download", Err: err}
	}

	var meta FileMetadata
	if result := resp.Header.Get("Dropbox-API-Result"); result != "" {
		_ = json.Unmarshal([]byte(result), &meta)
	}
	return content, meta.Rev, nil
}

// Upload writes content to path, overwriting any existing file. Returns the
// new revision token.
func (c *Client) Upload(ctx context.Context, path string, content []byte) (string, error) {
	return c.upload(ctx, path, content, "overwrite")
}

// UploadIfRev writes content to path only if the file's current revision
// still equals expectedRev. A mismatch yields a ConflictError, which lets
// callers implement optimistic concurrency on top of a plain blob store.
func (c *Client) UploadIfRev(ctx context.Context, path string, content []byte, expectedRev string) (string, error) {
	return c.upload(ctx, path, content, updateMode{Tag: "update", Update: expectedRev})
}

func (c *Client) upload(ctx context.Context, path string, content []byte, mode any) (string, error) {
	tok, err := c.token(ctx)
	if err != nil {
		return "", err
	}

	arg, err := json.Marshal(uploadArg{Path: path, Mode: mode})
	if err != nil {
		return "", fmt.Errorf("could not marshal upload arg: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.contentURL+"/2/files/upload", bytes.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+tok)
	req.Header.Set("Dropbox-API-Arg", string(arg))
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &ConnectivityError{Op: "upload", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &ConnectivityError{Op: "upload", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return "", classifyStatus("upload", path, resp.StatusCode, body)
	}

	var meta FileMetadata
	if err := json.Unmarshal(body, &meta); err != nil {
		return "", fmt.Errorf("could not unmarshal upload response: %w", err)
	}
	return meta.Rev, nil
}

// Delete removes the file or folder at path.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.doRPC(ctx, "/2/files/delete_v2", path, map[string]string{"path": path}, nil)
}

// listFolderResponse is the files/list_folder response page.
type listFolderResponse struct {
	Entries []FileMetadata `json:"entries"`
	Cursor  string         `json:"cursor"`
	HasMore bool           `json:"has_more"`
}

// ListFolder returns the file entries directly under path, following
// pagination cursors until exhausted. A missing folder yields ErrNotFound;
// callers that treat an absent folder as empty must check for it.
func (c *Client) ListFolder(ctx context.Context, path string) ([]FileMetadata, error) {
	var page listFolderResponse
	if err := c.doRPC(ctx, "/2/files/list_folder", path, map[string]string{"path": path}, &page); err != nil {
		return nil, err
	}

	entries := page.Entries
	for page.HasMore {
		cursor := page.Cursor
		page = listFolderResponse{}
		if err := c.doRPC(ctx, "/2/files/list_folder/continue", path, map[string]string{"cursor": cursor}, &page); err != nil {
			return nil, err
		}
		entries = append(entries, page.Entries...)
	}

	files := make([]FileMetadata, 0, len(entries))
	for _, e := range entries {
		if e.IsFile() {
			files = append(files, e)
		}
	}
	return files, nil
}

// CreateFolder creates a folder at path. Succeeds silently when the folder
// already exists.
func (c *Client) CreateFolder(ctx context.Context, path string) error {
	err := c.doRPC(ctx, "/2/files/create_folder_v2", path, map[string]string{"path": path}, nil)
	if err != nil && IsConflict(err) {
		return nil // already exists
	}
	return err
}

// GetRev returns the current revision of the file at path without
// downloading its content.
func (c *Client) GetRev(ctx context.Context, path string) (string, error) {
	var meta FileMetadata
	if err := c.doRPC(ctx, "/2/files/get_metadata", path, map[string]string{"path": path}, &meta); err != nil {
		return "", err
	}
	return meta.Rev, nil
}

// JoinPath joins path segments into a Dropbox path with a single leading
// slash and no duplicate separators.
func JoinPath(segments ...string) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		s = strings.Trim(s, "/")
		if s != "" {
			parts = append(parts, s)
		}
	}
	return "/" + strings.Join(parts, "/")
}
