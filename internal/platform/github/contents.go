package github

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/polyscout/polyscout/internal/domain"
)

// ContentsStore implements domain.SnapshotStore on the GitHub contents API.
// Every Put creates a new commit; files are never updated in place because
// snapshot paths embed the run timestamp.
type ContentsStore struct {
	client *Client
	owner  string
	repo   string
}

// NewContentsStore creates a ContentsStore writing to owner/repo.
func NewContentsStore(client *Client, owner, repo string) *ContentsStore {
	return &ContentsStore{client: client, owner: owner, repo: repo}
}

// contentsPath builds the API path for a repository file path.
func (s *ContentsStore) contentsPath(path string) string {
	return fmt.Sprintf("/repos/%s/%s/contents/%s", s.owner, s.repo, escapePath(path))
}

// escapePath percent-escapes each segment of a repository path while keeping
// the separators.
func escapePath(path string) string {
	out := ""
	for i, seg := range bytes.Split([]byte(path), []byte("/")) {
		if i > 0 {
			out += "/"
		}
		out += url.PathEscape(string(seg))
	}
	return out
}

// putRequest is the contents-API write payload.
type putRequest struct {
	Message string `json:"message"`
	Content string `json:"content"` // base64
}

// Put creates a new revision at path containing data.
func (s *ContentsStore) Put(ctx context.Context, path string, data []byte) error {
	payload, err := json.Marshal(putRequest{
		Message: "Snapshot: " + path,
		Content: base64.StdEncoding.EncodeToString(data),
	})
	if err != nil {
		return fmt.Errorf("github: marshal put payload: %w", err)
	}

	if _, err := s.client.do(ctx, http.MethodPut, s.contentsPath(path), bytes.NewReader(payload)); err != nil {
		return fmt.Errorf("github: put %s: %w", path, err)
	}
	return nil
}

// fileEntry is one row of a contents-API response, both for directory
// listings and single files.
type fileEntry struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	Size        int64  `json:"size"`
	Type        string `json:"type"`
	Content     string `json:"content"`
	Encoding    string `json:"encoding"`
	DownloadURL string `json:"download_url"`
}

// Get fetches the file at path. Large files have their content omitted from
// the API response; those are fetched through the download reference.
func (s *ContentsStore) Get(ctx context.Context, path string) ([]byte, error) {
	body, err := s.client.do(ctx, http.MethodGet, s.contentsPath(path), nil)
	if err != nil {
		return nil, fmt.Errorf("github: get %s: %w", path, err)
	}

	var entry fileEntry
	if err := json.Unmarshal(body, &entry); err != nil {
		return nil, fmt.Errorf("github: decode file %s: %w", path, err)
	}

	if entry.Content != "" {
		decoded, err := base64.StdEncoding.DecodeString(stripNewlines(entry.Content))
		if err != nil {
			return nil, fmt.Errorf("github: decode content %s: %w", path, err)
		}
		return decoded, nil
	}

	if entry.DownloadURL == "" {
		return nil, fmt.Errorf("github: get %s: %w", path, domain.ErrNotFound)
	}
	return s.download(ctx, entry.DownloadURL)
}

// List returns metadata for all files directly under prefix (one directory
// level, matching how snapshot days are laid out).
func (s *ContentsStore) List(ctx context.Context, prefix string) ([]domain.SnapshotInfo, error) {
	body, err := s.client.do(ctx, http.MethodGet, s.contentsPath(strings.TrimSuffix(prefix, "/")), nil)
	if err != nil {
		return nil, fmt.Errorf("github: list %s: %w", prefix, err)
	}

	var entries []fileEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("github: decode listing %s: %w", prefix, err)
	}

	infos := make([]domain.SnapshotInfo, 0, len(entries))
	for _, e := range entries {
		if e.Type != "file" {
			continue
		}
		infos = append(infos, domain.SnapshotInfo{
			Path: e.Path,
			Size: e.Size,
			// The contents API does not return modification times; callers
			// order snapshots by the timestamp embedded in the file name.
		})
	}
	return infos, nil
}

// download fetches raw bytes from a resolved download reference.
func (s *ContentsStore) download(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("github: create download request: %w", err)
	}
	if s.client.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.client.token)
	}

	resp, err := s.client.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("github: download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("github: download: HTTP %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// stripNewlines removes the line breaks GitHub inserts into base64 content.
func stripNewlines(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\n' && s[i] != '\r' {
			out = append(out, s[i])
		}
	}
	return string(out)
}
