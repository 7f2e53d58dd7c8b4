package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/polyscout/polyscout/internal/domain"
)

// IssueSource implements domain.DirectiveSource on the GitHub issues API.
// Each open issue whose title carries the scope tag (e.g. "[poly]") is one
// directive; the tag is stripped from the returned title.
type IssueSource struct {
	client *Client
	owner  string
	repo   string
	tag    string // lowercase
}

// NewIssueSource creates an IssueSource reading open issues from owner/repo.
// tag may be empty, in which case every open issue is in scope.
func NewIssueSource(client *Client, owner, repo, tag string) *IssueSource {
	return &IssueSource{
		client: client,
		owner:  owner,
		repo:   repo,
		tag:    strings.ToLower(tag),
	}
}

// apiIssue is the subset of the issues-API response we consume.
type apiIssue struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
	State  string `json:"state"`
	// PullRequest is non-nil when the "issue" is actually a PR; those are
	// never directives.
	PullRequest *struct{} `json:"pull_request"`
}

// Open returns the currently open directives in the Targeter's scope.
func (s *IssueSource) Open(ctx context.Context) ([]domain.Directive, error) {
	path := fmt.Sprintf("/repos/%s/%s/issues?state=open&per_page=100", s.owner, s.repo)

	body, err := s.client.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, fmt.Errorf("github: list issues: %w", err)
	}

	var issues []apiIssue
	if err := json.Unmarshal(body, &issues); err != nil {
		return nil, fmt.Errorf("github: decode issues: %w", err)
	}

	var directives []domain.Directive
	for _, issue := range issues {
		if issue.PullRequest != nil {
			continue
		}
		title := issue.Title
		if s.tag != "" {
			if !strings.Contains(strings.ToLower(title), s.tag) {
				continue
			}
			title = stripTag(title, s.tag)
		}
		title = strings.TrimSpace(title)
		if title == "" {
			continue
		}
		directives = append(directives, domain.Directive{
			Number: issue.Number,
			Title:  title,
		})
	}
	return directives, nil
}

// stripTag removes every case-insensitive occurrence of tag from title.
func stripTag(title, tag string) string {
	var b strings.Builder
	lower := strings.ToLower(title)
	for i := 0; i < len(title); {
		if strings.HasPrefix(lower[i:], tag) {
			i += len(tag)
			continue
		}
		b.WriteByte(title[i])
		i++
	}
	return b.String()
}
