package github

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/bantamhq/codoreview/internal/repotree"
	"github.com/bantamhq/codoreview/internal/source"
)

// Branches tried, in order, when no branch is configured.
var fallbackBranches = []string{"main", "master"}

// TreeEntry is one item of a recursive git tree listing.
type TreeEntry struct {
	Path string `json:"path"`
	Mode string `json:"mode"`
	Type string `json:"type"`
	SHA  string `json:"sha"`
	Size int64  `json:"size,omitempty"`
	URL  string `json:"url"`
}

// Tree is the response of the git trees endpoint.
type Tree struct {
	SHA       string      `json:"sha"`
	Tree      []TreeEntry `json:"tree"`
	Truncated bool        `json:"truncated"`
}

// Content is the response of the contents endpoint for a file.
type Content struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	Type        string `json:"type"`
	Size        int64  `json:"size"`
	Encoding    string `json:"encoding"`
	Content     string `json:"content"`
	DownloadURL string `json:"download_url"`
}

// GetTree lists the full tree of ref recursively.
func (c *Client) GetTree(ctx context.Context, repo RepoRef, ref string) (*Tree, error) {
	segments := append([]string{"git", "trees"}, strings.Split(ref, "/")...)
	apiURL := c.repoURL(repo, segments...) + "?recursive=1"

	var tree Tree
	if err := c.getJSON(ctx, apiURL, &tree); err != nil {
		return nil, fmt.Errorf("get tree %s@%s: %w", repo, ref, err)
	}
	return &tree, nil
}

// GetContent fetches the decoded content of the file at path.
func (c *Client) GetContent(ctx context.Context, repo RepoRef, path, ref string) (string, error) {
	segments := append([]string{"contents"}, strings.Split(path, "/")...)
	apiURL := c.repoURL(repo, segments...)
	if ref != "" {
		apiURL += "?ref=" + url.QueryEscape(ref)
	}

	var content Content
	if err := c.getJSON(ctx, apiURL, &content); err != nil {
		return "", fmt.Errorf("get content %s: %w", path, err)
	}

	if content.Type != "" && content.Type != "file" {
		return "", fmt.Errorf("get content %s: not a file (%s)", path, content.Type)
	}

	if content.Content == "" && content.DownloadURL != "" {
		return c.download(ctx, content.DownloadURL)
	}

	switch content.Encoding {
	case "base64":
		decoded, err := base64.StdEncoding.DecodeString(stripNewlines(content.Content))
		if err != nil {
			return "", fmt.Errorf("decode content %s: %w", path, err)
		}
		return string(decoded), nil
	case "", "utf-8":
		return content.Content, nil
	default:
		return "", fmt.Errorf("decode content %s: unsupported encoding %q", path, content.Encoding)
	}
}

func (c *Client) download(ctx context.Context, rawURL string) (string, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, rawURL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", c.decodeError(resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read download: %w", err)
	}
	return string(body), nil
}

func (c *Client) repoURL(repo RepoRef, segments ...string) string {
	var b strings.Builder
	b.WriteString(c.baseURL)
	b.WriteString("/repos/")
	b.WriteString(url.PathEscape(repo.Owner))
	b.WriteString("/")
	b.WriteString(url.PathEscape(repo.Repo))
	for _, segment := range segments {
		b.WriteString("/")
		b.WriteString(url.PathEscape(segment))
	}
	return b.String()
}

func stripNewlines(s string) string {
	return strings.NewReplacer("\n", "", "\r", "").Replace(s)
}

// Repository is a Source bound to one GitHub repository.
type Repository struct {
	client *Client
	ref    RepoRef
	branch string

	mu       sync.Mutex
	resolved string
}

var _ source.Source = (*Repository)(nil)

// Repository binds c to repo. An empty branch tries main, then master.
func (c *Client) Repository(repo RepoRef, branch string) *Repository {
	return &Repository{client: c, ref: repo, branch: branch}
}

func (r *Repository) Name() string {
	if b := r.Branch(); b != "" {
		return r.ref.String() + "@" + b
	}
	return r.ref.String()
}

// Branch returns the branch the last listing came from, or the configured
// branch before any listing.
func (r *Repository) Branch() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.resolved != "" {
		return r.resolved
	}
	return r.branch
}

func (r *Repository) ListEntries(ctx context.Context) (*source.Listing, error) {
	candidates := fallbackBranches
	if r.branch != "" {
		candidates = []string{r.branch}
	}

	var lastErr error
	for _, branch := range candidates {
		tree, err := r.client.GetTree(ctx, r.ref, branch)
		if err != nil {
			lastErr = err
			if errors.Is(err, ErrNotFound) {
				r.client.log.Info("branch not found", zap.String("repo", r.ref.String()), zap.String("branch", branch))
				continue
			}
			return nil, err
		}

		r.mu.Lock()
		r.resolved = branch
		r.mu.Unlock()

		entries := make([]repotree.Entry, 0, len(tree.Tree))
		for _, item := range tree.Tree {
			entries = append(entries, repotree.Entry{
				Path: item.Path,
				Type: repotree.ParseEntryType(item.Type),
				Size: item.Size,
			})
		}
		return &source.Listing{Entries: entries, Ref: branch, Truncated: tree.Truncated}, nil
	}

	if len(candidates) > 1 {
		return nil, fmt.Errorf("repository %s not found on branches %s: %w",
			r.ref, strings.Join(candidates, ", "), lastErr)
	}
	return nil, lastErr
}

func (r *Repository) ReadFile(ctx context.Context, path string) (string, error) {
	return r.client.GetContent(ctx, r.ref, path, r.Branch())
}
