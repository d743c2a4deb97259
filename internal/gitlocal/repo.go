// Package gitlocal lists and reads a repository checked out on disk.
package gitlocal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"unicode/utf8"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"
	"go.uber.org/zap"

	"github.com/bantamhq/codoreview/internal/repotree"
	"github.com/bantamhq/codoreview/internal/source"
)

const maxFileSize = 1024 * 1024

var (
	ErrNotFound = errors.New("not found")
	ErrEmpty    = errors.New("repository is empty")
	ErrBinary   = errors.New("binary file")
	ErrTooLarge = errors.New("file too large")
)

// Repo is a Source backed by a go-git repository.
type Repo struct {
	repo   *git.Repository
	name   string
	branch string
	log    *zap.Logger

	mu       sync.Mutex
	commit   *object.Commit
	resolved string
}

var _ source.Source = (*Repo)(nil)

// Open opens the checkout containing path. An empty branch uses HEAD.
func Open(path, branch string, log *zap.Logger) (*Repo, error) {
	gitRepo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open repository %s: %w", path, err)
	}

	name := path
	if abs, err := filepath.Abs(path); err == nil {
		name = filepath.Base(abs)
	}
	return New(gitRepo, name, branch, log), nil
}

func New(gitRepo *git.Repository, name, branch string, log *zap.Logger) *Repo {
	if log == nil {
		log = zap.NewNop()
	}
	return &Repo{repo: gitRepo, name: name, branch: branch, log: log}
}

func (r *Repo) Name() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.resolved != "" {
		return r.name + "@" + r.resolved
	}
	return r.name
}

func (r *Repo) ListEntries(ctx context.Context) (*source.Listing, error) {
	commit, ref, err := r.resolveCommit()
	if err != nil {
		return nil, err
	}

	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("load tree: %w", err)
	}

	walker := object.NewTreeWalker(tree, true, nil)
	defer walker.Close()

	var entries []repotree.Entry
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		name, entry, err := walker.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("walk tree: %w", err)
		}

		if entry.Mode == filemode.Dir {
			entries = append(entries, repotree.Entry{Path: name, Type: repotree.TypeTree})
			continue
		}

		var size int64
		if entry.Mode.IsFile() {
			if blob, err := r.repo.BlobObject(entry.Hash); err == nil {
				size = blob.Size
			}
		}
		entries = append(entries, repotree.Entry{Path: name, Type: repotree.TypeBlob, Size: size})
	}

	r.mu.Lock()
	r.commit = commit
	r.resolved = ref
	r.mu.Unlock()

	r.log.Debug("listed local repository",
		zap.String("repo", r.name),
		zap.String("ref", ref),
		zap.Int("entries", len(entries)),
	)

	return &source.Listing{Entries: entries, Ref: ref}, nil
}

func (r *Repo) ReadFile(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	r.mu.Lock()
	commit := r.commit
	r.mu.Unlock()

	if commit == nil {
		var err error
		commit, _, err = r.resolveCommit()
		if err != nil {
			return "", err
		}
	}

	file, err := commit.File(path)
	if errors.Is(err, object.ErrFileNotFound) {
		return "", fmt.Errorf("read %s: %w", path, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}

	if file.Size > maxFileSize {
		return "", fmt.Errorf("read %s: %w", path, ErrTooLarge)
	}

	content, err := file.Contents()
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}

	if isBinaryContent(content) {
		return "", fmt.Errorf("read %s: %w", path, ErrBinary)
	}

	return content, nil
}

func (r *Repo) resolveCommit() (*object.Commit, string, error) {
	hash, ref, err := resolveRef(r.repo, r.branch)
	if err != nil {
		return nil, "", err
	}

	commit, err := r.repo.CommitObject(hash)
	if err != nil {
		return nil, "", fmt.Errorf("load commit %s: %w", hash, err)
	}
	return commit, ref, nil
}

// resolveRef resolves a branch, tag or full commit hash. An empty ref means
// HEAD. The returned name is the short ref the commit was reached through.
func resolveRef(repo *git.Repository, refStr string) (plumbing.Hash, string, error) {
	if refStr == "" || refStr == "HEAD" {
		head, err := repo.Head()
		if err != nil {
			return plumbing.ZeroHash, "", ErrEmpty
		}
		name := head.Name().Short()
		if !head.Name().IsBranch() {
			name = head.Hash().String()[:7]
		}
		return head.Hash(), name, nil
	}

	if len(refStr) == 40 {
		hash := plumbing.NewHash(refStr)
		if _, err := repo.CommitObject(hash); err == nil {
			return hash, refStr[:7], nil
		}
	}

	if ref, err := repo.Reference(plumbing.NewBranchReferenceName(refStr), true); err == nil {
		return ref.Hash(), refStr, nil
	}

	if ref, err := repo.Reference(plumbing.NewTagReferenceName(refStr), true); err == nil {
		if tag, err := repo.TagObject(ref.Hash()); err == nil {
			return tag.Target, refStr, nil
		}
		return ref.Hash(), refStr, nil
	}

	return plumbing.ZeroHash, "", fmt.Errorf("reference %s: %w", refStr, ErrNotFound)
}

func isBinaryContent(content string) bool {
	if !utf8.ValidString(content) {
		return true
	}
	for i := 0; i < len(content); i++ {
		if content[i] == 0 {
			return true
		}
	}
	return false
}
