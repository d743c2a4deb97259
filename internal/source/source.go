// Package source defines where repository listings and file contents come
// from.
package source

import (
	"context"

	"github.com/bantamhq/codoreview/internal/repotree"
)

// Source lists a repository and reads its files.
type Source interface {
	// Name is a short label for the repository, e.g. "owner/repo@main".
	Name() string
	ListEntries(ctx context.Context) (*Listing, error)
	ReadFile(ctx context.Context, path string) (string, error)
}

// Listing is the flat result of listing a repository.
type Listing struct {
	Entries []repotree.Entry
	// Ref is the branch or revision the listing was taken from.
	Ref string
	// Truncated is set when the listing is known to be incomplete.
	Truncated bool
}
