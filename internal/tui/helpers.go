package tui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/bantamhq/codoreview/internal/github"
	"github.com/bantamhq/codoreview/internal/gitlocal"
)

func truncateWithEllipsis(s string, maxWidth int) string {
	if maxWidth < 1 {
		return ""
	}
	if lipgloss.Width(s) <= maxWidth {
		return s
	}
	runes := []rune(s)
	for i := len(runes) - 1; i >= 0; i-- {
		truncated := string(runes[:i]) + "…"
		if lipgloss.Width(truncated) <= maxWidth {
			return truncated
		}
	}
	return "…"
}

func rightAlignInWidth(left, right string, width int) string {
	if width < 1 {
		width = 1
	}
	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

func formatSize(bytes int64) string {
	if bytes <= 0 {
		return ""
	}
	return humanize.IBytes(uint64(bytes))
}

// friendlyError turns a listing failure into a title and a hint.
func friendlyError(err error) (string, string) {
	switch {
	case errors.Is(err, github.ErrInvalidURL):
		return "Invalid GitHub URL format", "Use https://github.com/owner/repo, owner/repo or a local path."
	case errors.Is(err, github.ErrNotFound), errors.Is(err, gitlocal.ErrNotFound):
		return "Repository not found", err.Error()
	case errors.Is(err, gitlocal.ErrEmpty):
		return "Repository is empty", "There are no commits to browse."
	default:
		return "Could not load repository", err.Error()
	}
}
