package tui

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"

	"github.com/bantamhq/codoreview/internal/github"
	"github.com/bantamhq/codoreview/internal/gitlocal"
)

func TestRenderSource_NumbersEveryLine(t *testing.T) {
	out := ansi.Strip(renderSource("main.go", "package main\n\nfunc main() {\n\tprintln(1)\n}\n"))
	lines := strings.Split(out, "\n")

	assert.Len(t, lines, 5)
	assert.Equal(t, "  1 │ package main", lines[0])
	assert.Equal(t, "  2 │ ", lines[1])
	assert.Equal(t, "  4 │     println(1)", lines[3])
	assert.Equal(t, "  5 │ }", lines[4])
}

func TestRenderSource_UnknownLanguage(t *testing.T) {
	out := ansi.Strip(renderSource("notes.zzz", "first\nsecond"))
	assert.Equal(t, "  1 │ first\n  2 │ second", out)
}

func TestNumberLines_WidensGutter(t *testing.T) {
	lines := make([]string, 1200)
	for i := range lines {
		lines[i] = "x"
	}
	out := strings.Split(ansi.Strip(numberLines(strings.Join(lines, "\n"))), "\n")

	assert.Equal(t, "   1 │ x", out[0])
	assert.Equal(t, "1200 │ x", out[len(out)-1])
}

func TestFriendlyError(t *testing.T) {
	tests := []struct {
		err   error
		title string
	}{
		{err: fmt.Errorf("%w: gitlab.com/a/b", github.ErrInvalidURL), title: "Invalid GitHub URL format"},
		{err: fmt.Errorf("get tree: %w", github.ErrNotFound), title: "Repository not found"},
		{err: gitlocal.ErrEmpty, title: "Repository is empty"},
		{err: errors.New("dial tcp: timeout"), title: "Could not load repository"},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			title, _ := friendlyError(tt.err)
			assert.Equal(t, tt.title, title)
		})
	}
}

func TestTruncateWithEllipsis(t *testing.T) {
	assert.Equal(t, "short", truncateWithEllipsis("short", 10))
	assert.Equal(t, 6, ansi.StringWidth(truncateWithEllipsis("a-much-longer-name", 6)))
}
