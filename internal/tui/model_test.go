package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bantamhq/codoreview/internal/config"
	"github.com/bantamhq/codoreview/internal/github"
	"github.com/bantamhq/codoreview/internal/history"
	"github.com/bantamhq/codoreview/internal/repotree"
	"github.com/bantamhq/codoreview/internal/review"
	"github.com/bantamhq/codoreview/internal/source"
)

type fakeSource struct {
	entries   []repotree.Entry
	files     map[string]string
	reads     []string
	truncated bool
}

func (s *fakeSource) Name() string { return "octo/demo@main" }

func (s *fakeSource) ListEntries(context.Context) (*source.Listing, error) {
	return &source.Listing{Entries: s.entries, Ref: "main", Truncated: s.truncated}, nil
}

func (s *fakeSource) ReadFile(_ context.Context, path string) (string, error) {
	s.reads = append(s.reads, path)
	content, ok := s.files[path]
	if !ok {
		return "", fmt.Errorf("read %s: %w", path, github.ErrNotFound)
	}
	return content, nil
}

type fakeGenerator struct {
	fragments []string
	err       error
	calls     int
	last      review.Request
}

func (g *fakeGenerator) Name() string { return "fake/model" }

func (g *fakeGenerator) Stream(_ context.Context, req review.Request, onFragment func(string) error) error {
	g.calls++
	g.last = req
	for _, f := range g.fragments {
		if err := onFragment(f); err != nil {
			return err
		}
	}
	return g.err
}

type fakeStore struct {
	added []history.Review
	list  []history.Review
}

func (s *fakeStore) Add(r *history.Review) error {
	r.ID = fmt.Sprintf("r%d", len(s.added)+1)
	s.added = append(s.added, *r)
	return nil
}

func (s *fakeStore) Get(string) (*history.Review, error) { return nil, history.ErrNotFound }
func (s *fakeStore) List(history.ListOptions) ([]history.Review, error) { return s.list, nil }
func (s *fakeStore) Delete(string) error { return nil }
func (s *fakeStore) Close() error { return nil }

type harness struct {
	src       *fakeSource
	gen       *fakeGenerator
	store     *fakeStore
	cfg       *config.Config
	clipboard []string
	saved     []*config.Config
}

func newHarness() *harness {
	cfg := config.Default()
	cfg.APIKey = "test-key"
	return &harness{
		src: &fakeSource{
			entries: []repotree.Entry{
				{Path: ".gitignore", Type: repotree.TypeBlob, Size: 10},
				{Path: "README.md", Type: repotree.TypeBlob, Size: 2048},
				{Path: "src/app.js", Type: repotree.TypeBlob, Size: 20},
				{Path: "src", Type: repotree.TypeTree},
			},
			files: map[string]string{
				"README.md":  "# Demo\n",
				"src/app.js": "var x = 1;\nconsole.log(x);\n",
			},
		},
		gen:   &fakeGenerator{fragments: []string{"Use ", "`const`."}},
		store: &fakeStore{},
		cfg:   cfg,
	}
}

func (h *harness) deps() Deps {
	return Deps{
		Config: h.cfg,
		Target: "octo/demo",
		Open: func(string, *config.Config) (source.Source, error) {
			return h.src, nil
		},
		NewGenerator: func(*config.Config) (review.Generator, error) {
			return h.gen, nil
		},
		History: h.store,
		SaveConfig: func(cfg *config.Config) error {
			h.saved = append(h.saved, cfg)
			return nil
		},
		Clipboard: func(text string) error {
			h.clipboard = append(h.clipboard, text)
			return nil
		},
	}
}

// start builds a sized model and runs its initial listing.
func (h *harness) start(t *testing.T) Model {
	t.Helper()
	m := NewModel(h.deps())
	t.Cleanup(m.cancel)

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = updated.(Model)
	return drive(t, m, m.Init())
}

// drive runs cmd and feeds every resulting message back into m until no
// work is left. Spinner ticks are dropped so the loop never sleeps.
func drive(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()

	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		require.Less(t, steps, 1000, "update loop did not settle")

		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}

		switch msg := next().(type) {
		case nil, spinner.TickMsg, tea.QuitMsg:
			continue
		case tea.BatchMsg:
			queue = append(queue, msg...)
		default:
			updated, cmd := m.Update(msg)
			m = updated.(Model)
			queue = append(queue, cmd)
		}
	}
	return m
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		updated, cmd := m.Update(keyMsg(k))
		m = drive(t, updated.(Model), cmd)
	}
	return m
}

func rowNames(m Model) []string {
	names := make([]string, len(m.rows))
	for i, row := range m.rows {
		names[i] = row.Node.Path
	}
	return names
}

func TestModel_InitialListing(t *testing.T) {
	m := newHarness().start(t)

	assert.False(t, m.loading)
	assert.NoError(t, m.err)
	assert.Equal(t, "main", m.ref)
	assert.Equal(t, []string{"src", "README.md", ".gitignore"}, rowNames(m))

	view := ansi.Strip(m.View())
	assert.Contains(t, view, "octo/demo@main")
	assert.Contains(t, view, "1 dirs, 3 files")
	assert.Contains(t, view, "▸ 📁 src")
	assert.Contains(t, view, "Select a file to view its content")
}

func TestModel_ExpandAndCollapse(t *testing.T) {
	m := newHarness().start(t)

	m = press(t, m, "enter")
	assert.Equal(t, []string{"src", "src/app.js", "README.md", ".gitignore"}, rowNames(m))
	assert.Equal(t, 2, m.renderer.Renders())

	m = press(t, m, "enter")
	assert.Equal(t, []string{"src", "README.md", ".gitignore"}, rowNames(m))

	m = press(t, m, "enter")
	assert.Equal(t, 2, m.renderer.Renders(), "reopening does not render again")

	m = press(t, m, "down", "h")
	assert.Equal(t, 0, m.cursor, "left on a child moves to its directory")
	m = press(t, m, "h")
	assert.Equal(t, []string{"src", "README.md", ".gitignore"}, rowNames(m))
}

func TestModel_ExpandByDefault(t *testing.T) {
	h := newHarness()
	h.cfg.ExpandByDefault = true
	m := h.start(t)

	assert.Equal(t, []string{"src", "src/app.js", "README.md", ".gitignore"}, rowNames(m))
}

func TestModel_SelectFileLoadsContentOnce(t *testing.T) {
	h := newHarness()
	m := h.start(t)

	m = press(t, m, "down", "enter")

	assert.Equal(t, []string{"README.md"}, h.src.reads)
	assert.Equal(t, "README.md", m.filePath)
	assert.Equal(t, "# Demo\n", m.fileContent)
	require.NotNil(t, m.renderer.Selected())
	assert.Equal(t, "README.md", m.renderer.Selected().Node.Path)

	view := ansi.Strip(m.View())
	assert.Contains(t, view, "  1 │ ")
	assert.Contains(t, view, "# Demo")
}

func TestModel_FileLoadFailure(t *testing.T) {
	h := newHarness()
	m := h.start(t)

	m = press(t, m, "down", "enter")
	require.Equal(t, "# Demo\n", m.fileContent)

	m = press(t, m, "down", "enter")

	assert.Equal(t, []string{"README.md", ".gitignore"}, h.src.reads)
	assert.Empty(t, m.filePath)
	assert.Empty(t, m.fileContent)
	assert.False(t, m.loadingFile)
	assert.True(t, strings.HasPrefix(m.statusMsg, "Could not load .gitignore"), m.statusMsg)
	require.NotNil(t, m.renderer.Selected())
	assert.Equal(t, ".gitignore", m.renderer.Selected().Node.Path)

	view := ansi.Strip(m.View())
	assert.NotContains(t, view, "# Demo")
	assert.Contains(t, view, ".gitignore (not loaded)")
	assert.Contains(t, view, "Could not load this file")

	m = press(t, m, "r")
	assert.Equal(t, "No file selected", m.reviewNotice)
	assert.Zero(t, h.gen.calls)

	m = press(t, m, "up", "enter")
	assert.Equal(t, "README.md", m.filePath)
	assert.NotContains(t, ansi.Strip(m.View()), "(not loaded)")
}

func TestModel_TruncatedListing(t *testing.T) {
	h := newHarness()
	h.src.truncated = true
	m := h.start(t)

	assert.True(t, m.truncated)
	assert.Equal(t, []string{"src", "README.md", ".gitignore"}, rowNames(m))
	assert.Contains(t, m.statusMsg, "Listing truncated")
	assert.Contains(t, ansi.Strip(m.View()), "Listing truncated")
}

func TestModel_StaleFileResultIsDropped(t *testing.T) {
	h := newHarness()
	m := h.start(t)
	m = press(t, m, "enter")

	m = press(t, m, "down")
	updated, staleCmd := m.Update(keyMsg("enter"))
	m = updated.(Model)
	require.Equal(t, "src/app.js", m.filePath)

	m = press(t, m, "down", "enter")
	require.Equal(t, "README.md", m.filePath)
	require.Equal(t, "# Demo\n", m.fileContent)

	m = drive(t, m, staleCmd)
	assert.Equal(t, "README.md", m.filePath)
	assert.Equal(t, "# Demo\n", m.fileContent)
}

func TestModel_ReviewStreamsAndRecords(t *testing.T) {
	h := newHarness()
	m := h.start(t)
	m = press(t, m, "enter", "down", "enter")
	require.Equal(t, "src/app.js", m.filePath)

	m = press(t, m, "r")

	assert.Equal(t, 1, h.gen.calls)
	assert.Equal(t, review.Request{
		FileName:     "src/app.js",
		Code:         "var x = 1;\nconsole.log(x);\n",
		SystemPrompt: config.DefaultSystemPrompt,
	}, h.gen.last)
	assert.False(t, m.reviewing)
	assert.Equal(t, "Use `const`.", m.reviewText)
	assert.True(t, m.canCopy)

	require.Len(t, h.store.added, 1)
	rec := h.store.added[0]
	assert.Equal(t, "octo/demo", rec.Repo)
	assert.Equal(t, "main", rec.Ref)
	assert.Equal(t, "src/app.js", rec.Path)
	assert.Equal(t, "fake/model", rec.Provider)
	assert.False(t, rec.Failed())

	view := ansi.Strip(m.View())
	assert.Contains(t, view, "const")
	assert.Contains(t, view, "c copy")

	m = press(t, m, "c")
	assert.Equal(t, []string{"Use `const`."}, h.clipboard)
	assert.Equal(t, "Review copied to clipboard", m.statusMsg)
}

func TestModel_SelectingFileClearsReview(t *testing.T) {
	h := newHarness()
	m := h.start(t)
	m = press(t, m, "enter", "down", "enter", "r")
	require.True(t, m.canCopy)

	m = press(t, m, "tab")
	require.Equal(t, paneTree, m.focus)
	m = press(t, m, "down", "enter")

	assert.Equal(t, "README.md", m.filePath)
	assert.Empty(t, m.reviewText)
	assert.False(t, m.canCopy)
	assert.NotContains(t, ansi.Strip(m.View()), "c copy")

	m = press(t, m, "c")
	assert.Empty(t, h.clipboard)
}

func TestModel_ReviewPrerequisites(t *testing.T) {
	t.Run("no file selected", func(t *testing.T) {
		h := newHarness()
		m := h.start(t)

		m = press(t, m, "r")

		assert.Equal(t, "No file selected", m.reviewNotice)
		assert.Zero(t, h.gen.calls)
		assert.Contains(t, ansi.Strip(m.View()), "No file selected")
	})

	t.Run("no api key", func(t *testing.T) {
		h := newHarness()
		h.cfg.APIKey = ""
		m := h.start(t)
		m = press(t, m, "down", "enter", "r")

		assert.Equal(t, "API key is required", m.reviewNotice)
		assert.Zero(t, h.gen.calls)
		assert.Empty(t, h.store.added)
	})
}

func TestModel_ReviewFailure(t *testing.T) {
	h := newHarness()
	h.gen.fragments = nil
	h.gen.err = errors.New("status 401: API key not valid")
	m := h.start(t)

	m = press(t, m, "down", "enter", "r")

	require.Error(t, m.reviewErr)
	assert.False(t, m.canCopy)
	assert.Contains(t, ansi.Strip(m.View()), "Error in submitting review: status 401")
	assert.Equal(t, "README.md", m.filePath, "viewer is untouched")

	require.Len(t, h.store.added, 1)
	assert.True(t, h.store.added[0].Failed())
}

func TestModel_CloseReview(t *testing.T) {
	h := newHarness()
	m := h.start(t)
	m = press(t, m, "down", "enter", "r")
	require.True(t, m.reviewOpen)

	m = press(t, m, "esc")
	assert.False(t, m.reviewOpen)
	assert.Equal(t, paneTree, m.focus)
}

func TestModel_ListingFailure(t *testing.T) {
	h := newHarness()
	deps := h.deps()
	deps.Open = func(target string, _ *config.Config) (source.Source, error) {
		_, err := github.ParseRepoURL(target)
		return nil, err
	}
	deps.Target = "https://gitlab.com/a/b"

	m := NewModel(deps)
	t.Cleanup(m.cancel)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = drive(t, updated.(Model), updated.(Model).Init())

	assert.ErrorIs(t, m.err, github.ErrInvalidURL)
	assert.Nil(t, m.root)
	assert.Contains(t, ansi.Strip(m.View()), "Invalid GitHub URL format")

	deps.Open = func(string, *config.Config) (source.Source, error) { return h.src, nil }
	m.deps = deps
	m = press(t, m, "o")
	require.Equal(t, modalOpenRepo, m.modal)
	m = press(t, m, "enter")

	assert.NoError(t, m.err)
	assert.NotNil(t, m.root)
}

func TestModel_StaleListingIsDropped(t *testing.T) {
	h := newHarness()
	m := h.start(t)

	stale := listingLoadedMsg{
		gen:     m.listingGen - 1,
		source:  h.src,
		listing: &source.Listing{Entries: []repotree.Entry{{Path: "other.txt"}}},
	}
	updated, _ := m.Update(stale)
	m = updated.(Model)

	assert.Equal(t, []string{"src", "README.md", ".gitignore"}, rowNames(m))
}

func TestModel_SettingsDialogSaves(t *testing.T) {
	h := newHarness()
	m := h.start(t)

	m = press(t, m, "s")
	require.Equal(t, modalSettings, m.modal)

	m = press(t, m, "tab", "tab")
	m.form.inputs[fieldModel].SetValue("gemini-2.0-flash")
	m = press(t, m, "ctrl+s")

	assert.Equal(t, modalNone, m.modal)
	require.Len(t, h.saved, 1)
	assert.Equal(t, "gemini-2.0-flash", h.saved[0].Model)
	assert.Equal(t, "test-key", h.saved[0].APIKey)
	assert.Equal(t, "gemini-2.0-flash", m.cfg.Model)
	assert.Equal(t, "Settings saved", m.statusMsg)
}

func TestModel_PastReviews(t *testing.T) {
	h := newHarness()
	h.store.list = []history.Review{{ID: "r1", Path: "README.md", Provider: "gemini", Content: "Old advice."}}
	m := h.start(t)
	m = press(t, m, "down", "enter", "H")

	require.Equal(t, modalHistory, m.modal)
	assert.Contains(t, ansi.Strip(m.View()), "Past reviews: README.md")

	m = press(t, m, "enter")
	assert.Equal(t, modalNone, m.modal)
	assert.Equal(t, "Old advice.", m.reviewText)
	assert.True(t, m.canCopy)
}

func TestModel_QuitWhileReviewing(t *testing.T) {
	h := newHarness()
	m := h.start(t)
	m.reviewing = true

	m = press(t, m, "q")
	require.Equal(t, modalConfirmQuit, m.modal)

	updated, cmd := m.Update(keyMsg("esc"))
	m = drive(t, updated.(Model), cmd)
	assert.Equal(t, modalNone, m.modal)
}
