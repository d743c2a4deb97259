// Package tui is the interactive repository browser and review screen.
package tui

import (
	"context"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"go.uber.org/zap"

	"github.com/bantamhq/codoreview/internal/config"
	"github.com/bantamhq/codoreview/internal/history"
	"github.com/bantamhq/codoreview/internal/repotree"
	"github.com/bantamhq/codoreview/internal/review"
	"github.com/bantamhq/codoreview/internal/source"
	"github.com/bantamhq/codoreview/internal/treeview"
)

type pane int

const (
	paneTree pane = iota
	paneViewer
	paneReview
)

type modalKind int

const (
	modalNone modalKind = iota
	modalHelp
	modalOpenRepo
	modalConfirmQuit
	modalSettings
	modalHistory
)

// Deps are the collaborators the screen talks to.
type Deps struct {
	Config *config.Config
	// Target is the repository opened on start. Empty uses the configured
	// default repository.
	Target string
	// Open resolves a repository URL, "owner/repo" or local path.
	Open func(target string, cfg *config.Config) (source.Source, error)
	// NewGenerator builds the review generator from the current settings.
	NewGenerator func(cfg *config.Config) (review.Generator, error)
	// History is optional.
	History history.Store
	// SaveConfig persists settings. Nil uses Config.Save.
	SaveConfig func(cfg *config.Config) error
	// Clipboard writes text to the system clipboard. Nil uses the OS clipboard.
	Clipboard func(text string) error
	Logger    *zap.Logger
}

// selectionBox receives the tree's select callback. It lives behind a
// pointer so the callback keeps working as the Model value is copied.
type selectionBox struct {
	path    string
	pending bool
}

func (b *selectionBox) take() (string, bool) {
	if !b.pending {
		return "", false
	}
	b.pending = false
	return b.path, true
}

type Model struct {
	deps Deps
	cfg  *config.Config
	log  *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	target    string
	src       source.Source
	ref       string
	truncated bool
	root      *repotree.Node
	renderer  *treeview.Renderer
	rows      []*treeview.Row
	cursor    int
	treeTop   int
	selection *selectionBox

	listingGen uint64
	loading    bool
	err        error

	fileGen     uint64
	filePath    string
	fileContent string
	loadingFile bool
	// fileFailed names the selected file whose content could not be read.
	fileFailed string
	fileErr    error
	viewer      viewport.Model

	reviewGen    uint64
	reviewOpen   bool
	reviewing    bool
	reviewText   string
	reviewNotice string
	reviewErr    error
	reviewCancel context.CancelFunc
	reviewEvents <-chan reviewEvent
	reviewer     string
	reviewStart  time.Time
	canCopy      bool
	reviewVP     viewport.Model
	markdown     *markdownRenderer

	focus  pane
	modal  modalKind
	dialog DialogModel
	form   SettingsModel
	picker HistoryPickerModel

	spinner   spinner.Model
	help      help.Model
	keys      KeyMap
	width     int
	height    int
	statusMsg string
}

func NewModel(deps Deps) Model {
	if deps.Config == nil {
		deps.Config = config.Default()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.SaveConfig == nil {
		deps.SaveConfig = func(cfg *config.Config) error { return cfg.Save() }
	}
	if deps.Clipboard == nil {
		deps.Clipboard = clipboard.WriteAll
	}

	target := deps.Target
	if target == "" {
		target = deps.Config.DefaultRepo
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = Styles.Review.Placeholder

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		deps:      deps,
		cfg:       deps.Config,
		log:       deps.Logger,
		ctx:       ctx,
		cancel:    cancel,
		target:    target,
		selection: &selectionBox{},
		viewer:    viewport.New(0, 0),
		reviewVP:  viewport.New(0, 0),
		markdown:  &markdownRenderer{},
		spinner:   s,
		help:      help.New(),
		keys:      DefaultKeyMap,
	}
}

func (m Model) Init() tea.Cmd {
	if m.target == "" {
		return nil
	}
	return m.openTarget(m.target)
}

// openTarget is Init's path into openRepository; it cannot mutate the model,
// so the generation is bumped when the message arrives.
func (m Model) openTarget(target string) tea.Cmd {
	return func() tea.Msg {
		return openRepoMsg{target: target}
	}
}

type openRepoMsg struct {
	target string
}

// markdownRenderer caches a glamour renderer for one wrap width.
type markdownRenderer struct {
	width    int
	renderer *glamour.TermRenderer
}

func (r *markdownRenderer) Render(markdown string, width int) (string, error) {
	if r.renderer == nil || r.width != width {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return "", err
		}
		r.renderer = renderer
		r.width = width
	}
	return r.renderer.Render(markdown)
}

func Run(deps Deps) error {
	m := NewModel(deps)
	defer m.cancel()

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
