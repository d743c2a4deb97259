package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/bantamhq/codoreview/internal/history"
	"github.com/bantamhq/codoreview/internal/review"
	"github.com/bantamhq/codoreview/internal/treeview"
)

const (
	reviewPlaceholder = "Reviewing.."
	reviewErrorPrefix = "Error in submitting review: "
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		return m.handleWindowSize(msg)

	case openRepoMsg:
		return m.openRepository(msg.target)

	case listingLoadedMsg:
		return m.handleListingLoaded(msg)

	case listingFailedMsg:
		return m.handleListingFailed(msg)

	case fileLoadedMsg:
		return m.handleFileLoaded(msg)

	case fileFailedMsg:
		return m.handleFileFailed(msg)

	case reviewEventMsg:
		return m.handleReviewEvent(msg)

	case spinner.TickMsg:
		return m.handleSpinnerTick(msg)

	case DialogSubmitMsg:
		return m.handleDialogSubmit(msg)

	case DialogCancelMsg:
		m.modal = modalNone
		return m, nil

	case SettingsSubmitMsg:
		m.modal = modalNone
		return m, m.saveSettings(msg.Config)

	case SettingsCancelMsg:
		m.modal = modalNone
		return m, nil

	case SettingsSavedMsg:
		m.cfg = msg.Config
		return m.setStatus("Settings saved")

	case historyLoadedMsg:
		m.modal = modalHistory
		m.picker = NewHistoryPickerModel(msg.path, msg.reviews)
		return m, nil

	case HistoryPickerSelectMsg:
		return m.showStoredReview(msg.Review)

	case HistoryPickerCloseMsg:
		m.modal = modalNone
		return m, nil

	case ReviewCopiedMsg:
		return m.setStatus("Review copied to clipboard")

	case reviewRecordedMsg:
		m.log.Debug("review recorded", zap.String("id", msg.id))
		return m, nil

	case ActionErrorMsg:
		return m.handleActionError(msg)
	}

	return m, nil
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.modal {
	case modalNone:
		return m.handleKey(msg)
	case modalHelp:
		return m.handleHelpKey(msg)
	case modalSettings:
		var cmd tea.Cmd
		m.form, cmd = m.form.Update(msg)
		return m, cmd
	case modalHistory:
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		return m, cmd
	default:
		var cmd tea.Cmd
		m.dialog, cmd = m.dialog.Update(msg)
		return m, cmd
	}
}

func (m Model) handleHelpKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q", "?":
		m.modal = modalNone
	}
	return m, nil
}

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.updateViewportSize()
	m.syncTreeScroll()
	m.setViewerContent()
	m.setReviewContent()
	return m, nil
}

func (m Model) handleSpinnerTick(msg spinner.TickMsg) (tea.Model, tea.Cmd) {
	if !m.busy() {
		return m, nil
	}
	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	if m.reviewing {
		m.setReviewContent()
	}
	return m, cmd
}

func (m Model) busy() bool {
	return m.loading || m.loadingFile || m.reviewing
}

func (m Model) setStatus(status string) (tea.Model, tea.Cmd) {
	m.statusMsg = status
	return m, nil
}

func (m Model) handleActionError(msg ActionErrorMsg) (tea.Model, tea.Cmd) {
	m.log.Warn("action failed", zap.String("operation", msg.Operation), zap.Error(msg.Err))
	m.statusMsg = "Could not " + msg.Operation + ": " + msg.Err.Error()
	return m, nil
}

// openRepository discards the current tree and starts listing target.
func (m Model) openRepository(target string) (tea.Model, tea.Cmd) {
	m.cancelReview()
	m.listingGen++
	m.fileGen++
	m.target = target
	m.loading = true
	m.err = nil
	m.src = nil
	m.ref = ""
	m.truncated = false
	m.root = nil
	m.renderer = nil
	m.selection.pending = false
	m.syncRows()
	m.clearFile()
	m.clearReview()
	m.reviewOpen = false
	m.focus = paneTree
	m.updateViewportSize()

	return m, tea.Batch(m.spinner.Tick, m.loadListing(m.listingGen, target))
}

func (m Model) handleListingLoaded(msg listingLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.gen != m.listingGen {
		return m, nil
	}

	m.loading = false
	m.err = nil
	m.src = msg.source
	m.ref = msg.listing.Ref
	m.truncated = msg.listing.Truncated
	m.mountTree(msg.listing.Entries)

	if m.truncated {
		m.statusMsg = "Listing truncated by the server; some files are missing"
	}
	return m, nil
}

func (m Model) handleListingFailed(msg listingFailedMsg) (tea.Model, tea.Cmd) {
	if msg.gen != m.listingGen {
		return m, nil
	}

	m.loading = false
	m.err = msg.err
	m.statusMsg = "Could not load repository: " + msg.err.Error()
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.statusMsg = ""

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()

	case key.Matches(msg, m.keys.Help):
		m.modal = modalHelp
		return m, nil

	case key.Matches(msg, m.keys.Open):
		return m.openRepoDialog()

	case key.Matches(msg, m.keys.Reload):
		if m.target == "" {
			return m, nil
		}
		return m.openRepository(m.target)

	case key.Matches(msg, m.keys.Settings):
		m.modal = modalSettings
		m.form = NewSettingsModel(m.cfg)
		return m, m.form.Init()

	case key.Matches(msg, m.keys.Review):
		return m.startReview()

	case key.Matches(msg, m.keys.Copy):
		if !m.canCopy {
			return m, nil
		}
		return m, m.copyReview(m.reviewText)

	case key.Matches(msg, m.keys.History):
		return m.openHistory()

	case key.Matches(msg, m.keys.Escape):
		return m.closeReview()

	case key.Matches(msg, m.keys.Tab):
		m.cycleFocus(msg.String() == "shift+tab")
		return m, nil
	}

	switch m.focus {
	case paneViewer:
		return m.handleScrollKey(msg, &m.viewer)
	case paneReview:
		return m.handleScrollKey(msg, &m.reviewVP)
	default:
		return m.handleTreeKey(msg)
	}
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	if m.reviewing {
		m.modal = modalConfirmQuit
		m.dialog = NewConfirmDialog("Quit", "A review is still streaming.\nQuit anyway?")
		return m, nil
	}
	m.cancelReview()
	m.cancel()
	return m, tea.Quit
}

func (m *Model) cycleFocus(reverse bool) {
	panes := []pane{paneTree, paneViewer}
	if m.reviewOpen {
		panes = append(panes, paneReview)
	}

	idx := 0
	for i, p := range panes {
		if p == m.focus {
			idx = i
		}
	}
	if reverse {
		idx = (idx + len(panes) - 1) % len(panes)
	} else {
		idx = (idx + 1) % len(panes)
	}
	m.focus = panes[idx]
}

func (m Model) handleTreeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.PageUp):
		m.moveCursor(-m.treeViewportHeight())
	case key.Matches(msg, m.keys.PageDown):
		m.moveCursor(m.treeViewportHeight())
	case key.Matches(msg, m.keys.Enter):
		return m.activate(m.cursorRow())
	case key.Matches(msg, m.keys.Right):
		row := m.cursorRow()
		if row == nil {
			return m, nil
		}
		if !row.Node.IsDir {
			return m.activate(row)
		}
		m.renderer.Expand(row)
		m.syncRows()
	case key.Matches(msg, m.keys.Left):
		row := m.cursorRow()
		if row == nil {
			return m, nil
		}
		if row.Node.IsDir && row.State.Expanded {
			m.renderer.Collapse(row)
			m.syncRows()
			return m, nil
		}
		if parent := m.parentIndex(m.cursor); parent >= 0 {
			m.cursor = parent
			m.syncTreeScroll()
		}
	}
	return m, nil
}

func (m Model) handleScrollKey(msg tea.KeyMsg, vp *viewport.Model) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		vp.LineUp(1)
	case key.Matches(msg, m.keys.Down):
		vp.LineDown(1)
	case key.Matches(msg, m.keys.PageUp):
		vp.HalfViewUp()
	case key.Matches(msg, m.keys.PageDown):
		vp.HalfViewDown()
	case key.Matches(msg, m.keys.Left):
		m.focus = paneTree
	}
	return m, nil
}

// activate forwards a click on row to the renderer. Selecting a file loads
// its content and resets the review.
func (m Model) activate(row *treeview.Row) (tea.Model, tea.Cmd) {
	if row == nil || m.renderer == nil {
		return m, nil
	}

	m.renderer.Activate(row)
	m.syncRows()

	path, ok := m.selection.take()
	if !ok {
		return m, nil
	}
	return m.selectFile(path)
}

func (m Model) selectFile(path string) (tea.Model, tea.Cmd) {
	m.cancelReview()
	m.clearReview()

	m.fileGen++
	m.filePath = path
	m.fileContent = ""
	m.fileFailed = ""
	m.fileErr = nil
	m.loadingFile = true
	m.setViewerContent()

	return m, tea.Batch(m.spinner.Tick, m.loadFile(m.fileGen, m.src, path))
}

func (m Model) handleFileLoaded(msg fileLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.gen != m.fileGen {
		return m, nil
	}

	m.loadingFile = false
	m.fileContent = msg.content
	m.setViewerContent()
	m.viewer.GotoTop()
	return m, nil
}

func (m Model) handleFileFailed(msg fileFailedMsg) (tea.Model, tea.Cmd) {
	if msg.gen != m.fileGen {
		return m, nil
	}

	m.loadingFile = false
	m.filePath = ""
	m.fileContent = ""
	m.fileFailed = msg.path
	m.fileErr = msg.err
	m.setViewerContent()
	m.statusMsg = fmt.Sprintf("Could not load %s: %v", msg.path, msg.err)
	return m, nil
}

func (m *Model) clearFile() {
	m.filePath = ""
	m.fileContent = ""
	m.fileFailed = ""
	m.fileErr = nil
	m.loadingFile = false
	m.setViewerContent()
}

// startReview sends the selected file for review. Missing prerequisites are
// reported in the review pane and nothing is sent.
func (m Model) startReview() (tea.Model, tea.Cmd) {
	m.cancelReview()
	m.clearReview()
	m.reviewOpen = true
	m.updateViewportSize()

	if m.filePath == "" {
		m.reviewNotice = "No file selected"
		m.setReviewContent()
		return m, nil
	}
	if m.loadingFile {
		m.reviewNotice = "Still loading " + m.filePath
		m.setReviewContent()
		return m, nil
	}

	gen, err := m.newGenerator()
	if err != nil {
		if errors.Is(err, review.ErrNoAPIKey) {
			m.reviewNotice = "API key is required"
		} else {
			m.reviewErr = err
		}
		m.setReviewContent()
		return m, nil
	}

	req := review.Request{
		FileName:     m.filePath,
		Code:         m.fileContent,
		SystemPrompt: m.cfg.SystemPrompt,
	}

	ctx, cancel := context.WithCancel(m.ctx)
	m.reviewGen++
	m.reviewCancel = cancel
	m.reviewing = true
	m.reviewer = gen.Name()
	m.reviewEvents = streamReview(ctx, gen, req)
	m.reviewStart = time.Now()
	m.focus = paneReview
	m.setReviewContent()

	m.log.Info("review started",
		zap.String("path", m.filePath),
		zap.String("generator", m.reviewer),
	)

	return m, tea.Batch(m.spinner.Tick, waitForReview(m.reviewGen, m.reviewEvents))
}

func (m Model) newGenerator() (review.Generator, error) {
	if !m.cfg.IsConfigured() {
		return nil, review.ErrNoAPIKey
	}
	if m.deps.NewGenerator == nil {
		return nil, fmt.Errorf("reviews are not available")
	}
	return m.deps.NewGenerator(m.cfg)
}

func (m Model) handleReviewEvent(msg reviewEventMsg) (tea.Model, tea.Cmd) {
	if msg.gen != m.reviewGen || !m.reviewing {
		return m, nil
	}

	ev := msg.event
	if !ev.done {
		m.reviewText += ev.fragment
		m.setReviewContent()
		return m, waitForReview(msg.gen, m.reviewEvents)
	}

	m.reviewing = false
	m.reviewEvents = nil
	if m.reviewCancel != nil {
		m.reviewCancel()
		m.reviewCancel = nil
	}

	elapsed := time.Since(m.reviewStart)
	rec := &history.Review{
		Repo:     m.repoKey(),
		Ref:      m.ref,
		Path:     m.filePath,
		Provider: m.reviewer,
		Content:  m.reviewText,
		Duration: elapsed,
	}

	if ev.err != nil {
		m.reviewErr = ev.err
		errText := ev.err.Error()
		rec.Error = &errText
		m.log.Warn("review failed", zap.String("path", m.filePath), zap.Error(ev.err))
	} else {
		m.canCopy = strings.TrimSpace(m.reviewText) != ""
		m.log.Info("review finished",
			zap.String("path", m.filePath),
			zap.Int("bytes", len(m.reviewText)),
			zap.Duration("elapsed", elapsed),
		)
	}
	m.setReviewContent()

	return m, m.recordReview(rec)
}

func (m *Model) cancelReview() {
	if m.reviewCancel != nil {
		m.reviewCancel()
		m.reviewCancel = nil
	}
	if m.reviewing {
		m.reviewGen++
		m.reviewing = false
	}
	m.reviewEvents = nil
}

// clearReview empties the review pane and hides the copy action.
func (m *Model) clearReview() {
	m.reviewText = ""
	m.reviewNotice = ""
	m.reviewErr = nil
	m.canCopy = false
	m.setReviewContent()
}

func (m Model) closeReview() (tea.Model, tea.Cmd) {
	if !m.reviewOpen {
		return m, nil
	}
	m.cancelReview()
	m.reviewOpen = false
	if m.focus == paneReview {
		m.focus = paneTree
	}
	m.updateViewportSize()
	m.setViewerContent()
	return m, nil
}

func (m Model) repoKey() string {
	if m.src == nil {
		return m.target
	}
	name := m.src.Name()
	if i := strings.LastIndex(name, "@"); i > 0 {
		return name[:i]
	}
	return name
}

func (m Model) openRepoDialog() (tea.Model, tea.Cmd) {
	m.modal = modalOpenRepo
	m.dialog = NewInputDialog("Open Repository", "GitHub URL, owner/repo or local path:", m.cfg.DefaultRepo)
	m.dialog.SetValue(m.target)
	return m, m.dialog.Init()
}

func (m Model) openHistory() (tea.Model, tea.Cmd) {
	if m.filePath == "" {
		m.statusMsg = "Select a file to see its past reviews"
		return m, nil
	}
	return m, m.loadHistory(m.repoKey(), m.filePath)
}

func (m Model) showStoredReview(r history.Review) (tea.Model, tea.Cmd) {
	m.modal = modalNone
	m.cancelReview()
	m.clearReview()
	m.reviewOpen = true
	m.reviewText = r.Content
	if r.Error != nil {
		m.reviewErr = errors.New(*r.Error)
	} else {
		m.canCopy = strings.TrimSpace(r.Content) != ""
	}
	m.updateViewportSize()
	m.setReviewContent()
	return m, nil
}

func (m Model) handleDialogSubmit(msg DialogSubmitMsg) (tea.Model, tea.Cmd) {
	modal := m.modal
	m.modal = modalNone

	switch modal {
	case modalOpenRepo:
		if msg.Value == "" {
			return m, nil
		}
		return m.openRepository(msg.Value)

	case modalConfirmQuit:
		m.cancelReview()
		m.cancel()
		return m, tea.Quit
	}

	return m, nil
}
