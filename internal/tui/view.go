package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"
	overlay "github.com/rmhubbert/bubbletea-overlay"
)

func (m Model) View() string {
	if m.width == 0 {
		return ""
	}

	sections := []string{
		m.headerView(),
		m.mainContentView(m.mainHeight()),
		m.footerView(),
	}

	base := lipgloss.JoinVertical(lipgloss.Left, sections...)

	if m.modal != modalNone {
		return m.overlayModal(base)
	}

	return base
}

func (m Model) overlayModal(background string) string {
	var modalView string
	switch m.modal {
	case modalHelp:
		modalView = m.helpModalView()
	case modalSettings:
		modalView = m.form.View()
	case modalHistory:
		modalView = m.picker.View()
	default:
		modalView = m.dialog.View()
	}
	return overlay.Composite(modalView, background, overlay.Center, overlay.Center, 0, 0)
}

func (m Model) headerView() string {
	title := "codoreview"
	if m.src != nil {
		title += " · " + m.src.Name()
	} else if m.target != "" {
		title += " · " + m.target
	}

	var counts string
	if m.root != nil {
		dirs, files := m.root.Count()
		counts = fmt.Sprintf("%d dirs, %d files", dirs, files)
	}

	innerWidth := max(m.width-2, 1)
	title = truncateWithEllipsis(title, max(innerWidth-lipgloss.Width(counts)-1, 1))
	return Styles.Pane.TitleActive.Width(m.width).MaxHeight(headerHeight).
		Render(rightAlignInWidth(title, counts, innerWidth))
}

func (m Model) mainContentView(height int) string {
	layout := m.layoutSizes()

	if m.err != nil {
		background := lipgloss.NewStyle().Width(m.width).Height(height).Render("")
		return overlay.Composite(m.errorView(), background, overlay.Center, overlay.Center, 0, 0)
	}

	treePane := m.treePaneView(layout.treeWidth, height)

	right := []string{m.viewerPaneView(layout.contentWidth, layout.viewerHeight)}
	if m.reviewOpen {
		right = append(right, m.reviewPaneView(layout.contentWidth, layout.reviewHeight))
	}
	rightColumn := lipgloss.JoinVertical(lipgloss.Left, right...)

	return lipgloss.JoinHorizontal(lipgloss.Top, treePane, rightColumn)
}

// renderPane draws a bordered box of exactly width x height with a title row.
func renderPane(title, body string, width, height int, active bool) string {
	innerWidth, innerHeight := paneInner(width, height)

	border := Styles.Pane.Border
	titleStyle := Styles.Pane.Title
	if active {
		border = Styles.Pane.BorderActive
		titleStyle = Styles.Pane.TitleActive
	}

	titleLine := titleStyle.Render(truncateWithEllipsis(title, max(innerWidth-2, 1)))

	lines := strings.Split(body, "\n")
	if len(lines) > innerHeight {
		lines = lines[:innerHeight]
	}
	content := titleLine + "\n" + strings.Join(lines, "\n")

	return border.
		Width(innerWidth).
		Height(innerHeight + paneTitleHeight).
		MaxHeight(height).
		Render(content)
}

func (m Model) treePaneView(width, height int) string {
	innerWidth, innerHeight := paneInner(width, height)

	var body string
	switch {
	case m.loading:
		body = fmt.Sprintf("%s Loading repository...", m.spinner.View())
	case m.root == nil:
		body = Styles.Common.MetaText.Render("Press o to open a repository")
	case len(m.rows) == 0:
		body = Styles.Common.MetaText.Render("Repository has no files")
	default:
		body = m.renderTreeRows(innerWidth, innerHeight)
	}

	title := "Files"
	if m.ref != "" {
		title += " @ " + m.ref
	}
	return renderPane(title, body, width, height, m.focus == paneTree && m.modal == modalNone)
}

func (m Model) viewerPaneView(width, height int) string {
	var body string
	switch {
	case m.loadingFile:
		body = fmt.Sprintf("%s Loading %s...", m.spinner.View(), m.filePath)
	case m.fileFailed != "":
		body = Styles.Review.Error.Render("Could not load this file: " + m.fileErr.Error())
	case m.filePath == "":
		body = Styles.Common.MetaText.Render("Select a file to view its content")
	default:
		body = m.viewer.View()
	}

	title := "Viewer"
	switch {
	case m.filePath != "":
		title = m.filePath
	case m.fileFailed != "":
		title = m.fileFailed + " (not loaded)"
	}
	if !m.loadingFile && m.filePath != "" && m.viewer.TotalLineCount() > m.viewer.Height {
		title += fmt.Sprintf(" [%d%%]", int(m.viewer.ScrollPercent()*100))
	}
	return renderPane(title, body, width, height, m.focus == paneViewer && m.modal == modalNone)
}

func (m Model) reviewPaneView(width, height int) string {
	title := "Review"
	if m.reviewer != "" && (m.reviewing || m.reviewText != "") {
		title += " · " + m.reviewer
	}
	if m.canCopy {
		title += " · " + m.keys.Copy.Help().Key + " copy"
	}
	return renderPane(title, m.reviewVP.View(), width, height, m.focus == paneReview && m.modal == modalNone)
}

func (m *Model) updateViewportSize() {
	if m.width == 0 {
		return
	}
	layout := m.layoutSizes()

	m.viewer.Width, m.viewer.Height = paneInner(layout.contentWidth, layout.viewerHeight)
	if m.reviewOpen {
		m.reviewVP.Width, m.reviewVP.Height = paneInner(layout.contentWidth, layout.reviewHeight)
	}
}

func (m *Model) setViewerContent() {
	if m.filePath == "" || m.fileContent == "" {
		m.viewer.SetContent("")
		return
	}
	m.viewer.SetContent(renderSource(m.filePath, m.fileContent))
}

// setReviewContent re-renders the whole accumulated review. Markdown is
// rendered over the full buffer, so partial constructs settle as more text
// arrives.
func (m *Model) setReviewContent() {
	var b strings.Builder

	switch {
	case m.reviewNotice != "":
		b.WriteString(Styles.Review.Placeholder.Render(m.reviewNotice))
	case m.reviewText != "":
		b.WriteString(m.renderMarkdown(m.reviewText))
	case m.reviewing:
		b.WriteString(Styles.Review.Placeholder.Render(reviewPlaceholder))
	}

	if m.reviewing {
		b.WriteString("\n" + m.spinner.View())
	}

	if m.reviewErr != nil {
		if b.Len() > 0 {
			b.WriteString("\n" + Styles.Common.MetaText.Render(strings.Repeat("─", max(m.reviewVP.Width, 1))) + "\n")
		}
		b.WriteString(Styles.Review.Error.Render(reviewErrorPrefix + m.reviewErr.Error()))
	}

	m.reviewVP.SetContent(b.String())
	if m.reviewing {
		m.reviewVP.GotoBottom()
	}
}

func (m Model) renderMarkdown(text string) string {
	width := max(m.reviewVP.Width-2, 20)
	rendered, err := m.markdown.Render(text, width)
	if err != nil {
		return text
	}
	return strings.Trim(rendered, "\n")
}

func (m Model) errorView() string {
	title, message := friendlyError(m.err)

	width := errorDialogWidth
	if m.width > 0 && m.width < width+4 {
		width = max(m.width-4, 20)
	}

	var content strings.Builder
	content.WriteString(Styles.Error.Title.Render(title))
	content.WriteString("\n\n")
	content.WriteString(message)
	content.WriteString("\n\n")
	content.WriteString(Styles.Dialog.Hint.Render("o open another • ctrl+r retry • q quit"))

	return Styles.Error.Box.Width(width).Render(content.String())
}

func (m Model) footerView() string {
	badge := Styles.Footer.Badge.Render(m.focusLabel())
	badgeWidth := lipgloss.Width(badge)
	restWidth := max(m.width-badgeWidth, 0)
	if restWidth == 0 {
		return badge
	}

	var content string
	style := Styles.Footer.Help
	if m.statusMsg != "" {
		content = m.statusMsg
		style = Styles.Footer.StatusMessage
	} else {
		content = m.helpContent(restWidth-1, false)
	}

	content = truncateWithEllipsis(content, max(restWidth-1, 1))
	return badge + style.Width(restWidth).MaxHeight(footerHeight).Render(content)
}

func (m Model) focusLabel() string {
	switch m.focus {
	case paneViewer:
		return "viewer"
	case paneReview:
		return "review"
	default:
		return "files"
	}
}

func (m Model) helpKeyMap() help.KeyMap {
	return helpKeyMap{
		KeyMap:       m.keys,
		hasSelection: m.filePath != "",
		canCopy:      m.canCopy,
		hasHistory:   m.deps.History != nil && m.filePath != "",
	}
}

func (m Model) helpContent(width int, showAll bool) string {
	helpModel := m.help
	helpModel.Width = width
	helpModel.ShowAll = showAll

	return strings.TrimRight(helpModel.View(m.helpKeyMap()), "\n")
}

func (m Model) helpModalView() string {
	width := m.helpModalWidth()
	innerWidth := max(width-4, 1)

	var content strings.Builder
	content.WriteString(Styles.Help.Title.Render("Help"))
	content.WriteString("\n\n")
	content.WriteString(m.helpContent(innerWidth, true))
	content.WriteString("\n\n")
	content.WriteString(Styles.Dialog.Hint.Render("esc close"))

	return Styles.Help.Box.Width(width).Render(content.String())
}

func (m Model) helpModalWidth() int {
	available := max(m.width-4, 1)
	width := min(available, helpDialogMaxWidth)
	if width < helpDialogMinWidth {
		return available
	}
	return width
}
