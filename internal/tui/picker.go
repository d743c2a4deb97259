package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/bantamhq/codoreview/internal/history"
)

type HistoryPickerCloseMsg struct{}

type HistoryPickerSelectMsg struct {
	Review history.Review
}

// HistoryPickerModel lists stored reviews of one file, newest first.
type HistoryPickerModel struct {
	path    string
	reviews []history.Review
	cursor  int
	width   int
}

func NewHistoryPickerModel(path string, reviews []history.Review) HistoryPickerModel {
	return HistoryPickerModel{
		path:    path,
		reviews: reviews,
		width:   historyPickerWidth,
	}
}

func (p HistoryPickerModel) Init() tea.Cmd {
	return nil
}

func (p HistoryPickerModel) Update(msg tea.Msg) (HistoryPickerModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}

	switch keyMsg.String() {
	case "esc", "q":
		return p, func() tea.Msg { return HistoryPickerCloseMsg{} }

	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
		return p, nil

	case "down", "j":
		if p.cursor < len(p.reviews)-1 {
			p.cursor++
		}
		return p, nil

	case "enter":
		if p.cursor >= len(p.reviews) {
			return p, nil
		}
		selected := p.reviews[p.cursor]
		return p, func() tea.Msg {
			return HistoryPickerSelectMsg{Review: selected}
		}
	}

	return p, nil
}

func (p HistoryPickerModel) View() string {
	var content strings.Builder

	content.WriteString(Styles.Common.Header.Render("Past reviews: " + p.path))
	content.WriteString("\n\n")

	if len(p.reviews) == 0 {
		content.WriteString(Styles.Common.MetaText.Render("No reviews recorded for this file"))
		content.WriteString("\n\n")
		content.WriteString(Styles.Dialog.Hint.Render("esc close"))
		return Styles.Dialog.Box.Width(p.width).Render(content.String())
	}

	start, end := p.visibleRange()
	for i := start; i < end; i++ {
		content.WriteString(p.renderItem(p.reviews[i], i == p.cursor))
		content.WriteString("\n")
	}
	content.WriteString("\n")
	content.WriteString(Styles.Dialog.Hint.Render("enter show • esc close"))

	return Styles.Dialog.Box.Width(p.width).Render(content.String())
}

func (p HistoryPickerModel) visibleRange() (start, end int) {
	const maxVisible = historyPickerMaxItems
	if p.cursor >= maxVisible {
		start = p.cursor - maxVisible + 1
	}
	end = min(start+maxVisible, len(p.reviews))
	return start, end
}

func (p HistoryPickerModel) renderItem(r history.Review, isCursor bool) string {
	status := "✓"
	if r.Failed() {
		status = "✗"
	}

	line := fmt.Sprintf(" %s %s  %s  %s", status, humanize.Time(r.CreatedAt), r.Provider, r.Ref)
	line = truncateWithEllipsis(line, p.width-4)

	if isCursor {
		return Styles.Picker.Selected.Width(p.width - 4).Render(line)
	}
	return line
}
