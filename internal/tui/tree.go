package tui

import (
	"strings"

	"github.com/bantamhq/codoreview/internal/repotree"
	"github.com/bantamhq/codoreview/internal/treeview"
)

// mountTree builds the tree for a fresh listing and renders its top level.
func (m *Model) mountTree(entries []repotree.Entry) {
	m.root = repotree.Build(entries)

	box := m.selection
	m.renderer = treeview.New(treeview.Options{
		ExpandByDefault: m.cfg.ExpandByDefault,
		OnSelect: func(path string) {
			box.path = path
			box.pending = true
		},
	})
	m.renderer.Mount(m.root)

	m.cursor = 0
	m.treeTop = 0
	m.syncRows()
}

// syncRows refreshes the visible rows after the tree changed shape.
func (m *Model) syncRows() {
	if m.renderer == nil {
		m.rows = nil
		m.cursor = 0
		return
	}

	m.rows = m.renderer.Visible()
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.syncTreeScroll()
}

func (m *Model) syncTreeScroll() {
	height := m.treeViewportHeight()

	if m.cursor < m.treeTop {
		m.treeTop = m.cursor
	} else if m.cursor >= m.treeTop+height {
		m.treeTop = m.cursor - height + 1
	}
	if m.treeTop < 0 {
		m.treeTop = 0
	}
}

func (m Model) cursorRow() *treeview.Row {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return nil
	}
	return m.rows[m.cursor]
}

func (m *Model) moveCursor(delta int) {
	if len(m.rows) == 0 {
		return
	}
	m.cursor = min(max(m.cursor+delta, 0), len(m.rows)-1)
	m.syncTreeScroll()
}

// parentIndex finds the row of the directory containing the row at i.
func (m Model) parentIndex(i int) int {
	if i <= 0 || i >= len(m.rows) {
		return -1
	}
	depth := m.rows[i].Depth
	for j := i - 1; j >= 0; j-- {
		if m.rows[j].Depth < depth {
			return j
		}
	}
	return -1
}

func (m Model) renderTreeRows(width, height int) string {
	if len(m.rows) == 0 {
		return ""
	}

	end := min(m.treeTop+height, len(m.rows))
	lines := make([]string, 0, end-m.treeTop)
	for i := m.treeTop; i < end; i++ {
		lines = append(lines, m.renderRow(m.rows[i], width, i == m.cursor))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderRow(row *treeview.Row, width int, isCursor bool) string {
	indent := strings.Repeat(" ", row.Depth*treeIndentWidth)
	prefix := indent + row.Chevron() + " " + row.Icon() + " "

	size := ""
	if !row.Node.IsDir {
		size = formatSize(row.Node.Size)
	}

	nameWidth := width - len([]rune(indent)) - 5 - len(size) - 1
	name := truncateWithEllipsis(row.Node.Name, max(nameWidth, 1))

	nameStyle := Styles.Tree.File
	switch {
	case row.Node.IsDir:
		nameStyle = Styles.Tree.Dir
	case repotree.IsDotfile(row.Node.Name):
		nameStyle = Styles.Tree.Dotfile
	}

	line := rightAlignInWidth(prefix+nameStyle.Render(name), Styles.Tree.Size.Render(size), width)

	switch {
	case row.Selected:
		return Styles.Tree.Selected.Width(width).MaxWidth(width).Render(line)
	case isCursor && m.focus == paneTree:
		return Styles.Tree.Cursor.Width(width).MaxWidth(width).Render(line)
	default:
		return line
	}
}
