package tui

const (
	footerHeight = 1
	headerHeight = 1

	paneBorderSize  = 2
	paneTitleHeight = 1

	treeMinWidth    = 24
	treeMaxWidth    = 44
	contentMinWidth = 30

	// Share of the right column given to the review pane when it is open.
	reviewHeightPercent = 50
	reviewMinHeight     = 6

	lineNumberMinWidth = 3
	treeIndentWidth    = 2

	dialogWidth        = 56
	dialogInputWidth   = 46
	urlMaxLength       = 512
	errorDialogWidth   = 60
	helpDialogMinWidth = 40
	helpDialogMaxWidth = 80

	historyPickerWidth    = 64
	historyPickerMaxItems = 10
)

type layoutSizes struct {
	treeWidth    int
	contentWidth int
	viewerHeight int
	reviewHeight int
}

func (m Model) layoutSizes() layoutSizes {
	mainHeight := m.mainHeight()

	treeWidth := min(treeMaxWidth, m.width/3)
	treeWidth = max(treeWidth, treeMinWidth)
	contentWidth := max(m.width-treeWidth, contentMinWidth)

	viewerHeight := mainHeight
	reviewHeight := 0
	if m.reviewOpen {
		reviewHeight = max(mainHeight*reviewHeightPercent/100, reviewMinHeight)
		viewerHeight = max(mainHeight-reviewHeight, paneBorderSize+paneTitleHeight+1)
	}

	return layoutSizes{
		treeWidth:    treeWidth,
		contentWidth: contentWidth,
		viewerHeight: viewerHeight,
		reviewHeight: reviewHeight,
	}
}

func (m Model) mainHeight() int {
	return max(m.height-footerHeight-headerHeight, 1)
}

// paneInner returns the drawable size inside a bordered pane with a title.
func paneInner(width, height int) (int, int) {
	return max(width-paneBorderSize, 1), max(height-paneBorderSize-paneTitleHeight, 1)
}

func (m Model) treeViewportHeight() int {
	_, h := paneInner(m.layoutSizes().treeWidth, m.mainHeight())
	return h
}
