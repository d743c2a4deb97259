// Package treeview materializes a repotree into rows the host can draw.
// Directory rows render their children lazily on first expansion and keep
// them for later toggles. At most one file row is selected at a time.
package treeview

import (
	"github.com/bantamhq/codoreview/internal/repotree"
)

const (
	ChevronCollapsed = "▸"
	ChevronExpanded  = "▾"
	IconDir          = "📁"
	IconFile         = "📄"
)

// Action is what a toggle on a directory row should do.
type Action int

const (
	ActionNone Action = iota
	ActionMaterialize
	ActionShow
	ActionHide
)

func (a Action) String() string {
	switch a {
	case ActionMaterialize:
		return "materialize"
	case ActionShow:
		return "show"
	case ActionHide:
		return "hide"
	default:
		return "none"
	}
}

// DirState is the render state of one directory row.
type DirState struct {
	Expanded     bool
	Materialized bool
}

// Toggle decides what activating a directory in state s does.
func Toggle(s DirState) Action {
	switch {
	case s.Expanded:
		return ActionHide
	case s.Materialized:
		return ActionShow
	default:
		return ActionMaterialize
	}
}

// Container is a mount point: an ordered list of rows rendered for one
// directory level.
type Container struct {
	Rows []*Row
}

// Row is one rendered line of the tree.
type Row struct {
	Node     *repotree.Node
	Depth    int
	State    DirState
	Selected bool

	children *Container
}

// Chevron returns the direction marker of a directory row, blank for files.
func (r *Row) Chevron() string {
	if !r.Node.IsDir {
		return " "
	}
	if r.State.Expanded {
		return ChevronExpanded
	}
	return ChevronCollapsed
}

// Icon returns the folder or file icon for the row.
func (r *Row) Icon() string {
	if r.Node.IsDir {
		return IconDir
	}
	return IconFile
}

type Options struct {
	// ExpandByDefault renders every directory expanded when it first appears.
	ExpandByDefault bool
	// OnSelect is called with the path of a file row after it became the
	// selected row.
	OnSelect func(path string)
}

// Renderer owns the rows of one tree. Build a new Renderer when the tree is
// rebuilt.
type Renderer struct {
	opts    Options
	mount   *Container
	renders int
}

func New(opts Options) *Renderer {
	return &Renderer{opts: opts}
}

// Mount renders the top level of root into a fresh container and makes it
// the renderer's mount point.
func (r *Renderer) Mount(root *repotree.Node) *Container {
	r.mount = &Container{}
	r.Render(root, r.mount, 0)
	return r.mount
}

// Render appends one row per child of node to mount, in display order.
func (r *Renderer) Render(node *repotree.Node, mount *Container, depth int) {
	r.renders++
	for _, child := range node.SortedChildren() {
		row := &Row{Node: child, Depth: depth}
		mount.Rows = append(mount.Rows, row)
		if child.IsDir && r.opts.ExpandByDefault {
			r.apply(row, ActionMaterialize)
		}
	}
}

// Renders returns how many times Render has run.
func (r *Renderer) Renders() int {
	return r.renders
}

// Activate handles a click on row: directories toggle, files become the
// single selected row and the select callback fires.
func (r *Renderer) Activate(row *Row) Action {
	if row == nil {
		return ActionNone
	}
	if !row.Node.IsDir {
		r.selectRow(row)
		return ActionNone
	}

	action := Toggle(row.State)
	r.apply(row, action)
	return action
}

func (r *Renderer) apply(row *Row, action Action) {
	switch action {
	case ActionMaterialize:
		row.children = &Container{}
		r.Render(row.Node, row.children, row.Depth+1)
		row.State.Materialized = true
		row.State.Expanded = true
	case ActionShow:
		row.State.Expanded = true
	case ActionHide:
		row.State.Expanded = false
	}
}

// Expand opens a collapsed directory row; it is a no-op otherwise.
func (r *Renderer) Expand(row *Row) {
	if row != nil && row.Node.IsDir && !row.State.Expanded {
		r.apply(row, Toggle(row.State))
	}
}

// Collapse hides an expanded directory row; it is a no-op otherwise.
func (r *Renderer) Collapse(row *Row) {
	if row != nil && row.Node.IsDir && row.State.Expanded {
		r.apply(row, ActionHide)
	}
}

func (r *Renderer) selectRow(row *Row) {
	r.each(func(other *Row) {
		other.Selected = false
	})
	row.Selected = true
	if r.opts.OnSelect != nil {
		r.opts.OnSelect(row.Node.Path)
	}
}

// each visits every materialized row, hidden or not.
func (r *Renderer) each(fn func(*Row)) {
	if r.mount == nil {
		return
	}
	var visit func(c *Container)
	visit = func(c *Container) {
		for _, row := range c.Rows {
			fn(row)
			if row.children != nil {
				visit(row.children)
			}
		}
	}
	visit(r.mount)
}

// Selected returns the selected file row, or nil.
func (r *Renderer) Selected() *Row {
	var selected *Row
	r.each(func(row *Row) {
		if row.Selected {
			selected = row
		}
	})
	return selected
}

// Visible flattens the rows a user can currently see.
func (r *Renderer) Visible() []*Row {
	if r.mount == nil {
		return nil
	}
	return flatten(r.mount)
}

func flatten(c *Container) []*Row {
	var result []*Row
	for _, row := range c.Rows {
		result = append(result, row)
		if row.State.Expanded && row.children != nil {
			result = append(result, flatten(row.children)...)
		}
	}
	return result
}

// Children returns the container of a materialized directory row.
func (r *Row) Children() *Container {
	return r.children
}
