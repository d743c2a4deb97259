// Package repotree turns the flat path listing of a repository into a rooted
// hierarchy of directories and files.
package repotree

import (
	"sort"
	"strings"
)

type EntryType string

const (
	TypeBlob EntryType = "blob"
	TypeTree EntryType = "tree"
)

// ParseEntryType maps a listing type string onto an EntryType. Anything that
// is not a tree (blobs, submodule commits) becomes a blob.
func ParseEntryType(s string) EntryType {
	if s == string(TypeTree) || s == "dir" {
		return TypeTree
	}
	return TypeBlob
}

// Entry is one record of a repository listing.
type Entry struct {
	Path string
	Type EntryType
	Size int64
}

// Node is a directory or file in a built tree. The root has an empty Path.
type Node struct {
	Name     string
	Path     string
	IsDir    bool
	Size     int64
	Children map[string]*Node
}

// Build creates the tree for entries. Entries are processed in canonical
// order and the first entry to create a path wins; later entries for the same
// path only descend into it. Build never fails.
func Build(entries []Entry) *Node {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return entryLess(sorted[i], sorted[j])
	})

	root := newDir("", "")
	for _, entry := range sorted {
		insert(root, entry)
	}
	return root
}

func insert(root *Node, entry Entry) {
	parts := strings.Split(entry.Path, "/")
	current := root

	for i, part := range parts {
		last := i == len(parts)-1
		child, ok := current.Children[part]
		if !ok {
			path := strings.Join(parts[:i+1], "/")
			switch {
			case !last || entry.Type == TypeTree:
				child = newDir(part, path)
			default:
				child = &Node{Name: part, Path: path, Size: entry.Size, Children: map[string]*Node{}}
			}
			current.Children[part] = child
		}
		if !child.IsDir {
			// A file already sits where a directory is needed.
			return
		}
		current = child
	}
}

func newDir(name, path string) *Node {
	return &Node{Name: name, Path: path, IsDir: true, Children: map[string]*Node{}}
}

// SortedChildren returns the children of n in display order.
func (n *Node) SortedChildren() []*Node {
	children := make([]*Node, 0, len(n.Children))
	for _, child := range n.Children {
		children = append(children, child)
	}
	sort.Slice(children, func(i, j int) bool {
		return nodeLess(children[i], children[j])
	})
	return children
}

// Walk visits every node below n depth-first in display order. Returning
// false from fn skips the node's children.
func (n *Node) Walk(fn func(node *Node, depth int) bool) {
	walk(n, 0, fn)
}

func walk(n *Node, depth int, fn func(*Node, int) bool) {
	for _, child := range n.SortedChildren() {
		if fn(child, depth) && child.IsDir {
			walk(child, depth+1, fn)
		}
	}
}

// Lookup finds the node at path below n, or nil.
func (n *Node) Lookup(path string) *Node {
	current := n
	for _, part := range strings.Split(path, "/") {
		child, ok := current.Children[part]
		if !ok {
			return nil
		}
		current = child
	}
	return current
}

// Count returns the number of directories and files below n.
func (n *Node) Count() (dirs, files int) {
	n.Walk(func(node *Node, _ int) bool {
		if node.IsDir {
			dirs++
		} else {
			files++
		}
		return true
	})
	return dirs, files
}
