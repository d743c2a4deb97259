package repotree

import "strings"

// Less is the display ordering shared by the builder and the renderer:
// directories before files, then names without a leading dot before
// dotfiles, then byte-wise by key.
func Less(aDir bool, aName, aKey string, bDir bool, bName, bKey string) bool {
	if aDir != bDir {
		return aDir
	}
	aDot, bDot := IsDotfile(aName), IsDotfile(bName)
	if aDot != bDot {
		return bDot
	}
	return aKey < bKey
}

// IsDotfile reports whether name is hidden by the leading-dot convention.
func IsDotfile(name string) bool {
	return strings.HasPrefix(name, ".")
}

// entryLess orders entries for Build. Duplicates of one path and type are
// ordered by size, largest first, so the surviving size does not depend on
// input order.
func entryLess(a, b Entry) bool {
	aDir, bDir := a.Type == TypeTree, b.Type == TypeTree
	if Less(aDir, baseName(a.Path), a.Path, bDir, baseName(b.Path), b.Path) {
		return true
	}
	if Less(bDir, baseName(b.Path), b.Path, aDir, baseName(a.Path), a.Path) {
		return false
	}
	return a.Size > b.Size
}

func nodeLess(a, b *Node) bool {
	return Less(a.IsDir, a.Name, a.Name, b.IsDir, b.Name, b.Name)
}

func baseName(p string) string {
	return p[strings.LastIndex(p, "/")+1:]
}
