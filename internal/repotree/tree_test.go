package repotree

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(nodes []*Node) []string {
	result := make([]string, len(nodes))
	for i, n := range nodes {
		result[i] = n.Name
	}
	return result
}

// shape renders a tree as an indented listing so two trees can be compared.
func shape(root *Node) string {
	var b strings.Builder
	root.Walk(func(n *Node, depth int) bool {
		kind := "f"
		if n.IsDir {
			kind = "d"
		}
		b.WriteString(strings.Repeat(" ", depth))
		b.WriteString(kind + ":" + n.Path + "\n")
		return true
	})
	return b.String()
}

func TestBuild_Empty(t *testing.T) {
	root := Build(nil)

	require.NotNil(t, root)
	assert.Empty(t, root.Path)
	assert.True(t, root.IsDir)
	assert.Empty(t, root.Children)
	assert.NotNil(t, root.Children)
}

func TestBuild_ImpliedDirectory(t *testing.T) {
	orders := [][]Entry{
		{{Path: "a/b.txt", Type: TypeBlob}, {Path: "a", Type: TypeTree}},
		{{Path: "a", Type: TypeTree}, {Path: "a/b.txt", Type: TypeBlob}},
		{{Path: "a/b.txt", Type: TypeBlob}},
	}

	for _, entries := range orders {
		root := Build(entries)

		require.Len(t, root.Children, 1)
		a := root.Children["a"]
		require.NotNil(t, a)
		assert.True(t, a.IsDir)
		assert.Equal(t, "a", a.Path)

		require.Len(t, a.Children, 1)
		leaf := a.Children["b.txt"]
		require.NotNil(t, leaf)
		assert.False(t, leaf.IsDir)
		assert.Equal(t, "a/b.txt", leaf.Path)
		assert.Empty(t, leaf.Children)
	}
}

func TestBuild_OrderingLaw(t *testing.T) {
	root := Build([]Entry{
		{Path: ".git", Type: TypeTree},
		{Path: "src", Type: TypeTree},
		{Path: "README.md", Type: TypeBlob},
		{Path: ".gitignore", Type: TypeBlob},
	})

	assert.Equal(t, []string{"src", ".git", "README.md", ".gitignore"}, names(root.SortedChildren()))
}

func TestBuild_OrderingWithinGroups(t *testing.T) {
	root := Build([]Entry{
		{Path: "zeta.go", Type: TypeBlob},
		{Path: ".env", Type: TypeBlob},
		{Path: "Makefile", Type: TypeBlob},
		{Path: "alpha.go", Type: TypeBlob},
		{Path: "pkg/x.go", Type: TypeBlob},
		{Path: ".github/workflows/ci.yml", Type: TypeBlob},
		{Path: "cmd", Type: TypeTree},
	})

	assert.Equal(t,
		[]string{"cmd", "pkg", ".github", "Makefile", "alpha.go", "zeta.go", ".env"},
		names(root.SortedChildren()),
	)
}

func TestBuild_FirstWriterWins(t *testing.T) {
	t.Run("tree before blob for the same path", func(t *testing.T) {
		root := Build([]Entry{
			{Path: "docs", Type: TypeBlob, Size: 10},
			{Path: "docs", Type: TypeTree},
			{Path: "docs/index.md", Type: TypeBlob},
		})

		docs := root.Children["docs"]
		require.NotNil(t, docs)
		assert.True(t, docs.IsDir)
		assert.Contains(t, docs.Children, "index.md")
	})

	t.Run("leaf is never overwritten by a deeper path", func(t *testing.T) {
		root := Build([]Entry{
			{Path: "notes", Type: TypeBlob},
			{Path: "notes/deep.txt", Type: TypeBlob},
		})

		notes := root.Children["notes"]
		require.NotNil(t, notes)
		assert.False(t, notes.IsDir)
		assert.Empty(t, notes.Children)
		assert.Nil(t, root.Lookup("notes/deep.txt"))
	})

	t.Run("duplicates collapse to the largest size in any order", func(t *testing.T) {
		forward := []Entry{
			{Path: "main.go", Type: TypeBlob, Size: 1},
			{Path: "main.go", Type: TypeBlob, Size: 2},
		}
		backward := []Entry{forward[1], forward[0]}

		for _, entries := range [][]Entry{forward, backward} {
			root := Build(entries)
			require.Len(t, root.Children, 1)
			assert.Equal(t, int64(2), root.Children["main.go"].Size)
		}
	})
}

func TestBuild_DegenerateSegments(t *testing.T) {
	root := Build([]Entry{
		{Path: "", Type: TypeBlob},
		{Path: "a//b", Type: TypeBlob},
		{Path: "/lead", Type: TypeBlob},
		{Path: "trail/", Type: TypeBlob},
	})

	empty := root.Children[""]
	require.NotNil(t, empty)
	assert.False(t, empty.IsDir, "the empty path sorts first and claims the segment")
	assert.Nil(t, root.Lookup("/lead"))

	b := root.Lookup("a//b")
	require.NotNil(t, b)
	assert.Equal(t, "b", b.Name)
	assert.False(t, b.IsDir)

	trail := root.Lookup("trail/")
	require.NotNil(t, trail)
	assert.Equal(t, "", trail.Name)
}

func TestBuild_DoesNotMutateInput(t *testing.T) {
	entries := []Entry{
		{Path: "z.txt", Type: TypeBlob},
		{Path: "a", Type: TypeTree},
	}
	Build(entries)

	assert.Equal(t, "z.txt", entries[0].Path)
	assert.Equal(t, "a", entries[1].Path)
}

func TestBuild_PathsJoinAncestorNames(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	segments := []string{"a", "b", ".c", "", "d.txt", ".gitignore", "src"}

	for iteration := 0; iteration < 200; iteration++ {
		entries := randomEntries(rng, segments)
		root := Build(entries)

		checkPaths(t, root, nil)
	}
}

func TestBuild_OrderIndependentRandomized(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	segments := []string{"x", "y", ".z", "", "file.go", ".env"}

	for iteration := 0; iteration < 100; iteration++ {
		entries := randomEntries(rng, segments)
		shuffled := make([]Entry, len(entries))
		copy(shuffled, entries)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})

		assert.Equal(t, shape(Build(entries)), shape(Build(shuffled)))
	}
}

func randomEntries(rng *rand.Rand, segments []string) []Entry {
	count := rng.Intn(20)
	entries := make([]Entry, 0, count)
	for i := 0; i < count; i++ {
		depth := 1 + rng.Intn(4)
		parts := make([]string, depth)
		for j := range parts {
			parts[j] = segments[rng.Intn(len(segments))]
		}
		entryType := TypeBlob
		if rng.Intn(3) == 0 {
			entryType = TypeTree
		}
		entry := Entry{Path: strings.Join(parts, "/"), Type: entryType}
		entries = append(entries, entry)
		if rng.Intn(5) == 0 {
			entries = append(entries, entry)
		}
	}
	return entries
}

func checkPaths(t *testing.T, node *Node, ancestors []string) {
	t.Helper()
	for name, child := range node.Children {
		require.Equal(t, name, child.Name)
		chain := append(append([]string{}, ancestors...), child.Name)
		require.Equal(t, strings.Join(chain, "/"), child.Path)
		if !child.IsDir {
			require.Empty(t, child.Children)
			continue
		}
		checkPaths(t, child, chain)
	}
}

func TestParseEntryType(t *testing.T) {
	tests := []struct {
		in   string
		want EntryType
	}{
		{"tree", TypeTree},
		{"dir", TypeTree},
		{"blob", TypeBlob},
		{"commit", TypeBlob},
		{"", TypeBlob},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseEntryType(tt.in))
		})
	}
}

func TestNode_CountAndLookup(t *testing.T) {
	root := Build([]Entry{
		{Path: "cmd/app/main.go", Type: TypeBlob},
		{Path: "go.mod", Type: TypeBlob},
	})

	dirs, files := root.Count()
	assert.Equal(t, 2, dirs)
	assert.Equal(t, 2, files)

	assert.NotNil(t, root.Lookup("cmd/app/main.go"))
	assert.Nil(t, root.Lookup("cmd/missing"))
}
