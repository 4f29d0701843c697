// Test Type: Unit Test
// Description: Tests for the explorer rows, host and mark indicators

package explorer_test

import (
	"testing"

	"github.com/arthur-debert/dodex/pkg/explorer"
	"github.com/arthur-debert/dodex/pkg/marker"
	"github.com/arthur-debert/dodex/pkg/testutil"
	"github.com/arthur-debert/dodex/pkg/types"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

func paths(e *explorer.Explorer) []string {
	var out []string
	for _, r := range e.Rows() {
		out = append(out, r.Path())
	}
	return out
}

func sampleTree() *types.Folder {
	return testutil.Tree("Vault", "Notes/Notes.md", "Notes/Deep/d.md", "Notes/a.md", "Board.canvas", "top.md")
}

func TestRows(t *testing.T) {
	e := explorer.New(sampleTree())
	assert.Equal(t, []string{"Notes", "Board.canvas", "top.md"}, paths(e))

	t.Run("toggle_expands_and_collapses", func(t *testing.T) {
		require.True(t, e.Toggle("Notes"))
		assert.Equal(t, []string{"Notes", "Notes/Deep", "Notes/Notes.md", "Notes/a.md", "Board.canvas", "top.md"}, paths(e))
		assert.False(t, e.Rows()[0].Collapsed())
		assert.True(t, e.Rows()[1].Collapsed())

		require.True(t, e.Toggle("Notes"))
		assert.Equal(t, []string{"Notes", "Board.canvas", "top.md"}, paths(e))
	})

	t.Run("toggle_rejects_files_and_unknown_paths", func(t *testing.T) {
		assert.False(t, e.Toggle("top.md"))
		assert.False(t, e.Toggle("Nope"))
		assert.False(t, e.Toggle(""))
	})

	t.Run("expand_all", func(t *testing.T) {
		e.ExpandAll()
		assert.Len(t, e.Rows(), 7)
		e.CollapseAll()
		assert.Len(t, e.Rows(), 3)
	})

	t.Run("reload_keeps_expanded_folders", func(t *testing.T) {
		e.Toggle("Notes")
		e.Reload(testutil.Tree("Vault", "Notes/b.md", "Other/o.md"))
		assert.Equal(t, []string{"Notes", "Notes/b.md", "Other"}, paths(e))
	})
}

func TestObserve(t *testing.T) {
	e := explorer.New(sampleTree())
	calls := 0
	stop := e.Observe(func() { calls++ })

	e.Toggle("Notes")
	e.ExpandAll()
	e.Reload(sampleTree())
	assert.Equal(t, 3, calls)

	e.Rows()[0].SetMarked(true)
	assert.Equal(t, 3, calls, "marking does not change the rows")

	stop()
	e.Toggle("Notes")
	assert.Equal(t, 3, calls)
}

func TestRender(t *testing.T) {
	e := explorer.New(sampleTree())
	e.Toggle("Notes")
	e.Rows()[2].SetMarked(true)

	expected := "" +
		"▾ Notes\n" +
		"  ▸ Deep\n" +
		"    Notes.md ●\n" +
		"    a.md\n" +
		"  Board.canvas\n" +
		"  top.md"
	assert.Equal(t, expected, e.Render(-1))
}

func TestHost(t *testing.T) {
	h := explorer.NewHost()
	a := explorer.New(sampleTree())
	b := explorer.New(sampleTree())

	h.Open(a)
	h.Open(a)
	h.Open(b)
	assert.Len(t, h.ListVisibleContainers(), 2)

	h.Close(a)
	require.Len(t, h.ListVisibleContainers(), 1)
	assert.Same(t, b, h.ListVisibleContainers()[0])
}

type tree struct{ root *types.Folder }

func (tr tree) Name() string                       { return tr.root.Name }
func (tr tree) Root() (*types.Folder, error)       { return tr.root, nil }
func (tr tree) Exists(p string) bool               { return types.Find(tr.root, p) != nil }
func (tr tree) Stat(p string) (*types.File, error) { return testutil.File(tr.root, p), nil }

func TestMarksOnExplorer(t *testing.T) {
	root := sampleTree()
	h := explorer.NewHost()
	e := explorer.New(root)
	h.Open(e)

	o := marker.New(marker.Options{Tree: tree{root}, Visual: h})
	defer o.Close()
	o.MarkFile("Notes/Deep/d.md", types.UnmarkOnTouch)
	o.Flush()

	marked := func() []string {
		var out []string
		for _, r := range e.Rows() {
			if r.Marked() {
				out = append(out, r.Path())
			}
		}
		return out
	}
	assert.Equal(t, []string{"Notes"}, marked(), "collapsed ancestor carries the mark")

	e.Toggle("Notes")
	o.Flush()
	assert.Equal(t, []string{"Notes/Deep"}, marked())

	e.Toggle("Notes/Deep")
	o.Flush()
	assert.Equal(t, []string{"Notes/Deep/d.md"}, marked())
}
