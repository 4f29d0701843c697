// Test Type: Unit Test
// Description: Tests for the on-disk vault: tree snapshots, link resolution and writes

package vault_test

import (
	stderrors "errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/arthur-debert/dodex/pkg/config"
	"github.com/arthur-debert/dodex/pkg/errors"
	"github.com/arthur-debert/dodex/pkg/filesystem"
	"github.com/arthur-debert/dodex/pkg/types"
	"github.com/arthur-debert/dodex/pkg/vault"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const root = "/vault"

func newVault(t *testing.T, files map[string]string, opts ...func(*vault.Options)) (*vault.Vault, types.FS) {
	t.Helper()
	fs := filesystem.NewMemory()
	require.NoError(t, fs.MkdirAll(root, 0755))
	for p, content := range files {
		abs := filepath.Join(root, p)
		require.NoError(t, fs.MkdirAll(filepath.Dir(abs), 0755))
		require.NoError(t, fs.WriteFile(abs, []byte(content), 0644))
	}
	o := vault.Options{FS: fs, Root: root}
	for _, fn := range opts {
		fn(&o)
	}
	return vault.New(o), fs
}

func TestRoot(t *testing.T) {
	v, _ := newVault(t, map[string]string{
		"b.md":                 "",
		"a.md":                 "",
		"Notes/n.md":           "",
		".obsidian/app.json":   "{}",
		".trash/old.md":        "",
		"Notes/.hidden.md":     "",
		"Notes/Deep/image.png": "png",
	})

	tree, err := v.Root()
	require.NoError(t, err)
	assert.Equal(t, "vault", tree.Name)
	assert.True(t, tree.IsRoot())

	var paths []string
	types.Walk(tree, func(n types.Node) {
		if f, ok := n.(*types.File); ok {
			paths = append(paths, f.Path)
		}
	})
	assert.Equal(t, []string{"Notes/Deep/image.png", "Notes/n.md", "a.md", "b.md"}, paths)

	img, ok := types.Find(tree, "Notes/Deep/image.png").(*types.File)
	require.True(t, ok)
	assert.Equal(t, "png", img.Extension)
	assert.Equal(t, "Notes/Deep", img.Parent.Path)
	assert.EqualValues(t, 3, img.Size)
	assert.Equal(t, img.Mtime, img.Ctime)
}

func TestRel(t *testing.T) {
	v, _ := newVault(t, nil)

	rel, ok := v.Rel("/vault/A/b.md")
	assert.True(t, ok)
	assert.Equal(t, "A/b.md", rel)

	rel, ok = v.Rel("/vault")
	assert.True(t, ok)
	assert.Equal(t, "", rel)

	_, ok = v.Rel("/elsewhere/x.md")
	assert.False(t, ok)

	assert.True(t, vault.IsHidden(".obsidian/x"))
	assert.True(t, vault.IsHidden("A/.git"))
	assert.False(t, vault.IsHidden("A/b.md"))
}

func TestExtractTargets(t *testing.T) {
	content := "---\n" +
		"related: \"[[Front]]\"\n" +
		"tags: [a, b]\n" +
		"nested:\n  - \"[[Deep|alias]]\"\n" +
		"---\n" +
		"# Title\n\n" +
		"See [[Wiki]], [[Heading#Section]], [[Alias|shown]] and ![[image.png]].\n\n" +
		"A [markdown link](sub/Other%20Note.md#part) and ![](pic.jpg).\n\n" +
		"External [site](https://example.com) and [anchor](#here).\n\n" +
		"Inline `[[NotALink]]` code.\n\n" +
		"```\n[[AlsoNotALink]]\n```\n"

	targets := vault.ExtractTargets(content)
	assert.ElementsMatch(t, []string{
		"Front", "Deep", "Wiki", "Heading", "Alias", "image.png",
		"sub/Other Note.md", "pic.jpg",
	}, targets)
}

func TestResolvedLinks(t *testing.T) {
	v, _ := newVault(t, map[string]string{
		"A/A.md":           "[[x]] [[B/y]] [[unique]] [[missing]] [rel](z.md) ![[pic.png]] [[/top]]",
		"A/x.md":           "",
		"A/z.md":           "",
		"A/B/y.md":         "",
		"C/unique.md":      "",
		"C/pic.png":        "",
		"top.md":           "",
		"A/A.canvas":       `{"nodes":[{"id":"1","type":"file","file":"C/unique.md"}]}`,
		"D/dup.md":         "",
		"E/dup.md":         "",
		"A/dups.md":        "[[dup]]",
		"A/image.png":      "",
		"A/plain.txt":      "[[x]]",
		"A/relative.md":    "[up](../top.md)",
		"A/frontmatter.md": "---\nup: \"[[top]]\"\n---\nbody",
	})
	_, err := v.Root()
	require.NoError(t, err)

	stat := func(p string) *types.File {
		f, err := v.Stat(p)
		require.NoError(t, err)
		return f
	}

	tests := []struct {
		name string
		file string
		want types.LinkSet
	}{
		{"wiki_relative_absolute_and_unique", "A/A.md", types.NewLinkSet("A/x.md", "A/B/y.md", "C/unique.md", "A/z.md", "C/pic.png", "top.md")},
		{"canvas_file_nodes", "A/A.canvas", types.NewLinkSet("C/unique.md")},
		{"ambiguous_name_unresolved", "A/dups.md", types.NewLinkSet()},
		{"parent_relative_markdown", "A/relative.md", types.NewLinkSet("top.md")},
		{"frontmatter", "A/frontmatter.md", types.NewLinkSet("top.md")},
		{"other_files_have_no_links", "A/plain.txt", types.NewLinkSet()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.ResolvedLinks(stat(tt.file))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("missing_file_errors", func(t *testing.T) {
		_, err := v.ResolvedLinks(&types.File{Path: "gone.md", Extension: "md"})
		assert.True(t, errors.IsErrorCode(err, errors.ErrLinkResolve))
	})
}

type memCache struct {
	entries map[string][]string
	gets    int
	puts    int
}

func (c *memCache) Get(path string, mtime, size int64) ([]string, bool) {
	c.gets++
	v, ok := c.entries[path]
	return v, ok
}

func (c *memCache) Put(path string, mtime, size int64, targets []string) error {
	c.puts++
	c.entries[path] = targets
	return nil
}

func TestResolvedLinksUsesCache(t *testing.T) {
	cache := &memCache{entries: map[string][]string{}}
	v, _ := newVault(t, map[string]string{"a.md": "[[b]]", "b.md": "", "c.md": ""}, func(o *vault.Options) {
		o.Cache = cache
	})
	f, err := v.Stat("a.md")
	require.NoError(t, err)

	first, err := v.ResolvedLinks(f)
	require.NoError(t, err)
	assert.Equal(t, types.NewLinkSet("b.md"), first)
	assert.Equal(t, 1, cache.puts)

	cache.entries["a.md"] = []string{"c"}
	second, err := v.ResolvedLinks(f)
	require.NoError(t, err)
	assert.Equal(t, types.NewLinkSet("c.md"), second, "cached targets are used")
	assert.Equal(t, 1, cache.puts)
}

func TestGenerateLink(t *testing.T) {
	note := &types.File{Path: "A/My Note.md", Name: "My Note.md", Basename: "My Note", Extension: "md"}
	image := &types.File{Path: "A/pic 1.png", Name: "pic 1.png", Basename: "pic 1", Extension: "png"}

	wiki, _ := newVault(t, nil)
	assert.Equal(t, "[[A/My Note]]", wiki.GenerateLink(note, "A"))
	assert.Equal(t, "![[A/pic 1.png]]", wiki.GenerateLink(image, "A"))

	md, _ := newVault(t, nil, func(o *vault.Options) { o.LinkStyle = config.LinkMarkdown })
	assert.Equal(t, "[My Note](A/My%20Note.md)", md.GenerateLink(note, "A"))
	assert.Equal(t, "![](A/pic%201.png)", md.GenerateLink(image, "A"))
}

func TestContentStore(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC).UnixMilli()

	t.Run("create_sets_mtime", func(t *testing.T) {
		v, _ := newVault(t, nil)
		f, err := v.Create("A/new.md", "hello", ts)
		require.NoError(t, err)
		assert.Equal(t, ts, f.Mtime)
		assert.Equal(t, ts, f.Ctime)

		content, err := v.Read("A/new.md")
		require.NoError(t, err)
		assert.Equal(t, "hello", content)
	})

	t.Run("create_refuses_existing", func(t *testing.T) {
		v, _ := newVault(t, map[string]string{"a.md": "x"})
		_, err := v.Create("a.md", "y", ts)
		assert.True(t, errors.IsErrorCode(err, errors.ErrFileCreate))
	})

	t.Run("modify", func(t *testing.T) {
		v, _ := newVault(t, map[string]string{"a.md": "x"})
		require.NoError(t, v.Modify("a.md", "y", ts))
		f, err := v.Stat("a.md")
		require.NoError(t, err)
		assert.Equal(t, ts, f.Mtime)

		assert.True(t, errors.IsErrorCode(v.Modify("gone.md", "y", ts), errors.ErrFileNotFound))
	})

	t.Run("process", func(t *testing.T) {
		v, _ := newVault(t, map[string]string{"a.md": "body"})
		require.NoError(t, v.Process("a.md", func(s string) (string, error) { return s + "\nmore", nil }, ts))
		content, _ := v.Read("a.md")
		assert.Equal(t, "body\nmore", content)
	})

	t.Run("process_returns_transform_error_unchanged", func(t *testing.T) {
		v, _ := newVault(t, map[string]string{"a.md": "body"})
		boom := errors.New(errors.ErrCanvasParse, "bad")
		err := v.Process("a.md", func(string) (string, error) { return "", boom }, ts)
		assert.True(t, stderrors.Is(err, boom))
		assert.True(t, errors.IsErrorCode(err, errors.ErrCanvasParse))

		content, _ := v.Read("a.md")
		assert.Equal(t, "body", content)
	})

	t.Run("trash_numbers_collisions", func(t *testing.T) {
		v, fs := newVault(t, map[string]string{"A/_A.md": "one", ".trash/_A.md": "old"})
		require.NoError(t, v.Trash("A/_A.md"))
		assert.False(t, v.Exists("A/_A.md"))

		data, err := fs.ReadFile("/vault/.trash/_A 1.md")
		require.NoError(t, err)
		assert.Equal(t, "one", string(data))
	})

	t.Run("new_files_resolve_after_write", func(t *testing.T) {
		v, _ := newVault(t, map[string]string{"a.md": "[[later]]"})
		_, err := v.Root()
		require.NoError(t, err)

		a, _ := v.Stat("a.md")
		links, err := v.ResolvedLinks(a)
		require.NoError(t, err)
		assert.Empty(t, links)

		_, err = v.Create("sub/later.md", "", ts)
		require.NoError(t, err)
		links, err = v.ResolvedLinks(a)
		require.NoError(t, err)
		assert.Equal(t, types.NewLinkSet("sub/later.md"), links)
	})
}
