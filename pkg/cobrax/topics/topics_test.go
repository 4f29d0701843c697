// Test Type: Unit Test
// Description: Tests for topic loading and the topic-aware help command

package topics_test

import (
	"bytes"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/arthur-debert/dodex/pkg/cobrax/topics"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTopics() fstest.MapFS {
	return fstest.MapFS{
		"patterns.md":        {Data: []byte("# Patterns\n\nIndex names")},
		"option-dry-run.txt": {Data: []byte("Preview without writing")},
		"nested/canvas.md":   {Data: []byte("# Canvas")},
		"notes.txxt":         {Data: []byte("Custom extension")},
		"ignored.json":       {Data: []byte("{}")},
		"nested/skipped.png": {Data: []byte{0x89}},
	}
}

func TestScan(t *testing.T) {
	t.Run("default_extensions", func(t *testing.T) {
		tm := topics.New(sampleTopics())
		require.NoError(t, tm.Scan())
		assert.Equal(t, []string{"canvas", "option-dry-run", "patterns"}, tm.ListTopics())

		topic, ok := tm.GetTopic("canvas")
		require.True(t, ok)
		assert.Equal(t, "nested/canvas.md", topic.FilePath)
		assert.Equal(t, "# Canvas", topic.Content)
	})

	t.Run("custom_extensions", func(t *testing.T) {
		tm := topics.NewWithOptions(sampleTopics(), topics.Options{Extensions: []string{".txxt"}})
		require.NoError(t, tm.Scan())
		assert.Equal(t, []string{"notes"}, tm.ListTopics())
	})

	t.Run("nil_source_has_no_topics", func(t *testing.T) {
		tm := topics.New(nil)
		require.NoError(t, tm.Scan())
		assert.Empty(t, tm.ListTopics())
	})
}

func TestGetTopicFlagSpelling(t *testing.T) {
	tm := topics.New(sampleTopics())
	require.NoError(t, tm.Scan())

	for _, name := range []string{"dry-run", "--dry-run", "-dry-run", "option-dry-run"} {
		topic, ok := tm.GetTopic(name)
		require.True(t, ok, name)
		assert.Equal(t, "option-dry-run", topic.Name)
	}

	_, ok := tm.GetTopic("unknown")
	assert.False(t, ok)
}

type upperRenderer struct{}

func (upperRenderer) Render(content, format string) string {
	return strings.ToUpper(content) + "|" + format
}

func newRoot(t *testing.T) (*cobra.Command, *bytes.Buffer) {
	t.Helper()
	root := &cobra.Command{Use: "dodex", Short: "Root help text"}
	root.AddCommand(&cobra.Command{Use: "check", Short: "Check help text", Run: func(*cobra.Command, []string) {}})

	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetErr(out)
	require.NoError(t, topics.InitializeWithOptions(root, sampleTopics(), topics.Options{Renderer: upperRenderer{}}))
	return root, out
}

func TestHelpCommand(t *testing.T) {
	t.Run("lists_topics", func(t *testing.T) {
		root, out := newRoot(t)
		root.SetArgs([]string{"help", "topics"})
		require.NoError(t, root.Execute())

		text := out.String()
		assert.Contains(t, text, "General topics:\n  canvas\n  patterns\n")
		assert.Contains(t, text, "Option topics:\n  --dry-run\n")
		assert.Contains(t, text, "Use 'dodex help <topic>'")
	})

	t.Run("renders_topic", func(t *testing.T) {
		root, out := newRoot(t)
		root.SetArgs([]string{"help", "patterns"})
		require.NoError(t, root.Execute())
		assert.Equal(t, "# PATTERNS\n\nINDEX NAMES|.md", out.String())
	})

	t.Run("falls_back_to_command_help", func(t *testing.T) {
		root, out := newRoot(t)
		root.SetArgs([]string{"help", "check"})
		require.NoError(t, root.Execute())
		assert.Contains(t, out.String(), "Check help text")
	})
}

func TestPlainRenderer(t *testing.T) {
	r := &topics.PlainRenderer{}
	assert.Equal(t, "# Title", r.Render("# Title", ".md"))
}

func TestGlamourRendererSkipsText(t *testing.T) {
	r := topics.NewGlamourRenderer()
	assert.Equal(t, "plain", r.Render("plain", ".txt"))
}
