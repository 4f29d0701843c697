// Test Type: Unit Test
// Description: Tests for canvas decoding, file link extraction and node placement

package canvas_test

import (
	"encoding/json"
	"testing"

	"github.com/arthur-debert/dodex/pkg/canvas"
	"github.com/arthur-debert/dodex/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `{
	"nodes": [
		{"id": "a1", "type": "file", "file": "A/note.md", "x": 0, "y": 0, "width": 400, "height": 400, "subpath": "#Intro"},
		{"id": "t1", "type": "text", "text": "hello", "x": 500, "y": -100, "width": 200, "height": 100},
		{"id": "l1", "type": "link", "url": "https://example.com", "x": 0, "y": 500, "width": 100, "height": 50},
		{"id": "a2", "type": "file", "file": "/A//image.png", "x": 0, "y": 600, "width": 100, "height": 100}
	],
	"edges": [{"id": "e1", "fromNode": "a1", "toNode": "t1"}],
	"version": 2
}`

func TestFileLinks(t *testing.T) {
	links, err := canvas.FileLinks(sample)
	require.NoError(t, err)
	assert.Equal(t, []string{"A/note.md", "A/image.png"}, links)
}

func TestParse(t *testing.T) {
	t.Run("blank_is_empty", func(t *testing.T) {
		doc, err := canvas.Parse("  \n")
		require.NoError(t, err)
		assert.Empty(t, doc.Nodes)
	})

	t.Run("missing_nodes_is_empty", func(t *testing.T) {
		doc, err := canvas.Parse(`{"edges": []}`)
		require.NoError(t, err)
		assert.Empty(t, doc.FileLinks())
	})

	malformed := map[string]string{
		"not_json":        `{"nodes": [`,
		"not_an_object":   `[1, 2]`,
		"nodes_not_array": `{"nodes": {"id": "x"}}`,
		"node_not_object": `{"nodes": [42]}`,
		"null_node":       `{"nodes": [null]}`,
		"bad_coordinate":  `{"nodes": [{"id": "x", "type": "file", "x": "left"}]}`,
		"null_document":   `null`,
	}
	for name, content := range malformed {
		t.Run(name, func(t *testing.T) {
			_, err := canvas.Parse(content)
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, errors.ErrCanvasParse), "got %v", err)
		})
	}
}

func TestEncodeKeepsUnknownFields(t *testing.T) {
	doc, err := canvas.Parse(sample)
	require.NoError(t, err)
	out, err := doc.Encode()
	require.NoError(t, err)

	var generic map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &generic))
	assert.Equal(t, float64(2), generic["version"])

	nodes := generic["nodes"].([]interface{})
	require.Len(t, nodes, 4)
	first := nodes[0].(map[string]interface{})
	assert.Equal(t, "#Intro", first["subpath"])
	text := nodes[1].(map[string]interface{})
	assert.Equal(t, "hello", text["text"])
	assert.Len(t, generic["edges"], 1)
}

func TestAddFiles(t *testing.T) {
	layout := canvas.Layout{NoteWidth: 400, NoteHeight: 300}
	existing := `{"nodes":[
		{"id":"a","type":"text","x":100,"y":50,"width":200,"height":100},
		{"id":"b","type":"text","x":-50,"y":400,"width":100,"height":100}
	],"edges":[]}`

	tests := []struct {
		name      string
		layout    func(l canvas.Layout) canvas.Layout
		wantX     float64
		wantFirst float64
	}{
		{
			name:      "bottom_right",
			layout:    func(l canvas.Layout) canvas.Layout { return l },
			wantX:     300 + canvas.GroupPad + canvas.Interval,
			wantFirst: 500 - (300*2 + canvas.Interval),
		},
		{
			name:      "top_left",
			layout:    func(l canvas.Layout) canvas.Layout { l.Left, l.Top = true, true; return l },
			wantX:     -50 - 400 - canvas.GroupPad - canvas.Interval,
			wantFirst: 50,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := canvas.AddFiles(existing, []string{"A/x.md", "A/y.md"}, tt.layout(layout))
			require.NoError(t, err)
			doc, err := canvas.Parse(out)
			require.NoError(t, err)
			require.Len(t, doc.Nodes, 4)

			x, y := doc.Nodes[2], doc.Nodes[3]
			assert.Equal(t, canvas.KindFile, x.Type)
			assert.Equal(t, "A/x.md", x.File)
			assert.Equal(t, tt.wantX, x.X)
			assert.Equal(t, tt.wantFirst, x.Y)
			assert.Equal(t, tt.wantFirst+300+canvas.Interval, y.Y)
			assert.Len(t, x.ID, 16)
			assert.NotEqual(t, x.ID, y.ID)

			// new nodes never overlap existing ones
			before := canvas.BoundsOf(doc.Nodes[:2])
			for _, n := range doc.Nodes[2:] {
				overlapX := n.X < before.MaxX && n.X+n.Width > before.MinX
				overlapY := n.Y < before.MaxY && n.Y+n.Height > before.MinY
				assert.False(t, overlapX && overlapY, "node %s overlaps", n.File)
			}
		})
	}
}

func TestAddFilesWithGroup(t *testing.T) {
	layout := canvas.Layout{Group: true, GroupLabel: "Missing links", NoteWidth: 400, NoteHeight: 400}
	out, err := canvas.AddFiles(canvas.Empty, []string{"a.md", "b.md", "c.md"}, layout)
	require.NoError(t, err)
	doc, err := canvas.Parse(out)
	require.NoError(t, err)
	require.Len(t, doc.Nodes, 4)

	group := doc.Nodes[0]
	total := float64(400*3 + canvas.Interval*2 + canvas.GroupPad + canvas.UpperGroupPad)
	assert.Equal(t, canvas.KindGroup, group.Type)
	assert.Equal(t, "Missing links", group.Label)
	assert.Equal(t, canvas.GroupColor, group.Color)
	assert.Equal(t, float64(400+2*canvas.GroupPad), group.Width)
	assert.Equal(t, total, group.Height)

	first := doc.Nodes[1]
	assert.Equal(t, group.X+canvas.GroupPad, first.X)
	assert.Equal(t, group.Y+canvas.UpperGroupPad, first.Y)

	assert.Equal(t, []string{"a.md", "b.md", "c.md"}, doc.FileLinks())
}

func TestAddFilesNothingToAdd(t *testing.T) {
	doc, err := canvas.Parse(canvas.Empty)
	require.NoError(t, err)
	doc.AddFiles(nil, canvas.Layout{NoteWidth: 1, NoteHeight: 1})
	assert.Empty(t, doc.Nodes)
}

func TestAddFilesRejectsMalformed(t *testing.T) {
	_, err := canvas.AddFiles("{oops", []string{"a.md"}, canvas.Layout{})
	assert.True(t, errors.IsErrorCode(err, errors.ErrCanvasParse))
}
