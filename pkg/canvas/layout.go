package canvas

import (
	"strings"

	"github.com/google/uuid"
)

// Spacing of added nodes, in canvas units.
const (
	GroupPad      = 20
	UpperGroupPad = 25
	Interval      = 25
	GroupColor    = "#ff0000"
)

// Layout controls where AddFiles places new nodes.
type Layout struct {
	Group      bool
	GroupLabel string
	// Left places the column left of existing nodes, otherwise right.
	Left bool
	// Top aligns the column with the top of existing nodes, otherwise the bottom.
	Top        bool
	NoteWidth  float64
	NoteHeight float64
}

// Bounds is the bounding box of a set of nodes.
type Bounds struct {
	MinX, MinY, MaxX, MaxY float64
}

// NewID returns a 16 character hex node id.
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
}

// BoundsOf returns the bounding box of nodes; all zero when there are none.
func BoundsOf(nodes []*Node) Bounds {
	if len(nodes) == 0 {
		return Bounds{}
	}
	b := Bounds{
		MinX: nodes[0].X,
		MinY: nodes[0].Y,
		MaxX: nodes[0].X + nodes[0].Width,
		MaxY: nodes[0].Y + nodes[0].Height,
	}
	for _, n := range nodes[1:] {
		b.MinX = min(b.MinX, n.X)
		b.MinY = min(b.MinY, n.Y)
		b.MaxX = max(b.MaxX, n.X+n.Width)
		b.MaxY = max(b.MaxY, n.Y+n.Height)
	}
	return b
}

// AddFiles appends one file node per path as a column beside the existing
// nodes, optionally wrapped in a labelled group node.
func (d *Document) AddFiles(paths []string, layout Layout) {
	if len(paths) == 0 {
		return
	}
	w, h := layout.NoteWidth, layout.NoteHeight
	n := float64(len(paths))
	bounds := BoundsOf(d.Nodes)

	totalHeight := h*n + Interval*(n-1)
	if layout.Group {
		totalHeight += GroupPad + UpperGroupPad
	}

	x := bounds.MaxX + GroupPad + Interval
	if layout.Left {
		x = bounds.MinX - w - GroupPad - Interval
	}
	y := bounds.MaxY - totalHeight
	if layout.Top {
		y = bounds.MinY
	}

	if layout.Group {
		d.Nodes = append(d.Nodes, &Node{
			ID:     NewID(),
			Type:   KindGroup,
			X:      x - GroupPad,
			Y:      y,
			Width:  w + GroupPad*2,
			Height: totalHeight,
			Label:  layout.GroupLabel,
			Color:  GroupColor,
		})
		y += UpperGroupPad
	}

	for _, p := range paths {
		d.Nodes = append(d.Nodes, &Node{
			ID:     NewID(),
			Type:   KindFile,
			X:      x,
			Y:      y,
			Width:  w,
			Height: h,
			File:   p,
		})
		y += h + Interval
	}
}

// AddFiles decodes content, adds file nodes for paths and re-encodes it.
func AddFiles(content string, paths []string, layout Layout) (string, error) {
	doc, err := Parse(content)
	if err != nil {
		return "", err
	}
	doc.AddFiles(paths, layout)
	return doc.Encode()
}
