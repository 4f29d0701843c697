package canvas

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/arthur-debert/dodex/pkg/errors"
	"github.com/arthur-debert/dodex/pkg/types"
)

// Node kinds written by dodex.
const (
	KindFile  = "file"
	KindGroup = "group"
)

// Empty is the content of a canvas without nodes or edges.
const Empty = `{"nodes":[],"edges":[]}`

// Node is one canvas node. Fields dodex does not use are kept as read.
type Node struct {
	ID     string
	Type   string
	X      float64
	Y      float64
	Width  float64
	Height float64
	File   string
	Label  string
	Color  string

	extra map[string]json.RawMessage
}

// Document is a decoded canvas.
type Document struct {
	Nodes []*Node
	Edges []json.RawMessage

	extra map[string]json.RawMessage
}

var nodeFields = []string{"id", "type", "x", "y", "width", "height", "file", "label", "color"}

func (n *Node) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		return errors.New(errors.ErrCanvasParse, "node is not an object")
	}
	targets := map[string]interface{}{
		"id": &n.ID, "type": &n.Type,
		"x": &n.X, "y": &n.Y, "width": &n.Width, "height": &n.Height,
		"file": &n.File, "label": &n.Label, "color": &n.Color,
	}
	for _, key := range nodeFields {
		value, ok := raw[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(value, targets[key]); err != nil {
			return errors.Wrapf(err, errors.ErrCanvasParse, "node field %q", key)
		}
		delete(raw, key)
	}
	n.extra = raw
	return nil
}

func (n *Node) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(n.extra)+len(nodeFields))
	for k, v := range n.extra {
		out[k] = v
	}
	out["id"] = n.ID
	out["type"] = n.Type
	out["x"] = n.X
	out["y"] = n.Y
	out["width"] = n.Width
	out["height"] = n.Height
	if n.File != "" {
		out["file"] = n.File
	}
	if n.Label != "" {
		out["label"] = n.Label
	}
	if n.Color != "" {
		out["color"] = n.Color
	}
	return json.Marshal(out)
}

func (d *Document) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		return errors.New(errors.ErrCanvasParse, "canvas is not an object")
	}
	if value, ok := raw["nodes"]; ok {
		if err := json.Unmarshal(value, &d.Nodes); err != nil {
			return err
		}
		delete(raw, "nodes")
	}
	if value, ok := raw["edges"]; ok {
		if err := json.Unmarshal(value, &d.Edges); err != nil {
			return err
		}
		delete(raw, "edges")
	}
	for _, n := range d.Nodes {
		if n == nil {
			return errors.New(errors.ErrCanvasParse, "null node")
		}
	}
	d.extra = raw
	return nil
}

func (d *Document) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(d.extra)+2)
	for k, v := range d.extra {
		out[k] = v
	}
	nodes := d.Nodes
	if nodes == nil {
		nodes = []*Node{}
	}
	edges := d.Edges
	if edges == nil {
		edges = []json.RawMessage{}
	}
	out["nodes"] = nodes
	out["edges"] = edges
	return json.Marshal(out)
}

// Parse decodes canvas content. Blank content is an empty canvas.
func Parse(content string) (*Document, error) {
	doc := &Document{}
	if strings.TrimSpace(content) == "" {
		return doc, nil
	}
	if err := json.Unmarshal([]byte(content), doc); err != nil {
		if errors.IsErrorCode(err, errors.ErrCanvasParse) {
			return nil, err
		}
		return nil, errors.Wrap(err, errors.ErrCanvasParse, "malformed canvas")
	}
	return doc, nil
}

// Encode serializes the document, tab indented.
func (d *Document) Encode() (string, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCanvasParse, "cannot encode canvas")
	}
	var out bytes.Buffer
	if err := json.Indent(&out, data, "", "\t"); err != nil {
		return "", errors.Wrap(err, errors.ErrCanvasParse, "cannot indent canvas")
	}
	return out.String(), nil
}

// FileLinks returns the normalized paths of the document's file nodes, in node order.
func (d *Document) FileLinks() []string {
	var links []string
	for _, n := range d.Nodes {
		if n.Type == KindFile {
			links = append(links, types.NormalizePath(n.File))
		}
	}
	return links
}

// FileLinks decodes content and returns the file node paths.
func FileLinks(content string) ([]string, error) {
	doc, err := Parse(content)
	if err != nil {
		return nil, err
	}
	return doc.FileLinks(), nil
}
