// Package export renders a navigation tree as Markdown, JSON or a plain
// text outline.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/poolnav/pkg/tree"
)

// Node is the JSON form of a tree node.
type Node struct {
	Label    string  `json:"label"`
	Icon     string  `json:"icon"`
	Type     string  `json:"type,omitempty"`
	Ref      string  `json:"ref,omitempty"`
	Group    string  `json:"group,omitempty"`
	Value    string  `json:"value,omitempty"`
	Expanded bool    `json:"expanded,omitempty"`
	Selected bool    `json:"selected,omitempty"`
	Children []*Node `json:"children,omitempty"`
}

// Document is the JSON form of a tree.
type Document struct {
	Mode  tree.Mode `json:"mode"`
	Nodes int       `json:"nodes"`
	Root  *Node     `json:"root"`
}

// ToDocument converts t into its JSON form.
func ToDocument(t *tree.Tree) Document {
	doc := Document{Mode: t.Mode(), Nodes: t.Len()}
	if t.Len() == 0 {
		return doc
	}
	doc.Root = toNode(t, t.Root())
	return doc
}

func toNode(t *tree.Tree, id tree.NodeID) *Node {
	n := t.Node(id)
	out := &Node{
		Label:    n.Label,
		Icon:     string(n.Icon),
		Expanded: n.Expanded,
		Selected: t.Selected() == id,
	}
	if key, ok := n.Identity.Object(); ok {
		out.Type = string(key.Type)
		out.Ref = key.Ref
	}
	if tag, ok := n.Identity.Group(); ok {
		out.Group = tag.Key()
		out.Value = tag.Value
	}
	for _, c := range n.Children {
		out.Children = append(out.Children, toNode(t, c))
	}
	return out
}

// WriteJSON writes t as indented JSON.
func WriteJSON(w io.Writer, t *tree.Tree) error {
	data, err := json.MarshalIndent(ToDocument(t), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal tree: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// WriteOutline writes every node of t with box-drawing connectors.
func WriteOutline(w io.Writer, t *tree.Tree) error {
	var sb strings.Builder
	t.Walk(func(n *tree.Node) bool {
		sb.WriteString(Prefix(t, n.ID))
		sb.WriteString(n.Label)
		sb.WriteByte('\n')
		return true
	})
	_, err := io.WriteString(w, sb.String())
	return err
}

// Prefix returns the connector drawing in front of a node's label. The root
// has none.
func Prefix(t *tree.Tree, id tree.NodeID) string {
	n := t.Node(id)
	if n.Parent == tree.NoNode {
		return ""
	}
	var parts []string
	for a := n.Parent; a != tree.NoNode && t.Node(a).Parent != tree.NoNode; a = t.Node(a).Parent {
		if t.IsLastChild(a) {
			parts = append(parts, "    ")
		} else {
			parts = append(parts, "│   ")
		}
	}
	var sb strings.Builder
	for i := len(parts) - 1; i >= 0; i-- {
		sb.WriteString(parts[i])
	}
	if t.IsLastChild(id) {
		sb.WriteString("└── ")
	} else {
		sb.WriteString("├── ")
	}
	return sb.String()
}
