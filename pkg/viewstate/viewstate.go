// Package viewstate carries the selection and expansion of a navigation tree
// across rebuilds and between sessions.
package viewstate

import (
	"github.com/vanderheijden86/poolnav/pkg/model"
	"github.com/vanderheijden86/poolnav/pkg/tree"
)

// Segment is one level of a path. Concrete nodes are matched by Object;
// group headers by GroupKey and GroupValue, then by Label.
type Segment struct {
	Object     *model.ObjectKey `json:"object,omitempty"`
	GroupKey   string           `json:"group,omitempty"`
	GroupValue string           `json:"value,omitempty"`
	Label      string           `json:"label"`
}

// IsGroup reports whether the segment names a group header.
func (s Segment) IsGroup() bool {
	return s.Object == nil
}

// Path is the chain of segments from the root to an expanded node.
type Path []Segment

// SavedViewState is what survives a rebuild: the selected concrete object
// and the path of every expanded node.
type SavedViewState struct {
	Selected *model.ObjectKey `json:"selected,omitempty"`
	Expanded []Path           `json:"expanded"`
}

// IsEmpty reports whether there is nothing to restore.
func (s SavedViewState) IsEmpty() bool {
	return s.Selected == nil && len(s.Expanded) == 0
}

// Capture records the selection and expansion of t. A selected group header
// is not recorded.
func Capture(t *tree.Tree) SavedViewState {
	var s SavedViewState
	if t == nil || t.Len() == 0 {
		return s
	}
	if sel := t.Selected(); sel != tree.NoNode {
		if key, ok := t.Node(sel).Identity.Object(); ok {
			s.Selected = &key
		}
	}
	for _, id := range t.ExpandedNodes() {
		s.Expanded = append(s.Expanded, pathTo(t, id))
	}
	return s
}

func pathTo(t *tree.Tree, id tree.NodeID) Path {
	nodes := t.Path(id)
	p := make(Path, 0, len(nodes))
	for _, n := range nodes {
		p = append(p, segmentOf(t.Node(n)))
	}
	return p
}

func segmentOf(n *tree.Node) Segment {
	seg := Segment{Label: n.Label}
	if key, ok := n.Identity.Object(); ok {
		seg.Object = &key
		return seg
	}
	if tag, ok := n.Identity.Group(); ok {
		seg.GroupKey = tag.Key()
		seg.GroupValue = tag.Value
	}
	return seg
}

// Restore applies s to a freshly built tree. Each path that matches to its
// end expands its last node. A path that stops matching part way expands
// every node it did match. The captured selection is then searched over the
// whole tree and selected when found. It returns the selected node, if any.
func Restore(t *tree.Tree, s SavedViewState) (tree.NodeID, bool) {
	if t == nil || t.Len() == 0 {
		return tree.NoNode, false
	}
	for _, p := range s.Expanded {
		id, complete := Resolve(t, p)
		if id == tree.NoNode {
			continue
		}
		if complete {
			t.SetExpanded(id, true)
			continue
		}
		for _, anc := range t.Path(id) {
			t.SetExpanded(anc, true)
		}
	}

	t.Select(tree.NoNode)
	if s.Selected == nil {
		return tree.NoNode, false
	}
	id, ok := t.FindObject(*s.Selected)
	if !ok {
		return tree.NoNode, false
	}
	t.Select(id)
	return id, true
}

// Resolve walks p from the root of t and returns the deepest node it
// matched. complete is false when the walk stopped before the end of p.
// A root that does not match yields tree.NoNode.
func Resolve(t *tree.Tree, p Path) (id tree.NodeID, complete bool) {
	if len(p) == 0 || t.Len() == 0 {
		return tree.NoNode, false
	}
	cur := t.Root()
	if !matches(t.Node(cur), p[0]) {
		return tree.NoNode, false
	}
	for _, seg := range p[1:] {
		next, ok := matchChild(t, cur, seg)
		if !ok {
			return cur, false
		}
		cur = next
	}
	return cur, true
}

func matchChild(t *tree.Tree, parent tree.NodeID, seg Segment) (tree.NodeID, bool) {
	children := t.Children(parent)
	for _, c := range children {
		if matches(t.Node(c), seg) {
			return c, true
		}
	}
	if !seg.IsGroup() {
		return tree.NoNode, false
	}
	// Group values can drift between builds; fall back to the label.
	for _, c := range children {
		n := t.Node(c)
		if n.Identity.IsGroup() && n.Label == seg.Label {
			return c, true
		}
	}
	return tree.NoNode, false
}

func matches(n *tree.Node, seg Segment) bool {
	if seg.Object != nil {
		key, ok := n.Identity.Object()
		return ok && key == *seg.Object
	}
	tag, ok := n.Identity.Group()
	return ok && tag.Key() == seg.GroupKey && tag.Value == seg.GroupValue
}
