package tree

import (
	"github.com/vanderheijden86/poolnav/pkg/grouping"
	"github.com/vanderheijden86/poolnav/pkg/model"
)

// IdentityKind tells which variant an Identity holds.
type IdentityKind uint8

const (
	// IdentityObject marks a node standing for a concrete cache record.
	IdentityObject IdentityKind = iota + 1
	// IdentityGroup marks a synthetic group header.
	IdentityGroup
)

func (k IdentityKind) String() string {
	switch k {
	case IdentityObject:
		return "object"
	case IdentityGroup:
		return "group"
	}
	return "invalid"
}

// Identity is either a concrete object key or a grouping tag, never both.
// Build one with ObjectIdentity or GroupIdentity.
type Identity struct {
	kind   IdentityKind
	object model.ObjectKey
	group  grouping.Tag
}

// ObjectIdentity identifies a node by its cache record.
func ObjectIdentity(key model.ObjectKey) Identity {
	return Identity{kind: IdentityObject, object: key}
}

// GroupIdentity identifies a group header node.
func GroupIdentity(tag grouping.Tag) Identity {
	return Identity{kind: IdentityGroup, group: tag}
}

// Kind returns the identity variant.
func (i Identity) Kind() IdentityKind { return i.kind }

// IsObject reports whether the identity is a concrete object.
func (i Identity) IsObject() bool { return i.kind == IdentityObject }

// IsGroup reports whether the identity is a group header.
func (i Identity) IsGroup() bool { return i.kind == IdentityGroup }

// Object returns the object key of a concrete identity.
func (i Identity) Object() (model.ObjectKey, bool) {
	return i.object, i.kind == IdentityObject
}

// Group returns the tag of a group identity.
func (i Identity) Group() (grouping.Tag, bool) {
	return i.group, i.kind == IdentityGroup
}

// Equal compares identities. Group identities use tag equality, so the
// parent group does not matter.
func (i Identity) Equal(other Identity) bool {
	if i.kind != other.kind {
		return false
	}
	switch i.kind {
	case IdentityObject:
		return i.object == other.object
	case IdentityGroup:
		return i.group.Equal(other.group)
	}
	return true
}

// String renders "type:ref" for objects and "key=value" for groups.
func (i Identity) String() string {
	switch i.kind {
	case IdentityObject:
		return i.object.String()
	case IdentityGroup:
		return i.group.String()
	}
	return "<none>"
}

// NodeID indexes a node within one tree generation.
type NodeID int

// NoNode is the absent node.
const NoNode NodeID = -1

// Node is one entry of the navigation tree.
type Node struct {
	ID       NodeID
	Parent   NodeID
	Children []NodeID
	Label    string
	Icon     IconKey
	Identity Identity
	Expanded bool
	Depth    int
}

// HasChildren reports whether the node can be expanded.
func (n *Node) HasChildren() bool { return len(n.Children) > 0 }

// Tree is an arena of nodes produced by one build. Node 0 is the root.
// A tree is not safe for concurrent mutation.
type Tree struct {
	mode     Mode
	nodes    []Node
	selected NodeID
}

func newTree(mode Mode) *Tree {
	return &Tree{mode: mode, selected: NoNode}
}

func (t *Tree) add(parent NodeID, label string, icon IconKey, id Identity) NodeID {
	nid := NodeID(len(t.nodes))
	depth := 0
	if parent != NoNode {
		depth = t.nodes[parent].Depth + 1
		t.nodes[parent].Children = append(t.nodes[parent].Children, nid)
	}
	t.nodes = append(t.nodes, Node{
		ID:       nid,
		Parent:   parent,
		Label:    label,
		Icon:     icon,
		Identity: id,
		Depth:    depth,
	})
	return nid
}

// Mode returns the navigation mode the tree was built for.
func (t *Tree) Mode() Mode {
	if t == nil {
		return ""
	}
	return t.mode
}

// Len returns the number of nodes.
func (t *Tree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.nodes)
}

// Root returns the root node, or NoNode for an empty tree.
func (t *Tree) Root() NodeID {
	if t.Len() == 0 {
		return NoNode
	}
	return 0
}

// Valid reports whether id names a node of this tree.
func (t *Tree) Valid(id NodeID) bool {
	return id >= 0 && int(id) < t.Len()
}

// Node returns the node for id. It panics on an invalid id, like an index
// expression would.
func (t *Tree) Node(id NodeID) *Node {
	return &t.nodes[id]
}

// Children returns the child ids of id.
func (t *Tree) Children(id NodeID) []NodeID {
	if !t.Valid(id) {
		return nil
	}
	return t.nodes[id].Children
}

// Parent returns the parent of id, or NoNode.
func (t *Tree) Parent(id NodeID) NodeID {
	if !t.Valid(id) {
		return NoNode
	}
	return t.nodes[id].Parent
}

// Selected returns the selected node, or NoNode.
func (t *Tree) Selected() NodeID {
	if t == nil {
		return NoNode
	}
	return t.selected
}

// Select marks id as selected. Passing NoNode clears the selection. It
// returns false for an invalid id.
func (t *Tree) Select(id NodeID) bool {
	if id == NoNode {
		t.selected = NoNode
		return true
	}
	if !t.Valid(id) {
		return false
	}
	t.selected = id
	return true
}

// SetExpanded sets a node's expanded flag and reports whether it changed.
func (t *Tree) SetExpanded(id NodeID, expanded bool) bool {
	if !t.Valid(id) || t.nodes[id].Expanded == expanded {
		return false
	}
	t.nodes[id].Expanded = expanded
	return true
}

// Walk visits nodes in pre-order. Returning false from fn stops the walk.
func (t *Tree) Walk(fn func(n *Node) bool) {
	if t.Len() == 0 {
		return
	}
	t.walk(0, fn)
}

func (t *Tree) walk(id NodeID, fn func(n *Node) bool) bool {
	if !fn(&t.nodes[id]) {
		return false
	}
	for _, child := range t.nodes[id].Children {
		if !t.walk(child, fn) {
			return false
		}
	}
	return true
}

// Find returns the first node in pre-order whose identity equals id.
func (t *Tree) Find(id Identity) (NodeID, bool) {
	found := NoNode
	t.Walk(func(n *Node) bool {
		if n.Identity.Equal(id) {
			found = n.ID
			return false
		}
		return true
	})
	return found, found != NoNode
}

// FindObject returns the first node in pre-order for a concrete object.
func (t *Tree) FindObject(key model.ObjectKey) (NodeID, bool) {
	return t.Find(ObjectIdentity(key))
}

// Path returns the chain of nodes from the root to id, inclusive.
func (t *Tree) Path(id NodeID) []NodeID {
	if !t.Valid(id) {
		return nil
	}
	var path []NodeID
	for cur := id; cur != NoNode; cur = t.nodes[cur].Parent {
		path = append(path, cur)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// Visible returns the nodes a renderer shows: the root and every node whose
// ancestors are all expanded, in pre-order.
func (t *Tree) Visible() []NodeID {
	if t.Len() == 0 {
		return nil
	}
	var out []NodeID
	var visit func(id NodeID)
	visit = func(id NodeID) {
		out = append(out, id)
		if t.nodes[id].Expanded {
			for _, child := range t.nodes[id].Children {
				visit(child)
			}
		}
	}
	visit(0)
	return out
}

// ExpandedNodes returns every expanded node in pre-order, including nodes
// hidden under a collapsed ancestor.
func (t *Tree) ExpandedNodes() []NodeID {
	var out []NodeID
	t.Walk(func(n *Node) bool {
		if n.Expanded {
			out = append(out, n.ID)
		}
		return true
	})
	return out
}

// IsLastChild reports whether id is the last child of its parent. The root
// counts as last.
func (t *Tree) IsLastChild(id NodeID) bool {
	parent := t.Parent(id)
	if parent == NoNode {
		return true
	}
	siblings := t.nodes[parent].Children
	return len(siblings) > 0 && siblings[len(siblings)-1] == id
}

// Clone returns a deep copy.
func (t *Tree) Clone() *Tree {
	if t == nil {
		return nil
	}
	out := &Tree{mode: t.mode, selected: t.selected, nodes: make([]Node, len(t.nodes))}
	copy(out.nodes, t.nodes)
	for i := range out.nodes {
		out.nodes[i].Children = append([]NodeID(nil), t.nodes[i].Children...)
	}
	return out
}
