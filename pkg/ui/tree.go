// tree.go - scrollable navigation tree pane
package ui

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/poolnav/pkg/export"
	"github.com/vanderheijden86/poolnav/pkg/tree"
)

// Navigator is the part of the navigation controller the console drives.
type Navigator interface {
	Tree() *tree.Tree
	Mode() tree.Mode
	SetMode(mode tree.Mode) bool
	Select(id tree.NodeID) bool
	SetExpanded(id tree.NodeID, expanded bool) bool
	Activate(id tree.NodeID) bool
	RequestContextMenu(id tree.NodeID) bool
	Rebuild()
}

// TreeModel renders the controller's tree and turns cursor movement into
// selection and expansion changes on the controller.
type TreeModel struct {
	nav      Navigator
	theme    Theme
	t        *tree.Tree
	flatList []tree.NodeID // visible nodes
	cursor   int
	offset   int // index of the first rendered row
	width    int
	height   int
}

// NewTreeModel creates a tree pane over nav. Call Refresh once the
// controller has built a tree.
func NewTreeModel(nav Navigator, theme Theme) TreeModel {
	return TreeModel{nav: nav, theme: theme}
}

// SetSize updates the pane dimensions.
func (m *TreeModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.ensureCursorVisible()
}

// Refresh pulls the current tree from the controller and moves the cursor
// to its selection. A selection hidden under a collapsed ancestor moves to
// the nearest visible ancestor.
func (m *TreeModel) Refresh() {
	m.t = m.nav.Tree()
	m.flatList = m.t.Visible()
	if len(m.flatList) == 0 {
		m.cursor, m.offset = 0, 0
		return
	}

	sel := m.t.Selected()
	if sel == tree.NoNode {
		m.clampCursor()
		m.ensureCursorVisible()
		return
	}
	path := m.t.Path(sel)
	for i := len(path) - 1; i >= 0; i-- {
		if idx := m.indexOf(path[i]); idx >= 0 {
			m.cursor = idx
			if path[i] != sel {
				m.nav.Select(path[i])
				m.t.Select(path[i])
			}
			break
		}
	}
	m.ensureCursorVisible()
}

func (m *TreeModel) indexOf(id tree.NodeID) int {
	for i, n := range m.flatList {
		if n == id {
			return i
		}
	}
	return -1
}

func (m *TreeModel) clampCursor() {
	if m.cursor >= len(m.flatList) {
		m.cursor = len(m.flatList) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *TreeModel) pageSize() int {
	if m.height <= 0 {
		return 20
	}
	return m.height
}

func (m *TreeModel) ensureCursorVisible() {
	page := m.pageSize()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+page {
		m.offset = m.cursor - page + 1
	}
	if last := len(m.flatList) - page; m.offset > last {
		m.offset = last
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

// Tree returns the tree being displayed.
func (m *TreeModel) Tree() *tree.Tree { return m.t }

// SelectedID returns the node under the cursor, or tree.NoNode.
func (m *TreeModel) SelectedID() tree.NodeID {
	if m.cursor >= 0 && m.cursor < len(m.flatList) {
		return m.flatList[m.cursor]
	}
	return tree.NoNode
}

// SelectedNode returns the node under the cursor, or nil.
func (m *TreeModel) SelectedNode() *tree.Node {
	id := m.SelectedID()
	if !m.t.Valid(id) {
		return nil
	}
	return m.t.Node(id)
}

func (m *TreeModel) moveTo(idx int) {
	if len(m.flatList) == 0 {
		return
	}
	m.cursor = idx
	m.clampCursor()
	m.ensureCursorVisible()
	id := m.flatList[m.cursor]
	if m.nav.Select(id) {
		m.t.Select(id)
	}
}

// MoveDown moves the cursor one row down.
func (m *TreeModel) MoveDown() { m.moveTo(m.cursor + 1) }

// MoveUp moves the cursor one row up.
func (m *TreeModel) MoveUp() { m.moveTo(m.cursor - 1) }

// PageDown moves the cursor down by half a page.
func (m *TreeModel) PageDown() { m.moveTo(m.cursor + halfPage(m.height)) }

// PageUp moves the cursor up by half a page.
func (m *TreeModel) PageUp() { m.moveTo(m.cursor - halfPage(m.height)) }

// JumpToTop selects the first row.
func (m *TreeModel) JumpToTop() { m.moveTo(0) }

// JumpToBottom selects the last row.
func (m *TreeModel) JumpToBottom() { m.moveTo(len(m.flatList) - 1) }

func halfPage(height int) int {
	if height/2 < 1 {
		return 5
	}
	return height / 2
}

// SelectID moves the cursor to a visible node.
func (m *TreeModel) SelectID(id tree.NodeID) bool {
	idx := m.indexOf(id)
	if idx < 0 {
		return false
	}
	m.moveTo(idx)
	return true
}

// JumpToMatch selects the next node after the cursor, in pre-order and
// wrapping around, whose label contains query ignoring case. Collapsed
// ancestors of the match are expanded first.
func (m *TreeModel) JumpToMatch(query string) bool {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" || m.t.Len() == 0 {
		return false
	}

	var order []tree.NodeID
	m.t.Walk(func(n *tree.Node) bool {
		order = append(order, n.ID)
		return true
	})
	start := 0
	cur := m.SelectedID()
	for i, id := range order {
		if id == cur {
			start = i + 1
			break
		}
	}

	for i := range order {
		id := order[(start+i)%len(order)]
		if strings.Contains(strings.ToLower(m.t.Node(id).Label), query) {
			m.reveal(id)
			return m.SelectID(id)
		}
	}
	return false
}

// reveal expands every collapsed ancestor of id.
func (m *TreeModel) reveal(id tree.NodeID) {
	path := m.t.Path(id)
	changed := false
	for _, anc := range path[:len(path)-1] {
		if !m.t.Node(anc).Expanded && m.nav.SetExpanded(anc, true) {
			changed = true
		}
	}
	if changed {
		m.Refresh()
	}
}

func (m *TreeModel) setExpanded(id tree.NodeID, expanded bool) {
	if m.nav.SetExpanded(id, expanded) {
		m.Refresh()
	}
}

// ToggleExpand flips the expansion of the node under the cursor.
func (m *TreeModel) ToggleExpand() {
	n := m.SelectedNode()
	if n == nil || !n.HasChildren() {
		return
	}
	m.setExpanded(n.ID, !n.Expanded)
}

// ExpandOrMoveToChild expands a collapsed node, or steps into the first
// child of an expanded one.
func (m *TreeModel) ExpandOrMoveToChild() {
	n := m.SelectedNode()
	if n == nil || !n.HasChildren() {
		return
	}
	if !n.Expanded {
		m.setExpanded(n.ID, true)
		return
	}
	m.SelectID(n.Children[0])
}

// CollapseOrJumpToParent collapses an expanded node, or moves to the parent.
func (m *TreeModel) CollapseOrJumpToParent() {
	n := m.SelectedNode()
	if n == nil {
		return
	}
	if n.HasChildren() && n.Expanded {
		m.setExpanded(n.ID, false)
		return
	}
	if n.Parent != tree.NoNode {
		m.SelectID(n.Parent)
	}
}

// ExpandAll expands every node.
func (m *TreeModel) ExpandAll() {
	m.setAll(func(*tree.Node) bool { return true })
}

// CollapseAll collapses everything below the root.
func (m *TreeModel) CollapseAll() {
	m.setAll(func(n *tree.Node) bool { return n.Parent == tree.NoNode })
}

func (m *TreeModel) setAll(expanded func(*tree.Node) bool) {
	if m.t == nil {
		return
	}
	changed := false
	m.t.Walk(func(n *tree.Node) bool {
		if n.HasChildren() && m.nav.SetExpanded(n.ID, expanded(n)) {
			changed = true
		}
		return true
	})
	if changed {
		m.Refresh()
	}
}

// NodeCount returns the number of visible rows.
func (m *TreeModel) NodeCount() int { return len(m.flatList) }

// View renders the visible window of rows.
func (m *TreeModel) View() string {
	if len(m.flatList) == 0 {
		return m.renderEmptyState()
	}

	var sb strings.Builder
	end := m.offset + m.pageSize()
	if end > len(m.flatList) {
		end = len(m.flatList)
	}
	for i := m.offset; i < end; i++ {
		line := m.renderNode(m.t.Node(m.flatList[i]))
		if i == m.cursor {
			line = m.theme.Selected.Render(line)
		}
		sb.WriteString(line)
		if i < end-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func (m *TreeModel) renderEmptyState() string {
	r := m.theme.Renderer
	title := r.NewStyle().Foreground(m.theme.Primary).Bold(true)
	muted := r.NewStyle().Foreground(m.theme.Muted)
	return title.Render("Navigation") + "\n\n" + muted.Render("Waiting for the first build…")
}

func (m *TreeModel) renderNode(n *tree.Node) string {
	r := m.theme.Renderer
	var sb strings.Builder

	prefix := export.Prefix(m.t, n.ID)
	sb.WriteString(r.NewStyle().Foreground(m.theme.Muted).Render(prefix))

	sb.WriteString(r.NewStyle().Foreground(m.theme.Secondary).Render(expandIndicator(n)))
	sb.WriteByte(' ')

	glyph, color := m.theme.Icon(n.Icon)
	sb.WriteString(r.NewStyle().Foreground(color).Render(glyph))
	sb.WriteByte(' ')

	label := n.Label
	if m.width > 0 {
		room := m.width - runewidth.StringWidth(prefix) - 4
		if room < 8 {
			room = 8
		}
		label = runewidth.Truncate(label, room, "…")
	}
	if n.Identity.IsGroup() {
		sb.WriteString(r.NewStyle().Bold(true).Render(label))
	} else {
		sb.WriteString(label)
	}
	return sb.String()
}

func expandIndicator(n *tree.Node) string {
	switch {
	case !n.HasChildren():
		return "•"
	case n.Expanded:
		return "▾"
	default:
		return "▸"
	}
}
