package ui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/poolnav/pkg/navigator"
	"github.com/vanderheijden86/poolnav/pkg/tree"
)

// SplitViewThreshold is the terminal width from which the tree and the
// detail pane are shown side by side.
const SplitViewThreshold = 100

type focus int

const (
	focusTree focus = iota
	focusDetail
)

type overlay int

const (
	overlayNone overlay = iota
	overlayHelp
	overlayModePicker
	overlayContextMenu
)

// Context menu actions.
const (
	actionOpen       = "open"
	actionCopy       = "copy"
	actionExpand     = "expand"
	actionCollapse   = "collapse"
	actionCopyFilter = "copy-filter"
)

// Config configures the console model.
type Config struct {
	Navigator Navigator
	Cache     CacheSource
	Theme     Theme
	Keys      *KeyMap
	// GlamourStyle names a glamour standard style. Empty picks one from the
	// terminal background.
	GlamourStyle string
	// Copy writes to the clipboard. Nil means the system clipboard.
	Copy func(string) error
}

// Model is the console's bubbletea model.
type Model struct {
	nav          Navigator
	cache        CacheSource
	theme        Theme
	keys         KeyMap
	tree         TreeModel
	viewport     viewport.Model
	renderer     *glamour.TermRenderer
	glamourStyle string
	copy         func(string) error

	picker   PickerModel
	search   SearchModel
	menuNode tree.NodeID
	overlay  overlay
	focused  focus

	ready       bool
	isSplitView bool
	showDetails bool
	width       int
	height      int

	statusMsg     string
	statusIsError bool
}

// NewModel creates the console model.
func NewModel(cfg Config) Model {
	keys := DefaultKeyMap
	if cfg.Keys != nil {
		keys = *cfg.Keys
	}
	cp := cfg.Copy
	if cp == nil {
		cp = clipboard.WriteAll
	}
	m := Model{
		nav:          cfg.Navigator,
		cache:        cfg.Cache,
		theme:        cfg.Theme,
		keys:         keys,
		tree:         NewTreeModel(cfg.Navigator, cfg.Theme),
		glamourStyle: cfg.GlamourStyle,
		copy:         cp,
		search:       NewSearchModel(),
		menuNode:     tree.NoNode,
	}
	m.renderer = m.newRenderer(80)
	m.tree.Refresh()
	return m
}

func (m Model) newRenderer(wrap int) *glamour.TermRenderer {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(wrap)}
	if m.glamourStyle == "" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(m.glamourStyle))
	}
	r, _ := glamour.NewTermRenderer(opts...)
	return r
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

	case TreeChangedMsg:
		m.tree.Refresh()
		m.updateViewportContent()

	case EventMsg:
		m.handleEvent(msg.Event)

	case tea.KeyMsg:
		if m.overlay != overlayNone {
			return m.updateOverlay(msg)
		}
		if m.search.Active() {
			return m.updateSearch(msg)
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Back):
			if m.showDetails && !m.isSplitView {
				m.showDetails = false
				m.focused = focusTree
			}
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.overlay = overlayHelp
			return m, nil
		case key.Matches(msg, m.keys.ModeInfrastructure):
			m.switchMode(tree.ModeInfrastructure)
			return m, nil
		case key.Matches(msg, m.keys.ModeObjects):
			m.switchMode(tree.ModeObjects)
			return m, nil
		case key.Matches(msg, m.keys.ModeOrganization):
			m.switchMode(tree.ModeOrganization)
			return m, nil
		case key.Matches(msg, m.keys.ModePicker):
			m.picker = NewModePicker(m.nav.Mode(), m.theme)
			m.picker.SetSize(m.width, m.height)
			m.overlay = overlayModePicker
			return m, nil
		case key.Matches(msg, m.keys.Reload):
			m.nav.Rebuild()
			m.tree.Refresh()
			m.updateViewportContent()
			m.setStatus("Rebuilt", false)
			return m, nil
		case key.Matches(msg, m.keys.Copy):
			m.copySelected(false)
			return m, nil
		case key.Matches(msg, m.keys.Search):
			m.focused = focusTree
			m.showDetails = false
			return m, m.search.Start()
		case key.Matches(msg, m.keys.NextMatch):
			m.jumpTo(m.search.Last())
			return m, nil
		case key.Matches(msg, m.keys.Focus):
			if m.isSplitView {
				if m.focused == focusTree {
					m.focused = focusDetail
				} else {
					m.focused = focusTree
				}
			}
			return m, nil
		}

		if m.focused == focusTree && !m.showDetails {
			m.updateTree(msg)
		} else {
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			cmds = append(cmds, cmd)
		}
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) updateTree(msg tea.KeyMsg) {
	before := m.tree.SelectedID()
	switch {
	case key.Matches(msg, m.keys.Up):
		m.tree.MoveUp()
	case key.Matches(msg, m.keys.Down):
		m.tree.MoveDown()
	case key.Matches(msg, m.keys.Left):
		m.tree.CollapseOrJumpToParent()
	case key.Matches(msg, m.keys.Right):
		m.tree.ExpandOrMoveToChild()
	case key.Matches(msg, m.keys.PageUp):
		m.tree.PageUp()
	case key.Matches(msg, m.keys.PageDown):
		m.tree.PageDown()
	case key.Matches(msg, m.keys.Home):
		m.tree.JumpToTop()
	case key.Matches(msg, m.keys.End):
		m.tree.JumpToBottom()
	case key.Matches(msg, m.keys.Toggle):
		m.tree.ToggleExpand()
	case key.Matches(msg, m.keys.ExpandAll):
		m.tree.ExpandAll()
	case key.Matches(msg, m.keys.CollapseAll):
		m.tree.CollapseAll()
	case key.Matches(msg, m.keys.Activate):
		m.nav.Activate(m.tree.SelectedID())
	case key.Matches(msg, m.keys.ContextMenu):
		m.nav.RequestContextMenu(m.tree.SelectedID())
	}
	if m.tree.SelectedID() != before {
		m.updateViewportContent()
	}
}

func (m Model) updateOverlay(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.overlay == overlayHelp {
		if key.Matches(msg, m.keys.Back, m.keys.Help, m.keys.Quit) {
			m.overlay = overlayNone
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Back):
		m.overlay = overlayNone
	case key.Matches(msg, m.keys.Up):
		m.picker.MoveUp()
	case key.Matches(msg, m.keys.Down):
		m.picker.MoveDown()
	case key.Matches(msg, m.keys.Activate):
		choice := m.picker.Selected()
		kind := m.overlay
		m.overlay = overlayNone
		if kind == overlayModePicker {
			if mode, err := tree.ParseMode(choice); err == nil {
				m.switchMode(mode)
			}
		} else {
			m.runAction(choice)
		}
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.search.Cancel()
		return m, nil
	case tea.KeyEnter:
		m.jumpTo(m.search.Submit())
		return m, nil
	}
	return m, m.search.Update(msg)
}

func (m *Model) jumpTo(query string) {
	if query == "" {
		return
	}
	if !m.tree.JumpToMatch(query) {
		m.setStatus(fmt.Sprintf("No match for %q", query), true)
		return
	}
	m.updateViewportContent()
	if n := m.tree.SelectedNode(); n != nil {
		m.setStatus("Found "+n.Label, false)
	}
}

func (m *Model) handleEvent(ev navigator.Event) {
	switch ev.Kind {
	case navigator.EventSelectionChanged:
		m.updateViewportContent()
	case navigator.EventActivated:
		if !m.isSplitView {
			m.showDetails = true
		}
		m.updateViewportContent()
		m.setStatus("Opened "+ev.Label, false)
	case navigator.EventContextMenuRequested:
		if ev.Target == nil {
			return
		}
		m.openContextMenu(*ev.Target, ev.Label)
	}
}

func (m *Model) openContextMenu(target tree.Identity, label string) {
	t := m.tree.Tree()
	id := m.tree.SelectedID()
	if !t.Valid(id) || !t.Node(id).Identity.Equal(target) {
		var ok bool
		if id, ok = t.Find(target); !ok {
			return
		}
	}
	n := t.Node(id)
	items := []PickerItem{{Value: actionOpen, Label: "Open"}}
	if target.IsObject() {
		items = append(items, PickerItem{Value: actionCopy, Label: "Copy reference"})
	} else {
		items = append(items, PickerItem{Value: actionCopyFilter, Label: "Copy filter"})
	}
	if n.HasChildren() {
		if n.Expanded {
			items = append(items, PickerItem{Value: actionCollapse, Label: "Collapse"})
		} else {
			items = append(items, PickerItem{Value: actionExpand, Label: "Expand"})
		}
	}
	m.menuNode = id
	m.picker = NewPickerModel(label, items, "", m.theme)
	m.picker.SetSize(m.width, m.height)
	m.overlay = overlayContextMenu
}

func (m *Model) runAction(action string) {
	id := m.menuNode
	m.menuNode = tree.NoNode
	switch action {
	case actionOpen:
		m.nav.Activate(id)
	case actionCopy:
		m.copySelected(false)
	case actionCopyFilter:
		m.copySelected(true)
	case actionExpand, actionCollapse:
		if m.nav.SetExpanded(id, action == actionExpand) {
			m.tree.Refresh()
		}
	}
}

func (m *Model) switchMode(mode tree.Mode) {
	if m.nav.SetMode(mode) {
		m.tree.Refresh()
		m.updateViewportContent()
		m.setStatus("View: "+mode.Title(), false)
	}
}

// copySelected copies the selected object's reference, or a group's filter.
func (m *Model) copySelected(filter bool) {
	n := m.tree.SelectedNode()
	if n == nil {
		return
	}
	var text string
	if key, ok := n.Identity.Object(); ok && !filter {
		text = key.String()
	} else if tag, ok := n.Identity.Group(); ok {
		text = tag.Filter().String()
	}
	if text == "" {
		return
	}
	if err := m.copy(text); err != nil {
		m.setStatus(fmt.Sprintf("Clipboard error: %v", err), true)
		return
	}
	m.setStatus("Copied "+text, false)
}

func (m *Model) setStatus(msg string, isErr bool) {
	m.statusMsg = msg
	m.statusIsError = isErr
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.isSplitView = width > SplitViewThreshold
	m.ready = true

	available := height - 1 // footer
	if m.isSplitView {
		treeWidth := int(float64(width) * 0.45)
		detailWidth := width - treeWidth - 4
		m.tree.SetSize(treeWidth, available-2)
		m.viewport = viewport.New(detailWidth, available-2)
		m.showDetails = false
	} else {
		m.tree.SetSize(width, available)
		m.viewport = viewport.New(width, available)
		m.focused = focusTree
	}
	m.renderer = m.newRenderer(m.viewport.Width)
	m.updateViewportContent()
}

func (m *Model) updateViewportContent() {
	md := m.detailMarkdown()
	if m.renderer == nil {
		m.viewport.SetContent(md)
		return
	}
	rendered, err := m.renderer.Render(md)
	if err != nil {
		m.viewport.SetContent(fmt.Sprintf("Error rendering markdown: %v", err))
		return
	}
	m.viewport.SetContent(rendered)
}

func (m *Model) detailMarkdown() string {
	n := m.tree.SelectedNode()
	if m.cache == nil {
		return DetailMarkdown(n, nil)
	}
	snap := m.cache.Snapshot()
	if snap == nil {
		return DetailMarkdown(n, nil)
	}
	return DetailMarkdown(n, snap)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	switch m.overlay {
	case overlayHelp:
		ctx := ContextTree
		if m.focused == focusDetail || m.showDetails {
			ctx = ContextDetail
		}
		return RenderContextHelp(ctx, m.theme, m.width, m.height)
	case overlayModePicker, overlayContextMenu:
		return m.picker.View()
	}

	var body string
	switch {
	case m.isSplitView:
		border := m.theme.Renderer.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(m.theme.Border)
		focused := border.BorderForeground(m.theme.Primary)
		treeStyle, detailStyle := focused, border
		if m.focused == focusDetail {
			treeStyle, detailStyle = border, focused
		}
		treeView := treeStyle.Width(m.tree.width).Height(m.height - 3).Render(m.tree.View())
		detailView := detailStyle.Width(m.viewport.Width).Height(m.height - 3).Render(m.viewport.View())
		body = lipgloss.JoinHorizontal(lipgloss.Top, treeView, detailView)
	case m.showDetails:
		body = m.viewport.View()
	default:
		body = m.tree.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left, body, m.renderFooter())
}

func (m Model) renderFooter() string {
	r := m.theme.Renderer
	mode := m.nav.Mode()

	var tabs []string
	for i, md := range tree.Modes() {
		style := r.NewStyle().Padding(0, 1).Foreground(m.theme.Muted)
		if md == mode {
			style = style.Foreground(m.theme.Primary).Bold(true)
		}
		tabs = append(tabs, style.Render(fmt.Sprintf("%d %s", i+1, md.Title())))
	}
	tabSection := strings.Join(tabs, "")

	count := r.NewStyle().Foreground(m.theme.Secondary).Padding(0, 1).
		Render(fmt.Sprintf("%d rows", m.tree.NodeCount()))

	statusStyle := r.NewStyle().Foreground(m.theme.Subtext).Padding(0, 1)
	if m.statusIsError {
		statusStyle = statusStyle.Foreground(m.theme.Stopped)
	}
	status := statusStyle.Render(m.statusMsg)
	if m.search.Active() {
		status = r.NewStyle().Padding(0, 1).Render(m.search.View())
	}

	keys := r.NewStyle().Foreground(m.theme.Muted).Padding(0, 1).Render("?: help • v: views • m: menu • q: quit")

	used := lipgloss.Width(tabSection) + lipgloss.Width(count) + lipgloss.Width(status) + lipgloss.Width(keys)
	remaining := m.width - used
	if remaining < 0 {
		remaining = 0
	}
	filler := strings.Repeat(" ", remaining)
	return lipgloss.JoinHorizontal(lipgloss.Bottom, tabSection, count, status, filler, keys)
}
