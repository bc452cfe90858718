package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Context names the pane or overlay that has focus.
type Context string

const (
	ContextTree        Context = "tree"
	ContextDetail      Context = "detail"
	ContextModePicker  Context = "mode-picker"
	ContextContextMenu Context = "context-menu"
)

// ContextHelpContent holds the quick reference for each context.
var ContextHelpContent = map[Context]string{
	ContextTree:        contextHelpTree,
	ContextDetail:      contextHelpDetail,
	ContextModePicker:  contextHelpPicker,
	ContextContextMenu: contextHelpPicker,
}

// GetContextHelp returns the help for ctx, falling back to the tree help.
func GetContextHelp(ctx Context) string {
	if content, ok := ContextHelpContent[ctx]; ok {
		return content
	}
	return contextHelpTree
}

// RenderContextHelp renders the quick reference modal.
func RenderContextHelp(ctx Context, theme Theme, width, height int) string {
	content := GetContextHelp(ctx)
	r := theme.Renderer

	modalWidth := 60
	if modalWidth > width-4 {
		modalWidth = width - 4
	}
	if modalWidth < 20 {
		modalWidth = 20
	}

	titleStyle := r.NewStyle().Bold(true).Foreground(theme.Primary)
	contentStyle := r.NewStyle().Foreground(theme.Subtext)
	footerStyle := r.NewStyle().Foreground(theme.Muted).Italic(true)

	var b strings.Builder
	b.WriteString(titleStyle.Render("Quick Reference"))
	b.WriteString("\n")
	b.WriteString(r.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", modalWidth-4)))
	b.WriteString("\n\n")
	b.WriteString(contentStyle.Render(content))
	b.WriteString("\n\n")
	b.WriteString(footerStyle.Render("Esc or ? to close"))

	modalStyle := r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Secondary).
		Padding(1, 2).
		Width(modalWidth)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, modalStyle.Render(b.String()))
}

const contextHelpTree = `## Navigation Tree

**Movement**
  j/k       Move up/down
  h/l       Collapse / expand
  space     Toggle node
  g/G       Jump to top/bottom
  C-u/C-d   Half page up/down
  +/-       Expand / collapse all
  /         Jump to a label
  n         Next match

**Views**
  1/2/3     Infrastructure / Objects / Organization
  v         Pick a view

**Actions**
  enter     Open the selected object
  m         Context menu
  y         Copy the object reference
  r         Rebuild now
  tab       Focus the detail pane
  q         Quit`

const contextHelpDetail = `## Detail Pane

  j/k       Scroll
  C-u/C-d   Half page up/down
  tab       Back to the tree
  y         Copy the object reference`

const contextHelpPicker = `## Picker

  j/k       Move
  enter     Apply
  esc       Cancel`
