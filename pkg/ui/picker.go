package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/poolnav/pkg/tree"
)

// PickerItem is one choice in a picker.
type PickerItem struct {
	Value string
	Label string
}

// PickerModel is a small centred selection modal.
type PickerModel struct {
	title         string
	items         []PickerItem
	current       string // value marked with a check
	selectedIndex int
	width         int
	height        int
	theme         Theme
}

// NewPickerModel creates a picker with the cursor on current.
func NewPickerModel(title string, items []PickerItem, current string, theme Theme) PickerModel {
	selectedIdx := 0
	for i, it := range items {
		if it.Value == current {
			selectedIdx = i
			break
		}
	}
	return PickerModel{
		title:         title,
		items:         items,
		current:       current,
		selectedIndex: selectedIdx,
		theme:         theme,
	}
}

// NewModePicker lists the navigation modes.
func NewModePicker(current tree.Mode, theme Theme) PickerModel {
	var items []PickerItem
	for _, mode := range tree.Modes() {
		items = append(items, PickerItem{Value: string(mode), Label: mode.Title()})
	}
	return NewPickerModel("Navigation Mode", items, string(current), theme)
}

// SetSize updates the picker dimensions
func (m *PickerModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// MoveUp moves selection up
func (m *PickerModel) MoveUp() {
	if m.selectedIndex > 0 {
		m.selectedIndex--
	}
}

// MoveDown moves selection down
func (m *PickerModel) MoveDown() {
	if m.selectedIndex < len(m.items)-1 {
		m.selectedIndex++
	}
}

// Selected returns the value under the cursor.
func (m *PickerModel) Selected() string {
	if m.selectedIndex >= 0 && m.selectedIndex < len(m.items) {
		return m.items[m.selectedIndex].Value
	}
	return ""
}

// View renders the picker overlay
func (m *PickerModel) View() string {
	width, height := m.width, m.height
	if width == 0 {
		width = 60
	}
	if height == 0 {
		height = 20
	}

	t := m.theme

	boxWidth := 35
	if width < 45 {
		boxWidth = width - 10
	}
	if boxWidth < 25 {
		boxWidth = 25
	}

	var lines []string
	titleStyle := t.Renderer.NewStyle().
		Foreground(t.Primary).
		Bold(true).
		MarginBottom(1)
	lines = append(lines, titleStyle.Render(m.title))
	lines = append(lines, "")

	for i, it := range m.items {
		isSelected := i == m.selectedIndex

		itemStyle := t.Renderer.NewStyle()
		if isSelected {
			itemStyle = itemStyle.Foreground(t.Primary).Bold(true)
		} else {
			itemStyle = itemStyle.Foreground(t.Base.GetForeground())
		}

		prefix := "  "
		if isSelected {
			prefix = "> "
		}
		suffix := ""
		if it.Value == m.current {
			checkStyle := t.Renderer.NewStyle().Foreground(t.Secondary)
			suffix = " " + checkStyle.Render("✓")
		}
		lines = append(lines, itemStyle.Render(prefix+it.Label)+suffix)
	}

	lines = append(lines, "")
	footerStyle := t.Renderer.NewStyle().
		Foreground(t.Secondary).
		Italic(true)
	lines = append(lines, footerStyle.Render("j/k: navigate | enter: apply | esc: cancel"))

	boxStyle := t.Renderer.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Primary).
		Padding(1, 2).
		Width(boxWidth)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, boxStyle.Render(strings.Join(lines, "\n")))
}
