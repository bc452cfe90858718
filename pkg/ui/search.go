package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// SearchModel is the jump-to prompt shown in the footer.
type SearchModel struct {
	input  textinput.Model
	active bool
	last   string
}

// NewSearchModel creates an inactive prompt.
func NewSearchModel() SearchModel {
	ti := textinput.New()
	ti.Prompt = "/"
	ti.Placeholder = "jump to..."
	ti.CharLimit = 64
	ti.Width = 30
	return SearchModel{input: ti}
}

// Start clears and focuses the prompt.
func (s *SearchModel) Start() tea.Cmd {
	s.active = true
	s.input.SetValue("")
	return s.input.Focus()
}

// Cancel closes the prompt, keeping the previous query.
func (s *SearchModel) Cancel() {
	s.active = false
	s.input.Blur()
}

// Submit closes the prompt and returns the query, which becomes the one
// repeated by Last.
func (s *SearchModel) Submit() string {
	s.active = false
	s.input.Blur()
	if q := strings.TrimSpace(s.input.Value()); q != "" {
		s.last = q
	}
	return s.last
}

// Active reports whether the prompt has focus.
func (s SearchModel) Active() bool { return s.active }

// Last is the most recently submitted query.
func (s SearchModel) Last() string { return s.last }

// Update forwards a message to the text input.
func (s *SearchModel) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return cmd
}

// View renders the prompt.
func (s SearchModel) View() string {
	return s.input.View()
}
