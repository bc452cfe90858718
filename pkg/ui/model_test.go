package ui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/poolnav/pkg/model"
	"github.com/vanderheijden86/poolnav/pkg/navigator"
	"github.com/vanderheijden86/poolnav/pkg/tree"
)

type consoleFixture struct {
	ctrl   *navigator.Controller
	m      Model
	copied []string
}

func newConsole(t *testing.T, width int) *consoleFixture {
	t.Helper()
	ctrl, store := labController(t)
	f := &consoleFixture{ctrl: ctrl}
	f.m = NewModel(Config{
		Navigator:    ctrl,
		Cache:        store,
		Theme:        newTestTheme(),
		GlamourStyle: "notty",
		Copy: func(s string) error {
			f.copied = append(f.copied, s)
			return nil
		},
	})
	f.send(tea.WindowSizeMsg{Width: width, Height: 24})
	return f
}

func (f *consoleFixture) send(msg tea.Msg) tea.Cmd {
	next, cmd := f.m.Update(msg)
	f.m = next.(Model)
	return cmd
}

func (f *consoleFixture) keys(keys ...string) {
	for _, k := range keys {
		f.send(keyMsg(k))
	}
}

func TestModelInitialView(t *testing.T) {
	f := newConsole(t, 80)
	view := f.m.View()
	for _, want := range []string{"Infrastructure", "host01", "1 Infrastructure", "5 rows", "?: help"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
	if f.m.isSplitView {
		t.Error("80 columns should not split")
	}
}

func TestModelNotReady(t *testing.T) {
	ctrl, _ := labController(t)
	m := NewModel(Config{Navigator: ctrl, Theme: newTestTheme(), GlamourStyle: "notty"})
	if m.View() != "Initializing..." {
		t.Errorf("unexpected view before size: %q", m.View())
	}
}

func TestModelModeKeys(t *testing.T) {
	f := newConsole(t, 80)
	f.keys("2")
	if f.ctrl.Mode() != tree.ModeObjects {
		t.Fatalf("expected objects mode, got %s", f.ctrl.Mode())
	}
	if f.m.statusMsg != "View: Objects" {
		t.Errorf("status = %q", f.m.statusMsg)
	}
	f.keys("3")
	if f.ctrl.Mode() != tree.ModeOrganization {
		t.Errorf("expected organization mode, got %s", f.ctrl.Mode())
	}
	f.keys("1")
	if f.ctrl.Mode() != tree.ModeInfrastructure {
		t.Errorf("expected infrastructure mode, got %s", f.ctrl.Mode())
	}
}

func TestModelModePicker(t *testing.T) {
	f := newConsole(t, 80)
	f.keys("v")
	if f.m.overlay != overlayModePicker {
		t.Fatal("expected mode picker")
	}
	if !strings.Contains(f.m.View(), "Navigation Mode") {
		t.Error("picker not rendered")
	}
	f.keys("j", "enter")
	if f.m.overlay != overlayNone {
		t.Error("picker should close")
	}
	if f.ctrl.Mode() != tree.ModeObjects {
		t.Errorf("expected objects mode, got %s", f.ctrl.Mode())
	}

	f.keys("v", "j", "esc")
	if f.ctrl.Mode() != tree.ModeObjects {
		t.Error("esc should not apply")
	}
}

func TestModelNavigationAndCopy(t *testing.T) {
	f := newConsole(t, 80)
	f.keys("j", "j", "l", "l") // host01, expand, web01
	n := f.m.tree.SelectedNode()
	if n == nil || n.Label != "web01" {
		t.Fatalf("expected web01 selected, got %+v", n)
	}

	f.keys("y")
	if len(f.copied) != 1 || f.copied[0] != "vm:V1" {
		t.Fatalf("copied = %v", f.copied)
	}
	if f.m.statusMsg != "Copied vm:V1" {
		t.Errorf("status = %q", f.m.statusMsg)
	}
}

func TestModelCopyError(t *testing.T) {
	f := newConsole(t, 80)
	f.m.copy = func(string) error { return errors.New("no display") }
	f.keys("j", "y")
	if !f.m.statusIsError || !strings.Contains(f.m.statusMsg, "no display") {
		t.Errorf("expected clipboard error status, got %q", f.m.statusMsg)
	}
}

func TestModelActivateShowsDetail(t *testing.T) {
	f := newConsole(t, 80)
	id := selectObject(t, f.ctrl, "V2", model.TypeVM)
	f.send(TreeChangedMsg{})
	f.send(EventMsg{Event: navigator.Event{Kind: navigator.EventActivated, Label: "db01"}})

	if !f.m.showDetails {
		t.Fatal("activation should open the detail view")
	}
	view := f.m.View()
	if !strings.Contains(view, "db01") || !strings.Contains(view, "Halted") {
		t.Errorf("detail view missing record:\n%s", view)
	}
	if f.m.tree.SelectedID() != id {
		t.Error("tree cursor lost")
	}

	f.keys("esc")
	if f.m.showDetails {
		t.Error("esc should close the detail view")
	}
}

func TestModelContextMenu(t *testing.T) {
	f := newConsole(t, 80)
	id := selectObject(t, f.ctrl, "H1", model.TypeHost)
	f.send(TreeChangedMsg{})
	target := f.ctrl.Tree().Node(id).Identity
	f.send(EventMsg{Event: navigator.Event{Kind: navigator.EventContextMenuRequested, Target: &target, Label: "host01"}})

	if f.m.overlay != overlayContextMenu {
		t.Fatal("expected context menu")
	}
	view := f.m.View()
	for _, want := range []string{"host01", "Open", "Copy reference", "Expand"} {
		if !strings.Contains(view, want) {
			t.Errorf("menu missing %q", want)
		}
	}

	f.keys("j", "j", "enter") // Expand
	if f.m.overlay != overlayNone {
		t.Error("menu should close")
	}
	if !f.ctrl.Tree().Node(id).Expanded {
		t.Error("expected host01 expanded")
	}
	if f.m.tree.NodeCount() != 6 {
		t.Errorf("expected 6 rows, got %d", f.m.tree.NodeCount())
	}
}

func TestModelSearch(t *testing.T) {
	f := newConsole(t, 80)
	f.keys("/")
	if !f.m.search.Active() {
		t.Fatal("expected the search prompt")
	}
	f.keys("q") // typed into the prompt, not quit
	if f.m.search.input.Value() != "q" {
		t.Fatalf("prompt value = %q", f.m.search.input.Value())
	}
	f.send(tea.KeyMsg{Type: tea.KeyBackspace})
	f.keys("web")
	if f.m.search.input.Value() != "web" {
		t.Fatalf("prompt value = %q", f.m.search.input.Value())
	}
	f.keys("enter")

	if f.m.search.Active() {
		t.Error("enter should close the prompt")
	}
	if n := f.m.tree.SelectedNode(); n == nil || n.Label != "web01" {
		t.Fatalf("expected web01 selected, got %+v", n)
	}
	if f.m.statusMsg != "Found web01" {
		t.Errorf("status = %q", f.m.statusMsg)
	}

	f.keys("/", "zzz", "enter")
	if !f.m.statusIsError || !strings.Contains(f.m.statusMsg, "zzz") {
		t.Errorf("expected a no-match status, got %q", f.m.statusMsg)
	}
	f.keys("n") // repeats the last query
	if n := f.m.tree.SelectedNode(); n == nil || n.Label != "web01" {
		t.Error("a failed search should keep the selection")
	}

	f.keys("/", "host", "esc")
	if f.m.search.Active() || f.m.search.Last() != "zzz" {
		t.Error("esc should cancel without replacing the query")
	}
}

func TestModelHelpOverlay(t *testing.T) {
	f := newConsole(t, 80)
	f.keys("?")
	if !strings.Contains(f.m.View(), "Quick Reference") {
		t.Fatal("help not shown")
	}
	f.keys("j") // ignored while help is open
	f.keys("esc")
	if f.m.overlay != overlayNone {
		t.Error("help should close")
	}
	if f.m.tree.cursor != 0 {
		t.Error("keys leaked through the help overlay")
	}
}

func TestModelSplitView(t *testing.T) {
	f := newConsole(t, 140)
	if !f.m.isSplitView {
		t.Fatal("expected split view")
	}
	selectObject(t, f.ctrl, "V2", model.TypeVM)
	f.send(TreeChangedMsg{})
	if !strings.Contains(f.m.View(), "power_state") {
		t.Error("detail pane should show the selected record")
	}

	f.keys("tab")
	if f.m.focused != focusDetail {
		t.Error("tab should focus the detail pane")
	}
	f.keys("j")
	if n := f.m.tree.SelectedNode(); n == nil || n.Label != "db01" {
		t.Error("keys in the detail pane should not move the tree")
	}
	f.keys("tab")
	if f.m.focused != focusTree {
		t.Error("tab should return to the tree")
	}
}

func TestModelReloadAndQuit(t *testing.T) {
	f := newConsole(t, 80)
	before := f.ctrl.Rebuilds()
	f.keys("r")
	if f.ctrl.Rebuilds() != before+1 {
		t.Error("r should rebuild")
	}
	if cmd := f.send(keyMsg("q")); cmd == nil {
		t.Fatal("expected quit command")
	} else if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}
