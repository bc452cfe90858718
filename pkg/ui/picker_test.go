package ui

import (
	"strings"
	"testing"

	"github.com/vanderheijden86/poolnav/pkg/tree"
)

func TestNewModePicker(t *testing.T) {
	picker := NewModePicker(tree.ModeObjects, newTestTheme())

	if len(picker.items) != 3 {
		t.Fatalf("Expected 3 modes, got %d", len(picker.items))
	}
	if picker.Selected() != string(tree.ModeObjects) {
		t.Errorf("Expected current mode selected, got %q", picker.Selected())
	}
}

func TestPickerUnknownCurrent(t *testing.T) {
	picker := NewPickerModel("Pick", []PickerItem{{Value: "a", Label: "A"}, {Value: "b", Label: "B"}}, "zzz", newTestTheme())
	if picker.selectedIndex != 0 {
		t.Errorf("Expected selectedIndex 0 for unknown value, got %d", picker.selectedIndex)
	}
}

func TestPickerNavigation(t *testing.T) {
	picker := NewModePicker(tree.ModeInfrastructure, newTestTheme())

	picker.MoveUp()
	if picker.Selected() != string(tree.ModeInfrastructure) {
		t.Errorf("MoveUp at top should stay, got %q", picker.Selected())
	}
	picker.MoveDown()
	picker.MoveDown()
	picker.MoveDown()
	if picker.Selected() != string(tree.ModeOrganization) {
		t.Errorf("MoveDown should clamp at the last item, got %q", picker.Selected())
	}
}

func TestPickerEmpty(t *testing.T) {
	picker := NewPickerModel("Empty", nil, "", newTestTheme())
	if picker.Selected() != "" {
		t.Errorf("Expected no selection, got %q", picker.Selected())
	}
}

func TestPickerView(t *testing.T) {
	picker := NewModePicker(tree.ModeObjects, newTestTheme())
	picker.SetSize(80, 24)
	view := picker.View()

	for _, want := range []string{"Navigation Mode", "Infrastructure", "> Objects", "✓", "esc: cancel"} {
		if !strings.Contains(view, want) {
			t.Errorf("Expected view to contain %q", want)
		}
	}
}
