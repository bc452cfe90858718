package ui

import (
	"strings"
	"testing"
)

func TestGetContextHelp(t *testing.T) {
	if GetContextHelp(Context("unknown")) != contextHelpTree {
		t.Error("unknown context should fall back to the tree help")
	}
	if GetContextHelp(ContextDetail) != contextHelpDetail {
		t.Error("detail context should have its own help")
	}
}

func TestRenderContextHelp(t *testing.T) {
	out := RenderContextHelp(ContextTree, newTestTheme(), 100, 40)
	for _, want := range []string{"Quick Reference", "Infrastructure / Objects / Organization", "Esc or ? to close"} {
		if !strings.Contains(out, want) {
			t.Errorf("help missing %q", want)
		}
	}

	// Narrow terminals still render.
	if RenderContextHelp(ContextTree, newTestTheme(), 10, 10) == "" {
		t.Error("expected output for a narrow terminal")
	}
}
