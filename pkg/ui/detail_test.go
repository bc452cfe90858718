package ui

import (
	"strings"
	"testing"

	"github.com/vanderheijden86/poolnav/pkg/model"
	"github.com/vanderheijden86/poolnav/pkg/registry"
	"github.com/vanderheijden86/poolnav/pkg/tree"
)

func TestDetailMarkdownObject(t *testing.T) {
	ctrl, store := labController(t)
	id := selectObject(t, ctrl, "V1", model.TypeVM)
	md := DetailMarkdown(ctrl.Tree().Node(id), store.Snapshot())

	for _, want := range []string{
		"# web01",
		"`vm:V1`",
		"| power_state | Running |",
		"| resident_on | H1 |",
		"Connection: `lab:443`",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("detail missing %q\n%s", want, md)
		}
	}
}

func TestDetailMarkdownGroup(t *testing.T) {
	ctrl, store := labController(t)
	ctrl.SetMode(tree.ModeObjects)
	tr := ctrl.Tree()
	var group *tree.Node
	tr.Walk(func(n *tree.Node) bool {
		if n.Identity.IsGroup() && n.Parent != tree.NoNode {
			group = n
			return false
		}
		return true
	})
	if group == nil {
		t.Fatal("no group header in objects mode")
	}
	md := DetailMarkdown(group, store.Snapshot())
	if !strings.Contains(md, "| type |") || !strings.Contains(md, "Filter: `") {
		t.Errorf("unexpected group detail\n%s", md)
	}
}

func TestDetailMarkdownDisconnected(t *testing.T) {
	conn := registry.Connection{ID: "old:443", Name: "Old", Hostname: "old", Port: 443}
	n := &tree.Node{Label: "Old", Identity: tree.ObjectIdentity(conn.Key())}
	md := DetailMarkdown(n, nil)
	if !strings.Contains(md, "not connected") {
		t.Errorf("expected disconnected note\n%s", md)
	}
	if DetailMarkdown(nil, nil) != "_Nothing selected_" {
		t.Error("nil node")
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"x", "x"},
		{true, "true"},
		{[]any{"a", "b"}, "a, b"},
		{map[string]any{"b": 2, "a": "x"}, "a=x, b=2"},
	}
	for _, tt := range tests {
		if got := formatValue(tt.in); got != tt.want {
			t.Errorf("formatValue(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
