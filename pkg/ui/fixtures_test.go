package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/vanderheijden86/poolnav/pkg/cache"
	"github.com/vanderheijden86/poolnav/pkg/model"
	"github.com/vanderheijden86/poolnav/pkg/navigator"
	"github.com/vanderheijden86/poolnav/pkg/registry"
	"github.com/vanderheijden86/poolnav/pkg/tree"
)

const labConn = "lab:443"

func newTestTheme() Theme {
	return DefaultTheme(lipgloss.NewRenderer(nil))
}

// labController builds the first tree for a pool with two hosts, one
// running VM on host01 and one halted VM homed on the pool.
func labController(t *testing.T) (*navigator.Controller, *cache.Store) {
	t.Helper()
	store := cache.NewStore()
	store.Replace(labConn, []model.Object{
		model.NewObject(model.TypePool, "P1").With(model.AttrNameLabel, "Lab"),
		model.NewObject(model.TypeHost, "H1").With(model.AttrNameLabel, "host01").With(model.AttrPool, "P1"),
		model.NewObject(model.TypeHost, "H2").With(model.AttrNameLabel, "host02").With(model.AttrPool, "P1"),
		model.NewObject(model.TypeVM, "V1").
			With(model.AttrNameLabel, "web01").
			With(model.AttrPowerState, string(model.PowerRunning)).
			With(model.AttrResidentOn, "H1"),
		model.NewObject(model.TypeVM, "V2").
			With(model.AttrNameLabel, "db01").
			With(model.AttrPowerState, string(model.PowerHalted)),
	})
	ctrl := navigator.New(navigator.Config{
		Cache:       store,
		Connections: registry.Static{{ID: labConn, Name: "Lab", Hostname: "lab", Port: 443, Connected: true}},
		Logger:      zerolog.Nop(),
	})
	ctrl.Rebuild()
	return ctrl, store
}

func selectObject(t *testing.T, ctrl *navigator.Controller, ref string, typ model.ObjectType) tree.NodeID {
	t.Helper()
	id, ok := ctrl.Tree().FindObject(model.ObjectKey{Type: typ, Ref: ref})
	if !ok {
		t.Fatalf("%s:%s not in tree", typ, ref)
	}
	ctrl.Select(id)
	return id
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}
