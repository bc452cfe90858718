package tree

import (
	"strings"

	"github.com/vanderheijden86/poolnav/pkg/cache"
	"github.com/vanderheijden86/poolnav/pkg/model"
	"github.com/vanderheijden86/poolnav/pkg/registry"
)

const labConn = "lab:443"

var labConnected = registry.Static{{ID: labConn, Name: "Lab", Hostname: "lab", Port: 443, Connected: true}}

func pool(ref, name string) model.Object {
	return model.NewObject(model.TypePool, ref).With(model.AttrNameLabel, name)
}

func host(ref, name, poolRef string) model.Object {
	return model.NewObject(model.TypeHost, ref).
		With(model.AttrNameLabel, name).
		With(model.AttrPool, poolRef)
}

func vm(ref, name string, state model.PowerState) model.Object {
	return model.NewObject(model.TypeVM, ref).
		With(model.AttrNameLabel, name).
		With(model.AttrPowerState, string(state))
}

func template(ref, name string, builtin bool) model.Object {
	return model.NewObject(model.TypeVM, ref).
		With(model.AttrNameLabel, name).
		With(model.AttrIsTemplate, true).
		With(model.AttrIsDefaultTemplate, builtin)
}

func sr(ref, name string, shared bool) model.Object {
	return model.NewObject(model.TypeSR, ref).
		With(model.AttrNameLabel, name).
		With(model.AttrShared, shared)
}

func pbd(ref, srRef, hostRef string, attached bool) model.Object {
	return model.NewObject(model.TypePBD, ref).
		With(model.AttrSR, srRef).
		With(model.AttrHost, hostRef).
		With(model.AttrCurrentlyAttached, attached)
}

func vdi(ref, srRef string) model.Object {
	return model.NewObject(model.TypeVDI, ref).With(model.AttrSR, srRef)
}

// snapshotOf loads objs into a fresh store under the lab connection.
func snapshotOf(objs ...model.Object) *cache.Snapshot {
	store := cache.NewStore()
	store.Replace(labConn, objs)
	return store.Snapshot()
}

func labSources(objs ...model.Object) Sources {
	return Sources{Cache: snapshotOf(objs...), Connections: labConnected}
}

// outline renders a tree as indented labels, two spaces per level.
func outline(t *Tree) string {
	var lines []string
	t.Walk(func(n *Node) bool {
		lines = append(lines, strings.Repeat("  ", n.Depth)+n.Label)
		return true
	})
	return strings.Join(lines, "\n")
}

func lines(s ...string) string {
	return strings.Join(s, "\n")
}
