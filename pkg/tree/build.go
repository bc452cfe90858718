// Package tree projects a cache snapshot into the navigation tree. Building
// is a pure function of its inputs: a fresh arena is produced every time and
// the cache is never modified.
package tree

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vanderheijden86/poolnav/pkg/cache"
	"github.com/vanderheijden86/poolnav/pkg/grouping"
	"github.com/vanderheijden86/poolnav/pkg/model"
	"github.com/vanderheijden86/poolnav/pkg/natsort"
	"github.com/vanderheijden86/poolnav/pkg/registry"
)

// Mode selects the hierarchy layout.
type Mode string

const (
	ModeInfrastructure Mode = grouping.RootInfrastructure
	ModeObjects        Mode = grouping.RootObjects
	ModeOrganization   Mode = grouping.RootOrganization
)

// Modes lists the navigation modes in menu order.
func Modes() []Mode {
	return []Mode{ModeInfrastructure, ModeObjects, ModeOrganization}
}

// IsValid returns true if the mode is a recognized value
func (m Mode) IsValid() bool {
	switch m {
	case ModeInfrastructure, ModeObjects, ModeOrganization:
		return true
	}
	return false
}

// Title is the display name of the mode.
func (m Mode) Title() string {
	return grouping.Root.Name(string(m))
}

// ParseMode accepts a mode name or its first letter.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "infrastructure", "infra", "i":
		return ModeInfrastructure, nil
	case "objects", "object", "o":
		return ModeObjects, nil
	case "organization", "organisation", "org", "g":
		return ModeOrganization, nil
	}
	return "", fmt.Errorf("unknown navigation mode %q", s)
}

// Sources are the collaborators a build reads from.
type Sources struct {
	Cache       cache.Reader
	Connections registry.Source
	Icons       IconClassifier
}

// Options tune a single build.
type Options struct {
	// Organization is the grouping used in organization mode. Nil means
	// tags nested by type.
	Organization grouping.Grouping
	// ExpandDepth expands every node shallower than this depth.
	ExpandDepth int
}

// DefaultOrganization groups by tag, then by type.
func DefaultOrganization() grouping.Grouping {
	return grouping.Nest(grouping.ByTag{}, grouping.ByType{})
}

// Build constructs the navigation tree for mode.
func Build(mode Mode, src Sources, settings Settings, opts Options) *Tree {
	if !mode.IsValid() {
		mode = ModeInfrastructure
	}
	b := newBuilder(mode, src, settings)

	switch mode {
	case ModeInfrastructure:
		b.infrastructure()
	case ModeObjects:
		b.objects()
	case ModeOrganization:
		org := opts.Organization
		if org == nil {
			org = DefaultOrganization()
		}
		b.organization(org)
	}

	if b.t.Len() == 1 {
		b.placeholder()
	}
	if opts.ExpandDepth > 0 {
		for i := range b.t.nodes {
			n := &b.t.nodes[i]
			n.Expanded = n.Depth < opts.ExpandDepth && n.HasChildren()
		}
	}
	return b.t
}

type builder struct {
	t        *Tree
	root     NodeID
	cache    cache.Reader
	rel      *Relations
	icons    IconClassifier
	settings Settings
	conns    []registry.Connection
	live     map[string]bool
}

func newBuilder(mode Mode, src Sources, settings Settings) *builder {
	c := src.Cache
	if c == nil {
		c = cache.Empty()
	}
	icons := src.Icons
	if icons == nil {
		icons = DefaultIcons
	}
	b := &builder{
		t:        newTree(mode),
		cache:    c,
		rel:      NewRelations(c),
		icons:    icons,
		settings: settings,
		live:     make(map[string]bool),
	}
	if src.Connections != nil {
		b.conns = src.Connections.Connections()
	}
	for _, conn := range b.conns {
		b.live[conn.ID] = conn.Connected
	}

	rootTag := grouping.NewTag(grouping.Root, nil, string(mode))
	b.root = b.t.add(NoNode, rootTag.Name(), IconKey(rootTag.Icon()), GroupIdentity(rootTag))
	return b
}

func (b *builder) placeholder() {
	tag := grouping.NewTag(grouping.Root, nil, grouping.RootPlaceholder)
	b.t.add(b.root, tag.Name(), IconKey(tag.Icon()), GroupIdentity(tag))
}

// fromLiveConnection reports whether a record should be shown at all.
// Records of disconnected connections are stale and omitted; records of
// connections the registry does not know are shown.
func (b *builder) fromLiveConnection(obj model.Object) bool {
	connected, known := b.live[obj.Connection]
	return !known || connected
}

func (b *builder) addObject(parent NodeID, obj model.Object) NodeID {
	return b.t.add(parent, obj.Name(), b.icons.IconFor(obj), ObjectIdentity(obj.Key))
}

// typeRank orders siblings in the infrastructure view.
func typeRank(obj model.Object) int {
	switch obj.Key.Type {
	case model.TypeConnection:
		return 0
	case model.TypePool:
		return 1
	case model.TypeHost:
		return 2
	case model.TypeSR:
		return 3
	case model.TypeVM:
		if obj.IsTemplate() {
			return 5
		}
		return 4
	}
	return 6
}

// sortInfrastructure orders by type rank, then natural label order, then ref.
func sortInfrastructure(objs []model.Object) {
	sort.SliceStable(objs, func(i, j int) bool {
		ri, rj := typeRank(objs[i]), typeRank(objs[j])
		if ri != rj {
			return ri < rj
		}
		if c := natsort.Compare(objs[i].Name(), objs[j].Name()); c != 0 {
			return c < 0
		}
		return objs[i].Key.Ref < objs[j].Key.Ref
	})
}

// sortByName orders by natural label order, then type, then ref.
func sortByName(objs []model.Object) {
	sort.SliceStable(objs, func(i, j int) bool {
		if c := natsort.Compare(objs[i].Name(), objs[j].Name()); c != 0 {
			return c < 0
		}
		if objs[i].Key.Type != objs[j].Key.Type {
			return objs[i].Key.Type < objs[j].Key.Type
		}
		return objs[i].Key.Ref < objs[j].Key.Ref
	})
}
