package tree

import (
	"sort"
	"strings"

	"github.com/vanderheijden86/poolnav/pkg/model"
	"github.com/vanderheijden86/poolnav/pkg/registry"
)

// ConnectingSuffix is appended to a connected server that has not reported
// its pool yet.
const ConnectingSuffix = " (connecting)"

// infraIndex buckets the snapshot by placement target.
type infraIndex struct {
	poolsByConn map[string][]model.Object
	hosts       map[string][]model.Object // by pool
	detached    map[string][]model.Object // SRs without an active PBD, by pool
	unhomed     map[string][]model.Object // VMs, by pool
	templates   map[string][]model.Object // by pool
	hostSRs     map[string][]model.Object // by host
	hostVMs     map[string][]model.Object // by host
}

func (b *builder) infrastructure() {
	idx := b.indexInfrastructure()

	for _, conn := range b.conns {
		if !conn.Connected {
			b.addObject(b.root, conn.Object())
			continue
		}
		pools := idx.poolsByConn[conn.ID]
		delete(idx.poolsByConn, conn.ID)
		if len(pools) == 0 {
			b.addConnecting(conn)
			continue
		}
		for _, pool := range pools {
			b.addPool(idx, pool)
		}
	}

	// Records from connections the registry does not list.
	var orphans []string
	for conn := range idx.poolsByConn {
		orphans = append(orphans, conn)
	}
	sort.Strings(orphans)
	for _, conn := range orphans {
		for _, pool := range idx.poolsByConn[conn] {
			b.addPool(idx, pool)
		}
	}
}

func (b *builder) addConnecting(conn registry.Connection) {
	b.t.add(b.root, conn.Name+ConnectingSuffix, IconPlaceholder, ObjectIdentity(conn.Key()))
}

func (b *builder) indexInfrastructure() *infraIndex {
	idx := &infraIndex{
		poolsByConn: make(map[string][]model.Object),
		hosts:       make(map[string][]model.Object),
		detached:    make(map[string][]model.Object),
		unhomed:     make(map[string][]model.Object),
		templates:   make(map[string][]model.Object),
		hostSRs:     make(map[string][]model.Object),
		hostVMs:     make(map[string][]model.Object),
	}
	visible := func(obj model.Object) bool {
		return b.fromLiveConnection(obj) && b.settings.showHidden(obj)
	}

	for _, pool := range b.cache.AllOfType(model.TypePool) {
		if visible(pool) {
			idx.poolsByConn[pool.Connection] = append(idx.poolsByConn[pool.Connection], pool)
		}
	}
	for _, pools := range idx.poolsByConn {
		sortInfrastructure(pools)
	}

	// Only placed hosts can take VMs; a VM homed elsewhere falls back to
	// its pool.
	placed := make(map[string]bool)
	for _, host := range b.cache.AllOfType(model.TypeHost) {
		if !visible(host) {
			continue
		}
		if pool, ok := b.rel.PoolOf(host); ok {
			idx.hosts[pool] = append(idx.hosts[pool], host)
			placed[host.Key.Ref] = true
		}
	}

	for _, sr := range b.cache.AllOfType(model.TypeSR) {
		if !visible(sr) || isISO(sr) {
			continue
		}
		hosts := b.rel.AttachedHosts(sr.Key.Ref)
		if len(hosts) == 0 {
			if pool, ok := b.rel.PoolOf(sr); ok {
				idx.detached[pool] = append(idx.detached[pool], sr)
			}
			continue
		}
		if !sr.Bool(model.AttrShared) && !b.settings.ShowLocalStorage {
			continue
		}
		for _, host := range hosts {
			idx.hostSRs[host] = append(idx.hostSRs[host], sr)
		}
	}

	for _, vm := range b.cache.AllOfType(model.TypeVM) {
		if !visible(vm) {
			continue
		}
		switch {
		case vm.IsTemplate():
			if !b.settings.showTemplate(vm) {
				continue
			}
			if pool, ok := b.rel.PoolOf(vm); ok {
				idx.templates[pool] = append(idx.templates[pool], vm)
			}
		case vm.IsRealVM():
			if host, ok := b.rel.Home(vm); ok && placed[host] {
				idx.hostVMs[host] = append(idx.hostVMs[host], vm)
			} else if pool, ok := b.rel.PoolOf(vm); ok {
				idx.unhomed[pool] = append(idx.unhomed[pool], vm)
			}
		}
	}
	return idx
}

// addPool adds a pool and its members. An unnamed pool is a standalone
// server: its members go straight under the root.
func (b *builder) addPool(idx *infraIndex, pool model.Object) {
	parent := b.root
	if strings.TrimSpace(pool.String(model.AttrNameLabel)) != "" {
		parent = b.addObject(b.root, pool)
	}

	ref := pool.Key.Ref
	var children []model.Object
	children = append(children, idx.hosts[ref]...)
	children = append(children, idx.detached[ref]...)
	children = append(children, idx.unhomed[ref]...)
	children = append(children, idx.templates[ref]...)
	sortInfrastructure(children)

	for _, child := range children {
		node := b.addObject(parent, child)
		if child.Key.Type == model.TypeHost {
			b.addHostChildren(idx, node, child)
		}
	}
}

func (b *builder) addHostChildren(idx *infraIndex, node NodeID, host model.Object) {
	var children []model.Object
	children = append(children, idx.hostSRs[host.Key.Ref]...)
	children = append(children, idx.hostVMs[host.Key.Ref]...)
	sortInfrastructure(children)
	for _, child := range children {
		b.addObject(node, child)
	}
}

// isISO reports whether an SR holds ISO images or guest tools, which the
// infrastructure view leaves out.
func isISO(sr model.Object) bool {
	return strings.EqualFold(sr.String(model.AttrContentType), model.ContentTypeISO) || sr.Bool(model.AttrIsToolsSR)
}
