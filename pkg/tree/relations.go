package tree

import (
	"sort"

	"github.com/vanderheijden86/poolnav/pkg/cache"
	"github.com/vanderheijden86/poolnav/pkg/model"
)

// Relations indexes the reference-valued attributes of one cache snapshot:
// which pool a record belongs to, which hosts an SR is attached to, and
// where each VM is homed.
type Relations struct {
	cache      cache.Reader
	poolByConn map[string]string
	attachedTo map[string][]string
	homes      map[string]homeResult
}

type homeResult struct {
	host string
	ok   bool
}

// NewRelations indexes c. The index is only valid while c is unchanged,
// which holds for snapshots.
func NewRelations(c cache.Reader) *Relations {
	r := &Relations{
		cache:      c,
		poolByConn: make(map[string]string),
		attachedTo: make(map[string][]string),
		homes:      make(map[string]homeResult),
	}

	// AllOfType is ordered by ref, so the first pool wins per connection.
	for _, pool := range c.AllOfType(model.TypePool) {
		if _, seen := r.poolByConn[pool.Connection]; !seen {
			r.poolByConn[pool.Connection] = pool.Key.Ref
		}
	}

	seen := make(map[[2]string]bool)
	for _, pbd := range c.AllOfType(model.TypePBD) {
		if !pbd.Bool(model.AttrCurrentlyAttached) {
			continue
		}
		sr, host := pbd.Ref(model.AttrSR), pbd.Ref(model.AttrHost)
		if sr == "" || host == "" || seen[[2]string{sr, host}] {
			continue
		}
		if _, ok := c.Resolve(model.ObjectKey{Type: model.TypeHost, Ref: host}); !ok {
			continue
		}
		seen[[2]string{sr, host}] = true
		r.attachedTo[sr] = append(r.attachedTo[sr], host)
	}
	for _, hosts := range r.attachedTo {
		sort.Strings(hosts)
	}
	return r
}

// Resolve looks up a record in the indexed snapshot.
func (r *Relations) Resolve(key model.ObjectKey) (model.Object, bool) {
	return r.cache.Resolve(key)
}

// resolveRef resolves a reference attribute of obj to a record of type t.
func (r *Relations) resolveRef(obj model.Object, attr string, t model.ObjectType) (model.Object, bool) {
	ref := obj.Ref(attr)
	if ref == "" {
		return model.Object{}, false
	}
	return r.cache.Resolve(model.ObjectKey{Type: t, Ref: ref})
}

// ConnectionPool returns the pool record of a connection.
func (r *Relations) ConnectionPool(conn string) (string, bool) {
	ref, ok := r.poolByConn[conn]
	return ref, ok
}

// PoolOf returns the pool a record belongs to: its own ref for a pool, an
// explicit pool attribute when it resolves, otherwise the pool of the
// record's connection.
func (r *Relations) PoolOf(obj model.Object) (string, bool) {
	if obj.Key.Type == model.TypePool {
		return obj.Key.Ref, true
	}
	if pool, ok := r.resolveRef(obj, model.AttrPool, model.TypePool); ok {
		return pool.Key.Ref, true
	}
	return r.ConnectionPool(obj.Connection)
}

// HostOf returns the host a record is shown under: the home of a VM, or the
// only host a local SR is attached to.
func (r *Relations) HostOf(obj model.Object) (string, bool) {
	switch obj.Key.Type {
	case model.TypeVM:
		return r.Home(obj)
	case model.TypeSR:
		return r.LocalHost(obj)
	}
	return "", false
}

// AttachedHosts lists the resolvable hosts with an active PBD for an SR,
// sorted by ref.
func (r *Relations) AttachedHosts(srRef string) []string {
	return r.attachedTo[srRef]
}

// IsAttached reports whether an SR has an active PBD on host.
func (r *Relations) IsAttached(srRef, host string) bool {
	for _, h := range r.attachedTo[srRef] {
		if h == host {
			return true
		}
	}
	return false
}

// LocalHost returns the single host a non-shared SR is attached to.
func (r *Relations) LocalHost(sr model.Object) (string, bool) {
	if sr.Bool(model.AttrShared) {
		return "", false
	}
	hosts := r.attachedTo[sr.Key.Ref]
	if len(hosts) != 1 {
		return "", false
	}
	return hosts[0], true
}
