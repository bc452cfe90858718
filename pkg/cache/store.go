// Package cache holds the object records the navigator projects into a tree.
// Records are grouped by the connection that supplied them; readers work on
// immutable snapshots so a rebuild never observes a half-applied update.
package cache

import (
	"reflect"
	"sort"
	"sync"

	"github.com/vanderheijden86/poolnav/pkg/model"
)

// Reader is the read side of the object cache.
type Reader interface {
	// AllOfType returns every record of type t, ordered by ref.
	AllOfType(t model.ObjectType) []model.Object
	// Resolve returns the record for key, if present.
	Resolve(key model.ObjectKey) (model.Object, bool)
}

// Change notifies that a record was added, modified or removed.
type Change struct {
	Key        model.ObjectKey
	Connection string
	Removed    bool
}

// Store is a concurrency-safe in-memory object cache.
type Store struct {
	mu      sync.RWMutex
	conns   map[string]map[model.ObjectKey]model.Object
	version uint64
	snap    *Snapshot

	subMu  sync.Mutex
	subs   map[int]chan Change
	nextID int
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		conns: make(map[string]map[model.ObjectKey]model.Object),
		subs:  make(map[int]chan Change),
	}
}

// Replace swaps the full record set of one connection and notifies
// subscribers about every record that differs. It returns those changes.
func (s *Store) Replace(conn string, objs []model.Object) []Change {
	next := make(map[model.ObjectKey]model.Object, len(objs))
	for _, obj := range objs {
		obj = obj.Clone()
		obj.Connection = conn
		next[obj.Key] = obj
	}

	s.mu.Lock()
	prev := s.conns[conn]
	var changes []Change
	for key, obj := range next {
		old, ok := prev[key]
		if !ok || !reflect.DeepEqual(old.Attrs, obj.Attrs) {
			changes = append(changes, Change{Key: key, Connection: conn})
		}
	}
	for key := range prev {
		if _, ok := next[key]; !ok {
			changes = append(changes, Change{Key: key, Connection: conn, Removed: true})
		}
	}
	if len(next) == 0 {
		delete(s.conns, conn)
	} else {
		s.conns[conn] = next
	}
	if len(changes) > 0 {
		s.version++
		s.snap = nil
	}
	s.mu.Unlock()

	sortChanges(changes)
	s.publish(changes)
	return changes
}

// Upsert adds or replaces a single record.
func (s *Store) Upsert(conn string, obj model.Object) {
	obj = obj.Clone()
	obj.Connection = conn

	s.mu.Lock()
	records := s.conns[conn]
	if records == nil {
		records = make(map[model.ObjectKey]model.Object)
		s.conns[conn] = records
	}
	if old, ok := records[obj.Key]; ok && reflect.DeepEqual(old.Attrs, obj.Attrs) {
		s.mu.Unlock()
		return
	}
	records[obj.Key] = obj
	s.version++
	s.snap = nil
	s.mu.Unlock()

	s.publish([]Change{{Key: obj.Key, Connection: conn}})
}

// Remove deletes a single record. Removing an absent record is a no-op.
func (s *Store) Remove(conn string, key model.ObjectKey) {
	s.mu.Lock()
	records := s.conns[conn]
	if _, ok := records[key]; !ok {
		s.mu.Unlock()
		return
	}
	delete(records, key)
	if len(records) == 0 {
		delete(s.conns, conn)
	}
	s.version++
	s.snap = nil
	s.mu.Unlock()

	s.publish([]Change{{Key: key, Connection: conn, Removed: true}})
}

// Clear drops every record of a connection.
func (s *Store) Clear(conn string) []Change {
	return s.Replace(conn, nil)
}

// Version increases with every applied change.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Len returns the number of records across all connections.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, records := range s.conns {
		n += len(records)
	}
	return n
}

// Snapshot returns an immutable view of the current records. Consecutive
// calls without intervening changes return the same snapshot.
func (s *Store) Snapshot() *Snapshot {
	s.mu.RLock()
	if snap := s.snap; snap != nil {
		s.mu.RUnlock()
		return snap
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap == nil {
		s.snap = newSnapshot(s.version, s.conns)
	}
	return s.snap
}

// Subscribe registers for change notifications. The channel is buffered;
// when a subscriber falls behind, further changes are dropped for it, which
// is harmless for consumers that only need a "something changed" signal.
// Call the returned function to unsubscribe.
func (s *Store) Subscribe(buffer int) (<-chan Change, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Change, buffer)

	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	s.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
			close(ch)
		})
	}
}

func (s *Store) publish(changes []Change) {
	if len(changes) == 0 {
		return
	}
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		for _, c := range changes {
			select {
			case ch <- c:
			default:
			}
		}
	}
}

func sortChanges(changes []Change) {
	sort.Slice(changes, func(i, j int) bool {
		if changes[i].Key.Type != changes[j].Key.Type {
			return changes[i].Key.Type < changes[j].Key.Type
		}
		return changes[i].Key.Ref < changes[j].Key.Ref
	})
}

// Snapshot is an immutable, indexed copy of the store. Callers must not
// mutate the attribute maps of returned records.
type Snapshot struct {
	version uint64
	byKey   map[model.ObjectKey]model.Object
	byType  map[model.ObjectType][]model.Object
	conns   []string
}

func newSnapshot(version uint64, conns map[string]map[model.ObjectKey]model.Object) *Snapshot {
	snap := &Snapshot{
		version: version,
		byKey:   make(map[model.ObjectKey]model.Object),
		byType:  make(map[model.ObjectType][]model.Object),
	}
	for conn := range conns {
		snap.conns = append(snap.conns, conn)
	}
	sort.Strings(snap.conns)

	// Later connections win on key collisions so the result is deterministic.
	for _, conn := range snap.conns {
		for key, obj := range conns[conn] {
			snap.byKey[key] = obj
		}
	}
	for _, obj := range snap.byKey {
		snap.byType[obj.Key.Type] = append(snap.byType[obj.Key.Type], obj)
	}
	for _, objs := range snap.byType {
		sort.Slice(objs, func(i, j int) bool { return objs[i].Key.Ref < objs[j].Key.Ref })
	}
	return snap
}

// Version is the store version the snapshot was taken at.
func (s *Snapshot) Version() uint64 { return s.version }

// AllOfType returns every record of type t, ordered by ref.
func (s *Snapshot) AllOfType(t model.ObjectType) []model.Object {
	objs := s.byType[t]
	out := make([]model.Object, len(objs))
	copy(out, objs)
	return out
}

// Resolve returns the record for key, if present.
func (s *Snapshot) Resolve(key model.ObjectKey) (model.Object, bool) {
	obj, ok := s.byKey[key]
	return obj, ok
}

// Connections lists the connection IDs that currently hold records.
func (s *Snapshot) Connections() []string {
	return append([]string(nil), s.conns...)
}

// Len returns the number of distinct records.
func (s *Snapshot) Len() int { return len(s.byKey) }

// Empty returns a snapshot with no records.
func Empty() *Snapshot {
	return newSnapshot(0, nil)
}
