package cache

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanderheijden86/poolnav/pkg/model"
)

func vm(ref, name string) model.Object {
	return model.NewObject(model.TypeVM, ref).With(model.AttrNameLabel, name)
}

func TestReplaceReportsChanges(t *testing.T) {
	s := NewStore()

	changes := s.Replace("lab", []model.Object{vm("b", "B"), vm("a", "A")})
	require.Len(t, changes, 2)
	assert.Equal(t, "a", changes[0].Key.Ref)
	assert.Equal(t, "lab", changes[0].Connection)

	// Unchanged content produces no changes and keeps the version.
	v := s.Version()
	assert.Empty(t, s.Replace("lab", []model.Object{vm("a", "A"), vm("b", "B")}))
	assert.Equal(t, v, s.Version())

	changes = s.Replace("lab", []model.Object{vm("a", "A2")})
	require.Len(t, changes, 2)
	assert.Equal(t, Change{Key: model.ObjectKey{Type: model.TypeVM, Ref: "a"}, Connection: "lab"}, changes[0])
	assert.True(t, changes[1].Removed)
	assert.Equal(t, 1, s.Len())
}

func TestSnapshotIsImmutable(t *testing.T) {
	s := NewStore()
	s.Replace("lab", []model.Object{vm("a", "A")})
	snap := s.Snapshot()
	assert.Same(t, snap, s.Snapshot(), "snapshot reused while unchanged")

	s.Upsert("lab", vm("b", "B"))
	s.Remove("lab", model.ObjectKey{Type: model.TypeVM, Ref: "a"})

	assert.Len(t, snap.AllOfType(model.TypeVM), 1)
	obj, ok := snap.Resolve(model.ObjectKey{Type: model.TypeVM, Ref: "a"})
	require.True(t, ok)
	assert.Equal(t, "A", obj.Name())
	assert.Equal(t, "lab", obj.Connection)

	fresh := s.Snapshot()
	assert.NotSame(t, snap, fresh)
	_, ok = fresh.Resolve(model.ObjectKey{Type: model.TypeVM, Ref: "a"})
	assert.False(t, ok)
}

func TestStoreDoesNotAliasCallerMaps(t *testing.T) {
	s := NewStore()
	obj := vm("a", "A")
	s.Upsert("lab", obj)
	obj.Attrs[model.AttrNameLabel] = "mutated"

	got, ok := s.Snapshot().Resolve(obj.Key)
	require.True(t, ok)
	assert.Equal(t, "A", got.Name())
}

func TestAllOfTypeOrdered(t *testing.T) {
	s := NewStore()
	s.Replace("two", []model.Object{vm("c", "C")})
	s.Replace("one", []model.Object{vm("b", "B"), vm("a", "A")})

	snap := s.Snapshot()
	var refs []string
	for _, obj := range snap.AllOfType(model.TypeVM) {
		refs = append(refs, obj.Key.Ref)
	}
	assert.Equal(t, []string{"a", "b", "c"}, refs)
	assert.Equal(t, []string{"one", "two"}, snap.Connections())
	assert.Empty(t, snap.AllOfType(model.TypeHost))
}

func TestSubscribe(t *testing.T) {
	s := NewStore()
	ch, unsubscribe := s.Subscribe(8)

	s.Upsert("lab", vm("a", "A"))
	s.Upsert("lab", vm("a", "A")) // no-op
	s.Remove("lab", model.ObjectKey{Type: model.TypeVM, Ref: "a"})

	first := <-ch
	second := <-ch
	assert.False(t, first.Removed)
	assert.True(t, second.Removed)
	assert.Len(t, ch, 0)

	unsubscribe()
	unsubscribe()
	_, open := <-ch
	assert.False(t, open)
	s.Upsert("lab", vm("b", "B"))
}

func TestSubscribeDropsWhenFull(t *testing.T) {
	s := NewStore()
	ch, unsubscribe := s.Subscribe(1)
	defer unsubscribe()

	s.Replace("lab", []model.Object{vm("a", "A"), vm("b", "B"), vm("c", "C")})
	assert.Len(t, ch, 1)
}

func TestConcurrentAccess(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				s.Upsert("lab", vm("a", "A"))
				s.Remove("lab", model.ObjectKey{Type: model.TypeVM, Ref: "a"})
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = s.Snapshot().AllOfType(model.TypeVM)
			}
		}()
	}
	wg.Wait()
}
