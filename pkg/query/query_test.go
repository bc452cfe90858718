package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanderheijden86/poolnav/pkg/model"
)

type fakeResolver struct {
	pools map[string]string
	hosts map[string]string
}

func (f fakeResolver) PoolOf(obj model.Object) (string, bool) {
	p, ok := f.pools[obj.Key.Ref]
	return p, ok
}

func (f fakeResolver) HostOf(obj model.Object) (string, bool) {
	h, ok := f.hosts[obj.Key.Ref]
	return h, ok
}

func TestMatches(t *testing.T) {
	web := model.NewObject(model.TypeVM, "vm-web").
		With(model.AttrNameLabel, "Web Server").
		With(model.AttrTags, []any{"prod", "web"}).
		With(model.AttrFolder, "/apps").
		With(model.AttrCustomFields, map[string]any{"owner": "ops"})
	tmpl := model.NewObject(model.TypeVM, "vm-tmpl").With(model.AttrIsTemplate, true)
	host := model.NewObject(model.TypeHost, "h1")
	res := fakeResolver{
		pools: map[string]string{"vm-web": "p1", "h1": "p1"},
		hosts: map[string]string{"vm-web": "h1"},
	}

	tests := []struct {
		name string
		q    Query
		obj  model.Object
		want bool
	}{
		{"empty matches all", All(), host, true},
		{"type", OfType(model.TypeVM), web, true},
		{"type miss", OfType(model.TypeHost), web, false},
		{"templates only", Query{Types: []model.ObjectType{model.TypeVM}, Templates: Bool(true)}, tmpl, true},
		{"no templates", Query{Templates: Bool(false)}, tmpl, false},
		{"pool", Query{Pool: "p1"}, host, true},
		{"host", Query{Host: "h1"}, web, true},
		{"host unhomed", Query{Host: "h1"}, tmpl, false},
		{"tags all present", Query{Tags: []string{"prod", "web"}}, web, true},
		{"tags one missing", Query{Tags: []string{"prod", "db"}}, web, false},
		{"folder", Query{Folder: "/apps"}, web, true},
		{"custom field", Query{CustomFields: map[string]string{"owner": "ops"}}, web, true},
		{"custom field value", Query{CustomFields: map[string]string{"owner": "dev"}}, web, false},
		{"name contains", Query{NameContains: "server"}, web, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.q.Matches(tt.obj, res))
		})
	}
}

func TestMatchesWithoutResolver(t *testing.T) {
	host := model.NewObject(model.TypeHost, "h1")
	assert.False(t, Query{Pool: "p1"}.Matches(host, nil))
	assert.True(t, OfType(model.TypeHost).Matches(host, nil))
}

func TestAnd(t *testing.T) {
	q := Query{Tags: []string{"prod"}}.And(OfType(model.TypeVM)).And(Query{Templates: Bool(false)})
	assert.Equal(t, []model.ObjectType{model.TypeVM}, q.Types)
	assert.Equal(t, []string{"prod"}, q.Tags)
	require.NotNil(t, q.Templates)
	assert.False(t, *q.Templates)

	disjoint := OfType(model.TypeVM).And(OfType(model.TypeHost))
	assert.False(t, disjoint.IsEmpty())
	assert.False(t, disjoint.Matches(model.NewObject(model.TypeVM, "v"), nil))
	assert.False(t, disjoint.Matches(model.NewObject(model.TypeHost, "h"), nil))
}

func TestApply(t *testing.T) {
	objs := []model.Object{
		model.NewObject(model.TypeVM, "a"),
		model.NewObject(model.TypeHost, "b"),
		model.NewObject(model.TypeVM, "c"),
	}
	got := OfType(model.TypeVM).Apply(objs, nil)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Key.Ref)
	assert.Equal(t, "c", got[1].Key.Ref)
}

func TestString(t *testing.T) {
	assert.Equal(t, "*", All().String())
	q := Query{
		Types:        []model.ObjectType{model.TypeVM},
		Templates:    Bool(false),
		Tags:         []string{"prod"},
		CustomFields: map[string]string{"b": "2", "a": "1"},
	}
	assert.Equal(t, "type=vm template=no tag=prod field.a=1 field.b=2", q.String())
}
