// Package query holds the reusable filter expression a group header hands out
// so that its membership can be reproduced outside the tree (search,
// drill-down, exports).
package query

import (
	"sort"
	"strings"

	"github.com/vanderheijden86/poolnav/pkg/model"
)

// Resolver answers the relational questions a query cannot read off a
// single record.
type Resolver interface {
	// PoolOf returns the pool ref the object belongs to.
	PoolOf(obj model.Object) (string, bool)
	// HostOf returns the ref of the host the object is homed on.
	HostOf(obj model.Object) (string, bool)
}

// Query is a conjunction of conditions. Zero-valued fields do not constrain.
type Query struct {
	Types        []model.ObjectType `yaml:"types,omitempty" json:"types,omitempty"`
	Templates    *bool              `yaml:"templates,omitempty" json:"templates,omitempty"`     // nil = either, true = only templates
	GuestsOnly   bool               `yaml:"guests_only,omitempty" json:"guests_only,omitempty"` // drop snapshots and control domains
	Connected    *bool              `yaml:"connected,omitempty" json:"connected,omitempty"`     // connection records only
	Pool         string             `yaml:"pool,omitempty" json:"pool,omitempty"`
	Host         string             `yaml:"host,omitempty" json:"host,omitempty"`
	Tags         []string           `yaml:"tags,omitempty" json:"tags,omitempty"` // all must be present
	Folder       string             `yaml:"folder,omitempty" json:"folder,omitempty"`
	CustomFields map[string]string  `yaml:"custom_fields,omitempty" json:"custom_fields,omitempty"`
	Appliance    string             `yaml:"appliance,omitempty" json:"appliance,omitempty"`
	NameContains string             `yaml:"name_contains,omitempty" json:"name_contains,omitempty"`
}

// All matches every record.
func All() Query {
	return Query{}
}

// OfType matches records of the given types.
func OfType(types ...model.ObjectType) Query {
	return Query{Types: types}
}

// Bool returns a pointer for the optional boolean fields.
func Bool(v bool) *bool {
	return &v
}

// IsEmpty reports whether the query has no conditions.
func (q Query) IsEmpty() bool {
	return len(q.Types) == 0 && q.Templates == nil && !q.GuestsOnly && q.Connected == nil &&
		q.Pool == "" && q.Host == "" && len(q.Tags) == 0 && q.Folder == "" &&
		len(q.CustomFields) == 0 && q.Appliance == "" && q.NameContains == ""
}

// And returns a query matching records that satisfy both q and other. Type
// lists intersect, tag and custom field conditions accumulate, and scalar
// conditions from other take precedence when both are set.
func (q Query) And(other Query) Query {
	out := q
	switch {
	case len(q.Types) == 0:
		out.Types = append([]model.ObjectType(nil), other.Types...)
	case len(other.Types) > 0:
		var both []model.ObjectType
		for _, t := range q.Types {
			for _, o := range other.Types {
				if t == o {
					both = append(both, t)
					break
				}
			}
		}
		if both == nil {
			// Disjoint type sets match nothing; keep an impossible type so the
			// query stays non-empty.
			both = []model.ObjectType{""}
		}
		out.Types = both
	}
	if other.Templates != nil {
		out.Templates = other.Templates
	}
	out.GuestsOnly = q.GuestsOnly || other.GuestsOnly
	if other.Connected != nil {
		out.Connected = other.Connected
	}
	if other.Pool != "" {
		out.Pool = other.Pool
	}
	if other.Host != "" {
		out.Host = other.Host
	}
	if len(other.Tags) > 0 {
		out.Tags = append(append([]string(nil), q.Tags...), other.Tags...)
	}
	if other.Folder != "" {
		out.Folder = other.Folder
	}
	if len(other.CustomFields) > 0 {
		out.CustomFields = make(map[string]string, len(q.CustomFields)+len(other.CustomFields))
		for k, v := range q.CustomFields {
			out.CustomFields[k] = v
		}
		for k, v := range other.CustomFields {
			out.CustomFields[k] = v
		}
	}
	if other.Appliance != "" {
		out.Appliance = other.Appliance
	}
	if other.NameContains != "" {
		out.NameContains = other.NameContains
	}
	return out
}

// Matches reports whether obj satisfies every condition. res may be nil when
// the query has no pool or host condition.
func (q Query) Matches(obj model.Object, res Resolver) bool {
	if len(q.Types) > 0 && !containsType(q.Types, obj.Key.Type) {
		return false
	}
	if q.Templates != nil && obj.IsTemplate() != *q.Templates {
		return false
	}
	if q.GuestsOnly && (obj.IsSnapshot() || obj.IsControlDomain()) {
		return false
	}
	if q.Connected != nil {
		if obj.Key.Type != model.TypeConnection || obj.Bool(model.AttrConnected) != *q.Connected {
			return false
		}
	}
	if q.Pool != "" {
		if res == nil {
			return false
		}
		if pool, ok := res.PoolOf(obj); !ok || pool != q.Pool {
			return false
		}
	}
	if q.Host != "" {
		if res == nil {
			return false
		}
		if host, ok := res.HostOf(obj); !ok || host != q.Host {
			return false
		}
	}
	if len(q.Tags) > 0 {
		have := obj.Strings(model.AttrTags)
		for _, want := range q.Tags {
			if !containsString(have, want) {
				return false
			}
		}
	}
	if q.Folder != "" && strings.TrimSpace(obj.String(model.AttrFolder)) != q.Folder {
		return false
	}
	if len(q.CustomFields) > 0 {
		fields := obj.StringMap(model.AttrCustomFields)
		for k, v := range q.CustomFields {
			if got, ok := fields[k]; !ok || got != v {
				return false
			}
		}
	}
	if q.Appliance != "" && obj.Ref(model.AttrAppliance) != q.Appliance {
		return false
	}
	if q.NameContains != "" && !strings.Contains(strings.ToLower(obj.Name()), strings.ToLower(q.NameContains)) {
		return false
	}
	return true
}

// Apply returns the objects that match, preserving input order.
func (q Query) Apply(objs []model.Object, res Resolver) []model.Object {
	var out []model.Object
	for _, obj := range objs {
		if q.Matches(obj, res) {
			out = append(out, obj)
		}
	}
	return out
}

// String renders the query as space-separated key=value terms in a stable
// order, e.g. "type=vm tag=prod".
func (q Query) String() string {
	if q.IsEmpty() {
		return "*"
	}
	var terms []string
	if len(q.Types) > 0 {
		types := make([]string, len(q.Types))
		for i, t := range q.Types {
			types[i] = string(t)
		}
		terms = append(terms, "type="+strings.Join(types, ","))
	}
	if q.Templates != nil {
		terms = append(terms, "template="+boolString(*q.Templates))
	}
	if q.GuestsOnly {
		terms = append(terms, "guests")
	}
	if q.Connected != nil {
		terms = append(terms, "connected="+boolString(*q.Connected))
	}
	if q.Pool != "" {
		terms = append(terms, "pool="+q.Pool)
	}
	if q.Host != "" {
		terms = append(terms, "host="+q.Host)
	}
	for _, tag := range q.Tags {
		terms = append(terms, "tag="+tag)
	}
	if q.Folder != "" {
		terms = append(terms, "folder="+q.Folder)
	}
	if len(q.CustomFields) > 0 {
		keys := make([]string, 0, len(q.CustomFields))
		for k := range q.CustomFields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			terms = append(terms, "field."+k+"="+q.CustomFields[k])
		}
	}
	if q.Appliance != "" {
		terms = append(terms, "appliance="+q.Appliance)
	}
	if q.NameContains != "" {
		terms = append(terms, "name~"+q.NameContains)
	}
	return strings.Join(terms, " ")
}

func boolString(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func containsType(types []model.ObjectType, t model.ObjectType) bool {
	for _, candidate := range types {
		if candidate == t {
			return true
		}
	}
	return false
}

func containsString(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}
