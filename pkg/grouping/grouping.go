// Package grouping classifies cache records into named groups. A grouping
// renders group headers, optionally nests a further grouping under each
// group, and produces a query that reproduces a group's membership.
package grouping

import (
	"fmt"
	"strings"

	"github.com/vanderheijden86/poolnav/pkg/model"
	"github.com/vanderheijden86/poolnav/pkg/query"
)

// Grouping is a strategy for classifying records into groups.
type Grouping interface {
	// Key identifies the grouping, e.g. "type" or "custom_field:Owner".
	Key() string
	// Classify returns the group value for obj, or false to exclude it.
	Classify(obj model.Object) (string, bool)
	// Name renders the header label for a group value.
	Name(value string) string
	// Icon returns the icon classification key for a group header.
	Icon(value string) string
	// Subgrouping returns the grouping nested under a group, or nil.
	Subgrouping(value string) Grouping
	// Subquery returns a filter reproducing the group's membership.
	Subquery(parent, value string) query.Query
	// Equals reports whether other is the same grouping.
	Equals(other Grouping) bool
}

// MultiClassifier is implemented by groupings that place one record in
// several groups (tags).
type MultiClassifier interface {
	ClassifyAll(obj model.Object) []string
}

// Ordered is implemented by groupings whose groups have a fixed order.
// Values missing from Order sort after the listed ones.
type Ordered interface {
	Order() []string
}

// Relations resolves the references that by-pool, by-host and by-appliance
// groupings need. It is provided per snapshot by the tree builder.
type Relations interface {
	query.Resolver
	Resolve(key model.ObjectKey) (model.Object, bool)
}

// Binder is implemented by groupings that need snapshot relations. Bind
// returns a copy bound to rel.
type Binder interface {
	Bind(rel Relations) Grouping
}

// Bind binds g to rel when it needs relations, and returns g unchanged
// otherwise.
func Bind(g Grouping, rel Relations) Grouping {
	if g == nil {
		return nil
	}
	if b, ok := g.(Binder); ok {
		return b.Bind(rel)
	}
	return g
}

// ClassifyAll returns every group value obj belongs to under g.
func ClassifyAll(g Grouping, obj model.Object) []string {
	if mc, ok := g.(MultiClassifier); ok {
		return mc.ClassifyAll(obj)
	}
	if v, ok := g.Classify(obj); ok {
		return []string{v}
	}
	return nil
}

// Names of the built-in groupings accepted by Parse.
const (
	KeyRoot        = "root"
	KeyType        = "type"
	KeyPool        = "pool"
	KeyHost        = "host"
	KeyTag         = "tag"
	KeyFolder      = "folder"
	KeyAppliance   = "appliance"
	KeyCustomField = "custom_field"
)

// Parse builds a grouping from its configured name. Levels are separated by
// "/", so "tag/pool" groups by tag and then by pool inside each tag. The
// organisational groupings (tag, folder, custom_field:<name>, appliance)
// nest by-type by default when given alone.
func Parse(name string) (Grouping, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("empty grouping name")
	}
	parts := strings.Split(name, "/")
	levels := make([]Grouping, 0, len(parts)+1)
	for _, part := range parts {
		g, err := parseLevel(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		levels = append(levels, g)
	}
	if len(levels) == 1 && isOrganizational(levels[0]) {
		levels = append(levels, ByType{})
	}

	g := levels[len(levels)-1]
	for i := len(levels) - 2; i >= 0; i-- {
		g = Nest(levels[i], g)
	}
	return g, nil
}

func parseLevel(name string) (Grouping, error) {
	switch {
	case name == KeyType:
		return ByType{}, nil
	case name == KeyPool:
		return ByPool{}, nil
	case name == KeyHost:
		return ByHost{}, nil
	case name == KeyTag:
		return ByTag{}, nil
	case name == KeyFolder:
		return ByFolder{}, nil
	case name == KeyAppliance:
		return ByAppliance{}, nil
	case strings.HasPrefix(name, KeyCustomField+":"):
		field := strings.TrimSpace(strings.TrimPrefix(name, KeyCustomField+":"))
		if field == "" {
			return nil, fmt.Errorf("grouping %q: missing custom field name", name)
		}
		return ByCustomField{Field: field}, nil
	}
	return nil, fmt.Errorf("unknown grouping %q", name)
}

func isOrganizational(g Grouping) bool {
	switch g.(type) {
	case ByTag, ByFolder, ByCustomField, ByAppliance:
		return true
	}
	return false
}

// Nest returns outer with inner as the subgrouping of every group.
func Nest(outer, inner Grouping) Grouping {
	return nested{outer: outer, inner: inner}
}

type nested struct {
	outer Grouping
	inner Grouping
}

func (n nested) Key() string                              { return n.outer.Key() }
func (n nested) Classify(obj model.Object) (string, bool) { return n.outer.Classify(obj) }
func (n nested) Name(value string) string                 { return n.outer.Name(value) }
func (n nested) Icon(value string) string                 { return n.outer.Icon(value) }
func (n nested) Subgrouping(string) Grouping              { return n.inner }
func (n nested) Equals(other Grouping) bool               { return n.outer.Equals(other) }

func (n nested) Subquery(parent, value string) query.Query {
	return n.outer.Subquery(parent, value)
}

func (n nested) ClassifyAll(obj model.Object) []string {
	return ClassifyAll(n.outer, obj)
}

func (n nested) Order() []string {
	if o, ok := n.outer.(Ordered); ok {
		return o.Order()
	}
	return nil
}

func (n nested) Bind(rel Relations) Grouping {
	return nested{outer: Bind(n.outer, rel), inner: Bind(n.inner, rel)}
}

// String renders the grouping chain the way Parse accepts it.
func (n nested) String() string {
	return n.outer.Key() + "/" + Describe(n.inner)
}

// Describe renders a grouping chain in the form Parse accepts.
func Describe(g Grouping) string {
	if g == nil {
		return ""
	}
	if s, ok := g.(fmt.Stringer); ok {
		return s.String()
	}
	return g.Key()
}

func sameKey(a Grouping, b Grouping) bool {
	return b != nil && a.Key() == b.Key()
}
