package grouping

import "github.com/vanderheijden86/poolnav/pkg/query"

// Tag identifies a group header. Two tags are equal when their groupings are
// equal and their values match; Parent is context for Filter and display
// only.
type Tag struct {
	Grouping Grouping
	Parent   *Tag
	Value    string
}

// NewTag returns the tag of group value under g, nested inside parent (nil at
// the top level).
func NewTag(g Grouping, parent *Tag, value string) Tag {
	return Tag{Grouping: g, Parent: parent, Value: value}
}

// Equal reports whether t and other identify the same group.
func (t Tag) Equal(other Tag) bool {
	if t.Grouping == nil || other.Grouping == nil {
		return t.Grouping == nil && other.Grouping == nil && t.Value == other.Value
	}
	return t.Grouping.Equals(other.Grouping) && t.Value == other.Value
}

// Key returns the grouping key, or "" for a zero tag.
func (t Tag) Key() string {
	if t.Grouping == nil {
		return ""
	}
	return t.Grouping.Key()
}

// Name renders the header label.
func (t Tag) Name() string {
	if t.Grouping == nil {
		return t.Value
	}
	return t.Grouping.Name(t.Value)
}

// Icon returns the header's icon classification key.
func (t Tag) Icon() string {
	if t.Grouping == nil {
		return IconGroup
	}
	return t.Grouping.Icon(t.Value)
}

// Filter returns a query reproducing the group's membership, including the
// constraints of every enclosing group.
func (t Tag) Filter() query.Query {
	if t.Grouping == nil {
		return query.All()
	}
	parentValue := ""
	if t.Parent != nil {
		parentValue = t.Parent.Value
	}
	q := t.Grouping.Subquery(parentValue, t.Value)
	if t.Parent != nil {
		q = t.Parent.Filter().And(q)
	}
	return q
}

// String renders the tag as "key=value".
func (t Tag) String() string {
	return t.Key() + "=" + t.Value
}
