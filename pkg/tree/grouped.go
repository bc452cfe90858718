package tree

import (
	"sort"

	"github.com/vanderheijden86/poolnav/pkg/grouping"
	"github.com/vanderheijden86/poolnav/pkg/model"
	"github.com/vanderheijden86/poolnav/pkg/natsort"
)

func (b *builder) objects() {
	b.groups(b.root, nil, grouping.ByType{}, b.members())
}

func (b *builder) organization(g grouping.Grouping) {
	b.groups(b.root, nil, g, b.members())
}

// members returns the records eligible for the grouped views: pools, hosts,
// guest VMs, templates and SRs allowed by settings, plus one synthetic
// record per disconnected connection.
func (b *builder) members() []model.Object {
	var out []model.Object
	for _, t := range []model.ObjectType{model.TypePool, model.TypeHost, model.TypeVM, model.TypeSR} {
		for _, obj := range b.cache.AllOfType(t) {
			if !b.fromLiveConnection(obj) || !b.settings.showHidden(obj) {
				continue
			}
			switch t {
			case model.TypeVM:
				if obj.IsSnapshot() || obj.IsControlDomain() {
					continue
				}
				if obj.IsTemplate() && !b.settings.showTemplate(obj) {
					continue
				}
			case model.TypeSR:
				if !obj.Bool(model.AttrShared) && !b.settings.ShowLocalStorage {
					continue
				}
			}
			out = append(out, obj)
		}
	}
	for _, conn := range b.conns {
		if !conn.Connected {
			out = append(out, conn.Object())
		}
	}
	return out
}

// groups adds one header per group value of g under parent. Members that a
// nested grouping does not classify are listed directly under the header.
func (b *builder) groups(parent NodeID, parentTag *grouping.Tag, g grouping.Grouping, members []model.Object) {
	g = grouping.Bind(g, b.rel)

	buckets := make(map[string][]model.Object)
	for _, obj := range members {
		for _, v := range grouping.ClassifyAll(g, obj) {
			buckets[v] = append(buckets[v], obj)
		}
	}

	for _, value := range orderGroups(g, buckets) {
		tag := grouping.NewTag(g, parentTag, value)
		node := b.t.add(parent, tag.Name(), IconKey(tag.Icon()), GroupIdentity(tag))

		leaves := buckets[value]
		if sub := g.Subgrouping(value); sub != nil {
			sub = grouping.Bind(sub, b.rel)
			var nested []model.Object
			var rest []model.Object
			for _, obj := range leaves {
				if len(grouping.ClassifyAll(sub, obj)) > 0 {
					nested = append(nested, obj)
				} else {
					rest = append(rest, obj)
				}
			}
			tagCopy := tag
			b.groups(node, &tagCopy, sub, nested)
			leaves = rest
		}

		leaves = append([]model.Object(nil), leaves...)
		sortByName(leaves)
		for _, obj := range leaves {
			b.addObject(node, obj)
		}
	}
}

// orderGroups returns group values in display order: the grouping's fixed
// order when it has one, then natural order of header names, then value.
func orderGroups(g grouping.Grouping, buckets map[string][]model.Object) []string {
	rank := make(map[string]int)
	if o, ok := g.(grouping.Ordered); ok {
		for i, v := range o.Order() {
			rank[v] = i + 1
		}
	}
	values := make([]string, 0, len(buckets))
	for v := range buckets {
		values = append(values, v)
	}
	sort.Slice(values, func(i, j int) bool {
		ri, rj := rank[values[i]], rank[values[j]]
		if ri == 0 {
			ri = len(rank) + 1
		}
		if rj == 0 {
			rj = len(rank) + 1
		}
		if ri != rj {
			return ri < rj
		}
		if c := natsort.Compare(g.Name(values[i]), g.Name(values[j])); c != 0 {
			return c < 0
		}
		return values[i] < values[j]
	})
	return values
}
