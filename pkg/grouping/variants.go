package grouping

import (
	"strings"

	"github.com/vanderheijden86/poolnav/pkg/model"
	"github.com/vanderheijden86/poolnav/pkg/natsort"
	"github.com/vanderheijden86/poolnav/pkg/query"
)

// IconGroup is the icon key of an ordinary group header.
const IconGroup = "group"

// Group values produced by ByType.
const (
	TypePools        = "pool"
	TypeHosts        = "host"
	TypeVMs          = "vm"
	TypeTemplates    = "template"
	TypeStorage      = "sr"
	TypeDisconnected = "disconnected"
)

var typeNames = map[string]string{
	TypePools:        "Pools",
	TypeHosts:        "Hosts",
	TypeVMs:          "VMs",
	TypeTemplates:    "Templates",
	TypeStorage:      "Storage",
	TypeDisconnected: "Disconnected servers",
}

// ByType groups records by object type, with templates split from VMs and
// disconnected connections in their own group.
type ByType struct{}

func (ByType) Key() string { return KeyType }

func (ByType) Classify(obj model.Object) (string, bool) {
	switch obj.Key.Type {
	case model.TypePool:
		return TypePools, true
	case model.TypeHost:
		return TypeHosts, true
	case model.TypeVM:
		switch {
		case obj.IsSnapshot(), obj.IsControlDomain():
			return "", false
		case obj.IsTemplate():
			return TypeTemplates, true
		default:
			return TypeVMs, true
		}
	case model.TypeSR:
		return TypeStorage, true
	case model.TypeConnection:
		if !obj.Bool(model.AttrConnected) {
			return TypeDisconnected, true
		}
	}
	return "", false
}

func (ByType) Name(value string) string {
	if name, ok := typeNames[value]; ok {
		return name
	}
	return value
}

func (ByType) Icon(string) string { return IconGroup }

func (ByType) Subgrouping(string) Grouping { return nil }

func (ByType) Subquery(_, value string) query.Query {
	switch value {
	case TypePools:
		return query.OfType(model.TypePool)
	case TypeHosts:
		return query.OfType(model.TypeHost)
	case TypeVMs:
		return query.Query{Types: []model.ObjectType{model.TypeVM}, Templates: query.Bool(false), GuestsOnly: true}
	case TypeTemplates:
		return query.Query{Types: []model.ObjectType{model.TypeVM}, Templates: query.Bool(true)}
	case TypeStorage:
		return query.OfType(model.TypeSR)
	case TypeDisconnected:
		return query.Query{Types: []model.ObjectType{model.TypeConnection}, Connected: query.Bool(false)}
	}
	return query.OfType(model.ObjectType(value))
}

func (g ByType) Equals(other Grouping) bool { return sameKey(g, other) }

// Order lists the by-type groups in display order.
func (ByType) Order() []string {
	return []string{TypePools, TypeHosts, TypeVMs, TypeTemplates, TypeStorage, TypeDisconnected}
}

// ByPool groups records by the pool they belong to. Pools themselves are
// not members.
type ByPool struct {
	Relations Relations
}

func (ByPool) Key() string { return KeyPool }

func (g ByPool) Classify(obj model.Object) (string, bool) {
	if g.Relations == nil || obj.Key.Type == model.TypePool {
		return "", false
	}
	return g.Relations.PoolOf(obj)
}

func (g ByPool) Name(value string) string {
	return resolveName(g.Relations, model.ObjectKey{Type: model.TypePool, Ref: value})
}

func (ByPool) Icon(string) string                   { return IconGroup }
func (ByPool) Subgrouping(string) Grouping          { return nil }
func (ByPool) Subquery(_, value string) query.Query { return query.Query{Pool: value} }
func (g ByPool) Equals(other Grouping) bool         { return sameKey(g, other) }

// Bind returns a copy resolving through rel.
func (g ByPool) Bind(rel Relations) Grouping {
	g.Relations = rel
	return g
}

// ByHost groups records by the host they are homed on. Hosts themselves are
// not members.
type ByHost struct {
	Relations Relations
}

func (ByHost) Key() string { return KeyHost }

func (g ByHost) Classify(obj model.Object) (string, bool) {
	if g.Relations == nil || obj.Key.Type == model.TypeHost {
		return "", false
	}
	return g.Relations.HostOf(obj)
}

func (g ByHost) Name(value string) string {
	return resolveName(g.Relations, model.ObjectKey{Type: model.TypeHost, Ref: value})
}

func (ByHost) Icon(string) string                   { return IconGroup }
func (ByHost) Subgrouping(string) Grouping          { return nil }
func (ByHost) Subquery(_, value string) query.Query { return query.Query{Host: value} }
func (g ByHost) Equals(other Grouping) bool         { return sameKey(g, other) }

// Bind returns a copy resolving through rel.
func (g ByHost) Bind(rel Relations) Grouping {
	g.Relations = rel
	return g
}

// ByTag groups records by tag. A record with several tags is a member of
// each of them.
type ByTag struct{}

func (ByTag) Key() string { return KeyTag }

func (g ByTag) Classify(obj model.Object) (string, bool) {
	tags := g.ClassifyAll(obj)
	if len(tags) == 0 {
		return "", false
	}
	return tags[0], true
}

// ClassifyAll returns the record's distinct, non-blank tags in natural order.
func (ByTag) ClassifyAll(obj model.Object) []string {
	seen := make(map[string]bool)
	var tags []string
	for _, tag := range obj.Strings(model.AttrTags) {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
	}
	natsort.Sort(tags)
	return tags
}

func (ByTag) Name(value string) string             { return value }
func (ByTag) Icon(string) string                   { return IconGroup }
func (ByTag) Subgrouping(string) Grouping          { return nil }
func (ByTag) Subquery(_, value string) query.Query { return query.Query{Tags: []string{value}} }
func (g ByTag) Equals(other Grouping) bool         { return sameKey(g, other) }

// ByFolder groups records by their folder path.
type ByFolder struct{}

func (ByFolder) Key() string { return KeyFolder }

func (ByFolder) Classify(obj model.Object) (string, bool) {
	folder := strings.TrimSpace(obj.String(model.AttrFolder))
	return folder, folder != ""
}

func (ByFolder) Name(value string) string             { return value }
func (ByFolder) Icon(string) string                   { return IconGroup }
func (ByFolder) Subgrouping(string) Grouping          { return nil }
func (ByFolder) Subquery(_, value string) query.Query { return query.Query{Folder: value} }
func (g ByFolder) Equals(other Grouping) bool         { return sameKey(g, other) }

// ByCustomField groups records by the value of one custom field.
type ByCustomField struct {
	Field string
}

func (g ByCustomField) Key() string { return KeyCustomField + ":" + g.Field }

func (g ByCustomField) Classify(obj model.Object) (string, bool) {
	value := strings.TrimSpace(obj.StringMap(model.AttrCustomFields)[g.Field])
	return value, value != ""
}

func (g ByCustomField) Name(value string) string  { return g.Field + ": " + value }
func (ByCustomField) Icon(string) string          { return IconGroup }
func (ByCustomField) Subgrouping(string) Grouping { return nil }

func (g ByCustomField) Subquery(_, value string) query.Query {
	return query.Query{CustomFields: map[string]string{g.Field: value}}
}

func (g ByCustomField) Equals(other Grouping) bool { return sameKey(g, other) }

// ByAppliance groups VMs by the virtual appliance they belong to.
type ByAppliance struct {
	Relations Relations
}

func (ByAppliance) Key() string { return KeyAppliance }

func (ByAppliance) Classify(obj model.Object) (string, bool) {
	if obj.Key.Type != model.TypeVM {
		return "", false
	}
	ref := obj.Ref(model.AttrAppliance)
	return ref, ref != ""
}

func (g ByAppliance) Name(value string) string {
	return resolveName(g.Relations, model.ObjectKey{Type: model.TypeAppliance, Ref: value})
}

func (ByAppliance) Icon(string) string                   { return IconGroup }
func (ByAppliance) Subgrouping(string) Grouping          { return nil }
func (ByAppliance) Subquery(_, value string) query.Query { return query.Query{Appliance: value} }
func (g ByAppliance) Equals(other Grouping) bool         { return sameKey(g, other) }

// Bind returns a copy resolving through rel.
func (g ByAppliance) Bind(rel Relations) Grouping {
	g.Relations = rel
	return g
}

func resolveName(rel Relations, key model.ObjectKey) string {
	if rel != nil {
		if obj, ok := rel.Resolve(key); ok {
			return obj.Name()
		}
	}
	return key.Ref
}

// Values of the root grouping.
const (
	RootInfrastructure = "infrastructure"
	RootObjects        = "objects"
	RootOrganization   = "organization"
	RootPlaceholder    = "placeholder"
)

// PlaceholderLabel is shown when there is nothing to navigate.
const PlaceholderLabel = "No servers connected"

// IconPlaceholder is the icon key of the empty-tree placeholder.
const IconPlaceholder = "placeholder"

// Root tags the synthetic root of each tree and the empty-tree
// placeholder. It classifies no records.
var Root Grouping = rootGrouping{}

type rootGrouping struct{}

func (rootGrouping) Key() string                          { return KeyRoot }
func (rootGrouping) Classify(model.Object) (string, bool) { return "", false }

func (rootGrouping) Name(value string) string {
	switch value {
	case RootPlaceholder:
		return PlaceholderLabel
	case RootInfrastructure:
		return "Infrastructure"
	case RootObjects:
		return "Objects"
	case RootOrganization:
		return "Organization"
	}
	return value
}

func (rootGrouping) Icon(value string) string {
	if value == RootPlaceholder {
		return IconPlaceholder
	}
	return IconGroup
}

func (rootGrouping) Subgrouping(string) Grouping { return nil }

func (rootGrouping) Subquery(string, string) query.Query { return query.All() }

func (g rootGrouping) Equals(other Grouping) bool { return sameKey(g, other) }
