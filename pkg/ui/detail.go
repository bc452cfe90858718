package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vanderheijden86/poolnav/pkg/cache"
	"github.com/vanderheijden86/poolnav/pkg/model"
	"github.com/vanderheijden86/poolnav/pkg/tree"
)

// CacheSource hands out the snapshot the detail pane reads attributes from.
type CacheSource interface {
	Snapshot() *cache.Snapshot
}

// DetailMarkdown describes a node as markdown: the record's attributes for
// an object, the membership filter for a group header.
func DetailMarkdown(n *tree.Node, c cache.Reader) string {
	if n == nil {
		return "_Nothing selected_"
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s\n\n", escapeMarkdown(n.Label)))

	if tag, ok := n.Identity.Group(); ok {
		sb.WriteString("| Group | Value | Members |\n|---|---|---|\n")
		sb.WriteString(fmt.Sprintf("| %s | %s | %d |\n\n", tag.Key(), escapeMarkdown(tag.Value), len(n.Children)))
		if q := tag.Filter(); !q.IsEmpty() {
			sb.WriteString(fmt.Sprintf("Filter: `%s`\n", q.String()))
		}
		return sb.String()
	}

	key, ok := n.Identity.Object()
	if !ok {
		return sb.String()
	}
	sb.WriteString(fmt.Sprintf("`%s`\n\n", key))

	var obj model.Object
	found := false
	if c != nil {
		obj, found = c.Resolve(key)
	}
	if !found {
		if key.Type == model.TypeConnection {
			sb.WriteString("Server is not connected.\n")
		} else {
			sb.WriteString("_No cached record_\n")
		}
		return sb.String()
	}

	names := make([]string, 0, len(obj.Attrs))
	for name := range obj.Attrs {
		names = append(names, name)
	}
	sort.Strings(names)

	sb.WriteString("| Attribute | Value |\n|---|---|\n")
	for _, name := range names {
		sb.WriteString(fmt.Sprintf("| %s | %s |\n", name, escapeMarkdown(formatValue(obj.Attrs[name]))))
	}
	if obj.Connection != "" {
		sb.WriteString(fmt.Sprintf("\nConnection: `%s`\n", obj.Connection))
	}
	return sb.String()
}

func formatValue(v any) string {
	switch x := v.(type) {
	case []any:
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i] = formatValue(e)
		}
		return strings.Join(parts, ", ")
	case []string:
		return strings.Join(x, ", ")
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + "=" + formatValue(x[k])
		}
		return strings.Join(parts, ", ")
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}

func escapeMarkdown(s string) string {
	return strings.NewReplacer("|", `\|`, "\n", " ").Replace(s)
}
