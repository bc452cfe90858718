package export

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/vanderheijden86/poolnav/pkg/cache"
	"github.com/vanderheijden86/poolnav/pkg/model"
	"github.com/vanderheijden86/poolnav/pkg/tree"
)

// Summary counts what a tree shows.
type Summary struct {
	Pools        int
	Hosts        int
	VMsRunning   int
	VMsOther     int
	Templates    int
	Storage      int
	Disconnected int
}

// Summarize counts the distinct objects in t. An object placed more than
// once is counted once.
func Summarize(t *tree.Tree, c cache.Reader) Summary {
	var s Summary
	seen := make(map[model.ObjectKey]bool)
	t.Walk(func(n *tree.Node) bool {
		key, ok := n.Identity.Object()
		if !ok || seen[key] {
			return true
		}
		seen[key] = true
		switch key.Type {
		case model.TypePool:
			s.Pools++
		case model.TypeHost:
			s.Hosts++
		case model.TypeSR:
			s.Storage++
		case model.TypeConnection:
			s.Disconnected++
		case model.TypeVM:
			obj, _ := c.Resolve(key)
			switch {
			case obj.IsTemplate():
				s.Templates++
			case obj.PowerState() == model.PowerRunning:
				s.VMsRunning++
			default:
				s.VMsOther++
			}
		}
		return true
	})
	return s
}

// GenerateMarkdown renders t as a markdown report: a summary, a mermaid
// diagram of the hierarchy and the outline.
func GenerateMarkdown(t *tree.Tree, c cache.Reader, title string, now time.Time) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# %s\n\n", title))
	sb.WriteString(fmt.Sprintf("Generated: %s  \n", now.Format(time.RFC1123)))
	sb.WriteString(fmt.Sprintf("View: %s\n\n", t.Mode().Title()))

	s := Summarize(t, c)
	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Pools | Hosts | Running VMs | Other VMs | Templates | Storage | Disconnected |\n")
	sb.WriteString("|---|---|---|---|---|---|---|\n")
	sb.WriteString(fmt.Sprintf("| %d | %d | %d | %d | %d | %d | %d |\n\n",
		s.Pools, s.Hosts, s.VMsRunning, s.VMsOther, s.Templates, s.Storage, s.Disconnected))

	sb.WriteString("## Diagram\n\n")
	sb.WriteString("```mermaid\ngraph TD\n")
	t.Walk(func(n *tree.Node) bool {
		sb.WriteString(fmt.Sprintf("    n%d[\"%s\"]\n", n.ID, mermaidLabel(n.Label)))
		if n.Parent != tree.NoNode {
			sb.WriteString(fmt.Sprintf("    n%d --> n%d\n", n.Parent, n.ID))
		}
		return true
	})
	sb.WriteString("```\n\n")

	sb.WriteString("## Tree\n\n")
	t.Walk(func(n *tree.Node) bool {
		if n.Parent == tree.NoNode {
			return true
		}
		indent := strings.Repeat("  ", n.Depth-1)
		label := n.Label
		if n.Identity.IsGroup() {
			label = "**" + label + "**"
		}
		if key, ok := n.Identity.Object(); ok {
			sb.WriteString(fmt.Sprintf("%s- %s `%s`\n", indent, label, key))
		} else {
			sb.WriteString(fmt.Sprintf("%s- %s\n", indent, label))
		}
		return true
	})
	return sb.String()
}

// mermaidLabel escapes characters mermaid treats as syntax.
func mermaidLabel(s string) string {
	r := strings.NewReplacer(`"`, "'", "[", "(", "]", ")", "<", "&lt;", ">", "&gt;")
	s = r.Replace(s)
	if len([]rune(s)) > 40 {
		s = string([]rune(s)[:37]) + "..."
	}
	return s
}

// SaveMarkdownToFile writes the report to filename.
func SaveMarkdownToFile(t *tree.Tree, c cache.Reader, title, filename string) error {
	content := GenerateMarkdown(t, c, title, time.Now())
	if err := os.WriteFile(filename, []byte(content), 0644); err != nil {
		return fmt.Errorf("write %s: %w", filename, err)
	}
	return nil
}
