package domtest

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-loom/loom/pkg/dom"
)

// Snapshot renders a node tree as indented text, one node per line:
//
//	<div id=root>
//	  <span text=hello>
//	  <span>
//
// Properties are sorted by name so output is deterministic. The result is
// meant for golden comparisons in tests.
func Snapshot(n dom.Node) string {
	var b strings.Builder
	writeSnapshot(&b, n, 0)
	return b.String()
}

func writeSnapshot(b *strings.Builder, n dom.Node, depth int) {
	for i := 0; i < depth; i++ {
		b.WriteString("  ")
	}
	b.WriteByte('<')
	b.WriteString(n.Tag())
	if tn, ok := n.(*Node); ok && len(tn.props) > 0 {
		names := make([]string, 0, len(tn.props))
		for name := range tn.props {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(b, " %s=%v", name, tn.props[name])
		}
	}
	b.WriteString(">\n")
	for _, c := range n.Children() {
		writeSnapshot(b, c, depth+1)
	}
}
