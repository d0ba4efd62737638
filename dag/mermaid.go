package dag

import (
	"fmt"
	"strings"
)

// Mermaid renders the plan reachable from start as a Mermaid flowchart
// definition, for embedding in trace output or documentation.
func Mermaid(g *Graph, start ID) string {
	var b strings.Builder
	b.WriteString("flowchart TD\n")
	g.Walk(start, func(id ID, n Node) bool {
		switch n.Kind {
		case KindAction:
			fmt.Fprintf(&b, "  n%d[%q]\n", id, n.Instruction.Description())
			if n.Next != Nil {
				fmt.Fprintf(&b, "  n%d --> n%d\n", id, n.Next)
			}
		case KindJoin:
			fmt.Fprintf(&b, "  n%d((join))\n", id)
			if n.Next != Nil {
				fmt.Fprintf(&b, "  n%d --> n%d\n", id, n.Next)
			}
		case KindFork:
			fmt.Fprintf(&b, "  n%d{fork}\n", id)
			for _, branch := range n.Branches {
				fmt.Fprintf(&b, "  n%d --> n%d\n", id, branch)
			}
			if n.Join != Nil {
				fmt.Fprintf(&b, "  n%d -.-> n%d\n", id, n.Join)
			}
		}
		return true
	})
	return b.String()
}
