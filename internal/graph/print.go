package graph

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

func indent(w io.Writer, depth int) {
	fmt.Fprint(w, strings.Repeat(" ", depth))
}

// Print writes a human-readable description of the node: its constraints
// (sorted for stability), its fixed bindings, and, for representatives,
// the rest of its equivalence class.
func (n *Node) Print(w io.Writer, depth int) {
	indent(w, depth)
	fmt.Fprintf(w, "%s:\n", n.typeVar)

	if len(n.constraints) > 0 {
		indent(w, depth+2)
		fmt.Fprint(w, "Constraints:\n")
		sorted := make([]string, len(n.constraints))
		for i, c := range n.constraints {
			sorted[i] = c.String()
		}
		sort.Strings(sorted)
		for _, c := range sorted {
			indent(w, depth+4)
			fmt.Fprintf(w, "%s\n", c)
		}
	}

	if len(n.fixedBindings) > 0 {
		indent(w, depth+2)
		fmt.Fprint(w, "Fixed bindings: ")
		sorted := make([]string, 0, len(n.fixedBindings))
		ids := make([]uint32, len(n.fixedBindings))
		for i, tv := range n.fixedBindings {
			ids[i] = tv.ID()
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		for _, id := range ids {
			sorted = append(sorted, fmt.Sprintf("$T%d", id))
		}
		fmt.Fprintf(w, "%s\n", strings.Join(sorted, ", "))
	}

	if n.typeVar.Representative() == n.typeVar && len(n.equivalenceClass) > 1 {
		indent(w, depth+2)
		fmt.Fprint(w, "Equivalence class:")
		for _, member := range n.equivalenceClass[1:] {
			fmt.Fprintf(w, " %s", member)
		}
		fmt.Fprint(w, "\n")
	}
}

// Print writes every node of the graph to w.
func (g *Graph) Print(w io.Writer) {
	for _, tv := range g.typeVars {
		node, _ := g.lookupNode(tv)
		node.Print(w, 2)
		fmt.Fprint(w, "\n")
	}
}

// String returns the graph's printed form.
func (g *Graph) String() string {
	var sb strings.Builder
	g.Print(&sb)
	return sb.String()
}

// PrintConnectedComponents computes the connected components of every
// registered variable and writes them, numbered, to w.
func (g *Graph) PrintConnectedComponents(w io.Writer) {
	components := g.ConnectedComponents(g.typeVars)
	for idx, component := range components {
		indent(w, 2)
		fmt.Fprintf(w, "%d: ", idx)

		parts := make([]string, len(component.TypeVars))
		for i, tv := range component.TypeVars {
			parts[i] = tv.String()
		}
		fmt.Fprint(w, strings.Join(parts, " "))

		if len(component.OneWayComponents) > 0 {
			fmt.Fprint(w, ", one way components = ")
			subs := make([]string, len(component.OneWayComponents))
			for i, oneWay := range component.OneWayComponents {
				var sb strings.Builder
				sb.WriteByte('{')
				for j, tv := range oneWay.TypeVars {
					if j > 0 {
						sb.WriteByte(' ')
					}
					sb.WriteString(tv.String())
				}
				if len(oneWay.DependsOn) > 0 {
					sb.WriteString(" depends on ")
					deps := make([]string, len(oneWay.DependsOn))
					for j, dep := range oneWay.DependsOn {
						deps[j] = fmt.Sprintf("%d", dep)
					}
					sb.WriteString(strings.Join(deps, ", "))
				}
				sb.WriteByte('}')
				subs[i] = sb.String()
			}
			fmt.Fprint(w, strings.Join(subs, " "))
		}

		fmt.Fprint(w, "\n")
	}
}
