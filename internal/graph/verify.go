package graph

import (
	"fmt"
	"os"

	"github.com/lumalang/luma/internal/constraint"
)

// require panics with the printed graph when a verification condition does
// not hold. Verification failures are programmer errors.
func (g *Graph) require(condition bool, format string, args ...any) {
	if condition {
		return
	}

	complaint := fmt.Sprintf(format, args...)
	fmt.Fprintf(os.Stderr, "constraint graph verification failed: %s\n", complaint)
	g.Print(os.Stderr)
	panic("constraint graph verification failed: " + complaint)
}

// verify checks the node's constraint vector and index map against each
// other.
func (n *Node) verify(g *Graph) {
	g.require(len(n.constraints) == len(n.constraintIndex),
		"constraint vector and map have different sizes: %d != %d",
		len(n.constraints), len(n.constraintIndex))
	for c, index := range n.constraintIndex {
		g.require(index < len(n.constraints), "constraint index out-of-range: %d", index)
		g.require(n.constraints[index] == c,
			"constraint map provides wrong index into vector: %s", c)
	}
}

// Verify checks the graph's internal invariants and its consistency with
// the constraint system. It may be called at any quiescent point; failures
// panic.
func (g *Graph) Verify() {
	// Each variable is either a representative or recorded exactly once in
	// its representative's equivalence class.
	for _, tv := range g.typeVars {
		rep := g.cs.Representative(tv)
		repNode, _ := g.lookupNode(rep)
		if tv != rep {
			occurrences := 0
			for _, member := range repNode.EquivalenceClass() {
				if member == tv {
					occurrences++
				}
			}
			g.require(occurrences == 1,
				"type variable %s present %d times in its representative's equivalence class",
				tv, occurrences)
		} else {
			for _, member := range repNode.EquivalenceClass() {
				g.require(member.Representative() == tv,
					"representative of %s is %s, expected %s",
					member, member.Representative(), tv)
			}
		}
	}

	// The variable list and the per-variable slots must agree.
	for i, tv := range g.typeVars {
		g.require(tv.GraphIndex() == i, "wrong graph node index: %d != %d", tv.GraphIndex(), i)
		g.require(tv.GraphNode() != nil, "null graph node for %s", tv)
	}

	for _, tv := range g.typeVars {
		node, _ := g.lookupNode(tv)
		node.verify(g)
	}

	// Every constraint the constraint system knows about must be recorded
	// on the node of each variable it mentions.
	knownConstraints := make(map[*constraint.Constraint]bool)
	for _, tv := range g.typeVars {
		node, _ := g.lookupNode(tv)
		for _, c := range node.Constraints() {
			knownConstraints[c] = true
		}
	}

	registered := g.cs.FindConstraints(func(*constraint.Constraint) bool { return true })
	for _, c := range registered {
		referenced := c.TypeVariables()
		g.require(knownConstraints[c] || len(referenced) == 0,
			"constraint graph doesn't know about constraint: %s", c)

		for _, tv := range referenced {
			handle := tv.GraphNode()
			g.require(handle != nil,
				"type variable %s in constraint %s not known", tv, c)
			node := handle.(*Node)
			_, ok := node.constraintIndex[c]
			g.require(ok, "type variable %s doesn't know about constraint: %s", tv, c)
		}
	}
}
