package graph

import (
	"github.com/sirupsen/logrus"

	"github.com/lumalang/luma/internal/constraint"
	"github.com/lumalang/luma/internal/types"
)

// Graph indexes the relationships among the type variables of a constraint
// system: which constraints mention which variables, which variables are
// equated, and which appear inside one another's fixed types. Every
// mutation is journalled while a scope is active so the solver's
// backtracking search can undo it exactly.
type Graph struct {
	cs System

	// typeVars lists every variable with a node, in registration order.
	// A variable's graph-index slot is its position here.
	typeVars []*types.TypeVariable

	// orphaned tracks registered constraints that mention no variables.
	orphaned []*constraint.Constraint

	changes     []change
	activeScope *Scope

	log logrus.FieldLogger

	// constraintsConsidered counts constraints examined by contraction.
	constraintsConsidered int
}

// New creates a constraint graph backed by the given constraint system.
func New(cs System) *Graph {
	return &Graph{cs: cs}
}

// SetLogger installs a logger for debug traces. A nil logger silences them.
func (g *Graph) SetLogger(log logrus.FieldLogger) { g.log = log }

// TypeVariables returns every variable registered with the graph, in
// registration order. Callers must not mutate the returned slice.
func (g *Graph) TypeVariables() []*types.TypeVariable { return g.typeVars }

// OrphanedConstraints returns the constraints that mention no type
// variables. Callers must not mutate the returned slice.
func (g *Graph) OrphanedConstraints() []*constraint.Constraint { return g.orphaned }

// NumChanges returns the current length of the change journal.
func (g *Graph) NumChanges() int { return len(g.changes) }

// ConstraintsConsideredForContraction returns how many constraints the edge
// contraction pass has examined over the graph's lifetime.
func (g *Graph) ConstraintsConsideredForContraction() int {
	return g.constraintsConsidered
}

// AddTypeVariable registers tv with the graph, creating its node. The
// constraint system calls this when it allocates a variable, so the node
// exists before any fixed type or merge is recorded.
func (g *Graph) AddTypeVariable(tv *types.TypeVariable) {
	g.lookupNode(tv)
}

// Node returns the node for tv, creating it if necessary.
func (g *Graph) Node(tv *types.TypeVariable) *Node {
	node, _ := g.lookupNode(tv)
	return node
}

// lookupNode is the sole node-creation entry point. It returns the node for
// tv and tv's index in the variable list, allocating both on first sight.
func (g *Graph) lookupNode(tv *types.TypeVariable) (*Node, int) {
	if handle := tv.GraphNode(); handle != nil {
		index := tv.GraphIndex()
		if index >= len(g.typeVars) {
			panic("out-of-bounds graph index")
		}
		if g.typeVars[index] != tv {
			panic("type variable mismatch")
		}
		return handle.(*Node), index
	}

	node := newNode(tv)
	index := len(g.typeVars)
	tv.SetGraphNode(node)
	tv.SetGraphIndex(index)
	g.typeVars = append(g.typeVars, tv)

	if g.activeScope != nil {
		g.changes = append(g.changes, addedTypeVariable(tv))
	}

	// A newly observed variable must immediately reflect any equivalence
	// or fixed binding the constraint system already knows about.
	rep := g.cs.Representative(tv)
	if tv != rep {
		g.MergeNodes(tv, rep)
	} else if fixed := g.cs.FixedType(rep); fixed != nil {
		g.BindTypeVariable(tv, fixed)
	}

	return node, index
}

// removeNode destroys tv's node. Only journal undo calls this.
func (g *Graph) removeNode(tv *types.TypeVariable) {
	index := tv.GraphIndex()
	tv.SetGraphNode(nil)
	tv.SetGraphIndex(-1)

	last := len(g.typeVars) - 1
	if index < last {
		g.typeVars[index] = g.typeVars[last]
		g.typeVars[index].SetGraphIndex(index)
	}
	g.typeVars = g.typeVars[:last]
}

// AddConstraint registers c with the node of every variable it mentions.
// Constraints mentioning no variables are tracked as orphans.
func (g *Graph) AddConstraint(c *constraint.Constraint) {
	referenced := c.TypeVariables()
	for _, tv := range referenced {
		node, _ := g.lookupNode(tv)
		node.addConstraint(c)
	}

	if len(referenced) == 0 {
		g.orphaned = append(g.orphaned, c)
	}

	if g.activeScope != nil {
		g.changes = append(g.changes, addedConstraint(c))
	}
}

// RemoveConstraint erases c from the node of every variable it mentions.
func (g *Graph) RemoveConstraint(c *constraint.Constraint) {
	referenced := c.TypeVariables()
	for _, tv := range referenced {
		node, _ := g.lookupNode(tv)
		node.removeConstraint(c)
	}

	if len(referenced) == 0 {
		found := -1
		for i, orphan := range g.orphaned {
			if orphan == c {
				found = i
				break
			}
		}
		if found < 0 {
			panic("missing orphaned constraint")
		}
		last := len(g.orphaned) - 1
		g.orphaned[found] = g.orphaned[last]
		g.orphaned = g.orphaned[:last]
	}

	if g.activeScope != nil {
		g.changes = append(g.changes, removedConstraint(c))
	}
}

// MergeNodes witnesses an equivalence-class merge the constraint system has
// already performed: the representatives of the two variables must already
// coincide. The non-representative's class is absorbed into the
// representative's.
func (g *Graph) MergeNodes(typeVar1, typeVar2 *types.TypeVariable) {
	if g.cs.Representative(typeVar1) != g.cs.Representative(typeVar2) {
		panic("type representatives don't match")
	}

	rep := g.cs.Representative(typeVar1)
	repNode, _ := g.lookupNode(rep)

	if typeVar1 != rep && typeVar2 != rep {
		panic("neither type variable is the new representative")
	}
	nonRep := typeVar1
	if typeVar1 == rep {
		nonRep = typeVar2
	}

	if g.activeScope != nil {
		g.changes = append(g.changes,
			extendedEquivalenceClass(rep, len(repNode.EquivalenceClass())))
	}

	nonRepNode, _ := g.lookupNode(nonRep)
	repNode.addToEquivalenceClass(nonRepNode.equivalenceClassUnsafe())
}

// BindTypeVariable records that tv was bound to the fixed type, linking tv
// with every variable occurring inside it. Fixed types with no variables
// record nothing; the journal entry's undo relies on that same early exit.
func (g *Graph) BindTypeVariable(tv *types.TypeVariable, fixed types.Type) {
	if !fixed.HasTypeVariables() {
		return
	}

	var mentioned []*types.TypeVariable
	fixed.CollectTypeVariables(&mentioned)
	node, _ := g.lookupNode(tv)
	known := make(map[*types.TypeVariable]bool, len(mentioned))
	for _, other := range mentioned {
		if known[other] {
			continue
		}
		known[other] = true
		if other == tv {
			continue
		}
		otherNode, _ := g.lookupNode(other)
		otherNode.addFixedBinding(tv)
		node.addFixedBinding(other)
	}

	if g.activeScope != nil {
		g.changes = append(g.changes, boundTypeVariable(tv, fixed))
	}
}

// UnbindTypeVariable reverses BindTypeVariable pointwise. Only journal undo
// calls this.
func (g *Graph) UnbindTypeVariable(tv *types.TypeVariable, fixed types.Type) {
	if !fixed.HasTypeVariables() {
		return
	}

	var mentioned []*types.TypeVariable
	fixed.CollectTypeVariables(&mentioned)
	node, _ := g.lookupNode(tv)
	known := make(map[*types.TypeVariable]bool, len(mentioned))
	for _, other := range mentioned {
		if known[other] {
			continue
		}
		known[other] = true
		if other == tv {
			continue
		}
		otherNode, _ := g.lookupNode(other)
		otherNode.removeFixedBinding(tv)
		node.removeFixedBinding(other)
	}
}

// Teardown asserts that every scope has unwound and severs the graph's
// back-links from the type variables it registered.
func (g *Graph) Teardown() {
	if len(g.changes) != 0 {
		panic("scope stack corrupted: journal not empty at teardown")
	}
	for _, tv := range g.typeVars {
		tv.SetGraphNode(nil)
		tv.SetGraphIndex(-1)
	}
	g.typeVars = nil
	g.orphaned = nil
}
