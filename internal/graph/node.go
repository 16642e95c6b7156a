package graph

import (
	"github.com/lumalang/luma/internal/constraint"
	"github.com/lumalang/luma/internal/types"
)

// Node records the constraints and adjacencies of one type variable.
type Node struct {
	typeVar *types.TypeVariable

	// constraints holds every constraint mentioning the variable, with
	// constraintIndex as its inverse for O(1) removal.
	constraints     []*constraint.Constraint
	constraintIndex map[*constraint.Constraint]int

	// equivalenceClass is meaningful only while the variable is the
	// representative of its class. It is materialised lazily with the
	// variable itself as the first member.
	equivalenceClass []*types.TypeVariable

	// fixedBindings lists the variables that occur inside a fixed type
	// bound to this variable, or that this variable occurs inside the
	// fixed type of. The relation is kept symmetric by the graph.
	fixedBindings []*types.TypeVariable
}

func newNode(typeVar *types.TypeVariable) *Node {
	return &Node{
		typeVar:         typeVar,
		constraintIndex: make(map[*constraint.Constraint]int),
	}
}

// TypeVariable returns the variable this node belongs to.
func (n *Node) TypeVariable() *types.TypeVariable { return n.typeVar }

// Constraints returns the constraints mentioning this node's variable.
// Callers must not mutate the returned slice.
func (n *Node) Constraints() []*constraint.Constraint { return n.constraints }

// FixedBindings returns the fixed-binding adjacency list. Callers must not
// mutate the returned slice.
func (n *Node) FixedBindings() []*types.TypeVariable { return n.fixedBindings }

// EquivalenceClass returns the members of the variable's equivalence class.
// Requesting the class of a non-representative is a programmer error.
func (n *Node) EquivalenceClass() []*types.TypeVariable {
	if n.typeVar.Representative() != n.typeVar {
		panic("can't request equivalence class of non-representative type variable")
	}
	return n.equivalenceClassUnsafe()
}

// equivalenceClassUnsafe skips the representative check so the merge path
// can read a non-representative's class while absorbing it.
func (n *Node) equivalenceClassUnsafe() []*types.TypeVariable {
	if len(n.equivalenceClass) == 0 {
		n.equivalenceClass = append(n.equivalenceClass, n.typeVar)
	}
	return n.equivalenceClass
}

func (n *Node) addConstraint(c *constraint.Constraint) {
	if _, ok := n.constraintIndex[c]; ok {
		panic("constraint re-insertion")
	}
	n.constraintIndex[c] = len(n.constraints)
	n.constraints = append(n.constraints, c)
}

func (n *Node) removeConstraint(c *constraint.Constraint) {
	index, ok := n.constraintIndex[c]
	if !ok {
		panic("removing constraint unknown to node")
	}
	delete(n.constraintIndex, c)
	if n.constraints[index] != c {
		panic("mismatched constraint")
	}

	// Swap with the last constraint so the removal is O(1).
	last := len(n.constraints) - 1
	if index != last {
		n.constraints[index] = n.constraints[last]
		n.constraintIndex[n.constraints[index]] = index
	}
	n.constraints = n.constraints[:last]
}

// addToEquivalenceClass absorbs the members of another class. The caller
// must have journalled the previous class size first.
func (n *Node) addToEquivalenceClass(members []*types.TypeVariable) {
	if len(n.equivalenceClass) == 0 {
		n.equivalenceClass = append(n.equivalenceClass, n.typeVar)
	}
	n.equivalenceClass = append(n.equivalenceClass, members...)
}

func (n *Node) addFixedBinding(tv *types.TypeVariable) {
	n.fixedBindings = append(n.fixedBindings, tv)
}

// removeFixedBinding pops the most recent fixed binding; tv is not
// consulted. Unbinding happens only through journal undo, which reverses
// bindings in strict LIFO order, so the entries popped while undoing one
// binding are exactly the ones that binding appended.
func (n *Node) removeFixedBinding(tv *types.TypeVariable) {
	n.fixedBindings = n.fixedBindings[:len(n.fixedBindings)-1]
}
