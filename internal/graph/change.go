package graph

import (
	"github.com/lumalang/luma/internal/constraint"
	"github.com/lumalang/luma/internal/types"
)

// changeKind tags a journal entry.
type changeKind int

const (
	changeAddedTypeVariable changeKind = iota
	changeAddedConstraint
	changeRemovedConstraint
	changeExtendedEquivalenceClass
	changeBoundTypeVariable
)

// change is one reversible edit in the graph's journal. Each entry carries
// just enough data to reverse itself.
type change struct {
	kind changeKind

	typeVar    *types.TypeVariable
	constraint *constraint.Constraint

	// prevSize is the equivalence class length before an extension.
	prevSize int

	// fixedType is the type a variable was bound to.
	fixedType types.Type
}

func addedTypeVariable(tv *types.TypeVariable) change {
	return change{kind: changeAddedTypeVariable, typeVar: tv}
}

func addedConstraint(c *constraint.Constraint) change {
	return change{kind: changeAddedConstraint, constraint: c}
}

func removedConstraint(c *constraint.Constraint) change {
	return change{kind: changeRemovedConstraint, constraint: c}
}

func extendedEquivalenceClass(tv *types.TypeVariable, prevSize int) change {
	return change{kind: changeExtendedEquivalenceClass, typeVar: tv, prevSize: prevSize}
}

func boundTypeVariable(tv *types.TypeVariable, fixed types.Type) change {
	return change{kind: changeBoundTypeVariable, typeVar: tv, fixedType: fixed}
}

// undo reverses the change. The active scope is cleared for the duration so
// the undo operations do not journal themselves.
func (c change) undo(g *Graph) {
	prevScope := g.activeScope
	g.activeScope = nil
	defer func() { g.activeScope = prevScope }()

	switch c.kind {
	case changeAddedTypeVariable:
		g.removeNode(c.typeVar)

	case changeAddedConstraint:
		g.RemoveConstraint(c.constraint)

	case changeRemovedConstraint:
		g.AddConstraint(c.constraint)

	case changeExtendedEquivalenceClass:
		node, _ := g.lookupNode(c.typeVar)
		node.equivalenceClass = node.equivalenceClass[:c.prevSize]

	case changeBoundTypeVariable:
		g.UnbindTypeVariable(c.typeVar, c.fixedType)
	}
}
