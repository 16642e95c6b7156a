package graph

import (
	"github.com/lumalang/luma/internal/constraint"
	"github.com/lumalang/luma/internal/types"
)

// shouldContractEdge reports whether constraints of this kind are
// candidates for edge contraction.
func shouldContractEdge(kind constraint.Kind) bool {
	switch kind {
	case constraint.Bind, constraint.BindParam, constraint.BindToPointerType,
		constraint.Equal:
		return true
	default:
		return false
	}
}

// contractEdges fuses type variables joined by equality-like constraints,
// reporting whether any edge was contracted.
func (g *Graph) contractEdges() bool {
	candidates := g.cs.FindConstraints(func(c *constraint.Constraint) bool {
		g.constraintsConsidered++
		return shouldContractEdge(c.Kind())
	})

	didContractEdges := false
	for _, c := range candidates {
		kind := c.Kind()
		if !shouldContractEdge(kind) {
			panic("non-contractable constraint kind")
		}

		t1 := c.FirstType().Desugared()
		t2 := c.SecondType().Desugared()

		tyvar1 := types.AsTypeVariable(t1)
		tyvar2 := types.AsTypeVariable(t2)
		if tyvar1 == nil || tyvar2 == nil {
			continue
		}

		isParamBinding := kind == constraint.BindParam

		// An argument that may bind to inout cannot, in general, have its
		// edge to the parameter contracted. If every potential binding of
		// the argument variable is provably free of inout (and of
		// variables that may themselves bind to inout), contraction is
		// still allowed: the argument's bindings can only come from the
		// related overload, which determines l-valueness.
		if isParamBinding && tyvar1.CanBindToInOut() {
			isNotContractable := true
			if bindings := g.cs.PotentialBindings(tyvar1); bindings != nil {
				for _, binding := range bindings {
					isNotContractable = binding.FindIf(func(nested types.Type) bool {
						if tv := types.AsTypeVariable(nested); tv != nil {
							if tv.CanBindToInOut() {
								return true
							}
						}
						return types.IsInOut(nested)
					})

					// One risky binding is enough to leave the edge alone.
					if isNotContractable {
						break
					}
				}
			}

			if isNotContractable {
				continue
			}
		}

		rep1 := g.cs.Representative(tyvar1)
		rep2 := g.cs.Representative(tyvar2)

		// Contract only when both representatives agree on l-valueness;
		// parameter bindings tolerate the mismatch.
		if rep1.CanBindToLValue() == rep2.CanBindToLValue() || isParamBinding {
			if g.log != nil {
				g.log.WithField("constraint", c.String()).Debug("contracting constraint")
			}

			g.RemoveEdge(c)
			if rep1 != rep2 {
				g.cs.MergeEquivalenceClasses(rep1, rep2, false)
			}
			didContractEdges = true
		}
	}
	return didContractEdges
}

// RemoveEdge removes a contracted constraint from the constraint system's
// lists and then from the graph. Constraints found on a list are retired;
// anything else was generated during the search and is discarded.
func (g *Graph) RemoveEdge(c *constraint.Constraint) {
	isExistingConstraint := g.cs.ActiveConstraints().Remove(c) ||
		g.cs.InactiveConstraints().Remove(c)

	if state := g.cs.SolverState(); state != nil {
		if isExistingConstraint {
			state.RetireConstraint(c)
		} else {
			state.RemoveGeneratedConstraint(c)
		}
	}

	g.RemoveConstraint(c)
}

// Optimize contracts edges until a fixed point is reached.
func (g *Graph) Optimize() {
	for g.contractEdges() {
	}
}
