package graph

import (
	"github.com/lumalang/luma/internal/constraint"
	"github.com/lumalang/luma/internal/types"
)

// System is the capability surface the constraint graph needs from the
// constraint system that owns the type variables and constraints.
type System interface {
	// Representative returns the canonical member of tv's equivalence
	// class in the system's union-find.
	Representative(tv *types.TypeVariable) *types.TypeVariable

	// FixedType returns the concrete type tv is bound to, or nil.
	FixedType(tv *types.TypeVariable) types.Type

	// MergeEquivalenceClasses merges the equivalence classes of two
	// representatives. The graph calls this during edge contraction;
	// updateWorkList is always false there.
	MergeEquivalenceClasses(a, b *types.TypeVariable, updateWorkList bool)

	// FindConstraints returns every registered constraint accepted by the
	// predicate. The order of the result is not specified.
	FindConstraints(accept func(*constraint.Constraint) bool) []*constraint.Constraint

	// ActiveConstraints and InactiveConstraints are the system's work
	// lists; edge contraction erases contracted constraints from them.
	ActiveConstraints() *constraint.List
	InactiveConstraints() *constraint.List

	// SolverState returns the in-flight solver state, or nil outside the
	// solver's search.
	SolverState() SolverState

	// PotentialBindings returns the candidate binding types currently
	// known for tv, or nil if none have been computed.
	PotentialBindings(tv *types.TypeVariable) []types.Type
}

// SolverState records constraints the solver has taken off its lists, so a
// backtracking search can restore them.
type SolverState interface {
	// RetireConstraint records that an existing constraint was removed.
	RetireConstraint(c *constraint.Constraint)

	// RemoveGeneratedConstraint records that a constraint generated
	// during the search was discarded.
	RemoveGeneratedConstraint(c *constraint.Constraint)
}
