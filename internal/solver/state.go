package solver

import "github.com/lumalang/luma/internal/constraint"

// SearchState records constraints the solver takes off its lists during a
// search, so backtracking can restore or discard them.
type SearchState struct {
	retired   []*constraint.Constraint
	generated []*constraint.Constraint
}

// RetireConstraint records that an existing constraint was removed from the
// system's lists.
func (st *SearchState) RetireConstraint(c *constraint.Constraint) {
	st.retired = append(st.retired, c)
}

// RemoveGeneratedConstraint records that a constraint generated during the
// search was discarded without ever joining the lists.
func (st *SearchState) RemoveGeneratedConstraint(c *constraint.Constraint) {
	st.generated = append(st.generated, c)
}

// Retired returns the retired constraints, oldest first.
func (st *SearchState) Retired() []*constraint.Constraint { return st.retired }

// RemovedGenerated returns the discarded generated constraints, oldest
// first.
func (st *SearchState) RemovedGenerated() []*constraint.Constraint { return st.generated }
