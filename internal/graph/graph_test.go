package graph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumalang/luma/internal/constraint"
	"github.com/lumalang/luma/internal/graph"
	"github.com/lumalang/luma/internal/solver"
	"github.com/lumalang/luma/internal/types"
)

func intType() types.Type { return &types.Nominal{Name: "Int"} }

func TestIncidence(t *testing.T) {
	s := solver.NewSystem()
	g := s.Graph()
	t0 := s.NewTypeVariable(0)
	t1 := s.NewTypeVariable(0)
	t2 := s.NewTypeVariable(0)

	c1 := constraint.New(constraint.Bind, t0, t1)
	c2 := constraint.New(constraint.Equal, t1, t2)
	g.AddConstraint(c1)
	g.AddConstraint(c2)

	assert.Equal(t, []*constraint.Constraint{c1}, g.Node(t0).Constraints())
	assert.Equal(t, []*constraint.Constraint{c1, c2}, g.Node(t1).Constraints())
	assert.Equal(t, []*constraint.Constraint{c2}, g.Node(t2).Constraints())

	g.RemoveConstraint(c1)
	assert.Empty(t, g.Node(t0).Constraints())
	assert.Equal(t, []*constraint.Constraint{c2}, g.Node(t1).Constraints())

	// Every remaining incidence runs both directions.
	for _, tv := range g.TypeVariables() {
		for _, c := range g.Node(tv).Constraints() {
			assert.Contains(t, c.TypeVariables(), tv)
		}
	}
}

func TestOrphanTracking(t *testing.T) {
	s := solver.NewSystem()
	g := s.Graph()
	s.NewTypeVariable(0)

	orphan := constraint.New(constraint.Equal, intType(), intType())
	g.AddConstraint(orphan)
	require.Equal(t, []*constraint.Constraint{orphan}, g.OrphanedConstraints())
	for _, tv := range g.TypeVariables() {
		assert.Empty(t, g.Node(tv).Constraints())
	}

	g.RemoveConstraint(orphan)
	assert.Empty(t, g.OrphanedConstraints())
}

func TestScopeReversal(t *testing.T) {
	s := solver.NewSystem()
	g := s.Graph()
	t0 := s.NewTypeVariable(0)
	t1 := s.NewTypeVariable(0)

	before := g.String()

	scope := g.NewScope()
	g.AddConstraint(constraint.New(constraint.Bind, t0, t1))
	require.Len(t, g.Node(t0).Constraints(), 1)
	scope.Close()

	assert.Empty(t, g.Node(t0).Constraints())
	assert.Empty(t, g.Node(t1).Constraints())
	assert.Zero(t, g.NumChanges())
	assert.Equal(t, before, g.String())
	// The variables themselves were created before the scope and stay.
	assert.Len(t, g.TypeVariables(), 2)
}

func TestScopeReversalRemovesVariablesCreatedInside(t *testing.T) {
	s := solver.NewSystem()
	g := s.Graph()

	scope := g.NewScope()
	t0 := s.NewTypeVariable(0)
	t1 := s.NewTypeVariable(0)
	g.AddConstraint(constraint.New(constraint.Bind, t0, t1))
	require.Len(t, g.TypeVariables(), 2)
	scope.Close()

	assert.Empty(t, g.TypeVariables())
	assert.Nil(t, t0.GraphNode())
	assert.Nil(t, t1.GraphNode())
	assert.Zero(t, g.NumChanges())
}

func TestScopesNest(t *testing.T) {
	s := solver.NewSystem()
	g := s.Graph()
	t0 := s.NewTypeVariable(0)
	t1 := s.NewTypeVariable(0)

	c1 := constraint.New(constraint.Bind, t0, t1)
	c2 := constraint.New(constraint.Equal, t0, t1)

	outer := g.NewScope()
	g.AddConstraint(c1)

	inner := g.NewScope()
	g.AddConstraint(c2)
	require.Len(t, g.Node(t0).Constraints(), 2)
	inner.Close()

	// Only the inner scope's work is undone.
	assert.Equal(t, []*constraint.Constraint{c1}, g.Node(t0).Constraints())

	outer.Close()
	assert.Empty(t, g.Node(t0).Constraints())
	assert.Zero(t, g.NumChanges())
}

func TestReversibilityOfMixedMutations(t *testing.T) {
	s := solver.NewSystem()
	g := s.Graph()
	t0 := s.NewTypeVariable(0)
	t1 := s.NewTypeVariable(0)
	t2 := s.NewTypeVariable(0)

	c1 := constraint.New(constraint.Bind, t0, t2)
	orphan := constraint.New(constraint.Equal, intType(), intType())

	before := g.String()
	beforeOrphans := len(g.OrphanedConstraints())

	scope := g.NewScope()
	g.AddConstraint(c1)
	g.AddConstraint(orphan)
	g.RemoveConstraint(c1)
	g.BindTypeVariable(t0, &types.Function{Params: []types.Type{t2}, Result: intType()})
	t1.SetRepresentative(t0)
	g.MergeNodes(t0, t1)
	scope.Close()

	assert.Equal(t, before, g.String())
	assert.Len(t, g.OrphanedConstraints(), beforeOrphans)
	assert.Zero(t, g.NumChanges())
}

func TestEquivalenceMergeUndo(t *testing.T) {
	s := solver.NewSystem()
	g := s.Graph()
	t0 := s.NewTypeVariable(0)
	t1 := s.NewTypeVariable(0)

	t1.SetRepresentative(t0)

	scope := g.NewScope()
	g.MergeNodes(t0, t1)
	require.Equal(t, []*types.TypeVariable{t0, t1}, g.Node(t0).EquivalenceClass())
	scope.Close()

	assert.Equal(t, []*types.TypeVariable{t0}, g.Node(t0).EquivalenceClass())
}

func TestMergeEquivalenceClassesUpdatesGraph(t *testing.T) {
	s := solver.NewSystem()
	g := s.Graph()
	t0 := s.NewTypeVariable(0)
	t1 := s.NewTypeVariable(0)

	s.MergeEquivalenceClasses(t0, t1, false)

	assert.Equal(t, []*types.TypeVariable{t0, t1}, g.Node(t0).EquivalenceClass())
	assert.Same(t, t0, t1.Representative())
}

func TestFixedBindingSymmetry(t *testing.T) {
	s := solver.NewSystem()
	g := s.Graph()
	t0 := s.NewTypeVariable(0)
	t1 := s.NewTypeVariable(0)
	t2 := s.NewTypeVariable(0)

	// $T1 occurs twice in the fixed type; the binding is added once.
	s.SetFixedType(t0, &types.Function{Params: []types.Type{t1, t1}, Result: t2})

	assert.Equal(t, []*types.TypeVariable{t1, t2}, g.Node(t0).FixedBindings())
	assert.Equal(t, []*types.TypeVariable{t0}, g.Node(t1).FixedBindings())
	assert.Equal(t, []*types.TypeVariable{t0}, g.Node(t2).FixedBindings())

	for _, u := range g.TypeVariables() {
		for _, v := range g.Node(u).FixedBindings() {
			assert.Contains(t, g.Node(v).FixedBindings(), u, "fixed bindings must be symmetric")
		}
	}
}

func TestBindTypeVariableWithoutVariablesIsNoOp(t *testing.T) {
	s := solver.NewSystem()
	g := s.Graph()
	t0 := s.NewTypeVariable(0)

	scope := g.NewScope()
	g.BindTypeVariable(t0, intType())
	assert.Zero(t, g.NumChanges())
	scope.Close()

	assert.Empty(t, g.Node(t0).FixedBindings())
}

func TestGatherEquivalenceClass(t *testing.T) {
	s := solver.NewSystem()
	g := s.Graph()
	t0 := s.NewTypeVariable(0)
	t1 := s.NewTypeVariable(0)
	t2 := s.NewTypeVariable(0)

	c1 := constraint.New(constraint.Subtype, t1, intType())
	s.AddConstraint(c1)
	s.MergeEquivalenceClasses(t0, t1, false)

	// Constraints on a fixed-binding neighbour are reachable too.
	c2 := constraint.New(constraint.Conversion, t2, intType())
	s.AddConstraint(c2)
	s.SetFixedType(t0, &types.Tuple{Elements: []types.Type{t2}})

	// $T0 comes first in the equivalence class, so its fixed-binding
	// neighbour's constraint is reached before $T1's own.
	gathered := g.GatherConstraints(t0, graph.GatherEquivalenceClass,
		func(*constraint.Constraint) bool { return true })
	assert.Equal(t, []*constraint.Constraint{c2, c1}, gathered)
}

func TestGatherAllMentions(t *testing.T) {
	s := solver.NewSystem()
	g := s.Graph()
	t0 := s.NewTypeVariable(0)
	t1 := s.NewTypeVariable(0)
	t2 := s.NewTypeVariable(0)
	t2other := s.NewTypeVariable(0)

	c1 := constraint.New(constraint.Bind, t0, t1)
	c2 := constraint.New(constraint.Bind, t1, t2)
	c3 := constraint.New(constraint.Equal, t2, t2other)
	s.AddConstraint(c1)
	s.AddConstraint(c2)
	s.AddConstraint(c3)

	gathered := g.GatherConstraints(t0, graph.GatherAllMentions,
		func(*constraint.Constraint) bool { return true })
	assert.Equal(t, []*constraint.Constraint{c1, c2, c3}, gathered)

	// The predicate filters, the walk still covers everything.
	onlyEqual := g.GatherConstraints(t0, graph.GatherAllMentions,
		func(c *constraint.Constraint) bool { return c.Kind() == constraint.Equal })
	assert.Equal(t, []*constraint.Constraint{c3}, onlyEqual)
}

func TestConnectedComponentsSplit(t *testing.T) {
	s := solver.NewSystem()
	g := s.Graph()
	t0 := s.NewTypeVariable(0)
	t1 := s.NewTypeVariable(0)
	t2 := s.NewTypeVariable(0)
	t3 := s.NewTypeVariable(0)

	c1 := constraint.New(constraint.Bind, t0, t1)
	c2 := constraint.New(constraint.Equal, t2, t3)
	s.AddConstraint(c1)
	s.AddConstraint(c2)

	components := g.ConnectedComponents(g.TypeVariables())
	require.Len(t, components, 2)
	assert.Equal(t, []*types.TypeVariable{t0, t1}, components[0].TypeVars)
	assert.Equal(t, []*constraint.Constraint{c1}, components[0].Constraints)
	assert.Equal(t, []*types.TypeVariable{t2, t3}, components[1].TypeVars)
	assert.Equal(t, []*constraint.Constraint{c2}, components[1].Constraints)
	assert.Empty(t, components[0].OneWayComponents)
}

func TestConnectedComponentsSkipFullyBound(t *testing.T) {
	s := solver.NewSystem()
	g := s.Graph()
	t0 := s.NewTypeVariable(0)
	t1 := s.NewTypeVariable(0)

	s.SetFixedType(t0, intType())

	components := g.ConnectedComponents(g.TypeVariables())
	require.Len(t, components, 1)
	assert.Equal(t, []*types.TypeVariable{t1}, components[0].TypeVars)
}

func TestConnectedComponentsFixedBindingEdge(t *testing.T) {
	s := solver.NewSystem()
	g := s.Graph()
	t0 := s.NewTypeVariable(0)
	t1 := s.NewTypeVariable(0)

	// No constraints; the fixed type of $T0 mentions $T1, which connects
	// the two variables.
	s.SetFixedType(t0, &types.Tuple{Elements: []types.Type{t1}})

	components := g.ConnectedComponents(g.TypeVariables())
	require.Len(t, components, 1)
	assert.Equal(t, []*types.TypeVariable{t0, t1}, components[0].TypeVars)
}

func TestOneWayComponentOrdering(t *testing.T) {
	s := solver.NewSystem()
	g := s.Graph()
	t0 := s.NewTypeVariable(0)
	t1 := s.NewTypeVariable(0)
	t2 := s.NewTypeVariable(0)
	t3 := s.NewTypeVariable(0)

	s.AddConstraint(constraint.New(constraint.Equal, t0, t1))
	s.AddConstraint(constraint.New(constraint.Equal, t2, t3))
	s.AddConstraint(constraint.New(constraint.OneWayBind, t0, t2))

	components := g.ConnectedComponents(g.TypeVariables())
	require.Len(t, components, 1)

	component := components[0]
	assert.Equal(t, []*types.TypeVariable{t0, t1, t2, t3}, component.TypeVars)
	require.Len(t, component.OneWayComponents, 2)

	// The right-hand side of the one-way constraint is solved first.
	assert.Equal(t, []*types.TypeVariable{t2, t3}, component.OneWayComponents[0].TypeVars)
	assert.Empty(t, component.OneWayComponents[0].DependsOn)
	assert.Equal(t, []*types.TypeVariable{t0, t1}, component.OneWayComponents[1].TypeVars)
	assert.Equal(t, []int{0}, component.OneWayComponents[1].DependsOn)
}

func TestOneWayChainDependencies(t *testing.T) {
	s := solver.NewSystem()
	g := s.Graph()
	t0 := s.NewTypeVariable(0)
	t1 := s.NewTypeVariable(0)
	t2 := s.NewTypeVariable(0)

	// $T2 feeds $T1 feeds $T0.
	s.AddConstraint(constraint.New(constraint.OneWayBind, t0, t1))
	s.AddConstraint(constraint.New(constraint.OneWayBind, t1, t2))

	components := g.ConnectedComponents(g.TypeVariables())
	require.Len(t, components, 1)

	component := components[0]
	require.Len(t, component.OneWayComponents, 3)
	assert.Equal(t, []*types.TypeVariable{t2}, component.OneWayComponents[0].TypeVars)
	assert.Equal(t, []*types.TypeVariable{t1}, component.OneWayComponents[1].TypeVars)
	assert.Equal(t, []*types.TypeVariable{t0}, component.OneWayComponents[2].TypeVars)

	// Every dependency index points at an earlier sub-component.
	for i, oneWay := range component.OneWayComponents {
		for _, dep := range oneWay.DependsOn {
			assert.Less(t, dep, i)
		}
	}
	assert.Equal(t, []int{0}, component.OneWayComponents[1].DependsOn)
	// $T0 depends on both, transitively.
	assert.ElementsMatch(t, []int{0, 1}, component.OneWayComponents[2].DependsOn)
}

func TestContractionMergesEqualityEdge(t *testing.T) {
	s := solver.NewSystem()
	g := s.Graph()
	t0 := s.NewTypeVariable(0)
	t1 := s.NewTypeVariable(0)

	c := constraint.New(constraint.Bind, t0, t1)
	s.AddConstraint(c)

	g.Optimize()

	assert.Same(t, t0.Representative(), t1.Representative())
	assert.False(t, s.InactiveConstraints().Contains(c))
	assert.False(t, s.ActiveConstraints().Contains(c))
	assert.Empty(t, g.Node(t0).Constraints())
	assert.Positive(t, g.ConstraintsConsideredForContraction())

	// Idempotence: a second run changes nothing.
	before := g.String()
	g.Optimize()
	assert.Equal(t, before, g.String())
}

func TestContractionSkipsLValueMismatch(t *testing.T) {
	s := solver.NewSystem()
	g := s.Graph()
	t0 := s.NewTypeVariable(types.CanBindToLValue)
	t1 := s.NewTypeVariable(0)

	c := constraint.New(constraint.Bind, t0, t1)
	s.AddConstraint(c)

	g.Optimize()

	assert.NotSame(t, t0.Representative(), t1.Representative())
	assert.True(t, s.InactiveConstraints().Contains(c))
}

func TestContractionBindParamAllowsLValueMismatch(t *testing.T) {
	s := solver.NewSystem()
	g := s.Graph()
	t0 := s.NewTypeVariable(types.CanBindToLValue)
	t1 := s.NewTypeVariable(0)

	c := constraint.New(constraint.BindParam, t0, t1)
	s.AddConstraint(c)

	g.Optimize()

	assert.Same(t, t0.Representative(), t1.Representative())
	assert.False(t, s.InactiveConstraints().Contains(c))
}

func TestContractionSkippedOnInOutRisk(t *testing.T) {
	s := solver.NewSystem()
	g := s.Graph()
	t0 := s.NewTypeVariable(types.CanBindToInOut)
	t1 := s.NewTypeVariable(0)
	risky := s.NewTypeVariable(types.CanBindToInOut)

	c := constraint.New(constraint.BindParam, t0, t1)
	s.AddConstraint(c)

	// One candidate binding mentions a variable that may bind to inout;
	// the edge must be left alone.
	s.SetPotentialBindings(t0, []types.Type{
		&types.Tuple{Elements: []types.Type{risky}},
	})

	g.Optimize()

	assert.NotSame(t, t0.Representative(), t1.Representative())
	assert.True(t, s.InactiveConstraints().Contains(c))
}

func TestContractionSkippedWithoutPotentialBindings(t *testing.T) {
	s := solver.NewSystem()
	g := s.Graph()
	t0 := s.NewTypeVariable(types.CanBindToInOut)
	t1 := s.NewTypeVariable(0)

	c := constraint.New(constraint.BindParam, t0, t1)
	s.AddConstraint(c)

	g.Optimize()

	assert.NotSame(t, t0.Representative(), t1.Representative())
	assert.True(t, s.InactiveConstraints().Contains(c))
}

func TestContractionAllowedWithSafeBindings(t *testing.T) {
	s := solver.NewSystem()
	g := s.Graph()
	t0 := s.NewTypeVariable(types.CanBindToInOut)
	t1 := s.NewTypeVariable(0)

	c := constraint.New(constraint.BindParam, t0, t1)
	s.AddConstraint(c)
	s.SetPotentialBindings(t0, []types.Type{intType()})

	g.Optimize()

	assert.Same(t, t0.Representative(), t1.Representative())
	assert.False(t, s.InactiveConstraints().Contains(c))
}

func TestRemoveEdgeRetiresExistingConstraints(t *testing.T) {
	s := solver.NewSystem()
	g := s.Graph()
	t0 := s.NewTypeVariable(0)
	t1 := s.NewTypeVariable(0)

	registered := constraint.New(constraint.Bind, t0, t1)
	s.AddConstraint(registered)

	// A constraint known only to the graph was generated mid-search; it
	// sits on no list, so removing its edge discards it instead of
	// retiring it.
	generated := constraint.New(constraint.Equal, t0, t1)
	g.AddConstraint(generated)

	state := s.BeginSearch()
	defer s.EndSearch()

	g.Optimize()
	g.RemoveEdge(generated)

	assert.Equal(t, []*constraint.Constraint{registered}, state.Retired())
	assert.Equal(t, []*constraint.Constraint{generated}, state.RemovedGenerated())
}

func TestVerifyPassesOnConsistentGraph(t *testing.T) {
	s := solver.NewSystem()
	g := s.Graph()
	t0 := s.NewTypeVariable(0)
	t1 := s.NewTypeVariable(0)
	t2 := s.NewTypeVariable(0)

	s.AddConstraint(constraint.New(constraint.Bind, t0, t1))
	s.AddConstraint(constraint.New(constraint.Equal, t1, t2))
	s.MergeEquivalenceClasses(t0, t1, false)
	s.SetFixedType(t2, &types.Tuple{Elements: []types.Type{t0}})

	assert.NotPanics(t, func() { g.Verify() })
}

func TestTeardownRequiresEmptyJournal(t *testing.T) {
	s := solver.NewSystem()
	g := s.Graph()
	t0 := s.NewTypeVariable(0)
	t1 := s.NewTypeVariable(0)

	scope := g.NewScope()
	g.AddConstraint(constraint.New(constraint.Bind, t0, t1))
	assert.Panics(t, func() { g.Teardown() })

	scope.Close()
	assert.NotPanics(t, func() { g.Teardown() })
	assert.Nil(t, t0.GraphNode())
}

func TestDoubleAddPanics(t *testing.T) {
	s := solver.NewSystem()
	g := s.Graph()
	t0 := s.NewTypeVariable(0)
	t1 := s.NewTypeVariable(0)

	c := constraint.New(constraint.Bind, t0, t1)
	g.AddConstraint(c)
	assert.Panics(t, func() { g.AddConstraint(c) })
}

func TestEquivalenceClassOfNonRepresentativePanics(t *testing.T) {
	s := solver.NewSystem()
	g := s.Graph()
	t0 := s.NewTypeVariable(0)
	t1 := s.NewTypeVariable(0)

	s.MergeEquivalenceClasses(t0, t1, false)
	assert.Panics(t, func() { g.Node(t1).EquivalenceClass() })
}
