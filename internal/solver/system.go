package solver

import (
	"github.com/sirupsen/logrus"

	"github.com/lumalang/luma/internal/constraint"
	"github.com/lumalang/luma/internal/graph"
	"github.com/lumalang/luma/internal/types"
)

// System is the reference constraint system. It owns the type variables,
// the union-find over them, the fixed-type store and the constraint lists,
// and keeps its constraint graph in sync with every mutation.
type System struct {
	nextID   uint32
	typeVars []*types.TypeVariable

	// fixed maps a representative to its bound concrete type.
	fixed map[*types.TypeVariable]types.Type

	active   *constraint.List
	inactive *constraint.List

	// potentialBindings holds candidate binding types per variable, used
	// by the graph's contraction safety check.
	potentialBindings map[*types.TypeVariable][]types.Type

	state *SearchState
	graph *graph.Graph
}

// NewSystem creates an empty constraint system with an attached graph.
func NewSystem() *System {
	s := &System{
		fixed:             make(map[*types.TypeVariable]types.Type),
		active:            constraint.NewList(),
		inactive:          constraint.NewList(),
		potentialBindings: make(map[*types.TypeVariable][]types.Type),
	}
	s.graph = graph.New(s)
	return s
}

// Graph returns the system's constraint graph.
func (s *System) Graph() *graph.Graph { return s.graph }

// SetLogger routes the graph's debug traces to log.
func (s *System) SetLogger(log logrus.FieldLogger) { s.graph.SetLogger(log) }

// NewTypeVariable allocates a fresh type variable with the given
// capabilities.
func (s *System) NewTypeVariable(options types.TypeVariableOptions) *types.TypeVariable {
	tv := types.NewTypeVariable(s.nextID, options)
	s.nextID++
	s.typeVars = append(s.typeVars, tv)
	s.graph.AddTypeVariable(tv)
	return tv
}

// NewTypeVariableWithID allocates a type variable with an explicit ID, used
// when loading a constraint set from a file. IDs must not repeat.
func (s *System) NewTypeVariableWithID(id uint32, options types.TypeVariableOptions) *types.TypeVariable {
	for _, existing := range s.typeVars {
		if existing.ID() == id {
			panic("duplicate type variable ID")
		}
	}
	tv := types.NewTypeVariable(id, options)
	if id >= s.nextID {
		s.nextID = id + 1
	}
	s.typeVars = append(s.typeVars, tv)
	s.graph.AddTypeVariable(tv)
	return tv
}

// TypeVariables returns every variable the system has allocated, in
// allocation order.
func (s *System) TypeVariables() []*types.TypeVariable { return s.typeVars }

// Representative returns the canonical member of tv's equivalence class.
func (s *System) Representative(tv *types.TypeVariable) *types.TypeVariable {
	return tv.Representative()
}

// FixedType returns the concrete type tv's equivalence class is bound to,
// or nil.
func (s *System) FixedType(tv *types.TypeVariable) types.Type {
	return s.fixed[tv.Representative()]
}

// SetFixedType binds tv's equivalence class to a concrete type and records
// the binding in the graph.
func (s *System) SetFixedType(tv *types.TypeVariable, fixed types.Type) {
	s.fixed[tv.Representative()] = fixed
	s.graph.BindTypeVariable(tv, fixed)
}

// MergeEquivalenceClasses makes a's representative the representative of
// b's class as well, and lets the graph witness the merge. The reference
// system has no work list; updateWorkList is accepted for interface
// compatibility.
func (s *System) MergeEquivalenceClasses(a, b *types.TypeVariable, updateWorkList bool) {
	rep1 := a.Representative()
	rep2 := b.Representative()
	if rep1 == rep2 {
		panic("merging a type variable with itself")
	}

	// A fixed type recorded on the absorbed representative follows the
	// class to its new representative.
	if fixed, ok := s.fixed[rep2]; ok {
		delete(s.fixed, rep2)
		if _, bound := s.fixed[rep1]; !bound {
			s.fixed[rep1] = fixed
		}
	}

	rep2.SetRepresentative(rep1)
	s.graph.MergeNodes(rep1, rep2)
}

// AddConstraint registers c on the inactive list and indexes it in the
// graph.
func (s *System) AddConstraint(c *constraint.Constraint) {
	s.inactive.Push(c)
	s.graph.AddConstraint(c)
}

// RemoveConstraint unregisters c from whichever list holds it and from the
// graph.
func (s *System) RemoveConstraint(c *constraint.Constraint) {
	if !s.active.Remove(c) && !s.inactive.Remove(c) {
		panic("removing unregistered constraint")
	}
	s.graph.RemoveConstraint(c)
}

// ActivateConstraint moves c from the inactive list to the active one.
func (s *System) ActivateConstraint(c *constraint.Constraint) {
	if !s.inactive.Remove(c) {
		panic("activating a constraint that is not inactive")
	}
	s.active.Push(c)
}

// Constraints returns every registered constraint: the inactive list
// followed by the active one.
func (s *System) Constraints() []*constraint.Constraint {
	result := make([]*constraint.Constraint, 0, s.inactive.Len()+s.active.Len())
	result = append(result, s.inactive.Items()...)
	result = append(result, s.active.Items()...)
	return result
}

// FindConstraints returns every registered constraint accepted by the
// predicate.
func (s *System) FindConstraints(accept func(*constraint.Constraint) bool) []*constraint.Constraint {
	var result []*constraint.Constraint
	for _, c := range s.Constraints() {
		if accept(c) {
			result = append(result, c)
		}
	}
	return result
}

func (s *System) ActiveConstraints() *constraint.List { return s.active }

func (s *System) InactiveConstraints() *constraint.List { return s.inactive }

// SolverState returns the in-flight search state, or nil outside a search.
func (s *System) SolverState() graph.SolverState {
	if s.state == nil {
		return nil
	}
	return s.state
}

// BeginSearch enters the solver's search, making a search state available
// for constraint retirement.
func (s *System) BeginSearch() *SearchState {
	if s.state != nil {
		panic("search already in progress")
	}
	s.state = &SearchState{}
	return s.state
}

// EndSearch leaves the solver's search.
func (s *System) EndSearch() {
	if s.state == nil {
		panic("no search in progress")
	}
	s.state = nil
}

// PotentialBindings returns the candidate binding types recorded for tv, or
// nil if none are known.
func (s *System) PotentialBindings(tv *types.TypeVariable) []types.Type {
	return s.potentialBindings[tv]
}

// SetPotentialBindings records the candidate binding types for tv.
func (s *System) SetPotentialBindings(tv *types.TypeVariable, bindings []types.Type) {
	s.potentialBindings[tv] = bindings
}
