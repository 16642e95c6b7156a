package graph

import (
	"github.com/emirpasic/gods/sets/linkedhashset"

	"github.com/lumalang/luma/internal/constraint"
	"github.com/lumalang/luma/internal/types"
)

// GatheringKind selects how far GatherConstraints reaches.
type GatheringKind int

const (
	// GatherEquivalenceClass collects constraints on the variable's
	// equivalence class and its fixed-binding neighbours.
	GatherEquivalenceClass GatheringKind = iota
	// GatherAllMentions additionally follows every variable mentioned by
	// each collected constraint, transitively.
	GatherAllMentions
)

// GatherConstraints collects every constraint the solver might need to
// reconsider when tv changes. Results are deduplicated across the whole
// walk and returned in first-encounter order.
func (g *Graph) GatherConstraints(tv *types.TypeVariable, kind GatheringKind,
	accept func(*constraint.Constraint) bool) []*constraint.Constraint {

	var constraints []*constraint.Constraint

	visitedVars := linkedhashset.New()
	visitedConstraints := linkedhashset.New()

	// addAdjacentConstraints collects matching constraints from every
	// member of the adjacent variable's equivalence class. With
	// AllMentions, variables mentioned by newly seen constraints are
	// walked as well, until no new variable remains.
	addAdjacentConstraints := func(adj *types.TypeVariable) {
		work := []*types.TypeVariable{adj}
		for len(work) > 0 {
			current := work[0]
			work = work[1:]

			adjNode, _ := g.lookupNode(g.cs.Representative(current))
			for _, equiv := range adjNode.EquivalenceClass() {
				if visitedVars.Contains(equiv) {
					continue
				}
				visitedVars.Add(equiv)

				equivNode, _ := g.lookupNode(equiv)
				for _, c := range equivNode.Constraints() {
					if visitedConstraints.Contains(c) {
						continue
					}
					visitedConstraints.Add(c)

					if accept(c) {
						constraints = append(constraints, c)
					}
					if kind == GatherAllMentions {
						work = append(work, c.TypeVariables()...)
					}
				}
			}
		}
	}

	repNode, _ := g.lookupNode(g.cs.Representative(tv))
	for _, member := range repNode.EquivalenceClass() {
		node, _ := g.lookupNode(member)
		for _, c := range node.Constraints() {
			if !visitedConstraints.Contains(c) {
				visitedConstraints.Add(c)
				if accept(c) {
					constraints = append(constraints, c)
				}
			}

			// With AllMentions, also walk the variables mentioned by
			// each of the member's constraints.
			if kind == GatherAllMentions {
				for _, adj := range c.TypeVariables() {
					addAdjacentConstraints(adj)
				}
			}
		}

		// Variables mentioned in a fixed binding contribute their
		// adjacent constraints as well.
		for _, adj := range node.FixedBindings() {
			addAdjacentConstraints(adj)
		}
	}

	return constraints
}
