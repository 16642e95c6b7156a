package graph

import (
	"github.com/lumalang/luma/internal/constraint"
	"github.com/lumalang/luma/internal/types"
)

// Component is an independent sub-problem: a maximal set of unbound type
// variables (and the constraints touching them) solvable without reference
// to the rest of the graph, modulo one-way dependencies.
type Component struct {
	TypeVars    []*types.TypeVariable
	Constraints []*constraint.Constraint

	// OneWayComponents orders the component's sub-components so that
	// every dependency precedes its dependents. Empty when the component
	// involves no one-way constraints.
	OneWayComponents []OneWayComponent
}

// OneWayComponent is one node of the pre-collapse one-way digraph that ended
// up inside a final component.
type OneWayComponent struct {
	TypeVars []*types.TypeVariable

	// DependsOn indexes the owning component's OneWayComponents that must
	// be solved before this one. Indices are always smaller than this
	// sub-component's own index.
	DependsOn []int
}

// ConnectedComponents partitions the given type variables into independent
// sub-problems. Ordinary constraints merge components; one-way constraints
// instead impose a solve order between sub-components of the final merged
// component.
func (g *Graph) ConnectedComponents(typeVars []*types.TypeVariable) []Component {
	cc := newConnectedComponents(g, typeVars)
	return cc.components()
}

// rawOneWayComponent is one node in the directed graph of one-way
// constraints, keyed by a pre-collapse union-find representative.
type rawOneWayComponent struct {
	// typeVars lists the input variables bucketed into this node.
	typeVars []*types.TypeVariable

	// outAdjacencies and inAdjacencies are uniqued in first-seen order;
	// linear-search uniquing is fine at the small degrees that occur.
	outAdjacencies []*types.TypeVariable
	inAdjacencies  []*types.TypeVariable
}

// connectedComponents runs a union-find connected components algorithm over
// a constraint graph, treating one-way constraints separately.
type connectedComponents struct {
	g        *Graph
	typeVars []*types.TypeVariable

	// representatives maps a variable to its parent in a local union-find;
	// variables with no entry are their own representative.
	representatives map[*types.TypeVariable]*types.TypeVariable

	oneWayDigraph map[*types.TypeVariable]*rawOneWayComponent
}

func newConnectedComponents(g *Graph, typeVars []*types.TypeVariable) *connectedComponents {
	cc := &connectedComponents{
		g:               g,
		typeVars:        typeVars,
		representatives: make(map[*types.TypeVariable]*types.TypeVariable),
		oneWayDigraph:   make(map[*types.TypeVariable]*rawOneWayComponent),
	}

	oneWayConstraints := cc.collapseOrdinary()
	if len(oneWayConstraints) == 0 {
		return cc
	}

	// Build the directed one-way constraint graph over the pre-collapse
	// representatives, then finish collapsing the components by joining
	// sets through the one-way constraints. The digraph keeps the
	// pre-collapse structure, which later orders the sub-components.
	cc.buildOneWayDigraph(oneWayConstraints)
	for _, c := range oneWayConstraints {
		cc.unionViaConstraint(c)
	}
	return cc
}

// findRepresentative finds tv's canonical member in the local union-find,
// compressing the path behind it.
func (cc *connectedComponents) findRepresentative(tv *types.TypeVariable) *types.TypeVariable {
	root := tv
	for {
		parent, ok := cc.representatives[root]
		if !ok {
			break
		}
		root = parent
	}

	for current := tv; current != root; {
		parent := cc.representatives[current]
		cc.representatives[current] = root
		current = parent
	}
	return root
}

// unionSets joins the sets of two variables, reporting whether they were
// previously separate. The variable with the higher ID is reparented onto
// the lower one; the choice is arbitrary but keeps output deterministic.
func (cc *connectedComponents) unionSets(typeVar1, typeVar2 *types.TypeVariable) bool {
	rep1 := cc.findRepresentative(typeVar1)
	rep2 := cc.findRepresentative(typeVar2)
	if rep1 == rep2 {
		return false
	}

	if rep1.ID() < rep2.ID() {
		cc.representatives[rep2] = rep1
	} else {
		cc.representatives[rep1] = rep2
	}
	return true
}

// unionViaConstraint joins every variable mentioned by the constraint into
// one set.
func (cc *connectedComponents) unionViaConstraint(c *constraint.Constraint) bool {
	mentioned := c.TypeVariables()
	if len(mentioned) < 2 {
		return false
	}

	anyUnioned := false
	first := mentioned[0]
	for _, other := range mentioned[1:] {
		if cc.unionSets(first, other) {
			anyUnioned = true
		}
	}
	return anyUnioned
}

// collapseOrdinary performs phase one: union-find over equivalence classes,
// fixed bindings and ordinary constraints. One-way constraints are deferred
// and returned.
func (cc *connectedComponents) collapseOrdinary() []*constraint.Constraint {
	var oneWayConstraints []*constraint.Constraint
	visited := make(map[*constraint.Constraint]bool)

	for _, tv := range cc.typeVars {
		rep := tv.Representative()
		repNode, _ := cc.g.lookupNode(rep)
		for _, equiv := range repNode.EquivalenceClass() {
			cc.unionSets(tv, equiv)
		}

		node, _ := cc.g.lookupNode(tv)
		for _, adj := range node.FixedBindings() {
			cc.unionSets(tv, adj)
		}

		for _, c := range node.Constraints() {
			if visited[c] {
				continue
			}
			visited[c] = true

			if c.Kind().IsOneWay() {
				oneWayConstraints = append(oneWayConstraints, c)
				continue
			}

			cc.unionViaConstraint(c)
		}
	}

	return oneWayConstraints
}

func insertIfUnique(list []*types.TypeVariable, tv *types.TypeVariable) []*types.TypeVariable {
	for _, existing := range list {
		if existing == tv {
			return list
		}
	}
	return append(list, tv)
}

// representativesInType returns the uniqued set of union-find
// representatives of the variables occurring in t.
func (cc *connectedComponents) representativesInType(t types.Type) []*types.TypeVariable {
	var results []*types.TypeVariable
	var mentioned []*types.TypeVariable
	t.CollectTypeVariables(&mentioned)
	for _, tv := range mentioned {
		results = insertIfUnique(results, cc.findRepresentative(tv))
	}
	return results
}

func (cc *connectedComponents) digraphNode(rep *types.TypeVariable) *rawOneWayComponent {
	node, ok := cc.oneWayDigraph[rep]
	if !ok {
		node = &rawOneWayComponent{}
		cc.oneWayDigraph[rep] = node
	}
	return node
}

// buildOneWayDigraph performs phase two: a digraph over the phase-one
// representatives, with an edge from the right-hand side of each one-way
// constraint to its left-hand side, because the right-hand variables must
// be solved first.
func (cc *connectedComponents) buildOneWayDigraph(oneWayConstraints []*constraint.Constraint) {
	for _, c := range oneWayConstraints {
		lhsReps := cc.representativesInType(c.FirstType())
		rhsReps := cc.representativesInType(c.SecondType())

		for _, lhsRep := range lhsReps {
			for _, rhsRep := range rhsReps {
				rhsNode := cc.digraphNode(rhsRep)
				rhsNode.outAdjacencies = insertIfUnique(rhsNode.outAdjacencies, lhsRep)
				lhsNode := cc.digraphNode(lhsRep)
				lhsNode.inAdjacencies = insertIfUnique(lhsNode.inAdjacencies, rhsRep)
			}
		}
	}

	// Bucket the input variables into their digraph nodes.
	for _, tv := range cc.typeVars {
		rep := cc.findRepresentative(tv)
		if node, ok := cc.oneWayDigraph[rep]; ok {
			node.typeVars = append(node.typeVars, tv)
		}
	}
}

// components assembles the final reported components: only sets containing
// at least one unbound variable are reported, in first-encounter order.
func (cc *connectedComponents) components() []Component {
	hasUnbound := make(map[*types.TypeVariable]bool)
	for _, tv := range cc.typeVars {
		if cc.g.cs.FixedType(tv) != nil {
			continue
		}
		hasUnbound[cc.findRepresentative(tv)] = true
	}

	var components []Component
	componentIdx := make(map[*types.TypeVariable]int)
	knownConstraints := make(map[*constraint.Constraint]bool)
	for _, tv := range cc.typeVars {
		rep := cc.findRepresentative(tv)
		if !hasUnbound[rep] {
			continue
		}

		idx, ok := componentIdx[rep]
		if !ok {
			idx = len(components)
			componentIdx[rep] = idx
			components = append(components, Component{})
		}

		component := &components[idx]
		component.TypeVars = append(component.TypeVars, tv)

		node, _ := cc.g.lookupNode(tv)
		for _, c := range node.Constraints() {
			if !knownConstraints[c] {
				knownConstraints[c] = true
				component.Constraints = append(component.Constraints, c)
			}
		}
	}

	if len(cc.oneWayDigraph) > 0 {
		cc.populateOneWayDependencies(componentIdx, components)
	}

	return components
}

// dfsFrame is one entry of the explicit DFS stack; recursion depth on the
// one-way digraph is unbounded in pathological programs.
type dfsFrame struct {
	typeVar     *types.TypeVariable
	adjacencies []*types.TypeVariable
	next        int
}

// postorderDFS visits every variable reachable from roots, calling
// postVisit after each variable's adjacencies have been fully explored.
func postorderDFS(roots []*types.TypeVariable,
	adjacencies func(*types.TypeVariable) []*types.TypeVariable,
	postVisit func(*types.TypeVariable),
	visited map[*types.TypeVariable]bool) {

	var stack []dfsFrame
	for _, root := range roots {
		if visited[root] {
			continue
		}
		visited[root] = true
		stack = append(stack, dfsFrame{typeVar: root, adjacencies: adjacencies(root)})

		for len(stack) > 0 {
			frame := &stack[len(stack)-1]
			if frame.next < len(frame.adjacencies) {
				next := frame.adjacencies[frame.next]
				frame.next++
				if !visited[next] {
					visited[next] = true
					stack = append(stack, dfsFrame{typeVar: next, adjacencies: adjacencies(next)})
				}
				continue
			}

			postVisit(frame.typeVar)
			stack = stack[:len(stack)-1]
		}
	}
}

// populateOneWayDependencies performs phase four's ordering work: a
// postorder DFS over the one-way digraph establishes the dependency order
// of each component's sub-components, and a second DFS per sub-component
// (walking the in-adjacencies) records which earlier sub-components it
// depends on.
func (cc *connectedComponents) populateOneWayDependencies(
	componentIdx map[*types.TypeVariable]int, components []Component) {

	// Each inner slice holds the digraph nodes of one final component in
	// dependency order: a node comes after everything it depends on once
	// the order is reversed.
	dependencyOrders := make([][]*types.TypeVariable, len(components))
	visited := make(map[*types.TypeVariable]bool)
	postorderDFS(cc.typeVars,
		func(tv *types.TypeVariable) []*types.TypeVariable {
			// Stop at components with no unbound variables.
			rep := cc.findRepresentative(tv)
			if _, ok := componentIdx[rep]; !ok {
				return nil
			}

			if node, ok := cc.oneWayDigraph[tv]; ok {
				return node.outAdjacencies
			}
			return nil
		},
		func(tv *types.TypeVariable) {
			// Only digraph nodes participate in the ordering.
			if _, ok := cc.oneWayDigraph[tv]; !ok {
				return
			}

			rep := cc.findRepresentative(tv)
			idx, ok := componentIdx[rep]
			if !ok {
				return
			}
			dependencyOrders[idx] = append(dependencyOrders[idx], tv)
		},
		visited)

	for idx := range components {
		dependencyOrder := dependencyOrders[idx]
		if len(dependencyOrder) == 0 {
			continue
		}

		component := &components[idx]
		subcomponentIdx := make(map[*types.TypeVariable]int)
		for i := len(dependencyOrder) - 1; i >= 0; i-- {
			tv := dependencyOrder[i]
			if _, ok := subcomponentIdx[tv]; ok {
				panic("sub-component visited twice")
			}
			subcomponentIdx[tv] = len(component.OneWayComponents)

			var oneWay OneWayComponent
			if node, ok := cc.oneWayDigraph[tv]; ok {
				oneWay.TypeVars = node.typeVars
			} else {
				oneWay.TypeVars = []*types.TypeVariable{tv}
			}

			// Walk the digraph edges backward from this sub-component
			// to find everything it depends on, directly or not.
			subVisited := make(map[*types.TypeVariable]bool)
			postorderDFS([]*types.TypeVariable{tv},
				func(adj *types.TypeVariable) []*types.TypeVariable {
					if node, ok := cc.oneWayDigraph[adj]; ok {
						return node.inAdjacencies
					}
					return nil
				},
				func(dependsOn *types.TypeVariable) {
					if dependsOn == tv {
						return
					}
					depIdx, ok := subcomponentIdx[dependsOn]
					if !ok {
						panic("one-way dependency on unknown sub-component")
					}
					oneWay.DependsOn = append(oneWay.DependsOn, depIdx)
				},
				subVisited)

			component.OneWayComponents = append(component.OneWayComponents, oneWay)
		}
	}
}
