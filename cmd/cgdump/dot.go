package main

import (
	"io"
	"os"

	dgraph "github.com/dominikbraun/graph"
	"github.com/dominikbraun/graph/draw"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/lumalang/luma/internal/solver"
	"github.com/lumalang/luma/internal/types"
)

var dotCmd = &cobra.Command{
	Use:   "dot <file.yaml>",
	Short: "Render the constraint graph as Graphviz DOT",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSystem(args[0])
		if err != nil {
			return err
		}
		return writeDOT(s, os.Stdout)
	},
}

// writeDOT renders the incidence structure of the system's graph: one
// vertex per type variable, solid edges for constraint co-occurrence,
// directed bold edges for one-way constraints (producer to consumer), and
// dashed edges for fixed bindings.
func writeDOT(s *solver.System, w io.Writer) error {
	g := dgraph.New(dgraph.StringHash, dgraph.Directed())

	cg := s.Graph()
	for _, tv := range cg.TypeVariables() {
		if err := g.AddVertex(tv.String(), dgraph.VertexAttribute("shape", "box")); err != nil {
			return errors.Wrapf(err, "adding vertex %s", tv)
		}
	}

	addEdge := func(from, to string, attrs ...func(*dgraph.EdgeProperties)) error {
		err := g.AddEdge(from, to, attrs...)
		if err != nil && !errors.Is(err, dgraph.ErrEdgeAlreadyExists) {
			return errors.Wrapf(err, "adding edge %s -> %s", from, to)
		}
		return nil
	}

	for _, c := range s.Constraints() {
		mentioned := c.TypeVariables()
		if len(mentioned) < 2 {
			continue
		}

		if c.Kind().IsOneWay() {
			// One-way edges run from the producers (second type) to the
			// consumers (first type).
			consumers := variableNames(c.FirstType())
			producers := variableNames(c.SecondType())
			for _, from := range producers {
				for _, to := range consumers {
					if from == to {
						continue
					}
					if err := addEdge(from, to,
						dgraph.EdgeAttribute("label", c.Kind().String()),
						dgraph.EdgeAttribute("style", "bold")); err != nil {
						return err
					}
				}
			}
			continue
		}

		first := mentioned[0]
		for _, other := range mentioned[1:] {
			if err := addEdge(first.String(), other.String(),
				dgraph.EdgeAttribute("label", c.Kind().String()),
				dgraph.EdgeAttribute("dir", "none")); err != nil {
				return err
			}
		}
	}

	for _, tv := range cg.TypeVariables() {
		for _, adj := range cg.Node(tv).FixedBindings() {
			if adj.ID() <= tv.ID() {
				continue
			}
			if err := addEdge(tv.String(), adj.String(),
				dgraph.EdgeAttribute("style", "dashed"),
				dgraph.EdgeAttribute("dir", "none")); err != nil {
				return err
			}
		}
	}

	return draw.DOT(g, w)
}

// variableNames returns the uniqued display names of the type variables
// occurring in t, in first-occurrence order.
func variableNames(t types.Type) []string {
	var mentioned []*types.TypeVariable
	t.CollectTypeVariables(&mentioned)

	var names []string
	seen := make(map[string]bool, len(mentioned))
	for _, tv := range mentioned {
		name := tv.String()
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}
