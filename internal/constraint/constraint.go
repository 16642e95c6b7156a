package constraint

import (
	"fmt"
	"io"

	"github.com/lumalang/luma/internal/types"
)

// Constraint relates two types. It is immutable once created; the set of
// type variables it mentions is computed at construction and cached.
type Constraint struct {
	kind   Kind
	first  types.Type
	second types.Type

	// typeVars lists every type variable mentioned transitively by the
	// constraint's types, deduplicated, in first-occurrence order.
	typeVars []*types.TypeVariable
}

// New creates a constraint of the given kind between two types.
func New(kind Kind, first, second types.Type) *Constraint {
	c := &Constraint{kind: kind, first: first, second: second}

	var mentioned []*types.TypeVariable
	if first != nil {
		first.CollectTypeVariables(&mentioned)
	}
	if second != nil {
		second.CollectTypeVariables(&mentioned)
	}
	seen := make(map[*types.TypeVariable]bool, len(mentioned))
	for _, tv := range mentioned {
		if seen[tv] {
			continue
		}
		seen[tv] = true
		c.typeVars = append(c.typeVars, tv)
	}
	return c
}

func (c *Constraint) Kind() Kind { return c.kind }

func (c *Constraint) FirstType() types.Type { return c.first }

func (c *Constraint) SecondType() types.Type { return c.second }

// TypeVariables returns the type variables the constraint mentions,
// deduplicated, in first-occurrence order. Callers must not mutate the
// returned slice.
func (c *Constraint) TypeVariables() []*types.TypeVariable {
	return c.typeVars
}

func (c *Constraint) String() string {
	return fmt.Sprintf("%s %s %s", c.first, c.kind, c.second)
}

// Print writes the constraint's display form to w.
func (c *Constraint) Print(w io.Writer) {
	fmt.Fprint(w, c.String())
}
