package types

import "fmt"

// TypeVariableOptions is a bit set of capabilities a type variable may have.
type TypeVariableOptions uint8

const (
	// CanBindToLValue allows the variable to be bound to an l-value type.
	CanBindToLValue TypeVariableOptions = 1 << iota
	// CanBindToInOut allows the variable to be bound to an inout type.
	CanBindToInOut
	// CanBindToNoEscape allows the variable to be bound to a non-escaping
	// function type.
	CanBindToNoEscape
)

// TypeVariable is an unknown whose type the solver must determine. The
// constraint system owns the variable; the constraint graph stores only its
// node handle and index in the slots below.
type TypeVariable struct {
	id      uint32
	options TypeVariableOptions

	// parent is the union-find link maintained by the constraint system.
	// A nil parent means the variable is its own representative.
	parent *TypeVariable

	// graphNode and graphIndex are owned by the constraint graph. graphNode
	// holds an opaque handle so the graph can keep its node type private.
	graphNode  any
	graphIndex int
}

// NewTypeVariable creates a type variable with the given ID and capabilities.
func NewTypeVariable(id uint32, options TypeVariableOptions) *TypeVariable {
	return &TypeVariable{id: id, options: options, graphIndex: -1}
}

// ID returns the variable's small integer identifier, used for deterministic
// tie-breaks and printing.
func (tv *TypeVariable) ID() uint32 { return tv.id }

func (tv *TypeVariable) CanBindToLValue() bool {
	return tv.options&CanBindToLValue != 0
}

func (tv *TypeVariable) CanBindToInOut() bool {
	return tv.options&CanBindToInOut != 0
}

func (tv *TypeVariable) CanBindToNoEscape() bool {
	return tv.options&CanBindToNoEscape != 0
}

// Representative walks the union-find links to the canonical member of the
// variable's equivalence class, halving paths as it goes.
func (tv *TypeVariable) Representative() *TypeVariable {
	result := tv
	for result.parent != nil {
		if result.parent.parent != nil {
			result.parent = result.parent.parent
		}
		result = result.parent
	}
	return result
}

// SetRepresentative reparents the variable onto rep. Only the constraint
// system's merge operation may call this.
func (tv *TypeVariable) SetRepresentative(rep *TypeVariable) {
	tv.parent = rep
}

// GraphNode returns the opaque node handle stored by the constraint graph,
// or nil if the graph has not registered this variable.
func (tv *TypeVariable) GraphNode() any { return tv.graphNode }

// SetGraphNode installs or clears the constraint graph's node handle.
func (tv *TypeVariable) SetGraphNode(node any) { tv.graphNode = node }

// GraphIndex returns the variable's slot in the constraint graph's dense
// variable list.
func (tv *TypeVariable) GraphIndex() int { return tv.graphIndex }

func (tv *TypeVariable) SetGraphIndex(index int) { tv.graphIndex = index }

func (tv *TypeVariable) String() string { return fmt.Sprintf("$T%d", tv.id) }

func (tv *TypeVariable) Desugared() Type { return tv }

func (tv *TypeVariable) HasTypeVariables() bool { return true }

func (tv *TypeVariable) CollectTypeVariables(out *[]*TypeVariable) {
	*out = append(*out, tv)
}

func (tv *TypeVariable) FindIf(pred func(Type) bool) bool { return pred(tv) }
