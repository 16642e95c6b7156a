package solver

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumalang/luma/internal/constraint"
)

const sampleConstraintSet = `
type_variables:
  - can_bind_to_lvalue: true
  - {}
  - {}
  - {}
  - fixed: "($T2) -> Int"
  - id: 9
    can_bind_to_inout: true
    potential_bindings:
      - "Int"
      - "inout $T2"
constraints:
  - kind: bind
    first: "$T0"
    second: "$T1"
  - kind: equal
    first: "$T2"
    second: "$T3"
  - kind: one-way bind
    first: "$T0"
    second: "$T2"
`

func TestLoad(t *testing.T) {
	s, err := Load(strings.NewReader(sampleConstraintSet))
	require.NoError(t, err)

	vars := s.TypeVariables()
	require.Len(t, vars, 6)
	assert.Equal(t, uint32(0), vars[0].ID())
	assert.True(t, vars[0].CanBindToLValue())
	assert.Equal(t, uint32(9), vars[5].ID())
	assert.True(t, vars[5].CanBindToInOut())

	constraints := s.Constraints()
	require.Len(t, constraints, 3)
	assert.Equal(t, constraint.Bind, constraints[0].Kind())
	assert.Equal(t, "$T0 bind $T1", constraints[0].String())
	assert.Equal(t, constraint.OneWayBind, constraints[2].Kind())

	// $T4's fixed type mentions $T2, so the two are linked in the graph.
	fixed := s.FixedType(vars[4])
	require.NotNil(t, fixed)
	assert.Equal(t, "($T2) -> Int", fixed.String())
	require.Len(t, s.Graph().Node(vars[4]).FixedBindings(), 1)
	assert.Same(t, vars[2], s.Graph().Node(vars[4]).FixedBindings()[0])

	bindings := s.PotentialBindings(vars[5])
	require.Len(t, bindings, 2)
	assert.Equal(t, "inout $T2", bindings[1].String())

	// The loaded graph is internally consistent.
	assert.NotPanics(t, func() { s.Graph().Verify() })
}

func TestLoadRejectsBadInput(t *testing.T) {
	cases := map[string]string{
		"bad kind": `
constraints:
  - kind: frobnicate
    first: "Int"
    second: "Int"
`,
		"bad type": `
constraints:
  - kind: bind
    first: "$T0"
    second: "Int"
`,
		"duplicate id": `
type_variables:
  - id: 1
  - id: 1
`,
		"not yaml": `{{{`,
	}

	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(strings.NewReader(src))
			assert.Error(t, err)
		})
	}
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile("testdata/does_not_exist.yaml")
	assert.Error(t, err)
}
