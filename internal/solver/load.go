package solver

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/lumalang/luma/internal/constraint"
	"github.com/lumalang/luma/internal/types"
)

// constraintSetFile is the YAML shape of a constraint-set description.
type constraintSetFile struct {
	TypeVariables []typeVarSpec    `yaml:"type_variables"`
	Constraints   []constraintSpec `yaml:"constraints"`
}

type typeVarSpec struct {
	ID                *uint32  `yaml:"id"`
	CanBindToLValue   bool     `yaml:"can_bind_to_lvalue"`
	CanBindToInOut    bool     `yaml:"can_bind_to_inout"`
	CanBindToNoEscape bool     `yaml:"can_bind_to_noescape"`
	Fixed             string   `yaml:"fixed"`
	PotentialBindings []string `yaml:"potential_bindings"`
}

type constraintSpec struct {
	Kind   string `yaml:"kind"`
	First  string `yaml:"first"`
	Second string `yaml:"second"`
}

// Load reads a YAML constraint-set description and builds a system (and
// graph) reflecting it. Variables are created first, then constraints are
// registered, then fixed types and potential bindings are applied.
func Load(r io.Reader) (*System, error) {
	var file constraintSetFile
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(&file); err != nil {
		return nil, errors.Wrap(err, "decoding constraint set")
	}

	s := NewSystem()

	vars := make(map[uint32]*types.TypeVariable, len(file.TypeVariables))
	for i, spec := range file.TypeVariables {
		id := uint32(i)
		if spec.ID != nil {
			id = *spec.ID
		}
		if _, ok := vars[id]; ok {
			return nil, errors.Errorf("duplicate type variable id %d", id)
		}

		var options types.TypeVariableOptions
		if spec.CanBindToLValue {
			options |= types.CanBindToLValue
		}
		if spec.CanBindToInOut {
			options |= types.CanBindToInOut
		}
		if spec.CanBindToNoEscape {
			options |= types.CanBindToNoEscape
		}
		vars[id] = s.NewTypeVariableWithID(id, options)
	}

	for i, spec := range file.Constraints {
		kind, ok := constraint.KindFromName(spec.Kind)
		if !ok {
			return nil, errors.Errorf("constraint %d: unknown kind %q", i, spec.Kind)
		}
		first, err := ParseType(spec.First, vars)
		if err != nil {
			return nil, errors.Wrapf(err, "constraint %d", i)
		}
		second, err := ParseType(spec.Second, vars)
		if err != nil {
			return nil, errors.Wrapf(err, "constraint %d", i)
		}
		s.AddConstraint(constraint.New(kind, first, second))
	}

	for i, spec := range file.TypeVariables {
		id := uint32(i)
		if spec.ID != nil {
			id = *spec.ID
		}
		tv := vars[id]

		if spec.Fixed != "" {
			fixed, err := ParseType(spec.Fixed, vars)
			if err != nil {
				return nil, errors.Wrapf(err, "fixed type of $T%d", id)
			}
			s.SetFixedType(tv, fixed)
		}

		if len(spec.PotentialBindings) > 0 {
			bindings := make([]types.Type, len(spec.PotentialBindings))
			for j, src := range spec.PotentialBindings {
				binding, err := ParseType(src, vars)
				if err != nil {
					return nil, errors.Wrapf(err, "potential binding %d of $T%d", j, id)
				}
				bindings[j] = binding
			}
			s.SetPotentialBindings(tv, bindings)
		}
	}

	return s, nil
}

// LoadFile is Load over a file on disk.
func LoadFile(path string) (*System, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	s, err := Load(f)
	if err != nil {
		return nil, errors.Wrapf(err, "loading %s", path)
	}
	return s, nil
}
