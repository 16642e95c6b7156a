package constraint

// Kind classifies a constraint between two types.
type Kind int

const (
	// Bind requires the two types to be identical.
	Bind Kind = iota
	// BindParam binds an argument type to a parameter type, tolerating
	// l-value differences.
	BindParam
	// BindToPointerType binds the first type to the pointee of the second.
	BindToPointerType
	// Equal requires the two types to be identical modulo sugar.
	Equal
	// Subtype requires the first type to be a subtype of the second.
	Subtype
	// Conversion requires the first type to be convertible to the second.
	Conversion
	// ApplicableFunction relates a call's argument list to a callee type.
	ApplicableFunction
	// Disjunction holds a set of alternatives of which exactly one must
	// hold.
	Disjunction
	// OneWayBind binds the first type to the second, with the second
	// solved strictly before the first.
	OneWayBind
	// OneWayBindParam is the parameter-binding variant of OneWayBind.
	OneWayBindParam
)

var kindNames = map[Kind]string{
	Bind:               "bind",
	BindParam:          "bind param",
	BindToPointerType:  "bind to pointer",
	Equal:              "equal",
	Subtype:            "subtype",
	Conversion:         "conv",
	ApplicableFunction: "applicable fn",
	Disjunction:        "disjunction",
	OneWayBind:         "one-way bind",
	OneWayBindParam:    "one-way bind param",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// IsOneWay reports whether the kind induces a one-way dependency instead of
// merging connected components.
func (k Kind) IsOneWay() bool {
	return k == OneWayBind || k == OneWayBindParam
}

// KindFromName resolves the textual form used by constraint-set files back
// to a Kind.
func KindFromName(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return k, true
		}
	}
	return 0, false
}
