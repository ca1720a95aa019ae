package model

// RefKind classifies a directed edge between two elements.
type RefKind uint8

const (
	// RefContains links a container to a member.
	RefContains RefKind = iota
	// RefAnnotates links an annotation to the element it decorates.
	RefAnnotates
	// RefHasType links a field or variable to its type.
	RefHasType
	// RefReturnType links a method to its return type.
	RefReturnType
	// RefParameterType links a parameter to its type.
	RefParameterType
	// RefIsImplemented links a type to an interface it implements.
	RefIsImplemented
	// RefIsInherited links an inheriting owner to a member it inherits.
	RefIsInherited
	// RefIsThrown links a method to a type it throws.
	RefIsThrown
	// RefTypeParameterOrBound links a generic declaration to a type
	// parameter or one of its bounds.
	RefTypeParameterOrBound

	refKindCount
)

var refKindNames = [...]string{
	RefContains:             "contains",
	RefAnnotates:            "annotates",
	RefHasType:              "has-type",
	RefReturnType:           "return-type",
	RefParameterType:        "parameter-type",
	RefIsImplemented:        "is-implemented",
	RefIsInherited:          "is-inherited",
	RefIsThrown:             "is-thrown",
	RefTypeParameterOrBound: "type-parameter-or-bound",
}

func (k RefKind) String() string {
	if int(k) < len(refKindNames) {
		return refKindNames[k]
	}
	return "unknown"
}

// MovesToAPI reports whether the edge kind pulls its target into the API
// surface. Pruning retains supplementary elements only when reachable from a
// primary element through such edges.
func (k RefKind) MovesToAPI() bool {
	switch k {
	case RefContains, RefHasType, RefReturnType, RefParameterType,
		RefIsImplemented, RefIsInherited, RefTypeParameterOrBound:
		return true
	}
	return false
}

// Reference is one inverse entry in a referencing set: the edge kind and the
// element the edge originates from.
type Reference struct {
	Kind RefKind
	From *Element
}
