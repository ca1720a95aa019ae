package model

import "strings"

// Kind tags an element with its structural role. Kinds are plain values so
// archive analyzers can introduce format-specific ones without registration.
type Kind struct {
	name       string
	annotation bool
}

// NewKind returns a regular kind with the given name.
func NewKind(name string) Kind {
	return Kind{name: name}
}

// NewAnnotationKind returns a kind that sorts last among siblings. The
// dispatcher relies on this placement to attach annotation findings to the
// enclosing element's report.
func NewAnnotationKind(name string) Kind {
	return Kind{name: name, annotation: true}
}

// Common kinds shared by several back-ends.
var (
	KindType       = NewKind("type")
	KindMethod     = NewKind("method")
	KindField      = NewKind("field")
	KindParameter  = NewKind("parameter")
	KindAnnotation = NewAnnotationKind("annotation")
)

// Name returns the kind name.
func (k Kind) Name() string { return k.name }

// IsAnnotation reports whether the kind is an annotation kind.
func (k Kind) IsAnnotation() bool { return k.annotation }

// IsZero reports whether the kind is the zero value.
func (k Kind) IsZero() bool { return k.name == "" && !k.annotation }

func (k Kind) String() string { return k.name }

// CompareKinds imposes the fixed total order over kinds: annotation kinds
// after all regular kinds, name order inside each group.
func CompareKinds(a, b Kind) int {
	if a.annotation != b.annotation {
		if a.annotation {
			return 1
		}
		return -1
	}
	return strings.Compare(a.name, b.name)
}
