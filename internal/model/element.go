package model

import (
	"iter"
	"sort"
	"strings"
)

// Role marks which archive set an element came from.
type Role uint8

const (
	// RolePrimary marks elements from the archives under comparison.
	RolePrimary Role = iota
	// RoleSupplementary marks elements from archives used only to resolve
	// references.
	RoleSupplementary
)

// Element is one node of a forest. The shared header (kind, signature,
// archive, parent, children) is uniform across back-ends; format-specific
// state hangs off Payload and is dispatched on the kind tag.
type Element struct {
	parent   *Element
	children []*Element
	kind     Kind
	sig      string
	display  string
	archive  string
	role     Role

	refs     [refKindCount][]*Element
	backRefs []Reference

	included        bool
	inAPI           bool
	inAPIThroughUse bool

	// Payload carries per-kind state owned by the producing analyzer.
	Payload any
}

// New creates a detached element. The display string is the stable identity
// key used by matchers and reporters; when empty it falls back to
// "<kind> <signature>".
func New(kind Kind, signature, display, archiveName string) *Element {
	if display == "" {
		display = kind.Name() + " " + signature
	}
	return &Element{
		kind:     kind,
		sig:      signature,
		display:  display,
		archive:  archiveName,
		included: true,
		inAPI:    true,
	}
}

// Kind returns the element's kind tag.
func (e *Element) Kind() Kind { return e.kind }

// Signature returns the per-kind comparable signature.
func (e *Element) Signature() string { return e.sig }

// Archive returns the logical name of the originating archive.
func (e *Element) Archive() string { return e.archive }

// SetArchive updates the recorded provenance. Pruning uses this when an
// inherited supplementary member is adopted by a primary owner.
func (e *Element) SetArchive(name string) { e.archive = name }

// Role returns the archive role of the element.
func (e *Element) Role() Role { return e.role }

// SetRole records the archive role.
func (e *Element) SetRole(r Role) { e.role = r }

// Parent returns the owning element, nil for roots.
func (e *Element) Parent() *Element { return e.parent }

// Included reports whether the element passed tree filtering. Elements start
// included; filter application may flip this.
func (e *Element) Included() bool { return e.included }

// SetIncluded records the filtering verdict.
func (e *Element) SetIncluded(v bool) { e.included = v }

// InAPI reports whether the element is part of the compared API surface.
func (e *Element) InAPI() bool { return e.inAPI }

// InAPIThroughUse reports whether the element entered the API surface only
// by being used from it.
func (e *Element) InAPIThroughUse() bool { return e.inAPIThroughUse }

// MarkInAPIThroughUse records that the element is in the API via a use site.
func (e *Element) MarkInAPIThroughUse() {
	e.inAPI = true
	e.inAPIThroughUse = true
}

func (e *Element) String() string { return e.display }

// Compare orders elements by kind rank, then signature. This is the sibling
// order and the zip order of the paired walk.
func (e *Element) Compare(o *Element) int {
	if c := CompareKinds(e.kind, o.kind); c != 0 {
		return c
	}
	return strings.Compare(e.sig, o.sig)
}

// Children returns the sorted child slice. Callers must not modify it.
func (e *Element) Children() []*Element { return e.children }

// AddChild inserts c at its sorted position and reparents it. If a child
// with the same kind and signature already exists, the existing child is
// returned and c is not inserted.
func (e *Element) AddChild(c *Element) *Element {
	idx := sort.Search(len(e.children), func(i int) bool {
		return e.children[i].Compare(c) >= 0
	})
	if idx < len(e.children) && e.children[idx].Compare(c) == 0 {
		return e.children[idx]
	}
	c.parent = e
	e.children = append(e.children, nil)
	copy(e.children[idx+1:], e.children[idx:])
	e.children[idx] = c
	return c
}

// RemoveChild detaches c from the element. Reference edges touching the
// removed subtree are left to the caller (see Forest.Remove).
func (e *Element) RemoveChild(c *Element) bool {
	for i, ch := range e.children {
		if ch == c {
			e.children = append(e.children[:i], e.children[i+1:]...)
			c.parent = nil
			return true
		}
	}
	return false
}

// Child looks up a direct child by kind and signature.
func (e *Element) Child(kind Kind, signature string) *Element {
	probe := &Element{kind: kind, sig: signature}
	idx := sort.Search(len(e.children), func(i int) bool {
		return e.children[i].Compare(probe) >= 0
	})
	if idx < len(e.children) && e.children[idx].Compare(probe) == 0 {
		return e.children[idx]
	}
	return nil
}

// AddReference records a typed edge from e to target and the symmetric entry
// in the target's referencing set. Duplicate edges collapse.
func (e *Element) AddReference(kind RefKind, target *Element) {
	for _, t := range e.refs[kind] {
		if t == target {
			return
		}
	}
	e.refs[kind] = append(e.refs[kind], target)
	target.backRefs = append(target.backRefs, Reference{Kind: kind, From: e})
}

// References returns the targets of outgoing edges of the given kind.
func (e *Element) References(kind RefKind) []*Element {
	return e.refs[kind]
}

// ReferencedBy returns the inverse referencing set, in edge insertion order.
func (e *Element) ReferencedBy() []Reference {
	return e.backRefs
}

func (e *Element) dropReferencesTo(target *Element) {
	for k := range e.refs {
		refs := e.refs[k]
		for i := 0; i < len(refs); {
			if refs[i] == target {
				refs = append(refs[:i], refs[i+1:]...)
				continue
			}
			i++
		}
		e.refs[k] = refs
	}
}

func (e *Element) dropBackRefsFrom(src *Element) {
	for i := 0; i < len(e.backRefs); {
		if e.backRefs[i].From == src {
			e.backRefs = append(e.backRefs[:i], e.backRefs[i+1:]...)
			continue
		}
		i++
	}
}

// Stream enumerates the subtree under e depth-first in sibling order,
// excluding e itself. A zero kind yields every element; otherwise only
// elements of that kind are produced. With recursive false only direct
// children are considered.
func (e *Element) Stream(kind Kind, recursive bool) iter.Seq[*Element] {
	return func(yield func(*Element) bool) {
		if !recursive {
			for _, c := range e.children {
				if !kind.IsZero() && c.kind != kind {
					continue
				}
				if !yield(c) {
					return
				}
			}
			return
		}
		stack := make([]*Element, 0, len(e.children))
		for i := len(e.children) - 1; i >= 0; i-- {
			stack = append(stack, e.children[i])
		}
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if kind.IsZero() || cur.kind == kind {
				if !yield(cur) {
					return
				}
			}
			for i := len(cur.children) - 1; i >= 0; i-- {
				stack = append(stack, cur.children[i])
			}
		}
	}
}
