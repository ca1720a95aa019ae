package model

import (
	"iter"
	"sort"
)

// Forest is the ordered set of root elements for one API, tagged with the
// extension id of the archive analyzer that produced it.
type Forest struct {
	roots  []*Element
	origin string
}

// NewForest creates an empty forest. origin is the extension id of the
// producing analyzer; recipes use it to select the right compiled filter.
func NewForest(origin string) *Forest {
	return &Forest{origin: origin}
}

// Origin returns the extension id of the producing analyzer.
func (f *Forest) Origin() string { return f.origin }

// Roots returns the sorted root slice. Callers must not modify it.
func (f *Forest) Roots() []*Element { return f.roots }

// AddRoot inserts r at its sorted position among the roots. An existing root
// with the same kind and signature wins, mirroring Element.AddChild.
func (f *Forest) AddRoot(r *Element) *Element {
	idx := sort.Search(len(f.roots), func(i int) bool {
		return f.roots[i].Compare(r) >= 0
	})
	if idx < len(f.roots) && f.roots[idx].Compare(r) == 0 {
		return f.roots[idx]
	}
	f.roots = append(f.roots, nil)
	copy(f.roots[idx+1:], f.roots[idx:])
	f.roots[idx] = r
	return r
}

// Stream enumerates all elements of the forest depth-first in walk order.
// A zero kind yields every element.
func (f *Forest) Stream(kind Kind) iter.Seq[*Element] {
	return func(yield func(*Element) bool) {
		for _, r := range f.roots {
			if kind.IsZero() || r.Kind() == kind {
				if !yield(r) {
					return
				}
			}
			for e := range r.Stream(kind, true) {
				if !yield(e) {
					return
				}
			}
		}
	}
}

// Remove detaches e and its subtree from the forest and strips every
// reference edge into or out of the removed elements, keeping the
// referencing sets symmetric.
func (f *Forest) Remove(e *Element) {
	removed := map[*Element]struct{}{e: {}}
	for d := range e.Stream(Kind{}, true) {
		removed[d] = struct{}{}
	}
	for d := range removed {
		for k := range d.refs {
			for _, target := range d.refs[k] {
				if _, gone := removed[target]; !gone {
					target.dropBackRefsFrom(d)
				}
			}
		}
		for _, ref := range d.backRefs {
			if _, gone := removed[ref.From]; !gone {
				ref.From.dropReferencesTo(d)
			}
		}
	}
	if e.parent != nil {
		e.parent.RemoveChild(e)
		return
	}
	for i, r := range f.roots {
		if r == e {
			f.roots = append(f.roots[:i], f.roots[i+1:]...)
			return
		}
	}
}
