package filter

import "apidrift/internal/model"

// Apply runs the full filter protocol over a constructed forest and records
// the verdicts on the elements' included flags. Archive analyzers call this
// at the end of Analyze so the walker never re-filters.
//
// Start and Finish(element) are paired LIFO for every visited element.
// Elements the filter leaves undecided are buffered and resolved by the
// terminal FinishAll; anything still undecided after that is included.
// Children of a non-descended element stay included by default.
func Apply(f *model.Forest, tf TreeFilter) {
	undecided := make(map[*model.Element]struct{})

	var walk func(e *model.Element)
	walk = func(e *model.Element) {
		start := tf.Start(e)
		if start.Descend != False {
			for _, c := range e.Children() {
				walk(c)
			}
		}
		fin := tf.Finish(e)
		verdict := start.Match
		if fin.Match != Undecided {
			verdict = fin.Match
		}
		switch verdict {
		case Undecided:
			undecided[e] = struct{}{}
		default:
			e.SetIncluded(verdict == True)
		}
	}

	for _, r := range f.Roots() {
		walk(r)
	}

	for e, res := range tf.FinishAll() {
		if _, ok := undecided[e]; !ok {
			continue
		}
		if res.Match != Undecided {
			e.SetIncluded(res.Match == True)
			delete(undecided, e)
		}
	}
	for e := range undecided {
		e.SetIncluded(true)
	}
}
