package filter

import "apidrift/internal/model"

// TreeFilter is queried by a depth-first caller. Start is invoked before an
// element's children are processed, Finish(element) after, LIFO-nested.
// FinishAll runs once at the end of the traversal and resolves elements the
// filter left undecided.
type TreeFilter interface {
	Start(e *model.Element) StartResult
	Finish(e *model.Element) FinishResult
	FinishAll() map[*model.Element]FinishResult
}

type matchAndDescend struct{}

func (matchAndDescend) Start(*model.Element) StartResult   { return MatchAndDescendResult() }
func (matchAndDescend) Finish(*model.Element) FinishResult { return Matches() }
func (matchAndDescend) FinishAll() map[*model.Element]FinishResult {
	return nil
}

// MatchAndDescend returns a filter that admits everything.
func MatchAndDescend() TreeFilter { return matchAndDescend{} }

type merged struct {
	fs           []TreeFilter
	mergeStart   func(StartResult, StartResult) StartResult
	mergeFinish  func(FinishResult, FinishResult) FinishResult
	defaultStart StartResult
	defaultFin   FinishResult
}

func (m *merged) Start(e *model.Element) StartResult {
	if len(m.fs) == 0 {
		return m.defaultStart
	}
	res := m.fs[0].Start(e)
	for _, f := range m.fs[1:] {
		res = m.mergeStart(res, f.Start(e))
	}
	return res
}

func (m *merged) Finish(e *model.Element) FinishResult {
	if len(m.fs) == 0 {
		return m.defaultFin
	}
	res := m.fs[0].Finish(e)
	for _, f := range m.fs[1:] {
		res = m.mergeFinish(res, f.Finish(e))
	}
	return res
}

func (m *merged) FinishAll() map[*model.Element]FinishResult {
	out := make(map[*model.Element]FinishResult)
	for _, f := range m.fs {
		for e, res := range f.FinishAll() {
			if prev, ok := out[e]; ok {
				out[e] = m.mergeFinish(prev, res)
				continue
			}
			out[e] = res
		}
	}
	return out
}

// Intersection returns a filter that matches when all of fs match. With no
// filters it matches everything.
func Intersection(fs ...TreeFilter) TreeFilter {
	return &merged{
		fs:           fs,
		mergeStart:   StartResult.And,
		mergeFinish:  FinishResult.And,
		defaultStart: MatchAndDescendResult(),
		defaultFin:   Matches(),
	}
}

// Union returns a filter that matches when at least one of fs matches. With
// no filters it matches everything.
func Union(fs ...TreeFilter) TreeFilter {
	return &merged{
		fs:           fs,
		mergeStart:   StartResult.Or,
		mergeFinish:  FinishResult.Or,
		defaultStart: MatchAndDescendResult(),
		defaultFin:   Matches(),
	}
}
