package basic

import (
	"fmt"
	"regexp"

	"apidrift/internal/ext"
	"apidrift/internal/filter"
	"apidrift/internal/model"
)

// ElementFilter is the built-in filter provider, extension id "filter".
// Configuration:
//
//	{"elements": {"include": ["re:..."], "exclude": ["..."]}}
//
// Patterns match element strings, "re:"-prefixed entries as regular
// expressions. Exclusion wins over inclusion. An element that matches no
// include pattern directly stays undecided until its subtree finishes: it
// is kept when any descendant was included, so containers of included
// elements survive.
type ElementFilter struct {
	include []pattern
	exclude []pattern
}

type pattern struct {
	re    *regexp.Regexp
	exact string
}

func (p pattern) matches(s string) bool {
	if p.re != nil {
		return p.re.MatchString(s)
	}
	return p.exact == s
}

func parsePatterns(raw any) ([]pattern, error) {
	list, ok := raw.([]any)
	if !ok {
		return nil, nil
	}
	out := make([]pattern, 0, len(list))
	for i, entry := range list {
		s, ok := entry.(string)
		if !ok {
			return nil, fmt.Errorf("pattern %d is not a string", i)
		}
		if len(s) > 3 && s[:3] == "re:" {
			re, err := regexp.Compile(s[3:])
			if err != nil {
				return nil, fmt.Errorf("pattern %q: %w", s, err)
			}
			out = append(out, pattern{re: re})
			continue
		}
		out = append(out, pattern{exact: s})
	}
	return out, nil
}

// NewElementFilter returns an unconfigured provider.
func NewElementFilter() *ElementFilter { return &ElementFilter{} }

// ExtensionID implements ext.Extension.
func (*ElementFilter) ExtensionID() string { return "filter" }

// Close implements ext.Extension.
func (*ElementFilter) Close() error { return nil }

// Configure implements ext.Extension.
func (f *ElementFilter) Configure(ctx *ext.Context) error {
	f.include, f.exclude = nil, nil
	if ctx.Config == nil {
		return nil
	}
	elements, ok := ctx.Config["elements"].(map[string]any)
	if !ok {
		return nil
	}
	var err error
	if f.include, err = parsePatterns(elements["include"]); err != nil {
		return fmt.Errorf("elements.include: %w", err)
	}
	if f.exclude, err = parsePatterns(elements["exclude"]); err != nil {
		return fmt.Errorf("elements.exclude: %w", err)
	}
	return nil
}

// Filter implements ext.FilterProvider. The provider is format-agnostic and
// returns a fresh filter per call.
func (f *ElementFilter) Filter(string) (filter.TreeFilter, bool) {
	if len(f.include) == 0 && len(f.exclude) == 0 {
		return filter.MatchAndDescend(), true
	}
	return &elementTreeFilter{provider: f}, true
}

type filterFrame struct {
	element      *model.Element
	undecided    bool
	childMatched bool
}

type elementTreeFilter struct {
	provider *ElementFilter
	stack    []filterFrame
	pending  map[*model.Element]filter.FinishResult
}

func (tf *elementTreeFilter) Start(e *model.Element) filter.StartResult {
	fr := filterFrame{element: e}
	res := tf.startResult(e, &fr)
	tf.stack = append(tf.stack, fr)
	return res
}

func (tf *elementTreeFilter) startResult(e *model.Element, fr *filterFrame) filter.StartResult {
	for _, p := range tf.provider.exclude {
		if p.matches(e.String()) {
			return filter.ExcludeResult()
		}
	}
	if len(tf.provider.include) == 0 {
		fr.childMatched = true
		return filter.MatchAndDescendResult()
	}
	for _, p := range tf.provider.include {
		if p.matches(e.String()) {
			fr.childMatched = true
			return filter.MatchAndDescendResult()
		}
	}
	fr.undecided = true
	return filter.UndecidedResult()
}

func (tf *elementTreeFilter) Finish(e *model.Element) filter.FinishResult {
	top := len(tf.stack) - 1
	fr := tf.stack[top]
	tf.stack = tf.stack[:top]

	var res filter.FinishResult
	switch {
	case !fr.undecided:
		res = filter.FinishResult{Match: filter.Undecided}
	case fr.childMatched:
		res = filter.Matches()
	default:
		// Still unknown: a later sibling subtree cannot re-include this
		// element, so resolve at FinishAll time.
		res = filter.FinishResult{Match: filter.Undecided}
		if tf.pending == nil {
			tf.pending = make(map[*model.Element]filter.FinishResult)
		}
		tf.pending[e] = filter.FinishResult{Match: filter.False}
	}
	if len(tf.stack) > 0 && fr.childMatched {
		tf.stack[len(tf.stack)-1].childMatched = true
	}
	return res
}

func (tf *elementTreeFilter) FinishAll() map[*model.Element]filter.FinishResult {
	out := tf.pending
	tf.pending = nil
	return out
}
