// Package basic provides the built-in, format-agnostic extensions: the
// config-driven differences transform and the element filter provider.
package basic

import (
	"fmt"
	"regexp"

	"apidrift/internal/diff"
	"apidrift/internal/ext"
	"apidrift/internal/match"
	"apidrift/internal/model"
	"apidrift/internal/transform"
)

// rule is one entry of the "differences" configuration list.
type rule struct {
	code   string
	codeRe *regexp.Regexp

	old    match.ElementPredicate
	new    match.ElementPredicate
	inside match.ElementPredicate

	ignore        bool
	justification string
	criticality   diff.Criticality
	hasCrit       bool
	classify      map[diff.Dimension]diff.Severity
	attachments   map[string]string
}

func (r *rule) matchesCode(code string) bool {
	if r.codeRe != nil {
		return r.codeRe.MatchString(code)
	}
	return r.code == code
}

// Differences is a transform that rewrites differences according to
// user-supplied recipes: ignore them, attach justifications or attachments,
// override the criticality, or reclassify dimensions. Rules may bind
// predicates to the old element, the new element, or any ancestor of the
// current pair.
type Differences struct {
	rules []rule

	// ancestors tracks the walk so "inside" predicates can consult the
	// enclosing elements of the current pair.
	ancestors []model.Pair
}

// NewDifferences returns an unconfigured transform.
func NewDifferences() *Differences { return &Differences{} }

// ExtensionID implements ext.Extension.
func (*Differences) ExtensionID() string { return "differences" }

// Close implements ext.Extension.
func (*Differences) Close() error { return nil }

// Configure implements ext.Extension. Configuration:
//
//	{"differences": [{"code": "...", "regex": false, "old": "...", "new": "...",
//	  "inside": "...", "ignore": false, "justification": "...",
//	  "criticality": "...", "classify": {"<dimension>": "<severity>"},
//	  "attachments": {"key": "value"}}]}
//
// "code" is required and is a regular expression when "regex" is true;
// "old", "new" and "inside" are matcher expressions. Every other key is
// optional.
func (t *Differences) Configure(ctx *ext.Context) error {
	t.rules = nil
	if ctx.Config == nil {
		return nil
	}
	raw, ok := ctx.Config["differences"].([]any)
	if !ok {
		return nil
	}
	matcher := pickMatcher(ctx)
	for i, entry := range raw {
		m, ok := entry.(map[string]any)
		if !ok {
			return fmt.Errorf("differences[%d]: not an object", i)
		}
		r, err := parseRule(ctx, matcher, m)
		if err != nil {
			return fmt.Errorf("differences[%d]: %w", i, err)
		}
		t.rules = append(t.rules, r)
	}
	return nil
}

func pickMatcher(ctx *ext.Context) ext.Matcher {
	if m, ok := ctx.Matchers["pattern"]; ok {
		return m
	}
	for _, m := range ctx.Matchers {
		return m
	}
	return match.PatternMatcher{}
}

func parseRule(ctx *ext.Context, matcher ext.Matcher, m map[string]any) (rule, error) {
	var r rule
	code, _ := m["code"].(string)
	if code == "" {
		return r, fmt.Errorf("missing code")
	}
	if regex, _ := m["regex"].(bool); regex {
		re, err := regexp.Compile(code)
		if err != nil {
			return r, fmt.Errorf("invalid code regex: %w", err)
		}
		r.codeRe = re
	} else {
		r.code = code
	}

	var err error
	if r.old, err = compilePredicate(matcher, m, "old"); err != nil {
		return r, err
	}
	if r.new, err = compilePredicate(matcher, m, "new"); err != nil {
		return r, err
	}
	if r.inside, err = compilePredicate(matcher, m, "inside"); err != nil {
		return r, err
	}

	r.ignore, _ = m["ignore"].(bool)
	r.justification, _ = m["justification"].(string)
	if name, ok := m["criticality"].(string); ok {
		crit, known := ctx.CriticalityByName(name)
		if !known {
			return r, fmt.Errorf("unknown criticality %q", name)
		}
		r.criticality = crit
		r.hasCrit = true
	}
	if classify, ok := m["classify"].(map[string]any); ok {
		r.classify = make(map[diff.Dimension]diff.Severity, len(classify))
		for dimName, sevVal := range classify {
			dim, err := diff.ParseDimension(dimName)
			if err != nil {
				return r, err
			}
			sevName, _ := sevVal.(string)
			sev, err := diff.ParseSeverity(sevName)
			if err != nil {
				return r, err
			}
			r.classify[dim] = sev
		}
	}
	if atts, ok := m["attachments"].(map[string]any); ok {
		r.attachments = make(map[string]string, len(atts))
		for k, v := range atts {
			r.attachments[k] = fmt.Sprint(v)
		}
	}
	return r, nil
}

func compilePredicate(matcher ext.Matcher, m map[string]any, key string) (match.ElementPredicate, error) {
	expr, ok := m[key].(string)
	if !ok || expr == "" {
		return nil, nil
	}
	recipe, err := matcher.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	pred, ok := recipe.(match.ElementPredicate)
	if !ok {
		return nil, fmt.Errorf("%s: matcher %q does not support direct evaluation", key, matcher.ExtensionID())
	}
	return pred, nil
}

// StartTraversal implements transform.TraversalListener.
func (t *Differences) StartTraversal() { t.ancestors = t.ancestors[:0] }

// StartElements implements transform.TraversalListener.
func (t *Differences) StartElements(p model.Pair) { t.ancestors = append(t.ancestors, p) }

// EndElements implements transform.TraversalListener.
func (t *Differences) EndElements(model.Pair) {
	if len(t.ancestors) > 0 {
		t.ancestors = t.ancestors[:len(t.ancestors)-1]
	}
}

// EndTraversal implements transform.TraversalListener.
func (t *Differences) EndTraversal() {}

// Transform implements transform.Transform: the first applicable rule
// decides.
func (t *Differences) Transform(p model.Pair, d diff.Difference) transform.Resolution {
	for i := range t.rules {
		r := &t.rules[i]
		if !r.matchesCode(d.Code) || !t.ruleApplies(r, p) {
			continue
		}
		if r.ignore {
			return transform.Discard()
		}
		nd := t.rewrite(r, d)
		if nd.Equal(d) {
			return transform.Keep()
		}
		return transform.ReplaceWith(nd)
	}
	return transform.Undecided()
}

func (t *Differences) ruleApplies(r *rule, p model.Pair) bool {
	if r.old != nil && (p.Old == nil || !r.old.Matches(p.Old)) {
		return false
	}
	if r.new != nil && (p.New == nil || !r.new.Matches(p.New)) {
		return false
	}
	if r.inside != nil {
		// The current pair itself is on top of the ancestor stack.
		for i := len(t.ancestors) - 2; i >= 0; i-- {
			anc := t.ancestors[i]
			if anc.Old != nil && r.inside.Matches(anc.Old) {
				return true
			}
			if anc.New != nil && r.inside.Matches(anc.New) {
				return true
			}
		}
		return false
	}
	return true
}

func (t *Differences) rewrite(r *rule, d diff.Difference) diff.Difference {
	b := diff.From(d)
	if r.justification != "" {
		b.WithJustification(r.justification)
	}
	if r.hasCrit {
		b.WithCriticality(r.criticality)
	}
	for dim, sev := range r.classify {
		b.AddClassification(dim, sev)
	}
	for k, v := range r.attachments {
		b.AddAttachment(k, v)
	}
	return b.Build()
}
