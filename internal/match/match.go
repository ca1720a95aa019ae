// Package match provides the built-in element matcher. Expressions are
// matched against the stable human-readable representation of elements:
// either verbatim, or as a regular expression when prefixed with "re:".
package match

import (
	"fmt"
	"regexp"
	"strings"

	"apidrift/internal/ext"
	"apidrift/internal/filter"
	"apidrift/internal/model"
)

// ElementPredicate is the direct evaluation view of a compiled recipe, used
// by transforms that test single elements outside a traversal.
type ElementPredicate interface {
	Matches(e *model.Element) bool
}

// PatternMatcher is the default matcher, extension id "pattern".
type PatternMatcher struct{}

// ExtensionID implements ext.Extension.
func (PatternMatcher) ExtensionID() string { return "pattern" }

// Configure implements ext.Extension. The matcher has no configuration.
func (PatternMatcher) Configure(*ext.Context) error { return nil }

// Close implements ext.Extension.
func (PatternMatcher) Close() error { return nil }

// Compile parses expr into a recipe. "re:" selects regexp matching, any
// other expression matches element strings verbatim.
func (PatternMatcher) Compile(expr string) (ext.Recipe, error) {
	if rest, ok := strings.CutPrefix(expr, "re:"); ok {
		re, err := regexp.Compile(rest)
		if err != nil {
			return nil, fmt.Errorf("invalid match expression %q: %w", expr, err)
		}
		return Recipe{re: re}, nil
	}
	return Recipe{exact: expr}, nil
}

// Recipe is a compiled pattern expression. It understands every forest
// format because it only inspects element strings.
type Recipe struct {
	re    *regexp.Regexp
	exact string
}

// Matches implements ElementPredicate.
func (r Recipe) Matches(e *model.Element) bool {
	if r.re != nil {
		return r.re.MatchString(e.String())
	}
	return e.String() == r.exact
}

// FilterFor implements ext.Recipe.
func (r Recipe) FilterFor(string) (filter.TreeFilter, bool) {
	return &recipeFilter{recipe: r}, true
}

type recipeFilter struct {
	recipe Recipe
}

func (f *recipeFilter) Start(e *model.Element) filter.StartResult {
	return filter.StartResult{
		Match:   filter.FromBool(f.recipe.Matches(e)),
		Descend: filter.True,
	}
}

func (f *recipeFilter) Finish(e *model.Element) filter.FinishResult {
	return filter.FinishResult{Match: filter.FromBool(f.recipe.Matches(e))}
}

func (f *recipeFilter) FinishAll() map[*model.Element]filter.FinishResult {
	return nil
}
