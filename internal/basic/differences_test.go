package basic

import (
	"testing"

	"apidrift/internal/diff"
	"apidrift/internal/ext"
	"apidrift/internal/match"
	"apidrift/internal/model"
	"apidrift/internal/transform"
)

func configured(t *testing.T, rules []any) *Differences {
	t.Helper()
	tr := NewDifferences()
	ctx := &ext.Context{
		Config:        map[string]any{"differences": rules},
		Criticalities: diff.DefaultCriticalities(),
		Matchers:      map[string]ext.Matcher{"pattern": match.PatternMatcher{}},
	}
	if err := tr.Configure(ctx); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	return tr
}

func TestIgnoreRule(t *testing.T) {
	tr := configured(t, []any{
		map[string]any{"code": "jsondoc.changed", "ignore": true},
	})
	res := tr.Transform(model.Pair{}, diff.NewDifference("jsondoc.changed").Build())
	if res.Kind != transform.KindReplace || len(res.Replacements) != 0 {
		t.Fatalf("ignore rule must drop the difference: %+v", res)
	}
}

func TestJustificationAndCriticality(t *testing.T) {
	tr := configured(t, []any{
		map[string]any{
			"code":          "jsondoc.removed",
			"justification": "intentional cleanup",
			"criticality":   "documented",
		},
	})
	res := tr.Transform(model.Pair{}, diff.NewDifference("jsondoc.removed").Build())
	if res.Kind != transform.KindReplace || len(res.Replacements) != 1 {
		t.Fatalf("expected a single replacement: %+v", res)
	}
	got := res.Replacements[0]
	if got.Justification != "intentional cleanup" {
		t.Fatalf("justification not applied: %+v", got)
	}
	if got.Criticality != diff.CriticalityDocumented {
		t.Fatalf("criticality not applied: %+v", got)
	}
}

func TestCodeRegexAndReclassify(t *testing.T) {
	tr := configured(t, []any{
		map[string]any{
			"code":     "jsondoc\\..*",
			"regex":    true,
			"classify": map[string]any{"semantic": "breaking"},
		},
	})
	in := diff.NewDifference("jsondoc.added").
		AddClassification(diff.DimensionSemantic, diff.SeverityPotentiallyBreaking).
		Build()
	res := tr.Transform(model.Pair{}, in)
	if res.Kind != transform.KindReplace {
		t.Fatalf("expected replacement, got %+v", res)
	}
	if res.Replacements[0].Classification[diff.DimensionSemantic] != diff.SeverityBreaking {
		t.Fatalf("reclassification not applied: %+v", res.Replacements[0])
	}
}

func TestElementPredicatesGateRules(t *testing.T) {
	tr := configured(t, []any{
		map[string]any{"code": "c", "old": "type Foo", "ignore": true},
	})

	foo := model.New(model.KindType, "Foo", "type Foo", "")
	bar := model.New(model.KindType, "Bar", "type Bar", "")

	res := tr.Transform(model.Pair{Old: foo, New: foo}, diff.NewDifference("c").Build())
	if res.Kind != transform.KindReplace {
		t.Fatalf("rule should apply to matching old element")
	}
	res = tr.Transform(model.Pair{Old: bar, New: bar}, diff.NewDifference("c").Build())
	if res.Kind != transform.KindUndecided {
		t.Fatalf("rule should not apply to non-matching old element")
	}
	// A half-pair without the bound side cannot satisfy the predicate.
	res = tr.Transform(model.Pair{New: foo}, diff.NewDifference("c").Build())
	if res.Kind != transform.KindUndecided {
		t.Fatalf("old-bound rule must not fire without an old element")
	}
}

func TestInsidePredicateUsesAncestors(t *testing.T) {
	tr := configured(t, []any{
		map[string]any{"code": "c", "inside": "type Container", "ignore": true},
	})

	container := model.New(model.KindType, "Container", "type Container", "")
	member := model.New(model.KindMethod, "m", "method m", "")

	tr.StartTraversal()
	tr.StartElements(model.Pair{Old: container, New: container})
	tr.StartElements(model.Pair{Old: member, New: member})

	res := tr.Transform(model.Pair{Old: member, New: member}, diff.NewDifference("c").Build())
	if res.Kind != transform.KindReplace {
		t.Fatalf("inside rule should match via ancestor")
	}

	tr.EndElements(model.Pair{Old: member, New: member})
	tr.EndElements(model.Pair{Old: container, New: container})

	// Outside the container the rule must not fire.
	tr.StartElements(model.Pair{Old: member, New: member})
	res = tr.Transform(model.Pair{Old: member, New: member}, diff.NewDifference("c").Build())
	if res.Kind != transform.KindUndecided {
		t.Fatalf("inside rule fired without the ancestor")
	}
}

func TestUnknownCriticalityRejected(t *testing.T) {
	tr := NewDifferences()
	ctx := &ext.Context{
		Config: map[string]any{"differences": []any{
			map[string]any{"code": "c", "criticality": "nope"},
		}},
		Criticalities: diff.DefaultCriticalities(),
		Matchers:      map[string]ext.Matcher{"pattern": match.PatternMatcher{}},
	}
	if err := tr.Configure(ctx); err == nil {
		t.Fatalf("expected configuration error for unknown criticality")
	}
}
