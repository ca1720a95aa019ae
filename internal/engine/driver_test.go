package engine_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"apidrift/internal/archive"
	"apidrift/internal/basic"
	"apidrift/internal/check"
	"apidrift/internal/diff"
	"apidrift/internal/engine"
	"apidrift/internal/ext"
	"apidrift/internal/filter"
	"apidrift/internal/jsondoc"
	"apidrift/internal/match"
	"apidrift/internal/model"
	"apidrift/internal/pipeline"
	"apidrift/internal/report"
	"apidrift/internal/transform"
	"apidrift/internal/walker"
)

func docSet(name, content string) archive.Set {
	return archive.Set{Primary: []archive.Archive{archive.Memory{Label: name, Data: []byte(content)}}}
}

func baseConfig(collector *report.Collecting) *pipeline.Configuration {
	cfg := pipeline.New()
	cfg.Analyzers = []func() archive.APIAnalyzer{
		func() archive.APIAnalyzer { return jsondoc.NewAnalyzer() },
	}
	cfg.Matchers = []func() ext.Matcher{
		func() ext.Matcher { return match.PatternMatcher{} },
	}
	cfg.Reporters = []func() report.Reporter{
		func() report.Reporter { return collector },
	}
	return cfg
}

func runDriver(t *testing.T, cfg *pipeline.Configuration, oldSet, newSet archive.Set) *engine.Result {
	t.Helper()
	d := engine.NewDriver(cfg, oldSet, newSet)
	defer d.Close()
	if err := d.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	res, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return res
}

func TestEndToEndValueChange(t *testing.T) {
	col := &report.Collecting{}
	cfg := baseConfig(col)

	res := runDriver(t, cfg,
		docSet("cfg.json", `{"replicas": 2}`),
		docSet("cfg.json", `{"replicas": 3}`))

	if res.Differences != 1 {
		t.Fatalf("expected 1 difference, got %d", res.Differences)
	}
	ds := col.AllDifferences()
	if len(ds) != 1 || ds[0].Code != jsondoc.CodeChanged {
		t.Fatalf("differences = %v", ds)
	}
	// P6: every emitted difference carries a criticality from the set.
	if ds[0].Criticality.IsZero() {
		t.Fatalf("difference without criticality: %+v", ds[0])
	}
	if res.MaxCriticality != diff.CriticalityError {
		t.Fatalf("max criticality = %v", res.MaxCriticality)
	}
}

func TestIdenticalInputsReportNoDifferences(t *testing.T) {
	col := &report.Collecting{}
	res := runDriver(t, baseConfig(col),
		docSet("cfg.json", `{"a": [1, 2]}`),
		docSet("cfg.json", `{"a": [1, 2]}`))

	if res.Differences != 0 {
		t.Fatalf("identical inputs produced %d differences", res.Differences)
	}
	if res.Reports == 0 {
		t.Fatalf("every included pair should still be reported")
	}
}

func TestDeterministicReports(t *testing.T) {
	run := func() []byte {
		var buf bytes.Buffer
		cfg := pipeline.New()
		cfg.Analyzers = []func() archive.APIAnalyzer{
			func() archive.APIAnalyzer { return jsondoc.NewAnalyzer() },
		}
		cfg.Matchers = []func() ext.Matcher{
			func() ext.Matcher { return match.PatternMatcher{} },
		}
		cfg.Reporters = []func() report.Reporter{
			func() report.Reporter { return report.NewJSON(&buf) },
		}
		d := engine.NewDriver(cfg,
			docSet("cfg.json", `{"b": 1, "a": {"x": [1, 2, 3]}, "c": true}`),
			docSet("cfg.json", `{"b": 2, "a": {"x": [1, 3]}, "d": "new"}`))
		defer d.Close()
		if err := d.Open(); err != nil {
			t.Fatalf("Open: %v", err)
		}
		if _, err := d.Run(context.Background()); err != nil {
			t.Fatalf("Run: %v", err)
		}
		if err := d.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}
		return buf.Bytes()
	}
	first := run()
	second := run()
	if !bytes.Equal(first, second) {
		t.Fatalf("reports differ across runs:\n%s\n---\n%s", first, second)
	}
	if len(first) == 0 {
		t.Fatalf("expected some report output")
	}
}

func TestDifferencesTransformViaConfig(t *testing.T) {
	col := &report.Collecting{}
	cfg := baseConfig(col)
	cfg.Transforms = []func() transform.Transform{
		func() transform.Transform { return basic.NewDifferences() },
	}
	cfg.ExtensionConfigs = []pipeline.ExtensionConfig{{
		Extension: "differences",
		Config: map[string]any{"differences": []any{
			map[string]any{"code": jsondoc.CodeChanged, "ignore": true},
		}},
	}}

	res := runDriver(t, cfg,
		docSet("cfg.json", `{"replicas": 2}`),
		docSet("cfg.json", `{"replicas": 3}`))

	if res.Differences != 0 {
		t.Fatalf("ignored difference still reported: %v", col.AllDifferences())
	}
}

func TestUnknownTransformBlockIDFailsRun(t *testing.T) {
	col := &report.Collecting{}
	cfg := baseConfig(col)
	cfg.TransformBlocks = [][]string{{"no-such-transform"}}

	d := engine.NewDriver(cfg, docSet("a.json", `{}`), docSet("a.json", `{}`))
	defer d.Close()
	if err := d.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := d.Run(context.Background()); !errors.Is(err, pipeline.ErrConfigInvalid) {
		t.Fatalf("expected ErrConfigInvalid, got %v", err)
	}
}

func TestElementFilterNarrowsReports(t *testing.T) {
	col := &report.Collecting{}
	cfg := baseConfig(col)
	cfg.FilterProviders = []func() ext.FilterProvider{
		func() ext.FilterProvider { return basic.NewElementFilter() },
	}
	cfg.ExtensionConfigs = []pipeline.ExtensionConfig{{
		Extension: "filter",
		Config: map[string]any{"elements": map[string]any{
			"exclude": []any{"re:ignored"},
		}},
	}}

	runDriver(t, cfg,
		docSet("cfg.json", `{"kept": 1, "ignored": 2}`),
		docSet("cfg.json", `{"kept": 9, "ignored": 9}`))

	for _, r := range col.Reports {
		p := r.Pair().Representative()
		if p != nil && p.Kind() == jsondoc.KindField && p.Signature() == "ignored" {
			t.Fatalf("filtered element was reported")
		}
	}
	ds := col.AllDifferences()
	if len(ds) != 1 {
		t.Fatalf("expected only the kept field's change, got %v", ds)
	}
}

func TestRunCancelled(t *testing.T) {
	col := &report.Collecting{}
	cfg := baseConfig(col)
	d := engine.NewDriver(cfg, docSet("a.json", `{"x": 1}`), docSet("a.json", `{"x": 2}`))
	defer d.Close()
	if err := d.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := d.Run(ctx)
	if !errors.Is(err, walker.ErrCancelled) {
		t.Fatalf("expected cancellation error, got %v", err)
	}
}

func TestRunRequiresOpen(t *testing.T) {
	d := engine.NewDriver(pipeline.New(), archive.Set{}, archive.Set{})
	if _, err := d.Run(context.Background()); !errors.Is(err, engine.ErrNotOpen) {
		t.Fatalf("expected ErrNotOpen, got %v", err)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	col := &report.Collecting{}
	d := engine.NewDriver(baseConfig(col), docSet("a.json", `{}`), docSet("a.json", `{}`))
	if err := d.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := d.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := d.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

// failingAnalyzer simulates an archive that cannot be analyzed.
type failingAnalyzer struct{}

func (failingAnalyzer) ExtensionID() string          { return "failing" }
func (failingAnalyzer) Configure(*ext.Context) error { return nil }
func (failingAnalyzer) Close() error                 { return nil }
func (failingAnalyzer) Checks() []check.Check        { return nil }
func (failingAnalyzer) AnalyzerFor(archive.Set) archive.Analyzer {
	return failingArchiveAnalyzer{}
}

type failingArchiveAnalyzer struct{}

func (failingArchiveAnalyzer) Analyze(context.Context, filter.TreeFilter) (*model.Forest, error) {
	return nil, errors.New("corrupt archive")
}
func (failingArchiveAnalyzer) Prune(*model.Forest) {}
func (failingArchiveAnalyzer) Release() error      { return nil }

func TestAnalyzeFailureIsFatal(t *testing.T) {
	col := &report.Collecting{}
	cfg := baseConfig(col)
	cfg.Analyzers = []func() archive.APIAnalyzer{
		func() archive.APIAnalyzer { return failingAnalyzer{} },
	}
	d := engine.NewDriver(cfg, archive.Set{}, archive.Set{})
	defer d.Close()
	if err := d.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	res, err := d.Run(context.Background())
	if !errors.Is(err, engine.ErrArtifactUnresolved) {
		t.Fatalf("expected ErrArtifactUnresolved, got %v", err)
	}
	if len(res.Fatals) != 1 {
		t.Fatalf("fatal error not recorded: %v", res.Fatals)
	}
}
