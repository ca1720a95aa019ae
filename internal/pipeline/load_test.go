package pipeline

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"apidrift/internal/diff"
)

const jsonConfig = `{
  "transforms": {"include": ["differences"]},
  "transformBlocks": [["reclassify", "policy"]],
  "criticalities": [
    {"name": "ok", "level": 100},
    {"name": "bad", "level": 200}
  ],
  "severityMapping": {
    "equivalent": "ok",
    "nonBreaking": "ok",
    "potentiallyBreaking": "bad",
    "breaking": "bad"
  },
  "extensions": [
    {"extension": "differences", "id": "reclassify", "configuration": {"differences": []}}
  ],
  "prune": true
}`

const yamlConfig = `
transformBlocks:
  - [reclassify, policy]
criticalities:
  - name: ok
    level: 100
severityMapping:
  equivalent: ok
  nonBreaking: ok
  potentiallyBreaking: ok
  breaking: ok
`

const tomlConfig = `
transformBlocks = [["reclassify", "policy"]]

[[criticalities]]
name = "ok"
level = 100
`

func TestParseJSONConfig(t *testing.T) {
	d, err := Parse([]byte(jsonConfig), "json")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	cfg := New()
	if err := d.ApplyTo(cfg); err != nil {
		t.Fatalf("ApplyTo: %v", err)
	}
	if diffStr := cmp.Diff([][]string{{"reclassify", "policy"}}, cfg.TransformBlocks); diffStr != "" {
		t.Fatalf("transform blocks mismatch (-want +got):\n%s", diffStr)
	}
	if len(cfg.Criticalities) != 2 || cfg.Criticalities[1] != (diff.Criticality{Name: "bad", Level: 200}) {
		t.Fatalf("criticalities = %v", cfg.Criticalities)
	}
	if cfg.SeverityMapping[diff.SeverityBreaking].Name != "bad" {
		t.Fatalf("severity mapping = %v", cfg.SeverityMapping)
	}
	if !cfg.PruneForests {
		t.Fatalf("prune flag lost")
	}
	if len(cfg.ExtensionConfigs) != 1 || cfg.ExtensionConfigs[0].Ref() != "reclassify" {
		t.Fatalf("extension configs = %v", cfg.ExtensionConfigs)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestParseYAMLConfig(t *testing.T) {
	d, err := Parse([]byte(yamlConfig), "yaml")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	cfg := New()
	if err := d.ApplyTo(cfg); err != nil {
		t.Fatalf("ApplyTo: %v", err)
	}
	if len(cfg.TransformBlocks) != 1 || cfg.TransformBlocks[0][0] != "reclassify" {
		t.Fatalf("transform blocks = %v", cfg.TransformBlocks)
	}
}

func TestParseTOMLConfig(t *testing.T) {
	d, err := Parse([]byte(tomlConfig), "toml")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	cfg := New()
	if err := d.ApplyTo(cfg); err != nil {
		t.Fatalf("ApplyTo: %v", err)
	}
	if len(cfg.Criticalities) != 1 || cfg.Criticalities[0].Name != "ok" {
		t.Fatalf("criticalities = %v", cfg.Criticalities)
	}
}

func TestIncompleteSeverityMappingRejected(t *testing.T) {
	d, err := Parse([]byte(`{"criticalities": [{"name": "only", "level": 1}],
		"severityMapping": {"breaking": "only"}}`), "json")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	cfg := New()
	if err := d.ApplyTo(cfg); err != nil {
		t.Fatalf("ApplyTo: %v", err)
	}
	if err := cfg.Validate(); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("expected ErrConfigInvalid, got %v", err)
	}
}

func TestUnknownCriticalityInMappingRejected(t *testing.T) {
	d, err := Parse([]byte(`{"severityMapping": {"breaking": "missing"}}`), "json")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	cfg := New()
	if err := d.ApplyTo(cfg); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("expected ErrConfigInvalid, got %v", err)
	}
}

func TestParseExtensionConfigsArrayShape(t *testing.T) {
	node := []any{
		map[string]any{"extension": "differences", "id": "a", "configuration": map[string]any{}},
		map[string]any{"extension": "filter"},
	}
	out, err := ParseExtensionConfigs(node)
	if err != nil {
		t.Fatalf("ParseExtensionConfigs: %v", err)
	}
	if len(out) != 2 || out[0].Ref() != "a" || out[1].Ref() != "filter" {
		t.Fatalf("parsed = %v", out)
	}
}

func TestParseExtensionConfigsLegacyShape(t *testing.T) {
	node := map[string]any{
		"filter":      map[string]any{"elements": map[string]any{}},
		"differences": map[string]any{},
	}
	out, err := ParseExtensionConfigs(node)
	if err != nil {
		t.Fatalf("ParseExtensionConfigs: %v", err)
	}
	// Legacy objects come back in key order for determinism.
	if len(out) != 2 || out[0].Extension != "differences" || out[1].Extension != "filter" {
		t.Fatalf("parsed = %v", out)
	}
}

func TestIncludeExclude(t *testing.T) {
	ie := IncludeExclude{Include: []string{"a", "b"}, Exclude: []string{"b"}}
	if !ie.Admits("a") || ie.Admits("b") || ie.Admits("c") {
		t.Fatalf("include/exclude semantics broken")
	}
	open := IncludeExclude{Exclude: []string{"x"}}
	if !open.Admits("anything") || open.Admits("x") {
		t.Fatalf("empty include must admit everything not excluded")
	}
}
