// Package pipeline models the configuration of the analysis pipeline
// itself: which extensions participate, how transforms group into blocks,
// and how severities map to criticalities. This is distinct from the
// configuration of individual extensions, which travels as opaque subtrees
// to ext.Context.
package pipeline

import (
	"fmt"

	"apidrift/internal/archive"
	"apidrift/internal/diff"
	"apidrift/internal/ext"
	"apidrift/internal/report"
	"apidrift/internal/transform"
)

// IncludeExclude restricts the instances of one extension category by
// extension id after construction. An empty include list admits everything
// not excluded.
type IncludeExclude struct {
	Include []string
	Exclude []string
}

// Admits reports whether the given extension id passes the lists.
func (ie IncludeExclude) Admits(id string) bool {
	for _, e := range ie.Exclude {
		if e == id {
			return false
		}
	}
	if len(ie.Include) == 0 {
		return true
	}
	for _, i := range ie.Include {
		if i == id {
			return true
		}
	}
	return false
}

// Configuration is the explicit extension universe of one analysis run. The
// kernel never discovers extensions; every constructor is supplied here.
type Configuration struct {
	Analyzers       []func() archive.APIAnalyzer
	FilterProviders []func() ext.FilterProvider
	Transforms      []func() transform.Transform
	Reporters       []func() report.Reporter
	Matchers        []func() ext.Matcher

	// Per-category include/exclude lists.
	AnalyzerFilter  IncludeExclude
	ProviderFilter  IncludeExclude
	TransformFilter IncludeExclude
	ReporterFilter  IncludeExclude
	MatcherFilter   IncludeExclude

	// TransformBlocks groups transforms, referenced by instance id first
	// and extension id second. Transforms in no block each form their own.
	TransformBlocks [][]string

	Criticalities   []diff.Criticality
	SeverityMapping diff.SeverityMapping

	// MaxIterations caps each block's fixpoint loop; 0 selects the
	// default.
	MaxIterations int

	// ExtensionConfigs carries the per-extension configuration subtrees.
	ExtensionConfigs []ExtensionConfig

	// PruneForests enables supplementary-element pruning after analysis.
	PruneForests bool
}

// New returns a configuration preloaded with the canonical criticality set
// and severity mapping. Extension constructors are the caller's to supply.
func New() *Configuration {
	return &Configuration{
		Criticalities:   diff.DefaultCriticalities(),
		SeverityMapping: diff.DefaultSeverityMapping(),
	}
}

// Validate performs the static checks that must pass before any analysis
// begins. Block id resolution against instances happens when the engine run
// starts, before any analysis.
func (c *Configuration) Validate() error {
	seen := make(map[string]struct{}, len(c.Criticalities))
	for _, cr := range c.Criticalities {
		if cr.Name == "" {
			return fmt.Errorf("%w: criticality with empty name", ErrConfigInvalid)
		}
		if _, dup := seen[cr.Name]; dup {
			return fmt.Errorf("%w: duplicate criticality %q", ErrConfigInvalid, cr.Name)
		}
		seen[cr.Name] = struct{}{}
	}
	if err := c.SeverityMapping.Validate(c.Criticalities); err != nil {
		return fmt.Errorf("%w: %v", ErrConfigInvalid, err)
	}
	for bi, block := range c.TransformBlocks {
		if len(block) == 0 {
			return fmt.Errorf("%w: transform block %d is empty", ErrConfigInvalid, bi)
		}
		for _, id := range block {
			if id == "" {
				return fmt.Errorf("%w: transform block %d contains an empty id", ErrConfigInvalid, bi)
			}
		}
	}
	return nil
}

// CriticalityByName resolves a configured criticality.
func (c *Configuration) CriticalityByName(name string) (diff.Criticality, bool) {
	for _, cr := range c.Criticalities {
		if cr.Name == name {
			return cr, true
		}
	}
	return diff.Criticality{}, false
}
