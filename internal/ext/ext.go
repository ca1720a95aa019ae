// Package ext holds the contracts every pluggable extension implements:
// archive analyzers, filter providers, transforms, reporters and matchers.
// The kernel never discovers extensions; callers hand it typed constructors
// through the pipeline configuration.
package ext

import (
	"apidrift/internal/diff"
	"apidrift/internal/filter"
)

// Extension is the common contract of all pluggable pieces. The extension id
// is a plain string embedded in each instance; it doubles as the default
// reference in transform blocks and include/exclude lists.
type Extension interface {
	// ExtensionID returns the stable extension id, e.g. "jsondoc" or
	// "differences". An empty id is allowed for anonymous extensions.
	ExtensionID() string
	// Configure hands the extension its configuration subtree and the
	// per-run context. Called once before analysis starts.
	Configure(ctx *Context) error
	// Close releases any resources. Must be idempotent.
	Close() error
}

// Context is the per-run analysis context handed to every extension at
// configure time. It carries the extension's JSON-shaped configuration
// subtree and the run-wide collaborator sets.
type Context struct {
	// Config is the extension's configuration subtree, decoded from JSON,
	// YAML or TOML into plain maps/slices/scalars.
	Config map[string]any
	// Criticalities is the configured criticality set.
	Criticalities []diff.Criticality
	// Matchers maps extension ids to the recognized element matchers.
	Matchers map[string]Matcher
}

// CriticalityByName resolves a configured criticality label.
func (c *Context) CriticalityByName(name string) (diff.Criticality, bool) {
	for _, cr := range c.Criticalities {
		if cr.Name == name {
			return cr, true
		}
	}
	return diff.Criticality{}, false
}

// Schemer is optionally implemented by extensions that publish a JSON
// schema document describing their configuration.
type Schemer interface {
	ConfigSchema() string
}

// Matcher parses user expressions into compiled recipes.
type Matcher interface {
	Extension
	Compile(expr string) (Recipe, error)
}

// Recipe is a compiled matcher expression. FilterFor returns a tree filter
// evaluating the predicate for forests produced by the analyzer with the
// given extension id; ok is false when the recipe does not understand that
// format.
type Recipe interface {
	FilterFor(origin string) (filter.TreeFilter, bool)
}

// FilterProvider contributes a tree filter to the analysis. The driver
// intersects the filters of all providers and passes the result to the
// archive analyzers.
type FilterProvider interface {
	Extension
	// Filter returns the provider's filter for forests of the analyzer
	// with the given extension id; ok is false when the provider has no
	// opinion about that format.
	Filter(origin string) (f filter.TreeFilter, ok bool)
}
