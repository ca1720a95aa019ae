// Package report defines the report record handed to reporters and the
// built-in reporter implementations.
package report

import (
	"apidrift/internal/diff"
	"apidrift/internal/ext"
	"apidrift/internal/model"
)

// Report is the finding set for one matched element pair. Reports arrive at
// reporters serially in walk order.
type Report struct {
	Old         *model.Element
	New         *model.Element
	Differences []diff.Difference
}

// Pair returns the report's element pair.
func (r Report) Pair() model.Pair { return model.Pair{Old: r.Old, New: r.New} }

// MaxCriticality returns the highest criticality among the report's
// differences, zero when the report is empty.
func (r Report) MaxCriticality() diff.Criticality {
	var max diff.Criticality
	for _, d := range r.Differences {
		if max.IsZero() || d.Criticality.Level > max.Level {
			max = d.Criticality
		}
	}
	return max
}

// Reporter consumes final reports. A failing reporter is isolated by the
// driver: it neither stops the walk nor affects other reporters.
type Reporter interface {
	ext.Extension

	Report(r Report) error
}

// Collecting buffers every report it receives, preserving walk order. Used
// by tests and by programmatic consumers of the engine.
type Collecting struct {
	Reports []Report
}

// ExtensionID implements ext.Extension.
func (*Collecting) ExtensionID() string { return "collect" }

// Configure implements ext.Extension.
func (*Collecting) Configure(*ext.Context) error { return nil }

// Close implements ext.Extension.
func (*Collecting) Close() error { return nil }

// Report implements Reporter.
func (c *Collecting) Report(r Report) error {
	c.Reports = append(c.Reports, r)
	return nil
}

// AllDifferences flattens the buffered reports, preserving order.
func (c *Collecting) AllDifferences() []diff.Difference {
	var out []diff.Difference
	for _, r := range c.Reports {
		out = append(out, r.Differences...)
	}
	return out
}
