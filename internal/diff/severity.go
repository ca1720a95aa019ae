// Package diff defines the difference model: codes, per-dimension
// classification, criticalities and the builder producers use to assemble
// findings.
package diff

import "fmt"

// Severity grades the compatibility impact of a difference within one
// dimension. Values order from harmless to breaking.
type Severity uint8

const (
	// SeverityEquivalent means no observable impact.
	SeverityEquivalent Severity = iota
	// SeverityNonBreaking means an impact that cannot break consumers.
	SeverityNonBreaking
	// SeverityPotentiallyBreaking means an impact that breaks consumers in
	// some scenarios.
	SeverityPotentiallyBreaking
	// SeverityBreaking means a guaranteed break.
	SeverityBreaking

	severityCount
)

var severityNames = [...]string{
	SeverityEquivalent:          "equivalent",
	SeverityNonBreaking:         "nonBreaking",
	SeverityPotentiallyBreaking: "potentiallyBreaking",
	SeverityBreaking:            "breaking",
}

func (s Severity) String() string {
	if int(s) < len(severityNames) {
		return severityNames[s]
	}
	return "unknown"
}

// Severities lists all severities in ascending order.
func Severities() []Severity {
	return []Severity{SeverityEquivalent, SeverityNonBreaking, SeverityPotentiallyBreaking, SeverityBreaking}
}

// ParseSeverity resolves a severity name.
func ParseSeverity(name string) (Severity, error) {
	for i, n := range severityNames {
		if n == name {
			return Severity(i), nil
		}
	}
	return 0, fmt.Errorf("unknown severity %q", name)
}

// Dimension is the axis a severity applies to.
type Dimension uint8

const (
	// DimensionSource is source-level compatibility.
	DimensionSource Dimension = iota
	// DimensionBinary is binary-level compatibility.
	DimensionBinary
	// DimensionSemantic is semantic compatibility.
	DimensionSemantic
	// DimensionOther is any format-specific axis.
	DimensionOther

	dimensionCount
)

var dimensionNames = [...]string{
	DimensionSource:   "source",
	DimensionBinary:   "binary",
	DimensionSemantic: "semantic",
	DimensionOther:    "other",
}

func (d Dimension) String() string {
	if int(d) < len(dimensionNames) {
		return dimensionNames[d]
	}
	return "unknown"
}

// Dimensions lists all dimensions in declaration order.
func Dimensions() []Dimension {
	return []Dimension{DimensionSource, DimensionBinary, DimensionSemantic, DimensionOther}
}

// ParseDimension resolves a dimension name.
func ParseDimension(name string) (Dimension, error) {
	for i, n := range dimensionNames {
		if n == name {
			return Dimension(i), nil
		}
	}
	return 0, fmt.Errorf("unknown compatibility dimension %q", name)
}
