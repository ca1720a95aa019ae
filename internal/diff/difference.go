package diff

import (
	"sort"
	"strings"
)

// Difference is one classified finding about an element pair. Treat values
// as immutable once built; transforms replace rather than mutate.
type Difference struct {
	// Code is the stable machine identifier, e.g. "jsondoc.removed".
	Code string
	// Name is a short human label.
	Name string
	// Description explains the finding.
	Description string
	// Classification maps each affected dimension to a severity.
	Classification map[Dimension]Severity
	// Criticality is assigned from the severity mapping after checks run;
	// transforms may override it with any configured label.
	Criticality Criticality
	// Justification records why the difference is acceptable, when it is.
	Justification string
	// Attachments carry free-form data for reporters.
	Attachments map[string]string
	// IdentifyingAttachments names the attachment keys that identify the
	// difference, for consumers that need a stable key.
	IdentifyingAttachments []string
}

// MaxSeverity returns the maximum severity across all classified dimensions,
// SeverityEquivalent when unclassified.
func (d Difference) MaxSeverity() Severity {
	max := SeverityEquivalent
	for _, s := range d.Classification {
		if s > max {
			max = s
		}
	}
	return max
}

// Equal reports deep equality of two differences, attachments included.
func (d Difference) Equal(o Difference) bool {
	if d.Code != o.Code || d.Name != o.Name || d.Description != o.Description ||
		d.Criticality != o.Criticality || d.Justification != o.Justification {
		return false
	}
	if len(d.Classification) != len(o.Classification) || len(d.Attachments) != len(o.Attachments) ||
		len(d.IdentifyingAttachments) != len(o.IdentifyingAttachments) {
		return false
	}
	for dim, s := range d.Classification {
		if os, ok := o.Classification[dim]; !ok || os != s {
			return false
		}
	}
	for k, v := range d.Attachments {
		if ov, ok := o.Attachments[k]; !ok || ov != v {
			return false
		}
	}
	for i, k := range d.IdentifyingAttachments {
		if o.IdentifyingAttachments[i] != k {
			return false
		}
	}
	return true
}

// AttachmentKeys returns the attachment keys in sorted order, for
// deterministic rendering.
func (d Difference) AttachmentKeys() []string {
	keys := make([]string, 0, len(d.Attachments))
	for k := range d.Attachments {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (d Difference) String() string {
	var sb strings.Builder
	sb.WriteString(d.Code)
	if d.Name != "" {
		sb.WriteString(" (")
		sb.WriteString(d.Name)
		sb.WriteString(")")
	}
	return sb.String()
}

// EqualSets reports whether two difference lists are elementwise equal.
func EqualSets(a, b []Difference) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}
