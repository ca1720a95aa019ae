package diff

import (
	"fmt"
	"math"
)

// Criticality is a user-defined label layered on top of severities. Levels
// order labels; higher means more critical.
type Criticality struct {
	Name  string
	Level int
}

// The canonical criticality set. Users may extend or replace it through the
// pipeline configuration.
var (
	CriticalityAllowed    = Criticality{Name: "allowed", Level: 1000}
	CriticalityDocumented = Criticality{Name: "documented", Level: 2000}
	CriticalityHighlight  = Criticality{Name: "highlight", Level: 3000}
	CriticalityError      = Criticality{Name: "error", Level: math.MaxInt}
)

// DefaultCriticalities returns the canonical criticality set.
func DefaultCriticalities() []Criticality {
	return []Criticality{CriticalityAllowed, CriticalityDocumented, CriticalityHighlight, CriticalityError}
}

// IsZero reports whether the criticality is unset.
func (c Criticality) IsZero() bool { return c.Name == "" }

func (c Criticality) String() string { return c.Name }

// SeverityMapping assigns the default criticality for each severity. The
// mapping must be total over all severities.
type SeverityMapping map[Severity]Criticality

// DefaultSeverityMapping mirrors the canonical set: equivalent→allowed,
// nonBreaking→documented, potentiallyBreaking→error, breaking→error.
func DefaultSeverityMapping() SeverityMapping {
	return SeverityMapping{
		SeverityEquivalent:          CriticalityAllowed,
		SeverityNonBreaking:         CriticalityDocumented,
		SeverityPotentiallyBreaking: CriticalityError,
		SeverityBreaking:            CriticalityError,
	}
}

// Validate checks the mapping is total and only refers to known
// criticalities.
func (m SeverityMapping) Validate(known []Criticality) error {
	byName := make(map[string]struct{}, len(known))
	for _, c := range known {
		byName[c.Name] = struct{}{}
	}
	for _, s := range Severities() {
		c, ok := m[s]
		if !ok {
			return fmt.Errorf("severity mapping is not total: no criticality for %s", s)
		}
		if _, ok := byName[c.Name]; !ok {
			return fmt.Errorf("severity mapping for %s refers to unknown criticality %q", s, c.Name)
		}
	}
	return nil
}
