package archive

import (
	"context"
	"errors"

	"apidrift/internal/check"
	"apidrift/internal/ext"
	"apidrift/internal/filter"
	"apidrift/internal/model"
)

// ErrIncomplete marks a transient failure of an analyzer's lazy resolution.
// Callers retry such failures a bounded number of times before giving up.
var ErrIncomplete = errors.New("analysis not yet complete")

// DefaultCompletionAttempts bounds the retries of Retry.
const DefaultCompletionAttempts = 10

// Retry runs fn until it succeeds, fails with a non-transient error, or the
// attempt budget runs out. Attempts <= 0 selects the default budget.
func Retry[T any](attempts int, fn func() (T, error)) (T, error) {
	if attempts <= 0 {
		attempts = DefaultCompletionAttempts
	}
	var zero T
	var err error
	for i := 0; i < attempts; i++ {
		var v T
		v, err = fn()
		if err == nil {
			return v, nil
		}
		if !errors.Is(err, ErrIncomplete) {
			return zero, err
		}
	}
	return zero, err
}

// Analyzer turns one archive set into a forest. Instances are created per
// side and per run by an APIAnalyzer.
type Analyzer interface {
	// Analyze builds the forest, applying tf per the tree filter protocol:
	// elements the filter rejects descent into may stay unexpanded, and the
	// included flags reflect the filter verdicts (see filter.Apply).
	Analyze(ctx context.Context, tf filter.TreeFilter) (*model.Forest, error)
	// Prune removes supplementary elements not reachable from primary ones
	// through moving-to-api use sites.
	Prune(f *model.Forest)
	// Release frees parse resources. Must be idempotent.
	Release() error
}

// APIAnalyzer is the per-format extension that constructs analyzers and
// supplies the checks understanding its forests.
type APIAnalyzer interface {
	ext.Extension

	// AnalyzerFor returns an analyzer over the given archive set.
	AnalyzerFor(set Set) Analyzer
	// Checks returns fresh check instances for one run. Checks are
	// stateful and must not be shared across runs.
	Checks() []check.Check
}
