package engine

import "errors"

var (
	// ErrNotOpen is returned by Run when Open was not called or failed.
	ErrNotOpen = errors.New("driver not opened")
	// ErrArtifactUnresolved marks a failure to obtain or analyze an
	// archive. Fatal to the run.
	ErrArtifactUnresolved = errors.New("artifact could not be resolved")
)

// FailureCode is the difference code used when a check or transform fails
// on a pair. The failure is attached to the pair's report and the walk
// continues.
const FailureCode = "analysis.failure"
