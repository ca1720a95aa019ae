// Package transform defines difference transforms and the block pipeline
// that applies them to a fixpoint.
package transform

import (
	"apidrift/internal/diff"
	"apidrift/internal/ext"
	"apidrift/internal/model"
)

// ResolutionKind is the outcome of offering a difference to a transform.
type ResolutionKind uint8

const (
	// KindUndecided means the difference is not this transform's concern.
	KindUndecided ResolutionKind = iota
	// KindKeep means the difference passes through unchanged.
	KindKeep
	// KindReplace means the difference is replaced by the resolution's
	// replacement set; an empty set drops it.
	KindReplace
)

// Resolution is a transform's verdict for one difference.
type Resolution struct {
	Kind         ResolutionKind
	Replacements []diff.Difference
}

// Undecided defers to other transforms.
func Undecided() Resolution { return Resolution{Kind: KindUndecided} }

// Keep passes the difference through unchanged.
func Keep() Resolution { return Resolution{Kind: KindKeep} }

// ReplaceWith substitutes the difference with ds.
func ReplaceWith(ds ...diff.Difference) Resolution {
	return Resolution{Kind: KindReplace, Replacements: ds}
}

// Discard drops the difference.
func Discard() Resolution { return Resolution{Kind: KindReplace} }

// Transform post-processes raw differences. Implementations are stateful
// and thread-confined to the walk.
type Transform interface {
	ext.Extension

	// Transform resolves one difference produced for the pair.
	Transform(p model.Pair, d diff.Difference) Resolution
}

// TraversalListener is implemented by transforms that need to observe the
// walk, typically to evaluate matcher recipes against ancestors of the
// current pair.
type TraversalListener interface {
	StartTraversal()
	StartElements(p model.Pair)
	EndElements(p model.Pair)
	EndTraversal()
}
