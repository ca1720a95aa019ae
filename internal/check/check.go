// Package check defines the check contract and the dispatcher that drives
// checks over paired elements during the walk.
package check

import (
	"apidrift/internal/diff"
	"apidrift/internal/ext"
	"apidrift/internal/model"
)

// Check is a stateful visitor producing raw differences for element pairs.
// Checks are thread-confined to the walker; Enter and Leave calls are
// balanced and LIFO-nested.
type Check interface {
	ext.Extension

	// Interest returns the element kinds the check wants to visit.
	Interest() []model.Kind
	// DescendOnNonExisting reports whether the check still wants to visit
	// pairs below an element missing on one side.
	DescendOnNonExisting() bool
	// Enter is called before the pair's children are visited.
	Enter(p model.Pair)
	// Leave is called after all children were visited and returns the raw
	// differences for the pair.
	Leave(p model.Pair) []diff.Difference
}
