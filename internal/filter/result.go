package filter

// StartResult is what a tree filter answers when an element is about to be
// processed: whether it matches and whether the caller should descend into
// its children.
type StartResult struct {
	Match   Ternary
	Descend Ternary
}

// MatchAndDescendResult admits the element and its subtree.
func MatchAndDescendResult() StartResult {
	return StartResult{Match: True, Descend: True}
}

// ExcludeResult rejects the element but still lets the caller examine the
// children, which may be re-included by descent.
func ExcludeResult() StartResult {
	return StartResult{Match: False, Descend: True}
}

// UndecidedResult defers the verdict and descends.
func UndecidedResult() StartResult {
	return StartResult{Match: Undecided, Descend: True}
}

// And intersects two start results.
func (r StartResult) And(o StartResult) StartResult {
	return StartResult{Match: r.Match.And(o.Match), Descend: r.Descend.And(o.Descend)}
}

// Or unions two start results.
func (r StartResult) Or(o StartResult) StartResult {
	return StartResult{Match: r.Match.Or(o.Match), Descend: r.Descend.Or(o.Descend)}
}

// FinishResult is the verdict for an element after its subtree has been
// processed.
type FinishResult struct {
	Match Ternary
}

// Matches is a definite positive finish verdict.
func Matches() FinishResult { return FinishResult{Match: True} }

// And intersects two finish results.
func (r FinishResult) And(o FinishResult) FinishResult {
	return FinishResult{Match: r.Match.And(o.Match)}
}

// Or unions two finish results.
func (r FinishResult) Or(o FinishResult) FinishResult {
	return FinishResult{Match: r.Match.Or(o.Match)}
}
