package transform

import (
	"fmt"
	"sort"
	"strings"

	"apidrift/internal/diff"
	"apidrift/internal/model"
)

// DefaultMaxIterations bounds the per-block fixpoint loop.
const DefaultMaxIterations = 10

// NonConvergenceError reports a transform block that kept oscillating after
// the iteration cap. The configuration is considered invalid.
type NonConvergenceError struct {
	Block int
	Codes []string
}

func (e *NonConvergenceError) Error() string {
	return fmt.Sprintf("transform block %d did not converge within the iteration cap; oscillating codes: %s",
		e.Block, strings.Join(e.Codes, ", "))
}

// Block is an ordered list of transforms whose results stay local until the
// block reaches its fixpoint.
type Block struct {
	transforms []Transform
}

// NewBlock creates a block over the given transforms, applied in order.
func NewBlock(ts ...Transform) *Block {
	return &Block{transforms: ts}
}

// Transforms returns the block's transforms in application order.
func (b *Block) Transforms() []Transform { return b.transforms }

// Pipeline applies ordered transform blocks to the differences of each pair.
// It owns the per-run cache map; caches are never shared across runs.
type Pipeline struct {
	blocks        []*Block
	maxIterations int
	caches        map[string]any
}

// NewPipeline assembles a pipeline over the given blocks with the default
// iteration cap.
func NewPipeline(blocks ...*Block) *Pipeline {
	return &Pipeline{
		blocks:        blocks,
		maxIterations: DefaultMaxIterations,
		caches:        make(map[string]any),
	}
}

// SetMaxIterations overrides the per-block iteration cap.
func (p *Pipeline) SetMaxIterations(n int) {
	if n > 0 {
		p.maxIterations = n
	}
}

// Cache returns the per-run cache slot for the given extension id, creating
// it with mk on first use.
func (p *Pipeline) Cache(extensionID string, mk func() any) any {
	if c, ok := p.caches[extensionID]; ok {
		return c
	}
	c := mk()
	p.caches[extensionID] = c
	return c
}

// Blocks returns the configured blocks.
func (p *Pipeline) Blocks() []*Block { return p.blocks }

// Apply routes the raw differences of a pair through all blocks and returns
// the final set. Each block runs to a local fixpoint; a block still changing
// the set after the iteration cap surfaces a NonConvergenceError.
func (p *Pipeline) Apply(pair model.Pair, ds []diff.Difference) ([]diff.Difference, error) {
	cur := ds
	for bi, b := range p.blocks {
		var err error
		cur, err = p.applyBlock(bi, b, pair, cur)
		if err != nil {
			return nil, err
		}
	}
	return cur, nil
}

func (p *Pipeline) applyBlock(bi int, b *Block, pair model.Pair, ds []diff.Difference) ([]diff.Difference, error) {
	cur := ds
	for iter := 0; iter < p.maxIterations; iter++ {
		next, changedCodes := runBlockPass(b, pair, cur)
		if len(changedCodes) == 0 {
			return next, nil
		}
		if iter == p.maxIterations-1 {
			return nil, &NonConvergenceError{Block: bi, Codes: sortedCodes(changedCodes)}
		}
		cur = next
	}
	return cur, nil
}

// runBlockPass pushes the set through every transform of the block once.
// changed collects the codes of differences that were replaced or emitted,
// empty when the pass was a fixpoint.
func runBlockPass(b *Block, pair model.Pair, ds []diff.Difference) (out []diff.Difference, changed map[string]struct{}) {
	changed = make(map[string]struct{})
	cur := ds
	for _, t := range b.transforms {
		next := make([]diff.Difference, 0, len(cur))
		for _, d := range cur {
			res := t.Transform(pair, d)
			switch res.Kind {
			case KindUndecided, KindKeep:
				next = append(next, d)
			case KindReplace:
				if len(res.Replacements) == 1 && res.Replacements[0].Equal(d) {
					next = append(next, d)
					continue
				}
				changed[d.Code] = struct{}{}
				for _, r := range res.Replacements {
					changed[r.Code] = struct{}{}
					next = append(next, r)
				}
			}
		}
		cur = next
	}
	if len(changed) == 0 {
		return cur, nil
	}
	return cur, changed
}

func sortedCodes(set map[string]struct{}) []string {
	codes := make([]string, 0, len(set))
	for c := range set {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}

// StartTraversal notifies listening transforms that the walk begins.
func (p *Pipeline) StartTraversal() {
	p.each(func(l TraversalListener) { l.StartTraversal() })
}

// StartElements notifies listening transforms that the pair is entered.
func (p *Pipeline) StartElements(pair model.Pair) {
	p.each(func(l TraversalListener) { l.StartElements(pair) })
}

// EndElements notifies listening transforms that the pair is left.
func (p *Pipeline) EndElements(pair model.Pair) {
	p.each(func(l TraversalListener) { l.EndElements(pair) })
}

// EndTraversal notifies listening transforms that the walk ended.
func (p *Pipeline) EndTraversal() {
	p.each(func(l TraversalListener) { l.EndTraversal() })
}

func (p *Pipeline) each(f func(TraversalListener)) {
	for _, b := range p.blocks {
		for _, t := range b.transforms {
			if l, ok := t.(TraversalListener); ok {
				f(l)
			}
		}
	}
}
