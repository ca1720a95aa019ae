package check

import (
	"apidrift/internal/diff"
	"apidrift/internal/model"
)

// Dispatcher routes pair visits to the checks interested in the pair's kind.
// It keeps an explicit visit stack so each Leave collects from exactly the
// checks its matching Enter activated, and it switches to non-existence mode
// while the walk is below an element missing on one side. Frames of pairs
// still open when a walk stops early are not unwound.
type Dispatcher struct {
	byKind     map[model.Kind][]Check
	descending map[model.Kind][]Check

	anyDescending bool
	nonExistence  int
	stack         []frame

	// capture converts a panicking check into a synthetic difference
	// instead of aborting the walk. Installed by the driver.
	capture func(c Check, p model.Pair, recovered any) *diff.Difference
}

type frame struct {
	pair     model.Pair
	active   []Check
	halfPair bool
	// failures holds the synthetic differences of checks that panicked in
	// Enter; they are reported with the pair on leave.
	failures []diff.Difference
	// annDiffs buffers differences produced for annotation children; they
	// are attached to this element's report on leave.
	annDiffs []diff.Difference
}

// NewDispatcher indexes the checks by their interest sets.
func NewDispatcher(checks []Check) *Dispatcher {
	d := &Dispatcher{
		byKind:     make(map[model.Kind][]Check),
		descending: make(map[model.Kind][]Check),
	}
	for _, c := range checks {
		for _, k := range c.Interest() {
			d.byKind[k] = append(d.byKind[k], c)
			if c.DescendOnNonExisting() {
				d.descending[k] = append(d.descending[k], c)
			}
		}
		if c.DescendOnNonExisting() {
			d.anyDescending = true
		}
	}
	return d
}

// SetCapture installs the failure handler for panicking checks.
func (d *Dispatcher) SetCapture(f func(c Check, p model.Pair, recovered any) *diff.Difference) {
	d.capture = f
}

// HasDescenders reports whether any check wants to descend below a missing
// element. When false, the walker skips the subtree under half-pairs.
func (d *Dispatcher) HasDescenders() bool { return d.anyDescending }

// Enter activates the interested checks for the pair and pushes a visit
// frame. In non-existence mode only descending checks activate.
func (d *Dispatcher) Enter(p model.Pair) {
	half := p.Half()
	if half {
		d.nonExistence++
	}
	var active []Check
	if d.nonExistence > 0 {
		active = d.descending[p.Kind()]
	} else {
		active = d.byKind[p.Kind()]
	}
	var failures []diff.Difference
	for _, c := range active {
		if syn := d.enterOne(c, p); syn != nil {
			failures = append(failures, *syn)
		}
	}
	d.stack = append(d.stack, frame{pair: p, active: active, halfPair: half, failures: failures})
}

func (d *Dispatcher) enterOne(c Check, p model.Pair) (syn *diff.Difference) {
	defer func() {
		if r := recover(); r != nil && d.capture != nil {
			syn = d.capture(c, p, r)
		}
	}()
	c.Enter(p)
	return nil
}

// Leave pops the pair's frame, collects the differences of the activated
// checks and returns them together with buffered annotation differences.
// For an annotation pair the differences are instead attached to the parent
// frame and Leave returns nil.
func (d *Dispatcher) Leave(p model.Pair) []diff.Difference {
	top := len(d.stack) - 1
	fr := d.stack[top]
	d.stack = d.stack[:top]

	out := fr.failures
	for _, c := range fr.active {
		out = append(out, d.leaveOne(c, p)...)
	}
	if fr.halfPair {
		d.nonExistence--
	}

	if p.Kind().IsAnnotation() && top > 0 {
		parent := &d.stack[top-1]
		parent.annDiffs = append(parent.annDiffs, out...)
		return nil
	}
	return append(out, fr.annDiffs...)
}

func (d *Dispatcher) leaveOne(c Check, p model.Pair) (out []diff.Difference) {
	defer func() {
		if r := recover(); r != nil && d.capture != nil {
			if syn := d.capture(c, p, r); syn != nil {
				out = append(out, *syn)
			}
		}
	}()
	return c.Leave(p)
}

// Depth returns the current visit stack depth, for tests.
func (d *Dispatcher) Depth() int { return len(d.stack) }
