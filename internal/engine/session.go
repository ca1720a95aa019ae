package engine

import (
	"fmt"

	"apidrift/internal/check"
	"apidrift/internal/diff"
	"apidrift/internal/model"
	"apidrift/internal/report"
	"apidrift/internal/transform"
)

// session is the per-walk state: it adapts the dispatcher and the transform
// pipeline to the walker's event protocol and routes reports.
type session struct {
	d       *Driver
	res     *Result
	disp    *check.Dispatcher
	pl      *transform.Pipeline
	mapping diff.SeverityMapping
}

// Enter implements walker.Events. The subtree under a half-pair is skipped
// when no check wants to descend below a missing element.
func (s *session) Enter(p model.Pair) (bool, error) {
	s.pl.StartElements(p)
	s.disp.Enter(p)
	if p.Half() && !s.disp.HasDescenders() {
		return false, nil
	}
	return true, nil
}

// Leave implements walker.Events: collect the pair's raw differences,
// assign default criticalities, run the transform pipeline and deliver the
// report. Differences of annotation pairs were already folded into the
// enclosing element by the dispatcher.
func (s *session) Leave(p model.Pair) error {
	ds := s.disp.Leave(p)
	s.assignCriticalities(ds)

	final, err := s.applyTransforms(p, ds)
	s.pl.EndElements(p)
	if err != nil {
		return err
	}
	s.assignCriticalities(final)

	if p.Kind().IsAnnotation() || !p.Included() {
		return nil
	}

	rep := report.Report{Old: p.Old, New: p.New, Differences: final}
	s.res.Reports++
	s.res.Differences += len(final)
	for _, dd := range final {
		if s.res.MaxCriticality.IsZero() || dd.Criticality.Level > s.res.MaxCriticality.Level {
			s.res.MaxCriticality = dd.Criticality
		}
	}
	for _, r := range s.d.reporters {
		if rerr := s.reportOne(r, rep); rerr != nil {
			s.res.ReporterFailures = append(s.res.ReporterFailures, fmt.Errorf("reporter %s: %w", r.ref, rerr))
		}
	}
	return nil
}

// assignCriticalities fills missing criticalities from the severity mapping
// applied to each difference's maximum severity.
func (s *session) assignCriticalities(ds []diff.Difference) {
	for i := range ds {
		if ds[i].Criticality.IsZero() {
			ds[i].Criticality = s.mapping[ds[i].MaxSeverity()]
		}
	}
}

// applyTransforms runs the pipeline over the pair's differences. A
// panicking transform degrades into a synthetic failure difference; a
// non-converging block is returned as a fatal error.
func (s *session) applyTransforms(p model.Pair, ds []diff.Difference) (out []diff.Difference, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			s.res.TransformFailures++
			out = append(append([]diff.Difference(nil), ds...), s.failureDifference("transform", fmt.Sprint(rec)))
			err = nil
		}
	}()
	return s.pl.Apply(p, ds)
}

// reportOne isolates a reporter: its error or panic neither stops the walk
// nor affects the other reporters.
func (s *session) reportOne(r instance[report.Reporter], rep report.Report) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return r.v.Report(rep)
}

// captureCheckFailure converts a panicking check into a synthetic
// difference attached to the current pair.
func (s *session) captureCheckFailure(c check.Check, p model.Pair, recovered any) *diff.Difference {
	s.res.CheckFailures++
	d := s.failureDifference(c.ExtensionID(), fmt.Sprint(recovered))
	return &d
}

func (s *session) failureDifference(source, msg string) diff.Difference {
	d := diff.NewDifference(FailureCode).
		WithName("analysis failure").
		WithDescription("an extension failed while processing this element pair").
		AddClassification(diff.DimensionOther, diff.SeverityPotentiallyBreaking).
		AddAttachment("source", source).
		AddAttachment("error", msg).
		Build()
	d.Criticality = s.mapping[d.MaxSeverity()]
	return d
}
