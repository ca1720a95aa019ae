// Package engine ties archive analysis, filtering, checking, transforming
// and reporting into one run.
package engine

import (
	"context"
	"fmt"

	"apidrift/internal/archive"
	"apidrift/internal/check"
	"apidrift/internal/ext"
	"apidrift/internal/filter"
	"apidrift/internal/model"
	"apidrift/internal/pipeline"
	"apidrift/internal/report"
	"apidrift/internal/transform"
	"apidrift/internal/walker"
)

// instance is one configured extension together with the name transform
// blocks and include/exclude lists resolve against.
type instance[T ext.Extension] struct {
	v   T
	ref string
}

// Driver runs the analysis: Open acquires and configures the extensions,
// Run analyzes and walks both sides, Close releases everything. Close is
// idempotent and safe to call after failures.
type Driver struct {
	cfg      *pipeline.Configuration
	oldSet   archive.Set
	newSet   archive.Set
	progress ProgressSink
	timer    *Timer

	matchers   map[string]ext.Matcher
	analyzers  []instance[archive.APIAnalyzer]
	providers  []instance[ext.FilterProvider]
	transforms []instance[transform.Transform]
	reporters  []instance[report.Reporter]

	closables []ext.Extension
	opened    bool
	closed    bool
}

// NewDriver creates a driver over the given configuration and archive sets.
func NewDriver(cfg *pipeline.Configuration, oldSet, newSet archive.Set) *Driver {
	return &Driver{
		cfg:      cfg,
		oldSet:   oldSet,
		newSet:   newSet,
		progress: NopProgress{},
		timer:    NewTimer(),
	}
}

// SetProgress installs a progress sink. Must be called before Run.
func (d *Driver) SetProgress(sink ProgressSink) {
	if sink != nil {
		d.progress = sink
	}
}

// Timer exposes the driver's phase timer.
func (d *Driver) Timer() *Timer { return d.timer }

// Open validates the configuration and constructs and configures every
// admitted extension. On error the driver must still be closed.
func (d *Driver) Open() error {
	if d.opened {
		return nil
	}
	if err := d.cfg.Validate(); err != nil {
		return err
	}

	d.matchers = make(map[string]ext.Matcher)
	minst, closables, err := buildInstances(d.cfg.Matchers, d.cfg, d.cfg.MatcherFilter, nil)
	d.closables = append(d.closables, closables...)
	if err != nil {
		return err
	}
	for _, m := range minst {
		d.matchers[m.ref] = m.v
	}

	d.analyzers, closables, err = buildInstances(d.cfg.Analyzers, d.cfg, d.cfg.AnalyzerFilter, d.matchers)
	d.closables = append(d.closables, closables...)
	if err != nil {
		return err
	}
	d.providers, closables, err = buildInstances(d.cfg.FilterProviders, d.cfg, d.cfg.ProviderFilter, d.matchers)
	d.closables = append(d.closables, closables...)
	if err != nil {
		return err
	}
	d.transforms, closables, err = buildInstances(d.cfg.Transforms, d.cfg, d.cfg.TransformFilter, d.matchers)
	d.closables = append(d.closables, closables...)
	if err != nil {
		return err
	}
	d.reporters, closables, err = buildInstances(d.cfg.Reporters, d.cfg, d.cfg.ReporterFilter, d.matchers)
	d.closables = append(d.closables, closables...)
	if err != nil {
		return err
	}

	d.opened = true
	return nil
}

// buildInstances constructs one extension category: every constructor runs
// once per matching extension configuration (or once with no configuration)
// and the include/exclude list prunes by extension id.
func buildInstances[T ext.Extension](
	ctors []func() T,
	cfg *pipeline.Configuration,
	ie pipeline.IncludeExclude,
	matchers map[string]ext.Matcher,
) (out []instance[T], closables []ext.Extension, err error) {
	for _, ctor := range ctors {
		cur := ctor()
		id := cur.ExtensionID()
		if !ie.Admits(id) {
			continue
		}
		var confs []pipeline.ExtensionConfig
		for _, ec := range cfg.ExtensionConfigs {
			if ec.Extension == id {
				confs = append(confs, ec)
			}
		}
		if len(confs) == 0 {
			confs = []pipeline.ExtensionConfig{{Extension: id}}
		}
		for i, conf := range confs {
			if i > 0 {
				cur = ctor()
			}
			closables = append(closables, cur)
			ctx := &ext.Context{
				Config:        conf.Config,
				Criticalities: cfg.Criticalities,
				Matchers:      matchers,
			}
			if cerr := cur.Configure(ctx); cerr != nil {
				return out, closables, fmt.Errorf("%w: configuring %s: %v", pipeline.ErrConfigInvalid, conf.Ref(), cerr)
			}
			out = append(out, instance[T]{v: cur, ref: conf.Ref()})
		}
	}
	return out, closables, nil
}

// Run analyzes both archive sets with every admitted analyzer, walks the
// paired forests and routes the final reports to the reporters. Fatal
// errors (unresolved artifacts, non-converging transform blocks,
// cancellation) abort the run; per-element check and transform failures
// degrade into reported differences.
func (d *Driver) Run(ctx context.Context) (*Result, error) {
	if !d.opened || d.closed {
		return nil, ErrNotOpen
	}
	res := &Result{}
	pl, err := d.buildPipeline()
	if err != nil {
		return res, err
	}
	for _, a := range d.analyzers {
		if err := d.runAnalyzer(ctx, a, pl, res); err != nil {
			res.Fatals = append(res.Fatals, err)
			return res, err
		}
	}
	return res, nil
}

// Close closes every constructed extension. Idempotent.
func (d *Driver) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	var first error
	for _, c := range d.closables {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (d *Driver) buildPipeline() (*transform.Pipeline, error) {
	used := make(map[string]struct{})
	var blocks []*transform.Block
	for _, ids := range d.cfg.TransformBlocks {
		var ts []transform.Transform
		for _, id := range ids {
			inst, ok := d.findTransform(id)
			if !ok {
				return nil, fmt.Errorf("%w: unknown transform %q in transform block", pipeline.ErrConfigInvalid, id)
			}
			ts = append(ts, inst.v)
			used[inst.ref] = struct{}{}
		}
		blocks = append(blocks, transform.NewBlock(ts...))
	}
	// Transforms outside any block each form their own, in construction
	// order.
	for _, t := range d.transforms {
		if _, ok := used[t.ref]; !ok {
			blocks = append(blocks, transform.NewBlock(t.v))
		}
	}
	pl := transform.NewPipeline(blocks...)
	pl.SetMaxIterations(d.cfg.MaxIterations)
	return pl, nil
}

// findTransform resolves a transform block entry: instance id first, then
// extension id.
func (d *Driver) findTransform(id string) (instance[transform.Transform], bool) {
	for _, t := range d.transforms {
		if t.ref == id {
			return t, true
		}
	}
	for _, t := range d.transforms {
		if t.v.ExtensionID() == id {
			return t, true
		}
	}
	return instance[transform.Transform]{}, false
}

func (d *Driver) runAnalyzer(ctx context.Context, a instance[archive.APIAnalyzer], pl *transform.Pipeline, res *Result) error {
	origin := a.v.ExtensionID()

	oldAn := a.v.AnalyzerFor(d.oldSet)
	newAn := a.v.AnalyzerFor(d.newSet)
	defer func() {
		_ = oldAn.Release()
		_ = newAn.Release()
	}()

	oldForest, err := d.analyzeSide(ctx, origin, "old", oldAn, res)
	if err != nil {
		return err
	}
	newForest, err := d.analyzeSide(ctx, origin, "new", newAn, res)
	if err != nil {
		return err
	}

	if d.cfg.PruneForests {
		idx := d.timer.Begin("prune " + origin)
		oldAn.Prune(oldForest)
		newAn.Prune(newForest)
		res.Timings.Add(StagePrune, d.timer.End(idx, ""))
	}

	disp := check.NewDispatcher(a.v.Checks())
	sess := &session{
		d:       d,
		res:     res,
		disp:    disp,
		pl:      pl,
		mapping: d.cfg.SeverityMapping,
	}
	disp.SetCapture(sess.captureCheckFailure)

	subject := origin + "/walk"
	d.progress.OnEvent(Event{Subject: subject, Stage: StageWalk, Status: StatusWorking})
	idx := d.timer.Begin("walk " + origin)
	pl.StartTraversal()
	err = walker.Walk(ctx, oldForest, newForest, sess)
	pl.EndTraversal()
	dur := d.timer.End(idx, "")
	res.Timings.Add(StageWalk, dur)
	if err != nil {
		d.progress.OnEvent(Event{Subject: subject, Stage: StageWalk, Status: StatusError, Err: err, Elapsed: dur})
		return err
	}
	d.progress.OnEvent(Event{Subject: subject, Stage: StageWalk, Status: StatusDone, Elapsed: dur})
	return nil
}

func (d *Driver) analyzeSide(ctx context.Context, origin, side string, an archive.Analyzer, res *Result) (*model.Forest, error) {
	subject := origin + "/" + side
	d.progress.OnEvent(Event{Subject: subject, Stage: StageAnalyze, Status: StatusWorking})
	idx := d.timer.Begin("analyze " + subject)
	f, err := an.Analyze(ctx, d.composeFilter(origin))
	dur := d.timer.End(idx, "")
	res.Timings.Add(StageAnalyze, dur)
	if err != nil {
		d.progress.OnEvent(Event{Subject: subject, Stage: StageAnalyze, Status: StatusError, Err: err, Elapsed: dur})
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", walker.ErrCancelled, ctx.Err())
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrArtifactUnresolved, subject, err)
	}
	d.progress.OnEvent(Event{Subject: subject, Stage: StageAnalyze, Status: StatusDone, Elapsed: dur})
	return f, nil
}

// composeFilter intersects the filters of all providers that have an
// opinion about the given format. Providers return a fresh filter per call
// so the two sides never share traversal state.
func (d *Driver) composeFilter(origin string) filter.TreeFilter {
	var fs []filter.TreeFilter
	for _, p := range d.providers {
		if f, ok := p.v.Filter(origin); ok {
			fs = append(fs, f)
		}
	}
	if len(fs) == 0 {
		return filter.MatchAndDescend()
	}
	return filter.Intersection(fs...)
}
