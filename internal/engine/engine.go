package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/rsrepair/internal/model"
	"github.com/roach88/rsrepair/internal/prompt"
	"github.com/roach88/rsrepair/internal/reconcile"
	"github.com/roach88/rsrepair/internal/repair"
	"github.com/roach88/rsrepair/internal/store"
)

// Resolver asks the operator about a document the strategy deferred.
// Implemented by *prompt.Resolver.
type Resolver interface {
	Resolve(ctx context.Context, req prompt.Request) (reconcile.Decision, error)
}

// Options are the run settings that come from configuration.
type Options struct {
	// Strategy decides documents automatically. Nil asks about every one.
	Strategy *reconcile.Strategy

	// DryRun decides and reports but writes nothing and records nothing.
	DryRun bool

	// Verbose reports every processed document. Dry runs always report.
	Verbose bool
}

// Engine walks the scanned unhealthy ranges and repairs their documents.
//
// Documents are processed one at a time: decide, write, record. The next
// document starts only after the previous fix is durably recorded, so an
// interrupted run loses at most the document in flight and the next run
// resumes where this one stopped.
type Engine struct {
	store    *store.Store
	opts     Options
	runIDs   RunIDGenerator
	resolver Resolver
	reporter Reporter
	logger   *slog.Logger
}

// EngineOption allows configuration of engine collaborators.
type EngineOption func(*Engine)

// WithResolver sets the operator prompt. Without one, deferred documents
// fail the run with PROMPT_CLOSED.
func WithResolver(r Resolver) EngineOption {
	return func(e *Engine) {
		e.resolver = r
	}
}

// WithReporter sets where per-document outcomes go.
func WithReporter(r Reporter) EngineOption {
	return func(e *Engine) {
		e.reporter = r
	}
}

// WithRunIDGenerator overrides the UUIDv7 run ids (for tests).
func WithRunIDGenerator(g RunIDGenerator) EngineOption {
	return func(e *Engine) {
		e.runIDs = g
	}
}

// WithLogger sets the diagnostic logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = l
	}
}

// New creates an Engine over s.
func New(s *store.Store, opts Options, options ...EngineOption) *Engine {
	e := &Engine{
		store:  s,
		opts:   opts,
		runIDs: UUIDv7Generator{},
		logger: slog.Default(),
	}
	for _, opt := range options {
		opt(e)
	}
	return e
}

// Run repairs every scanned range in catalog order and returns what it did.
//
// A store that cannot be reached fails with CATALOG_UNAVAILABLE before any
// range is touched. On any later error the summary so far is returned with
// the error.
func (e *Engine) Run(ctx context.Context) (Summary, error) {
	summary := Summary{DryRun: e.opts.DryRun}

	if err := e.store.Ping(ctx); err != nil {
		return summary, newRunError(ErrCodeCatalogUnavailable, "store unreachable", "", "", err)
	}
	ranges, err := e.store.ScannedRanges(ctx)
	if err != nil {
		return summary, newRunError(ErrCodeCatalogUnavailable, "read range catalog", "", "", err)
	}

	summary.RunID = e.runIDs.Generate()
	summary.Ranges = len(ranges)
	logger := e.logger.With("run_id", summary.RunID)
	logger.Info("repair run starting",
		"ranges", len(ranges),
		"strategy", e.opts.Strategy.String(),
		"dry_run", e.opts.DryRun)

	w := &rangeWalker{
		Engine:   e,
		executor: repair.NewExecutor(e.store, summary.RunID, logger),
		logger:   logger,
		summary:  &summary,
	}
	for _, r := range ranges {
		if err := w.walk(ctx, r); err != nil {
			logger.Error("repair run stopped", "range", r.Key.String(), "error", err)
			return summary, err
		}
	}

	logger.Info("repair run finished",
		"processed", summary.Processed,
		"deleted", summary.Deleted,
		"replaced", summary.Replaced,
		"unresolved", summary.Unresolved,
		"already_fixed", summary.AlreadyFixed)
	return summary, nil
}

// rangeWalker holds the per-run state shared by the ranges of one run.
type rangeWalker struct {
	*Engine
	executor *repair.Executor
	logger   *slog.Logger
	summary  *Summary
}

func (w *rangeWalker) walk(ctx context.Context, r model.UnhealthyRange) error {
	ns := r.Key.Namespace.String()
	logger := w.logger.With("range", r.Key.String())
	if len(r.ScanSources) == 0 {
		logger.Warn("range has no scan sources, skipping")
		return nil
	}

	// The first scan source enumerates the range; the others are looked up
	// by id.
	first := w.store.Collection(r.SourceNamespace(0))
	docs, err := first.FindRange(ctx, r.Key.Min, r.Key.Max)
	if err != nil {
		return newRunError(ErrCodeReadFailed, "enumerate first scan source", ns, "", err)
	}
	logger.Info("repairing range", "documents", len(docs), "already_fixed", r.FixedDocs.Len())

	target := w.store.Collection(r.Key.Namespace)
	fixed := model.NewIDSet(r.FixedDocs.IDs()...)
	for _, doc0 := range docs {
		if err := ctx.Err(); err != nil {
			return err
		}
		id := doc0.ID()
		if fixed.Has(id) {
			w.summary.AlreadyFixed++
			logger.Debug("already fixed", "id", id.String())
			continue
		}

		observations, err := w.observe(ctx, r, doc0)
		if err != nil {
			return newRunError(ErrCodeReadFailed, "read scan sources", ns, id.String(), err)
		}
		classes := reconcile.Classes(observations)

		d := reconcile.Decide(classes, w.opts.Strategy)
		logger.Debug("decided", "id", id.String(), "decision", d.String(), "classes", len(classes))
		if d.Action == reconcile.ActionAsk {
			d, err = w.ask(ctx, r, id, classes)
			if err != nil {
				return err
			}
		}

		o := outcome(r.Key.Namespace, id, d, classes, w.opts.DryRun)
		w.summary.count(o)
		if err := w.report(o); err != nil {
			return err
		}
		if w.opts.DryRun {
			continue
		}

		wrote, err := w.executor.Apply(ctx, target, r.Key, id, d, classes)
		if err != nil {
			if wrote {
				return newRunError(ErrCodeProgressFailed, "record fix", ns, id.String(), err)
			}
			return newRunError(ErrCodeWriteFailed, "apply "+d.String(), ns, id.String(), err)
		}
		if wrote {
			fixed.Add(id)
		}
	}
	logger.Info("range finished")
	return nil
}

func (w *rangeWalker) ask(ctx context.Context, r model.UnhealthyRange, id model.ID, classes []reconcile.Class) (reconcile.Decision, error) {
	ns := r.Key.Namespace.String()
	if w.resolver == nil {
		return reconcile.Decision{}, newRunError(ErrCodePromptClosed, "no operator prompt for a deferred document", ns, id.String(), nil)
	}
	d, err := w.resolver.Resolve(ctx, prompt.Request{
		Namespace: r.Key.Namespace,
		ID:        id,
		Classes:   classes,
		Project:   w.projector(r),
	})
	if errors.Is(err, prompt.ErrClosed) {
		return reconcile.Decision{}, newRunError(ErrCodePromptClosed, "operator input closed", ns, id.String(), err)
	}
	if err != nil {
		return reconcile.Decision{}, fmt.Errorf("ask about %s in %s: %w", id, ns, err)
	}
	return d, nil
}

// projector reads projections from the scan source itself.
func (w *rangeWalker) projector(r model.UnhealthyRange) prompt.Projector {
	return func(ctx context.Context, source int, id model.ID, p model.Projection) (model.Document, error) {
		return w.store.Collection(r.SourceNamespace(source)).FindProjected(ctx, id, p)
	}
}

func (w *rangeWalker) report(o Outcome) error {
	if w.reporter == nil || !(w.opts.Verbose || w.opts.DryRun) {
		return nil
	}
	if err := w.reporter.Report(o); err != nil {
		return fmt.Errorf("report %s: %w", o.ID, err)
	}
	return nil
}

func outcome(ns model.Namespace, id model.ID, d reconcile.Decision, classes []reconcile.Class, dryRun bool) Outcome {
	o := Outcome{
		Namespace: ns,
		ID:        id,
		Outcome:   OutcomeUnresolved,
		Total:     reconcile.Total(classes),
		DryRun:    dryRun,
	}
	switch d.Action {
	case reconcile.ActionDelete:
		o.Outcome = OutcomeDeleted
		o.Agreeing = reconcile.MissingCount(classes)
	case reconcile.ActionKeep:
		o.Outcome = OutcomeReplaced
		o.Agreeing = classes[d.Class].Count
	}
	return o
}
