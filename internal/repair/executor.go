package repair

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/rsrepair/internal/model"
	"github.com/roach88/rsrepair/internal/reconcile"
	"github.com/roach88/rsrepair/internal/store"
)

// Target is the authoritative collection a fix is written to.
// Implemented by *store.Collection.
type Target interface {
	Namespace() model.Namespace
	Upsert(ctx context.Context, doc model.Document) error
	DeleteByID(ctx context.Context, id model.ID) error
}

// Recorder durably records an applied fix. Implemented by *store.Store.
type Recorder interface {
	RecordFix(ctx context.Context, f store.Fix) error
}

// Executor applies decisions for one repair run.
type Executor struct {
	recorder Recorder
	runID    string
	logger   *slog.Logger
}

// NewExecutor creates an Executor recording fixes under runID.
// A nil logger discards diagnostics.
func NewExecutor(recorder Recorder, runID string, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Executor{recorder: recorder, runID: runID, logger: logger}
}

// Apply performs decision d for document id of range key on target. classes
// are the classes d was made from; their counts go into the journal.
//
// Skip writes nothing and records nothing. Apply returns whether a write was
// made. Ask is not a final decision and is rejected.
func (e *Executor) Apply(ctx context.Context, target Target, key model.RangeKey, id model.ID, d reconcile.Decision, classes []reconcile.Class) (bool, error) {
	fix := store.Fix{
		RunID: e.runID,
		Range: key,
		ID:    id,
		Total: reconcile.Total(classes),
	}

	switch d.Action {
	case reconcile.ActionSkip:
		return false, nil

	case reconcile.ActionDelete:
		if err := Delete(ctx, target, id); err != nil {
			return false, err
		}
		fix.Action = store.ActionDelete
		fix.Agreeing = reconcile.MissingCount(classes)

	case reconcile.ActionKeep:
		if d.Class < 0 || d.Class >= len(classes) || classes[d.Class].IsMissing() {
			return false, fmt.Errorf("apply %s to %s in %s: no document version at class %d", d, id, target.Namespace(), d.Class)
		}
		chosen := classes[d.Class]
		if err := Replace(ctx, target, chosen.Representative.Document()); err != nil {
			return false, err
		}
		fix.Action = store.ActionReplace
		fix.Agreeing = chosen.Count
		fix.Version = chosen.Representative.Document().Fingerprint()

	default:
		return false, fmt.Errorf("apply %s to %s in %s: not a final decision", d, id, target.Namespace())
	}

	if err := e.recorder.RecordFix(ctx, fix); err != nil {
		return true, fmt.Errorf("record fix of %s in %s: %w", id, target.Namespace(), err)
	}
	e.logger.Debug("fix recorded",
		"ns", target.Namespace().String(),
		"id", id.String(),
		"action", fix.Action,
		"run_id", e.runID)
	return true, nil
}

// Delete removes id from target by first upserting a transient placeholder
// and then deleting it.
func Delete(ctx context.Context, target Target, id model.ID) error {
	if err := target.Upsert(ctx, model.TransientDeletePlaceholder(id)); err != nil {
		return fmt.Errorf("delete %s: placeholder: %w", id, err)
	}
	if err := target.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	return nil
}

// Replace makes doc the stored version of its _id by deleting whatever is
// there and then upserting doc.
func Replace(ctx context.Context, target Target, doc model.Document) error {
	id := doc.ID()
	if id.IsZero() {
		return fmt.Errorf("replace: document has no %s", model.IDField)
	}
	if err := target.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("replace %s: delete: %w", id, err)
	}
	if err := target.Upsert(ctx, doc); err != nil {
		return fmt.Errorf("replace %s: %w", id, err)
	}
	return nil
}
