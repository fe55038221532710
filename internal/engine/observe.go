package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/roach88/rsrepair/internal/model"
	"github.com/roach88/rsrepair/internal/store"
)

// observe returns what every scan source of r holds for doc0's id. doc0 is
// the first source's copy; the other sources are independent point reads
// and are fetched concurrently. A source without the id yields the missing
// marker.
func (w *rangeWalker) observe(ctx context.Context, r model.UnhealthyRange, doc0 model.Document) ([]model.Observation, error) {
	id := doc0.ID()
	observations := make([]model.Observation, len(r.ScanSources))
	observations[0] = model.Observed(doc0)

	errs := make([]error, len(r.ScanSources))
	var wg sync.WaitGroup
	for i := 1; i < len(r.ScanSources); i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			doc, err := w.store.Collection(r.SourceNamespace(i)).FindByID(ctx, id)
			switch {
			case errors.Is(err, store.ErrNotFound):
				observations[i] = model.Missing()
			case err != nil:
				errs[i] = fmt.Errorf("scan source %s: %w", r.ScanSources[i], err)
			default:
				observations[i] = model.Observed(doc)
			}
		}(i)
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return observations, nil
}
