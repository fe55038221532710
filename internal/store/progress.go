package store

import (
	"context"
	"fmt"

	"github.com/roach88/rsrepair/internal/model"
)

// RangeProgress summarizes how far repair of one range has got.
type RangeProgress struct {
	Range model.UnhealthyRange

	// Candidates is the number of ids the first scan source holds in the range.
	Candidates int

	// Remaining is the number of candidates not yet in FixedDocs. A scanned
	// range with zero remaining is done.
	Remaining int
}

// Done reports whether every candidate id has been repaired.
func (p RangeProgress) Done() bool {
	return p.Range.Scanned && p.Remaining == 0
}

// Progress returns the repair state of every range in catalog order.
func (s *Store) Progress(ctx context.Context) ([]RangeProgress, error) {
	ranges, err := s.Ranges(ctx)
	if err != nil {
		return nil, fmt.Errorf("progress: %w", err)
	}

	out := make([]RangeProgress, 0, len(ranges))
	for _, r := range ranges {
		p, err := s.rangeProgress(ctx, r)
		if err != nil {
			return nil, fmt.Errorf("progress: %w", err)
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *Store) rangeProgress(ctx context.Context, r model.UnhealthyRange) (RangeProgress, error) {
	p := RangeProgress{Range: r}
	if len(r.ScanSources) == 0 {
		return p, nil
	}

	first := s.Collection(r.SourceNamespace(0))
	docs, err := first.FindRange(ctx, r.Key.Min, r.Key.Max)
	if err != nil {
		return p, err
	}
	p.Candidates = len(docs)
	for _, d := range docs {
		if !r.FixedDocs.Has(d.ID()) {
			p.Remaining++
		}
	}
	return p, nil
}
