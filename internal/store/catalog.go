package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/roach88/rsrepair/internal/model"
)

// ScannedRanges returns the ranges the scanner has finished with, in catalog
// order, each with its fixedDocs set loaded.
func (s *Store) ScannedRanges(ctx context.Context) ([]model.UnhealthyRange, error) {
	return s.listRanges(ctx, true)
}

// Ranges returns every range in the catalog, scanned or not.
func (s *Store) Ranges(ctx context.Context) ([]model.UnhealthyRange, error) {
	return s.listRanges(ctx, false)
}

func (s *Store) listRanges(ctx context.Context, scannedOnly bool) ([]model.UnhealthyRange, error) {
	query := `
		SELECT db, coll, min_key, max_key, scan_collections, scanned
		FROM unhealthy_ranges`
	if scannedOnly {
		query += `
		WHERE scanned = 1`
	}
	query += `
		ORDER BY rowid ASC`

	ranges, err := s.queryRanges(ctx, query)
	if err != nil {
		return nil, err
	}

	// The store holds one connection, so fixed docs are loaded only after
	// the range rows are closed.
	for i := range ranges {
		fixed, err := s.FixedDocs(ctx, ranges[i].Key)
		if err != nil {
			return nil, err
		}
		ranges[i].FixedDocs = fixed
	}
	return ranges, nil
}

func (s *Store) queryRanges(ctx context.Context, query string) ([]model.UnhealthyRange, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query ranges: %w", err)
	}
	defer rows.Close()

	ranges := []model.UnhealthyRange{}
	for rows.Next() {
		r, err := scanRange(rows)
		if err != nil {
			return nil, err
		}
		ranges = append(ranges, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ranges: %w", err)
	}
	return ranges, nil
}

func scanRange(rows *sql.Rows) (model.UnhealthyRange, error) {
	var (
		r                model.UnhealthyRange
		minText, maxText string
		sourcesJSON      string
		scanned          int
	)
	if err := rows.Scan(&r.Key.Namespace.DB, &r.Key.Namespace.Collection, &minText, &maxText, &sourcesJSON, &scanned); err != nil {
		return r, fmt.Errorf("scan range: %w", err)
	}

	var err error
	if r.Key.Min, err = model.ParseBoundText(minText); err != nil {
		return r, fmt.Errorf("scan range %s: min_key: %w", r.Key.Namespace, err)
	}
	if r.Key.Max, err = model.ParseBoundText(maxText); err != nil {
		return r, fmt.Errorf("scan range %s: max_key: %w", r.Key.Namespace, err)
	}
	if err := json.Unmarshal([]byte(sourcesJSON), &r.ScanSources); err != nil {
		return r, fmt.Errorf("scan range %s: scan_collections: %w", r.Key.Namespace, err)
	}
	r.Scanned = scanned != 0
	return r, nil
}

// PutRange creates or updates a catalog record. The scan sources and scanned
// flag are replaced; fixed docs already recorded for the range are kept, and
// any in r.FixedDocs are added.
func (s *Store) PutRange(ctx context.Context, r model.UnhealthyRange) error {
	sources := r.ScanSources
	if sources == nil {
		sources = []string{}
	}
	sourcesJSON, err := json.Marshal(sources)
	if err != nil {
		return fmt.Errorf("put range: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("put range: begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO unhealthy_ranges (db, coll, min_key, max_key, scan_collections, scanned)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (db, coll, min_key, max_key) DO UPDATE SET
			scan_collections = excluded.scan_collections,
			scanned = excluded.scanned
	`,
		r.Key.Namespace.DB,
		r.Key.Namespace.Collection,
		r.Key.Min.String(),
		r.Key.Max.String(),
		string(sourcesJSON),
		boolInt(r.Scanned),
	)
	if err != nil {
		return fmt.Errorf("put range %s: %w", r.Key, err)
	}

	for _, id := range r.FixedDocs.IDs() {
		if err := addFixedDoc(ctx, tx, r.Key, id); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("put range: commit: %w", err)
	}
	return nil
}

// FixedDocs returns the ids already repaired in the range.
func (s *Store) FixedDocs(ctx context.Context, key model.RangeKey) (model.IDSet, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT doc_id
		FROM fixed_docs
		WHERE db = ? AND coll = ? AND min_key = ? AND max_key = ?
	`, key.Namespace.DB, key.Namespace.Collection, key.Min.String(), key.Max.String())
	if err != nil {
		return model.IDSet{}, fmt.Errorf("query fixed docs: %w", err)
	}
	defer rows.Close()

	set := model.NewIDSet()
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return model.IDSet{}, fmt.Errorf("scan fixed doc: %w", err)
		}
		id, err := model.ParseIDText(text)
		if err != nil {
			return model.IDSet{}, fmt.Errorf("fixed doc in %s: %w", key, err)
		}
		set.Add(id)
	}
	if err := rows.Err(); err != nil {
		return model.IDSet{}, fmt.Errorf("iterate fixed docs: %w", err)
	}
	return set, nil
}

// AddFixedDoc marks id as repaired in the range.
// Uses ON CONFLICT DO NOTHING: adding an id twice is a no-op.
func (s *Store) AddFixedDoc(ctx context.Context, key model.RangeKey, id model.ID) error {
	return addFixedDoc(ctx, s.db, key, id)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func addFixedDoc(ctx context.Context, e execer, key model.RangeKey, id model.ID) error {
	_, err := e.ExecContext(ctx, `
		INSERT INTO fixed_docs (db, coll, min_key, max_key, doc_id)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`,
		key.Namespace.DB,
		key.Namespace.Collection,
		key.Min.String(),
		key.Max.String(),
		id.String(),
	)
	if err != nil {
		return fmt.Errorf("add fixed doc %s to %s: %w", id, key, err)
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
