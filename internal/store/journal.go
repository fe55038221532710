package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/rsrepair/internal/model"
)

// Journal actions.
const (
	ActionDelete  = "delete"
	ActionReplace = "replace"
)

// Fix is one applied repair write, recorded once both write steps succeed.
type Fix struct {
	RunID    string
	Range    model.RangeKey
	ID       model.ID
	Action   string
	Agreeing int
	Total    int

	// Version is the fingerprint of the document a replace wrote.
	Version string
}

// JournalEntry is one row of the repair journal.
type JournalEntry struct {
	Seq       int64           `json:"seq"`
	RunID     string          `json:"run_id"`
	Namespace model.Namespace `json:"namespace"`
	ID        model.ID        `json:"id"`
	Action    string          `json:"action"`
	Agreeing  int             `json:"agreeing"`
	Total     int             `json:"total"`
	Version   string          `json:"version,omitempty"`
}

// RecordFix appends f to the journal and adds its id to the range's fixed
// docs in one transaction, so a fix is either fully recorded or not at all.
func (s *Store) RecordFix(ctx context.Context, f Fix) error {
	if f.Action != ActionDelete && f.Action != ActionReplace {
		return fmt.Errorf("record fix: unknown action %q", f.Action)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("record fix: begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO repair_journal (run_id, db, coll, doc_id, action, agreeing, total, version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		f.RunID,
		f.Range.Namespace.DB,
		f.Range.Namespace.Collection,
		f.ID.String(),
		f.Action,
		f.Agreeing,
		f.Total,
		f.Version,
	)
	if err != nil {
		return fmt.Errorf("record fix %s: journal: %w", f.ID, err)
	}

	if err := addFixedDoc(ctx, tx, f.Range, f.ID); err != nil {
		return fmt.Errorf("record fix: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("record fix: commit: %w", err)
	}
	return nil
}

// Journal returns the entries written by runID in the order they were applied.
//
// Returns an empty slice (not nil) if the run wrote nothing.
func (s *Store) Journal(ctx context.Context, runID string) ([]JournalEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, run_id, db, coll, doc_id, action, agreeing, total, version
		FROM repair_journal
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	entries := []JournalEntry{}
	for rows.Next() {
		var (
			e      JournalEntry
			idText string
		)
		if err := rows.Scan(&e.Seq, &e.RunID, &e.Namespace.DB, &e.Namespace.Collection, &idText, &e.Action, &e.Agreeing, &e.Total, &e.Version); err != nil {
			return nil, fmt.Errorf("scan journal entry: %w", err)
		}
		if e.ID, err = model.ParseIDText(idText); err != nil {
			return nil, fmt.Errorf("journal entry %d: %w", e.Seq, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate journal: %w", err)
	}
	return entries, nil
}

// LatestRunID returns the run that wrote the most recent journal entry, or
// ErrNotFound if the journal is empty.
func (s *Store) LatestRunID(ctx context.Context) (string, error) {
	var runID string
	err := s.db.QueryRowContext(ctx, `
		SELECT run_id
		FROM repair_journal
		ORDER BY seq DESC
		LIMIT 1
	`).Scan(&runID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("latest run: %w", err)
	}
	return runID, nil
}
