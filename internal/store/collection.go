package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/rsrepair/internal/model"
)

// Collection is one namespace's documents: a scan-source snapshot or an
// authoritative collection. Reads and writes are point operations by _id,
// except FindRange which enumerates a scan source.
type Collection struct {
	s  *Store
	ns model.Namespace
}

// Collection returns a handle on ns. The collection need not exist yet.
func (s *Store) Collection(ns model.Namespace) *Collection {
	return &Collection{s: s, ns: ns}
}

// Namespace returns the namespace the handle addresses.
func (c *Collection) Namespace() model.Namespace {
	return c.ns
}

// FindByID returns the document stored at id, or ErrNotFound.
func (c *Collection) FindByID(ctx context.Context, id model.ID) (model.Document, error) {
	var body string
	err := c.s.db.QueryRowContext(ctx, `
		SELECT body
		FROM documents
		WHERE db = ? AND coll = ? AND doc_id = ?
	`, c.ns.DB, c.ns.Collection, id.Value()).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Document{}, ErrNotFound
	}
	if err != nil {
		return model.Document{}, fmt.Errorf("find %s in %s: %w", id, c.ns, err)
	}
	doc, err := model.ParseDocument([]byte(body))
	if err != nil {
		return model.Document{}, fmt.Errorf("find %s in %s: %w", id, c.ns, err)
	}
	return doc, nil
}

// FindProjected returns the document at id with p applied, or ErrNotFound.
func (c *Collection) FindProjected(ctx context.Context, id model.ID, p model.Projection) (model.Document, error) {
	doc, err := c.FindByID(ctx, id)
	if err != nil {
		return model.Document{}, err
	}
	projected, err := p.Apply(doc)
	if err != nil {
		return model.Document{}, fmt.Errorf("project %s in %s: %w", id, c.ns, err)
	}
	return projected, nil
}

// FindRange returns the documents with minKey <= _id < maxKey ordered by _id.
// Numbers sort before strings, the same cross-type order the bounds use.
func (c *Collection) FindRange(ctx context.Context, minKey, maxKey model.Bound) ([]model.Document, error) {
	where, args := c.rangeClause(minKey, maxKey)
	rows, err := c.s.db.QueryContext(ctx, `
		SELECT body
		FROM documents
		WHERE `+where+`
		ORDER BY doc_id ASC
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("query range of %s: %w", c.ns, err)
	}
	defer rows.Close()

	docs := []model.Document{}
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scan document in %s: %w", c.ns, err)
		}
		doc, err := model.ParseDocument([]byte(body))
		if err != nil {
			return nil, fmt.Errorf("document in %s: %w", c.ns, err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate range of %s: %w", c.ns, err)
	}
	return docs, nil
}

func (c *Collection) rangeClause(minKey, maxKey model.Bound) (string, []any) {
	conds := []string{"db = ?", "coll = ?"}
	args := []any{c.ns.DB, c.ns.Collection}
	switch {
	case minKey.IsMax():
		conds = append(conds, "0")
	case !minKey.IsMin():
		id, _ := minKey.ID()
		conds = append(conds, "doc_id >= ?")
		args = append(args, id.Value())
	}
	switch {
	case maxKey.IsMin():
		conds = append(conds, "0")
	case !maxKey.IsMax():
		id, _ := maxKey.ID()
		conds = append(conds, "doc_id < ?")
		args = append(args, id.Value())
	}
	return strings.Join(conds, " AND "), args
}

// Upsert replaces the document at doc's _id, inserting it if absent.
func (c *Collection) Upsert(ctx context.Context, doc model.Document) error {
	return upsertDocument(ctx, c.s.db, c.ns, doc)
}

func upsertDocument(ctx context.Context, e execer, ns model.Namespace, doc model.Document) error {
	id := doc.ID()
	if id.IsZero() {
		return fmt.Errorf("upsert into %s: document has no _id", ns)
	}
	_, err := e.ExecContext(ctx, `
		INSERT INTO documents (db, coll, doc_id, body)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (db, coll, doc_id) DO UPDATE SET body = excluded.body
	`, ns.DB, ns.Collection, id.Value(), string(doc.Raw()))
	if err != nil {
		return fmt.Errorf("upsert %s into %s: %w", id, ns, err)
	}
	return nil
}

// DeleteByID removes the document at id. Deleting an absent id is a no-op.
func (c *Collection) DeleteByID(ctx context.Context, id model.ID) error {
	_, err := c.s.db.ExecContext(ctx, `
		DELETE FROM documents
		WHERE db = ? AND coll = ? AND doc_id = ?
	`, c.ns.DB, c.ns.Collection, id.Value())
	if err != nil {
		return fmt.Errorf("delete %s from %s: %w", id, c.ns, err)
	}
	return nil
}
