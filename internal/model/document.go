package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
)

// IDField is the primary key field of every document.
const IDField = "_id"

// Document is one stored document body.
//
// The raw JSON is kept so writes preserve the field order the document was
// read with; fields is the decoded form used for equality and projection.
type Document struct {
	id     ID
	raw    []byte
	fields map[string]any
}

// ParseDocument decodes a JSON object that carries an _id.
// Numbers are decoded as json.Number so integers never lose precision.
func ParseDocument(raw []byte) (Document, error) {
	d, err := decodeDocument(raw)
	if err != nil {
		return Document{}, err
	}
	if d.id.IsZero() {
		return Document{}, fmt.Errorf("parse document: missing %s", IDField)
	}
	return d, nil
}

// NewDocument builds a Document from already decoded fields, for example a
// YAML fixture. Values are normalized through JSON so a document built here
// compares equal to the same document read back from the store.
func NewDocument(fields map[string]any) (Document, error) {
	raw, err := json.Marshal(fields)
	if err != nil {
		return Document{}, fmt.Errorf("new document: %w", err)
	}
	return ParseDocument(raw)
}

func decodeDocument(raw []byte) (Document, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return Document{}, fmt.Errorf("parse document: %w", err)
	}
	if fields == nil {
		return Document{}, fmt.Errorf("parse document: not an object")
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, raw); err != nil {
		return Document{}, fmt.Errorf("parse document: %w", err)
	}
	d := Document{raw: compact.Bytes(), fields: fields}
	if v, ok := fields[IDField]; ok {
		id, err := ParseIDValue(v)
		if err != nil {
			return Document{}, fmt.Errorf("parse document: %w", err)
		}
		d.id = id
	}
	return d, nil
}

// documentFromFields is used for projected views, which may lack an _id.
func documentFromFields(fields map[string]any) (Document, error) {
	raw, err := MarshalCanonical(fields)
	if err != nil {
		return Document{}, err
	}
	return decodeDocument(raw)
}

// ID returns the document's _id.
func (d Document) ID() ID {
	return d.id
}

// IsZero reports whether d holds no document.
func (d Document) IsZero() bool {
	return d.fields == nil
}

// Raw returns the compact JSON body.
func (d Document) Raw() []byte {
	return d.raw
}

// Fields returns the decoded body. Callers must not modify it.
func (d Document) Fields() map[string]any {
	return d.fields
}

// Has reports whether the top-level field is present.
func (d Document) Has(field string) bool {
	_, ok := d.fields[field]
	return ok
}

// Equal reports structural equality of the decoded bodies. Field order is
// ignored and numbers compare by value, so 1, 1.0 and 1e0 are equal.
func (d Document) Equal(other Document) bool {
	if d.IsZero() || other.IsZero() {
		return d.IsZero() && other.IsZero()
	}
	return valuesEqual(d.fields, other.fields)
}

func valuesEqual(a, b any) bool {
	switch av := a.(type) {
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, x := range av {
			y, ok := bv[k]
			if !ok || !valuesEqual(x, y) {
				return false
			}
		}
		return true
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !valuesEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	case json.Number:
		bv, ok := b.(json.Number)
		return ok && numbersEqual(av, bv)
	default:
		return a == b
	}
}

// numbersEqual compares exactly, falling back to the text when either side
// does not parse as a rational.
func numbersEqual(a, b json.Number) bool {
	if a == b {
		return true
	}
	x, okA := new(big.Rat).SetString(string(a))
	y, okB := new(big.Rat).SetString(string(b))
	if !okA || !okB {
		return false
	}
	return x.Cmp(y) == 0
}

// Pretty renders the document as indented canonical JSON.
func (d Document) Pretty() string {
	if d.IsZero() {
		return "null"
	}
	b, err := MarshalCanonicalIndent(d.fields, "  ")
	if err != nil {
		return string(d.raw)
	}
	return string(b)
}
