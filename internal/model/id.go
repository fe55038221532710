package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

type idKind int

const (
	idNone idKind = iota
	idInt
	idFloat
	idString
)

// ID is a document _id. The zero value is not a valid id.
type ID struct {
	kind idKind
	i    int64
	f    float64
	s    string
}

// IntID returns an integer id.
func IntID(n int64) ID {
	return ID{kind: idInt, i: n}
}

// FloatID returns a floating point id. Integral values collapse to IntID so
// that 5 and 5.0 name the same document, as they do in the database.
func FloatID(f float64) ID {
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return IntID(int64(f))
	}
	return ID{kind: idFloat, f: f}
}

// StringID returns a string id.
func StringID(s string) ID {
	return ID{kind: idString, s: s}
}

// IsZero reports whether id was never assigned.
func (id ID) IsZero() bool {
	return id.kind == idNone
}

// IsNumber reports whether id is an integer or float.
func (id ID) IsNumber() bool {
	return id.kind == idInt || id.kind == idFloat
}

// Value returns the id as int64, float64 or string, suitable as a
// database/sql argument.
func (id ID) Value() any {
	switch id.kind {
	case idInt:
		return id.i
	case idFloat:
		return id.f
	case idString:
		return id.s
	default:
		return nil
	}
}

// String returns the canonical JSON text of the id.
func (id ID) String() string {
	switch id.kind {
	case idInt:
		return strconv.FormatInt(id.i, 10)
	case idFloat:
		return strconv.FormatFloat(id.f, 'g', -1, 64)
	case idString:
		b, _ := marshalCanonicalString(id.s)
		return string(b)
	default:
		return "null"
	}
}

// Equal reports whether two ids name the same document.
func (id ID) Equal(other ID) bool {
	return CompareIDs(id, other) == 0
}

// MarshalJSON implements json.Marshaler.
func (id ID) MarshalJSON() ([]byte, error) {
	if id.IsZero() {
		return nil, fmt.Errorf("marshal id: zero id")
	}
	return []byte(id.String()), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (id *ID) UnmarshalJSON(data []byte) error {
	parsed, err := ParseIDText(string(data))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// ParseIDText parses the canonical JSON text produced by ID.String.
func ParseIDText(text string) (ID, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return ID{}, fmt.Errorf("parse id %q: %w", text, err)
	}
	return ParseIDValue(v)
}

// ParseIDValue converts a decoded JSON or YAML scalar into an ID.
func ParseIDValue(v any) (ID, error) {
	switch val := v.(type) {
	case string:
		return StringID(val), nil
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return IntID(n), nil
		}
		f, err := val.Float64()
		if err != nil {
			return ID{}, fmt.Errorf("parse id: %w", err)
		}
		return floatIDChecked(f)
	case int:
		return IntID(int64(val)), nil
	case int64:
		return IntID(val), nil
	case uint64:
		if val > math.MaxInt64 {
			return ID{}, fmt.Errorf("parse id: %d overflows int64", val)
		}
		return IntID(int64(val)), nil
	case float64:
		return floatIDChecked(val)
	case ID:
		return val, nil
	default:
		return ID{}, fmt.Errorf("parse id: unsupported _id type %T", v)
	}
}

func floatIDChecked(f float64) (ID, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return ID{}, fmt.Errorf("parse id: %v is not a valid _id", f)
	}
	return FloatID(f), nil
}

// CompareIDs orders ids the way the store does: numbers before strings,
// numbers by value, strings bytewise.
func CompareIDs(a, b ID) int {
	if a.IsNumber() && b.IsNumber() {
		af, bf := a.number(), b.number()
		if a.kind == idInt && b.kind == idInt {
			switch {
			case a.i < b.i:
				return -1
			case a.i > b.i:
				return 1
			}
			return 0
		}
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		}
		return 0
	}
	if a.kind != b.kind {
		return rank(a.kind) - rank(b.kind)
	}
	if a.kind == idString {
		return strings.Compare(a.s, b.s)
	}
	return 0
}

func rank(k idKind) int {
	switch k {
	case idInt, idFloat:
		return 1
	case idString:
		return 2
	default:
		return 0
	}
}

func (id ID) number() float64 {
	if id.kind == idInt {
		return float64(id.i)
	}
	return id.f
}

// IDSet is a set of document ids keyed by canonical text.
type IDSet struct {
	m map[string]ID
}

// NewIDSet returns a set holding ids.
func NewIDSet(ids ...ID) IDSet {
	s := IDSet{m: make(map[string]ID, len(ids))}
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Add inserts id. Adding an id twice is a no-op.
func (s *IDSet) Add(id ID) {
	if s.m == nil {
		s.m = make(map[string]ID)
	}
	s.m[id.String()] = id
}

// Has reports whether id is in the set.
func (s IDSet) Has(id ID) bool {
	_, ok := s.m[id.String()]
	return ok
}

// Len returns the number of ids in the set.
func (s IDSet) Len() int {
	return len(s.m)
}

// IDs returns the members in store order.
func (s IDSet) IDs() []ID {
	out := make([]ID, 0, len(s.m))
	for _, id := range s.m {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return CompareIDs(out[i], out[j]) < 0 })
	return out
}

// MarshalJSON encodes the set as a sorted JSON array.
func (s IDSet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, id := range s.IDs() {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(id.String())
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}
