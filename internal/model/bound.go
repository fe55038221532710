package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type boundKind int

const (
	boundValue boundKind = iota
	boundMin
	boundMax
)

// Bound is one end of a key range: a concrete id, or the $minKey / $maxKey
// sentinels that sort before and after every id.
type Bound struct {
	kind boundKind
	id   ID
}

var (
	// MinKey sorts before every id.
	MinKey = Bound{kind: boundMin}
	// MaxKey sorts after every id.
	MaxKey = Bound{kind: boundMax}
)

// BoundAt returns a bound at id.
func BoundAt(id ID) Bound {
	return Bound{kind: boundValue, id: id}
}

// ID returns the bound's id and false for the sentinels.
func (b Bound) ID() (ID, bool) {
	if b.kind != boundValue || b.id.IsZero() {
		return ID{}, false
	}
	return b.id, true
}

// IsMin reports whether b is $minKey.
func (b Bound) IsMin() bool { return b.kind == boundMin }

// IsMax reports whether b is $maxKey.
func (b Bound) IsMax() bool { return b.kind == boundMax }

// String returns the canonical JSON text of the bound.
func (b Bound) String() string {
	switch b.kind {
	case boundMin:
		return `{"$minKey":1}`
	case boundMax:
		return `{"$maxKey":1}`
	default:
		return b.id.String()
	}
}

// MarshalJSON implements json.Marshaler.
func (b Bound) MarshalJSON() ([]byte, error) {
	if b.kind == boundValue && b.id.IsZero() {
		return nil, fmt.Errorf("marshal bound: zero id")
	}
	return []byte(b.String()), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (b *Bound) UnmarshalJSON(data []byte) error {
	parsed, err := ParseBoundText(string(data))
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// ParseBoundText parses the canonical JSON text produced by Bound.String.
func ParseBoundText(text string) (Bound, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(text)))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return Bound{}, fmt.Errorf("parse bound %q: %w", text, err)
	}
	return ParseBoundValue(v)
}

// ParseBoundValue converts a decoded JSON or YAML value into a Bound.
// Objects with a single $minKey or $maxKey field are the sentinels.
func ParseBoundValue(v any) (Bound, error) {
	if m, ok := v.(map[string]any); ok {
		if len(m) == 1 {
			if _, ok := m["$minKey"]; ok {
				return MinKey, nil
			}
			if _, ok := m["$maxKey"]; ok {
				return MaxKey, nil
			}
		}
		return Bound{}, fmt.Errorf("parse bound: object bound must be {$minKey: 1} or {$maxKey: 1}")
	}
	id, err := ParseIDValue(v)
	if err != nil {
		return Bound{}, fmt.Errorf("parse bound: %w", err)
	}
	return BoundAt(id), nil
}

// atOrBelow reports whether id sorts at or after b, the inclusive lower bound.
func (b Bound) atOrBelow(id ID) bool {
	switch b.kind {
	case boundMin:
		return true
	case boundMax:
		return false
	default:
		return CompareIDs(b.id, id) <= 0
	}
}

// above reports whether id sorts strictly before b, the exclusive upper bound.
func (b Bound) above(id ID) bool {
	switch b.kind {
	case boundMin:
		return false
	case boundMax:
		return true
	default:
		return CompareIDs(id, b.id) < 0
	}
}
