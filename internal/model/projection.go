package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Projection selects fields of a document for display, with the database's
// rules: a projection either includes or excludes fields, dotted paths reach
// into embedded documents, and _id is included unless explicitly excluded.
type Projection struct {
	paths     [][]string
	include   bool
	excludeID bool
}

// ParseProjection parses a JSON projection such as {"a": 1, "b.c": 1} or
// {"big": 0}. Values must be 0, 1, true or false.
func ParseProjection(text string) (Projection, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(text)))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return Projection{}, fmt.Errorf("projection is not a JSON object: %w", err)
	}
	if dec.More() {
		return Projection{}, fmt.Errorf("projection has trailing data")
	}

	var p Projection
	var mode string
	for field, v := range fields {
		on, err := projectionFlag(field, v)
		if err != nil {
			return Projection{}, err
		}
		if field == IDField {
			p.excludeID = !on
			continue
		}
		want := "exclude"
		if on {
			want = "include"
		}
		if mode != "" && mode != want {
			return Projection{}, fmt.Errorf("projection cannot mix inclusion and exclusion")
		}
		mode = want
		if field == "" || strings.HasPrefix(field, ".") || strings.HasSuffix(field, ".") {
			return Projection{}, fmt.Errorf("projection field %q is not a valid path", field)
		}
		p.paths = append(p.paths, strings.Split(field, "."))
	}
	for i, a := range p.paths {
		for j, b := range p.paths {
			if i != j && len(a) <= len(b) && strings.Join(b[:len(a)], ".") == strings.Join(a, ".") {
				return Projection{}, fmt.Errorf("projection path collision at %q", strings.Join(a, "."))
			}
		}
	}
	p.include = mode == "include"
	return p, nil
}

func projectionFlag(field string, v any) (bool, error) {
	switch val := v.(type) {
	case bool:
		return val, nil
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return false, fmt.Errorf("projection value for %q: %w", field, err)
		}
		return f != 0, nil
	default:
		return false, fmt.Errorf("projection value for %q must be 0, 1, true or false", field)
	}
}

// Apply returns the projected view of d.
func (p Projection) Apply(d Document) (Document, error) {
	if d.IsZero() {
		return d, nil
	}
	var out map[string]any
	if p.include {
		out = map[string]any{}
		for _, path := range p.paths {
			includePath(d.fields, out, path)
		}
		if !p.excludeID {
			if v, ok := d.fields[IDField]; ok {
				out[IDField] = v
			}
		}
	} else {
		out = deepCopyObject(d.fields)
		for _, path := range p.paths {
			excludePath(out, path)
		}
		if p.excludeID {
			delete(out, IDField)
		}
	}
	return documentFromFields(out)
}

func includePath(src, dst map[string]any, path []string) {
	v, ok := src[path[0]]
	if !ok {
		return
	}
	if len(path) == 1 {
		dst[path[0]] = deepCopy(v)
		return
	}
	switch child := v.(type) {
	case map[string]any:
		sub, _ := dst[path[0]].(map[string]any)
		if sub == nil {
			sub = map[string]any{}
			dst[path[0]] = sub
		}
		includePath(child, sub, path[1:])
	case []any:
		arr, _ := dst[path[0]].([]any)
		if arr == nil {
			arr = make([]any, 0, len(child))
			for _, elem := range child {
				if _, ok := elem.(map[string]any); ok {
					arr = append(arr, map[string]any{})
				}
			}
			dst[path[0]] = arr
		}
		i := 0
		for _, elem := range child {
			if obj, ok := elem.(map[string]any); ok {
				includePath(obj, arr[i].(map[string]any), path[1:])
				i++
			}
		}
	}
}

func excludePath(obj map[string]any, path []string) {
	if len(path) == 1 {
		delete(obj, path[0])
		return
	}
	switch child := obj[path[0]].(type) {
	case map[string]any:
		excludePath(child, path[1:])
	case []any:
		for _, elem := range child {
			if sub, ok := elem.(map[string]any); ok {
				excludePath(sub, path[1:])
			}
		}
	}
}

func deepCopy(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return deepCopyObject(val)
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = deepCopy(elem)
		}
		return out
	default:
		return v
	}
}

func deepCopyObject(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = deepCopy(v)
	}
	return out
}
