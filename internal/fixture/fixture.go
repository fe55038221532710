// Package fixture loads YAML descriptions of a scanned replica set: the
// unhealthy range catalog plus the documents each scan source and each
// authoritative collection hold. Seed writes a fixture into a store.
package fixture

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/roach88/rsrepair/internal/model"
	"github.com/roach88/rsrepair/internal/store"
)

// Fixture is a seedable catalog.
//
// Example:
//
//	ranges:
//	  - namespace: shop.orders
//	    min: {$minKey: 1}
//	    max: 100
//	    scanned: true
//	    scan_sources: [scan_0, scan_1, scan_2]
//	collections:
//	  shop.scan_0:
//	    - {_id: 7, qty: 3}
//	  shop.scan_1:
//	    - {_id: 7, dbcheck_docWasMissing: 1}
type Fixture struct {
	// Ranges are written to the catalog in order.
	Ranges []Range `yaml:"ranges"`

	// Collections maps "db.collection" to the documents it holds. Scan
	// sources and authoritative collections are both listed here.
	Collections map[string][]map[string]any `yaml:"collections"`
}

// Range is one unhealthy range record.
type Range struct {
	Namespace   string   `yaml:"namespace"`
	Min         any      `yaml:"min"`
	Max         any      `yaml:"max"`
	Scanned     bool     `yaml:"scanned"`
	ScanSources []string `yaml:"scan_sources"`
	FixedDocs   []any    `yaml:"fixed_docs,omitempty"`
}

// Load reads and parses a fixture file.
// Returns an error if the file doesn't exist, is malformed, or contains
// unknown fields (typos).
func Load(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture file: %w", err)
	}
	return Parse(data)
}

// Parse decodes fixture YAML with strict field checking.
func Parse(data []byte) (*Fixture, error) {
	var f Fixture
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := validateFixture(&f); err != nil {
		return nil, fmt.Errorf("invalid fixture: %w", err)
	}
	return &f, nil
}

func validateFixture(f *Fixture) error {
	for i, r := range f.Ranges {
		if r.Namespace == "" {
			return fmt.Errorf("ranges[%d]: namespace is required", i)
		}
		if r.Min == nil || r.Max == nil {
			return fmt.Errorf("ranges[%d]: min and max are required", i)
		}
		if r.Scanned && len(r.ScanSources) == 0 {
			return fmt.Errorf("ranges[%d]: a scanned range needs scan_sources", i)
		}
	}
	for ns, docs := range f.Collections {
		for i, d := range docs {
			if _, ok := d[model.IDField]; !ok {
				return fmt.Errorf("collections[%s][%d]: %s is required", ns, i, model.IDField)
			}
		}
	}
	return nil
}

// Result counts what Seed wrote.
type Result struct {
	Ranges    int `json:"ranges"`
	Documents int `json:"documents"`
}

// Seed writes f into s. Ranges are upserted and documents replace any
// stored at the same _id, so seeding twice is harmless.
func Seed(ctx context.Context, s *store.Store, f *Fixture) (Result, error) {
	var res Result

	for i, fr := range f.Ranges {
		r, err := fr.toRange()
		if err != nil {
			return res, fmt.Errorf("ranges[%d]: %w", i, err)
		}
		if err := s.PutRange(ctx, r); err != nil {
			return res, fmt.Errorf("ranges[%d]: %w", i, err)
		}
		res.Ranges++
	}

	names := make([]string, 0, len(f.Collections))
	for name := range f.Collections {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		ns, err := model.ParseNamespace(name)
		if err != nil {
			return res, fmt.Errorf("collections: %w", err)
		}
		c := s.Collection(ns)
		for i, fields := range f.Collections[name] {
			doc, err := model.NewDocument(fields)
			if err != nil {
				return res, fmt.Errorf("collections[%s][%d]: %w", name, i, err)
			}
			if err := c.Upsert(ctx, doc); err != nil {
				return res, fmt.Errorf("collections[%s][%d]: %w", name, i, err)
			}
			res.Documents++
		}
	}
	return res, nil
}

func (fr Range) toRange() (model.UnhealthyRange, error) {
	ns, err := model.ParseNamespace(fr.Namespace)
	if err != nil {
		return model.UnhealthyRange{}, err
	}
	minKey, err := model.ParseBoundValue(fr.Min)
	if err != nil {
		return model.UnhealthyRange{}, fmt.Errorf("min: %w", err)
	}
	maxKey, err := model.ParseBoundValue(fr.Max)
	if err != nil {
		return model.UnhealthyRange{}, fmt.Errorf("max: %w", err)
	}

	fixed := model.NewIDSet()
	for i, v := range fr.FixedDocs {
		id, err := model.ParseIDValue(v)
		if err != nil {
			return model.UnhealthyRange{}, fmt.Errorf("fixed_docs[%d]: %w", i, err)
		}
		fixed.Add(id)
	}

	return model.UnhealthyRange{
		Key:         model.RangeKey{Namespace: ns, Min: minKey, Max: maxKey},
		ScanSources: fr.ScanSources,
		Scanned:     fr.Scanned,
		FixedDocs:   fixed,
	}, nil
}
