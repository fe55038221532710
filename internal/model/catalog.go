package model

import (
	"fmt"
	"strings"
)

// Namespace names one collection in one database.
type Namespace struct {
	DB         string `json:"db"`
	Collection string `json:"collection"`
}

// ParseNamespace splits "db.collection" at the first dot.
func ParseNamespace(s string) (Namespace, error) {
	i := strings.Index(s, ".")
	if i <= 0 || i == len(s)-1 {
		return Namespace{}, fmt.Errorf("invalid namespace %q: expected db.collection", s)
	}
	return Namespace{DB: s[:i], Collection: s[i+1:]}, nil
}

func (n Namespace) String() string {
	return n.DB + "." + n.Collection
}

// RangeKey identifies an unhealthy range: the half-open interval [Min, Max)
// of one namespace.
type RangeKey struct {
	Namespace Namespace `json:"namespace"`
	Min       Bound     `json:"min_key"`
	Max       Bound     `json:"max_key"`
}

// Contains reports whether id falls in [Min, Max).
func (k RangeKey) Contains(id ID) bool {
	return k.Min.atOrBelow(id) && k.Max.above(id)
}

func (k RangeKey) String() string {
	return fmt.Sprintf("%s [%s, %s)", k.Namespace, k.Min, k.Max)
}

// UnhealthyRange is one record of the range catalog written by the scanner.
//
// ScanSources order defines the node index used by equivalence classes.
// FixedDocs only grows during a repair run.
type UnhealthyRange struct {
	Key         RangeKey
	ScanSources []string
	Scanned     bool
	FixedDocs   IDSet
}

// SourceNamespace returns the namespace of scan source i. Scan-source
// collections live in the same database as the range's namespace.
func (r UnhealthyRange) SourceNamespace(i int) Namespace {
	return Namespace{DB: r.Key.Namespace.DB, Collection: r.ScanSources[i]}
}
