package reconcile

import (
	"sort"

	"github.com/roach88/rsrepair/internal/model"
)

// Class is one equivalence class of observations for a document id.
type Class struct {
	// Representative is the first observation seen for this class.
	Representative model.Observation

	// Count is the number of nodes holding this observation.
	Count int

	// Sources are the scan-source indices holding it, ascending.
	Sources []int
}

// IsMissing reports whether this class is the missing marker.
func (c Class) IsMissing() bool {
	return c.Representative.IsMissing()
}

// Classes partitions observations into equivalence classes. observations[i]
// is what scan source i holds for the document.
//
// Each observation is compared linearly against the existing classes, which
// is O(n^2) in the number of nodes. Replica sets are small and documents are
// not hash-stable (field order, number encodings), so no hashing is attempted.
//
// The result is sorted by Count descending; ties keep first-seen order.
func Classes(observations []model.Observation) []Class {
	classes := make([]Class, 0, len(observations))
	for i, obs := range observations {
		matched := false
		for j := range classes {
			if classes[j].Representative.Equal(obs) {
				classes[j].Count++
				classes[j].Sources = append(classes[j].Sources, i)
				matched = true
				break
			}
		}
		if !matched {
			classes = append(classes, Class{Representative: obs, Count: 1, Sources: []int{i}})
		}
	}
	sort.SliceStable(classes, func(a, b int) bool {
		return classes[a].Count > classes[b].Count
	})
	return classes
}

// Total returns the number of nodes across all classes.
func Total(classes []Class) int {
	n := 0
	for _, c := range classes {
		n += c.Count
	}
	return n
}

// MissingCount returns the number of nodes on which the document is absent.
func MissingCount(classes []Class) int {
	for _, c := range classes {
		if c.IsMissing() {
			return c.Count
		}
	}
	return 0
}
