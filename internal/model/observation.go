package model

// MissingField marks a scan-source placeholder for a document that was
// absent on that node. The scanner writes {_id: <id>, dbcheck_docWasMissing: 1}.
const MissingField = "dbcheck_docWasMissing"

// TransientDeleteField tags the placeholder upserted before a delete.
const TransientDeleteField = "dbcheck_transient_delete"

// Observation is a document as seen on one node, or the missing marker.
type Observation struct {
	doc     Document
	missing bool
}

// Observed wraps a scan-source document. Documents carrying MissingField are
// the missing marker.
func Observed(d Document) Observation {
	return Observation{doc: d, missing: d.IsZero() || d.Has(MissingField)}
}

// Missing returns the missing marker for a node that has no document at all.
func Missing() Observation {
	return Observation{missing: true}
}

// IsMissing reports whether this is the missing marker.
func (o Observation) IsMissing() bool {
	return o.missing
}

// Document returns the observed document. It is the zero Document for
// markers created by Missing.
func (o Observation) Document() Document {
	return o.doc
}

// Equal reports whether two observations belong to the same equivalence
// class. Any two markers are equal regardless of placeholder body.
func (o Observation) Equal(other Observation) bool {
	if o.missing || other.missing {
		return o.missing && other.missing
	}
	return o.doc.Equal(other.doc)
}

// TransientDeletePlaceholder is the document upserted at id before deleting
// it, so every node passes through a present state first.
func TransientDeletePlaceholder(id ID) Document {
	d, err := NewDocument(map[string]any{IDField: id.Value(), TransientDeleteField: 1})
	if err != nil {
		// Only unsupported id types fail, and every ID holds a supported one.
		panic(err)
	}
	return d
}
