package model

import (
	"crypto/sha256"
	"encoding/hex"
)

// fingerprintDomain separates document fingerprints from any other hash of
// the same bytes. The suffix allows the algorithm to change later.
const fingerprintDomain = "rsrepair/document/v1"

// Fingerprint identifies a document version: the SHA-256 of the domain, a
// zero byte and the canonical JSON of the body, hex encoded. Equal documents
// have equal fingerprints whatever their field order. The zero Document has
// an empty fingerprint.
func (d Document) Fingerprint() string {
	if d.IsZero() {
		return ""
	}
	canonical, err := MarshalCanonical(d.fields)
	if err != nil {
		// fields were decoded from JSON and always re-encode.
		canonical = d.raw
	}
	h := sha256.New()
	h.Write([]byte(fingerprintDomain))
	h.Write([]byte{0x00})
	h.Write(canonical)
	return hex.EncodeToString(h.Sum(nil))
}
