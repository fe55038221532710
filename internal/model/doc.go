// Package model provides the document and catalog types shared by every
// rsrepair package.
//
// This package imports nothing internal. Store, reconcile, prompt, repair and
// engine all depend on it, never the other way around.
//
// Key constraints:
//   - Document ids are integers, floats or strings. Range bounds additionally
//     admit $minKey and $maxKey.
//   - Document equality is structural over the decoded body. Field order and
//     whitespace in the stored JSON never affect equality.
//   - Canonical JSON (sorted keys, no HTML escaping) is the only encoding used
//     for ids and bounds persisted as keys.
package model
