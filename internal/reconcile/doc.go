// Package reconcile decides which observed version of a document becomes
// authoritative.
//
// Classes groups the per-node observations of one document id into
// equivalence classes, largest first. Decide applies a Strategy to those
// classes: majority, then plurality, then two narrow tie-break cases, and
// finally the strategy's fallback (ask the operator or skip).
//
// Deleting is treated differently from keeping. A strategy can allow keeping
// a plurality version while only deleting on a true majority, or never
// deleting at all.
package reconcile
