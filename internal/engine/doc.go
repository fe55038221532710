// Package engine runs a repair over the unhealthy range catalog.
//
// For each scanned range, in catalog order, the engine enumerates the ids the
// first scan source holds in [min, max), skips ids already in the range's
// fixed docs, and for each remaining id:
//
//  1. reads the id from every scan source (concurrently; absent means missing)
//  2. groups the observations into equivalence classes
//  3. decides with the configured strategy, asking the operator if deferred
//  4. reports the outcome (verbose or dry run)
//  5. applies the two-step write and records the fix (not in a dry run)
//
// Step 5 completes before the next id starts. There is no other progress
// state: a restarted run skips what is recorded and continues.
//
// Run ids are UUIDv7 so journal runs sort by start time.
package engine
