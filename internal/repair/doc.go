// Package repair applies decisions to an authoritative collection.
//
// Both write sequences pass every node through a delete and a present state,
// so secondaries applying the op stream never see a delete for a key they
// lack or an insert over a key they hold:
//
//	delete:  upsert {_id, dbcheck_transient_delete: 1}, then delete by _id
//	keep:    delete by _id, then upsert the chosen version
//
// Each step is idempotent on its own, so a crash between the two steps is
// repaired by running the whole sequence again. The fix is recorded (journal
// entry plus fixedDocs add) only after both steps succeed.
package repair
