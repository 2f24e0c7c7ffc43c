// Package sequence assigns human-readable, per-partition sequential identifiers
// of the form PREFIX-PARTITION-NNN (for example JB-26-007 or JB-26-1000).
//
// The next value is derived from the greatest identifier already stored in
// the partition, never from a row count, so deleting records cannot make a
// later identifier collide with a surviving one.
//
// Assignment happens inside a serializing scope provided by a Store: a
// transaction plus a per-partition exclusive lock that is held until the
// transaction ends. Callers must insert the owning record in that same
// transaction, otherwise two callers may observe the same high-water mark.
// Assigner.WithNext packages the whole scope:
//
//	id, err := assigner.WithNext(ctx, "JB", sequence.PartitionForYear(2026),
//	    func(txCtx context.Context, id string) error {
//	        return repo.Create(txCtx, card.WithBillNumber(id))
//	    })
//
// Two stores are provided. PostgresStore serializes with
// pg_advisory_xact_lock and is safe across processes sharing one database.
// MemoryStore serializes in-process and backs tests and the in-memory
// workshop repositories.
package sequence
