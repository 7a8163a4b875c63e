// Package mongostore stores session data in a MongoDB collection.
//
// Documents look like
//
//	{_id: "{name}_{id}", name: "{name}", data: BinData, written_at: NumberLong}
//
// so several session names can share one collection; GC only deletes
// documents of the name passed to Open. Call EnsureIndexes once at startup to
// index the GC query.
package mongostore
