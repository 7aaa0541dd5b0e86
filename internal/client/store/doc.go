// Package store is the local record store: one collection per kind, kept as
// a JSON document in the kv table and rewritten whole on every mutation.
//
// Mutations of one collection are serialized by a mutex and committed in a
// single SQLite transaction; the cloud mirror is told afterwards and never
// awaited. Reads decode the document, which is also where legacy record
// shapes get normalized.
//
// Not-found is reported as common.ErrorNotFound. Remove of an unknown id is
// a no-op.
package store
