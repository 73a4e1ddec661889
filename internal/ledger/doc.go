// Package ledger is the write side of Happy Places.
//
// A Writer validates input, stamps placements with a timestamp and appends
// them to the store. It is the only path that creates co-presence edges.
//
// Every validation failure is reported as a model.Error with code
// VALIDATION before anything is written. Store failures are wrapped as
// STORE_UNAVAILABLE and are not retried.
package ledger
