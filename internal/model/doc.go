// Package model defines the entity types shared by every Happy Places
// package: items, placements, co-presence edges, zones, the metadata value
// type, timestamp handling and the error taxonomy.
//
// This package imports nothing internal. Store, ledger, projection and
// analysis all build on it.
//
// Key design constraints:
//   - Category and DistributionType are closed enums, validated at the
//     write boundary (see Valid).
//   - Timestamps are fixed-width UTC strings so lexical order is time order.
//   - Metadata is always an Object, never an array or scalar.
//   - All JSON tags use snake_case and match the persisted column names.
package model
