// Package projection derives point-in-time views from the placement ledger.
//
// Nothing here is cached: every view is recomputed from the store when it
// is requested, using the Engine's clock for "now".
package projection
