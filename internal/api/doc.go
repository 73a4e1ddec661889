// Package api exposes the read side of the ledger over HTTP.
//
// The router is read-only: every route is a GET backed by the projection
// engine, the analyzer or the exporter. Responses use the same
// {status, data | error} envelope as the CLI's JSON output.
package api
