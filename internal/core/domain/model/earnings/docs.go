// Package earnings contains the append-only earnings ledger and the
// read-time period filtering every earnings total is derived from.
package earnings
