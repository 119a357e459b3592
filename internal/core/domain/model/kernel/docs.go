// Package kernel provides the value objects shared by every aggregate of the dispatch domain.
//
// The package includes:
//   - UUID: identifier for drivers, tracking records, ledger entries and orders
//   - Location, Point, Position, Place: geographic coordinates, timed fixes and resolved addresses
//   - Money: two-decimal currency amounts backed by shopspring/decimal
//   - Principal: the authenticated caller carried on a context.Context
//   - Clock: the time source used by handlers
//
// Value objects are immutable. Those with a constructor guard reject their zero value
// in Validate.
package kernel
