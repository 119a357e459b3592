// Package services provides domain services that span more than one aggregate
// of the dispatch domain.
//
// The package includes:
//   - DeliveryDispatcher: binds an explicitly chosen driver to an order and opens its tracking record
//   - ETACalculator: great-circle distance and a minutes-per-km duration heuristic
//   - CommissionPolicy: the driver's share of an order value
//   - RollupPerformance: period totals recomputed from the earnings ledger
package services
