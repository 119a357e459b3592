// Package driver contains the Driver aggregate of the driver pool registry.
//
// A driver moves between Offline, Available and Busy. Shifts toggle between
// Offline and Available; dispatch moves Available to Busy and a delivered
// tracking record moves Busy back to Available.
//
// The aggregate also carries the running accounting totals that the earnings
// ledger feeds: total earnings and deliveries, the running mean delivery time,
// the completion rate, the rating kept as sum and count, and a performance
// snapshot recomputed from the ledger.
package driver
