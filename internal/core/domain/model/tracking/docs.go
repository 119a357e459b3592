// Package tracking contains the DeliveryTracking aggregate: one delivery's
// lifecycle from assignment to hand-over, together with the driver's latest
// location and the last computed ETA.
//
// The lifecycle is strictly forward:
//
//	assigned -> pickup_started -> picked_up -> delivery_started -> delivered
//
// Skipping or moving backward is rejected with a state conflict. Repeating the
// current status is accepted as a no-op so callers can retry safely.
package tracking
