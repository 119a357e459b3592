// Package order provides the dispatch-side view of a laundry order.
//
// Orders are owned by the ordering subsystem. Dispatch only reads the fields it
// needs (identifier, address, total, category, status) and links the order to
// the driver chosen for it. The order status is opaque here.
package order
