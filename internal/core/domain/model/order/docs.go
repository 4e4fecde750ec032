// Package order contains the Order aggregate and its lifecycle status
// machine (Confirmed -> Queued -> Batched -> OutForDelivery -> Delivered).
package order
