// Package batch contains the Batch aggregate: a zone-scoped group of orders
// that travels with one courier and shrinks stop by stop as deliveries are
// confirmed.
package batch
