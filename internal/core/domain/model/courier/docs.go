// Package courier contains the Courier aggregate: identity, phone-based
// lookup, availability state and traveled-distance accounting.
package courier
