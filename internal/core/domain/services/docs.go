// Package services provides domain services that orchestrate business
// operations spanning multiple aggregates in the dispatch system.
//
// The package includes:
//   - BatchScheduler: per-zone order queues with size and age batch triggers
//   - SelectionPolicy / RandomSelectionPolicy: courier choice among idle candidates
//   - DispatchBoard: in-flight batch serialization and the pending-batch queue
//
// Domain services coordinate between aggregates, implementing business logic
// that does not naturally belong to a single aggregate root.
package services
