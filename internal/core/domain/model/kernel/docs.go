// Package kernel contains the shared value objects of the dispatch domain:
// geographic points, quadrant zones around the depot, delivery verification
// codes, and entity identifiers.
//
// All value objects follow the constructor-guard pattern: the zero value is
// invalid and Validate() reports it, so aggregates can rely on properly
// constructed inputs.
package kernel
