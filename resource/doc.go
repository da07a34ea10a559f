// Package resource manages the engine's execution resources: the CPU-bound
// worker pool that runs searches, and the admission controller that bounds
// concurrent searches and, optionally, query rate.
//
// Searches are page-fault-bound on cold storage; running them on a fixed
// pool distinct from the goroutines serving trivial lookups keeps latency on
// small requests independent of in-flight large searches.
package resource
