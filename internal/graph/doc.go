// Package graph provides the in-memory model of the prerequisite graph that
// every engine computation works on.
//
// # Why Graph Package Exists
//
// The graph engine is rebuilt from the authoritative store on each request
// rather than kept resident. The Model is that per-request snapshot: a
// read-only view over nodes and prerequisite edges, indexed so that the
// algorithms in cycle, learningpath, readiness and availability can walk
// "requires" relations without touching storage.
//
// The Model carries no business logic. Cycle policies in particular live in
// the consuming packages: cycle rejects, learningpath tolerates.
//
// # Lifecycle
//
//  1. **Loaded** from a topologystore.Reader (or built directly with New)
//  2. **Queried** by one computation
//  3. **Discarded** when the computation returns
//
// # Thread-Safety
//
// A Model is immutable after construction and safe for concurrent reads,
// which is what lets availability resolve nodes in parallel.
package graph
