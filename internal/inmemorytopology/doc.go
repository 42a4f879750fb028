// Package inmemorytopology provides a thread-safe, in-memory implementation
// of the topologystore.Store interface. It is designed for tests, for the CLI
// working from curriculum files, and for any deployment where the curriculum
// fits comfortably in memory and does not require persistent storage.
//
// Atomically holds the store's write lock for the whole callback, which is
// the serialization point that keeps concurrent edge insertions from jointly
// closing a cycle.
package inmemorytopology
