// Package inmemorystore provides an ephemeral, thread-safe, in-memory
// implementation of the progressstore.Store interface.
//
// # Characteristics
//
//   - **Ephemeral:** State lives only as long as the process
//   - **Thread-Safe:** Uses sync.Map for fine-grained concurrent access
//   - **Compare-and-Set:** Update retries on contention instead of locking the whole store
//
// # Concurrency Model
//
// Unlike inmemorytopology which uses an RWMutex, this store uses sync.Map
// because progress writes are frequent and independent per (learner, node)
// key. Update is implemented with sync.Map.CompareAndSwap, so two concurrent
// transitions on the same record cannot both succeed from the same prior state.
//
// For persistence across runs, use duckdbstore instead.
package inmemorystore
