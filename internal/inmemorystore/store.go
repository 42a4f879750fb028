package inmemorystore

import (
	"context"
	"sync"

	"github.com/specialistvlad/learngrid/internal/apperr"
	"github.com/specialistvlad/learngrid/internal/nodeid"
	"github.com/specialistvlad/learngrid/internal/progressstore"
	"github.com/specialistvlad/learngrid/internal/workflow"
)

// key identifies one progress record.
type key struct {
	learner string
	node    nodeid.Address
}

// Store is an in-memory implementation of progressstore.Store using sync.Map
// for fine-grained concurrent access without global lock contention.
//
// The store maintains two independent sync.Maps:
//   - learners: the set of registered learner ids
//   - states: maps (learner, node) keys to workflow.State values
type Store struct {
	learners sync.Map // Key: learner id, Value: struct{}
	states   sync.Map // Key: key, Value: workflow.State
}

// New creates a new, empty in-memory progress store.
func New() *Store {
	return &Store{}
}

var _ progressstore.Store = (*Store)(nil)

// AddLearner registers a learner.
func (s *Store) AddLearner(ctx context.Context, learnerID string) error {
	if learnerID == "" {
		return apperr.Validationf("learner id is required")
	}
	s.learners.Store(learnerID, struct{}{})
	return nil
}

// LearnerExists reports whether the learner has been registered.
func (s *Store) LearnerExists(ctx context.Context, learnerID string) (bool, error) {
	_, ok := s.learners.Load(learnerID)
	return ok, nil
}

// Get retrieves a single progress record.
// If no record exists yet, it returns a Locked record and false.
func (s *Store) Get(ctx context.Context, learnerID string, id nodeid.Address) (progressstore.Record, bool, error) {
	rec := progressstore.Record{LearnerID: learnerID, NodeID: id, State: workflow.Locked}
	v, ok := s.states.Load(key{learner: learnerID, node: id})
	if !ok {
		return rec, false, nil
	}
	rec.State = v.(workflow.State)
	return rec, true, nil
}

// ForLearner collects every record of one learner.
func (s *Store) ForLearner(ctx context.Context, learnerID string) (map[nodeid.Address]workflow.State, error) {
	out := make(map[nodeid.Address]workflow.State)
	s.states.Range(func(k, v any) bool {
		if rk := k.(key); rk.learner == learnerID {
			out[rk.node] = v.(workflow.State)
		}
		return true
	})
	return out, nil
}

// Update applies fn to the current state with compare-and-swap, retrying if
// another writer changed the record in between.
func (s *Store) Update(ctx context.Context, learnerID string, id nodeid.Address, fn progressstore.UpdateFunc) (progressstore.Record, error) {
	k := key{learner: learnerID, node: id}
	for {
		if err := ctx.Err(); err != nil {
			return progressstore.Record{}, err
		}
		v, _ := s.states.LoadOrStore(k, workflow.Locked)
		current := v.(workflow.State)

		next, err := fn(current)
		if err != nil {
			return progressstore.Record{LearnerID: learnerID, NodeID: id, State: current}, err
		}
		if !next.Valid() {
			return progressstore.Record{LearnerID: learnerID, NodeID: id, State: current},
				apperr.Validationf("invalid workflow state %d", int(next))
		}
		if s.states.CompareAndSwap(k, current, next) {
			return progressstore.Record{LearnerID: learnerID, NodeID: id, State: next}, nil
		}
	}
}

// Put writes a record without consulting the workflow.
func (s *Store) Put(ctx context.Context, rec progressstore.Record) error {
	if rec.LearnerID == "" {
		return apperr.Validationf("learner id is required")
	}
	if !rec.State.Valid() {
		return apperr.Validationf("invalid workflow state %d", int(rec.State))
	}
	s.states.Store(key{learner: rec.LearnerID, node: rec.NodeID}, rec.State)
	return nil
}
