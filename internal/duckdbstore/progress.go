package duckdbstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/specialistvlad/learngrid/internal/apperr"
	"github.com/specialistvlad/learngrid/internal/nodeid"
	"github.com/specialistvlad/learngrid/internal/progressstore"
	"github.com/specialistvlad/learngrid/internal/workflow"
)

// AddLearner registers a learner. Registering twice is a no-op.
func (s *Store) AddLearner(ctx context.Context, learnerID string) error {
	if learnerID == "" {
		return apperr.Validationf("learner id is required")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO learners (learner_id) VALUES (?)
		ON CONFLICT (learner_id) DO NOTHING`, learnerID)
	return apperr.Storage("add learner", err)
}

func (s *Store) LearnerExists(ctx context.Context, learnerID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM learners WHERE learner_id = ?`, learnerID).Scan(&n)
	if err != nil {
		return false, apperr.Storage("learner exists", err)
	}
	return n > 0, nil
}

// Get retrieves a single progress record.
// If no record exists yet, it returns a Locked record and false.
func (s *Store) Get(ctx context.Context, learnerID string, id nodeid.Address) (progressstore.Record, bool, error) {
	rec := progressstore.Record{LearnerID: learnerID, NodeID: id, State: workflow.Locked}
	state, ok, err := getState(ctx, s.db, learnerID, id)
	if err != nil || !ok {
		return rec, false, err
	}
	rec.State = state
	return rec, true, nil
}

func (s *Store) ForLearner(ctx context.Context, learnerID string) (map[nodeid.Address]workflow.State, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT node_id, state FROM progress WHERE learner_id = ?`, learnerID)
	if err != nil {
		return nil, apperr.Storage("learner progress", err)
	}
	defer rows.Close()

	out := make(map[nodeid.Address]workflow.State)
	for rows.Next() {
		var rawID, rawState string
		if err := rows.Scan(&rawID, &rawState); err != nil {
			return nil, apperr.Storage("learner progress", err)
		}
		id, err := nodeid.Parse(rawID)
		if err != nil {
			return nil, apperr.Storage("learner progress", fmt.Errorf("corrupt node id %q: %w", rawID, err))
		}
		state, err := workflow.Parse(rawState)
		if err != nil {
			return nil, apperr.Storage("learner progress", fmt.Errorf("corrupt state %q: %w", rawState, err))
		}
		out[id] = state
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Storage("learner progress", err)
	}
	return out, nil
}

// Update applies fn to the current state inside one transaction. A missing
// record is created in Locked even when fn rejects the change.
func (s *Store) Update(ctx context.Context, learnerID string, id nodeid.Address, fn progressstore.UpdateFunc) (progressstore.Record, error) {
	rec := progressstore.Record{LearnerID: learnerID, NodeID: id, State: workflow.Locked}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return rec, apperr.Storage("begin", err)
	}
	defer func() { _ = tx.Rollback() }()

	current, exists, err := getState(ctx, tx, learnerID, id)
	if err != nil {
		return rec, err
	}
	if !exists {
		current = workflow.Locked
	}
	rec.State = current

	next, fnErr := fn(current)
	if fnErr == nil && !next.Valid() {
		fnErr = apperr.Validationf("invalid workflow state %d", int(next))
	}
	if fnErr != nil {
		if !exists {
			if err := putState(ctx, tx, learnerID, id, workflow.Locked, false); err != nil {
				return rec, err
			}
			if err := tx.Commit(); err != nil {
				return rec, apperr.Storage("commit", err)
			}
		}
		return rec, fnErr
	}

	if err := putState(ctx, tx, learnerID, id, next, exists); err != nil {
		return rec, err
	}
	if err := tx.Commit(); err != nil {
		return rec, apperr.Storage("commit", err)
	}
	rec.State = next
	return rec, nil
}

// Put writes a record without consulting the workflow.
func (s *Store) Put(ctx context.Context, rec progressstore.Record) error {
	if rec.LearnerID == "" {
		return apperr.Validationf("learner id is required")
	}
	if !rec.State.Valid() {
		return apperr.Validationf("invalid workflow state %d", int(rec.State))
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO progress (learner_id, node_id, state) VALUES (?, ?, ?)`,
		rec.LearnerID, rec.NodeID.String(), rec.State.String())
	return apperr.Storage("put progress", err)
}

func getState(ctx context.Context, q querier, learnerID string, id nodeid.Address) (workflow.State, bool, error) {
	var raw string
	err := q.QueryRowContext(ctx, `
		SELECT state FROM progress WHERE learner_id = ? AND node_id = ?`,
		learnerID, id.String()).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return workflow.Locked, false, nil
	}
	if err != nil {
		return workflow.Locked, false, apperr.Storage("get progress", err)
	}
	state, err := workflow.Parse(raw)
	if err != nil {
		return workflow.Locked, false, apperr.Storage("get progress", fmt.Errorf("corrupt state %q: %w", raw, err))
	}
	return state, true, nil
}

func putState(ctx context.Context, q querier, learnerID string, id nodeid.Address, state workflow.State, exists bool) error {
	var err error
	if exists {
		_, err = q.ExecContext(ctx, `
			UPDATE progress SET state = ? WHERE learner_id = ? AND node_id = ?`,
			state.String(), learnerID, id.String())
	} else {
		_, err = q.ExecContext(ctx, `
			INSERT INTO progress (learner_id, node_id, state) VALUES (?, ?, ?)`,
			learnerID, id.String(), state.String())
	}
	return apperr.Storage("write progress", err)
}
