package workflow

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition is returned when a requested transition is not in the table.
var ErrInvalidTransition = errors.New("invalid workflow transition")

// transitions is the complete set of legal moves. Mastered is terminal.
var transitions = map[State][]State{
	Locked:            {Ready},
	Ready:             {Started},
	Started:           {Watched},
	Watched:           {InitialReflection},
	InitialReflection: {MasteryTesting},
	MasteryTesting:    {Mastered, InitialReflection},
	Mastered:          {},
}

// IsValidTransition reports whether moving from current to next is allowed.
func IsValidTransition(current, next State) bool {
	for _, allowed := range transitions[current] {
		if allowed == next {
			return true
		}
	}
	return false
}

// NextStates returns the legal successors of current. The result is a copy
// and is empty for terminal or unknown states.
func NextStates(current State) []State {
	allowed := transitions[current]
	out := make([]State, len(allowed))
	copy(out, allowed)
	return out
}

// IsTerminal reports whether no transition leaves s.
func IsTerminal(s State) bool {
	return s.Valid() && len(transitions[s]) == 0
}

// Transition validates a move and returns the new state, or an error wrapping
// ErrInvalidTransition. The current state is returned alongside the error so
// callers can re-show the step the learner is on.
func Transition(current, next State) (State, error) {
	if !current.Valid() || !next.Valid() || !IsValidTransition(current, next) {
		return current, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, next)
	}
	return next, nil
}
