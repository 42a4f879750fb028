package workflow

import (
	"fmt"
	"strings"
)

// State is one step of the per-unit learner workflow.
type State int

const (
	Locked State = iota
	Ready
	Started
	Watched
	InitialReflection
	MasteryTesting
	Mastered
)

var stateNames = [...]string{
	Locked:            "LOCKED",
	Ready:             "READY",
	Started:           "STARTED",
	Watched:           "WATCHED",
	InitialReflection: "INITIAL_REFLECTION",
	MasteryTesting:    "MASTERY_TESTING",
	Mastered:          "MASTERED",
}

// All returns every state in its intended order of progression.
func All() []State {
	return []State{Locked, Ready, Started, Watched, InitialReflection, MasteryTesting, Mastered}
}

// String returns the storage representation of the state.
func (s State) String() string {
	if !s.Valid() {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// Valid reports whether s is a member of the enumeration.
func (s State) Valid() bool {
	return s >= Locked && s <= Mastered
}

// IsCompleted reports whether the unit counts as done for prerequisite purposes.
func (s State) IsCompleted() bool {
	return s == Mastered
}

// IsInProgress reports whether the learner has started but not finished the unit.
func (s State) IsInProgress() bool {
	return s >= Started && s < Mastered
}

// Parse converts a storage or user-supplied value into a State. Matching is
// case-insensitive; unknown values are rejected.
func Parse(raw string) (State, error) {
	upper := strings.ToUpper(strings.TrimSpace(raw))
	for i, name := range stateNames {
		if name == upper {
			return State(i), nil
		}
	}
	return Locked, fmt.Errorf("unknown workflow state %q", raw)
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid workflow state %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *State) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
