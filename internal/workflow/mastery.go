package workflow

import (
	"fmt"
	"math"
)

// DefaultMasteryThreshold is the minimum mastery test score, out of 100, that
// completes a unit. Tunable through settings.
const DefaultMasteryThreshold = 70.0

// EvaluateMastery resolves the outcome of a mastery test taken from the
// MasteryTesting state: a passing score moves to Mastered, anything else sends
// the learner back to InitialReflection for another attempt.
func EvaluateMastery(current State, score, threshold float64) (State, error) {
	if current != MasteryTesting {
		return current, fmt.Errorf("%w: mastery can only be evaluated from %s, learner is at %s",
			ErrInvalidTransition, MasteryTesting, current)
	}
	if math.IsNaN(score) || score < 0 || score > 100 {
		return current, fmt.Errorf("mastery score must be between 0 and 100, got %v", score)
	}
	if score >= threshold {
		return Transition(current, Mastered)
	}
	return Transition(current, InitialReflection)
}
