// Package workflow defines the fixed-transition state machine a learner moves
// through while engaging with a single unit once it becomes available.
//
// States form a closed enumeration. Storage values and user input are parsed
// into a State at the boundary with Parse, which rejects anything outside the
// enumeration, and every transition is checked against a static table. The
// machine never forces a status: an illegal request is reported with
// ErrInvalidTransition and the caller decides how to react.
package workflow
