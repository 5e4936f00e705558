package action

import "github.com/mj1618/ai-testing-tool/internal/session"

// StopReason says why a task ended. The zero value means it did not.
type StopReason int

const (
	Finished StopReason = iota + 1
	Errored
	UnknownAction
	ElementNotFound
)

func (r StopReason) String() string {
	switch r {
	case Finished:
		return "finished"
	case Errored:
		return "errored"
	case UnknownAction:
		return "unknown_action"
	case ElementNotFound:
		return "element_not_found"
	default:
		return "continuing"
	}
}

// Result is what one executed step produced: either Continue with the new
// device state, or Stopped with a reason. State is also set on a stop that
// captured a final snapshot.
type Result struct {
	Outcome Outcome
	State   *session.State
	Reason  StopReason
}

func Continue(outcome Outcome, state *session.State) Result {
	return Result{Outcome: outcome, State: state}
}

func Stopped(outcome Outcome, reason StopReason, state *session.State) Result {
	return Result{Outcome: outcome, State: state, Reason: reason}
}

func (r Result) Continuing() bool {
	return r.Reason == 0
}
