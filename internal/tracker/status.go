package tracker

import (
	"errors"
	"fmt"
)

// IllegalTransitionErr is returned when an event is not allowed from the current status.
var IllegalTransitionErr = errors.New("illegal status transition")

// Status is the training lifecycle status of a regressor.
type Status int

const (
	NotStarted Status = iota
	AwaitingData
	Training
	Error
	Finished
)

var names = map[Status]string{
	NotStarted:   "NOT_STARTED",
	AwaitingData: "AWAITING_DATA",
	Training:     "TRAINING",
	Error:        "ERROR",
	Finished:     "FINISHED",
}

var descriptions = map[Status]string{
	NotStarted:   "Training has not started yet",
	AwaitingData: "Awaiting data to be preprocessed",
	Training:     "Training in progress",
	Error:        "An error has occurred during training",
	Finished:     "Training has finished",
}

func (s Status) String() string {
	if n, ok := names[s]; ok {
		return n
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Description returns the human readable form of the status.
func (s Status) Description() string {
	return descriptions[s]
}

// Event triggers a status transition.
type Event int

const (
	Await Event = iota
	Start
	Succeed
	Fail
	Reset
)

var events = map[Event]string{
	Await:   "await",
	Start:   "start",
	Succeed: "succeed",
	Fail:    "fail",
	Reset:   "reset",
}

func (e Event) String() string {
	if n, ok := events[e]; ok {
		return n
	}
	return fmt.Sprintf("Event(%d)", int(e))
}

var transitions = map[Status]map[Event]Status{
	NotStarted: {
		Await: AwaitingData,
		Start: Training,
	},
	AwaitingData: {
		Start: Training,
		Fail:  Error,
	},
	Training: {
		Succeed: Finished,
		Fail:    Error,
	},
	Error: {
		Start: Training,
	},
	Finished: {
		Start: Training,
	},
}

// Transition returns the status reached from s on the given event.
// Reset is allowed from every status, start from every status but training.
func Transition(s Status, e Event) (Status, error) {
	if e == Reset {
		return NotStarted, nil
	}
	if next, ok := transitions[s][e]; ok {
		return next, nil
	}
	return s, fmt.Errorf("cannot %s from %s: %w", e, s, IllegalTransitionErr)
}
