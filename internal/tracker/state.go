package tracker

import "time"

// TimeFormat is the format of the timestamps in the verbose status.
const TimeFormat = "2006-01-02 15:04:05"

const (
	StatusKey = "status"
	StartKey  = "start_time"
	ErrorKey  = "error_time"
	FinishKey = "finish_time"
)

// State is the lifecycle state of a regressor.
type State struct {
	Status     Status
	Started    *time.Time
	Stopped    *time.Time
	Failed     *time.Time
	Experiment string
	// Err is the cause of the last failure.
	Err error
}

// Apply returns the state reached on the given event at the given time.
// The receiver is left untouched.
func (s State) Apply(e Event, at time.Time) (State, error) {
	next, err := Transition(s.Status, e)
	if err != nil {
		return s, err
	}
	n := s
	n.Status = next
	switch e {
	case Reset:
		n = State{}
	case Start:
		n.Started = &at
		n.Stopped = nil
		n.Failed = nil
		n.Err = nil
	case Succeed:
		n.Stopped = &at
	case Fail:
		n.Failed = &at
	}
	return n, nil
}

// Verbose returns the status fields relevant to the current status.
func (s State) Verbose() map[string]string {
	verbose := map[Status]func() map[string]string{
		NotStarted: func() map[string]string {
			return map[string]string{
				StatusKey: s.Status.Description(),
			}
		},
		AwaitingData: func() map[string]string {
			return map[string]string{
				StatusKey: s.Status.Description(),
			}
		},
		Training: func() map[string]string {
			return map[string]string{
				StatusKey: s.Status.Description(),
				StartKey:  format(s.Started),
			}
		},
		Error: func() map[string]string {
			return map[string]string{
				StatusKey: s.Status.Description(),
				StartKey:  format(s.Started),
				ErrorKey:  format(s.Failed),
			}
		},
		Finished: func() map[string]string {
			return map[string]string{
				StatusKey: s.Status.Description(),
				StartKey:  format(s.Started),
				FinishKey: format(s.Stopped),
			}
		},
	}
	return verbose[s.Status]()
}

func format(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(TimeFormat)
}
