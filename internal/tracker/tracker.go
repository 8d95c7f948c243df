package tracker

import (
	"context"
	"fmt"
	"time"

	"github.com/drakos74/representer/internal/metrics"
	"github.com/drakos74/representer/internal/storage"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// EventsLabel is the registry label under which transitions are recorded.
const EventsLabel = "transitions"

// Tracked is anything carrying a training lifecycle.
type Tracked interface {
	ID() string
	State() State
	Update(update func(s State) (State, error)) (State, error)
}

// Record is the registry entry of a single transition.
type Record struct {
	Experiment string    `json:"experiment"`
	Tracked    string    `json:"tracked"`
	Event      string    `json:"event"`
	Status     string    `json:"status"`
	Time       time.Time `json:"time"`
	Error      string    `json:"error,omitempty"`
}

// Tracker applies lifecycle events to tracked objects.
type Tracker struct {
	now      func() time.Time
	registry storage.Registry
}

// Option configures a tracker.
type Option func(t *Tracker)

// WithClock sets the clock used to stamp transitions.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		t.now = now
	}
}

// WithRegistry sets the registry where transitions are recorded.
func WithRegistry(registry storage.Registry) Option {
	return func(t *Tracker) {
		t.registry = registry
	}
}

// New creates a new tracker.
// Without options the tracker uses the system clock and records nothing.
func New(options ...Option) *Tracker {
	t := &Tracker{
		now:      time.Now,
		registry: storage.VoidRegistry{},
	}
	for _, option := range options {
		option(t)
	}
	return t
}

// Await marks the tracked object as waiting for its data and tags the run with a new experiment id.
func (tr *Tracker) Await(t Tracked) error {
	_, err := tr.apply(t, Await, nil)
	return err
}

// Started marks the start of a training run.
// Runs that were not awaiting their data are tagged with a new experiment id.
func (tr *Tracker) Started(t Tracked) error {
	_, err := tr.apply(t, Start, nil)
	return err
}

// Finished marks the successful end of a training run.
func (tr *Tracker) Finished(t Tracked) error {
	_, err := tr.apply(t, Succeed, nil)
	return err
}

// Failed marks the training run as failed for the given cause.
func (tr *Tracker) Failed(t Tracked, cause error) error {
	_, err := tr.apply(t, Fail, cause)
	return err
}

// Reset brings the tracked object back to its initial state.
func (tr *Tracker) Reset(t Tracked) {
	// reset is allowed from every status
	_, _ = tr.apply(t, Reset, nil)
}

// Track wraps a training run.
// A guard failure moves the tracked object to error and is returned to the caller.
// A fit failure moves it to error as well, but is only recorded on the state.
func (tr *Tracker) Track(ctx context.Context, t Tracked, guard func() error, fit func(ctx context.Context) error) error {
	if err := tr.Started(t); err != nil {
		return err
	}
	if err := guard(); err != nil {
		if ferr := tr.Failed(t, err); ferr != nil {
			return fmt.Errorf("could not record failure '%v': %w", err, ferr)
		}
		return err
	}
	start := tr.now()
	if err := fit(ctx); err != nil {
		log.Error().
			Err(err).
			Str("tracked", t.ID()).
			Str("experiment", t.State().Experiment).
			Msg("training failed")
		return tr.Failed(t, err)
	}
	metrics.Observer.Fit(tr.now().Sub(start))
	return tr.Finished(t)
}

func (tr *Tracker) apply(t Tracked, e Event, cause error) (State, error) {
	at := tr.now()
	s, err := t.Update(func(s State) (State, error) {
		next, err := s.Apply(e, at)
		if err != nil {
			return s, err
		}
		switch e {
		case Await:
			next.Experiment = uuid.New().String()
		case Start:
			// the run might have been tagged while awaiting its data
			if next.Experiment == "" || s.Status == Error || s.Status == Finished {
				next.Experiment = uuid.New().String()
			}
		case Fail:
			next.Err = cause
		}
		return next, nil
	})
	if err != nil {
		log.Warn().
			Err(err).
			Str("tracked", t.ID()).
			Str("event", e.String()).
			Msg("rejected transition")
		return s, err
	}

	metrics.Observer.Transition(s.Status.String())
	log.Info().
		Str("tracked", t.ID()).
		Str("experiment", s.Experiment).
		Str("event", e.String()).
		Str("status", s.Status.String()).
		Msg("transition")

	record := Record{
		Experiment: s.Experiment,
		Tracked:    t.ID(),
		Event:      e.String(),
		Status:     s.Status.String(),
		Time:       at,
	}
	if cause != nil {
		record.Error = cause.Error()
	}
	if err := tr.registry.Add(storage.K{
		Name:  t.ID(),
		Label: EventsLabel,
	}, record); err != nil {
		log.Error().Err(err).Str("tracked", t.ID()).Msg("could not record transition")
	}
	return s, nil
}
