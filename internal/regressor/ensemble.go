package regressor

import (
	"context"
	"fmt"

	"github.com/drakos74/go-ex-machina/xmath"
	"github.com/drakos74/representer/internal/concurrent"
	"github.com/drakos74/representer/internal/metrics"
	"github.com/drakos74/representer/internal/model"
	"github.com/drakos74/representer/internal/tracker"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/floats/scalar"
)

// Ensemble averages the predictions of its registered regressors.
// Registering or deregistering while a fit or predict is in flight is not supported.
type Ensemble struct {
	*tracker.Lifecycle
	id         string
	tracker    *tracker.Tracker
	workers    int
	regressors []Regressor
}

// Option configures an ensemble.
type Option func(e *Ensemble)

// WithTracker sets the experiment tracker of the ensemble.
func WithTracker(tr *tracker.Tracker) Option {
	return func(e *Ensemble) {
		e.tracker = tr
	}
}

// WithWorkers bounds the number of members fit or queried at once.
func WithWorkers(workers int) Option {
	return func(e *Ensemble) {
		if workers > 0 {
			e.workers = workers
		}
	}
}

// NewEnsemble creates a new ensemble without any regressors.
func NewEnsemble(options ...Option) *Ensemble {
	e := &Ensemble{
		Lifecycle:  tracker.NewLifecycle(),
		id:         uuid.New().String(),
		tracker:    tracker.New(),
		workers:    concurrent.Workers(),
		regressors: make([]Regressor, 0),
	}
	for _, option := range options {
		option(e)
	}
	return e
}

func (e *Ensemble) ID() string {
	return e.id
}

// Update applies the state change and mirrors the new state to every member.
// The mirror runs after the ensemble lock is released, so a concurrent reader
// may briefly see a member lag behind the ensemble.
func (e *Ensemble) Update(update func(s tracker.State) (tracker.State, error)) (tracker.State, error) {
	s, err := e.Lifecycle.Update(update)
	if err != nil {
		return s, err
	}
	for _, r := range e.regressors {
		r.Mirror(s)
	}
	return s, nil
}

// Register adds a regressor to the ensemble.
func (e *Ensemble) Register(r Regressor) {
	e.regressors = append(e.regressors, r)
	metrics.Observer.Members(len(e.regressors))
}

// Deregister removes all regressors.
func (e *Ensemble) Deregister() {
	e.regressors = make([]Regressor, 0)
	metrics.Observer.Members(0)
}

// Regressors returns the registered regressors in registration order.
func (e *Ensemble) Regressors() []Regressor {
	rr := make([]Regressor, len(e.regressors))
	copy(rr, e.regressors)
	return rr
}

// Model returns the registered regressors.
func (e *Ensemble) Model() []Regressor {
	return e.Regressors()
}

// Await marks the ensemble as waiting for its training data.
func (e *Ensemble) Await() error {
	return e.tracker.Await(e)
}

// Fail marks the ensemble as failed before its training could start.
func (e *Ensemble) Fail(cause error) error {
	return e.tracker.Failed(e, cause)
}

// Fit trains member i on dataset i, all members concurrently.
// It fails only if the ensemble has no members or a training run is already active.
// A failure of the training itself leaves the ensemble in error, see LastError.
func (e *Ensemble) Fit(ctx context.Context, datasets []model.Dataset) error {
	members := e.Regressors()
	return e.tracker.Track(ctx, e, func() error {
		if len(members) == 0 {
			return EnsembleFitWithoutRegressorsErr
		}
		return nil
	}, func(ctx context.Context) error {
		if len(datasets) < len(members) {
			return fmt.Errorf("%d datasets for %d regressors: %w", len(datasets), len(members), ShardsMismatchErr)
		}
		if len(datasets) > len(members) {
			log.Warn().
				Str("ensemble", e.id).
				Int("datasets", len(datasets)).
				Int("regressors", len(members)).
				Msg("ignoring surplus datasets")
		}
		return concurrent.Each(ctx, len(members), e.workers, func(ctx context.Context, i int) error {
			return members[i].Fit(datasets[i])
		})
	})
}

// Predict returns the mean prediction of all members, rounded to the sample precision.
func (e *Ensemble) Predict(ctx context.Context, s model.Sample) (float64, error) {
	members := e.Regressors()
	if err := ensureEnsembleFitted(e.Status(), members, s); err != nil {
		metrics.Observer.Predict(metrics.Rejected)
		return 0, err
	}
	predictions := make([]float64, len(members))
	err := concurrent.Each(ctx, len(members), e.workers, func(ctx context.Context, i int) error {
		p, err := members[i].Predict(s)
		if err != nil {
			return err
		}
		predictions[i] = p
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("could not predict with ensemble '%s': %w", e.id, err)
	}
	metrics.Observer.Predict(metrics.Success)
	mean := xmath.Vec(len(predictions)).With(predictions...).Sum() / float64(len(predictions))
	return scalar.Round(mean, model.Precision), nil
}

func (e *Ensemble) Status() tracker.Status {
	return e.State().Status
}

// LastError returns the cause of the last failed training run.
func (e *Ensemble) LastError() error {
	return e.State().Err
}

// Reset resets the ensemble and its members, and removes all members.
func (e *Ensemble) Reset() {
	e.tracker.Reset(e)
	e.Deregister()
}

func (e *Ensemble) Verbose() map[string]string {
	return e.State().Verbose()
}
