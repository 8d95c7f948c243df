package regressor

import (
	"fmt"
	"sync"

	"github.com/drakos74/representer/internal/math/ml"
	"github.com/drakos74/representer/internal/model"
	"github.com/drakos74/representer/internal/tracker"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Regressor is a trainable representativeness predictor.
type Regressor interface {
	ID() string
	Fit(ds model.Dataset) error
	Predict(s model.Sample) (float64, error)
	// Dim returns the feature length seen at fit time, or 0 if not fitted.
	Dim() int
	Status() tracker.Status
	Mirror(s tracker.State)
	Verbose() map[string]string
}

// Base wraps a single trainable model.
type Base struct {
	*tracker.Lifecycle
	id    string
	model ml.Model
	mutex *sync.RWMutex
	dim   int
}

// NewBase creates a new regressor around the given model.
func NewBase(m ml.Model) *Base {
	return &Base{
		Lifecycle: tracker.NewLifecycle(),
		id:        uuid.New().String(),
		model:     m,
		mutex:     new(sync.RWMutex),
	}
}

func (b *Base) ID() string {
	return b.id
}

// Model returns the wrapped model.
func (b *Base) Model() ml.Model {
	return b.model
}

// Fit trains the model on the dataset and records the feature length.
// Status transitions are left to the caller.
func (b *Base) Fit(ds model.Dataset) error {
	if err := b.model.Fit(ds.Matrix(), ds.Targets()); err != nil {
		return fmt.Errorf("could not fit regressor '%s': %w", b.id, err)
	}
	b.mutex.Lock()
	b.dim = ds.Dim()
	b.mutex.Unlock()
	log.Debug().
		Str("regressor", b.id).
		Int("samples", ds.Len()).
		Int("dim", ds.Dim()).
		Msg("fit")
	return nil
}

func (b *Base) Dim() int {
	b.mutex.RLock()
	defer b.mutex.RUnlock()
	return b.dim
}

// Predict returns the prediction for the given sample.
func (b *Base) Predict(s model.Sample) (float64, error) {
	if err := ensureFitted(b.Dim(), s); err != nil {
		return 0, err
	}
	p, err := b.model.Predict(s.Features)
	if err != nil {
		return 0, fmt.Errorf("could not predict with regressor '%s': %w", b.id, err)
	}
	return p, nil
}

func (b *Base) Status() tracker.Status {
	return b.State().Status
}

// Mirror overwrites the state with the one of the owning ensemble.
func (b *Base) Mirror(s tracker.State) {
	b.Set(s)
}

// Reset clears the status and all timestamps.
func (b *Base) Reset() {
	b.Set(tracker.State{})
}

func (b *Base) Verbose() map[string]string {
	return b.State().Verbose()
}
