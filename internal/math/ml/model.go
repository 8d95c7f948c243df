package ml

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

const (
	ForestKind   = "forest"
	OLSKind      = "ols"
	GradientKind = "gradient"
	NetworkKind  = "network"
)

var (
	// UnknownModelErr is returned for an unsupported model kind.
	UnknownModelErr = errors.New("unknown model kind")
	// NotTrainedErr is returned when predicting with a model that has not been fit.
	NotTrainedErr = errors.New("model has not been trained")
	// NotEnoughDataErr is returned when there are too few labeled rows to fit the model.
	NotEnoughDataErr = errors.New("not enough labeled data")
)

// Model is a trainable regression model.
type Model interface {
	Fit(x mat.Matrix, y []float64) error
	Predict(x []float64) (float64, error)
}

// Config defines the model to be created.
type Config struct {
	Kind       string  `json:"kind"`
	Trees      int     `json:"trees"`
	Bins       int     `json:"bins"`
	Rate       float64 `json:"rate"`
	Iterations int     `json:"iterations"`
	Hidden     int     `json:"hidden"`
}

// DefaultConfig is a random forest of 100 trees.
func DefaultConfig() Config {
	return Config{
		Kind:       ForestKind,
		Trees:      100,
		Bins:       20,
		Rate:       0.01,
		Iterations: 500,
		Hidden:     8,
	}
}

// New creates a new untrained model.
func New(cfg Config) (Model, error) {
	switch cfg.Kind {
	case ForestKind, "":
		return NewForest(cfg.Trees, cfg.Bins), nil
	case OLSKind:
		return NewOLS(), nil
	case GradientKind:
		return NewGradient(cfg.Rate, cfg.Iterations), nil
	case NetworkKind:
		return NewNetwork(cfg.Hidden, cfg.Rate, cfg.Iterations), nil
	}
	return nil, fmt.Errorf("'%s': %w", cfg.Kind, UnknownModelErr)
}

// Factory creates new models.
type Factory func() (Model, error)

// NewFactory creates a factory for the given config.
func NewFactory(cfg Config) (Factory, error) {
	if _, err := New(cfg); err != nil {
		return nil, err
	}
	return func() (Model, error) {
		return New(cfg)
	}, nil
}

// rows returns the matrix rows with a usable target.
func rows(x mat.Matrix, y []float64) ([][]float64, []float64, error) {
	r, c := x.Dims()
	if r != len(y) {
		return nil, nil, fmt.Errorf("%d rows for %d targets", r, len(y))
	}
	xx := make([][]float64, 0, r)
	yy := make([]float64, 0, r)
	for i := 0; i < r; i++ {
		if math.IsNaN(y[i]) {
			continue
		}
		xx = append(xx, mat.Row(nil, i, x))
		yy = append(yy, y[i])
	}
	if c == 0 {
		return nil, nil, fmt.Errorf("no features: %w", NotEnoughDataErr)
	}
	return xx, yy, nil
}
