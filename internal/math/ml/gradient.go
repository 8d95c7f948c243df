package ml

import (
	"fmt"
	"strings"

	"github.com/cdipaolo/goml/base"
	"github.com/cdipaolo/goml/linear"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"
)

// Gradient is a linear regression trained with batch gradient ascent.
type Gradient struct {
	rate       float64
	iterations int
	model      *linear.LeastSquares
}

func NewGradient(rate float64, iterations int) *Gradient {
	if rate <= 0 {
		rate = DefaultConfig().Rate
	}
	if iterations <= 0 {
		iterations = DefaultConfig().Iterations
	}
	return &Gradient{
		rate:       rate,
		iterations: iterations,
	}
}

func (g *Gradient) Fit(x mat.Matrix, y []float64) error {
	xx, yy, err := rows(x, y)
	if err != nil {
		return err
	}
	if len(xx) == 0 {
		return fmt.Errorf("no labeled rows: %w", NotEnoughDataErr)
	}
	model := linear.NewLeastSquares(base.BatchGA, g.rate, 0, g.iterations, xx, yy)
	model.Output = trainingLog{}
	if err := model.Learn(); err != nil {
		return fmt.Errorf("could not train gradient model: %w", err)
	}
	g.model = model
	return nil
}

func (g *Gradient) Predict(x []float64) (float64, error) {
	if g.model == nil {
		return 0, NotTrainedErr
	}
	p, err := g.model.Predict(x)
	if err != nil {
		return 0, fmt.Errorf("could not predict: %w", err)
	}
	if len(p) == 0 {
		return 0, fmt.Errorf("empty prediction")
	}
	return p[0], nil
}

// trainingLog forwards the training output to the debug log.
type trainingLog struct{}

func (trainingLog) Write(p []byte) (int, error) {
	msg := strings.TrimSpace(string(p))
	if msg != "" {
		log.Debug().Str("model", GradientKind).Msg(msg)
	}
	return len(p), nil
}
