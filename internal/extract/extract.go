package extract

import (
	"gonum.org/v1/gonum/mat"
)

// Extractor computes a representativeness score for each row of the given feature matrix.
type Extractor interface {
	Extract(features mat.Matrix) ([]float64, error)
}

// Representativeness maps a mean distance into (0,1].
// Isolated points get a lower score, central ones a score close to 1.
func Representativeness(meanDistance float64) float64 {
	return 1 / (1 + meanDistance)
}
