package extract

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/stat"
)

// DefaultNeighbours is the neighbour count used when none is configured.
const DefaultNeighbours = 5

// InvalidNeighborCountErr is returned when the neighbour count does not fit the number of samples.
var InvalidNeighborCountErr = errors.New("invalid n_neighbors")

// Neighbours scores each row by the mean euclidean distance to its k nearest rows.
// The row itself is counted as one of the k neighbours, but its distance is left out of the mean.
type Neighbours struct {
	K int
}

// NewNeighbours creates a new nearest neighbours extractor.
func NewNeighbours(k int) *Neighbours {
	return &Neighbours{K: k}
}

// Extract returns the representativeness of each row.
// For k = 1 there are no other neighbours and every score is NaN.
func (n *Neighbours) Extract(features mat.Matrix) ([]float64, error) {
	rows, _ := features.Dims()
	if n.K <= 0 || n.K > rows {
		return nil, fmt.Errorf("n_neighbors=%d for %d samples: %w", n.K, rows, InvalidNeighborCountErr)
	}

	points := make(kdtree.Points, rows)
	for i := range points {
		points[i] = mat.Row(nil, i, features)
	}
	// the tree re-orders its input, so give it its own slice
	tree := kdtree.New(append(kdtree.Points(nil), points...), false)

	scores := make([]float64, rows)
	for i, p := range points {
		keeper := kdtree.NewNKeeper(n.K)
		tree.NearestSet(keeper, p)
		scores[i] = Representativeness(meanDistance(keeper.Heap))
	}
	return scores, nil
}

// meanDistance drops the closest match, which is the query point itself,
// and averages the euclidean distance to the rest.
func meanDistance(heap kdtree.Heap) float64 {
	distances := make([]float64, 0, len(heap))
	for _, c := range heap {
		if c.Comparable == nil {
			continue
		}
		// kdtree reports squared distances
		distances = append(distances, math.Sqrt(c.Dist))
	}
	sort.Float64s(distances)
	if len(distances) < 2 {
		return math.NaN()
	}
	return stat.Mean(distances[1:], nil)
}
