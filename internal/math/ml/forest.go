package ml

import (
	"math"

	randomforest "github.com/malaschitz/randomForest"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// RandomForest regresses through a classification forest over quantised targets.
// The prediction is the vote weighted mean of the target values of each class.
type RandomForest struct {
	trees   int
	bins    int
	fitted  bool
	forest  *randomforest.Forest
	centres []float64
}

func NewForest(trees, bins int) *RandomForest {
	if trees <= 0 {
		trees = DefaultConfig().Trees
	}
	if bins <= 0 {
		bins = DefaultConfig().Bins
	}
	return &RandomForest{
		trees: trees,
		bins:  bins,
	}
}

// Fit trains the forest on the rows with a known target.
// Without any such row the forest predicts NaN.
func (rf *RandomForest) Fit(x mat.Matrix, y []float64) error {
	xx, yy, err := rows(x, y)
	if err != nil {
		return err
	}
	rf.fitted = true
	rf.forest = nil
	rf.centres = nil
	if len(yy) == 0 {
		log.Warn().Int("rows", len(y)).Msg("no labeled rows for forest")
		return nil
	}

	classes, centres := quantise(yy, rf.bins)
	rf.centres = centres
	if len(centres) == 1 {
		return nil
	}
	forest := &randomforest.Forest{}
	forest.Data = randomforest.ForestData{X: xx, Class: classes}
	forest.Train(rf.trees)
	rf.forest = forest
	log.Debug().
		Int("rows", len(yy)).
		Int("classes", len(centres)).
		Floats64("importance", forest.FeatureImportance).
		Msg("forest trained")
	return nil
}

func (rf *RandomForest) Predict(x []float64) (float64, error) {
	if !rf.fitted {
		return 0, NotTrainedErr
	}
	if rf.forest == nil {
		// constant target
		if len(rf.centres) == 1 {
			return rf.centres[0], nil
		}
		return math.NaN(), nil
	}
	votes := rf.forest.Vote(x)
	var sum, total float64
	for c, v := range votes {
		if c >= len(rf.centres) {
			break
		}
		sum += v * rf.centres[c]
		total += v
	}
	if total == 0 {
		return math.NaN(), nil
	}
	return sum / total, nil
}

// quantise assigns every target to one of the given number of equal width bins
// and returns the class of each target, together with the mean target of each class.
func quantise(y []float64, bins int) ([]int, []float64) {
	min, max := floats.Min(y), floats.Max(y)
	classes := make([]int, len(y))
	if max == min {
		return classes, []float64{min}
	}
	width := (max - min) / float64(bins)
	groups := make([][]float64, bins)
	for i, v := range y {
		c := int((v - min) / width)
		if c >= bins {
			c = bins - 1
		}
		classes[i] = c
		groups[c] = append(groups[c], v)
	}
	centres := make([]float64, bins)
	for c, g := range groups {
		if len(g) == 0 {
			// no votes will ever go to an empty class
			centres[c] = min + (float64(c)+0.5)*width
			continue
		}
		centres[c] = stat.Mean(g, nil)
	}
	return classes, centres
}
