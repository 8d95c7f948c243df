package model

import (
	"encoding/json"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats/scalar"
)

// Precision is the number of decimals kept for sample features.
const Precision = 5

// Sample is a single feature vector with an optional representativeness score.
// The representativeness stays nil until the sample is labeled.
// Features are rounded by NewSample, on decoding and when added to a Dataset.
type Sample struct {
	Features           []float64
	Representativeness *float64
}

// NewSample creates a new unlabeled sample for the given features.
func NewSample(features ...float64) Sample {
	return Sample{
		Features: round(features),
	}
}

// Dim returns the length of the feature vector.
func (s Sample) Dim() int {
	return len(s.Features)
}

// IsLabeled returns true if the representativeness has been assigned.
func (s Sample) IsLabeled() bool {
	return s.Representativeness != nil
}

// Target returns the representativeness, or NaN if the sample is not labeled.
func (s Sample) Target() float64 {
	if s.Representativeness == nil {
		return math.NaN()
	}
	return *s.Representativeness
}

// Label assigns the representativeness to the sample.
func (s *Sample) Label(v float64) {
	s.Representativeness = &v
}

// Copy returns a deep copy of the sample.
func (s Sample) Copy() Sample {
	features := make([]float64, len(s.Features))
	copy(features, s.Features)
	c := Sample{Features: features}
	if s.Representativeness != nil {
		c.Label(*s.Representativeness)
	}
	return c
}

type jsonSample struct {
	Features           []float64 `json:"features"`
	Representativeness *float64  `json:"representativeness"`
}

// MarshalJSON encodes the sample. Unset and NaN scores are both encoded as null.
func (s Sample) MarshalJSON() ([]byte, error) {
	js := jsonSample{
		Features: s.Features,
	}
	if s.Features == nil {
		js.Features = []float64{}
	}
	if s.Representativeness != nil && !math.IsNaN(*s.Representativeness) {
		js.Representativeness = s.Representativeness
	}
	return json.Marshal(js)
}

// UnmarshalJSON decodes the sample and rounds its features.
func (s *Sample) UnmarshalJSON(b []byte) error {
	var js jsonSample
	if err := json.Unmarshal(b, &js); err != nil {
		return fmt.Errorf("could not decode sample: %w", err)
	}
	if js.Features == nil {
		return fmt.Errorf("sample has no features field")
	}
	s.Features = round(js.Features)
	s.Representativeness = js.Representativeness
	return nil
}

func round(ff []float64) []float64 {
	rr := make([]float64, len(ff))
	for i, f := range ff {
		rr[i] = scalar.Round(f, Precision)
	}
	return rr
}
