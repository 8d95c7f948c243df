package model

import (
	"encoding/json"
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

var (
	// IncorrectSamplesShapeErr is returned when samples of different feature lengths are combined.
	IncorrectSamplesShapeErr = errors.New("cannot create dataset from samples with different features length")
	// EmptyDatasetErr is returned when a dataset is created without samples.
	EmptyDatasetErr = errors.New("cannot create dataset without samples")
)

// Dataset is an ordered collection of samples sharing the same feature length.
// Transformations return new datasets and leave the receiver untouched.
type Dataset struct {
	samples []Sample
	dim     int
}

// NewDataset creates a new dataset out of the given samples.
// The samples are copied with their features rounded, so later changes to the argument
// do not leak into the dataset.
func NewDataset(samples []Sample) (Dataset, error) {
	if len(samples) == 0 {
		return Dataset{}, EmptyDatasetErr
	}
	dim := samples[0].Dim()
	if dim == 0 {
		return Dataset{}, fmt.Errorf("samples have no features: %w", IncorrectSamplesShapeErr)
	}
	ss := make([]Sample, len(samples))
	for i, s := range samples {
		if s.Dim() != dim {
			return Dataset{}, fmt.Errorf("sample %d has %d features instead of %d: %w", i, s.Dim(), dim, IncorrectSamplesShapeErr)
		}
		ss[i] = s.Copy()
		ss[i].Features = round(ss[i].Features)
	}
	return Dataset{
		samples: ss,
		dim:     dim,
	}, nil
}

// MustDataset creates a new dataset and panics if the samples are not valid.
func MustDataset(samples []Sample) Dataset {
	ds, err := NewDataset(samples)
	if err != nil {
		panic(fmt.Sprintf("invalid dataset: %s", err.Error()))
	}
	return ds
}

// Len returns the number of samples.
func (ds Dataset) Len() int {
	return len(ds.samples)
}

// Dim returns the feature length shared by all samples.
func (ds Dataset) Dim() int {
	return ds.dim
}

// Samples returns a copy of the samples.
func (ds Dataset) Samples() []Sample {
	ss := make([]Sample, len(ds.samples))
	for i, s := range ds.samples {
		ss[i] = s.Copy()
	}
	return ss
}

// Sample returns a copy of the sample at the given index.
func (ds Dataset) Sample(i int) Sample {
	return ds.samples[i].Copy()
}

// Copy returns a deep copy of the dataset.
func (ds Dataset) Copy() Dataset {
	return Dataset{
		samples: ds.Samples(),
		dim:     ds.dim,
	}
}

// Matrix returns the feature representation, one row per sample.
func (ds Dataset) Matrix() *mat.Dense {
	if len(ds.samples) == 0 {
		return &mat.Dense{}
	}
	m := mat.NewDense(len(ds.samples), ds.dim, nil)
	for i, s := range ds.samples {
		m.SetRow(i, s.Features)
	}
	return m
}

// Targets returns the representativeness of each sample.
// Unlabeled samples are marked as NaN.
func (ds Dataset) Targets() []float64 {
	tt := make([]float64, len(ds.samples))
	for i, s := range ds.samples {
		tt[i] = s.Target()
	}
	return tt
}

// Labeled returns a copy of the dataset with the given representativeness values assigned in order.
func (ds Dataset) Labeled(values []float64) (Dataset, error) {
	if len(values) != len(ds.samples) {
		return Dataset{}, fmt.Errorf("cannot label %d samples with %d values", len(ds.samples), len(values))
	}
	c := ds.Copy()
	for i := range c.samples {
		c.samples[i].Label(values[i])
	}
	return c, nil
}

type jsonDataset struct {
	Samples []Sample `json:"samples"`
}

// MarshalJSON encodes the dataset as a list of samples.
func (ds Dataset) MarshalJSON() ([]byte, error) {
	samples := ds.samples
	if samples == nil {
		samples = []Sample{}
	}
	return json.Marshal(jsonDataset{Samples: samples})
}

// UnmarshalJSON decodes and validates the dataset.
func (ds *Dataset) UnmarshalJSON(b []byte) error {
	var jd jsonDataset
	if err := json.Unmarshal(b, &jd); err != nil {
		return fmt.Errorf("could not decode dataset: %w", err)
	}
	d, err := NewDataset(jd.Samples)
	if err != nil {
		return err
	}
	*ds = d
	return nil
}
