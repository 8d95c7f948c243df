package model

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSample_Rounding(t *testing.T) {
	s := NewSample(0.123456789, 1, -2.000004)
	assert.Equal(t, []float64{0.12346, 1, -2}, s.Features)
	assert.False(t, s.IsLabeled())
	assert.True(t, math.IsNaN(s.Target()))

	s.Label(0.5)
	assert.True(t, s.IsLabeled())
	assert.Equal(t, 0.5, s.Target())
}

func TestSample_JSON(t *testing.T) {

	type test struct {
		payload  string
		features []float64
		labeled  bool
		err      bool
	}

	tests := map[string]test{
		"unlabeled": {
			payload:  `{"features":[0.1234567,2]}`,
			features: []float64{0.12346, 2},
		},
		"labeled": {
			payload:  `{"features":[1,2],"representativeness":0.3}`,
			features: []float64{1, 2},
			labeled:  true,
		},
		"non-numeric": {
			payload: `{"features":[1,"a"]}`,
			err:     true,
		},
		"missing-features": {
			payload: `{"representativeness":0.3}`,
			err:     true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			var s Sample
			err := json.Unmarshal([]byte(tt.payload), &s)
			if tt.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.features, s.Features)
			assert.Equal(t, tt.labeled, s.IsLabeled())
		})
	}
}

func TestSample_MarshalNaN(t *testing.T) {
	s := NewSample(1, 2)
	s.Label(math.NaN())
	b, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"features":[1,2],"representativeness":null}`, string(b))
}

func TestNewDataset(t *testing.T) {

	type test struct {
		samples []Sample
		err     error
	}

	tests := map[string]test{
		"same-shape": {
			samples: []Sample{NewSample(1, 2), NewSample(3, 4)},
		},
		"different-shape": {
			samples: []Sample{NewSample(1, 2), NewSample(3, 4, 5)},
			err:     IncorrectSamplesShapeErr,
		},
		"no-features": {
			samples: []Sample{NewSample(), NewSample()},
			err:     IncorrectSamplesShapeErr,
		},
		"empty": {
			samples: []Sample{},
			err:     EmptyDatasetErr,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			ds, err := NewDataset(tt.samples)
			if tt.err != nil {
				assert.True(t, errors.Is(err, tt.err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, len(tt.samples), ds.Len())
		})
	}
}

func TestNewDataset_RoundsLiteralSamples(t *testing.T) {
	samples := []Sample{
		{Features: []float64{0.123456789, 1}},
		{Features: []float64{-2.000004, 3.999996}},
	}
	ds, err := NewDataset(samples)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.12346, 1}, ds.Sample(0).Features)
	assert.Equal(t, []float64{-2, 4}, ds.Sample(1).Features)
	assert.Equal(t, 0.123456789, samples[0].Features[0])
}

func TestDataset_Views(t *testing.T) {
	ds := MustDataset([]Sample{NewSample(1, 2, 3), NewSample(4, 5, 6)})

	m := ds.Matrix()
	r, c := m.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 3, c)
	assert.Equal(t, 5.0, m.At(1, 1))

	for _, v := range ds.Targets() {
		assert.True(t, math.IsNaN(v))
	}
}

func TestDataset_LabeledIsCopy(t *testing.T) {
	ds := MustDataset([]Sample{NewSample(1, 2), NewSample(3, 4)})

	labeled, err := ds.Labeled([]float64{0.1, 0.2})
	require.NoError(t, err)

	assert.Equal(t, []float64{0.1, 0.2}, labeled.Targets())
	for _, s := range ds.Samples() {
		assert.False(t, s.IsLabeled())
	}

	_, err = ds.Labeled([]float64{0.1})
	assert.Error(t, err)
}

func TestDataset_JSON(t *testing.T) {
	var ds Dataset
	err := json.Unmarshal([]byte(`{"samples":[{"features":[1,2]},{"features":[3,4],"representativeness":0.5}]}`), &ds)
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Len())
	assert.Equal(t, 2, ds.Dim())

	b, err := json.Marshal(ds)
	require.NoError(t, err)
	assert.JSONEq(t, `{"samples":[{"features":[1,2],"representativeness":null},{"features":[3,4],"representativeness":0.5}]}`, string(b))

	err = json.Unmarshal([]byte(`{"samples":[{"features":[1,2]},{"features":[3]}]}`), &ds)
	assert.True(t, errors.Is(err, IncorrectSamplesShapeErr))

	err = json.Unmarshal([]byte(`{"samples":{"sample_1":{"features":[1,2]}}}`), &ds)
	assert.Error(t, err)
}
