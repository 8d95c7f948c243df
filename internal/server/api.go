package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"

	"github.com/drakos74/representer/internal/model"
	"github.com/drakos74/representer/internal/regressor"
	"github.com/drakos74/representer/internal/service"
	"github.com/drakos74/representer/internal/storage"
	"github.com/drakos74/representer/internal/tracker"
)

// SubmittedMsg is the response detail of an accepted training request.
const SubmittedMsg = "Job has been submitted"

// Representer is the service exposed over http.
type Representer interface {
	Train(ds model.Dataset) error
	Predict(ctx context.Context, samples []model.Sample) ([]float64, error)
	Status() map[string]string
	Experiment(id string) (service.Experiment, error)
	Transitions() ([]tracker.Record, error)
}

// Prediction is the response of the predict route.
// Undefined predictions are encoded as null.
type Prediction struct {
	Representativeness []*float64 `json:"representativeness"`
}

func newPrediction(pp []float64) Prediction {
	rr := make([]*float64, len(pp))
	for i, p := range pp {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			continue
		}
		p := p
		rr[i] = &p
	}
	return Prediction{Representativeness: rr}
}

// Routes returns the http routes of the service.
func Routes(svc Representer, debug bool) []Route {
	return []Route{
		Live(),
		{
			Path:   "train",
			Method: POST,
			Exec: func(r *http.Request) ([]byte, int, error) {
				var ds model.Dataset
				if err := JsonRead(r, debug, &ds); err != nil {
					return detail(err.Error(), http.StatusUnprocessableEntity)
				}
				if err := svc.Train(ds); err != nil {
					if errors.Is(err, service.TrainingInProgressErr) {
						return detail(err.Error(), http.StatusConflict)
					}
					return detail(err.Error(), http.StatusUnprocessableEntity)
				}
				return detail(SubmittedMsg, http.StatusAccepted)
			},
		},
		{
			Path:   "predict",
			Method: POST,
			Exec: func(r *http.Request) ([]byte, int, error) {
				var samples []model.Sample
				if err := JsonRead(r, debug, &samples); err != nil {
					return detail(err.Error(), http.StatusBadRequest)
				}
				pp, err := svc.Predict(r.Context(), samples)
				if err != nil {
					if errors.Is(err, regressor.ModelNotFittedErr) || errors.Is(err, regressor.InferenceSampleShapeErr) {
						return detail(err.Error(), http.StatusAccepted)
					}
					return nil, 0, err
				}
				b, err := json.Marshal(newPrediction(pp))
				if err != nil {
					return nil, 0, fmt.Errorf("could not encode prediction: %w", err)
				}
				return b, http.StatusOK, nil
			},
		},
		{
			Path:   "status",
			Method: GET,
			Exec: func(r *http.Request) ([]byte, int, error) {
				b, err := json.Marshal(svc.Status())
				if err != nil {
					return nil, 0, fmt.Errorf("could not encode status: %w", err)
				}
				return b, http.StatusOK, nil
			},
		},
		{
			Path:   "experiment",
			Method: GET,
			Exec: func(r *http.Request) ([]byte, int, error) {
				id := r.URL.Query().Get("id")
				if id == "" {
					return detail("missing experiment id", http.StatusBadRequest)
				}
				experiment, err := svc.Experiment(id)
				if err != nil {
					if errors.Is(err, storage.NotFoundErr) {
						return detail(err.Error(), http.StatusNotFound)
					}
					return nil, 0, err
				}
				b, err := json.Marshal(experiment)
				if err != nil {
					return nil, 0, fmt.Errorf("could not encode experiment: %w", err)
				}
				return b, http.StatusOK, nil
			},
		},
		{
			Path:   "transitions",
			Method: GET,
			Exec: func(r *http.Request) ([]byte, int, error) {
				records, err := svc.Transitions()
				if err != nil {
					return nil, 0, err
				}
				if id := r.URL.Query().Get("experiment"); id != "" {
					records = filter(records, id)
				}
				b, err := json.Marshal(records)
				if err != nil {
					return nil, 0, fmt.Errorf("could not encode transitions: %w", err)
				}
				return b, http.StatusOK, nil
			},
		},
	}
}

// filter keeps the records of the given experiment.
func filter(records []tracker.Record, experiment string) []tracker.Record {
	rr := make([]tracker.Record, 0)
	for _, r := range records {
		if r.Experiment == experiment {
			rr = append(rr, r)
		}
	}
	return rr
}

func detail(msg string, code int) ([]byte, int, error) {
	b, err := Detail(msg)
	if err != nil {
		return nil, 0, err
	}
	return b, code, nil
}
