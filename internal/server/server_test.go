package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io/ioutil"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/drakos74/representer/infra/config"
	"github.com/drakos74/representer/internal/math/ml"
	"github.com/drakos74/representer/internal/metrics"
	"github.com/drakos74/representer/internal/model"
	"github.com/drakos74/representer/internal/processor"
	"github.com/drakos74/representer/internal/service"
	filestorage "github.com/drakos74/representer/internal/storage/file/json"
	"github.com/drakos74/representer/internal/tracker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const notFitted = `{"detail":"prediction cannot be made, regressor is not fitted yet"}`

func newTestServer(t *testing.T) (*httptest.Server, *service.Service) {
	cfg := config.Default()
	cfg.Members = 3
	cfg.Neighbours = 3
	cfg.Model = ml.Config{Kind: ml.ForestKind, Trees: 10, Bins: 5}
	svc, err := service.New(cfg,
		service.WithPersistence(filestorage.NewLocalStorage()),
		service.WithRegistry(filestorage.NewEventRegistry(t.TempDir(), "test")),
		service.WithProcessor(processor.New(processor.WithSeed(1))),
	)
	require.NoError(t, err)
	s := NewServer("test", 0).
		Add(Routes(svc, false)...).
		Handle("metrics", metrics.Handler())
	ts := httptest.NewServer(s.Mux())
	t.Cleanup(ts.Close)
	return ts, svc
}

func call(t *testing.T, ts *httptest.Server, method, path, body string) (int, string) {
	req, err := http.NewRequest(method, ts.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := ioutil.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(b)
}

func datasetPayload(t *testing.T, samples, features int) string {
	ds, err := processor.New(processor.WithSeed(2)).CreateDataset(context.Background(), samples, features)
	require.NoError(t, err)
	b, err := json.Marshal(ds)
	require.NoError(t, err)
	return string(b)
}

func TestServer_BeforeTraining(t *testing.T) {
	ts, _ := newTestServer(t)

	type test struct {
		method string
		path   string
		body   string
		code   int
		json   string
	}

	tests := map[string]test{
		"status": {
			method: "GET",
			path:   "/status",
			code:   http.StatusOK,
			json:   `{"status":"Training has not started yet"}`,
		},
		"predict-one": {
			method: "POST",
			path:   "/predict",
			body:   `[{"features":[1,2,3]}]`,
			code:   http.StatusAccepted,
			json:   notFitted,
		},
		"predict-labeled": {
			method: "POST",
			path:   "/predict",
			body:   `[{"features":[1,2,3],"representativeness":0.5},{"features":[1,2]}]`,
			code:   http.StatusAccepted,
			json:   notFitted,
		},
		"predict-none": {
			method: "POST",
			path:   "/predict",
			body:   `[]`,
			code:   http.StatusOK,
			json:   `{"representativeness":[]}`,
		},
		"predict-invalid": {
			method: "POST",
			path:   "/predict",
			body:   `[{"features":[1,"a"]}]`,
			code:   http.StatusBadRequest,
		},
		"train-invalid-shape": {
			method: "POST",
			path:   "/train",
			body:   `{"samples":[{"features":[1,2]},{"features":[1]}]}`,
			code:   http.StatusUnprocessableEntity,
		},
		"train-empty-body": {
			method: "POST",
			path:   "/train",
			code:   http.StatusUnprocessableEntity,
		},
		"train-wrong-method": {
			method: "GET",
			path:   "/train",
			code:   http.StatusMethodNotAllowed,
		},
		"status-wrong-method": {
			method: "POST",
			path:   "/status",
			code:   http.StatusMethodNotAllowed,
		},
		"live": {
			method: "GET",
			path:   "/live",
			code:   http.StatusOK,
		},
		"experiment-missing-id": {
			method: "GET",
			path:   "/experiment",
			code:   http.StatusBadRequest,
		},
		"experiment-unknown": {
			method: "GET",
			path:   "/experiment?id=unknown",
			code:   http.StatusNotFound,
		},
		"transitions-none": {
			method: "GET",
			path:   "/transitions",
			code:   http.StatusOK,
			json:   `[]`,
		},
		"transitions-wrong-method": {
			method: "POST",
			path:   "/transitions",
			code:   http.StatusMethodNotAllowed,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			code, body := call(t, ts, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.code, code)
			if tt.json != "" {
				assert.JSONEq(t, tt.json, body)
			}
		})
	}
}

func TestServer_TrainAndPredict(t *testing.T) {
	ts, svc := newTestServer(t)

	code, body := call(t, ts, "POST", "/train", datasetPayload(t, 60, 5))
	assert.Equal(t, http.StatusAccepted, code)
	assert.JSONEq(t, `{"detail":"Job has been submitted"}`, body)
	svc.Wait()

	code, body = call(t, ts, "GET", "/status", "")
	require.Equal(t, http.StatusOK, code)
	var status map[string]string
	require.NoError(t, json.Unmarshal([]byte(body), &status))
	assert.Equal(t, "Training has finished", status["status"])
	assert.NotEmpty(t, status["start_time"])
	assert.NotEmpty(t, status["finish_time"])

	samples := []model.Sample{
		model.NewSample(0.1, 0.2, 0.3, 0.4, 0.5),
		model.NewSample(0.5, 0.4, 0.3, 0.2, 0.1),
		model.NewSample(0.9, 0.9, 0.9, 0.9, 0.9),
	}
	b, err := json.Marshal(samples)
	require.NoError(t, err)
	code, body = call(t, ts, "POST", "/predict", string(b))
	require.Equal(t, http.StatusOK, code)
	var prediction Prediction
	require.NoError(t, json.Unmarshal([]byte(body), &prediction))
	require.Equal(t, 3, len(prediction.Representativeness))
	for _, p := range prediction.Representativeness {
		require.NotNil(t, p)
		assert.True(t, *p > 0 && *p <= 1)
	}

	code, body = call(t, ts, "POST", "/predict", `[{"features":[1,2]}]`)
	assert.Equal(t, http.StatusAccepted, code)
	assert.Contains(t, body, "inference sample has unexpected shape: (2,) expected shape: (5,)")

	code, body = call(t, ts, "GET", "/transitions", "")
	require.Equal(t, http.StatusOK, code)
	var records []tracker.Record
	require.NoError(t, json.Unmarshal([]byte(body), &records))
	events := make([]string, len(records))
	for i, r := range records {
		events[i] = r.Event
	}
	require.Equal(t, []string{"reset", "await", "start", "succeed"}, events)

	experiment := records[3].Experiment
	code, body = call(t, ts, "GET", "/transitions?experiment="+experiment, "")
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal([]byte(body), &records))
	assert.Equal(t, 3, len(records))

	code, body = call(t, ts, "GET", "/experiment?id="+experiment, "")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, tracker.Finished.String())

	code, body = call(t, ts, "GET", "/metrics", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "representer_predictions_total")
	assert.Contains(t, body, "representer_transitions_total")
}

func TestPrediction_NaN(t *testing.T) {
	var buffer bytes.Buffer
	require.NoError(t, json.NewEncoder(&buffer).Encode(newPrediction([]float64{0.5, math.NaN()})))
	assert.JSONEq(t, `{"representativeness":[0.5,null]}`, buffer.String())
}
