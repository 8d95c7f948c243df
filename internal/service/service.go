package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/drakos74/representer/infra/config"
	"github.com/drakos74/representer/internal/extract"
	"github.com/drakos74/representer/internal/math/ml"
	"github.com/drakos74/representer/internal/model"
	"github.com/drakos74/representer/internal/processor"
	"github.com/drakos74/representer/internal/regressor"
	"github.com/drakos74/representer/internal/storage"
	"github.com/drakos74/representer/internal/tracker"
	"github.com/rs/zerolog/log"
)

// TrainingInProgressErr is returned when training is requested while another run is active.
var TrainingInProgressErr = errors.New("training is already in progress")

// ExperimentLabel is the storage label of the experiment records.
const ExperimentLabel = "experiment"

// Experiment is the stored summary of a training run.
type Experiment struct {
	ID         string     `json:"id"`
	Status     string     `json:"status"`
	Started    *time.Time `json:"started,omitempty"`
	Stopped    *time.Time `json:"stopped,omitempty"`
	Failed     *time.Time `json:"failed,omitempty"`
	Error      string     `json:"error,omitempty"`
	Samples    int        `json:"samples"`
	Features   int        `json:"features"`
	Members    int        `json:"members"`
	Neighbours int        `json:"neighbours"`
	Model      ml.Config  `json:"model"`
}

// Service owns a single ensemble and orchestrates its training and inference.
type Service struct {
	cfg         config.Representer
	ensemble    *regressor.Ensemble
	processor   *processor.Processor
	extractor   extract.Extractor
	factory     ml.Factory
	experiments storage.Persistence
	registry    storage.Registry
	// lock guards the ensemble members against registration during inference
	lock    *sync.RWMutex
	mutex   *sync.Mutex
	running bool
	wg      *sync.WaitGroup
}

// Option configures a service.
type Option func(s *Service)

// WithPersistence sets the storage of the experiment records.
func WithPersistence(p storage.Persistence) Option {
	return func(s *Service) {
		s.experiments = p
	}
}

// WithRegistry sets the event log of the training transitions.
func WithRegistry(r storage.Registry) Option {
	return func(s *Service) {
		s.registry = r
	}
}

// WithProcessor sets the dataset processor.
func WithProcessor(p *processor.Processor) Option {
	return func(s *Service) {
		s.processor = p
	}
}

// New creates a new service for the given config.
func New(cfg config.Representer, options ...Option) (*Service, error) {
	factory, err := ml.NewFactory(cfg.Model)
	if err != nil {
		return nil, fmt.Errorf("could not create model factory: %w", err)
	}
	s := &Service{
		cfg:         cfg,
		extractor:   extract.NewNeighbours(cfg.Neighbours),
		factory:     factory,
		experiments: storage.NewVoidStorage(),
		registry:    storage.NewVoidRegistry(),
		lock:        new(sync.RWMutex),
		mutex:       new(sync.Mutex),
		wg:          new(sync.WaitGroup),
	}
	for _, option := range options {
		option(s)
	}
	if s.processor == nil {
		s.processor = processor.New(processor.WithWorkers(cfg.Workers))
	}
	s.ensemble = regressor.NewEnsemble(
		regressor.WithWorkers(cfg.Workers),
		regressor.WithTracker(tracker.New(tracker.WithRegistry(s.registry))),
	)
	return s, nil
}

// Train submits a training run for the given dataset and returns without waiting for it.
func (s *Service) Train(ds model.Dataset) error {
	if ds.Len() == 0 {
		return model.EmptyDatasetErr
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.running {
		return TrainingInProgressErr
	}
	s.running = true
	s.wg.Add(1)
	go func() {
		defer func() {
			s.mutex.Lock()
			s.running = false
			s.mutex.Unlock()
			s.wg.Done()
		}()
		s.train(context.Background(), ds)
	}()
	return nil
}

// Wait blocks until the submitted training run, if any, has finished.
func (s *Service) Wait() {
	s.wg.Wait()
}

func (s *Service) train(ctx context.Context, ds model.Dataset) {
	s.lock.Lock()
	s.ensemble.Reset()
	s.lock.Unlock()

	if err := s.ensemble.Await(); err != nil {
		log.Error().Err(err).Msg("could not start training")
		return
	}

	shards, err := s.processor.ToSupervised(ctx, ds, s.cfg.Members, s.extractor)
	if err != nil {
		log.Error().Err(err).Int("samples", ds.Len()).Msg("could not prepare dataset")
		if ferr := s.ensemble.Fail(err); ferr != nil {
			log.Error().Err(ferr).Msg("could not record failure")
		}
		s.record(ds)
		return
	}

	s.lock.Lock()
	for i := 0; i < s.cfg.Members; i++ {
		m, err := s.factory()
		if err != nil {
			// the factory config is validated on creation
			log.Error().Err(err).Msg("could not create model")
			break
		}
		s.ensemble.Register(regressor.NewBase(m))
	}
	s.lock.Unlock()

	if err := s.ensemble.Fit(ctx, shards); err != nil {
		log.Error().Err(err).Msg("could not fit ensemble")
	}
	s.record(ds)
}

func (s *Service) record(ds model.Dataset) {
	state := s.ensemble.State()
	if state.Experiment == "" {
		return
	}
	experiment := Experiment{
		ID:         state.Experiment,
		Status:     state.Status.String(),
		Started:    state.Started,
		Stopped:    state.Stopped,
		Failed:     state.Failed,
		Samples:    ds.Len(),
		Features:   ds.Dim(),
		Members:    len(s.ensemble.Regressors()),
		Neighbours: s.cfg.Neighbours,
		Model:      s.cfg.Model,
	}
	if state.Err != nil {
		experiment.Error = state.Err.Error()
	}
	if err := s.experiments.Store(storage.Key{
		Name:  ExperimentLabel,
		Label: state.Experiment,
	}, experiment); err != nil {
		log.Error().Err(err).Str("experiment", state.Experiment).Msg("could not store experiment")
		return
	}
	log.Info().
		Str("experiment", experiment.ID).
		Str("status", experiment.Status).
		Int("samples", experiment.Samples).
		Msg("experiment recorded")
}

// Predict returns the ensemble prediction of every sample, in order.
func (s *Service) Predict(ctx context.Context, samples []model.Sample) ([]float64, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	predictions := make([]float64, len(samples))
	for i, sample := range samples {
		p, err := s.ensemble.Predict(ctx, sample)
		if err != nil {
			return nil, err
		}
		predictions[i] = p
	}
	return predictions, nil
}

// Status returns the verbose status of the ensemble.
func (s *Service) Status() map[string]string {
	return s.ensemble.Verbose()
}

// Experiment loads the record of the given training run.
func (s *Service) Experiment(id string) (Experiment, error) {
	var experiment Experiment
	err := s.experiments.Load(storage.Key{
		Name:  ExperimentLabel,
		Label: id,
	}, &experiment)
	if err != nil {
		return Experiment{}, fmt.Errorf("could not load experiment '%s': %w", id, err)
	}
	return experiment, nil
}

// Transitions returns the logged status transitions of the ensemble.
func (s *Service) Transitions() ([]tracker.Record, error) {
	records := make([]tracker.Record, 0)
	err := s.registry.GetAll(storage.K{
		Name:  s.ensemble.ID(),
		Label: tracker.EventsLabel,
	}, &records)
	if err != nil {
		return nil, fmt.Errorf("could not load transitions: %w", err)
	}
	return records, nil
}
