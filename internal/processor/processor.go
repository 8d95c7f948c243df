package processor

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/drakos74/representer/internal/concurrent"
	"github.com/drakos74/representer/internal/extract"
	"github.com/drakos74/representer/internal/model"
	"github.com/rs/zerolog/log"
)

var (
	// InvalidSplitsErr is returned for a non-positive number of splits.
	InvalidSplitsErr = errors.New("invalid number of splits")
	// InvalidSizeErr is returned for a non-positive dataset size.
	InvalidSizeErr = errors.New("invalid dataset size")
)

// Processor prepares datasets for training.
type Processor struct {
	mutex   *sync.Mutex
	rand    *rand.Rand
	workers int
}

// Option configures a processor.
type Option func(p *Processor)

// WithSeed makes the random generation and shuffling reproducible.
func WithSeed(seed int64) Option {
	return func(p *Processor) {
		p.rand = rand.New(rand.NewSource(seed))
	}
}

// WithWorkers bounds the number of chunks labeled at once.
func WithWorkers(workers int) Option {
	return func(p *Processor) {
		if workers > 0 {
			p.workers = workers
		}
	}
}

// New creates a new processor.
func New(options ...Option) *Processor {
	p := &Processor{
		mutex:   new(sync.Mutex),
		rand:    rand.New(rand.NewSource(time.Now().UnixNano())),
		workers: concurrent.Workers(),
	}
	for _, option := range options {
		option(p)
	}
	return p
}

// CreateDataset generates a dataset of unlabeled samples with uniform features in [0,1).
func (p *Processor) CreateDataset(ctx context.Context, samples, features int) (model.Dataset, error) {
	if samples <= 0 || features <= 0 {
		return model.Dataset{}, fmt.Errorf("%d samples of %d features: %w", samples, features, InvalidSizeErr)
	}
	var ds model.Dataset
	err := concurrent.Async(ctx, func() error {
		p.mutex.Lock()
		defer p.mutex.Unlock()
		ss := make([]model.Sample, samples)
		for i := range ss {
			ff := make([]float64, features)
			for j := range ff {
				ff[j] = p.rand.Float64()
			}
			ss[i] = model.NewSample(ff...)
		}
		d, err := model.NewDataset(ss)
		if err != nil {
			return err
		}
		ds = d
		return nil
	})
	if err != nil {
		return model.Dataset{}, fmt.Errorf("could not create dataset: %w", err)
	}
	return ds, nil
}

// Label returns a copy of the dataset labeled with the representativeness of each sample.
func Label(ds model.Dataset, extractor extract.Extractor) (model.Dataset, error) {
	scores, err := extractor.Extract(ds.Matrix())
	if err != nil {
		return model.Dataset{}, fmt.Errorf("could not extract representativeness: %w", err)
	}
	return ds.Labeled(scores)
}

// ToSupervised shuffles a copy of the dataset, splits it into the given number of chunks
// and labels every chunk independently.
// Chunks are returned in split order.
func (p *Processor) ToSupervised(ctx context.Context, ds model.Dataset, splits int, extractor extract.Extractor) ([]model.Dataset, error) {
	if splits <= 0 {
		return nil, fmt.Errorf("%d: %w", splits, InvalidSplitsErr)
	}

	samples := ds.Samples()
	p.shuffle(samples)

	bounds := Split(len(samples), splits)
	chunks := make([]model.Dataset, splits)
	for i, b := range bounds {
		chunk, err := model.NewDataset(samples[b[0]:b[1]])
		if err != nil {
			return nil, fmt.Errorf("could not create chunk %d of %d: %w", i, splits, err)
		}
		chunks[i] = chunk
	}

	labeled := make([]model.Dataset, splits)
	err := concurrent.Each(ctx, splits, p.workers, func(ctx context.Context, i int) error {
		l, err := Label(chunks[i], extractor)
		if err != nil {
			return fmt.Errorf("could not label chunk %d: %w", i, err)
		}
		labeled[i] = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Debug().
		Int("samples", len(samples)).
		Int("splits", splits).
		Msg("supervised dataset")
	return labeled, nil
}

func (p *Processor) shuffle(samples []model.Sample) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.rand.Shuffle(len(samples), func(i, j int) {
		samples[i], samples[j] = samples[j], samples[i]
	})
}

// Split returns the [start, end) bounds of n items split into the given number of chunks.
// Chunk sizes differ by at most one, the first n % splits chunks holding the extra item.
func Split(n, splits int) [][2]int {
	bounds := make([][2]int, splits)
	size, extra := n/splits, n%splits
	start := 0
	for i := range bounds {
		end := start + size
		if i < extra {
			end++
		}
		bounds[i] = [2]int{start, end}
		start = end
	}
	return bounds
}
