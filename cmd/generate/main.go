package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/drakos74/representer/internal/processor"
	"github.com/drakos74/representer/internal/storage/file/json"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type artifact struct {
	samples  int
	features int
	// batch artifacts are plain sample lists for the predict route
	batch bool
}

var artifacts = []artifact{
	{samples: 1_000, features: 5},
	{samples: 10_000, features: 10},
	{samples: 100_000, features: 10},
	{samples: 10, features: 5, batch: true},
	{samples: 10, features: 10, batch: true},
}

func init() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

func main() {

	dir := flag.String("dir", "artifacts", "output directory")
	seed := flag.Int64("seed", 0, "random seed, 0 for a time based one")
	flag.Parse()

	var options []processor.Option
	if *seed != 0 {
		options = append(options, processor.WithSeed(*seed))
	}
	p := processor.New(options...)

	ctx := context.Background()
	for _, a := range artifacts {
		ds, err := p.CreateDataset(ctx, a.samples, a.features)
		if err != nil {
			log.Fatal().Err(err).Int("samples", a.samples).Int("features", a.features).Msg("could not create dataset")
		}
		name := fmt.Sprintf("dataset_%s_samples_%d_features.json", thousands(a.samples), a.features)
		var value interface{} = ds
		if a.batch {
			name = fmt.Sprintf("samples_%d_features.json", a.features)
			value = ds.Samples()
		}
		if err := json.Save(*dir, name, value); err != nil {
			log.Fatal().Err(err).Str("file", name).Msg("could not save artifact")
		}
		log.Info().Str("dir", *dir).Str("file", name).Msg("saved artifact")
	}
}

// thousands formats the number with '_' as the thousands separator.
func thousands(n int) string {
	s := fmt.Sprintf("%d", n)
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "_" + s[i:]
	}
	return s
}
