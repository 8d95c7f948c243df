package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/drakos74/representer/internal/concurrent"
	"github.com/drakos74/representer/internal/extract"
	"github.com/drakos74/representer/internal/math/ml"
	"github.com/drakos74/representer/internal/storage"
)

// RepresenterKey is the config file key of the service.
const RepresenterKey = "representer"

// Environment variables overriding the config file.
const (
	NeighboursEnv = "N_NEIGHBORS"
	MembersEnv    = "NUMBER_OF_ENSEMBLE_MODELS"
	PortEnv       = "PORT"
	ModelKindEnv  = "MODEL_KIND"
)

// Representer is the configuration of the representativeness service.
type Representer struct {
	Port       int       `json:"port"`
	Debug      bool      `json:"debug"`
	Neighbours int       `json:"neighbours"`
	Members    int       `json:"members"`
	Workers    int       `json:"workers"`
	Storage    string    `json:"storage"`
	Model      ml.Config `json:"model"`
}

// Default returns the default service configuration.
func Default() Representer {
	return Representer{
		Port:       6090,
		Neighbours: extract.DefaultNeighbours,
		Members:    5,
		Workers:    concurrent.Workers(),
		Storage:    storage.DefaultDir,
		Model:      ml.DefaultConfig(),
	}
}

// MustLoadRepresenter loads the service config file on top of the defaults,
// and applies the environment overrides.
func MustLoadRepresenter() Representer {
	cfg := Default()
	MustLoad(RepresenterKey, &cfg)
	cfg, err := cfg.Env(os.LookupEnv)
	if err != nil {
		panic(fmt.Sprintf("could not apply environment to config: %s", err.Error()))
	}
	return cfg
}

// Env applies the environment overrides found through the given lookup.
func (cfg Representer) Env(lookup func(key string) (string, bool)) (Representer, error) {
	ints := map[string]*int{
		NeighboursEnv: &cfg.Neighbours,
		MembersEnv:    &cfg.Members,
		PortEnv:       &cfg.Port,
	}
	for key, v := range ints {
		if s, ok := lookup(key); ok {
			i, err := strconv.Atoi(s)
			if err != nil {
				return cfg, fmt.Errorf("invalid value for %s '%s': %w", key, s, err)
			}
			*v = i
		}
	}
	if s, ok := lookup(ModelKindEnv); ok {
		cfg.Model.Kind = s
	}
	return cfg, nil
}
