package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/drakos74/representer/infra/config"
	"github.com/drakos74/representer/internal/metrics"
	"github.com/drakos74/representer/internal/server"
	"github.com/drakos74/representer/internal/service"
	"github.com/drakos74/representer/internal/storage"
	"github.com/drakos74/representer/internal/storage/file/json"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func init() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

func main() {

	cfg := config.MustLoadRepresenter()
	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	experiments, err := json.BlobShard(cfg.Storage, storage.ExperimentsDir)(cfg.Model.Kind)
	if err != nil {
		log.Fatal().Err(err).Msg("could not create experiment storage")
	}
	registry, err := json.EventRegistry(cfg.Storage)(cfg.Model.Kind)
	if err != nil {
		log.Fatal().Err(err).Msg("could not create event registry")
	}

	svc, err := service.New(cfg,
		service.WithPersistence(experiments),
		service.WithRegistry(registry),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("could not create service")
	}

	srv := server.NewServer("representer", cfg.Port).
		Add(server.Routes(svc, cfg.Debug)...).
		Handle("metrics", metrics.Handler())
	if cfg.Debug {
		srv.Debug()
	}

	ctx, cnl := context.WithCancel(context.Background())
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-signals
		log.Info().Msg("shutting down")
		cnl()
	}()

	log.Info().
		Int("members", cfg.Members).
		Int("neighbours", cfg.Neighbours).
		Str("model", cfg.Model.Kind).
		Msg("starting representer")
	if err := srv.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}
