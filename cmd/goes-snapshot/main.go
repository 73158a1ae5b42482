package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/i474232898/goes-imagery/internal/config"
	"github.com/i474232898/goes-imagery/internal/imagery/providers"
	"github.com/i474232898/goes-imagery/internal/logging"
	"github.com/i474232898/goes-imagery/internal/pipeline"
)

func main() {
	cfg, err := config.LoadSnapshot()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	if err := run(cfg); err != nil {
		log.Error().Err(err).Msg("snapshot failed")
		os.Exit(1)
	}
}

func run(cfg *config.SnapshotConfig) error {
	fetcher := providers.NewWVSFetcher(&http.Client{}, providers.DefaultWVSBaseURL, cfg.HTTPTimeout)

	service, err := pipeline.NewService(fetcher, nil, pipeline.DefaultConfig())
	if err != nil {
		return err
	}

	fig, queryTime, err := service.CurrentInfrared(context.Background(), time.Now().UTC())
	if err != nil {
		return err
	}
	if err := fig.SavePNG(cfg.OutputFile); err != nil {
		return err
	}

	log.Info().Str("query_time", queryTime).Str("output", cfg.OutputFile).Msg("snapshot written")
	return nil
}
