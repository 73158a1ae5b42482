package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/i474232898/goes-imagery/internal/imagery"
	"github.com/i474232898/goes-imagery/internal/metrics"
	"github.com/i474232898/goes-imagery/internal/render"
)

// Config fixes the regions and figure geometry used by every run.
type Config struct {
	QueryBox   imagery.BoundingBox
	DisplayBox imagery.BoundingBox
	Render     render.Options
}

// DefaultConfig returns the tropical Atlantic query and display regions.
func DefaultConfig() Config {
	return Config{
		QueryBox:   imagery.QueryBoundingBox,
		DisplayBox: imagery.DisplayBoundingBox,
	}
}

// Service runs the time → fetch → composite → render pipeline.
type Service struct {
	fetcher imagery.Fetcher
	runs    RunStore
	cfg     Config
}

// NewService creates a new Service. runs may be nil.
func NewService(fetcher imagery.Fetcher, runs RunStore, cfg Config) (*Service, error) {
	if fetcher == nil {
		return nil, errors.New("pipeline: fetcher is required")
	}
	if err := cfg.QueryBox.Validate(); err != nil {
		return nil, fmt.Errorf("pipeline: query box: %w", err)
	}
	if err := cfg.DisplayBox.Validate(); err != nil {
		return nil, fmt.Errorf("pipeline: display box: %w", err)
	}
	if !cfg.QueryBox.Contains(cfg.DisplayBox) {
		return nil, fmt.Errorf("pipeline: display box %s is not inside query box %s", cfg.DisplayBox, cfg.QueryBox)
	}
	return &Service{fetcher: fetcher, runs: runs, cfg: cfg}, nil
}

// ReturnsRawData reports whether the pipeline for p also returns the
// composited raster.
func (s *Service) ReturnsRawData(p imagery.Product) (bool, error) {
	d, err := imagery.Lookup(p)
	if err != nil {
		return false, err
	}
	return d.ReturnsRawData, nil
}

// GetImage runs the pipeline for product at now. Unknown products fail
// before any network call. Every error is a *StageError.
func (s *Service) GetImage(ctx context.Context, product imagery.Product, now time.Time) (res *Result, err error) {
	runID := uuid.NewString()
	queryTime := imagery.ResolveQueryTime(now)
	started := time.Now()
	stage := StageLookup

	logger := log.With().
		Str("run_id", runID).
		Str("product", product.String()).
		Str("query_time", queryTime).
		Logger()

	defer func() {
		s.record(logger, runID, product, queryTime, started, stage, err)
	}()

	fail := func(e error) (*Result, error) {
		return nil, &StageError{
			RunID:     runID,
			Product:   product.String(),
			QueryTime: queryTime,
			Stage:     stage,
			Err:       e,
		}
	}

	d, err := imagery.Lookup(product)
	if err != nil {
		return fail(err)
	}
	// Key history and metrics by the catalog's own value.
	product = d.Product

	stage = StageFetch
	t := time.Now()
	raster, err := s.fetcher.Fetch(ctx, d, queryTime, s.cfg.QueryBox)
	metrics.ObserveStage(product.String(), string(stage), time.Since(t))
	if err != nil {
		return fail(err)
	}

	stage = StageComposite
	t = time.Now()
	composite, err := imagery.Composite(raster)
	metrics.ObserveStage(product.String(), string(stage), time.Since(t))
	if err != nil {
		return fail(err)
	}

	stage = StageRender
	t = time.Now()
	fig, err := render.Render(d, queryTime, composite, s.cfg.DisplayBox, s.cfg.Render)
	metrics.ObserveStage(product.String(), string(stage), time.Since(t))
	if err != nil {
		return fail(err)
	}

	res = &Result{
		RunID:      runID,
		Descriptor: d,
		QueryTime:  queryTime,
		Figure:     fig,
	}
	if d.ReturnsRawData {
		res.Raw = composite
	}
	return res, nil
}

func (s *Service) record(logger zerolog.Logger, runID string, product imagery.Product, queryTime string, started time.Time, stage Stage, err error) {
	rec := RunRecord{
		RunID:     runID,
		Product:   product.String(),
		QueryTime: queryTime,
		StartedAt: started.UTC(),
		Duration:  time.Since(started),
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
		rec.Stage = stage
		rec.Error = err.Error()
		logger.Error().Err(err).Str("stage", string(stage)).Msg("imagery pipeline failed")
	} else {
		logger.Info().Dur("elapsed", rec.Duration).Msg("imagery pipeline completed")
	}
	metrics.PipelineRuns.WithLabelValues(product.String(), outcome).Inc()

	if s.runs != nil {
		s.runs.SaveRun(rec)
	}
}

// CurrentInfrared renders the GOES-East clean infrared band.
func (s *Service) CurrentInfrared(ctx context.Context, now time.Time) (*render.Figure, string, error) {
	return s.figureOnly(ctx, imagery.ProductInfrared, now)
}

// CurrentVisible renders the GOES-East red visible band.
func (s *Service) CurrentVisible(ctx context.Context, now time.Time) (*render.Figure, string, error) {
	return s.figureOnly(ctx, imagery.ProductVisible, now)
}

// CurrentGeoColor renders the GOES-East GeoColor composite.
func (s *Service) CurrentGeoColor(ctx context.Context, now time.Time) (*render.Figure, string, error) {
	return s.figureOnly(ctx, imagery.ProductGeoColor, now)
}

// CurrentWaterVapor renders AMSR2 daytime columnar water vapor and also
// returns the composited raster.
func (s *Service) CurrentWaterVapor(ctx context.Context, now time.Time) (*render.Figure, string, *imagery.Raster, error) {
	return s.withRaw(ctx, imagery.ProductWaterVapor, now)
}

// CurrentWaterVaporNight renders AMSR2 nighttime columnar water vapor and
// also returns the composited raster.
func (s *Service) CurrentWaterVaporNight(ctx context.Context, now time.Time) (*render.Figure, string, *imagery.Raster, error) {
	return s.withRaw(ctx, imagery.ProductWaterVaporNight, now)
}

func (s *Service) figureOnly(ctx context.Context, p imagery.Product, now time.Time) (*render.Figure, string, error) {
	res, err := s.GetImage(ctx, p, now)
	if err != nil {
		return nil, "", err
	}
	return res.Figure, res.QueryTime, nil
}

func (s *Service) withRaw(ctx context.Context, p imagery.Product, now time.Time) (*render.Figure, string, *imagery.Raster, error) {
	res, err := s.GetImage(ctx, p, now)
	if err != nil {
		return nil, "", nil, err
	}
	return res.Figure, res.QueryTime, res.Raw, nil
}

// Recent returns recent run records, newest last.
func (s *Service) Recent(product string, limit int) ([]RunRecord, error) {
	if s.runs == nil {
		return nil, nil
	}
	return s.runs.Recent(product, limit)
}
