package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog/log"

	"github.com/i474232898/goes-imagery/internal/imagery"
	"github.com/i474232898/goes-imagery/internal/metrics"
	"github.com/i474232898/goes-imagery/internal/pipeline"
)

// Renderer produces a pipeline result for a product.
type Renderer interface {
	GetImage(ctx context.Context, product imagery.Product, now time.Time) (*pipeline.Result, error)
}

// Scheduler periodically renders one product and overwrites the output file.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   Renderer
	product   imagery.Product
	output    string
	interval  time.Duration
	timeout   time.Duration
	now       func() time.Time
}

// New creates a new Scheduler. timeout bounds a single refresh.
func New(product imagery.Product, output string, interval, timeout time.Duration, service Renderer) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Scheduler{
		scheduler: s,
		service:   service,
		product:   product,
		output:    output,
		interval:  interval,
		timeout:   timeout,
		now:       time.Now,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
// A non-positive interval disables scheduling.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		log.Info().Msg("scheduler: interval not set; nothing to schedule")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		if err := s.Refresh(ctx); err != nil {
			log.Error().Err(err).Str("product", s.product.String()).Msg("scheduler: refresh failed")
		}
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Refresh runs the pipeline once and atomically replaces the output file.
// On failure the previous file is left untouched.
func (s *Scheduler) Refresh(ctx context.Context) error {
	product := s.product.String()

	res, err := s.service.GetImage(ctx, s.product, s.now().UTC())
	if err != nil {
		metrics.SnapshotWrites.WithLabelValues(product, "error").Inc()
		return err
	}
	if err := res.Figure.SavePNG(s.output); err != nil {
		metrics.SnapshotWrites.WithLabelValues(product, "error").Inc()
		return err
	}

	metrics.SnapshotWrites.WithLabelValues(product, "ok").Inc()
	log.Info().
		Str("product", product).
		Str("query_time", res.QueryTime).
		Str("output", s.output).
		Msg("scheduler: snapshot written")
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
