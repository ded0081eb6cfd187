package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/stencil-lab/internal/domain"
	"github.com/couchcryptid/stencil-lab/internal/observability"
	"github.com/couchcryptid/storm-data-shared/retry"
)

// maxLoadAttempts bounds how often a single loader is tried per run.
const maxLoadAttempts = 5

// ImageSource provides the image for the smoothing exercise.
type ImageSource interface {
	LoadImage(ctx context.Context) (name string, img domain.Image, err error)
}

// WindSource provides the table for the wind statistics exercise.
type WindSource interface {
	LoadWind(ctx context.Context) (name string, table *domain.WindTable, err error)
}

// ReportLoader delivers a finished report to a destination.
type ReportLoader interface {
	Name() string
	LoadReport(ctx context.Context, report domain.Report) error
}

// ArtifactWriter persists intermediate grids, e.g. as PNG files.
type ArtifactWriter interface {
	WriteGrid(ctx context.Context, name string, g domain.Grid) error
}

// Pipeline runs the exercises and hands the resulting report to its loaders.
type Pipeline struct {
	images    ImageSource
	wind      WindSource
	loaders   []ReportLoader
	filter    *RefilterCache
	artifacts ArtifactWriter
	passes    []int
	logger    *slog.Logger
	metrics   *observability.Metrics

	runMu sync.Mutex
	last  atomic.Pointer[domain.Report]
}

// New creates a Pipeline. Either source may be nil to skip that exercise.
func New(images ImageSource, wind WindSource, loaders []ReportLoader, filter *RefilterCache, passes []int, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		images:  images,
		wind:    wind,
		loaders: loaders,
		filter:  filter,
		passes:  passes,
		logger:  logger,
		metrics: metrics,
	}
}

// SetArtifactWriter enables writing the smoothed and difference grids of
// every pass.
func (p *Pipeline) SetArtifactWriter(w ArtifactWriter) {
	p.artifacts = w
}

// CheckReadiness returns nil once a report has been produced.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if p.last.Load() == nil {
		return errors.New("no report has been produced yet")
	}
	return nil
}

// LastReport returns the most recent successful report.
func (p *Pipeline) LastReport() (domain.Report, bool) {
	r := p.last.Load()
	if r == nil {
		return domain.Report{}, false
	}
	return *r, true
}

// Run executes every configured exercise once. Overlapping calls are serialised.
func (p *Pipeline) Run(ctx context.Context) (domain.Report, error) {
	p.runMu.Lock()
	defer p.runMu.Unlock()

	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)
	start := time.Now()

	report, err := p.run(ctx)
	if err != nil {
		p.metrics.RunErrors.Inc()
		return domain.Report{}, err
	}

	p.last.Store(&report)
	p.metrics.RunsCompleted.Inc()
	p.metrics.RunDuration.Observe(time.Since(start).Seconds())
	p.logger.Info("run complete", "report_id", report.ID, "duration", time.Since(start))
	return report, nil
}

func (p *Pipeline) run(ctx context.Context) (domain.Report, error) {
	report := domain.NewReport()

	if p.images != nil {
		s, err := p.runSmoothing(ctx)
		if err != nil {
			return domain.Report{}, fmt.Errorf("smoothing exercise: %w", err)
		}
		report.Smoothing = s
	}

	if p.wind != nil {
		w, err := p.runWind(ctx)
		if err != nil {
			return domain.Report{}, fmt.Errorf("wind exercise: %w", err)
		}
		report.Wind = w
	}

	for _, l := range p.loaders {
		if err := p.load(ctx, l, report); err != nil {
			return domain.Report{}, err
		}
	}
	return report, nil
}

func (p *Pipeline) runSmoothing(ctx context.Context) (*domain.SmoothingReport, error) {
	name, img, err := p.images.LoadImage(ctx)
	if err != nil {
		return nil, err
	}
	original, err := img.Describe()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	r := &domain.SmoothingReport{
		Source:   name,
		Rows:     img.Rows(),
		Cols:     img.Cols(),
		Channels: len(img.Channels),
		Original: original,
	}
	p.logger.Info("image loaded", "source", name, "rows", r.Rows, "cols", r.Cols, "channels", r.Channels)

	for _, n := range p.passes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		smoothed, ran := p.filter.Refilter(name, img, n)
		p.metrics.SmoothingPasses.Add(float64(ran * len(img.Channels)))

		pass, err := domain.SummarizePass(img, smoothed, n)
		if err != nil {
			return nil, fmt.Errorf("pass %d: %w", n, err)
		}
		if pass.Exhausted {
			p.logger.Warn("image exhausted by smoothing", "iterations", n, "rows", pass.Rows, "cols", pass.Cols)
		} else {
			p.logger.Debug("smoothing pass", "iterations", n, "rows", pass.Rows, "cols", pass.Cols, "computed", ran)
			if err := p.writeArtifacts(ctx, img, smoothed, n); err != nil {
				return nil, err
			}
		}
		r.Passes = append(r.Passes, pass)
	}
	return r, nil
}

// writeArtifacts stores the first channel of the smoothed result and of its
// difference from the original.
func (p *Pipeline) writeArtifacts(ctx context.Context, original, smoothed domain.Image, n int) error {
	if p.artifacts == nil {
		return nil
	}
	diff, err := domain.DifferenceImage(smoothed, original, n)
	if err != nil {
		return err
	}
	if err := p.artifacts.WriteGrid(ctx, fmt.Sprintf("smoothed_%03d", n), smoothed.Channels[0]); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}
	if n > 0 {
		if err := p.artifacts.WriteGrid(ctx, fmt.Sprintf("difference_%03d", n), diff.Channels[0]); err != nil {
			return fmt.Errorf("write artifact: %w", err)
		}
	}
	return nil
}

func (p *Pipeline) runWind(ctx context.Context) (*domain.WindReport, error) {
	name, table, err := p.wind.LoadWind(ctx)
	if err != nil {
		return nil, err
	}
	p.metrics.WindRecordsParsed.Add(float64(table.Len()))
	p.logger.Info("wind data loaded", "source", name, "days", table.Len())

	return domain.BuildWindReport(name, table), nil
}

// load retries a loader with exponential backoff: start at 200ms, double
// each retry, cap at 5s.
func (p *Pipeline) load(ctx context.Context, l ReportLoader, report domain.Report) error {
	backoff := 200 * time.Millisecond
	maxBackoff := 5 * time.Second

	var err error
	for attempt := 1; attempt <= maxLoadAttempts; attempt++ {
		if err = l.LoadReport(ctx, report); err == nil {
			p.metrics.ReportsLoaded.WithLabelValues(l.Name()).Inc()
			return nil
		}
		if ctx.Err() != nil || attempt == maxLoadAttempts {
			break
		}
		p.logger.Warn("load report failed, retrying",
			"loader", l.Name(),
			"attempt", attempt,
			"backoff", backoff,
			"error", err,
		)
		p.metrics.LoadRetries.Inc()
		if !retry.SleepWithContext(ctx, backoff) {
			break
		}
		backoff = retry.NextBackoff(backoff, maxBackoff)
	}
	return fmt.Errorf("load report via %s: %w", l.Name(), err)
}
