package worker

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/buurtcheck/buurtcheck/internal/risk"
)

// WarmJob samples the risk pipelines at fixed reference points. A pass
// refreshes the layer catalogs (they expire on a daily TTL) and proves the
// WMS/WFS upstreams answer with usable data.
type WarmJob struct {
	config WarmConfig
	logger zerolog.Logger

	risks *risk.Service

	metrics *warmMetrics
}

// WarmMetrics is a snapshot of the warm job counters.
type WarmMetrics struct {
	TotalRuns        int64
	SuccessfulPoints int64
	FailedPoints     int64
	LastRunAt        time.Time
	LastRunDuration  time.Duration
}

type warmMetrics struct {
	totalRuns        atomic.Int64
	successfulPoints atomic.Int64
	failedPoints     atomic.Int64

	mu              sync.RWMutex
	lastRunAt       time.Time
	lastRunDuration time.Duration
}

// WarmJobConfig holds configuration for creating a WarmJob.
type WarmJobConfig struct {
	Config WarmConfig
	Logger zerolog.Logger
	Risks  *risk.Service
}

// NewWarmJob creates a new warm job processor.
func NewWarmJob(cfg WarmJobConfig) *WarmJob {
	config := cfg.Config
	if len(config.Targets) == 0 {
		config = DefaultWarmConfig()
	}
	if config.Concurrency == 0 {
		config.Concurrency = 3
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	return &WarmJob{
		config:  config,
		logger:  cfg.Logger,
		risks:   cfg.Risks,
		metrics: &warmMetrics{},
	}
}

// WarmResult contains the result of one warm run.
type WarmResult struct {
	StartTime   time.Time
	EndTime     time.Time
	Duration    time.Duration
	TotalPoints int
	Successful  int
	Failed      int
	Errors      []WarmError
}

// WarmError represents a degraded sample during a warm run.
type WarmError struct {
	Point   Point
	Message string
}

// Run samples every configured point through the risk pipelines.
func (j *WarmJob) Run(ctx context.Context) *WarmResult {
	startTime := time.Now()
	result := &WarmResult{
		StartTime:   startTime,
		TotalPoints: j.config.TotalPoints(),
	}

	j.logger.Info().
		Int("total_points", result.TotalPoints).
		Int("concurrency", j.config.Concurrency).
		Msg("starting pipeline warm job")

	points := j.config.AllPoints()

	pointsChan := make(chan Point, len(points))
	resultsChan := make(chan pointResult, len(points))

	var wg sync.WaitGroup
	for i := 0; i < j.config.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			j.warmWorker(ctx, pointsChan, resultsChan)
		}()
	}

	for _, p := range points {
		pointsChan <- p
	}
	close(pointsChan)

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	for pr := range resultsChan {
		if pr.success {
			result.Successful++
		} else {
			result.Failed++
		}
		result.Errors = append(result.Errors, pr.errors...)
	}

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(startTime)

	j.updateMetrics(result)

	j.logger.Info().
		Dur("duration", result.Duration).
		Int("successful", result.Successful).
		Int("failed", result.Failed).
		Msg("pipeline warm job completed")

	return result
}

type pointResult struct {
	point   Point
	success bool
	errors  []WarmError
}

func (j *WarmJob) warmWorker(ctx context.Context, points <-chan Point, results chan<- pointResult) {
	for point := range points {
		select {
		case <-ctx.Done():
			return
		default:
			results <- j.warmPoint(ctx, point)
		}
	}
}

// warmPoint samples all three pipelines at one point. The sample counts as
// successful when the response would be cacheable: at least one card carries
// real data and no card reports a transient lookup failure.
func (j *WarmJob) warmPoint(ctx context.Context, point Point) pointResult {
	result := pointResult{point: point, success: true}

	pointCtx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()

	cards := j.risks.GetRiskCards(pointCtx, fmt.Sprintf("warm-%.0f-%.0f", point.RDX, point.RDY), point.RDX, point.RDY, 0, 0)
	if !cards.Cacheable() {
		result.success = false
		for _, msg := range []string{cards.Noise.Message, cards.AirQuality.Message, cards.ClimateStress.Message} {
			if msg == "" {
				continue
			}
			result.errors = append(result.errors, WarmError{Point: point, Message: msg})
		}
	}

	return result
}

func (j *WarmJob) updateMetrics(result *WarmResult) {
	j.metrics.totalRuns.Add(1)
	j.metrics.successfulPoints.Add(int64(result.Successful))
	j.metrics.failedPoints.Add(int64(result.Failed))

	j.metrics.mu.Lock()
	j.metrics.lastRunAt = result.EndTime
	j.metrics.lastRunDuration = result.Duration
	j.metrics.mu.Unlock()
}

// Metrics returns a snapshot of the job counters.
func (j *WarmJob) Metrics() WarmMetrics {
	j.metrics.mu.RLock()
	defer j.metrics.mu.RUnlock()
	return WarmMetrics{
		TotalRuns:        j.metrics.totalRuns.Load(),
		SuccessfulPoints: j.metrics.successfulPoints.Load(),
		FailedPoints:     j.metrics.failedPoints.Load(),
		LastRunAt:        j.metrics.lastRunAt,
		LastRunDuration:  j.metrics.lastRunDuration,
	}
}
