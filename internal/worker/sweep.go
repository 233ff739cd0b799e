package worker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/roadmate/roadmate/internal/alert"
)

// SweepJob reconciles the alert table: expires stale alerts, resolves alerts
// whose invalidation votes dominate, and prunes old resolved rows.
type SweepJob struct {
	config SweepConfig
	logger zerolog.Logger
	repo   alert.Repository

	mu      sync.RWMutex
	metrics SweepMetrics
}

// SweepMetrics tracks sweep job statistics.
type SweepMetrics struct {
	// Counters
	TotalSweeps   int64
	ExpiredAlerts int64
	VoteResolved  int64
	PrunedAlerts  int64
	FailedSweeps  int64

	// Timings
	LastSweepAt       time.Time
	LastSweepDuration time.Duration
}

// SweepJobConfig holds configuration for creating a SweepJob.
type SweepJobConfig struct {
	Config     SweepConfig
	Logger     zerolog.Logger
	Repository alert.Repository
}

// NewSweepJob creates a new sweep job processor.
func NewSweepJob(cfg SweepJobConfig) *SweepJob {
	config := cfg.Config
	if config.DefaultTTL == 0 {
		config = DefaultSweepConfig()
	}

	return &SweepJob{
		config: config,
		logger: cfg.Logger,
		repo:   cfg.Repository,
	}
}

// SweepResult contains the result of one sweep.
type SweepResult struct {
	StartTime    time.Time
	EndTime      time.Time
	Duration     time.Duration
	ActiveAlerts int
	Expired      int
	VoteResolved int
	Pruned       int
	Errors       []SweepError
}

// SweepError records one per-alert failure during a sweep. Failures do not
// abort the sweep; the remaining alerts are still processed.
type SweepError struct {
	AlertID string
	Stage   string
	Error   string
}

// Run executes one full sweep.
func (j *SweepJob) Run(ctx context.Context) *SweepResult {
	startTime := time.Now()
	result := &SweepResult{StartTime: startTime}

	sweepCtx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()

	j.logger.Info().Msg("starting alert sweep")

	active, err := j.repo.ListActive(sweepCtx)
	if err != nil {
		j.logger.Error().Err(err).Msg("failed to list active alerts")
		result.Errors = append(result.Errors, SweepError{Stage: "list", Error: err.Error()})
		j.updateMetrics(result, false)
		return result
	}
	result.ActiveAlerts = len(active)

	now := time.Now()
	for i := range active {
		a := &active[i]

		switch {
		case now.Sub(a.CreatedAt) > j.config.TTLFor(a.Type):
			if err := j.repo.UpdateStatus(sweepCtx, a.ID, alert.StatusResolved); err != nil {
				result.Errors = append(result.Errors, SweepError{AlertID: a.ID, Stage: "expire", Error: err.Error()})
				continue
			}
			result.Expired++
			j.logger.Debug().
				Str("alert_id", a.ID).
				Str("type", string(a.Type)).
				Time("created_at", a.CreatedAt).
				Msg("alert expired by TTL")

		case a.Invalidations >= a.Validations+j.config.DismissMargin:
			// Normally applied at vote time; the sweep catches alerts the
			// vote path missed, e.g. after a margin change.
			if err := j.repo.UpdateStatus(sweepCtx, a.ID, alert.StatusResolved); err != nil {
				result.Errors = append(result.Errors, SweepError{AlertID: a.ID, Stage: "resolve", Error: err.Error()})
				continue
			}
			result.VoteResolved++
			j.logger.Debug().
				Str("alert_id", a.ID).
				Int("validations", a.Validations).
				Int("invalidations", a.Invalidations).
				Msg("alert resolved by vote dominance")
		}
	}

	pruned, err := j.repo.DeleteResolvedBefore(sweepCtx, now.Add(-j.config.PruneAfter))
	if err != nil {
		result.Errors = append(result.Errors, SweepError{Stage: "prune", Error: err.Error()})
	} else {
		result.Pruned = pruned
	}

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(startTime)
	j.updateMetrics(result, len(result.Errors) == 0)

	j.logger.Info().
		Dur("duration", result.Duration).
		Int("active", result.ActiveAlerts).
		Int("expired", result.Expired).
		Int("vote_resolved", result.VoteResolved).
		Int("pruned", result.Pruned).
		Int("errors", len(result.Errors)).
		Msg("alert sweep completed")

	return result
}

// Metrics returns a snapshot of the job metrics.
func (j *SweepJob) Metrics() SweepMetrics {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.metrics
}

func (j *SweepJob) updateMetrics(result *SweepResult, success bool) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.metrics.TotalSweeps++
	j.metrics.ExpiredAlerts += int64(result.Expired)
	j.metrics.VoteResolved += int64(result.VoteResolved)
	j.metrics.PrunedAlerts += int64(result.Pruned)
	if !success {
		j.metrics.FailedSweeps++
	}
	j.metrics.LastSweepAt = time.Now()
	j.metrics.LastSweepDuration = result.Duration
}
