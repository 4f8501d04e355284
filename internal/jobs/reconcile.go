// Package jobs schedules periodic background work.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"fitcheck-backend/internal/core"
)

const reconcileTimeout = 30 * time.Minute

// OutfitLister lists every outfit ID.
type OutfitLister interface {
	ListIDs(ctx context.Context) ([]string, error)
}

// ReconcileJob re-publishes rating.written for every outfit so that stats
// drifted by lost events or downtime are recomputed.
type ReconcileJob struct {
	outfits OutfitLister
	events  core.EventPublisher
	logger  *zap.Logger
}

// NewReconcileJob creates a new ReconcileJob.
func NewReconcileJob(outfits OutfitLister, events core.EventPublisher, logger *zap.Logger) *ReconcileJob {
	return &ReconcileJob{outfits: outfits, events: events, logger: logger}
}

// Run implements cron.Job.
func (j *ReconcileJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), reconcileTimeout)
	defer cancel()
	if _, err := j.Sweep(ctx); err != nil {
		j.logger.Error("Reconciliation sweep failed", zap.Error(err))
	}
}

// Sweep publishes one event per outfit and returns how many were published.
// Individual publish failures are logged and skipped.
func (j *ReconcileJob) Sweep(ctx context.Context) (int, error) {
	ids, err := j.outfits.ListIDs(ctx)
	if err != nil {
		return 0, err
	}
	published := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			return published, ctx.Err()
		}
		if err := j.events.PublishRatingWritten(ctx, id, ""); err != nil {
			j.logger.Warn("Failed to publish reconciliation event", zap.String("outfitId", id), zap.Error(err))
			continue
		}
		published++
	}
	j.logger.Info("Reconciliation sweep published", zap.Int("outfits", len(ids)), zap.Int("published", published))
	return published, nil
}

// Manager owns the cron engine.
type Manager struct {
	engine    *cron.Cron
	schedule  string
	reconcile cron.Job
	logger    *zap.Logger
}

// NewManager creates a new Manager. schedule uses the standard five-field
// cron syntax or descriptors such as "@every 6h".
func NewManager(schedule string, reconcile cron.Job, logger *zap.Logger) *Manager {
	return &Manager{
		engine:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		schedule:  schedule,
		reconcile: reconcile,
		logger:    logger,
	}
}

// RegisterJobs adds the reconciliation sweep to the engine.
func (m *Manager) RegisterJobs() error {
	if _, err := m.engine.AddJob(m.schedule, m.reconcile); err != nil {
		return err
	}
	return nil
}

func (m *Manager) Start() {
	m.logger.Info("Cron engine started", zap.String("reconcileSchedule", m.schedule))
	m.engine.Start()
}

// Stop halts the engine and waits for a running job to return.
func (m *Manager) Stop() {
	m.logger.Info("Cron engine stopping")
	<-m.engine.Stop().Done()
}
