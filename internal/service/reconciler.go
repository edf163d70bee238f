package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/noah-isme/internship-portal-api/internal/dto"
)

type completionReconciler interface {
	ReconcileCompletions(ctx context.Context) (*dto.ReconcileResult, error)
}

// Reconciler periodically re-applies didInternship for completed internships,
// repairing completions whose student propagation failed.
type Reconciler struct {
	cron     *cron.Cron
	target   completionReconciler
	schedule string
	timeout  time.Duration
	logger   *zap.Logger
}

// NewReconciler builds a reconciler for a six-field cron schedule
// (seconds first), e.g. "0 */30 * * * *".
func NewReconciler(target completionReconciler, schedule string, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{
		cron:     cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		target:   target,
		schedule: schedule,
		timeout:  2 * time.Minute,
		logger:   logger,
	}
}

// Start registers the job and starts the scheduler.
func (r *Reconciler) Start() error {
	if _, err := r.cron.AddFunc(r.schedule, r.RunOnce); err != nil {
		return fmt.Errorf("schedule reconciliation %q: %w", r.schedule, err)
	}
	r.cron.Start()
	r.logger.Info("reconciler started", zap.String("schedule", r.schedule))
	return nil
}

// Stop halts the scheduler and waits for a running job to finish.
func (r *Reconciler) Stop() {
	<-r.cron.Stop().Done()
	r.logger.Info("reconciler stopped")
}

// RunOnce performs one reconciliation pass.
func (r *Reconciler) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	result, err := r.target.ReconcileCompletions(ctx)
	if err != nil {
		r.logger.Error("reconciliation failed", zap.Error(err))
		return
	}
	r.logger.Debug("reconciliation finished", zap.Int64("repaired", result.StudentsRepaired))
}
