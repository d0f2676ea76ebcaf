package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/contractsync/backend/models"
	"github.com/contractsync/backend/utils"
)

// RunDispatcher polls for queued reconciliation runs and executes them. Runs
// are claimed with FOR UPDATE SKIP LOCKED so multiple instances can poll the
// same table; a claim marks the run running with a lock timestamp, and stale
// running claims (dispatcher crashed mid-run) are reclaimed after LockTimeout.
type RunDispatcher struct {
	DB           *gorm.DB
	Logger       *logrus.Logger
	Prices       PriceSource
	DispatcherID string

	BatchSize    int
	PollInterval time.Duration
	LockTimeout  time.Duration
	MaxAttempts  int
}

func NewRunDispatcher(db *gorm.DB, logger *logrus.Logger, prices PriceSource) *RunDispatcher {
	return &RunDispatcher{
		DB:           db,
		Logger:       logger,
		Prices:       prices,
		DispatcherID: uuid.NewString(),
		BatchSize:    10,
		PollInterval: 2 * time.Second,
		LockTimeout:  10 * time.Minute,
		MaxAttempts:  5,
	}
}

func (d *RunDispatcher) Run(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		d.dispatchOnce(ctx)
		select {
		case <-ctx.Done():
			return
		case <-time.After(d.PollInterval):
		}
	}
}

func (d *RunDispatcher) dispatchOnce(ctx context.Context) {
	now := time.Now().UTC()
	staleBefore := now.Add(-d.LockTimeout)
	db := d.DB
	if db == nil {
		return
	}
	// The claim scan crosses tenants on purpose.
	ctx = utils.SetSkipTenantScopeInContext(ctx, true)

	var claimed []models.ReconciliationRun
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Eligible:
		// - queued runs, in creation order
		// - running runs whose claim is stale (crashed dispatcher), reclaim after LockTimeout
		q := tx.
			Where(`
				status = ?
				OR
				(status = ? AND locked_at IS NOT NULL AND locked_at <= ?)
			`, models.RunStatusQueued, models.RunStatusRunning, staleBefore).
			Order("created_at ASC, id ASC").
			Limit(d.BatchSize).
			Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"})
		if err := q.Find(&claimed).Error; err != nil {
			return err
		}
		if len(claimed) == 0 {
			return nil
		}
		for i := range claimed {
			// Enforce max attempts: poison runs go terminal.
			if d.MaxAttempts > 0 && claimed[i].Attempts >= d.MaxAttempts {
				msg := fmt.Sprintf("max run attempts exceeded (%d)", d.MaxAttempts)
				claimed[i].Status = models.RunStatusFailed
				if err := tx.Model(&models.ReconciliationRun{}).Where("id = ?", claimed[i].ID).
					Updates(failedRunUpdates(msg, now)).Error; err != nil {
					return err
				}
				continue
			}

			// Claim for execution.
			claimed[i].Status = models.RunStatusRunning
			claimed[i].LockedAt = &now
			claimed[i].LockedBy = &d.DispatcherID
			claimed[i].Attempts = claimed[i].Attempts + 1
			if claimed[i].StartedAt == nil {
				claimed[i].StartedAt = &now
			}
			if err := tx.Model(&models.ReconciliationRun{}).Where("id = ?", claimed[i].ID).Updates(map[string]interface{}{
				"status":     models.RunStatusRunning,
				"locked_at":  claimed[i].LockedAt,
				"locked_by":  claimed[i].LockedBy,
				"attempts":   gorm.Expr("attempts + 1"),
				"started_at": claimed[i].StartedAt,
				"last_error": nil,
			}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil || len(claimed) == 0 {
		return
	}

	for _, run := range claimed {
		// Skip terminal rows that were marked failed in the claim transaction.
		if run.Status == models.RunStatusFailed {
			continue
		}
		if err := ExecuteReconciliationRun(ctx, db, d.Logger, d.Prices, run); err != nil && d.Logger != nil {
			d.Logger.WithFields(logrus.Fields{
				"field":     "RunDispatcher",
				"tenant_id": run.TenantId.String(),
				"run_id":    run.ID.String(),
				"attempt":   run.Attempts,
			}).Error("reconciliation run execution failed: " + fmt.Sprintf("%v", err))
		}
	}
}
