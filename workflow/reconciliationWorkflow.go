package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/contractsync/backend/config"
	"github.com/contractsync/backend/models"
	"github.com/contractsync/backend/p21"
	"github.com/contractsync/backend/utils"
)

const runHandlerName = "reconciliation_run"

// PriceSource resolves the ERP-side price for one vendor item number.
type PriceSource interface {
	ItemPrice(ctx context.Context, itemNumber string) (*p21.ItemPrice, error)
}

// PriceTolerance reads RECON_PRICE_TOLERANCE, the absolute price difference
// below which contract and ERP price are considered equal. Default 0.0001,
// matching the decimal(18,4) storage scale.
func PriceTolerance() decimal.Decimal {
	raw := strings.TrimSpace(os.Getenv("RECON_PRICE_TOLERANCE"))
	if raw != "" {
		if tol, err := decimal.NewFromString(raw); err == nil && !tol.IsNegative() {
			return tol
		}
	}
	return decimal.RequireFromString("0.0001")
}

// exceptionDraft is a not-yet-persisted exception produced by line evaluation.
type exceptionDraft struct {
	RuleCode models.RuleCode
	Severity models.ExceptionSeverity
	Message  string
	Context  map[string]interface{}
}

// evaluateLine classifies one contract line against the ERP price record.
// lookupErr is the error from the price source, if any; price is non-nil only
// when lookupErr is nil. A line can produce both a UOM and a price mismatch.
func evaluateLine(line models.VendorContractLine, price *p21.ItemPrice, lookupErr error, tolerance decimal.Decimal) []exceptionDraft {
	if lookupErr != nil {
		if errors.Is(lookupErr, p21.ErrItemNotFound) {
			return []exceptionDraft{{
				RuleCode: models.RuleCodeMissingExternalRecord,
				Severity: models.ExceptionSeverityHigh,
				Message:  fmt.Sprintf("item %s has no matching record in the ERP item feed", line.VendorItemNumber),
				Context: map[string]interface{}{
					"vendor_item_number": line.VendorItemNumber,
				},
			}}
		}
		return []exceptionDraft{{
			RuleCode: models.RuleCodeExternalLookupFailed,
			Severity: models.ExceptionSeverityLow,
			Message:  fmt.Sprintf("ERP lookup for item %s failed: %v", line.VendorItemNumber, lookupErr),
			Context: map[string]interface{}{
				"vendor_item_number": line.VendorItemNumber,
				"error":              lookupErr.Error(),
			},
		}}
	}

	var drafts []exceptionDraft

	if !strings.EqualFold(strings.TrimSpace(line.VendorUom), strings.TrimSpace(price.UOM)) {
		drafts = append(drafts, exceptionDraft{
			RuleCode: models.RuleCodeUomMismatch,
			Severity: models.ExceptionSeverityMedium,
			Message:  fmt.Sprintf("item %s unit of measure %q does not match ERP %q", line.VendorItemNumber, line.VendorUom, price.UOM),
			Context: map[string]interface{}{
				"vendor_item_number": line.VendorItemNumber,
				"vendor_uom":         line.VendorUom,
				"erp_uom":            price.UOM,
			},
		})
	}

	diff := line.ContractPrice.Sub(price.UnitPrice).Abs()
	if diff.GreaterThan(tolerance) {
		drafts = append(drafts, exceptionDraft{
			RuleCode: models.RuleCodePriceMismatch,
			Severity: models.ExceptionSeverityHigh,
			Message: fmt.Sprintf("item %s contract price %s differs from ERP price %s by %s",
				line.VendorItemNumber, line.ContractPrice.String(), price.UnitPrice.String(), diff.String()),
			Context: map[string]interface{}{
				"vendor_item_number": line.VendorItemNumber,
				"contract_price":     line.ContractPrice.String(),
				"erp_price":          price.UnitPrice.String(),
				"difference":         diff.String(),
				"tolerance":          tolerance.String(),
			},
		})
	}

	return drafts
}

// finalRunStatus decides the terminal status for a run that reached the end of
// its line set. Zero lines is a successful no-op run.
func finalRunStatus(totalLines int, lookupFailures int) models.RunStatus {
	if lookupFailures > 0 {
		return models.RunStatusPartiallyCompleted
	}
	return models.RunStatusCompleted
}

// ExecuteReconciliationRun compares every line of the run's contract against
// the ERP price feed and persists the resulting exceptions together with the
// run's terminal status in one transaction. Re-execution of an already
// succeeded run (stale-lock reclaim) is a no-op via the idempotency table.
func ExecuteReconciliationRun(ctx context.Context, db *gorm.DB, logger *logrus.Logger, prices PriceSource, run models.ReconciliationRun) error {
	tenantId := run.TenantId.String()
	ctx = runScopedContext(ctx, tenantId)

	release, err := AcquireContractRunLock(ctx, db, run.VendorContractId.String())
	if err != nil {
		return markRunFailed(ctx, db, logger, run, err)
	}
	defer release()

	var lines []models.VendorContractLine
	if err := db.WithContext(ctx).
		Where("tenant_id = ?", run.TenantId).
		Where("vendor_contract_id = ?", run.VendorContractId).
		Order("vendor_item_number ASC, id ASC").
		Find(&lines).Error; err != nil {
		return markRunFailed(ctx, db, logger, run, err)
	}

	tolerance := PriceTolerance()
	lookupFailures := 0
	exceptions := make([]models.ReconciliationException, 0, len(lines))
	for _, line := range lines {
		price, lookupErr := prices.ItemPrice(ctx, line.VendorItemNumber)
		if lookupErr != nil && !errors.Is(lookupErr, p21.ErrItemNotFound) {
			lookupFailures++
		}
		for _, draft := range evaluateLine(line, price, lookupErr, tolerance) {
			contextJSON, _ := json.Marshal(draft.Context)
			exceptions = append(exceptions, models.ReconciliationException{
				TenantId:             run.TenantId,
				ReconciliationRunId:  run.ID,
				VendorContractLineId: line.ID,
				RuleCode:             draft.RuleCode,
				Severity:             draft.Severity,
				Status:               models.ExceptionStatusOpen,
				Message:              draft.Message,
				Context:              contextJSON,
			})
		}
	}

	status := finalRunStatus(len(lines), lookupFailures)
	now := time.Now().UTC()

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		skip, err := BeginIdempotency(tx, tenantId, runHandlerName, run.ID.String())
		if err != nil {
			return err
		}
		if skip {
			return nil
		}

		if len(exceptions) > 0 {
			if err := tx.CreateInBatches(exceptions, 100).Error; err != nil {
				return err
			}
		}

		if err := tx.Model(&models.ReconciliationRun{}).
			Where("id = ? AND tenant_id = ?", run.ID, run.TenantId).
			Updates(map[string]interface{}{
				"status":       status,
				"completed_at": &now,
				"locked_at":    nil,
				"locked_by":    nil,
				"last_error":   nil,
			}).Error; err != nil {
			return err
		}

		return MarkIdempotencySucceeded(tx, tenantId, runHandlerName, run.ID.String())
	})
	if err != nil {
		return markRunFailed(ctx, db, logger, run, err)
	}

	if logger != nil {
		logger.WithFields(logrus.Fields{
			"tenant_id":   tenantId,
			"run_id":      run.ID.String(),
			"contract_id": run.VendorContractId.String(),
			"status":      status,
			"lines":       len(lines),
			"exceptions":  len(exceptions),
		}).Info("reconciliation run finished")
	}
	return nil
}

// runScopedContext rebinds a dispatcher context to one tenant. The claim
// scan's cross-tenant bypass must not leak into run execution, so the skip
// flag is cleared here.
func runScopedContext(ctx context.Context, tenantId string) context.Context {
	ctx = utils.SetSkipTenantScopeInContext(ctx, false)
	return utils.SetTenantIdInContext(ctx, tenantId)
}

// failedRunUpdates builds the terminal update for a failed run. Failed is
// terminal like completed, so completed_at is stamped here too.
func failedRunUpdates(cause string, now time.Time) map[string]interface{} {
	return map[string]interface{}{
		"status":       models.RunStatusFailed,
		"last_error":   &cause,
		"completed_at": &now,
		"locked_at":    nil,
		"locked_by":    nil,
	}
}

// markRunFailed records a run-level failure. Failed is terminal; recovery is
// a new run with run_type=retry.
func markRunFailed(ctx context.Context, db *gorm.DB, logger *logrus.Logger, run models.ReconciliationRun, cause error) error {
	uerr := db.WithContext(ctx).Model(&models.ReconciliationRun{}).
		Where("id = ? AND tenant_id = ?", run.ID, run.TenantId).
		Updates(failedRunUpdates(cause.Error(), time.Now().UTC())).Error
	if uerr != nil && logger != nil {
		config.LogError(logger, "workflow", "markRunFailed", "update run status", run.ID.String(), uerr)
	}
	if logger != nil {
		config.LogError(logger, "workflow", "ExecuteReconciliationRun", "run failed", run.ID.String(), cause)
	}
	return cause
}
