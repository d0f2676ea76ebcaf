package workflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/contractsync/backend/models"
	"github.com/contractsync/backend/p21"
	"github.com/contractsync/backend/utils"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}

func line(t *testing.T, item, uom, price string) models.VendorContractLine {
	t.Helper()
	return models.VendorContractLine{
		VendorItemNumber: item,
		VendorUom:        uom,
		ContractPrice:    dec(t, price),
	}
}

func ruleCodes(drafts []exceptionDraft) []models.RuleCode {
	codes := make([]models.RuleCode, 0, len(drafts))
	for _, d := range drafts {
		codes = append(codes, d.RuleCode)
	}
	return codes
}

func TestEvaluateLine_MatchingLineProducesNoExceptions(t *testing.T) {
	tol := dec(t, "0.0001")
	price := &p21.ItemPrice{ItemNumber: "A-100", UnitPrice: dec(t, "12.5000"), UOM: "EA"}

	drafts := evaluateLine(line(t, "A-100", "EA", "12.5000"), price, nil, tol)
	if len(drafts) != 0 {
		t.Fatalf("expected no exceptions, got %v", ruleCodes(drafts))
	}
}

func TestEvaluateLine_PriceMismatchBeyondTolerance(t *testing.T) {
	tol := dec(t, "0.0001")
	price := &p21.ItemPrice{ItemNumber: "A-100", UnitPrice: dec(t, "12.5000"), UOM: "EA"}

	drafts := evaluateLine(line(t, "A-100", "EA", "12.5002"), price, nil, tol)
	if len(drafts) != 1 || drafts[0].RuleCode != models.RuleCodePriceMismatch {
		t.Fatalf("expected PRICE_MISMATCH, got %v", ruleCodes(drafts))
	}
	if drafts[0].Severity != models.ExceptionSeverityHigh {
		t.Fatalf("expected high severity, got %s", drafts[0].Severity)
	}
}

func TestEvaluateLine_DifferenceAtToleranceIsEqual(t *testing.T) {
	tol := dec(t, "0.0001")
	price := &p21.ItemPrice{ItemNumber: "A-100", UnitPrice: dec(t, "12.5000"), UOM: "EA"}

	// |12.5001 - 12.5000| == tolerance: within bounds, no exception.
	drafts := evaluateLine(line(t, "A-100", "EA", "12.5001"), price, nil, tol)
	if len(drafts) != 0 {
		t.Fatalf("difference equal to tolerance should pass, got %v", ruleCodes(drafts))
	}
}

func TestEvaluateLine_UomMismatchStillComparesPrice(t *testing.T) {
	tol := dec(t, "0.0001")
	price := &p21.ItemPrice{ItemNumber: "A-100", UnitPrice: dec(t, "10.0000"), UOM: "CS"}

	drafts := evaluateLine(line(t, "A-100", "EA", "11.0000"), price, nil, tol)
	if len(drafts) != 2 {
		t.Fatalf("expected UOM and price exceptions, got %v", ruleCodes(drafts))
	}
	if drafts[0].RuleCode != models.RuleCodeUomMismatch || drafts[0].Severity != models.ExceptionSeverityMedium {
		t.Fatalf("expected medium UOM_MISMATCH first, got %s/%s", drafts[0].RuleCode, drafts[0].Severity)
	}
	if drafts[1].RuleCode != models.RuleCodePriceMismatch {
		t.Fatalf("expected PRICE_MISMATCH second, got %s", drafts[1].RuleCode)
	}
}

func TestEvaluateLine_UomComparisonIsCaseInsensitive(t *testing.T) {
	tol := dec(t, "0.0001")
	price := &p21.ItemPrice{ItemNumber: "A-100", UnitPrice: dec(t, "10.0000"), UOM: "ea"}

	drafts := evaluateLine(line(t, "A-100", "EA", "10.0000"), price, nil, tol)
	if len(drafts) != 0 {
		t.Fatalf("case-only UOM difference should not raise, got %v", ruleCodes(drafts))
	}
}

func TestEvaluateLine_MissingExternalRecord(t *testing.T) {
	tol := dec(t, "0.0001")

	drafts := evaluateLine(line(t, "GONE-1", "EA", "5.0000"), nil, p21.ErrItemNotFound, tol)
	if len(drafts) != 1 || drafts[0].RuleCode != models.RuleCodeMissingExternalRecord {
		t.Fatalf("expected MISSING_EXTERNAL_RECORD, got %v", ruleCodes(drafts))
	}
	if drafts[0].Severity != models.ExceptionSeverityHigh {
		t.Fatalf("expected high severity, got %s", drafts[0].Severity)
	}
}

func TestEvaluateLine_LookupFailureIsLowSeverity(t *testing.T) {
	tol := dec(t, "0.0001")

	drafts := evaluateLine(line(t, "A-100", "EA", "5.0000"), nil, errors.New("connection refused"), tol)
	if len(drafts) != 1 || drafts[0].RuleCode != models.RuleCodeExternalLookupFailed {
		t.Fatalf("expected EXTERNAL_LOOKUP_FAILED, got %v", ruleCodes(drafts))
	}
	if drafts[0].Severity != models.ExceptionSeverityLow {
		t.Fatalf("expected low severity, got %s", drafts[0].Severity)
	}
}

func TestFinalRunStatus(t *testing.T) {
	if got := finalRunStatus(0, 0); got != models.RunStatusCompleted {
		t.Fatalf("zero lines should complete, got %s", got)
	}
	if got := finalRunStatus(10, 0); got != models.RunStatusCompleted {
		t.Fatalf("clean run should complete, got %s", got)
	}
	if got := finalRunStatus(10, 1); got != models.RunStatusPartiallyCompleted {
		t.Fatalf("lookup failures should partially complete, got %s", got)
	}
}

func TestRunScopedContext_ClearsCrossTenantBypass(t *testing.T) {
	// The dispatcher's claim scan crosses tenants with the guard bypass set;
	// run execution must re-enable the guard for its own tenant.
	ctx := utils.SetSkipTenantScopeInContext(context.Background(), true)

	scoped := runScopedContext(ctx, "tenant-1")

	if skip, ok := utils.GetSkipTenantScopeFromContext(scoped); !ok || skip {
		t.Fatalf("skip flag = (%v, %v), want explicit false", skip, ok)
	}
	if tenant, ok := utils.GetTenantIdFromContext(scoped); !ok || tenant != "tenant-1" {
		t.Fatalf("tenant = (%q, %v), want tenant-1", tenant, ok)
	}
}

func TestFailedRunUpdates_StampsTerminalTimestamp(t *testing.T) {
	now := time.Now().UTC()
	updates := failedRunUpdates("boom", now)

	if updates["status"] != models.RunStatusFailed {
		t.Fatalf("status = %v, want failed", updates["status"])
	}
	completedAt, ok := updates["completed_at"].(*time.Time)
	if !ok || completedAt == nil || !completedAt.Equal(now) {
		t.Fatalf("completed_at = %v, want %v", updates["completed_at"], now)
	}
	lastError, ok := updates["last_error"].(*string)
	if !ok || lastError == nil || *lastError != "boom" {
		t.Fatalf("last_error = %v, want boom", updates["last_error"])
	}
	if updates["locked_at"] != nil || updates["locked_by"] != nil {
		t.Fatal("terminal update must release the dispatcher claim")
	}
}

func TestPriceTolerance_DefaultAndOverride(t *testing.T) {
	t.Setenv("RECON_PRICE_TOLERANCE", "")
	if got := PriceTolerance(); !got.Equal(dec(t, "0.0001")) {
		t.Fatalf("default tolerance = %s, want 0.0001", got)
	}

	t.Setenv("RECON_PRICE_TOLERANCE", "0.05")
	if got := PriceTolerance(); !got.Equal(dec(t, "0.05")) {
		t.Fatalf("override tolerance = %s, want 0.05", got)
	}

	// Garbage and negative values fall back to the default.
	t.Setenv("RECON_PRICE_TOLERANCE", "not-a-number")
	if got := PriceTolerance(); !got.Equal(dec(t, "0.0001")) {
		t.Fatalf("bad tolerance should default, got %s", got)
	}
	t.Setenv("RECON_PRICE_TOLERANCE", "-1")
	if got := PriceTolerance(); !got.Equal(dec(t, "0.0001")) {
		t.Fatalf("negative tolerance should default, got %s", got)
	}
}
