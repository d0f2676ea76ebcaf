package models

type TenantStatus string

const (
	TenantStatusActive    TenantStatus = "active"
	TenantStatusSuspended TenantStatus = "suspended"
)

type VendorFileStatus string

const (
	VendorFileStatusUploaded VendorFileStatus = "uploaded"
	VendorFileStatusImported VendorFileStatus = "imported"
	VendorFileStatusFailed   VendorFileStatus = "failed"
)

type ContractStatus string

const (
	ContractStatusActive     ContractStatus = "active"
	ContractStatusExpired    ContractStatus = "expired"
	ContractStatusTerminated ContractStatus = "terminated"
)

type RunType string

const (
	RunTypeManual    RunType = "manual"
	RunTypeScheduled RunType = "scheduled"
	RunTypeRetry     RunType = "retry"
)

// Run lifecycle: queued -> running -> completed | partially_completed | failed.
// A run is queued at creation; the dispatcher owns every later transition.
type RunStatus string

const (
	RunStatusQueued             RunStatus = "queued"
	RunStatusRunning            RunStatus = "running"
	RunStatusCompleted          RunStatus = "completed"
	RunStatusPartiallyCompleted RunStatus = "partially_completed"
	RunStatusFailed             RunStatus = "failed"
)

type RuleCode string

const (
	RuleCodePriceMismatch         RuleCode = "PRICE_MISMATCH"
	RuleCodeMissingExternalRecord RuleCode = "MISSING_EXTERNAL_RECORD"
	RuleCodeUomMismatch           RuleCode = "UOM_MISMATCH"
	RuleCodeExternalLookupFailed  RuleCode = "EXTERNAL_LOOKUP_FAILED"
)

type ExceptionSeverity string

const (
	ExceptionSeverityHigh   ExceptionSeverity = "high"
	ExceptionSeverityMedium ExceptionSeverity = "medium"
	ExceptionSeverityLow    ExceptionSeverity = "low"
)

type ExceptionStatus string

const (
	ExceptionStatusOpen         ExceptionStatus = "open"
	ExceptionStatusAcknowledged ExceptionStatus = "acknowledged"
	ExceptionStatusResolved     ExceptionStatus = "resolved"
	ExceptionStatusDismissed    ExceptionStatus = "dismissed"
)

func ValidExceptionStatus(s ExceptionStatus) bool {
	switch s {
	case ExceptionStatusOpen, ExceptionStatusAcknowledged, ExceptionStatusResolved, ExceptionStatusDismissed:
		return true
	}
	return false
}

func ValidRunType(t RunType) bool {
	switch t {
	case RunTypeManual, RunTypeScheduled, RunTypeRetry:
		return true
	}
	return false
}
