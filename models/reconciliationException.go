package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReconciliationException is one discrepancy produced by a run. The referenced
// line always belongs to the run's contract: exceptions are only created from
// lines enumerated under that contract.
type ReconciliationException struct {
	ID                   uuid.UUID         `gorm:"primary_key;type:char(36)" json:"id"`
	TenantId             uuid.UUID         `gorm:"type:char(36);index;not null" json:"tenant_id"`
	ReconciliationRunId  uuid.UUID         `gorm:"type:char(36);index;not null" json:"reconciliation_run_id"`
	VendorContractLineId uuid.UUID         `gorm:"type:char(36);index;not null" json:"vendor_contract_line_id"`
	RuleCode             RuleCode          `gorm:"size:50;index;not null" json:"rule_code"`
	Severity             ExceptionSeverity `gorm:"type:enum('high','medium','low');not null" json:"severity"`
	Status               ExceptionStatus   `gorm:"type:enum('open','acknowledged','resolved','dismissed');default:'open';not null;index" json:"status"`
	Message              string            `gorm:"type:text;not null" json:"message"`
	Context              json.RawMessage   `gorm:"type:json" json:"context,omitempty"`
	CreatedAt            time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

func (e *ReconciliationException) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.Status == "" {
		e.Status = ExceptionStatusOpen
	}
	return nil
}

type ExceptionStatusUpdate struct {
	Status  ExceptionStatus `json:"status" binding:"required"`
	Message string          `json:"message"`
}
