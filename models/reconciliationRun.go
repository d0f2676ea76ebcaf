package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReconciliationRun is one execution of the comparison workflow against P21.
// Runs are created queued and executed out of band by the run dispatcher; the
// lock/attempt columns belong to the dispatcher's claim protocol (stale
// running claims are reclaimed after the lock timeout, poison runs go failed).
type ReconciliationRun struct {
	ID               uuid.UUID  `gorm:"primary_key;type:char(36)" json:"id"`
	TenantId         uuid.UUID  `gorm:"type:char(36);index;not null" json:"tenant_id"`
	VendorContractId uuid.UUID  `gorm:"type:char(36);index;not null" json:"vendor_contract_id"`
	RunType          RunType    `gorm:"type:enum('manual','scheduled','retry');default:'manual';not null" json:"run_type"`
	Status           RunStatus  `gorm:"type:enum('queued','running','completed','partially_completed','failed');default:'queued';not null;index" json:"status"`
	StartedAt        *time.Time `json:"started_at"`
	CompletedAt      *time.Time `json:"completed_at"`
	Attempts         int        `gorm:"not null;default:0" json:"attempts"`
	LockedAt         *time.Time `json:"-"`
	LockedBy         *string    `gorm:"size:64" json:"-"`
	LastError        *string    `gorm:"type:text" json:"last_error,omitempty"`
	CreatedAt        time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (r *ReconciliationRun) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.RunType == "" {
		r.RunType = RunTypeManual
	}
	if r.Status == "" {
		r.Status = RunStatusQueued
	}
	return nil
}

type NewReconciliationRun struct {
	VendorContractId uuid.UUID `json:"vendor_contract_id" binding:"required"`
	RunType          RunType   `json:"run_type"`
}
