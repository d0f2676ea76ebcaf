package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VendorContract struct {
	ID             uuid.UUID      `gorm:"primary_key;type:char(36)" json:"id"`
	TenantId       uuid.UUID      `gorm:"type:char(36);index;not null" json:"tenant_id"`
	VendorFileId   uuid.UUID      `gorm:"type:char(36);index;not null" json:"vendor_file_id"`
	ContractNumber string         `gorm:"size:100;index;not null" json:"contract_number"`
	VendorName     string         `gorm:"size:255;not null" json:"vendor_name"`
	EffectiveStart *time.Time     `json:"effective_start"`
	EffectiveEnd   *time.Time     `json:"effective_end"`
	Status         ContractStatus `gorm:"type:enum('active','expired','terminated');default:'active';not null" json:"status"`
	CreatedAt      time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

func (c *VendorContract) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Status == "" {
		c.Status = ContractStatusActive
	}
	return nil
}

type NewVendorContract struct {
	VendorFileId   uuid.UUID  `json:"vendor_file_id" binding:"required"`
	ContractNumber string     `json:"contract_number" binding:"required"`
	VendorName     string     `json:"vendor_name" binding:"required"`
	EffectiveStart *time.Time `json:"effective_start"`
	EffectiveEnd   *time.Time `json:"effective_end"`
}
