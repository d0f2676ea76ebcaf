package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// VendorContractLine is one priced item within a contract. contract_price is
// stored as decimal(18,4) and carried as decimal.Decimal end to end; it must
// never pass through a binary float.
type VendorContractLine struct {
	ID                uuid.UUID       `gorm:"primary_key;type:char(36)" json:"id"`
	TenantId          uuid.UUID       `gorm:"type:char(36);index;not null" json:"tenant_id"`
	VendorContractId  uuid.UUID       `gorm:"type:char(36);index;not null" json:"vendor_contract_id"`
	VendorItemNumber  string          `gorm:"size:100;index;not null" json:"vendor_item_number"`
	VendorUom         string          `gorm:"size:50;not null" json:"vendor_uom"`
	VendorDescription string          `gorm:"type:text" json:"vendor_description"`
	ContractPrice     decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"contract_price"`
	Currency          string          `gorm:"size:3;default:'USD';not null" json:"currency"`
	EffectiveStart    *time.Time      `json:"effective_start"`
	EffectiveEnd      *time.Time      `json:"effective_end"`
	RawPayload        json.RawMessage `gorm:"type:json" json:"raw_payload,omitempty"`
	CreatedAt         time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (l *VendorContractLine) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if l.Currency == "" {
		l.Currency = "USD"
	}
	return nil
}

type NewVendorContractLine struct {
	VendorContractId  uuid.UUID  `json:"vendor_contract_id" binding:"required"`
	VendorItemNumber  string     `json:"vendor_item_number" binding:"required"`
	VendorUom         string     `json:"vendor_uom" binding:"required"`
	VendorDescription string     `json:"vendor_description"`
	ContractPrice     string     `json:"contract_price" binding:"required,decimalamount"`
	Currency          string     `json:"currency"`
	EffectiveStart    *time.Time `json:"effective_start"`
	EffectiveEnd      *time.Time `json:"effective_end"`
}
