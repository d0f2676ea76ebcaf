package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tenant is the root of all partitioning. Every other row carries a tenant_id
// pointing here; tenants themselves are never scoped by the guard plugin.
type Tenant struct {
	ID        uuid.UUID    `gorm:"primary_key;type:char(36)" json:"id"`
	Name      string       `gorm:"size:255;not null" json:"name" binding:"required"`
	Status    TenantStatus `gorm:"type:enum('active','suspended');default:'active';not null" json:"status"`
	CreatedAt time.Time    `gorm:"autoCreateTime" json:"created_at"`
}

func (t *Tenant) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Status == "" {
		t.Status = TenantStatusActive
	}
	return nil
}

type NewTenant struct {
	Name string `json:"name" binding:"required"`
}
