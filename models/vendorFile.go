package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VendorFile is one uploaded source document (price list, contract scan).
// object_key is `{uuid}-{original filename}` under the configured storage
// provider; two uploads of identical bytes get two keys and two rows.
type VendorFile struct {
	ID         uuid.UUID        `gorm:"primary_key;type:char(36)" json:"id"`
	TenantId   uuid.UUID        `gorm:"type:char(36);index;not null" json:"tenant_id"`
	VendorName string           `gorm:"size:255;not null" json:"vendor_name"`
	Filename   string           `gorm:"size:255;not null" json:"filename"`
	ObjectKey  string           `gorm:"size:512;not null" json:"object_key"`
	FileType   string           `gorm:"size:50;not null" json:"file_type"`
	Status     VendorFileStatus `gorm:"type:enum('uploaded','imported','failed');default:'uploaded';not null" json:"status"`
	UploadedAt time.Time        `gorm:"column:uploaded_at;autoCreateTime" json:"uploaded_at"`
}

func (f *VendorFile) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	if f.Status == "" {
		f.Status = VendorFileStatusUploaded
	}
	return nil
}
