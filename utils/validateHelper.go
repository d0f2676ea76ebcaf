package utils

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ValidateResourceId checks that id exists under the tenant, returning
// ErrorRecordNotFound otherwise. Used for foreign-key validation before
// writes: a parent belonging to another tenant must look absent, not
// forbidden.
func ValidateResourceId[T any](ctx context.Context, db *gorm.DB, tenantId uuid.UUID, id uuid.UUID) error {
	count, err := ResourceCountWhere[T](ctx, db, tenantId, "id = ?", id)
	if err != nil {
		return err
	}
	if count <= 0 {
		return ErrorRecordNotFound
	}
	return nil
}

// count records, using WHERE tenant_id = ? AND $condition
func ResourceCountWhere[T any](ctx context.Context, db *gorm.DB, tenantId uuid.UUID, condition string, value ...interface{}) (int64, error) {
	var model T

	dbCtx := db.WithContext(ctx).Model(&model).
		Where("tenant_id = ?", tenantId).
		Where(condition, value...)
	var count int64
	if err := dbCtx.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
