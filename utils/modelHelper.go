package utils

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// List pagination defaults; every list endpoint orders by creation time so
// results are stable across calls.
const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

type ListOptions struct {
	Limit  int
	Offset int
}

func (o ListOptions) normalized() ListOptions {
	if o.Limit <= 0 {
		o.Limit = DefaultListLimit
	}
	if o.Limit > MaxListLimit {
		o.Limit = MaxListLimit
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
	return o
}

// FetchModel fetches one record by id, scoped to the tenant.
// (may return ErrorRecordNotFound; a foreign-tenant row looks identical to a
// missing one)
func FetchModel[T any](ctx context.Context, db *gorm.DB, tenantId uuid.UUID, id uuid.UUID) (*T, error) {
	var result T
	err := db.WithContext(ctx).
		Where("tenant_id = ?", tenantId).
		Where("id = ?", id).
		First(&result).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrorRecordNotFound
		}
		return nil, err
	}
	return &result, nil
}

// FetchAllModels fetches all tenant records of a type with stable ordering
// and pagination. orderColumn is the creation timestamp column of the model
// (created_at for most, uploaded_at for vendor files).
func FetchAllModels[T any](ctx context.Context, db *gorm.DB, tenantId uuid.UUID, orderColumn string, opts ListOptions) ([]*T, error) {
	opts = opts.normalized()
	// Non-nil so an empty result renders as a JSON array, not null.
	results := make([]*T, 0)
	err := db.WithContext(ctx).
		Where("tenant_id = ?", tenantId).
		Order(orderColumn + " ASC, id ASC").
		Limit(opts.Limit).
		Offset(opts.Offset).
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
