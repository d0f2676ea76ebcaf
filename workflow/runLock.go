package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"gorm.io/gorm"

	"github.com/contractsync/backend/config"
)

// AcquireContractRunLock serializes reconciliation per contract across
// instances. Redis (redislock) is preferred; without Redis it falls back to a
// MySQL advisory lock.
// NOTE: GET_LOCK is connection-scoped, so the fallback must be called on the
// same *gorm.DB that will execute the run transaction.
func AcquireContractRunLock(ctx context.Context, tx *gorm.DB, contractId string) (release func(), err error) {
	if locker := config.GetRedisLock(); locker != nil {
		lock, lerr := locker.Obtain(ctx, "recon:"+contractId, 5*time.Minute, &redislock.Options{
			RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(200*time.Millisecond), 10),
		})
		if lerr != nil {
			return nil, fmt.Errorf("could not acquire run lock for contract %s: %w", contractId, lerr)
		}
		return func() { _ = lock.Release(context.Background()) }, nil
	}

	lockName := fmt.Sprintf("recon:%s", contractId)
	var ok int
	if err := tx.Raw("SELECT GET_LOCK(?, 30)", lockName).Scan(&ok).Error; err != nil {
		return nil, err
	}
	if ok != 1 {
		return nil, fmt.Errorf("could not acquire run lock for contract %s", contractId)
	}
	return func() {
		var released int
		_ = tx.Raw("SELECT RELEASE_LOCK(?)", lockName).Scan(&released).Error
	}, nil
}
