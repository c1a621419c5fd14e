package service

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/askhat-dev/travel-marketplace/internal/app/config"
	"github.com/askhat-dev/travel-marketplace/internal/domain"
	"github.com/askhat-dev/travel-marketplace/internal/domain/entity"
	"github.com/askhat-dev/travel-marketplace/internal/platform/logger"
)

// Actor is the authenticated caller of a service operation, extracted from the
// JWT by the HTTP layer.
type Actor struct {
	ID   primitive.ObjectID
	Role entity.Role
}

func (a Actor) IsAdmin() bool { return a.Role == entity.RoleAdmin }

// storeRetrier re-runs read operations that failed because the backing store
// was unreachable. Writes are never retried here; the caller decides.
type storeRetrier struct {
	cfg config.StoreConfig
	log logger.Logger
}

func newStoreRetrier(cfg config.StoreConfig, log logger.Logger) storeRetrier {
	return storeRetrier{cfg: cfg, log: log}
}

func (r storeRetrier) read(ctx context.Context, op string, fn func(context.Context) error) error {
	var err error
	for attempt := 0; ; attempt++ {
		opCtx, cancel := context.WithTimeout(ctx, r.cfg.OperationTimeout)
		err = fn(opCtx)
		cancel()

		if err == nil || !errors.Is(err, domain.ErrStoreUnavailable) {
			return err
		}
		if attempt >= r.cfg.ReadRetries {
			return err
		}

		r.log.Warnf("store read %s failed (attempt %d/%d), retrying: %v", op, attempt+1, r.cfg.ReadRetries+1, err)
		select {
		case <-ctx.Done():
			return err
		case <-time.After(r.cfg.RetryBackoff):
		}
	}
}

// write bounds a single write attempt with the store operation timeout.
func (r storeRetrier) write(ctx context.Context, fn func(context.Context) error) error {
	opCtx, cancel := context.WithTimeout(ctx, r.cfg.OperationTimeout)
	defer cancel()
	return fn(opCtx)
}
