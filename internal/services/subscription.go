package services

import (
	"context"
	"time"

	"canedu/internal/datastore"
	"canedu/internal/models"
	"canedu/internal/pkg/caching"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/samber/do"
	"github.com/uptrace/bun"
)

type ServiceSubscription struct {
	container          *do.Injector
	readonlyPostgresDB *bun.DB
	cache              caching.Cache
	readonlyCache      caching.ReadOnlyCache
}

func NewServiceSubscription(container *do.Injector) (*ServiceSubscription, error) {
	readonlyPostgresDB, err := do.InvokeNamed[*bun.DB](container, "db-readonly")
	if err != nil {
		return nil, err
	}

	cache, err := do.Invoke[caching.Cache](container)
	if err != nil {
		return nil, err
	}

	readonlyCache, err := do.Invoke[caching.ReadOnlyCache](container)
	if err != nil {
		return nil, err
	}

	return &ServiceSubscription{container, readonlyPostgresDB, cache, readonlyCache}, nil
}

// GetStatus reports users without a subscription row as free.
func (service *ServiceSubscription) GetStatus(ctx context.Context, userID string) (*models.Subscription, error) {
	callback := func() (*models.Subscription, error) {
		sub, err := datastore.GetSubscription(ctx, service.readonlyPostgresDB, userID)
		if datastore.IsNotFound(err) {
			return &models.Subscription{UserID: userID, Status: models.SubscriptionStatusFree}, nil
		}
		return sub, err
	}

	sub, err := caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeySubscription(userID), CACHE_TTL_1_MIN, callback)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	sub.Active = sub.IsActive(time.Now())
	return sub, nil
}
