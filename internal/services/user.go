package services

import (
	"context"
	"errors"
	"time"

	"canedu/internal/datastore"
	"canedu/internal/models"
	"canedu/internal/pkg/caching"
	"canedu/internal/pkg/logger"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/samber/do"
	"github.com/uptrace/bun"
)

const userSeenInterval = time.Hour

type ServiceUser struct {
	container          *do.Injector
	postgresDB         *bun.DB
	readonlyPostgresDB *bun.DB
	cache              caching.Cache
	readonlyCache      caching.ReadOnlyCache
	log                *logger.Logger
}

func NewServiceUser(container *do.Injector) (*ServiceUser, error) {
	postgresDB, err := do.Invoke[*bun.DB](container)
	if err != nil {
		return nil, err
	}

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

	log, err := do.Invoke[*logger.Logger](container)
	if err != nil {
		return nil, err
	}

	return &ServiceUser{container, postgresDB, readonlyPostgresDB, cache, readonlyCache, log.With("service", "user")}, nil
}

// FindOrCreateUser maps a verified token to a stored user, creating the row
// on first sight and refreshing profile fields when they change.
func (service *ServiceUser) FindOrCreateUser(ctx context.Context, userAuth *models.UserFromAuth) (*models.User, error) {
	if userAuth == nil {
		return nil, errorx.Wrap(errors.New("missing session"), errorx.Authn)
	}

	now := time.Now()
	user, err := service.FindUserByID(ctx, userAuth.ID)
	if err == nil {
		if profileChanged(user, userAuth) || user.LastSeenAt == nil || now.Sub(*user.LastSeenAt) > userSeenInterval {
			err = datastore.TouchUser(ctx, service.postgresDB, user.ID, userAuth.Email, userAuth.DisplayName, now)
			if err != nil {
				service.log.Warn("touch user", "user_id", user.ID, "error", err)
			}
			_ = service.cache.Delete(ctx, DBKeyUser(user.ID))
			if userAuth.Email != "" {
				user.Email = userAuth.Email
			}
			if userAuth.DisplayName != "" {
				user.DisplayName = userAuth.DisplayName
			}
			user.LastSeenAt = &now
		}
		return user, nil
	}
	if !datastore.IsNotFound(err) {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	user = &models.User{
		ID:          userAuth.ID,
		Email:       userAuth.Email,
		DisplayName: userAuth.DisplayName,
		CreatedAt:   now,
		LastSeenAt:  &now,
	}
	created, err := datastore.CreateUser(ctx, service.postgresDB, user)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}
	_ = service.cache.Delete(ctx, DBKeyUser(user.ID))

	if created {
		service.log.Info("create new user", "user_id", user.ID)
	}
	user.IsNewUser = created
	return user, nil
}

func (service *ServiceUser) FindUserByID(ctx context.Context, userID string) (*models.User, error) {
	callback := func() (*models.User, error) {
		return datastore.FindUserByID(ctx, service.readonlyPostgresDB, userID)
	}
	return caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyUser(userID), CACHE_TTL_5_MINS, callback)
}

func (service *ServiceUser) FindUsersByIDs(ctx context.Context, userIDs []string) (map[string]*models.User, error) {
	users, err := datastore.GetUsersByIDs(ctx, service.readonlyPostgresDB, userIDs)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	return byID, nil
}

func profileChanged(user *models.User, userAuth *models.UserFromAuth) bool {
	return (userAuth.Email != "" && userAuth.Email != user.Email) ||
		(userAuth.DisplayName != "" && userAuth.DisplayName != user.DisplayName)
}
