package services

import (
	"context"
	"errors"
	"strings"

	"canedu/internal/datastore"
	"canedu/internal/models"
	"canedu/internal/pkg/caching"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/samber/do"
	"github.com/uptrace/bun"
)

var ErrGameNotFound = errors.New("game not found")

type ServiceGame struct {
	container          *do.Injector
	readonlyPostgresDB *bun.DB
	cache              caching.Cache
	readonlyCache      caching.ReadOnlyCache
}

func NewServiceGame(container *do.Injector) (*ServiceGame, error) {
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

	return &ServiceGame{container, readonlyPostgresDB, cache, readonlyCache}, nil
}

func (service *ServiceGame) GetGames(ctx context.Context, domain models.Domain) ([]*models.Game, error) {
	if domain != "" && !domain.Valid() {
		return nil, errorx.Wrap(errors.New("invalid domain"), errorx.Validation)
	}

	callback := func() ([]*models.Game, error) {
		return datastore.GetGames(ctx, service.readonlyPostgresDB, domain)
	}

	games, err := caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyGames(string(domain)), CACHE_TTL_15_MINS, callback)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}
	return games, nil
}

// GetGame returns an enabled game or a NotExist error.
func (service *ServiceGame) GetGame(ctx context.Context, gameSlug string) (*models.Game, error) {
	slug := strings.ToLower(gameSlug)
	callback := func() (*models.Game, error) {
		return datastore.GetGameBySlug(ctx, service.readonlyPostgresDB, slug)
	}

	game, err := caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyGame(slug), CACHE_TTL_15_MINS, callback)
	if datastore.IsNotFound(err) {
		return nil, errorx.Wrap(ErrGameNotFound, errorx.NotExist)
	}
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}
	if !game.Enabled {
		return nil, errorx.Wrap(ErrGameNotFound, errorx.NotExist)
	}
	return game, nil
}
