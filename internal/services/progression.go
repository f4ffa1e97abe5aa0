package services

import (
	"context"
	"errors"
	"time"

	"canedu/internal/datastore"
	"canedu/internal/models"
	"canedu/internal/pkg/caching"
	"canedu/internal/pkg/logger"
	"canedu/internal/progression"

	"github.com/go-redsync/redsync/v4"
	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/samber/do"
	"github.com/uptrace/bun"
)

type ServiceProgression struct {
	container          *do.Injector
	rs                 *redsync.Redsync
	postgresDB         *bun.DB
	readonlyPostgresDB *bun.DB
	cache              caching.Cache
	readonlyCache      caching.ReadOnlyCache
	log                *logger.Logger

	serviceGame   *ServiceGame
	serviceConfig *ServiceConfig
}

func NewServiceProgression(container *do.Injector) (*ServiceProgression, error) {
	rs, err := do.Invoke[*redsync.Redsync](container)
	if err != nil {
		return nil, err
	}

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

	serviceGame, err := do.Invoke[*ServiceGame](container)
	if err != nil {
		return nil, err
	}

	serviceConfig, err := do.Invoke[*ServiceConfig](container)
	if err != nil {
		return nil, err
	}

	return &ServiceProgression{container, rs, postgresDB, readonlyPostgresDB, cache, readonlyCache, log.With("service", "progression"), serviceGame, serviceConfig}, nil
}

// GetProgress returns the user's progress in a game, creating the default
// row on first read.
func (service *ServiceProgression) GetProgress(ctx context.Context, userID string, gameSlug string) (*models.GameProgress, error) {
	game, err := service.serviceGame.GetGame(ctx, gameSlug)
	if err != nil {
		return nil, err
	}

	callback := func() (*models.GameProgress, error) {
		return datastore.EnsureGameProgress(ctx, service.postgresDB, progression.NewProgress(userID, game.Slug))
	}

	progress, err := caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyProgress(userID, game.Slug), CACHE_TTL_5_MINS, callback)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	return service.serviceConfig.Rules(ctx).Decorate(progress), nil
}

// ListProgress returns one entry per enabled game. Games never played are
// reported with default progress without being stored.
func (service *ServiceProgression) ListProgress(ctx context.Context, userID string) ([]*models.GameProgress, error) {
	games, err := service.serviceGame.GetGames(ctx, "")
	if err != nil {
		return nil, err
	}

	stored, err := datastore.GetGameProgressByUser(ctx, service.readonlyPostgresDB, userID)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}
	byGame := make(map[string]*models.GameProgress, len(stored))
	for _, p := range stored {
		byGame[p.GameSlug] = p
	}

	rules := service.serviceConfig.Rules(ctx)
	result := make([]*models.GameProgress, 0, len(games))
	for _, game := range games {
		p, ok := byGame[game.Slug]
		if !ok {
			p = progression.NewProgress(userID, game.Slug)
		}
		result = append(result, rules.Decorate(p))
	}
	return result, nil
}

func (service *ServiceProgression) RecordStageCompletion(ctx context.Context, userID string, gameSlug string, correct int, total int) (*models.GameProgress, error) {
	rules := service.serviceConfig.Rules(ctx)
	return service.mutate(ctx, userID, gameSlug, func(p *models.GameProgress) error {
		err := rules.RecordStage(p, correct, total)
		if err != nil {
			return errorx.Wrap(err, errorx.Validation)
		}
		return nil
	})
}

func (service *ServiceProgression) CanLevelUp(ctx context.Context, userID string, gameSlug string) (bool, error) {
	progress, err := service.GetProgress(ctx, userID, gameSlug)
	if err != nil {
		return false, err
	}
	return progress.CanLevelUp, nil
}

// LevelUp is a no-op at the top level and a validation error when the
// requirements are not met.
func (service *ServiceProgression) LevelUp(ctx context.Context, userID string, gameSlug string) (*models.LevelUpResult, error) {
	rules := service.serviceConfig.Rules(ctx)
	leveledUp := false
	progress, err := service.mutate(ctx, userID, gameSlug, func(p *models.GameProgress) error {
		ok, err := rules.LevelUp(p)
		if errors.Is(err, progression.ErrNotEligible) {
			return errorx.Wrap(err, errorx.Validation)
		}
		if err != nil {
			return err
		}
		if !ok {
			return errUnchanged
		}
		leveledUp = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if leveledUp {
		service.log.Info("level up", "user_id", userID, "game_id", progress.GameSlug, "level", progress.Level)
	}
	return &models.LevelUpResult{Progress: progress, LeveledUp: leveledUp}, nil
}

var errUnchanged = errors.New("unchanged")

// mutate runs fn on the stored progress under the per-game user lock and
// writes the result with a version check. fn may return errUnchanged to skip
// the write.
func (service *ServiceProgression) mutate(ctx context.Context, userID string, gameSlug string, fn func(p *models.GameProgress) error) (*models.GameProgress, error) {
	game, err := service.serviceGame.GetGame(ctx, gameSlug)
	if err != nil {
		return nil, err
	}

	mutex := service.rs.NewMutex(LockKeyProgress(userID, game.Slug), redsync.WithExpiry(10*time.Second))
	if err := mutex.LockContext(ctx); err != nil {
		return nil, errorx.Wrap(ErrProgressLock, errorx.Invalid)
	}
	// nolint:errcheck
	defer mutex.UnlockContext(ctx)

	progress, err := datastore.EnsureGameProgress(ctx, service.postgresDB, progression.NewProgress(userID, game.Slug))
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	err = fn(progress)
	if errors.Is(err, errUnchanged) {
		return service.serviceConfig.Rules(ctx).Decorate(progress), nil
	}
	if err != nil {
		return nil, err
	}

	err = datastore.UpdateGameProgress(ctx, service.postgresDB, progress)
	if errors.Is(err, datastore.ErrVersionConflict) {
		return nil, errorx.Wrap(err, errorx.Invalid)
	}
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	if err := service.cache.Delete(ctx, DBKeyProgress(userID, game.Slug)); err != nil && !errors.Is(err, caching.ErrCacheMiss) {
		service.log.Warn("invalidate progress cache", "user_id", userID, "game_id", game.Slug, "error", err)
	}

	return service.serviceConfig.Rules(ctx).Decorate(progress), nil
}
