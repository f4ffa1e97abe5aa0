package services

import (
	"context"
	"strconv"

	"canedu/internal/datastore"
	"canedu/internal/pkg/caching"
	"canedu/internal/progression"

	"github.com/samber/do"
	"github.com/uptrace/bun"
)

type ServiceConfig struct {
	container          *do.Injector
	readonlyPostgresDB *bun.DB
	cache              caching.Cache
	readonlyCache      caching.ReadOnlyCache
}

func NewServiceConfig(container *do.Injector) (*ServiceConfig, error) {
	cache, err := do.Invoke[caching.Cache](container)
	if err != nil {
		return nil, err
	}

	readonlyPostgresDB, err := do.InvokeNamed[*bun.DB](container, "db-readonly")
	if err != nil {
		return nil, err
	}

	readOnlyCache, err := do.Invoke[caching.ReadOnlyCache](container)
	if err != nil {
		return nil, err
	}

	return &ServiceConfig{container, readonlyPostgresDB, cache, readOnlyCache}, nil
}

// GetStringConfig caches missing keys as defaultValue too.
func (service *ServiceConfig) GetStringConfig(ctx context.Context, key string, defaultValue string) (string, error) {
	callback := func() (string, error) {
		config, err := datastore.GetConfigByKey(ctx, service.readonlyPostgresDB, key)
		if datastore.IsNotFound(err) {
			return defaultValue, nil
		}
		if err != nil {
			return defaultValue, err
		}
		return config.Value, nil
	}

	value, err := caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyConfig(key), CACHE_TTL_5_MINS, callback)
	if err != nil {
		return defaultValue, err
	}

	return value, nil
}

func (service *ServiceConfig) GetIntConfig(ctx context.Context, key string, defaultValue int) (int, error) {
	value, err := service.GetStringConfig(ctx, key, strconv.Itoa(defaultValue))
	if err != nil {
		return defaultValue, err
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue, err
	}

	return intValue, nil
}

// Rules returns the leveling rules with operator overrides applied.
func (service *ServiceConfig) Rules(ctx context.Context) progression.Rules {
	stages, _ := service.GetIntConfig(ctx, CONFIG_LEVEL_UP_STAGES, progression.StagesPerLevel)
	threshold, _ := service.GetIntConfig(ctx, CONFIG_PROFICIENCY_THRESHOLD, progression.ProficiencyThreshold)
	return progression.Rules{
		StagesPerLevel: stages,
		Threshold:      threshold,
		MaxLevel:       progression.MaxLevel,
	}.Normalize()
}

func (service *ServiceConfig) StageSize(ctx context.Context) int {
	size, _ := service.GetIntConfig(ctx, CONFIG_STAGE_SIZE, progression.DefaultStageSize)
	return progression.ClampStageSize(size)
}

func (service *ServiceConfig) LeaderboardLimit(ctx context.Context) int {
	limit, _ := service.GetIntConfig(ctx, CONFIG_LEADERBOARD_LIMIT, LEADERBOARD_DEFAULT_LIMIT)
	if limit <= 0 {
		return LEADERBOARD_DEFAULT_LIMIT
	}
	return limit
}

// DefaultConfigs are the tunables seeded by the migrate binary.
func DefaultConfigs() map[string][2]string {
	return map[string][2]string{
		CONFIG_STAGE_SIZE:               {strconv.Itoa(progression.DefaultStageSize), "questions per stage (5-10)"},
		CONFIG_LEVEL_UP_STAGES:          {strconv.Itoa(progression.StagesPerLevel), "stages required before a level up"},
		CONFIG_PROFICIENCY_THRESHOLD:    {strconv.Itoa(progression.ProficiencyThreshold), "minimum accuracy in percent to level up"},
		CONFIG_LEADERBOARD_LIMIT:        {strconv.Itoa(LEADERBOARD_DEFAULT_LIMIT), "entries returned per leaderboard"},
		CONFIG_CRONJOB_TIME_LEADERBOARD: {DEFAULT_CRONJOB_TIME_LEADERBOARD, "cron spec of the weekly leaderboard reset"},
	}
}
