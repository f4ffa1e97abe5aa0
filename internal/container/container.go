// Package container wires the shared dependencies of every binary.
package container

import (
	"database/sql"
	"os"

	"canedu/internal/interfaces"
	"canedu/internal/pkg/caching"
	"canedu/internal/pkg/limiter"
	"canedu/internal/pkg/logger"
	"canedu/internal/services"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/hiendaovinh/toolkit/pkg/db"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// Optional settings read on top of the required ones.
var optionalEnvs = []string{
	"DB_DSN_READONLY",
	"DB_PASSWORD",
	"DB_PASSWORD_READONLY",
	"API_MODE",
	"API_ORIGINS",
	"LOG_MODE",
}

func New(vs map[string]string) *do.Injector {
	injector := do.New()
	for _, k := range optionalEnvs {
		if _, ok := vs[k]; !ok {
			vs[k] = os.Getenv(k)
		}
	}

	if vs["API_MODE"] == "" {
		vs["API_MODE"] = "production"
	}
	if vs["API_ORIGINS"] == "" {
		vs["API_ORIGINS"] = "*"
	}
	if vs["LOG_MODE"] == "" {
		vs["LOG_MODE"] = vs["API_MODE"]
	}
	if vs["DB_DSN_READONLY"] == "" {
		vs["DB_DSN_READONLY"] = vs["DB_DSN"]
		vs["DB_PASSWORD_READONLY"] = vs["DB_PASSWORD"]
	}

	do.ProvideNamedValue(injector, "envs", vs)

	do.Provide(injector, func(i *do.Injector) (*logger.Logger, error) {
		return logger.New(vs["LOG_MODE"])
	})

	do.Provide(injector, func(i *do.Injector) (*bun.DB, error) {
		return openDB(vs["DB_DSN"], vs["DB_PASSWORD"]), nil
	})

	do.ProvideNamed(injector, "db-readonly", func(i *do.Injector) (*bun.DB, error) {
		return openDB(vs["DB_DSN_READONLY"], vs["DB_PASSWORD_READONLY"]), nil
	})

	do.ProvideNamed(injector, "redis-db", func(i *do.Injector) (redis.UniversalClient, error) {
		return openRedis("REDIS_DB", false)
	})

	do.ProvideNamed(injector, "redis-cache", func(i *do.Injector) (redis.UniversalClient, error) {
		if !redisConfigured("REDIS_CACHE") {
			return do.InvokeNamed[redis.UniversalClient](i, "redis-db")
		}
		return openRedis("REDIS_CACHE", false)
	})

	do.ProvideNamed(injector, "redis-cache-readonly", func(i *do.Injector) (redis.UniversalClient, error) {
		if redisConfigured("REDIS_CACHE_READONLY") {
			return openRedis("REDIS_CACHE_READONLY", true)
		}
		if os.Getenv("CLUSTER_REDIS_CACHE") != "" {
			return openRedis("REDIS_CACHE", true)
		}
		return do.InvokeNamed[redis.UniversalClient](i, "redis-cache")
	})

	do.ProvideNamed(injector, "redis-limiter", func(i *do.Injector) (redis.UniversalClient, error) {
		if !redisConfigured("REDIS_LIMITER") {
			return do.InvokeNamed[redis.UniversalClient](i, "redis-db")
		}
		return openRedis("REDIS_LIMITER", false)
	})

	do.ProvideNamed(injector, "redis-mutex", func(i *do.Injector) (redis.UniversalClient, error) {
		if !redisConfigured("REDIS_MUTEX") {
			return do.InvokeNamed[redis.UniversalClient](i, "redis-db")
		}
		return openRedis("REDIS_MUTEX", false)
	})

	do.Provide(injector, func(i *do.Injector) (caching.Cache, error) {
		dbRedis, err := do.InvokeNamed[redis.UniversalClient](i, "redis-cache")
		if err != nil {
			return nil, err
		}

		return caching.NewCacheRedis(dbRedis, false)
	})

	do.Provide(injector, func(i *do.Injector) (caching.ReadOnlyCache, error) {
		dbRedis, err := do.InvokeNamed[redis.UniversalClient](i, "redis-cache-readonly")
		if err != nil {
			return nil, err
		}

		return caching.NewCacheRedis(dbRedis, false)
	})

	do.Provide(injector, func(i *do.Injector) (interfaces.Limiter, error) {
		dbRedis, err := do.InvokeNamed[redis.UniversalClient](i, "redis-limiter")
		if err != nil {
			return nil, err
		}

		return limiter.NewLimiter(dbRedis)
	})

	do.Provide(injector, func(i *do.Injector) (*redsync.Redsync, error) {
		dbRedis, err := do.InvokeNamed[redis.UniversalClient](i, "redis-mutex")
		if err != nil {
			return nil, err
		}

		pool := goredis.NewPool(dbRedis)
		return redsync.New(pool), nil
	})

	do.Provide(injector, func(i *do.Injector) (*services.Authentication, error) {
		return services.NewAuthentication(vs["JWT_SECRET"])
	})

	do.Provide(injector, func(i *do.Injector) (*services.ServiceConfig, error) {
		return services.NewServiceConfig(injector)
	})

	do.Provide(injector, func(i *do.Injector) (*services.ServiceUser, error) {
		return services.NewServiceUser(injector)
	})

	do.Provide(injector, func(i *do.Injector) (*services.ServiceGame, error) {
		return services.NewServiceGame(injector)
	})

	do.Provide(injector, func(i *do.Injector) (*services.ServiceQuestion, error) {
		return services.NewServiceQuestion(injector)
	})

	do.Provide(injector, func(i *do.Injector) (*services.ServiceLeaderboard, error) {
		return services.NewServiceLeaderboard(injector)
	})

	do.Provide(injector, func(i *do.Injector) (*services.ServiceScore, error) {
		return services.NewServiceScore(injector)
	})

	do.Provide(injector, func(i *do.Injector) (*services.ServiceProgression, error) {
		return services.NewServiceProgression(injector)
	})

	do.Provide(injector, func(i *do.Injector) (*services.ServiceActivity, error) {
		return services.NewServiceActivity(injector)
	})

	do.Provide(injector, func(i *do.Injector) (*services.ServiceStage, error) {
		return services.NewServiceStage(injector)
	})

	do.Provide(injector, func(i *do.Injector) (*services.ServiceSubscription, error) {
		return services.NewServiceSubscription(injector)
	})

	return injector
}

func openDB(dsn, password string) *bun.DB {
	opts := []pgdriver.Option{pgdriver.WithDSN(dsn)}
	if password != "" {
		opts = append(opts, pgdriver.WithPassword(password))
	}
	sqldb := sql.OpenDB(pgdriver.NewConnector(opts...))
	return bun.NewDB(sqldb, pgdialect.New())
}

func redisConfigured(name string) bool {
	return os.Getenv(name) != "" || os.Getenv("CLUSTER_"+name) != ""
}

// openRedis prefers CLUSTER_<name> over <name>.
func openRedis(name string, readonly bool) (redis.UniversalClient, error) {
	if clusterURL := os.Getenv("CLUSTER_" + name); clusterURL != "" {
		clusterOpts, err := redis.ParseClusterURL(clusterURL)
		if err != nil {
			return nil, err
		}
		clusterOpts.ReadOnly = readonly
		return redis.NewClusterClient(clusterOpts), nil
	}

	return db.InitRedis(&db.RedisConfig{
		URL: os.Getenv(name),
	})
}
