package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"canedu/internal/container"
	"canedu/internal/content"
	"canedu/internal/datastore"
	"canedu/internal/models"
	"canedu/internal/pkg/caching"
	"canedu/internal/pkg/logger"
	"canedu/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/env"
	"github.com/joho/godotenv"
	"github.com/samber/do"
	"github.com/uptrace/bun"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

func init() {
	// for development
	//nolint:errcheck
	godotenv.Load("../../.env")

	// for production
	//nolint:errcheck
	godotenv.Load("./.env")
}

func main() {
	vs, err := env.EnvsRequired(
		"DB_DSN",
	)
	if err != nil {
		log.Fatal(err)
	}

	injector := container.New(vs)

	app := &cli.App{
		Name: "migrate",
		Commands: []*cli.Command{
			commandMigration(injector),
			commandSeedGames(injector),
			commandSeedQuestions(injector),
			commandSeedConfig(injector),
			commandListConfig(injector),
			commandSetConfig(injector),
			commandGrantSubscription(injector),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func commandMigration(injector *do.Injector) *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "create missing tables",
		Action: func(c *cli.Context) error {
			db := do.MustInvoke[*bun.DB](injector)
			logs := do.MustInvoke[*logger.Logger](injector)

			steps := []struct {
				name string
				fn   func(context.Context, *bun.DB) error
			}{
				{"config", datastore.CreateTableConfig},
				{"user", datastore.CreateTableUser},
				{"game", datastore.CreateTableGame},
				{"question", datastore.CreateTableQuestion},
				{"game_progress", datastore.CreateTableGameProgress},
				{"score_snapshot", datastore.CreateTableScoreSnapshot},
				{"activity_log", datastore.CreateTableActivityLog},
				{"subscription", datastore.CreateTableSubscription},
			}
			for _, step := range steps {
				if err := step.fn(c.Context, db); err != nil {
					return fmt.Errorf("create table %s: %w", step.name, err)
				}
				logs.Info("table ready", "table", step.name)
			}
			return nil
		},
	}
}

func commandSeedGames(injector *do.Injector) *cli.Command {
	return &cli.Command{
		Name:  "seed-games",
		Usage: "upsert the embedded game catalog",
		Action: func(c *cli.Context) error {
			db := do.MustInvoke[*bun.DB](injector)
			logs := do.MustInvoke[*logger.Logger](injector)

			games, err := content.Games()
			if err != nil {
				return err
			}

			if err := datastore.UpsertGames(c.Context, db, games); err != nil {
				return err
			}

			keys := []string{
				services.DBKeyGames(""),
				services.DBKeyGames(string(models.DomainLiteracy)),
				services.DBKeyGames(string(models.DomainNumeracy)),
			}
			for _, game := range games {
				keys = append(keys, services.DBKeyGame(game.Slug))
			}
			invalidate(c.Context, injector, keys...)

			logs.Info("games seeded", "count", len(games))
			return nil
		},
	}
}

func commandSeedQuestions(injector *do.Injector) *cli.Command {
	return &cli.Command{
		Name:  "seed-questions",
		Usage: "insert the embedded question banks of every game",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "game",
				Usage: "only seed this game",
			},
			&cli.IntFlag{
				Name:  "concurrency",
				Value: 4,
			},
		},
		Action: func(c *cli.Context) error {
			db := do.MustInvoke[*bun.DB](injector)
			logs := do.MustInvoke[*logger.Logger](injector)

			games, err := content.Games()
			if err != nil {
				return err
			}

			errWg, ctx := errgroup.WithContext(c.Context)
			errWg.SetLimit(c.Int("concurrency"))
			for _, game := range games {
				game := game
				if c.String("game") != "" && c.String("game") != game.Slug {
					continue
				}

				errWg.Go(func() error {
					questions, err := content.AllQuestions(game)
					if err != nil {
						return fmt.Errorf("%s: %w", game.Slug, err)
					}

					inserted, err := datastore.InsertQuestions(ctx, db, questions)
					if err != nil {
						return fmt.Errorf("%s: %w", game.Slug, err)
					}

					total, err := datastore.CountQuestions(ctx, db, game.Slug)
					if err != nil {
						return fmt.Errorf("%s: %w", game.Slug, err)
					}

					clearQuestionGroups(ctx, injector, game.Slug)
					logs.Info("questions seeded", "game", game.Slug, "inserted", inserted, "total", total)
					return nil
				})
			}

			return errWg.Wait()
		},
	}
}

func commandSeedConfig(injector *do.Injector) *cli.Command {
	return &cli.Command{
		Name:  "seed-config",
		Usage: "insert default runtime settings",
		Action: func(c *cli.Context) error {
			db := do.MustInvoke[*bun.DB](injector)
			logs := do.MustInvoke[*logger.Logger](injector)

			defaults := services.DefaultConfigs()
			configs := make([]*models.Config, 0, len(defaults))
			for key, v := range defaults {
				configs = append(configs, &models.Config{Key: key, Value: v[0], Description: v[1]})
			}

			if err := datastore.UpsertConfigs(c.Context, db, configs); err != nil {
				return err
			}

			logs.Info("config seeded", "count", len(configs))
			return nil
		},
	}
}

func commandListConfig(injector *do.Injector) *cli.Command {
	return &cli.Command{
		Name: "list-config",
		Action: func(c *cli.Context) error {
			db := do.MustInvoke[*bun.DB](injector)

			configs, err := datastore.GetConfigs(c.Context, db)
			if err != nil {
				return err
			}

			for _, config := range configs {
				fmt.Printf("%-28s %-12s %s\n", config.Key, config.Value, config.Description)
			}
			return nil
		},
	}
}

func commandSetConfig(injector *do.Injector) *cli.Command {
	return &cli.Command{
		Name:      "set-config",
		Usage:     "change one runtime setting",
		ArgsUsage: "<key> <value>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return cli.ShowSubcommandHelp(c)
			}
			db := do.MustInvoke[*bun.DB](injector)
			logs := do.MustInvoke[*logger.Logger](injector)

			config, err := datastore.GetConfigByKey(c.Context, db, c.Args().Get(0))
			if err != nil {
				return fmt.Errorf("unknown key %q, run seed-config first: %w", c.Args().Get(0), err)
			}

			config.Value = c.Args().Get(1)
			if _, err := datastore.EditConfig(c.Context, db, config); err != nil {
				return err
			}

			invalidate(c.Context, injector, services.DBKeyConfig(config.Key))
			logs.Info("config updated", "key", config.Key, "value", config.Value)
			return nil
		},
	}
}

func commandGrantSubscription(injector *do.Injector) *cli.Command {
	return &cli.Command{
		Name:      "grant-subscription",
		Usage:     "set a user's subscription by hand",
		ArgsUsage: "<user-id>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "status",
				Value: models.SubscriptionStatusActive,
			},
			&cli.StringFlag{
				Name:  "plan",
				Value: "family",
			},
			&cli.DurationFlag{
				Name:  "for",
				Usage: "length of the period, zero for no end",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.ShowSubcommandHelp(c)
			}
			db := do.MustInvoke[*bun.DB](injector)

			sub := &models.Subscription{
				UserID: c.Args().First(),
				Status: c.String("status"),
				Plan:   c.String("plan"),
			}
			if d := c.Duration("for"); d > 0 {
				end := time.Now().Add(d)
				sub.CurrentPeriodEnd = &end
			}

			if err := datastore.UpsertSubscription(c.Context, db, sub); err != nil {
				return err
			}

			invalidate(c.Context, injector, services.DBKeySubscription(sub.UserID))
			return nil
		},
	}
}

// invalidate is best effort; a missing cache only delays the change by a TTL.
func invalidate(ctx context.Context, injector *do.Injector, keys ...string) {
	logs := do.MustInvoke[*logger.Logger](injector)
	cache, err := do.Invoke[caching.Cache](injector)
	if err != nil {
		logs.Warn("cache unavailable", "error", err)
		return
	}
	if err := caching.Invalidate(ctx, cache, keys...); err != nil {
		logs.Warn("cache invalidation failed", "error", err)
	}
}

func clearQuestionGroups(ctx context.Context, injector *do.Injector, gameSlug string) {
	logs := do.MustInvoke[*logger.Logger](injector)
	serviceQuestion, err := do.Invoke[*services.ServiceQuestion](injector)
	if err != nil {
		logs.Warn("question service unavailable", "error", err)
		return
	}
	if err := serviceQuestion.ClearQuestionGroups(ctx, gameSlug); err != nil {
		logs.Warn("cannot clear question groups", "game", gameSlug, "error", err)
	}
}
