package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"canedu/internal/container"
	"canedu/internal/pkg/logger"
	"canedu/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/env"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/samber/do"
	"github.com/urfave/cli/v2"
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
		Name: "cronjob",
		Commands: []*cli.Command{
			commandCronjob(injector),
			commandRebuildLeaderboard(injector),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func commandCronjob(injector *do.Injector) *cli.Command {
	return &cli.Command{
		Name: "cron",
		Action: func(c *cli.Context) error {
			job, err := newLeaderboardJob(injector)
			if err != nil {
				return err
			}

			cronRunner := cron.New(cron.WithLogger(cronLogger{job.log}))
			if err := job.Start(c.Context, cronRunner); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cronRunner.Start()
			job.log.Info("cronjob started")
			<-ctx.Done()
			<-cronRunner.Stop().Done()
			return nil
		},
	}
}

func commandRebuildLeaderboard(injector *do.Injector) *cli.Command {
	return &cli.Command{
		Name:  "rebuild-leaderboard",
		Usage: "reload the overall leaderboard from stored scores",
		Action: func(c *cli.Context) error {
			job, err := newLeaderboardJob(injector)
			if err != nil {
				return err
			}
			return job.rebuild(c.Context)
		},
	}
}

// cronLogger routes robfig/cron's own logs into zap.
type cronLogger struct {
	log *logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error(msg, append(keysAndValues, "error", err)...)
}

func newLeaderboardJob(injector *do.Injector) (*LeaderboardJob, error) {
	serviceLeaderboard, err := do.Invoke[*services.ServiceLeaderboard](injector)
	if err != nil {
		return nil, err
	}

	serviceConfig, err := do.Invoke[*services.ServiceConfig](injector)
	if err != nil {
		return nil, err
	}

	logs, err := do.Invoke[*logger.Logger](injector)
	if err != nil {
		return nil, err
	}

	return NewLeaderboardJob(serviceLeaderboard, serviceConfig, logs.With("job", "leaderboard")), nil
}
