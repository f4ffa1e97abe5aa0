package main

import (
	"context"
	"time"

	"canedu/internal/pkg/logger"
	"canedu/internal/services"

	"github.com/robfig/cron/v3"
)

type LeaderboardJob struct {
	serviceLeaderboard *services.ServiceLeaderboard
	serviceConfig      *services.ServiceConfig
	log                *logger.Logger
}

func NewLeaderboardJob(serviceLeaderboard *services.ServiceLeaderboard, serviceConfig *services.ServiceConfig, log *logger.Logger) *LeaderboardJob {
	return &LeaderboardJob{
		serviceLeaderboard: serviceLeaderboard,
		serviceConfig:      serviceConfig,
		log:                log,
	}
}

// Start schedules the weekly reset and loads the overall board once.
func (j *LeaderboardJob) Start(ctx context.Context, cronRunner *cron.Cron) error {
	timeline, err := j.serviceConfig.GetStringConfig(ctx, services.CONFIG_CRONJOB_TIME_LEADERBOARD, services.DEFAULT_CRONJOB_TIME_LEADERBOARD)
	if err != nil {
		return err
	}

	if _, err := cronRunner.AddFunc(timeline, j.runScheduledTask); err != nil {
		return err
	}
	j.log.Info("leaderboard cronjob scheduled", "cron", timeline)

	if err := j.rebuild(ctx); err != nil {
		j.log.Error("initial leaderboard rebuild failed", "error", err)
	}
	return nil
}

func (j *LeaderboardJob) runScheduledTask() {
	ctx := context.Background()
	j.log.Info("resetting weekly leaderboard")
	if err := j.serviceLeaderboard.ResetWeekly(ctx, time.Now()); err != nil {
		j.log.Error("weekly leaderboard reset failed", "error", err)
		return
	}

	if err := j.rebuild(ctx); err != nil {
		j.log.Error("leaderboard rebuild failed", "error", err)
	}
}

func (j *LeaderboardJob) rebuild(ctx context.Context) error {
	n, err := j.serviceLeaderboard.RebuildOverall(ctx)
	if err != nil {
		return err
	}
	j.log.Info("overall leaderboard rebuilt", "users", n)
	return nil
}
