package services

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrProgressLock = errors.New("progress locked")
var ErrScoreLock = errors.New("score locked")
var ErrStageLock = errors.New("stage locked")

const (
	CONFIG_STAGE_SIZE               = "STAGE_SIZE"
	CONFIG_LEVEL_UP_STAGES          = "LEVEL_UP_STAGES"
	CONFIG_PROFICIENCY_THRESHOLD    = "PROFICIENCY_THRESHOLD"
	CONFIG_LEADERBOARD_LIMIT        = "LEADERBOARD_LIMIT"
	CONFIG_CRONJOB_TIME_LEADERBOARD = "CRONJOB_TIME_LEADERBOARD"

	LEADERBOARD_DEFAULT_LIMIT        = 20
	LEADERBOARD_REBUILD_LIMIT        = 10000
	DEFAULT_CRONJOB_TIME_LEADERBOARD = "0 0 * * 1"

	ACTIVITY_DEFAULT_LIMIT = 50
	ACTIVITY_MAX_LIMIT     = 200

	SCORE_SYNC_RATE_LIMIT_PER_MINUTE = 10

	STAGE_SESSION_TTL = 24 * time.Hour

	CACHE_TTL_1_MIN   = 1 * time.Minute
	CACHE_TTL_5_MINS  = 5 * time.Minute
	CACHE_TTL_15_MINS = 15 * time.Minute
	CACHE_TTL_1_HOUR  = 1 * time.Hour
)

func LockKeyProgress(userID string, gameSlug string) string {
	return fmt.Sprintf("lock:progress:%s:%s", userID, gameSlug)
}

func LockKeyScore(userID string) string {
	return fmt.Sprintf("lock:score:%s", userID)
}

func LockKeyStage(userID string, gameSlug string) string {
	return fmt.Sprintf("lock:stage:%s:%s", userID, gameSlug)
}

// db
func DBKeyGame(gameSlug string) string {
	return fmt.Sprintf("game:%s", strings.ToLower(gameSlug))
}

func DBKeyGames(domain string) string {
	if domain == "" {
		return "games:active"
	}
	return fmt.Sprintf("games:active:%s", domain)
}

func DBKeyQuestion(questionID int64) string {
	return fmt.Sprintf("question:%d", questionID)
}

func DBKeyLevelQuestions(gameSlug string, level int) string {
	return fmt.Sprintf("questions:%s:%d", strings.ToLower(gameSlug), level)
}

func DBKeyUser(userID string) string {
	return fmt.Sprintf("user:%s", userID)
}

func DBKeyConfig(key string) string {
	return fmt.Sprintf("config:%s", strings.ToLower(key))
}

func DBKeyProgress(userID string, gameSlug string) string {
	return fmt.Sprintf("progress:%s:%s", userID, gameSlug)
}

func DBKeyScore(userID string) string {
	return fmt.Sprintf("score:%s", userID)
}

func DBKeySubscription(userID string) string {
	return fmt.Sprintf("subscription:%s", userID)
}

func DBKeyLeaderboardByUser(name string, userID string, limit int) string {
	return fmt.Sprintf("leaderboard_by_user:%s:%s:%d", strings.ToLower(name), userID, limit)
}

func LimitKeyScoreSync(userID string) string {
	return fmt.Sprintf("limit:score_sync:%s", userID)
}
