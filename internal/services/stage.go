package services

import (
	"context"
	"errors"
	"time"

	"canedu/internal/datastore/redis_store"
	"canedu/internal/models"
	"canedu/internal/pkg/logger"
	"canedu/internal/progression"

	"github.com/go-redsync/redsync/v4"
	"github.com/google/uuid"
	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
)

var ErrNoStage = errors.New("no stage in progress")
var ErrStageUnrecorded = errors.New("stage results are not recorded yet")

type ServiceStage struct {
	container *do.Injector
	redisDB   redis.UniversalClient
	rs        *redsync.Redsync
	log       *logger.Logger

	serviceGame        *ServiceGame
	serviceConfig      *ServiceConfig
	serviceQuestion    *ServiceQuestion
	serviceProgression *ServiceProgression
	serviceScore       *ServiceScore
	serviceActivity    *ServiceActivity
}

func NewServiceStage(container *do.Injector) (*ServiceStage, error) {
	db, err := do.InvokeNamed[redis.UniversalClient](container, "redis-db")
	if err != nil {
		return nil, err
	}

	rs, err := do.Invoke[*redsync.Redsync](container)
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

	serviceQuestion, err := do.Invoke[*ServiceQuestion](container)
	if err != nil {
		return nil, err
	}

	serviceProgression, err := do.Invoke[*ServiceProgression](container)
	if err != nil {
		return nil, err
	}

	serviceScore, err := do.Invoke[*ServiceScore](container)
	if err != nil {
		return nil, err
	}

	serviceActivity, err := do.Invoke[*ServiceActivity](container)
	if err != nil {
		return nil, err
	}

	return &ServiceStage{container, db, rs, log.With("service", "stage"), serviceGame, serviceConfig, serviceQuestion, serviceProgression, serviceScore, serviceActivity}, nil
}

func (service *ServiceStage) Current(ctx context.Context, userID string, gameSlug string) (*models.StageSession, error) {
	game, err := service.serviceGame.GetGame(ctx, gameSlug)
	if err != nil {
		return nil, err
	}

	session, err := redis_store.GetStageSession(ctx, service.redisDB, game.Slug, userID)
	if errors.Is(err, redis.Nil) {
		return nil, errorx.Wrap(ErrNoStage, errorx.NotExist)
	}
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}
	return session, nil
}

// Start resumes an unfinished stage or begins a new one at the user's level.
func (service *ServiceStage) Start(ctx context.Context, userID string, gameSlug string) (*models.StageSession, error) {
	game, err := service.serviceGame.GetGame(ctx, gameSlug)
	if err != nil {
		return nil, err
	}

	unlock, err := service.lock(ctx, userID, game.Slug)
	if err != nil {
		return nil, err
	}
	defer unlock()

	session, err := redis_store.GetStageSession(ctx, service.redisDB, game.Slug, userID)
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, errorx.Wrap(err, errorx.Service)
	}
	if session != nil && (session.State != models.StageStateCompleted || !session.Recorded) {
		return session, nil
	}

	progress, err := service.serviceProgression.GetProgress(ctx, userID, game.Slug)
	if err != nil {
		return nil, err
	}

	questions, err := service.serviceQuestion.PickStageQuestions(ctx, game, progress.Level, service.serviceConfig.StageSize(ctx))
	if err != nil {
		return nil, err
	}

	session, err = progression.NewStage(uuid.NewString(), userID, game, progress.Level, questions, time.Now())
	if err != nil {
		return nil, errorx.Wrap(err, errorx.NotExist)
	}

	return service.save(ctx, session)
}

func (service *ServiceStage) Answer(ctx context.Context, userID string, gameSlug string, choice string) (*models.StageSession, error) {
	game, err := service.serviceGame.GetGame(ctx, gameSlug)
	if err != nil {
		return nil, err
	}

	unlock, err := service.lock(ctx, userID, game.Slug)
	if err != nil {
		return nil, err
	}
	defer unlock()

	session, err := service.Current(ctx, userID, game.Slug)
	if err != nil {
		return nil, err
	}

	_, err = progression.Answer(session, choice, time.Now())
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Invalid)
	}

	return service.save(ctx, session)
}

// Abandon drops the current stage without recording it.
func (service *ServiceStage) Abandon(ctx context.Context, userID string, gameSlug string) error {
	game, err := service.serviceGame.GetGame(ctx, gameSlug)
	if err != nil {
		return err
	}

	unlock, err := service.lock(ctx, userID, game.Slug)
	if err != nil {
		return err
	}
	defer unlock()

	session, err := service.Current(ctx, userID, game.Slug)
	if err != nil {
		return err
	}
	if session.State == models.StageStateCompleted && !session.Recorded {
		return errorx.Wrap(ErrStageUnrecorded, errorx.Invalid)
	}

	err = redis_store.DeleteStageSession(ctx, service.redisDB, game.Slug, userID)
	if err != nil {
		return errorx.Wrap(err, errorx.Service)
	}
	return nil
}

// Next advances to the following question. After the last question the
// stage is completed and its results are recorded. Each recording step runs
// once; calling Next again after a failure retries only the missing steps.
func (service *ServiceStage) Next(ctx context.Context, userID string, gameSlug string) (*models.StageCompletion, error) {
	game, err := service.serviceGame.GetGame(ctx, gameSlug)
	if err != nil {
		return nil, err
	}

	unlock, err := service.lock(ctx, userID, game.Slug)
	if err != nil {
		return nil, err
	}
	defer unlock()

	session, err := service.Current(ctx, userID, game.Slug)
	if err != nil {
		return nil, err
	}

	completed := session.State == models.StageStateCompleted && !session.Recorded
	if !completed {
		completed, err = progression.Advance(session, time.Now())
		if err != nil {
			return nil, errorx.Wrap(err, errorx.Invalid)
		}
	}

	result := &models.StageCompletion{Session: session}
	if completed {
		err = service.complete(ctx, game, result)
		if err != nil {
			if _, saveErr := service.save(ctx, session); saveErr != nil {
				service.log.Error("save stage", "user_id", userID, "game_id", game.Slug, "error", saveErr)
			}
			return nil, err
		}
	}

	_, err = service.save(ctx, session)
	if err != nil {
		return nil, err
	}
	return result, nil
}

const (
	stepProgress = "progress"
	stepScore    = "score"
	stepActivity = "activity"
)

func (service *ServiceStage) complete(ctx context.Context, game *models.Game, result *models.StageCompletion) error {
	session := result.Session

	if !session.HasApplied(stepProgress) {
		progress, err := service.serviceProgression.RecordStageCompletion(ctx, session.UserID, game.Slug, session.Correct, session.Total)
		if err != nil {
			return err
		}
		result.Progress = progress
		session.Applied = append(session.Applied, stepProgress)
	}

	if !session.HasApplied(stepScore) {
		answers := make([]models.AnswerRecord, 0, len(session.Questions))
		for _, q := range session.Questions {
			if q.Correct == nil {
				continue
			}
			answers = append(answers, models.AnswerRecord{Type: game.Domain, Correct: *q.Correct})
		}
		score, err := service.serviceScore.RecordAnswers(ctx, session.UserID, answers)
		if err != nil {
			return err
		}
		result.Score = score.Score
		session.Applied = append(session.Applied, stepScore)
	}

	if !session.HasApplied(stepActivity) {
		activity, err := service.serviceActivity.Log(ctx, session.UserID, &models.ActivityLog{
			ID:       session.ID,
			GameSlug: game.Slug,
			Date:     *session.CompletedAt,
			Correct:  session.Correct,
			Total:    session.Total,
			Duration: progression.Duration(session),
		})
		if err != nil {
			return err
		}
		result.Activity = activity
		session.Applied = append(session.Applied, stepActivity)
	}

	session.Recorded = true
	if result.Progress == nil {
		result.Progress, _ = service.serviceProgression.GetProgress(ctx, session.UserID, game.Slug)
	}
	if result.Score == nil {
		result.Score, _ = service.serviceScore.GetScores(ctx, session.UserID)
	}

	service.log.Info("stage completed",
		"user_id", session.UserID,
		"game_id", game.Slug,
		"level", session.Level,
		"correct", session.Correct,
		"total", session.Total,
	)
	return nil
}

func (service *ServiceStage) save(ctx context.Context, session *models.StageSession) (*models.StageSession, error) {
	session, err := redis_store.SaveStageSession(ctx, service.redisDB, session, STAGE_SESSION_TTL)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}
	return session, nil
}

func (service *ServiceStage) lock(ctx context.Context, userID string, gameSlug string) (func(), error) {
	mutex := service.rs.NewMutex(LockKeyStage(userID, gameSlug), redsync.WithExpiry(30*time.Second))
	if err := mutex.LockContext(ctx); err != nil {
		return nil, errorx.Wrap(ErrStageLock, errorx.Invalid)
	}
	return func() {
		// nolint:errcheck
		mutex.UnlockContext(ctx)
	}, nil
}
