package services

import (
	"context"
	"errors"
	"math/rand"
	"sort"

	"canedu/internal/content"
	"canedu/internal/datastore"
	"canedu/internal/datastore/redis_store"
	"canedu/internal/models"
	"canedu/internal/pkg/caching"
	"canedu/internal/pkg/logger"
	"canedu/internal/progression"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/uptrace/bun"
)

var ErrInvalidLevel = errors.New("invalid level")
var ErrNoQuestions = errors.New("no question available")

type ServiceQuestion struct {
	container          *do.Injector
	redisDB            redis.UniversalClient
	readonlyPostgresDB *bun.DB
	cache              caching.Cache
	readonlyCache      caching.ReadOnlyCache
	mix                *progression.LevelMix
	log                *logger.Logger
}

func NewServiceQuestion(container *do.Injector) (*ServiceQuestion, error) {
	db, err := do.InvokeNamed[redis.UniversalClient](container, "redis-db")
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

	mix, err := progression.NewLevelMix()
	if err != nil {
		return nil, err
	}

	log, err := do.Invoke[*logger.Logger](container)
	if err != nil {
		return nil, err
	}

	return &ServiceQuestion{container, db, readonlyPostgresDB, cache, readonlyCache, mix, log.With("service", "question")}, nil
}

func (service *ServiceQuestion) GetQuestion(ctx context.Context, questionID int64) (*models.Question, error) {
	callback := func() (*models.Question, error) {
		return datastore.GetQuestionByID(ctx, service.readonlyPostgresDB, questionID)
	}

	return caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyQuestion(questionID), CACHE_TTL_15_MINS, callback)
}

// GetLevelQuestions returns the bank of one level. Games not seeded into the
// database yet are served from the embedded content.
func (service *ServiceQuestion) GetLevelQuestions(ctx context.Context, game *models.Game, level int) (*models.LevelQuestions, error) {
	if level < progression.MinLevel || level > progression.MaxLevel {
		return nil, errorx.Wrap(ErrInvalidLevel, errorx.Validation)
	}

	callback := func() ([]*models.Question, error) {
		questions, err := datastore.GetQuestionsByLevel(ctx, service.readonlyPostgresDB, game.Slug, level)
		if err != nil {
			return nil, err
		}
		if len(questions) > 0 {
			return questions, nil
		}
		return content.Questions(game, level)
	}

	questions, err := caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyLevelQuestions(game.Slug, level), CACHE_TTL_1_HOUR, callback)
	if errors.Is(err, content.ErrUnknownGame) {
		return nil, errorx.Wrap(ErrNoQuestions, errorx.NotExist)
	}
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	return &models.LevelQuestions{GameSlug: game.Slug, Level: level, Questions: questions}, nil
}

// PickStageQuestions draws n questions for a player at level using the
// weighted level mix, then tops up from the player's own level.
func (service *ServiceQuestion) PickStageQuestions(ctx context.Context, game *models.Game, level int, n int) ([]*models.Question, error) {
	plan := service.mix.Plan(level, n)

	draw := func(lvl int, count int) ([]*models.Question, error) {
		return service.drawFromGroup(ctx, game, lvl, count)
	}
	bank := func(lvl int) ([]*models.Question, error) {
		lq, err := service.GetLevelQuestions(ctx, game, lvl)
		if err != nil {
			return nil, err
		}
		return lq.Questions, nil
	}

	questions, err := assembleStage(plan, level, n, draw, bank)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, errorx.Wrap(ErrNoQuestions, errorx.NotExist)
	}

	for _, q := range questions {
		shuffleChoices(q)
	}
	rand.Shuffle(len(questions), func(i, j int) { questions[i], questions[j] = questions[j], questions[i] })
	return questions, nil
}

func (service *ServiceQuestion) drawFromGroup(ctx context.Context, game *models.Game, level int, count int) ([]*models.Question, error) {
	err := service.checkQuestionGroupExistence(ctx, game.Slug, level)
	if err != nil {
		return nil, err
	}

	ids, err := redis_store.RandomQuestionsFromGroup(ctx, service.redisDB, game.Slug, level, count)
	if err != nil {
		return nil, err
	}

	questions := make([]*models.Question, 0, len(ids))
	for _, id := range ids {
		q, err := service.GetQuestion(ctx, id)
		if err != nil {
			service.log.Warn("load question", "question_id", id, "error", err)
			continue
		}
		if q.Enabled {
			questions = append(questions, q)
		}
	}
	return questions, nil
}

func (service *ServiceQuestion) checkQuestionGroupExistence(ctx context.Context, gameSlug string, level int) error {
	size, err := redis_store.QuestionGroupSize(ctx, service.redisDB, gameSlug, level)
	if err != nil {
		return err
	}
	if size > 0 {
		return nil
	}

	ids, err := datastore.GetQuestionIDs(ctx, service.readonlyPostgresDB, gameSlug, level)
	if err != nil {
		return err
	}
	return redis_store.AddQuestionsToGroup(ctx, service.redisDB, gameSlug, level, ids)
}

// ClearQuestionGroups drops the cached id groups of a game after a reseed.
func (service *ServiceQuestion) ClearQuestionGroups(ctx context.Context, gameSlug string) error {
	return redis_store.DeleteGameQuestionGroups(ctx, service.redisDB, gameSlug)
}

// assembleStage follows plan (level -> count) with draw, then fills any
// shortfall from the bank of level and the levels below it. Prompts never
// repeat within a stage.
func assembleStage(plan map[int]int, level int, n int, draw func(level, count int) ([]*models.Question, error), bank func(level int) ([]*models.Question, error)) ([]*models.Question, error) {
	levels := make([]int, 0, len(plan))
	for lvl := range plan {
		levels = append(levels, lvl)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(levels)))

	picked := make([]*models.Question, 0, n)
	seen := make(map[string]bool)
	add := func(qs []*models.Question, limit int) {
		for _, q := range qs {
			if len(picked) >= n || limit == 0 {
				return
			}
			if q == nil || seen[questionKey(q)] {
				continue
			}
			seen[questionKey(q)] = true
			picked = append(picked, q)
			limit--
		}
	}

	for _, lvl := range levels {
		qs, err := draw(lvl, plan[lvl])
		if err != nil {
			return nil, err
		}
		add(qs, plan[lvl])
	}

	// Top up from the current level downwards, then borrow from harder
	// levels when the lower banks run dry.
	for _, lvl := range topUpOrder(level) {
		if len(picked) >= n {
			break
		}
		qs, err := bank(lvl)
		if err != nil {
			return nil, err
		}
		qs = append([]*models.Question(nil), qs...)
		rand.Shuffle(len(qs), func(i, j int) { qs[i], qs[j] = qs[j], qs[i] })
		add(qs, -1)
	}

	return picked, nil
}

func topUpOrder(level int) []int {
	order := make([]int, 0, progression.MaxLevel)
	for lvl := level; lvl >= progression.MinLevel; lvl-- {
		order = append(order, lvl)
	}
	for lvl := level + 1; lvl <= progression.MaxLevel; lvl++ {
		order = append(order, lvl)
	}
	return order
}

// Spelling prompts repeat, so a question is identified by prompt and answer.
func questionKey(q *models.Question) string {
	return q.Prompt + "\x00" + q.Answer
}

func shuffleChoices(q *models.Question) {
	choices := append([]string(nil), q.Choices...)
	rand.Shuffle(len(choices), func(i, j int) { choices[i], choices[j] = choices[j], choices[i] })
	q.Choices = choices
}
