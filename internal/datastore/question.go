package datastore

import (
	"context"

	"canedu/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableQuestion(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.Question)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.Question)(nil)).Index("index_question_game_level_prompt_answer").Unique().IfNotExists().Column("game_slug", "level", "prompt", "answer").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

// InsertQuestions skips questions already present for the same game and level.
func InsertQuestions(ctx context.Context, db *bun.DB, questions []*models.Question) (int64, error) {
	if len(questions) == 0 {
		return 0, nil
	}
	res, err := db.NewInsert().Model(&questions).On("CONFLICT (game_slug, level, prompt, answer) DO NOTHING").Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func GetQuestionIDs(ctx context.Context, db *bun.DB, gameSlug string, level int) ([]int64, error) {
	var ids []int64
	err := db.NewSelect().Model((*models.Question)(nil)).
		Column("id").
		Where("game_slug = ?", gameSlug).
		Where("level = ?", level).
		Where("enabled = ?", true).
		Scan(ctx, &ids)
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func GetQuestionsByLevel(ctx context.Context, db *bun.DB, gameSlug string, level int) ([]*models.Question, error) {
	var questions []*models.Question
	err := db.NewSelect().Model(&questions).
		Where("game_slug = ?", gameSlug).
		Where("level = ?", level).
		Where("enabled = ?", true).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return questions, nil
}

func GetQuestionByID(ctx context.Context, db *bun.DB, id int64) (*models.Question, error) {
	var question models.Question
	err := db.NewSelect().Model(&question).Where("id = ?", id).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &question, nil
}

func CountQuestions(ctx context.Context, db *bun.DB, gameSlug string) (int, error) {
	return db.NewSelect().Model((*models.Question)(nil)).Where("game_slug = ?", gameSlug).Count(ctx)
}
