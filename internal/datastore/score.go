package datastore

import (
	"context"
	"time"

	"canedu/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableScoreSnapshot(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.ScoreSnapshot)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.ScoreSnapshot)(nil)).Index("index_score_snapshot_total_score").IfNotExists().Column("total_score").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func GetScoreSnapshot(ctx context.Context, db bun.IDB, userID string) (*models.ScoreSnapshot, error) {
	var score models.ScoreSnapshot
	err := db.NewSelect().Model(&score).Where("user_id = ?", userID).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &score, nil
}

func EnsureScoreSnapshot(ctx context.Context, db bun.IDB, score *models.ScoreSnapshot) (*models.ScoreSnapshot, error) {
	_, err := db.NewInsert().Model(score).On("CONFLICT (user_id) DO NOTHING").Exec(ctx)
	if err != nil {
		return nil, err
	}
	return GetScoreSnapshot(ctx, db, score.UserID)
}

// UpdateScoreSnapshot is the versioned write for score totals.
func UpdateScoreSnapshot(ctx context.Context, db bun.IDB, score *models.ScoreSnapshot) error {
	score.UpdatedAt = time.Now()
	res, err := db.NewUpdate().Model(score).
		Column("total_score", "literacy_correct", "literacy_attempted", "numeracy_correct", "numeracy_attempted",
			"current_level", "session_seconds", "elapsed_seconds", "updated_at").
		Set("version = version + 1").
		WherePK().
		Where("version = ?", score.Version).
		Exec(ctx)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrVersionConflict
	}
	score.Version++
	return nil
}

// GetTopScores feeds the overall leaderboard rebuild.
func GetTopScores(ctx context.Context, db *bun.DB, limit int) ([]*models.ScoreSnapshot, error) {
	var scores []*models.ScoreSnapshot
	err := db.NewSelect().Model(&scores).
		Where("total_score > 0").
		Order("total_score DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return scores, nil
}
