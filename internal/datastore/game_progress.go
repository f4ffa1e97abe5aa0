package datastore

import (
	"context"
	"time"

	"canedu/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableGameProgress(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.GameProgress)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.GameProgress)(nil)).Index("index_game_progress_user_id_game_slug").Unique().IfNotExists().Column("user_id", "game_slug").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func GetGameProgress(ctx context.Context, db bun.IDB, userID string, gameSlug string) (*models.GameProgress, error) {
	var progress models.GameProgress
	err := db.NewSelect().Model(&progress).Where("user_id = ?", userID).Where("game_slug = ?", gameSlug).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

func GetGameProgressByUser(ctx context.Context, db *bun.DB, userID string) ([]*models.GameProgress, error) {
	var progress []*models.GameProgress
	err := db.NewSelect().Model(&progress).Where("user_id = ?", userID).Order("game_slug ASC").Scan(ctx)
	if err != nil {
		return nil, err
	}
	return progress, nil
}

// EnsureGameProgress inserts progress unless the user already has a row for
// the game, then returns whichever row is stored.
func EnsureGameProgress(ctx context.Context, db bun.IDB, progress *models.GameProgress) (*models.GameProgress, error) {
	_, err := db.NewInsert().Model(progress).On("CONFLICT (user_id, game_slug) DO NOTHING").Exec(ctx)
	if err != nil {
		return nil, err
	}
	return GetGameProgress(ctx, db, progress.UserID, progress.GameSlug)
}

// UpdateGameProgress writes progress if its version still matches the stored
// row and bumps the version.
func UpdateGameProgress(ctx context.Context, db bun.IDB, progress *models.GameProgress) error {
	progress.UpdatedAt = time.Now()
	res, err := db.NewUpdate().Model(progress).
		Column("level", "stages_completed", "correct", "total", "unlocked_levels", "updated_at").
		Set("version = version + 1").
		WherePK().
		Where("version = ?", progress.Version).
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
	progress.Version++
	return nil
}
