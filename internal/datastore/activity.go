package datastore

import (
	"context"

	"canedu/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableActivityLog(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.ActivityLog)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.ActivityLog)(nil)).Index("index_activity_log_user_id_date").IfNotExists().ColumnExpr("user_id, date DESC").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

// InsertActivityLog stores entry once per id. When the id already exists for
// the same user, entry is replaced by the stored row.
func InsertActivityLog(ctx context.Context, db bun.IDB, entry *models.ActivityLog) error {
	res, err := db.NewInsert().Model(entry).On("CONFLICT (id) DO NOTHING").Exec(ctx)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	existing := new(models.ActivityLog)
	err = db.NewSelect().Model(existing).Where("id = ?", entry.ID).Scan(ctx)
	if err != nil {
		return err
	}
	return claimActivity(existing, entry)
}

func claimActivity(existing, entry *models.ActivityLog) error {
	if existing.UserID != entry.UserID {
		return ErrActivityTaken
	}
	*entry = *existing
	return nil
}

// GetActivityLogs returns the newest entries first.
func GetActivityLogs(ctx context.Context, db *bun.DB, userID string, limit int) ([]*models.ActivityLog, error) {
	logs := make([]*models.ActivityLog, 0)
	err := db.NewSelect().Model(&logs).
		Where("user_id = ?", userID).
		Order("date DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return logs, nil
}
