package datastore

import (
	"context"
	"time"

	"canedu/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableSubscription(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.Subscription)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}
	return nil
}

func GetSubscription(ctx context.Context, db *bun.DB, userID string) (*models.Subscription, error) {
	var sub models.Subscription
	err := db.NewSelect().Model(&sub).Where("user_id = ?", userID).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func UpsertSubscription(ctx context.Context, db *bun.DB, sub *models.Subscription) error {
	sub.UpdatedAt = time.Now()
	_, err := db.NewInsert().Model(sub).
		On("CONFLICT (user_id) DO UPDATE").
		Set("status = EXCLUDED.status").
		Set("plan = EXCLUDED.plan").
		Set("current_period_end = EXCLUDED.current_period_end").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}
