package datastore

import (
	"context"
	"time"

	"canedu/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableUser(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.User)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.User)(nil)).Index("index_user_email").IfNotExists().Column("email").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func FindUserByID(ctx context.Context, db *bun.DB, userID string) (*models.User, error) {
	var user models.User
	err := db.NewSelect().Model(&user).Where("id = ?", userID).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUser reports whether the row was new.
func CreateUser(ctx context.Context, db *bun.DB, user *models.User) (bool, error) {
	res, err := db.NewInsert().Model(user).On("CONFLICT (id) DO NOTHING").Exec(ctx)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func TouchUser(ctx context.Context, db *bun.DB, userID string, email string, displayName string, now time.Time) error {
	q := db.NewUpdate().Model((*models.User)(nil)).
		Set("last_seen_at = ?", now).
		Where("id = ?", userID)
	if email != "" {
		q = q.Set("email = ?", email)
	}
	if displayName != "" {
		q = q.Set("display_name = ?", displayName)
	}
	_, err := q.Exec(ctx)
	return err
}

func GetUsersByIDs(ctx context.Context, db *bun.DB, userIDs []string) ([]*models.User, error) {
	var users []*models.User
	if len(userIDs) == 0 {
		return users, nil
	}
	err := db.NewSelect().Model(&users).Where("id IN (?)", bun.In(userIDs)).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return users, nil
}
