package services

import (
	"context"
	"errors"
	"time"

	"canedu/internal/datastore"
	"canedu/internal/models"
	"canedu/internal/progression"

	"github.com/google/uuid"
	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/samber/do"
	"github.com/uptrace/bun"
)

type ServiceActivity struct {
	container          *do.Injector
	postgresDB         *bun.DB
	readonlyPostgresDB *bun.DB

	serviceGame *ServiceGame
}

func NewServiceActivity(container *do.Injector) (*ServiceActivity, error) {
	postgresDB, err := do.Invoke[*bun.DB](container)
	if err != nil {
		return nil, err
	}

	readonlyPostgresDB, err := do.InvokeNamed[*bun.DB](container, "db-readonly")
	if err != nil {
		return nil, err
	}

	serviceGame, err := do.Invoke[*ServiceGame](container)
	if err != nil {
		return nil, err
	}

	return &ServiceActivity{container, postgresDB, readonlyPostgresDB, serviceGame}, nil
}

// Log appends an entry. Name and type come from the catalog, accuracy is
// recomputed, and a missing id or date is assigned here. Logging the same id
// twice stores it once and returns the stored entry. An id owned by another
// user is rejected.
func (service *ServiceActivity) Log(ctx context.Context, userID string, entry *models.ActivityLog) (*models.ActivityLog, error) {
	game, err := service.serviceGame.GetGame(ctx, entry.GameSlug)
	if err != nil {
		return nil, err
	}

	NormalizeActivity(entry, userID, game, time.Now())

	err = datastore.InsertActivityLog(ctx, service.postgresDB, entry)
	if errors.Is(err, datastore.ErrActivityTaken) {
		return nil, errorx.Wrap(err, errorx.Invalid)
	}
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}
	return entry, nil
}

func (service *ServiceActivity) List(ctx context.Context, userID string, limit int) ([]*models.ActivityLog, error) {
	logs, err := datastore.GetActivityLogs(ctx, service.readonlyPostgresDB, userID, ClampActivityLimit(limit))
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}
	return logs, nil
}

func NormalizeActivity(entry *models.ActivityLog, userID string, game *models.Game, now time.Time) {
	if _, err := uuid.Parse(entry.ID); err != nil {
		entry.ID = uuid.NewString()
	}
	if entry.Date.IsZero() {
		entry.Date = now
	}
	entry.Date = entry.Date.UTC()
	entry.UserID = userID
	entry.GameSlug = game.Slug
	entry.GameName = game.Name
	entry.Type = game.Domain
	entry.Accuracy = progression.Accuracy(entry.Correct, entry.Total)
}

func ClampActivityLimit(limit int) int {
	if limit <= 0 {
		return ACTIVITY_DEFAULT_LIMIT
	}
	if limit > ACTIVITY_MAX_LIMIT {
		return ACTIVITY_MAX_LIMIT
	}
	return limit
}
