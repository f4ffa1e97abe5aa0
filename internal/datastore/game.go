package datastore

import (
	"context"

	"canedu/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableGame(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.Game)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.Game)(nil)).Index("index_game_domain").IfNotExists().Column("domain").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func UpsertGames(ctx context.Context, db *bun.DB, games []*models.Game) error {
	if len(games) == 0 {
		return nil
	}
	_, err := db.NewInsert().Model(&games).
		On("CONFLICT (slug) DO UPDATE").
		Set("name = EXCLUDED.name").
		Set("domain = EXCLUDED.domain").
		Set("kind = EXCLUDED.kind").
		Set("region = EXCLUDED.region").
		Set("description = EXCLUDED.description").
		Set("position = EXCLUDED.position").
		Exec(ctx)
	return err
}

func GetGames(ctx context.Context, db *bun.DB, domain models.Domain) ([]*models.Game, error) {
	var games []*models.Game
	q := db.NewSelect().Model(&games).Where("enabled = ?", true)
	if domain != "" {
		q = q.Where("domain = ?", domain)
	}
	err := q.Order("position ASC").Scan(ctx)
	if err != nil {
		return nil, err
	}
	return games, nil
}

func GetGameBySlug(ctx context.Context, db *bun.DB, slug string) (*models.Game, error) {
	var game models.Game
	err := db.NewSelect().Model(&game).Where("slug = ?", slug).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &game, nil
}
