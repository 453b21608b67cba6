package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/temple-keepers/temple-keepers-sub000/internal/models"
)

type DevotionalRepository interface {
	Create(ctx context.Context, devotional models.Devotional) (models.Devotional, error)
	FindByDate(ctx context.Context, date string) (models.Devotional, error)
}

type SQLiteDevotionalRepository struct {
	database *sql.DB
}

func NewDevotionalRepository(database *sql.DB) *SQLiteDevotionalRepository {
	return &SQLiteDevotionalRepository{database: database}
}

func (repository *SQLiteDevotionalRepository) Create(ctx context.Context, devotional models.Devotional) (models.Devotional, error) {
	if devotional.ID == "" {
		devotional.ID = uuid.New().String()
	}
	devotional.CreatedAt = time.Now()

	_, err := repository.database.ExecContext(ctx,
		`INSERT INTO devotionals (id, date, title, scripture, body, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		devotional.ID, devotional.Date, devotional.Title, devotional.Scripture,
		devotional.Body, devotional.CreatedAt,
	)
	if err != nil {
		return models.Devotional{}, fmt.Errorf("creating devotional: %w", err)
	}
	return devotional, nil
}

func (repository *SQLiteDevotionalRepository) FindByDate(ctx context.Context, date string) (models.Devotional, error) {
	var devotional models.Devotional
	err := repository.database.QueryRowContext(ctx,
		"SELECT id, date, title, scripture, body, created_at FROM devotionals WHERE date = ?", date,
	).Scan(&devotional.ID, &devotional.Date, &devotional.Title, &devotional.Scripture, &devotional.Body, &devotional.CreatedAt)
	if err != nil {
		return models.Devotional{}, fmt.Errorf("finding devotional by date: %w", err)
	}
	return devotional, nil
}
