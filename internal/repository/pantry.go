package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/temple-keepers/temple-keepers-sub000/internal/models"
)

type PantryRepository interface {
	FindByUser(ctx context.Context, userID string) ([]models.PantryItem, error)
	Create(ctx context.Context, item models.PantryItem) (models.PantryItem, error)
	Delete(ctx context.Context, id string) error
}

type SQLitePantryRepository struct {
	database *sql.DB
}

func NewPantryRepository(database *sql.DB) *SQLitePantryRepository {
	return &SQLitePantryRepository{database: database}
}

func (repository *SQLitePantryRepository) FindByUser(ctx context.Context, userID string) ([]models.PantryItem, error) {
	rows, err := repository.database.QueryContext(ctx,
		"SELECT id, user_id, item_name, category, created_at FROM pantry_items WHERE user_id = ? ORDER BY item_name ASC",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("finding pantry items: %w", err)
	}
	defer rows.Close()

	var items []models.PantryItem
	for rows.Next() {
		var item models.PantryItem
		if err := rows.Scan(&item.ID, &item.UserID, &item.ItemName, &item.Category, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning pantry item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (repository *SQLitePantryRepository) Create(ctx context.Context, item models.PantryItem) (models.PantryItem, error) {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	item.CreatedAt = time.Now()

	_, err := repository.database.ExecContext(ctx,
		"INSERT INTO pantry_items (id, user_id, item_name, category, created_at) VALUES (?, ?, ?, ?, ?)",
		item.ID, item.UserID, item.ItemName, item.Category, item.CreatedAt,
	)
	if err != nil {
		return models.PantryItem{}, fmt.Errorf("creating pantry item: %w", err)
	}
	return item, nil
}

func (repository *SQLitePantryRepository) Delete(ctx context.Context, id string) error {
	_, err := repository.database.ExecContext(ctx, "DELETE FROM pantry_items WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting pantry item: %w", err)
	}
	return nil
}
