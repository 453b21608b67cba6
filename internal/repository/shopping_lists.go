package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/temple-keepers/temple-keepers-sub000/internal/models"
)

type ShoppingListRepository interface {
	FindByID(ctx context.Context, id string) (models.ShoppingList, error)
	FindByPlanAndUser(ctx context.Context, planID string, userID string) (models.ShoppingList, error)
	FindByUser(ctx context.Context, userID string) ([]models.ShoppingList, error)
	Upsert(ctx context.Context, list models.ShoppingList) (models.ShoppingList, error)
	UpdateItems(ctx context.Context, id string, items []models.ShoppingListItem) error
	Delete(ctx context.Context, id string) error
}

type SQLiteShoppingListRepository struct {
	database *sql.DB
}

func NewShoppingListRepository(database *sql.DB) *SQLiteShoppingListRepository {
	return &SQLiteShoppingListRepository{database: database}
}

const shoppingListColumns = "id, user_id, meal_plan_id, title, items, created_at, updated_at"

func scanShoppingList(scan func(...any) error) (models.ShoppingList, error) {
	var list models.ShoppingList
	var itemsJSON string
	err := scan(&list.ID, &list.UserID, &list.MealPlanID, &list.Title, &itemsJSON, &list.CreatedAt, &list.UpdatedAt)
	if err != nil {
		return models.ShoppingList{}, err
	}
	if err := json.Unmarshal([]byte(itemsJSON), &list.Items); err != nil {
		return models.ShoppingList{}, fmt.Errorf("unmarshalling shopping list items: %w", err)
	}
	return list, nil
}

func (repository *SQLiteShoppingListRepository) FindByID(ctx context.Context, id string) (models.ShoppingList, error) {
	row := repository.database.QueryRowContext(ctx,
		"SELECT "+shoppingListColumns+" FROM shopping_lists WHERE id = ?", id,
	)
	list, err := scanShoppingList(row.Scan)
	if err != nil {
		return models.ShoppingList{}, fmt.Errorf("finding shopping list by id: %w", err)
	}
	return list, nil
}

func (repository *SQLiteShoppingListRepository) FindByPlanAndUser(ctx context.Context, planID string, userID string) (models.ShoppingList, error) {
	row := repository.database.QueryRowContext(ctx,
		"SELECT "+shoppingListColumns+" FROM shopping_lists WHERE meal_plan_id = ? AND user_id = ?",
		planID, userID,
	)
	list, err := scanShoppingList(row.Scan)
	if err != nil {
		return models.ShoppingList{}, fmt.Errorf("finding shopping list by plan and user: %w", err)
	}
	return list, nil
}

func (repository *SQLiteShoppingListRepository) FindByUser(ctx context.Context, userID string) ([]models.ShoppingList, error) {
	rows, err := repository.database.QueryContext(ctx,
		"SELECT "+shoppingListColumns+" FROM shopping_lists WHERE user_id = ? ORDER BY updated_at DESC",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("finding shopping lists: %w", err)
	}
	defer rows.Close()

	var lists []models.ShoppingList
	for rows.Next() {
		list, err := scanShoppingList(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning shopping list: %w", err)
		}
		lists = append(lists, list)
	}
	return lists, rows.Err()
}

// Upsert inserts a list, or when one already exists for the same plan and
// user, replaces its items and title in place. A plan has at most one
// shopping list per user.
func (repository *SQLiteShoppingListRepository) Upsert(ctx context.Context, list models.ShoppingList) (models.ShoppingList, error) {
	if list.Items == nil {
		list.Items = []models.ShoppingListItem{}
	}
	itemsJSON, err := json.Marshal(list.Items)
	if err != nil {
		return models.ShoppingList{}, fmt.Errorf("marshalling shopping list items: %w", err)
	}

	now := time.Now()
	list.UpdatedAt = now

	if list.MealPlanID != nil {
		existing, err := repository.FindByPlanAndUser(ctx, *list.MealPlanID, list.UserID)
		if err == nil {
			_, err = repository.database.ExecContext(ctx,
				"UPDATE shopping_lists SET title = ?, items = ?, updated_at = ? WHERE id = ?",
				list.Title, string(itemsJSON), now, existing.ID,
			)
			if err != nil {
				return models.ShoppingList{}, fmt.Errorf("updating shopping list: %w", err)
			}
			list.ID = existing.ID
			list.CreatedAt = existing.CreatedAt
			return list, nil
		}
	}

	if list.ID == "" {
		list.ID = uuid.New().String()
	}
	list.CreatedAt = now

	_, err = repository.database.ExecContext(ctx,
		`INSERT INTO shopping_lists (id, user_id, meal_plan_id, title, items, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		list.ID, list.UserID, list.MealPlanID, list.Title, string(itemsJSON), list.CreatedAt, list.UpdatedAt,
	)
	if err != nil {
		return models.ShoppingList{}, fmt.Errorf("inserting shopping list: %w", err)
	}
	return list, nil
}

func (repository *SQLiteShoppingListRepository) UpdateItems(ctx context.Context, id string, items []models.ShoppingListItem) error {
	if items == nil {
		items = []models.ShoppingListItem{}
	}
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshalling shopping list items: %w", err)
	}

	_, err = repository.database.ExecContext(ctx,
		"UPDATE shopping_lists SET items = ?, updated_at = ? WHERE id = ?",
		string(itemsJSON), time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("updating shopping list items: %w", err)
	}
	return nil
}

func (repository *SQLiteShoppingListRepository) Delete(ctx context.Context, id string) error {
	_, err := repository.database.ExecContext(ctx, "DELETE FROM shopping_lists WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting shopping list: %w", err)
	}
	return nil
}
