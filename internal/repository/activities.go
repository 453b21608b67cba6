package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/temple-keepers/temple-keepers-sub000/internal/models"
)

type ActivityRepository interface {
	Create(ctx context.Context, event models.ActivityEvent) (models.ActivityEvent, error)
	FindByUser(ctx context.Context, userID string) ([]models.ActivityEvent, error)
}

type SQLiteActivityRepository struct {
	database *sql.DB
}

func NewActivityRepository(database *sql.DB) *SQLiteActivityRepository {
	return &SQLiteActivityRepository{database: database}
}

func (repository *SQLiteActivityRepository) Create(ctx context.Context, event models.ActivityEvent) (models.ActivityEvent, error) {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	event.CreatedAt = time.Now()

	_, err := repository.database.ExecContext(ctx,
		"INSERT INTO activity_events (id, user_id, activity, points, created_at) VALUES (?, ?, ?, ?, ?)",
		event.ID, event.UserID, event.Activity, event.Points, event.CreatedAt,
	)
	if err != nil {
		return models.ActivityEvent{}, fmt.Errorf("creating activity event: %w", err)
	}
	return event, nil
}

func (repository *SQLiteActivityRepository) FindByUser(ctx context.Context, userID string) ([]models.ActivityEvent, error) {
	rows, err := repository.database.QueryContext(ctx,
		"SELECT id, user_id, activity, points, created_at FROM activity_events WHERE user_id = ? ORDER BY created_at ASC",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("finding activity events: %w", err)
	}
	defer rows.Close()

	var events []models.ActivityEvent
	for rows.Next() {
		var event models.ActivityEvent
		if err := rows.Scan(&event.ID, &event.UserID, &event.Activity, &event.Points, &event.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning activity event: %w", err)
		}
		events = append(events, event)
	}
	return events, rows.Err()
}
