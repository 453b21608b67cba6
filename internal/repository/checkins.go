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

type CheckInRepository interface {
	Upsert(ctx context.Context, checkIn models.CheckIn) (models.CheckIn, error)
	FindByUserAndDate(ctx context.Context, userID string, date string) (models.CheckIn, error)
	FindByUser(ctx context.Context, userID string, dateFrom string, dateTo string) ([]models.CheckIn, error)
}

type SQLiteCheckInRepository struct {
	database *sql.DB
}

func NewCheckInRepository(database *sql.DB) *SQLiteCheckInRepository {
	return &SQLiteCheckInRepository{database: database}
}

// Upsert records a wellness check-in. One check-in per user per date; a second
// submission for the same date overwrites the first.
func (repository *SQLiteCheckInRepository) Upsert(ctx context.Context, checkIn models.CheckIn) (models.CheckIn, error) {
	if checkIn.ID == "" {
		checkIn.ID = uuid.New().String()
	}
	if checkIn.Symptoms == nil {
		checkIn.Symptoms = []string{}
	}
	symptomsJSON, err := json.Marshal(checkIn.Symptoms)
	if err != nil {
		return models.CheckIn{}, fmt.Errorf("marshalling symptoms: %w", err)
	}

	now := time.Now()
	checkIn.CreatedAt = now
	checkIn.UpdatedAt = now

	_, err = repository.database.ExecContext(ctx,
		`INSERT INTO check_ins (id, user_id, date, mood, energy, symptoms, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, date) DO UPDATE SET
			mood = excluded.mood,
			energy = excluded.energy,
			symptoms = excluded.symptoms,
			notes = excluded.notes,
			updated_at = excluded.updated_at`,
		checkIn.ID, checkIn.UserID, checkIn.Date, checkIn.Mood, checkIn.Energy,
		string(symptomsJSON), checkIn.Notes, checkIn.CreatedAt, checkIn.UpdatedAt,
	)
	if err != nil {
		return models.CheckIn{}, fmt.Errorf("upserting check-in: %w", err)
	}

	return repository.FindByUserAndDate(ctx, checkIn.UserID, checkIn.Date)
}

func (repository *SQLiteCheckInRepository) FindByUserAndDate(ctx context.Context, userID string, date string) (models.CheckIn, error) {
	var checkIn models.CheckIn
	var symptomsJSON string
	err := repository.database.QueryRowContext(ctx,
		`SELECT id, user_id, date, mood, energy, symptoms, notes, created_at, updated_at
		FROM check_ins WHERE user_id = ? AND date = ?`, userID, date,
	).Scan(
		&checkIn.ID, &checkIn.UserID, &checkIn.Date, &checkIn.Mood, &checkIn.Energy,
		&symptomsJSON, &checkIn.Notes, &checkIn.CreatedAt, &checkIn.UpdatedAt,
	)
	if err != nil {
		return models.CheckIn{}, fmt.Errorf("finding check-in: %w", err)
	}
	if err := json.Unmarshal([]byte(symptomsJSON), &checkIn.Symptoms); err != nil {
		return models.CheckIn{}, fmt.Errorf("unmarshalling symptoms: %w", err)
	}
	return checkIn, nil
}

func (repository *SQLiteCheckInRepository) FindByUser(ctx context.Context, userID string, dateFrom string, dateTo string) ([]models.CheckIn, error) {
	query := `SELECT id, user_id, date, mood, energy, symptoms, notes, created_at, updated_at
		FROM check_ins WHERE user_id = ?`
	args := []interface{}{userID}

	if dateFrom != "" {
		query += " AND date >= ?"
		args = append(args, dateFrom)
	}
	if dateTo != "" {
		query += " AND date <= ?"
		args = append(args, dateTo)
	}
	query += " ORDER BY date DESC"

	rows, err := repository.database.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("finding check-ins: %w", err)
	}
	defer rows.Close()

	var checkIns []models.CheckIn
	for rows.Next() {
		var checkIn models.CheckIn
		var symptomsJSON string
		if err := rows.Scan(
			&checkIn.ID, &checkIn.UserID, &checkIn.Date, &checkIn.Mood, &checkIn.Energy,
			&symptomsJSON, &checkIn.Notes, &checkIn.CreatedAt, &checkIn.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning check-in: %w", err)
		}
		if err := json.Unmarshal([]byte(symptomsJSON), &checkIn.Symptoms); err != nil {
			return nil, fmt.Errorf("unmarshalling symptoms: %w", err)
		}
		checkIns = append(checkIns, checkIn)
	}
	return checkIns, rows.Err()
}
