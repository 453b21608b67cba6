package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/temple-keepers/temple-keepers-sub000/internal/models"
)

type MealPlanRepository interface {
	Create(ctx context.Context, plan models.MealPlan) (models.MealPlan, error)
	FindByID(ctx context.Context, id string) (models.MealPlan, error)
	FindByUser(ctx context.Context, userID string) ([]models.MealPlan, error)
	UpdateTitle(ctx context.Context, id string, title string) error
	Delete(ctx context.Context, id string) error

	AddDay(ctx context.Context, day models.MealPlanDay) (models.MealPlanDay, error)
	RemoveDay(ctx context.Context, dayID string) error
	MoveDay(ctx context.Context, dayID string, dayOfWeek int, mealType models.MealType) error
	FindDays(ctx context.Context, planID string) ([]models.MealPlanDay, error)
	FindEntries(ctx context.Context, planID string) ([]models.PlanEntry, error)
	ReplaceDays(ctx context.Context, planID string, days []models.MealPlanDay) error
	DeleteDaysByRecipe(ctx context.Context, recipeID string) error
}

type SQLiteMealPlanRepository struct {
	database *sql.DB
}

func NewMealPlanRepository(database *sql.DB) *SQLiteMealPlanRepository {
	return &SQLiteMealPlanRepository{database: database}
}

func (repository *SQLiteMealPlanRepository) Create(ctx context.Context, plan models.MealPlan) (models.MealPlan, error) {
	if plan.ID == "" {
		plan.ID = uuid.New().String()
	}
	now := time.Now()
	plan.CreatedAt = now
	plan.UpdatedAt = now

	_, err := repository.database.ExecContext(ctx,
		`INSERT INTO meal_plans (id, user_id, week_start, title, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		plan.ID, plan.UserID, plan.WeekStart, plan.Title, plan.CreatedAt, plan.UpdatedAt,
	)
	if err != nil {
		return models.MealPlan{}, fmt.Errorf("creating meal plan: %w", err)
	}
	return plan, nil
}

func (repository *SQLiteMealPlanRepository) FindByID(ctx context.Context, id string) (models.MealPlan, error) {
	var plan models.MealPlan
	err := repository.database.QueryRowContext(ctx,
		"SELECT id, user_id, week_start, title, created_at, updated_at FROM meal_plans WHERE id = ?", id,
	).Scan(&plan.ID, &plan.UserID, &plan.WeekStart, &plan.Title, &plan.CreatedAt, &plan.UpdatedAt)
	if err != nil {
		return models.MealPlan{}, fmt.Errorf("finding meal plan by id: %w", err)
	}
	return plan, nil
}

func (repository *SQLiteMealPlanRepository) FindByUser(ctx context.Context, userID string) ([]models.MealPlan, error) {
	rows, err := repository.database.QueryContext(ctx,
		"SELECT id, user_id, week_start, title, created_at, updated_at FROM meal_plans WHERE user_id = ? ORDER BY week_start DESC",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("finding meal plans: %w", err)
	}
	defer rows.Close()

	var plans []models.MealPlan
	for rows.Next() {
		var plan models.MealPlan
		if err := rows.Scan(&plan.ID, &plan.UserID, &plan.WeekStart, &plan.Title, &plan.CreatedAt, &plan.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning meal plan: %w", err)
		}
		plans = append(plans, plan)
	}
	return plans, rows.Err()
}

func (repository *SQLiteMealPlanRepository) UpdateTitle(ctx context.Context, id string, title string) error {
	_, err := repository.database.ExecContext(ctx,
		"UPDATE meal_plans SET title = ?, updated_at = ? WHERE id = ?",
		title, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("updating meal plan title: %w", err)
	}
	return nil
}

func (repository *SQLiteMealPlanRepository) Delete(ctx context.Context, id string) error {
	_, err := repository.database.ExecContext(ctx, "DELETE FROM meal_plans WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting meal plan: %w", err)
	}
	return nil
}

func (repository *SQLiteMealPlanRepository) AddDay(ctx context.Context, day models.MealPlanDay) (models.MealPlanDay, error) {
	if day.ID == "" {
		day.ID = uuid.New().String()
	}
	day.CreatedAt = time.Now()

	_, err := repository.database.ExecContext(ctx,
		`INSERT INTO meal_plan_days (id, plan_id, day_of_week, meal_type, recipe_id, custom_name, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		day.ID, day.PlanID, day.DayOfWeek, day.MealType, day.RecipeID, day.CustomName, day.CreatedAt,
	)
	if err != nil {
		return models.MealPlanDay{}, fmt.Errorf("adding meal plan day: %w", err)
	}
	return day, nil
}

func (repository *SQLiteMealPlanRepository) RemoveDay(ctx context.Context, dayID string) error {
	_, err := repository.database.ExecContext(ctx, "DELETE FROM meal_plan_days WHERE id = ?", dayID)
	if err != nil {
		return fmt.Errorf("removing meal plan day: %w", err)
	}
	return nil
}

func (repository *SQLiteMealPlanRepository) MoveDay(ctx context.Context, dayID string, dayOfWeek int, mealType models.MealType) error {
	_, err := repository.database.ExecContext(ctx,
		"UPDATE meal_plan_days SET day_of_week = ?, meal_type = ? WHERE id = ?",
		dayOfWeek, mealType, dayID,
	)
	if err != nil {
		return fmt.Errorf("moving meal plan day: %w", err)
	}
	return nil
}

func (repository *SQLiteMealPlanRepository) FindDays(ctx context.Context, planID string) ([]models.MealPlanDay, error) {
	rows, err := repository.database.QueryContext(ctx,
		`SELECT id, plan_id, day_of_week, meal_type, recipe_id, custom_name, created_at
		FROM meal_plan_days WHERE plan_id = ?
		ORDER BY day_of_week ASC,
			CASE meal_type WHEN 'breakfast' THEN 1 WHEN 'lunch' THEN 2 WHEN 'dinner' THEN 3 ELSE 4 END`,
		planID,
	)
	if err != nil {
		return nil, fmt.Errorf("finding meal plan days: %w", err)
	}
	defer rows.Close()

	var days []models.MealPlanDay
	for rows.Next() {
		var day models.MealPlanDay
		if err := rows.Scan(&day.ID, &day.PlanID, &day.DayOfWeek, &day.MealType, &day.RecipeID, &day.CustomName, &day.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning meal plan day: %w", err)
		}
		days = append(days, day)
	}
	return days, rows.Err()
}

// FindEntries returns the plan's days joined with their recipes. Days that
// carry a custom meal name come back with a nil Recipe.
func (repository *SQLiteMealPlanRepository) FindEntries(ctx context.Context, planID string) ([]models.PlanEntry, error) {
	days, err := repository.FindDays(ctx, planID)
	if err != nil {
		return nil, err
	}

	recipeRepo := NewRecipeRepository(repository.database)
	recipeCache := make(map[string]models.Recipe)

	var entries []models.PlanEntry
	for _, day := range days {
		entry := models.PlanEntry{Day: day}
		if day.RecipeID != nil {
			recipe, ok := recipeCache[*day.RecipeID]
			if !ok {
				recipe, err = recipeRepo.FindByID(ctx, *day.RecipeID)
				if err != nil {
					return nil, fmt.Errorf("loading recipe for plan day: %w", err)
				}
				recipeCache[*day.RecipeID] = recipe
			}
			entry.Recipe = &recipe
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// ReplaceDays clears the plan's existing days and inserts the new set in a
// single transaction, so a failed insert cannot leave the plan empty.
func (repository *SQLiteMealPlanRepository) ReplaceDays(ctx context.Context, planID string, days []models.MealPlanDay) error {
	transaction, err := repository.database.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning replace-days transaction: %w", err)
	}
	defer transaction.Rollback()

	if _, err := transaction.ExecContext(ctx, "DELETE FROM meal_plan_days WHERE plan_id = ?", planID); err != nil {
		return fmt.Errorf("clearing meal plan days: %w", err)
	}

	now := time.Now()
	for _, day := range days {
		if day.ID == "" {
			day.ID = uuid.New().String()
		}
		if _, err := transaction.ExecContext(ctx,
			`INSERT INTO meal_plan_days (id, plan_id, day_of_week, meal_type, recipe_id, custom_name, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			day.ID, planID, day.DayOfWeek, day.MealType, day.RecipeID, day.CustomName, now,
		); err != nil {
			return fmt.Errorf("inserting meal plan day: %w", err)
		}
	}

	if _, err := transaction.ExecContext(ctx,
		"UPDATE meal_plans SET updated_at = ? WHERE id = ?", now, planID,
	); err != nil {
		return fmt.Errorf("touching meal plan: %w", err)
	}

	if err := transaction.Commit(); err != nil {
		return fmt.Errorf("committing replace-days transaction: %w", err)
	}
	return nil
}

func (repository *SQLiteMealPlanRepository) DeleteDaysByRecipe(ctx context.Context, recipeID string) error {
	_, err := repository.database.ExecContext(ctx,
		"DELETE FROM meal_plan_days WHERE recipe_id = ?", recipeID,
	)
	if err != nil {
		return fmt.Errorf("deleting meal plan days by recipe: %w", err)
	}
	return nil
}
