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

type RecipeRepository interface {
	FindByID(ctx context.Context, id string) (models.Recipe, error)
	FindAll(ctx context.Context, filter RecipeFilter) ([]models.Recipe, error)
	FindForPlanning(ctx context.Context, userID string) ([]models.Recipe, error)
	Create(ctx context.Context, recipe models.Recipe) (models.Recipe, error)
	Update(ctx context.Context, recipe models.Recipe) error
	Delete(ctx context.Context, id string) error
}

type RecipeFilter struct {
	MealType *models.MealType
	OwnerID  string
}

type SQLiteRecipeRepository struct {
	database *sql.DB
}

func NewRecipeRepository(database *sql.DB) *SQLiteRecipeRepository {
	return &SQLiteRecipeRepository{database: database}
}

const recipeColumns = `id, title, meal_type, dietary_tags, ingredients, instructions,
	servings, prep_minutes, cook_minutes, total_minutes, is_published,
	created_by_user_id, created_at, updated_at`

func scanRecipe(scan func(...any) error) (models.Recipe, error) {
	var recipe models.Recipe
	var tagsJSON, ingredientsJSON string
	err := scan(
		&recipe.ID, &recipe.Title, &recipe.MealType, &tagsJSON, &ingredientsJSON,
		&recipe.Instructions, &recipe.Servings, &recipe.PrepMinutes, &recipe.CookMinutes,
		&recipe.TotalMinutes, &recipe.IsPublished, &recipe.CreatedByUserID,
		&recipe.CreatedAt, &recipe.UpdatedAt,
	)
	if err != nil {
		return models.Recipe{}, err
	}
	if err := json.Unmarshal([]byte(tagsJSON), &recipe.DietaryTags); err != nil {
		return models.Recipe{}, fmt.Errorf("unmarshalling dietary tags: %w", err)
	}
	if err := json.Unmarshal([]byte(ingredientsJSON), &recipe.Ingredients); err != nil {
		return models.Recipe{}, fmt.Errorf("unmarshalling ingredients: %w", err)
	}
	return recipe, nil
}

func (repository *SQLiteRecipeRepository) FindByID(ctx context.Context, id string) (models.Recipe, error) {
	row := repository.database.QueryRowContext(ctx,
		"SELECT "+recipeColumns+" FROM recipes WHERE id = ?", id,
	)
	recipe, err := scanRecipe(row.Scan)
	if err != nil {
		return models.Recipe{}, fmt.Errorf("finding recipe by id: %w", err)
	}
	return recipe, nil
}

func (repository *SQLiteRecipeRepository) FindAll(ctx context.Context, filter RecipeFilter) ([]models.Recipe, error) {
	query := "SELECT " + recipeColumns + " FROM recipes WHERE 1=1"
	var args []interface{}

	if filter.MealType != nil {
		query += " AND meal_type = ?"
		args = append(args, *filter.MealType)
	}
	if filter.OwnerID != "" {
		query += " AND created_by_user_id = ?"
		args = append(args, filter.OwnerID)
	}
	query += " ORDER BY title ASC"

	rows, err := repository.database.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("finding recipes: %w", err)
	}
	defer rows.Close()

	return collectRecipes(rows)
}

// FindForPlanning returns the recipes visible to a user when generating a
// plan: their own plus anything published.
func (repository *SQLiteRecipeRepository) FindForPlanning(ctx context.Context, userID string) ([]models.Recipe, error) {
	rows, err := repository.database.QueryContext(ctx,
		"SELECT "+recipeColumns+" FROM recipes WHERE created_by_user_id = ? OR is_published = 1 ORDER BY title ASC",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("finding recipes for planning: %w", err)
	}
	defer rows.Close()

	return collectRecipes(rows)
}

func collectRecipes(rows *sql.Rows) ([]models.Recipe, error) {
	var recipes []models.Recipe
	for rows.Next() {
		recipe, err := scanRecipe(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning recipe: %w", err)
		}
		recipes = append(recipes, recipe)
	}
	return recipes, rows.Err()
}

func (repository *SQLiteRecipeRepository) Create(ctx context.Context, recipe models.Recipe) (models.Recipe, error) {
	if recipe.ID == "" {
		recipe.ID = uuid.New().String()
	}
	now := time.Now()
	recipe.CreatedAt = now
	recipe.UpdatedAt = now

	if recipe.DietaryTags == nil {
		recipe.DietaryTags = []string{}
	}
	if recipe.Ingredients == nil {
		recipe.Ingredients = []models.IngredientLine{}
	}

	tagsJSON, err := json.Marshal(recipe.DietaryTags)
	if err != nil {
		return models.Recipe{}, fmt.Errorf("marshalling dietary tags: %w", err)
	}
	ingredientsJSON, err := json.Marshal(recipe.Ingredients)
	if err != nil {
		return models.Recipe{}, fmt.Errorf("marshalling ingredients: %w", err)
	}

	_, err = repository.database.ExecContext(ctx,
		`INSERT INTO recipes (id, title, meal_type, dietary_tags, ingredients, instructions,
			servings, prep_minutes, cook_minutes, total_minutes, is_published,
			created_by_user_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		recipe.ID, recipe.Title, recipe.MealType, string(tagsJSON), string(ingredientsJSON),
		recipe.Instructions, recipe.Servings, recipe.PrepMinutes, recipe.CookMinutes,
		recipe.TotalMinutes, recipe.IsPublished, recipe.CreatedByUserID,
		recipe.CreatedAt, recipe.UpdatedAt,
	)
	if err != nil {
		return models.Recipe{}, fmt.Errorf("creating recipe: %w", err)
	}
	return recipe, nil
}

func (repository *SQLiteRecipeRepository) Update(ctx context.Context, recipe models.Recipe) error {
	recipe.UpdatedAt = time.Now()

	if recipe.DietaryTags == nil {
		recipe.DietaryTags = []string{}
	}
	if recipe.Ingredients == nil {
		recipe.Ingredients = []models.IngredientLine{}
	}

	tagsJSON, err := json.Marshal(recipe.DietaryTags)
	if err != nil {
		return fmt.Errorf("marshalling dietary tags: %w", err)
	}
	ingredientsJSON, err := json.Marshal(recipe.Ingredients)
	if err != nil {
		return fmt.Errorf("marshalling ingredients: %w", err)
	}

	_, err = repository.database.ExecContext(ctx,
		`UPDATE recipes SET title = ?, meal_type = ?, dietary_tags = ?, ingredients = ?,
			instructions = ?, servings = ?, prep_minutes = ?, cook_minutes = ?,
			total_minutes = ?, is_published = ?, updated_at = ?
		WHERE id = ?`,
		recipe.Title, recipe.MealType, string(tagsJSON), string(ingredientsJSON),
		recipe.Instructions, recipe.Servings, recipe.PrepMinutes, recipe.CookMinutes,
		recipe.TotalMinutes, recipe.IsPublished, recipe.UpdatedAt, recipe.ID,
	)
	if err != nil {
		return fmt.Errorf("updating recipe: %w", err)
	}
	return nil
}

func (repository *SQLiteRecipeRepository) Delete(ctx context.Context, id string) error {
	_, err := repository.database.ExecContext(ctx, "DELETE FROM recipes WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting recipe: %w", err)
	}
	return nil
}
