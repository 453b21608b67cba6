package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/temple-keepers/temple-keepers-sub000/internal/middleware"
	"github.com/temple-keepers/temple-keepers-sub000/internal/models"
	"github.com/temple-keepers/temple-keepers-sub000/internal/repository"
	"github.com/temple-keepers/temple-keepers-sub000/internal/services"
)

type RecipeHandler struct {
	recipeRepo   repository.RecipeRepository
	mealPlanRepo repository.MealPlanRepository
	points       *services.PointsService
}

func NewRecipeHandler(recipeRepo repository.RecipeRepository, mealPlanRepo repository.MealPlanRepository, points *services.PointsService) *RecipeHandler {
	return &RecipeHandler{recipeRepo: recipeRepo, mealPlanRepo: mealPlanRepo, points: points}
}

type recipeRequest struct {
	Title        string                  `json:"title"`
	MealType     models.MealType         `json:"meal_type"`
	DietaryTags  []string                `json:"dietary_tags"`
	Ingredients  []models.IngredientLine `json:"ingredients"`
	Instructions string                  `json:"instructions"`
	Servings     *int                    `json:"servings"`
	PrepMinutes  *int                    `json:"prep_minutes"`
	CookMinutes  *int                    `json:"cook_minutes"`
	TotalMinutes *int                    `json:"total_minutes"`
	IsPublished  bool                    `json:"is_published"`
}

func (handler *RecipeHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	filter := repository.RecipeFilter{}

	if mealType := r.URL.Query().Get("meal_type"); mealType != "" {
		mt := models.MealType(mealType)
		filter.MealType = &mt
	}
	if r.URL.Query().Get("mine") == "true" {
		filter.OwnerID = middleware.GetUser(ctx).ID
	}

	recipes, err := handler.recipeRepo.FindAll(ctx, filter)
	if err != nil {
		slog.Error("listing recipes", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load recipes")
		return
	}
	writeJSON(w, http.StatusOK, recipes)
}

func (handler *RecipeHandler) Get(w http.ResponseWriter, r *http.Request) {
	recipe, err := handler.recipeRepo.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "recipe not found")
		return
	}
	writeJSON(w, http.StatusOK, recipe)
}

func (handler *RecipeHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := middleware.GetUser(ctx)

	var request recipeRequest
	if err := decodeJSON(r, &request); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if request.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	recipe, err := handler.recipeRepo.Create(ctx, models.Recipe{
		Title:           request.Title,
		MealType:        request.MealType,
		DietaryTags:     request.DietaryTags,
		Ingredients:     request.Ingredients,
		Instructions:    request.Instructions,
		Servings:        request.Servings,
		PrepMinutes:     request.PrepMinutes,
		CookMinutes:     request.CookMinutes,
		TotalMinutes:    request.TotalMinutes,
		IsPublished:     request.IsPublished,
		CreatedByUserID: user.ID,
	})
	if err != nil {
		slog.Error("creating recipe", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create recipe")
		return
	}

	if err := handler.points.Award(ctx, user.ID, models.ActivityRecipeCreated); err != nil {
		slog.Error("awarding recipe points", "error", err)
	}

	writeJSON(w, http.StatusCreated, recipe)
}

func (handler *RecipeHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	recipe, err := handler.recipeRepo.FindByID(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "recipe not found")
		return
	}

	var request recipeRequest
	if err := decodeJSON(r, &request); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	recipe.Title = request.Title
	recipe.MealType = request.MealType
	recipe.DietaryTags = request.DietaryTags
	recipe.Ingredients = request.Ingredients
	recipe.Instructions = request.Instructions
	recipe.Servings = request.Servings
	recipe.PrepMinutes = request.PrepMinutes
	recipe.CookMinutes = request.CookMinutes
	recipe.TotalMinutes = request.TotalMinutes
	recipe.IsPublished = request.IsPublished

	if err := handler.recipeRepo.Update(ctx, recipe); err != nil {
		slog.Error("updating recipe", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update recipe")
		return
	}
	writeJSON(w, http.StatusOK, recipe)
}

func (handler *RecipeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	// Plan days referencing the recipe must go first; the slot cannot hold a
	// dangling reference.
	if err := handler.mealPlanRepo.DeleteDaysByRecipe(ctx, id); err != nil {
		slog.Error("clearing plan days for recipe", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete recipe")
		return
	}
	if err := handler.recipeRepo.Delete(ctx, id); err != nil {
		slog.Error("deleting recipe", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete recipe")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
