package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/go-chi/chi/v5"
	"github.com/temple-keepers/temple-keepers-sub000/internal/middleware"
	"github.com/temple-keepers/temple-keepers-sub000/internal/models"
	"github.com/temple-keepers/temple-keepers-sub000/internal/repository"
	"github.com/temple-keepers/temple-keepers-sub000/internal/services"
)

type MealHandler struct {
	mealPlanRepo repository.MealPlanRepository
	planner      *services.PlannerService
}

func NewMealHandler(mealPlanRepo repository.MealPlanRepository, planner *services.PlannerService) *MealHandler {
	return &MealHandler{mealPlanRepo: mealPlanRepo, planner: planner}
}

type planRequest struct {
	WeekStart string `json:"week_start"`
	Title     string `json:"title"`
}

type dayRequest struct {
	DayOfWeek  int             `json:"day_of_week"`
	MealType   models.MealType `json:"meal_type"`
	RecipeID   *string         `json:"recipe_id"`
	CustomName *string         `json:"custom_name"`
}

type generateRequest struct {
	DietaryTag string            `json:"dietary_tag"`
	MealTypes  []models.MealType `json:"meal_types"`
}

type planResponse struct {
	Plan models.MealPlan      `json:"plan"`
	Days []models.MealPlanDay `json:"days"`
}

func (handler *MealHandler) ListPlans(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := middleware.GetUser(ctx)

	plans, err := handler.mealPlanRepo.FindByUser(ctx, user.ID)
	if err != nil {
		slog.Error("listing meal plans", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load meal plans")
		return
	}
	writeJSON(w, http.StatusOK, plans)
}

func (handler *MealHandler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := middleware.GetUser(ctx)

	var request planRequest
	if err := decodeJSON(r, &request); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	weekStart, err := time.Parse("2006-01-02", request.WeekStart)
	if err != nil {
		writeError(w, http.StatusBadRequest, "week_start must be a date (YYYY-MM-DD)")
		return
	}
	if weekStart.Weekday() != time.Monday {
		writeError(w, http.StatusBadRequest, "week_start must be a Monday")
		return
	}

	plan, err := handler.mealPlanRepo.Create(ctx, models.MealPlan{
		UserID:    user.ID,
		WeekStart: request.WeekStart,
		Title:     request.Title,
	})
	if err != nil {
		slog.Error("creating meal plan", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create meal plan")
		return
	}
	writeJSON(w, http.StatusCreated, plan)
}

func (handler *MealHandler) GetPlan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	plan, err := handler.mealPlanRepo.FindByID(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "meal plan not found")
		return
	}
	days, err := handler.mealPlanRepo.FindDays(ctx, plan.ID)
	if err != nil {
		slog.Error("loading plan days", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load plan days")
		return
	}
	writeJSON(w, http.StatusOK, planResponse{Plan: plan, Days: days})
}

func (handler *MealHandler) DeletePlan(w http.ResponseWriter, r *http.Request) {
	if err := handler.mealPlanRepo.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		slog.Error("deleting meal plan", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete meal plan")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (handler *MealHandler) AddDay(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var request dayRequest
	if err := decodeJSON(r, &request); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if request.DayOfWeek < 0 || request.DayOfWeek > 6 {
		writeError(w, http.StatusBadRequest, "day_of_week must be 0-6")
		return
	}
	hasRecipe := request.RecipeID != nil && *request.RecipeID != ""
	hasCustom := request.CustomName != nil && strings.TrimSpace(*request.CustomName) != ""
	if hasRecipe == hasCustom {
		writeError(w, http.StatusBadRequest, "exactly one of recipe_id and custom_name must be set")
		return
	}

	day := models.MealPlanDay{
		PlanID:    chi.URLParam(r, "id"),
		DayOfWeek: request.DayOfWeek,
		MealType:  request.MealType,
	}
	if hasRecipe {
		day.RecipeID = request.RecipeID
	} else {
		day.CustomName = request.CustomName
	}

	created, err := handler.mealPlanRepo.AddDay(ctx, day)
	if err != nil {
		slog.Error("adding plan day", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to add plan day")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (handler *MealHandler) RemoveDay(w http.ResponseWriter, r *http.Request) {
	if err := handler.mealPlanRepo.RemoveDay(r.Context(), chi.URLParam(r, "dayID")); err != nil {
		slog.Error("removing plan day", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to remove plan day")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (handler *MealHandler) MoveDay(w http.ResponseWriter, r *http.Request) {
	var request dayRequest
	if err := decodeJSON(r, &request); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if request.DayOfWeek < 0 || request.DayOfWeek > 6 {
		writeError(w, http.StatusBadRequest, "day_of_week must be 0-6")
		return
	}

	if err := handler.mealPlanRepo.MoveDay(r.Context(), chi.URLParam(r, "dayID"), request.DayOfWeek, request.MealType); err != nil {
		slog.Error("moving plan day", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to move plan day")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (handler *MealHandler) Generate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := middleware.GetUser(ctx)

	var request generateRequest
	if err := decodeJSON(r, &request); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	days, err := handler.planner.AutoGenerate(ctx, chi.URLParam(r, "id"), user.ID, services.GeneratePreferences{
		DietaryTag: request.DietaryTag,
		MealTypes:  request.MealTypes,
	})
	if err != nil {
		if errors.Is(err, services.ErrNoRecipes) {
			writeError(w, http.StatusUnprocessableEntity, "no recipes available")
			return
		}
		slog.Error("auto-generating plan", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to generate plan")
		return
	}
	writeJSON(w, http.StatusOK, days)
}

// ICalExport renders the plan's week as an iCal feed of all-day events, one
// per assigned meal.
func (handler *MealHandler) ICalExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	plan, err := handler.mealPlanRepo.FindByID(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "meal plan not found")
		return
	}
	weekStart, err := time.Parse("2006-01-02", plan.WeekStart)
	if err != nil {
		slog.Error("parsing plan week start", "error", err)
		writeError(w, http.StatusInternalServerError, "invalid plan week start")
		return
	}

	entries, err := handler.mealPlanRepo.FindEntries(ctx, plan.ID)
	if err != nil {
		slog.Error("loading plan entries for ical", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load plan")
		return
	}

	calendar := ics.NewCalendar()
	calendar.SetMethod(ics.MethodPublish)
	calendar.SetProductId("-//Temple Keepers//Meal Planner//EN")
	calendar.SetXWRCalName("Temple Keepers Meals")

	for _, entry := range entries {
		day := entry.Day
		date := weekStart.AddDate(0, 0, day.DayOfWeek)

		name := ""
		if entry.Recipe != nil {
			name = entry.Recipe.Title
		} else if day.CustomName != nil {
			name = *day.CustomName
		}

		event := calendar.AddEvent("meal-" + day.ID + "@temple-keepers")
		event.SetSummary("[" + capitalizeFirst(string(day.MealType)) + "] " + name)
		event.SetAllDayStartAt(date)
		event.SetAllDayEndAt(date.AddDate(0, 0, 1))
		event.SetDtStampTime(day.CreatedAt.UTC())
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=meal-plan.ics")
	w.Write([]byte(calendar.Serialize()))
}

func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
