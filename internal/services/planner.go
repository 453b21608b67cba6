package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/temple-keepers/temple-keepers-sub000/internal/models"
	"github.com/temple-keepers/temple-keepers-sub000/internal/repository"
)

var ErrNoRecipes = errors.New("no recipes available")

const planDaysPerWeek = 7

// minFilteredPool is the smallest pool a dietary-tag filter may leave behind.
// Below this the filter is discarded and the full pool is used instead.
const minFilteredPool = 4

type GeneratePreferences struct {
	DietaryTag string
	MealTypes  []models.MealType
}

// PlannerService fills a weekly meal plan grid from the user's recipe pool,
// avoiding recent repeats per meal type.
type PlannerService struct {
	recipeRepo   repository.RecipeRepository
	mealPlanRepo repository.MealPlanRepository
	points       *PointsService
	rng          *rand.Rand
}

func NewPlannerService(
	recipeRepo repository.RecipeRepository,
	mealPlanRepo repository.MealPlanRepository,
	points *PointsService,
	rng *rand.Rand,
) *PlannerService {
	return &PlannerService{
		recipeRepo:   recipeRepo,
		mealPlanRepo: mealPlanRepo,
		points:       points,
		rng:          rng,
	}
}

// AutoGenerate replaces the plan's days with a freshly generated week. The
// replace is transactional: a failure leaves the previous days intact.
func (service *PlannerService) AutoGenerate(ctx context.Context, planID string, userID string, prefs GeneratePreferences) ([]models.MealPlanDay, error) {
	plan, err := service.mealPlanRepo.FindByID(ctx, planID)
	if err != nil {
		return nil, fmt.Errorf("loading plan: %w", err)
	}

	pool, err := service.recipeRepo.FindForPlanning(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading recipe pool: %w", err)
	}
	if len(pool) == 0 {
		return nil, ErrNoRecipes
	}

	pool = applyDietaryFilter(pool, prefs.DietaryTag)

	mealTypes := prefs.MealTypes
	if len(mealTypes) == 0 {
		mealTypes = []models.MealType{models.MealTypeBreakfast, models.MealTypeLunch, models.MealTypeDinner}
	}

	byType := make(map[models.MealType][]models.Recipe)
	for _, recipe := range pool {
		byType[recipe.MealType] = append(byType[recipe.MealType], recipe)
	}

	var days []models.MealPlanDay
	for _, mealType := range mealTypes {
		typePool := byType[mealType]
		if len(typePool) == 0 {
			// No recipes of this meal type: fall back to the whole pool.
			typePool = pool
		}
		assignments := service.fillWeek(typePool)
		for dayIndex, recipeID := range assignments {
			id := recipeID
			days = append(days, models.MealPlanDay{
				PlanID:    plan.ID,
				DayOfWeek: dayIndex,
				MealType:  mealType,
				RecipeID:  &id,
			})
		}
	}

	if err := service.mealPlanRepo.ReplaceDays(ctx, plan.ID, days); err != nil {
		return nil, fmt.Errorf("replacing plan days: %w", err)
	}

	if service.points != nil {
		if err := service.points.Award(ctx, userID, models.ActivityPlanGenerated); err != nil {
			return nil, fmt.Errorf("awarding plan points: %w", err)
		}
	}

	return service.mealPlanRepo.FindDays(ctx, plan.ID)
}

// applyDietaryFilter keeps recipes carrying the tag, unless that leaves a
// degenerate pool, in which case the filter is dropped entirely.
func applyDietaryFilter(pool []models.Recipe, tag string) []models.Recipe {
	if tag == "" {
		return pool
	}
	var filtered []models.Recipe
	for _, recipe := range pool {
		for _, recipeTag := range recipe.DietaryTags {
			if recipeTag == tag {
				filtered = append(filtered, recipe)
				break
			}
		}
	}
	if len(filtered) < minFilteredPool {
		return pool
	}
	return filtered
}

// fillWeek picks a recipe id for each of the 7 days, preferring recipes not
// used within the recent window.
func (service *PlannerService) fillWeek(pool []models.Recipe) []string {
	recent := newRecentSet(recentWindowSize(len(pool)))
	queue := service.shuffled(pool)

	assignments := make([]string, 0, planDaysPerWeek)
	for day := 0; day < planDaysPerWeek; day++ {
		if len(queue) == 0 {
			queue = service.shuffled(pool)
		}

		picked := ""
		for index, recipe := range queue {
			if !recent.contains(recipe.ID) {
				picked = recipe.ID
				queue = append(queue[:index], queue[index+1:]...)
				break
			}
		}
		if picked == "" {
			if len(queue) > 0 {
				// Everything queued is recent; take the front anyway.
				picked = queue[0].ID
				queue = queue[1:]
			} else {
				picked = pool[service.rng.Intn(len(pool))].ID
			}
		}

		recent.add(picked)
		assignments = append(assignments, picked)
	}
	return assignments
}

func (service *PlannerService) shuffled(pool []models.Recipe) []models.Recipe {
	copied := make([]models.Recipe, len(pool))
	copy(copied, pool)
	service.rng.Shuffle(len(copied), func(i, j int) {
		copied[i], copied[j] = copied[j], copied[i]
	})
	return copied
}

// recentWindowSize caps how many distinct recipe ids count as "too recent to
// repeat": min(floor(pool * 0.6), 4).
func recentWindowSize(poolSize int) int {
	window := poolSize * 6 / 10
	if window > 4 {
		window = 4
	}
	return window
}

// recentSet is a queue-backed set with FIFO eviction at capacity.
type recentSet struct {
	order    []string
	members  map[string]bool
	capacity int
}

func newRecentSet(capacity int) *recentSet {
	return &recentSet{
		members:  make(map[string]bool),
		capacity: capacity,
	}
}

func (set *recentSet) contains(id string) bool {
	return set.members[id]
}

func (set *recentSet) add(id string) {
	if set.capacity <= 0 || set.members[id] {
		return
	}
	set.order = append(set.order, id)
	set.members[id] = true
	if len(set.order) > set.capacity {
		oldest := set.order[0]
		set.order = set.order[1:]
		delete(set.members, oldest)
	}
}
