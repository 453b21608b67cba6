package services

import (
	"context"
	"fmt"

	"github.com/temple-keepers/temple-keepers-sub000/internal/models"
	"github.com/temple-keepers/temple-keepers-sub000/internal/repository"
)

// PointsConfig is immutable gamification data loaded once at startup and
// passed by reference; nothing mutates it at runtime.
type PointsConfig struct {
	// Table maps an activity to the points it awards.
	Table map[models.Activity]int
	// LevelThresholds[n] is the total-point floor of level n+2; level 1
	// starts at zero.
	LevelThresholds []int
	Badges          []BadgeRule
}

// BadgeRule grants a badge once an activity has occurred Count times.
type BadgeRule struct {
	Code     string
	Name     string
	Activity models.Activity
	Count    int
}

func DefaultPointsConfig() PointsConfig {
	return PointsConfig{
		Table: map[models.Activity]int{
			models.ActivityCheckIn:       10,
			models.ActivityPlanGenerated: 25,
			models.ActivityListGenerated: 15,
			models.ActivityRecipeCreated: 20,
		},
		LevelThresholds: []int{100, 250, 500, 1000, 2000},
		Badges: []BadgeRule{
			{Code: "first-checkin", Name: "First Steps", Activity: models.ActivityCheckIn, Count: 1},
			{Code: "week-of-checkins", Name: "Faithful Week", Activity: models.ActivityCheckIn, Count: 7},
			{Code: "first-plan", Name: "Planner", Activity: models.ActivityPlanGenerated, Count: 1},
			{Code: "meal-prepper", Name: "Meal Prepper", Activity: models.ActivityPlanGenerated, Count: 5},
			{Code: "first-list", Name: "List Maker", Activity: models.ActivityListGenerated, Count: 1},
			{Code: "recipe-builder", Name: "Recipe Builder", Activity: models.ActivityRecipeCreated, Count: 3},
		},
	}
}

type PointsService struct {
	activityRepo repository.ActivityRepository
	config       PointsConfig
}

func NewPointsService(activityRepo repository.ActivityRepository, config PointsConfig) *PointsService {
	return &PointsService{activityRepo: activityRepo, config: config}
}

// Award records one occurrence of an activity. Unknown activities award zero
// points but are still recorded.
func (service *PointsService) Award(ctx context.Context, userID string, activity models.Activity) error {
	_, err := service.activityRepo.Create(ctx, models.ActivityEvent{
		UserID:   userID,
		Activity: activity,
		Points:   service.config.Table[activity],
	})
	if err != nil {
		return fmt.Errorf("recording activity: %w", err)
	}
	return nil
}

// Progress folds the user's activity history into totals, level, and earned
// badges in a single deterministic pass.
func (service *PointsService) Progress(ctx context.Context, userID string) (models.Progress, error) {
	events, err := service.activityRepo.FindByUser(ctx, userID)
	if err != nil {
		return models.Progress{}, fmt.Errorf("loading activity history: %w", err)
	}

	total := 0
	counts := make(map[models.Activity]int)
	for _, event := range events {
		total += event.Points
		counts[event.Activity]++
	}

	level := 1
	nextAt := 0
	for _, threshold := range service.config.LevelThresholds {
		if total >= threshold {
			level++
			continue
		}
		nextAt = threshold
		break
	}

	badges := []models.Badge{}
	for _, rule := range service.config.Badges {
		if counts[rule.Activity] >= rule.Count {
			badges = append(badges, models.Badge{Code: rule.Code, Name: rule.Name})
		}
	}

	return models.Progress{
		TotalPoints: total,
		Level:       level,
		NextLevelAt: nextAt,
		Badges:      badges,
	}, nil
}
