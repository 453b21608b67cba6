package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/temple-keepers/temple-keepers-sub000/internal/models"
	"github.com/temple-keepers/temple-keepers-sub000/internal/repository"
)

var (
	ErrPlanNotFound  = errors.New("meal plan not found")
	ErrItemIndex     = errors.New("shopping list item index out of range")
	ErrEmptyItemName = errors.New("item name is required")
)

// ShoppingService turns a meal plan's recipes into a categorized,
// quantity-merged, pantry-annotated shopping list.
type ShoppingService struct {
	mealPlanRepo repository.MealPlanRepository
	shoppingRepo repository.ShoppingListRepository
	pantryRepo   repository.PantryRepository
	classifier   *Classifier
	points       *PointsService
}

func NewShoppingService(
	mealPlanRepo repository.MealPlanRepository,
	shoppingRepo repository.ShoppingListRepository,
	pantryRepo repository.PantryRepository,
	classifier *Classifier,
	points *PointsService,
) *ShoppingService {
	return &ShoppingService{
		mealPlanRepo: mealPlanRepo,
		shoppingRepo: shoppingRepo,
		pantryRepo:   pantryRepo,
		classifier:   classifier,
		points:       points,
	}
}

// aggregate is the in-progress accumulator for one merge key.
type aggregate struct {
	name    string
	amount  float64
	unit    string
	recipes []string
}

// Generate builds the shopping list for a plan and upserts it, replacing any
// previous list for the same plan and user. Items from matching line items
// (same normalized name and unit) are merged by summing amounts.
func (service *ShoppingService) Generate(ctx context.Context, planID string, userID string) (models.ShoppingList, error) {
	plan, err := service.mealPlanRepo.FindByID(ctx, planID)
	if err != nil {
		return models.ShoppingList{}, ErrPlanNotFound
	}

	entries, err := service.mealPlanRepo.FindEntries(ctx, planID)
	if err != nil {
		return models.ShoppingList{}, fmt.Errorf("loading plan entries: %w", err)
	}

	aggregates := make(map[string]*aggregate)
	var keyOrder []string

	for _, entry := range entries {
		if entry.Recipe == nil {
			continue
		}
		for _, line := range entry.Recipe.Ingredients {
			if strings.TrimSpace(line.Item) == "" {
				continue
			}
			key := normalize(line.Item) + "_" + normalize(line.Unit)
			record, exists := aggregates[key]
			if !exists {
				record = &aggregate{
					name: line.Item,
					unit: line.Unit,
				}
				aggregates[key] = record
				keyOrder = append(keyOrder, key)
			}
			record.amount += float64(line.Amount)
			appendUnique(&record.recipes, entry.Recipe.Title)
		}
	}

	pantry, err := service.pantryRepo.FindByUser(ctx, userID)
	if err != nil {
		return models.ShoppingList{}, fmt.Errorf("loading pantry: %w", err)
	}
	inPantry := make(map[string]bool, len(pantry))
	for _, item := range pantry {
		inPantry[normalize(item.ItemName)] = true
	}

	items := make([]models.ShoppingListItem, 0, len(keyOrder))
	for _, key := range keyOrder {
		record := aggregates[key]
		item := models.ShoppingListItem{
			Name:     record.name,
			Unit:     record.unit,
			Category: service.classifier.Categorize(record.name),
			Recipes:  record.recipes,
		}
		if total := round2(record.amount); total > 0 {
			item.Amount = &total
		}
		// Pantry match is by name only; unit is deliberately ignored.
		if inPantry[normalize(record.name)] {
			item.InPantry = true
		}
		items = append(items, item)
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Category != items[j].Category {
			return items[i].Category < items[j].Category
		}
		return items[i].Name < items[j].Name
	})

	title := plan.Title
	if title == "" {
		title = "Shopping list for week of " + plan.WeekStart
	}

	list := models.ShoppingList{
		UserID:     userID,
		MealPlanID: &plan.ID,
		Title:      title,
		Items:      items,
	}
	saved, err := service.shoppingRepo.Upsert(ctx, list)
	if err != nil {
		return models.ShoppingList{}, fmt.Errorf("saving shopping list: %w", err)
	}

	if service.points != nil {
		if err := service.points.Award(ctx, userID, models.ActivityListGenerated); err != nil {
			return models.ShoppingList{}, fmt.Errorf("awarding list points: %w", err)
		}
	}

	return saved, nil
}

type ManualItem struct {
	Name     string
	Amount   *float64
	Unit     string
	Category models.GroceryCategory
}

// AddManualItem appends a user-added item. It never merges with an existing
// aggregate, even when the name matches.
func (service *ShoppingService) AddManualItem(ctx context.Context, listID string, manual ManualItem) (models.ShoppingList, error) {
	if strings.TrimSpace(manual.Name) == "" {
		return models.ShoppingList{}, ErrEmptyItemName
	}

	list, err := service.shoppingRepo.FindByID(ctx, listID)
	if err != nil {
		return models.ShoppingList{}, fmt.Errorf("loading shopping list: %w", err)
	}

	category := manual.Category
	if category == "" {
		category = service.classifier.Categorize(manual.Name)
	}

	list.Items = append(list.Items, models.ShoppingListItem{
		Name:     manual.Name,
		Amount:   manual.Amount,
		Unit:     manual.Unit,
		Category: category,
		Recipes:  []string{"Manual"},
		IsManual: true,
	})

	if err := service.shoppingRepo.UpdateItems(ctx, list.ID, list.Items); err != nil {
		return models.ShoppingList{}, fmt.Errorf("saving manual item: %w", err)
	}
	return list, nil
}

// ToggleItem flips the checked flag of the item at the given position.
func (service *ShoppingService) ToggleItem(ctx context.Context, listID string, index int) (models.ShoppingList, error) {
	list, err := service.shoppingRepo.FindByID(ctx, listID)
	if err != nil {
		return models.ShoppingList{}, fmt.Errorf("loading shopping list: %w", err)
	}
	if index < 0 || index >= len(list.Items) {
		return models.ShoppingList{}, ErrItemIndex
	}

	list.Items[index].Checked = !list.Items[index].Checked
	if err := service.shoppingRepo.UpdateItems(ctx, list.ID, list.Items); err != nil {
		return models.ShoppingList{}, fmt.Errorf("saving checked state: %w", err)
	}
	return list, nil
}

// RemoveItem deletes the item at the given position.
func (service *ShoppingService) RemoveItem(ctx context.Context, listID string, index int) (models.ShoppingList, error) {
	list, err := service.shoppingRepo.FindByID(ctx, listID)
	if err != nil {
		return models.ShoppingList{}, fmt.Errorf("loading shopping list: %w", err)
	}
	if index < 0 || index >= len(list.Items) {
		return models.ShoppingList{}, ErrItemIndex
	}

	list.Items = append(list.Items[:index], list.Items[index+1:]...)
	if err := service.shoppingRepo.UpdateItems(ctx, list.ID, list.Items); err != nil {
		return models.ShoppingList{}, fmt.Errorf("saving item removal: %w", err)
	}
	return list, nil
}

// ReplaceItems overwrites the stored item array wholesale. No re-aggregation.
func (service *ShoppingService) ReplaceItems(ctx context.Context, listID string, items []models.ShoppingListItem) error {
	if _, err := service.shoppingRepo.FindByID(ctx, listID); err != nil {
		return fmt.Errorf("loading shopping list: %w", err)
	}
	return service.shoppingRepo.UpdateItems(ctx, listID, items)
}

func normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}

func appendUnique(values *[]string, value string) {
	for _, existing := range *values {
		if existing == value {
			return
		}
	}
	*values = append(*values, value)
}
