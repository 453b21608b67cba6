package models

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

type User struct {
	ID        string
	Email     string
	Name      string
	Role      Role
	CreatedAt time.Time
	UpdatedAt time.Time
}

type APIToken struct {
	ID              string
	Name            string
	TokenHash       string
	Scope           string
	CreatedByUserID string
	ExpiresAt       *time.Time
	CreatedAt       time.Time
}

type MealType string

const (
	MealTypeBreakfast MealType = "breakfast"
	MealTypeLunch     MealType = "lunch"
	MealTypeDinner    MealType = "dinner"
	MealTypeSnack     MealType = "snack"
	MealTypeDessert   MealType = "dessert"
)

// PlannableMealTypes are the meal types the auto-generator will fill.
// Dessert recipes can be stored but are never scheduled.
var PlannableMealTypes = []MealType{MealTypeBreakfast, MealTypeLunch, MealTypeDinner, MealTypeSnack}

type GroceryCategory string

const (
	CategoryProduce   GroceryCategory = "Produce"
	CategoryProtein   GroceryCategory = "Protein"
	CategoryDairy     GroceryCategory = "Dairy"
	CategoryGrains    GroceryCategory = "Grains & Pasta"
	CategoryCannedDry GroceryCategory = "Canned & Dry"
	CategoryOils      GroceryCategory = "Oils & Condiments"
	CategorySpices    GroceryCategory = "Spices"
	CategoryNutsSeeds GroceryCategory = "Nuts & Seeds"
	CategoryOther     GroceryCategory = "Other"
)

// Quantity is an ingredient amount as stored in recipe JSON. Source data is
// messy: amounts arrive as numbers, numeric strings, or nothing at all.
// Anything unparsable decodes to zero rather than failing the whole recipe.
type Quantity float64

func (q *Quantity) UnmarshalJSON(data []byte) error {
	var number float64
	if err := json.Unmarshal(data, &number); err == nil {
		*q = Quantity(number)
		return nil
	}
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(text), 64); err == nil {
			*q = Quantity(parsed)
			return nil
		}
	}
	*q = 0
	return nil
}

func (q Quantity) MarshalJSON() ([]byte, error) {
	return json.Marshal(float64(q))
}

type IngredientLine struct {
	Amount Quantity `json:"amount"`
	Unit   string   `json:"unit"`
	Item   string   `json:"item"`
}

type Recipe struct {
	ID              string
	Title           string
	MealType        MealType
	DietaryTags     []string
	Ingredients     []IngredientLine
	Instructions    string
	Servings        *int
	PrepMinutes     *int
	CookMinutes     *int
	TotalMinutes    *int
	IsPublished     bool
	CreatedByUserID string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type MealPlan struct {
	ID        string
	UserID    string
	WeekStart string
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MealPlanDay is a single slot assignment within a weekly plan. Exactly one of
// RecipeID and CustomName is set. Multiple entries may share the same
// (day, meal type) slot.
type MealPlanDay struct {
	ID         string
	PlanID     string
	DayOfWeek  int
	MealType   MealType
	RecipeID   *string
	CustomName *string
	CreatedAt  time.Time
}

// PlanEntry joins a plan day with its recipe, when one is attached.
type PlanEntry struct {
	Day    MealPlanDay
	Recipe *Recipe
}

type PantryItem struct {
	ID        string
	UserID    string
	ItemName  string
	Category  GroceryCategory
	CreatedAt time.Time
}

type ShoppingListItem struct {
	Name     string          `json:"name"`
	Amount   *float64        `json:"amount"`
	Unit     string          `json:"unit"`
	Category GroceryCategory `json:"category"`
	Checked  bool            `json:"checked"`
	Recipes  []string        `json:"recipes"`
	IsManual bool            `json:"isManual,omitempty"`
	InPantry bool            `json:"inPantry,omitempty"`
}

type ShoppingList struct {
	ID         string
	UserID     string
	MealPlanID *string
	Title      string
	Items      []ShoppingListItem
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type CheckIn struct {
	ID        string
	UserID    string
	Date      string
	Mood      int
	Energy    int
	Symptoms  []string
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Devotional struct {
	ID        string
	Date      string
	Title     string
	Scripture string
	Body      string
	CreatedAt time.Time
}

type Activity string

const (
	ActivityCheckIn       Activity = "check_in"
	ActivityPlanGenerated Activity = "plan_generated"
	ActivityListGenerated Activity = "list_generated"
	ActivityRecipeCreated Activity = "recipe_created"
)

type ActivityEvent struct {
	ID        string
	UserID    string
	Activity  Activity
	Points    int
	CreatedAt time.Time
}

type Badge struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type Progress struct {
	TotalPoints int     `json:"total_points"`
	Level       int     `json:"level"`
	NextLevelAt int     `json:"next_level_at"`
	Badges      []Badge `json:"badges"`
}
