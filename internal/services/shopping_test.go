package services_test

import (
	"context"
	"testing"

	"github.com/temple-keepers/temple-keepers-sub000/internal/models"
	"github.com/temple-keepers/temple-keepers-sub000/internal/repository"
	"github.com/temple-keepers/temple-keepers-sub000/internal/services"
	"github.com/temple-keepers/temple-keepers-sub000/internal/testutil"
)

type shoppingFixture struct {
	service      *services.ShoppingService
	userRepo     *repository.SQLiteUserRepository
	recipeRepo   *repository.SQLiteRecipeRepository
	mealPlanRepo *repository.SQLiteMealPlanRepository
	pantryRepo   *repository.SQLitePantryRepository
	shoppingRepo *repository.SQLiteShoppingListRepository
}

func setupShopping(t *testing.T) shoppingFixture {
	t.Helper()
	db := testutil.NewTestDatabase(t)
	fixture := shoppingFixture{
		userRepo:     repository.NewUserRepository(db),
		recipeRepo:   repository.NewRecipeRepository(db),
		mealPlanRepo: repository.NewMealPlanRepository(db),
		pantryRepo:   repository.NewPantryRepository(db),
		shoppingRepo: repository.NewShoppingListRepository(db),
	}
	classifier := services.NewClassifier(services.DefaultKeywords())
	fixture.service = services.NewShoppingService(
		fixture.mealPlanRepo, fixture.shoppingRepo, fixture.pantryRepo, classifier, nil,
	)
	return fixture
}

func (fixture shoppingFixture) createUser(t *testing.T) models.User {
	t.Helper()
	user, err := fixture.userRepo.Create(context.Background(), models.User{
		Email: "shopper@test.com",
		Name:  "Shopper",
	})
	if err != nil {
		t.Fatalf("creating user: %v", err)
	}
	return user
}

func (fixture shoppingFixture) createRecipe(t *testing.T, userID string, title string, ingredients []models.IngredientLine) models.Recipe {
	t.Helper()
	recipe, err := fixture.recipeRepo.Create(context.Background(), models.Recipe{
		Title:           title,
		MealType:        models.MealTypeDinner,
		Ingredients:     ingredients,
		CreatedByUserID: userID,
	})
	if err != nil {
		t.Fatalf("creating recipe %s: %v", title, err)
	}
	return recipe
}

func (fixture shoppingFixture) createPlanWithRecipes(t *testing.T, userID string, recipes ...models.Recipe) models.MealPlan {
	t.Helper()
	ctx := context.Background()
	plan, err := fixture.mealPlanRepo.Create(ctx, models.MealPlan{UserID: userID, WeekStart: "2026-08-24"})
	if err != nil {
		t.Fatalf("creating plan: %v", err)
	}
	for i, recipe := range recipes {
		id := recipe.ID
		if _, err := fixture.mealPlanRepo.AddDay(ctx, models.MealPlanDay{
			PlanID:    plan.ID,
			DayOfWeek: i % 7,
			MealType:  models.MealTypeDinner,
			RecipeID:  &id,
		}); err != nil {
			t.Fatalf("adding plan day: %v", err)
		}
	}
	return plan
}

func TestGenerate_MergesMatchingLineItems(t *testing.T) {
	fixture := setupShopping(t)
	ctx := context.Background()
	user := fixture.createUser(t)

	recipeA := fixture.createRecipe(t, user.ID, "Recipe A title", []models.IngredientLine{
		{Amount: 2, Unit: "cups", Item: "Rice"},
	})
	recipeB := fixture.createRecipe(t, user.ID, "Recipe B title", []models.IngredientLine{
		{Amount: 1, Unit: "cups", Item: "rice"},
	})
	plan := fixture.createPlanWithRecipes(t, user.ID, recipeA, recipeB)

	list, err := fixture.service.Generate(ctx, plan.ID, user.ID)
	if err != nil {
		t.Fatalf("generating list: %v", err)
	}

	if len(list.Items) != 1 {
		t.Fatalf("expected 1 merged item, got %d", len(list.Items))
	}
	item := list.Items[0]
	if item.Name != "Rice" {
		t.Errorf("expected first-seen casing 'Rice', got %q", item.Name)
	}
	if item.Amount == nil || *item.Amount != 3 {
		t.Errorf("expected amount 3, got %v", item.Amount)
	}
	if item.Unit != "cups" {
		t.Errorf("expected unit 'cups', got %q", item.Unit)
	}
	if item.Category != models.CategoryGrains {
		t.Errorf("expected category %q, got %q", models.CategoryGrains, item.Category)
	}
	if len(item.Recipes) != 2 || item.Recipes[0] != "Recipe A title" || item.Recipes[1] != "Recipe B title" {
		t.Errorf("expected both recipe titles once each in order, got %v", item.Recipes)
	}
}

func TestGenerate_SameRecipeInTwoSlotsContributesTitleOnce(t *testing.T) {
	fixture := setupShopping(t)
	ctx := context.Background()
	user := fixture.createUser(t)

	recipe := fixture.createRecipe(t, user.ID, "Taco Night", []models.IngredientLine{
		{Amount: 1, Unit: "lb", Item: "ground beef"},
	})
	plan := fixture.createPlanWithRecipes(t, user.ID, recipe, recipe)

	list, err := fixture.service.Generate(ctx, plan.ID, user.ID)
	if err != nil {
		t.Fatalf("generating list: %v", err)
	}

	if len(list.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(list.Items))
	}
	item := list.Items[0]
	if item.Amount == nil || *item.Amount != 2 {
		t.Errorf("expected amount 2 from two slots, got %v", item.Amount)
	}
	if len(item.Recipes) != 1 || item.Recipes[0] != "Taco Night" {
		t.Errorf("expected single deduped recipe title, got %v", item.Recipes)
	}
}

func TestGenerate_SkipsEmptyNamesAndCustomMeals(t *testing.T) {
	fixture := setupShopping(t)
	ctx := context.Background()
	user := fixture.createUser(t)

	recipe := fixture.createRecipe(t, user.ID, "Soup", []models.IngredientLine{
		{Amount: 1, Unit: "", Item: "   "},
		{Amount: 2, Unit: "cups", Item: "lentils"},
	})
	plan := fixture.createPlanWithRecipes(t, user.ID, recipe)

	custom := "Eating out"
	if _, err := fixture.mealPlanRepo.AddDay(ctx, models.MealPlanDay{
		PlanID:     plan.ID,
		DayOfWeek:  3,
		MealType:   models.MealTypeDinner,
		CustomName: &custom,
	}); err != nil {
		t.Fatalf("adding custom day: %v", err)
	}

	list, err := fixture.service.Generate(ctx, plan.ID, user.ID)
	if err != nil {
		t.Fatalf("generating list: %v", err)
	}

	if len(list.Items) != 1 {
		t.Fatalf("expected only the lentils item, got %d items", len(list.Items))
	}
	if list.Items[0].Name != "lentils" {
		t.Errorf("unexpected item %q", list.Items[0].Name)
	}
}

func TestGenerate_ZeroAmountBecomesNil(t *testing.T) {
	fixture := setupShopping(t)
	ctx := context.Background()
	user := fixture.createUser(t)

	recipe := fixture.createRecipe(t, user.ID, "Seasoned", []models.IngredientLine{
		{Amount: 0, Unit: "", Item: "salt"},
	})
	plan := fixture.createPlanWithRecipes(t, user.ID, recipe)

	list, err := fixture.service.Generate(ctx, plan.ID, user.ID)
	if err != nil {
		t.Fatalf("generating list: %v", err)
	}

	if len(list.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(list.Items))
	}
	if list.Items[0].Amount != nil {
		t.Errorf("expected nil amount for zero quantity, got %v", *list.Items[0].Amount)
	}
}

func TestGenerate_PantryMatchIgnoresUnit(t *testing.T) {
	fixture := setupShopping(t)
	ctx := context.Background()
	user := fixture.createUser(t)

	if _, err := fixture.pantryRepo.Create(ctx, models.PantryItem{
		UserID:   user.ID,
		ItemName: "Olive Oil",
		Category: models.CategoryOils,
	}); err != nil {
		t.Fatalf("creating pantry item: %v", err)
	}

	recipe := fixture.createRecipe(t, user.ID, "Dressing", []models.IngredientLine{
		{Amount: 2, Unit: "tbsp", Item: "olive oil"},
		{Amount: 1, Unit: "", Item: "lemon"},
	})
	plan := fixture.createPlanWithRecipes(t, user.ID, recipe)

	list, err := fixture.service.Generate(ctx, plan.ID, user.ID)
	if err != nil {
		t.Fatalf("generating list: %v", err)
	}

	var oil, lemon *models.ShoppingListItem
	for i := range list.Items {
		switch list.Items[i].Name {
		case "olive oil":
			oil = &list.Items[i]
		case "lemon":
			lemon = &list.Items[i]
		}
	}
	if oil == nil || lemon == nil {
		t.Fatalf("expected both items, got %+v", list.Items)
	}
	if !oil.InPantry {
		t.Error("expected olive oil flagged in pantry despite unit mismatch")
	}
	if lemon.InPantry {
		t.Error("lemon should not be flagged in pantry")
	}
}

func TestGenerate_SortsByCategoryThenName(t *testing.T) {
	fixture := setupShopping(t)
	ctx := context.Background()
	user := fixture.createUser(t)

	recipe := fixture.createRecipe(t, user.ID, "Mixed", []models.IngredientLine{
		{Amount: 1, Unit: "cups", Item: "rice"},
		{Amount: 2, Unit: "", Item: "tomato"},
		{Amount: 1, Unit: "", Item: "avocado"},
		{Amount: 1, Unit: "lb", Item: "chicken"},
	})
	plan := fixture.createPlanWithRecipes(t, user.ID, recipe)

	first, err := fixture.service.Generate(ctx, plan.ID, user.ID)
	if err != nil {
		t.Fatalf("generating list: %v", err)
	}

	expected := []string{"rice", "avocado", "tomato", "chicken"}
	if len(first.Items) != len(expected) {
		t.Fatalf("expected %d items, got %d", len(expected), len(first.Items))
	}
	for i, name := range expected {
		if first.Items[i].Name != name {
			t.Errorf("position %d: expected %q, got %q (category %q)", i, name, first.Items[i].Name, first.Items[i].Category)
		}
	}

	// Re-running produces the same order.
	second, err := fixture.service.Generate(ctx, plan.ID, user.ID)
	if err != nil {
		t.Fatalf("regenerating list: %v", err)
	}
	for i := range first.Items {
		if second.Items[i].Name != first.Items[i].Name {
			t.Errorf("order changed between runs at position %d: %q vs %q", i, first.Items[i].Name, second.Items[i].Name)
		}
	}
}

func TestGenerate_RegenerationReplacesNotDuplicates(t *testing.T) {
	fixture := setupShopping(t)
	ctx := context.Background()
	user := fixture.createUser(t)

	recipe := fixture.createRecipe(t, user.ID, "Stew", []models.IngredientLine{
		{Amount: 1, Unit: "lb", Item: "beef"},
	})
	plan := fixture.createPlanWithRecipes(t, user.ID, recipe)

	first, err := fixture.service.Generate(ctx, plan.ID, user.ID)
	if err != nil {
		t.Fatalf("first generation: %v", err)
	}

	// Check an item off, then regenerate: the list keeps its identity but the
	// items are rebuilt from scratch, checked state included.
	if _, err := fixture.service.ToggleItem(ctx, first.ID, 0); err != nil {
		t.Fatalf("toggling item: %v", err)
	}

	second, err := fixture.service.Generate(ctx, plan.ID, user.ID)
	if err != nil {
		t.Fatalf("second generation: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("expected regeneration to reuse list %s, got new list %s", first.ID, second.ID)
	}
	lists, err := fixture.shoppingRepo.FindByUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("finding lists: %v", err)
	}
	if len(lists) != 1 {
		t.Fatalf("expected a single list for the plan, got %d", len(lists))
	}
	if second.Items[0].Checked {
		t.Error("expected checked state to reset on regeneration")
	}
}

func TestAddManualItem_NeverMerges(t *testing.T) {
	fixture := setupShopping(t)
	ctx := context.Background()
	user := fixture.createUser(t)

	recipe := fixture.createRecipe(t, user.ID, "Bowls", []models.IngredientLine{
		{Amount: 3, Unit: "cups", Item: "Rice"},
	})
	plan := fixture.createPlanWithRecipes(t, user.ID, recipe)

	list, err := fixture.service.Generate(ctx, plan.ID, user.ID)
	if err != nil {
		t.Fatalf("generating list: %v", err)
	}

	amount := 1.0
	updated, err := fixture.service.AddManualItem(ctx, list.ID, services.ManualItem{
		Name:   "Rice",
		Amount: &amount,
		Unit:   "cups",
	})
	if err != nil {
		t.Fatalf("adding manual item: %v", err)
	}

	if len(updated.Items) != 2 {
		t.Fatalf("expected 2 separate Rice entries, got %d", len(updated.Items))
	}
	manual := updated.Items[1]
	if !manual.IsManual {
		t.Error("expected manual flag on appended item")
	}
	if len(manual.Recipes) != 1 || manual.Recipes[0] != "Manual" {
		t.Errorf("expected recipes [Manual], got %v", manual.Recipes)
	}
	if manual.Category != models.CategoryGrains {
		t.Errorf("expected auto-classified category, got %q", manual.Category)
	}
}

func TestToggleAndRemoveItem_Positional(t *testing.T) {
	fixture := setupShopping(t)
	ctx := context.Background()
	user := fixture.createUser(t)

	recipe := fixture.createRecipe(t, user.ID, "Salad", []models.IngredientLine{
		{Amount: 1, Unit: "", Item: "lettuce"},
		{Amount: 2, Unit: "", Item: "tomato"},
	})
	plan := fixture.createPlanWithRecipes(t, user.ID, recipe)

	list, err := fixture.service.Generate(ctx, plan.ID, user.ID)
	if err != nil {
		t.Fatalf("generating list: %v", err)
	}

	toggled, err := fixture.service.ToggleItem(ctx, list.ID, 1)
	if err != nil {
		t.Fatalf("toggling: %v", err)
	}
	if !toggled.Items[1].Checked {
		t.Error("expected item 1 checked")
	}
	if toggled.Items[0].Checked {
		t.Error("item 0 should be untouched")
	}

	removed, err := fixture.service.RemoveItem(ctx, list.ID, 0)
	if err != nil {
		t.Fatalf("removing: %v", err)
	}
	if len(removed.Items) != 1 {
		t.Fatalf("expected 1 item after removal, got %d", len(removed.Items))
	}

	if _, err := fixture.service.ToggleItem(ctx, list.ID, 5); err == nil {
		t.Error("expected out-of-range toggle to fail")
	}
}

func TestGenerate_MissingPlanFails(t *testing.T) {
	fixture := setupShopping(t)
	user := fixture.createUser(t)

	_, err := fixture.service.Generate(context.Background(), "no-such-plan", user.ID)
	if err == nil {
		t.Fatal("expected error for missing plan")
	}
}
