package services

import (
	"strings"

	"github.com/temple-keepers/temple-keepers-sub000/internal/models"
)

// KeywordEntry maps an ingredient keyword to a grocery category. Multi-word
// keywords are stored underscore-joined and match both the spaced and the
// concatenated form of the cleaned input.
type KeywordEntry struct {
	Keyword  string
	Category models.GroceryCategory
}

// Classifier assigns free-text ingredient names to grocery categories by
// first-match substring lookup over an ordered keyword table. The slice order
// is the tie-break: more specific keywords must come before the generic ones
// they overlap with ("black_pepper" before "pepper").
type Classifier struct {
	entries []KeywordEntry
}

func NewClassifier(entries []KeywordEntry) *Classifier {
	return &Classifier{entries: entries}
}

// Categorize never fails: anything unmatched lands in Other.
func (classifier *Classifier) Categorize(itemName string) models.GroceryCategory {
	cleaned := cleanItemName(itemName)
	if cleaned == "" {
		return models.CategoryOther
	}

	for _, entry := range classifier.entries {
		spaced := strings.ReplaceAll(entry.Keyword, "_", " ")
		joined := strings.ReplaceAll(entry.Keyword, "_", "")
		if strings.Contains(cleaned, spaced) || strings.Contains(cleaned, joined) {
			return entry.Category
		}
	}
	return models.CategoryOther
}

// cleanItemName lower-cases the input and strips everything except letters
// and spaces, so "2 Roma tomatoes, diced" reduces to " roma tomatoes diced".
func cleanItemName(name string) string {
	lowered := strings.ToLower(name)
	var builder strings.Builder
	builder.Grow(len(lowered))
	for _, r := range lowered {
		if (r >= 'a' && r <= 'z') || r == ' ' {
			builder.WriteRune(r)
		}
	}
	return builder.String()
}

// DefaultKeywords is the production keyword table. Order matters: spice
// blends and compound names are declared before the base words they contain.
func DefaultKeywords() []KeywordEntry {
	return []KeywordEntry{
		// Compound names first so they win over their base words.
		{"olive_oil", models.CategoryOils},
		{"coconut_oil", models.CategoryOils},
		{"sesame_oil", models.CategoryOils},
		{"avocado_oil", models.CategoryOils},
		{"peanut_butter", models.CategoryNutsSeeds},
		{"almond_butter", models.CategoryNutsSeeds},
		{"almond_milk", models.CategoryDairy},
		{"coconut_milk", models.CategoryCannedDry},
		{"oat_milk", models.CategoryDairy},
		{"black_pepper", models.CategorySpices},
		{"cayenne_pepper", models.CategorySpices},
		{"chili_powder", models.CategorySpices},
		{"garlic_powder", models.CategorySpices},
		{"onion_powder", models.CategorySpices},
		{"bell_pepper", models.CategoryProduce},
		{"sweet_potato", models.CategoryProduce},
		{"tomato_paste", models.CategoryCannedDry},
		{"tomato_sauce", models.CategoryCannedDry},
		{"chicken_broth", models.CategoryCannedDry},
		{"chicken_stock", models.CategoryCannedDry},
		{"vegetable_broth", models.CategoryCannedDry},
		{"soy_sauce", models.CategoryOils},
		{"hot_sauce", models.CategoryOils},
		{"fish_sauce", models.CategoryOils},
		{"maple_syrup", models.CategoryOils},
		{"chia_seed", models.CategoryNutsSeeds},
		{"flax_seed", models.CategoryNutsSeeds},
		{"sesame_seed", models.CategoryNutsSeeds},
		{"pumpkin_seed", models.CategoryNutsSeeds},
		{"sunflower_seed", models.CategoryNutsSeeds},
		{"greek_yogurt", models.CategoryDairy},
		{"cream_cheese", models.CategoryDairy},
		{"black_bean", models.CategoryCannedDry},
		{"kidney_bean", models.CategoryCannedDry},
		{"garbanzo", models.CategoryCannedDry},
		{"green_bean", models.CategoryProduce},

		// Produce.
		{"tomato", models.CategoryProduce},
		{"tomatoes", models.CategoryProduce},
		{"onion", models.CategoryProduce},
		{"garlic", models.CategoryProduce},
		{"spinach", models.CategoryProduce},
		{"kale", models.CategoryProduce},
		{"lettuce", models.CategoryProduce},
		{"carrot", models.CategoryProduce},
		{"celery", models.CategoryProduce},
		{"broccoli", models.CategoryProduce},
		{"cauliflower", models.CategoryProduce},
		{"zucchini", models.CategoryProduce},
		{"cucumber", models.CategoryProduce},
		{"mushroom", models.CategoryProduce},
		{"potato", models.CategoryProduce},
		{"avocado", models.CategoryProduce},
		{"lemon", models.CategoryProduce},
		{"lime", models.CategoryProduce},
		{"apple", models.CategoryProduce},
		{"banana", models.CategoryProduce},
		{"berries", models.CategoryProduce},
		{"berry", models.CategoryProduce},
		{"orange", models.CategoryProduce},
		{"mango", models.CategoryProduce},
		{"pineapple", models.CategoryProduce},
		{"grape", models.CategoryProduce},
		{"cilantro", models.CategoryProduce},
		{"parsley", models.CategoryProduce},
		{"basil", models.CategoryProduce},
		{"ginger", models.CategoryProduce},
		{"cabbage", models.CategoryProduce},
		{"squash", models.CategoryProduce},
		{"asparagus", models.CategoryProduce},
		{"scallion", models.CategoryProduce},
		{"shallot", models.CategoryProduce},
		{"eggplant", models.CategoryProduce},

		// Protein.
		{"chicken", models.CategoryProtein},
		{"beef", models.CategoryProtein},
		{"turkey", models.CategoryProtein},
		{"salmon", models.CategoryProtein},
		{"tuna", models.CategoryProtein},
		{"shrimp", models.CategoryProtein},
		{"tilapia", models.CategoryProtein},
		{"cod", models.CategoryProtein},
		{"lamb", models.CategoryProtein},
		{"pork", models.CategoryProtein},
		{"egg", models.CategoryProtein},
		{"tofu", models.CategoryProtein},
		{"tempeh", models.CategoryProtein},

		// Dairy.
		{"milk", models.CategoryDairy},
		{"cheese", models.CategoryDairy},
		{"yogurt", models.CategoryDairy},
		{"butter", models.CategoryDairy},
		{"cream", models.CategoryDairy},
		{"mozzarella", models.CategoryDairy},
		{"parmesan", models.CategoryDairy},
		{"feta", models.CategoryDairy},
		{"cheddar", models.CategoryDairy},

		// Grains & pasta.
		{"rice", models.CategoryGrains},
		{"quinoa", models.CategoryGrains},
		{"pasta", models.CategoryGrains},
		{"spaghetti", models.CategoryGrains},
		{"noodle", models.CategoryGrains},
		{"bread", models.CategoryGrains},
		{"tortilla", models.CategoryGrains},
		{"oats", models.CategoryGrains},
		{"oatmeal", models.CategoryGrains},
		{"couscous", models.CategoryGrains},
		{"barley", models.CategoryGrains},
		{"flour", models.CategoryGrains},

		// Canned & dry.
		{"beans", models.CategoryCannedDry},
		{"chickpea", models.CategoryCannedDry},
		{"lentil", models.CategoryCannedDry},
		{"broth", models.CategoryCannedDry},
		{"stock", models.CategoryCannedDry},
		{"canned", models.CategoryCannedDry},
		{"sugar", models.CategoryCannedDry},

		// Oils & condiments.
		{"oil", models.CategoryOils},
		{"vinegar", models.CategoryOils},
		{"mustard", models.CategoryOils},
		{"mayonnaise", models.CategoryOils},
		{"ketchup", models.CategoryOils},
		{"honey", models.CategoryOils},
		{"salsa", models.CategoryOils},
		{"tahini", models.CategoryOils},

		// Spices.
		{"cumin", models.CategorySpices},
		{"paprika", models.CategorySpices},
		{"oregano", models.CategorySpices},
		{"thyme", models.CategorySpices},
		{"rosemary", models.CategorySpices},
		{"cinnamon", models.CategorySpices},
		{"turmeric", models.CategorySpices},
		{"curry", models.CategorySpices},
		{"nutmeg", models.CategorySpices},
		{"salt", models.CategorySpices},
		{"pepper", models.CategorySpices},
		{"spice", models.CategorySpices},
		{"seasoning", models.CategorySpices},
		{"vanilla", models.CategorySpices},

		// Nuts & seeds.
		{"almond", models.CategoryNutsSeeds},
		{"walnut", models.CategoryNutsSeeds},
		{"cashew", models.CategoryNutsSeeds},
		{"pecan", models.CategoryNutsSeeds},
		{"peanut", models.CategoryNutsSeeds},
		{"pistachio", models.CategoryNutsSeeds},
		{"seed", models.CategoryNutsSeeds},
		{"nut", models.CategoryNutsSeeds},
	}
}
