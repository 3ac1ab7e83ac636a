package inventory

// Category is one of the fixed pantry taxonomy buckets.
type Category string

const (
	CategoryProtein Category = "protein"
	CategoryProduce Category = "produce"
	CategoryDairy   Category = "dairy"
	CategoryPantry  Category = "pantry"
	CategoryBakery  Category = "bakery"
	CategoryFrozen  Category = "frozen"
	CategoryOther   Category = "other"
)

// categoryPriority is the fixed evaluation order: first match wins.
var categoryPriority = []Category{
	CategoryProtein,
	CategoryProduce,
	CategoryDairy,
	CategoryFrozen,
	CategoryBakery,
	CategoryPantry,
}

// keywordSets holds whole-token keywords per category. A token set matches
// a category if any token in the input tokens equals any keyword here.
var keywordSets = map[Category]map[string]struct{}{
	CategoryProtein: set(
		"chicken", "beef", "pork", "turkey", "salmon", "tuna", "shrimp",
		"bacon", "sausage", "ham", "steak", "tofu", "eggs", "egg",
		"lamb", "cod", "tilapia", "ribs", "meatballs", "chorizo",
	),
	CategoryProduce: set(
		"tomato", "tomatoes", "onion", "onions", "garlic", "lettuce",
		"spinach", "carrot", "carrots", "pepper", "peppers", "broccoli",
		"cucumber", "potato", "potatoes", "apple", "apples", "banana",
		"bananas", "lemon", "lime", "avocado", "cilantro", "basil",
		"mushroom", "mushrooms", "celery", "kale", "zucchini", "corn",
	),
	CategoryDairy: set(
		"milk", "cheese", "yogurt", "butter", "cream", "mozzarella",
		"cheddar", "parmesan", "sour", "half", "buttermilk", "ricotta",
	),
	CategoryFrozen: set(
		"frozen", "icecream", "pizza", "waffles", "fries", "peas",
		"edamame", "popsicle", "sorbet",
	),
	CategoryBakery: set(
		"bread", "bagel", "bagels", "croissant", "muffin", "muffins",
		"tortilla", "tortillas", "baguette", "roll", "rolls", "bun",
		"buns", "donut", "donuts", "pita",
	),
	CategoryPantry: set(
		"rice", "pasta", "beans", "flour", "sugar", "oil", "vinegar",
		"sauce", "broth", "stock", "cereal", "tea", "honey",
		"spices", "salt", "pepper", "ketchup", "mustard", "mayo",
		"crackers", "noodles", "lentils", "oats", "salsa",
	),
}

// genericToken describes an ambiguous token that only counts toward a
// category if a core token for that category is present in the same token
// sequence (e.g. "ground" alone is not protein; "ground beef" is).
type genericToken struct {
	category Category
	core     map[string]struct{}
}

var genericTokens = map[string]genericToken{
	"ground":  {category: CategoryProtein, core: set("beef", "turkey", "pork", "chicken", "lamb")},
	"breast":  {category: CategoryProtein, core: set("chicken", "turkey", "duck")},
	"thigh":   {category: CategoryProtein, core: set("chicken", "turkey", "duck")},
	"whole":   {category: CategoryDairy, core: set("milk")},
	"wheat":   {category: CategoryBakery, core: set("bread", "flour", "tortilla", "tortillas")},
	"english": {category: CategoryBakery, core: set("muffin", "muffins")},
	"half":    {category: CategoryDairy, core: set("cream", "creamer")},
}

func set(values ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(values))
	for _, v := range values {
		m[v] = struct{}{}
	}
	return m
}

// InferCategory maps a token sequence (as produced by tokenizer.Tokenize)
// to one of the seven pantry categories. Evaluation follows the fixed
// priority order; the first category whose keyword set (including any
// validated generic token) is hit wins. Returns CategoryOther if nothing
// matches.
func InferCategory(tokens []string) Category {
	tokenSet := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		tokenSet[t] = struct{}{}
	}

	hits := make(map[Category]bool, len(categoryPriority))

	for _, tok := range tokens {
		if gt, ok := genericTokens[tok]; ok {
			if hasAnyCore(tokenSet, gt.core) {
				hits[gt.category] = true
			}
			continue
		}
		for cat, keywords := range keywordSets {
			if _, ok := keywords[tok]; ok {
				hits[cat] = true
			}
		}
	}

	for _, cat := range categoryPriority {
		if hits[cat] {
			return cat
		}
	}
	return CategoryOther
}

func hasAnyCore(tokenSet map[string]struct{}, core map[string]struct{}) bool {
	for c := range core {
		if _, ok := tokenSet[c]; ok {
			return true
		}
	}
	return false
}

// CategoriesCompatible reports whether two categories are compatible for
// matching purposes: "other" is compatible with everything, and any two
// concrete categories are compatible only if they are equal.
func CategoriesCompatible(a, b Category) bool {
	if a == CategoryOther || b == CategoryOther {
		return true
	}
	return a == b
}
