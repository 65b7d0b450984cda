package model

// Closed facet vocabularies. Filter parsing validates incoming tokens against
// these sets so that invalid values are rejected at the boundary instead of
// leaking into query construction.

var Cuisines = newTokenSet(
	"italian", "mexican", "asian", "mediterranean", "indian", "french",
	"american", "thai", "japanese", "chinese", "greek", "spanish",
	"middle-eastern", "african", "caribbean", "latin-american", "other",
)

var Difficulties = newTokenSet("easy", "medium", "expert")

var DietaryTags = newTokenSet(
	"vegetarian", "vegan", "gluten-free", "dairy-free", "keto", "paleo",
	"low-carb", "low-fat", "high-protein", "low-sodium", "heart-healthy",
)

var Allergens = newTokenSet(
	"nuts", "peanuts", "tree-nuts", "milk", "eggs", "soy", "wheat",
	"fish", "shellfish", "sesame", "sulfites",
)

var Occasions = newTokenSet(
	"breakfast", "lunch", "dinner", "dessert", "snack", "appetizer",
	"holiday", "party", "weeknight", "weekend", "romantic", "family",
)

var CookingMethods = newTokenSet(
	"grilled", "baked", "steamed", "fried", "slow-cooked", "roasted",
	"boiled", "sautéed", "braised", "smoked", "air-fried", "raw",
)

var PriceRanges = newTokenSet("budget", "moderate", "premium")

var FlavorProfiles = newTokenSet("spicy", "sweet", "savory", "umami", "tangy", "bitter", "sour")

var ServingSizes = newTokenSet("individual", "family", "party")

var SustainabilityTags = newTokenSet("eco-friendly", "locally-sourced", "organic", "seasonal")

var Seasons = newTokenSet("spring", "summer", "fall", "winter", "all-year")

var IngredientCategories = newTokenSet(
	"dairy", "meat", "seafood", "vegetables", "grains", "fruits", "spices", "other",
)

// TokenSet is a closed vocabulary of facet tokens.
type TokenSet struct {
	order  []string
	tokens map[string]struct{}
}

func newTokenSet(tokens ...string) TokenSet {
	set := TokenSet{
		order:  tokens,
		tokens: make(map[string]struct{}, len(tokens)),
	}
	for _, t := range tokens {
		set.tokens[t] = struct{}{}
	}
	return set
}

// Valid reports whether token belongs to the vocabulary.
func (s TokenSet) Valid(token string) bool {
	_, ok := s.tokens[token]
	return ok
}

// Values returns the vocabulary in declaration order.
func (s TokenSet) Values() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Filter returns the subset of tokens that belong to the vocabulary,
// preserving input order.
func (s TokenSet) Filter(tokens []string) []string {
	var out []string
	for _, t := range tokens {
		if s.Valid(t) {
			out = append(out, t)
		}
	}
	return out
}
