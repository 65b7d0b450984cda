package service

import (
	"strings"

	"github.com/tastoria/backend/internal/model"
)

// validateRecipe checks a record before an admin write. Required structure
// first, then every facet token against its closed vocabulary, so records
// the filter pipeline cannot match never reach the store.
func validateRecipe(r *model.Recipe) error {
	name := strings.TrimSpace(r.Name)
	if len(name) < 3 || len(name) > 200 {
		return invalidf("recipe name must be between 3 and 200 characters")
	}

	if len(r.Ingredients) == 0 {
		return invalidf("at least one ingredient is required")
	}
	for i, ing := range r.Ingredients {
		if strings.TrimSpace(ing.Name) == "" {
			return invalidf("ingredient %d is missing a name", i+1)
		}
		if strings.TrimSpace(ing.Amount) == "" {
			return invalidf("ingredient %d is missing an amount", i+1)
		}
		if strings.TrimSpace(ing.Unit) == "" {
			return invalidf("ingredient %d is missing a unit", i+1)
		}
	}

	if len(r.Instructions) == 0 {
		return invalidf("at least one instruction is required")
	}

	if r.PrepTime < 0 || r.CookTime < 0 {
		return invalidf("prep and cook times must not be negative")
	}
	if r.Servings < 1 {
		return invalidf("servings must be at least 1")
	}
	if r.Nutrition.Calories < 0 {
		return invalidf("calories must not be negative")
	}

	if !model.Cuisines.Valid(r.Cuisine) {
		return invalidf("unknown cuisine %q", r.Cuisine)
	}
	if err := tokenValid("difficulty", r.Difficulty, model.Difficulties); err != nil {
		return err
	}
	if err := tokenValid("price range", r.PriceRange, model.PriceRanges); err != nil {
		return err
	}
	if err := tokenValid("serving size", r.ServingSize, model.ServingSizes); err != nil {
		return err
	}
	if err := tokenValid("season", r.Season, model.Seasons); err != nil {
		return err
	}

	facets := []struct {
		field  string
		tokens model.JSONBStringArray
		vocab  model.TokenSet
	}{
		{"dietary", r.Dietary, model.DietaryTags},
		{"allergens", r.Allergens, model.Allergens},
		{"occasions", r.Occasions, model.Occasions},
		{"cooking methods", r.CookingMethods, model.CookingMethods},
		{"flavor profiles", r.FlavorProfiles, model.FlavorProfiles},
		{"sustainability", r.Sustainability, model.SustainabilityTags},
	}
	for _, f := range facets {
		for _, tok := range f.tokens {
			if !f.vocab.Valid(tok) {
				return invalidf("unknown %s token %q", f.field, tok)
			}
		}
	}

	return nil
}

// tokenValid accepts the empty string, which means "use the column default".
func tokenValid(field, token string, vocab model.TokenSet) error {
	if token == "" || vocab.Valid(token) {
		return nil
	}
	return invalidf("unknown %s %q", field, token)
}
