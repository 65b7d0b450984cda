package service_test

import (
	"context"
	"net/url"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tastoria/backend/internal/filter"
	"github.com/tastoria/backend/internal/model"
	"github.com/tastoria/backend/internal/service"
	"github.com/tastoria/backend/internal/testhelpers"
)

func seedCatalog(t *testing.T, db *gorm.DB) {
	t.Helper()
	seed := []*model.Recipe{
		{
			Name: "Margherita Pizza", Cuisine: "italian", Difficulty: "easy",
			Dietary:  model.JSONBStringArray{"vegetarian"},
			Tags:     model.JSONBStringArray{"pizza", "dinner"},
			PrepTime: 20, CookTime: 15,
			Nutrition: model.Nutrition{Calories: 550},
			Rating:    4.8, ReviewCount: 12, Featured: true,
		},
		{
			Name: "Thai Peanut Noodles", Cuisine: "thai", Difficulty: "medium",
			Allergens: model.JSONBStringArray{"peanuts", "soy"},
			Tags:      model.JSONBStringArray{"noodles", "dinner"},
			PrepTime:  10, CookTime: 20,
			Nutrition: model.Nutrition{Calories: 620},
			Rating:    4.2, ReviewCount: 30,
		},
		{
			Name: "Summer Berry Salad", Cuisine: "american", Difficulty: "easy",
			Dietary:  model.JSONBStringArray{"vegan", "gluten-free"},
			Tags:     model.JSONBStringArray{"salad", "lunch"},
			PrepTime: 10, CookTime: 0,
			Nutrition: model.Nutrition{Calories: 180},
			Rating:    4.9, ReviewCount: 4,
			Seasonal:  true, Season: "summer",
		},
		{
			Name: "Beef Bourguignon", Cuisine: "french", Difficulty: "expert",
			Tags:     model.JSONBStringArray{"stew", "dinner"},
			PrepTime: 40, CookTime: 180,
			Nutrition: model.Nutrition{Calories: 890},
			Rating:    4.5, ReviewCount: 22, Featured: true,
		},
	}
	for _, r := range seed {
		testhelpers.SeedRecipe(t, db, r)
	}
}

func names(recipes []model.Recipe) []string {
	out := make([]string, len(recipes))
	for i, r := range recipes {
		out[i] = r.Name
	}
	return out
}

func TestSearchAllergenExclusion(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	seedCatalog(t, db)
	svc := service.NewRecipeService(db, service.NewNoopCache())

	q := filter.Parse(url.Values{"allergens": {"peanuts"}})
	result, err := svc.Search(context.Background(), q, 1, 10)
	require.NoError(t, err)

	assert.Equal(t, int64(3), result.Total)
	assert.NotContains(t, names(result.Recipes), "Thai Peanut Noodles")
}

func TestSearchCuisineMembership(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	seedCatalog(t, db)
	svc := service.NewRecipeService(db, service.NewNoopCache())

	q := filter.Parse(url.Values{"cuisine": {"italian,french"}})
	result, err := svc.Search(context.Background(), q, 1, 10)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"Margherita Pizza", "Beef Bourguignon"}, names(result.Recipes))
}

func TestSearchDietaryAndCalorieRange(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	seedCatalog(t, db)
	svc := service.NewRecipeService(db, service.NewNoopCache())

	q := filter.Parse(url.Values{"dietary": {"vegan"}, "calories": {"0-300"}})
	result, err := svc.Search(context.Background(), q, 1, 10)
	require.NoError(t, err)

	assert.Equal(t, []string{"Summer Berry Salad"}, names(result.Recipes))
}

func TestSearchPagination(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	seedCatalog(t, db)
	svc := service.NewRecipeService(db, service.NewNoopCache())

	q := filter.Parse(url.Values{"sortBy": {"name"}, "sortOrder": {"asc"}})

	page1, err := svc.Search(context.Background(), q, 1, 3)
	require.NoError(t, err)
	assert.Len(t, page1.Recipes, 3)
	assert.Equal(t, int64(4), page1.Total)
	assert.Equal(t, 2, page1.TotalPages)
	assert.True(t, page1.HasNext)
	assert.False(t, page1.HasPrev)

	page2, err := svc.Search(context.Background(), q, 2, 3)
	require.NoError(t, err)
	assert.Len(t, page2.Recipes, 1)
	assert.False(t, page2.HasNext)
	assert.True(t, page2.HasPrev)

	// The two pages are disjoint.
	assert.NotContains(t, names(page2.Recipes), page1.Recipes[0].Name)
}

func TestSearchRejectsNonPositivePageSize(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	svc := service.NewRecipeService(db, service.NewNoopCache())

	_, err := svc.Search(context.Background(), filter.Parse(url.Values{}), 1, 0)
	assert.ErrorIs(t, err, service.ErrInvalid)
}

func TestSearchSortPopularVsRating(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	seedCatalog(t, db)
	svc := service.NewRecipeService(db, service.NewNoopCache())

	popular, err := svc.Search(context.Background(), filter.Parse(url.Values{"sortBy": {"popular"}}), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, "Thai Peanut Noodles", popular.Recipes[0].Name)

	rated, err := svc.Search(context.Background(), filter.Parse(url.Values{"sortBy": {"rating"}}), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, "Summer Berry Salad", rated.Recipes[0].Name)
}

func TestGetBySlugIncrementsViews(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	seedCatalog(t, db)
	svc := service.NewRecipeService(db, service.NewNoopCache())

	recipe, err := svc.GetBySlug(context.Background(), "margherita-pizza")
	require.NoError(t, err)
	assert.Equal(t, "Margherita Pizza", recipe.Name)

	var reloaded model.Recipe
	require.NoError(t, db.First(&reloaded, "slug = ?", "margherita-pizza").Error)
	assert.Equal(t, int64(1), reloaded.Views)
}

func TestGetBySlugNotFound(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	svc := service.NewRecipeService(db, service.NewNoopCache())

	_, err := svc.GetBySlug(context.Background(), "no-such-recipe")
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestGetFeaturedOrderingAndCache(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	seedCatalog(t, db)
	counter := testhelpers.InstallQueryCounter(t, db)
	svc := service.NewRecipeService(db, newMemoryCache())

	first, err := svc.GetFeatured(context.Background(), 6)
	require.NoError(t, err)
	assert.Equal(t, []string{"Margherita Pizza", "Beef Bourguignon"}, names(first))
	queriesAfterFirst := counter.Count
	assert.Greater(t, queriesAfterFirst, 0)

	// Second call is served from the cache without touching the store.
	second, err := svc.GetFeatured(context.Background(), 6)
	require.NoError(t, err)
	assert.Equal(t, names(first), names(second))
	assert.Equal(t, queriesAfterFirst, counter.Count)
}

func TestGetSeasonalIncludesYearRound(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	seedCatalog(t, db)
	svc := service.NewRecipeService(db, service.NewNoopCache())

	recipes, err := svc.GetSeasonal(context.Background(), "summer", 10)
	require.NoError(t, err)

	// Summer picks plus everything not marked seasonal.
	assert.ElementsMatch(t,
		[]string{"Summer Berry Salad", "Margherita Pizza", "Thai Peanut Noodles", "Beef Bourguignon"},
		names(recipes))

	winter, err := svc.GetSeasonal(context.Background(), "winter", 10)
	require.NoError(t, err)
	assert.NotContains(t, names(winter), "Summer Berry Salad")
}

func TestPickOfTheDayStableWithinTTL(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	seedCatalog(t, db)
	svc := service.NewRecipeService(db, newMemoryCache())

	first, err := svc.PickOfTheDay(context.Background())
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := svc.PickOfTheDay(context.Background())
		require.NoError(t, err)
		assert.Equal(t, first.ID, again.ID)
	}
}

func TestPickOfTheDayEmptyCatalog(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	svc := service.NewRecipeService(db, service.NewNoopCache())

	_, err := svc.PickOfTheDay(context.Background())
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestGetSuggestionsSharedFacets(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	seedCatalog(t, db)
	svc := service.NewRecipeService(db, service.NewNoopCache())

	// Shares the "dinner" tag with noodles and bourguignon; never itself.
	recipes, err := svc.GetSuggestions(context.Background(), "margherita-pizza", 10)
	require.NoError(t, err)

	assert.NotContains(t, names(recipes), "Margherita Pizza")
	assert.ElementsMatch(t, []string{"Thai Peanut Noodles", "Beef Bourguignon"}, names(recipes))
}

func TestAddReviewRecomputesRating(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	svc := service.NewRecipeService(db, service.NewNoopCache())
	testhelpers.SeedRecipe(t, db, &model.Recipe{Name: "Plain Omelette"})

	alice := uuid.New()
	bob := uuid.New()

	recipe, err := svc.AddReview(context.Background(), "plain-omelette", alice, 5, "great")
	require.NoError(t, err)
	assert.Equal(t, 5.0, recipe.Rating)
	assert.Equal(t, 1, recipe.ReviewCount)

	recipe, err = svc.AddReview(context.Background(), "plain-omelette", bob, 4, "")
	require.NoError(t, err)
	assert.Equal(t, 4.5, recipe.Rating)
	assert.Equal(t, 2, recipe.ReviewCount)

	var stored model.Recipe
	require.NoError(t, db.First(&stored, "slug = ?", "plain-omelette").Error)
	assert.Equal(t, 4.5, stored.Rating)
	assert.Equal(t, 2, stored.ReviewCount)
}

func TestAddReviewDuplicateConflicts(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	svc := service.NewRecipeService(db, service.NewNoopCache())
	testhelpers.SeedRecipe(t, db, &model.Recipe{Name: "Plain Omelette"})

	alice := uuid.New()
	_, err := svc.AddReview(context.Background(), "plain-omelette", alice, 5, "")
	require.NoError(t, err)

	_, err = svc.AddReview(context.Background(), "plain-omelette", alice, 3, "changed my mind")
	assert.ErrorIs(t, err, service.ErrConflict)

	// The rejected review must not affect the aggregate.
	var stored model.Recipe
	require.NoError(t, db.First(&stored, "slug = ?", "plain-omelette").Error)
	assert.Equal(t, 5.0, stored.Rating)
	assert.Equal(t, 1, stored.ReviewCount)
}

func TestAddReviewRatingBounds(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	svc := service.NewRecipeService(db, service.NewNoopCache())

	_, err := svc.AddReview(context.Background(), "anything", uuid.New(), 0, "")
	assert.ErrorIs(t, err, service.ErrInvalid)

	_, err = svc.AddReview(context.Background(), "anything", uuid.New(), 6, "")
	assert.ErrorIs(t, err, service.ErrInvalid)
}

func TestToggleFavorite(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	svc := service.NewRecipeService(db, service.NewNoopCache())
	testhelpers.SeedRecipe(t, db, &model.Recipe{Name: "Plain Omelette"})

	user := uuid.New()

	favorited, err := svc.ToggleFavorite(context.Background(), "plain-omelette", user)
	require.NoError(t, err)
	assert.True(t, favorited)

	favorited, err = svc.ToggleFavorite(context.Background(), "plain-omelette", user)
	require.NoError(t, err)
	assert.False(t, favorited)

	var count int64
	require.NoError(t, db.Model(&model.RecipeFavorite{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestGetFilterOptions(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	seedCatalog(t, db)
	svc := service.NewRecipeService(db, service.NewNoopCache())

	opts, err := svc.GetFilterOptions(context.Background())
	require.NoError(t, err)

	cuisines := make([]string, len(opts.Cuisines))
	for i, o := range opts.Cuisines {
		cuisines[i] = o.Value
	}
	assert.ElementsMatch(t, []string{"american", "french", "italian", "thai"}, cuisines)

	// Labels are display-cased with hyphens expanded.
	for _, o := range opts.Dietary {
		if o.Value == "gluten-free" {
			assert.Equal(t, "Gluten free", o.Label)
		}
	}
}

func TestGetPopularTags(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	seedCatalog(t, db)
	svc := service.NewRecipeService(db, service.NewNoopCache())

	tags, err := svc.GetPopularTags(context.Background())
	require.NoError(t, err)

	require.NotEmpty(t, tags)
	assert.Equal(t, service.TagCount{Tag: "dinner", Count: 3}, tags[0])
}

// writableRecipe builds a body that passes the admin write validation.
func writableRecipe(name string) *model.Recipe {
	return &model.Recipe{
		Name:    name,
		Cuisine: "mediterranean",
		Ingredients: model.JSONBIngredients{
			{Name: "eggs", Amount: "4", Unit: "whole"},
			{Name: "crushed tomatoes", Amount: "400", Unit: "g"},
		},
		Instructions: model.JSONBStringArray{"Simmer the sauce, then poach the eggs in it."},
		Servings:     2,
		PrepTime:     10,
		CookTime:     25,
	}
}

func TestCreateUpdateDeleteRecipe(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	svc := service.NewRecipeService(db, service.NewNoopCache())
	ctx := context.Background()

	created, err := svc.CreateRecipe(ctx, writableRecipe("Shakshuka"))
	require.NoError(t, err)
	assert.Equal(t, "shakshuka", created.Slug)
	assert.Equal(t, 35, created.TotalTime)

	_, err = svc.CreateRecipe(ctx, writableRecipe("  "))
	assert.ErrorIs(t, err, service.ErrInvalid)

	body := writableRecipe("Green Shakshuka")
	body.PrepTime = 15
	updated, err := svc.UpdateRecipe(ctx, created.ID, body)
	require.NoError(t, err)
	assert.Equal(t, "green-shakshuka", updated.Slug)
	assert.Equal(t, 40, updated.TotalTime)

	require.NoError(t, svc.DeleteRecipe(ctx, created.ID))
	_, err = svc.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)

	err = svc.DeleteRecipe(ctx, uuid.New())
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestCreateRecipeRejectsInvalidBodies(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	svc := service.NewRecipeService(db, service.NewNoopCache())
	ctx := context.Background()

	cases := map[string]func(r *model.Recipe){
		"unknown cuisine":     func(r *model.Recipe) { r.Cuisine = "klingon" },
		"unknown difficulty":  func(r *model.Recipe) { r.Difficulty = "impossible" },
		"unknown dietary tag": func(r *model.Recipe) { r.Dietary = model.JSONBStringArray{"carnivore"} },
		"no ingredients":      func(r *model.Recipe) { r.Ingredients = nil },
		"ingredient unit":     func(r *model.Recipe) { r.Ingredients[0].Unit = "" },
		"no instructions":     func(r *model.Recipe) { r.Instructions = nil },
		"zero servings":       func(r *model.Recipe) { r.Servings = 0 },
		"negative prep time":  func(r *model.Recipe) { r.PrepTime = -5 },
		"negative calories":   func(r *model.Recipe) { r.Nutrition.Calories = -1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			body := writableRecipe("Test Dish")
			mutate(body)
			_, err := svc.CreateRecipe(ctx, body)
			assert.ErrorIs(t, err, service.ErrInvalid)
		})
	}

	// Nothing reached the store.
	var count int64
	require.NoError(t, db.Model(&model.Recipe{}).Count(&count).Error)
	assert.Zero(t, count)

	// Updates are held to the same rules.
	seeded := testhelpers.SeedRecipe(t, db, &model.Recipe{Name: "Ratatouille"})
	body := writableRecipe("Ratatouille")
	body.Cuisine = "klingon"
	_, err := svc.UpdateRecipe(ctx, seeded.ID, body)
	assert.ErrorIs(t, err, service.ErrInvalid)
}

func TestUpdateRecipePreservesStoreOwnedFields(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	svc := service.NewRecipeService(db, service.NewNoopCache())
	ctx := context.Background()

	owner := uuid.New()
	seeded := testhelpers.SeedRecipe(t, db, &model.Recipe{
		Name: "Ratatouille", CreatedBy: owner, Views: 77, Rating: 4.1, ReviewCount: 9,
	})

	updated, err := svc.UpdateRecipe(ctx, seeded.ID, writableRecipe("Ratatouille Nicoise"))
	require.NoError(t, err)

	assert.Equal(t, owner, updated.CreatedBy)
	assert.Equal(t, int64(77), updated.Views)
	assert.Equal(t, 4.1, updated.Rating)
	assert.Equal(t, 9, updated.ReviewCount)
}

func TestAttachImage(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	svc := service.NewRecipeService(db, service.NewNoopCache())
	ctx := context.Background()

	seeded := testhelpers.SeedRecipe(t, db, &model.Recipe{Name: "Paella"})

	require.NoError(t, svc.AttachImage(ctx, seeded.ID, "https://cdn.example.com/paella.png"))

	got, err := svc.GetByID(ctx, seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/paella.png", got.ImageURL)

	err = svc.AttachImage(ctx, uuid.New(), "https://cdn.example.com/missing.png")
	assert.ErrorIs(t, err, service.ErrNotFound)
}
