package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tastoria/backend/internal/filter"
	"github.com/tastoria/backend/internal/model"
)

const (
	optionsTTL = time.Hour
	pickTTL    = 24 * time.Hour

	defaultCuratedLimit = 6
)

// RecipeService is the single entry point handlers use to read and mutate
// recipe data. It composes the filter package with the record store and the
// cache layer.
type RecipeService struct {
	db    *gorm.DB
	cache Cache
}

func NewRecipeService(db *gorm.DB, cache Cache) *RecipeService {
	return &RecipeService{db: db, cache: cache}
}

// SearchResult is one page of a filtered listing plus the pagination facts
// the UI needs.
type SearchResult struct {
	Recipes    []model.Recipe `json:"recipes"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	TotalPages int            `json:"total_pages"`
	HasNext    bool           `json:"has_next"`
	HasPrev    bool           `json:"has_prev"`
}

// Search runs the filtered, sorted, paginated listing query. The total is
// counted with a second pass over the same predicate; tie order among equal
// sort keys is not guaranteed stable across calls.
func (s *RecipeService) Search(ctx context.Context, q *filter.Query, page, pageSize int) (*SearchResult, error) {
	if pageSize <= 0 {
		return nil, invalidf("page size must be positive, got %d", pageSize)
	}
	if page < 1 {
		page = 1
	}

	var total int64
	if err := s.db.WithContext(ctx).Model(&model.Recipe{}).Scopes(q.Scope()).Count(&total).Error; err != nil {
		return nil, unavailable("failed to count recipes", err)
	}

	listQ := s.db.WithContext(ctx).Model(&model.Recipe{}).Scopes(q.Scope())
	if q.Search != "" && !q.SortExplicit() && s.db.Dialector.Name() == "postgres" {
		// Relevance order for free-text search, as long as the caller did
		// not pick a sort of their own.
		vec := GenerateEmbedding(q.Search)
		listQ = listQ.Clauses(clause.OrderBy{
			Expression: clause.Expr{SQL: "embedding <-> ?", Vars: []interface{}{vec}},
		})
	} else {
		listQ = listQ.Order(q.OrderClause())
	}

	offset := (page - 1) * pageSize
	var recipes []model.Recipe
	if err := listQ.Offset(offset).Limit(pageSize).Find(&recipes).Error; err != nil {
		return nil, unavailable("failed to fetch recipes", err)
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return &SearchResult{
		Recipes:    recipes,
		Total:      total,
		Page:       page,
		TotalPages: totalPages,
		HasNext:    int64(offset+len(recipes)) < total,
		HasPrev:    page > 1,
	}, nil
}

// GetBySlug returns the recipe behind a public detail page and bumps its
// view counter. The increment is best-effort: a failure is logged, never
// surfaced, and is not atomic with the read.
func (s *RecipeService) GetBySlug(ctx context.Context, slug string) (*model.Recipe, error) {
	var recipe model.Recipe
	err := s.db.WithContext(ctx).Preload("Reviews").First(&recipe, "slug = ?", slug).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundf("recipe %q not found", slug)
		}
		return nil, unavailable("failed to fetch recipe", err)
	}

	if err := s.db.WithContext(ctx).Model(&model.Recipe{}).
		Where("id = ?", recipe.ID).
		UpdateColumn("views", gorm.Expr("views + ?", 1)).Error; err != nil {
		log.Printf("[RecipeService] view count increment for %s: %v", slug, err)
	}

	return &recipe, nil
}

// GetFeatured returns the featured shelf, best rated first. Cached for an
// hour; stale entries after a write are an accepted tradeoff.
func (s *RecipeService) GetFeatured(ctx context.Context, limit int) ([]model.Recipe, error) {
	if limit <= 0 {
		limit = defaultCuratedLimit
	}

	key := fmt.Sprintf("featured:%d", limit)
	var recipes []model.Recipe
	if s.cache.Get(ctx, key, &recipes) {
		return recipes, nil
	}

	err := s.db.WithContext(ctx).
		Where("featured = ?", true).
		Order("rating DESC, review_count DESC").
		Limit(limit).
		Find(&recipes).Error
	if err != nil {
		return nil, unavailable("failed to fetch featured recipes", err)
	}

	s.cache.Set(ctx, key, recipes, optionsTTL)
	return recipes, nil
}

// GetSeasonal returns recipes for the given season plus year-round ones.
// An empty or unknown season falls back to the current calendar season.
func (s *RecipeService) GetSeasonal(ctx context.Context, season string, limit int) ([]model.Recipe, error) {
	if limit <= 0 {
		limit = defaultCuratedLimit
	}
	if !model.Seasons.Valid(season) {
		season = CurrentSeason(time.Now())
	}

	key := fmt.Sprintf("seasonal:%s:%d", season, limit)
	var recipes []model.Recipe
	if s.cache.Get(ctx, key, &recipes) {
		return recipes, nil
	}

	cond := s.db.Session(&gorm.Session{NewDB: true}).
		Where("seasonal = ? AND season = ?", true, season).
		Or("seasonal = ?", false)
	err := s.db.WithContext(ctx).
		Where(cond).
		Order("rating DESC, review_count DESC").
		Limit(limit).
		Find(&recipes).Error
	if err != nil {
		return nil, unavailable("failed to fetch seasonal recipes", err)
	}

	s.cache.Set(ctx, key, recipes, optionsTTL)
	return recipes, nil
}

// PickOfTheDay selects a random recipe from the featured-or-highly-rated
// pool. The 24h cache makes the pick stable for the day; it is not
// re-randomized per request.
func (s *RecipeService) PickOfTheDay(ctx context.Context) (*model.Recipe, error) {
	const key = "meal_of_the_day"
	var recipe model.Recipe
	if s.cache.Get(ctx, key, &recipe) {
		return &recipe, nil
	}

	cond := s.db.Session(&gorm.Session{NewDB: true}).
		Where("featured = ?", true).
		Or("rating >= ?", 4.0)
	err := s.db.WithContext(ctx).
		Where(cond).
		Order("RANDOM()").
		First(&recipe).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundf("no recipe qualifies for pick of the day")
		}
		return nil, unavailable("failed to pick recipe of the day", err)
	}

	s.cache.Set(ctx, key, recipe, pickTTL)
	return &recipe, nil
}

// GetSuggestions returns recipes similar to the one behind slug: sharing its
// cuisine, any dietary tag or any free-form tag, the source itself excluded,
// best rated first. The OR gives broad recall; there is no weighting.
func (s *RecipeService) GetSuggestions(ctx context.Context, slug string, limit int) ([]model.Recipe, error) {
	if limit <= 0 {
		limit = 4
	}

	var src model.Recipe
	if err := s.db.WithContext(ctx).First(&src, "slug = ?", slug).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundf("recipe %q not found", slug)
		}
		return nil, unavailable("failed to fetch recipe", err)
	}

	cond := s.db.Session(&gorm.Session{NewDB: true}).Where("cuisine = ?", src.Cuisine)
	dietaryCol := filter.JSONText(s.db, "dietary")
	for _, d := range src.Dietary {
		cond = cond.Or(dietaryCol+" LIKE ?", filter.TokenPattern(d))
	}
	tagsCol := filter.JSONText(s.db, "tags")
	for _, t := range src.Tags {
		cond = cond.Or(tagsCol+" LIKE ?", filter.TokenPattern(t))
	}

	var suggestions []model.Recipe
	err := s.db.WithContext(ctx).
		Where("id <> ?", src.ID).
		Where(cond).
		Order("rating DESC, review_count DESC").
		Limit(limit).
		Find(&suggestions).Error
	if err != nil {
		return nil, unavailable("failed to fetch suggestions", err)
	}
	return suggestions, nil
}

// AddReview appends a review and recomputes the recipe's aggregate rating in
// the same transaction. A second review by the same author is a conflict.
func (s *RecipeService) AddReview(ctx context.Context, slug string, userID uuid.UUID, rating int, comment string) (*model.Recipe, error) {
	if rating < 1 || rating > 5 {
		return nil, invalidf("rating must be between 1 and 5, got %d", rating)
	}

	var recipe model.Recipe
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&recipe, "slug = ?", slug).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundf("recipe %q not found", slug)
			}
			return unavailable("failed to fetch recipe", err)
		}

		var existing int64
		if err := tx.Model(&model.Review{}).
			Where("recipe_id = ? AND user_id = ?", recipe.ID, userID).
			Count(&existing).Error; err != nil {
			return unavailable("failed to check existing review", err)
		}
		if existing > 0 {
			return conflictf("user already reviewed recipe %q", slug)
		}

		review := model.Review{
			RecipeID: recipe.ID,
			UserID:   userID,
			Rating:   rating,
			Comment:  comment,
		}
		if err := tx.Create(&review).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return conflictf("user already reviewed recipe %q", slug)
			}
			return unavailable("failed to create review", err)
		}

		var reviews []model.Review
		if err := tx.Where("recipe_id = ?", recipe.ID).Find(&reviews).Error; err != nil {
			return unavailable("failed to load reviews", err)
		}
		recipe.RecalculateRating(reviews)
		recipe.Reviews = reviews

		return tx.Model(&model.Recipe{}).Where("id = ?", recipe.ID).
			UpdateColumns(map[string]interface{}{
				"rating":       recipe.Rating,
				"review_count": recipe.ReviewCount,
			}).Error
	})
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}

// ToggleFavorite flips the user's membership in the recipe's favorites set
// and returns the resulting state.
func (s *RecipeService) ToggleFavorite(ctx context.Context, slug string, userID uuid.UUID) (bool, error) {
	var favorited bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recipe model.Recipe
		if err := tx.First(&recipe, "slug = ?", slug).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundf("recipe %q not found", slug)
			}
			return unavailable("failed to fetch recipe", err)
		}

		var fav model.RecipeFavorite
		err := tx.Where("recipe_id = ? AND user_id = ?", recipe.ID, userID).First(&fav).Error
		switch {
		case err == nil:
			favorited = false
			return tx.Delete(&fav).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			favorited = true
			return tx.Create(&model.RecipeFavorite{RecipeID: recipe.ID, UserID: userID}).Error
		default:
			return unavailable("failed to check favorite", err)
		}
	})
	if err != nil {
		return false, err
	}
	return favorited, nil
}

// FilterOption is a facet value with a display label.
type FilterOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// FilterOptions lists, per facet, the values actually present in the
// catalog. The UI builds its filter dropdowns from this.
type FilterOptions struct {
	Cuisines       []FilterOption `json:"cuisines"`
	Dietary        []FilterOption `json:"dietary"`
	Allergens      []FilterOption `json:"allergens"`
	Difficulties   []FilterOption `json:"difficulties"`
	Occasions      []FilterOption `json:"occasions"`
	CookingMethods []FilterOption `json:"cookingMethods"`
	PriceRanges    []FilterOption `json:"priceRanges"`
	FlavorProfiles []FilterOption `json:"flavorProfiles"`
	ServingSizes   []FilterOption `json:"servingSizes"`
	Sustainability []FilterOption `json:"sustainability"`
}

// GetFilterOptions folds the distinct facet values out of the catalog. The
// fold happens in Go over the facet columns so it behaves the same on every
// dialect. Cached for an hour.
func (s *RecipeService) GetFilterOptions(ctx context.Context) (*FilterOptions, error) {
	const key = "filter_options"
	var opts FilterOptions
	if s.cache.Get(ctx, key, &opts) {
		return &opts, nil
	}

	var recipes []model.Recipe
	err := s.db.WithContext(ctx).
		Select("cuisine", "difficulty", "price_range", "serving_size",
			"dietary", "allergens", "occasions", "cooking_methods",
			"flavor_profiles", "sustainability").
		Find(&recipes).Error
	if err != nil {
		return nil, unavailable("failed to load filter options", err)
	}

	cuisines := newDistinct()
	dietary := newDistinct()
	allergens := newDistinct()
	difficulties := newDistinct()
	occasions := newDistinct()
	methods := newDistinct()
	prices := newDistinct()
	flavors := newDistinct()
	servings := newDistinct()
	sustainability := newDistinct()

	for _, r := range recipes {
		cuisines.add(r.Cuisine)
		difficulties.add(r.Difficulty)
		prices.add(r.PriceRange)
		servings.add(r.ServingSize)
		dietary.addAll(r.Dietary)
		allergens.addAll(r.Allergens)
		occasions.addAll(r.Occasions)
		methods.addAll(r.CookingMethods)
		flavors.addAll(r.FlavorProfiles)
		sustainability.addAll(r.Sustainability)
	}

	opts = FilterOptions{
		Cuisines:       cuisines.options(),
		Dietary:        dietary.options(),
		Allergens:      allergens.options(),
		Difficulties:   difficulties.options(),
		Occasions:      occasions.options(),
		CookingMethods: methods.options(),
		PriceRanges:    prices.options(),
		FlavorProfiles: flavors.options(),
		ServingSizes:   servings.options(),
		Sustainability: sustainability.options(),
	}

	s.cache.Set(ctx, key, opts, optionsTTL)
	return &opts, nil
}

// TagCount is one entry of the popular-tags histogram.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// GetPopularTags returns the 50 most used free-form tags. Cached for an
// hour.
func (s *RecipeService) GetPopularTags(ctx context.Context) ([]TagCount, error) {
	const key = "popular_tags"
	var tags []TagCount
	if s.cache.Get(ctx, key, &tags) {
		return tags, nil
	}

	var recipes []model.Recipe
	if err := s.db.WithContext(ctx).Select("tags").Find(&recipes).Error; err != nil {
		return nil, unavailable("failed to load tags", err)
	}

	counts := make(map[string]int)
	for _, r := range recipes {
		for _, t := range r.Tags {
			counts[t]++
		}
	}

	tags = make([]TagCount, 0, len(counts))
	for tag, count := range counts {
		tags = append(tags, TagCount{Tag: tag, Count: count})
	}
	sort.Slice(tags, func(i, j int) bool {
		if tags[i].Count != tags[j].Count {
			return tags[i].Count > tags[j].Count
		}
		return tags[i].Tag < tags[j].Tag
	})
	if len(tags) > 50 {
		tags = tags[:50]
	}

	s.cache.Set(ctx, key, tags, optionsTTL)
	return tags, nil
}

// CreateRecipe persists a new record. The body is validated first; slug,
// total time and embedding are derived before the write.
func (s *RecipeService) CreateRecipe(ctx context.Context, recipe *model.Recipe) (*model.Recipe, error) {
	if err := validateRecipe(recipe); err != nil {
		return nil, err
	}
	recipe.Embedding = GenerateEmbedding(recipe.Name + " " + recipe.Description)
	if err := s.db.WithContext(ctx).Create(recipe).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, conflictf("recipe with slug %q already exists", recipe.Slug)
		}
		return nil, unavailable("failed to create recipe", err)
	}
	return recipe, nil
}

// UpdateRecipe replaces a record wholesale (PUT semantics). Store-owned
// fields (timestamps, counters, aggregates) are carried over from the
// existing row; slug and total time are re-derived by the model hooks.
func (s *RecipeService) UpdateRecipe(ctx context.Context, id uuid.UUID, updated *model.Recipe) (*model.Recipe, error) {
	if err := validateRecipe(updated); err != nil {
		return nil, err
	}

	var existing model.Recipe
	if err := s.db.WithContext(ctx).First(&existing, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundf("recipe %s not found", id)
		}
		return nil, unavailable("failed to fetch recipe", err)
	}

	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt
	updated.CreatedBy = existing.CreatedBy
	updated.Views = existing.Views
	updated.Rating = existing.Rating
	updated.ReviewCount = existing.ReviewCount
	updated.Embedding = GenerateEmbedding(updated.Name + " " + updated.Description)

	if err := s.db.WithContext(ctx).Save(updated).Error; err != nil {
		return nil, unavailable("failed to update recipe", err)
	}
	return updated, nil
}

// AttachImage points a record at a generated image URL without touching the
// rest of the row.
func (s *RecipeService) AttachImage(ctx context.Context, id uuid.UUID, imageURL string) error {
	res := s.db.WithContext(ctx).Model(&model.Recipe{}).
		Where("id = ?", id).
		UpdateColumn("image_url", imageURL)
	if res.Error != nil {
		return unavailable("failed to attach image", res.Error)
	}
	if res.RowsAffected == 0 {
		return notFoundf("recipe %s not found", id)
	}
	return nil
}

// DeleteRecipe removes a record by id.
func (s *RecipeService) DeleteRecipe(ctx context.Context, id uuid.UUID) error {
	var recipe model.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFoundf("recipe %s not found", id)
		}
		return unavailable("failed to fetch recipe", err)
	}
	if err := s.db.WithContext(ctx).Delete(&recipe).Error; err != nil {
		return unavailable("failed to delete recipe", err)
	}
	return nil
}

// ListAll returns every record, newest first. Admin console view.
func (s *RecipeService) ListAll(ctx context.Context) ([]model.Recipe, error) {
	var recipes []model.Recipe
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&recipes).Error; err != nil {
		return nil, unavailable("failed to list recipes", err)
	}
	return recipes, nil
}

// GetByID fetches a single record for the admin console.
func (s *RecipeService) GetByID(ctx context.Context, id uuid.UUID) (*model.Recipe, error) {
	var recipe model.Recipe
	if err := s.db.WithContext(ctx).Preload("Reviews").First(&recipe, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundf("recipe %s not found", id)
		}
		return nil, unavailable("failed to fetch recipe", err)
	}
	return &recipe, nil
}

// CurrentSeason maps a date to its meteorological season.
func CurrentSeason(now time.Time) string {
	switch now.Month() {
	case time.March, time.April, time.May:
		return "spring"
	case time.June, time.July, time.August:
		return "summer"
	case time.September, time.October, time.November:
		return "fall"
	default:
		return "winter"
	}
}

type distinct struct {
	seen map[string]struct{}
}

func newDistinct() *distinct {
	return &distinct{seen: make(map[string]struct{})}
}

func (d *distinct) add(v string) {
	if v != "" {
		d.seen[v] = struct{}{}
	}
}

func (d *distinct) addAll(vs []string) {
	for _, v := range vs {
		d.add(v)
	}
}

func (d *distinct) options() []FilterOption {
	values := make([]string, 0, len(d.seen))
	for v := range d.seen {
		values = append(values, v)
	}
	sort.Strings(values)

	opts := make([]FilterOption, len(values))
	for i, v := range values {
		opts[i] = FilterOption{Value: v, Label: labelFor(v)}
	}
	return opts
}

// labelFor turns a facet token into its display form: first letter upper,
// hyphens to spaces.
func labelFor(token string) string {
	if token == "" {
		return ""
	}
	label := strings.ReplaceAll(token, "-", " ")
	return strings.ToUpper(label[:1]) + label[1:]
}
