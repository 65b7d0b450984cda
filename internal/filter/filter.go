// Package filter turns raw recipe-listing query parameters into a typed
// query value and from there into gorm predicates and a sort clause.
// Parsing never fails: a malformed constraint is dropped, not reported.
package filter

import (
	"net/url"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/tastoria/backend/internal/model"
)

// Range is an inclusive numeric window on a record field. A nil bound is
// unbounded on that side.
type Range struct {
	Min *int
	Max *int
}

// Empty reports whether the range constrains anything.
func (r Range) Empty() bool {
	return r.Min == nil && r.Max == nil
}

// Query is the typed form of a recipe listing request. It is a pure value:
// building it has no side effects and the zero value matches everything.
type Query struct {
	Search string

	Cuisines         []string
	Dietary          []string
	ExcludeAllergens []string
	Difficulties     []string
	Occasions        []string
	CookingMethods   []string
	PriceRanges      []string
	FlavorProfiles   []string
	ServingSizes     []string
	Sustainability   []string

	PrepTime Range
	CookTime Range
	Calories Range

	MinRating *float64

	Seasonal bool
	Featured bool

	SortBy    string
	SortDesc  bool
	sortAlias string
}

// Parse builds a Query from raw request parameters. Unknown facet tokens,
// malformed ranges and unrecognized sort keys degrade to "no constraint".
func Parse(values url.Values) *Query {
	q := &Query{
		Cuisines:         tokens(values.Get("cuisine"), model.Cuisines),
		Dietary:          tokens(values.Get("dietary"), model.DietaryTags),
		ExcludeAllergens: tokens(values.Get("allergens"), model.Allergens),
		Difficulties:     tokens(values.Get("difficulty"), model.Difficulties),
		Occasions:        tokens(values.Get("occasion"), model.Occasions),
		CookingMethods:   tokens(values.Get("cookingMethod"), model.CookingMethods),
		PriceRanges:      tokens(values.Get("priceRange"), model.PriceRanges),
		FlavorProfiles:   tokens(values.Get("flavorProfile"), model.FlavorProfiles),
		ServingSizes:     tokens(values.Get("servingSize"), model.ServingSizes),
		Sustainability:   tokens(values.Get("sustainability"), model.SustainabilityTags),

		PrepTime: ParseRange(values.Get("prepTime")),
		CookTime: ParseRange(values.Get("cookTime")),
		Calories: ParseRange(values.Get("calories")),

		Search: strings.TrimSpace(values.Get("search")),

		// Truthy only on the literal string "true"; anything else means
		// "no constraint", not "false".
		Seasonal: values.Get("seasonal") == "true",
		Featured: values.Get("featured") == "true",
	}

	if raw := values.Get("rating"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			q.MinRating = &v
		}
	}

	q.parseSort(values.Get("sortBy"), values.Get("sortOrder"))
	return q
}

// tokens splits a comma-separated parameter and keeps the entries that
// belong to the facet's vocabulary. Embedded commas are not escapable.
func tokens(raw string, vocab model.TokenSet) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(raw, ",") {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" && vocab.Valid(p) {
			out = append(out, p)
		}
	}
	return out
}

// ParseRange parses the "<min>-<max>" literal format. Either bound may be
// omitted by leaving its side empty; an empty or non-numeric min side drops
// the whole constraint, as does any other malformed input.
func ParseRange(raw string) Range {
	parts := strings.SplitN(raw, "-", 2)
	if len(parts) != 2 {
		return Range{}
	}

	min, err := strconv.Atoi(parts[0])
	if err != nil || min < 0 {
		return Range{}
	}

	r := Range{}
	if min > 0 {
		r.Min = &min
	}

	if parts[1] != "" {
		max, err := strconv.Atoi(parts[1])
		if err != nil || max < 0 {
			return Range{}
		}
		r.Max = &max
	}
	return r
}

// Sort key aliases and the passthrough whitelist. Aliases pin their own
// direction; whitelisted keys honor sortOrder.
var sortColumns = map[string]string{
	"createdAt":   "created_at",
	"name":        "name",
	"rating":      "rating",
	"reviewCount": "review_count",
	"prepTime":    "prep_time",
	"cookTime":    "cook_time",
	"totalTime":   "total_time",
	"views":       "views",
	"calories":    "nutrition_calories",
}

func (q *Query) parseSort(sortBy, sortOrder string) {
	// Default: creation recency, descending. "desc" is also the default
	// direction for explicit keys.
	q.SortBy = "created_at"
	q.SortDesc = sortOrder != "asc"

	switch sortBy {
	case "":
		return
	case "popular":
		q.SortBy, q.SortDesc, q.sortAlias = "review_count", true, sortBy
	case "rating":
		q.SortBy, q.SortDesc, q.sortAlias = "rating", true, sortBy
	case "time":
		q.SortBy, q.SortDesc, q.sortAlias = "total_time", false, sortBy
	default:
		if col, ok := sortColumns[sortBy]; ok {
			q.SortBy = col
			q.sortAlias = sortBy
		}
	}
}

// SortExplicit reports whether the caller asked for a recognized sort key,
// as opposed to falling through to the default.
func (q *Query) SortExplicit() bool {
	return q.sortAlias != ""
}

// OrderClause renders the sort specification for an ORDER BY.
func (q *Query) OrderClause() string {
	dir := "ASC"
	if q.SortDesc {
		dir = "DESC"
	}
	return q.SortBy + " " + dir
}

// Scope folds the active filters into an AND chain over a fixed, ordered
// list of predicate constructors, so filter precedence and independence
// stay visible in one place.
func (q *Query) Scope() func(tx *gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		for _, apply := range predicates {
			tx = apply(q, tx)
		}
		return tx
	}
}

type predicate func(q *Query, tx *gorm.DB) *gorm.DB

var predicates = []predicate{
	applySearch,
	applyCuisine,
	applyDietary,
	applyAllergens,
	applyDifficulty,
	applyPrepTime,
	applyCookTime,
	applyCalories,
	applyRating,
	applyOccasion,
	applyCookingMethod,
	applyPriceRange,
	applyFlavorProfile,
	applyServingSize,
	applySustainability,
	applySeasonal,
	applyFeatured,
}

func applySearch(q *Query, tx *gorm.DB) *gorm.DB {
	if q.Search == "" {
		return tx
	}
	like := "%" + strings.ToLower(q.Search) + "%"
	cond := tx.Session(&gorm.Session{NewDB: true}).
		Where("LOWER(name) LIKE ?", like).
		Or("LOWER(description) LIKE ?", like).
		Or("LOWER("+JSONText(tx, "tags")+") LIKE ?", like)
	return tx.Where(cond)
}

func applyCuisine(q *Query, tx *gorm.DB) *gorm.DB {
	return scalarIn(tx, "cuisine", q.Cuisines)
}

func applyDietary(q *Query, tx *gorm.DB) *gorm.DB {
	return arrayHasAny(tx, "dietary", q.Dietary)
}

// Allergens are an exclusion facet: callers name what they need to avoid,
// so a record matching any listed token is filtered out.
func applyAllergens(q *Query, tx *gorm.DB) *gorm.DB {
	return arrayHasNone(tx, "allergens", q.ExcludeAllergens)
}

func applyDifficulty(q *Query, tx *gorm.DB) *gorm.DB {
	return scalarIn(tx, "difficulty", q.Difficulties)
}

func applyPrepTime(q *Query, tx *gorm.DB) *gorm.DB {
	return rangeOn(tx, "prep_time", q.PrepTime)
}

func applyCookTime(q *Query, tx *gorm.DB) *gorm.DB {
	return rangeOn(tx, "cook_time", q.CookTime)
}

func applyCalories(q *Query, tx *gorm.DB) *gorm.DB {
	return rangeOn(tx, "nutrition_calories", q.Calories)
}

func applyRating(q *Query, tx *gorm.DB) *gorm.DB {
	if q.MinRating == nil {
		return tx
	}
	return tx.Where("rating >= ?", *q.MinRating)
}

func applyOccasion(q *Query, tx *gorm.DB) *gorm.DB {
	return arrayHasAny(tx, "occasions", q.Occasions)
}

func applyCookingMethod(q *Query, tx *gorm.DB) *gorm.DB {
	return arrayHasAny(tx, "cooking_methods", q.CookingMethods)
}

func applyPriceRange(q *Query, tx *gorm.DB) *gorm.DB {
	return scalarIn(tx, "price_range", q.PriceRanges)
}

func applyFlavorProfile(q *Query, tx *gorm.DB) *gorm.DB {
	return arrayHasAny(tx, "flavor_profiles", q.FlavorProfiles)
}

func applyServingSize(q *Query, tx *gorm.DB) *gorm.DB {
	return scalarIn(tx, "serving_size", q.ServingSizes)
}

func applySustainability(q *Query, tx *gorm.DB) *gorm.DB {
	return arrayHasAny(tx, "sustainability", q.Sustainability)
}

func applySeasonal(q *Query, tx *gorm.DB) *gorm.DB {
	if !q.Seasonal {
		return tx
	}
	return tx.Where("seasonal = ?", true)
}

func applyFeatured(q *Query, tx *gorm.DB) *gorm.DB {
	if !q.Featured {
		return tx
	}
	return tx.Where("featured = ?", true)
}

func scalarIn(tx *gorm.DB, column string, values []string) *gorm.DB {
	if len(values) == 0 {
		return tx
	}
	return tx.Where(column+" IN ?", values)
}

// arrayHasAny matches records whose JSON array column contains at least one
// of the given tokens. Tokens come from closed vocabularies, so matching the
// quoted JSON literal is exact.
func arrayHasAny(tx *gorm.DB, column string, values []string) *gorm.DB {
	if len(values) == 0 {
		return tx
	}
	col := JSONText(tx, column)
	cond := tx.Session(&gorm.Session{NewDB: true})
	for _, v := range values {
		cond = cond.Or(col+" LIKE ?", TokenPattern(v))
	}
	return tx.Where(cond)
}

func arrayHasNone(tx *gorm.DB, column string, values []string) *gorm.DB {
	col := JSONText(tx, column)
	for _, v := range values {
		tx = tx.Where(col+" NOT LIKE ?", TokenPattern(v))
	}
	return tx
}

func rangeOn(tx *gorm.DB, column string, r Range) *gorm.DB {
	if r.Min != nil {
		tx = tx.Where(column+" >= ?", *r.Min)
	}
	if r.Max != nil {
		tx = tx.Where(column+" <= ?", *r.Max)
	}
	return tx
}

// TokenPattern renders the quoted-JSON-literal LIKE pattern for a facet
// token.
func TokenPattern(token string) string {
	return `%"` + token + `"%`
}

// JSONText renders a JSONB column as comparable text. Postgres needs the
// explicit cast; sqlite stores the JSON document as text already.
func JSONText(tx *gorm.DB, column string) string {
	if tx.Dialector.Name() == "postgres" {
		return column + "::text"
	}
	return column
}
