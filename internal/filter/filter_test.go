package filter

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRange(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		min  *int
		max  *int
	}{
		{name: "both bounds", raw: "15-30", min: intPtr(15), max: intPtr(30)},
		{name: "open max", raw: "60-", min: intPtr(60), max: nil},
		{name: "zero min means unbounded below", raw: "0-200", min: nil, max: intPtr(200)},
		{name: "missing separator", raw: "30", min: nil, max: nil},
		{name: "empty", raw: "", min: nil, max: nil},
		{name: "garbage min drops constraint", raw: "abc-30", min: nil, max: nil},
		{name: "garbage max drops constraint", raw: "10-xyz", min: nil, max: nil},
		{name: "negative min drops constraint", raw: "-5-30", min: nil, max: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := ParseRange(tt.raw)
			assert.Equal(t, tt.min, r.Min)
			assert.Equal(t, tt.max, r.Max)
		})
	}
}

func TestParseFacetTokens(t *testing.T) {
	q := Parse(url.Values{
		"cuisine": {"italian, mexican"},
		"dietary": {"vegan,not-a-diet"},
	})

	assert.Equal(t, []string{"italian", "mexican"}, q.Cuisines)
	// Unknown tokens are dropped, not errored.
	assert.Equal(t, []string{"vegan"}, q.Dietary)
}

func TestParseFlagsTruthyOnlyOnTrue(t *testing.T) {
	q := Parse(url.Values{"seasonal": {"true"}, "featured": {"1"}})
	assert.True(t, q.Seasonal)
	assert.False(t, q.Featured)

	q = Parse(url.Values{"seasonal": {"false"}})
	assert.False(t, q.Seasonal)
}

func TestParseRating(t *testing.T) {
	q := Parse(url.Values{"rating": {"4.5"}})
	if assert.NotNil(t, q.MinRating) {
		assert.Equal(t, 4.5, *q.MinRating)
	}

	q = Parse(url.Values{"rating": {"lots"}})
	assert.Nil(t, q.MinRating)
}

func TestParseSortDefaults(t *testing.T) {
	q := Parse(url.Values{})
	assert.Equal(t, "created_at DESC", q.OrderClause())
	assert.False(t, q.SortExplicit())
}

func TestParseSortAliases(t *testing.T) {
	tests := []struct {
		sortBy string
		want   string
	}{
		{sortBy: "popular", want: "review_count DESC"},
		{sortBy: "rating", want: "rating DESC"},
		{sortBy: "time", want: "total_time ASC"},
	}
	for _, tt := range tests {
		t.Run(tt.sortBy, func(t *testing.T) {
			q := Parse(url.Values{"sortBy": {tt.sortBy}})
			assert.Equal(t, tt.want, q.OrderClause())
			assert.True(t, q.SortExplicit())
		})
	}
}

func TestParseSortWhitelist(t *testing.T) {
	q := Parse(url.Values{"sortBy": {"prepTime"}, "sortOrder": {"asc"}})
	assert.Equal(t, "prep_time ASC", q.OrderClause())

	q = Parse(url.Values{"sortBy": {"calories"}})
	assert.Equal(t, "nutrition_calories DESC", q.OrderClause())

	// Unknown keys fall back to the default sort.
	q = Parse(url.Values{"sortBy": {"id; DROP TABLE recipes"}})
	assert.Equal(t, "created_at DESC", q.OrderClause())
	assert.False(t, q.SortExplicit())
}

func TestTokenPattern(t *testing.T) {
	assert.Equal(t, `%"gluten-free"%`, TokenPattern("gluten-free"))
}

func intPtr(v int) *int { return &v }
