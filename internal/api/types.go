package api

import "github.com/tastoria/backend/internal/model"

// ReviewRequest is the body of POST /recipes/:slug/reviews.
type ReviewRequest struct {
	Rating  int    `json:"rating" binding:"required"`
	Comment string `json:"comment"`
}

// GenerateRequest is the body of POST /admin/recipes/generate.
type GenerateRequest struct {
	Prompt string `json:"prompt" binding:"required"`
}

// ImageRequest is the body of POST /admin/images/generate. RecipeID is
// optional; when set, the generated image URL is attached to that recipe.
type ImageRequest struct {
	Prompt   string `json:"prompt" binding:"required"`
	Size     string `json:"size"`
	RecipeID string `json:"recipeId"`
}

// Pagination carries the page window facts for a listing response.
type Pagination struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
}

// ListResponse is the envelope of GET /recipes.
type ListResponse struct {
	Recipes    []model.Recipe `json:"recipes"`
	Pagination Pagination     `json:"pagination"`
	Total      int64          `json:"total"`
}

// RangeOption is one static range preset for the filter UI.
type RangeOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// SeasonOption is one season preset, with zero-based calendar months.
type SeasonOption struct {
	Value  string `json:"value"`
	Label  string `json:"label"`
	Months []int  `json:"months"`
}
