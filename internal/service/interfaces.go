package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/tastoria/backend/internal/filter"
	"github.com/tastoria/backend/internal/model"
)

// IRecipeService defines the interface for recipe query operations
type IRecipeService interface {
	Search(ctx context.Context, q *filter.Query, page, pageSize int) (*SearchResult, error)
	GetBySlug(ctx context.Context, slug string) (*model.Recipe, error)
	GetFeatured(ctx context.Context, limit int) ([]model.Recipe, error)
	GetSeasonal(ctx context.Context, season string, limit int) ([]model.Recipe, error)
	PickOfTheDay(ctx context.Context) (*model.Recipe, error)
	GetSuggestions(ctx context.Context, slug string, limit int) ([]model.Recipe, error)
	AddReview(ctx context.Context, slug string, userID uuid.UUID, rating int, comment string) (*model.Recipe, error)
	ToggleFavorite(ctx context.Context, slug string, userID uuid.UUID) (bool, error)
	GetFilterOptions(ctx context.Context) (*FilterOptions, error)
	GetPopularTags(ctx context.Context) ([]TagCount, error)

	CreateRecipe(ctx context.Context, recipe *model.Recipe) (*model.Recipe, error)
	UpdateRecipe(ctx context.Context, id uuid.UUID, recipe *model.Recipe) (*model.Recipe, error)
	DeleteRecipe(ctx context.Context, id uuid.UUID) error
	AttachImage(ctx context.Context, id uuid.UUID, imageURL string) error
	ListAll(ctx context.Context) ([]model.Recipe, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Recipe, error)
}

// IIngestService defines the interface for AI content ingestion
type IIngestService interface {
	GenerateFromPrompt(ctx context.Context, prompt string, createdBy uuid.UUID) (*IngestResult, error)
}
