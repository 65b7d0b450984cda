package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tastoria/backend/internal/model"
)

// IngestService turns a free-form prompt into persisted recipe records via
// the external generation function. The whole flow is best-effort: only a
// malformed top-level batch fails the request; per-candidate problems skip
// that candidate and show up in the aggregate counts.
type IngestService struct {
	db     *gorm.DB
	llm    LLMClient
	images ImageGenerator // optional; nil disables image generation
}

func NewIngestService(db *gorm.DB, llm LLMClient, images ImageGenerator) *IngestService {
	return &IngestService{db: db, llm: llm, images: images}
}

// IngestResult reports what actually happened to a generation batch.
// Callers must not assume TotalRequested == TotalSaved.
type IngestResult struct {
	TotalRequested int            `json:"totalRequested"`
	TotalSaved     int            `json:"totalSaved"`
	Recipes        []model.Recipe `json:"recipes"`
}

// Candidate is one recipe-shaped element of the generation response.
// Numeric fields tolerate both string and number forms; "name" is accepted
// as an alias of "title".
type Candidate struct {
	Title        string           `json:"title"`
	Name         string           `json:"name"`
	Description  string           `json:"description"`
	Cuisine      string           `json:"cuisine"`
	PrepTime     FlexInt          `json:"prepTime"`
	CookTime     FlexInt          `json:"cookTime"`
	Servings     FlexInt          `json:"servings"`
	Difficulty   string           `json:"difficulty"`
	Ingredients  []FlexIngredient `json:"ingredients"`
	Instructions []string         `json:"instructions"`
	Tags         []string         `json:"tags"`
	Dietary      []string         `json:"dietary"`
	ImageURL     string           `json:"imageUrl"`
}

// GenerateFromPrompt runs the two-stage pipeline: fetch and parse the batch,
// then validate, illustrate and persist each element independently.
func (s *IngestService) GenerateFromPrompt(ctx context.Context, prompt string, createdBy uuid.UUID) (*IngestResult, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, invalidf("prompt is required")
	}
	if s.llm == nil {
		return nil, unavailable("recipe generation is not configured", nil)
	}

	content, err := s.llm.GenerateRecipeBatch(ctx, prompt)
	if err != nil {
		return nil, unavailable("recipe generation failed", err)
	}

	candidates, err := ParseCandidateBatch(content)
	if err != nil {
		return nil, invalidf("could not parse generation response: %v", err)
	}

	result := &IngestResult{TotalRequested: len(candidates)}
	for _, c := range candidates {
		recipe, skipReason := s.buildRecipe(c, createdBy)
		if recipe == nil {
			log.Printf("[IngestService] skipping candidate %q: %s", c.title(), skipReason)
			continue
		}

		if recipe.ImageURL == "" && s.images != nil {
			url, err := s.images.GenerateImageFromPrompt(ctx, RecipeImagePrompt(recipe.Name), "1024x1024")
			if err != nil {
				log.Printf("[IngestService] image generation for %q: %v", recipe.Name, err)
			} else {
				recipe.ImageURL = url
			}
		}

		if err := s.db.WithContext(ctx).Create(recipe).Error; err != nil {
			log.Printf("[IngestService] saving %q: %v", recipe.Name, err)
			continue
		}
		result.Recipes = append(result.Recipes, *recipe)
		result.TotalSaved++
	}

	return result, nil
}

// ParseCandidateBatch locates the JSON array in the raw model output and
// decodes it element by element. A missing or unparseable array fails the
// batch; an undecodable single element does not.
func ParseCandidateBatch(content string) ([]Candidate, error) {
	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start == -1 || end <= start {
		return nil, fmt.Errorf("no JSON array in response")
	}

	var raw []json.RawMessage
	if err := json.Unmarshal([]byte(content[start:end+1]), &raw); err != nil {
		return nil, fmt.Errorf("invalid JSON array: %w", err)
	}

	candidates := make([]Candidate, 0, len(raw))
	for i, r := range raw {
		var c Candidate
		if err := json.Unmarshal(r, &c); err != nil {
			log.Printf("[IngestService] dropping undecodable element %d: %v", i, err)
			continue
		}
		candidates = append(candidates, c)
	}
	return candidates, nil
}

func (c Candidate) title() string {
	if c.Title != "" {
		return c.Title
	}
	return c.Name
}

// buildRecipe validates a candidate and maps it onto the record model.
// Returns nil plus a reason when the candidate misses a required field.
func (s *IngestService) buildRecipe(c Candidate, createdBy uuid.UUID) (*model.Recipe, string) {
	title := strings.TrimSpace(c.title())
	if title == "" {
		return nil, "missing title"
	}
	if len(c.Ingredients) == 0 {
		return nil, "missing ingredients"
	}
	if len(c.Instructions) == 0 {
		return nil, "missing instructions"
	}

	ingredients := make(model.JSONBIngredients, len(c.Ingredients))
	for i, ing := range c.Ingredients {
		ingredients[i] = ing.Ingredient
	}

	cuisine := strings.ToLower(strings.TrimSpace(c.Cuisine))
	if !model.Cuisines.Valid(cuisine) {
		cuisine = "other"
	}

	difficulty := strings.ToLower(strings.TrimSpace(c.Difficulty))
	if difficulty == "hard" {
		difficulty = "expert"
	}
	if !model.Difficulties.Valid(difficulty) {
		difficulty = "medium"
	}

	servings := c.Servings.Value
	if servings < 1 {
		servings = 1
	}

	return &model.Recipe{
		Name:         title,
		Description:  c.Description,
		Cuisine:      cuisine,
		Difficulty:   difficulty,
		PrepTime:     nonNegative(c.PrepTime.Value),
		CookTime:     nonNegative(c.CookTime.Value),
		Servings:     servings,
		Ingredients:  ingredients,
		Instructions: model.JSONBStringArray(c.Instructions),
		Tags:         model.JSONBStringArray(c.Tags),
		Dietary:      model.JSONBStringArray(model.DietaryTags.Filter(c.Dietary)),
		ImageURL:     c.ImageURL,
		CreatedBy:    createdBy,
		IsAI:         true,
		Embedding:    GenerateEmbedding(title + " " + c.Description),
	}, ""
}

func nonNegative(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
