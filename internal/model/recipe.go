package model

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	pgvector "github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

// Recipe is the central record of the catalog. Facet lists are stored as
// JSONB arrays; slug and total_time are derived fields maintained by the
// BeforeSave hook.
type Recipe struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name        string `gorm:"size:200;not null" json:"name"`
	Slug        string `gorm:"size:255;uniqueIndex" json:"slug"`
	Description string `gorm:"size:500" json:"description"`

	Cuisine     string `gorm:"size:50;index" json:"cuisine"`
	Difficulty  string `gorm:"size:20;default:medium" json:"difficulty"`
	PriceRange  string `gorm:"size:20;default:moderate" json:"price_range"`
	ServingSize string `gorm:"size:20;default:family" json:"serving_size"`

	Dietary        JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"dietary"`
	Allergens      JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"allergens"`
	Tags           JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"tags"`
	Occasions      JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"occasions"`
	CookingMethods JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"cooking_methods"`
	FlavorProfiles JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"flavor_profiles"`
	Sustainability JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"sustainability"`

	Ingredients  JSONBIngredients `gorm:"type:jsonb;not null;default:'[]'" json:"ingredients"`
	Instructions JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"instructions"`

	Nutrition Nutrition `gorm:"embedded;embeddedPrefix:nutrition_" json:"nutrition"`

	PrepTime  int `gorm:"not null" json:"prep_time"`
	CookTime  int `gorm:"not null" json:"cook_time"`
	TotalTime int `gorm:"not null" json:"total_time"`
	Servings  int `gorm:"default:1" json:"servings"`

	Rating      float64 `gorm:"default:0;index" json:"rating"`
	ReviewCount int     `gorm:"default:0" json:"review_count"`
	Views       int64   `gorm:"default:0" json:"views"`

	Featured bool   `gorm:"default:false;index" json:"featured"`
	Seasonal bool   `gorm:"default:false" json:"seasonal"`
	Season   string `gorm:"size:20;default:all-year" json:"season"`

	ImageURL string `gorm:"size:512" json:"image_url"`
	VideoURL string `gorm:"size:512" json:"video_url,omitempty"`

	CreatedBy uuid.UUID `gorm:"type:uuid" json:"created_by"`
	IsAI      bool      `gorm:"default:false" json:"is_ai"`

	Embedding pgvector.Vector `gorm:"type:vector(3)" json:"-"`

	Reviews []Review `gorm:"foreignKey:RecipeID" json:"reviews,omitempty"`
}

// Nutrition holds per-serving nutrition facts. Calories is the only field
// the filter pipeline depends on; the rest are informational.
type Nutrition struct {
	Calories float64 `gorm:"not null;default:0" json:"calories"`
	Protein  float64 `gorm:"default:0" json:"protein"`
	Carbs    float64 `gorm:"default:0" json:"carbs"`
	Fat      float64 `gorm:"default:0" json:"fat"`
	Fiber    float64 `gorm:"default:0" json:"fiber"`
	Sugar    float64 `gorm:"default:0" json:"sugar"`
	Sodium   float64 `gorm:"default:0" json:"sodium"`
}

// BeforeCreate assigns the ID client-side so the model works on both
// Postgres and the sqlite test databases.
func (r *Recipe) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// BeforeSave re-derives slug and total time. Runs on create and on every
// update that carries the source fields, keeping slug in sync with name and
// total_time equal to prep_time + cook_time.
func (r *Recipe) BeforeSave(tx *gorm.DB) error {
	if r.Name != "" {
		r.Slug = slug.Make(r.Name)
	}
	r.TotalTime = r.PrepTime + r.CookTime
	return nil
}

// RecalculateRating sets rating and review count from the given review set.
// The mean is rounded to one decimal; no reviews means rating 0.
func (r *Recipe) RecalculateRating(reviews []Review) {
	r.ReviewCount = len(reviews)
	if len(reviews) == 0 {
		r.Rating = 0
		return
	}
	var total int
	for _, rev := range reviews {
		total += rev.Rating
	}
	r.Rating = math.Round(float64(total)/float64(len(reviews))*10) / 10
}
