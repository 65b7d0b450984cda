package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Review is a single user's rating of a recipe. The composite unique index
// enforces at most one review per (recipe, author) pair at the store level;
// the service checks first so the common case surfaces a conflict without
// relying on driver-specific constraint errors.
type Review struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	RecipeID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_reviews_recipe_user" json:"recipe_id"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_reviews_recipe_user" json:"user_id"`
	Rating   int       `gorm:"not null" json:"rating"`
	Comment  string    `gorm:"size:1000" json:"comment,omitempty"`
}

func (Review) TableName() string {
	return "reviews"
}

func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
