package testhelpers

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tastoria/backend/internal/model"
)

// NewTestDB opens a fresh in-memory sqlite database with the schema
// migrated. The pool is pinned to one connection so every query sees the
// same in-memory database.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get database handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&model.Recipe{}, &model.Review{}, &model.RecipeFavorite{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// QueryCounter counts SELECTs issued through the gorm session it is
// installed on. Used to verify that cached reads skip the database.
type QueryCounter struct {
	Count int
}

// InstallQueryCounter registers a counting callback on db and returns the
// counter.
func InstallQueryCounter(t *testing.T, db *gorm.DB) *QueryCounter {
	t.Helper()

	counter := &QueryCounter{}
	err := db.Callback().Query().After("gorm:query").Register("testhelpers:count_queries", func(tx *gorm.DB) {
		counter.Count++
	})
	if err != nil {
		t.Fatalf("failed to register query counter: %v", err)
	}
	return counter
}

// SeedRecipe persists a recipe and fails the test on error.
func SeedRecipe(t *testing.T, db *gorm.DB, recipe *model.Recipe) *model.Recipe {
	t.Helper()
	if err := db.Create(recipe).Error; err != nil {
		t.Fatalf("failed to seed recipe %q: %v", recipe.Name, err)
	}
	return recipe
}
