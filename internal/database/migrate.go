package database

import (
	"log"

	"gorm.io/gorm"

	"github.com/tastoria/backend/internal/model"
)

// Migrate brings the schema up to date for the catalog models. Postgres
// additionally needs the pgvector extension for the embedding column.
func Migrate(db *gorm.DB) error {
	if db.Dialector.Name() == "postgres" {
		if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
			return err
		}
	}

	log.Printf("[Database] running auto-migration")
	return db.AutoMigrate(
		&model.Recipe{},
		&model.Review{},
		&model.RecipeFavorite{},
	)
}
