package config

import (
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/cartonmill/cartones-backend/models"
)

// SetupDatabase connects to Postgres and runs migrations. TranslateError
// maps violations of the fingerprint unique index to gorm.ErrDuplicatedKey,
// which the batch save protocol relies on to tell a uniqueness race apart
// from a real failure.
func SetupDatabase(cfg Config) *gorm.DB {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("[FATAL] Failed to connect to DB: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Order{},
		&models.Card{},
	); err != nil {
		log.Fatalf("[FATAL] Migration failed: %v", err)
	}

	log.Println("✅ Database migration completed")
	return db
}
