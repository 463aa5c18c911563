package database

import (
	"fmt"

	"gallery-la/config"
	"gallery-la/internal/domain/profiles"
	"gallery-la/internal/domain/works"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the configured database. Postgres gets the pgcrypto
// extension used for uuid generation.
func Open(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	gcfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn), TranslateError: true}

	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case config.DriverSQLite:
		dialector = sqlite.Open(cfg.DBURL)
	default:
		dialector = postgres.Open(cfg.DBURL)
	}

	db, err := gorm.Open(dialector, gcfg)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", cfg.DBDriver, err)
	}

	switch cfg.DBDriver {
	case config.DriverSQLite:
		if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return nil, fmt.Errorf("enable foreign keys: %w", err)
		}
	default:
		if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto;`).Error; err != nil {
			return nil, fmt.Errorf("enable pgcrypto extension: %w", err)
		}
	}

	log.Info("database connected", zap.String("driver", cfg.DBDriver))
	return db, nil
}

// Migrate creates or updates every table the backend uses.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&profiles.Profile{},
		&works.Artwork{},
		&works.Exhibition{},
		&works.ExhibitionArtwork{},
	); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}
