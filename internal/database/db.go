package database

import (
	"fmt"
	"log/slog"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Hedwigsan/cookshare/internal/config"
	"github.com/Hedwigsan/cookshare/internal/models"
)

// Connect opens the sqlite database, creates the schema and backfills columns
// added after the first release.
func Connect(cfg *config.Config, logger *slog.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(cfg.DatabasePath), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := Migrate(db, logger); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("Connected to the database successfully", "path", cfg.DatabasePath)
	return db, nil
}

// Migrate creates missing tables and indexes. Safe to run on every boot.
func Migrate(db *gorm.DB, logger *slog.Logger) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Recipe{},
		&models.Ingredient{},
		&models.Step{},
		&models.Tag{},
		&models.RecipeTag{},
		&models.Favorite{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	if err := backfillRecipeColumns(db, logger); err != nil {
		return err
	}

	logger.Info("Database migrations applied successfully")
	return nil
}

// backfillRecipeColumns adds columns introduced after early deployments shipped
// a narrower recipes table. AutoMigrate covers fresh databases; this covers
// ones created before AuthorID and ViewCount existed.
func backfillRecipeColumns(db *gorm.DB, logger *slog.Logger) error {
	m := db.Migrator()
	for _, column := range []string{"AuthorID", "ViewCount"} {
		if m.HasColumn(&models.Recipe{}, column) {
			continue
		}
		if err := m.AddColumn(&models.Recipe{}, column); err != nil {
			return fmt.Errorf("add column %s: %w", column, err)
		}
		logger.Info("added missing recipe column", "column", column)
	}
	return nil
}
