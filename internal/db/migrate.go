package db

import (
	"fmt"

	"github.com/ombrelle/switchboard/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AllModels returns every GORM model the console persists.
func AllModels() []interface{} {
	return []interface{}{
		&models.Message{},
		&models.Session{},
		&models.Customer{},
		&models.AutoReplyRule{},
		&models.OfficeHours{},
		&models.Flow{},
		&models.FlowStep{},
		&models.Template{},
	}
}

// AutoMigrate creates or updates all console tables.
func AutoMigrate(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("db: auto-migrate: %w", err)
	}
	return nil
}

// Reset drops and recreates all console tables.
func Reset(gdb *gorm.DB) error {
	if err := gdb.Migrator().DropTable(AllModels()...); err != nil {
		return fmt.Errorf("db: drop tables: %w", err)
	}
	return AutoMigrate(gdb)
}

// SeedOfficeHours upserts a default office-hours row for each department that
// does not have one yet. Existing rows keep their configured hours.
func SeedOfficeHours(gdb *gorm.DB, departments []string, defaultHours string) error {
	for _, tag := range departments {
		row := models.OfficeHours{Tag: tag, Hours: defaultHours}
		err := gdb.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tag"}},
			DoNothing: true,
		}).Create(&row).Error
		if err != nil {
			return fmt.Errorf("db: seed office hours for %q: %w", tag, err)
		}
	}
	return nil
}
