package db

import (
	"fmt"

	"github.com/zulandar/shiftboard/internal/models"
	"gorm.io/gorm"
)

// AllModels returns every GORM model in migration order (parents first).
func AllModels() []interface{} {
	return []interface{}{
		&models.Plant{},
		&models.Zone{},
		&models.Loop{},
		&models.Line{},
		&models.Cell{},
		&models.User{},
		&models.Planner{},
		&models.TeamLeader{},
		&models.Member{},
		&models.Shift{},
		&models.Production{},
		&models.LossReason{},
		&models.Loss{},
	}
}

// AutoMigrate creates or updates all tables.
func AutoMigrate(gormDB *gorm.DB) error {
	if err := gormDB.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("db: auto-migrate: %w", err)
	}
	return nil
}

// DropAll drops every shiftboard table, children first.
func DropAll(gormDB *gorm.DB) error {
	all := AllModels()
	for i := len(all) - 1; i >= 0; i-- {
		if err := gormDB.Migrator().DropTable(all[i]); err != nil {
			return fmt.Errorf("db: drop %T: %w", all[i], err)
		}
	}
	return nil
}
