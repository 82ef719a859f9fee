package identity

import (
	"fmt"

	"github.com/zulandar/shiftboard/internal/apperr"
	"github.com/zulandar/shiftboard/internal/models"
	"gorm.io/gorm"
)

// LiveLines starts a query over lines whose loop, zone and plant are all
// live. zones.plant_id is available for filtering.
func LiveLines(db *gorm.DB) *gorm.DB {
	return db.Model(&models.Line{}).
		Joins("JOIN loops ON loops.id = lines.loop_id AND loops.deleted_at IS NULL").
		Joins("JOIN zones ON zones.id = loops.zone_id AND zones.deleted_at IS NULL").
		Joins("JOIN plants ON plants.id = zones.plant_id AND plants.deleted_at IS NULL")
}

// PlantOfLine returns the plant a line belongs to through its live ancestor
// chain.
func PlantOfLine(db *gorm.DB, lineID uint) (uint, error) {
	var plantIDs []uint
	if err := LiveLines(db).Where("lines.id = ?", lineID).Pluck("zones.plant_id", &plantIDs).Error; err != nil {
		return 0, fmt.Errorf("identity: resolve plant of line %d: %w", lineID, err)
	}
	if len(plantIDs) == 0 {
		return 0, apperr.NotFound(fmt.Sprintf("line %d", lineID))
	}
	return plantIDs[0], nil
}

// LinesInPlant returns every live line of a plant, ordered by name, with the
// loop, zone and plant preloaded.
func LinesInPlant(db *gorm.DB, plantID uint) ([]models.Line, error) {
	var lines []models.Line
	if err := LiveLines(db).
		Select("lines.*").
		Where("zones.plant_id = ?", plantID).
		Preload("Loop.Zone.Plant").
		Order("lines.name ASC").
		Find(&lines).Error; err != nil {
		return nil, fmt.Errorf("identity: lines of plant %d: %w", plantID, err)
	}
	return lines, nil
}

// LineInPlant returns the line when it is live and belongs to plantID, and
// ErrNotFound otherwise.
func LineInPlant(db *gorm.DB, lineID, plantID uint) (*models.Line, error) {
	var lines []models.Line
	if err := LiveLines(db).
		Select("lines.*").
		Where("lines.id = ? AND zones.plant_id = ?", lineID, plantID).
		Preload("Loop.Zone.Plant").
		Limit(1).
		Find(&lines).Error; err != nil {
		return nil, fmt.Errorf("identity: get line %d: %w", lineID, err)
	}
	if len(lines) == 0 {
		return nil, apperr.NotFound(fmt.Sprintf("line %d", lineID))
	}
	return &lines[0], nil
}

// GetLine returns a line visible to p. Planners only see lines of their own
// plant; admins see any live line.
func GetLine(db *gorm.DB, p Principal, lineID uint) (*models.Line, error) {
	scope, err := Require(db, p, models.RolePlanner, models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	plantID := scope.PlantID
	if scope.Unrestricted() {
		if plantID, err = PlantOfLine(db, lineID); err != nil {
			return nil, err
		}
	}
	return LineInPlant(db, lineID, plantID)
}
