// Package shift manages the shift ledger: creation, plant-scoped listing and
// lookup, and the lines eligible for a shift.
package shift

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/zulandar/shiftboard/internal/apperr"
	"github.com/zulandar/shiftboard/internal/db"
	"github.com/zulandar/shiftboard/internal/identity"
	"github.com/zulandar/shiftboard/internal/models"
	"github.com/zulandar/shiftboard/internal/paging"
	"gorm.io/gorm"
)

// DateLayout is the accepted shift date format.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD calendar day as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, apperr.Invalid("invalid date %q, use YYYY-MM-DD", s)
	}
	return d, nil
}

// onDay restricts a shift query to one calendar day.
func onDay(q *gorm.DB, day time.Time) *gorm.DB {
	return q.Where("shifts.date >= ? AND shifts.date < ?", day, day.AddDate(0, 0, 1))
}

// CreateOpts holds the raw planner input for a new shift.
type CreateOpts struct {
	Date     string
	DayNight string
	Shift    string
}

// Create records a shift for the planner's plant. A live shift with the same
// day, period and type in that plant is a conflict.
func Create(gormDB *gorm.DB, p identity.Principal, opts CreateOpts) (*models.Shift, error) {
	scope, err := identity.Require(gormDB, p, models.RolePlanner)
	if err != nil {
		return nil, err
	}
	day, err := ParseDate(opts.Date)
	if err != nil {
		return nil, err
	}
	dn, err := models.ParseDayNight(opts.DayNight)
	if err != nil {
		return nil, apperr.Invalid("%v", err)
	}
	st, err := models.ParseShiftType(opts.Shift)
	if err != nil {
		return nil, apperr.Invalid("%v", err)
	}

	s := models.Shift{
		Date:      day,
		DayNight:  dn,
		Type:      st,
		PlantID:   scope.PlantID,
		PlannerID: p.SapID,
	}
	err = gormDB.Transaction(func(tx *gorm.DB) error {
		// Serializes shift creation per plant on servers with row locks.
		var plant models.Plant
		if err := db.ForUpdate(tx).Where("id = ?", scope.PlantID).First(&plant).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound(fmt.Sprintf("plant %d", scope.PlantID))
			}
			return fmt.Errorf("shift: lock plant %d: %w", scope.PlantID, err)
		}
		var count int64
		q := onDay(tx.Model(&models.Shift{}), day).
			Where("day_night = ? AND shift = ? AND plant_id = ?", dn, st, scope.PlantID)
		if err := q.Count(&count).Error; err != nil {
			return fmt.Errorf("shift: check duplicate: %w", err)
		}
		if count > 0 {
			return apperr.Conflict("shift %s %s %s already exists", day.Format(DateLayout), dn, st)
		}
		if err := tx.Create(&s).Error; err != nil {
			return fmt.Errorf("shift: create: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// List returns the planner's plant shifts, newest first.
func List(gormDB *gorm.DB, p identity.Principal, params paging.Params) (paging.Page[models.Shift], error) {
	params = paging.Shifts.Normalize(params)
	scope, err := identity.Require(gormDB, p, models.RolePlanner)
	if err != nil {
		return paging.Page[models.Shift]{}, err
	}
	q := gormDB.Model(&models.Shift{}).Where("plant_id = ?", scope.PlantID)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return paging.Page[models.Shift]{}, fmt.Errorf("shift: count: %w", err)
	}
	var items []models.Shift
	if err := params.Scope(q).Preload("Plant").Order("created_at DESC").Order("id DESC").Find(&items).Error; err != nil {
		return paging.Page[models.Shift]{}, fmt.Errorf("shift: list: %w", err)
	}
	return paging.NewPage(items, total, params), nil
}

// Lookup loads a live shift inside scope. Shifts outside the scope's plant
// are reported as not found.
func Lookup(gormDB *gorm.DB, scope identity.Scope, id uint) (*models.Shift, error) {
	q := gormDB.Where("id = ?", id)
	if !scope.Unrestricted() {
		q = q.Where("plant_id = ?", scope.PlantID)
	}
	var s models.Shift
	if err := q.First(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(fmt.Sprintf("shift %d", id))
		}
		return nil, fmt.Errorf("shift: get %d: %w", id, err)
	}
	return &s, nil
}

// Get returns a shift visible to p, with plant and planner.
func Get(gormDB *gorm.DB, p identity.Principal, id uint) (*models.Shift, error) {
	scope, err := identity.Require(gormDB, p, models.RolePlanner, models.RoleTeamLeader, models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	s, err := Lookup(gormDB, scope, id)
	if err != nil {
		return nil, err
	}
	if err := gormDB.Preload("Plant").Preload("Planner.User").First(s, s.ID).Error; err != nil {
		return nil, fmt.Errorf("shift: load %d: %w", id, err)
	}
	return s, nil
}

// ListForDate returns every live shift on a calendar day in the caller's
// plant.
func ListForDate(gormDB *gorm.DB, p identity.Principal, date string) ([]models.Shift, error) {
	scope, err := identity.Require(gormDB, p, models.RoleTeamLeader, models.RolePlanner)
	if err != nil {
		return nil, err
	}
	day, err := ParseDate(date)
	if err != nil {
		return nil, err
	}
	var items []models.Shift
	q := onDay(gormDB.Model(&models.Shift{}), day).Where("plant_id = ?", scope.PlantID)
	if err := q.Order("day_night ASC").Order("shift ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("shift: list for %s: %w", date, err)
	}
	return items, nil
}

// Delete soft-deletes a shift of the planner's plant.
func Delete(gormDB *gorm.DB, p identity.Principal, id uint) error {
	scope, err := identity.Require(gormDB, p, models.RolePlanner)
	if err != nil {
		return err
	}
	res := gormDB.Where("id = ? AND plant_id = ?", id, scope.PlantID).Delete(&models.Shift{})
	if res.Error != nil {
		return fmt.Errorf("shift: delete %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound(fmt.Sprintf("shift %d", id))
	}
	return nil
}

// Lines returns every live line of the shift's plant, ordered by name.
func Lines(gormDB *gorm.DB, p identity.Principal, shiftID uint) (paging.List[models.Line], error) {
	scope, err := identity.Require(gormDB, p, models.RolePlanner, models.RoleTeamLeader, models.RoleAdmin)
	if err != nil {
		return paging.List[models.Line]{}, err
	}
	s, err := Lookup(gormDB, scope, shiftID)
	if err != nil {
		return paging.List[models.Line]{}, err
	}
	lines, err := identity.LinesInPlant(gormDB, s.PlantID)
	if err != nil {
		return paging.List[models.Line]{}, err
	}
	return paging.NewList(lines), nil
}
