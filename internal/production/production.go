// Package production maintains hourly plan and actuals rows per shift and
// line. Planners write plans; team leaders write actuals for their own line.
package production

import (
	"errors"
	"fmt"

	"github.com/zulandar/shiftboard/internal/apperr"
	"github.com/zulandar/shiftboard/internal/db"
	"github.com/zulandar/shiftboard/internal/identity"
	"github.com/zulandar/shiftboard/internal/models"
	"github.com/zulandar/shiftboard/internal/paging"
	"github.com/zulandar/shiftboard/internal/shift"
	"gorm.io/gorm"
)

// PlanEntry is one hour of a plan batch.
type PlanEntry struct {
	ShiftID uint   `json:"shift_id"`
	LineID  uint   `json:"line_id"`
	Hour    string `json:"hour"`
	Plan    int    `json:"plan"`
}

// Actuals is a team leader's report for one hour of a shift. Plan is only
// used when no planned row exists yet.
type Actuals struct {
	ShiftID     uint   `json:"shift_id"`
	Hour        string `json:"hour"`
	Plan        int    `json:"plan"`
	Achievement int    `json:"achievement"`
	Scraps      int    `json:"scraps"`
	Defects     int    `json:"defects"`
	Flash       int    `json:"flash"`
}

func (a Actuals) validate() error {
	for _, f := range []struct {
		name string
		v    int
	}{
		{"plan", a.Plan},
		{"achievement", a.Achievement},
		{"scraps", a.Scraps},
		{"defects", a.Defects},
		{"flash", a.Flash},
	} {
		if f.v < 0 {
			return apperr.Invalid("%s must not be negative", f.name)
		}
		if f.v > models.MaxQuantity {
			return apperr.Invalid("%s must not exceed %d", f.name, models.MaxQuantity)
		}
	}
	return nil
}

// find loads the live row for (shift, line, hour), or nil.
func find(q *gorm.DB, shiftID, lineID uint, hour models.Hour) (*models.Production, error) {
	var rows []models.Production
	err := q.Where("shift_id = ? AND line_id = ? AND hour = ?", shiftID, lineID, hour).
		Order("id ASC").Limit(1).Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("production: find %d/%d/%s: %w", shiftID, lineID, hour, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// Lookup returns the live row for (shift, line, hour). A missing row is not
// an error: it returns nil, nil.
func Lookup(gormDB *gorm.DB, shiftID, lineID uint, hour models.Hour) (*models.Production, error) {
	return find(gormDB, shiftID, lineID, hour)
}

// lockShift loads the scoped shift with a row lock so concurrent upserts on
// the same shift serialize.
func lockShift(tx *gorm.DB, scope identity.Scope, shiftID uint) (*models.Shift, error) {
	s, err := shift.Lookup(tx, scope, shiftID)
	if err != nil {
		return nil, err
	}
	if err := db.ForUpdate(tx).Where("id = ?", s.ID).First(&models.Shift{}).Error; err != nil {
		return nil, fmt.Errorf("production: lock shift %d: %w", s.ID, err)
	}
	return s, nil
}

// SetPlans upserts the plan of every hour in entries. All entries must share
// one shift and line, both inside the planner's plant. The batch is applied
// in one transaction; replaying it leaves the same state.
func SetPlans(gormDB *gorm.DB, p identity.Principal, entries []PlanEntry) ([]models.Production, error) {
	if len(entries) == 0 {
		return nil, apperr.Invalid("no production plans provided")
	}
	first := entries[0]
	hours := make([]models.Hour, len(entries))
	for i, e := range entries {
		if e.ShiftID != first.ShiftID || e.LineID != first.LineID {
			return nil, apperr.Invalid("all production plans must be for the same shift and line")
		}
		if e.Plan < 0 {
			return nil, apperr.Invalid("plan must not be negative")
		}
		if e.Plan > models.MaxQuantity {
			return nil, apperr.Invalid("plan must not exceed %d", models.MaxQuantity)
		}
		h, err := models.ParseHour(e.Hour)
		if err != nil {
			return nil, apperr.Invalid("%v", err)
		}
		hours[i] = h
	}

	scope, err := identity.Require(gormDB, p, models.RolePlanner)
	if err != nil {
		return nil, err
	}

	out := make([]models.Production, 0, len(entries))
	err = gormDB.Transaction(func(tx *gorm.DB) error {
		if _, err := lockShift(tx, scope, first.ShiftID); err != nil {
			return err
		}
		if _, err := identity.LineInPlant(tx, first.LineID, scope.PlantID); err != nil {
			return err
		}
		for i, e := range entries {
			row, err := find(tx, e.ShiftID, e.LineID, hours[i])
			if err != nil {
				return err
			}
			if row != nil {
				if err := tx.Model(row).Update("plan", e.Plan).Error; err != nil {
					return fmt.Errorf("production: update plan %d: %w", row.ID, err)
				}
				row.Plan = e.Plan
			} else {
				row = &models.Production{
					ShiftID:   e.ShiftID,
					LineID:    e.LineID,
					Hour:      hours[i],
					Plan:      e.Plan,
					PlannerID: p.SapID,
				}
				if err := tx.Create(row).Error; err != nil {
					return fmt.Errorf("production: create plan: %w", err)
				}
			}
			out = append(out, *row)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RecordActuals writes a team leader's actuals for their line. An existing
// row keeps its plan and planner; a missing row is created with the payload
// plan and the shift's planner. It reports whether a row was created.
func RecordActuals(gormDB *gorm.DB, p identity.Principal, a Actuals) (*models.Production, bool, error) {
	if err := a.validate(); err != nil {
		return nil, false, err
	}
	hour, err := models.ParseHour(a.Hour)
	if err != nil {
		return nil, false, apperr.Invalid("%v", err)
	}
	scope, err := identity.Require(gormDB, p, models.RoleTeamLeader)
	if err != nil {
		return nil, false, err
	}

	var (
		row     *models.Production
		created bool
	)
	err = gormDB.Transaction(func(tx *gorm.DB) error {
		s, err := lockShift(tx, scope, a.ShiftID)
		if err != nil {
			return err
		}
		row, err = find(tx, s.ID, scope.LineID, hour)
		if err != nil {
			return err
		}
		leader := p.SapID
		if row != nil {
			updates := map[string]interface{}{
				"achievement":    a.Achievement,
				"scraps":         a.Scraps,
				"defects":        a.Defects,
				"flash":          a.Flash,
				"team_leader_id": leader,
			}
			if err := tx.Model(row).Updates(updates).Error; err != nil {
				return fmt.Errorf("production: record actuals %d: %w", row.ID, err)
			}
			row.Achievement, row.Scraps, row.Defects, row.Flash = a.Achievement, a.Scraps, a.Defects, a.Flash
			row.TeamLeaderID = &leader
			return nil
		}
		row = &models.Production{
			ShiftID:      s.ID,
			LineID:       scope.LineID,
			Hour:         hour,
			Plan:         a.Plan,
			Achievement:  a.Achievement,
			Scraps:       a.Scraps,
			Defects:      a.Defects,
			Flash:        a.Flash,
			PlannerID:    s.PlannerID,
			TeamLeaderID: &leader,
		}
		if err := tx.Create(row).Error; err != nil {
			return fmt.Errorf("production: create actuals: %w", err)
		}
		created = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return row, created, nil
}

// Get returns the team leader's row for (shift, hour) on their own line, or
// nil when nothing has been planned or recorded yet.
func Get(gormDB *gorm.DB, p identity.Principal, shiftID uint, hourStr string) (*models.Production, error) {
	hour, err := models.ParseHour(hourStr)
	if err != nil {
		return nil, apperr.Invalid("%v", err)
	}
	scope, err := identity.Require(gormDB, p, models.RoleTeamLeader)
	if err != nil {
		return nil, err
	}
	if _, err := shift.Lookup(gormDB, scope, shiftID); err != nil {
		return nil, err
	}
	return find(gormDB, shiftID, scope.LineID, hour)
}

// PlanFor returns the planned amount for the team leader's line in (shift,
// hour). A missing row or a zero plan is reported as not found.
func PlanFor(gormDB *gorm.DB, p identity.Principal, shiftID uint, hourStr string) (int, error) {
	row, err := Get(gormDB, p, shiftID, hourStr)
	if err != nil {
		return 0, err
	}
	if row == nil || row.Plan == 0 {
		return 0, apperr.NotFound(fmt.Sprintf("production plan for shift %d %s", shiftID, hourStr))
	}
	return row.Plan, nil
}

// List returns the live rows of one shift and line in the planner's plant,
// ordered by hour.
func List(gormDB *gorm.DB, p identity.Principal, shiftID, lineID uint) (paging.List[models.Production], error) {
	scope, err := identity.Require(gormDB, p, models.RolePlanner)
	if err != nil {
		return paging.List[models.Production]{}, err
	}
	if _, err := shift.Lookup(gormDB, scope, shiftID); err != nil {
		return paging.List[models.Production]{}, err
	}
	if _, err := identity.LineInPlant(gormDB, lineID, scope.PlantID); err != nil {
		return paging.List[models.Production]{}, err
	}
	var items []models.Production
	if err := gormDB.Where("shift_id = ? AND line_id = ?", shiftID, lineID).Order("hour ASC").Find(&items).Error; err != nil {
		return paging.List[models.Production]{}, fmt.Errorf("production: list %d/%d: %w", shiftID, lineID, err)
	}
	return paging.NewList(items), nil
}

// Owned loads a live production row whose team leader of record is p.
// Anything else is reported as not found.
func Owned(q *gorm.DB, p identity.Principal, id uint) (*models.Production, error) {
	var row models.Production
	if err := q.Where("id = ? AND team_leader_id = ?", id, p.SapID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(fmt.Sprintf("production %d", id))
		}
		return nil, fmt.Errorf("production: get %d: %w", id, err)
	}
	return &row, nil
}
