package models

import (
	"time"

	"gorm.io/gorm"
)

// Production holds the plan and actuals of one line for one hour of a shift.
// (ShiftID, LineID, Hour) is unique among live rows.
type Production struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	ShiftID      uint           `gorm:"not null;index:idx_production_key" json:"shift_id"`
	LineID       uint           `gorm:"not null;index:idx_production_key" json:"line_id"`
	Hour         Hour           `gorm:"size:8;not null;index:idx_production_key" json:"hour"`
	Plan         int            `gorm:"not null;default:0" json:"plan"`
	Achievement  int            `gorm:"not null;default:0" json:"achievement"`
	Scraps       int            `gorm:"not null;default:0" json:"scraps"`
	Defects      int            `gorm:"not null;default:0" json:"defects"`
	Flash        int            `gorm:"not null;default:0" json:"flash"`
	PlannerID    string         `gorm:"size:32;index" json:"planner_id"`
	TeamLeaderID *string        `gorm:"size:32;index" json:"team_leader_id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	Shift *Shift `gorm:"foreignKey:ShiftID" json:"shift,omitempty"`
	Line  *Line  `gorm:"foreignKey:LineID" json:"line,omitempty"`
}

// MaxQuantity bounds plan, actuals and loss amounts so that totals over a
// production row cannot overflow.
const MaxQuantity = 1_000_000_000

// LossCap is the plan/achievement gap that losses may be allocated against.
func (p *Production) LossCap() int {
	return p.Plan - p.Achievement
}
