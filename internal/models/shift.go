package models

import (
	"time"

	"gorm.io/gorm"
)

// Shift is a scheduled working period of a plant. The tuple
// (Date, DayNight, Type, PlantID) is unique among live shifts.
type Shift struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Date      time.Time      `gorm:"not null;index" json:"date"`
	DayNight  DayNight       `gorm:"size:8;not null" json:"day_night"`
	Type      ShiftType      `gorm:"column:shift;size:8;not null" json:"shift"`
	PlantID   uint           `gorm:"not null;index" json:"plant_id"`
	PlannerID string         `gorm:"size:32;not null;index" json:"planner_id"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Plant   *Plant   `gorm:"foreignKey:PlantID" json:"plant,omitempty"`
	Planner *Planner `gorm:"foreignKey:PlannerID;references:UserID" json:"planner,omitempty"`
}
