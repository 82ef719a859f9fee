package models

import (
	"time"

	"gorm.io/gorm"
)

// Plant is the root of the organizational hierarchy.
type Plant struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"size:128;not null;index" json:"name"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Zone belongs to a Plant.
type Zone struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"size:128;not null;index" json:"name"`
	PlantID   uint           `gorm:"not null;index" json:"plant_id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Plant *Plant `gorm:"foreignKey:PlantID" json:"plant,omitempty"`
}

// Loop belongs to a Zone.
type Loop struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"size:128;not null;index" json:"name"`
	ZoneID    uint           `gorm:"not null;index" json:"zone_id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Zone *Zone `gorm:"foreignKey:ZoneID" json:"zone,omitempty"`
}

// Line is a production line; production plans and actuals are per line.
type Line struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"size:128;not null;index" json:"name"`
	LoopID    uint           `gorm:"not null;index" json:"loop_id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Loop *Loop `gorm:"foreignKey:LoopID" json:"loop,omitempty"`
}

// Cell is the leaf node of the hierarchy; members are assigned to cells.
type Cell struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"size:128;not null;index" json:"name"`
	LineID    uint           `gorm:"not null;index" json:"line_id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Line *Line `gorm:"foreignKey:LineID" json:"line,omitempty"`
}
