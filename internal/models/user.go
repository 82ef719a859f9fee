package models

import (
	"time"

	"gorm.io/gorm"
)

// User is an account identified by its SAP id.
type User struct {
	SapID     string         `gorm:"primaryKey;size:32" json:"sap_id"`
	Name      string         `gorm:"size:128;not null" json:"name"`
	Role      Role           `gorm:"size:16;not null;index" json:"role"`
	Password  string         `gorm:"size:255;not null" json:"-"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Planner assigns a planner user to exactly one plant.
type Planner struct {
	UserID    string         `gorm:"primaryKey;size:32" json:"user_id"`
	PlantID   uint           `gorm:"not null;index" json:"plant_id"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	User  *User  `gorm:"foreignKey:UserID;references:SapID" json:"user,omitempty"`
	Plant *Plant `gorm:"foreignKey:PlantID" json:"plant,omitempty"`
}

// TeamLeader assigns a team leader user to exactly one line.
type TeamLeader struct {
	UserID    string         `gorm:"primaryKey;size:32" json:"user_id"`
	LineID    uint           `gorm:"not null;index" json:"line_id"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	User *User `gorm:"foreignKey:UserID;references:SapID" json:"user,omitempty"`
	Line *Line `gorm:"foreignKey:LineID" json:"line,omitempty"`
}

// Member assigns a member user to exactly one cell.
type Member struct {
	UserID    string         `gorm:"primaryKey;size:32" json:"user_id"`
	CellID    uint           `gorm:"not null;index" json:"cell_id"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	User *User `gorm:"foreignKey:UserID;references:SapID" json:"user,omitempty"`
	Cell *Cell `gorm:"foreignKey:CellID" json:"cell,omitempty"`
}
