package models

import (
	"time"

	"gorm.io/gorm"
)

// LossReason is an admin-managed loss cause. IDs are assigned by the admin,
// not generated, and reasons are hard-deleted.
type LossReason struct {
	ID         uint      `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Title      string    `gorm:"size:128;not null" json:"title"`
	Department string    `gorm:"size:64;not null" json:"department"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Loss attributes part of a production's plan/achievement gap to a reason.
type Loss struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	ProductionID uint           `gorm:"not null;index" json:"production_id"`
	LossReasonID uint           `gorm:"not null;index" json:"loss_reason_id"`
	Amount       int            `gorm:"not null" json:"amount"`
	CreatedAt    time.Time      `json:"created_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	LossReason *LossReason `gorm:"foreignKey:LossReasonID" json:"loss_reason,omitempty"`
	Production *Production `gorm:"foreignKey:ProductionID" json:"-"`
}
