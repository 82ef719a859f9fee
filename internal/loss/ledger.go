// Package loss keeps the loss ledger and the loss reason catalog.
//
// The live losses of a production row never add up to more than its
// plan/achievement gap. Record checks and inserts under a lock on the
// production row, and the allocated total is always summed from live rows.
package loss

import (
	"errors"
	"fmt"

	"github.com/zulandar/shiftboard/internal/apperr"
	"github.com/zulandar/shiftboard/internal/db"
	"github.com/zulandar/shiftboard/internal/identity"
	"github.com/zulandar/shiftboard/internal/models"
	"github.com/zulandar/shiftboard/internal/production"
	"gorm.io/gorm"
)

// RecordOpts is a team leader's loss entry.
type RecordOpts struct {
	ProductionID uint `json:"production_id"`
	LossReasonID uint `json:"loss_reason_id"`
	Amount       int  `json:"amount"`
}

// Allocation summarizes how much of a production's gap is attributed.
type Allocation struct {
	Cap       int `json:"cap"`
	Allocated int `json:"allocated"`
	Remaining int `json:"remaining"`
}

// allocated sums the live losses of a production.
func allocated(q *gorm.DB, productionID uint) (int, error) {
	var total int64
	err := q.Model(&models.Loss{}).
		Where("production_id = ?", productionID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("loss: sum production %d: %w", productionID, err)
	}
	return int(total), nil
}

// Record attributes amount of a production's gap to a reason. The
// production must be live and recorded by p; the new total may not exceed
// plan - achievement.
func Record(gormDB *gorm.DB, p identity.Principal, opts RecordOpts) (*models.Loss, error) {
	if opts.Amount <= 0 {
		return nil, apperr.Invalid("loss amount must be positive")
	}
	if opts.Amount > models.MaxQuantity {
		return nil, apperr.Invalid("loss amount must not exceed %d", models.MaxQuantity)
	}
	if _, err := identity.Require(gormDB, p, models.RoleTeamLeader); err != nil {
		return nil, err
	}

	var entry models.Loss
	err := gormDB.Transaction(func(tx *gorm.DB) error {
		prod, err := production.Owned(db.ForUpdate(tx), p, opts.ProductionID)
		if err != nil {
			return err
		}
		reason, err := lookupReason(tx, opts.LossReasonID)
		if err != nil {
			return err
		}
		existing, err := allocated(tx, prod.ID)
		if err != nil {
			return err
		}
		limit := prod.LossCap()
		if opts.Amount > limit-existing {
			return &apperr.CapExceededError{Cap: limit, Existing: existing, Attempted: opts.Amount}
		}
		entry = models.Loss{
			ProductionID: prod.ID,
			LossReasonID: reason.ID,
			Amount:       opts.Amount,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return fmt.Errorf("loss: create: %w", err)
		}
		entry.LossReason = reason
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// Delete soft-deletes a loss on a production recorded by p, freeing its
// amount for new entries.
func Delete(gormDB *gorm.DB, p identity.Principal, lossID uint) error {
	if _, err := identity.Require(gormDB, p, models.RoleTeamLeader); err != nil {
		return err
	}
	return gormDB.Transaction(func(tx *gorm.DB) error {
		var entry models.Loss
		if err := tx.Where("id = ?", lossID).First(&entry).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound(fmt.Sprintf("loss %d", lossID))
			}
			return fmt.Errorf("loss: get %d: %w", lossID, err)
		}
		if _, err := production.Owned(db.ForUpdate(tx), p, entry.ProductionID); err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				return apperr.NotFound(fmt.Sprintf("loss %d", lossID))
			}
			return err
		}
		if err := tx.Delete(&entry).Error; err != nil {
			return fmt.Errorf("loss: delete %d: %w", lossID, err)
		}
		return nil
	})
}

// List returns the live losses of a production recorded by p, with reasons.
func List(gormDB *gorm.DB, p identity.Principal, productionID uint) ([]models.Loss, error) {
	if _, err := identity.Require(gormDB, p, models.RoleTeamLeader); err != nil {
		return nil, err
	}
	if _, err := production.Owned(gormDB, p, productionID); err != nil {
		return nil, err
	}
	var out []models.Loss
	if err := gormDB.Preload("LossReason").Where("production_id = ?", productionID).Order("id ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("loss: list production %d: %w", productionID, err)
	}
	return out, nil
}

// Allocate reports the cap, the allocated total and what remains for a
// production recorded by p.
func Allocate(gormDB *gorm.DB, p identity.Principal, productionID uint) (Allocation, error) {
	if _, err := identity.Require(gormDB, p, models.RoleTeamLeader); err != nil {
		return Allocation{}, err
	}
	prod, err := production.Owned(gormDB, p, productionID)
	if err != nil {
		return Allocation{}, err
	}
	total, err := allocated(gormDB, prod.ID)
	if err != nil {
		return Allocation{}, err
	}
	limit := prod.LossCap()
	return Allocation{Cap: limit, Allocated: total, Remaining: limit - total}, nil
}
