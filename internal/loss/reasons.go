package loss

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zulandar/shiftboard/internal/apperr"
	"github.com/zulandar/shiftboard/internal/db"
	"github.com/zulandar/shiftboard/internal/models"
	"github.com/zulandar/shiftboard/internal/paging"
	"gorm.io/gorm"
)

// ReasonInput is the admin-supplied content of a loss reason.
type ReasonInput struct {
	ID         uint   `json:"id"`
	Title      string `json:"title"`
	Department string `json:"department"`
}

func (in ReasonInput) normalize() (ReasonInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Department = strings.TrimSpace(in.Department)
	var errs []string
	if in.ID == 0 {
		errs = append(errs, "id must be positive")
	}
	if in.Title == "" {
		errs = append(errs, "title is required")
	}
	if in.Department == "" {
		errs = append(errs, "department is required")
	}
	if len(errs) > 0 {
		return in, apperr.Invalid("%s", strings.Join(errs, "; "))
	}
	return in, nil
}

func lookupReason(q *gorm.DB, id uint) (*models.LossReason, error) {
	var r models.LossReason
	if err := q.Where("id = ?", id).First(&r).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(fmt.Sprintf("loss reason %d", id))
		}
		return nil, fmt.Errorf("loss: get reason %d: %w", id, err)
	}
	return &r, nil
}

func reasonExists(q *gorm.DB, id uint) (bool, error) {
	var count int64
	if err := q.Model(&models.LossReason{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("loss: check reason %d: %w", id, err)
	}
	return count > 0, nil
}

// CreateReason adds a reason under its client-assigned id.
func CreateReason(gormDB *gorm.DB, in ReasonInput) (*models.LossReason, error) {
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}
	r := models.LossReason{ID: in.ID, Title: in.Title, Department: in.Department}
	err = gormDB.Transaction(func(tx *gorm.DB) error {
		exists, err := reasonExists(tx, in.ID)
		if err != nil {
			return err
		}
		if exists {
			return apperr.Conflict("loss reason %d already exists", in.ID)
		}
		if err := tx.Create(&r).Error; err != nil {
			if db.IsDuplicate(err) {
				return apperr.Conflict("loss reason %d already exists", in.ID)
			}
			return fmt.Errorf("loss: create reason %d: %w", in.ID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// GetReason returns one reason.
func GetReason(gormDB *gorm.DB, id uint) (*models.LossReason, error) {
	return lookupReason(gormDB, id)
}

// ListReasons pages through the catalog ordered by id.
func ListReasons(gormDB *gorm.DB, params paging.Params) (paging.Page[models.LossReason], error) {
	params = paging.LossReasons.Normalize(params)
	var total int64
	if err := gormDB.Model(&models.LossReason{}).Count(&total).Error; err != nil {
		return paging.Page[models.LossReason]{}, fmt.Errorf("loss: count reasons: %w", err)
	}
	var items []models.LossReason
	if err := params.Scope(gormDB).Order("id ASC").Find(&items).Error; err != nil {
		return paging.Page[models.LossReason]{}, fmt.Errorf("loss: list reasons: %w", err)
	}
	return paging.NewPage(items, total, params), nil
}

// ActiveReasons returns the whole catalog ordered by id, for loss entry.
func ActiveReasons(gormDB *gorm.DB) ([]models.LossReason, error) {
	var items []models.LossReason
	if err := gormDB.Order("id ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("loss: list reasons: %w", err)
	}
	return items, nil
}

// UpdateReason replaces the content of reason id. When in.ID differs the
// reason is renumbered and every loss referencing it, deleted or not, is
// moved to the new id in the same transaction.
func UpdateReason(gormDB *gorm.DB, id uint, in ReasonInput) (*models.LossReason, error) {
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}
	var out *models.LossReason
	err = gormDB.Transaction(func(tx *gorm.DB) error {
		if _, err := lookupReason(tx, id); err != nil {
			return err
		}
		if in.ID != id {
			exists, err := reasonExists(tx, in.ID)
			if err != nil {
				return err
			}
			if exists {
				return apperr.Conflict("loss reason %d already exists", in.ID)
			}
		}
		updates := map[string]interface{}{
			"id":         in.ID,
			"title":      in.Title,
			"department": in.Department,
		}
		if err := tx.Model(&models.LossReason{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			if db.IsDuplicate(err) {
				return apperr.Conflict("loss reason %d already exists", in.ID)
			}
			return fmt.Errorf("loss: update reason %d: %w", id, err)
		}
		if in.ID != id {
			if err := tx.Unscoped().Model(&models.Loss{}).
				Where("loss_reason_id = ?", id).
				Update("loss_reason_id", in.ID).Error; err != nil {
				return fmt.Errorf("loss: repoint losses %d -> %d: %w", id, in.ID, err)
			}
		}
		out, err = lookupReason(tx, in.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteReason removes a reason permanently. A reason referenced by any
// loss, including soft-deleted ones, cannot be deleted.
func DeleteReason(gormDB *gorm.DB, id uint) error {
	return gormDB.Transaction(func(tx *gorm.DB) error {
		if _, err := lookupReason(tx, id); err != nil {
			return err
		}
		var refs int64
		if err := tx.Unscoped().Model(&models.Loss{}).Where("loss_reason_id = ?", id).Count(&refs).Error; err != nil {
			return fmt.Errorf("loss: count references to reason %d: %w", id, err)
		}
		if refs > 0 {
			return apperr.Conflict("loss reason %d is used by %d loss records", id, refs)
		}
		if err := tx.Where("id = ?", id).Delete(&models.LossReason{}).Error; err != nil {
			return fmt.Errorf("loss: delete reason %d: %w", id, err)
		}
		return nil
	})
}
