// Package hierarchy manages the Plant → Zone → Loop → Line → Cell tree.
//
// Nodes are soft-deleted. A deleted node hides its whole subtree from scoped
// line resolution; direct children are not touched.
package hierarchy

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zulandar/shiftboard/internal/apperr"
	"gorm.io/gorm"
)

func normalizeName(kind, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperr.Invalid("%s name is required", kind)
	}
	return name, nil
}

// getLive loads a live node by id into a new T.
func getLive[T any](db *gorm.DB, kind string, id uint, preload ...string) (*T, error) {
	var v T
	q := db
	for _, p := range preload {
		q = q.Preload(p)
	}
	if err := q.Where("id = ?", id).First(&v).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(fmt.Sprintf("%s %d", kind, id))
		}
		return nil, fmt.Errorf("hierarchy: get %s %d: %w", kind, id, err)
	}
	return &v, nil
}

// ensureUnique rejects a name already used by a live sibling. parentCol is
// empty for plants, whose names are unique across the directory.
func ensureUnique[T any](tx *gorm.DB, kind, parentCol string, parentID uint, name string) error {
	var count int64
	q := tx.Model(new(T)).Where("name = ?", name)
	if parentCol != "" {
		q = q.Where(parentCol+" = ?", parentID)
	}
	if err := q.Count(&count).Error; err != nil {
		return fmt.Errorf("hierarchy: check %s name: %w", kind, err)
	}
	if count > 0 {
		return apperr.Conflict("a %s named %q already exists", kind, name)
	}
	return nil
}

// createChild checks the parent is live and the name is free, then inserts.
func createChild[P, T any](db *gorm.DB, kind, parentKind, parentCol string, parentID uint, name string, node *T) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if parentKind != "" {
			if _, err := getLive[P](tx, parentKind, parentID); err != nil {
				return err
			}
		}
		if err := ensureUnique[T](tx, kind, parentCol, parentID, name); err != nil {
			return err
		}
		if err := tx.Create(node).Error; err != nil {
			return fmt.Errorf("hierarchy: create %s: %w", kind, err)
		}
		return nil
	})
}

// listChildren returns live children of a live parent ordered by name.
func listChildren[P, T any](db *gorm.DB, parentKind, parentCol string, parentID uint) ([]T, error) {
	if _, err := getLive[P](db, parentKind, parentID); err != nil {
		return nil, err
	}
	var items []T
	if err := db.Where(parentCol+" = ?", parentID).Order("name ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("hierarchy: list children of %s %d: %w", parentKind, parentID, err)
	}
	return items, nil
}

func softDelete[T any](db *gorm.DB, kind string, id uint) error {
	res := db.Where("id = ?", id).Delete(new(T))
	if res.Error != nil {
		return fmt.Errorf("hierarchy: delete %s %d: %w", kind, id, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound(fmt.Sprintf("%s %d", kind, id))
	}
	return nil
}
