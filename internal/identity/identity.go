// Package identity maps principals to roles and hierarchy scopes.
//
// Every core operation receives its acting Principal explicitly and resolves
// a Scope before touching data. Scoped lookups fold "exists elsewhere" into
// apperr.ErrNotFound so callers cannot probe other plants.
package identity

import (
	"errors"
	"fmt"

	"github.com/zulandar/shiftboard/internal/apperr"
	"github.com/zulandar/shiftboard/internal/models"
	"gorm.io/gorm"
)

// Principal is an authenticated user.
type Principal struct {
	SapID string      `json:"sap_id"`
	Name  string      `json:"name"`
	Role  models.Role `json:"role"`
}

// Scope is the slice of the hierarchy a principal may act on. PlantID is set
// for every non-admin role; LineID for team leaders and members; CellID for
// members only.
type Scope struct {
	Role    models.Role
	SapID   string
	PlantID uint
	LineID  uint
	CellID  uint
}

// Unrestricted reports whether the scope covers the whole hierarchy.
func (s Scope) Unrestricted() bool {
	return s.Role == models.RoleAdmin
}

// CoversPlant reports whether plantID is inside the scope.
func (s Scope) CoversPlant(plantID uint) bool {
	return s.Unrestricted() || s.PlantID == plantID
}

// RequireRole returns ErrForbidden unless p holds one of roles.
func RequireRole(p Principal, roles ...models.Role) error {
	for _, r := range roles {
		if p.Role == r {
			return nil
		}
	}
	return apperr.Forbidden(fmt.Sprintf("role %q may not perform this operation", p.Role))
}

// Require checks the principal's role and resolves its scope.
func Require(db *gorm.DB, p Principal, roles ...models.Role) (Scope, error) {
	if err := RequireRole(p, roles...); err != nil {
		return Scope{}, err
	}
	return ScopeOf(db, p)
}

// ScopeOf resolves the hierarchy scope of p from its assignment row.
func ScopeOf(db *gorm.DB, p Principal) (Scope, error) {
	s := Scope{Role: p.Role, SapID: p.SapID}
	switch p.Role {
	case models.RoleAdmin:
		return s, nil

	case models.RolePlanner:
		var planner models.Planner
		if err := db.Where("user_id = ?", p.SapID).First(&planner).Error; err != nil {
			return Scope{}, lookupErr(err, "planner profile", p.SapID)
		}
		s.PlantID = planner.PlantID
		return s, nil

	case models.RoleTeamLeader:
		var tl models.TeamLeader
		if err := db.Where("user_id = ?", p.SapID).First(&tl).Error; err != nil {
			return Scope{}, lookupErr(err, "team leader profile", p.SapID)
		}
		plantID, err := PlantOfLine(db, tl.LineID)
		if err != nil {
			return Scope{}, fmt.Errorf("identity: team leader %s: %w", p.SapID, err)
		}
		s.LineID = tl.LineID
		s.PlantID = plantID
		return s, nil

	case models.RoleMember:
		var m models.Member
		if err := db.Where("user_id = ?", p.SapID).First(&m).Error; err != nil {
			return Scope{}, lookupErr(err, "member profile", p.SapID)
		}
		var cell models.Cell
		if err := db.Where("id = ?", m.CellID).First(&cell).Error; err != nil {
			return Scope{}, lookupErr(err, "cell", fmt.Sprint(m.CellID))
		}
		plantID, err := PlantOfLine(db, cell.LineID)
		if err != nil {
			return Scope{}, fmt.Errorf("identity: member %s: %w", p.SapID, err)
		}
		s.CellID = m.CellID
		s.LineID = cell.LineID
		s.PlantID = plantID
		return s, nil
	}
	return Scope{}, apperr.Forbidden(fmt.Sprintf("unknown role %q", p.Role))
}

func lookupErr(err error, what, id string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("identity: %s %s: %w", what, id, apperr.ErrNotFound)
	}
	return fmt.Errorf("identity: get %s %s: %w", what, id, err)
}
