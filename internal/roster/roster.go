// Package roster creates users together with their hierarchy assignment and
// serves the profile views of each role.
package roster

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zulandar/shiftboard/internal/apperr"
	"github.com/zulandar/shiftboard/internal/auth"
	"github.com/zulandar/shiftboard/internal/db"
	"github.com/zulandar/shiftboard/internal/identity"
	"github.com/zulandar/shiftboard/internal/models"
	"gorm.io/gorm"
)

// NewUser is the admin input for a planner, team leader or member. The
// initial password is the SAP id.
type NewUser struct {
	SapID string
	Name  string
}

func (n NewUser) normalize() (NewUser, error) {
	n.SapID = strings.TrimSpace(n.SapID)
	n.Name = strings.TrimSpace(n.Name)
	var missing []string
	if n.SapID == "" {
		missing = append(missing, "sap_id")
	}
	if n.Name == "" {
		missing = append(missing, "name")
	}
	if len(missing) > 0 {
		return n, apperr.Invalid("%s required", strings.Join(missing, ", "))
	}
	return n, nil
}

// CreatePlanner creates a planner user assigned to a live plant.
func CreatePlanner(gormDB *gorm.DB, in NewUser, plantID uint) (*models.Planner, error) {
	planner := &models.Planner{PlantID: plantID}
	err := createAssigned(gormDB, in, models.RolePlanner, func(tx *gorm.DB, u *models.User) error {
		if err := ensureLive(tx, &models.Plant{}, "plant", plantID); err != nil {
			return err
		}
		planner.UserID = u.SapID
		planner.User = u
		return tx.Omit("User").Create(planner).Error
	})
	if err != nil {
		return nil, err
	}
	return planner, nil
}

// CreateTeamLeader creates a team leader user assigned to a line whose loop,
// zone and plant are all live.
func CreateTeamLeader(gormDB *gorm.DB, in NewUser, lineID uint) (*models.TeamLeader, error) {
	tl := &models.TeamLeader{LineID: lineID}
	err := createAssigned(gormDB, in, models.RoleTeamLeader, func(tx *gorm.DB, u *models.User) error {
		if _, err := identity.PlantOfLine(tx, lineID); err != nil {
			return err
		}
		tl.UserID = u.SapID
		tl.User = u
		return tx.Omit("User").Create(tl).Error
	})
	if err != nil {
		return nil, err
	}
	return tl, nil
}

// CreateMember creates a member user assigned to a live cell under a live
// line chain.
func CreateMember(gormDB *gorm.DB, in NewUser, cellID uint) (*models.Member, error) {
	m := &models.Member{CellID: cellID}
	err := createAssigned(gormDB, in, models.RoleMember, func(tx *gorm.DB, u *models.User) error {
		if err := ensureLiveCell(tx, cellID); err != nil {
			return err
		}
		m.UserID = u.SapID
		m.User = u
		return tx.Omit("User").Create(m).Error
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// createAssigned inserts the user and its assignment row in one transaction.
// SAP ids are never reused, so a soft-deleted user still blocks the id.
func createAssigned(gormDB *gorm.DB, in NewUser, role models.Role, assign func(tx *gorm.DB, u *models.User) error) error {
	in, err := in.normalize()
	if err != nil {
		return err
	}
	hash, err := auth.HashPassword(in.SapID)
	if err != nil {
		return err
	}
	return gormDB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Unscoped().Model(&models.User{}).Where("sap_id = ?", in.SapID).Count(&count).Error; err != nil {
			return fmt.Errorf("roster: check sap id %s: %w", in.SapID, err)
		}
		if count > 0 {
			return apperr.Conflict("a user with SAP id %s already exists", in.SapID)
		}
		u := &models.User{SapID: in.SapID, Name: in.Name, Role: role, Password: hash}
		if err := tx.Create(u).Error; err != nil {
			if db.IsDuplicate(err) {
				return apperr.Conflict("a user with SAP id %s already exists", in.SapID)
			}
			return fmt.Errorf("roster: create user %s: %w", in.SapID, err)
		}
		if err := assign(tx, u); err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				return err
			}
			return fmt.Errorf("roster: assign %s %s: %w", role, in.SapID, err)
		}
		return nil
	})
}

func ensureLive(tx *gorm.DB, model interface{}, kind string, id uint) error {
	var count int64
	if err := tx.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("roster: check %s %d: %w", kind, id, err)
	}
	if count == 0 {
		return apperr.NotFound(fmt.Sprintf("%s %d", kind, id))
	}
	return nil
}

func ensureLiveCell(tx *gorm.DB, cellID uint) error {
	var cell models.Cell
	if err := tx.First(&cell, cellID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound(fmt.Sprintf("cell %d", cellID))
		}
		return fmt.Errorf("roster: check cell %d: %w", cellID, err)
	}
	if _, err := identity.PlantOfLine(tx, cell.LineID); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return apperr.NotFound(fmt.Sprintf("cell %d", cellID))
		}
		return err
	}
	return nil
}

// ListPlanners returns the live planners of a live plant.
func ListPlanners(gormDB *gorm.DB, plantID uint) ([]models.Planner, error) {
	if err := ensureLive(gormDB, &models.Plant{}, "plant", plantID); err != nil {
		return nil, err
	}
	var out []models.Planner
	if err := gormDB.Preload("User").Where("plant_id = ?", plantID).Order("user_id ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("roster: list planners of plant %d: %w", plantID, err)
	}
	return out, nil
}

// ListTeamLeaders returns the live team leaders of a live line.
func ListTeamLeaders(gormDB *gorm.DB, lineID uint) ([]models.TeamLeader, error) {
	if err := ensureLive(gormDB, &models.Line{}, "line", lineID); err != nil {
		return nil, err
	}
	var out []models.TeamLeader
	if err := gormDB.Preload("User").Where("line_id = ?", lineID).Order("user_id ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("roster: list team leaders of line %d: %w", lineID, err)
	}
	return out, nil
}

// ListMembers returns the live members of a live cell.
func ListMembers(gormDB *gorm.DB, cellID uint) ([]models.Member, error) {
	if err := ensureLive(gormDB, &models.Cell{}, "cell", cellID); err != nil {
		return nil, err
	}
	var out []models.Member
	if err := gormDB.Preload("User").Where("cell_id = ?", cellID).Order("user_id ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("roster: list members of cell %d: %w", cellID, err)
	}
	return out, nil
}

// SeedAdmin creates the bootstrap admin when no user holds sapID. It reports
// whether a user was created.
func SeedAdmin(gormDB *gorm.DB, sapID, name, password string) (bool, error) {
	var existing models.User
	err := gormDB.Unscoped().Where("sap_id = ?", sapID).First(&existing).Error
	if err == nil {
		if existing.Role != models.RoleAdmin {
			return false, apperr.Conflict("SAP id %s belongs to a %s", sapID, existing.Role)
		}
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("roster: check admin %s: %w", sapID, err)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return false, err
	}
	u := models.User{SapID: sapID, Name: name, Role: models.RoleAdmin, Password: hash}
	if err := gormDB.Create(&u).Error; err != nil {
		return false, fmt.Errorf("roster: create admin %s: %w", sapID, err)
	}
	return true, nil
}

// PlannerProfile returns the caller's planner assignment with user and plant.
func PlannerProfile(gormDB *gorm.DB, p identity.Principal) (*models.Planner, error) {
	if err := identity.RequireRole(p, models.RolePlanner); err != nil {
		return nil, err
	}
	var planner models.Planner
	if err := gormDB.Preload("User").Preload("Plant").Where("user_id = ?", p.SapID).First(&planner).Error; err != nil {
		return nil, profileErr(err, "planner", p.SapID)
	}
	return &planner, nil
}

// TeamLeaderProfile returns the caller's team leader assignment with user
// and the line's full ancestor chain.
func TeamLeaderProfile(gormDB *gorm.DB, p identity.Principal) (*models.TeamLeader, error) {
	if err := identity.RequireRole(p, models.RoleTeamLeader); err != nil {
		return nil, err
	}
	var tl models.TeamLeader
	if err := gormDB.Preload("User").Preload("Line.Loop.Zone.Plant").Where("user_id = ?", p.SapID).First(&tl).Error; err != nil {
		return nil, profileErr(err, "team leader", p.SapID)
	}
	return &tl, nil
}

func profileErr(err error, role, sapID string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(role + " profile")
	}
	return fmt.Errorf("roster: %s profile %s: %w", role, sapID, err)
}
