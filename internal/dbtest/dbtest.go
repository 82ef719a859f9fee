// Package dbtest provides in-memory SQLite databases and hierarchy fixtures
// for package tests.
package dbtest

import (
	"fmt"
	"testing"

	"github.com/zulandar/shiftboard/internal/db"
	"github.com/zulandar/shiftboard/internal/models"
	"gorm.io/gorm"
)

// Open returns a migrated in-memory database that is closed when t ends.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	gormDB, err := db.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(gormDB); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gormDB.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return gormDB
}

// Tree is one Plant → Zone → Loop → Line chain.
type Tree struct {
	Plant models.Plant
	Zone  models.Zone
	Loop  models.Loop
	Line  models.Line
}

// SeedTree creates a plant named name with one zone, loop and line named
// "<name>-Z1", "<name>-L1" and "<name>-LN1".
func SeedTree(t testing.TB, gormDB *gorm.DB, name string) Tree {
	t.Helper()
	tree := Tree{Plant: models.Plant{Name: name}}
	mustCreate(t, gormDB, &tree.Plant)
	tree.Zone = models.Zone{Name: name + "-Z1", PlantID: tree.Plant.ID}
	mustCreate(t, gormDB, &tree.Zone)
	tree.Loop = models.Loop{Name: name + "-L1", ZoneID: tree.Zone.ID}
	mustCreate(t, gormDB, &tree.Loop)
	tree.Line = models.Line{Name: name + "-LN1", LoopID: tree.Loop.ID}
	mustCreate(t, gormDB, &tree.Line)
	return tree
}

// AddLine creates another line under the tree's loop.
func AddLine(t testing.TB, gormDB *gorm.DB, loopID uint, name string) models.Line {
	t.Helper()
	line := models.Line{Name: name, LoopID: loopID}
	mustCreate(t, gormDB, &line)
	return line
}

// SeedUser creates a user with a placeholder password hash.
func SeedUser(t testing.TB, gormDB *gorm.DB, sapID string, role models.Role) models.User {
	t.Helper()
	u := models.User{SapID: sapID, Name: fmt.Sprintf("%s %s", role, sapID), Role: role, Password: "x"}
	mustCreate(t, gormDB, &u)
	return u
}

// SeedPlanner creates a planner user assigned to plantID.
func SeedPlanner(t testing.TB, gormDB *gorm.DB, sapID string, plantID uint) models.Planner {
	t.Helper()
	SeedUser(t, gormDB, sapID, models.RolePlanner)
	p := models.Planner{UserID: sapID, PlantID: plantID}
	mustCreate(t, gormDB, &p)
	return p
}

// SeedTeamLeader creates a team leader user assigned to lineID.
func SeedTeamLeader(t testing.TB, gormDB *gorm.DB, sapID string, lineID uint) models.TeamLeader {
	t.Helper()
	SeedUser(t, gormDB, sapID, models.RoleTeamLeader)
	tl := models.TeamLeader{UserID: sapID, LineID: lineID}
	mustCreate(t, gormDB, &tl)
	return tl
}

// SeedReason creates a loss reason with a client-assigned id.
func SeedReason(t testing.TB, gormDB *gorm.DB, id uint, title string) models.LossReason {
	t.Helper()
	r := models.LossReason{ID: id, Title: title, Department: "Production"}
	mustCreate(t, gormDB, &r)
	return r
}

func mustCreate(t testing.TB, gormDB *gorm.DB, v interface{}) {
	t.Helper()
	if err := gormDB.Create(v).Error; err != nil {
		t.Fatalf("seed %T: %v", v, err)
	}
}
