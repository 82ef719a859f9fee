package report

import (
	"errors"
	"testing"

	"github.com/zulandar/shiftboard/internal/apperr"
	"github.com/zulandar/shiftboard/internal/dbtest"
	"github.com/zulandar/shiftboard/internal/identity"
	"github.com/zulandar/shiftboard/internal/loss"
	"github.com/zulandar/shiftboard/internal/models"
	"github.com/zulandar/shiftboard/internal/production"
	"github.com/zulandar/shiftboard/internal/shift"
)

var (
	planner = identity.Principal{SapID: "1001", Role: models.RolePlanner}
	leader  = identity.Principal{SapID: "2001", Role: models.RoleTeamLeader}
)

func TestGetStats(t *testing.T) {
	db := dbtest.Open(t)
	tree := dbtest.SeedTree(t, db, "P1")
	dbtest.SeedTree(t, db, "P2")
	dbtest.SeedPlanner(t, db, "1001", tree.Plant.ID)
	dbtest.SeedTeamLeader(t, db, "2001", tree.Line.ID)
	dbtest.SeedTeamLeader(t, db, "2002", tree.Line.ID)
	if err := db.Where("sap_id = ?", "2002").Delete(&models.User{}).Error; err != nil {
		t.Fatalf("delete user: %v", err)
	}

	s, err := GetStats(db)
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	want := Stats{Plants: 2, Zones: 2, Loops: 2, Lines: 2, Cells: 0, Planners: 1, TeamLeaders: 1, Members: 0}
	if *s != want {
		t.Errorf("GetStats = %+v, want %+v", *s, want)
	}
}

func TestDailySummary(t *testing.T) {
	db := dbtest.Open(t)
	tree := dbtest.SeedTree(t, db, "P1")
	dbtest.SeedPlanner(t, db, planner.SapID, tree.Plant.ID)
	dbtest.SeedTeamLeader(t, db, leader.SapID, tree.Line.ID)
	dbtest.SeedReason(t, db, 1, "Breakdown")
	dbtest.SeedReason(t, db, 2, "Material")

	s, err := shift.Create(db, planner, shift.CreateOpts{Date: "2025-01-15", DayNight: "DAY", Shift: "A"})
	if err != nil {
		t.Fatalf("create shift: %v", err)
	}
	if _, err := production.SetPlans(db, planner, []production.PlanEntry{
		{ShiftID: s.ID, LineID: tree.Line.ID, Hour: "HOUR-01", Plan: 100},
		{ShiftID: s.ID, LineID: tree.Line.ID, Hour: "HOUR-02", Plan: 100},
	}); err != nil {
		t.Fatalf("SetPlans: %v", err)
	}
	row, _, err := production.RecordActuals(db, leader, production.Actuals{ShiftID: s.ID, Hour: "HOUR-01", Achievement: 80, Scraps: 2})
	if err != nil {
		t.Fatalf("RecordActuals: %v", err)
	}
	for _, e := range []loss.RecordOpts{
		{ProductionID: row.ID, LossReasonID: 1, Amount: 12},
		{ProductionID: row.ID, LossReasonID: 2, Amount: 5},
	} {
		if _, err := loss.Record(db, leader, e); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	d, err := DailySummary(db, tree.Plant.ID, "2025-01-15")
	if err != nil {
		t.Fatalf("DailySummary: %v", err)
	}
	if d.Shifts != 1 {
		t.Errorf("Shifts = %d, want 1", d.Shifts)
	}
	if d.Totals.Plan != 200 || d.Totals.Achievement != 80 || d.Totals.Scraps != 2 || d.Totals.Loss != 17 {
		t.Errorf("Totals = %+v", d.Totals)
	}
	if d.Totals.Gap() != 120 {
		t.Errorf("Gap = %d, want 120", d.Totals.Gap())
	}
	if len(d.Lines) != 1 || d.Lines[0].LineName != "P1-LN1" {
		t.Errorf("Lines = %+v", d.Lines)
	}
	if len(d.Reasons) != 2 || d.Reasons[0].Title != "Breakdown" || d.Reasons[0].Amount != 12 {
		t.Errorf("Reasons = %+v", d.Reasons)
	}

	empty, err := DailySummary(db, tree.Plant.ID, "2025-01-16")
	if err != nil {
		t.Fatalf("DailySummary(empty day): %v", err)
	}
	if empty.Shifts != 0 || empty.Totals != (Totals{}) {
		t.Errorf("empty day = %+v", empty)
	}
}

func TestDailySummary_Errors(t *testing.T) {
	db := dbtest.Open(t)
	tree := dbtest.SeedTree(t, db, "P1")
	if _, err := DailySummary(db, 999, "2025-01-15"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("unknown plant = %v, want ErrNotFound", err)
	}
	if _, err := DailySummary(db, tree.Plant.ID, "yesterday"); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("bad date = %v, want ErrValidation", err)
	}
}

func TestDailyAll(t *testing.T) {
	db := dbtest.Open(t)
	dbtest.SeedTree(t, db, "Pune")
	dbtest.SeedTree(t, db, "Chennai")
	all, err := DailyAll(db, "2025-01-15")
	if err != nil {
		t.Fatalf("DailyAll: %v", err)
	}
	if len(all) != 2 || all[0].PlantName != "Chennai" {
		t.Errorf("DailyAll = %+v", all)
	}
}

func TestTotals_GapNeverNegative(t *testing.T) {
	if g := (Totals{Plan: 10, Achievement: 12}).Gap(); g != 0 {
		t.Errorf("Gap = %d, want 0", g)
	}
}
