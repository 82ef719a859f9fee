package production

import (
	"errors"
	"math"
	"testing"

	"github.com/zulandar/shiftboard/internal/apperr"
	"github.com/zulandar/shiftboard/internal/dbtest"
	"github.com/zulandar/shiftboard/internal/identity"
	"github.com/zulandar/shiftboard/internal/models"
	"github.com/zulandar/shiftboard/internal/shift"
	"gorm.io/gorm"
)

var (
	planner1 = identity.Principal{SapID: "1001", Role: models.RolePlanner}
	planner2 = identity.Principal{SapID: "1002", Role: models.RolePlanner}
	leader1  = identity.Principal{SapID: "2001", Role: models.RoleTeamLeader}
	leader2  = identity.Principal{SapID: "2002", Role: models.RoleTeamLeader}
)

type fixture struct {
	db    *gorm.DB
	p1    dbtest.Tree
	p2    dbtest.Tree
	shift *models.Shift
}

func setup(t *testing.T) fixture {
	t.Helper()
	db := dbtest.Open(t)
	p1 := dbtest.SeedTree(t, db, "P1")
	p2 := dbtest.SeedTree(t, db, "P2")
	dbtest.SeedPlanner(t, db, planner1.SapID, p1.Plant.ID)
	dbtest.SeedPlanner(t, db, planner2.SapID, p2.Plant.ID)
	dbtest.SeedTeamLeader(t, db, leader1.SapID, p1.Line.ID)
	dbtest.SeedTeamLeader(t, db, leader2.SapID, p2.Line.ID)
	s, err := shift.Create(db, planner1, shift.CreateOpts{Date: "2025-01-15", DayNight: "DAY", Shift: "SHIFT-A"})
	if err != nil {
		t.Fatalf("create shift: %v", err)
	}
	return fixture{db: db, p1: p1, p2: p2, shift: s}
}

func countLive(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&models.Production{}).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func TestSetPlans_InsertThenUpdate(t *testing.T) {
	f := setup(t)
	entries := []PlanEntry{
		{ShiftID: f.shift.ID, LineID: f.p1.Line.ID, Hour: "HOUR-01", Plan: 100},
		{ShiftID: f.shift.ID, LineID: f.p1.Line.ID, Hour: "2", Plan: 90},
	}
	rows, err := SetPlans(f.db, planner1, entries)
	if err != nil {
		t.Fatalf("SetPlans: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}
	if rows[1].Hour != "HOUR-02" || rows[1].PlannerID != planner1.SapID {
		t.Errorf("row = %+v", rows[1])
	}

	entries[0].Plan = 120
	if _, err := SetPlans(f.db, planner1, entries); err != nil {
		t.Fatalf("SetPlans again: %v", err)
	}
	if n := countLive(t, f.db); n != 2 {
		t.Errorf("rows after replay = %d, want 2", n)
	}
	row, err := Lookup(f.db, f.shift.ID, f.p1.Line.ID, "HOUR-01")
	if err != nil || row == nil {
		t.Fatalf("Lookup = %v, %v", row, err)
	}
	if row.Plan != 120 {
		t.Errorf("Plan = %d, want 120", row.Plan)
	}
}

func TestSetPlans_Idempotent(t *testing.T) {
	f := setup(t)
	entries := []PlanEntry{
		{ShiftID: f.shift.ID, LineID: f.p1.Line.ID, Hour: "HOUR-01", Plan: 100},
		{ShiftID: f.shift.ID, LineID: f.p1.Line.ID, Hour: "HOUR-02", Plan: 80},
	}
	for i := 0; i < 3; i++ {
		if _, err := SetPlans(f.db, planner1, entries); err != nil {
			t.Fatalf("SetPlans #%d: %v", i, err)
		}
	}
	list, err := List(f.db, planner1, f.shift.ID, f.p1.Line.ID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if list.Total != 2 {
		t.Fatalf("Total = %d, want 2", list.Total)
	}
	if list.Items[0].Plan != 100 || list.Items[1].Plan != 80 {
		t.Errorf("plans = %d/%d, want 100/80", list.Items[0].Plan, list.Items[1].Plan)
	}
}

func TestSetPlans_Rejects(t *testing.T) {
	f := setup(t)
	sid, lid := f.shift.ID, f.p1.Line.ID

	tests := []struct {
		name    string
		p       identity.Principal
		entries []PlanEntry
		want    error
	}{
		{"empty", planner1, nil, apperr.ErrValidation},
		{"mixed line", planner1, []PlanEntry{
			{ShiftID: sid, LineID: lid, Hour: "HOUR-01", Plan: 1},
			{ShiftID: sid, LineID: f.p2.Line.ID, Hour: "HOUR-02", Plan: 1},
		}, apperr.ErrValidation},
		{"negative plan", planner1, []PlanEntry{{ShiftID: sid, LineID: lid, Hour: "HOUR-01", Plan: -1}}, apperr.ErrValidation},
		{"huge plan", planner1, []PlanEntry{{ShiftID: sid, LineID: lid, Hour: "HOUR-01", Plan: math.MaxInt64}}, apperr.ErrValidation},
		{"bad hour", planner1, []PlanEntry{{ShiftID: sid, LineID: lid, Hour: "HOUR-13", Plan: 1}}, apperr.ErrValidation},
		{"line of other plant", planner1, []PlanEntry{{ShiftID: sid, LineID: f.p2.Line.ID, Hour: "HOUR-01", Plan: 1}}, apperr.ErrNotFound},
		{"shift of other plant", planner2, []PlanEntry{{ShiftID: sid, LineID: f.p2.Line.ID, Hour: "HOUR-01", Plan: 1}}, apperr.ErrNotFound},
		{"team leader", leader1, []PlanEntry{{ShiftID: sid, LineID: lid, Hour: "HOUR-01", Plan: 1}}, apperr.ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := SetPlans(f.db, tt.p, tt.entries); !errors.Is(err, tt.want) {
				t.Errorf("SetPlans = %v, want %v", err, tt.want)
			}
		})
	}
	if n := countLive(t, f.db); n != 0 {
		t.Errorf("rows after rejected batches = %d, want 0", n)
	}
}

func TestSetPlans_DeletedLineRejected(t *testing.T) {
	f := setup(t)
	if err := f.db.Delete(&f.p1.Zone).Error; err != nil {
		t.Fatalf("delete zone: %v", err)
	}
	_, err := SetPlans(f.db, planner1, []PlanEntry{{ShiftID: f.shift.ID, LineID: f.p1.Line.ID, Hour: "HOUR-01", Plan: 1}})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("SetPlans on line under deleted zone = %v, want ErrNotFound", err)
	}
}

func TestRecordActuals_UpdatesPlannedRow(t *testing.T) {
	f := setup(t)
	if _, err := SetPlans(f.db, planner1, []PlanEntry{{ShiftID: f.shift.ID, LineID: f.p1.Line.ID, Hour: "HOUR-01", Plan: 100}}); err != nil {
		t.Fatalf("SetPlans: %v", err)
	}

	row, created, err := RecordActuals(f.db, leader1, Actuals{
		ShiftID: f.shift.ID, Hour: "HOUR-01", Plan: 5, Achievement: 80, Scraps: 2, Defects: 1, Flash: 3,
	})
	if err != nil {
		t.Fatalf("RecordActuals: %v", err)
	}
	if created {
		t.Error("created = true, want false for a planned row")
	}
	if row.Plan != 100 {
		t.Errorf("Plan = %d, want 100 (payload plan ignored on update)", row.Plan)
	}
	if row.PlannerID != planner1.SapID {
		t.Errorf("PlannerID = %q, want %q", row.PlannerID, planner1.SapID)
	}
	if row.TeamLeaderID == nil || *row.TeamLeaderID != leader1.SapID {
		t.Errorf("TeamLeaderID = %v, want %q", row.TeamLeaderID, leader1.SapID)
	}

	stored, err := Lookup(f.db, f.shift.ID, f.p1.Line.ID, "HOUR-01")
	if err != nil || stored == nil {
		t.Fatalf("Lookup = %v, %v", stored, err)
	}
	if stored.Achievement != 80 || stored.Scraps != 2 || stored.Defects != 1 || stored.Flash != 3 {
		t.Errorf("stored actuals = %+v", stored)
	}
	if stored.Plan != 100 {
		t.Errorf("stored Plan = %d, want 100", stored.Plan)
	}
}

func TestRecordActuals_InsertsWithPayloadPlan(t *testing.T) {
	f := setup(t)
	row, created, err := RecordActuals(f.db, leader1, Actuals{ShiftID: f.shift.ID, Hour: "HOUR-03", Plan: 60, Achievement: 50})
	if err != nil {
		t.Fatalf("RecordActuals: %v", err)
	}
	if !created {
		t.Error("created = false, want true")
	}
	if row.Plan != 60 || row.LineID != f.p1.Line.ID {
		t.Errorf("row = %+v", row)
	}
	if row.PlannerID != f.shift.PlannerID {
		t.Errorf("PlannerID = %q, want shift planner %q", row.PlannerID, f.shift.PlannerID)
	}
}

func TestRecordActuals_Rejects(t *testing.T) {
	f := setup(t)
	tests := []struct {
		name string
		p    identity.Principal
		a    Actuals
		want error
	}{
		{"negative", leader1, Actuals{ShiftID: f.shift.ID, Hour: "HOUR-01", Achievement: -1}, apperr.ErrValidation},
		{"huge fallback plan", leader1, Actuals{ShiftID: f.shift.ID, Hour: "HOUR-01", Plan: math.MaxInt64}, apperr.ErrValidation},
		{"huge scraps", leader1, Actuals{ShiftID: f.shift.ID, Hour: "HOUR-01", Scraps: models.MaxQuantity + 1}, apperr.ErrValidation},
		{"bad hour", leader1, Actuals{ShiftID: f.shift.ID, Hour: "noon"}, apperr.ErrValidation},
		{"other plant", leader2, Actuals{ShiftID: f.shift.ID, Hour: "HOUR-01"}, apperr.ErrNotFound},
		{"missing shift", leader1, Actuals{ShiftID: 999, Hour: "HOUR-01"}, apperr.ErrNotFound},
		{"planner", planner1, Actuals{ShiftID: f.shift.ID, Hour: "HOUR-01"}, apperr.ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := RecordActuals(f.db, tt.p, tt.a); !errors.Is(err, tt.want) {
				t.Errorf("RecordActuals = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestGet_NilWhenAbsent(t *testing.T) {
	f := setup(t)
	row, err := Get(f.db, leader1, f.shift.ID, "HOUR-05")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if row != nil {
		t.Errorf("Get = %+v, want nil", row)
	}
	if _, err := Get(f.db, leader2, f.shift.ID, "HOUR-05"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Get from other plant = %v, want ErrNotFound", err)
	}
}

func TestPlanFor(t *testing.T) {
	f := setup(t)
	if _, err := PlanFor(f.db, leader1, f.shift.ID, "HOUR-01"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("PlanFor without plan = %v, want ErrNotFound", err)
	}
	if _, err := SetPlans(f.db, planner1, []PlanEntry{{ShiftID: f.shift.ID, LineID: f.p1.Line.ID, Hour: "HOUR-01", Plan: 42}}); err != nil {
		t.Fatalf("SetPlans: %v", err)
	}
	plan, err := PlanFor(f.db, leader1, f.shift.ID, "1")
	if err != nil {
		t.Fatalf("PlanFor: %v", err)
	}
	if plan != 42 {
		t.Errorf("PlanFor = %d, want 42", plan)
	}
}

func TestOwned(t *testing.T) {
	f := setup(t)
	row, _, err := RecordActuals(f.db, leader1, Actuals{ShiftID: f.shift.ID, Hour: "HOUR-01", Plan: 10})
	if err != nil {
		t.Fatalf("RecordActuals: %v", err)
	}
	if _, err := Owned(f.db, leader1, row.ID); err != nil {
		t.Errorf("Owned by recorder = %v, want nil", err)
	}
	if _, err := Owned(f.db, leader2, row.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Owned by other leader = %v, want ErrNotFound", err)
	}
}

func TestList_Scope(t *testing.T) {
	f := setup(t)
	if _, err := List(f.db, planner2, f.shift.ID, f.p1.Line.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("List from other plant = %v, want ErrNotFound", err)
	}
	list, err := List(f.db, planner1, f.shift.ID, f.p1.Line.ID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if list.Total != 0 || list.Items == nil {
		t.Errorf("empty list = %+v", list)
	}
}
