package notify

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/zulandar/shiftboard/internal/dbtest"
	"github.com/zulandar/shiftboard/internal/identity"
	"github.com/zulandar/shiftboard/internal/models"
	"github.com/zulandar/shiftboard/internal/production"
	"github.com/zulandar/shiftboard/internal/report"
	"github.com/zulandar/shiftboard/internal/shift"
)

type recordingNotifier struct {
	name string
	err  error
	mu   sync.Mutex
	sent []Message
}

func (r *recordingNotifier) Name() string { return r.name }

func (r *recordingNotifier) Send(_ context.Context, msg Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, msg)
	return nil
}

func sampleDaily() report.Daily {
	return report.Daily{
		PlantID:   1,
		PlantName: "P1",
		Date:      "2025-03-10",
		Shifts:    2,
		Totals:    report.Totals{Plan: 100, Achievement: 80, Scraps: 1, Defects: 2, Flash: 3, Loss: 15},
		Lines: []report.LineTotals{
			{LineID: 1, LineName: "LN1", Totals: report.Totals{Plan: 100, Achievement: 80, Loss: 15}},
		},
		Reasons: []report.ReasonTotal{
			{ReasonID: 1, Title: "Breakdown", Department: "Maintenance", Amount: 10},
			{ReasonID: 2, Title: "Material", Department: "Logistics", Amount: 3},
			{ReasonID: 3, Title: "Setup", Department: "Production", Amount: 1},
			{ReasonID: 4, Title: "Quality", Department: "QA", Amount: 1},
		},
	}
}

func TestFormatDaily(t *testing.T) {
	msg := FormatDaily(sampleDaily())

	if msg.Title != "P1 production for 2025-03-10" {
		t.Errorf("Title = %q", msg.Title)
	}
	if !strings.Contains(msg.Body, "LN1: 80/100 (loss 15)") {
		t.Errorf("Body missing line totals: %q", msg.Body)
	}
	if !strings.Contains(msg.Body, "1. Breakdown (Maintenance): 10") {
		t.Errorf("Body missing top reason: %q", msg.Body)
	}
	if strings.Contains(msg.Body, "Quality") {
		t.Errorf("Body should list only the top three reasons: %q", msg.Body)
	}
	if msg.Color != ColorBehind {
		t.Errorf("Color = %q, want %q", msg.Color, ColorBehind)
	}

	fields := make(map[string]string)
	for _, f := range msg.Fields {
		fields[f.Name] = f.Value
	}
	if fields["Gap"] != "20" {
		t.Errorf("Gap field = %q, want %q", fields["Gap"], "20")
	}
	if fields["Scraps / Defects / Flash"] != "1 / 2 / 3" {
		t.Errorf("quality field = %q", fields["Scraps / Defects / Flash"])
	}
}

func TestStatusColor(t *testing.T) {
	tests := []struct {
		totals report.Totals
		want   string
	}{
		{report.Totals{}, ColorNoPlan},
		{report.Totals{Plan: 100, Achievement: 90}, ColorOnPlan},
		{report.Totals{Plan: 100, Achievement: 120}, ColorOnPlan},
		{report.Totals{Plan: 100, Achievement: 89}, ColorBehind},
	}
	for _, tt := range tests {
		if got := statusColor(tt.totals); got != tt.want {
			t.Errorf("statusColor(%+v) = %q, want %q", tt.totals, got, tt.want)
		}
	}
}

func TestDigestSend(t *testing.T) {
	db := dbtest.Open(t)
	active := dbtest.SeedTree(t, db, "P1")
	dbtest.SeedTree(t, db, "P2") // no shifts, skipped
	planner := identity.Principal{SapID: "1001", Role: models.RolePlanner}
	dbtest.SeedPlanner(t, db, planner.SapID, active.Plant.ID)

	s, err := shift.Create(db, planner, shift.CreateOpts{Date: "2025-03-10", DayNight: "DAY", Shift: "A"})
	if err != nil {
		t.Fatalf("create shift: %v", err)
	}
	if _, err := production.SetPlans(db, planner, []production.PlanEntry{
		{ShiftID: s.ID, LineID: active.Line.ID, Hour: "HOUR-01", Plan: 50},
	}); err != nil {
		t.Fatalf("SetPlans: %v", err)
	}

	slackN := &recordingNotifier{name: "slack"}
	discordN := &recordingNotifier{name: "discord"}
	d := &Digest{DB: db, Notifiers: []Notifier{slackN, discordN}}

	n, err := d.Send(context.Background(), "2025-03-10")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if n != 1 {
		t.Errorf("posted = %d, want 1", n)
	}
	for _, rn := range []*recordingNotifier{slackN, discordN} {
		if len(rn.sent) != 1 {
			t.Fatalf("%s received %d messages, want 1", rn.name, len(rn.sent))
		}
		if !strings.HasPrefix(rn.sent[0].Title, "P1 ") {
			t.Errorf("%s title = %q", rn.name, rn.sent[0].Title)
		}
	}
}

func TestDigestSend_ContinuesPastFailure(t *testing.T) {
	db := dbtest.Open(t)
	tree := dbtest.SeedTree(t, db, "P1")
	planner := identity.Principal{SapID: "1001", Role: models.RolePlanner}
	dbtest.SeedPlanner(t, db, planner.SapID, tree.Plant.ID)
	if _, err := shift.Create(db, planner, shift.CreateOpts{Date: "2025-03-10", DayNight: "NIGHT", Shift: "B"}); err != nil {
		t.Fatalf("create shift: %v", err)
	}

	broken := &recordingNotifier{name: "slack", err: errors.New("channel_not_found")}
	ok := &recordingNotifier{name: "discord"}
	d := &Digest{DB: db, Notifiers: []Notifier{broken, ok}}

	n, err := d.Send(context.Background(), "2025-03-10")
	if err == nil || !strings.Contains(err.Error(), "channel_not_found") {
		t.Fatalf("error = %v, want channel_not_found", err)
	}
	if n != 1 || len(ok.sent) != 1 {
		t.Errorf("posted = %d, discord sent = %d, want 1 and 1", n, len(ok.sent))
	}
}

func TestDigestSend_AllNotifiersFailing(t *testing.T) {
	db := dbtest.Open(t)
	tree := dbtest.SeedTree(t, db, "P1")
	planner := identity.Principal{SapID: "1001", Role: models.RolePlanner}
	dbtest.SeedPlanner(t, db, planner.SapID, tree.Plant.ID)
	if _, err := shift.Create(db, planner, shift.CreateOpts{Date: "2025-03-10", DayNight: "DAY", Shift: "C"}); err != nil {
		t.Fatalf("create shift: %v", err)
	}

	d := &Digest{DB: db, Notifiers: []Notifier{
		&recordingNotifier{name: "slack", err: errors.New("invalid_auth")},
		&recordingNotifier{name: "discord", err: errors.New("401 Unauthorized")},
	}}
	n, err := d.Send(context.Background(), "2025-03-10")
	if err == nil {
		t.Fatal("expected error when every notifier fails")
	}
	if n != 0 {
		t.Errorf("posted = %d, want 0", n)
	}
	for _, want := range []string{"invalid_auth", "401 Unauthorized"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error = %q, want to contain %q", err.Error(), want)
		}
	}
}

func TestDigestSend_Errors(t *testing.T) {
	db := dbtest.Open(t)
	if _, err := (&Digest{DB: db}).Send(context.Background(), "2025-03-10"); err == nil {
		t.Error("expected error with no notifiers")
	}
	d := &Digest{DB: db, Notifiers: []Notifier{&recordingNotifier{name: "slack"}}}
	if _, err := d.Send(context.Background(), "10/03/2025"); err == nil {
		t.Error("expected error for malformed date")
	}
}

func TestDigestYesterday(t *testing.T) {
	d := &Digest{Now: func() time.Time {
		return time.Date(2025, 3, 1, 2, 30, 0, 0, time.UTC)
	}}
	if got := d.Yesterday(); got != "2025-02-28" {
		t.Errorf("Yesterday() = %q, want %q", got, "2025-02-28")
	}
}

func TestNextRun(t *testing.T) {
	from := time.Date(2025, 3, 10, 5, 0, 0, 0, time.UTC)
	got, err := NextRun("0 6 * * *", from)
	if err != nil {
		t.Fatalf("NextRun: %v", err)
	}
	want := time.Date(2025, 3, 10, 6, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("NextRun = %v, want %v", got, want)
	}

	if _, err := NextRun("every morning", from); err == nil {
		t.Error("expected error for invalid expression")
	}
	if _, err := NextRun("0 0 6 * * *", from); err == nil {
		t.Error("expected error for 6-field expression")
	}
}

func TestSchedule_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Schedule(ctx, "0 6 * * *", func(context.Context) {})
	}()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Schedule: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Schedule did not return after cancel")
	}
}

func TestSchedule_InvalidExpression(t *testing.T) {
	err := Schedule(context.Background(), "bogus", func(context.Context) {})
	if err == nil {
		t.Fatal("expected error for invalid expression")
	}
}
