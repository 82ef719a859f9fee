// Package notify posts the daily production digest to chat platforms
// (Slack, Discord).
package notify

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/zulandar/shiftboard/internal/report"
	"github.com/zulandar/shiftboard/internal/shift"
	"gorm.io/gorm"
)

// Sidebar colors for digest messages.
const (
	ColorOnPlan = "#36a64f"
	ColorBehind = "#ff9800"
	ColorNoPlan = "#2196f3"
)

// onPlanRatio is the share of plan a plant must reach to be reported on plan.
const onPlanRatio = 0.9

// Notifier delivers a formatted message to one chat platform.
type Notifier interface {
	// Name identifies the platform in logs, e.g. "slack".
	Name() string
	Send(ctx context.Context, msg Message) error
}

// Message is a platform-neutral digest post.
type Message struct {
	Title  string
	Body   string
	Color  string
	Fields []Field
}

// Field is a key-value pair rendered alongside the message.
type Field struct {
	Name  string
	Value string
	Short bool
}

// FormatDaily renders one plant's daily summary.
func FormatDaily(d report.Daily) Message {
	t := d.Totals
	title := fmt.Sprintf("%s production for %s", d.PlantName, d.Date)

	var lines []string
	for _, lt := range d.Lines {
		lines = append(lines, fmt.Sprintf("%s: %d/%d (loss %d)", lt.LineName, lt.Achievement, lt.Plan, lt.Loss))
	}
	if len(d.Reasons) > 0 {
		lines = append(lines, "", "Top losses:")
		for i, r := range d.Reasons {
			if i == 3 {
				break
			}
			lines = append(lines, fmt.Sprintf("%d. %s (%s): %d", i+1, r.Title, r.Department, r.Amount))
		}
	}

	return Message{
		Title: title,
		Body:  strings.Join(lines, "\n"),
		Color: statusColor(t),
		Fields: []Field{
			{Name: "Shifts", Value: strconv.Itoa(d.Shifts), Short: true},
			{Name: "Plan", Value: strconv.Itoa(t.Plan), Short: true},
			{Name: "Achievement", Value: strconv.Itoa(t.Achievement), Short: true},
			{Name: "Gap", Value: strconv.Itoa(t.Gap()), Short: true},
			{Name: "Loss booked", Value: strconv.Itoa(t.Loss), Short: true},
			{Name: "Scraps / Defects / Flash", Value: fmt.Sprintf("%d / %d / %d", t.Scraps, t.Defects, t.Flash), Short: true},
		},
	}
}

func statusColor(t report.Totals) string {
	if t.Plan == 0 {
		return ColorNoPlan
	}
	if float64(t.Achievement) >= float64(t.Plan)*onPlanRatio {
		return ColorOnPlan
	}
	return ColorBehind
}

// Digest builds daily summaries and fans them out to every notifier.
type Digest struct {
	DB        *gorm.DB
	Notifiers []Notifier
	// Now defaults to time.Now; tests pin it.
	Now func() time.Time
}

// Send posts the summary of every plant that had a shift on date. It returns
// the number of plants delivered to at least one notifier. Delivery
// continues past a failing notifier; the failures are joined into the
// returned error.
func (d *Digest) Send(ctx context.Context, date string) (int, error) {
	if len(d.Notifiers) == 0 {
		return 0, fmt.Errorf("notify: no notifiers configured")
	}
	dailies, err := report.DailyAll(d.DB, date)
	if err != nil {
		return 0, fmt.Errorf("notify: build digest: %w", err)
	}

	var errs []error
	posted := 0
	for _, daily := range dailies {
		if daily.Shifts == 0 {
			continue
		}
		msg := FormatDaily(daily)
		delivered := false
		for _, n := range d.Notifiers {
			if err := n.Send(ctx, msg); err != nil {
				errs = append(errs, fmt.Errorf("notify: %s: plant %d: %w", n.Name(), daily.PlantID, err))
				continue
			}
			delivered = true
		}
		if delivered {
			posted++
		}
	}
	return posted, errors.Join(errs...)
}

// Yesterday is the UTC calendar day before now, in the shift date layout.
func (d *Digest) Yesterday() string {
	now := time.Now
	if d.Now != nil {
		now = d.Now
	}
	return now().UTC().AddDate(0, 0, -1).Format(shift.DateLayout)
}

// Run sends yesterday's digest and logs the outcome. It is the scheduled job.
func (d *Digest) Run(ctx context.Context) {
	date := d.Yesterday()
	n, err := d.Send(ctx, date)
	if err != nil {
		log.Printf("notify: digest %s: posted for %d plant(s): %v", date, n, err)
		return
	}
	log.Printf("notify: digest %s posted for %d plant(s)", date, n)
}
