// Package report aggregates counts and daily production results for admins
// and the scheduled digest.
package report

import (
	"errors"
	"fmt"
	"sort"

	"github.com/zulandar/shiftboard/internal/apperr"
	"github.com/zulandar/shiftboard/internal/models"
	"github.com/zulandar/shiftboard/internal/shift"
	"gorm.io/gorm"
)

// Stats are the live entity counts shown on the admin dashboard.
type Stats struct {
	Plants      int64 `json:"plants"`
	Zones       int64 `json:"zones"`
	Loops       int64 `json:"loops"`
	Lines       int64 `json:"lines"`
	Cells       int64 `json:"cells"`
	Planners    int64 `json:"planners"`
	TeamLeaders int64 `json:"teamLeaders"`
	Members     int64 `json:"members"`
}

// GetStats counts live hierarchy nodes and live role assignments of live
// users.
func GetStats(db *gorm.DB) (*Stats, error) {
	var s Stats
	counts := []struct {
		model interface{}
		join  string
		dst   *int64
	}{
		{&models.Plant{}, "", &s.Plants},
		{&models.Zone{}, "", &s.Zones},
		{&models.Loop{}, "", &s.Loops},
		{&models.Line{}, "", &s.Lines},
		{&models.Cell{}, "", &s.Cells},
		{&models.Planner{}, "JOIN users ON users.sap_id = planners.user_id AND users.deleted_at IS NULL", &s.Planners},
		{&models.TeamLeader{}, "JOIN users ON users.sap_id = team_leaders.user_id AND users.deleted_at IS NULL", &s.TeamLeaders},
		{&models.Member{}, "JOIN users ON users.sap_id = members.user_id AND users.deleted_at IS NULL", &s.Members},
	}
	for _, c := range counts {
		q := db.Model(c.model)
		if c.join != "" {
			q = q.Joins(c.join)
		}
		if err := q.Count(c.dst).Error; err != nil {
			return nil, fmt.Errorf("report: stats: %w", err)
		}
	}
	return &s, nil
}

// Totals are summed production counters.
type Totals struct {
	Plan        int `json:"plan"`
	Achievement int `json:"achievement"`
	Scraps      int `json:"scraps"`
	Defects     int `json:"defects"`
	Flash       int `json:"flash"`
	Loss        int `json:"loss"`
}

func (t *Totals) add(p models.Production) {
	t.Plan += p.Plan
	t.Achievement += p.Achievement
	t.Scraps += p.Scraps
	t.Defects += p.Defects
	t.Flash += p.Flash
}

// Gap is the unachieved part of the plan, never negative.
func (t Totals) Gap() int {
	if t.Achievement >= t.Plan {
		return 0
	}
	return t.Plan - t.Achievement
}

// LineTotals are the day's totals for one line.
type LineTotals struct {
	LineID   uint   `json:"line_id"`
	LineName string `json:"line_name"`
	Totals
}

// ReasonTotal is the live loss attributed to one reason.
type ReasonTotal struct {
	ReasonID   uint   `json:"reason_id"`
	Title      string `json:"title"`
	Department string `json:"department"`
	Amount     int    `json:"amount"`
}

// Daily is one plant's production summary for a calendar day.
type Daily struct {
	PlantID   uint          `json:"plant_id"`
	PlantName string        `json:"plant_name"`
	Date      string        `json:"date"`
	Shifts    int           `json:"shifts"`
	Totals    Totals        `json:"totals"`
	Lines     []LineTotals  `json:"lines"`
	Reasons   []ReasonTotal `json:"reasons"`
}

// DailySummary aggregates every live shift of a plant on date (YYYY-MM-DD).
func DailySummary(db *gorm.DB, plantID uint, date string) (*Daily, error) {
	day, err := shift.ParseDate(date)
	if err != nil {
		return nil, err
	}
	var plant models.Plant
	if err := db.Where("id = ?", plantID).First(&plant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(fmt.Sprintf("plant %d", plantID))
		}
		return nil, fmt.Errorf("report: get plant %d: %w", plantID, err)
	}
	d := &Daily{
		PlantID:   plant.ID,
		PlantName: plant.Name,
		Date:      day.Format(shift.DateLayout),
		Lines:     []LineTotals{},
		Reasons:   []ReasonTotal{},
	}

	var shiftIDs []uint
	if err := db.Model(&models.Shift{}).
		Where("plant_id = ? AND date >= ? AND date < ?", plantID, day, day.AddDate(0, 0, 1)).
		Pluck("id", &shiftIDs).Error; err != nil {
		return nil, fmt.Errorf("report: shifts of plant %d on %s: %w", plantID, d.Date, err)
	}
	d.Shifts = len(shiftIDs)
	if len(shiftIDs) == 0 {
		return d, nil
	}

	var rows []models.Production
	if err := db.Preload("Line").Where("shift_id IN ?", shiftIDs).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("report: productions: %w", err)
	}
	if len(rows) == 0 {
		return d, nil
	}
	prodIDs := make([]uint, len(rows))
	for i, r := range rows {
		prodIDs[i] = r.ID
	}

	var perProd []struct {
		ProductionID uint
		Amount       int
	}
	if err := db.Model(&models.Loss{}).
		Select("production_id, SUM(amount) AS amount").
		Where("production_id IN ?", prodIDs).
		Group("production_id").
		Scan(&perProd).Error; err != nil {
		return nil, fmt.Errorf("report: losses by production: %w", err)
	}
	lossOf := make(map[uint]int, len(perProd))
	for _, p := range perProd {
		lossOf[p.ProductionID] = p.Amount
	}

	byLine := map[uint]*LineTotals{}
	for _, r := range rows {
		lt, ok := byLine[r.LineID]
		if !ok {
			lt = &LineTotals{LineID: r.LineID}
			if r.Line != nil {
				lt.LineName = r.Line.Name
			}
			byLine[r.LineID] = lt
		}
		lt.add(r)
		lt.Loss += lossOf[r.ID]
		d.Totals.add(r)
		d.Totals.Loss += lossOf[r.ID]
	}
	for _, lt := range byLine {
		d.Lines = append(d.Lines, *lt)
	}
	sort.Slice(d.Lines, func(i, j int) bool { return d.Lines[i].LineName < d.Lines[j].LineName })

	if err := db.Model(&models.Loss{}).
		Select("loss_reasons.id AS reason_id, loss_reasons.title, loss_reasons.department, SUM(losses.amount) AS amount").
		Joins("JOIN loss_reasons ON loss_reasons.id = losses.loss_reason_id").
		Where("losses.production_id IN ?", prodIDs).
		Group("loss_reasons.id, loss_reasons.title, loss_reasons.department").
		Order("amount DESC").Order("reason_id ASC").
		Scan(&d.Reasons).Error; err != nil {
		return nil, fmt.Errorf("report: losses by reason: %w", err)
	}
	return d, nil
}

// DailyAll builds the daily summary of every live plant.
func DailyAll(db *gorm.DB, date string) ([]Daily, error) {
	if _, err := shift.ParseDate(date); err != nil {
		return nil, err
	}
	var plantIDs []uint
	if err := db.Model(&models.Plant{}).Order("name ASC").Pluck("id", &plantIDs).Error; err != nil {
		return nil, fmt.Errorf("report: list plants: %w", err)
	}
	out := make([]Daily, 0, len(plantIDs))
	for _, id := range plantIDs {
		d, err := DailySummary(db, id, date)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, nil
}
