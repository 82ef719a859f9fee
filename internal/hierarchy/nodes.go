package hierarchy

import (
	"fmt"

	"github.com/zulandar/shiftboard/internal/models"
	"gorm.io/gorm"
)

// CreatePlant creates a plant. Plant names are unique among live plants.
func CreatePlant(db *gorm.DB, name string) (*models.Plant, error) {
	name, err := normalizeName("plant", name)
	if err != nil {
		return nil, err
	}
	p := models.Plant{Name: name}
	if err := createChild[models.Plant](db, "plant", "", "", 0, name, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetPlant returns a live plant.
func GetPlant(db *gorm.DB, id uint) (*models.Plant, error) {
	return getLive[models.Plant](db, "plant", id)
}

// ListPlants returns every live plant ordered by name.
func ListPlants(db *gorm.DB) ([]models.Plant, error) {
	var plants []models.Plant
	if err := db.Order("name ASC").Find(&plants).Error; err != nil {
		return nil, fmt.Errorf("hierarchy: list plants: %w", err)
	}
	return plants, nil
}

// DeletePlant soft-deletes a plant.
func DeletePlant(db *gorm.DB, id uint) error {
	return softDelete[models.Plant](db, "plant", id)
}

// CreateZone creates a zone under a live plant.
func CreateZone(db *gorm.DB, plantID uint, name string) (*models.Zone, error) {
	name, err := normalizeName("zone", name)
	if err != nil {
		return nil, err
	}
	z := models.Zone{Name: name, PlantID: plantID}
	if err := createChild[models.Plant](db, "zone", "plant", "plant_id", plantID, name, &z); err != nil {
		return nil, err
	}
	return &z, nil
}

// GetZone returns a live zone with its plant.
func GetZone(db *gorm.DB, id uint) (*models.Zone, error) {
	return getLive[models.Zone](db, "zone", id, "Plant")
}

// ListZones returns the live zones of a live plant.
func ListZones(db *gorm.DB, plantID uint) ([]models.Zone, error) {
	return listChildren[models.Plant, models.Zone](db, "plant", "plant_id", plantID)
}

// DeleteZone soft-deletes a zone.
func DeleteZone(db *gorm.DB, id uint) error {
	return softDelete[models.Zone](db, "zone", id)
}

// CreateLoop creates a loop under a live zone.
func CreateLoop(db *gorm.DB, zoneID uint, name string) (*models.Loop, error) {
	name, err := normalizeName("loop", name)
	if err != nil {
		return nil, err
	}
	l := models.Loop{Name: name, ZoneID: zoneID}
	if err := createChild[models.Zone](db, "loop", "zone", "zone_id", zoneID, name, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

// GetLoop returns a live loop with its zone.
func GetLoop(db *gorm.DB, id uint) (*models.Loop, error) {
	return getLive[models.Loop](db, "loop", id, "Zone")
}

// ListLoops returns the live loops of a live zone.
func ListLoops(db *gorm.DB, zoneID uint) ([]models.Loop, error) {
	return listChildren[models.Zone, models.Loop](db, "zone", "zone_id", zoneID)
}

// DeleteLoop soft-deletes a loop.
func DeleteLoop(db *gorm.DB, id uint) error {
	return softDelete[models.Loop](db, "loop", id)
}

// CreateLine creates a line under a live loop.
func CreateLine(db *gorm.DB, loopID uint, name string) (*models.Line, error) {
	name, err := normalizeName("line", name)
	if err != nil {
		return nil, err
	}
	l := models.Line{Name: name, LoopID: loopID}
	if err := createChild[models.Loop](db, "line", "loop", "loop_id", loopID, name, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

// GetLine returns a live line with its loop. It does not check the ancestor
// chain; scoped callers use identity.LineInPlant.
func GetLine(db *gorm.DB, id uint) (*models.Line, error) {
	return getLive[models.Line](db, "line", id, "Loop")
}

// LineSummary is a line with the number of live cells and team leaders.
type LineSummary struct {
	models.Line
	CellsCount       int `json:"cells_count"`
	TeamLeadersCount int `json:"team_leaders_count"`
}

// ListLines returns the live lines of a live loop with child counts.
func ListLines(db *gorm.DB, loopID uint) ([]LineSummary, error) {
	lines, err := listChildren[models.Loop, models.Line](db, "loop", "loop_id", loopID)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, len(lines))
	for i, l := range lines {
		ids[i] = l.ID
	}
	cells, err := countBy(db, &models.Cell{}, "line_id", ids)
	if err != nil {
		return nil, err
	}
	leaders, err := countBy(db, &models.TeamLeader{}, "line_id", ids)
	if err != nil {
		return nil, err
	}
	out := make([]LineSummary, len(lines))
	for i, l := range lines {
		out[i] = LineSummary{Line: l, CellsCount: cells[l.ID], TeamLeadersCount: leaders[l.ID]}
	}
	return out, nil
}

// DeleteLine soft-deletes a line.
func DeleteLine(db *gorm.DB, id uint) error {
	return softDelete[models.Line](db, "line", id)
}

// CreateCell creates a cell under a live line.
func CreateCell(db *gorm.DB, lineID uint, name string) (*models.Cell, error) {
	name, err := normalizeName("cell", name)
	if err != nil {
		return nil, err
	}
	c := models.Cell{Name: name, LineID: lineID}
	if err := createChild[models.Line](db, "cell", "line", "line_id", lineID, name, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// GetCell returns a live cell with its line.
func GetCell(db *gorm.DB, id uint) (*models.Cell, error) {
	return getLive[models.Cell](db, "cell", id, "Line")
}

// CellSummary is a cell with its number of live members.
type CellSummary struct {
	models.Cell
	MembersCount int `json:"members_count"`
}

// ListCells returns the live cells of a live line with member counts.
func ListCells(db *gorm.DB, lineID uint) ([]CellSummary, error) {
	cells, err := listChildren[models.Line, models.Cell](db, "line", "line_id", lineID)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, len(cells))
	for i, c := range cells {
		ids[i] = c.ID
	}
	members, err := countBy(db, &models.Member{}, "cell_id", ids)
	if err != nil {
		return nil, err
	}
	out := make([]CellSummary, len(cells))
	for i, c := range cells {
		out[i] = CellSummary{Cell: c, MembersCount: members[c.ID]}
	}
	return out, nil
}

// DeleteCell soft-deletes a cell.
func DeleteCell(db *gorm.DB, id uint) error {
	return softDelete[models.Cell](db, "cell", id)
}

// countBy counts live rows of model grouped by col for the given ids.
func countBy(db *gorm.DB, model interface{}, col string, ids []uint) (map[uint]int, error) {
	out := make(map[uint]int, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []struct {
		ParentID uint
		N        int
	}
	if err := db.Model(model).
		Select(col+" AS parent_id, COUNT(*) AS n").
		Where(col+" IN ?", ids).
		Group(col).
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("hierarchy: count by %s: %w", col, err)
	}
	for _, r := range rows {
		out[r.ParentID] = r.N
	}
	return out, nil
}
