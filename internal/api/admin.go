package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zulandar/shiftboard/internal/apperr"
	"github.com/zulandar/shiftboard/internal/hierarchy"
	"github.com/zulandar/shiftboard/internal/loss"
	"github.com/zulandar/shiftboard/internal/paging"
	"github.com/zulandar/shiftboard/internal/report"
	"github.com/zulandar/shiftboard/internal/roster"
	"gorm.io/gorm"
)

// createRequest is the body of every admin create endpoint. Only the parent
// field named by the route is read.
type createRequest struct {
	Name    string `json:"name"`
	SapID   string `json:"sap_id"`
	PlantID uint   `json:"plant_id"`
	ZoneID  uint   `json:"zone_id"`
	LoopID  uint   `json:"loop_id"`
	LineID  uint   `json:"line_id"`
	CellID  uint   `json:"cell_id"`
}

func (r createRequest) parent(field string) (uint, error) {
	var id uint
	switch field {
	case "plant_id":
		id = r.PlantID
	case "zone_id":
		id = r.ZoneID
	case "loop_id":
		id = r.LoopID
	case "line_id":
		id = r.LineID
	case "cell_id":
		id = r.CellID
	}
	if id == 0 {
		return 0, apperr.Invalid("%s is required", field)
	}
	return id, nil
}

func handleStats(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := report.GetStats(db)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, stats)
	}
}

// handleDailyReport returns one plant's summary when plant_id is given,
// otherwise every plant's.
func handleDailyReport(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		date := c.Query("date")
		if c.Query("plant_id") == "" {
			all, err := report.DailyAll(db, date)
			if err != nil {
				writeError(c, err)
				return
			}
			c.JSON(http.StatusOK, paging.NewList(all))
			return
		}
		plantID, ok := queryID(c, "plant_id")
		if !ok {
			return
		}
		d, err := report.DailySummary(db, plantID, date)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, d)
	}
}

func handleListPlants(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		plants, err := hierarchy.ListPlants(db)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, paging.NewList(plants))
	}
}

func handleCreatePlant(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createRequest
		if !bindJSON(c, &req) {
			return
		}
		plant, err := hierarchy.CreatePlant(db, req.Name)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, plant)
	}
}

// handleCreateChild creates a node under the parent named by parentField.
func handleCreateChild[T any](db *gorm.DB, parentField string, create func(*gorm.DB, uint, string) (*T, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createRequest
		if !bindJSON(c, &req) {
			return
		}
		parentID, err := req.parent(parentField)
		if err != nil {
			writeError(c, err)
			return
		}
		node, err := create(db, parentID, req.Name)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, node)
	}
}

// handleCreateUser creates a role user assigned to the node named by
// targetField. The initial password is the SAP id.
func handleCreateUser[T any](db *gorm.DB, targetField string, create func(*gorm.DB, roster.NewUser, uint) (*T, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createRequest
		if !bindJSON(c, &req) {
			return
		}
		targetID, err := req.parent(targetField)
		if err != nil {
			writeError(c, err)
			return
		}
		assignment, err := create(db, roster.NewUser{SapID: req.SapID, Name: req.Name}, targetID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, assignment)
	}
}

func getByID[T any](db *gorm.DB, get func(*gorm.DB, uint) (*T, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		v, err := get(db, id)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, v)
	}
}

func deleteByID(db *gorm.DB, del func(*gorm.DB, uint) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		if err := del(db, id); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// listByParent lists the live children of the :id node.
func listByParent[T any](db *gorm.DB, list func(*gorm.DB, uint) ([]T, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		items, err := list(db, id)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, paging.NewList(items))
	}
}

func handleListReasons(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		params, ok := pageParams(c)
		if !ok {
			return
		}
		page, err := loss.ListReasons(db, params)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, page)
	}
}

func handleCreateReason(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in loss.ReasonInput
		if !bindJSON(c, &in) {
			return
		}
		r, err := loss.CreateReason(db, in)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, r)
	}
}

func handleGetReason(db *gorm.DB) gin.HandlerFunc {
	return getByID(db, loss.GetReason)
}

// handleUpdateReason replaces a reason's content. A body id different from
// the path id renumbers the reason; an omitted id keeps it.
func handleUpdateReason(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		var in loss.ReasonInput
		if !bindJSON(c, &in) {
			return
		}
		if in.ID == 0 {
			in.ID = id
		}
		r, err := loss.UpdateReason(db, id, in)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, r)
	}
}

func handleDeleteReason(db *gorm.DB) gin.HandlerFunc {
	return deleteByID(db, loss.DeleteReason)
}
