package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zulandar/shiftboard/internal/identity"
	"github.com/zulandar/shiftboard/internal/paging"
	"github.com/zulandar/shiftboard/internal/production"
	"github.com/zulandar/shiftboard/internal/roster"
	"github.com/zulandar/shiftboard/internal/shift"
	"gorm.io/gorm"
)

type shiftRequest struct {
	Date     string `json:"date"`
	DayNight string `json:"day_night"`
	Shift    string `json:"shift"`
}

type planRequest struct {
	Productions []production.PlanEntry `json:"productions"`
}

func handlePlannerProfile(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		profile, err := roster.PlannerProfile(db, principal(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, profile)
	}
}

func handleCreateShift(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req shiftRequest
		if !bindJSON(c, &req) {
			return
		}
		s, err := shift.Create(db, principal(c), shift.CreateOpts{
			Date:     req.Date,
			DayNight: req.DayNight,
			Shift:    req.Shift,
		})
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, s)
	}
}

func handleListShifts(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		params, ok := pageParams(c)
		if !ok {
			return
		}
		page, err := shift.List(db, principal(c), params)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, page)
	}
}

// handleGetShift serves both planners and team leaders; the scope check
// lives in shift.Get.
func handleGetShift(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		s, err := shift.Get(db, principal(c), id)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, s)
	}
}

func handleDeleteShift(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		if err := shift.Delete(db, principal(c), id); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func handleShiftLines(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		lines, err := shift.Lines(db, principal(c), id)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, lines)
	}
}

func handlePlannerLine(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		line, err := identity.GetLine(db, principal(c), id)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, line)
	}
}

func handleListProductions(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		shiftID, ok := queryID(c, "shift")
		if !ok {
			return
		}
		lineID, ok := queryID(c, "line")
		if !ok {
			return
		}
		rows, err := production.List(db, principal(c), shiftID, lineID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, rows)
	}
}

func handleSetPlans(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req planRequest
		if !bindJSON(c, &req) {
			return
		}
		rows, err := production.SetPlans(db, principal(c), req.Productions)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, paging.NewList(rows))
	}
}
