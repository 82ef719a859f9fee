package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zulandar/shiftboard/internal/loss"
	"github.com/zulandar/shiftboard/internal/paging"
	"github.com/zulandar/shiftboard/internal/production"
	"github.com/zulandar/shiftboard/internal/roster"
	"github.com/zulandar/shiftboard/internal/shift"
	"gorm.io/gorm"
)

func handleTeamLeaderProfile(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		profile, err := roster.TeamLeaderProfile(db, principal(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, profile)
	}
}

func handleShiftsForDate(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		shifts, err := shift.ListForDate(db, principal(c), c.Query("date"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, paging.NewList(shifts))
	}
}

// handleGetProduction returns the row for the caller's line, or JSON null
// when nothing exists yet.
func handleGetProduction(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		shiftID, ok := queryID(c, "shift_id")
		if !ok {
			return
		}
		row, err := production.Get(db, principal(c), shiftID, c.Query("hour"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, row)
	}
}

func handlePlanFor(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		shiftID, ok := queryID(c, "shift_id")
		if !ok {
			return
		}
		plan, err := production.PlanFor(db, principal(c), shiftID, c.Query("hour"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"plan": plan})
	}
}

// handleRecordActuals answers 201 when the row was inserted and 200 when an
// existing row was updated.
func handleRecordActuals(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in production.Actuals
		if !bindJSON(c, &in) {
			return
		}
		row, created, err := production.RecordActuals(db, principal(c), in)
		if err != nil {
			writeError(c, err)
			return
		}
		status := http.StatusOK
		if created {
			status = http.StatusCreated
		}
		c.JSON(status, row)
	}
}

func handleListLosses(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		losses, err := loss.List(db, principal(c), id)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, paging.NewList(losses))
	}
}

func handleAllocation(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		alloc, err := loss.Allocate(db, principal(c), id)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, alloc)
	}
}

func handleActiveReasons(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		reasons, err := loss.ActiveReasons(db)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, paging.NewList(reasons))
	}
}

func handleRecordLoss(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var opts loss.RecordOpts
		if !bindJSON(c, &opts) {
			return
		}
		entry, err := loss.Record(db, principal(c), opts)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, entry)
	}
}

func handleDeleteLoss(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		if err := loss.Delete(db, principal(c), id); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
