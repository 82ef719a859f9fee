package api

import (
	"github.com/gin-gonic/gin"
	"github.com/zulandar/shiftboard/internal/auth"
	"github.com/zulandar/shiftboard/internal/hierarchy"
	"github.com/zulandar/shiftboard/internal/models"
	"github.com/zulandar/shiftboard/internal/roster"
	"gorm.io/gorm"
)

// registerRoutes sets up all API routes on the Gin router.
func registerRoutes(router *gin.Engine, db *gorm.DB, authn *auth.Authenticator) {
	api := router.Group("/api")
	api.GET("/health", handleHealth(db))

	authGroup := api.Group("/auth")
	authGroup.POST("/login", handleLogin(authn))
	authGroup.GET("/me", authenticate(authn), handleMe())

	admin := api.Group("/admin", authenticate(authn), requireRole(models.RoleAdmin))
	admin.GET("/dashboard/stats", handleStats(db))
	admin.GET("/reports/daily", handleDailyReport(db))

	admin.GET("/plants", handleListPlants(db))
	admin.POST("/plants", handleCreatePlant(db))
	admin.GET("/plants/:id", getByID(db, hierarchy.GetPlant))
	admin.DELETE("/plants/:id", deleteByID(db, hierarchy.DeletePlant))
	admin.GET("/plants/:id/zones", listByParent(db, hierarchy.ListZones))
	admin.GET("/plants/:id/planners", listByParent(db, roster.ListPlanners))

	admin.POST("/zones", handleCreateChild(db, "plant_id", hierarchy.CreateZone))
	admin.GET("/zones/:id", getByID(db, hierarchy.GetZone))
	admin.DELETE("/zones/:id", deleteByID(db, hierarchy.DeleteZone))
	admin.GET("/zones/:id/loops", listByParent(db, hierarchy.ListLoops))

	admin.POST("/loops", handleCreateChild(db, "zone_id", hierarchy.CreateLoop))
	admin.GET("/loops/:id", getByID(db, hierarchy.GetLoop))
	admin.DELETE("/loops/:id", deleteByID(db, hierarchy.DeleteLoop))
	admin.GET("/loops/:id/lines", listByParent(db, hierarchy.ListLines))

	admin.POST("/lines", handleCreateChild(db, "loop_id", hierarchy.CreateLine))
	admin.GET("/lines/:id", getByID(db, hierarchy.GetLine))
	admin.DELETE("/lines/:id", deleteByID(db, hierarchy.DeleteLine))
	admin.GET("/lines/:id/cells", listByParent(db, hierarchy.ListCells))
	admin.GET("/lines/:id/team-leaders", listByParent(db, roster.ListTeamLeaders))

	admin.POST("/cells", handleCreateChild(db, "line_id", hierarchy.CreateCell))
	admin.GET("/cells/:id", getByID(db, hierarchy.GetCell))
	admin.DELETE("/cells/:id", deleteByID(db, hierarchy.DeleteCell))
	admin.GET("/cells/:id/members", listByParent(db, roster.ListMembers))

	admin.POST("/planners", handleCreateUser(db, "plant_id", roster.CreatePlanner))
	admin.POST("/team-leaders", handleCreateUser(db, "line_id", roster.CreateTeamLeader))
	admin.POST("/members", handleCreateUser(db, "cell_id", roster.CreateMember))

	admin.GET("/loss-reasons", handleListReasons(db))
	admin.POST("/loss-reasons", handleCreateReason(db))
	admin.GET("/loss-reasons/:id", handleGetReason(db))
	admin.PUT("/loss-reasons/:id", handleUpdateReason(db))
	admin.DELETE("/loss-reasons/:id", handleDeleteReason(db))

	planner := api.Group("/planner", authenticate(authn), requireRole(models.RolePlanner))
	planner.GET("/profile", handlePlannerProfile(db))
	planner.POST("/shifts", handleCreateShift(db))
	planner.GET("/shifts", handleListShifts(db))
	planner.GET("/shifts/:id", handleGetShift(db))
	planner.DELETE("/shifts/:id", handleDeleteShift(db))
	planner.GET("/shifts/:id/lines", handleShiftLines(db))
	planner.GET("/lines/:id", handlePlannerLine(db))
	planner.GET("/productions", handleListProductions(db))
	planner.POST("/productions", handleSetPlans(db))

	tl := api.Group("/team-leader", authenticate(authn), requireRole(models.RoleTeamLeader))
	tl.GET("/me", handleTeamLeaderProfile(db))
	tl.GET("/shifts", handleShiftsForDate(db))
	tl.GET("/shifts/:id", handleGetShift(db))
	tl.GET("/production", handleGetProduction(db))
	tl.GET("/production/plan", handlePlanFor(db))
	tl.POST("/production", handleRecordActuals(db))
	tl.GET("/production/:id/losses", handleListLosses(db))
	tl.GET("/production/:id/allocation", handleAllocation(db))
	tl.GET("/loss-reasons", handleActiveReasons(db))
	tl.POST("/losses", handleRecordLoss(db))
	tl.DELETE("/losses/:id", handleDeleteLoss(db))
}
