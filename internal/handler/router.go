package handler

import (
	"github.com/gin-gonic/gin"
)

// Handlers groups every HTTP handler the API mounts.
type Handlers struct {
	Auth     *AuthHandler
	Blocks   *BlockHandler
	Students *StudentHandler
	Desks    *DeskHandler
	Tracking *TrackingHandler
	Setup    *SetupHandler
	Reports  *ReportHandler
	Monitor  *MonitorHandler
}

// RegisterRoutes mounts the API under prefix. Everything except register and login sits behind auth.
func RegisterRoutes(r gin.IRouter, prefix string, auth gin.HandlerFunc, h Handlers) {
	api := r.Group(prefix)

	api.POST("/auth/register", h.Auth.Register)
	api.POST("/auth/login", h.Auth.Login)

	secured := api.Group("")
	secured.Use(auth)

	secured.GET("/me", h.Auth.Me)
	secured.PUT("/account", h.Auth.UpdateAccount)
	secured.PUT("/account/password", h.Auth.ChangePassword)

	secured.GET("/blocks", h.Blocks.List)
	secured.POST("/blocks", h.Blocks.Create)
	secured.GET("/blocks/:id", h.Blocks.Get)
	secured.PATCH("/blocks/:id", h.Blocks.Update)
	secured.DELETE("/blocks/:id", h.Blocks.Delete)

	secured.GET("/students", h.Students.List)
	secured.POST("/students", h.Students.Create)
	secured.PATCH("/students/:id", h.Students.Update)
	secured.DELETE("/students/:id", h.Students.Delete)

	secured.GET("/desks", h.Desks.List)
	secured.POST("/desks", h.Desks.Create)
	secured.PATCH("/desks/:id", h.Desks.Update)
	secured.POST("/desks/:id/move", h.Desks.Move)
	secured.DELETE("/desks/:id", h.Desks.Delete)

	secured.GET("/attendance", h.Tracking.ListAttendance)
	secured.POST("/attendance", h.Tracking.RecordAttendance)
	secured.GET("/performance", h.Tracking.ListPerformance)
	secured.POST("/performance", h.Tracking.RecordPerformance)
	secured.GET("/laps", h.Tracking.ListLaps)
	secured.POST("/laps", h.Tracking.UpsertLap)
	secured.POST("/laps/copy", h.Tracking.CopyLapWeek)
	secured.GET("/standards", h.Tracking.Standards)

	secured.GET("/setup-status", h.Setup.Status)

	secured.POST("/reports/run", h.Reports.Run)
	secured.POST("/reports/export", h.Reports.Export)

	monitor := secured.Group("/monitor")
	monitor.GET("", h.Monitor.View)
	monitor.POST("/open", h.Monitor.Open)
	monitor.POST("/dismiss-overlay", h.Monitor.DismissOverlay)
	monitor.POST("/toggle-mode", h.Monitor.ToggleMode)
	monitor.POST("/list/open", h.Monitor.OpenListView)
	monitor.POST("/list/close", h.Monitor.CloseListView)
	monitor.POST("/tap-desk", h.Monitor.TapDesk)
	monitor.POST("/tap-lap", h.Monitor.TapLap)
	monitor.POST("/tap-zone", h.Monitor.TapZone)
	monitor.POST("/attendance", h.Monitor.SetAttendance)
	monitor.POST("/bulk-attendance", h.Monitor.BulkAttendance)
}
