package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Version is reported by the banner route
const Version = "3.0.0"

// NewRouter builds the gin engine shared by the server and the serverless entry
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), RequestLogger(h.Logger), h.Metrics.Middleware(), CORS(h.Origins), SecurityHeaders())

	if h.Metrics != nil {
		r.GET("/metrics", gin.WrapH(h.Metrics.Handler()))
	}

	// Admin interface - serve static files from embedded FS
	r.StaticFS("/static", h.GetStaticFS())

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Meeting Rotation API",
			"version": Version,
		})
	})

	r.GET("/admin", h.AdminInterface)
	r.POST("/admin/login", h.Login)

	// Admin Endpoints
	admin := r.Group("/admin")
	admin.Use(h.AuthMiddleware())
	{
		admin.POST("/keys", h.GenerateKey)
		admin.GET("/keys", h.ListKeys)
		admin.PUT("/keys/:id", h.UpdateKeyLimit)
		admin.DELETE("/keys/:id", h.RevokeKey)
		admin.GET("/usage/:id", h.GetUsage)
	}

	// Workspace Endpoints
	api := r.Group("/api")
	api.Use(h.APIKeyMiddleware())
	{
		api.POST("/rotate", h.Rotate)
		api.POST("/validate", h.ValidateInput)
		api.GET("/usage", h.GetMyUsage)

		api.GET("/lists", h.GetLists)
		api.PUT("/lists", h.ReplaceLists)
		api.PUT("/lists/:key", h.PutList)
		api.DELETE("/lists/:key", h.DeleteList)

		api.GET("/schedule", h.GetSchedule)
		api.PUT("/schedule", h.SaveSchedule)
		api.DELETE("/schedule", h.ClearSchedule)
		api.POST("/schedule/weeks", h.AddWeek)
		api.POST("/schedule/rotate", h.RotateSchedule)
		api.GET("/schedule/slips", h.Slips)
		api.GET("/schedule/export.xlsx", h.ExportWorkbook)
		api.GET("/schedule/calendar.ics", h.ExportCalendar)

		api.GET("/history", h.ListHistory)
		api.POST("/history", h.ArchiveSchedule)
		api.GET("/history/:id", h.GetHistory)
		api.PUT("/history/:id", h.UpdateHistory)
		api.DELETE("/history/:id", h.DeleteHistory)
		api.POST("/history/:id/load", h.LoadHistory)
	}

	return r
}
