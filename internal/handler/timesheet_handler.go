package handler

import (
	"time"

	"github.com/Shine-Mobile-Detailing/service-dispatch/internal/application"
	"github.com/Shine-Mobile-Detailing/service-dispatch/internal/auth"
	"github.com/Shine-Mobile-Detailing/service-dispatch/internal/middleware"
	"github.com/Shine-Mobile-Detailing/service-dispatch/internal/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TimesheetHandler handles HTTP requests for labor time tracking.
type TimesheetHandler struct {
	service *application.TimesheetService
}

// NewTimesheetHandler creates a new TimesheetHandler.
func NewTimesheetHandler(service *application.TimesheetService) *TimesheetHandler {
	return &TimesheetHandler{service: service}
}

// RegisterRoutes registers all timesheet routes on the given router group.
func (h *TimesheetHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)
	staff := middleware.RequireRole(auth.RoleDetailer, auth.RoleAdmin)

	timesheet := r.Group("/api/v1/bookings/:id/timesheet")
	timesheet.Use(authMW, staff)
	{
		timesheet.POST("/start", h.Start)
		timesheet.POST("/stop", h.Stop)
		timesheet.GET("", h.Summary)
	}
}

// Start handles POST /api/v1/bookings/:id/timesheet/start.
func (h *TimesheetHandler) Start(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	entry, err := h.service.Start(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, entry)
}

// Stop handles POST /api/v1/bookings/:id/timesheet/stop.
func (h *TimesheetHandler) Stop(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	entry, err := h.service.Stop(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, entry)
}

// Summary handles GET /api/v1/bookings/:id/timesheet.
func (h *TimesheetHandler) Summary(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	entries, err := h.service.Entries(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	elapsed, err := h.service.Elapsed(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{
		"entries":         entries,
		"elapsed_seconds": int64(elapsed / time.Second),
	})
}
