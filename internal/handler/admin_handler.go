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

// AssignRequest names the detailer to dispatch a booking to.
type AssignRequest struct {
	DetailerID uuid.UUID `json:"detailer_id" binding:"required"`
}

// SetActiveRequest toggles visibility or assignability.
type SetActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// AdminHandler handles dispatch, roster, catalog management, and
// reporting endpoints. Every route requires the admin role.
type AdminHandler struct {
	bookings  *application.BookingService
	dispatch  *application.DispatchService
	detailers *application.DetailerService
	catalog   *application.CatalogService
	timesheet *application.TimesheetService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(
	bookings *application.BookingService,
	dispatch *application.DispatchService,
	detailers *application.DetailerService,
	catalog *application.CatalogService,
	timesheet *application.TimesheetService,
) *AdminHandler {
	return &AdminHandler{
		bookings:  bookings,
		dispatch:  dispatch,
		detailers: detailers,
		catalog:   catalog,
		timesheet: timesheet,
	}
}

// RegisterRoutes registers all admin routes on the given router group.
func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	admin := r.Group("/api/v1/admin")
	admin.Use(middleware.AuthMiddleware(jwtManager), middleware.RequireRole(auth.RoleAdmin))
	{
		admin.GET("/bookings", h.ListBookings)
		admin.GET("/bookings/stats", h.BookingStats)
		admin.POST("/bookings/:id/assign", h.AssignBooking)
		admin.POST("/bookings/:id/auto-assign", h.AutoAssignBooking)

		admin.POST("/detailers", h.CreateDetailer)
		admin.GET("/detailers", h.ListDetailers)
		admin.PUT("/detailers/:id", h.UpdateDetailer)
		admin.PATCH("/detailers/:id/active", h.SetDetailerActive)

		admin.POST("/services", h.CreateService)
		admin.GET("/services", h.ListServices)
		admin.PUT("/services/:id", h.UpdateService)
		admin.PATCH("/services/:id/active", h.SetServiceActive)

		admin.POST("/add-ons", h.CreateAddOn)
		admin.GET("/add-ons", h.ListAddOns)
		admin.PUT("/add-ons/:id", h.UpdateAddOn)
		admin.PATCH("/add-ons/:id/active", h.SetAddOnActive)

		admin.GET("/reports/labor", h.DailyLabor)
	}
}

// ListBookings handles GET /api/v1/admin/bookings.
func (h *AdminHandler) ListBookings(c *gin.Context) {
	page, limit := pagination(c)
	items, total, err := h.bookings.ListAllBookings(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, items, total, page, limit)
}

// BookingStats handles GET /api/v1/admin/bookings/stats.
func (h *AdminHandler) BookingStats(c *gin.Context) {
	stats, err := h.bookings.GetBookingStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, stats)
}

// AssignBooking handles POST /api/v1/admin/bookings/:id/assign.
func (h *AdminHandler) AssignBooking(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	var req AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.dispatch.Assign(c.Request.Context(), id, req.DetailerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// AutoAssignBooking handles POST /api/v1/admin/bookings/:id/auto-assign.
func (h *AdminHandler) AutoAssignBooking(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	result, err := h.dispatch.AutoAssign(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// CreateDetailer handles POST /api/v1/admin/detailers.
func (h *AdminHandler) CreateDetailer(c *gin.Context) {
	var req application.DetailerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.detailers.CreateDetailer(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// ListDetailers handles GET /api/v1/admin/detailers.
func (h *AdminHandler) ListDetailers(c *gin.Context) {
	activeOnly := c.Query("active") == "true"
	items, err := h.detailers.ListDetailers(c.Request.Context(), activeOnly)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, items)
}

// UpdateDetailer handles PUT /api/v1/admin/detailers/:id.
func (h *AdminHandler) UpdateDetailer(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid detailer ID")
		return
	}

	var req application.DetailerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.detailers.UpdateDetailer(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// SetDetailerActive handles PATCH /api/v1/admin/detailers/:id/active.
func (h *AdminHandler) SetDetailerActive(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid detailer ID")
		return
	}

	var req SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.detailers.SetDetailerActive(c.Request.Context(), id, *req.Active)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// CreateService handles POST /api/v1/admin/services.
func (h *AdminHandler) CreateService(c *gin.Context) {
	var req application.ServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.catalog.CreateService(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// ListServices handles GET /api/v1/admin/services.
func (h *AdminHandler) ListServices(c *gin.Context) {
	items, err := h.catalog.ListServices(c.Request.Context(), false)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, items)
}

// UpdateService handles PUT /api/v1/admin/services/:id.
func (h *AdminHandler) UpdateService(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid service ID")
		return
	}

	var req application.ServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.catalog.UpdateService(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// SetServiceActive handles PATCH /api/v1/admin/services/:id/active.
func (h *AdminHandler) SetServiceActive(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid service ID")
		return
	}

	var req SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.catalog.SetServiceActive(c.Request.Context(), id, *req.Active)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// CreateAddOn handles POST /api/v1/admin/add-ons.
func (h *AdminHandler) CreateAddOn(c *gin.Context) {
	var req application.AddOnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.catalog.CreateAddOn(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// ListAddOns handles GET /api/v1/admin/add-ons.
func (h *AdminHandler) ListAddOns(c *gin.Context) {
	items, err := h.catalog.ListAddOns(c.Request.Context(), false)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, items)
}

// UpdateAddOn handles PUT /api/v1/admin/add-ons/:id.
func (h *AdminHandler) UpdateAddOn(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid add-on ID")
		return
	}

	var req application.AddOnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.catalog.UpdateAddOn(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// SetAddOnActive handles PATCH /api/v1/admin/add-ons/:id/active.
func (h *AdminHandler) SetAddOnActive(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid add-on ID")
		return
	}

	var req SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.catalog.SetAddOnActive(c.Request.Context(), id, *req.Active)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// DailyLabor handles GET /api/v1/admin/reports/labor?date=2006-01-02.
func (h *AdminHandler) DailyLabor(c *gin.Context) {
	dateStr := c.DefaultQuery("date", time.Now().Format("2006-01-02"))
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		response.BadRequest(c, "invalid date, expected YYYY-MM-DD")
		return
	}

	total, err := h.timesheet.DailyTotal(c.Request.Context(), date)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{
		"date":          dateStr,
		"total_seconds": int64(total / time.Second),
	})
}
