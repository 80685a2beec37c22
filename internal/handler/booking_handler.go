package handler

import (
	"strconv"

	"github.com/Shine-Mobile-Detailing/service-dispatch/internal/application"
	"github.com/Shine-Mobile-Detailing/service-dispatch/internal/auth"
	bookingDomain "github.com/Shine-Mobile-Detailing/service-dispatch/internal/domain/booking"
	"github.com/Shine-Mobile-Detailing/service-dispatch/internal/middleware"
	"github.com/Shine-Mobile-Detailing/service-dispatch/internal/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TransitionRequest names the target lifecycle status.
type TransitionRequest struct {
	Status string `json:"status" binding:"required"`
}

// CancelRequest carries an optional cancellation reason.
type CancelRequest struct {
	Reason string `json:"reason"`
}

// BookingHandler handles HTTP requests for booking operations.
type BookingHandler struct {
	service *application.BookingService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(service *application.BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

// RegisterRoutes registers all booking routes on the given router group.
func (h *BookingHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	bookings := r.Group("/api/v1/bookings")
	bookings.Use(authMW)
	{
		bookings.POST("", middleware.RequireRole(auth.RoleCustomer, auth.RoleAdmin), h.CreateBooking)
		bookings.GET("/:id", h.GetBooking)
		bookings.GET("/code/:code", h.GetBookingByCode)
		bookings.POST("/:id/transition", middleware.RequireRole(auth.RoleDetailer, auth.RoleAdmin), h.Transition)
		bookings.POST("/:id/cancel", h.CancelBooking)
	}

	detailers := r.Group("/api/v1/detailers")
	detailers.Use(authMW)
	{
		detailers.GET("/:id/bookings", middleware.RequireRole(auth.RoleDetailer, auth.RoleAdmin), h.ListDetailerBookings)
	}
}

// CreateBooking handles POST /api/v1/bookings.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req application.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateBooking(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// GetBooking handles GET /api/v1/bookings/:id.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	result, err := h.service.GetBooking(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetBookingByCode handles GET /api/v1/bookings/code/:code.
func (h *BookingHandler) GetBookingByCode(c *gin.Context) {
	result, err := h.service.GetBookingByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Transition handles POST /api/v1/bookings/:id/transition.
func (h *BookingHandler) Transition(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	target, err := bookingDomain.ParseBookingStatus(req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.service.Transition(c.Request.Context(), id, target)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// CancelBooking handles POST /api/v1/bookings/:id/cancel.
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	var req CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CancelBooking(c.Request.Context(), id, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ListDetailerBookings handles GET /api/v1/detailers/:id/bookings.
func (h *BookingHandler) ListDetailerBookings(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid detailer ID")
		return
	}

	page, limit := pagination(c)
	items, total, err := h.service.GetDetailerBookings(c.Request.Context(), id, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, items, total, page, limit)
}

func pagination(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}
