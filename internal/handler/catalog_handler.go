package handler

import (
	"github.com/Shine-Mobile-Detailing/service-dispatch/internal/application"
	bookingDomain "github.com/Shine-Mobile-Detailing/service-dispatch/internal/domain/booking"
	"github.com/Shine-Mobile-Detailing/service-dispatch/internal/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// QuoteRequest names the items to price for a vehicle type.
type QuoteRequest struct {
	VehicleType string      `json:"vehicle_type" binding:"required"`
	ServiceIDs  []uuid.UUID `json:"service_ids" binding:"required"`
	AddOnIDs    []uuid.UUID `json:"add_on_ids"`
}

// CatalogHandler handles public catalog browsing and quoting.
type CatalogHandler struct {
	service *application.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(service *application.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// RegisterRoutes registers the public catalog routes. No auth: customers
// browse and price before they have an account.
func (h *CatalogHandler) RegisterRoutes(r *gin.RouterGroup) {
	catalog := r.Group("/api/v1/catalog")
	{
		catalog.GET("/services", h.ListServices)
		catalog.GET("/add-ons", h.ListAddOns)
		catalog.POST("/quote", h.Quote)
	}
}

// ListServices handles GET /api/v1/catalog/services.
func (h *CatalogHandler) ListServices(c *gin.Context) {
	items, err := h.service.ListServices(c.Request.Context(), true)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, items)
}

// ListAddOns handles GET /api/v1/catalog/add-ons.
func (h *CatalogHandler) ListAddOns(c *gin.Context) {
	items, err := h.service.ListAddOns(c.Request.Context(), true)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, items)
}

// Quote handles POST /api/v1/catalog/quote.
func (h *CatalogHandler) Quote(c *gin.Context) {
	var req QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	quote, err := h.service.ComputeQuote(
		c.Request.Context(),
		bookingDomain.VehicleType(req.VehicleType),
		req.ServiceIDs,
		req.AddOnIDs,
	)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, quote)
}
