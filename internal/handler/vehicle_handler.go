package handler

import (
	"errors"
	"net/http"

	"dealerdesk/internal/middleware"
	"dealerdesk/internal/service"
	"dealerdesk/pkg/pagination"
	"dealerdesk/pkg/response"

	"github.com/gin-gonic/gin"
)

type VehicleHandler struct {
	vehicleService service.VehicleService
}

func NewVehicleHandler(vehicleService service.VehicleService) *VehicleHandler {
	return &VehicleHandler{vehicleService: vehicleService}
}

func (h *VehicleHandler) RegisterRoutes(router *gin.RouterGroup) {
	vehicles := router.Group("/api/vehicles")
	{
		vehicles.GET("", middleware.RequireAuth(), h.ListVehicles)
		vehicles.POST("", middleware.RequireAuth(), h.CreateVehicle)
		vehicles.GET("/:id", middleware.RequireAuth(), h.GetVehicle)
		vehicles.PUT("/:id", middleware.RequireAuth(), h.UpdateVehicle)
		vehicles.DELETE("/:id", middleware.RequireAuth(), h.DeleteVehicle)
	}
}

// ListVehicles returns paginated vehicles with optional status/make/search filter
// @Summary      List vehicles
// @Tags         vehicles
// @Security     BearerAuth
// @Produce      json
// @Param        page    query     int     false  "Page number (default: 1)"
// @Param        limit   query     int     false  "Items per page (default: 20)"
// @Param        status  query     string  false  "Filter by status: ACQUIRED, RECONDITIONING, LISTED, SOLD, ARCHIVED"
// @Param        make    query     string  false  "Filter by make"
// @Param        search  query     string  false  "Search by VIN, make, model"
// @Success      200     {object}  response.Response
// @Router       /api/vehicles [get]
func (h *VehicleHandler) ListVehicles(c *gin.Context) {
	p := pagination.Parse(c)

	status := c.Query("status")
	vehicleMake := c.Query("make")
	search := c.Query("search")

	vehicles, total, err := h.vehicleService.GetVehicles(c.Request.Context(), status, vehicleMake, search, p.Page, p.Limit)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, vehicles, p.Page, p.Limit, total))
}

// CreateVehicle registers a newly acquired vehicle
// @Summary      Create vehicle
// @Tags         vehicles
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  service.CreateVehicleRequest  true  "Vehicle payload"
// @Success      201  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/vehicles [post]
func (h *VehicleHandler) CreateVehicle(c *gin.Context) {
	var req service.CreateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	vehicle, err := h.vehicleService.CreateVehicle(c.Request.Context(), c.GetString("userID"), req)
	if err != nil {
		if errors.Is(err, service.ErrDuplicateVIN) {
			c.JSON(http.StatusConflict, response.Error(http.StatusConflict, err.Error()))
			return
		}
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, vehicle))
}

// GetVehicle returns one vehicle with its expenses, transactions and profit/loss
// @Summary      Get vehicle detail
// @Tags         vehicles
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Vehicle ID"
// @Success      200  {object}  response.Response{data=service.VehicleDetailResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/vehicles/{id} [get]
func (h *VehicleHandler) GetVehicle(c *gin.Context) {
	id := c.Param("id")

	detail, err := h.vehicleService.GetVehicle(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	if detail == nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "Vehicle not found"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, detail))
}

// UpdateVehicle updates an existing vehicle
// @Summary      Update vehicle
// @Tags         vehicles
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string                        true  "Vehicle ID"
// @Param        payload  body  service.UpdateVehicleRequest  true  "Update payload"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/vehicles/{id} [put]
func (h *VehicleHandler) UpdateVehicle(c *gin.Context) {
	id := c.Param("id")

	var req service.UpdateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	vehicle, err := h.vehicleService.UpdateVehicle(c.Request.Context(), c.GetString("userID"), id, req)
	if err != nil {
		if errors.Is(err, service.ErrVehicleNotFound) {
			c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
			return
		}
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, vehicle))
}

// DeleteVehicle removes a vehicle together with its expenses and transactions
// @Summary      Delete vehicle
// @Tags         vehicles
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Vehicle ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/vehicles/{id} [delete]
func (h *VehicleHandler) DeleteVehicle(c *gin.Context) {
	id := c.Param("id")

	if err := h.vehicleService.DeleteVehicle(c.Request.Context(), c.GetString("userID"), id); err != nil {
		if errors.Is(err, service.ErrVehicleNotFound) {
			c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Vehicle deleted successfully"))
}
