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

type ExpenseHandler struct {
	expenseService service.ExpenseService
}

func NewExpenseHandler(expenseService service.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService}
}

func (h *ExpenseHandler) RegisterRoutes(router *gin.RouterGroup) {
	expenses := router.Group("/api/expenses")
	{
		expenses.GET("", middleware.RequireAuth(), h.ListExpenses)
		expenses.POST("", middleware.RequireAuth(), h.CreateExpense)
		expenses.GET("/types", middleware.RequireAuth(), h.GetExpenseTypes)
		expenses.PUT("/:id", middleware.RequireAuth(), h.UpdateExpense)
		expenses.DELETE("/:id", middleware.RequireAuth(), h.DeleteExpense)
	}
}

// ListExpenses returns paginated expenses filtered by vehicle and type
// @Summary      List expenses
// @Tags         expenses
// @Security     BearerAuth
// @Produce      json
// @Param        page        query     int     false  "Page number (default: 1)"
// @Param        limit       query     int     false  "Items per page (default: 20)"
// @Param        vehicle_id  query     string  false  "Filter by vehicle ID"
// @Param        type        query     string  false  "Filter by expense type"
// @Success      200         {object}  response.Response
// @Router       /api/expenses [get]
func (h *ExpenseHandler) ListExpenses(c *gin.Context) {
	p := pagination.Parse(c)

	vehicleID := c.Query("vehicle_id")
	expenseType := c.Query("type")

	expenses, total, err := h.expenseService.GetExpenses(c.Request.Context(), vehicleID, expenseType, p.Page, p.Limit)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, expenses, p.Page, p.Limit, total))
}

// GetExpenseTypes returns the recognized expense categories
// @Summary      List expense types
// @Tags         expenses
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]string}
// @Router       /api/expenses/types [get]
func (h *ExpenseHandler) GetExpenseTypes(c *gin.Context) {
	c.JSON(http.StatusOK, response.Success(http.StatusOK, h.expenseService.GetExpenseTypes()))
}

// CreateExpense records a reconditioning or holding cost against a vehicle
// @Summary      Create expense
// @Tags         expenses
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  service.CreateExpenseRequest  true  "Expense payload"
// @Success      201  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/expenses [post]
func (h *ExpenseHandler) CreateExpense(c *gin.Context) {
	var req service.CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	expense, err := h.expenseService.CreateExpense(c.Request.Context(), c.GetString("userID"), req)
	if err != nil {
		if errors.Is(err, service.ErrVehicleNotFound) || errors.Is(err, service.ErrVendorNotFound) {
			c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
			return
		}
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, expense))
}

// UpdateExpense updates an existing expense
// @Summary      Update expense
// @Tags         expenses
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string                        true  "Expense ID"
// @Param        payload  body  service.UpdateExpenseRequest  true  "Update payload"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/expenses/{id} [put]
func (h *ExpenseHandler) UpdateExpense(c *gin.Context) {
	id := c.Param("id")

	var req service.UpdateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	expense, err := h.expenseService.UpdateExpense(c.Request.Context(), c.GetString("userID"), id, req)
	if err != nil {
		if errors.Is(err, service.ErrExpenseNotFound) || errors.Is(err, service.ErrVendorNotFound) {
			c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
			return
		}
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, expense))
}

// DeleteExpense removes an expense
// @Summary      Delete expense
// @Tags         expenses
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Expense ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/expenses/{id} [delete]
func (h *ExpenseHandler) DeleteExpense(c *gin.Context) {
	id := c.Param("id")

	if err := h.expenseService.DeleteExpense(c.Request.Context(), c.GetString("userID"), id); err != nil {
		if errors.Is(err, service.ErrExpenseNotFound) {
			c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Expense deleted successfully"))
}
