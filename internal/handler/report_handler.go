package handler

import (
	"fmt"
	"net/http"
	"time"

	"dealerdesk/internal/middleware"
	"dealerdesk/internal/model"
	"dealerdesk/internal/service"
	"dealerdesk/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const reportDateLayout = "2006-01-02"

type ReportHandler struct {
	reportService service.ReportService
	exportService service.ExportService
}

func NewReportHandler(reportService service.ReportService, exportService service.ExportService) *ReportHandler {
	return &ReportHandler{reportService: reportService, exportService: exportService}
}

func (h *ReportHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/api/dashboard", middleware.RequireAuth(), h.GetDashboard)
	router.GET("/api/vehicles/:id/profit-loss", middleware.RequireAuth(), h.GetVehicleProfitLoss)

	reports := router.Group("/api/reports")
	{
		reports.GET("/profit-loss", middleware.RequireAuth(), h.GetProfitLoss)
		reports.GET("/profit-loss/export", middleware.RequireAuth(), h.ExportProfitLoss)
		reports.GET("/inventory-aging", middleware.RequireAuth(), h.GetInventoryAging)
		reports.GET("/inventory-aging/export", middleware.RequireAuth(), h.ExportInventoryAging)
		reports.GET("/expense-breakdown", middleware.RequireAuth(), h.GetExpenseBreakdown)
		reports.GET("/expense-breakdown/export", middleware.RequireAuth(), h.ExportExpenseBreakdown)
	}
}

// parseReportFilter extracts the shared date/status/make/model filters.
func parseReportFilter(c *gin.Context) (model.ReportFilter, bool) {
	var filter model.ReportFilter

	if raw := c.Query("start_date"); raw != "" {
		parsed, err := time.Parse(reportDateLayout, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid start_date format, expected YYYY-MM-DD"))
			return filter, false
		}
		filter.StartDate = &parsed
	}

	if raw := c.Query("end_date"); raw != "" {
		parsed, err := time.Parse(reportDateLayout, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid end_date format, expected YYYY-MM-DD"))
			return filter, false
		}
		filter.EndDate = &parsed
	}

	filter.Status = c.Query("status")
	filter.Make = c.Query("make")
	filter.Model = c.Query("model")

	return filter, true
}

// GetDashboard returns the headline KPI snapshot
// @Summary      Dashboard KPIs
// @Tags         reports
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=model.DashboardKpi}
// @Failure      500  {object}  response.Response
// @Router       /api/dashboard [get]
func (h *ReportHandler) GetDashboard(c *gin.Context) {
	kpis, err := h.reportService.GetDashboardKpis(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, kpis))
}

// GetProfitLoss returns per-vehicle profit/loss lines
// @Summary      Profit/loss report
// @Tags         reports
// @Security     BearerAuth
// @Produce      json
// @Param        start_date  query     string  false  "Acquired on or after (YYYY-MM-DD)"
// @Param        end_date    query     string  false  "Acquired on or before (YYYY-MM-DD)"
// @Param        status      query     string  false  "Filter by vehicle status"
// @Param        make        query     string  false  "Filter by make"
// @Param        model       query     string  false  "Filter by model"
// @Success      200  {object}  response.Response{data=[]model.ProfitLossRow}
// @Failure      400  {object}  response.Response
// @Router       /api/reports/profit-loss [get]
func (h *ReportHandler) GetProfitLoss(c *gin.Context) {
	filter, ok := parseReportFilter(c)
	if !ok {
		return
	}

	rows, err := h.reportService.GetProfitLossReport(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, rows))
}

// GetVehicleProfitLoss returns the profit/loss line for a single vehicle
// @Summary      Vehicle profit/loss
// @Tags         reports
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Vehicle ID"
// @Success      200  {object}  response.Response{data=model.ProfitLossRow}
// @Failure      404  {object}  response.Response
// @Router       /api/vehicles/{id}/profit-loss [get]
func (h *ReportHandler) GetVehicleProfitLoss(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid vehicle id"))
		return
	}

	row, err := h.reportService.GetVehicleProfitLoss(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	if row == nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "Vehicle not found"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, row))
}

// GetInventoryAging returns aging lines for listed vehicles
// @Summary      Inventory aging report
// @Tags         reports
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]model.InventoryAgingRow}
// @Failure      500  {object}  response.Response
// @Router       /api/reports/inventory-aging [get]
func (h *ReportHandler) GetInventoryAging(c *gin.Context) {
	rows, err := h.reportService.GetInventoryAging(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, rows))
}

// GetExpenseBreakdown returns expense totals grouped by type
// @Summary      Expense breakdown report
// @Tags         reports
// @Security     BearerAuth
// @Produce      json
// @Param        start_date  query     string  false  "Expenses on or after (YYYY-MM-DD)"
// @Param        end_date    query     string  false  "Expenses on or before (YYYY-MM-DD)"
// @Param        status      query     string  false  "Filter by vehicle status"
// @Param        make        query     string  false  "Filter by make"
// @Param        model       query     string  false  "Filter by model"
// @Success      200  {object}  response.Response{data=[]model.ExpenseBreakdownRow}
// @Failure      400  {object}  response.Response
// @Router       /api/reports/expense-breakdown [get]
func (h *ReportHandler) GetExpenseBreakdown(c *gin.Context) {
	filter, ok := parseReportFilter(c)
	if !ok {
		return
	}

	rows, err := h.reportService.GetExpenseBreakdown(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, rows))
}

// ExportProfitLoss streams the profit/loss report as CSV or XLSX
// @Summary      Export profit/loss report
// @Tags         reports
// @Security     BearerAuth
// @Produce      text/csv
// @Param        format      query     string  false  "Export format: csv (default) or xlsx"
// @Param        start_date  query     string  false  "Acquired on or after (YYYY-MM-DD)"
// @Param        end_date    query     string  false  "Acquired on or before (YYYY-MM-DD)"
// @Param        status      query     string  false  "Filter by vehicle status"
// @Param        make        query     string  false  "Filter by make"
// @Param        model       query     string  false  "Filter by model"
// @Success      200  {file}    file
// @Failure      400  {object}  response.Response
// @Router       /api/reports/profit-loss/export [get]
func (h *ReportHandler) ExportProfitLoss(c *gin.Context) {
	filter, ok := parseReportFilter(c)
	if !ok {
		return
	}

	if c.DefaultQuery("format", "csv") == "xlsx" {
		data, err := h.exportService.ProfitLossXLSX(c.Request.Context(), filter)
		if err != nil {
			c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
			return
		}

		filename := fmt.Sprintf("profit_loss_%s.xlsx", time.Now().Format("20060102_150405"))
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
		c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
		return
	}

	data, err := h.exportService.ProfitLossCSV(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	filename := fmt.Sprintf("profit_loss_%s.csv", time.Now().Format("20060102_150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

// ExportInventoryAging streams the inventory aging report as CSV
// @Summary      Export inventory aging report
// @Tags         reports
// @Security     BearerAuth
// @Produce      text/csv
// @Success      200  {file}    file
// @Failure      500  {object}  response.Response
// @Router       /api/reports/inventory-aging/export [get]
func (h *ReportHandler) ExportInventoryAging(c *gin.Context) {
	data, err := h.exportService.InventoryAgingCSV(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	filename := fmt.Sprintf("inventory_aging_%s.csv", time.Now().Format("20060102_150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

// ExportExpenseBreakdown streams the expense breakdown report as CSV
// @Summary      Export expense breakdown report
// @Tags         reports
// @Security     BearerAuth
// @Produce      text/csv
// @Param        start_date  query     string  false  "Expenses on or after (YYYY-MM-DD)"
// @Param        end_date    query     string  false  "Expenses on or before (YYYY-MM-DD)"
// @Param        status      query     string  false  "Filter by vehicle status"
// @Param        make        query     string  false  "Filter by make"
// @Param        model       query     string  false  "Filter by model"
// @Success      200  {file}    file
// @Failure      400  {object}  response.Response
// @Router       /api/reports/expense-breakdown/export [get]
func (h *ReportHandler) ExportExpenseBreakdown(c *gin.Context) {
	filter, ok := parseReportFilter(c)
	if !ok {
		return
	}

	data, err := h.exportService.ExpenseBreakdownCSV(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	filename := fmt.Sprintf("expense_breakdown_%s.csv", time.Now().Format("20060102_150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}
