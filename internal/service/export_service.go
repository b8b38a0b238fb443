package service

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"dealerdesk/internal/model"

	"github.com/xuri/excelize/v2"
)

// CSV headers, in documented column order. The header row is always written,
// even for an empty result set.
const (
	profitLossCSVHeader       = "Vehicle ID,VIN,Make,Model,Acquisition Cost,Total Expenses,Sale Price,Profit/Loss"
	inventoryAgingCSVHeader   = "Vehicle ID,VIN,Make,Model,Year,Status,Days in Inventory,Total Cost"
	expenseBreakdownCSVHeader = "Expense Type,Total Amount,Count"
)

type ExportService interface {
	ProfitLossCSV(ctx context.Context, filter model.ReportFilter) ([]byte, error)
	InventoryAgingCSV(ctx context.Context) ([]byte, error)
	ExpenseBreakdownCSV(ctx context.Context, filter model.ReportFilter) ([]byte, error)
	ProfitLossXLSX(ctx context.Context, filter model.ReportFilter) ([]byte, error)
}

type exportService struct {
	reports ReportService
}

func NewExportService(reports ReportService) ExportService {
	return &exportService{reports: reports}
}

func (s *exportService) ProfitLossCSV(ctx context.Context, filter model.ReportFilter) ([]byte, error) {
	rows, err := s.reports.GetProfitLossReport(ctx, filter)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString(profitLossCSVHeader)
	buf.WriteByte('\n')

	for _, row := range rows {
		fields := []string{
			csvField(row.VehicleID),
			csvField(row.VIN),
			csvField(row.Make),
			csvField(row.Model),
			row.AcquisitionCost.StringFixed(2),
			row.TotalExpenses.StringFixed(2),
			"",
			"",
		}
		if row.SalePrice != nil {
			fields[6] = row.SalePrice.StringFixed(2)
		}
		if row.ProfitLoss != nil {
			fields[7] = row.ProfitLoss.StringFixed(2)
		}
		writeCSVRow(&buf, fields)
	}

	return buf.Bytes(), nil
}

func (s *exportService) InventoryAgingCSV(ctx context.Context) ([]byte, error) {
	rows, err := s.reports.GetInventoryAging(ctx)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString(inventoryAgingCSVHeader)
	buf.WriteByte('\n')

	for _, row := range rows {
		writeCSVRow(&buf, []string{
			csvField(row.VehicleID),
			csvField(row.VIN),
			csvField(row.Make),
			csvField(row.Model),
			strconv.Itoa(row.Year),
			csvField(row.Status),
			strconv.Itoa(row.DaysInInventory),
			row.TotalCost.StringFixed(2),
		})
	}

	return buf.Bytes(), nil
}

func (s *exportService) ExpenseBreakdownCSV(ctx context.Context, filter model.ReportFilter) ([]byte, error) {
	rows, err := s.reports.GetExpenseBreakdown(ctx, filter)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString(expenseBreakdownCSVHeader)
	buf.WriteByte('\n')

	for _, row := range rows {
		writeCSVRow(&buf, []string{
			csvField(row.ExpenseType),
			row.TotalAmount.StringFixed(2),
			strconv.Itoa(row.Count),
		})
	}

	return buf.Bytes(), nil
}

// ProfitLossXLSX renders the profit/loss report as a styled workbook with a
// totals row at the bottom.
func (s *exportService) ProfitLossXLSX(ctx context.Context, filter model.ReportFilter) ([]byte, error) {
	rows, err := s.reports.GetProfitLossReport(ctx, filter)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Profit & Loss"
	f.SetSheetName("Sheet1", sheetName)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4F81BD"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	f.SetColWidth(sheetName, "A", "A", 38)
	f.SetColWidth(sheetName, "B", "B", 20)
	f.SetColWidth(sheetName, "C", "D", 15)
	f.SetColWidth(sheetName, "E", "H", 16)

	headers := []string{"Vehicle ID", "VIN", "Make", "Model", "Acquisition Cost", "Total Expenses", "Sale Price", "Profit/Loss"}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	totalProfit := 0.0
	soldCount := 0
	for i, row := range rows {
		r := i + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", r), row.VehicleID)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", r), row.VIN)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", r), row.Make)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", r), row.Model)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", r), row.AcquisitionCost.InexactFloat64())
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", r), row.TotalExpenses.InexactFloat64())
		if row.SalePrice != nil {
			f.SetCellValue(sheetName, fmt.Sprintf("G%d", r), row.SalePrice.InexactFloat64())
		}
		if row.ProfitLoss != nil {
			f.SetCellValue(sheetName, fmt.Sprintf("H%d", r), row.ProfitLoss.InexactFloat64())
			totalProfit += row.ProfitLoss.InexactFloat64()
			soldCount++
		}
	}

	summaryStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"FFC000"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	summaryRow := len(rows) + 2
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", summaryRow), fmt.Sprintf("%d vehicles, %d sold", len(rows), soldCount))
	f.MergeCell(sheetName, fmt.Sprintf("A%d", summaryRow), fmt.Sprintf("G%d", summaryRow))
	f.SetCellValue(sheetName, fmt.Sprintf("H%d", summaryRow), totalProfit)
	f.SetCellStyle(sheetName, fmt.Sprintf("A%d", summaryRow), fmt.Sprintf("H%d", summaryRow), summaryStyle)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// --- CSV helpers ---

// csvField quotes a string cell and doubles embedded quotes. Numeric and
// empty cells are written bare, so encoding/csv (which only quotes on
// demand) is not used here.
func csvField(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func writeCSVRow(buf *bytes.Buffer, fields []string) {
	buf.WriteString(strings.Join(fields, ","))
	buf.WriteByte('\n')
}
