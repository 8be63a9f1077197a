package delivery

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go-broker/internal/features/catalog"
	"go-broker/internal/features/execution"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Document is a rendered report ready to download or attach
type Document struct {
	Data        []byte
	Filename    string
	ContentType string
}

var unsafeFilename = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

func baseFilename(title string, at time.Time) string {
	name := strings.Trim(unsafeFilename.ReplaceAllString(title, "_"), "_")
	if name == "" {
		name = "report"
	}
	return fmt.Sprintf("%s_%s", name, at.UTC().Format("20060102_150405"))
}

// Render converts a result into the requested file format
func Render(result *execution.ExecutionResult, format execution.Format, title string) (*Document, error) {
	base := baseFilename(title, result.GeneratedAt)
	switch format {
	case execution.FormatCSV:
		data, err := renderCSV(result)
		if err != nil {
			return nil, err
		}
		return &Document{Data: data, Filename: base + ".csv", ContentType: "text/csv"}, nil
	case execution.FormatExcel:
		data, err := renderExcel(result)
		if err != nil {
			return nil, err
		}
		return &Document{Data: data, Filename: base + ".xlsx", ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"}, nil
	case execution.FormatPDF:
		data, err := renderPDF(result, title)
		if err != nil {
			return nil, err
		}
		return &Document{Data: data, Filename: base + ".pdf", ContentType: "application/pdf"}, nil
	}
	return nil, fmt.Errorf("unsupported format: %s", format)
}

func cellText(col execution.Column, val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case time.Time:
		if col.Type == catalog.ColumnDate {
			return v.Format("2006-01-02")
		}
		return v.Format("2006-01-02 15:04:05")
	case decimal.Decimal:
		return v.StringFixed(2)
	case bool:
		if v {
			return "Yes"
		}
		return "No"
	default:
		return fmt.Sprintf("%v", v)
	}
}

func renderCSV(result *execution.ExecutionResult) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := make([]string, len(result.Columns))
	for i, c := range result.Columns {
		headers[i] = c.Label
	}
	if err := writer.Write(headers); err != nil {
		return nil, err
	}

	for _, rec := range result.Rows {
		row := make([]string, len(result.Columns))
		for i, c := range result.Columns {
			row[i] = cellText(c, rec[c.Label])
		}
		if err := writer.Write(row); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderExcel(result *execution.ExecutionResult) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Report"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	moneyStyle, _ := f.NewStyle(&excelize.Style{NumFmt: 4})

	for i, col := range result.Columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, col.Label)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for rowIdx, rec := range result.Rows {
		for colIdx, col := range result.Columns {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			switch v := rec[col.Label].(type) {
			case nil:
			case decimal.Decimal:
				f.SetCellValue(sheetName, cell, v.InexactFloat64())
				f.SetCellStyle(sheetName, cell, cell, moneyStyle)
			case time.Time:
				f.SetCellValue(sheetName, cell, cellText(col, v))
			default:
				f.SetCellValue(sheetName, cell, v)
			}
		}
	}

	for i := range result.Columns {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, col, col, 18)
	}

	buffer, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

func renderPDF(result *execution.ExecutionResult, title string) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, tr(title), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated %s, %d of %d rows", result.GeneratedAt.UTC().Format("2006-01-02 15:04 MST"), len(result.Rows), result.TotalCount), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	if len(result.Columns) == 0 {
		return outputPDF(pdf)
	}

	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	width := (pageW - left - right) / float64(len(result.Columns))

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(224, 224, 224)
	for _, col := range result.Columns {
		pdf.CellFormat(width, 7, tr(col.Label), "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 8)
	for _, rec := range result.Rows {
		for _, col := range result.Columns {
			align := "L"
			if col.Type == catalog.ColumnCurrency || col.Type == catalog.ColumnNumber {
				align = "R"
			}
			pdf.CellFormat(width, 6, tr(cellText(col, rec[col.Label])), "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}
	return outputPDF(pdf)
}

func outputPDF(pdf *gofpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
