package interfaces

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	inventory "bladeops/internal/inventory/domain"
	procurement "bladeops/internal/procurement/domain"
)

// BuildOrderManifestPDF renders a delivery manifest for a purchase order.
func BuildOrderManifestPDF(order *procurement.PurchaseOrder, bladeType *inventory.BladeType, blades []inventory.Blade) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Purchase Order Manifest")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("PO Number: %s", order.PONumber))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Supplier: %s", order.SupplierName))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Blade Type: %s (%s)", bladeType.Code, bladeType.MachineName))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Quantity: %d", order.Quantity))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Serial Range: %s - %s", order.SerialNumberStart, order.SerialNumberEnd))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Status: %s", order.Status))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Ordered: %s", order.OrderDate.Format("2006-01-02")))
	pdf.Ln(5)
	if order.ExpectedDeliveryDate != nil {
		pdf.Cell(0, 6, fmt.Sprintf("Expected Delivery: %s", order.ExpectedDeliveryDate.Format("2006-01-02")))
		pdf.Ln(5)
	}
	if order.UnitCost.Valid {
		pdf.Cell(0, 6, fmt.Sprintf("Unit Cost: %s", order.UnitCost.Decimal.StringFixed(2)))
		pdf.Ln(5)
	}
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", time.Now().UTC().Format(time.RFC3339)))
	pdf.Ln(8)

	// Blade table
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(60, 6, "Serial Number", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Status", "1", 0, "C", false, 0, "")
	pdf.CellFormat(60, 6, "Machine", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, blade := range blades {
		pdf.CellFormat(60, 6, blade.SerialNumber, "1", 0, "C", false, 0, "")
		pdf.CellFormat(40, 6, string(blade.Status), "1", 0, "C", false, 0, "")
		pdf.CellFormat(60, 6, blade.DefaultMachine, "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildBladeRegisterXLSX renders a blade register workbook for a purchase order.
func BuildBladeRegisterXLSX(order *procurement.PurchaseOrder, bladeType *inventory.BladeType, blades []inventory.Blade) ([]byte, error) {
	f := excelize.NewFile()
	summarySheet := "summary"
	bladesSheet := "blades"
	f.SetSheetName("Sheet1", summarySheet)
	f.NewSheet(bladesSheet)

	_ = f.SetCellValue(summarySheet, "A1", "Purchase Order Manifest")
	_ = f.SetCellValue(summarySheet, "A3", "PO Number")
	_ = f.SetCellValue(summarySheet, "B3", order.PONumber)
	_ = f.SetCellValue(summarySheet, "A4", "Supplier")
	_ = f.SetCellValue(summarySheet, "B4", order.SupplierName)
	_ = f.SetCellValue(summarySheet, "A5", "Blade Type")
	_ = f.SetCellValue(summarySheet, "B5", bladeType.Code)
	_ = f.SetCellValue(summarySheet, "A6", "Machine")
	_ = f.SetCellValue(summarySheet, "B6", bladeType.MachineName)
	_ = f.SetCellValue(summarySheet, "A7", "Quantity")
	_ = f.SetCellValue(summarySheet, "B7", order.Quantity)
	_ = f.SetCellValue(summarySheet, "A8", "Serial Start")
	_ = f.SetCellValue(summarySheet, "B8", order.SerialNumberStart)
	_ = f.SetCellValue(summarySheet, "A9", "Serial End")
	_ = f.SetCellValue(summarySheet, "B9", order.SerialNumberEnd)
	_ = f.SetCellValue(summarySheet, "A10", "Status")
	_ = f.SetCellValue(summarySheet, "B10", string(order.Status))
	if order.UnitCost.Valid {
		_ = f.SetCellValue(summarySheet, "A11", "Unit Cost")
		_ = f.SetCellValue(summarySheet, "B11", order.UnitCost.Decimal.InexactFloat64())
	}

	_ = f.SetCellValue(bladesSheet, "A1", "Serial Number")
	_ = f.SetCellValue(bladesSheet, "B1", "Status")
	_ = f.SetCellValue(bladesSheet, "C1", "Machine")
	_ = f.SetCellValue(bladesSheet, "D1", "Created")
	for i, blade := range blades {
		row := i + 2
		_ = f.SetCellValue(bladesSheet, fmt.Sprintf("A%d", row), blade.SerialNumber)
		_ = f.SetCellValue(bladesSheet, fmt.Sprintf("B%d", row), string(blade.Status))
		_ = f.SetCellValue(bladesSheet, fmt.Sprintf("C%d", row), blade.DefaultMachine)
		_ = f.SetCellValue(bladesSheet, fmt.Sprintf("D%d", row), blade.CreatedAt.Format("2006-01-02"))
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
