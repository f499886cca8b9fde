package document

import (
	"fmt"
	"strings"
	"time"

	"github.com/Sudarsan9786/nool-erp/internal/jobwork/entity"
	"github.com/xuri/excelize/v2"
)

// ContentTypeXLSX is the MIME type of generated workbooks.
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Company is the issuer printed on the challan.
type Company struct {
	Name  string
	State string
	GSTIN string
}

const challanSheet = "Challan"

// Challan builds the delivery challan for an order. The order must have its
// vendor and issued lines loaded.
func Challan(order *entity.JobOrder, company Company) (*excelize.File, error) {
	if order.Vendor == nil {
		return nil, fmt.Errorf("challan %s: vendor not loaded", order.ChallanNumber)
	}
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", challanSheet); err != nil {
		return nil, err
	}

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	boldStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
	})
	labelStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})

	f.MergeCell(challanSheet, "A1", "E1")
	f.SetCellValue(challanSheet, "A1", "DELIVERY CHALLAN (JOB WORK)")
	f.SetCellStyle(challanSheet, "A1", "E1", titleStyle)

	v := order.Vendor
	header := [][2]interface{}{
		{"From", company.Name},
		{"Company GSTIN", company.GSTIN},
		{"Challan No", order.ChallanNumber},
		{"Challan Date", order.ChallanDate.Format("02/01/2006")},
		{"Job Order No", order.JobOrderNumber},
		{"Job Work Type", order.JobWorkType},
		{"Vendor", v.Name},
		{"Contact", fmt.Sprintf("%s (%s)", v.ContactPerson, v.Phone)},
		{"Address", joinNonEmpty(v.Address.Street, v.Address.City, v.Address.State, v.Address.Pincode)},
		{"Vendor GSTIN", v.GSTIN},
		{"Expected Completion", formatDate(order.ExpectedCompletionDate)},
	}
	row := 3
	for _, kv := range header {
		f.SetCellValue(challanSheet, fmt.Sprintf("A%d", row), kv[0])
		f.SetCellStyle(challanSheet, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), labelStyle)
		f.SetCellValue(challanSheet, fmt.Sprintf("B%d", row), kv[1])
		row++
	}

	row++
	for i, h := range []string{"#", "Material ID", "Material Type", "Quantity", "Unit"} {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := fmt.Sprintf("%s%d", col, row)
		f.SetCellValue(challanSheet, cell, h)
		f.SetCellStyle(challanSheet, cell, cell, boldStyle)
	}
	for i, m := range order.MaterialsIssued {
		row++
		f.SetCellValue(challanSheet, fmt.Sprintf("A%d", row), i+1)
		f.SetCellValue(challanSheet, fmt.Sprintf("B%d", row), m.MaterialID)
		f.SetCellValue(challanSheet, fmt.Sprintf("C%d", row), m.MaterialType)
		f.SetCellValue(challanSheet, fmt.Sprintf("D%d", row), m.Quantity)
		f.SetCellValue(challanSheet, fmt.Sprintf("E%d", row), m.Unit)
	}

	if g := order.GSTDetails; g != nil {
		row += 2
		f.SetCellValue(challanSheet, fmt.Sprintf("A%d", row), "GST")
		f.SetCellStyle(challanSheet, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), labelStyle)
		lines := [][2]interface{}{
			{"Service Value", g.ServiceValue},
			{"GST Type", g.GSTType},
			{"Tax Rate (%)", g.TaxRate},
		}
		if g.GSTType == entity.GSTInterstate {
			lines = append(lines, [2]interface{}{"IGST", g.IGST})
		} else {
			lines = append(lines, [2]interface{}{"CGST", g.CGST}, [2]interface{}{"SGST", g.SGST})
		}
		lines = append(lines, [2]interface{}{"Total Tax", g.TotalTax}, [2]interface{}{"Total Amount", g.TotalAmount})
		for _, kv := range lines {
			row++
			f.SetCellValue(challanSheet, fmt.Sprintf("A%d", row), kv[0])
			f.SetCellValue(challanSheet, fmt.Sprintf("B%d", row), kv[1])
		}
	}

	if order.Notes != "" {
		row += 2
		f.SetCellValue(challanSheet, fmt.Sprintf("A%d", row), "Notes")
		f.SetCellStyle(challanSheet, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), labelStyle)
		f.SetCellValue(challanSheet, fmt.Sprintf("B%d", row), order.Notes)
	}

	png, err := qrImage(order)
	if err != nil {
		return nil, err
	}
	if err := f.AddPictureFromBytes(challanSheet, "D3", &excelize.Picture{
		Extension: ".png",
		File:      png,
		Format:    &excelize.GraphicOptions{ScaleX: 0.5, ScaleY: 0.5, AltText: order.JobOrderNumber},
	}); err != nil {
		return nil, fmt.Errorf("embed qr: %w", err)
	}

	for i, w := range []float64{22, 40, 18, 12, 10} {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(challanSheet, col, col, w)
	}
	return f, nil
}

// qrImage reuses the stored QR code and regenerates it for older orders.
func qrImage(order *entity.JobOrder) ([]byte, error) {
	if order.QRCode != "" {
		if png, err := DecodeDataURL(order.QRCode); err == nil {
			return png, nil
		}
	}
	return JobOrderQR(order.JobOrderNumber, order.VendorID)
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "Not specified"
	}
	return t.Format("02/01/2006")
}

func joinNonEmpty(parts ...string) string {
	out := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ", ")
}
