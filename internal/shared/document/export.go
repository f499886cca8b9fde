package document

import (
	"fmt"
	"time"

	"github.com/Sudarsan9786/nool-erp/internal/jobwork/entity"
	"github.com/xuri/excelize/v2"
)

const exportSheet = "Job Orders"

var exportHeaders = []string{
	"Job Order No", "Vendor", "Job Work Type", "Status", "Issued", "Received",
	"Process Loss %", "Challan No", "Challan Date", "Expected Completion",
	"Actual Completion", "Service Value", "Total Amount",
}

// JobOrders writes one row per order. Issued and received quantities are
// summed per unit, e.g. "100 kg; 20 meters".
func JobOrders(orders []entity.JobOrder) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, err
	}

	boldStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
	})
	for i, h := range exportHeaders {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := fmt.Sprintf("%s1", col)
		f.SetCellValue(exportSheet, cell, h)
		f.SetCellStyle(exportSheet, cell, cell, boldStyle)
	}

	for i, o := range orders {
		row := i + 2
		vendor := o.VendorID
		if o.Vendor != nil {
			vendor = o.Vendor.Name
		}
		issued := make([]line, 0, len(o.MaterialsIssued))
		for _, m := range o.MaterialsIssued {
			issued = append(issued, line{m.Quantity, m.Unit})
		}
		received := make([]line, 0, len(o.MaterialsReceived))
		for _, m := range o.MaterialsReceived {
			received = append(received, line{m.Quantity, m.Unit})
		}

		values := []interface{}{
			o.JobOrderNumber, vendor, o.JobWorkType, o.Status,
			sumByUnit(issued), sumByUnit(received),
			nil, o.ChallanNumber, o.ChallanDate.Format("2006-01-02"),
			dateOrEmpty(o.ExpectedCompletionDate), dateOrEmpty(o.ActualCompletionDate),
			nil, nil,
		}
		if o.ProcessLoss.Calculated {
			values[6] = o.ProcessLoss.Percentage
		}
		if o.ServiceValue != nil {
			values[11] = *o.ServiceValue
		}
		if o.GSTDetails != nil {
			values[12] = o.GSTDetails.TotalAmount
		}
		for j, v := range values {
			if v == nil {
				continue
			}
			col, _ := excelize.ColumnNumberToName(j + 1)
			f.SetCellValue(exportSheet, fmt.Sprintf("%s%d", col, row), v)
		}
	}

	widths := []float64{18, 28, 14, 18, 22, 22, 14, 22, 14, 18, 18, 14, 14}
	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(exportSheet, col, col, w)
	}
	return f, nil
}

type line struct {
	qty  float64
	unit string
}

func sumByUnit(lines []line) string {
	var order []string
	totals := map[string]float64{}
	for _, l := range lines {
		if _, ok := totals[l.unit]; !ok {
			order = append(order, l.unit)
		}
		totals[l.unit] += l.qty
	}
	out := ""
	for i, u := range order {
		if i > 0 {
			out += "; "
		}
		out += fmt.Sprintf("%g %s", totals[u], u)
	}
	return out
}

func dateOrEmpty(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
