package calc

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DefaultTaxRate is the GST rate on job-work services when none is given.
const DefaultTaxRate = 5.0

const (
	Intrastate = "intrastate"
	Interstate = "interstate"
)

// GSTBreakdown is the tax split for one service value.
type GSTBreakdown struct {
	ServiceValue float64 `json:"service_value"`
	TaxRate      float64 `json:"tax_rate"`
	GSTType      string  `json:"gst_type"`
	CGST         float64 `json:"cgst"`
	SGST         float64 `json:"sgst"`
	IGST         float64 `json:"igst"`
	TotalTax     float64 `json:"total_tax"`
	TotalAmount  float64 `json:"total_amount"`
}

// DetermineGSTType compares states by exact string equality.
func DetermineGSTType(vendorState, companyState string) string {
	if vendorState == companyState {
		return Intrastate
	}
	return Interstate
}

// CalculateGST splits the tax into CGST+SGST for intrastate supply and IGST otherwise.
func CalculateGST(serviceValue, taxRate float64, gstType string) (GSTBreakdown, error) {
	if serviceValue < 0 {
		return GSTBreakdown{}, fmt.Errorf("%w: service value cannot be negative", ErrInvalidInput)
	}
	if taxRate < 0 {
		return GSTBreakdown{}, fmt.Errorf("%w: tax rate cannot be negative", ErrInvalidInput)
	}

	value := decimal.NewFromFloat(serviceValue)
	tax := value.Mul(decimal.NewFromFloat(taxRate)).Div(hundred)

	b := GSTBreakdown{
		ServiceValue: value.Round(2).InexactFloat64(),
		TaxRate:      decimal.NewFromFloat(taxRate).Round(2).InexactFloat64(),
		GSTType:      gstType,
		TotalTax:     tax.Round(2).InexactFloat64(),
		TotalAmount:  value.Add(tax).Round(2).InexactFloat64(),
	}
	if gstType == Intrastate {
		half := tax.Div(decimal.NewFromInt(2)).Round(2).InexactFloat64()
		b.CGST = half
		b.SGST = half
	} else {
		b.IGST = b.TotalTax
	}
	return b, nil
}
