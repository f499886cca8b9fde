package calc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateProcessLoss(t *testing.T) {
	tests := []struct {
		name       string
		issued     float64
		received   float64
		wantLoss   float64
		wantPct    float64
		wantWithin bool
		wantWarn   bool
	}{
		{"typical knitting shrinkage", 100, 92, 8, 8, true, false},
		{"high loss", 100, 85, 15, 15, false, false},
		{"exactly at tolerance", 50, 45, 5, 10, true, false},
		{"rounds to two decimals", 3, 2, 1, 33.33, false, false},
		{"nothing returned", 40, 0, 40, 100, false, false},
		{"full return", 12.5, 12.5, 0, 0, true, false},
		{"over receipt", 100, 110, 0, 0, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CalculateProcessLoss(tt.issued, tt.received, "kg")
			require.NoError(t, err)
			assert.InDelta(t, tt.wantLoss, got.Loss, 1e-9)
			assert.Equal(t, tt.wantPct, got.LossPercentage)
			assert.Equal(t, tt.wantWithin, got.IsWithinTolerance)
			assert.Equal(t, "kg", got.Unit)
			if tt.wantWarn {
				assert.NotEmpty(t, got.Warning)
			} else {
				assert.Empty(t, got.Warning)
			}
		})
	}
}

func TestCalculateProcessLossRejectsInvalidInput(t *testing.T) {
	_, err := CalculateProcessLoss(0, 10, "kg")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = CalculateProcessLoss(-5, 0, "kg")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = CalculateProcessLoss(10, -1, "kg")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCalculateJobOrderProcessLoss(t *testing.T) {
	issued := []Line{{MaterialID: "yarn-1", MaterialType: "Yarn", Quantity: 100, Unit: "kg"}}

	report, err := CalculateJobOrderProcessLoss(issued, []Line{{MaterialID: "yarn-1", Quantity: 92, Unit: "kg"}})
	require.NoError(t, err)
	assert.Equal(t, 8.0, report.OverallLossPercentage)
	assert.False(t, report.FlagHighLoss)
	require.Len(t, report.MaterialWiseLoss, 1)
	assert.Equal(t, "Yarn", report.MaterialWiseLoss[0].MaterialType)

	report, err = CalculateJobOrderProcessLoss(issued, []Line{{MaterialID: "yarn-1", Quantity: 85, Unit: "kg"}})
	require.NoError(t, err)
	assert.Equal(t, 15.0, report.OverallLossPercentage)
	assert.True(t, report.FlagHighLoss)
}

func TestCalculateJobOrderProcessLossSkipsUnmatchedAndMixedUnits(t *testing.T) {
	issued := []Line{
		{MaterialID: "a", Quantity: 100, Unit: "kg"},
		{MaterialID: "b", Quantity: 200, Unit: "meters"},
		{MaterialID: "c", Quantity: 50, Unit: "kg"},
	}
	received := []Line{
		{MaterialID: "a", Quantity: 90, Unit: "kg"},
		{MaterialID: "b", Quantity: 150, Unit: "kg"},
	}

	report, err := CalculateJobOrderProcessLoss(issued, received)
	require.NoError(t, err)
	require.Len(t, report.MaterialWiseLoss, 1)
	assert.Equal(t, "a", report.MaterialWiseLoss[0].MaterialID)
	assert.Equal(t, 100.0, report.TotalIssued)
	assert.Equal(t, 90.0, report.TotalReceived)
	assert.Equal(t, 10.0, report.OverallLossPercentage)
	assert.False(t, report.FlagHighLoss)
}

// Only the first receipt of a material is reconciled. A second partial receipt of
// the same material is ignored, so the loss stays at the first receipt's figure.
func TestCalculateJobOrderProcessLossUsesFirstReceiptOnly(t *testing.T) {
	issued := []Line{{MaterialID: "a", Quantity: 100, Unit: "kg"}}
	received := []Line{
		{MaterialID: "a", Quantity: 60, Unit: "kg"},
		{MaterialID: "a", Quantity: 35, Unit: "kg"},
	}

	report, err := CalculateJobOrderProcessLoss(issued, received)
	require.NoError(t, err)
	assert.Equal(t, 60.0, report.TotalReceived)
	assert.Equal(t, 40.0, report.OverallLossPercentage)
	assert.True(t, report.FlagHighLoss)
}

func TestCalculateJobOrderProcessLossAggregateOverReceipt(t *testing.T) {
	issued := []Line{{MaterialID: "a", Quantity: 100, Unit: "kg"}}
	received := []Line{{MaterialID: "a", Quantity: 105, Unit: "kg"}}

	report, err := CalculateJobOrderProcessLoss(issued, received)
	require.NoError(t, err)
	assert.Equal(t, -5.0, report.OverallLossPercentage)
	assert.False(t, report.FlagHighLoss)
	assert.Equal(t, 0.0, report.MaterialWiseLoss[0].LossPercentage)
	assert.NotEmpty(t, report.MaterialWiseLoss[0].Warning)
}

func TestCalculateJobOrderProcessLossNothingReceived(t *testing.T) {
	report, err := CalculateJobOrderProcessLoss([]Line{{MaterialID: "a", Quantity: 10, Unit: "kg"}}, nil)
	require.NoError(t, err)
	assert.Empty(t, report.MaterialWiseLoss)
	assert.Zero(t, report.OverallLossPercentage)
	assert.False(t, report.FlagHighLoss)
}

func TestCalculateGST(t *testing.T) {
	intra, err := CalculateGST(10000, DefaultTaxRate, Intrastate)
	require.NoError(t, err)
	assert.Equal(t, GSTBreakdown{
		ServiceValue: 10000, TaxRate: 5, GSTType: Intrastate,
		CGST: 250, SGST: 250, IGST: 0, TotalTax: 500, TotalAmount: 10500,
	}, intra)

	inter, err := CalculateGST(10000, DefaultTaxRate, Interstate)
	require.NoError(t, err)
	assert.Equal(t, 0.0, inter.CGST)
	assert.Equal(t, 0.0, inter.SGST)
	assert.Equal(t, 500.0, inter.IGST)
	assert.Equal(t, 10500.0, inter.TotalAmount)

	odd, err := CalculateGST(1234.56, 12, Intrastate)
	require.NoError(t, err)
	assert.Equal(t, 148.15, odd.TotalTax)
	assert.Equal(t, 74.07, odd.CGST)
	assert.Equal(t, 1382.71, odd.TotalAmount)
}

func TestCalculateGSTIsPure(t *testing.T) {
	a, errA := CalculateGST(777.77, 5, Interstate)
	b, errB := CalculateGST(777.77, 5, Interstate)
	require.NoError(t, errA)
	require.NoError(t, errB)
	assert.Equal(t, a, b)
}

func TestCalculateGSTRejectsNegativeValue(t *testing.T) {
	_, err := CalculateGST(-1, 5, Intrastate)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDetermineGSTType(t *testing.T) {
	assert.Equal(t, Intrastate, DetermineGSTType("Tamil Nadu", "Tamil Nadu"))
	assert.Equal(t, Interstate, DetermineGSTType("Karnataka", "Tamil Nadu"))
	assert.Equal(t, Interstate, DetermineGSTType("tamil nadu", "Tamil Nadu"))
	assert.Equal(t, Interstate, DetermineGSTType("Tamil Nadu ", "Tamil Nadu"))
}
