package document

import (
	"strings"
	"testing"
	"time"

	"github.com/Sudarsan9786/nool-erp/internal/jobwork/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleOrder() *entity.JobOrder {
	due := time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)
	value := 10000.0
	return &entity.JobOrder{
		ID:             "jo-1",
		JobOrderNumber: "JO-202401-0001",
		VendorID:       "v-1",
		Vendor: &entity.Vendor{
			ID: "v-1", Name: "ABC Dyeing Works", ContactPerson: "Rajesh Kumar", Phone: "9876543210",
			Address: entity.Address{City: "Tiruppur", State: "Tamil Nadu"},
		},
		JobWorkType: entity.JobWorkDyeing,
		Status:      entity.StatusSent,
		MaterialsIssued: []entity.JobOrderIssuedMaterial{
			{MaterialID: "m-1", MaterialType: entity.MaterialTypeYarn, Quantity: 100, Unit: entity.UnitKg},
			{MaterialID: "m-2", MaterialType: entity.MaterialTypeYarn, Quantity: 50, Unit: entity.UnitKg},
		},
		ExpectedCompletionDate: &due,
		ServiceValue:           &value,
		GSTDetails: &entity.GSTDetails{
			ServiceValue: 10000, GSTType: entity.GSTIntrastate, TaxRate: 5,
			CGST: 250, SGST: 250, TotalTax: 500, TotalAmount: 10500,
		},
		ChallanNumber: "CH-JO-202401-0001",
		ChallanDate:   time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
	}
}

func TestJobOrderQR(t *testing.T) {
	png, err := JobOrderQR("JO-202401-0001", "v-1")
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG"), png[:4])

	url := DataURL(png)
	assert.True(t, strings.HasPrefix(url, "data:image/png;base64,"))
	back, err := DecodeDataURL(url)
	require.NoError(t, err)
	assert.Equal(t, png, back)

	_, err = DecodeDataURL("data:text/plain;base64,AA==")
	assert.Error(t, err)
}

func TestChallan(t *testing.T) {
	f, err := Challan(sampleOrder(), Company{Name: "Nool Textiles", State: "Tamil Nadu", GSTIN: "33AAAAA0000A1Z5"})
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(challanSheet)
	require.NoError(t, err)
	flat := make([]string, 0)
	for _, r := range rows {
		flat = append(flat, strings.Join(r, "|"))
	}
	text := strings.Join(flat, "\n")
	assert.Contains(t, text, "Challan No|CH-JO-202401-0001")
	assert.Contains(t, text, "Vendor|ABC Dyeing Works")
	assert.Contains(t, text, "Expected Completion|10/02/2024")
	assert.Contains(t, text, "CGST|250")
	assert.Contains(t, text, "Total Amount|10500")
	assert.NotContains(t, text, "IGST")

	pics, err := f.GetPictures(challanSheet, "D3")
	require.NoError(t, err)
	assert.Len(t, pics, 1)
}

func TestChallanRequiresVendor(t *testing.T) {
	o := sampleOrder()
	o.Vendor = nil
	_, err := Challan(o, Company{})
	assert.Error(t, err)
}

func TestJobOrdersExport(t *testing.T) {
	o := sampleOrder()
	o.MaterialsReceived = []entity.JobOrderReceivedMaterial{
		{MaterialID: "m-1", Quantity: 92, Unit: entity.UnitKg},
	}
	o.ProcessLoss = entity.ProcessLoss{Percentage: 38.67, Calculated: true}

	f, err := JobOrders([]entity.JobOrder{*o})
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(exportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, exportHeaders, rows[0])
	assert.Equal(t, "JO-202401-0001", rows[1][0])
	assert.Equal(t, "ABC Dyeing Works", rows[1][1])
	assert.Equal(t, "150 kg", rows[1][4])
	assert.Equal(t, "92 kg", rows[1][5])
	assert.Equal(t, "38.67", rows[1][6])
	assert.Equal(t, "2024-02-10", rows[1][9])
	assert.Equal(t, "", rows[1][10])
}

func TestSumByUnit(t *testing.T) {
	assert.Equal(t, "", sumByUnit(nil))
	assert.Equal(t, "10 kg; 2.5 meters", sumByUnit([]line{{5, "kg"}, {2.5, "meters"}, {5, "kg"}}))
}
