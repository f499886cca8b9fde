package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Job order status
const (
	StatusSent              = "Sent"
	StatusInProcess         = "In-Process"
	StatusPartiallyReturned = "Partially Returned"
	StatusCompleted         = "Completed"
)

var JobOrderStatuses = []string{StatusSent, StatusInProcess, StatusPartiallyReturned, StatusCompleted}

// GST types
const (
	GSTIntrastate = "intrastate"
	GSTInterstate = "interstate"
)

// GSTDetails is the tax breakdown attached to an order with a service value.
type GSTDetails struct {
	ServiceValue float64 `json:"service_value"`
	GSTType      string  `json:"gst_type"`
	TaxRate      float64 `json:"tax_rate"`
	CGST         float64 `json:"cgst"`
	SGST         float64 `json:"sgst"`
	IGST         float64 `json:"igst"`
	TotalTax     float64 `json:"total_tax"`
	TotalAmount  float64 `json:"total_amount"`
}

func (g GSTDetails) Value() (driver.Value, error) {
	b, err := json.Marshal(g)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (g *GSTDetails) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, g)
	case string:
		return json.Unmarshal([]byte(v), g)
	default:
		return fmt.Errorf("failed to scan GSTDetails: %v", value)
	}
}

// ProcessLoss is the aggregate loss over the whole issued/received history.
type ProcessLoss struct {
	Percentage float64 `json:"percentage"`
	Calculated bool    `json:"calculated"`
}

// JobOrder tracks materials sent to a vendor for one kind of job work.
type JobOrder struct {
	ID                     string                     `json:"id" gorm:"primaryKey;size:36"`
	JobOrderNumber         string                     `json:"job_order_number" gorm:"size:30;not null;uniqueIndex"`
	VendorID               string                     `json:"vendor_id" gorm:"size:36;not null;index"`
	Vendor                 *Vendor                    `json:"vendor,omitempty" gorm:"foreignKey:VendorID"`
	JobWorkType            string                     `json:"job_work_type" gorm:"size:20;not null;index"`
	MaterialsIssued        []JobOrderIssuedMaterial   `json:"materials_issued" gorm:"foreignKey:JobOrderID"`
	MaterialsReceived      []JobOrderReceivedMaterial `json:"materials_received" gorm:"foreignKey:JobOrderID"`
	Status                 string                     `json:"status" gorm:"size:30;not null;index"`
	ProcessLoss            ProcessLoss                `json:"process_loss" gorm:"embedded;embeddedPrefix:process_loss_"`
	ExpectedCompletionDate *time.Time                 `json:"expected_completion_date"`
	ActualCompletionDate   *time.Time                 `json:"actual_completion_date"`
	ServiceValue           *float64                   `json:"service_value"`
	GSTDetails             *GSTDetails                `json:"gst_details" gorm:"type:text"`
	ChallanNumber          string                     `json:"challan_number" gorm:"size:40"`
	ChallanDate            time.Time                  `json:"challan_date"`
	QRCode                 string                     `json:"qr_code,omitempty" gorm:"type:text"`
	Notes                  string                     `json:"notes" gorm:"type:text"`
	CreatedBy              string                     `json:"created_by" gorm:"size:36"`
	CreatedAt              time.Time                  `json:"created_at"`
	UpdatedAt              time.Time                  `json:"updated_at"`
}

func (JobOrder) TableName() string {
	return "jw_job_orders"
}

// IsTerminal reports whether further receipts are refused.
func (o *JobOrder) IsTerminal() bool {
	return o.Status == StatusCompleted
}

// NextReceiptNo is the 1-based index of the next receipt event.
func (o *JobOrder) NextReceiptNo() int {
	max := 0
	for _, r := range o.MaterialsReceived {
		if r.ReceiptNo > max {
			max = r.ReceiptNo
		}
	}
	return max + 1
}

// JobOrderIssuedMaterial is a line of the issue snapshot taken at creation.
type JobOrderIssuedMaterial struct {
	ID           uint    `json:"-" gorm:"primaryKey"`
	JobOrderID   string  `json:"-" gorm:"size:36;not null;index"`
	SortOrder    int     `json:"-" gorm:"not null"`
	MaterialID   string  `json:"material_id" gorm:"size:36;not null"`
	MaterialType string  `json:"material_type" gorm:"size:30"`
	Quantity     float64 `json:"quantity" gorm:"not null"`
	Unit         string  `json:"unit" gorm:"size:10;not null"`
}

func (JobOrderIssuedMaterial) TableName() string {
	return "jw_job_order_issued_materials"
}

// JobOrderReceivedMaterial is an append-only receipt line.
type JobOrderReceivedMaterial struct {
	ID           uint      `json:"-" gorm:"primaryKey"`
	JobOrderID   string    `json:"-" gorm:"size:36;not null;index"`
	SortOrder    int       `json:"-" gorm:"not null"`
	ReceiptNo    int       `json:"receipt_no" gorm:"not null"`
	MaterialID   string    `json:"material_id" gorm:"size:36;not null"`
	MaterialType string    `json:"material_type" gorm:"size:30"`
	Quantity     float64   `json:"quantity" gorm:"not null"`
	Unit         string    `json:"unit" gorm:"size:10;not null"`
	ReceivedAt   time.Time `json:"received_at"`
}

func (JobOrderReceivedMaterial) TableName() string {
	return "jw_job_order_received_materials"
}
