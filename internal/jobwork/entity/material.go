package entity

import "time"

// Material is a stock item. Issuing it to a vendor moves it off the warehouse floor.
type Material struct {
	ID              string    `json:"id" gorm:"primaryKey;size:36"`
	MaterialType    string    `json:"material_type" gorm:"size:30;not null;index"`
	Name            string    `json:"name" gorm:"size:200;not null"`
	Description     string    `json:"description" gorm:"type:text"`
	Unit            string    `json:"unit" gorm:"size:10;not null"`
	CurrentLocation string    `json:"current_location" gorm:"size:30;not null;index"`
	VendorID        *string   `json:"vendor_id" gorm:"size:36;index"`
	JobOrderID      *string   `json:"job_order_id" gorm:"size:36;index"`
	Quantity        float64   `json:"quantity" gorm:"not null"`
	BatchNumber     string    `json:"batch_number" gorm:"size:50"`
	Color           string    `json:"color" gorm:"size:50"`
	GSM             float64   `json:"gsm"`
	Quality         string    `json:"quality" gorm:"size:50"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (Material) TableName() string {
	return "jw_materials"
}

// InWarehouse reports whether the material can be issued.
func (m *Material) InWarehouse() bool {
	return m.CurrentLocation == LocationWarehouse
}
