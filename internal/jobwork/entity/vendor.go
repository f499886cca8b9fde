package entity

import (
	"slices"
	"time"
)

// Address is stored inline on the vendor row.
type Address struct {
	Street  string `json:"street" gorm:"size:200"`
	City    string `json:"city" gorm:"size:100"`
	State   string `json:"state" gorm:"size:100"`
	Pincode string `json:"pincode" gorm:"size:10"`
	Country string `json:"country" gorm:"size:100"`
}

type BankDetails struct {
	AccountNumber string `json:"account_number" gorm:"size:30"`
	IFSCCode      string `json:"ifsc_code" gorm:"size:20"`
	BankName      string `json:"bank_name" gorm:"size:100"`
	Branch        string `json:"branch" gorm:"size:100"`
}

// Vendor is an external job-work unit that receives materials for processing.
type Vendor struct {
	ID             string      `json:"id" gorm:"primaryKey;size:36"`
	Name           string      `json:"name" gorm:"size:100;not null;index"`
	ContactPerson  string      `json:"contact_person" gorm:"size:100;not null"`
	Email          string      `json:"email" gorm:"size:100"`
	Phone          string      `json:"phone" gorm:"size:20;not null"`
	WhatsAppNumber string      `json:"whatsapp_number" gorm:"size:20"`
	TelegramChatID int64       `json:"telegram_chat_id,omitempty"`
	Address        Address     `json:"address" gorm:"embedded;embeddedPrefix:address_"`
	JobWorkTypes   StringList  `json:"job_work_types" gorm:"type:text;not null"`
	GSTIN          string      `json:"gstin" gorm:"size:15"`
	PAN            string      `json:"pan" gorm:"size:10"`
	BankDetails    BankDetails `json:"bank_details" gorm:"embedded;embeddedPrefix:bank_"`
	IsActive       bool        `json:"is_active" gorm:"not null"`
	Rating         float64     `json:"rating"`
	CreatedBy      string      `json:"created_by,omitempty" gorm:"size:36"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

func (Vendor) TableName() string {
	return "jw_vendors"
}

// SupportsJobWork reports whether the vendor declared the given job work type.
func (v *Vendor) SupportsJobWork(jobWorkType string) bool {
	return slices.Contains(v.JobWorkTypes, jobWorkType)
}

// NotifyNumber prefers the WhatsApp number and falls back to the phone.
func (v *Vendor) NotifyNumber() string {
	if v.WhatsAppNumber != "" {
		return v.WhatsAppNumber
	}
	return v.Phone
}
