package entity

import "time"

// Roles
const (
	RoleAdmin      = "Admin"
	RoleSupervisor = "Supervisor"
	RoleVendor     = "Vendor"
)

var Roles = []string{RoleAdmin, RoleSupervisor, RoleVendor}

// User is an application account. Vendor users are linked to exactly one vendor.
type User struct {
	ID           string     `json:"id" gorm:"primaryKey;size:36"`
	Name         string     `json:"name" gorm:"size:100;not null"`
	Email        string     `json:"email" gorm:"size:100;not null;uniqueIndex"`
	PasswordHash string     `json:"-" gorm:"size:100;not null"`
	Role         string     `json:"role" gorm:"size:20;not null"`
	Phone        string     `json:"phone" gorm:"size:20"`
	VendorID     *string    `json:"vendor_id" gorm:"size:36;index"`
	Vendor       *Vendor    `json:"vendor,omitempty" gorm:"foreignKey:VendorID"`
	IsActive     bool       `json:"is_active" gorm:"not null"`
	LastLoginAt  *time.Time `json:"last_login_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (User) TableName() string {
	return "jw_users"
}

// Counter backs the database order number sequence.
type Counter struct {
	Name  string `gorm:"primaryKey;size:50"`
	Value int64  `gorm:"not null"`
}

func (Counter) TableName() string {
	return "jw_counters"
}
