package repository

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrStockConflict means a conditional stock update matched no row: the material
	// left the warehouse or ran short after it was checked.
	ErrStockConflict = errors.New("stock changed concurrently")
)

// Repositories job-work repository set
type Repositories struct {
	Vendor   *VendorRepository
	Material *MaterialRepository
	JobOrder *JobOrderRepository
	User     *UserRepository
}

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Vendor:   NewVendorRepository(db),
		Material: NewMaterialRepository(db),
		JobOrder: NewJobOrderRepository(db),
		User:     NewUserRepository(db),
	}
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func paginate(page, size int) (offset, limit int) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	if size > 100 {
		size = 100
	}
	return (page - 1) * size, size
}
