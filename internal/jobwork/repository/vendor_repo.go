package repository

import (
	"context"
	"strings"

	"github.com/Sudarsan9786/nool-erp/internal/jobwork/entity"
	"gorm.io/gorm"
)

type VendorRepository struct {
	db *gorm.DB
}

func NewVendorRepository(db *gorm.DB) *VendorRepository {
	return &VendorRepository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *VendorRepository) WithTx(tx *gorm.DB) *VendorRepository {
	return &VendorRepository{db: tx}
}

type VendorListParams struct {
	JobWorkType string
	Active      *bool
	Search      string
	Page        int
	Size        int
}

func (r *VendorRepository) List(ctx context.Context, params VendorListParams) ([]entity.Vendor, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.Vendor{})
	if params.JobWorkType != "" {
		query = query.Where("job_work_types LIKE ?", `%"`+params.JobWorkType+`"%`)
	}
	if params.Active != nil {
		query = query.Where("is_active = ?", *params.Active)
	}
	if params.Search != "" {
		kw := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(contact_person) LIKE ? OR LOWER(email) LIKE ? OR phone LIKE ?", kw, kw, kw, kw)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset, limit := paginate(params.Page, params.Size)
	var vendors []entity.Vendor
	err := query.Order("name ASC").Offset(offset).Limit(limit).Find(&vendors).Error
	return vendors, total, err
}

func (r *VendorRepository) FindByID(ctx context.Context, id string) (*entity.Vendor, error) {
	var v entity.Vendor
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&v).Error; err != nil {
		return nil, translate(err)
	}
	return &v, nil
}

func (r *VendorRepository) FindByName(ctx context.Context, name string) (*entity.Vendor, error) {
	var v entity.Vendor
	if err := r.db.WithContext(ctx).Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name))).First(&v).Error; err != nil {
		return nil, translate(err)
	}
	return &v, nil
}

// FindDuplicate returns a vendor sharing the name (case-insensitive) or phone, ignoring excludeID.
func (r *VendorRepository) FindDuplicate(ctx context.Context, name, phone, excludeID string) (*entity.Vendor, error) {
	query := r.db.WithContext(ctx).
		Where("LOWER(name) = ? OR phone = ?", strings.ToLower(strings.TrimSpace(name)), phone)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}
	var v entity.Vendor
	if err := query.First(&v).Error; err != nil {
		return nil, translate(err)
	}
	return &v, nil
}

func (r *VendorRepository) Create(ctx context.Context, v *entity.Vendor) error {
	return r.db.WithContext(ctx).Create(v).Error
}

func (r *VendorRepository) CreateBatch(ctx context.Context, vendors []entity.Vendor) error {
	return r.db.WithContext(ctx).Create(&vendors).Error
}

func (r *VendorRepository) Update(ctx context.Context, v *entity.Vendor) error {
	return r.db.WithContext(ctx).Save(v).Error
}

func (r *VendorRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Vendor{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *VendorRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&entity.Vendor{}).Count(&n).Error
	return n, err
}
