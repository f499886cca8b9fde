package repository

import (
	"context"
	"strings"

	"github.com/Sudarsan9786/nool-erp/internal/jobwork/entity"
	"gorm.io/gorm"
)

type MaterialRepository struct {
	db *gorm.DB
}

func NewMaterialRepository(db *gorm.DB) *MaterialRepository {
	return &MaterialRepository{db: db}
}

func (r *MaterialRepository) WithTx(tx *gorm.DB) *MaterialRepository {
	return &MaterialRepository{db: tx}
}

type MaterialListParams struct {
	MaterialType string
	Location     string
	VendorID     string
	Search       string
	Page         int
	Size         int
}

func (r *MaterialRepository) List(ctx context.Context, params MaterialListParams) ([]entity.Material, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.Material{})
	if params.MaterialType != "" {
		query = query.Where("material_type = ?", params.MaterialType)
	}
	if params.Location != "" {
		query = query.Where("current_location = ?", params.Location)
	}
	if params.VendorID != "" {
		query = query.Where("vendor_id = ?", params.VendorID)
	}
	if params.Search != "" {
		kw := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(batch_number) LIKE ?", kw, kw, kw)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset, limit := paginate(params.Page, params.Size)
	var items []entity.Material
	err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&items).Error
	return items, total, err
}

func (r *MaterialRepository) FindByID(ctx context.Context, id string) (*entity.Material, error) {
	var m entity.Material
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

func (r *MaterialRepository) Create(ctx context.Context, m *entity.Material) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *MaterialRepository) CreateBatch(ctx context.Context, items []entity.Material) error {
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *MaterialRepository) Update(ctx context.Context, m *entity.Material) error {
	return r.db.WithContext(ctx).Save(m).Error
}

func (r *MaterialRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Material{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MaterialRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&entity.Material{}).Count(&n).Error
	return n, err
}

// IssueToVendor decrements the warehouse quantity and hands the material to the vendor
// in a single conditional UPDATE. It returns ErrStockConflict when the material is no
// longer in the warehouse or holds less than qty.
func (r *MaterialRepository) IssueToVendor(ctx context.Context, id string, qty float64, vendorID, jobOrderID string) error {
	res := r.db.WithContext(ctx).Model(&entity.Material{}).
		Where("id = ? AND current_location = ? AND quantity >= ?", id, entity.LocationWarehouse, qty).
		Updates(map[string]interface{}{
			"quantity":         gorm.Expr("quantity - ?", qty),
			"current_location": entity.LocationVendor,
			"vendor_id":        vendorID,
			"job_order_id":     jobOrderID,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStockConflict
	}
	return nil
}

// ReturnToWarehouse relocates the material and clears the vendor link. Quantity is untouched.
func (r *MaterialRepository) ReturnToWarehouse(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Model(&entity.Material{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"current_location": entity.LocationWarehouse,
			"vendor_id":        nil,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SummaryRow is one material type / location bucket.
type SummaryRow struct {
	MaterialType    string
	CurrentLocation string
	TotalQuantity   float64
	Count           int64
}

func (r *MaterialRepository) Summary(ctx context.Context) ([]SummaryRow, error) {
	var rows []SummaryRow
	err := r.db.WithContext(ctx).Model(&entity.Material{}).
		Select("material_type, current_location, COALESCE(SUM(quantity), 0) AS total_quantity, COUNT(*) AS count").
		Group("material_type, current_location").
		Order("material_type, current_location").
		Scan(&rows).Error
	return rows, err
}
