package repository

import (
	"context"
	"time"

	"github.com/Sudarsan9786/nool-erp/internal/jobwork/entity"
	"gorm.io/gorm"
)

type JobOrderRepository struct {
	db *gorm.DB
}

func NewJobOrderRepository(db *gorm.DB) *JobOrderRepository {
	return &JobOrderRepository{db: db}
}

func (r *JobOrderRepository) WithTx(tx *gorm.DB) *JobOrderRepository {
	return &JobOrderRepository{db: tx}
}

type JobOrderListParams struct {
	Status      string
	VendorID    string
	JobWorkType string
	Page        int
	Size        int
}

func (r *JobOrderRepository) withLines(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Vendor").
		Preload("MaterialsIssued", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Preload("MaterialsReceived", func(db *gorm.DB) *gorm.DB {
			return db.Order("receipt_no ASC, sort_order ASC")
		})
}

func (r *JobOrderRepository) filtered(ctx context.Context, params JobOrderListParams) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&entity.JobOrder{})
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	if params.VendorID != "" {
		query = query.Where("vendor_id = ?", params.VendorID)
	}
	if params.JobWorkType != "" {
		query = query.Where("job_work_type = ?", params.JobWorkType)
	}
	return query
}

func (r *JobOrderRepository) List(ctx context.Context, params JobOrderListParams) ([]entity.JobOrder, int64, error) {
	query := r.filtered(ctx, params)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset, limit := paginate(params.Page, params.Size)
	var orders []entity.JobOrder
	err := r.withLines(query).Order("created_at DESC").Offset(offset).Limit(limit).Find(&orders).Error
	return orders, total, err
}

// ListAll returns every matching order, newest first, up to limit rows.
func (r *JobOrderRepository) ListAll(ctx context.Context, params JobOrderListParams, limit int) ([]entity.JobOrder, error) {
	var orders []entity.JobOrder
	err := r.withLines(r.filtered(ctx, params)).Order("created_at DESC").Limit(limit).Find(&orders).Error
	return orders, err
}

func (r *JobOrderRepository) FindByID(ctx context.Context, id string) (*entity.JobOrder, error) {
	var o entity.JobOrder
	if err := r.withLines(r.db.WithContext(ctx)).Where("id = ?", id).First(&o).Error; err != nil {
		return nil, translate(err)
	}
	return &o, nil
}

// Create persists the order together with its issued lines.
func (r *JobOrderRepository) Create(ctx context.Context, o *entity.JobOrder) error {
	return r.db.WithContext(ctx).Omit("Vendor", "MaterialsReceived").Create(o).Error
}

func (r *JobOrderRepository) AppendReceipts(ctx context.Context, lines []entity.JobOrderReceivedMaterial) error {
	if len(lines) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&lines).Error
}

// SaveProgress stores the derived fields recomputed after a receipt along
// with the order's UpdatedAt.
func (r *JobOrderRepository) SaveProgress(ctx context.Context, o *entity.JobOrder) error {
	return r.db.WithContext(ctx).Model(&entity.JobOrder{}).
		Where("id = ?", o.ID).
		Updates(map[string]interface{}{
			"status":                  o.Status,
			"process_loss_percentage": o.ProcessLoss.Percentage,
			"process_loss_calculated": o.ProcessLoss.Calculated,
			"actual_completion_date":  o.ActualCompletionDate,
			"updated_at":              o.UpdatedAt,
		}).Error
}

// UpdateStatus sets the status and, when given, the actual completion date.
func (r *JobOrderRepository) UpdateStatus(ctx context.Context, id, status string, completedAt *time.Time, now time.Time) error {
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": now,
	}
	if completedAt != nil {
		updates["actual_completion_date"] = completedAt
	}
	res := r.db.WithContext(ctx).Model(&entity.JobOrder{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountByStatus returns the number of orders per status, optionally for one vendor.
func (r *JobOrderRepository) CountByStatus(ctx context.Context, vendorID string) (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	query := r.db.WithContext(ctx).Model(&entity.JobOrder{}).Select("status, COUNT(*) AS count")
	if vendorID != "" {
		query = query.Where("vendor_id = ?", vendorID)
	}
	if err := query.Group("status").Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(entity.JobOrderStatuses))
	for _, s := range entity.JobOrderStatuses {
		out[s] = 0
	}
	for _, row := range rows {
		out[row.Status] = row.Count
	}
	return out, nil
}

func (r *JobOrderRepository) CountByVendor(ctx context.Context, vendorID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&entity.JobOrder{}).Where("vendor_id = ?", vendorID).Count(&n).Error
	return n, err
}
