package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Sudarsan9786/nool-erp/internal/jobwork/calc"
	"github.com/Sudarsan9786/nool-erp/internal/jobwork/entity"
	"github.com/Sudarsan9786/nool-erp/internal/jobwork/repository"
	"github.com/Sudarsan9786/nool-erp/internal/metrics"
	"github.com/Sudarsan9786/nool-erp/internal/shared/document"
	"github.com/Sudarsan9786/nool-erp/internal/shared/notify"
	"github.com/Sudarsan9786/nool-erp/internal/shared/sse"
	"github.com/Sudarsan9786/nool-erp/internal/shared/storage"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	jobOrderSequence = "job_order"
	exportLimit      = 5000
)

// JobOrderService runs the job order lifecycle: issue, receipt and status override.
type JobOrderService struct {
	db    *gorm.DB
	repos *repository.Repositories
	deps  Deps
}

func NewJobOrderService(db *gorm.DB, repos *repository.Repositories, deps Deps) *JobOrderService {
	return &JobOrderService{db: db, repos: repos, deps: deps}
}

// IssueLine requests a quantity of one warehouse material.
type IssueLine struct {
	MaterialID string  `json:"material_id" binding:"required"`
	Quantity   float64 `json:"quantity" binding:"gt=0"`
	Unit       string  `json:"unit" binding:"omitempty,oneof=kg meters pieces"`
}

type CreateJobOrderInput struct {
	VendorID               string      `json:"vendor_id" binding:"required"`
	JobWorkType            string      `json:"job_work_type" binding:"required,oneof=Knitting Dyeing Printing Stitching Finishing"`
	MaterialsIssued        []IssueLine `json:"materials_issued" binding:"required,min=1,unique=MaterialID,dive"`
	ExpectedCompletionDate *time.Time  `json:"expected_completion_date"`
	ServiceValue           *float64    `json:"service_value" binding:"omitempty,gte=0"`
	TaxRate                *float64    `json:"tax_rate" binding:"omitempty,gte=0"`
	Notes                  string      `json:"notes"`
}

// Create issues materials to a vendor. All preconditions are checked before
// anything is written; the order, its number and every stock decrement are
// committed together.
func (s *JobOrderService) Create(ctx context.Context, caller Caller, in CreateJobOrderInput) (*entity.JobOrder, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	vendor, err := s.repos.Vendor.FindByID(ctx, in.VendorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("Vendor not found")
		}
		return nil, err
	}
	if !vendor.SupportsJobWork(in.JobWorkType) {
		return nil, violation("Vendor %s does not support %s job work", vendor.Name, in.JobWorkType)
	}

	issued := make([]entity.JobOrderIssuedMaterial, 0, len(in.MaterialsIssued))
	for i, l := range in.MaterialsIssued {
		m, err := s.repos.Material.FindByID(ctx, l.MaterialID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, notFound("Material %s not found", l.MaterialID)
			}
			return nil, err
		}
		if !m.InWarehouse() {
			return nil, violation("Material %s is not available in warehouse", m.Name)
		}
		if m.Quantity < l.Quantity {
			return nil, violation("Insufficient quantity for %s. Available: %g %s, Requested: %g %s",
				m.Name, m.Quantity, m.Unit, l.Quantity, m.Unit)
		}
		if l.Unit != "" && l.Unit != m.Unit {
			return nil, invalid("Material %s is measured in %s, not %s", m.Name, m.Unit, l.Unit)
		}
		issued = append(issued, entity.JobOrderIssuedMaterial{
			SortOrder:    i,
			MaterialID:   m.ID,
			MaterialType: m.MaterialType,
			Quantity:     l.Quantity,
			Unit:         m.Unit,
		})
	}

	var gst *entity.GSTDetails
	if in.ServiceValue != nil {
		if gst, err = s.gstFor(vendor, *in.ServiceValue, in.TaxRate); err != nil {
			return nil, err
		}
	}

	now := s.deps.Now()
	order := &entity.JobOrder{
		ID:                     generateID(),
		VendorID:               vendor.ID,
		JobWorkType:            in.JobWorkType,
		MaterialsIssued:        issued,
		Status:                 entity.StatusSent,
		ExpectedCompletionDate: in.ExpectedCompletionDate,
		ServiceValue:           in.ServiceValue,
		GSTDetails:             gst,
		ChallanDate:            now,
		Notes:                  in.Notes,
		CreatedBy:              caller.UserID,
		CreatedAt:              now,
		UpdatedAt:              now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seq, err := s.deps.Sequencer.Next(ctx, tx, jobOrderSequence)
		if err != nil {
			return err
		}
		order.JobOrderNumber = fmt.Sprintf("JO-%s-%04d", now.Format("200601"), seq)
		order.ChallanNumber = "CH-" + order.JobOrderNumber

		png, err := document.JobOrderQR(order.JobOrderNumber, order.VendorID)
		if err != nil {
			return err
		}
		order.QRCode = document.DataURL(png)

		if err := s.repos.JobOrder.WithTx(tx).Create(ctx, order); err != nil {
			return fmt.Errorf("create job order: %w", err)
		}
		materials := s.repos.Material.WithTx(tx)
		for _, l := range issued {
			if err := materials.IssueToVendor(ctx, l.MaterialID, l.Quantity, vendor.ID, order.ID); err != nil {
				if errors.Is(err, repository.ErrStockConflict) {
					return violation("Material %s is no longer available in the requested quantity", l.MaterialID)
				}
				return fmt.Errorf("issue material %s: %w", l.MaterialID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	created, err := s.repos.JobOrder.FindByID(ctx, order.ID)
	if err != nil {
		return nil, err
	}

	metrics.JobOrdersCreated.WithLabelValues(created.JobWorkType).Inc()
	s.deps.Logger.Info("Job order created",
		zap.String("job_order", created.JobOrderNumber),
		zap.String("vendor", vendor.Name),
		zap.Int("materials", len(issued)))

	s.deps.Dispatcher.Dispatch(notify.Message{
		Kind:   notify.KindJobOrderIssued,
		Phone:  vendor.NotifyNumber(),
		ChatID: vendor.TelegramChatID,
		Body: notify.JobOrderIssued(notify.OrderInfo{
			Number:             created.JobOrderNumber,
			JobWorkType:        created.JobWorkType,
			Status:             created.Status,
			Issued:             issuedLines(created.MaterialsIssued),
			ExpectedCompletion: created.ExpectedCompletionDate,
		}),
	})
	s.publish(sse.EventJobOrderCreated, created)
	return created, nil
}

func (s *JobOrderService) gstFor(vendor *entity.Vendor, value float64, rate *float64) (*entity.GSTDetails, error) {
	taxRate := s.deps.Company.TaxRate
	if rate != nil {
		taxRate = *rate
	}
	vendorState := vendor.Address.State
	if vendorState == "" {
		vendorState = s.deps.Company.State
	}
	b, err := calc.CalculateGST(value, taxRate, calc.DetermineGSTType(vendorState, s.deps.Company.State))
	if err != nil {
		return nil, invalid("%s", err.Error())
	}
	return &entity.GSTDetails{
		ServiceValue: b.ServiceValue,
		GSTType:      b.GSTType,
		TaxRate:      b.TaxRate,
		CGST:         b.CGST,
		SGST:         b.SGST,
		IGST:         b.IGST,
		TotalTax:     b.TotalTax,
		TotalAmount:  b.TotalAmount,
	}, nil
}

// ReceiveLine reports a quantity coming back from the vendor.
type ReceiveLine struct {
	MaterialID string  `json:"material_id" binding:"required"`
	Quantity   float64 `json:"quantity" binding:"gte=0"`
	Unit       string  `json:"unit" binding:"omitempty,oneof=kg meters pieces"`
}

type ReceiveInput struct {
	MaterialsReceived []ReceiveLine `json:"materials_received" binding:"required,min=1,dive"`
}

// ReceiveResult is the updated order plus the reconciliation it produced.
type ReceiveResult struct {
	JobOrder          *entity.JobOrder `json:"job_order"`
	ProcessLossReport calc.Report      `json:"process_loss_report"`
}

// Receive records one receipt event, returns the materials to the warehouse
// and recomputes loss and status over the whole history of the order.
func (s *JobOrderService) Receive(ctx context.Context, caller Caller, id string, in ReceiveInput) (*ReceiveResult, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	var (
		report calc.Report
		vendor *entity.Vendor
		added  []entity.JobOrderReceivedMaterial
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orders := s.repos.JobOrder.WithTx(tx)
		materials := s.repos.Material.WithTx(tx)

		order, err := orders.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return notFound("Job order not found")
			}
			return err
		}
		if err := authorize(caller, order); err != nil {
			return err
		}
		if order.IsTerminal() {
			return violation("Job order %s is already completed", order.JobOrderNumber)
		}
		vendor = order.Vendor

		now := s.deps.Now()
		receiptNo := order.NextReceiptNo()
		for i, l := range in.MaterialsReceived {
			m, err := materials.FindByID(ctx, l.MaterialID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return notFound("Material %s not found", l.MaterialID)
				}
				return err
			}
			unit := l.Unit
			if unit == "" {
				unit = m.Unit
			}
			added = append(added, entity.JobOrderReceivedMaterial{
				JobOrderID:   order.ID,
				SortOrder:    i,
				ReceiptNo:    receiptNo,
				MaterialID:   m.ID,
				MaterialType: m.MaterialType,
				Quantity:     l.Quantity,
				Unit:         unit,
				ReceivedAt:   now,
			})
			if err := materials.ReturnToWarehouse(ctx, m.ID); err != nil {
				return fmt.Errorf("return material %s: %w", m.ID, err)
			}
		}
		if err := orders.AppendReceipts(ctx, added); err != nil {
			return fmt.Errorf("append receipts: %w", err)
		}

		received := append(append([]entity.JobOrderReceivedMaterial{}, order.MaterialsReceived...), added...)
		report, err = calc.CalculateJobOrderProcessLoss(issuedCalcLines(order.MaterialsIssued), receivedCalcLines(received))
		if err != nil {
			return invalid("%s", err.Error())
		}

		order.ProcessLoss = entity.ProcessLoss{Percentage: report.OverallLossPercentage, Calculated: true}
		order.Status = DeriveStatus(order.MaterialsIssued, received, order.Status)
		order.UpdatedAt = now
		if order.Status == entity.StatusCompleted {
			order.ActualCompletionDate = &now
		}
		return orders.SaveProgress(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.repos.JobOrder.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	metrics.JobOrderReceipts.WithLabelValues(updated.Status).Inc()
	metrics.ProcessLossPercent.Observe(report.OverallLossPercentage)
	s.deps.Logger.Info("Job order materials received",
		zap.String("job_order", updated.JobOrderNumber),
		zap.String("status", updated.Status),
		zap.Float64("process_loss", report.OverallLossPercentage),
		zap.Bool("high_loss", report.FlagHighLoss))

	if vendor != nil {
		s.deps.Dispatcher.Dispatch(notify.Message{
			Kind:   notify.KindReceiptConfirmation,
			Phone:  vendor.NotifyNumber(),
			ChatID: vendor.TelegramChatID,
			Body:   notify.ReceiptConfirmation(updated.JobOrderNumber, receivedLines(added)),
		})
	}
	s.publish(sse.EventJobOrderReceived, updated)
	return &ReceiveResult{JobOrder: updated, ProcessLossReport: report}, nil
}

// DeriveStatus returns Completed when, for every unit issued, at least the
// issued total has come back in that unit; Partially Returned when anything
// has come back; otherwise the current status.
func DeriveStatus(issued []entity.JobOrderIssuedMaterial, received []entity.JobOrderReceivedMaterial, current string) string {
	issuedByUnit := map[string]decimal.Decimal{}
	for _, l := range issued {
		issuedByUnit[l.Unit] = issuedByUnit[l.Unit].Add(decimal.NewFromFloat(l.Quantity))
	}
	receivedByUnit := map[string]decimal.Decimal{}
	totalReceived := decimal.Zero
	for _, l := range received {
		q := decimal.NewFromFloat(l.Quantity)
		receivedByUnit[l.Unit] = receivedByUnit[l.Unit].Add(q)
		totalReceived = totalReceived.Add(q)
	}

	complete := len(issuedByUnit) > 0
	for unit, qty := range issuedByUnit {
		if !receivedByUnit[unit].GreaterThanOrEqual(qty) {
			complete = false
			break
		}
	}
	switch {
	case complete:
		return entity.StatusCompleted
	case totalReceived.IsPositive():
		return entity.StatusPartiallyReturned
	default:
		return current
	}
}

type StatusInput struct {
	Status string `json:"status" binding:"required,oneof=Sent In-Process 'Partially Returned' Completed"`
}

// OverrideStatus sets any valid status regardless of the current one.
func (s *JobOrderService) OverrideStatus(ctx context.Context, caller Caller, id string, in StatusInput) (*entity.JobOrder, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	order, err := s.Get(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	now := s.deps.Now()
	var completedAt *time.Time
	if in.Status == entity.StatusCompleted {
		completedAt = &now
	}
	if err := s.repos.JobOrder.UpdateStatus(ctx, order.ID, in.Status, completedAt, now); err != nil {
		return nil, err
	}
	updated, err := s.repos.JobOrder.FindByID(ctx, order.ID)
	if err != nil {
		return nil, err
	}

	s.deps.Logger.Info("Job order status overridden",
		zap.String("job_order", updated.JobOrderNumber),
		zap.String("from", order.Status),
		zap.String("to", updated.Status),
		zap.String("by", caller.UserID))
	s.publish(sse.EventJobOrderStatus, updated)
	return updated, nil
}

type JobOrderFilter struct {
	Status      string `form:"status"`
	VendorID    string `form:"vendor_id"`
	JobWorkType string `form:"job_work_type"`
	Page        int    `form:"page"`
	PageSize    int    `form:"page_size"`
}

func (f JobOrderFilter) params(caller Caller) repository.JobOrderListParams {
	p := repository.JobOrderListParams{
		Status:      f.Status,
		VendorID:    f.VendorID,
		JobWorkType: f.JobWorkType,
		Page:        f.Page,
		Size:        f.PageSize,
	}
	if caller.IsVendor() {
		p.VendorID = caller.VendorID
	}
	return p
}

func (s *JobOrderService) List(ctx context.Context, caller Caller, f JobOrderFilter) ([]entity.JobOrder, int64, error) {
	return s.repos.JobOrder.List(ctx, f.params(caller))
}

func (s *JobOrderService) Get(ctx context.Context, caller Caller, id string) (*entity.JobOrder, error) {
	order, err := s.repos.JobOrder.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("Job order not found")
		}
		return nil, err
	}
	if err := authorize(caller, order); err != nil {
		return nil, err
	}
	return order, nil
}

// Export renders the filtered orders as an xlsx workbook.
func (s *JobOrderService) Export(ctx context.Context, caller Caller, f JobOrderFilter) ([]byte, error) {
	orders, err := s.repos.JobOrder.ListAll(ctx, f.params(caller), exportLimit)
	if err != nil {
		return nil, err
	}
	wb, err := document.JobOrders(orders)
	if err != nil {
		return nil, fmt.Errorf("render export: %w", err)
	}
	defer wb.Close()
	buf, err := wb.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write export: %w", err)
	}
	return buf.Bytes(), nil
}

// Challan renders the delivery challan of an order and archives a copy when
// object storage is configured. Archive failures are logged only.
func (s *JobOrderService) Challan(ctx context.Context, caller Caller, id string) ([]byte, string, error) {
	order, err := s.Get(ctx, caller, id)
	if err != nil {
		return nil, "", err
	}
	wb, err := document.Challan(order, document.Company{
		Name:  s.deps.Company.Name,
		State: s.deps.Company.State,
		GSTIN: s.deps.Company.GSTIN,
	})
	if err != nil {
		return nil, "", fmt.Errorf("render challan: %w", err)
	}
	defer wb.Close()
	buf, err := wb.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("write challan: %w", err)
	}
	data := buf.Bytes()

	if s.deps.Store != nil {
		name := storage.ChallanObjectName(order.ChallanNumber, order.ChallanDate)
		if err := s.deps.Store.Put(ctx, name, data, document.ContentTypeXLSX); err != nil {
			s.deps.Logger.Warn("Challan archive failed", zap.String("object", name), zap.Error(err))
		}
	}
	return data, order.ChallanNumber + ".xlsx", nil
}

// Stats counts orders per status, limited to the caller's vendor for vendor users.
func (s *JobOrderService) Stats(ctx context.Context, caller Caller) (map[string]int64, error) {
	vendorID := ""
	if caller.IsVendor() {
		vendorID = caller.VendorID
	}
	return s.repos.JobOrder.CountByStatus(ctx, vendorID)
}

func (s *JobOrderService) publish(eventType string, o *entity.JobOrder) {
	s.deps.Hub.PublishJobOrder(eventType, sse.JobOrderEvent{
		ID:          o.ID,
		Number:      o.JobOrderNumber,
		VendorID:    o.VendorID,
		Status:      o.Status,
		JobWorkType: o.JobWorkType,
	})
}

func authorize(caller Caller, o *entity.JobOrder) error {
	if caller.IsVendor() && o.VendorID != caller.VendorID {
		return newError(ErrForbidden, "Not authorized to access this job order")
	}
	return nil
}

func issuedCalcLines(lines []entity.JobOrderIssuedMaterial) []calc.Line {
	out := make([]calc.Line, len(lines))
	for i, l := range lines {
		out[i] = calc.Line{MaterialID: l.MaterialID, MaterialType: l.MaterialType, Quantity: l.Quantity, Unit: l.Unit}
	}
	return out
}

func receivedCalcLines(lines []entity.JobOrderReceivedMaterial) []calc.Line {
	out := make([]calc.Line, len(lines))
	for i, l := range lines {
		out[i] = calc.Line{MaterialID: l.MaterialID, MaterialType: l.MaterialType, Quantity: l.Quantity, Unit: l.Unit}
	}
	return out
}

func issuedLines(lines []entity.JobOrderIssuedMaterial) []notify.Line {
	out := make([]notify.Line, len(lines))
	for i, l := range lines {
		out[i] = notify.Line{MaterialType: l.MaterialType, Quantity: l.Quantity, Unit: l.Unit}
	}
	return out
}

func receivedLines(lines []entity.JobOrderReceivedMaterial) []notify.Line {
	out := make([]notify.Line, len(lines))
	for i, l := range lines {
		out[i] = notify.Line{MaterialType: l.MaterialType, Quantity: l.Quantity, Unit: l.Unit}
	}
	return out
}
