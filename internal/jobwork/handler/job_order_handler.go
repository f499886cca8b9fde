package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Sudarsan9786/nool-erp/internal/jobwork/service"
	"github.com/Sudarsan9786/nool-erp/internal/shared/document"
	"github.com/gin-gonic/gin"
)

type JobOrderHandler struct {
	svc *service.JobOrderService
}

func NewJobOrderHandler(svc *service.JobOrderService) *JobOrderHandler {
	return &JobOrderHandler{svc: svc}
}

type createJobOrderRequest struct {
	VendorID               string              `json:"vendor_id" binding:"required"`
	JobWorkType            string              `json:"job_work_type" binding:"required,oneof=Knitting Dyeing Printing Stitching Finishing"`
	MaterialsIssued        []service.IssueLine `json:"materials_issued" binding:"required,min=1,unique=MaterialID,dive"`
	ExpectedCompletionDate string              `json:"expected_completion_date"`
	ServiceValue           *float64            `json:"service_value" binding:"omitempty,gte=0"`
	TaxRate                *float64            `json:"tax_rate" binding:"omitempty,gte=0"`
	Notes                  string              `json:"notes"`
}

// parseDate accepts a calendar date or an RFC 3339 timestamp.
func parseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("invalid date %q", s)
}

// Create POST /job-orders
func (h *JobOrderHandler) Create(c *gin.Context) {
	var req createJobOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BindError(c, err)
		return
	}
	expected, err := parseDate(req.ExpectedCompletionDate)
	if err != nil {
		BadRequest(c, "Expected completion date must be YYYY-MM-DD or RFC 3339")
		return
	}
	order, err := h.svc.Create(c.Request.Context(), currentCaller(c), service.CreateJobOrderInput{
		VendorID:               req.VendorID,
		JobWorkType:            req.JobWorkType,
		MaterialsIssued:        req.MaterialsIssued,
		ExpectedCompletionDate: expected,
		ServiceValue:           req.ServiceValue,
		TaxRate:                req.TaxRate,
		Notes:                  req.Notes,
	})
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, "Job order created successfully", order)
}

// List GET /job-orders?status=&vendor_id=&job_work_type=
func (h *JobOrderHandler) List(c *gin.Context) {
	var f service.JobOrderFilter
	if !bindQuery(c, &f) {
		return
	}
	normalizePage(&f.Page, &f.PageSize)
	orders, total, err := h.svc.List(c.Request.Context(), currentCaller(c), f)
	if err != nil {
		Fail(c, err)
		return
	}
	List(c, orders, f.Page, f.PageSize, total)
}

// Get GET /job-orders/:id
func (h *JobOrderHandler) Get(c *gin.Context) {
	order, err := h.svc.Get(c.Request.Context(), currentCaller(c), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, order)
}

// Receive PUT /job-orders/:id/receive
func (h *JobOrderHandler) Receive(c *gin.Context) {
	var req service.ReceiveInput
	if err := c.ShouldBindJSON(&req); err != nil {
		BindError(c, err)
		return
	}
	result, err := h.svc.Receive(c.Request.Context(), currentCaller(c), c.Param("id"), req)
	if err != nil {
		Fail(c, err)
		return
	}
	SuccessMessage(c, "Materials received successfully", result)
}

// UpdateStatus PUT /job-orders/:id/status
func (h *JobOrderHandler) UpdateStatus(c *gin.Context) {
	var req service.StatusInput
	if err := c.ShouldBindJSON(&req); err != nil {
		BindError(c, err)
		return
	}
	order, err := h.svc.OverrideStatus(c.Request.Context(), currentCaller(c), c.Param("id"), req)
	if err != nil {
		Fail(c, err)
		return
	}
	SuccessMessage(c, "Job order status updated successfully", order)
}

// Challan GET /job-orders/:id/challan
func (h *JobOrderHandler) Challan(c *gin.Context) {
	data, filename, err := h.svc.Challan(c.Request.Context(), currentCaller(c), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	attachment(c, filename, data)
}

// Export GET /job-orders/export
func (h *JobOrderHandler) Export(c *gin.Context) {
	var f service.JobOrderFilter
	if !bindQuery(c, &f) {
		return
	}
	data, err := h.svc.Export(c.Request.Context(), currentCaller(c), f)
	if err != nil {
		Fail(c, err)
		return
	}
	attachment(c, fmt.Sprintf("job-orders-%s.xlsx", time.Now().Format("20060102")), data)
}

// Stats GET /job-orders/stats
func (h *JobOrderHandler) Stats(c *gin.Context) {
	stats, err := h.svc.Stats(c.Request.Context(), currentCaller(c))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, stats)
}

func attachment(c *gin.Context, filename string, data []byte) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, document.ContentTypeXLSX, data)
}
