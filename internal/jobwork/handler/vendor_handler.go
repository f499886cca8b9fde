package handler

import (
	"fmt"
	"strings"

	"github.com/Sudarsan9786/nool-erp/internal/jobwork/service"
	"github.com/gin-gonic/gin"
)

type VendorHandler struct {
	svc *service.VendorService
}

func NewVendorHandler(svc *service.VendorService) *VendorHandler {
	return &VendorHandler{svc: svc}
}

// Create POST /vendors
func (h *VendorHandler) Create(c *gin.Context) {
	var req service.VendorInput
	if err := c.ShouldBindJSON(&req); err != nil {
		BindError(c, err)
		return
	}
	vendor, err := h.svc.Create(c.Request.Context(), currentCaller(c), req)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, "Vendor created successfully", vendor)
}

// List GET /vendors?job_work_type=&is_active=&search=
func (h *VendorHandler) List(c *gin.Context) {
	var f service.VendorFilter
	if !bindQuery(c, &f) {
		return
	}
	normalizePage(&f.Page, &f.PageSize)
	f.Search = strings.TrimSpace(f.Search)
	vendors, total, err := h.svc.List(c.Request.Context(), f)
	if err != nil {
		Fail(c, err)
		return
	}
	List(c, vendors, f.Page, f.PageSize, total)
}

// Get GET /vendors/:id
func (h *VendorHandler) Get(c *gin.Context) {
	vendor, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, vendor)
}

// Update PUT /vendors/:id
func (h *VendorHandler) Update(c *gin.Context) {
	var req service.VendorInput
	if err := c.ShouldBindJSON(&req); err != nil {
		BindError(c, err)
		return
	}
	vendor, err := h.svc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		Fail(c, err)
		return
	}
	SuccessMessage(c, "Vendor updated successfully", vendor)
}

// Delete DELETE /vendors/:id
func (h *VendorHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		Fail(c, err)
		return
	}
	SuccessMessage(c, "Vendor deleted successfully", nil)
}

// SeedDemo POST /vendors/seed-demo
func (h *VendorHandler) SeedDemo(c *gin.Context) {
	vendors, err := h.svc.SeedDemo(c.Request.Context())
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, fmt.Sprintf("Successfully created %d demo vendors", len(vendors)), vendors)
}
