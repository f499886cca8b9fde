package handler

import (
	"fmt"
	"strings"

	"github.com/Sudarsan9786/nool-erp/internal/jobwork/service"
	"github.com/gin-gonic/gin"
)

const maxImportSize = 5 << 20

type MaterialHandler struct {
	svc *service.MaterialService
}

func NewMaterialHandler(svc *service.MaterialService) *MaterialHandler {
	return &MaterialHandler{svc: svc}
}

// Create POST /materials
func (h *MaterialHandler) Create(c *gin.Context) {
	var req service.MaterialInput
	if err := c.ShouldBindJSON(&req); err != nil {
		BindError(c, err)
		return
	}
	m, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, "Material created successfully", m)
}

// List GET /materials?material_type=&current_location=&vendor_id=&search=
func (h *MaterialHandler) List(c *gin.Context) {
	var f service.MaterialFilter
	if !bindQuery(c, &f) {
		return
	}
	normalizePage(&f.Page, &f.PageSize)
	f.Search = strings.TrimSpace(f.Search)
	items, total, err := h.svc.List(c.Request.Context(), f)
	if err != nil {
		Fail(c, err)
		return
	}
	List(c, items, f.Page, f.PageSize, total)
}

// Get GET /materials/:id
func (h *MaterialHandler) Get(c *gin.Context) {
	m, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, m)
}

// Update PUT /materials/:id
func (h *MaterialHandler) Update(c *gin.Context) {
	var req service.MaterialInput
	if err := c.ShouldBindJSON(&req); err != nil {
		BindError(c, err)
		return
	}
	m, err := h.svc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		Fail(c, err)
		return
	}
	SuccessMessage(c, "Material updated successfully", m)
}

// Delete DELETE /materials/:id
func (h *MaterialHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		Fail(c, err)
		return
	}
	SuccessMessage(c, "Material deleted successfully", nil)
}

// Summary GET /materials/inventory/summary
func (h *MaterialHandler) Summary(c *gin.Context) {
	summary, err := h.svc.Summary(c.Request.Context())
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, summary)
}

// SeedDemo POST /materials/seed-demo
func (h *MaterialHandler) SeedDemo(c *gin.Context) {
	items, err := h.svc.SeedDemo(c.Request.Context())
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, fmt.Sprintf("Successfully created %d demo materials", len(items)), items)
}

// Import POST /materials/import (multipart "file", optional "charset")
func (h *MaterialHandler) Import(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "CSV file is required")
		return
	}
	if header.Size > maxImportSize {
		BadRequest(c, "CSV file exceeds 5MB")
		return
	}
	file, err := header.Open()
	if err != nil {
		Fail(c, err)
		return
	}
	defer file.Close()

	result, err := h.svc.ImportCSV(c.Request.Context(), file, c.PostForm("charset"))
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, fmt.Sprintf("Imported %d materials, %d rows failed", result.Created, result.Failed), result)
}
