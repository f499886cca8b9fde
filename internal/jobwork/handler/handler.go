package handler

import (
	"errors"
	"net/http"
	"sync"

	"github.com/Sudarsan9786/nool-erp/internal/jobwork/service"
	"github.com/Sudarsan9786/nool-erp/internal/shared/sse"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var bindingRules sync.Once

// registerBindingRules teaches gin's validator the service rules and json
// field names so bind failures read like service validation errors.
func registerBindingRules() {
	bindingRules.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		if err := service.RegisterValidations(v); err != nil {
			panic(err)
		}
	})
}

// Handlers job-work handler set
type Handlers struct {
	Auth     *AuthHandler
	User     *UserHandler
	Vendor   *VendorHandler
	Material *MaterialHandler
	JobOrder *JobOrderHandler
	SSE      *SSEHandler
}

func NewHandlers(svc *service.Services, hub *sse.Hub) *Handlers {
	registerBindingRules()
	return &Handlers{
		Auth:     NewAuthHandler(svc.Auth),
		User:     NewUserHandler(svc.User),
		Vendor:   NewVendorHandler(svc.Vendor),
		Material: NewMaterialHandler(svc.Material),
		JobOrder: NewJobOrderHandler(svc.JobOrder),
		SSE:      NewSSEHandler(hub),
	}
}

// Response is the envelope of every JSON reply.
type Response struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message,omitempty"`
	Data       interface{} `json:"data,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

// SuccessMessage replies 200 with a message and optional data.
func SuccessMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{Success: true, Message: message, Data: data})
}

func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, Response{Success: true, Message: message, Data: data})
}

// List replies with one page of items.
func List(c *gin.Context, items interface{}, page, pageSize int, total int64) {
	pages := int64(0)
	if pageSize > 0 {
		pages = (total + int64(pageSize) - 1) / int64(pageSize)
	}
	c.JSON(http.StatusOK, Response{
		Success:    true,
		Data:       items,
		Pagination: &Pagination{Page: page, PageSize: pageSize, Total: total, TotalPages: pages},
	})
}

func Error(c *gin.Context, status int, message string) {
	c.JSON(status, Response{Success: false, Message: message})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// BindError answers a failed ShouldBind call: rule violations go through
// Fail, anything else is a malformed request.
func BindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		Fail(c, err)
		return
	}
	BadRequest(c, "Invalid request body: "+err.Error())
}

// Fail maps a service error to its status code. Binding rule violations are
// a 400. Errors without a user-facing message are recorded on the context
// for the request logger and answered with a generic 500.
func Fail(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		BadRequest(c, service.ValidationMessage(verrs))
		return
	}
	var svcErr *service.Error
	if !errors.As(err, &svcErr) {
		c.Error(err)
		Error(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	Error(c, statusOf(svcErr.Kind), svcErr.Message)
}

func statusOf(kind error) int {
	switch {
	case errors.Is(kind, service.ErrValidation),
		errors.Is(kind, service.ErrBusinessRule),
		errors.Is(kind, service.ErrConflict):
		return http.StatusBadRequest
	case errors.Is(kind, service.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(kind, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(kind, service.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// GetUserID returns the authenticated user id.
func GetUserID(c *gin.Context) string {
	return c.GetString("user_id")
}

// currentCaller is the authenticated user set by the JWT middleware.
func currentCaller(c *gin.Context) service.Caller {
	return service.Caller{
		UserID:   c.GetString("user_id"),
		Role:     c.GetString("role"),
		VendorID: c.GetString("vendor_id"),
	}
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// normalizePage defaults page to 1 and page_size to 20, and caps page_size at 100.
func normalizePage(page, pageSize *int) {
	if *page < 1 {
		*page = 1
	}
	if *pageSize < 1 || *pageSize > maxPageSize {
		*pageSize = defaultPageSize
	}
}

// bindQuery binds the query string into a list filter, answering 400 on
// malformed values.
func bindQuery(c *gin.Context, f interface{}) bool {
	if err := c.ShouldBindQuery(f); err != nil {
		BadRequest(c, "Invalid query parameters: "+err.Error())
		return false
	}
	return true
}
