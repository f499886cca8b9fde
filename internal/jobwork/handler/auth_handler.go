package handler

import (
	"github.com/Sudarsan9786/nool-erp/internal/jobwork/service"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	svc *service.AuthService
}

func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Register POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req service.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		BindError(c, err)
		return
	}
	session, err := h.svc.Register(c.Request.Context(), req)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, "User registered successfully", session)
}

// Login POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginInput
	if err := c.ShouldBindJSON(&req); err != nil {
		BindError(c, err)
		return
	}
	session, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		Fail(c, err)
		return
	}
	SuccessMessage(c, "Login successful", session)
}

// Me GET /auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.svc.Me(c.Request.Context(), GetUserID(c))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, user)
}

type UserHandler struct {
	svc *service.UserService
}

func NewUserHandler(svc *service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// List GET /users
func (h *UserHandler) List(c *gin.Context) {
	var f service.UserFilter
	if !bindQuery(c, &f) {
		return
	}
	normalizePage(&f.Page, &f.PageSize)
	users, total, err := h.svc.List(c.Request.Context(), f)
	if err != nil {
		Fail(c, err)
		return
	}
	List(c, users, f.Page, f.PageSize, total)
}

// Get GET /users/:id
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, user)
}

// Update PUT /users/:id
func (h *UserHandler) Update(c *gin.Context) {
	var req service.UpdateUserInput
	if err := c.ShouldBindJSON(&req); err != nil {
		BindError(c, err)
		return
	}
	user, err := h.svc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		Fail(c, err)
		return
	}
	SuccessMessage(c, "User updated successfully", user)
}

// Delete DELETE /users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), currentCaller(c), c.Param("id")); err != nil {
		Fail(c, err)
		return
	}
	SuccessMessage(c, "User deleted successfully", nil)
}
