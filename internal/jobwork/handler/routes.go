package handler

import (
	"github.com/Sudarsan9786/nool-erp/internal/jobwork/entity"
	"github.com/Sudarsan9786/nool-erp/internal/middleware"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the job-work API on v1.
func (h *Handlers) RegisterRoutes(v1 *gin.RouterGroup, jwtSecret string) {
	staff := middleware.RequireRole(entity.RoleAdmin, entity.RoleSupervisor)
	adminOnly := middleware.RequireRole(entity.RoleAdmin)

	auth := v1.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
	}

	authorized := v1.Group("")
	authorized.Use(middleware.JWTAuth(jwtSecret))
	{
		authorized.GET("/auth/me", h.Auth.Me)

		// Server-sent events; EventSource clients pass ?token=
		authorized.GET("/events", h.SSE.Stream)

		users := authorized.Group("/users", adminOnly)
		{
			users.GET("", h.User.List)
			users.GET("/:id", h.User.Get)
			users.PUT("/:id", h.User.Update)
			users.DELETE("/:id", h.User.Delete)
		}

		vendors := authorized.Group("/vendors")
		{
			vendors.GET("", h.Vendor.List)
			vendors.POST("", staff, h.Vendor.Create)
			vendors.POST("/seed-demo", staff, h.Vendor.SeedDemo)
			vendors.GET("/:id", h.Vendor.Get)
			vendors.PUT("/:id", staff, h.Vendor.Update)
			vendors.DELETE("/:id", adminOnly, h.Vendor.Delete)
		}

		materials := authorized.Group("/materials")
		{
			materials.GET("", h.Material.List)
			materials.POST("", staff, h.Material.Create)
			materials.GET("/inventory/summary", h.Material.Summary)
			materials.POST("/seed-demo", staff, h.Material.SeedDemo)
			materials.POST("/import", staff, h.Material.Import)
			materials.GET("/:id", h.Material.Get)
			materials.PUT("/:id", staff, h.Material.Update)
			materials.DELETE("/:id", adminOnly, h.Material.Delete)
		}

		orders := authorized.Group("/job-orders")
		{
			orders.POST("", staff, h.JobOrder.Create)
			orders.GET("", h.JobOrder.List)
			orders.GET("/export", h.JobOrder.Export)
			orders.GET("/stats", h.JobOrder.Stats)
			orders.GET("/:id", h.JobOrder.Get)
			orders.PUT("/:id/receive", h.JobOrder.Receive)
			orders.PUT("/:id/status", staff, h.JobOrder.UpdateStatus)
			orders.GET("/:id/challan", h.JobOrder.Challan)
		}
	}
}
