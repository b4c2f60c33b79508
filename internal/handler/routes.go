package handler

import (
	"github.com/labstack/echo/v4"

	"supplies-service/internal/middleware"
	"supplies-service/internal/policy"
	"supplies-service/prometheus"
)

// Register mounts every route on e. auth resolves the bearer token.
func Register(e *echo.Echo, h *Handler, auth echo.MiddlewareFunc, p *policy.Policy) {
	gate := func(kind policy.Kind, op policy.Operation) echo.MiddlewareFunc {
		return middleware.RequirePermission(p, kind, op)
	}

	// Public routes - no authentication required
	e.GET("/health", h.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(prometheus.GetPrometheusHandler()))

	api := e.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.POST("/register", h.Register)
	authGroup.POST("/login", h.Login)
	authGroup.POST("/logout", h.Logout, auth)
	authGroup.GET("/profile", h.Profile, auth)
	authGroup.PUT("/profile", h.UpdateProfile, auth)

	users := api.Group("/users", auth)
	users.GET("", h.ListUsers, gate(policy.KindUser, policy.OpList))
	users.POST("", h.CreateUser, gate(policy.KindUser, policy.OpCreate))
	users.PUT("/profile", h.UpdateProfile)
	users.GET("/:id", h.GetUser)
	users.DELETE("/:id", h.DeleteUser, gate(policy.KindUser, policy.OpDelete))

	// Catalog reads are public, writes need a role
	categories := api.Group("/categories")
	categories.GET("", h.ListCategories)
	categories.GET("/:id", h.GetCategory)
	categories.POST("", h.CreateCategory, auth, gate(policy.KindCategory, policy.OpCreate))
	categories.PUT("/:id", h.UpdateCategory, auth, gate(policy.KindCategory, policy.OpUpdate))
	categories.DELETE("/:id", h.DeleteCategory, auth, gate(policy.KindCategory, policy.OpDelete))

	levels := api.Group("/levels")
	levels.GET("", h.ListLevels)
	levels.GET("/:id", h.GetLevel)
	levels.POST("", h.CreateLevel, auth, gate(policy.KindLevel, policy.OpCreate))
	levels.PUT("/:id", h.UpdateLevel, auth, gate(policy.KindLevel, policy.OpUpdate))
	levels.DELETE("/:id", h.DeleteLevel, auth, gate(policy.KindLevel, policy.OpDelete))

	materials := api.Group("/materials")
	materials.GET("", h.ListMaterials)
	materials.GET("/category/:id", h.MaterialsByCategory)
	materials.GET("/level/:id", h.MaterialsByLevel)
	materials.GET("/:id", h.GetMaterial)
	materials.POST("", h.CreateMaterial, auth, gate(policy.KindMaterial, policy.OpCreate))
	materials.PUT("/:id", h.UpdateMaterial, auth, gate(policy.KindMaterial, policy.OpUpdate))
	materials.DELETE("/:id", h.DeleteMaterial, auth, gate(policy.KindMaterial, policy.OpDelete))

	tags := api.Group("/tags", auth)
	tags.GET("", h.ListTags, gate(policy.KindTag, policy.OpRead))
	tags.GET("/stats", h.TagStats, gate(policy.KindTag, policy.OpRead))
	tags.GET("/:id", h.GetTag, gate(policy.KindTag, policy.OpRead))
	tags.GET("/:id/materials", h.TagMaterials, gate(policy.KindTag, policy.OpRead))
	tags.POST("", h.CreateTag, gate(policy.KindTag, policy.OpCreate))
	tags.PUT("/:id", h.UpdateTag, gate(policy.KindTag, policy.OpUpdate))
	tags.DELETE("/:id", h.DeleteTag, gate(policy.KindTag, policy.OpDelete))

	// Ownership and visibility of single lists are decided in the handlers
	lists := api.Group("/lists")
	lists.GET("/oficial/:levelId", h.OfficialByLevel)
	lists.GET("", h.ListLists, auth, gate(policy.KindList, policy.OpList))
	lists.POST("", h.CreateList, auth, gate(policy.KindList, policy.OpCreate))
	lists.GET("/:id", h.GetList, auth)
	lists.PUT("/:id", h.UpdateList, auth)
	lists.DELETE("/:id", h.DeleteList, auth)
	lists.POST("/:id/materials", h.AddItem, auth)
	lists.DELETE("/:id/materials/:materialId", h.RemoveItem, auth)
	lists.GET("/:id/share", h.Share, auth)
	lists.GET("/:id/export", h.Export, auth)

	parent := api.Group("/padre", auth)
	parent.POST("/lists/:id/materials/:materialId/comprado", h.MarkPurchased)
	parent.POST("/lists/:id/email", h.EmailList)
	parent.GET("/resumen", h.Summary, gate(policy.KindSummary, policy.OpRead))
	parent.GET("/etiquetas", h.ListTags, gate(policy.KindTag, policy.OpRead))
}
