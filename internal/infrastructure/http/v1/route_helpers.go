// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"
)

// CatalogRouteHandler defines the interface for catalog handlers.
type CatalogRouteHandler interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Get(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
}

// LockRouteHandler is implemented by handlers of lockable records.
type LockRouteHandler interface {
	Lock(c *gin.Context)
	Unlock(c *gin.Context)
}

// RegisterCatalogRoutes registers standard CRUD routes for a catalog.
// If the handler also implements LockRouteHandler, lock and unlock routes are registered as well.
//
// Usage:
//
//	handler := handlers.NewShopHandler(base, services.Shops)
//	RegisterCatalogRoutes(api.Group("/shops"), handler)
func RegisterCatalogRoutes(group *gin.RouterGroup, handler CatalogRouteHandler) {
	group.GET("", handler.List)
	group.POST("", handler.Create)
	group.GET("/:id", handler.Get)
	group.PUT("/:id", handler.Update)
	group.DELETE("/:id", handler.Delete)

	if lockable, ok := handler.(LockRouteHandler); ok {
		group.POST("/:id/lock", lockable.Lock)
		group.POST("/:id/unlock", lockable.Unlock)
	}
}
