package v1

import (
	"github.com/gin-gonic/gin"
)

// CRUDRouteHandler is implemented by every resource handler with the five
// standard operations.
type CRUDRouteHandler interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Get(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
}

// RegisterCRUDRoutes registers the standard routes of a resource:
//
//	GET    /           list
//	POST   /           create
//	GET    /:id        get
//	PUT    /:id        update
//	DELETE /:id        delete
//
// create is prefixed with the given middleware.
func RegisterCRUDRoutes(group *gin.RouterGroup, handler CRUDRouteHandler, create ...gin.HandlerFunc) {
	group.GET("", handler.List)
	group.POST("", append(create, handler.Create)...)
	group.GET("/:id", handler.Get)
	group.PUT("/:id", handler.Update)
	group.DELETE("/:id", handler.Delete)
}
