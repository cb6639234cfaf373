package document

import (
	"go-payledger/internal/middleware"
	"go-payledger/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
) {
	docs := r.Group("/documents")
	docs.Use(middleware.AuthMiddleware())
	{
		docs.GET("/:documentID",
			middleware.RateLimitByUser(2, 5),
			middleware.RBACAuthorize(rbacService, "document", "read"),
			handler.Download,
		)
		docs.POST("",
			middleware.RateLimitByUser(0.2, 2),
			middleware.RBACAuthorize(rbacService, "document", "update"),
			handler.Upload,
		)
	}
}
