package compensation

import (
	"go-payledger/internal/middleware"
	"go-payledger/internal/rbac"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
	rdb *redis.Client,
) {
	ledger := r.Group("/employees/:employeeID/compensations")
	ledger.Use(middleware.AuthMiddleware())
	{
		ledger.GET("",
			middleware.RateLimitByUser(2, 5),
			middleware.RBACAuthorize(rbacService, "compensation", "read"),
			handler.GetLedger,
		)
		ledger.POST("/initial",
			middleware.RateLimitByUser(0.1, 1),
			middleware.RBACAuthorize(rbacService, "compensation", "update"),
			middleware.Idempotency(rdb),
			handler.AddInitial,
		)
		ledger.POST("",
			middleware.RateLimitByUser(0.1, 1),
			middleware.RBACAuthorize(rbacService, "compensation", "update"),
			middleware.Idempotency(rdb),
			handler.AddPeriod,
		)
		ledger.POST("/increments",
			middleware.RateLimitByUser(0.1, 1),
			middleware.RBACAuthorize(rbacService, "compensation", "update"),
			middleware.Idempotency(rdb),
			handler.Increment,
		)
		ledger.PUT("/:periodID",
			middleware.RateLimitByUser(0.1, 1),
			middleware.RBACAuthorize(rbacService, "compensation", "update"),
			handler.EditPeriod,
		)
		ledger.DELETE("/:periodID",
			middleware.RateLimitByUser(0.05, 1),
			middleware.RBACAuthorize(rbacService, "compensation", "update"),
			handler.DeletePeriod,
		)
	}
}
