package app

import (
	"database/sql"

	"go-payledger/internal/auth"
	"go-payledger/internal/compensation"
	"go-payledger/internal/document"
	"go-payledger/internal/employee"
	"go-payledger/internal/messaging/kafka"
	"go-payledger/internal/rbac"
	"go-payledger/internal/rbac/infra"
	"go-payledger/internal/shared/config"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	cfg *config.Config,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	logger := zap.L()

	// --- Repositories ---
	rbacRepo := rbac.NewRepository(gormDB)
	authRepo := auth.NewRepository(gormDB)
	employeeRepo := employee.NewRepository(gormDB)
	compensationRepo := compensation.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer(cfg.RBACModelPath)
	if err != nil {
		return err
	}
	rbacService := rbac.NewService(rbacRepo, enforcer)

	// --- Services ---
	documentStore := document.NewStore(gormDB, rdb, cfg.MaxLetterSizeBytes)
	authService := auth.NewService(authRepo, rbacService, employeeRepo)
	employeeService := employee.NewServiceWithOutbox(db, employeeRepo, outboxRepo, rdb)
	compensationService := compensation.NewServiceWithOutbox(db, compensationRepo, documentStore, outboxRepo)

	// --- Handlers ---
	authHandler := auth.NewHandler(authService)
	employeeHandler := employee.NewHandler(employeeService)
	compensationHandler := compensation.NewHandler(compensationService)
	documentHandler := document.NewHandler(documentStore)

	// --- Routes ---
	api := router.Group("/api/v1")
	{
		auth.RegisterRoutes(api, authHandler)
		employee.RegisterRoutes(api, employeeHandler, rbacService, logger)
		compensation.RegisterRoutes(api, compensationHandler, rbacService, rdb)
		document.RegisterRoutes(api, documentHandler, rbacService)
	}

	return nil
}
