package router

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ndanilenko/marketplace-server/internal/api/http/handler"
	"github.com/ndanilenko/marketplace-server/internal/api/http/middleware"
	"github.com/ndanilenko/marketplace-server/internal/logger"
	"github.com/ndanilenko/marketplace-server/internal/model"
	"github.com/ndanilenko/marketplace-server/internal/service"
)

// Pinger reports storage connectivity for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Router wires handlers and middleware into an echo instance.
type Router struct {
	authService       *service.Auth
	productService    *service.Product
	moderationService *service.Moderation
	userStore         model.UserStore
	tokenManager      model.TokenManager
	storage           model.Storage
	db                Pinger
	logger            *logger.Logger
}

// New creates a new Router instance.
func New(
	authService *service.Auth,
	productService *service.Product,
	moderationService *service.Moderation,
	userStore model.UserStore,
	tokenManager model.TokenManager,
	storage model.Storage,
	db Pinger,
	logger *logger.Logger,
) *Router {
	return &Router{
		authService:       authService,
		productService:    productService,
		moderationService: moderationService,
		userStore:         userStore,
		tokenManager:      tokenManager,
		storage:           storage,
		db:                db,
		logger:            logger,
	}
}

// Register configures all routes and middleware.
//
// Returns the configured echo instance.
func (r *Router) Register() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = handler.NewErrorHandler(r.logger)

	logging := middleware.NewLogging(r.logger)
	authenticate := middleware.NewAuthenticate(r.tokenManager, r.userStore, r.logger)
	moderatorOnly := middleware.RequireRoles(model.RoleAdmin, model.RoleSubadmin)

	e.Use(logging.Middleware())

	authHandler := handler.NewAuth(r.authService, r.logger)
	productHandler := handler.NewProduct(r.productService, r.moderationService, r.storage, r.logger)

	e.GET("/health", r.health)
	e.GET("/uploads/products/:key", productHandler.Image)

	auth := e.Group("/api/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/admin/register", authHandler.RegisterAdmin)
	auth.POST("/admin/login", authHandler.LoginAdmin)
	auth.GET("/me", authHandler.Me, authenticate.Middleware())

	products := e.Group("/api/products", authenticate.Middleware())
	products.POST("", productHandler.Create)
	products.GET("", productHandler.List)
	products.GET("/user", productHandler.List)
	products.GET("/pending", productHandler.ListPending, moderatorOnly)
	products.GET("/:id", productHandler.Get)
	products.PUT("/:id", productHandler.Update)
	products.DELETE("/:id", productHandler.Delete)
	products.PUT("/:id/approve", productHandler.Approve, moderatorOnly)
	products.PUT("/:id/reject", productHandler.Reject, moderatorOnly)

	return e
}

func (r *Router) health(c echo.Context) error {
	if err := r.db.Ping(c.Request().Context()); err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "database unreachable")
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
