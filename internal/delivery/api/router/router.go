// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"net/http"

	"storefront/config"
	"storefront/internal/delivery/api/middleware"
	"storefront/internal/delivery/api/response"
	"storefront/internal/delivery/api/router/handler"
	"storefront/internal/domain/entity"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/fx"
	"golang.org/x/time/rate"
)

type RouterParams struct {
	fx.In

	AuthHandler      *handler.AuthHandler
	CatalogHandler   *handler.CatalogHandler
	CartHandler      *handler.CartHandler
	OrderHandler     *handler.OrderHandler
	PaymentHandler   *handler.PaymentHandler
	AssistantHandler *handler.AssistantHandler
	AuthMiddleware   *middleware.AuthMiddleware
	Config           *config.Config
}

// router holds all the handlers that need to be registered.
type router struct {
	authHandler      *handler.AuthHandler
	catalogHandler   *handler.CatalogHandler
	cartHandler      *handler.CartHandler
	orderHandler     *handler.OrderHandler
	paymentHandler   *handler.PaymentHandler
	assistantHandler *handler.AssistantHandler
	authMiddleware   *middleware.AuthMiddleware
	config           *config.Config
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		authHandler:      params.AuthHandler,
		catalogHandler:   params.CatalogHandler,
		cartHandler:      params.CartHandler,
		orderHandler:     params.OrderHandler,
		paymentHandler:   params.PaymentHandler,
		assistantHandler: params.AssistantHandler,
		authMiddleware:   params.AuthMiddleware,
		config:           params.Config,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", handler.HealthCheck)

	apiV1 := e.Group("/api/v1")
	authenticated := r.authMiddleware.Authenticate
	adminOnly := r.authMiddleware.RequireRole(entity.RoleAdmin)

	authGroup := apiV1.Group("/auth")
	{
		authGroup.POST("/signup", r.authHandler.Signup)
		authGroup.POST("/login", r.authHandler.Login, r.loginRateLimiter())
		authGroup.GET("/users", r.authHandler.ListUsers, authenticated, adminOnly)
	}

	categoryGroup := apiV1.Group("/category")
	{
		categoryGroup.GET("/all", r.catalogHandler.ListCategories)
		categoryGroup.POST("/add", r.catalogHandler.CreateCategory, authenticated, adminOnly)
		categoryGroup.PUT("/update/:id", r.catalogHandler.UpdateCategory, authenticated, adminOnly)
		categoryGroup.DELETE("/delete/:id", r.catalogHandler.DeleteCategory, authenticated, adminOnly)
	}

	productGroup := apiV1.Group("/product")
	{
		productGroup.GET("/all", r.catalogHandler.ListProducts)
		productGroup.GET("/:id", r.catalogHandler.GetProduct)
		productGroup.POST("/add", r.catalogHandler.CreateProduct, authenticated, adminOnly)
		productGroup.PUT("/update/:id", r.catalogHandler.UpdateProduct, authenticated, adminOnly)
		productGroup.DELETE("/delete/:id", r.catalogHandler.DeleteProduct, authenticated, adminOnly)
		productGroup.PUT("/updateStock/:id", r.catalogHandler.UpdateStock, authenticated, adminOnly)
	}

	cartGroup := apiV1.Group("/cart")
	cartGroup.Use(authenticated)
	{
		cartGroup.GET("", r.cartHandler.GetCart)
		cartGroup.POST("", r.cartHandler.SetItem)
		cartGroup.POST("/add", r.cartHandler.AddItem)
		cartGroup.DELETE("/clear/all", r.cartHandler.ClearCart)
		cartGroup.DELETE("/:productId", r.cartHandler.RemoveItem)
		cartGroup.GET("/admin/all", r.cartHandler.ListCarts, adminOnly)
	}

	orderGroup := apiV1.Group("/order")
	orderGroup.Use(authenticated)
	{
		orderGroup.POST("/createOrder", r.orderHandler.CreateOrder)
		orderGroup.POST("/verify", r.orderHandler.VerifyPayment)
		orderGroup.GET("/myOrders", r.orderHandler.MyOrders)
		orderGroup.GET("/all", r.orderHandler.ListOrders, adminOnly)
		orderGroup.PUT("/status/:orderId", r.orderHandler.UpdateStatus, adminOnly)
		orderGroup.POST("/cancel/:orderId", r.orderHandler.CancelOrder)
		orderGroup.GET("/:orderId", r.orderHandler.GetOrder)
		orderGroup.GET("/:orderId/receipt", r.orderHandler.GetReceipt)
	}

	// Gateways authenticate with a body signature, not a bearer token.
	apiV1.POST("/payment/:provider/webhook", r.paymentHandler.Webhook)

	openaiGroup := apiV1.Group("/openai")
	openaiGroup.Use(authenticated)
	{
		openaiGroup.POST("/product-description", r.assistantHandler.ProductDescription)
		openaiGroup.POST("/summarize-orders", r.assistantHandler.SummarizeOrders, adminOnly)
	}
}

// loginRateLimiter allows loginRateLimit.requests attempts per client IP
// per window.
func (r *router) loginRateLimiter() echo.MiddlewareFunc {
	limit := r.config.Auth.LoginRateLimit
	perSecond := rate.Limit(float64(limit.Requests) / limit.Window.Seconds())

	store := echomiddleware.NewRateLimiterMemoryStoreWithConfig(echomiddleware.RateLimiterMemoryStoreConfig{
		Rate:      perSecond,
		Burst:     limit.Requests,
		ExpiresIn: limit.Window,
	})

	return echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, _ error) error {
			return response.Error(c, http.StatusForbidden, "RATE_LIMIT_IDENTIFIER", "Could not identify client", nil)
		},
		DenyHandler: func(c echo.Context, _ string, _ error) error {
			return response.Error(c, http.StatusTooManyRequests, "TOO_MANY_REQUESTS", "Too many login attempts, please try again later", nil)
		},
	})
}
