package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"fast-order/internal/apperror"
	"fast-order/internal/models"
	"fast-order/internal/service"
	"fast-order/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type OrderService interface {
	CreateOrder(ctx context.Context, req *service.CreateOrderRequest) (*models.Order, error)
	UpdateOrder(ctx context.Context, id uuid.UUID, req *service.UpdateOrderRequest) (*models.Order, error)
	CancelOrder(ctx context.Context, id uuid.UUID) (string, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListOrders(ctx context.Context) ([]models.Order, error)
}

type ProductService interface {
	CreateProduct(ctx context.Context, req *service.ProductRequest) (*models.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	GetProductByName(ctx context.Context, name string) (*models.Product, error)
	ListProducts(ctx context.Context) ([]models.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, req *service.ProductRequest) (*models.Product, error)
	UpdatePrice(ctx context.Context, id uuid.UUID, price decimal.Decimal) (*models.Product, error)
	Restock(ctx context.Context, id uuid.UUID, amount int) (*models.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}

type UserService interface {
	CreateUser(ctx context.Context, req *service.UserRequest) (*models.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateUser(ctx context.Context, id uuid.UUID, req *service.UserRequest) (*models.User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

type RoleService interface {
	CreateRole(ctx context.Context, req *service.RoleRequest) (*models.Role, error)
	GetRole(ctx context.Context, id uuid.UUID) (*models.Role, error)
	GetRoleByName(ctx context.Context, name string) (*models.Role, error)
	ListRoles(ctx context.Context) ([]models.Role, error)
}

type NotificationService interface {
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Notification, error)
	SendMessage(ctx context.Context, message string) (*models.NotificationEvent, error)
}

// Pinger is a dependency checked by the readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services groups the handlers' dependencies
type Services struct {
	Orders        OrderService
	Products      ProductService
	Users         UserService
	Roles         RoleService
	Notifications NotificationService
}

// Handler contains HTTP handlers
type Handler struct {
	orders        OrderService
	products      ProductService
	users         UserService
	roles         RoleService
	notifications NotificationService
	checks        map[string]Pinger
}

// NewHandler creates a new HTTP handler. checks are pinged by /ready.
func NewHandler(services Services, checks map[string]Pinger) *Handler {
	return &Handler{
		orders:        services.Orders,
		products:      services.Products,
		users:         services.Users,
		roles:         services.Roles,
		notifications: services.Notifications,
		checks:        checks,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(tracingMiddleware())
	router.Use(requestLogger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		orders := v1.Group("/orders")
		orders.GET("", h.listOrders)
		orders.POST("", h.createOrder)
		orders.GET("/:id", h.getOrder)
		orders.PUT("/:id", h.updateOrder)
		orders.PATCH("/:id/cancel", h.cancelOrder)
		orders.GET("/:id/notifications", h.listNotifications)

		products := v1.Group("/products")
		products.GET("", h.listProducts)
		products.POST("", h.createProduct)
		products.GET("/:id", h.getProduct)
		products.GET("/name/:name", h.getProductByName)
		products.PUT("/:id", h.updateProduct)
		products.PATCH("/:id/price", h.updateProductPrice)
		products.PATCH("/:id/stock", h.restockProduct)
		products.DELETE("/:id", h.deleteProduct)

		users := v1.Group("/users")
		users.GET("", h.listUsers)
		users.POST("", h.createUser)
		users.GET("/:id", h.getUser)
		users.GET("/email/:email", h.getUserByEmail)
		users.PUT("/:id", h.updateUser)
		users.DELETE("/:id", h.deleteUser)

		roles := v1.Group("/roles")
		roles.GET("", h.listRoles)
		roles.POST("", h.createRole)
		roles.GET("/:id", h.getRole)
		roles.GET("/name/:name", h.getRoleByName)

		v1.GET("/topics/send", h.sendMessage)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck pings every dependency and reports the ones that failed
func (h *Handler) readinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	failed := gin.H{}
	for name, check := range h.checks {
		if err := check.Ping(ctx); err != nil {
			failed[name] = err.Error()
		}
	}

	if len(failed) > 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"failed": failed,
			"time":   time.Now().Unix(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// pathID parses the :id parameter, rendering a 400 when it is not a UUID
func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		fail(c, apperror.InvalidRequest("The id must be a valid UUID."))
		return uuid.Nil, false
	}
	return id, true
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}

// requestLogger writes one structured line per request
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		util.GetLogger().Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}

// tracingMiddleware continues an incoming W3C trace and opens a server span
// per request.
func tracingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := otel.GetTextMapPropagator().Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))

		name := c.FullPath()
		if name == "" {
			name = "unmatched"
		}
		ctx, span := util.GetTracer().Start(ctx, c.Request.Method+" "+name, trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		if c.Writer.Status() >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(c.Writer.Status()))
		}
	}
}
