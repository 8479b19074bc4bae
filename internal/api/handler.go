package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"pos-service/internal/cart"
	"pos-service/internal/service"
	"pos-service/internal/store"
	"pos-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Handler contains HTTP handlers
type Handler struct {
	store       *store.Store
	catalog     *service.CatalogService
	carts       *service.CartService
	sales       *service.SaleService
	reports     *service.ReportService
	storeName   string
	trendMonths int
	logger      *zap.Logger
}

// Options holds the display settings of the API
type Options struct {
	StoreName   string
	TrendMonths int
}

// NewHandler creates a new HTTP handler
func NewHandler(
	db *store.Store,
	catalog *service.CatalogService,
	carts *service.CartService,
	sales *service.SaleService,
	reports *service.ReportService,
	opts Options,
) *Handler {
	if opts.TrendMonths <= 0 {
		opts.TrendMonths = 3
	}
	return &Handler{
		store:       db,
		catalog:     catalog,
		carts:       carts,
		sales:       sales,
		reports:     reports,
		storeName:   opts.StoreName,
		trendMonths: opts.TrendMonths,
		logger:      util.GetLogger(),
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(requestLogger(h.logger))

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/products", h.listProducts)
		v1.POST("/products", h.createProduct)
		v1.GET("/products/export", h.exportProducts)
		v1.GET("/products/:id", h.getProduct)
		v1.PUT("/products/:id", h.updateProduct)
		v1.DELETE("/products/:id", h.deleteProduct)
		v1.POST("/products/:id/stock", h.adjustStock)

		v1.POST("/carts", h.createCart)
		v1.GET("/carts/:id", h.getCart)
		v1.DELETE("/carts/:id", h.discardCart)
		v1.POST("/carts/:id/lines", h.addCartLine)
		v1.DELETE("/carts/:id/lines/:index", h.removeCartLine)
		v1.POST("/carts/:id/checkout", h.checkoutCart)

		v1.GET("/sales/:id", h.getSale)
		v1.GET("/sales/:id/receipt", h.getReceipt)

		v1.GET("/reports/dashboard", h.dashboard)
		v1.GET("/reports/daily", h.dailyReport)
		v1.GET("/reports/monthly", h.monthlyReport)
		v1.GET("/reports/monthly/export", h.exportMonthlyReport)
		v1.GET("/reports/revenue", h.revenueByMonth)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck reports ready once the database answers
func (h *Handler) readinessCheck(c *gin.Context) {
	if err := h.store.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "unavailable",
			"details": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// writeError maps domain errors to HTTP status codes
func (h *Handler) writeError(c *gin.Context, err error) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "field": ve.Field, "details": ve.Message})
	case errors.Is(err, cart.ErrInvalidQuantity):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid quantity", "details": err.Error()})
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, cart.ErrCartNotFound),
		errors.Is(err, cart.ErrLineNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found", "details": err.Error()})
	case errors.Is(err, store.ErrInsufficientStock):
		c.JSON(http.StatusConflict, gin.H{"error": "Insufficient stock", "details": err.Error()})
	case errors.Is(err, store.ErrProductInUse):
		c.JSON(http.StatusConflict, gin.H{"error": "Product has sales history", "details": err.Error()})
	case errors.Is(err, service.ErrInsufficientPayment):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": "Insufficient payment", "details": err.Error()})
	case errors.Is(err, service.ErrEmptyCart):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Cart is empty"})
	default:
		h.logger.Error("Request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	}
}

func badRequest(c *gin.Context, msg string, err error) {
	body := gin.H{"error": msg}
	if err != nil {
		body["details"] = err.Error()
	}
	c.JSON(http.StatusBadRequest, body)
}

func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "Invalid "+name, err)
		return 0, false
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

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}
