package httpserver

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"pos-admin/internal/catalog"
	"pos-admin/internal/logger"
	"pos-admin/internal/receipt"
	"pos-admin/internal/service/billing"
	customersvc "pos-admin/internal/service/customer"
	invoicesvc "pos-admin/internal/service/invoice"
	productsvc "pos-admin/internal/service/product"
)

// Deps are the collaborators the handlers call into.
type Deps struct {
	DB        Pinger
	Catalog   *catalog.Cache
	Products  *productsvc.Service
	Customers *customersvc.Service
	Sessions  *billing.Sessions
	Invoices  *invoicesvc.Service
	Receipts  *receipt.Renderer
	Gatherer  prometheus.Gatherer
	Now       func() time.Time
}

type handlers struct {
	Deps
	logger *zerolog.Logger
}

// buildRouter wires routes for the API.
func buildRouter(log *zerolog.Logger, deps Deps, corsOrigins []string) *gin.Engine {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}
	log = logger.OrNop(log)
	h := &handlers{Deps: deps, logger: log}

	router := gin.New()
	router.Use(gin.LoggerWithWriter(log), gin.Recovery(), cors.New(corsConfig(corsOrigins)))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(deps.DB))
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))

	products := router.Group("/products")
	products.GET("", h.listProducts)
	products.POST("", h.createProduct)
	products.PUT("/:id", h.updateProduct)
	products.DELETE("/:id", h.deleteProduct)

	customers := router.Group("/customers")
	customers.GET("", h.listCustomers)
	customers.POST("", h.createCustomer)
	customers.PUT("/:id", h.updateCustomer)
	customers.DELETE("/:id", h.deleteCustomer)
	customers.GET("/:id/invoices", h.customerInvoices)

	sessions := router.Group("/sessions")
	sessions.POST("", h.openSession)
	sessions.GET("/:id", h.getSession)
	sessions.DELETE("/:id", h.closeSession)
	sessions.POST("/:id/items", h.addItem)
	sessions.PUT("/:id/items/:itemId", h.setQuantity)
	sessions.DELETE("/:id/items/:itemId", h.removeItem)
	sessions.POST("/:id/scan", h.scan)
	sessions.PUT("/:id/discount", h.setDiscount)
	sessions.PUT("/:id/customer", h.setCustomer)
	sessions.POST("/:id/clear", h.clearCart)
	sessions.POST("/:id/commit", h.commit)
	sessions.POST("/:id/hold", h.hold)
	sessions.POST("/:id/resume", h.resume)

	invoices := router.Group("/invoices")
	invoices.GET("", h.listInvoices)
	invoices.GET("/:id", h.getInvoice)
	invoices.GET("/:id/receipt", h.getReceipt)
	invoices.POST("/:id/print", h.printReceipt)

	reports := router.Group("/reports")
	reports.GET("/today", h.today)
	reports.GET("/sales", h.sales)
	reports.GET("/invoices.csv", h.exportInvoices)

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
