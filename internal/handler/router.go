package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"northwind/internal/auth"
	"northwind/internal/config"
	"northwind/internal/report"
	"northwind/internal/repository"
	"northwind/internal/schema"
)

// NewRouter assembles the gin engine: middleware chain, the open
// health probe and the /api group, which carries JWT auth when enabled.
func NewRouter(cfg *config.Config, reg *schema.Registry, store *repository.Store, reports *report.Service, rdb *redis.Client, jwtv *auth.JWTValidator) *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), AccessLog(), Recovery(), CORS(cfg.CORS))

	r.GET("/health", Health(store, rdb))

	api := r.Group("/api")
	if cfg.Auth.Enabled && jwtv != nil {
		api.Use(AuthRequired(jwtv))
	}

	customers := NewCustomersHandler(store, reg)
	g := api.Group("/customers")
	g.GET("", customers.List)
	g.GET("/:id", customers.Get)
	g.POST("", customers.Create)
	g.PUT("/:id", customers.Update)
	g.DELETE("/:id", customers.Delete)

	orders := NewOrdersHandler(store, reg)
	g = api.Group("/orders")
	g.GET("", orders.List)
	g.GET("/:id", orders.Get)
	g.POST("", orders.Create)
	g.PUT("/:id", orders.Update)
	g.DELETE("/:id", orders.Delete)

	products := NewProductsHandler(store, reg)
	g = api.Group("/products")
	g.GET("", products.List)
	g.GET("/:id", products.Get)
	g.POST("", products.Create)
	g.PUT("/:id", products.Update)
	g.DELETE("/:id", products.Delete)

	categories := NewCategoriesHandler(store, reg)
	g = api.Group("/categories")
	g.GET("", categories.List)
	g.GET("/:id", categories.Get)
	g.POST("", categories.Create)
	g.PUT("/:id", categories.Update)
	g.DELETE("/:id", categories.Delete)

	suppliers := NewSuppliersHandler(store, reg)
	g = api.Group("/suppliers")
	g.GET("", suppliers.List)
	g.GET("/:id", suppliers.Get)
	g.POST("", suppliers.Create)
	g.PUT("/:id", suppliers.Update)
	g.DELETE("/:id", suppliers.Delete)

	employees := NewEmployeesHandler(store, reg)
	g = api.Group("/employees")
	g.GET("", employees.List)
	// static segment wins over the :id wildcard in gin's route tree
	g.GET("/hierarchy", employees.Hierarchy)
	g.GET("/:id", employees.Get)
	g.POST("", employees.Create)
	g.PUT("/:id", employees.Update)
	g.DELETE("/:id", employees.Delete)

	shippers := NewShippersHandler(store, reg)
	g = api.Group("/shippers")
	g.GET("", shippers.List)
	g.GET("/:id", shippers.Get)
	g.POST("", shippers.Create)
	g.PUT("/:id", shippers.Update)
	g.DELETE("/:id", shippers.Delete)

	rep := NewReportsHandler(reports)
	g = api.Group("/reports")
	g.GET("/top-customers", rep.TopCustomers)
	g.GET("/sales-by-category", rep.SalesByCategory)
	g.GET("/sales-by-year", rep.SalesByYear)
	g.GET("/supplier-stats", rep.SupplierStats)
	g.GET("/employee-sales", rep.EmployeeSales)

	return r
}
