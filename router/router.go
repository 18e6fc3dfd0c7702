package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-orders/controllers"
	"github.com/yeremiapane/restaurant-orders/kds"
	"github.com/yeremiapane/restaurant-orders/middlewares"
	"github.com/yeremiapane/restaurant-orders/repository"
	"github.com/yeremiapane/restaurant-orders/services"
)

// Options tunes SetupRouter. The zero value serves products straight from
// the database, creates its own kitchen display hub and disables rate
// limiting.
type Options struct {
	Products       repository.ProductStore
	Hub            *kds.Hub
	RateLimit      int
	TrustedProxies []string
	Log            logrus.FieldLogger
}

func SetupRouter(db *gorm.DB, opts Options) *gin.Engine {
	if opts.Log == nil {
		opts.Log = logrus.StandardLogger()
	}
	if opts.Products == nil {
		opts.Products = repository.NewProductRepository(db)
	}
	if opts.Hub == nil {
		opts.Hub = kds.NewHub(opts.Log)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	if err := r.SetTrustedProxies(opts.TrustedProxies); err != nil {
		opts.Log.WithError(err).Warn("ignoring trusted proxies")
	}

	r.Use(middlewares.LoggerMiddleware(opts.Log))
	r.Use(middlewares.MetricsMiddleware())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())
	if opts.RateLimit > 0 {
		r.Use(middlewares.NewRateLimiter(opts.RateLimit, opts.RateLimit).RateLimit())
	}

	// Inisialisasi repository & service
	ingredientRepo := repository.NewIngredientRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	orderService := services.NewOrderService(repository.NewCatalogRepository(db), opts.Log)

	// Inisialisasi controller
	orderCtrl := controllers.NewOrderController(orderService, orderRepo, ingredientRepo, opts.Hub)
	productCtrl := controllers.NewProductController(opts.Products)
	ingredientCtrl := controllers.NewIngredientController(ingredientRepo)
	kdsCtrl := controllers.NewKDSController(opts.Hub)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Kitchen display
	r.GET("/kds/ws", kdsCtrl.Connect)

	// Menu
	r.GET("/products", productCtrl.GetAllProducts)
	r.PATCH("/products/:product_id/price", productCtrl.UpdatePrice)
	r.GET("/ingredients", ingredientCtrl.GetAllIngredients)

	// Orders
	r.POST("/orders", orderCtrl.CreateOrder)
	r.GET("/orders", orderCtrl.GetAllOrders)
	r.GET("/orders/:order_id", orderCtrl.GetOrderByID)

	return r
}
