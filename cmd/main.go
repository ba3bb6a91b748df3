package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	_ "github.com/hrcastell/Dulce-Maria-Reposteria/docs" // Import generated docs
	"github.com/hrcastell/Dulce-Maria-Reposteria/internal/config"
	"github.com/hrcastell/Dulce-Maria-Reposteria/internal/controllers"
	"github.com/hrcastell/Dulce-Maria-Reposteria/internal/database"
	"github.com/hrcastell/Dulce-Maria-Reposteria/internal/events"
	"github.com/hrcastell/Dulce-Maria-Reposteria/internal/middleware"
	"github.com/hrcastell/Dulce-Maria-Reposteria/internal/models"
	"github.com/hrcastell/Dulce-Maria-Reposteria/internal/services"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

var (
	db                 *gorm.DB
	configuration      *config.Config
	customerService    services.CustomerService
	catalogService     services.CatalogService
	orderService       services.OrderService
	cakeService        services.CakeService
	userService        services.UserService
	authController     *controllers.AuthController
	productController  controllers.ProductController
	customerController controllers.CustomerController
	orderController    controllers.OrderController
	cakeController     controllers.CakeController
	userController     controllers.UserController
)

// @title Dulce María Repostería API
// @version 1.0
// @description Order and catalog backend for the Dulce María bakery
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// Load environment variables
	loadDotenvFile()

	// Initialize logger
	setUpLogger()

	// Load configuration
	configuration = loadConfig()

	// Initialize database connection
	setupDatabase(configuration)

	// Connect the order event publisher when a broker is configured
	publisher := setupPublisher(configuration)
	if publisher != nil {
		defer publisher.Close()
	}

	// Initialize services and controllers
	customerService = services.NewCustomerService(db)
	catalogService = services.NewCatalogService(db)
	orderService = services.NewOrderService(db, customerService, publisher)
	cakeService = services.NewCakeService(db, configuration.CakeBasePriceCLP)
	userService = services.NewUserService(db)

	authController = controllers.NewAuthController(userService, configuration.JWTSecret)
	productController = controllers.NewProductController(catalogService)
	customerController = controllers.NewCustomerController(customerService)
	orderController = controllers.NewOrderController(orderService)
	cakeController = controllers.NewCakeController(cakeService)
	userController = controllers.NewUserController(userService)

	// Initialize Gin router
	var router *gin.Engine = setupRouter()

	// Start the server
	log.Infof("Starting server on %s:%d", configuration.Host, configuration.Port)
	router.Run(fmt.Sprintf("%v:%d", configuration.Host, configuration.Port))
}

// checkPanicErr checks if an error occurred and panics if it did
func checkPanicErr(err error) {
	if err != nil {
		panic(err)
	}
}

// loadDotenvFile loads environment variables from a .env file
// If the file is not found, it will log a warning and use system environment variables
func loadDotenvFile() {
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, using system environment variables")
	}
}

// setUpLogger initializes the logger with a JSON formatter and sets the log level based on the environment
func setUpLogger() {
	log.SetFormatter(&log.JSONFormatter{})
	environment := config.GetEnvWithDefault("APP_ENV", "development")
	switch environment {
	case "development":
		log.SetLevel(log.DebugLevel)
	case "production":
		log.SetLevel(log.ErrorLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}
}

// loadConfig loads the application configuration from environment variables
// It returns a Config struct or panics if there is an error
func loadConfig() *config.Config {
	log.Info("Loading configuration from environment variables")
	conf, err := config.LoadConfig()
	checkPanicErr(err)
	return conf
}

// setupDatabase initializes the database connection and returns a gorm.DB instance
func setupDatabase(conf *config.Config) *gorm.DB {
	var err error
	db, err = database.InitDatabase(database.FromAppConfig(conf))
	checkPanicErr(err)

	// Migrate the schema
	err = db.AutoMigrate(
		&models.Product{},
		&models.ProductVariant{},
		&models.ProductTopping{},
		&models.Customer{},
		&models.Order{},
		&models.OrderItem{},
		&models.User{},
		&models.CakeCategory{},
		&models.CakeOption{},
		&models.CakeOrder{},
	)
	checkPanicErr(err)

	seedDatabase(conf)
	return db
}

// setupPublisher connects to RabbitMQ when RABBITMQ_URL is set.
// Order events are best effort; a missing broker never blocks startup.
func setupPublisher(conf *config.Config) *events.Publisher {
	if conf.RabbitMQURL == "" {
		log.Info("RABBITMQ_URL not set, order events disabled")
		return nil
	}
	publisher, err := events.NewPublisher(conf.RabbitMQURL, conf.OrderEventsExchange)
	if err != nil {
		log.WithError(err).Warn("Could not connect to RabbitMQ, order events disabled")
		return nil
	}
	log.WithField("exchange", conf.OrderEventsExchange).Info("Order event publisher connected")
	return publisher
}

// seedDatabase bootstraps the superadmin account and the cake
// configurator categories when the database is empty
func seedDatabase(conf *config.Config) {
	var userCount int64
	db.Model(&models.User{}).Count(&userCount)
	if userCount == 0 && conf.AdminEmail != "" && conf.AdminPassword != "" {
		log.Info("No users found, seeding superadmin account")
		admin := models.User{
			ID:       uuid.NewString(),
			Email:    conf.AdminEmail,
			FullName: "Administrador",
			Role:     models.RoleSuperadmin,
			IsActive: true,
		}
		checkPanicErr(admin.SetPassword(conf.AdminPassword))
		db.Create(&admin)
	}

	var categoryCount int64
	db.Model(&models.CakeCategory{}).Count(&categoryCount)
	if categoryCount == 0 {
		log.Info("No cake categories found, seeding configurator steps")
		categories := []models.CakeCategory{
			{ID: uuid.NewString(), Type: models.CakeCategorySize, Label: "Tamaño", SortOrder: 1},
			{ID: uuid.NewString(), Type: models.CakeCategoryLayers, Label: "Pisos", SortOrder: 2},
			{ID: uuid.NewString(), Type: models.CakeCategorySponge, Label: "Bizcocho", SortOrder: 3},
			{ID: uuid.NewString(), Type: models.CakeCategoryFilling, Label: "Relleno", SortOrder: 4},
			{ID: uuid.NewString(), Type: models.CakeCategoryDecoration, Label: "Decoración", SortOrder: 5},
		}
		for _, category := range categories {
			db.Create(&category)
		}
	}
}

// setupRouter initializes the Gin router and sets up the routes
// It returns the configured router
func setupRouter() *gin.Engine {
	router := gin.Default()
	router.Use(middleware.Prometheus())

	setupRoutes(router)

	return router
}

// setupRoutes defines the routes for the Gin router
func setupRoutes(router *gin.Engine) {
	// Health check endpoint
	router.GET("/health", healthCheckHandler)

	// Prometheus metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Authentication
	router.POST("/auth/login", authController.Login)

	jwtSecret := []byte(configuration.JWTSecret)

	v1 := router.Group("/api/v1")
	{
		publicApi := v1.Group("/public")
		{
			publicApi.GET("/products", productController.ListPublicProducts)
			publicApi.GET("/products/:id", productController.GetProduct)
			publicApi.POST("/orders", orderController.CreatePublicOrder)
			publicApi.GET("/cakes/builder", cakeController.GetBuilderConfig)
			publicApi.POST("/cakes/orders", cakeController.CreateCakeOrder)
		}

		// Protected routes (requires JWT authentication)
		adminApi := v1.Group("/admin")
		adminApi.Use(middleware.JWTAuth(jwtSecret))
		adminApi.Use(middleware.RequireRole(models.RoleSuperadmin, models.RoleAdmin, models.RoleStaff))
		{
			adminApi.GET("/products", productController.ListProducts)
			adminApi.POST("/products", productController.CreateProduct)
			adminApi.PUT("/products/:id", productController.UpdateProduct)
			adminApi.DELETE("/products/:id", productController.DeleteProduct)
			adminApi.POST("/products/:id/variants", productController.CreateVariant)
			adminApi.PUT("/variants/:variantId", productController.UpdateVariant)
			adminApi.DELETE("/variants/:variantId", productController.DeleteVariant)
			adminApi.POST("/products/:id/toppings", productController.CreateTopping)
			adminApi.PUT("/toppings/:toppingId", productController.UpdateTopping)
			adminApi.DELETE("/toppings/:toppingId", productController.DeleteTopping)

			adminApi.GET("/customers", customerController.ListCustomers)
			adminApi.GET("/customers/:id", customerController.GetCustomer)
			adminApi.POST("/customers", customerController.CreateCustomer)

			adminApi.GET("/orders", orderController.ListOrders)
			adminApi.GET("/orders/:id", orderController.GetOrder)
			adminApi.POST("/orders", orderController.CreateOrder)
			adminApi.PATCH("/orders/:id/status", orderController.UpdateStatus)

			adminApi.GET("/cakes/categories", cakeController.ListCategories)
			adminApi.PUT("/cakes/categories/:id", cakeController.UpdateCategory)
			adminApi.POST("/cakes/options", cakeController.CreateOption)
			adminApi.PUT("/cakes/options/:id", cakeController.UpdateOption)
			adminApi.DELETE("/cakes/options/:id", cakeController.DeleteOption)
			adminApi.GET("/cakes/orders", cakeController.ListCakeOrders)
			adminApi.PATCH("/cakes/orders/:id/status", cakeController.UpdateCakeOrderStatus)

			// Account management is restricted to the superadmin
			superadminApi := adminApi.Group("/users")
			superadminApi.Use(middleware.RequireRole(models.RoleSuperadmin))
			{
				superadminApi.GET("", userController.ListUsers)
				superadminApi.POST("", userController.CreateUser)
			}
		}
	}

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

// healthCheckHandler handles the health check endpoint
// @Summary Health check
// @Description Check if the service is running
// @Tags health
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "dulcemaria-api",
	})
}
