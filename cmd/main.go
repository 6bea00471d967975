package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"

	"sandwichworks/internal/caching"
	"sandwichworks/internal/handlers"
	"sandwichworks/internal/jobs"
	"sandwichworks/internal/jobs/background"
	"sandwichworks/internal/middleware"
	"sandwichworks/internal/repositories"
	"sandwichworks/internal/services"
	"sandwichworks/pkg/database"
)

const version = "1.0.0"

func main() {
	// Database connection
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := database.NewPool(databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// JWT configuration
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = random.String(32) // Generate random secret for development
		log.Printf("WARNING: Using generated JWT secret: %s", jwtSecret)
	}

	// Redis configuration
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379" // Default Redis address
	}
	redisPassword := os.Getenv("REDIS_PASSWORD")
	redisDB := 0 // Default DB
	if redisDBStr := os.Getenv("REDIS_DB"); redisDBStr != "" {
		if db, err := strconv.Atoi(redisDBStr); err == nil {
			redisDB = db
		}
	}

	// Create cache service
	cacheSvc := caching.NewRedisCacheService(redisAddr, redisPassword, redisDB)

	// Create services
	inventorySvc := services.NewInventoryService(pool)
	catalogSvc := services.NewCatalogService(pool, cacheSvc)
	ledgerSvc := services.NewLedgerService(pool, inventorySvc, catalogSvc, cacheSvc)

	// Background jobs
	alertSvc := jobs.NewStockAlertService(repositories.NewResourceRepo(pool))
	scheduler := background.NewJobScheduler(alertSvc, cacheSvc)
	if err := scheduler.Start(); err != nil {
		log.Printf("Failed to start job scheduler: %v", err)
	}
	defer func() {
		if err := scheduler.Stop(); err != nil {
			log.Printf("Failed to stop job scheduler: %v", err)
		}
	}()

	// Create handlers
	resourceHandlers := handlers.NewResourceHandlers(ledgerSvc, inventorySvc)
	sandwichHandlers := handlers.NewSandwichHandlers(ledgerSvc)
	recipeHandlers := handlers.NewRecipeHandlers(ledgerSvc, catalogSvc)
	orderHandlers := handlers.NewOrderHandlers(ledgerSvc)
	orderDetailHandlers := handlers.NewOrderDetailHandlers(ledgerSvc)
	fulfillmentHandlers := handlers.NewFulfillmentHandlers(ledgerSvc, inventorySvc, catalogSvc)
	sessionHandlers := handlers.NewSessionHandlers(cacheSvc)
	jobHandlers := handlers.NewJobHandlers(scheduler, alertSvc, cacheSvc)
	healthHandlers := handlers.NewHealthHandlers(pool, cacheSvc)

	// JWT middleware configuration
	jwtConfig := echojwt.Config{
		SigningKey: []byte(jwtSecret),
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(401, "Invalid token")
		},
	}

	// Create Echo instance
	e := echo.New()

	// Global middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())

	// Health endpoints (no auth required)
	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/health/ready", healthHandlers.ReadinessCheck)
	e.GET("/health/live", healthHandlers.LivenessCheck)
	e.GET("/metrics", healthHandlers.GetMetrics)

	// API routes
	v1 := e.Group("/v1")

	// Protected routes (require JWT)
	protected := v1.Group("")
	protected.Use(echojwt.WithConfig(jwtConfig))
	protected.Use(middleware.SessionMiddleware(cacheSvc))

	// Resource routes
	protected.GET("/resources", resourceHandlers.ListResources)
	protected.POST("/resources", resourceHandlers.CreateResource)
	protected.GET("/resources/report", resourceHandlers.StockReport)
	protected.GET("/resources/:id", resourceHandlers.GetResource)
	protected.PUT("/resources/:id", resourceHandlers.UpdateResource)
	protected.DELETE("/resources/:id", resourceHandlers.DeleteResource)
	protected.POST("/resources/:id/restock", resourceHandlers.RestockResource)

	// Sandwich routes
	protected.GET("/sandwiches", sandwichHandlers.ListSandwiches)
	protected.POST("/sandwiches", sandwichHandlers.CreateSandwich)
	protected.GET("/sandwiches/:id", sandwichHandlers.GetSandwich)
	protected.PUT("/sandwiches/:id", sandwichHandlers.UpdateSandwich)
	protected.DELETE("/sandwiches/:id", sandwichHandlers.DeleteSandwich)
	protected.GET("/sandwiches/:id/ingredients", recipeHandlers.GetIngredients)
	protected.GET("/sandwiches/:id/availability", fulfillmentHandlers.CheckStock)

	// Recipe routes
	protected.GET("/recipes", recipeHandlers.ListRecipes)
	protected.POST("/recipes", recipeHandlers.CreateRecipe)
	protected.GET("/recipes/:id", recipeHandlers.GetRecipe)
	protected.PUT("/recipes/:id", recipeHandlers.UpdateRecipe)
	protected.DELETE("/recipes/:id", recipeHandlers.DeleteRecipe)

	// Order routes
	protected.GET("/orders", orderHandlers.ListOrders)
	protected.POST("/orders", orderHandlers.CreateOrder)
	protected.GET("/orders/:id", orderHandlers.GetOrder)
	protected.PUT("/orders/:id", orderHandlers.UpdateOrder)
	protected.DELETE("/orders/:id", orderHandlers.DeleteOrder)
	protected.GET("/orders/:id/details", orderHandlers.ListOrderItems)
	protected.POST("/orders/:id/fulfill", fulfillmentHandlers.FulfillOrder)

	// Order detail routes
	protected.GET("/order-details", orderDetailHandlers.ListOrderDetails)
	protected.POST("/order-details", orderDetailHandlers.CreateOrderDetail)
	protected.GET("/order-details/:id", orderDetailHandlers.GetOrderDetail)
	protected.PUT("/order-details/:id", orderDetailHandlers.UpdateOrderDetail)
	protected.DELETE("/order-details/:id", orderDetailHandlers.DeleteOrderDetail)

	// Session and maintenance routes
	protected.DELETE("/session", sessionHandlers.EndSession)
	protected.GET("/jobs/status", jobHandlers.GetJobStatus)
	protected.POST("/jobs/stock-alerts/run", jobHandlers.RunStockAlerts)
	protected.POST("/cache/invalidate", jobHandlers.InvalidateCache)

	// Start server
	portStr := os.Getenv("PORT")
	if portStr == "" {
		portStr = "8080"
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		log.Fatalf("Invalid port %s: %v", portStr, err)
	}

	log.Printf("Sandwichworks server v%s starting on port %d", version, port)

	e.Logger.Fatal(e.Start(fmt.Sprintf(":%d", port)))
}
