package main

import (
	"log"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/daansetu/daansetu_backend/config"
	"github.com/daansetu/daansetu_backend/controllers"
	"github.com/daansetu/daansetu_backend/middleware"
	"github.com/daansetu/daansetu_backend/repositories"
	"github.com/daansetu/daansetu_backend/routes"
	"github.com/daansetu/daansetu_backend/services"
	"github.com/daansetu/daansetu_backend/websocket"
)

// CustomValidator is a custom validator for Echo
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates the request body
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

func main() {
	// Load .env file
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: .env file not found")
	}

	// Commission rates must be configured before anything can be distributed
	commissionCfg, err := config.LoadCommissionConfig()
	if err != nil {
		log.Fatalf("Invalid commission configuration: %v", err)
	}

	// Connect to Redis
	redisClient := config.ConnectRedis()

	// Connect to database
	client := config.ConnectDB()
	db := client.Database(config.DBName())

	// Create WebSocket hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Create a new Echo instance
	e := echo.New()

	// Initialize custom validator
	customValidator := &CustomValidator{validator: validator.New()}
	e.Validator = customValidator

	// Initialize rate limiter
	rateLimiter := middleware.NewRateLimiter()

	// Middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.Secure())
	e.Use(rateLimiter.RateLimit())
	e.Use(middleware.SecurityHeadersWithConfig(middleware.SecurityConfig{
		AllowedDomains: []string{"*"},
		AllowInlineJS:  false,
		AllowEval:      false,
	}))

	e.Match([]string{"GET", "HEAD"}, "/", func(c echo.Context) error {
		return c.JSON(200, map[string]string{
			"status":  "OK",
			"message": "DaanSetu Backend is running",
			"version": "1.0",
		})
	})

	e.Match([]string{"GET", "HEAD"}, "/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{
			"status":   "healthy",
			"database": "connected",
		})
	})

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	referralRepo := repositories.NewReferralCodeRepository(db)
	donationRepo := repositories.NewDonationRepository(db)
	commissionRepo := repositories.NewCommissionLogRepository(db)

	// Initialize services
	referralService := services.NewReferralService(userRepo, referralRepo, redisClient)
	attributionService := services.NewAttributionService(userRepo, referralService)
	hierarchyService := services.NewHierarchyService(userRepo)
	commissionService := services.NewCommissionService(userRepo, donationRepo, commissionRepo, commissionCfg)
	gatewayService := services.NewRazorpayService()
	emailService := services.NewEmailService()

	// Initialize controllers
	authController := controllers.NewAuthController(userRepo)
	donationController := controllers.NewDonationController(donationRepo, attributionService, referralService, gatewayService, emailService, wsHub)
	referralController := controllers.NewReferralController(referralService)
	hierarchyController := controllers.NewHierarchyController(userRepo, hierarchyService, referralService)
	commissionController := controllers.NewCommissionController(commissionService, hierarchyService, donationRepo, commissionRepo, wsHub)

	// Register routes
	routes.RegisterAuthRoutes(e, authController)
	routes.RegisterDonationRoutes(e, donationController)
	routes.RegisterReferralRoutes(e, referralController)
	routes.RegisterHierarchyRoutes(e, hierarchyController)
	routes.RegisterCommissionRoutes(e, commissionController)

	// Authenticated WebSocket endpoint for the coordinator dashboard
	ws := e.Group("/api/ws")
	ws.Use(middleware.JWTMiddleware())
	ws.GET("", func(c echo.Context) error {
		userID, err := middleware.ExtractUserID(c)
		if err != nil {
			return echo.ErrUnauthorized
		}
		userObjID, err := primitive.ObjectIDFromHex(userID)
		if err != nil {
			return echo.ErrUnauthorized
		}
		return websocket.HandleWebSocket(c, wsHub, userObjID)
	})

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	e.Logger.Fatal(e.Start(":" + port))
}
