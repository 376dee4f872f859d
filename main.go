package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/spf13/viper"
	"github.com/streadway/amqp"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"aportar/internal/handlers"
	"aportar/internal/middleware"
	"aportar/internal/models"
	"aportar/internal/repositories"
	"aportar/internal/services"
	"aportar/internal/uploads"
	"aportar/pkg/rabbitmq"
)

func main() {
	// --- Configuration ---
	viper.SetDefault("APP_PORT", ":8080")
	viper.SetDefault("DB_DRIVER", "sqlite")
	viper.SetDefault("DB_DSN", "aportar.db")
	viper.SetDefault("UPLOAD_DIR", "static/uploads")
	viper.SetDefault("SESSION_SECRET", "change_me")
	viper.SetDefault("RABBITMQ_URL", "") // empty disables listing events
	viper.AutomaticEnv()

	appPort := viper.GetString("APP_PORT")
	uploadDir := viper.GetString("UPLOAD_DIR")
	sessionSecret := viper.GetString("SESSION_SECRET")
	rabbitMQURL := viper.GetString("RABBITMQ_URL")

	// --- Database ---
	var dialector gorm.Dialector
	switch driver := viper.GetString("DB_DRIVER"); driver {
	case "postgres":
		dialector = postgres.Open(viper.GetString("DB_DSN"))
	case "sqlite":
		dialector = sqlite.Open(viper.GetString("DB_DSN"))
	default:
		log.Fatalf("Unknown DB_DRIVER %q (expected sqlite or postgres)", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Listing{}); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// --- Upload directory ---
	uploadMgr, err := uploads.NewManager(uploadDir)
	if err != nil {
		log.Fatalf("Failed to initialize upload manager: %v", err)
	}

	// --- RabbitMQ (optional) ---
	var mqClient *rabbitmq.Client
	if rabbitMQURL != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: rabbitMQURL})
		if err != nil {
			// Listing events are best-effort; the platform runs without them.
			log.Printf("Warning: RabbitMQ unavailable, listing events disabled: %v", err)
			mqClient = nil
		} else {
			defer mqClient.Close()
		}
	}

	// --- Repositories ---
	userRepo := repositories.NewGormUserRepository(db)
	donationRepo := repositories.NewGormListingRepository(db, models.KindDonation)
	serviceRepo := repositories.NewGormListingRepository(db, models.KindService)
	helpRepo := repositories.NewGormListingRepository(db, models.KindHelp)

	// --- Services ---
	authService := services.NewAuthService(userRepo, sessionSecret)
	donationService := services.NewListingService(donationRepo, uploadMgr, mqClient)
	serviceService := services.NewListingService(serviceRepo, uploadMgr, mqClient)
	helpService := services.NewListingService(helpRepo, uploadMgr, mqClient)
	searchService := services.NewSearchService(userRepo, donationRepo, serviceRepo, helpRepo)

	// --- Handlers ---
	authHandler := handlers.NewAuthHandler(authService)
	donationHandler := handlers.NewListingHandler(donationService, "/donations", "donation")
	serviceHandler := handlers.NewListingHandler(serviceService, "/services", "service")
	helpHandler := handlers.NewListingHandler(helpService, "/help", "help request")
	searchHandler := handlers.NewSearchHandler(searchService)

	// --- Fiber App ---
	app := fiber.New()
	app.Use(logger.New())

	// Uploaded images are served straight from the upload directory.
	app.Static("/uploads", uploadMgr.Dir())

	// Public routes
	authHandler.RegisterRoutes(app)
	searchHandler.RegisterRoutes(app)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Protected routes
	protected := app.Group("", middleware.SessionRequired(authService))
	authHandler.RegisterProtectedRoutes(protected)
	donationHandler.RegisterRoutes(protected)
	serviceHandler.RegisterRoutes(protected)
	helpHandler.RegisterRoutes(protected)

	// --- Listing event consumer ---
	// Logs listing lifecycle events; the hook point for notifications.
	if mqClient != nil {
		go func() {
			log.Println("Starting RabbitMQ consumer for listing events...")
			messageHandler := func(msg amqp.Delivery) error {
				log.Printf("Received listing event %s: %s", msg.Type, string(msg.Body))
				return nil
			}
			if consumerErr := mqClient.ConsumeListingEvents(messageHandler); consumerErr != nil {
				log.Printf("Failed to start RabbitMQ consumer: %v", consumerErr)
			}
		}()
	}

	// --- Start HTTP Server ---
	log.Printf("Starting server on port %s", appPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(appPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}

	log.Println("Server gracefully stopped")
}
