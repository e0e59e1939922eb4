package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"clubledger/internal/adapters/http/middleware"
	"clubledger/internal/adapters/http/routes"
	"clubledger/internal/adapters/persistence/models"
	"clubledger/internal/adapters/persistence/repositories"
	"clubledger/internal/config"
	"clubledger/internal/core/services"
	"clubledger/internal/pkg/clock"

	"github.com/gofiber/fiber/v2"

	_ "clubledger/docs" // Swagger docs
)

// @title ClubLedger API
// @version 1.0
// @description Membership billing and balance tracking for clubs
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@clubledger.local

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host api.clubledger.local
// @BasePath /api/v1
// @schemes https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	// Select the storage backend. The memory backend serves demos and
	// tests; everything behind the store interfaces behaves the same.
	var stores *repositories.Stores
	if cfg.UseMemoryStore() {
		stores = repositories.NewMemoryStores()
		log.Println("✅ In-memory storage ready")
	} else {
		db, err := config.ConnectDatabase(cfg)
		if err != nil {
			log.Fatalf("❌ Failed to connect to database: %v", err)
		}
		defer config.CloseDatabase()

		// Auto migrate (creates tables if not exist)
		if err := models.AutoMigrate(db); err != nil {
			log.Fatalf("❌ Failed to auto migrate: %v", err)
		}
		log.Println("✅ Database migration completed")

		stores = repositories.NewGormStores(db)
	}

	// Seed initial data
	if err := config.NewSeeder(stores).Run(); err != nil {
		log.Printf("⚠️ Warning: Failed to seed data: %v", err)
	}

	// Scheduled jobs: monthly fee generation + token cleanup
	clk := clock.System()
	feeService := services.NewFeeGenerationService(stores.FeeSettings, stores.Members, stores.Charges, clk)
	cronService := services.NewCronService(feeService, stores.Clubs, stores.RefreshTokens, clk)
	cronService.Start()
	defer cronService.Stop()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "ClubLedger API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	// Setup middlewares
	middleware.Setup(app, cfg)

	// Setup routes
	routes.Setup(app, stores, cfg)

	// Graceful shutdown
	go gracefulShutdown(app)

	// Start server
	log.Printf("🚀 Server starting on port %s [MODE: %s]", cfg.Port, cfg.AppMode)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("❌ Error during shutdown: %v", err)
	}
	log.Println("✅ Server stopped gracefully")
}
