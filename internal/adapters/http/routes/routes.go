package routes

import (
	"time"

	"clubledger/internal/adapters/http/handlers"
	"clubledger/internal/adapters/http/middleware"
	"clubledger/internal/adapters/persistence/repositories"
	"clubledger/internal/config"
	"clubledger/internal/core/services"
	"clubledger/internal/pkg/clock"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
)

// Setup configures all routes for the application. Stores carries the
// selected storage backend, so nothing below this line knows whether it
// runs on MySQL or in memory.
func Setup(app *fiber.App, stores *repositories.Stores, cfg *config.Config) {
	clk := clock.System()

	// Initialize services
	authService := services.NewAuthService(stores.Users, stores.RefreshTokens, stores.Members, stores.Clubs, cfg)
	userService := services.NewUserService(stores.Users, stores.Clubs)
	clubService := services.NewClubService(stores.Clubs)
	memberService := services.NewMemberService(stores.Members, stores.Clubs, clk)
	settingsService := services.NewFeeSettingsService(stores.FeeSettings, stores.Clubs)
	feeService := services.NewFeeGenerationService(stores.FeeSettings, stores.Members, stores.Charges, clk)
	chargeService := services.NewChargeService(stores.Charges, stores.Members, stores.Clubs, clk)
	balanceService := services.NewBalanceService(stores.Charges, stores.Members, stores.Clubs, clk)
	notifyService := services.NewNotificationService()
	dashboardService := services.NewDashboardService(stores.Clubs, stores.Members, stores.Charges, stores.Users, notifyService, clk)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(cfg.Storage.Backend)
	authHandler := handlers.NewAuthHandler(authService, cfg)
	userHandler := handlers.NewUserHandler(userService)
	clubHandler := handlers.NewClubHandler(clubService)
	memberHandler := handlers.NewMemberHandler(memberService)
	billingHandler := handlers.NewBillingHandler(settingsService, feeService, chargeService)
	balanceHandler := handlers.NewBalanceHandler(balanceService, memberService, notifyService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	apiV1 := app.Group("/api/v1")
	setupAPIV1Routes(apiV1, healthHandler, authHandler, userHandler, clubHandler,
		memberHandler, billingHandler, balanceHandler, dashboardHandler, cfg)
}

// setupAPIV1Routes configures API v1 routes
func setupAPIV1Routes(
	router fiber.Router,
	healthHandler *handlers.HealthHandler,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	clubHandler *handlers.ClubHandler,
	memberHandler *handlers.MemberHandler,
	billingHandler *handlers.BillingHandler,
	balanceHandler *handlers.BalanceHandler,
	dashboardHandler *handlers.DashboardHandler,
	cfg *config.Config,
) {
	// API Info
	router.Get("/", healthHandler.APIInfo)

	// Auth routes (public)
	authRoutes := router.Group("/auth")
	setupAuthRoutes(authRoutes, authHandler, cfg)

	// User management routes (Admin only)
	userRoutes := router.Group("/users")
	userRoutes.Use(middleware.AuthMiddleware(cfg))
	userRoutes.Use(middleware.AdminOnly())
	setupUserRoutes(userRoutes, userHandler)

	// Profile routes (Authenticated users)
	profileRoutes := router.Group("/profile")
	profileRoutes.Use(middleware.AuthMiddleware(cfg))
	setupProfileRoutes(profileRoutes, userHandler)

	// Club routes (Authenticated users, writes Admin only)
	clubRoutes := router.Group("/clubs")
	clubRoutes.Use(middleware.AuthMiddleware(cfg))
	clubRoutes.Use(middleware.PrivateCacheHeaders(5 * time.Minute))
	setupClubRoutes(clubRoutes, clubHandler)

	// Roster routes (Treasurer/Admin)
	memberRoutes := router.Group("/members")
	memberRoutes.Use(middleware.AuthMiddleware(cfg))
	memberRoutes.Use(middleware.TreasurerOrAdmin())
	setupMemberRoutes(memberRoutes, memberHandler)

	// Billing routes (Treasurer/Admin)
	billingRoutes := router.Group("/billing")
	billingRoutes.Use(middleware.AuthMiddleware(cfg))
	billingRoutes.Use(middleware.TreasurerOrAdmin())
	setupBillingRoutes(billingRoutes, billingHandler)

	// Balance routes (Treasurer/Admin, always fresh)
	balanceRoutes := router.Group("/balances")
	balanceRoutes.Use(middleware.AuthMiddleware(cfg))
	balanceRoutes.Use(middleware.TreasurerOrAdmin())
	balanceRoutes.Use(middleware.NoCacheHeaders())
	setupBalanceRoutes(balanceRoutes, balanceHandler)

	// Dashboard routes (always fresh)
	dashboardRoutes := router.Group("/dashboard")
	dashboardRoutes.Use(middleware.AuthMiddleware(cfg))
	dashboardRoutes.Use(middleware.NoCacheHeaders())
	setupDashboardRoutes(dashboardRoutes, dashboardHandler)
}

// setupAuthRoutes configures authentication routes
// Register and login sit behind the auth rate limiter (5 req/min/IP)
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, cfg *config.Config) {
	// Public routes
	router.Post("/register", middleware.AuthRateLimiter(), handler.Register)
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/refresh", handler.RefreshToken)
	router.Post("/logout", handler.Logout)

	// Protected routes
	router.Get("/me", middleware.AuthMiddleware(cfg), handler.Me)
	router.Post("/logout-all", middleware.AuthMiddleware(cfg), handler.LogoutAll)
}

// setupUserRoutes configures user management routes (Admin only)
func setupUserRoutes(router fiber.Router, handler *handlers.UserHandler) {
	router.Get("/", handler.ListUsers)
	router.Get("/:id", handler.GetUser)
	router.Put("/:id", handler.UpdateUser)
	router.Delete("/:id", handler.DeleteUser)
	router.Put("/:id/role", handler.SetUserRole)
}

// setupProfileRoutes configures profile routes (Authenticated)
func setupProfileRoutes(router fiber.Router, handler *handlers.UserHandler) {
	router.Get("/", handler.GetProfile)
	router.Put("/", handler.UpdateProfile)
	router.Put("/password", handler.ChangePassword)
}

// setupClubRoutes configures club routes
func setupClubRoutes(router fiber.Router, handler *handlers.ClubHandler) {
	// Any authenticated user can view a club
	router.Get("/:id", handler.GetClub)

	// Admin only
	adminRoutes := router.Group("")
	adminRoutes.Use(middleware.AdminOnly())
	adminRoutes.Get("/", handler.ListClubs)
	adminRoutes.Post("/", handler.CreateClub)
	adminRoutes.Put("/:id", handler.UpdateClub)
	adminRoutes.Delete("/:id", handler.DeleteClub)
}

// setupMemberRoutes configures roster routes (Treasurer/Admin)
func setupMemberRoutes(router fiber.Router, handler *handlers.MemberHandler) {
	router.Get("/", handler.ListMembers)
	router.Get("/eligible", handler.ListEligibleMembers)
	router.Get("/:id", handler.GetMember)
	router.Post("/", handler.CreateMember)
	router.Put("/:id", handler.UpdateMember)
	router.Put("/:id/approval", handler.SetApproval)
	router.Delete("/:id", handler.DeleteMember)
}

// setupBillingRoutes configures billing routes (Treasurer/Admin)
func setupBillingRoutes(router fiber.Router, handler *handlers.BillingHandler) {
	// Fee settings
	router.Get("/settings", handler.GetFeeSettings)
	router.Put("/settings", handler.UpdateFeeSettings)

	// Fee generation (3 req/min/IP, reruns only skip anyway)
	router.Post("/generate", middleware.StrictRateLimiter(), handler.GenerateFees)

	// Charges
	router.Get("/charges", handler.ListCharges)
	router.Post("/charges", handler.CreateCharge)
	router.Get("/charges/:id", handler.GetCharge)
	router.Get("/members/:id/charges", handler.ListMemberCharges)

	// Payments
	router.Post("/payments", handler.RecordPayment)
	router.Get("/members/:id/payments", handler.ListMemberPayments)
}

// setupBalanceRoutes configures balance routes (Treasurer/Admin)
func setupBalanceRoutes(router fiber.Router, handler *handlers.BalanceHandler) {
	router.Get("/", handler.GetAllBalances)
	router.Get("/members/:id", handler.GetMemberBalance)
	router.Get("/members/:id/message", handler.GetBalanceMessage)
}

// setupDashboardRoutes configures dashboard routes
func setupDashboardRoutes(router fiber.Router, handler *handlers.DashboardHandler) {
	// Auto-detect role dashboard (All authenticated users)
	router.Get("/", handler.GetMyDashboard)

	// Treasury dashboard (Treasurer/Admin only)
	router.Get("/treasury", middleware.TreasurerOrAdmin(), handler.GetTreasuryDashboard)

	// Member dashboard by ID (Treasurer/Admin only)
	router.Get("/members/:id", middleware.TreasurerOrAdmin(), handler.GetMemberDashboard)

	// Admin dashboard (Admin only)
	router.Get("/admin", middleware.AdminOnly(), handler.GetAdminDashboard)
}
