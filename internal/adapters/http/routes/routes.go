package routes

import (
	"time"

	"libraryhub/internal/adapters/http/handlers"
	"libraryhub/internal/adapters/http/middleware"
	"libraryhub/internal/adapters/persistence/repositories"
	"libraryhub/internal/config"
	"libraryhub/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Services are the long-lived services built by Setup. main hands some of
// them to the background jobs.
type Services struct {
	Auth        *services.AuthService
	Users       *services.UserService
	Catalog     *services.CatalogService
	Borrowers   *services.BorrowerService
	Circulation *services.CirculationService
	Dashboard   *services.DashboardService
}

// NewServices wires repositories into services
func NewServices(db *gorm.DB, cfg *config.Config) *Services {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	bookRepo := repositories.NewBookRepository(db)
	loanRepo := repositories.NewLoanRepository(db)
	borrowerRepo := repositories.NewBorrowerRepository(db)
	runRepo := repositories.NewReconciliationRepository(db)

	// Initialize services
	return &Services{
		Auth:        services.NewAuthService(userRepo, refreshTokenRepo, cfg),
		Users:       services.NewUserService(userRepo),
		Catalog:     services.NewCatalogService(db, bookRepo, loanRepo),
		Borrowers:   services.NewBorrowerService(borrowerRepo),
		Circulation: services.NewCirculationService(db, bookRepo, loanRepo, borrowerRepo, runRepo, cfg),
		Dashboard:   services.NewDashboardService(db, bookRepo, loanRepo, cfg),
	}
}

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config, svc *Services) {
	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(db, cfg)
	authHandler := handlers.NewAuthHandler(svc.Auth, cfg)
	userHandler := handlers.NewUserHandler(svc.Users)
	catalogHandler := handlers.NewCatalogHandler(svc.Catalog)
	borrowerHandler := handlers.NewBorrowerHandler(svc.Borrowers)
	circulationHandler := handlers.NewCirculationHandler(svc.Circulation)
	dashboardHandler := handlers.NewDashboardHandler(svc.Dashboard)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	apiV1 := app.Group("/api/v1")
	apiV1.Get("/", healthHandler.APIInfo)

	// Auth routes (public) go first: the protected group below guards every
	// later route under /api/v1
	setupAuthRoutes(apiV1.Group("/auth"), authHandler, cfg)

	protected := apiV1.Group("", middleware.AuthMiddleware(cfg))

	setupProfileRoutes(protected.Group("/profile"), userHandler)
	setupUserRoutes(protected.Group("/users", middleware.AdminOnly()), userHandler)
	setupCatalogRoutes(protected, catalogHandler)
	setupBorrowerRoutes(protected, borrowerHandler)
	setupCirculationRoutes(protected, circulationHandler)

	protected.Get("/Dashboard/:schoolName", middleware.TenantGuard("schoolName"), dashboardHandler.GetDashboard)
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, cfg *config.Config) {
	// Public routes
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/refresh", handler.RefreshToken)
	router.Post("/logout", handler.Logout)

	// Protected routes
	router.Get("/me", middleware.AuthMiddleware(cfg), handler.Me)
	router.Post("/logout-all", middleware.AuthMiddleware(cfg), handler.LogoutAll)
}

// setupProfileRoutes configures the caller's own account routes
func setupProfileRoutes(router fiber.Router, handler *handlers.UserHandler) {
	router.Get("/", handler.GetProfile)
	router.Put("/", handler.UpdateProfile)
	router.Put("/password", middleware.StrictRateLimiter(), handler.ChangePassword)
}

// setupUserRoutes configures staff management routes (Admin only)
func setupUserRoutes(router fiber.Router, handler *handlers.UserHandler) {
	router.Get("/", handler.ListUsers)
	router.Post("/", handler.CreateUser)
	router.Get("/:id", handler.GetUser)
	router.Put("/:id", handler.UpdateUser)
	router.Delete("/:id", handler.DeleteUser)
}

// setupCatalogRoutes configures book routes. Reads are open to every role.
func setupCatalogRoutes(router fiber.Router, handler *handlers.CatalogHandler) {
	tenant := middleware.TenantGuard("schoolName")

	router.Get("/Books/:schoolName", tenant, handler.ListBooks)
	router.Get("/Books/:schoolName/categories", tenant, middleware.PrivateCacheHeaders(5*time.Minute), handler.ListCategories)
	router.Get("/Book/:id", handler.GetBook)

	router.Post("/Book", middleware.LibrarianOrAdmin(), handler.CreateBook)
	router.Put("/Book/:id", middleware.LibrarianOrAdmin(), handler.UpdateBook)
	router.Delete("/Book/:id", middleware.LibrarianOrAdmin(), handler.DeleteBook)
}

// setupBorrowerRoutes configures student and teacher routes
func setupBorrowerRoutes(router fiber.Router, handler *handlers.BorrowerHandler) {
	tenant := middleware.TenantGuard("schoolName")
	librarian := middleware.LibrarianOrAdmin()

	router.Get("/Students/:schoolName", tenant, handler.ListStudents)
	router.Post("/Student", librarian, handler.CreateStudent)
	router.Delete("/Student/:id", librarian, handler.DeleteStudent)

	router.Get("/Teachers/:schoolName", tenant, handler.ListTeachers)
	router.Post("/Teacher", librarian, handler.CreateTeacher)
	router.Delete("/Teacher/:id", librarian, handler.DeleteTeacher)
}

// setupCirculationRoutes configures loan and repair routes
func setupCirculationRoutes(router fiber.Router, handler *handlers.CirculationHandler) {
	librarian := middleware.LibrarianOrAdmin()

	loan := router.Group("/BookLoan", middleware.NoCacheHeaders())
	loan.Post("/issue", librarian, handler.Issue)
	loan.Get("/:id", handler.Get)
	loan.Put("/:id/return", librarian, handler.Return)
	loan.Delete("/:id", librarian, handler.Delete)

	loans := router.Group("/BookLoans/:schoolName", middleware.TenantGuard("schoolName"), middleware.NoCacheHeaders())
	loans.Get("/", handler.List)
	loans.Get("/students", handler.ListStudents)
	loans.Get("/teachers", handler.ListTeachers)
	loans.Get("/reconciliation-runs", handler.ListRuns)

	loans.Post("/cleanup", librarian, handler.Cleanup)
	loans.Post("/restore-availability", librarian, handler.RestoreAvailability)
	loans.Post("/fix-availability", librarian, handler.RestoreAvailability)
	loans.Post("/refresh-overdue", librarian, handler.RefreshOverdue)
}
