package routes

import (
	"sacco-ledger/internal/adapters/http/handlers"
	"sacco-ledger/internal/adapters/http/middleware"
	"sacco-ledger/internal/adapters/persistence/repositories"
	"sacco-ledger/internal/config"
	"sacco-ledger/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Setup wires repositories, services and handlers, and registers all
// routes. The cron service is returned for main to start and stop.
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) *services.CronService {
	// Repositories
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	memberRepo := repositories.NewMemberRepository(db)
	accountRepo := repositories.NewAccountRepository(db)
	transactionRepo := repositories.NewTransactionRepository(db)
	sequenceRepo := repositories.NewSequenceRepository(db)
	loanRepo := repositories.NewLoanRepository(db)
	productRepo := repositories.NewLoanProductRepository(db)
	dividendRepo := repositories.NewDividendRepository(db)
	governanceRepo := repositories.NewGovernanceRepository(db)
	settingsRepo := repositories.NewSettingsRepository(db)

	// Services
	settingsService := services.NewSettingsService(settingsRepo)
	authService := services.NewAuthService(userRepo, refreshTokenRepo, memberRepo, services.AuthConfig{
		JWTSecret:         cfg.JWT.Secret,
		AccessExpiryMins:  cfg.JWT.AccessTokenMins,
		RefreshExpiryDays: cfg.JWT.RefreshTokenDays,
	})
	memberService := services.NewMemberService(db, memberRepo, sequenceRepo)
	ledgerService := services.NewLedgerService(db, memberRepo, accountRepo, transactionRepo, sequenceRepo, settingsService)
	loanService := services.NewLoanService(db, loanRepo, productRepo, memberRepo, accountRepo, ledgerService, settingsService)
	dividendService := services.NewDividendService(db, dividendRepo, accountRepo, ledgerService)
	governanceService := services.NewGovernanceService(governanceRepo, memberRepo)
	reportService := services.NewReportService(memberRepo, transactionRepo, loanRepo, dividendRepo)
	cronService := services.NewCronService(loanService, ledgerService)

	// Handlers
	healthHandler := handlers.NewHealthHandler(db)
	authHandler := handlers.NewAuthHandler(authService, cfg)
	memberHandler := handlers.NewMemberHandler(memberService)
	accountHandler := handlers.NewAccountHandler(ledgerService)
	loanHandler := handlers.NewLoanHandler(loanService)
	productHandler := handlers.NewProductHandler(productRepo)
	dividendHandler := handlers.NewDividendHandler(dividendService)
	governanceHandler := handlers.NewGovernanceHandler(governanceService)
	dashboardHandler := handlers.NewDashboardHandler(reportService, settingsService)

	app.Get("/health", healthHandler.Check)

	api := app.Group("/api/v1")

	// Auth
	auth := api.Group("/auth")
	auth.Post("/register", middleware.AuthRateLimiter(), authHandler.Register)
	auth.Post("/login", middleware.AuthRateLimiter(), authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)
	auth.Post("/logout", authHandler.Logout)
	auth.Post("/logout-all", middleware.AuthMiddleware(cfg), authHandler.LogoutAll)
	auth.Get("/me", middleware.AuthMiddleware(cfg), authHandler.Me)

	// Everything below requires a valid token
	authed := api.Group("", middleware.AuthMiddleware(cfg))

	// Members
	members := authed.Group("/members")
	members.Post("/", middleware.OfficerOrAdmin(), memberHandler.Register)
	members.Get("/", middleware.OfficerOrAdmin(), memberHandler.List)
	members.Get("/number/:memberNo", memberHandler.GetByNumber)
	members.Get("/:id", memberHandler.Get)
	members.Patch("/:id/status", middleware.OfficerOrAdmin(), memberHandler.ChangeStatus)
	members.Get("/:memberId/accounts", accountHandler.ListByMember)
	members.Get("/:memberId/loans", loanHandler.ListByMember)

	// Accounts
	accounts := authed.Group("/accounts")
	accounts.Post("/", middleware.OfficerOrAdmin(), accountHandler.Open)
	accounts.Post("/transfer", accountHandler.Transfer)
	accounts.Get("/:id", accountHandler.Get)
	accounts.Post("/:id/transactions", middleware.OfficerOrAdmin(), accountHandler.Post)
	accounts.Get("/:id/statement", accountHandler.Statement)
	accounts.Post("/:id/holds", middleware.OfficerOrAdmin(), accountHandler.PlaceHold)
	accounts.Delete("/:id/holds", middleware.OfficerOrAdmin(), accountHandler.ReleaseHold)
	accounts.Delete("/:id", middleware.OfficerOrAdmin(), accountHandler.Close)

	// Loans
	loans := authed.Group("/loans")
	loans.Post("/", loanHandler.Apply)
	loans.Get("/", middleware.OfficerOrAdmin(), loanHandler.List)
	loans.Get("/:id", loanHandler.Get)
	loans.Patch("/:id/terms", middleware.OfficerOrAdmin(), loanHandler.UpdateTerms)
	loans.Post("/:id/guarantors", loanHandler.ApproveGuarantor)
	loans.Post("/:id/reject", middleware.OfficerOrAdmin(), loanHandler.Reject)
	loans.Post("/:id/disburse", middleware.OfficerOrAdmin(), loanHandler.Disburse)
	loans.Post("/:id/repayments", loanHandler.Repay)
	loans.Get("/:id/schedule", loanHandler.Schedule)

	// Loan products
	products := authed.Group("/loan-products")
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.Get)
	products.Post("/", middleware.AdminOnly(), productHandler.Create)
	products.Put("/:id", middleware.AdminOnly(), productHandler.Update)
	products.Delete("/:id", middleware.AdminOnly(), productHandler.Delete)

	// Dividends
	dividends := authed.Group("/dividends")
	dividends.Post("/", middleware.AdminOnly(), dividendHandler.Declare)
	dividends.Get("/", dividendHandler.List)
	dividends.Get("/:id", dividendHandler.Get)
	dividends.Post("/:id/distribute", middleware.AdminOnly(), dividendHandler.Distribute)
	dividends.Get("/:id/payouts", dividendHandler.ListPayouts)
	dividends.Post("/payouts/:payoutId/pay", middleware.OfficerOrAdmin(), dividendHandler.Pay)

	// Governance
	governance := authed.Group("/governance")
	governance.Post("/board", middleware.AdminOnly(), governanceHandler.Appoint)
	governance.Get("/board", governanceHandler.ListBoard)
	governance.Post("/board/:id/end-term", middleware.AdminOnly(), governanceHandler.EndTerm)
	governance.Post("/meetings", middleware.OfficerOrAdmin(), governanceHandler.ScheduleMeeting)
	governance.Get("/meetings", governanceHandler.ListMeetings)
	governance.Get("/meetings/:id", governanceHandler.GetMeeting)
	governance.Patch("/meetings/:id/minutes", middleware.OfficerOrAdmin(), governanceHandler.RecordMinutes)
	governance.Post("/meetings/:id/attendance", middleware.OfficerOrAdmin(), governanceHandler.RecordAttendance)

	// Dashboard and settings
	dashboard := authed.Group("/dashboard", middleware.OfficerOrAdmin())
	dashboard.Get("/stats", dashboardHandler.Stats)

	settings := authed.Group("/settings", middleware.AdminOnly())
	settings.Get("/", dashboardHandler.ListSettings)
	settings.Put("/", dashboardHandler.UpdateSetting)

	return cronService
}
