package router

import (
	"time"

	"pharmapos/internal/barcode"
	"pharmapos/internal/client"
	"pharmapos/internal/config"
	"pharmapos/internal/handler"
	"pharmapos/internal/middleware"
	"pharmapos/internal/repository"
	"pharmapos/internal/service"
	"pharmapos/internal/settings"
	"pharmapos/internal/store"
	"pharmapos/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← Client ← Engine
func New(cfg *config.Config, eng *store.Engine, st *settings.Store) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	db := client.New(eng)

	// ── Repositories ─────────────────────────────────────────────────────────
	accountRepo := repository.NewAccountRepository(db)
	productRepo := repository.NewProductRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	loanRepo := repository.NewLoanRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(accountRepo, cfg.JWTSecret, cfg.SessionHours)
	productSvc := service.NewProductService(productRepo, barcode.NewGenerator(nil))
	saleSvc := service.NewSaleService(saleRepo, productRepo, customerRepo, loanRepo, st)
	customerSvc := service.NewCustomerService(customerRepo, paymentRepo)
	notificationSvc := service.NewNotificationService(productRepo, st)
	aiSvc := service.NewAIService(db)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	productsH := handler.NewProductsHandler(productSvc)
	salesH := handler.NewSalesHandler(saleSvc, cfg.ReceiptStoragePath)
	customersH := handler.NewCustomersHandler(customerSvc, saleSvc)
	notificationsH := handler.NewNotificationsHandler(notificationSvc)
	aiH := handler.NewAIHandler(aiSvc)
	settingsH := handler.NewSettingsHandler(st)
	backupsH := handler.NewBackupsHandler(worker.BackupConfig{
		Engine:   eng,
		Settings: st,
		Dir:      cfg.BackupDir,
		Keep:     cfg.BackupKeep,
	})

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, cfg.StoreDriver))

	auth := r.Group("/v1/auth")
	{
		auth.POST("/signup", middleware.AuthRateLimiter(), authH.SignUp)
		auth.POST("/signin", middleware.AuthRateLimiter(), authH.SignIn)
	}

	// Protected routes
	v1 := r.Group("/v1", middleware.JWTAuth(authSvc))
	{
		v1.POST("/auth/signout", authH.SignOut)
		v1.GET("/auth/me", authH.Me)

		products := v1.Group("/products")
		{
			products.POST("", productsH.Create)
			products.GET("", productsH.List)
			products.GET("/barcode/:code", productsH.ByBarcode)
			products.GET("/:id", productsH.Get)
			products.PUT("/:id", productsH.Update)
			products.PATCH("/:id/restock", productsH.Restock)
			products.DELETE("/:id", productsH.Delete)
		}

		sales := v1.Group("/sales")
		{
			sales.POST("", salesH.Register)
			sales.GET("", salesH.List)
			sales.GET("/:id", salesH.Get)
			sales.GET("/:id/receipt", salesH.Receipt)
		}

		customers := v1.Group("/customers")
		{
			customers.POST("", customersH.Create)
			customers.GET("", customersH.List)
			customers.GET("/:id", customersH.Get)
			customers.DELETE("/:id", customersH.Delete)
			customers.POST("/:id/payments", customersH.Payment)
			customers.POST("/:id/debts", customersH.Debt)
			customers.GET("/:id/history", customersH.History)
			customers.GET("/:id/sales", customersH.Sales)
		}

		v1.GET("/notifications", notificationsH.List)
		v1.POST("/ai/ask", aiH.Ask)

		set := v1.Group("/settings")
		{
			set.GET("", settingsH.Get)
			set.PUT("/pharmacy", settingsH.SavePharmacy)
			set.PUT("/system", settingsH.SaveSystem)
			set.POST("/reset", settingsH.Reset)
			set.GET("/export", settingsH.Export)
			set.POST("/import", settingsH.Import)
		}

		v1.POST("/backups", backupsH.Create)
		v1.GET("/backups", backupsH.List)
		v1.POST("/backups/restore", backupsH.Restore)
	}

	// Swagger UI; only enabled outside production
	if !cfg.IsProduction() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
