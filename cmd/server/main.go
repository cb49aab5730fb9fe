package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"crm-backend/internal/auth"
	"crm-backend/internal/cache"
	"crm-backend/internal/config"
	"crm-backend/internal/database"
	"crm-backend/internal/db"
	"crm-backend/internal/email"
	"crm-backend/internal/handlers"
	"crm-backend/internal/health"
	h "crm-backend/internal/http"
	"crm-backend/internal/middleware"
	"crm-backend/internal/realtime"
	"crm-backend/internal/repositories"
	"crm-backend/internal/services"
	"crm-backend/internal/storage"
)

func main() {
	port := flag.Int("port", 0, "Server port (overrides config)")
	flag.Parse()

	// Load configuration
	cfg := config.Load()
	if *port != 0 {
		cfg.Server.Port = *port
	}

	// Connect to PostgreSQL
	pool := db.Connect(cfg)
	defer pool.Close()

	// Initialize Redis cache (optional - graceful fallback if unavailable)
	if err := cache.Init(); err != nil {
		log.Printf("[Redis] Cache unavailable: %v (list caching disabled)", err)
	} else {
		log.Println("[Redis] Cache connected successfully")
	}

	// Run database migrations
	migrator := database.NewMigrator(pool)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := migrator.RunMigrations(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize health checker
	healthChecker := health.NewHealthChecker(pool)

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg)

	// Start the realtime change feed hub
	hub := realtime.NewHub()
	go hub.Run()

	// Initialize repositories
	userRepo := repositories.NewUserRepository(pool)
	customerRepo := repositories.NewCustomerRepository(pool)
	requestRepo := repositories.NewRequestRepository(pool)
	quoteRepo := repositories.NewQuoteRepository(pool)
	jobRepo := repositories.NewJobRepository(pool)
	invoiceRepo := repositories.NewInvoiceRepository(pool)
	paymentIntentRepo := repositories.NewPaymentIntentRepository(pool)
	sentEmailRepo := repositories.NewSentEmailRepository(pool)

	// Use the HTTP email API in production, MockService when no API key is set
	var emailService email.Provider
	if cfg.Email.APIKey != "" {
		emailService = email.NewAPIService(cfg)
	} else {
		log.Println("WARNING: EMAIL_API_KEY not set, using mock email (messages only print to logs)")
		emailService = email.NewMockService()
	}
	emailService.SetLogRepository(sentEmailRepo)

	// Optional S3 archival for CSV imports
	archiver := storage.NewArchiver(cfg)
	if archiver == nil {
		log.Println("[Storage] Import archival disabled (no bucket configured)")
	}

	// Initialize services
	userService := services.NewUserService(userRepo, jwtManager)
	customerService := services.NewCustomerService(customerRepo, hub)
	importService := services.NewImportService(customerRepo)
	quoteService := services.NewQuoteService(quoteRepo, customerRepo, jobRepo, emailService, hub)
	requestService := services.NewRequestService(requestRepo, customerRepo, quoteService, hub)
	jobService := services.NewJobService(jobRepo, customerRepo, hub)
	invoiceService := services.NewInvoiceService(invoiceRepo, customerRepo, emailService, hub)
	paymentService := services.NewPaymentService(paymentIntentRepo, invoiceRepo, hub, cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, userRepo)
	corsMiddleware := middleware.NewCORS(cfg)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService)
	customerHandler := handlers.NewCustomerHandler(customerService)
	importHandler := handlers.NewImportHandler(importService, archiver)
	requestHandler := handlers.NewRequestHandler(requestService)
	quoteHandler := handlers.NewQuoteHandler(quoteService)
	jobHandler := handlers.NewJobHandler(jobService)
	invoiceHandler := handlers.NewInvoiceHandler(invoiceService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	realtimeHandler := handlers.NewRealtimeHandler(hub)
	healthHandler := handlers.NewHealthHandler(healthChecker)

	router := h.NewRouter(
		authHandler,
		customerHandler,
		importHandler,
		requestHandler,
		quoteHandler,
		jobHandler,
		invoiceHandler,
		paymentHandler,
		realtimeHandler,
		healthHandler,
		authMiddleware,
	)

	// Wrap with panic recovery and metrics middleware
	handler := middleware.PanicRecovery(middleware.MetricsMiddleware(corsMiddleware(router)))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Server running on %s", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
