package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/swiftvtu/swiftvtu-api/internal/config"
	"github.com/swiftvtu/swiftvtu-api/internal/domain/account"
	"github.com/swiftvtu/swiftvtu-api/internal/domain/admin"
	"github.com/swiftvtu/swiftvtu-api/internal/domain/beneficiary"
	"github.com/swiftvtu/swiftvtu-api/internal/domain/funding"
	"github.com/swiftvtu/swiftvtu-api/internal/domain/notification"
	"github.com/swiftvtu/swiftvtu-api/internal/domain/purchase"
	"github.com/swiftvtu/swiftvtu-api/internal/domain/wallet"
	"github.com/swiftvtu/swiftvtu-api/internal/middleware"
	"github.com/swiftvtu/swiftvtu-api/internal/pkg/database"
	"github.com/swiftvtu/swiftvtu-api/internal/pkg/jwt"
	"github.com/swiftvtu/swiftvtu-api/internal/pkg/paystack"
	pkgresponse "github.com/swiftvtu/swiftvtu-api/internal/pkg/response"
	"github.com/swiftvtu/swiftvtu-api/internal/pkg/vtpass"
)

func main() {
	cfg := config.Load()
	setupLogger(cfg)

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Str("fulfillment_mode", cfg.FulfillmentMode).
		Msg("Starting SwiftVTU API")

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	redis, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(redis)

	jwtService := jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)

	// ---------- Repositories ----------
	accountRepo := account.NewRepository(db)
	walletRepo := wallet.NewRepository(db)
	beneficiaryRepo := beneficiary.NewRepository(db)
	notificationRepo := notification.NewRepository(db)

	// ---------- WebSocket hub ----------
	hub := notification.NewHub(redis)
	go hub.Run()
	defer hub.Shutdown()

	// ---------- Services ----------
	notificationService := notification.NewService(notificationRepo, notification.NewWSPublisher(hub))
	walletService := wallet.NewService(walletRepo)
	accountService := account.NewService(accountRepo, jwtService, redis)
	beneficiaryService := beneficiary.NewService(beneficiaryRepo)

	var fulfiller purchase.Fulfiller
	var verifier purchase.Verifier
	if cfg.IsSandbox() {
		sandbox := vtpass.NewSandbox()
		fulfiller, verifier = sandbox, sandbox
		log.Warn().Msg("Fulfillment running in sandbox mode, no real value is delivered")
	} else {
		client := vtpass.NewClient(vtpass.Config{
			BaseURL:   cfg.VTPassBaseURL,
			APIKey:    cfg.VTPassAPIKey,
			SecretKey: cfg.VTPassSecretKey,
			Timeout:   cfg.VTPassTimeout,
		})
		fulfiller, verifier = client, client
	}

	purchaseService := purchase.NewService(
		walletService,
		fulfiller,
		verifier,
		&purchasePINAdapter{accounts: accountService},
		notificationService,
	)

	paystackClient := paystack.NewClient(paystack.Config{
		BaseURL:   cfg.PaystackBaseURL,
		SecretKey: cfg.PaystackSecretKey,
	})
	fundingService := funding.NewService(
		walletService,
		paystackClient,
		accountService,
		notificationService,
		cfg.PaystackSecretKey,
		cfg.PaystackCallbackURL,
	)

	adminService := admin.NewService(accountService, walletService, notificationService)

	// ---------- Background jobs ----------
	jobCtx, jobCancel := context.WithCancel(context.Background())
	defer jobCancel()

	sweeper := wallet.NewSweeper(walletRepo, cfg.SweepPendingAfter)
	go sweeper.Start(jobCtx, cfg.SweepInterval)

	cleanup := notification.NewCleanup(notificationRepo)
	go cleanup.Start(jobCtx, 12*time.Hour)

	// ---------- Handlers ----------
	accountHandler := account.NewHandler(accountService)
	walletHandler := wallet.NewHandler(walletService)
	purchaseHandler := purchase.NewHandler(purchaseService)
	fundingHandler := funding.NewHandler(fundingService)
	beneficiaryHandler := beneficiary.NewHandler(beneficiaryService)
	notificationHandler := notification.NewHandler(notificationService, hub, cfg.AllowedOrigins)
	adminHandler := admin.NewHandler(adminService)

	authMiddleware := middleware.Auth(jwtService)
	idempotency := middleware.Idempotency(redis, cfg.IdempotencyTTL)

	// ---------- Router ----------
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))

	// WebSocket endpoint (before Compress)
	r.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		if token != "" {
			r.Header.Set("Authorization", "Bearer "+token)
		}
		authMiddleware(http.HandlerFunc(notificationHandler.WebSocket)).ServeHTTP(w, r)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		pkgresponse.OK(w, map[string]string{
			"status":  "ok",
			"version": "1.0.0",
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(chimw.Compress(5))

		r.Mount("/auth", accountHandler.AuthRoutes())
		r.Mount("/account", accountHandler.Routes(authMiddleware))
		r.Mount("/wallet", walletHandler.Routes(authMiddleware))
		r.Mount("/purchase", purchaseHandler.Routes(authMiddleware, idempotency))
		r.Mount("/funding", fundingHandler.Routes(authMiddleware, idempotency))
		r.Mount("/beneficiaries", beneficiaryHandler.Routes(authMiddleware))
		r.Mount("/notifications", notificationHandler.Routes(authMiddleware))
		r.Mount("/admin", adminHandler.Routes(authMiddleware, middleware.RequireAdmin()))
	})

	r.Post("/webhooks/paystack", fundingHandler.PaystackWebhook)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	jobCancel()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}

func setupLogger(cfg *config.Config) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: "15:04:05",
		})
	}
}

// Adapter implementations to bridge interface mismatches

// purchasePINAdapter maps account PIN errors onto the purchase flow's
// sentinels.
type purchasePINAdapter struct {
	accounts *account.Service
}

func (a *purchasePINAdapter) VerifyPIN(ctx context.Context, accountID uuid.UUID, pin string) error {
	err := a.accounts.VerifyPIN(ctx, accountID, pin)
	switch err {
	case nil:
		return nil
	case account.ErrPINRequired:
		return purchase.ErrPINRequired
	case account.ErrPINMismatch:
		return purchase.ErrInvalidPIN
	default:
		return err
	}
}
