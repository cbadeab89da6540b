package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/mstgnz/tinkoffpay/handler"
	"github.com/mstgnz/tinkoffpay/infra/config"
	"github.com/mstgnz/tinkoffpay/infra/logger"
	"github.com/mstgnz/tinkoffpay/infra/middle"
	"github.com/mstgnz/tinkoffpay/infra/opensearch"
	"github.com/mstgnz/tinkoffpay/infra/response"
	"github.com/mstgnz/tinkoffpay/infra/storage"
	"github.com/mstgnz/tinkoffpay/tinkoff"
)

var (
	openSearchLogger *opensearch.Logger
)

func init() {
	// Load Env
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Load Env: %v, using process environment", err)
	}
	// init conf
	_ = config.App()
	logger.InitGlobalLogger()

	// Initialize OpenSearch client and logger
	cfg := config.GetAppConfig()
	if cfg.EnableLogging {
		osClient, err := opensearch.NewClient(cfg)
		if err != nil {
			log.Printf("Failed to initialize OpenSearch client: %v", err)
			log.Println("Continuing without OpenSearch logging...")
		} else {
			openSearchLogger = opensearch.NewLogger(osClient)
			log.Println("OpenSearch logging initialized successfully")
		}
	} else {
		log.Println("OpenSearch logging is disabled")
	}
}

func main() {
	cfg := config.GetAppConfig()

	store, err := storage.NewSQLiteStore(cfg.SQLitePath)
	if err != nil {
		log.Fatalf("Failed to open payment log store: %v", err)
	}
	defer store.Close()

	if removed, err := store.Purge(cfg.LogRetentionDays); err != nil {
		log.Printf("Failed to purge old payment logs: %v", err)
	} else if removed > 0 {
		log.Printf("Purged %d payment logs older than %d days", removed, cfg.LogRetentionDays)
	}

	client := tinkoff.NewClient(cfg.Credential())
	paymentHandler := handler.NewPaymentHandler(client, config.App().Validator, store)
	healthHandler := handler.NewHealthHandler(store)

	// Chi Define Routes
	r := chi.NewRouter()

	// Basic Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(60 * time.Second))

	// Security Middleware
	r.Use(middle.PanicRecoveryMiddleware())
	r.Use(middle.SecurityHeadersMiddleware())
	r.Use(middle.IPWhitelistMiddleware())
	r.Use(middle.RequestValidationMiddleware())

	// Payment Logging Middleware
	r.Use(middle.PaymentLoggingMiddleware(store, openSearchLogger))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Origin", "X-Requested-With"},
		ExposedHeaders:   []string{"Link", "Content-Length", "Access-Control-Allow-Origin"},
		AllowCredentials: true,
		MaxAge:           300, // Preflight cache time (second)
	}))

	// Health check endpoint
	r.Get("/health", healthHandler.Check)

	// Payment routes
	r.Post("/init", paymentHandler.InitPayment)
	r.Post("/confirm", paymentHandler.ConfirmPayment)
	r.Get("/logs", paymentHandler.ListLogs)

	// Not Found
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		_ = response.WriteJSON(w, http.StatusNotFound, response.Response{Code: http.StatusNotFound, Success: false, Message: "Not Found"})
	})

	// Create a context that listens for interrupt and terminate signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           r,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 60 * time.Second,
	}

	// Run the HTTP server in a goroutine
	go func() {
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.Fatal(err.Error())
		}
	}()

	log.Println("API is running on", cfg.Port)

	// Block until a signal is received
	<-ctx.Done()

	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}
