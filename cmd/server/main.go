package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nalanda-library-system/backend/internal/audit"
	auditrepo "nalanda-library-system/backend/internal/audit/repository"
	authsvc "nalanda-library-system/backend/internal/auth/service"
	bookrepo "nalanda-library-system/backend/internal/book/repository"
	borrowrepo "nalanda-library-system/backend/internal/borrowing/repository"
	borrowsvc "nalanda-library-system/backend/internal/borrowing/service"
	"nalanda-library-system/backend/internal/config"
	"nalanda-library-system/backend/internal/db"
	reportrepo "nalanda-library-system/backend/internal/report/repository"
	reportsvc "nalanda-library-system/backend/internal/report/service"
	"nalanda-library-system/backend/internal/security"
	"nalanda-library-system/backend/internal/server"
	"nalanda-library-system/backend/internal/server/handlers"
	"nalanda-library-system/backend/internal/server/middleware"
	otelx "nalanda-library-system/backend/internal/telemetry/otel"
	userrepo "nalanda-library-system/backend/internal/user/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is not set")
	}
	encryptionKey, err := security.DecodeEncryptionKey(cfg.TokenEncryptionKey)
	if err != nil {
		log.Fatalf("TOKEN_ENCRYPTION_KEY: %v", err)
	}

	ctx := context.Background()
	providers, err := otelx.NewProviders(ctx, cfg.OTLPEndpoint, "library-backend", cfg.OTLPInsecure)
	if err != nil {
		log.Fatalf("telemetry: %v", err)
	}
	providers.SetGlobal()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			log.Printf("telemetry shutdown: %v", err)
		}
	}()

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	tokens, err := security.NewTokenCodec([]byte(cfg.JWTSecret), encryptionKey, cfg.TokenTTLDuration())
	if err != nil {
		log.Fatalf("token codec: %v", err)
	}
	hasher := security.NewHasher(cfg.BcryptCost)
	policy := cfg.LendingPolicy()

	users := userrepo.NewPostgresRepository(conn)
	books := bookrepo.NewPostgresRepository(conn)
	borrowings := borrowrepo.NewPostgresRepository(conn)
	reports := reportrepo.NewPostgresRepository(conn)
	audits := auditrepo.NewPostgresRepository(conn)

	auditLogger := audit.NewLogger(audits, middleware.GetClientIP)
	metrics, err := otelx.NewLendingMetrics(providers.MeterProvider)
	if err != nil {
		log.Fatalf("metrics: %v", err)
	}

	authService := authsvc.NewAuthService(users, hasher, tokens, auditLogger)
	lendingService := borrowsvc.NewBorrowingService(borrowings, books, users, policy, auditLogger, metrics)
	reportService := reportsvc.NewReportService(reports, policy)

	srv := server.New(server.Deps{
		Tokens:     tokens,
		Users:      users,
		Auth:       handlers.NewAuthHandler(authService, users),
		Books:      handlers.NewBookHandler(books, auditLogger),
		Borrowings: handlers.NewBorrowingHandler(lendingService, borrowings),
		Reports:    handlers.NewReportHandler(reportService),
		Audits:     handlers.NewAuditHandler(audits),
		Accounts:   handlers.NewUserHandler(users, auditLogger),
	})

	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
		if err := srv.Start(cfg.HTTPAddr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	log.Println("HTTP server stopped")
}
