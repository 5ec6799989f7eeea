package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"questbuddy/internal/config"
	"questbuddy/internal/database"
	"questbuddy/internal/handlers"
	"questbuddy/internal/repository"
	"questbuddy/internal/service"
	"questbuddy/internal/storage"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	if err := db.EnsureSchema(); err != nil {
		log.Fatalf("Failed to ensure schema: %v", err)
	}

	// Initialize store and repositories
	store := storage.NewSQLStore(db)
	accountRepo := repository.NewAccountRepository(store, repository.DefaultFixtures())
	questRepo := repository.NewQuestRepository(store)
	rewardRepo := repository.NewRewardRepository(store)
	notificationRepo := repository.NewNotificationRepository(store)

	// Initialize services
	emailService, err := service.NewEmailService(cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.Debug)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}
	notificationService := service.NewNotificationService(notificationRepo, emailService)
	sessionService := service.NewSessionService(store, accountRepo)
	questService := service.NewQuestService(questRepo, accountRepo, sessionService, notificationService)
	rewardService := service.NewRewardService(rewardRepo, sessionService, notificationService)

	// Restore any session left over from the previous run
	sessionService.Restore(context.Background())
	log.Printf("Session restored: state=%s", sessionService.State())

	// Initialize handlers
	middleware := handlers.NewMiddleware(cfg.TokenSecret)
	authHandler := handlers.NewAuthHandler(sessionService, emailService, cfg.TokenSecret, cfg.SessionDuration)
	questHandler := handlers.NewQuestHandler(questService)
	rewardHandler := handlers.NewRewardHandler(rewardService)
	notificationHandler := handlers.NewNotificationHandler(notificationService, sessionService)

	mux := http.NewServeMux()

	// Auth routes
	mux.HandleFunc("POST /auth/login", authHandler.Login)
	mux.HandleFunc("POST /auth/register", authHandler.Register)
	mux.HandleFunc("POST /auth/child-login", authHandler.ChildLogin)
	mux.HandleFunc("POST /auth/logout", middleware.RequireToken(authHandler.Logout))
	mux.HandleFunc("GET /session", middleware.RequireToken(authHandler.Session))
	mux.HandleFunc("PUT /account", middleware.RequireToken(authHandler.UpdateAccount))

	// Child roster routes
	mux.HandleFunc("POST /children", middleware.RequireToken(authHandler.AddChild))
	mux.HandleFunc("DELETE /children/{id}", middleware.RequireToken(authHandler.RemoveChild))
	mux.HandleFunc("POST /children/{id}/select", middleware.RequireToken(authHandler.SelectChild))
	mux.HandleFunc("POST /children/{id}/regenerate-code", middleware.RequireToken(authHandler.RegenerateAccessCode))

	// Quest routes
	mux.HandleFunc("GET /quests", middleware.RequireToken(questHandler.List))
	mux.HandleFunc("POST /quests", middleware.RequireToken(questHandler.Create))
	mux.HandleFunc("POST /quests/{id}/complete", middleware.RequireToken(questHandler.Complete))
	mux.HandleFunc("POST /quests/{id}/verify", middleware.RequireToken(questHandler.Verify))
	mux.HandleFunc("DELETE /quests/{id}", middleware.RequireToken(questHandler.Delete))
	mux.HandleFunc("POST /quests/cleanup", middleware.RequireToken(questHandler.Cleanup))

	// Reward routes
	mux.HandleFunc("GET /rewards", middleware.RequireToken(rewardHandler.List))
	mux.HandleFunc("POST /rewards", middleware.RequireToken(rewardHandler.Create))
	mux.HandleFunc("POST /rewards/{id}/redeem", middleware.RequireToken(rewardHandler.Redeem))
	mux.HandleFunc("POST /rewards/{id}/deactivate", middleware.RequireToken(rewardHandler.Deactivate))

	// Notification routes
	mux.HandleFunc("GET /notifications", middleware.RequireToken(notificationHandler.List))
	mux.HandleFunc("POST /notifications/{id}/read", middleware.RequireToken(notificationHandler.MarkRead))

	// Wrap with logging middleware
	handler := handlers.Logging(mux)

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
