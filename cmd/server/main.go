package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/imanmolsaini/Campus-Connect-sub000/internal/config"
	"github.com/imanmolsaini/Campus-Connect-sub000/internal/database"
	"github.com/imanmolsaini/Campus-Connect-sub000/internal/handlers"
	"github.com/imanmolsaini/Campus-Connect-sub000/internal/realtime"
	"github.com/imanmolsaini/Campus-Connect-sub000/internal/repository"
	cron "github.com/imanmolsaini/Campus-Connect-sub000/internal/scheduler"
	"github.com/imanmolsaini/Campus-Connect-sub000/internal/services"
	"github.com/imanmolsaini/Campus-Connect-sub000/internal/storage"
	"github.com/imanmolsaini/Campus-Connect-sub000/pkg/email"
	"github.com/imanmolsaini/Campus-Connect-sub000/pkg/logger"
	"github.com/imanmolsaini/Campus-Connect-sub000/pkg/middleware"
	"github.com/imanmolsaini/Campus-Connect-sub000/pkg/response"
	"github.com/rs/cors"
)

func main() {
	// Load configuration from .env file
	cfg := config.LoadConfig()

	logger.InitLogger(cfg.LogLevel)
	logger.Log.Info("Logger initialized")
	response.HideInternalDetail(cfg.IsProduction())

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	store, err := database.Open(ctx, cfg.MongoURI, cfg.DBName)
	if err != nil {
		logger.Log.Fatalf("Database connection error: %v", err)
	}
	if err := store.EnsureIndexes(ctx); err != nil {
		logger.Log.Fatalf("Failed to create indexes: %v", err)
	}
	cancel()

	files, err := storage.NewFileStore(cfg.UploadDir)
	if err != nil {
		logger.Log.Fatalf("Upload directory error: %v", err)
	}

	var presence realtime.Presence = realtime.NewMemoryPresence()
	if cfg.RedisURL != "" {
		rdb, err := realtime.NewRedisClient(cfg.RedisURL)
		if err != nil {
			logger.Log.Fatalf("Invalid REDIS_URL: %v", err)
		}
		defer rdb.Close()
		presence = realtime.NewRedisPresence(rdb)
		logger.Log.Info("Presence backed by Redis")
	}

	mailer := email.NewMailer(email.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Sender:   cfg.SMTP.Sender,
		Password: cfg.SMTP.Password,
	})

	// --- Repositories ---
	userRepo := repository.NewUserRepository(store)
	friendRepo := repository.NewFriendRepository(store)
	chatRepo := repository.NewChatRepository(store)
	groupRepo := repository.NewGroupRepository(store)
	notificationRepo := repository.NewNotificationRepository(store)

	// --- Services ---
	notificationService := services.NewNotificationService(notificationRepo)
	userService := services.NewUserService(userRepo, mailer, cfg.AppBaseURL)
	friendService := services.NewFriendService(store, friendRepo, userRepo, notificationService)
	chatService := services.NewChatService(chatRepo, friendService, userRepo, files)
	groupService := services.NewGroupService(store, groupRepo, userRepo, notificationService)

	hub := realtime.NewHub()

	// --- Handlers ---
	userHandler := handlers.NewUserHandler(userService, cfg)
	friendHandler := handlers.NewFriendHandler(friendService)
	chatHandler := handlers.NewChatHandler(chatService, files, hub, cfg.MaxUploadBytes)
	realtimeHandler := handlers.NewRealtimeHandler(chatService, friendService, hub, presence, cfg.JWTSecret, cfg.AllowedOrigins)
	groupHandler := handlers.NewGroupHandler(groupService, hub)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	healthHandler := handlers.NewHealthHandler(store)

	jobs, err := cron.StartMaintenanceJobs(notificationService, presence)
	if err != nil {
		logger.Log.Fatalf("Failed to schedule jobs: %v", err)
	}

	// Initialize Gorilla Mux router
	router := mux.NewRouter()
	router.HandleFunc("/health", healthHandler.HealthHandler).Methods("GET")

	// Register User routes
	router.HandleFunc("/users/register", userHandler.RegisterUserHandler).Methods("POST")
	router.HandleFunc("/users/login", userHandler.LoginUserHandler).Methods("POST")
	router.HandleFunc("/users/verify", userHandler.VerifyEmailHandler).Methods("GET")

	// Password reset routes
	router.HandleFunc("/users/request-password-reset", userHandler.RequestPasswordResetHandler).Methods("POST")
	router.HandleFunc("/users/reset-password", userHandler.ResetPasswordHandler).Methods("POST")

	// The websocket authenticates with ?token= itself
	router.HandleFunc("/chat/ws", realtimeHandler.ChatWebSocketHandler).Methods("GET")

	authenticated := func(r *mux.Router) {
		r.Use(middleware.AuthMiddleware(cfg.JWTSecret))
		r.Use(middleware.UpdateLastActiveMiddleware(userService))
	}

	protectedUserRoutes := router.PathPrefix("/users").Subrouter()
	authenticated(protectedUserRoutes)
	protectedUserRoutes.HandleFunc("/me", userHandler.GetMeHandler).Methods("GET")
	protectedUserRoutes.HandleFunc("/me", userHandler.UpdateMeHandler).Methods("PATCH")

	// Friend routes
	protectedFriendRoutes := router.PathPrefix("/friends").Subrouter()
	authenticated(protectedFriendRoutes)
	protectedFriendRoutes.HandleFunc("/requests", friendHandler.SendFriendRequestHandler).Methods("POST")
	protectedFriendRoutes.HandleFunc("/requests", friendHandler.GetPendingRequestsHandler).Methods("GET")
	protectedFriendRoutes.HandleFunc("/requests/{id}/accept", friendHandler.AcceptRequestHandler).Methods("POST")
	protectedFriendRoutes.HandleFunc("/requests/{id}/reject", friendHandler.RejectRequestHandler).Methods("POST")
	protectedFriendRoutes.HandleFunc("", friendHandler.GetFriendsHandler).Methods("GET")
	protectedFriendRoutes.HandleFunc("/{id}", friendHandler.RemoveFriendHandler).Methods("DELETE")

	// Direct chat routes
	protectedChatRoutes := router.PathPrefix("/chat").Subrouter()
	authenticated(protectedChatRoutes)
	protectedChatRoutes.HandleFunc("/conversations", chatHandler.ListConversationsHandler).Methods("GET")
	protectedChatRoutes.HandleFunc("/presence", realtimeHandler.PresenceHandler).Methods("GET")
	protectedChatRoutes.HandleFunc("/messages/{id}/attachment", chatHandler.DownloadAttachmentHandler).Methods("GET")
	protectedChatRoutes.HandleFunc("/{friendId}/messages", chatHandler.GetMessagesHandler).Methods("GET")
	protectedChatRoutes.HandleFunc("/{friendId}/messages", chatHandler.SendMessageHandler).Methods("POST")
	protectedChatRoutes.HandleFunc("/{friendId}/read", chatHandler.MarkReadHandler).Methods("POST")

	// Group routes
	protectedGroupRoutes := router.PathPrefix("/groups").Subrouter()
	authenticated(protectedGroupRoutes)
	protectedGroupRoutes.HandleFunc("", groupHandler.CreateGroupHandler).Methods("POST")
	protectedGroupRoutes.HandleFunc("", groupHandler.ListGroupsHandler).Methods("GET")
	protectedGroupRoutes.HandleFunc("/{id}/messages", groupHandler.GetMessagesHandler).Methods("GET")
	protectedGroupRoutes.HandleFunc("/{id}/messages", groupHandler.SendMessageHandler).Methods("POST")
	protectedGroupRoutes.HandleFunc("/{id}/members", groupHandler.AddMembersHandler).Methods("POST")
	protectedGroupRoutes.HandleFunc("/{id}/leave", groupHandler.LeaveGroupHandler).Methods("POST")
	protectedGroupRoutes.HandleFunc("/{id}", groupHandler.DeleteGroupHandler).Methods("DELETE")

	// Notification routes
	protectedNotificationRoutes := router.PathPrefix("/notifications").Subrouter()
	authenticated(protectedNotificationRoutes)
	protectedNotificationRoutes.HandleFunc("", notificationHandler.GetUserNotificationsHandler).Methods("GET")
	protectedNotificationRoutes.HandleFunc("/{id}/read", notificationHandler.MarkAsReadHandler).Methods("PATCH")
	protectedNotificationRoutes.HandleFunc("/{id}", notificationHandler.DeleteNotificationHandler).Methods("DELETE")

	// Admin routes
	adminRoutes := router.PathPrefix("/admin").Subrouter()
	adminRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	adminRoutes.Use(middleware.RequireRole("admin"))
	adminRoutes.HandleFunc("/users", userHandler.AdminGetAllUsersHandler).Methods("GET")

	// Apply middleware for logging
	router.Use(middleware.LoggingMiddleware)

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           c.Handler(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Infof("Server running on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down")

	<-jobs.Stop().Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("HTTP shutdown failed")
	}
	if err := store.Close(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("Database disconnect failed")
	}
}
