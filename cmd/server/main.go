package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/atelierhq/atelier-api/internal/config"
	"github.com/atelierhq/atelier-api/internal/database"
	"github.com/atelierhq/atelier-api/internal/handlers"
	"github.com/atelierhq/atelier-api/internal/logger"
	"github.com/atelierhq/atelier-api/internal/mailer"
	"github.com/atelierhq/atelier-api/internal/middleware"
	"github.com/atelierhq/atelier-api/internal/repository"
	"github.com/atelierhq/atelier-api/internal/services"
	"github.com/atelierhq/atelier-api/internal/token"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zapLogger, err := logger.New(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	gin.SetMode(cfg.Server.Mode)

	if err := database.Connect(cfg); err != nil {
		zapLogger.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := database.Migrate(); err != nil {
		zapLogger.Fatal("failed to run migrations", zap.Error(err))
	}

	db := database.GetDB()
	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	chatRepo := repository.NewChatRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	tokens := token.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	mail := mailer.NewSMTP(cfg.SMTP)

	authService := services.NewAuthService(userRepo, tokens)
	userService := services.NewUserService(userRepo, mail, zapLogger)
	projectService := services.NewProjectService(projectRepo, userRepo, mail, zapLogger)
	notificationService := services.NewNotificationService(notificationRepo, zapLogger)
	taskService := services.NewTaskService(taskRepo, projectRepo, userRepo, notificationService)
	chatService := services.NewChatService(chatRepo, projectRepo, userRepo, notificationService)

	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	projectHandler := handlers.NewProjectHandler(projectService)
	taskHandler := handlers.NewTaskHandler(taskService)
	chatHandler := handlers.NewChatHandler(chatService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.CORS())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	requireAuth := middleware.RequireAuth(tokens, userRepo)

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", requireAuth, authHandler.Logout)
			auth.GET("/me", requireAuth, authHandler.GetCurrentUser)
			auth.PUT("/profile", requireAuth, authHandler.UpdateProfile)
			auth.POST("/change-password", requireAuth, authHandler.ChangePassword)
		}

		users := api.Group("/users")
		{
			users.GET("/check-email/:email", userHandler.CheckEmail)

			users.Use(requireAuth)
			users.GET("", userHandler.List)
			users.GET("/roles", userHandler.ListRoles)
			users.POST("", userHandler.Create)
			users.GET("/:id", userHandler.Get)
			users.PATCH("/:id", userHandler.Update)
			users.DELETE("/:id", userHandler.Delete)
			users.POST("/:id/set-password", userHandler.SetPassword)
			users.POST("/:id/profile-pic", userHandler.SetProfilePic)
			users.POST("/send-mail", userHandler.SendMail)
			users.POST("/onboard-client", userHandler.OnboardClient)
			users.POST("/send-client-credentials", userHandler.SendClientCredentials)
		}

		projects := api.Group("/projects")
		projects.Use(requireAuth)
		{
			projects.GET("", projectHandler.List)
			projects.POST("", projectHandler.Create)
			projects.GET("/:id", projectHandler.Get)
			projects.PATCH("/:id", projectHandler.Update)
			projects.DELETE("/:id", projectHandler.Delete)
			projects.POST("/:id/approve", projectHandler.Approve)
			projects.POST("/:id/reject", projectHandler.Reject)
			projects.POST("/:id/submit-quotation", projectHandler.SubmitQuotation)
			projects.POST("/:id/accept-quotation", projectHandler.AcceptQuotation)
			projects.POST("/:id/reject-quotation", projectHandler.RejectQuotation)
			projects.PUT("/:id/designers", projectHandler.SetDesigners)
			projects.PUT("/:id/attachments", projectHandler.ReplaceAttachments)
			projects.GET("/:id/updates", projectHandler.ListUpdates)
			projects.POST("/:id/updates", projectHandler.CreateUpdate)
			projects.GET("/:id/tasks", taskHandler.ListByProject)
			projects.POST("/:id/tasks", taskHandler.Create)
			projects.GET("/:id/messages", chatHandler.ProjectMessages)
			projects.POST("/:id/messages", chatHandler.SendProjectMessage)
		}

		tasks := api.Group("/tasks")
		tasks.Use(requireAuth)
		{
			tasks.GET("/:id", taskHandler.Get)
			tasks.PUT("/:id", taskHandler.Update)
		}

		chat := api.Group("/chat")
		chat.Use(requireAuth)
		{
			chat.GET("/conversations", chatHandler.Conversations)
			chat.GET("/direct/:id", chatHandler.DirectMessages)
			chat.POST("/direct/:id", chatHandler.SendDirectMessage)
		}

		notifications := api.Group("/notifications")
		notifications.Use(requireAuth)
		{
			notifications.GET("", notificationHandler.List)
			notifications.PUT("/:id/read", notificationHandler.MarkRead)
			notifications.PUT("/read-all", notificationHandler.MarkAllRead)
			notifications.DELETE("/:id", notificationHandler.Delete)
		}
	}

	srv := &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:     r,
		ReadTimeout: cfg.Server.ReadTimeout,
	}

	go func() {
		zapLogger.Info("server starting", zap.Int("port", cfg.Server.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("forced shutdown", zap.Error(err))
	}
}
