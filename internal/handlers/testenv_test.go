package handlers

import (
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/atelierhq/atelier-api/internal/middleware"
	"github.com/atelierhq/atelier-api/internal/models"
	"github.com/atelierhq/atelier-api/internal/repository"
	"github.com/atelierhq/atelier-api/internal/services"
	"github.com/atelierhq/atelier-api/internal/token"
)

// capturedMail records one delivery a test mailer accepted.
type capturedMail struct {
	To      string
	Subject string
	Body    string
}

type captureMailer struct {
	sent []capturedMail
}

func (m *captureMailer) Send(to, subject, htmlBody string) error {
	m.sent = append(m.sent, capturedMail{To: to, Subject: subject, Body: htmlBody})
	return nil
}

// apiTestEnv wires the full route surface against an in-memory database.
type apiTestEnv struct {
	db     *gorm.DB
	router *gin.Engine
	tokens *token.Manager
	mailer *captureMailer
}

func setupAPITestEnv(t *testing.T) *apiTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.ProjectAttachment{},
		&models.ProjectUpdate{},
		&models.Task{},
		&models.ChatMessage{},
		&models.IndividualChatMessage{},
		&models.Notification{},
	)
	require.NoError(t, err)

	mail := &captureMailer{}
	logger := zap.NewNop()

	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	chatRepo := repository.NewChatRepository(db)

	tokens := token.NewManager("test-secret", 0)

	notificationRepo := repository.NewNotificationRepository(db)
	notificationService := services.NewNotificationService(notificationRepo, logger)

	authHandler := NewAuthHandler(services.NewAuthService(userRepo, tokens))
	userHandler := NewUserHandler(services.NewUserService(userRepo, mail, logger))
	projectHandler := NewProjectHandler(services.NewProjectService(projectRepo, userRepo, mail, logger))
	taskHandler := NewTaskHandler(services.NewTaskService(taskRepo, projectRepo, userRepo, notificationService))
	chatHandler := NewChatHandler(services.NewChatService(chatRepo, projectRepo, userRepo, notificationService))
	notificationHandler := NewNotificationHandler(notificationService)

	requireAuth := middleware.RequireAuth(tokens, userRepo)

	r := gin.New()
	api := r.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.GET("/me", requireAuth, authHandler.GetCurrentUser)

	users := api.Group("/users")
	users.Use(requireAuth)
	users.GET("", userHandler.List)
	users.DELETE("/:id", userHandler.Delete)
	users.POST("/onboard-client", userHandler.OnboardClient)
	users.POST("/send-client-credentials", userHandler.SendClientCredentials)

	projects := api.Group("/projects")
	projects.Use(requireAuth)
	projects.GET("", projectHandler.List)
	projects.POST("", projectHandler.Create)
	projects.GET("/:id", projectHandler.Get)
	projects.POST("/:id/approve", projectHandler.Approve)
	projects.POST("/:id/submit-quotation", projectHandler.SubmitQuotation)
	projects.POST("/:id/accept-quotation", projectHandler.AcceptQuotation)
	projects.POST("/:id/reject-quotation", projectHandler.RejectQuotation)
	projects.PUT("/:id/designers", projectHandler.SetDesigners)
	projects.GET("/:id/tasks", taskHandler.ListByProject)
	projects.POST("/:id/tasks", taskHandler.Create)
	projects.GET("/:id/messages", chatHandler.ProjectMessages)
	projects.POST("/:id/messages", chatHandler.SendProjectMessage)

	chat := api.Group("/chat")
	chat.Use(requireAuth)
	chat.GET("/conversations", chatHandler.Conversations)
	chat.GET("/direct/:id", chatHandler.DirectMessages)
	chat.POST("/direct/:id", chatHandler.SendDirectMessage)

	notifications := api.Group("/notifications")
	notifications.Use(requireAuth)
	notifications.GET("", notificationHandler.List)
	notifications.PUT("/:id/read", notificationHandler.MarkRead)
	notifications.PUT("/read-all", notificationHandler.MarkAllRead)
	notifications.DELETE("/:id", notificationHandler.Delete)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return &apiTestEnv{
		db:     db,
		router: r,
		tokens: tokens,
		mailer: mail,
	}
}

// seedUser creates an active account and returns it with a bearer token.
func (env *apiTestEnv) seedUser(t *testing.T, role models.Role, email string) (*models.User, string) {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte("supersecret"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		Email:        email,
		PasswordHash: string(hashed),
		FirstName:    "Test",
		LastName:     string(role),
		Role:         role,
		IsActive:     true,
		IsStaff:      role != models.RoleClient,
	}
	require.NoError(t, env.db.Create(user).Error)

	signed, err := env.tokens.Issue(user)
	require.NoError(t, err)

	return user, "Bearer " + signed
}

func bearer(tok string) map[string]string {
	return map[string]string{"Authorization": tok}
}
