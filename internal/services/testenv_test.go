package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/atelierhq/atelier-api/internal/models"
	"github.com/atelierhq/atelier-api/internal/repository"
	"github.com/atelierhq/atelier-api/internal/token"
)

var errSMTPDown = errors.New("smtp connection refused")

// sentMail records one delivery a test mailer accepted.
type sentMail struct {
	To      string
	Subject string
	Body    string
}

// captureMailer records outgoing mail instead of delivering it.
type captureMailer struct {
	sent []sentMail
	err  error
}

func (m *captureMailer) Send(to, subject, htmlBody string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: htmlBody})
	return nil
}

type serviceTestEnv struct {
	db               *gorm.DB
	mailer           *captureMailer
	userRepo         repository.UserRepository
	projectRepo      repository.ProjectRepository
	taskRepo         repository.TaskRepository
	chatRepo         repository.ChatRepository
	notificationRepo repository.NotificationRepository

	authService         *AuthService
	userService         *UserService
	projectService      *ProjectService
	taskService         *TaskService
	chatService         *ChatService
	notificationService *NotificationService
}

func setupServiceTestEnv(t *testing.T) *serviceTestEnv {
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

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	mail := &captureMailer{}
	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	chatRepo := repository.NewChatRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	logger := zap.NewNop()
	notificationService := NewNotificationService(notificationRepo, logger)

	return &serviceTestEnv{
		db:                  db,
		mailer:              mail,
		userRepo:            userRepo,
		projectRepo:         projectRepo,
		taskRepo:            taskRepo,
		chatRepo:            chatRepo,
		notificationRepo:    notificationRepo,
		authService:         NewAuthService(userRepo, token.NewManager("test-secret", 0)),
		userService:         NewUserService(userRepo, mail, logger),
		projectService:      NewProjectService(projectRepo, userRepo, mail, logger),
		taskService:         NewTaskService(taskRepo, projectRepo, userRepo, notificationService),
		chatService:         NewChatService(chatRepo, projectRepo, userRepo, notificationService),
		notificationService: notificationService,
	}
}

func (env *serviceTestEnv) createUser(t *testing.T, role models.Role, email string) *models.User {
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
	return user
}

func (env *serviceTestEnv) createProject(t *testing.T, projectType models.ProjectType, client, manager *models.User) *models.Project {
	t.Helper()

	project := &models.Project{
		Name:        fmt.Sprintf("%s build", projectType),
		Description: "test project",
		ProjectType: projectType,
		Status:      models.ProjectStatusInactive,
		ClientID:    client.ID,
		ManagerID:   manager.ID,
	}
	require.NoError(t, env.db.Create(project).Error)
	return project
}
