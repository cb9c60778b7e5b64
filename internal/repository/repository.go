package repository

import (
	"github.com/atelierhq/atelier-api/internal/models"
)

// UserFilter holds filtering options for listing accounts
type UserFilter struct {
	// Role narrows to a single requested role.
	Role *models.Role
	// VisibleRoles restricts results to the roles the actor may see; nil
	// means unrestricted.
	VisibleRoles []models.Role
	// Search matches name, email, or company, case-insensitively.
	Search   string
	Page     int
	PageSize int
}

// UserRepository defines the interface for account data access
type UserRepository interface {
	Create(user *models.User) error
	FindByID(id uint64) (*models.User, error)
	FindByEmail(email string) (*models.User, error)
	EmailExists(email string) (bool, error)
	Update(user *models.User) error

	// Delete removes the account and applies the relation policies: projects
	// where it is client or manager cascade, task assignments are nullified.
	Delete(id uint64) error

	List(filter UserFilter) ([]models.User, int64, error)

	// CountByRoles counts users whose id is in ids and whose role is one of roles.
	CountByRoles(ids []uint64, roles []models.Role) (int64, error)

	// FindLeastLoadedManager returns the active project manager with the
	// fewest open projects, ties broken by lowest id.
	FindLeastLoadedManager() (*models.User, error)
}

// ProjectFilter holds filtering options for listing projects
type ProjectFilter struct {
	Status *models.ProjectStatus
	// Exactly one of the scoping fields is set for non-admin actors.
	ClientID   *uint64
	ManagerID  *uint64
	DesignerID *uint64
	Page       int
	PageSize   int
}

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	Create(project *models.Project) error
	FindByID(id uint64, preload ...string) (*models.Project, error)
	List(filter ProjectFilter) ([]models.Project, int64, error)
	Update(project *models.Project) error
	Delete(id uint64) error

	// ReplaceDesigners replaces the project's designer set wholesale.
	ReplaceDesigners(projectID uint64, designerIDs []uint64) error

	// ReplaceAttachments deletes all current attachments and creates the
	// provided ones in a single transaction.
	ReplaceAttachments(projectID uint64, attachments []models.ProjectAttachment) error

	ListUpdates(projectID uint64) ([]models.ProjectUpdate, error)
	CreateUpdate(update *models.ProjectUpdate) error
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	Create(task *models.Task) error
	FindByID(id uint64, preload ...string) (*models.Task, error)
	ListByProject(projectID uint64) ([]models.Task, error)
	Update(task *models.Task) error
}

// ChatRepository defines the interface for chat data access
type ChatRepository interface {
	ListProjectMessages(projectID uint64) ([]models.ChatMessage, error)
	CreateProjectMessage(message *models.ChatMessage) error

	// ListDirectMessages returns the two-way thread between userID and
	// otherID ordered by timestamp ascending.
	ListDirectMessages(userID, otherID uint64) ([]models.IndividualChatMessage, error)
	CreateDirectMessage(message *models.IndividualChatMessage) error

	// MarkRead marks all unread messages from senderID to recipientID as read.
	MarkRead(senderID, recipientID uint64) error

	// CounterpartIDs returns every account id the user has exchanged direct
	// messages with.
	CounterpartIDs(userID uint64) ([]uint64, error)
	LastMessageBetween(userID, otherID uint64) (*models.IndividualChatMessage, error)
	UnreadCount(senderID, recipientID uint64) (int64, error)
}

// NotificationRepository defines the interface for notification data access
type NotificationRepository interface {
	Create(notification *models.Notification) error
	FindByID(id uint64) (*models.Notification, error)

	// ListByUser returns the account's most recent notifications, newest
	// first, capped at limit.
	ListByUser(userID uint64, limit int) ([]models.Notification, error)

	MarkRead(id uint64) error

	// MarkAllRead marks every unread notification of the account as read and
	// returns how many rows changed.
	MarkAllRead(userID uint64) (int64, error)

	Delete(id uint64) error
}
