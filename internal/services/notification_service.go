package services

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/atelierhq/atelier-api/internal/apperr"
	"github.com/atelierhq/atelier-api/internal/authz"
	"github.com/atelierhq/atelier-api/internal/models"
	"github.com/atelierhq/atelier-api/internal/repository"
)

// feedLimit caps how many entries a single feed fetch returns.
const feedLimit = 50

// NotificationService owns the per-account notification feed. Entries are
// produced by task and chat activity and consumed only by their recipient.
type NotificationService struct {
	notificationRepo repository.NotificationRepository
	logger           *zap.Logger
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(notificationRepo repository.NotificationRepository, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		logger:           logger,
	}
}

// List returns the actor's most recent notifications, newest first.
func (s *NotificationService) List(actor authz.Actor) ([]models.Notification, error) {
	notifications, err := s.notificationRepo.ListByUser(actor.ID, feedLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

// MarkRead marks one of the actor's notifications as read.
func (s *NotificationService) MarkRead(actor authz.Actor, id uint64) error {
	if _, err := s.findOwn(actor, id); err != nil {
		return err
	}
	if err := s.notificationRepo.MarkRead(id); err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return nil
}

// MarkAllRead marks every unread notification of the actor as read and
// reports how many were affected.
func (s *NotificationService) MarkAllRead(actor authz.Actor) (int64, error) {
	count, err := s.notificationRepo.MarkAllRead(actor.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return count, nil
}

// Delete removes one of the actor's notifications.
func (s *NotificationService) Delete(actor authz.Actor, id uint64) error {
	if _, err := s.findOwn(actor, id); err != nil {
		return err
	}
	if err := s.notificationRepo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	return nil
}

// findOwn resolves a notification that belongs to the actor. Entries of other
// accounts are indistinguishable from missing ones.
func (s *NotificationService) findOwn(actor authz.Actor, id uint64) (*models.Notification, error) {
	notification, err := s.notificationRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("notification not found")
		}
		return nil, fmt.Errorf("failed to find notification: %w", err)
	}
	if notification.UserID != actor.ID {
		return nil, apperr.NotFound("notification not found")
	}
	return notification, nil
}

// notify persists a feed entry. Delivery is best-effort: failures are logged
// and never surface to the operation that produced the entry.
func (s *NotificationService) notify(n *models.Notification) {
	if err := s.notificationRepo.Create(n); err != nil {
		s.logger.Warn("failed to create notification",
			zap.Uint64("user_id", n.UserID),
			zap.String("type", string(n.Type)),
			zap.Error(err),
		)
	}
}

// TaskAssigned notifies the assignee of a new assignment.
func (s *NotificationService) TaskAssigned(task *models.Task, project *models.Project, sender *models.User) {
	if task.AssigneeID == nil {
		return
	}
	s.notify(&models.Notification{
		UserID:     *task.AssigneeID,
		Type:       models.NotificationTaskAssigned,
		Title:      "New Task Assigned",
		Message:    fmt.Sprintf("You have been assigned a new task: %q in project %q", task.Title, project.Name),
		ProjectID:  &project.ID,
		TaskID:     &task.ID,
		SenderID:   &sender.ID,
		SenderName: sender.FullName(),
	})
}

// TaskReview notifies the project manager that a task awaits review.
func (s *NotificationService) TaskReview(task *models.Task, project *models.Project, sender *models.User) {
	if project.ManagerID == sender.ID {
		return
	}
	s.notify(&models.Notification{
		UserID:     project.ManagerID,
		Type:       models.NotificationTaskReview,
		Title:      "Task Ready for Review",
		Message:    fmt.Sprintf("%q in project %q is ready for your review", task.Title, project.Name),
		ProjectID:  &project.ID,
		TaskID:     &task.ID,
		SenderID:   &sender.ID,
		SenderName: sender.FullName(),
	})
}

// TaskCompleted notifies the assignee that their task was approved.
func (s *NotificationService) TaskCompleted(task *models.Task, project *models.Project, sender *models.User) {
	if task.AssigneeID == nil || *task.AssigneeID == sender.ID {
		return
	}
	s.notify(&models.Notification{
		UserID:     *task.AssigneeID,
		Type:       models.NotificationTaskCompleted,
		Title:      "Task Approved",
		Message:    fmt.Sprintf("Your task %q in project %q has been approved and completed", task.Title, project.Name),
		ProjectID:  &project.ID,
		TaskID:     &task.ID,
		SenderID:   &sender.ID,
		SenderName: sender.FullName(),
	})
}

// DirectMessage notifies the recipient of a new direct message.
func (s *NotificationService) DirectMessage(recipientID uint64, sender *models.User, preview string) {
	s.notify(&models.Notification{
		UserID:     recipientID,
		Type:       models.NotificationMessage,
		Title:      "New Message",
		Message:    fmt.Sprintf("%s sent you a message: %s", sender.FullName(), preview),
		SenderID:   &sender.ID,
		SenderName: sender.FullName(),
	})
}

// ProjectMessage notifies the other channel participants of a new message.
func (s *NotificationService) ProjectMessage(project *models.Project, sender *models.User, preview string) {
	recipients := append([]uint64{project.ClientID, project.ManagerID}, project.DesignerIDs()...)
	seen := map[uint64]struct{}{sender.ID: {}}
	for _, id := range recipients {
		if _, dup := seen[id]; dup || id == 0 {
			continue
		}
		seen[id] = struct{}{}
		s.notify(&models.Notification{
			UserID:     id,
			Type:       models.NotificationMessage,
			Title:      "New Project Message",
			Message:    fmt.Sprintf("%s sent a message in project %q: %s", sender.FullName(), project.Name, preview),
			ProjectID:  &project.ID,
			SenderID:   &sender.ID,
			SenderName: sender.FullName(),
		})
	}
}
