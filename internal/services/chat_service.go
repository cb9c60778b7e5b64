package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/atelierhq/atelier-api/internal/apperr"
	"github.com/atelierhq/atelier-api/internal/authz"
	"github.com/atelierhq/atelier-api/internal/models"
	"github.com/atelierhq/atelier-api/internal/repository"
)

// ChatService owns the project channels and direct message threads.
type ChatService struct {
	chatRepo      repository.ChatRepository
	projectRepo   repository.ProjectRepository
	userRepo      repository.UserRepository
	notifications *NotificationService
}

// NewChatService creates a new ChatService.
func NewChatService(chatRepo repository.ChatRepository, projectRepo repository.ProjectRepository, userRepo repository.UserRepository, notifications *NotificationService) *ChatService {
	return &ChatService{
		chatRepo:      chatRepo,
		projectRepo:   projectRepo,
		userRepo:      userRepo,
		notifications: notifications,
	}
}

// ProjectMessages returns a project's channel history, oldest first.
func (s *ChatService) ProjectMessages(actor authz.Actor, projectID uint64) ([]models.ChatMessage, error) {
	if _, err := s.checkProjectChannel(actor, projectID, authz.ActionView); err != nil {
		return nil, err
	}
	messages, err := s.chatRepo.ListProjectMessages(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list project messages: %w", err)
	}
	return messages, nil
}

// SendMessageInput represents an outgoing chat message.
type SendMessageInput struct {
	Message     string
	MessageType string
	FileName    string
	FileSize    *int64
	FileType    string
}

func (in *SendMessageInput) validate() (models.MessageType, error) {
	if strings.TrimSpace(in.Message) == "" {
		return "", apperr.Validation("message is required")
	}
	messageType := models.MessageType(in.MessageType)
	if in.MessageType == "" {
		messageType = models.MessageTypeText
	}
	if !models.IsValidMessageType(messageType) {
		return "", apperr.Validation("unknown message type")
	}
	return messageType, nil
}

// SendProjectMessage posts a message to the project channel.
func (s *ChatService) SendProjectMessage(actor authz.Actor, projectID uint64, input SendMessageInput) (*models.ChatMessage, error) {
	project, err := s.checkProjectChannel(actor, projectID, authz.ActionCreate)
	if err != nil {
		return nil, err
	}
	messageType, err := input.validate()
	if err != nil {
		return nil, err
	}

	message := &models.ChatMessage{
		ProjectID:   projectID,
		UserID:      actor.ID,
		Message:     input.Message,
		MessageType: messageType,
		FileName:    input.FileName,
		FileSize:    input.FileSize,
		FileType:    input.FileType,
	}
	if err := s.chatRepo.CreateProjectMessage(message); err != nil {
		return nil, fmt.Errorf("failed to send project message: %w", err)
	}

	if sender, err := s.userRepo.FindByID(actor.ID); err == nil {
		s.notifications.ProjectMessage(project, sender, messagePreview(input.Message))
	}
	return message, nil
}

// DirectMessages returns the two-way thread with the other account, oldest
// first, and marks the other side's messages as read.
func (s *ChatService) DirectMessages(actor authz.Actor, otherID uint64) ([]models.IndividualChatMessage, error) {
	if !authz.Can(actor, authz.ActionView, authz.Resource{Kind: authz.KindDirectChat}) {
		return nil, apperr.PermissionDenied("not allowed to use direct chat")
	}
	if _, err := s.findAccount(otherID); err != nil {
		return nil, err
	}

	messages, err := s.chatRepo.ListDirectMessages(actor.ID, otherID)
	if err != nil {
		return nil, fmt.Errorf("failed to list direct messages: %w", err)
	}

	// Fetching the thread is the read receipt.
	if err := s.chatRepo.MarkRead(otherID, actor.ID); err != nil {
		return nil, fmt.Errorf("failed to mark messages read: %w", err)
	}
	for i := range messages {
		if messages[i].RecipientID == actor.ID {
			messages[i].IsRead = true
		}
	}
	return messages, nil
}

// SendDirectMessage sends a message to another account.
func (s *ChatService) SendDirectMessage(actor authz.Actor, recipientID uint64, input SendMessageInput) (*models.IndividualChatMessage, error) {
	if !authz.Can(actor, authz.ActionCreate, authz.Resource{Kind: authz.KindDirectChat}) {
		return nil, apperr.PermissionDenied("not allowed to use direct chat")
	}
	if recipientID == actor.ID {
		return nil, apperr.Validation("cannot message yourself")
	}
	if _, err := s.findAccount(recipientID); err != nil {
		return nil, err
	}
	messageType, err := input.validate()
	if err != nil {
		return nil, err
	}

	message := &models.IndividualChatMessage{
		SenderID:    actor.ID,
		RecipientID: recipientID,
		Message:     input.Message,
		MessageType: messageType,
		FileName:    input.FileName,
		FileSize:    input.FileSize,
		FileType:    input.FileType,
	}
	if err := s.chatRepo.CreateDirectMessage(message); err != nil {
		return nil, fmt.Errorf("failed to send direct message: %w", err)
	}

	if sender, err := s.userRepo.FindByID(actor.ID); err == nil {
		s.notifications.DirectMessage(recipientID, sender, messagePreview(input.Message))
	}
	return message, nil
}

// Conversation is a direct chat thread summary.
type Conversation struct {
	User        models.User
	LastMessage *models.IndividualChatMessage
	UnreadCount int64
}

// Conversations returns the actor's direct chat threads, most recently
// active first, with per-thread unread counts.
func (s *ChatService) Conversations(actor authz.Actor) ([]Conversation, error) {
	if !authz.Can(actor, authz.ActionList, authz.Resource{Kind: authz.KindDirectChat}) {
		return nil, apperr.PermissionDenied("not allowed to use direct chat")
	}

	counterparts, err := s.chatRepo.CounterpartIDs(actor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list counterparts: %w", err)
	}

	conversations := make([]Conversation, 0, len(counterparts))
	for _, otherID := range counterparts {
		other, err := s.userRepo.FindByID(otherID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, fmt.Errorf("failed to find counterpart: %w", err)
		}

		last, err := s.chatRepo.LastMessageBetween(actor.ID, otherID)
		if err != nil {
			return nil, fmt.Errorf("failed to find last message: %w", err)
		}
		unread, err := s.chatRepo.UnreadCount(otherID, actor.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to count unread messages: %w", err)
		}

		conversations = append(conversations, Conversation{
			User:        *other,
			LastMessage: last,
			UnreadCount: unread,
		})
	}

	sort.Slice(conversations, func(i, j int) bool {
		return lastActivity(conversations[i]).After(lastActivity(conversations[j]))
	})
	return conversations, nil
}

func lastActivity(c Conversation) time.Time {
	if c.LastMessage == nil {
		return time.Time{}
	}
	return c.LastMessage.CreatedAt
}

// checkProjectChannel verifies the actor may act on the project's channel and
// returns the project for further use.
func (s *ChatService) checkProjectChannel(actor authz.Actor, projectID uint64, action authz.Action) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(projectID, "Designers")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("project not found")
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	if !authz.Can(actor, action, projectResource(authz.KindProjectChat, project)) {
		return nil, apperr.PermissionDenied("not a participant of this project's chat")
	}
	return project, nil
}

// messagePreview shortens a message for a notification body.
func messagePreview(message string) string {
	const max = 80
	runes := []rune(message)
	if len(runes) <= max {
		return message
	}
	return string(runes[:max]) + "..."
}

func (s *ChatService) findAccount(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}
