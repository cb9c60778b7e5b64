package dto

import (
	"time"

	"github.com/atelierhq/atelier-api/internal/models"
	"github.com/atelierhq/atelier-api/internal/services"
)

// ChatMessageDTO represents a project channel message in API responses
type ChatMessageDTO struct {
	ID          uint64             `json:"id"`
	ProjectID   uint64             `json:"project_id"`
	UserID      uint64             `json:"user_id"`
	User        *UserDTO           `json:"user,omitempty"`
	Message     string             `json:"message"`
	MessageType models.MessageType `json:"message_type"`
	FileName    string             `json:"file_name,omitempty"`
	FileSize    *int64             `json:"file_size,omitempty"`
	FileType    string             `json:"file_type,omitempty"`
	Timestamp   time.Time          `json:"timestamp"`
}

// DirectMessageDTO represents a direct message in API responses
type DirectMessageDTO struct {
	ID          uint64             `json:"id"`
	SenderID    uint64             `json:"sender_id"`
	RecipientID uint64             `json:"recipient_id"`
	Message     string             `json:"message"`
	MessageType models.MessageType `json:"message_type"`
	FileName    string             `json:"file_name,omitempty"`
	FileSize    *int64             `json:"file_size,omitempty"`
	FileType    string             `json:"file_type,omitempty"`
	IsRead      bool               `json:"is_read"`
	Timestamp   time.Time          `json:"timestamp"`
}

// ConversationDTO represents a direct chat thread summary
type ConversationDTO struct {
	User        UserDTO           `json:"user"`
	LastMessage *DirectMessageDTO `json:"last_message"`
	UnreadCount int64             `json:"unread_count"`
}

// ToChatMessageDTO converts a ChatMessage model to ChatMessageDTO
func ToChatMessageDTO(message models.ChatMessage) ChatMessageDTO {
	dto := ChatMessageDTO{
		ID:          message.ID,
		ProjectID:   message.ProjectID,
		UserID:      message.UserID,
		Message:     message.Message,
		MessageType: message.MessageType,
		FileName:    message.FileName,
		FileSize:    message.FileSize,
		FileType:    message.FileType,
		Timestamp:   message.CreatedAt,
	}
	if message.User.ID != 0 {
		user := ToUserDTO(message.User)
		dto.User = &user
	}
	return dto
}

// ToDirectMessageDTO converts an IndividualChatMessage model to DirectMessageDTO
func ToDirectMessageDTO(message models.IndividualChatMessage) DirectMessageDTO {
	return DirectMessageDTO{
		ID:          message.ID,
		SenderID:    message.SenderID,
		RecipientID: message.RecipientID,
		Message:     message.Message,
		MessageType: message.MessageType,
		FileName:    message.FileName,
		FileSize:    message.FileSize,
		FileType:    message.FileType,
		IsRead:      message.IsRead,
		Timestamp:   message.CreatedAt,
	}
}

// ToConversationDTO converts a conversation summary to ConversationDTO
func ToConversationDTO(conversation services.Conversation) ConversationDTO {
	dto := ConversationDTO{
		User:        ToUserDTO(conversation.User),
		UnreadCount: conversation.UnreadCount,
	}
	if conversation.LastMessage != nil {
		last := ToDirectMessageDTO(*conversation.LastMessage)
		dto.LastMessage = &last
	}
	return dto
}
