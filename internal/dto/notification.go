package dto

import (
	"time"

	"github.com/atelierhq/atelier-api/internal/models"
)

// NotificationDTO represents a feed entry in API responses
type NotificationDTO struct {
	ID         uint64                  `json:"id"`
	Type       models.NotificationType `json:"type"`
	Title      string                  `json:"title"`
	Message    string                  `json:"message"`
	ProjectID  *uint64                 `json:"project_id,omitempty"`
	TaskID     *uint64                 `json:"task_id,omitempty"`
	SenderID   *uint64                 `json:"sender_id,omitempty"`
	SenderName string                  `json:"sender_name,omitempty"`
	IsRead     bool                    `json:"is_read"`
	CreatedAt  time.Time               `json:"created_at"`
}

// ToNotificationDTO converts a Notification model to NotificationDTO
func ToNotificationDTO(n models.Notification) NotificationDTO {
	return NotificationDTO{
		ID:         n.ID,
		Type:       n.Type,
		Title:      n.Title,
		Message:    n.Message,
		ProjectID:  n.ProjectID,
		TaskID:     n.TaskID,
		SenderID:   n.SenderID,
		SenderName: n.SenderName,
		IsRead:     n.IsRead,
		CreatedAt:  n.CreatedAt,
	}
}
