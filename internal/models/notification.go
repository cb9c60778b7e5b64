package models

import "time"

type NotificationType string

const (
	NotificationTaskAssigned  NotificationType = "task_assigned"
	NotificationTaskReview    NotificationType = "task_review"
	NotificationTaskCompleted NotificationType = "task_completed"
	NotificationMessage       NotificationType = "message"
)

// IsValidNotificationType reports whether t is a known notification type.
func IsValidNotificationType(t NotificationType) bool {
	switch t {
	case NotificationTaskAssigned, NotificationTaskReview,
		NotificationTaskCompleted, NotificationMessage:
		return true
	}
	return false
}

// Notification is a per-account feed entry produced as a side effect of task
// and chat activity.
type Notification struct {
	ID         uint64           `gorm:"primarykey" json:"id"`
	UserID     uint64           `gorm:"not null;index" json:"user_id"`
	Type       NotificationType `gorm:"type:varchar(20);not null" json:"type"`
	Title      string           `gorm:"type:varchar(200);not null" json:"title"`
	Message    string           `gorm:"type:text;not null" json:"message"`
	ProjectID  *uint64          `json:"project_id,omitempty"`
	TaskID     *uint64          `json:"task_id,omitempty"`
	SenderID   *uint64          `json:"sender_id,omitempty"`
	SenderName string           `gorm:"type:varchar(200)" json:"sender_name,omitempty"`
	IsRead     bool             `gorm:"default:false" json:"is_read"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
