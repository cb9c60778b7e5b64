package models

import "time"

type MessageType string

const (
	MessageTypeText  MessageType = "text"
	MessageTypeFile  MessageType = "file"
	MessageTypeImage MessageType = "image"
)

// IsValidMessageType reports whether t is a known chat message type.
func IsValidMessageType(t MessageType) bool {
	return t == MessageTypeText || t == MessageTypeFile || t == MessageTypeImage
}

// ChatMessage is a message in a project-scoped channel.
type ChatMessage struct {
	ID          uint64      `gorm:"primarykey" json:"id"`
	ProjectID   uint64      `gorm:"not null;index" json:"project_id"`
	UserID      uint64      `gorm:"not null" json:"user_id"`
	Message     string      `gorm:"type:text;not null" json:"message"`
	MessageType MessageType `gorm:"type:varchar(10);not null;default:'text'" json:"message_type"`

	FileName string `gorm:"type:varchar(255)" json:"file_name"`
	FileSize *int64 `json:"file_size"`
	FileType string `gorm:"type:varchar(100)" json:"file_type"`

	CreatedAt time.Time `json:"timestamp"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
}

// IndividualChatMessage is a direct message between two accounts. IsRead is
// flipped when the recipient fetches the thread.
type IndividualChatMessage struct {
	ID          uint64      `gorm:"primarykey" json:"id"`
	SenderID    uint64      `gorm:"not null;index" json:"sender_id"`
	RecipientID uint64      `gorm:"not null;index" json:"recipient_id"`
	Message     string      `gorm:"type:text;not null" json:"message"`
	MessageType MessageType `gorm:"type:varchar(10);not null;default:'text'" json:"message_type"`

	FileName string `gorm:"type:varchar(255)" json:"file_name"`
	FileSize *int64 `json:"file_size"`
	FileType string `gorm:"type:varchar(100)" json:"file_type"`

	IsRead    bool      `gorm:"not null;default:false" json:"is_read"`
	CreatedAt time.Time `json:"timestamp"`

	Sender    User `gorm:"foreignKey:SenderID;constraint:OnDelete:CASCADE" json:"sender,omitempty"`
	Recipient User `gorm:"foreignKey:RecipientID;constraint:OnDelete:CASCADE" json:"recipient,omitempty"`
}
