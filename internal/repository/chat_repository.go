package repository

import (
	"errors"

	"github.com/atelierhq/atelier-api/internal/models"
	"gorm.io/gorm"
)

// GormChatRepository is a GORM implementation of ChatRepository
type GormChatRepository struct {
	db *gorm.DB
}

// NewChatRepository creates a new ChatRepository
func NewChatRepository(db *gorm.DB) ChatRepository {
	return &GormChatRepository{db: db}
}

// ListProjectMessages returns a project channel's messages in timestamp order
func (r *GormChatRepository) ListProjectMessages(projectID uint64) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	if err := r.db.Preload("User").
		Where("project_id = ?", projectID).
		Order("created_at ASC").
		Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

// CreateProjectMessage appends a message to a project channel
func (r *GormChatRepository) CreateProjectMessage(message *models.ChatMessage) error {
	return r.db.Create(message).Error
}

// ListDirectMessages returns the two-way thread in timestamp order
func (r *GormChatRepository) ListDirectMessages(userID, otherID uint64) ([]models.IndividualChatMessage, error) {
	var messages []models.IndividualChatMessage
	if err := r.db.
		Where("(sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)",
			userID, otherID, otherID, userID).
		Order("created_at ASC").
		Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

// CreateDirectMessage creates a direct message, unread by default
func (r *GormChatRepository) CreateDirectMessage(message *models.IndividualChatMessage) error {
	return r.db.Create(message).Error
}

// MarkRead marks all unread messages from senderID to recipientID as read
func (r *GormChatRepository) MarkRead(senderID, recipientID uint64) error {
	return r.db.Model(&models.IndividualChatMessage{}).
		Where("sender_id = ? AND recipient_id = ? AND is_read = ?", senderID, recipientID, false).
		Update("is_read", true).Error
}

// CounterpartIDs returns every account id the user has exchanged messages with
func (r *GormChatRepository) CounterpartIDs(userID uint64) ([]uint64, error) {
	var sentTo []uint64
	if err := r.db.Model(&models.IndividualChatMessage{}).
		Where("sender_id = ?", userID).
		Distinct().
		Pluck("recipient_id", &sentTo).Error; err != nil {
		return nil, err
	}

	var receivedFrom []uint64
	if err := r.db.Model(&models.IndividualChatMessage{}).
		Where("recipient_id = ?", userID).
		Distinct().
		Pluck("sender_id", &receivedFrom).Error; err != nil {
		return nil, err
	}

	seen := make(map[uint64]struct{}, len(sentTo)+len(receivedFrom))
	ids := make([]uint64, 0, len(sentTo)+len(receivedFrom))
	for _, id := range append(sentTo, receivedFrom...) {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}

// LastMessageBetween returns the most recent message in the two-way thread,
// or nil when the thread is empty
func (r *GormChatRepository) LastMessageBetween(userID, otherID uint64) (*models.IndividualChatMessage, error) {
	var message models.IndividualChatMessage
	err := r.db.
		Where("(sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)",
			userID, otherID, otherID, userID).
		Order("created_at DESC").
		First(&message).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &message, nil
}

// UnreadCount counts unread messages from senderID to recipientID
func (r *GormChatRepository) UnreadCount(senderID, recipientID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&models.IndividualChatMessage{}).
		Where("sender_id = ? AND recipient_id = ? AND is_read = ?", senderID, recipientID, false).
		Count(&count).Error
	return count, err
}
