package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mizuleaf/callscope/internal/domain"
	"github.com/mizuleaf/callscope/internal/infrastructure/database/models"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func notificationToDomain(m models.Notification) domain.Notification {
	return domain.Notification{
		ID:      m.ID,
		UserID:  m.UserID,
		Type:    m.Type,
		Title:   m.Title,
		Message: m.Message,
		IsRead:  m.IsRead,
		CDate:   m.CDate,
	}
}

func (r *NotificationRepository) Create(ctx context.Context, n domain.Notification) (domain.Notification, error) {
	m := models.Notification{
		ID:      uuid.NewString(),
		UserID:  n.UserID,
		Type:    n.Type,
		Title:   n.Title,
		Message: n.Message,
	}
	err := r.db.WithContext(ctx).Create(&m).Error
	if err != nil {
		return domain.Notification{}, err
	}
	return notificationToDomain(m), nil
}

func (r *NotificationRepository) ListForUser(ctx context.Context, userID string, limit int) ([]domain.Notification, error) {
	if limit <= 0 {
		limit = 50
	}

	var notifications []models.Notification
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("cdate DESC").
		Limit(limit).
		Find(&notifications).Error
	if err != nil {
		return nil, err
	}

	result := make([]domain.Notification, 0, len(notifications))
	for _, n := range notifications {
		result = append(result, notificationToDomain(n))
	}
	return result, nil
}

func (r *NotificationRepository) CountUnread(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

// MarkRead only touches the caller's own notifications.
func (r *NotificationRepository) MarkRead(ctx context.Context, id string, userID string) (domain.Notification, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true)
	if res.Error != nil {
		return domain.Notification{}, res.Error
	}
	if res.RowsAffected == 0 {
		return domain.Notification{}, domain.NotFoundError{Resource: "notification"}
	}

	var m models.Notification
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		Take(&m).Error
	if err != nil {
		return domain.Notification{}, err
	}
	return notificationToDomain(m), nil
}
