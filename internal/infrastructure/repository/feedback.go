package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mizuleaf/callscope/internal/domain"
	"github.com/mizuleaf/callscope/internal/infrastructure/database/models"
)

type FeedbackRepository struct {
	db *gorm.DB
}

func NewFeedbackRepository(db *gorm.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

func feedbackToDomain(m models.Feedback) domain.Feedback {
	return domain.Feedback{
		ID:          m.ID,
		RecordingID: m.RecordingID,
		CreatedBy:   m.CreatedBy,
		TargetUser:  m.TargetUserID,
		Content:     m.Content,
		ClipStartMs: m.ClipStartMs,
		ClipEndMs:   m.ClipEndMs,
		IsShared:    m.IsShared,
		SharedAt:    m.SharedAt,
		CDate:       m.CDate,
	}
}

func (r *FeedbackRepository) Create(ctx context.Context, fb domain.Feedback) (domain.Feedback, error) {
	m := models.Feedback{
		ID:           uuid.NewString(),
		RecordingID:  fb.RecordingID,
		CreatedBy:    fb.CreatedBy,
		TargetUserID: fb.TargetUser,
		Content:      fb.Content,
		ClipStartMs:  fb.ClipStartMs,
		ClipEndMs:    fb.ClipEndMs,
	}
	err := r.db.WithContext(ctx).Create(&m).Error
	if err != nil {
		return domain.Feedback{}, err
	}
	return feedbackToDomain(m), nil
}

func (r *FeedbackRepository) Get(ctx context.Context, id string) (domain.Feedback, error) {
	var m models.Feedback
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		Take(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Feedback{}, domain.NotFoundError{Resource: "feedback"}
		}
		return domain.Feedback{}, err
	}
	return feedbackToDomain(m), nil
}

// MarkShared transitions draft -> shared exactly once. The row lock plus the
// is_shared guard in the WHERE clause makes a second share a conflict even if
// two requests race.
func (r *FeedbackRepository) MarkShared(ctx context.Context, id string, at time.Time) (domain.Feedback, error) {
	var m models.Feedback

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).
			Take(&m).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.NotFoundError{Resource: "feedback"}
			}
			return err
		}

		if m.IsShared {
			return domain.ConflictError{Reason: "feedback already shared"}
		}

		res := tx.Model(&models.Feedback{}).
			Where("id = ? AND is_shared = ?", id, false).
			Updates(map[string]any{
				"is_shared": true,
				"shared_at": at,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ConflictError{Reason: "feedback already shared"}
		}

		m.IsShared = true
		m.SharedAt = &at
		return nil
	})
	if err != nil {
		return domain.Feedback{}, err
	}

	return feedbackToDomain(m), nil
}

func (r *FeedbackRepository) ListSharedForUser(ctx context.Context, userID string) ([]domain.Feedback, error) {
	var feedbacks []models.Feedback
	err := r.db.WithContext(ctx).
		Where("target_user_id = ? AND is_shared = ?", userID, true).
		Order("shared_at DESC").
		Find(&feedbacks).Error
	if err != nil {
		return nil, err
	}

	result := make([]domain.Feedback, 0, len(feedbacks))
	for _, fb := range feedbacks {
		result = append(result, feedbackToDomain(fb))
	}
	return result, nil
}

func (r *FeedbackRepository) CountShared(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Feedback{}).
		Where("is_shared = ?", true).
		Count(&count).Error
	return count, err
}
