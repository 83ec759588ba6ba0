package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mizuleaf/callscope/internal/domain"
	"github.com/mizuleaf/callscope/internal/infrastructure/database/models"
)

type RecordingRepository struct {
	db *gorm.DB
}

func NewRecordingRepository(db *gorm.DB) *RecordingRepository {
	return &RecordingRepository{db: db}
}

func recordingToDomain(m models.Recording) domain.Recording {
	return domain.Recording{
		ID:          m.ID,
		AccountID:   m.AccountID,
		ExternalID:  m.ExternalID,
		Topic:       m.Topic,
		StartTime:   m.StartTime,
		Duration:    m.Duration,
		VideoURL:    m.VideoURL,
		StoragePath: m.StoragePath,
		Status:      domain.RecordingStatus(m.Status),
		DeletedAt:   m.DeletedAt,
		CDate:       m.CDate,
	}
}

func (r *RecordingRepository) Create(ctx context.Context, rec domain.Recording) (domain.Recording, error) {
	m := models.Recording{
		ID:         uuid.NewString(),
		AccountID:  rec.AccountID,
		ExternalID: rec.ExternalID,
		Topic:      rec.Topic,
		StartTime:  rec.StartTime,
		Duration:   rec.Duration,
		VideoURL:   rec.VideoURL,
		Status:     string(rec.Status),
	}
	err := r.db.WithContext(ctx).Create(&m).Error
	if err != nil {
		return domain.Recording{}, err
	}
	return recordingToDomain(m), nil
}

func (r *RecordingRepository) Get(ctx context.Context, id string) (domain.Recording, error) {
	var m models.Recording
	err := r.db.WithContext(ctx).
		Where("id = ? AND deleted_at IS NULL", id).
		Take(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Recording{}, domain.NotFoundError{Resource: "recording"}
		}
		return domain.Recording{}, err
	}
	return recordingToDomain(m), nil
}

func (r *RecordingRepository) ExistsByExternalID(ctx context.Context, externalID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Recording{}).
		Where("external_id = ?", externalID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *RecordingRepository) List(ctx context.Context, filter domain.RecordingFilter) ([]domain.Recording, error) {
	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}

	query := r.db.WithContext(ctx).
		Model(&models.Recording{}).
		Where("recordings.deleted_at IS NULL").
		Order("recordings.cdate DESC").
		Offset((page - 1) * limit).
		Limit(limit)

	if filter.Status != "" {
		query = query.Where("recordings.status = ?", filter.Status)
	}
	if filter.OwnerID != "" {
		query = query.
			Joins("JOIN accounts ON accounts.id = recordings.account_id").
			Where("accounts.owner_id = ?", filter.OwnerID)
	}

	var recordings []models.Recording
	err := query.Find(&recordings).Error
	if err != nil {
		return nil, err
	}

	result := make([]domain.Recording, 0, len(recordings))
	for _, rec := range recordings {
		result = append(result, recordingToDomain(rec))
	}
	return result, nil
}

func (r *RecordingRepository) UpdateStatus(ctx context.Context, id string, status domain.RecordingStatus) error {
	result := r.db.WithContext(ctx).
		Model(&models.Recording{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Update("status", string(status))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NotFoundError{Resource: "recording"}
	}
	return nil
}

func (r *RecordingRepository) UpdateStoragePath(ctx context.Context, id string, path string) error {
	return r.db.WithContext(ctx).
		Model(&models.Recording{}).
		Where("id = ?", id).
		Update("storage_path", path).Error
}

func (r *RecordingRepository) SoftDelete(ctx context.Context, id string, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.Recording{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Update("deleted_at", at)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NotFoundError{Resource: "recording"}
	}
	return nil
}

func (r *RecordingRepository) Count(ctx context.Context, status string) (int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Recording{}).
		Where("deleted_at IS NULL")
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var count int64
	err := query.Count(&count).Error
	return count, err
}
