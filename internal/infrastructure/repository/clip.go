package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mizuleaf/callscope/internal/domain"
	"github.com/mizuleaf/callscope/internal/infrastructure/database/models"
)

type ClipRepository struct {
	db *gorm.DB
}

func NewClipRepository(db *gorm.DB) *ClipRepository {
	return &ClipRepository{db: db}
}

func clipToDomain(m models.Clip) domain.Clip {
	c := domain.Clip{
		ID:          m.ID,
		RecordingID: m.RecordingID,
		IssueIndex:  m.IssueIndex,
		StartMs:     m.StartMs,
		EndMs:       m.EndMs,
		StoragePath: m.StoragePath,
		CDate:       m.CDate,
	}
	if m.AnalysisID != nil {
		c.AnalysisID = *m.AnalysisID
	}
	return c
}

func (r *ClipRepository) Create(ctx context.Context, clip domain.Clip) (domain.Clip, error) {
	m := models.Clip{
		ID:          uuid.NewString(),
		RecordingID: clip.RecordingID,
		IssueIndex:  clip.IssueIndex,
		StartMs:     clip.StartMs,
		EndMs:       clip.EndMs,
		StoragePath: clip.StoragePath,
	}
	if clip.AnalysisID != "" {
		m.AnalysisID = &clip.AnalysisID
	}

	err := r.db.WithContext(ctx).Create(&m).Error
	if err != nil {
		return domain.Clip{}, err
	}
	return clipToDomain(m), nil
}

func (r *ClipRepository) Get(ctx context.Context, id string) (domain.Clip, error) {
	var m models.Clip
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		Take(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Clip{}, domain.NotFoundError{Resource: "clip"}
		}
		return domain.Clip{}, err
	}
	return clipToDomain(m), nil
}

func (r *ClipRepository) ListByRecording(ctx context.Context, recordingID string) ([]domain.Clip, error) {
	var clips []models.Clip
	err := r.db.WithContext(ctx).
		Where("recording_id = ?", recordingID).
		Order("cdate DESC").
		Find(&clips).Error
	if err != nil {
		return nil, err
	}

	result := make([]domain.Clip, 0, len(clips))
	for _, c := range clips {
		result = append(result, clipToDomain(c))
	}
	return result, nil
}

func (r *ClipRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).
		Delete(&models.Clip{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.NotFoundError{Resource: "clip"}
	}
	return nil
}
