package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mizuleaf/callscope/internal/domain"
	"github.com/mizuleaf/callscope/internal/infrastructure/database/models"
)

type AnalysisRepository struct {
	db *gorm.DB
}

func NewAnalysisRepository(db *gorm.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

func analysisToDomain(m models.Analysis) (domain.Analysis, error) {
	a := domain.Analysis{
		ID:          m.ID,
		RecordingID: m.RecordingID,
		Summary:     m.Summary,
		CDate:       m.CDate,
	}

	if m.Transcript != "" {
		if err := json.Unmarshal([]byte(m.Transcript), &a.Transcript); err != nil {
			return domain.Analysis{}, err
		}
	}
	if m.Issues != "" {
		if err := json.Unmarshal([]byte(m.Issues), &a.Issues); err != nil {
			return domain.Analysis{}, err
		}
	}
	return a, nil
}

func (r *AnalysisRepository) GetByRecording(ctx context.Context, recordingID string) (domain.Analysis, error) {
	var m models.Analysis
	err := r.db.WithContext(ctx).
		Where("recording_id = ?", recordingID).
		Take(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Analysis{}, domain.NotFoundError{Resource: "analysis"}
		}
		return domain.Analysis{}, err
	}
	return analysisToDomain(m)
}

// UpsertTranscript creates the analysis row on first transcription and
// replaces the transcript on re-runs.
func (r *AnalysisRepository) UpsertTranscript(ctx context.Context, recordingID string, transcript []domain.TranscriptSegment) error {
	transcriptJSON, err := json.Marshal(transcript)
	if err != nil {
		return err
	}

	m := models.Analysis{
		ID:          uuid.NewString(),
		RecordingID: recordingID,
		Transcript:  string(transcriptJSON),
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "recording_id"}},
		DoUpdates: clause.Assignments(map[string]any{"transcript": string(transcriptJSON)}),
	}).Create(&m).Error
}

func (r *AnalysisRepository) UpdateResult(ctx context.Context, recordingID string, result domain.AnalysisResult) error {
	issuesJSON, err := json.Marshal(result.Issues)
	if err != nil {
		return err
	}

	res := r.db.WithContext(ctx).
		Model(&models.Analysis{}).
		Where("recording_id = ?", recordingID).
		Updates(map[string]any{
			"issues":  string(issuesJSON),
			"summary": result.Summary,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.NotFoundError{Resource: "analysis"}
	}
	return nil
}

func (r *AnalysisRepository) UpdateIssues(ctx context.Context, recordingID string, issues []domain.Issue) error {
	issuesJSON, err := json.Marshal(issues)
	if err != nil {
		return err
	}

	res := r.db.WithContext(ctx).
		Model(&models.Analysis{}).
		Where("recording_id = ?", recordingID).
		Update("issues", string(issuesJSON))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.NotFoundError{Resource: "analysis"}
	}
	return nil
}

// CountIssues tallies issues across all analyses for dashboard stats.
func (r *AnalysisRepository) CountIssues(ctx context.Context) (int64, error) {
	var rows []models.Analysis
	err := r.db.WithContext(ctx).
		Select("issues").
		Where("issues IS NOT NULL AND issues != ''").
		Find(&rows).Error
	if err != nil {
		return 0, err
	}

	var total int64
	for _, row := range rows {
		var issues []domain.Issue
		if err := json.Unmarshal([]byte(row.Issues), &issues); err != nil {
			continue
		}
		total += int64(len(issues))
	}
	return total, nil
}
