package usecase

import (
	"context"

	"github.com/mizuleaf/callscope/internal/domain"
)

// DashboardStats is the aggregate view shown on the review dashboard.
type DashboardStats struct {
	TotalRecordings int64 `json:"totalRecordings"`
	Completed       int64 `json:"completed"`
	Failed          int64 `json:"failed"`
	TotalIssues     int64 `json:"totalIssues"`
	SharedFeedbacks int64 `json:"sharedFeedbacks"`
}

// DashboardUsecase aggregates counts across the store. Each count is a
// separate query; slight skew between them is acceptable.
type DashboardUsecase struct {
	recordings RecordingRepository
	analyses   AnalysisRepository
	feedbacks  FeedbackRepository
}

func NewDashboardUsecase(
	recordings RecordingRepository,
	analyses AnalysisRepository,
	feedbacks FeedbackRepository,
) *DashboardUsecase {
	return &DashboardUsecase{
		recordings: recordings,
		analyses:   analyses,
		feedbacks:  feedbacks,
	}
}

func (uc *DashboardUsecase) Stats(ctx context.Context) (DashboardStats, error) {
	var stats DashboardStats
	var err error

	if stats.TotalRecordings, err = uc.recordings.Count(ctx, ""); err != nil {
		return DashboardStats{}, err
	}
	if stats.Completed, err = uc.recordings.Count(ctx, string(domain.StatusCompleted)); err != nil {
		return DashboardStats{}, err
	}
	if stats.Failed, err = uc.recordings.Count(ctx, string(domain.StatusFailed)); err != nil {
		return DashboardStats{}, err
	}
	if stats.TotalIssues, err = uc.analyses.CountIssues(ctx); err != nil {
		return DashboardStats{}, err
	}
	if stats.SharedFeedbacks, err = uc.feedbacks.CountShared(ctx); err != nil {
		return DashboardStats{}, err
	}

	return stats, nil
}
