package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/mizuleaf/callscope/internal/domain"
)

// FeedbackNotifier tells a feedback's target user that it was shared.
type FeedbackNotifier interface {
	NotifyFeedbackShared(ctx context.Context, fb domain.Feedback, topic string) []domain.DeliveryResult
}

// FeedbackUsecase manages reviewer feedback. Feedback starts as a draft only
// the reviewer sees; sharing is one-way and triggers notification.
type FeedbackUsecase struct {
	feedbacks  FeedbackRepository
	recordings RecordingRepository
	notifier   FeedbackNotifier
}

func NewFeedbackUsecase(
	feedbacks FeedbackRepository,
	recordings RecordingRepository,
	notifier FeedbackNotifier,
) *FeedbackUsecase {
	return &FeedbackUsecase{
		feedbacks:  feedbacks,
		recordings: recordings,
		notifier:   notifier,
	}
}

// Create stores a draft feedback after checking the recording exists and the
// optional clip range is coherent.
func (uc *FeedbackUsecase) Create(ctx context.Context, fb domain.Feedback) (domain.Feedback, error) {
	if fb.Content == "" {
		return domain.Feedback{}, domain.ValidationError{Reason: "content is required"}
	}
	if fb.TargetUser == "" {
		return domain.Feedback{}, domain.ValidationError{Reason: "target user is required"}
	}
	if (fb.ClipStartMs == nil) != (fb.ClipEndMs == nil) {
		return domain.Feedback{}, domain.ValidationError{Reason: "clip range requires both start and end"}
	}
	if fb.ClipStartMs != nil && (*fb.ClipStartMs < 0 || *fb.ClipEndMs <= *fb.ClipStartMs) {
		return domain.Feedback{}, domain.ValidationError{Reason: "invalid clip range"}
	}

	if _, err := uc.recordings.Get(ctx, fb.RecordingID); err != nil {
		return domain.Feedback{}, err
	}

	return uc.feedbacks.Create(ctx, fb)
}

// Share publishes a draft to its target user. Sharing an already shared
// feedback is a conflict, not a no-op, so the client learns it raced.
func (uc *FeedbackUsecase) Share(ctx context.Context, id string) (domain.Feedback, error) {
	fb, err := uc.feedbacks.MarkShared(ctx, id, time.Now())
	if err != nil {
		return domain.Feedback{}, err
	}

	topic := ""
	if rec, err := uc.recordings.Get(ctx, fb.RecordingID); err == nil {
		topic = rec.Topic
	}

	for _, d := range uc.notifier.NotifyFeedbackShared(ctx, fb, topic) {
		if d.Error != "" {
			slog.Warn("feedback notification delivery failed", "userId", d.UserID, "error", d.Error)
		}
	}

	return fb, nil
}

// ListMine returns the feedback shared with the requester. Drafts stay
// invisible to everyone but their author.
func (uc *FeedbackUsecase) ListMine(ctx context.Context, userID string) ([]domain.Feedback, error) {
	return uc.feedbacks.ListSharedForUser(ctx, userID)
}
