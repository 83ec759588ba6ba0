package usecase

import (
	"context"
	"time"

	"github.com/mizuleaf/callscope/internal/domain"
)

// AccountRepository defines persistence/lookup for meeting-platform accounts.
type AccountRepository interface {
	Create(ctx context.Context, account domain.Account) (domain.Account, error)
	Get(ctx context.Context, id string) (domain.Account, error)
	List(ctx context.Context) ([]domain.Account, error)
	ListActive(ctx context.Context) ([]domain.Account, error)
	UpdateLastSynced(ctx context.Context, id string, at time.Time) error
}

// RecordingRepository defines storage operations for recordings.
type RecordingRepository interface {
	Create(ctx context.Context, rec domain.Recording) (domain.Recording, error)
	Get(ctx context.Context, id string) (domain.Recording, error)
	ExistsByExternalID(ctx context.Context, externalID string) (bool, error)
	List(ctx context.Context, filter domain.RecordingFilter) ([]domain.Recording, error)
	UpdateStatus(ctx context.Context, id string, status domain.RecordingStatus) error
	UpdateStoragePath(ctx context.Context, id string, path string) error
	SoftDelete(ctx context.Context, id string, at time.Time) error
	Count(ctx context.Context, status string) (int64, error)
}

// AnalysisRepository defines storage operations for analyses.
type AnalysisRepository interface {
	GetByRecording(ctx context.Context, recordingID string) (domain.Analysis, error)
	UpsertTranscript(ctx context.Context, recordingID string, transcript []domain.TranscriptSegment) error
	UpdateResult(ctx context.Context, recordingID string, result domain.AnalysisResult) error
	UpdateIssues(ctx context.Context, recordingID string, issues []domain.Issue) error
	CountIssues(ctx context.Context) (int64, error)
}

// RuleRepository defines persistence for knowledge rules.
type RuleRepository interface {
	Create(ctx context.Context, rule domain.KnowledgeRule) (domain.KnowledgeRule, error)
	Get(ctx context.Context, id string) (domain.KnowledgeRule, error)
	Update(ctx context.Context, rule domain.KnowledgeRule) (domain.KnowledgeRule, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.KnowledgeRule, error)
	ListActive(ctx context.Context) ([]domain.KnowledgeRule, error)
}

// ClipRepository defines persistence for rendered clips.
type ClipRepository interface {
	Create(ctx context.Context, clip domain.Clip) (domain.Clip, error)
	Get(ctx context.Context, id string) (domain.Clip, error)
	ListByRecording(ctx context.Context, recordingID string) ([]domain.Clip, error)
	Delete(ctx context.Context, id string) error
}

// FeedbackRepository defines persistence for reviewer feedback.
type FeedbackRepository interface {
	Create(ctx context.Context, fb domain.Feedback) (domain.Feedback, error)
	Get(ctx context.Context, id string) (domain.Feedback, error)
	MarkShared(ctx context.Context, id string, at time.Time) (domain.Feedback, error)
	ListSharedForUser(ctx context.Context, userID string) ([]domain.Feedback, error)
	CountShared(ctx context.Context) (int64, error)
}

// NotificationRepository defines persistence for in-app notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n domain.Notification) (domain.Notification, error)
	ListForUser(ctx context.Context, userID string, limit int) ([]domain.Notification, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, id string, userID string) (domain.Notification, error)
}

// UserRepository defines lookup for users.
type UserRepository interface {
	Get(ctx context.Context, id string) (domain.User, error)
	ListAdmins(ctx context.Context) ([]domain.User, error)
}

// TokenProvider hands out valid meeting-platform bearer tokens.
type TokenProvider interface {
	GetAccessToken(ctx context.Context, accountID, clientID, clientSecret string) (string, error)
}

// MeetingLister fetches platform recordings for an account.
type MeetingLister interface {
	ListRecordings(ctx context.Context, accessToken, userID string, from, to time.Time) ([]domain.Meeting, error)
}

// Transcriber converts remote audio/video into time-stamped segments.
type Transcriber interface {
	TranscribeFromURL(ctx context.Context, audioURL string) ([]domain.TranscriptSegment, error)
}

// Analyzer runs the rule set against a transcript.
type Analyzer interface {
	AnalyzeTranscript(ctx context.Context, transcript []domain.TranscriptSegment, rules []domain.KnowledgeRule) (domain.AnalysisResult, error)
}

// EmailSender sends transactional email; Enabled reports whether delivery is
// configured at all.
type EmailSender interface {
	Enabled() bool
	Send(ctx context.Context, to, subject, html string) error
}

// MediaTransfer covers downloads, clip extraction, and temp-file cleanup.
type MediaTransfer interface {
	DownloadVideo(ctx context.Context, url, outputPath, accessToken string) error
	ExtractClip(ctx context.Context, inputPath string, startMs, endMs int64, outputPath string) (string, error)
	Cleanup(paths ...string)
}

// Signaler broadcasts recording status transitions.
type Signaler interface {
	PublishStatusChange(ctx context.Context, recordingID string, from, to domain.RecordingStatus)
}
