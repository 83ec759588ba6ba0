package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/mizuleaf/callscope/internal/domain"
)

// AnalysisNotifier fans out the analysis-complete notification. Delivery is
// best-effort; the per-recipient outcomes come back for observability only.
type AnalysisNotifier interface {
	NotifyAnalysisComplete(ctx context.Context, recordingID, topic string) []domain.DeliveryResult
}

// RecordingUsecase owns the per-recording pipeline: download, transcribe,
// analyze. Every status write goes through the transition table; a stage can
// fail a recording but never teleport it.
type RecordingUsecase struct {
	recordings RecordingRepository
	analyses   AnalysisRepository
	rules      RuleRepository
	transcribe Transcriber
	analyze    Analyzer
	media      MediaTransfer
	signal     Signaler
	notifier   AnalysisNotifier
	tempDir    string
	storageDir string
}

func NewRecordingUsecase(
	recordings RecordingRepository,
	analyses AnalysisRepository,
	rules RuleRepository,
	transcribe Transcriber,
	analyze Analyzer,
	media MediaTransfer,
	signal Signaler,
	notifier AnalysisNotifier,
	tempDir string,
	storageDir string,
) *RecordingUsecase {
	return &RecordingUsecase{
		recordings: recordings,
		analyses:   analyses,
		rules:      rules,
		transcribe: transcribe,
		analyze:    analyze,
		media:      media,
		signal:     signal,
		notifier:   notifier,
		tempDir:    tempDir,
		storageDir: storageDir,
	}
}

func (uc *RecordingUsecase) Get(ctx context.Context, id string) (domain.Recording, error) {
	return uc.recordings.Get(ctx, id)
}

// GetWithAnalysis returns the recording plus its analysis when one exists.
func (uc *RecordingUsecase) GetWithAnalysis(ctx context.Context, id string) (domain.Recording, *domain.Analysis, error) {
	rec, err := uc.recordings.Get(ctx, id)
	if err != nil {
		return domain.Recording{}, nil, err
	}

	analysis, err := uc.analyses.GetByRecording(ctx, id)
	if err != nil {
		if _, ok := err.(domain.NotFoundError); ok {
			return rec, nil, nil
		}
		return domain.Recording{}, nil, err
	}

	return rec, &analysis, nil
}

func (uc *RecordingUsecase) List(ctx context.Context, filter domain.RecordingFilter) ([]domain.Recording, error) {
	return uc.recordings.List(ctx, filter)
}

func (uc *RecordingUsecase) SoftDelete(ctx context.Context, id string) error {
	return uc.recordings.SoftDelete(ctx, id, time.Now())
}

// setStatus validates and applies one transition, broadcasting it on success.
func (uc *RecordingUsecase) setStatus(ctx context.Context, rec domain.Recording, next domain.RecordingStatus) error {
	if !rec.Status.CanTransitionTo(next) {
		return domain.ConflictError{Reason: fmt.Sprintf("cannot transition from %s to %s", rec.Status, next)}
	}
	if err := uc.recordings.UpdateStatus(ctx, rec.ID, next); err != nil {
		return err
	}
	uc.signal.PublishStatusChange(ctx, rec.ID, rec.Status, next)
	return nil
}

// failStage moves a recording to failed before the stage error surfaces.
// The failed write itself is best-effort; the original stage error wins.
func (uc *RecordingUsecase) failStage(ctx context.Context, rec domain.Recording, from domain.RecordingStatus) {
	if err := uc.recordings.UpdateStatus(ctx, rec.ID, domain.StatusFailed); err != nil {
		slog.Error("failed to mark recording as failed", "recordingId", rec.ID, "error", err)
		return
	}
	uc.signal.PublishStatusChange(ctx, rec.ID, from, domain.StatusFailed)
}

// DownloadResult reports where a download landed.
type DownloadResult struct {
	StoragePath string `json:"storagePath"`
	AlreadyDone bool   `json:"alreadyDone"`
}

// Download fetches the recording's remote video into local storage. A
// recording that already has a storage path is left alone.
func (uc *RecordingUsecase) Download(ctx context.Context, id string) (DownloadResult, error) {
	rec, err := uc.recordings.Get(ctx, id)
	if err != nil {
		return DownloadResult{}, err
	}

	if rec.StoragePath != "" {
		return DownloadResult{StoragePath: rec.StoragePath, AlreadyDone: true}, nil
	}
	if rec.VideoURL == "" {
		return DownloadResult{}, domain.ValidationError{Reason: "no video URL available"}
	}

	if err := uc.setStatus(ctx, rec, domain.StatusDownloading); err != nil {
		return DownloadResult{}, err
	}

	uniqueID := uuid.NewString()
	tempPath := filepath.Join(uc.tempDir, fmt.Sprintf("download-%s-%s.mp4", id, uniqueID))
	storagePath := filepath.Join("recordings", id, uniqueID+".mp4")
	defer uc.media.Cleanup(tempPath)

	if err := uc.media.DownloadVideo(ctx, rec.VideoURL, tempPath, ""); err != nil {
		uc.failStage(ctx, rec, domain.StatusDownloading)
		return DownloadResult{}, err
	}

	if err := uc.moveIntoStorage(tempPath, storagePath); err != nil {
		uc.failStage(ctx, rec, domain.StatusDownloading)
		return DownloadResult{}, err
	}

	if err := uc.recordings.UpdateStoragePath(ctx, id, storagePath); err != nil {
		uc.failStage(ctx, rec, domain.StatusDownloading)
		return DownloadResult{}, err
	}

	rec.Status = domain.StatusDownloading
	if err := uc.setStatus(ctx, rec, domain.StatusReady); err != nil {
		// downloading only leads to ready or failed; a retry recovers
		// from failed
		uc.failStage(ctx, rec, domain.StatusDownloading)
		return DownloadResult{}, err
	}

	return DownloadResult{StoragePath: storagePath}, nil
}

// TranscribeResult is the outcome of one transcription run.
type TranscribeResult struct {
	Segments   int                        `json:"segments"`
	Transcript []domain.TranscriptSegment `json:"transcript"`
}

// Transcribe runs speech-to-text over the recording's video and stores the
// transcript on the recording's analysis row, creating it if needed.
func (uc *RecordingUsecase) Transcribe(ctx context.Context, id string) (TranscribeResult, error) {
	rec, err := uc.recordings.Get(ctx, id)
	if err != nil {
		return TranscribeResult{}, err
	}

	if rec.VideoURL == "" {
		return TranscribeResult{}, domain.ValidationError{Reason: "video URL not found"}
	}

	if err := uc.setStatus(ctx, rec, domain.StatusTranscribing); err != nil {
		return TranscribeResult{}, err
	}

	transcript, err := uc.transcribe.TranscribeFromURL(ctx, rec.VideoURL)
	if err != nil {
		uc.failStage(ctx, rec, domain.StatusTranscribing)
		return TranscribeResult{}, err
	}

	if err := uc.analyses.UpsertTranscript(ctx, id, transcript); err != nil {
		uc.failStage(ctx, rec, domain.StatusTranscribing)
		return TranscribeResult{}, err
	}

	rec.Status = domain.StatusTranscribing
	if err := uc.setStatus(ctx, rec, domain.StatusTranscribed); err != nil {
		return TranscribeResult{}, err
	}

	return TranscribeResult{Segments: len(transcript), Transcript: transcript}, nil
}

// Analyze runs the active rule set against an existing transcript. Malformed
// AI output is a hard failure for the recording, never an empty result.
func (uc *RecordingUsecase) Analyze(ctx context.Context, id string) (domain.AnalysisResult, error) {
	rec, err := uc.recordings.Get(ctx, id)
	if err != nil {
		return domain.AnalysisResult{}, err
	}

	analysis, err := uc.analyses.GetByRecording(ctx, id)
	if err != nil {
		if _, ok := err.(domain.NotFoundError); ok {
			return domain.AnalysisResult{}, domain.ValidationError{Reason: "transcript not found, run transcription first"}
		}
		return domain.AnalysisResult{}, err
	}
	if len(analysis.Transcript) == 0 {
		return domain.AnalysisResult{}, domain.ValidationError{Reason: "transcript not found, run transcription first"}
	}

	rules, err := uc.rules.ListActive(ctx)
	if err != nil {
		return domain.AnalysisResult{}, err
	}
	if len(rules) == 0 {
		return domain.AnalysisResult{}, domain.ValidationError{Reason: "no active knowledge rules found"}
	}

	if err := uc.setStatus(ctx, rec, domain.StatusAnalyzing); err != nil {
		return domain.AnalysisResult{}, err
	}

	result, err := uc.analyze.AnalyzeTranscript(ctx, analysis.Transcript, rules)
	if err != nil {
		uc.failStage(ctx, rec, domain.StatusAnalyzing)
		return domain.AnalysisResult{}, err
	}

	if err := uc.analyses.UpdateResult(ctx, id, result); err != nil {
		uc.failStage(ctx, rec, domain.StatusAnalyzing)
		return domain.AnalysisResult{}, err
	}

	rec.Status = domain.StatusAnalyzing
	if err := uc.setStatus(ctx, rec, domain.StatusCompleted); err != nil {
		return domain.AnalysisResult{}, err
	}

	deliveries := uc.notifier.NotifyAnalysisComplete(ctx, rec.ID, rec.Topic)
	for _, d := range deliveries {
		if d.Error != "" {
			slog.Warn("analysis notification delivery failed", "userId", d.UserID, "error", d.Error)
		}
	}

	return result, nil
}

// ApproveIssue flips the reviewer-approval flag on one detected issue.
func (uc *RecordingUsecase) ApproveIssue(ctx context.Context, recordingID string, index int, approved bool) (domain.Issue, error) {
	if index < 0 {
		return domain.Issue{}, domain.ValidationError{Reason: "invalid issue index"}
	}

	analysis, err := uc.analyses.GetByRecording(ctx, recordingID)
	if err != nil {
		return domain.Issue{}, err
	}

	if index >= len(analysis.Issues) {
		return domain.Issue{}, domain.ValidationError{Reason: "issue index out of range"}
	}

	analysis.Issues[index].Approved = &approved

	if err := uc.analyses.UpdateIssues(ctx, recordingID, analysis.Issues); err != nil {
		return domain.Issue{}, err
	}

	return analysis.Issues[index], nil
}

func (uc *RecordingUsecase) moveIntoStorage(tempPath, storagePath string) error {
	return moveFile(tempPath, filepath.Join(uc.storageDir, storagePath))
}
