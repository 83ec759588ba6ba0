package usecase

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/mizuleaf/callscope/internal/domain"
)

// ClipUsecase renders sub-segments of a recording's video into standalone
// files. It prefers the locally stored video and falls back to a one-off
// download when the recording has only a remote URL.
type ClipUsecase struct {
	clips      ClipRepository
	recordings RecordingRepository
	media      MediaTransfer
	tempDir    string
	storageDir string
}

func NewClipUsecase(
	clips ClipRepository,
	recordings RecordingRepository,
	media MediaTransfer,
	tempDir string,
	storageDir string,
) *ClipUsecase {
	return &ClipUsecase{
		clips:      clips,
		recordings: recordings,
		media:      media,
		tempDir:    tempDir,
		storageDir: storageDir,
	}
}

// CreateClipInput carries the parameters for one clip extraction.
type CreateClipInput struct {
	RecordingID string `json:"recordingId"`
	AnalysisID  string `json:"analysisId,omitempty"`
	IssueIndex  int    `json:"issueIndex"`
	StartMs     int64  `json:"startMs"`
	EndMs       int64  `json:"endMs"`
}

// Create extracts the requested segment and records it. Extraction happens in
// the temp directory; only a successful result is moved into storage.
func (uc *ClipUsecase) Create(ctx context.Context, input CreateClipInput) (domain.Clip, error) {
	rec, err := uc.recordings.Get(ctx, input.RecordingID)
	if err != nil {
		return domain.Clip{}, err
	}

	inputPath, cleanup, err := uc.sourceVideo(ctx, rec)
	if err != nil {
		return domain.Clip{}, err
	}
	if cleanup != "" {
		defer uc.media.Cleanup(cleanup)
	}

	uniqueID := uuid.NewString()
	tempOut := filepath.Join(uc.tempDir, fmt.Sprintf("clip-%s-%s.mp4", input.RecordingID, uniqueID))
	defer uc.media.Cleanup(tempOut)

	if _, err := uc.media.ExtractClip(ctx, inputPath, input.StartMs, input.EndMs, tempOut); err != nil {
		return domain.Clip{}, err
	}

	storagePath := filepath.Join("clips", input.RecordingID, uniqueID+".mp4")
	if err := moveFile(tempOut, filepath.Join(uc.storageDir, storagePath)); err != nil {
		return domain.Clip{}, err
	}

	return uc.clips.Create(ctx, domain.Clip{
		RecordingID: input.RecordingID,
		AnalysisID:  input.AnalysisID,
		IssueIndex:  input.IssueIndex,
		StartMs:     input.StartMs,
		EndMs:       input.EndMs,
		StoragePath: storagePath,
	})
}

// sourceVideo resolves the input file for extraction. The second return is a
// temp path the caller must clean up, empty when the stored file is used.
func (uc *ClipUsecase) sourceVideo(ctx context.Context, rec domain.Recording) (string, string, error) {
	if rec.StoragePath != "" {
		return filepath.Join(uc.storageDir, rec.StoragePath), "", nil
	}
	if rec.VideoURL == "" {
		return "", "", domain.ValidationError{Reason: "recording has no video to clip"}
	}

	tempPath := filepath.Join(uc.tempDir, fmt.Sprintf("clip-src-%s-%s.mp4", rec.ID, uuid.NewString()))
	if err := uc.media.DownloadVideo(ctx, rec.VideoURL, tempPath, ""); err != nil {
		return "", "", err
	}
	return tempPath, tempPath, nil
}

func (uc *ClipUsecase) List(ctx context.Context, recordingID string) ([]domain.Clip, error) {
	return uc.clips.ListByRecording(ctx, recordingID)
}

// Delete removes the clip row and then its file. A missing file is not an
// error; the row is the source of truth.
func (uc *ClipUsecase) Delete(ctx context.Context, id string) error {
	clip, err := uc.clips.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := uc.clips.Delete(ctx, id); err != nil {
		return err
	}
	if clip.StoragePath != "" {
		uc.media.Cleanup(filepath.Join(uc.storageDir, clip.StoragePath))
	}
	return nil
}
