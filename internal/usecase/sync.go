package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mizuleaf/callscope/internal/domain"
)

// syncLookback is how far back each sync looks for recordings.
const syncLookback = 30 * 24 * time.Hour

// SyncUsecase pulls new recordings for every active account. One account's
// failure never aborts the batch; its error is collected and the loop moves on.
type SyncUsecase struct {
	accounts   AccountRepository
	recordings RecordingRepository
	creds      TokenProvider
	meetings   MeetingLister
	now        func() time.Time
}

func NewSyncUsecase(
	accounts AccountRepository,
	recordings RecordingRepository,
	creds TokenProvider,
	meetings MeetingLister,
) *SyncUsecase {
	return &SyncUsecase{
		accounts:   accounts,
		recordings: recordings,
		creds:      creds,
		meetings:   meetings,
		now:        time.Now,
	}
}

// WithClock replaces the time source. Test use only.
func (uc *SyncUsecase) WithClock(now func() time.Time) *SyncUsecase {
	uc.now = now
	return uc
}

// SyncAll processes active accounts strictly sequentially. Accounts without
// credentials are skipped without any network call.
func (uc *SyncUsecase) SyncAll(ctx context.Context) (domain.SyncResult, error) {
	result := domain.SyncResult{Errors: []string{}}

	accounts, err := uc.accounts.ListActive(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to fetch accounts: %w", err)
	}

	for _, account := range accounts {
		if !account.HasCredentials() {
			result.Skipped++
			continue
		}

		if err := uc.syncAccount(ctx, account, &result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", account.DisplayName, err))
			slog.Error("account sync failed", "account", account.DisplayName, "error", err)
			continue
		}
	}

	return result, nil
}

func (uc *SyncUsecase) syncAccount(ctx context.Context, account domain.Account, result *domain.SyncResult) error {
	token, err := uc.creds.GetAccessToken(ctx, account.ExternalID, account.ClientID, account.ClientSecret)
	if err != nil {
		return err
	}

	from := uc.now().Add(-syncLookback)
	meetings, err := uc.meetings.ListRecordings(ctx, token, "me", from, time.Time{})
	if err != nil {
		return err
	}

	for _, meeting := range meetings {
		video := meeting.VideoFile()
		if video == nil {
			continue
		}

		exists, err := uc.recordings.ExistsByExternalID(ctx, meeting.UUID)
		if err != nil {
			return err
		}
		if exists {
			// already synced on an earlier run
			continue
		}

		_, err = uc.recordings.Create(ctx, domain.Recording{
			AccountID:  account.ID,
			ExternalID: meeting.UUID,
			Topic:      meeting.Topic,
			StartTime:  meeting.StartTime,
			Duration:   meeting.Duration,
			VideoURL:   video.DownloadURL,
			Status:     domain.StatusReady,
		})
		if err != nil {
			slog.Warn("failed to insert recording", "externalId", meeting.UUID, "error", err)
			continue
		}

		result.NewRecordings++
	}

	result.Synced++

	return uc.accounts.UpdateLastSynced(ctx, account.ID, uc.now())
}
