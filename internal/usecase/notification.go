package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mizuleaf/callscope/internal/domain"
)

const emailSubjectPrefix = "[営業コール分析]"

// NotificationUsecase stores in-app notifications and mirrors them to email
// when an email gateway is configured. A failed email never rolls back the
// stored notification.
type NotificationUsecase struct {
	notifications NotificationRepository
	users         UserRepository
	recordings    RecordingRepository
	accounts      AccountRepository
	email         EmailSender
	config        domain.Config
}

func NewNotificationUsecase(
	notifications NotificationRepository,
	users UserRepository,
	recordings RecordingRepository,
	accounts AccountRepository,
	email EmailSender,
	config domain.Config,
) *NotificationUsecase {
	return &NotificationUsecase{
		notifications: notifications,
		users:         users,
		recordings:    recordings,
		accounts:      accounts,
		email:         email,
		config:        config,
	}
}

// NotifyAnalysisComplete tells the recording's owner and every admin that the
// AI analysis finished. Recipients are deduplicated; each delivery is
// best-effort and reported individually.
func (uc *NotificationUsecase) NotifyAnalysisComplete(ctx context.Context, recordingID, topic string) []domain.DeliveryResult {
	recipients := map[string]domain.User{}

	if owner, err := uc.recordingOwner(ctx, recordingID); err != nil {
		slog.Warn("analysis notification: owner lookup failed", "recordingId", recordingID, "error", err)
	} else {
		recipients[owner.ID] = owner
	}

	admins, err := uc.users.ListAdmins(ctx)
	if err != nil {
		slog.Warn("analysis notification: admin lookup failed", "error", err)
	}
	for _, admin := range admins {
		recipients[admin.ID] = admin
	}

	title := "分析が完了しました"
	message := fmt.Sprintf("録画「%s」のAI分析が完了しました。", topic)
	link := fmt.Sprintf("%s/recordings/%s", uc.config.AppURL, recordingID)

	results := make([]domain.DeliveryResult, 0, len(recipients))
	for _, user := range recipients {
		results = append(results, uc.deliver(ctx, user, domain.NotificationAnalysisComplete, title, message, link))
	}
	return results
}

// NotifyFeedbackShared tells the feedback's target user that a reviewer
// shared feedback on their call.
func (uc *NotificationUsecase) NotifyFeedbackShared(ctx context.Context, fb domain.Feedback, topic string) []domain.DeliveryResult {
	user, err := uc.users.Get(ctx, fb.TargetUser)
	if err != nil {
		return []domain.DeliveryResult{{UserID: fb.TargetUser, Error: err.Error()}}
	}

	title := "新しいフィードバックが共有されました"
	message := fmt.Sprintf("録画「%s」に新しいフィードバックが届きました。", topic)
	link := fmt.Sprintf("%s/recordings/%s", uc.config.AppURL, fb.RecordingID)

	return []domain.DeliveryResult{uc.deliver(ctx, user, domain.NotificationFeedbackShared, title, message, link)}
}

// recordingOwner resolves a recording to the user owning its account.
func (uc *NotificationUsecase) recordingOwner(ctx context.Context, recordingID string) (domain.User, error) {
	rec, err := uc.recordings.Get(ctx, recordingID)
	if err != nil {
		return domain.User{}, err
	}
	account, err := uc.accounts.Get(ctx, rec.AccountID)
	if err != nil {
		return domain.User{}, err
	}
	if account.OwnerID == "" {
		return domain.User{}, domain.NotFoundError{Resource: "account owner"}
	}
	return uc.users.Get(ctx, account.OwnerID)
}

func (uc *NotificationUsecase) deliver(ctx context.Context, user domain.User, kind, title, message, link string) domain.DeliveryResult {
	result := domain.DeliveryResult{UserID: user.ID}

	_, err := uc.notifications.Create(ctx, domain.Notification{
		UserID:  user.ID,
		Type:    kind,
		Title:   title,
		Message: message,
	})
	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.Stored = true

	if uc.email == nil || !uc.email.Enabled() || user.Email == "" {
		return result
	}

	subject := fmt.Sprintf("%s %s", emailSubjectPrefix, title)
	html := fmt.Sprintf(
		"<p>%sさん</p><p>%s</p><p><a href=\"%s\">録画を確認する</a></p>",
		displayName(user), message, link,
	)
	if err := uc.email.Send(ctx, user.Email, subject, html); err != nil {
		result.Error = err.Error()
		return result
	}
	result.Emailed = true
	return result
}

func displayName(u domain.User) string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Email
}

// ListForUser returns the requester's latest notifications with their unread count.
func (uc *NotificationUsecase) ListForUser(ctx context.Context, userID string, limit int) ([]domain.Notification, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	items, err := uc.notifications.ListForUser(ctx, userID, limit)
	if err != nil {
		return nil, 0, err
	}
	unread, err := uc.notifications.CountUnread(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return items, unread, nil
}

// MarkRead marks one of the requester's notifications as read. Another user's
// notification is indistinguishable from a missing one.
func (uc *NotificationUsecase) MarkRead(ctx context.Context, id, userID string) (domain.Notification, error) {
	return uc.notifications.MarkRead(ctx, id, userID)
}
