package usecase

import (
	"context"
	"os"
	"time"

	"github.com/mizuleaf/callscope/internal/domain"
)

type mockAccountRepo struct {
	accounts   []domain.Account
	lastSynced map[string]time.Time
}

func (m *mockAccountRepo) Create(ctx context.Context, account domain.Account) (domain.Account, error) {
	account.ID = "acc-new"
	m.accounts = append(m.accounts, account)
	return account, nil
}

func (m *mockAccountRepo) Get(ctx context.Context, id string) (domain.Account, error) {
	for _, a := range m.accounts {
		if a.ID == id {
			return a, nil
		}
	}
	return domain.Account{}, domain.NotFoundError{Resource: "account"}
}

func (m *mockAccountRepo) List(ctx context.Context) ([]domain.Account, error) {
	return m.accounts, nil
}

func (m *mockAccountRepo) ListActive(ctx context.Context) ([]domain.Account, error) {
	var active []domain.Account
	for _, a := range m.accounts {
		if a.IsActive {
			active = append(active, a)
		}
	}
	return active, nil
}

func (m *mockAccountRepo) UpdateLastSynced(ctx context.Context, id string, at time.Time) error {
	if m.lastSynced == nil {
		m.lastSynced = map[string]time.Time{}
	}
	m.lastSynced[id] = at
	return nil
}

type mockRecordingRepo struct {
	recordings map[string]domain.Recording
	statusLog  []domain.RecordingStatus
	created    []domain.Recording

	updateStoragePathErr error
}

func newMockRecordingRepo() *mockRecordingRepo {
	return &mockRecordingRepo{recordings: map[string]domain.Recording{}}
}

func (m *mockRecordingRepo) Create(ctx context.Context, rec domain.Recording) (domain.Recording, error) {
	if rec.ID == "" {
		rec.ID = "rec-" + rec.ExternalID
	}
	m.recordings[rec.ID] = rec
	m.created = append(m.created, rec)
	return rec, nil
}

func (m *mockRecordingRepo) Get(ctx context.Context, id string) (domain.Recording, error) {
	rec, ok := m.recordings[id]
	if !ok {
		return domain.Recording{}, domain.NotFoundError{Resource: "recording"}
	}
	return rec, nil
}

func (m *mockRecordingRepo) ExistsByExternalID(ctx context.Context, externalID string) (bool, error) {
	for _, rec := range m.recordings {
		if rec.ExternalID == externalID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockRecordingRepo) List(ctx context.Context, filter domain.RecordingFilter) ([]domain.Recording, error) {
	var out []domain.Recording
	for _, rec := range m.recordings {
		out = append(out, rec)
	}
	return out, nil
}

func (m *mockRecordingRepo) UpdateStatus(ctx context.Context, id string, status domain.RecordingStatus) error {
	rec, ok := m.recordings[id]
	if !ok {
		return domain.NotFoundError{Resource: "recording"}
	}
	rec.Status = status
	m.recordings[id] = rec
	m.statusLog = append(m.statusLog, status)
	return nil
}

func (m *mockRecordingRepo) UpdateStoragePath(ctx context.Context, id string, path string) error {
	if m.updateStoragePathErr != nil {
		return m.updateStoragePathErr
	}
	rec, ok := m.recordings[id]
	if !ok {
		return domain.NotFoundError{Resource: "recording"}
	}
	rec.StoragePath = path
	m.recordings[id] = rec
	return nil
}

func (m *mockRecordingRepo) SoftDelete(ctx context.Context, id string, at time.Time) error {
	rec, ok := m.recordings[id]
	if !ok {
		return domain.NotFoundError{Resource: "recording"}
	}
	rec.DeletedAt = &at
	m.recordings[id] = rec
	return nil
}

func (m *mockRecordingRepo) Count(ctx context.Context, status string) (int64, error) {
	if status == "" {
		return int64(len(m.recordings)), nil
	}
	var n int64
	for _, rec := range m.recordings {
		if string(rec.Status) == status {
			n++
		}
	}
	return n, nil
}

type mockAnalysisRepo struct {
	analyses map[string]domain.Analysis
}

func newMockAnalysisRepo() *mockAnalysisRepo {
	return &mockAnalysisRepo{analyses: map[string]domain.Analysis{}}
}

func (m *mockAnalysisRepo) GetByRecording(ctx context.Context, recordingID string) (domain.Analysis, error) {
	a, ok := m.analyses[recordingID]
	if !ok {
		return domain.Analysis{}, domain.NotFoundError{Resource: "analysis"}
	}
	return a, nil
}

func (m *mockAnalysisRepo) UpsertTranscript(ctx context.Context, recordingID string, transcript []domain.TranscriptSegment) error {
	a := m.analyses[recordingID]
	a.RecordingID = recordingID
	a.Transcript = transcript
	m.analyses[recordingID] = a
	return nil
}

func (m *mockAnalysisRepo) UpdateResult(ctx context.Context, recordingID string, result domain.AnalysisResult) error {
	a, ok := m.analyses[recordingID]
	if !ok {
		return domain.NotFoundError{Resource: "analysis"}
	}
	a.Issues = result.Issues
	a.Summary = result.Summary
	m.analyses[recordingID] = a
	return nil
}

func (m *mockAnalysisRepo) UpdateIssues(ctx context.Context, recordingID string, issues []domain.Issue) error {
	a, ok := m.analyses[recordingID]
	if !ok {
		return domain.NotFoundError{Resource: "analysis"}
	}
	a.Issues = issues
	m.analyses[recordingID] = a
	return nil
}

func (m *mockAnalysisRepo) CountIssues(ctx context.Context) (int64, error) {
	var n int64
	for _, a := range m.analyses {
		n += int64(len(a.Issues))
	}
	return n, nil
}

type mockRuleRepo struct {
	rules []domain.KnowledgeRule
}

func (m *mockRuleRepo) Create(ctx context.Context, rule domain.KnowledgeRule) (domain.KnowledgeRule, error) {
	rule.ID = "rule-new"
	m.rules = append(m.rules, rule)
	return rule, nil
}

func (m *mockRuleRepo) Get(ctx context.Context, id string) (domain.KnowledgeRule, error) {
	for _, r := range m.rules {
		if r.ID == id {
			return r, nil
		}
	}
	return domain.KnowledgeRule{}, domain.NotFoundError{Resource: "knowledge rule"}
}

func (m *mockRuleRepo) Update(ctx context.Context, rule domain.KnowledgeRule) (domain.KnowledgeRule, error) {
	for i, r := range m.rules {
		if r.ID == rule.ID {
			m.rules[i] = rule
			return rule, nil
		}
	}
	return domain.KnowledgeRule{}, domain.NotFoundError{Resource: "knowledge rule"}
}

func (m *mockRuleRepo) Delete(ctx context.Context, id string) error {
	for i, r := range m.rules {
		if r.ID == id {
			m.rules = append(m.rules[:i], m.rules[i+1:]...)
			return nil
		}
	}
	return domain.NotFoundError{Resource: "knowledge rule"}
}

func (m *mockRuleRepo) List(ctx context.Context) ([]domain.KnowledgeRule, error) {
	return m.rules, nil
}

func (m *mockRuleRepo) ListActive(ctx context.Context) ([]domain.KnowledgeRule, error) {
	var active []domain.KnowledgeRule
	for _, r := range m.rules {
		if r.IsActive {
			active = append(active, r)
		}
	}
	return active, nil
}

type mockTokenProvider struct {
	token string
	err   error
	calls int
}

func (m *mockTokenProvider) GetAccessToken(ctx context.Context, accountID, clientID, clientSecret string) (string, error) {
	m.calls++
	return m.token, m.err
}

type mockMeetingLister struct {
	meetings []domain.Meeting
	err      error
	calls    int
}

func (m *mockMeetingLister) ListRecordings(ctx context.Context, accessToken, userID string, from, to time.Time) ([]domain.Meeting, error) {
	m.calls++
	return m.meetings, m.err
}

type mockTranscriber struct {
	segments []domain.TranscriptSegment
	err      error
}

func (m *mockTranscriber) TranscribeFromURL(ctx context.Context, audioURL string) ([]domain.TranscriptSegment, error) {
	return m.segments, m.err
}

type mockAnalyzer struct {
	result domain.AnalysisResult
	err    error
}

func (m *mockAnalyzer) AnalyzeTranscript(ctx context.Context, transcript []domain.TranscriptSegment, rules []domain.KnowledgeRule) (domain.AnalysisResult, error) {
	return m.result, m.err
}

type mockMedia struct {
	downloadErr error
	extractErr  error
	downloads   int
	cleaned     []string
}

func (m *mockMedia) DownloadVideo(ctx context.Context, url, outputPath, accessToken string) error {
	m.downloads++
	if m.downloadErr != nil {
		return m.downloadErr
	}
	return os.WriteFile(outputPath, []byte("video"), 0o644)
}

func (m *mockMedia) ExtractClip(ctx context.Context, inputPath string, startMs, endMs int64, outputPath string) (string, error) {
	if m.extractErr != nil {
		return "", m.extractErr
	}
	if err := os.WriteFile(outputPath, []byte("clip"), 0o644); err != nil {
		return "", err
	}
	return outputPath, nil
}

func (m *mockMedia) Cleanup(paths ...string) {
	m.cleaned = append(m.cleaned, paths...)
}

type mockSignaler struct {
	events []domain.StatusEvent
}

func (m *mockSignaler) PublishStatusChange(ctx context.Context, recordingID string, from, to domain.RecordingStatus) {
	m.events = append(m.events, domain.StatusEvent{RecordingID: recordingID, From: from, To: to})
}

type mockNotifier struct {
	analysisCalls  int
	feedbackCalls  int
	lastTopic      string
	lastRecording  string
	lastTargetUser string
}

func (m *mockNotifier) NotifyAnalysisComplete(ctx context.Context, recordingID, topic string) []domain.DeliveryResult {
	m.analysisCalls++
	m.lastRecording = recordingID
	m.lastTopic = topic
	return []domain.DeliveryResult{{UserID: "admin-1", Stored: true}}
}

func (m *mockNotifier) NotifyFeedbackShared(ctx context.Context, fb domain.Feedback, topic string) []domain.DeliveryResult {
	m.feedbackCalls++
	m.lastTargetUser = fb.TargetUser
	m.lastTopic = topic
	return []domain.DeliveryResult{{UserID: fb.TargetUser, Stored: true}}
}

type mockClipRepo struct {
	clips map[string]domain.Clip
}

func newMockClipRepo() *mockClipRepo {
	return &mockClipRepo{clips: map[string]domain.Clip{}}
}

func (m *mockClipRepo) Create(ctx context.Context, clip domain.Clip) (domain.Clip, error) {
	if clip.ID == "" {
		clip.ID = "clip-1"
	}
	m.clips[clip.ID] = clip
	return clip, nil
}

func (m *mockClipRepo) Get(ctx context.Context, id string) (domain.Clip, error) {
	clip, ok := m.clips[id]
	if !ok {
		return domain.Clip{}, domain.NotFoundError{Resource: "clip"}
	}
	return clip, nil
}

func (m *mockClipRepo) ListByRecording(ctx context.Context, recordingID string) ([]domain.Clip, error) {
	var out []domain.Clip
	for _, clip := range m.clips {
		if clip.RecordingID == recordingID {
			out = append(out, clip)
		}
	}
	return out, nil
}

func (m *mockClipRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.clips[id]; !ok {
		return domain.NotFoundError{Resource: "clip"}
	}
	delete(m.clips, id)
	return nil
}

type mockUserRepo struct {
	users []domain.User
}

func (m *mockUserRepo) Get(ctx context.Context, id string) (domain.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return domain.User{}, domain.NotFoundError{Resource: "user"}
}

func (m *mockUserRepo) ListAdmins(ctx context.Context) ([]domain.User, error) {
	var admins []domain.User
	for _, u := range m.users {
		if u.IsAdmin() {
			admins = append(admins, u)
		}
	}
	return admins, nil
}

type mockNotificationRepo struct {
	notifications []domain.Notification
	createErr     error
}

func (m *mockNotificationRepo) Create(ctx context.Context, n domain.Notification) (domain.Notification, error) {
	if m.createErr != nil {
		return domain.Notification{}, m.createErr
	}
	n.ID = "n-" + n.UserID
	m.notifications = append(m.notifications, n)
	return n, nil
}

func (m *mockNotificationRepo) ListForUser(ctx context.Context, userID string, limit int) ([]domain.Notification, error) {
	var out []domain.Notification
	for _, n := range m.notifications {
		if n.UserID == userID && len(out) < limit {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *mockNotificationRepo) CountUnread(ctx context.Context, userID string) (int64, error) {
	var count int64
	for _, n := range m.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (m *mockNotificationRepo) MarkRead(ctx context.Context, id string, userID string) (domain.Notification, error) {
	for i, n := range m.notifications {
		if n.ID == id && n.UserID == userID {
			m.notifications[i].IsRead = true
			return m.notifications[i], nil
		}
	}
	return domain.Notification{}, domain.NotFoundError{Resource: "notification"}
}

type sentEmail struct {
	to      string
	subject string
	html    string
}

type mockEmailSender struct {
	enabled bool
	err     error
	sent    []sentEmail
}

func (m *mockEmailSender) Enabled() bool { return m.enabled }

func (m *mockEmailSender) Send(ctx context.Context, to, subject, html string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentEmail{to: to, subject: subject, html: html})
	return nil
}

type mockFeedbackRepo struct {
	feedbacks map[string]domain.Feedback
}

func newMockFeedbackRepo() *mockFeedbackRepo {
	return &mockFeedbackRepo{feedbacks: map[string]domain.Feedback{}}
}

func (m *mockFeedbackRepo) Create(ctx context.Context, fb domain.Feedback) (domain.Feedback, error) {
	if fb.ID == "" {
		fb.ID = "fb-1"
	}
	m.feedbacks[fb.ID] = fb
	return fb, nil
}

func (m *mockFeedbackRepo) Get(ctx context.Context, id string) (domain.Feedback, error) {
	fb, ok := m.feedbacks[id]
	if !ok {
		return domain.Feedback{}, domain.NotFoundError{Resource: "feedback"}
	}
	return fb, nil
}

func (m *mockFeedbackRepo) MarkShared(ctx context.Context, id string, at time.Time) (domain.Feedback, error) {
	fb, ok := m.feedbacks[id]
	if !ok {
		return domain.Feedback{}, domain.NotFoundError{Resource: "feedback"}
	}
	if fb.IsShared {
		return domain.Feedback{}, domain.ConflictError{Reason: "feedback already shared"}
	}
	fb.IsShared = true
	fb.SharedAt = &at
	m.feedbacks[id] = fb
	return fb, nil
}

func (m *mockFeedbackRepo) ListSharedForUser(ctx context.Context, userID string) ([]domain.Feedback, error) {
	var out []domain.Feedback
	for _, fb := range m.feedbacks {
		if fb.TargetUser == userID && fb.IsShared {
			out = append(out, fb)
		}
	}
	return out, nil
}

func (m *mockFeedbackRepo) CountShared(ctx context.Context) (int64, error) {
	var n int64
	for _, fb := range m.feedbacks {
		if fb.IsShared {
			n++
		}
	}
	return n, nil
}
