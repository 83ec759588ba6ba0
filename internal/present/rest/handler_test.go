package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mizuleaf/callscope/internal/domain"
	"github.com/mizuleaf/callscope/internal/service"
	"github.com/mizuleaf/callscope/internal/usecase"
)

type stubUserLookup struct {
	users map[string]domain.User
}

func (s *stubUserLookup) Get(ctx context.Context, id string) (domain.User, error) {
	u, ok := s.users[id]
	if !ok {
		return domain.User{}, domain.NotFoundError{Resource: "user"}
	}
	return u, nil
}

func (s *stubUserLookup) GetByTokenHash(ctx context.Context, tokenHash string) (domain.User, error) {
	return domain.User{}, domain.NotFoundError{Resource: "user"}
}

type stubAccountRepo struct{}

func (stubAccountRepo) Create(ctx context.Context, a domain.Account) (domain.Account, error) {
	return a, nil
}
func (stubAccountRepo) Get(ctx context.Context, id string) (domain.Account, error) {
	return domain.Account{}, domain.NotFoundError{Resource: "account"}
}
func (stubAccountRepo) List(ctx context.Context) ([]domain.Account, error)       { return nil, nil }
func (stubAccountRepo) ListActive(ctx context.Context) ([]domain.Account, error) { return nil, nil }
func (stubAccountRepo) UpdateLastSynced(ctx context.Context, id string, at time.Time) error {
	return nil
}

type stubRecordingRepo struct{}

func (stubRecordingRepo) Create(ctx context.Context, rec domain.Recording) (domain.Recording, error) {
	return rec, nil
}
func (stubRecordingRepo) Get(ctx context.Context, id string) (domain.Recording, error) {
	return domain.Recording{}, domain.NotFoundError{Resource: "recording"}
}
func (stubRecordingRepo) ExistsByExternalID(ctx context.Context, externalID string) (bool, error) {
	return false, nil
}
func (stubRecordingRepo) List(ctx context.Context, filter domain.RecordingFilter) ([]domain.Recording, error) {
	return nil, nil
}
func (stubRecordingRepo) UpdateStatus(ctx context.Context, id string, status domain.RecordingStatus) error {
	return nil
}
func (stubRecordingRepo) UpdateStoragePath(ctx context.Context, id string, path string) error {
	return nil
}
func (stubRecordingRepo) SoftDelete(ctx context.Context, id string, at time.Time) error { return nil }
func (stubRecordingRepo) Count(ctx context.Context, status string) (int64, error)       { return 0, nil }

type stubTokenProvider struct{}

func (stubTokenProvider) GetAccessToken(ctx context.Context, accountID, clientID, clientSecret string) (string, error) {
	return "tok", nil
}

type stubMeetingLister struct{}

func (stubMeetingLister) ListRecordings(ctx context.Context, accessToken, userID string, from, to time.Time) ([]domain.Meeting, error) {
	return nil, nil
}

type stubAnalysisRepo struct{}

func (stubAnalysisRepo) GetByRecording(ctx context.Context, recordingID string) (domain.Analysis, error) {
	return domain.Analysis{}, domain.NotFoundError{Resource: "analysis"}
}
func (stubAnalysisRepo) UpsertTranscript(ctx context.Context, recordingID string, transcript []domain.TranscriptSegment) error {
	return nil
}
func (stubAnalysisRepo) UpdateResult(ctx context.Context, recordingID string, result domain.AnalysisResult) error {
	return nil
}
func (stubAnalysisRepo) UpdateIssues(ctx context.Context, recordingID string, issues []domain.Issue) error {
	return nil
}
func (stubAnalysisRepo) CountIssues(ctx context.Context) (int64, error) { return 0, nil }

type stubRuleRepo struct{}

func (stubRuleRepo) Create(ctx context.Context, rule domain.KnowledgeRule) (domain.KnowledgeRule, error) {
	return rule, nil
}
func (stubRuleRepo) Get(ctx context.Context, id string) (domain.KnowledgeRule, error) {
	return domain.KnowledgeRule{}, domain.NotFoundError{Resource: "knowledge rule"}
}
func (stubRuleRepo) Update(ctx context.Context, rule domain.KnowledgeRule) (domain.KnowledgeRule, error) {
	return rule, nil
}
func (stubRuleRepo) Delete(ctx context.Context, id string) error                { return nil }
func (stubRuleRepo) List(ctx context.Context) ([]domain.KnowledgeRule, error)   { return nil, nil }
func (stubRuleRepo) ListActive(ctx context.Context) ([]domain.KnowledgeRule, error) {
	return nil, nil
}

type stubTranscriber struct{}

func (stubTranscriber) TranscribeFromURL(ctx context.Context, audioURL string) ([]domain.TranscriptSegment, error) {
	return nil, nil
}

type stubAnalyzer struct{}

func (stubAnalyzer) AnalyzeTranscript(ctx context.Context, transcript []domain.TranscriptSegment, rules []domain.KnowledgeRule) (domain.AnalysisResult, error) {
	return domain.AnalysisResult{}, nil
}

type stubMedia struct{}

func (stubMedia) DownloadVideo(ctx context.Context, url, outputPath, accessToken string) error {
	return nil
}
func (stubMedia) ExtractClip(ctx context.Context, inputPath string, startMs, endMs int64, outputPath string) (string, error) {
	return outputPath, nil
}
func (stubMedia) Cleanup(paths ...string) {}

type stubClipRepo struct{}

func (stubClipRepo) Create(ctx context.Context, clip domain.Clip) (domain.Clip, error) {
	return clip, nil
}
func (stubClipRepo) Get(ctx context.Context, id string) (domain.Clip, error) {
	if id != "clip-1" {
		return domain.Clip{}, domain.NotFoundError{Resource: "clip"}
	}
	return domain.Clip{ID: "clip-1", RecordingID: "rec-1"}, nil
}
func (stubClipRepo) ListByRecording(ctx context.Context, recordingID string) ([]domain.Clip, error) {
	return nil, nil
}
func (stubClipRepo) Delete(ctx context.Context, id string) error { return nil }

type stubSignaler struct{}

func (stubSignaler) PublishStatusChange(ctx context.Context, recordingID string, from, to domain.RecordingStatus) {
}

type stubNotifier struct{}

func (stubNotifier) NotifyAnalysisComplete(ctx context.Context, recordingID, topic string) []domain.DeliveryResult {
	return nil
}

func newTestHandler(conf domain.Config) *Handler {
	users := &stubUserLookup{users: map[string]domain.User{
		"admin-1": {ID: "admin-1", Role: domain.RoleAdmin},
		"sales-1": {ID: "sales-1", Role: domain.RoleSales},
	}}
	auth := service.NewAuthService(users)
	sync := usecase.NewSyncUsecase(stubAccountRepo{}, stubRecordingRepo{}, stubTokenProvider{}, stubMeetingLister{})
	recording := usecase.NewRecordingUsecase(
		stubRecordingRepo{}, stubAnalysisRepo{}, stubRuleRepo{},
		stubTranscriber{}, stubAnalyzer{}, stubMedia{}, stubSignaler{}, stubNotifier{},
		"", "")
	clips := usecase.NewClipUsecase(stubClipRepo{}, stubRecordingRepo{}, stubMedia{}, "", "")

	return NewHandler(conf, auth, sync, recording, clips, nil, nil, nil, nil, nil)
}

func doRequest(h *Handler, req *http.Request, requesterID, role string) *httptest.ResponseRecorder {
	e := echo.New()
	h.RegisterRoutes(e)

	if requesterID != "" {
		ctx := context.WithValue(req.Context(), domain.RequesterIDCtxKey, requesterID)
		ctx = context.WithValue(ctx, domain.RequesterRoleCtxKey, role)
		req = req.WithContext(ctx)
	}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestEndpointsRequireAuthentication(t *testing.T) {
	h := newTestHandler(domain.Config{})

	paths := []struct{ method, path string }{
		{http.MethodPost, "/api/v1/sync"},
		{http.MethodGet, "/api/v1/recordings"},
		{http.MethodGet, "/api/v1/notifications"},
		{http.MethodGet, "/api/v1/dashboard/stats"},
	}
	for _, tc := range paths {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		rec := doRequest(h, req, "", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", tc.method, tc.path)
	}
}

func TestSyncRequiresAdminRoleFromStorage(t *testing.T) {
	h := newTestHandler(domain.Config{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sync", nil)
	rec := doRequest(h, req, "sales-1", domain.RoleSales)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// a forged role claim in the context must not bypass the storage check
	req = httptest.NewRequest(http.MethodPost, "/api/v1/sync", nil)
	rec = doRequest(h, req, "sales-1", domain.RoleAdmin)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSyncReturnsBatchResult(t *testing.T) {
	h := newTestHandler(domain.Config{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sync", nil)
	rec := doRequest(h, req, "admin-1", domain.RoleAdmin)
	require.Equal(t, http.StatusOK, rec.Code)

	var result domain.SyncResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 0, result.Synced)
	assert.Empty(t, result.Errors)
}

func TestCronSyncRejectsWrongSecret(t *testing.T) {
	h := newTestHandler(domain.Config{CronSecret: "s3cret", Environment: "development"})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cron/sync", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec := doRequest(h, req, "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCronSyncRequiresSchedulerSignatureInProduction(t *testing.T) {
	h := newTestHandler(domain.Config{CronSecret: "s3cret", Environment: "production"})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cron/sync", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	rec := doRequest(h, req, "", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/cron/sync", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	req.Header.Set("x-cron-signature", "sig")
	rec = doRequest(h, req, "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCronSyncSkipsSignatureInDevelopment(t *testing.T) {
	h := newTestHandler(domain.Config{CronSecret: "s3cret", Environment: "development"})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cron/sync", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	rec := doRequest(h, req, "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Success bool `json:"success"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.True(t, payload.Success)
}

func TestCronSyncFailsWithoutConfiguredSecret(t *testing.T) {
	h := newTestHandler(domain.Config{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cron/sync", nil)
	rec := doRequest(h, req, "", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestDeleteClipRequiresAdmin(t *testing.T) {
	h := newTestHandler(domain.Config{})

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/recordings/rec-1/clips/clip-1", nil)
	rec := doRequest(h, req, "sales-1", domain.RoleSales)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDeleteClipRemovesClip(t *testing.T) {
	h := newTestHandler(domain.Config{})

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/recordings/rec-1/clips/clip-1", nil)
	rec := doRequest(h, req, "admin-1", domain.RoleAdmin)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodDelete, "/api/v1/recordings/rec-1/clips/nope", nil)
	rec = doRequest(h, req, "admin-1", domain.RoleAdmin)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetRecordingNotFound(t *testing.T) {
	h := newTestHandler(domain.Config{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/recordings/nope", nil)
	rec := doRequest(h, req, "admin-1", domain.RoleAdmin)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
