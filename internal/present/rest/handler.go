package rest

import (
	"errors"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mizuleaf/callscope/internal/domain"
	"github.com/mizuleaf/callscope/internal/present/rest/presenter"
	"github.com/mizuleaf/callscope/internal/service"
	"github.com/mizuleaf/callscope/internal/usecase"
)

type Handler struct {
	config        domain.Config
	auth          *service.AuthService
	sync          *usecase.SyncUsecase
	recording     *usecase.RecordingUsecase
	clips         *usecase.ClipUsecase
	rules         *usecase.RuleUsecase
	feedbacks     *usecase.FeedbackUsecase
	notifications *usecase.NotificationUsecase
	accounts      *usecase.AccountUsecase
	dashboard     *usecase.DashboardUsecase
}

func NewHandler(
	config domain.Config,
	auth *service.AuthService,
	sync *usecase.SyncUsecase,
	recording *usecase.RecordingUsecase,
	clips *usecase.ClipUsecase,
	rules *usecase.RuleUsecase,
	feedbacks *usecase.FeedbackUsecase,
	notifications *usecase.NotificationUsecase,
	accounts *usecase.AccountUsecase,
	dashboard *usecase.DashboardUsecase,
) *Handler {
	return &Handler{
		config:        config,
		auth:          auth,
		sync:          sync,
		recording:     recording,
		clips:         clips,
		rules:         rules,
		feedbacks:     feedbacks,
		notifications: notifications,
		accounts:      accounts,
		dashboard:     dashboard,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api/v1")

	api.POST("/sync", h.handleSync)
	api.POST("/cron/sync", h.handleCronSync)

	api.GET("/recordings", h.handleListRecordings)
	api.GET("/recordings/:id", h.handleGetRecording)
	api.DELETE("/recordings/:id", h.handleDeleteRecording)
	api.POST("/recordings/:id/download", h.handleDownload)
	api.POST("/recordings/:id/transcribe", h.handleTranscribe)
	api.POST("/recordings/:id/analyze", h.handleAnalyze)
	api.GET("/recordings/:id/clips", h.handleListClips)
	api.POST("/recordings/:id/clips", h.handleCreateClip)
	api.DELETE("/recordings/:id/clips/:clipId", h.handleDeleteClip)
	api.PATCH("/recordings/:id/issues/:index", h.handleApproveIssue)

	api.GET("/knowledge", h.handleListRules)
	api.POST("/knowledge", h.handleCreateRule)
	api.PUT("/knowledge/:id", h.handleUpdateRule)
	api.DELETE("/knowledge/:id", h.handleDeleteRule)

	api.POST("/feedbacks", h.handleCreateFeedback)
	api.POST("/feedbacks/:id/share", h.handleShareFeedback)
	api.GET("/feedbacks/my", h.handleMyFeedbacks)

	api.GET("/notifications", h.handleListNotifications)
	api.PATCH("/notifications/:id", h.handleMarkNotificationRead)

	api.GET("/admin/accounts", h.handleListAccounts)
	api.POST("/admin/accounts", h.handleCreateAccount)

	api.GET("/dashboard/stats", h.handleDashboardStats)
}

// requesterID pulls the authenticated user out of the request context. Empty
// means the middleware saw no valid token.
func requesterID(c echo.Context) string {
	id, _ := c.Request().Context().Value(domain.RequesterIDCtxKey).(string)
	return id
}

func requesterRole(c echo.Context) string {
	role, _ := c.Request().Context().Value(domain.RequesterRoleCtxKey).(string)
	return role
}

// fail maps domain errors to their HTTP status.
func fail(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return presenter.NotFound(c, err.Error())
	case errors.Is(err, domain.ErrConflict):
		return presenter.Conflict(c, err.Error())
	case errors.Is(err, domain.ErrInvalid):
		return presenter.BadRequestMessage(c, err.Error())
	default:
		return presenter.InternalError(c, err)
	}
}

// requireUser returns the requester id, writing a 401 when there is none.
// ok=false means the response went out already.
func (h *Handler) requireUser(c echo.Context) (string, bool) {
	id := requesterID(c)
	if id == "" {
		_ = presenter.Unauthorized(c, "authentication required")
		return "", false
	}
	return id, true
}

// requireAdmin returns the requester id, writing 401/403 when the check
// fails. The role check goes back to storage, never to the client's claim.
func (h *Handler) requireAdmin(c echo.Context) (string, bool) {
	id, ok := h.requireUser(c)
	if !ok {
		return "", false
	}
	if _, err := h.auth.RequireAdmin(c.Request().Context(), id); err != nil {
		_ = presenter.Forbidden(c, "admin role required")
		return "", false
	}
	return id, true
}

func (h *Handler) handleSync(c echo.Context) error {
	if _, ok := h.requireAdmin(c); !ok {
		return nil
	}

	result, err := h.sync.SyncAll(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return presenter.OK(c, result)
}

// handleCronSync is the scheduler entrypoint: shared-secret bearer instead of
// a user token, plus the scheduler's signature header outside development.
func (h *Handler) handleCronSync(c echo.Context) error {
	if h.config.CronSecret == "" {
		return presenter.InternalError(c, errors.New("cron secret not configured"))
	}
	if c.Request().Header.Get("Authorization") != "Bearer "+h.config.CronSecret {
		return presenter.Unauthorized(c, "unauthorized")
	}
	if !h.config.IsDevelopment() && c.Request().Header.Get("x-cron-signature") == "" {
		return presenter.Forbidden(c, "forbidden")
	}

	start := time.Now()
	result, err := h.sync.SyncAll(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}

	return presenter.OK(c, echo.Map{
		"success":     true,
		"data":        result,
		"duration_ms": time.Since(start).Milliseconds(),
	})
}

func (h *Handler) handleListRecordings(c echo.Context) error {
	userID, ok := h.requireUser(c)
	if !ok {
		return nil
	}

	filter := domain.RecordingFilter{
		Status: c.QueryParam("status"),
	}
	if pageStr := c.QueryParam("page"); pageStr != "" {
		page, err := strconv.Atoi(pageStr)
		if err != nil {
			return presenter.BadRequestMessage(c, "invalid page parameter")
		}
		filter.Page = page
	}
	if limitStr := c.QueryParam("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			return presenter.BadRequestMessage(c, "invalid limit parameter")
		}
		filter.Limit = limit
	}
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}

	// 管理者以外は自分のアカウントの録画だけ
	if requesterRole(c) != domain.RoleAdmin {
		filter.OwnerID = userID
	}

	recordings, err := h.recording.List(c.Request().Context(), filter)
	if err != nil {
		return fail(c, err)
	}
	return presenter.OK(c, echo.Map{"recordings": recordings})
}

func (h *Handler) handleGetRecording(c echo.Context) error {
	if _, ok := h.requireUser(c); !ok {
		return nil
	}

	rec, analysis, err := h.recording.GetWithAnalysis(c.Request().Context(), c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	return presenter.OK(c, echo.Map{"recording": rec, "analysis": analysis})
}

func (h *Handler) handleDeleteRecording(c echo.Context) error {
	if _, ok := h.requireAdmin(c); !ok {
		return nil
	}

	if err := h.recording.SoftDelete(c.Request().Context(), c.Param("id")); err != nil {
		return fail(c, err)
	}
	return presenter.OK(c, echo.Map{"status": "ok"})
}

func (h *Handler) handleDownload(c echo.Context) error {
	if _, ok := h.requireAdmin(c); !ok {
		return nil
	}

	result, err := h.recording.Download(c.Request().Context(), c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	return presenter.OK(c, result)
}

func (h *Handler) handleTranscribe(c echo.Context) error {
	if _, ok := h.requireUser(c); !ok {
		return nil
	}

	result, err := h.recording.Transcribe(c.Request().Context(), c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	return presenter.OK(c, result)
}

func (h *Handler) handleAnalyze(c echo.Context) error {
	if _, ok := h.requireUser(c); !ok {
		return nil
	}

	result, err := h.recording.Analyze(c.Request().Context(), c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	return presenter.OK(c, result)
}

func (h *Handler) handleListClips(c echo.Context) error {
	if _, ok := h.requireUser(c); !ok {
		return nil
	}

	clips, err := h.clips.List(c.Request().Context(), c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	return presenter.OK(c, echo.Map{"clips": clips})
}

func (h *Handler) handleCreateClip(c echo.Context) error {
	if _, ok := h.requireAdmin(c); !ok {
		return nil
	}

	var input usecase.CreateClipInput
	if err := c.Bind(&input); err != nil {
		return presenter.BadRequest(c, err)
	}
	input.RecordingID = c.Param("id")

	clip, err := h.clips.Create(c.Request().Context(), input)
	if err != nil {
		return fail(c, err)
	}
	return presenter.Created(c, clip)
}

func (h *Handler) handleDeleteClip(c echo.Context) error {
	if _, ok := h.requireAdmin(c); !ok {
		return nil
	}

	if err := h.clips.Delete(c.Request().Context(), c.Param("clipId")); err != nil {
		return fail(c, err)
	}
	return presenter.OK(c, echo.Map{"status": "ok"})
}

func (h *Handler) handleApproveIssue(c echo.Context) error {
	if _, ok := h.requireAdmin(c); !ok {
		return nil
	}

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid issue index")
	}

	var req struct {
		Approved bool `json:"approved"`
	}
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	issue, err := h.recording.ApproveIssue(c.Request().Context(), c.Param("id"), index, req.Approved)
	if err != nil {
		return fail(c, err)
	}
	return presenter.OK(c, issue)
}

func (h *Handler) handleListRules(c echo.Context) error {
	if _, ok := h.requireUser(c); !ok {
		return nil
	}

	rules, err := h.rules.List(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return presenter.OK(c, echo.Map{"rules": rules})
}

func (h *Handler) handleCreateRule(c echo.Context) error {
	if _, ok := h.requireAdmin(c); !ok {
		return nil
	}

	var rule domain.KnowledgeRule
	if err := c.Bind(&rule); err != nil {
		return presenter.BadRequest(c, err)
	}

	created, err := h.rules.Create(c.Request().Context(), rule)
	if err != nil {
		return fail(c, err)
	}
	return presenter.Created(c, created)
}

func (h *Handler) handleUpdateRule(c echo.Context) error {
	if _, ok := h.requireAdmin(c); !ok {
		return nil
	}

	var rule domain.KnowledgeRule
	if err := c.Bind(&rule); err != nil {
		return presenter.BadRequest(c, err)
	}
	rule.ID = c.Param("id")

	updated, err := h.rules.Update(c.Request().Context(), rule)
	if err != nil {
		return fail(c, err)
	}
	return presenter.OK(c, updated)
}

func (h *Handler) handleDeleteRule(c echo.Context) error {
	if _, ok := h.requireAdmin(c); !ok {
		return nil
	}

	if err := h.rules.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return fail(c, err)
	}
	return presenter.OK(c, echo.Map{"status": "ok"})
}

func (h *Handler) handleCreateFeedback(c echo.Context) error {
	userID, ok := h.requireAdmin(c)
	if !ok {
		return nil
	}

	var fb domain.Feedback
	if err := c.Bind(&fb); err != nil {
		return presenter.BadRequest(c, err)
	}
	fb.CreatedBy = userID

	created, err := h.feedbacks.Create(c.Request().Context(), fb)
	if err != nil {
		return fail(c, err)
	}
	return presenter.Created(c, created)
}

func (h *Handler) handleShareFeedback(c echo.Context) error {
	if _, ok := h.requireAdmin(c); !ok {
		return nil
	}

	fb, err := h.feedbacks.Share(c.Request().Context(), c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	return presenter.OK(c, fb)
}

func (h *Handler) handleMyFeedbacks(c echo.Context) error {
	userID, ok := h.requireUser(c)
	if !ok {
		return nil
	}

	feedbacks, err := h.feedbacks.ListMine(c.Request().Context(), userID)
	if err != nil {
		return fail(c, err)
	}
	return presenter.OK(c, echo.Map{"feedbacks": feedbacks})
}

func (h *Handler) handleListNotifications(c echo.Context) error {
	userID, ok := h.requireUser(c)
	if !ok {
		return nil
	}

	limit := 50
	if limitStr := c.QueryParam("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil {
			return presenter.BadRequestMessage(c, "invalid limit parameter")
		}
		limit = parsed
	}

	items, unread, err := h.notifications.ListForUser(c.Request().Context(), userID, limit)
	if err != nil {
		return fail(c, err)
	}
	return presenter.OK(c, echo.Map{"notifications": items, "unreadCount": unread})
}

func (h *Handler) handleMarkNotificationRead(c echo.Context) error {
	userID, ok := h.requireUser(c)
	if !ok {
		return nil
	}

	updated, err := h.notifications.MarkRead(c.Request().Context(), c.Param("id"), userID)
	if err != nil {
		return fail(c, err)
	}
	return presenter.OK(c, updated)
}

func (h *Handler) handleListAccounts(c echo.Context) error {
	if _, ok := h.requireAdmin(c); !ok {
		return nil
	}

	accounts, err := h.accounts.List(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return presenter.OK(c, echo.Map{"accounts": accounts})
}

func (h *Handler) handleCreateAccount(c echo.Context) error {
	if _, ok := h.requireAdmin(c); !ok {
		return nil
	}

	var req struct {
		DisplayName  string `json:"displayName"`
		OwnerID      string `json:"ownerId"`
		ExternalID   string `json:"accountId"`
		ClientID     string `json:"clientId"`
		ClientSecret string `json:"clientSecret"`
	}
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	account, err := h.accounts.Create(c.Request().Context(), domain.Account{
		DisplayName:  req.DisplayName,
		OwnerID:      req.OwnerID,
		ExternalID:   req.ExternalID,
		ClientID:     req.ClientID,
		ClientSecret: req.ClientSecret,
	})
	if err != nil {
		return fail(c, err)
	}
	return presenter.Created(c, account)
}

func (h *Handler) handleDashboardStats(c echo.Context) error {
	if _, ok := h.requireUser(c); !ok {
		return nil
	}

	stats, err := h.dashboard.Stats(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return presenter.OK(c, stats)
}
