// Package handler はHTTPリクエストハンドラーを提供する。
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oyaguma3/fints-tan-bridge/internal/config"
	"github.com/oyaguma3/fints-tan-bridge/internal/engine"
	"github.com/oyaguma3/fints-tan-bridge/internal/session"
	"github.com/oyaguma3/fints-tan-bridge/pkg/apperr"
	"github.com/oyaguma3/fints-tan-bridge/pkg/httputil"
)

// TraceIDKey はコンテキストにTraceIDを格納するキー。
const TraceIDKey = "trace_id"

// BankingRequest はPOST /api/v1/banking のリクエストボディ。
type BankingRequest struct {
	Action  string          `json:"action" binding:"required"`
	Payload json.RawMessage `json:"payload"`
}

// PendingResponse は202 Acceptedで返す承認待ちレスポンス。
type PendingResponse struct {
	Error        string `json:"error"`
	IsPending    bool   `json:"isPending"`
	TanReference string `json:"tanReference"`
}

// SuccessResponse は最終結果のレスポンス。
type SuccessResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
}

// BankingHandler は銀行アクションAPIのハンドラー。
type BankingHandler struct {
	eng      *engine.Engine
	sessions session.Store
	cfg      *config.Config
}

// NewBankingHandler は新しいBankingHandlerを生成する。
func NewBankingHandler(eng *engine.Engine, sessions session.Store, cfg *config.Config) *BankingHandler {
	return &BankingHandler{
		eng:      eng,
		sessions: sessions,
		cfg:      cfg,
	}
}

// HandleBanking はPOST /api/v1/banking のハンドラー。
func (h *BankingHandler) HandleBanking(c *gin.Context) {
	traceID, _ := c.Get(TraceIDKey)
	ctx := c.Request.Context()

	var req BankingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("invalid request body",
			"trace_id", traceID,
			"event_id", "REQ_BIND_ERR",
			"error", err.Error(),
		)
		httputil.WriteError(c, httputil.BadRequest("Invalid request body"))
		return
	}

	sess := h.resolveSession(c)

	res, err := h.eng.Dispatch(ctx, sess, req.Action, req.Payload)
	if err != nil {
		h.handleError(c, traceID, req.Action, err)
		return
	}

	switch {
	case res.Pending:
		// デカップルド承認がまだ保留。参照を保持して再試行を促す
		slog.Info("action still pending approval",
			"trace_id", traceID,
			"event_id", "ACTION_PENDING",
			"action", req.Action,
			"session_id", sess.ID,
			"http_status", http.StatusAccepted,
		)
		c.JSON(http.StatusAccepted, PendingResponse{
			Error:        "the approval in the banking app is still pending",
			IsPending:    true,
			TanReference: res.TanReference,
		})

	case res.RequiresTan:
		slog.Info("action requires TAN",
			"trace_id", traceID,
			"event_id", "ACTION_TAN_REQUIRED",
			"action", req.Action,
			"session_id", sess.ID,
			"http_status", http.StatusOK,
		)
		c.JSON(http.StatusOK, res)

	default:
		slog.Info("action completed",
			"trace_id", traceID,
			"event_id", "ACTION_OK",
			"action", req.Action,
			"session_id", sess.ID,
			"http_status", http.StatusOK,
		)
		// startSession/selectTanMethodはbankingInformationをトップレベルで返す。
		// それ以外のアクションは{success, data}で包む。
		if res.BankingInformation != nil {
			c.JSON(http.StatusOK, res)
			return
		}
		c.JSON(http.StatusOK, SuccessResponse{Success: true, Data: res.Data})
	}
}

// resolveSession はクッキーからセッションを解決する。
// 新規作成時のみSet-Cookieを発行する。
func (h *BankingHandler) resolveSession(c *gin.Context) *session.Session {
	var id string
	if cookie, err := c.Cookie(config.SessionCookieName); err == nil {
		id = cookie
	}

	sess, created := h.sessions.GetOrCreate(id)
	if created {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(
			config.SessionCookieName,
			sess.ID,
			config.SessionCookieMaxAge,
			"/",
			"",
			h.cfg.CookieSecure,
			true, // HttpOnly
		)
	}
	return sess
}

// handleError はエラー分類に応じたHTTPステータスへ写像する。
func (h *BankingHandler) handleError(c *gin.Context, traceID any, action string, err error) {
	status := classifyStatus(err)

	logLevel := slog.LevelWarn
	if status == http.StatusInternalServerError {
		logLevel = slog.LevelError
	}
	slog.Log(c.Request.Context(), logLevel, "action failed",
		"trace_id", traceID,
		"event_id", "ACTION_NG",
		"action", action,
		"http_status", status,
		"error", err.Error(),
	)

	switch status {
	case http.StatusRequestTimeout:
		httputil.WriteError(c, httputil.RequestTimeout(err.Error()))
	case http.StatusInternalServerError:
		httputil.WriteError(c, httputil.InternalServerError("An unexpected error occurred"))
	default:
		httputil.WriteError(c, httputil.BadRequest(err.Error()))
	}
}

// classifyStatus はアプリエラーをHTTPステータスへ写像する。
//   - 400: セッション/認証情報/TAN不正/承認失敗/バリデーション
//   - 408: ポーリング予算超過（保留は温存されている）
//   - 500: 未分類およびインフラ障害
func classifyStatus(err error) int {
	var pte *apperr.PollTimeoutError
	if errors.As(err, &pte) {
		return http.StatusRequestTimeout
	}

	var ve *apperr.ValidationError
	switch {
	case errors.As(err, &ve),
		errors.Is(err, apperr.ErrNoActiveSession),
		errors.Is(err, apperr.ErrNoAccounts),
		errors.Is(err, apperr.ErrNoPendingOperation),
		errors.Is(err, apperr.ErrOperationPending),
		errors.Is(err, apperr.ErrPollInFlight),
		errors.Is(err, apperr.ErrTanInvalid),
		errors.Is(err, apperr.ErrDecoupledCancelled),
		errors.Is(err, apperr.ErrPollCancelled),
		errors.Is(err, apperr.ErrPinTemporarilyBlocked),
		errors.Is(err, apperr.ErrLoginFailed),
		errors.Is(err, apperr.ErrAccountLocked),
		errors.Is(err, apperr.ErrInvalidAction),
		errors.Is(err, apperr.ErrInvalidPayload):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
