package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/mock/gomock"

	"github.com/oyaguma3/fints-tan-bridge/internal/banking"
	"github.com/oyaguma3/fints-tan-bridge/internal/config"
	"github.com/oyaguma3/fints-tan-bridge/internal/engine"
	"github.com/oyaguma3/fints-tan-bridge/internal/fints"
	"github.com/oyaguma3/fints-tan-bridge/internal/mocks"
	"github.com/oyaguma3/fints-tan-bridge/internal/session"
	"github.com/oyaguma3/fints-tan-bridge/pkg/apperr"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() *config.Config {
	return &config.Config{
		ProductID:      "TESTPRODUCT",
		ProductVersion: "1.0",
		GinMode:        gin.TestMode,
		CookieSecure:   false,
		LogMaskAccount: true,
	}
}

// newTestRouter はモックの銀行クライアントを注入したルーターを組み立てる。
func newTestRouter(client banking.Client) (*gin.Engine, session.Store) {
	cfg := testConfig()
	factory := func(ctx context.Context, params banking.StartParams) (banking.Client, error) {
		return client, nil
	}
	sessions := session.NewMemoryStore()
	eng := engine.NewEngine(factory, nil, cfg)
	h := NewBankingHandler(eng, sessions, cfg)

	router := gin.New()
	router.GET("/healthz", h.HandleHealth)
	router.POST("/api/v1/banking", h.HandleBanking)
	return router, sessions
}

func doRequest(router *gin.Engine, body string, cookie string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/banking", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: config.SessionCookieName, Value: cookie})
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

const startBody = `{"action":"startSession","payload":{"bankUrl":"https://bank.example/fints","bankId":"12030000","userId":"testuser","pin":"12345"}}`

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == config.SessionCookieName {
			return c.Value
		}
	}
	t.Fatal("session cookie not set")
	return ""
}

func TestHandleHealth(t *testing.T) {
	router, _ := newTestRouter(nil)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestHandleBanking_InvalidBody(t *testing.T) {
	router, _ := newTestRouter(nil)
	w := doRequest(router, `{"payload":{}}`, "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "application/problem+json") {
		t.Errorf("Content-Type = %q, want problem+json", ct)
	}
}

func TestHandleBanking_StartSessionSetsCookie(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockClient := mocks.NewMockClient(ctrl)
	mockClient.EXPECT().Synchronize(gomock.Any()).Return(&banking.Response{
		Information: &banking.Information{SystemID: "SYS1"},
	}, nil)

	router, _ := newTestRouter(mockClient)
	w := doRequest(router, startBody, "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body = %s", w.Code, w.Body.String())
	}

	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == config.SessionCookieName {
			cookie = c
		}
	}
	if cookie == nil {
		t.Fatal("session cookie not set on first contact")
	}
	if !cookie.HttpOnly {
		t.Error("cookie should be HttpOnly")
	}
	if cookie.SameSite != http.SameSiteLaxMode {
		t.Error("cookie should be SameSite=Lax")
	}

	// startSessionはbankingInformationをトップレベルで返す
	var body map[string]json.RawMessage
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("response unmarshal error: %v", err)
	}
	if _, ok := body["bankingInformation"]; !ok {
		t.Errorf("body = %s, want top-level bankingInformation", w.Body.String())
	}
	if _, ok := body["data"]; ok {
		t.Error("startSession response must not nest the result under data")
	}
	if _, ok := body["success"]; ok {
		t.Error("startSession response must not carry a success wrapper")
	}
}

func TestHandleBanking_SynchronizeWrapsData(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockClient := mocks.NewMockClient(ctrl)
	mockClient.EXPECT().Synchronize(gomock.Any()).Return(&banking.Response{
		Information: &banking.Information{SystemID: "SYS1"},
	}, nil).Times(2)

	router, _ := newTestRouter(mockClient)
	first := doRequest(router, startBody, "")
	id := sessionCookie(t, first)

	w := doRequest(router, `{"action":"synchronize"}`, id)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body = %s", w.Code, w.Body.String())
	}
	var resp SuccessResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response unmarshal error: %v", err)
	}
	if !resp.Success {
		t.Error("Success = false, want true")
	}
	data, ok := resp.Data.(map[string]any)
	if !ok {
		t.Fatalf("Data type = %T, want object", resp.Data)
	}
	if _, ok := data["bankingInformation"]; !ok {
		t.Errorf("data = %v, want nested bankingInformation", data)
	}
}

func TestHandleBanking_ExistingCookieNotReissued(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockClient := mocks.NewMockClient(ctrl)
	mockClient.EXPECT().Synchronize(gomock.Any()).Return(&banking.Response{
		Information: &banking.Information{SystemID: "SYS1"},
	}, nil).Times(2)
	// 2回目のstartSessionは前回ダイアログを閉じてから開き直す
	mockClient.EXPECT().Close(gomock.Any()).Return(nil)

	router, _ := newTestRouter(mockClient)
	first := doRequest(router, startBody, "")
	id := sessionCookie(t, first)

	second := doRequest(router, startBody, id)
	if second.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", second.Code)
	}
	// 既存セッションにはSet-Cookieを発行しない
	for _, c := range second.Result().Cookies() {
		if c.Name == config.SessionCookieName {
			t.Error("cookie should not be reissued for a known session")
		}
	}
}

func TestHandleBanking_NoActiveSession(t *testing.T) {
	router, _ := newTestRouter(nil)
	w := doRequest(router, `{"action":"synchronize"}`, "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400, body = %s", w.Code, w.Body.String())
	}
}

func TestHandleBanking_TanChallengeReturns200(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockClient := mocks.NewMockClient(ctrl)
	mockClient.EXPECT().Synchronize(gomock.Any()).Return(&banking.Response{
		Tan: &banking.TanChallenge{Reference: "R1", Challenge: "App-Freigabe erforderlich"},
	}, nil)

	router, _ := newTestRouter(mockClient)
	w := doRequest(router, startBody, "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var res engine.Result
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("response unmarshal error: %v", err)
	}
	if !res.RequiresTan || res.TanReference != "R1" {
		t.Errorf("response = %+v, want requiresTan with R1", res)
	}
}

func TestHandleBanking_StillPendingReturns202(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockClient := mocks.NewMockClient(ctrl)
	mockClient.EXPECT().Synchronize(gomock.Any()).Return(&banking.Response{
		Tan: &banking.TanChallenge{Reference: "R1"},
	}, nil)
	mockClient.EXPECT().SynchronizeWithTan(gomock.Any(), "R1", "").Return(nil, &banking.DialogError{
		Answers: []fints.Answer{{Code: fints.CodeSCAPending, Text: "noch nicht freigegeben"}},
	})

	router, _ := newTestRouter(mockClient)
	first := doRequest(router, startBody, "")
	id := sessionCookie(t, first)

	w := doRequest(router, `{"action":"submitTan","payload":{"op":"sync","tanReference":"R1"}}`, id)
	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202, body = %s", w.Code, w.Body.String())
	}
	var resp PendingResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response unmarshal error: %v", err)
	}
	if !resp.IsPending || resp.TanReference != "R1" {
		t.Errorf("response = %+v, want isPending with R1", resp)
	}
}

func TestHandleBanking_DecoupledFailedReturns400(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockClient := mocks.NewMockClient(ctrl)
	mockClient.EXPECT().Synchronize(gomock.Any()).Return(&banking.Response{
		Tan: &banking.TanChallenge{Reference: "R1"},
	}, nil)
	mockClient.EXPECT().SynchronizeWithTan(gomock.Any(), "R1", "").Return(nil, &banking.DialogError{
		Answers: []fints.Answer{{Code: fints.CodeApprovalDeclined, Text: "Freigabe abgelehnt"}},
	})

	router, _ := newTestRouter(mockClient)
	first := doRequest(router, startBody, "")
	id := sessionCookie(t, first)

	w := doRequest(router, `{"action":"submitTan","payload":{"op":"sync","tanReference":"R1"}}`, id)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400, body = %s", w.Code, w.Body.String())
	}
}

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"poll timeout", apperr.NewPollTimeoutError("R1", 60, 5*time.Minute), http.StatusRequestTimeout},
		{"no active session", apperr.ErrNoActiveSession, http.StatusBadRequest},
		{"tan invalid", apperr.ErrTanInvalid, http.StatusBadRequest},
		{"bridge unavailable", apperr.ErrBridgeUnavailable, http.StatusInternalServerError},
		{"unclassified", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyStatus(tt.err); got != tt.want {
				t.Errorf("classifyStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}
