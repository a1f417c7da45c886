package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/oyaguma3/fints-tan-bridge/internal/banking"
	"github.com/oyaguma3/fints-tan-bridge/internal/config"
	"github.com/oyaguma3/fints-tan-bridge/internal/fints"
	"github.com/oyaguma3/fints-tan-bridge/pkg/apperr"
)

func testBridge(url string) *Bridge {
	return New(&config.Config{
		ProductID:      "TESTPRODUCT",
		ProductVersion: "1.0",
		BridgeAPIURL:   url,
	})
}

func startParams() banking.StartParams {
	return banking.StartParams{
		BankURL: "https://bank.example/fints",
		BankID:  "12030000",
		UserID:  "testuser",
		PIN:     "12345",
	}
}

func TestFactory_OpensDialog(t *testing.T) {
	var gotBody dialogRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/dialogs":
			if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
				t.Errorf("request decode error: %v", err)
			}
			json.NewEncoder(w).Encode(dialogOpened{DialogID: "d-1"})
		case "/api/v1/dialogs/d-1/synchronize":
			json.NewEncoder(w).Encode(responseBody{
				Information: &banking.Information{SystemID: "SYS1"},
			})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	b := testBridge(srv.URL)
	client, err := b.Factory()(context.Background(), startParams())
	if err != nil {
		t.Fatalf("Factory error: %v", err)
	}
	// 省略時はブリッジ設定の製品情報を補完する
	if gotBody.ProductID != "TESTPRODUCT" || gotBody.ProductVersion != "1.0" {
		t.Errorf("product = %s/%s, want TESTPRODUCT/1.0", gotBody.ProductID, gotBody.ProductVersion)
	}

	resp, err := client.Synchronize(context.Background())
	if err != nil {
		t.Fatalf("Synchronize error: %v", err)
	}
	if resp.Information == nil || resp.Information.SystemID != "SYS1" {
		t.Errorf("Information = %+v, want SystemID SYS1", resp.Information)
	}
}

func TestOp_TanChallenge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(responseBody{
			RequiresTan:  true,
			TanChallenge: "Bitte in der App freigeben",
			TanReference: "R1",
			Answers:      []fints.Answer{{Code: fints.CodeSCARequired, Text: "Starke Kundenauthentifizierung"}},
		})
	}))
	defer srv.Close()

	c := &dialogClient{bridge: testBridge(srv.URL), dialogID: "d-1"}
	resp, err := c.Synchronize(context.Background())
	if err != nil {
		t.Fatalf("Synchronize error: %v", err)
	}
	if !resp.RequiresTan() {
		t.Fatal("RequiresTan() = false, want true")
	}
	if resp.Tan.Reference != "R1" {
		t.Errorf("Reference = %q, want R1", resp.Tan.Reference)
	}
	if len(resp.Tan.Answers) != 1 || resp.Tan.Answers[0].Code != fints.CodeSCARequired {
		t.Errorf("Answers = %+v, want SCA code", resp.Tan.Answers)
	}
}

func TestDo_RejectedOperationCarriesAnswers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/problem+json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]any{
			"title":  "Bank rejected operation",
			"detail": "TAN ungültig",
			"answers": []fints.Answer{
				{Code: fints.CodeTanInvalid, Text: "TAN ungültig"},
			},
		})
	}))
	defer srv.Close()

	c := &dialogClient{bridge: testBridge(srv.URL), dialogID: "d-1"}
	_, err := c.SynchronizeWithTan(context.Background(), "R1", "000000")
	if err == nil {
		t.Fatal("expected error")
	}

	answers := banking.AnswersOf(err)
	if !fints.IsTanInvalid(answers) {
		t.Errorf("answers = %+v, want TAN-invalid code", answers)
	}
}

func TestDo_ServerErrorsTripCircuitBreaker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	b := testBridge(srv.URL)
	c := &dialogClient{bridge: b, dialogID: "d-1"}

	// 連続失敗でCBがOpenし、以後は即時にErrCircuitOpenを返す
	var lastErr error
	for i := 0; i < config.CBFailureThreshold+1; i++ {
		_, lastErr = c.Synchronize(context.Background())
	}
	if !errors.Is(lastErr, apperr.ErrCircuitOpen) {
		t.Errorf("err after %d failures = %v, want ErrCircuitOpen", config.CBFailureThreshold+1, lastErr)
	}
}

func TestDo_ClientErrorsDoNotTripCircuitBreaker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{"title": "Bad Request"})
	}))
	defer srv.Close()

	b := testBridge(srv.URL)
	c := &dialogClient{bridge: b, dialogID: "d-1"}

	// 4xxはCBカウント対象外なので閾値を超えてもOpenしない
	var lastErr error
	for i := 0; i < config.CBFailureThreshold+2; i++ {
		_, lastErr = c.Synchronize(context.Background())
	}
	if errors.Is(lastErr, apperr.ErrCircuitOpen) {
		t.Error("4xx responses must not trip the circuit breaker")
	}
	var dialogErr *banking.DialogError
	if !errors.As(lastErr, &dialogErr) {
		t.Errorf("err = %v, want DialogError", lastErr)
	}
}

func TestDo_TransportErrorWrapsUnavailable(t *testing.T) {
	b := testBridge("http://127.0.0.1:1")
	c := &dialogClient{bridge: b, dialogID: "d-1"}

	_, err := c.Synchronize(context.Background())
	if !errors.Is(err, apperr.ErrBridgeUnavailable) {
		t.Errorf("err = %v, want ErrBridgeUnavailable", err)
	}
	var be *apperr.BridgeError
	if !errors.As(err, &be) {
		t.Fatalf("err = %v, want BridgeError", err)
	}
	if be.Operation != "synchronize" {
		t.Errorf("Operation = %q, want %q", be.Operation, "synchronize")
	}
}

func TestDo_PropagatesTraceID(t *testing.T) {
	var gotTraceID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTraceID = r.Header.Get("X-Trace-ID")
		json.NewEncoder(w).Encode(responseBody{})
	}))
	defer srv.Close()

	c := &dialogClient{bridge: testBridge(srv.URL), dialogID: "d-1"}
	ctx := WithTraceID(context.Background(), "trace-123")
	if _, err := c.Synchronize(ctx); err != nil {
		t.Fatalf("Synchronize error: %v", err)
	}
	if gotTraceID != "trace-123" {
		t.Errorf("X-Trace-ID = %q, want trace-123", gotTraceID)
	}
}
