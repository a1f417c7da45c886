// Package bridge はFinTSダイアログブリッジへのHTTPアダプタを提供する。
// ブリッジはワイヤレベルのFinTSプロトコル（メッセージ構築/パース、PIN送信）を
// 担う別サービスで、本アダプタはbanking.Clientとしてそれを公開する。
package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/oyaguma3/fints-tan-bridge/internal/banking"
	"github.com/oyaguma3/fints-tan-bridge/internal/config"
	"github.com/oyaguma3/fints-tan-bridge/internal/fints"
	"github.com/oyaguma3/fints-tan-bridge/pkg/apperr"
	"github.com/sony/gobreaker"
)

// HTTPヘッダ名
const (
	headerTraceID     = "X-Trace-ID"
	headerContentType = "Content-Type"
	contentTypeJSON   = "application/json"
)

// Bridge はブリッジ接続を保持し、ダイアログ単位のClientを生成する。
type Bridge struct {
	httpClient *resty.Client
	cb         *gobreaker.CircuitBreaker
	baseURL    string
	product    string
	version    string
}

// New は新しいBridgeを生成する。
func New(cfg *config.Config) *Bridge {
	httpClient := resty.New().
		SetTimeout(config.BridgeRequestTimeout)

	cbSettings := gobreaker.Settings{
		Name:        config.CBName,
		MaxRequests: config.CBMaxRequests,
		Interval:    config.CBInterval,
		Timeout:     config.CBTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(config.CBFailureThreshold)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			switch to {
			case gobreaker.StateOpen:
				slog.Warn("circuit breaker opened",
					"event_id", "CB_OPEN",
					"cb_name", name,
				)
			case gobreaker.StateHalfOpen:
				slog.Info("circuit breaker half-open",
					"event_id", "CB_HALF_OPEN",
					"cb_name", name,
				)
			case gobreaker.StateClosed:
				slog.Info("circuit breaker closed",
					"event_id", "CB_CLOSE",
					"cb_name", name,
				)
			}
		},
	}

	return &Bridge{
		httpClient: httpClient,
		cb:         gobreaker.NewCircuitBreaker(cbSettings),
		baseURL:    strings.TrimRight(cfg.BridgeAPIURL, "/"),
		product:    cfg.ProductID,
		version:    cfg.ProductVersion,
	}
}

// Factory はダイアログを開始してClientを返すbanking.Factoryを返す。
func (b *Bridge) Factory() banking.Factory {
	return func(ctx context.Context, params banking.StartParams) (banking.Client, error) {
		if params.ProductID == "" {
			params.ProductID = b.product
		}
		if params.ProductVersion == "" {
			params.ProductVersion = b.version
		}

		body, err := b.do(ctx, "openDialog", "/api/v1/dialogs", dialogRequest{
			BankURL:        params.BankURL,
			BankID:         params.BankID,
			UserID:         params.UserID,
			PIN:            params.PIN,
			ProductID:      params.ProductID,
			ProductVersion: params.ProductVersion,
		})
		if err != nil {
			return nil, err
		}

		var opened dialogOpened
		if err := json.Unmarshal(body, &opened); err != nil {
			return nil, fmt.Errorf("bridge response decode: %w", err)
		}
		if opened.DialogID == "" {
			return nil, fmt.Errorf("bridge returned empty dialog id")
		}
		return &dialogClient{bridge: b, dialogID: opened.DialogID}, nil
	}
}

// do はブリッジへのPOSTをCircuit Breaker経由で実行する。
// 5xx（501除く）はCB失敗として数え、4xxはDialogErrorへ変換してCB対象外とする。
func (b *Bridge) do(ctx context.Context, operation, path string, reqBody any) ([]byte, error) {
	start := time.Now()

	result, err := b.cb.Execute(func() (any, error) {
		req := b.httpClient.R().
			SetContext(ctx).
			SetHeader(headerContentType, contentTypeJSON).
			SetBody(reqBody)
		if traceID := TraceIDFrom(ctx); traceID != "" {
			req.SetHeader(headerTraceID, traceID)
		}

		resp, err := req.Post(b.baseURL + path)
		if err != nil {
			return nil, apperr.NewBridgeError(operation, 0,
				fmt.Errorf("%w: %v", apperr.ErrBridgeUnavailable, err))
		}

		latencyMs := time.Since(start).Milliseconds()
		statusCode := resp.StatusCode()

		// CB失敗判定対象: 5xx（501除く）
		if statusCode >= 500 && statusCode != 501 {
			dialogErr := parseErrorBody(operation, resp.Body())
			slog.Error("bridge api error",
				"event_id", "BRIDGE_API_ERR",
				"operation", operation,
				"http_status", statusCode,
				"latency_ms", latencyMs,
				"error", dialogErr.Error(),
			)
			return nil, dialogErr
		}

		// CB対象外のエラー: 4xx、501
		if statusCode != 200 {
			dialogErr := parseErrorBody(operation, resp.Body())
			slog.Warn("bridge rejected operation",
				"event_id", "BRIDGE_OP_REJECTED",
				"operation", operation,
				"http_status", statusCode,
				"latency_ms", latencyMs,
				"error", dialogErr.Error(),
			)
			// CB対象外エラーはnilを返してCBカウントに含めない
			return dialogErr, nil
		}

		slog.Debug("bridge api success",
			"operation", operation,
			"latency_ms", latencyMs,
		)

		return resp.Body(), nil
	})

	if err != nil {
		// Circuit BreakerがOpen状態
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return nil, apperr.ErrCircuitOpen
		}
		return nil, err
	}

	// CB対象外のDialogErrorの場合
	if dialogErr, ok := result.(*banking.DialogError); ok {
		return nil, dialogErr
	}

	body, ok := result.([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected bridge result type")
	}
	return body, nil
}

// parseErrorBody はエラーレスポンスをDialogErrorへ変換する。
// ブリッジはproblem+jsonの拡張フィールドanswersに銀行応答コード列を載せる。
func parseErrorBody(operation string, body []byte) *banking.DialogError {
	var p struct {
		Title   string         `json:"title"`
		Detail  string         `json:"detail"`
		Answers []fints.Answer `json:"answers"`
	}
	if err := json.Unmarshal(body, &p); err == nil && (p.Title != "" || len(p.Answers) > 0) {
		msg := p.Title
		if p.Detail != "" {
			msg = p.Detail
		}
		return &banking.DialogError{
			Operation: operation,
			Answers:   p.Answers,
			Message:   msg,
		}
	}
	return &banking.DialogError{
		Operation: operation,
		Message:   string(body),
	}
}

// traceIDKey はコンテキストからTrace IDを取得するためのキー型
type traceIDKey struct{}

// WithTraceID はコンテキストにTrace IDを設定する。
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey{}, traceID)
}

// TraceIDFrom はコンテキストからTrace IDを取得する。未設定なら空文字列。
func TraceIDFrom(ctx context.Context) string {
	traceID, _ := ctx.Value(traceIDKey{}).(string)
	return traceID
}

// escape はパス要素をURLエンコードする。
func escape(s string) string {
	return url.PathEscape(s)
}
