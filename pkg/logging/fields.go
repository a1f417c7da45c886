package logging

import "log/slog"

// ログフィールド名の定数
const (
	FieldTraceID      = "trace_id"
	FieldEventID      = "event_id"
	FieldError        = "error"
	FieldLatencyMs    = "latency_ms"
	FieldHTTPStatus   = "http_status"
	FieldSessionID    = "session_id"
	FieldAction       = "action"
	FieldAccount      = "account"
	FieldTanReference = "tan_reference"
	FieldAttempt      = "attempt"
)

// WithTraceID はトレースIDのslog.Attrを返す。
func WithTraceID(traceID string) slog.Attr {
	return slog.String(FieldTraceID, traceID)
}

// WithEventID はイベントIDのslog.Attrを返す。
func WithEventID(eventID string) slog.Attr {
	return slog.String(FieldEventID, eventID)
}

// WithError はエラーのslog.Attrを返す。
func WithError(err error) slog.Attr {
	if err == nil {
		return slog.String(FieldError, "")
	}
	return slog.String(FieldError, err.Error())
}

// WithLatency はレイテンシ（ミリ秒）のslog.Attrを返す。
func WithLatency(ms int64) slog.Attr {
	return slog.Int64(FieldLatencyMs, ms)
}

// WithHTTPStatus はHTTPステータスコードのslog.Attrを返す。
func WithHTTPStatus(status int) slog.Attr {
	return slog.Int(FieldHTTPStatus, status)
}

// WithSessionID はセッションIDのslog.Attrを返す。
func WithSessionID(id string) slog.Attr {
	return slog.String(FieldSessionID, id)
}

// WithTanReference はTAN参照のslog.Attrを返す。
func WithTanReference(ref string) slog.Attr {
	return slog.String(FieldTanReference, ref)
}

// WithAttempt はポーリング試行回数のslog.Attrを返す。
func WithAttempt(attempt int) slog.Attr {
	return slog.Int(FieldAttempt, attempt)
}

// CommonFields はマスキング設定を保持するログフィールド生成器。
type CommonFields struct {
	masker *Masker
}

// NewCommonFields は新しいCommonFieldsを生成する。
func NewCommonFields(masker *Masker) *CommonFields {
	if masker == nil {
		masker = NewMasker(false)
	}
	return &CommonFields{masker: masker}
}

// WithAccount はマスキングされた口座番号のslog.Attrを返す。
func (cf *CommonFields) WithAccount(account string) slog.Attr {
	return slog.String(FieldAccount, cf.masker.Account(account))
}

// TanLogFields はTANフローのログ用の共通フィールドを返す。
func (cf *CommonFields) TanLogFields(traceID, eventID, account string) []any {
	return []any{
		WithTraceID(traceID),
		WithEventID(eventID),
		cf.WithAccount(account),
	}
}
