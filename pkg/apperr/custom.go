package apperr

import (
	"fmt"
	"time"
)

// ValidationError はバリデーションエラーを表す。
type ValidationError struct {
	Field   string // エラーが発生したフィールド名
	Message string // エラーメッセージ
}

// Error はerrorインターフェースを実装する。
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: field=%s, message=%s", e.Field, e.Message)
}

// NewValidationError はValidationErrorを生成する。
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// PollTimeoutError はTANポーリングの試行/時間予算超過を表す。
type PollTimeoutError struct {
	Reference string        // TAN参照
	Attempts  int           // 実施した試行回数
	Elapsed   time.Duration // 経過時間
}

// Error はerrorインターフェースを実装する。
func (e *PollTimeoutError) Error() string {
	return fmt.Sprintf("TAN poll timed out after %d attempts (%s), please check your banking app",
		e.Attempts, e.Elapsed.Round(time.Second))
}

// Is はErrPollTimeout系との比較を可能にする。
func (e *PollTimeoutError) Is(target error) bool {
	_, ok := target.(*PollTimeoutError)
	return ok
}

// NewPollTimeoutError はPollTimeoutErrorを生成する。
func NewPollTimeoutError(reference string, attempts int, elapsed time.Duration) *PollTimeoutError {
	return &PollTimeoutError{
		Reference: reference,
		Attempts:  attempts,
		Elapsed:   elapsed,
	}
}

// BridgeError はFinTSブリッジとの通信エラーを表す。
type BridgeError struct {
	Operation  string // 操作名（synchronize, balance等）
	StatusCode int    // HTTPステータスコード
	Cause      error  // 根本原因
}

// Error はerrorインターフェースを実装する。
func (e *BridgeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("bridge error: operation=%s, statusCode=%d, cause=%v",
			e.Operation, e.StatusCode, e.Cause)
	}
	return fmt.Sprintf("bridge error: operation=%s, statusCode=%d", e.Operation, e.StatusCode)
}

// Unwrap は根本原因を返す。
func (e *BridgeError) Unwrap() error {
	return e.Cause
}

// NewBridgeError はBridgeErrorを生成する。
func NewBridgeError(operation string, statusCode int, cause error) *BridgeError {
	return &BridgeError{
		Operation:  operation,
		StatusCode: statusCode,
		Cause:      cause,
	}
}
