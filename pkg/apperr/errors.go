// Package apperr は共通エラー定義を提供する。
package apperr

import "errors"

// セッション関連エラー
var (
	// ErrNoActiveSession はstartSession前にディスパッチャが呼ばれた場合のエラー
	ErrNoActiveSession = errors.New("no active banking session")
	// ErrSessionNotFound はセッションが見つからない場合のエラー
	ErrSessionNotFound = errors.New("session not found")
	// ErrNoAccounts は同期前に口座操作が要求された場合のエラー
	ErrNoAccounts = errors.New("no accounts available, synchronize first")
)

// TAN関連エラー
var (
	// ErrNoPendingOperation は未解決のTANチャレンジが存在しない場合のエラー
	ErrNoPendingOperation = errors.New("no pending TAN operation")
	// ErrOperationPending は既存のTANチャレンジ未解決のまま新規操作が要求された場合のエラー
	ErrOperationPending = errors.New("another TAN operation is still pending")
	// ErrPollInFlight は同一セッションでポーリングが既に進行中の場合のエラー
	ErrPollInFlight = errors.New("a TAN poll is already in flight for this session")
	// ErrTanInvalid は銀行がTANを拒否した場合のエラー
	ErrTanInvalid = errors.New("TAN rejected by bank")
	// ErrDecoupledCancelled はアプリ側で承認が拒否/失効した場合のエラー
	ErrDecoupledCancelled = errors.New("decoupled TAN cancelled or expired")
	// ErrPollCancelled はユーザー操作でポーリングが中断された場合のエラー
	ErrPollCancelled = errors.New("TAN poll cancelled")
)

// 認証情報関連エラー
var (
	// ErrPinTemporarilyBlocked はPINが一時的にブロックされた場合のエラー
	ErrPinTemporarilyBlocked = errors.New("PIN temporarily blocked")
	// ErrLoginFailed は銀行へのログインに失敗した場合のエラー
	ErrLoginFailed = errors.New("bank login failed")
	// ErrAccountLocked はアカウントがロックされた場合のエラー
	ErrAccountLocked = errors.New("bank account locked")
)

// インフラ関連エラー
var (
	// ErrValkeyConnection はValkey接続エラー
	ErrValkeyConnection = errors.New("valkey connection error")
	// ErrBridgeUnavailable はFinTSブリッジへの到達不能エラー
	ErrBridgeUnavailable = errors.New("fints bridge unavailable")
	// ErrCircuitOpen はCircuit BreakerがOpen状態の場合のエラー
	ErrCircuitOpen = errors.New("circuit breaker is open")
)

// バリデーション関連エラー
var (
	// ErrInvalidAction は未知のアクション名エラー
	ErrInvalidAction = errors.New("unknown action")
	// ErrInvalidPayload はペイロードの形式不正エラー
	ErrInvalidPayload = errors.New("invalid payload")
)
