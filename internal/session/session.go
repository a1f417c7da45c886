// Package session はWebセッションと保留中TAN操作の管理を提供する。
package session

import (
	"context"
	"sync"
	"time"

	"github.com/oyaguma3/fints-tan-bridge/internal/banking"
)

// OperationKind は保留中TAN操作の種別を表す型。
type OperationKind string

// 保留中TAN操作の種別定数
const (
	KindSync          OperationKind = "sync"
	KindBalance       OperationKind = "balance"
	KindStatements    OperationKind = "statements"
	KindAllBalances   OperationKind = "allBalances"
	KindAllStatements OperationKind = "allStatements"
)

// ParseOperationKind は文字列を操作種別へ変換する。
func ParseOperationKind(s string) (OperationKind, bool) {
	switch OperationKind(s) {
	case KindSync, KindBalance, KindStatements, KindAllBalances, KindAllStatements:
		return OperationKind(s), true
	default:
		return "", false
	}
}

// PendingOperation はTAN承認待ちで中断している銀行操作を表す。
// 1セッションにつき常に高々1つ。所有権はセッションが専有する。
type PendingOperation struct {
	Kind         OperationKind
	Account      string // 口座単位の操作のみ。バッチ/同期では空
	TanReference string
	Challenge    string
	CreatedAt    time.Time
}

// Session は1つのブラウザセッションを表す。
// フィールドの読み書きはmuを保持して行う（ディスパッチャ呼び出しの直列化、§並行性）。
// ClientはstartSessionでのみ設定され、以後は読み取り専用。
type Session struct {
	ID        string
	CreatedAt time.Time

	mu          sync.Mutex
	client      banking.Client
	information *banking.Information
	pending     *PendingOperation
	polling     bool
	pollCancel  context.CancelFunc
}

// Lock はセッションの直列化ロックを取得する。
func (s *Session) Lock() { s.mu.Lock() }

// Unlock はセッションの直列化ロックを解放する。
func (s *Session) Unlock() { s.mu.Unlock() }

// Client は銀行クライアントを返す。未開始の場合はnil。
func (s *Session) Client() banking.Client { return s.client }

// SetClient は銀行クライアントを設定する。startSessionのみが呼ぶ。
func (s *Session) SetClient(c banking.Client) { s.client = c }

// Information はキャッシュ済みの銀行パラメータを返す。
func (s *Session) Information() *banking.Information { return s.information }

// SetInformation は銀行パラメータのスナップショットを差し替える。
func (s *Session) SetInformation(info *banking.Information) { s.information = info }

// Pending は保留中TAN操作を返す。なければnil。
func (s *Session) Pending() *PendingOperation { return s.pending }

// SetPending は保留中TAN操作を設定する。
// ClearPendingと並んで、pendingを変更できる唯一の操作。
func (s *Session) SetPending(op *PendingOperation) { s.pending = op }

// ClearPending は保留中TAN操作を破棄する。
func (s *Session) ClearPending() { s.pending = nil }

// BeginPoll はポーリング開始を記録し、キャンセル用の関数を保存する。
// 既にポーリング中の場合はfalseを返す。
func (s *Session) BeginPoll(cancel context.CancelFunc) bool {
	if s.polling {
		return false
	}
	s.polling = true
	s.pollCancel = cancel
	return true
}

// EndPoll はポーリング終了を記録する。
func (s *Session) EndPoll() {
	s.polling = false
	s.pollCancel = nil
}

// CancelPoll は進行中のポーリングへキャンセルを通知する。
// ポーリング中でなければfalseを返す。実行中の1試行は完了を許容する。
func (s *Session) CancelPoll() bool {
	if !s.polling || s.pollCancel == nil {
		return false
	}
	s.pollCancel()
	return true
}

// Polling はポーリングが進行中かどうかを返す。
func (s *Session) Polling() bool { return s.polling }
