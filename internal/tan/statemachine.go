package tan

// PollState はポーリングの状態を表す型。
type PollState string

// ポーリング状態の定数（6状態）
const (
	StateIdle      PollState = "IDLE"      // 初期状態
	StatePolling   PollState = "POLLING"   // 試行ループ中（唯一の非終了中間状態）
	StateApproved  PollState = "APPROVED"  // 承認完了（終了状態）
	StateFailed    PollState = "FAILED"    // 確定失敗（終了状態）
	StateTimedOut  PollState = "TIMED_OUT" // 予算超過（終了状態）
	StateCancelled PollState = "CANCELLED" // ユーザー中断（終了状態）
)

// PollEvent はポーリングの状態遷移イベントを表す型。
type PollEvent string

// ポーリングイベントの定数
const (
	EventStart        PollEvent = "START"         // ポーリング開始
	EventStillPending PollEvent = "STILL_PENDING" // 保留継続（自己遷移）
	EventApproved     PollEvent = "APPROVED"      // アプリ承認完了
	EventFailed       PollEvent = "FAILED"        // 拒否/失効/未分類エラー
	EventTimeout      PollEvent = "TIMEOUT"       // 試行回数または時間予算の超過
	EventCancel       PollEvent = "CANCEL"        // ユーザーによる中断
)

// pollTransitions はポーリング状態遷移テーブル
var pollTransitions = map[PollState]map[PollEvent]PollState{
	StateIdle: {
		EventStart: StatePolling,
	},
	StatePolling: {
		EventStillPending: StatePolling,
		EventApproved:     StateApproved,
		EventFailed:       StateFailed,
		EventTimeout:      StateTimedOut,
		EventCancel:       StateCancelled,
	},
}

// Transition は現在の状態とイベントから次の状態を返す。
// 無効な遷移の場合は現在の状態を維持してfalseを返す。
func Transition(current PollState, event PollEvent) (PollState, bool) {
	events, ok := pollTransitions[current]
	if !ok {
		return current, false
	}
	next, ok := events[event]
	if !ok {
		return current, false
	}
	return next, true
}

// IsTerminal は指定された状態が終了状態かどうかを判定する。
func IsTerminal(state PollState) bool {
	switch state {
	case StateApproved, StateFailed, StateTimedOut, StateCancelled:
		return true
	default:
		return false
	}
}
