package tan

import (
	"context"
	"log/slog"
	"time"

	"github.com/oyaguma3/fints-tan-bridge/internal/config"
	"github.com/oyaguma3/fints-tan-bridge/pkg/apperr"
)

// Budget はポーリングの試行/時間予算。呼び出しごとに渡す設定であり、状態は持たない。
type Budget struct {
	MaxAttempts int           // 最大試行回数
	Interval    time.Duration // 試行間隔
	Timeout     time.Duration // 経過時間の上限（試行回数と独立に判定する）
}

// DefaultBudget はデフォルトのポーリング予算を返す。
func DefaultBudget() Budget {
	return Budget{
		MaxAttempts: config.PollMaxAttempts,
		Interval:    config.PollInterval,
		Timeout:     config.PollTimeout,
	}
}

// Poller はデカップルドTANの承認完了を銀行へ繰り返し問い合わせる。
// 各Poll呼び出しは独立で、Poller自体は共有状態を持たない。
// 同一セッションでの多重Pollの禁止は呼び出し側（engine）が保証する。
type Poller struct{}

// NewPoller は新しいPollerを生成する。
func NewPoller() *Poller {
	return &Poller{}
}

// Poll はTAN参照に対する承認完了を予算内で繰り返し確認する。
// 各試行はtan空文字列（状態確認のみ）で再開関数を呼び、失敗の分類結果が
// 保留のときだけ間隔を置いて継続する。それ以外の失敗は即座に確定する。
// キャンセルはctx経由で通知され、試行間（スリープ中を含む）で観測される。
// 実行中の1試行はキャンセル後も完了を許容する。
func (p *Poller) Poll(ctx context.Context, resume ResumeFunc, reference string, budget Budget) Outcome {
	state, _ := Transition(StateIdle, EventStart)
	start := time.Now()

	for attempt := 1; attempt <= budget.MaxAttempts; attempt++ {
		// キャンセルは次の試行前に観測する
		if ctx.Err() != nil {
			state, _ = Transition(state, EventCancel)
			return Outcome{
				Status:    StatusCancelled,
				Reference: reference,
				Err:       apperr.ErrPollCancelled,
			}
		}

		// 時間予算は試行回数と独立に判定する
		if elapsed := time.Since(start); elapsed > budget.Timeout {
			state, _ = Transition(state, EventTimeout)
			return Outcome{
				Status:    StatusTimedOut,
				Reference: reference,
				Err:       apperr.NewPollTimeoutError(reference, attempt-1, elapsed),
			}
		}

		resp, err := resume(ctx, reference, "")
		outcome := Classify(reference, resp, err)

		switch outcome.Status {
		case StatusSuccess:
			state, _ = Transition(state, EventApproved)
			slog.Info("decoupled TAN approved",
				"event_id", "TAN_POLL_APPROVED",
				"tan_reference", reference,
				"attempt", attempt,
			)
			return outcome

		case StatusPending:
			state, _ = Transition(state, EventStillPending)
			slog.Debug("decoupled TAN still pending",
				"event_id", "TAN_POLL_PENDING",
				"tan_reference", reference,
				"attempt", attempt,
			)
			// 最終試行ではスリープを省略する
			if attempt == budget.MaxAttempts {
				continue
			}
			if !sleepCtx(ctx, budget.Interval) {
				state, _ = Transition(state, EventCancel)
				return Outcome{
					Status:    StatusCancelled,
					Reference: reference,
					Err:       apperr.ErrPollCancelled,
				}
			}

		default:
			// 保留と明示的に分類できない失敗は再試行しない
			state, _ = Transition(state, EventFailed)
			slog.Warn("decoupled TAN poll failed",
				"event_id", "TAN_POLL_FAILED",
				"tan_reference", reference,
				"attempt", attempt,
				"error", outcome.Err,
			)
			return outcome
		}
	}

	state, _ = Transition(state, EventTimeout)
	slog.Warn("decoupled TAN poll exhausted",
		"event_id", "TAN_POLL_TIMEOUT",
		"tan_reference", reference,
		"attempts", budget.MaxAttempts,
	)
	return Outcome{
		Status:    StatusTimedOut,
		Reference: reference,
		Err:       apperr.NewPollTimeoutError(reference, budget.MaxAttempts, time.Since(start)),
	}
}

// sleepCtx はキャンセルを観測しながら指定時間スリープする。
// キャンセルされた場合はfalseを返す。
func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
