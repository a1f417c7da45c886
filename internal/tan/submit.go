package tan

import (
	"context"
	"log/slog"

	"github.com/oyaguma3/fints-tan-bridge/internal/session"
	"github.com/oyaguma3/fints-tan-bridge/pkg/apperr"
)

// Submitter はユーザーが入力したTANで中断中の銀行操作を再開する。
// 保留中操作のライフサイクル（成功/確定失敗でのクリア、保留での温存）を
// ここで一元管理する。
type Submitter struct{}

// NewSubmitter は新しいSubmitterを生成する。
func NewSubmitter() *Submitter {
	return &Submitter{}
}

// Submit はTAN値で保留中操作を再開し、分類済みのOutcomeを返す。
// 呼び出し側はセッションロックを保持していること。
//   - 保留中操作がない、または種別が一致しない場合はStatusFailed（ErrNoPendingOperation）
//   - 成功: 保留中操作をクリアして結果を返す
//   - 保留: 保留中操作を温存する（再提出を受け付けるため）
//   - 確定失敗: 保留中操作をクリアする（参照は失効している）
func (s *Submitter) Submit(ctx context.Context, sess *session.Session, op session.OperationKind, reference, tanValue string, resume ResumeFunc) Outcome {
	pending := sess.Pending()
	if pending == nil || pending.Kind != op {
		return Outcome{
			Status: StatusFailed,
			Err:    apperr.ErrNoPendingOperation,
		}
	}
	if reference == "" {
		reference = pending.TanReference
	}

	resp, err := resume(ctx, reference, tanValue)
	outcome := Classify(reference, resp, err)

	switch outcome.Status {
	case StatusSuccess:
		sess.ClearPending()
		slog.Info("TAN accepted, operation resumed",
			"event_id", "TAN_SUBMIT_OK",
			"session_id", sess.ID,
			"action", string(op),
		)
	case StatusPending:
		// 参照が更新されている場合は保留中操作へ反映する
		if outcome.Reference != "" && outcome.Reference != pending.TanReference {
			pending.TanReference = outcome.Reference
		}
		slog.Info("TAN submission still pending",
			"event_id", "TAN_SUBMIT_PENDING",
			"session_id", sess.ID,
			"action", string(op),
		)
	default:
		sess.ClearPending()
		slog.Warn("TAN submission failed",
			"event_id", "TAN_SUBMIT_NG",
			"session_id", sess.ID,
			"action", string(op),
			"error", outcome.Err,
		)
	}
	return outcome
}
