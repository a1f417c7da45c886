// Package tan はTAN承認の解決（手動再送とデカップルドポーリング）を提供する。
package tan

import (
	"context"
	"fmt"

	"github.com/oyaguma3/fints-tan-bridge/internal/banking"
	"github.com/oyaguma3/fints-tan-bridge/internal/fints"
	"github.com/oyaguma3/fints-tan-bridge/pkg/apperr"
)

// ResumeFunc は中断した銀行操作をTAN参照で再開する。
// tanが空文字列の場合、デカップルド方式では状態確認のみを意味する。
type ResumeFunc func(ctx context.Context, tanReference, tan string) (*banking.Response, error)

// Status はTAN解決試行の結果種別。
type Status string

// 結果種別の定数
const (
	StatusSuccess   Status = "success"    // 操作完了
	StatusPending   Status = "pending"    // アプリ承認待ち（再試行可能）
	StatusFailed    Status = "failed"     // 確定失敗（拒否/失効/その他）
	StatusTimedOut  Status = "timed_out"  // ポーリング予算超過
	StatusCancelled Status = "cancelled"  // ユーザー操作による中断
)

// Outcome はTAN解決試行の結果を表すタグ付き値。
// 例外を制御フローに使わず、保留/失敗を明示的な値として返す。
type Outcome struct {
	Status    Status
	Response  *banking.Response // StatusSuccessのときのみ非nil
	Reference string
	Answers   []fints.Answer
	Err       error
}

// Classify は銀行クライアント呼び出しの生の結果/エラーをOutcomeへ写像する。
// 分類はこの境界の1箇所でのみ行う。
func Classify(reference string, resp *banking.Response, err error) Outcome {
	if err == nil {
		// 応答もエラーもない呼び出しは分類不能の確定失敗とする
		if resp == nil {
			return Outcome{
				Status:    StatusFailed,
				Reference: reference,
				Err:       fmt.Errorf("banking call returned neither response nor error"),
			}
		}
		// 再開呼び出しが再びTAN要求を返した場合も保留として扱う
		if resp.RequiresTan() {
			return Outcome{
				Status:    StatusPending,
				Reference: resp.Tan.Reference,
				Answers:   resp.Tan.Answers,
			}
		}
		return Outcome{
			Status:    StatusSuccess,
			Response:  resp,
			Reference: reference,
			Answers:   resp.Answers,
		}
	}

	answers := banking.AnswersOf(err)
	switch {
	case fints.IsDecoupledFailed(answers):
		return Outcome{
			Status:    StatusFailed,
			Reference: reference,
			Answers:   answers,
			Err:       fmt.Errorf("%w: %s", apperr.ErrDecoupledCancelled, fints.FirstUserFacingError(answers)),
		}
	case fints.IsDecoupledPending(answers):
		return Outcome{
			Status:    StatusPending,
			Reference: reference,
			Answers:   answers,
		}
	case fints.IsTanInvalid(answers):
		return Outcome{
			Status:    StatusFailed,
			Reference: reference,
			Answers:   answers,
			Err:       fmt.Errorf("%w: %s", apperr.ErrTanInvalid, fints.FirstUserFacingError(answers)),
		}
	default:
		// 未分類のエラーは保守的に確定失敗として扱い、再試行しない
		return Outcome{
			Status:    StatusFailed,
			Reference: reference,
			Answers:   answers,
			Err:       err,
		}
	}
}
