package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/oyaguma3/fints-tan-bridge/internal/banking"
	"github.com/oyaguma3/fints-tan-bridge/internal/session"
	"github.com/oyaguma3/fints-tan-bridge/internal/store"
	"github.com/oyaguma3/fints-tan-bridge/internal/tan"
	"github.com/oyaguma3/fints-tan-bridge/pkg/apperr"
)

// submitTan はユーザー入力のTANで保留中操作を解決する。
func (e *Engine) submitTan(ctx context.Context, sess *session.Session, p *SubmitTanPayload) (*Result, error) {
	kind, ok := session.ParseOperationKind(p.Op)
	if !ok {
		return nil, apperr.NewValidationError("op", "unknown operation kind")
	}

	sess.Lock()
	defer sess.Unlock()

	if sess.Client() == nil {
		return nil, apperr.ErrNoActiveSession
	}
	if sess.Polling() {
		return nil, apperr.ErrPollInFlight
	}

	pending := sess.Pending()
	if pending == nil {
		return nil, apperr.ErrNoPendingOperation
	}

	resume := e.resumeFor(sess.Client(), kind, pending.Account)
	outcome := e.submitter.Submit(ctx, sess, kind, p.TanReference, p.Tan, resume)

	switch outcome.Status {
	case tan.StatusSuccess:
		e.registryUpdate(ctx, sess.ID, resolvedRecord())
		return e.finalize(ctx, sess, kind, pending.Account, outcome.Response)
	case tan.StatusPending:
		return &Result{
			Pending:      true,
			TanReference: outcome.Reference,
			BankAnswers:  outcome.Answers,
		}, nil
	default:
		// 種別不一致などで保留が残っている場合はレジストリも保留のままにする
		if sess.Pending() == nil {
			e.registryUpdate(ctx, sess.ID, resolvedRecord())
		}
		return nil, outcome.Err
	}
}

// pollTanStatus はデカップルド承認の完了をサーバー側で自動ポーリングする。
// ポーリング本体はセッションロックを解放して実行し、cancelTanの割り込みを
// 受け付ける。適用フェーズで再度ロックを取得する。
func (e *Engine) pollTanStatus(ctx context.Context, sess *session.Session, p *PollTanStatusPayload) (*Result, error) {
	kind, ok := session.ParseOperationKind(p.Operation)
	if !ok {
		return nil, apperr.NewValidationError("operation", "unknown operation kind")
	}

	sess.Lock()

	if sess.Client() == nil {
		sess.Unlock()
		return nil, apperr.ErrNoActiveSession
	}
	pending := sess.Pending()
	if pending == nil || pending.Kind != kind {
		sess.Unlock()
		return nil, apperr.ErrNoPendingOperation
	}
	reference := p.TanReference
	if reference == "" {
		reference = pending.TanReference
	}
	if reference != pending.TanReference {
		sess.Unlock()
		return nil, apperr.ErrNoPendingOperation
	}

	pollCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if !sess.BeginPoll(cancel) {
		sess.Unlock()
		return nil, apperr.ErrPollInFlight
	}

	client := sess.Client()
	account := pending.Account
	sess.Unlock()

	outcome := e.poller.Poll(pollCtx, e.resumeFor(client, kind, account), reference, e.budget)

	sess.Lock()
	defer sess.Unlock()
	sess.EndPoll()

	switch outcome.Status {
	case tan.StatusSuccess:
		sess.ClearPending()
		e.registryUpdate(ctx, sess.ID, resolvedRecord())
		return e.finalize(ctx, sess, kind, account, outcome.Response)

	case tan.StatusTimedOut:
		// タイムアウトでは保留を温存し、手動再開を可能にする
		return nil, outcome.Err

	case tan.StatusCancelled:
		// 保留のクリアはcancelTan側で行う
		return nil, outcome.Err

	default:
		sess.ClearPending()
		e.registryUpdate(ctx, sess.ID, resolvedRecord())
		return nil, outcome.Err
	}
}

// cancelTan は保留中TAN操作を明示的に破棄する。進行中のポーリングがあれば
// 中断を通知する（実行中の1試行は完了を許容する）。
func (e *Engine) cancelTan(ctx context.Context, sess *session.Session) (*Result, error) {
	sess.Lock()
	defer sess.Unlock()

	if sess.Client() == nil {
		return nil, apperr.ErrNoActiveSession
	}
	if sess.Pending() == nil && !sess.Polling() {
		return nil, apperr.ErrNoPendingOperation
	}

	if sess.CancelPoll() {
		slog.Info("進行中のTANポーリングへ中断を通知",
			"event_id", "TAN_POLL_CANCEL",
			"session_id", sess.ID,
		)
	}
	sess.ClearPending()
	e.registryUpdate(ctx, sess.ID, resolvedRecord())

	slog.Info("保留中TAN操作を破棄",
		"event_id", "TAN_CANCELLED",
		"session_id", sess.ID,
	)
	return &Result{Data: map[string]bool{"cancelled": true}}, nil
}

// resumeFor は操作種別に対応する再開関数を返す。
// バッチ種別は先頭口座（保留に記録された口座）の再開を表し、
// 残りの口座の続行はfinalizeが担う。
func (e *Engine) resumeFor(client banking.Client, kind session.OperationKind, account string) tan.ResumeFunc {
	switch kind {
	case session.KindSync:
		return func(ctx context.Context, ref, tanValue string) (*banking.Response, error) {
			return client.SynchronizeWithTan(ctx, ref, tanValue)
		}
	case session.KindBalance, session.KindAllBalances:
		return func(ctx context.Context, ref, tanValue string) (*banking.Response, error) {
			return client.GetAccountBalanceWithTan(ctx, account, ref, tanValue)
		}
	default:
		return func(ctx context.Context, ref, tanValue string) (*banking.Response, error) {
			return client.GetAccountStatementsWithTan(ctx, account, ref, tanValue)
		}
	}
}

// finalize はTAN解決後の最終結果を組み立てる。呼び出し側はロックを保持していること。
// バッチ種別では解決済み口座の結果に残りの口座を順次取得して合流させる。
func (e *Engine) finalize(ctx context.Context, sess *session.Session, kind session.OperationKind, account string, resp *banking.Response) (*Result, error) {
	switch kind {
	case session.KindSync:
		if resp.Information != nil {
			sess.SetInformation(resp.Information)
		}
		return &Result{Data: &InformationData{BankingInformation: sess.Information()}}, nil

	case session.KindBalance:
		return &Result{Data: resp.Balance}, nil

	case session.KindStatements:
		return &Result{Data: resp.Statements}, nil

	case session.KindAllBalances:
		results := make(map[string]*banking.Balance)
		if resp.Balance != nil {
			results[account] = resp.Balance
		}
		accounts, err := knownAccounts(sess)
		if err != nil {
			return nil, err
		}
		for _, acct := range accounts {
			if acct.Number == account {
				continue
			}
			r, err := sess.Client().GetAccountBalance(ctx, acct.Number)
			if err != nil || r.RequiresTan() {
				// 解決済みTANの直後に再要求された口座もスキップ対象とする
				slog.Warn("バッチ続行中に口座取得失敗、スキップ",
					"event_id", "BATCH_ACCOUNT_ERR",
					"session_id", sess.ID,
					"account", e.masker.Account(acct.Number),
					"error", err,
				)
				continue
			}
			results[acct.Number] = r.Balance
		}
		return &Result{Data: results}, nil

	case session.KindAllStatements:
		results := make(map[string]*banking.Statements)
		if resp.Statements != nil {
			results[account] = resp.Statements
		}
		accounts, err := knownAccounts(sess)
		if err != nil {
			return nil, err
		}
		for _, acct := range accounts {
			if acct.Number == account {
				continue
			}
			r, err := sess.Client().GetAccountStatements(ctx, acct.Number)
			if err != nil || r.RequiresTan() {
				slog.Warn("バッチ続行中に口座取得失敗、スキップ",
					"event_id", "BATCH_ACCOUNT_ERR",
					"session_id", sess.ID,
					"account", e.masker.Account(acct.Number),
					"error", err,
				)
				continue
			}
			results[acct.Number] = r.Statements
		}
		return &Result{Data: results}, nil

	default:
		return nil, fmt.Errorf("%w: %s", apperr.ErrInvalidAction, string(kind))
	}
}

// resolvedRecord は保留解消後のレジストリ更新内容を返す。
func resolvedRecord() map[string]any {
	return map[string]any{
		"state":           store.StateActive,
		"pending_kind":    "",
		"pending_account": "",
		"tan_reference":   "",
	}
}
