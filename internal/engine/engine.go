// Package engine はアクション名と銀行操作の対応付け、保留中TAN操作の
// ライフサイクル管理を担うディスパッチャを提供する。
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/oyaguma3/fints-tan-bridge/internal/banking"
	"github.com/oyaguma3/fints-tan-bridge/internal/config"
	"github.com/oyaguma3/fints-tan-bridge/internal/fints"
	"github.com/oyaguma3/fints-tan-bridge/internal/session"
	"github.com/oyaguma3/fints-tan-bridge/internal/store"
	"github.com/oyaguma3/fints-tan-bridge/internal/tan"
	"github.com/oyaguma3/fints-tan-bridge/pkg/apperr"
	"github.com/oyaguma3/fints-tan-bridge/pkg/logging"
)

// Engine はアクションディスパッチャの実装。
// 1セッションの処理はSession.muで直列化する。デカップルドポーリングだけは
// ロックを保持せずに実行し、cancelTanが割り込めるようにする。
type Engine struct {
	factory   banking.Factory
	registry  store.Registry
	submitter *tan.Submitter
	poller    *tan.Poller
	budget    tan.Budget
	cfg       *config.Config
	masker    *logging.Masker
}

// NewEngine は新しいEngineを生成する。
func NewEngine(factory banking.Factory, registry store.Registry, cfg *config.Config) *Engine {
	return &Engine{
		factory:   factory,
		registry:  registry,
		submitter: tan.NewSubmitter(),
		poller:    tan.NewPoller(),
		budget:    tan.DefaultBudget(),
		cfg:       cfg,
		masker:    logging.NewMasker(cfg.LogMaskAccount),
	}
}

// Dispatch はアクション名とペイロードから対応する処理を実行する。
func (e *Engine) Dispatch(ctx context.Context, sess *session.Session, action string, payload json.RawMessage) (*Result, error) {
	switch action {
	case ActionStartSession:
		var p StartSessionPayload
		if err := bindPayload(payload, &p); err != nil {
			return nil, err
		}
		return e.startSession(ctx, sess, &p)

	case ActionSelectTanMethod:
		var p SelectTanMethodPayload
		if err := bindPayload(payload, &p); err != nil {
			return nil, err
		}
		return e.selectTanMethod(ctx, sess, &p)

	case ActionSynchronize:
		return e.synchronize(ctx, sess)

	case ActionGetBalance:
		var p AccountPayload
		if err := bindPayload(payload, &p); err != nil {
			return nil, err
		}
		return e.getBalance(ctx, sess, p.AccountNumber)

	case ActionGetStatements:
		var p AccountPayload
		if err := bindPayload(payload, &p); err != nil {
			return nil, err
		}
		return e.getStatements(ctx, sess, p.AccountNumber)

	case ActionGetAllBalances:
		return e.getAllBalances(ctx, sess)

	case ActionGetAllStatements:
		return e.getAllStatements(ctx, sess)

	case ActionSubmitTan:
		var p SubmitTanPayload
		if err := bindPayload(payload, &p); err != nil {
			return nil, err
		}
		return e.submitTan(ctx, sess, &p)

	case ActionPollTanStatus:
		var p PollTanStatusPayload
		if err := bindPayload(payload, &p); err != nil {
			return nil, err
		}
		return e.pollTanStatus(ctx, sess, &p)

	case ActionCancelTan:
		return e.cancelTan(ctx, sess)

	default:
		return nil, fmt.Errorf("%w: %s", apperr.ErrInvalidAction, action)
	}
}

// bindPayload はペイロードJSONを対象構造体へ展開する。
func bindPayload(payload json.RawMessage, v any) error {
	if len(payload) == 0 {
		return fmt.Errorf("%w: payload required", apperr.ErrInvalidPayload)
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrInvalidPayload, err)
	}
	return nil
}

// startSession は銀行ダイアログを開き、初回同期を実行する。
func (e *Engine) startSession(ctx context.Context, sess *session.Session, p *StartSessionPayload) (*Result, error) {
	if p.BankURL == "" || p.BankID == "" || p.UserID == "" || p.PIN == "" {
		return nil, apperr.NewValidationError("payload", "bankUrl, bankId, userId and pin are required")
	}

	sess.Lock()
	defer sess.Unlock()

	if sess.Polling() {
		return nil, apperr.ErrPollInFlight
	}

	productID := p.ProductID
	if productID == "" {
		productID = e.cfg.ProductID
	}
	productVersion := p.ProductVersion
	if productVersion == "" {
		productVersion = e.cfg.ProductVersion
	}

	// 再開始の場合は既存ダイアログを閉じてから新規に開く
	if old := sess.Client(); old != nil {
		if err := old.Close(ctx); err != nil {
			slog.Warn("前回ダイアログのクローズに失敗",
				"event_id", "DIALOG_CLOSE_ERR",
				"session_id", sess.ID,
				"error", err,
			)
		}
		sess.SetClient(nil)
		sess.SetInformation(nil)
		sess.ClearPending()
	}

	client, err := e.factory(ctx, banking.StartParams{
		BankURL:        p.BankURL,
		BankID:         p.BankID,
		UserID:         p.UserID,
		PIN:            p.PIN,
		ProductID:      productID,
		ProductVersion: productVersion,
	})
	if err != nil {
		return nil, classifyCallError(err)
	}

	resp, err := client.Synchronize(ctx)
	if err != nil {
		if cerr := client.Close(ctx); cerr != nil {
			slog.Warn("同期失敗後のダイアログクローズに失敗",
				"event_id", "DIALOG_CLOSE_ERR",
				"session_id", sess.ID,
				"error", cerr,
			)
		}
		return nil, classifyCallError(err)
	}

	sess.SetClient(client)
	if resp.Information != nil {
		sess.SetInformation(resp.Information)
	}

	e.registryPut(ctx, sess.ID, &store.SessionRecord{
		BankID:    p.BankID,
		UserID:    e.masker.UserID(p.UserID),
		State:     store.StateActive,
		CreatedAt: time.Now().Unix(),
		UpdatedAt: time.Now().Unix(),
	})

	slog.Info("銀行セッション開始",
		"event_id", "SESSION_START",
		"session_id", sess.ID,
	)

	if resp.RequiresTan() {
		e.markPending(ctx, sess, session.KindSync, "", resp.Tan)
		res := tanRequired(resp.Tan)
		res.BankingInformation = sess.Information()
		return res, nil
	}
	return &Result{BankingInformation: sess.Information()}, nil
}

// selectTanMethod はTAN方式（および任意でTANメディア）を選択する。
func (e *Engine) selectTanMethod(ctx context.Context, sess *session.Session, p *SelectTanMethodPayload) (*Result, error) {
	if p.TanMethodID == "" {
		return nil, apperr.NewValidationError("tanMethodId", "required")
	}

	sess.Lock()
	defer sess.Unlock()

	if err := e.requireIdleClient(sess); err != nil {
		return nil, err
	}

	resp, err := sess.Client().SelectTanMethod(ctx, p.TanMethodID)
	if err != nil {
		return nil, classifyCallError(err)
	}
	if resp.Information != nil {
		sess.SetInformation(resp.Information)
	}

	if p.TanMediaName != "" {
		resp, err = sess.Client().SelectTanMedia(ctx, p.TanMediaName)
		if err != nil {
			return nil, classifyCallError(err)
		}
		if resp.Information != nil {
			sess.SetInformation(resp.Information)
		}
	}

	return &Result{BankingInformation: sess.Information()}, nil
}

// synchronize は銀行パラメータを再同期する。
func (e *Engine) synchronize(ctx context.Context, sess *session.Session) (*Result, error) {
	sess.Lock()
	defer sess.Unlock()

	if err := e.requireIdleClient(sess); err != nil {
		return nil, err
	}

	resp, err := sess.Client().Synchronize(ctx)
	if err != nil {
		return nil, classifyCallError(err)
	}
	if resp.RequiresTan() {
		e.markPending(ctx, sess, session.KindSync, "", resp.Tan)
		return tanRequired(resp.Tan), nil
	}

	if resp.Information != nil {
		sess.SetInformation(resp.Information)
	}
	return &Result{Data: &InformationData{BankingInformation: sess.Information()}}, nil
}

// getBalance は1口座の残高を取得する。
func (e *Engine) getBalance(ctx context.Context, sess *session.Session, account string) (*Result, error) {
	sess.Lock()
	defer sess.Unlock()

	if err := e.requireIdleClient(sess); err != nil {
		return nil, err
	}
	if err := validateAccount(sess, account); err != nil {
		return nil, err
	}

	resp, err := sess.Client().GetAccountBalance(ctx, account)
	if err != nil {
		return nil, classifyCallError(err)
	}
	if resp.RequiresTan() {
		e.markPending(ctx, sess, session.KindBalance, account, resp.Tan)
		return tanRequired(resp.Tan), nil
	}
	return &Result{Data: resp.Balance}, nil
}

// getStatements は1口座の取引明細を取得する。
func (e *Engine) getStatements(ctx context.Context, sess *session.Session, account string) (*Result, error) {
	sess.Lock()
	defer sess.Unlock()

	if err := e.requireIdleClient(sess); err != nil {
		return nil, err
	}
	if err := validateAccount(sess, account); err != nil {
		return nil, err
	}

	resp, err := sess.Client().GetAccountStatements(ctx, account)
	if err != nil {
		return nil, classifyCallError(err)
	}
	if resp.RequiresTan() {
		e.markPending(ctx, sess, session.KindStatements, account, resp.Tan)
		return tanRequired(resp.Tan), nil
	}
	return &Result{Data: resp.Statements}, nil
}

// getAllBalances は全口座の残高を取得する。
// 途中の口座でTAN要求が発生した場合はその1件だけを保留として返し、
// 残りの口座は解決後に続行する。
func (e *Engine) getAllBalances(ctx context.Context, sess *session.Session) (*Result, error) {
	sess.Lock()
	defer sess.Unlock()

	if err := e.requireIdleClient(sess); err != nil {
		return nil, err
	}
	accounts, err := knownAccounts(sess)
	if err != nil {
		return nil, err
	}

	results := make(map[string]*banking.Balance)
	for _, acct := range accounts {
		resp, err := sess.Client().GetAccountBalance(ctx, acct.Number)
		if err != nil {
			// バッチでは口座単位の失敗を記録して続行する（部分成功）
			slog.Warn("残高取得失敗、口座をスキップ",
				"event_id", "BATCH_ACCOUNT_ERR",
				"session_id", sess.ID,
				"account", e.masker.Account(acct.Number),
				"error", err,
			)
			continue
		}
		if resp.RequiresTan() {
			e.markPending(ctx, sess, session.KindAllBalances, acct.Number, resp.Tan)
			return tanRequired(resp.Tan), nil
		}
		results[acct.Number] = resp.Balance
	}
	return &Result{Data: results}, nil
}

// getAllStatements は全口座の取引明細を取得する。失敗セマンティクスはgetAllBalancesと同じ。
func (e *Engine) getAllStatements(ctx context.Context, sess *session.Session) (*Result, error) {
	sess.Lock()
	defer sess.Unlock()

	if err := e.requireIdleClient(sess); err != nil {
		return nil, err
	}
	accounts, err := knownAccounts(sess)
	if err != nil {
		return nil, err
	}

	results := make(map[string]*banking.Statements)
	for _, acct := range accounts {
		resp, err := sess.Client().GetAccountStatements(ctx, acct.Number)
		if err != nil {
			slog.Warn("取引明細取得失敗、口座をスキップ",
				"event_id", "BATCH_ACCOUNT_ERR",
				"session_id", sess.ID,
				"account", e.masker.Account(acct.Number),
				"error", err,
			)
			continue
		}
		if resp.RequiresTan() {
			e.markPending(ctx, sess, session.KindAllStatements, acct.Number, resp.Tan)
			return tanRequired(resp.Tan), nil
		}
		results[acct.Number] = resp.Statements
	}
	return &Result{Data: results}, nil
}

// requireIdleClient はアクティブなダイアログがあり、保留中TAN操作も
// 進行中ポーリングもないことを検証する。呼び出し側はロックを保持していること。
func (e *Engine) requireIdleClient(sess *session.Session) error {
	if sess.Client() == nil {
		return apperr.ErrNoActiveSession
	}
	if sess.Polling() {
		return apperr.ErrPollInFlight
	}
	// 保留中TAN操作があるうちは新規操作を拒否する（暗黙の放棄はしない）
	if sess.Pending() != nil {
		return apperr.ErrOperationPending
	}
	return nil
}

// knownAccounts はキャッシュ済みスナップショットの口座一覧を返す。
func knownAccounts(sess *session.Session) ([]banking.Account, error) {
	info := sess.Information()
	if info == nil || len(info.Accounts) == 0 {
		return nil, apperr.ErrNoAccounts
	}
	return info.Accounts, nil
}

// validateAccount は対象口座がスナップショットに存在することを検証する。
func validateAccount(sess *session.Session, account string) error {
	if account == "" {
		return apperr.NewValidationError("accountNumber", "required")
	}
	accounts, err := knownAccounts(sess)
	if err != nil {
		return err
	}
	for _, acct := range accounts {
		if acct.Number == account {
			return nil
		}
	}
	return fmt.Errorf("%w: unknown account", apperr.ErrNoAccounts)
}

// markPending は保留中TAN操作を設定し、レジストリへ反映する。
func (e *Engine) markPending(ctx context.Context, sess *session.Session, kind session.OperationKind, account string, challenge *banking.TanChallenge) {
	sess.SetPending(&session.PendingOperation{
		Kind:         kind,
		Account:      account,
		TanReference: challenge.Reference,
		Challenge:    challenge.Challenge,
		CreatedAt:    time.Now(),
	})
	e.registryUpdate(ctx, sess.ID, map[string]any{
		"state":           store.StateTanPending,
		"pending_kind":    string(kind),
		"pending_account": e.masker.Account(account),
		"tan_reference":   challenge.Reference,
	})
	slog.Info("TANチャレンジ受信、操作を保留",
		"event_id", "TAN_CHALLENGE",
		"session_id", sess.ID,
		"action", string(kind),
		"tan_reference", challenge.Reference,
	)
}

// classifyCallError は銀行呼び出しのエラーをアプリエラーへ写像する。
// 認証情報系の応答コードはサブケース別のセンチネルへ変換する。
func classifyCallError(err error) error {
	answers := banking.AnswersOf(err)
	if len(answers) == 0 {
		return err
	}
	msg := fints.FirstUserFacingError(answers)
	switch {
	case fints.IsCredentialError(answers):
		switch {
		case fints.HasCode(answers, fints.CodePinTemporarilyBlocked):
			return fmt.Errorf("%w: %s", apperr.ErrPinTemporarilyBlocked, msg)
		case fints.HasCode(answers, fints.CodeAccountLocked):
			return fmt.Errorf("%w: %s", apperr.ErrAccountLocked, msg)
		default:
			return fmt.Errorf("%w: %s", apperr.ErrLoginFailed, msg)
		}
	case fints.IsTanInvalid(answers):
		return fmt.Errorf("%w: %s", apperr.ErrTanInvalid, msg)
	default:
		return err
	}
}

// registryPut はレジストリへのレコード登録をベストエフォートで行う。
func (e *Engine) registryPut(ctx context.Context, sessionID string, rec *store.SessionRecord) {
	if e.registry == nil {
		return
	}
	if err := e.registry.Put(ctx, sessionID, rec); err != nil {
		slog.Warn("セッションレジストリ登録失敗",
			"event_id", "REGISTRY_PUT_ERR",
			"session_id", sessionID,
			"error", err,
		)
	}
}

// registryUpdate はレジストリ更新をベストエフォートで行う。
func (e *Engine) registryUpdate(ctx context.Context, sessionID string, updates map[string]any) {
	if e.registry == nil {
		return
	}
	if err := e.registry.Update(ctx, sessionID, updates); err != nil {
		slog.Warn("セッションレジストリ更新失敗",
			"event_id", "REGISTRY_UPDATE_ERR",
			"session_id", sessionID,
			"error", err,
		)
	}
}
