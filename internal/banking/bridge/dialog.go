package bridge

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/oyaguma3/fints-tan-bridge/internal/banking"
	"github.com/oyaguma3/fints-tan-bridge/internal/fints"
)

// dialogClient は1つのブリッジダイアログに対するbanking.Clientの実装。
type dialogClient struct {
	bridge   *Bridge
	dialogID string
}

// Synchronize は同期処理を実行する。
func (c *dialogClient) Synchronize(ctx context.Context) (*banking.Response, error) {
	return c.op(ctx, "synchronize", c.path("synchronize"), operationRequest{})
}

// SynchronizeWithTan はTAN参照付きで同期を再開する。
func (c *dialogClient) SynchronizeWithTan(ctx context.Context, tanReference, tan string) (*banking.Response, error) {
	return c.op(ctx, "synchronize", c.path("synchronize"), operationRequest{
		TanReference: tanReference,
		Tan:          tan,
	})
}

// SelectTanMethod はTAN方式を選択する。
func (c *dialogClient) SelectTanMethod(ctx context.Context, methodID string) (*banking.Response, error) {
	return c.op(ctx, "selectTanMethod", c.path("tan-method"), operationRequest{MethodID: methodID})
}

// SelectTanMedia はTANメディアを選択する。
func (c *dialogClient) SelectTanMedia(ctx context.Context, mediaName string) (*banking.Response, error) {
	return c.op(ctx, "selectTanMedia", c.path("tan-media"), operationRequest{MediaName: mediaName})
}

// GetAccountBalance は指定口座の残高を取得する。
func (c *dialogClient) GetAccountBalance(ctx context.Context, account string) (*banking.Response, error) {
	return c.op(ctx, "balance", c.accountPath(account, "balance"), operationRequest{})
}

// GetAccountBalanceWithTan はTAN参照付きで残高取得を再開する。
func (c *dialogClient) GetAccountBalanceWithTan(ctx context.Context, account, tanReference, tan string) (*banking.Response, error) {
	return c.op(ctx, "balance", c.accountPath(account, "balance"), operationRequest{
		TanReference: tanReference,
		Tan:          tan,
	})
}

// GetAccountStatements は指定口座の取引明細を取得する。
func (c *dialogClient) GetAccountStatements(ctx context.Context, account string) (*banking.Response, error) {
	return c.op(ctx, "statements", c.accountPath(account, "statements"), operationRequest{})
}

// GetAccountStatementsWithTan はTAN参照付きで明細取得を再開する。
func (c *dialogClient) GetAccountStatementsWithTan(ctx context.Context, account, tanReference, tan string) (*banking.Response, error) {
	return c.op(ctx, "statements", c.accountPath(account, "statements"), operationRequest{
		TanReference: tanReference,
		Tan:          tan,
	})
}

// Close はダイアログを終了する。ブリッジ側で既に失効していてもエラーにしない。
func (c *dialogClient) Close(ctx context.Context) error {
	_, err := c.bridge.do(ctx, "closeDialog", c.path("close"), operationRequest{})
	return err
}

// op は操作を実行してレスポンスをbanking.Responseへ変換する。
func (c *dialogClient) op(ctx context.Context, operation, path string, req operationRequest) (*banking.Response, error) {
	body, err := c.bridge.do(ctx, operation, path, req)
	if err != nil {
		return nil, err
	}
	return parseResponse(body)
}

func (c *dialogClient) path(suffix string) string {
	return fmt.Sprintf("/api/v1/dialogs/%s/%s", escape(c.dialogID), suffix)
}

func (c *dialogClient) accountPath(account, suffix string) string {
	return fmt.Sprintf("/api/v1/dialogs/%s/accounts/%s/%s", escape(c.dialogID), escape(account), suffix)
}

// parseResponse はブリッジの成功レスポンスをbanking.Responseへ変換する。
func parseResponse(body []byte) (*banking.Response, error) {
	var raw responseBody
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("bridge response decode: %w", err)
	}

	resp := &banking.Response{
		Information: raw.Information,
		Balance:     raw.Balance,
		Statements:  raw.Statements,
		Answers:     raw.Answers,
	}
	if raw.RequiresTan {
		resp.Tan = &banking.TanChallenge{
			Challenge: raw.TanChallenge,
			Reference: raw.TanReference,
			Answers:   raw.Answers,
		}
	}
	return resp, nil
}

// dialogRequest はダイアログ開始リクエスト。
type dialogRequest struct {
	BankURL        string `json:"bank_url"`
	BankID         string `json:"bank_id"`
	UserID         string `json:"user_id"`
	PIN            string `json:"pin"`
	ProductID      string `json:"product_id"`
	ProductVersion string `json:"product_version"`
}

// dialogOpened はダイアログ開始レスポンス。
type dialogOpened struct {
	DialogID string `json:"dialog_id"`
}

// operationRequest はダイアログ操作の共通リクエスト。
type operationRequest struct {
	TanReference string `json:"tan_reference,omitempty"`
	Tan          string `json:"tan,omitempty"`
	MethodID     string `json:"method_id,omitempty"`
	MediaName    string `json:"media_name,omitempty"`
}

// responseBody はブリッジの成功レスポンス。
type responseBody struct {
	RequiresTan  bool                 `json:"requires_tan"`
	TanChallenge string               `json:"tan_challenge"`
	TanReference string               `json:"tan_reference"`
	Answers      []fints.Answer       `json:"answers"`
	Information  *banking.Information `json:"information"`
	Balance      *banking.Balance     `json:"balance"`
	Statements   *banking.Statements  `json:"statements"`
}
