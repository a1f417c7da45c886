package banking

import "context"

// Client は1つの銀行ダイアログに対する操作を定義する。
// 各メソッドはTAN要求で中断した場合、Response.Tanにチャレンジを載せて返す。
// WithTan系はTAN参照で中断した操作を再開する。tanが空文字列の場合、
// デカップルド方式では「状態確認のみ」を意味する（プロトコル上の取り決め）。
type Client interface {
	Synchronize(ctx context.Context) (*Response, error)
	SelectTanMethod(ctx context.Context, methodID string) (*Response, error)
	SelectTanMedia(ctx context.Context, mediaName string) (*Response, error)
	GetAccountBalance(ctx context.Context, account string) (*Response, error)
	GetAccountStatements(ctx context.Context, account string) (*Response, error)

	SynchronizeWithTan(ctx context.Context, tanReference, tan string) (*Response, error)
	GetAccountBalanceWithTan(ctx context.Context, account, tanReference, tan string) (*Response, error)
	GetAccountStatementsWithTan(ctx context.Context, account, tanReference, tan string) (*Response, error)

	// Close はダイアログを終了する。
	Close(ctx context.Context) error
}

// StartParams はダイアログ開始に必要なパラメータ。
type StartParams struct {
	BankURL        string
	BankID         string
	UserID         string
	PIN            string
	ProductID      string
	ProductVersion string
}

// Factory は新しいClientを生成する。
// テストではモックClientを返すFactoryを注入する。
type Factory func(ctx context.Context, params StartParams) (Client, error)
