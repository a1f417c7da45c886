// Package banking は銀行クライアントのインターフェースと結果型を定義する。
// ワイヤレベルのFinTSプロトコル処理は外部のダイアログブリッジが担い、
// 本パッケージはその境界だけを扱う。
package banking

import "github.com/oyaguma3/fints-tan-bridge/internal/fints"

// TanChallenge はTAN要求時に銀行から提示されるチャレンジ情報。
type TanChallenge struct {
	Challenge string         `json:"tanChallenge"` // ユーザー提示用の文言（手動TANの入力指示等）
	Reference string         `json:"tanReference"` // 再開時に必要なTAN参照
	Answers   []fints.Answer `json:"bankAnswers"`
}

// Response は銀行操作1回分の結果。
// TanがnilでなければTAN要求で中断しており、他のフィールドは未確定。
type Response struct {
	Tan         *TanChallenge  `json:"tan,omitempty"`
	Information *Information   `json:"information,omitempty"`
	Balance     *Balance       `json:"balance,omitempty"`
	Statements  *Statements    `json:"statements,omitempty"`
	Answers     []fints.Answer `json:"answers,omitempty"`
}

// RequiresTan はこの結果がTAN要求で中断しているかどうかを返す。
// プロトコルレベルのシグナル（Tanフィールドの有無）で判定する。
func (r *Response) RequiresTan() bool {
	return r != nil && r.Tan != nil
}

// Information は同期で得られる銀行パラメータのスナップショット。
// 本サービスは読み取り専用で保持し、同期のたびに置き換える。
type Information struct {
	SystemID   string      `json:"systemId"`
	TanMethods []TanMethod `json:"tanMethods"`
	Accounts   []Account   `json:"accounts"`
	Messages   []string    `json:"messages,omitempty"`
}

// TanMethod は利用可能なTAN方式。
type TanMethod struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Decoupled bool   `json:"decoupled"` // アプリ承認型（ポーリングが必要）
}

// Account は銀行が通知した口座。
type Account struct {
	Number string `json:"number"`
	IBAN   string `json:"iban,omitempty"`
	Owner  string `json:"owner,omitempty"`
	Type   string `json:"type,omitempty"`
}

// Balance は1口座の残高。
type Balance struct {
	Account  string  `json:"account"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	BookedAt string  `json:"bookedAt,omitempty"`
}

// Statements は1口座の取引明細。
type Statements struct {
	Account      string        `json:"account"`
	Transactions []Transaction `json:"transactions"`
}

// Transaction は取引明細の1行。
type Transaction struct {
	BookingDate      string  `json:"bookingDate"`
	ValueDate        string  `json:"valueDate,omitempty"`
	Amount           float64 `json:"amount"`
	Currency         string  `json:"currency"`
	Purpose          string  `json:"purpose,omitempty"`
	CounterpartyName string  `json:"counterpartyName,omitempty"`
	CounterpartyIBAN string  `json:"counterpartyIban,omitempty"`
}
