package engine

import (
	"github.com/oyaguma3/fints-tan-bridge/internal/banking"
	"github.com/oyaguma3/fints-tan-bridge/internal/fints"
)

// アクション名の定数
const (
	ActionStartSession     = "startSession"
	ActionSelectTanMethod  = "selectTanMethod"
	ActionSynchronize      = "synchronize"
	ActionGetBalance       = "getBalance"
	ActionGetStatements    = "getStatements"
	ActionGetAllBalances   = "getAllBalances"
	ActionGetAllStatements = "getAllStatements"
	ActionSubmitTan        = "submitTan"
	ActionPollTanStatus    = "pollTanStatus"
	ActionCancelTan        = "cancelTan"
)

// StartSessionPayload はstartSessionアクションのペイロード。
// productId/productVersionは省略時に環境設定の値を用いる。
type StartSessionPayload struct {
	ProductID      string `json:"productId"`
	ProductVersion string `json:"productVersion"`
	BankURL        string `json:"bankUrl"`
	BankID         string `json:"bankId"`
	UserID         string `json:"userId"`
	PIN            string `json:"pin"`
}

// SelectTanMethodPayload はselectTanMethodアクションのペイロード。
type SelectTanMethodPayload struct {
	TanMethodID  string `json:"tanMethodId"`
	TanMediaName string `json:"tanMediaName"`
}

// AccountPayload は口座単位アクション（getBalance/getStatements）のペイロード。
type AccountPayload struct {
	AccountNumber string `json:"accountNumber"`
}

// SubmitTanPayload はsubmitTanアクションのペイロード。
type SubmitTanPayload struct {
	Op           string `json:"op"`
	TanReference string `json:"tanReference"`
	Tan          string `json:"tan"`
}

// PollTanStatusPayload はpollTanStatusアクションのペイロード。
type PollTanStatusPayload struct {
	Operation     string `json:"operation"`
	TanReference  string `json:"tanReference"`
	AccountNumber string `json:"accountNumber"`
}

// Result は1アクションの処理結果。handler層がHTTP表現へ写像する。
//   - BankingInformation: startSession/selectTanMethodはこれをトップレベルで返す
//   - RequiresTan: TANチャレンジで中断（200で返すがデータは未確定）
//   - Pending: デカップルド承認がまだ保留（202相当、参照を保持して再試行を促す）
//   - それ以外はDataが最終結果（handlerが{success, data}へ包む）
type Result struct {
	Data               any                  `json:"data,omitempty"`
	BankingInformation *banking.Information `json:"bankingInformation,omitempty"`
	RequiresTan        bool                 `json:"requiresTan,omitempty"`
	Pending            bool                 `json:"isPending,omitempty"`
	TanChallenge       string               `json:"tanChallenge,omitempty"`
	TanReference       string               `json:"tanReference,omitempty"`
	BankAnswers        []fints.Answer       `json:"bankAnswers,omitempty"`
}

// InformationData は同期結果のデータ部。
type InformationData struct {
	BankingInformation *banking.Information `json:"bankingInformation"`
}

// tanRequired はTANチャレンジ中断のResultを作る。
func tanRequired(tan *banking.TanChallenge) *Result {
	return &Result{
		RequiresTan:  true,
		TanChallenge: tan.Challenge,
		TanReference: tan.Reference,
		BankAnswers:  tan.Answers,
	}
}
