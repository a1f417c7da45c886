package banking

import (
	"errors"
	"fmt"

	"github.com/oyaguma3/fints-tan-bridge/internal/fints"
)

// DialogError は銀行応答コードを伴う操作失敗を表す。
// 分類器（internal/fints）はこのAnswersを読んで保留/失敗/認証エラーを判別する。
type DialogError struct {
	Operation string         // 失敗した操作名（synchronize, balance等）
	Answers   []fints.Answer // 銀行応答コード列
	Message   string         // 補助メッセージ
}

// Error はerrorインターフェースを実装する。
func (e *DialogError) Error() string {
	if len(e.Answers) > 0 {
		return fmt.Sprintf("dialog error: operation=%s, answers=[%s]", e.Operation, fints.FormatAnswers(e.Answers))
	}
	return fmt.Sprintf("dialog error: operation=%s, message=%s", e.Operation, e.Message)
}

// AnswersOf はエラーに埋め込まれた銀行応答コード列を取り出す。
// DialogErrorでない場合はnilを返す（分類器は未分類として扱う）。
func AnswersOf(err error) []fints.Answer {
	var de *DialogError
	if errors.As(err, &de) {
		return de.Answers
	}
	return nil
}
