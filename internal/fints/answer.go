// Package fints は銀行応答コードのモデルと分類器を提供する。
package fints

import (
	"fmt"
	"strings"
)

// Answer は銀行応答の1行（コード + 文言）を表す。
// 1回の銀行応答は順序付きのAnswer列を持ち、同一コードの重複もあり得る。
// 受信後は不変として扱う。
type Answer struct {
	Code int    `json:"code"`
	Text string `json:"text"`
}

// String は "9941: TAN ungültig" 形式の文字列を返す。
func (a Answer) String() string {
	return fmt.Sprintf("%04d: %s", a.Code, a.Text)
}

// FormatAnswers はログ出力用にAnswer列を1行へ整形する。
func FormatAnswers(answers []Answer) string {
	if len(answers) == 0 {
		return ""
	}
	parts := make([]string, len(answers))
	for i, a := range answers {
		parts[i] = a.String()
	}
	return strings.Join(parts, "; ")
}
