// Package logging はログ関連のユーティリティを提供する。
package logging

// MaskAccount は口座番号をマスキングする。
// 先頭2桁 + マスク + 末尾2桁
// 例: DE02120300000000202051 → DE******************51
// enabled=false の場合はマスキングせずにそのまま返す。
func MaskAccount(account string, enabled bool) string {
	if !enabled {
		return account
	}
	return MaskPartial(account, 2, 2, '*')
}

// MaskUserID はログインIDをマスキングする。
// 先頭1桁 + マスク + 末尾1桁
func MaskUserID(userID string, enabled bool) string {
	if !enabled {
		return userID
	}
	return MaskPartial(userID, 1, 1, '*')
}

// MaskPartial は文字列の一部をマスキングする。
// keepPrefix: 先頭から保持する文字数
// keepSuffix: 末尾から保持する文字数
// maskChar: マスキングに使用する文字
func MaskPartial(s string, keepPrefix, keepSuffix int, maskChar rune) string {
	runes := []rune(s)
	length := len(runes)

	// 文字列が短すぎる場合はそのまま返す
	if length <= keepPrefix+keepSuffix {
		return s
	}

	result := make([]rune, length)

	// 先頭部分をコピー
	for i := 0; i < keepPrefix; i++ {
		result[i] = runes[i]
	}

	// 中間部分をマスク
	for i := keepPrefix; i < length-keepSuffix; i++ {
		result[i] = maskChar
	}

	// 末尾部分をコピー
	for i := length - keepSuffix; i < length; i++ {
		result[i] = runes[i]
	}

	return string(result)
}

// Masker はマスキング設定を保持する構造体。
// PINは設定に関わらずログへ出力しない。
type Masker struct {
	enabled bool
}

// NewMasker は新しいMaskerを生成する。
func NewMasker(enabled bool) *Masker {
	return &Masker{enabled: enabled}
}

// Account は口座番号をマスキングする。
func (m *Masker) Account(account string) string {
	return MaskAccount(account, m.enabled)
}

// UserID はログインIDをマスキングする。
func (m *Masker) UserID(userID string) string {
	return MaskUserID(userID, m.enabled)
}

// IsEnabled はマスキングが有効かどうかを返す。
func (m *Masker) IsEnabled() bool {
	return m.enabled
}
