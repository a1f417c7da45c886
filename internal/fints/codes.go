package fints

// 銀行応答コード（HIRMS相当）の定数。
// コードは銀行からの応答行に数値で含まれ、分類はこの数値を第一とする。
const (
	// 成功系
	CodeExecuted = 10 // 0010: 実行済み
	CodeBooked   = 20 // 0020: 記帳済み（決済処理は保留中）

	// 強認証（デカップルドTAN）系
	CodeSCARequired = 30 // 0030: セキュリティ承認が必要（アプリ承認待ちの開始）

	// 警告系（3000-3999）
	CodeWarningsPresent   = 3060 // 警告/注意あり。デカップルド保留の通知にも流用される（二重用途）
	CodeTanRequired       = 3905 // TAN入力が必要（手動TAN）
	CodeAllowedTanMethods = 3920 // 利用可能なTAN方式の通知
	CodeSentToDevice      = 3955 // 承認依頼を端末へ送信済み
	CodeSCAPending        = 3956 // 強認証がまだ承認されていない

	// エラー系（9000以上）
	CodeApprovalDeclined      = 9381 // アプリで承認が拒否された
	CodeApprovalExpired       = 9382 // 承認が期限切れ
	CodeDeviceUnreachable     = 9383 // 承認端末に到達できない
	CodePinTemporarilyBlocked = 9910 // PINが一時的にブロックされた
	CodeLoginFailed           = 9930 // ログイン失敗
	CodeAccountLocked         = 9931 // アカウントがロックされた
	CodeTanInvalid            = 9941 // TANが不正
	CodePinInvalid            = 9942 // PINが不正
)

// コード帯域の境界
const (
	WarningRangeStart = 3000
	WarningRangeEnd   = 3999
	ErrorRangeStart   = 9000
)
