package fints

import "strings"

// 分類関数はすべて純粋関数であり、nil/空のAnswer列に対しても安全に動作する。
// 1つの応答に複数のカテゴリが同時に該当し得るため、各関数は独立に問い合わせ可能。

// 強認証を示す文言（小文字比較）。
// 3060は警告通知とデカップルド保留の両方に使われる二重用途コードのため、
// 明示的な保留コードを伴わない場合は文言でしか判別できない。
var strongAuthPhrases = []string{
	"starke kundenauthentifizierung",
	"strong customer authentication",
	"sicherheitsfreigabe",
}

// HasCode はいずれかのAnswerが指定コードを持つかどうかを返す。
func HasCode(answers []Answer, code int) bool {
	for _, a := range answers {
		if a.Code == code {
			return true
		}
	}
	return false
}

// IsDecoupledPending はアプリ承認待ち状態かどうかを判定する。
// 明示的な保留コード（3955/3956）があれば保留。
// 3060単独の場合は、文言に強認証フレーズが含まれる場合のみ保留とみなす。
// 3060を汎用警告として受け取ったケースを保留と誤判定してはならない。
func IsDecoupledPending(answers []Answer) bool {
	if HasCode(answers, CodeSentToDevice) || HasCode(answers, CodeSCAPending) {
		return true
	}
	if !HasCode(answers, CodeWarningsPresent) {
		return false
	}
	for _, a := range answers {
		if containsStrongAuthPhrase(a.Text) {
			return true
		}
	}
	return false
}

// IsDecoupledFailed はアプリ側で承認が拒否/失効/端末不達となったかどうかを判定する。
func IsDecoupledFailed(answers []Answer) bool {
	return HasCode(answers, CodeApprovalDeclined) ||
		HasCode(answers, CodeApprovalExpired) ||
		HasCode(answers, CodeDeviceUnreachable)
}

// IsTransactionSuccess は実行済みまたは記帳済みコードの有無を判定する。
func IsTransactionSuccess(answers []Answer) bool {
	return HasCode(answers, CodeExecuted) || HasCode(answers, CodeBooked)
}

// IsDecoupledChallenge はデカップルドTANチャレンジの開始かどうかを判定する。
// 保留状態、または専用の強認証要求コード（0030）単独で真となる。
func IsDecoupledChallenge(answers []Answer) bool {
	return IsDecoupledPending(answers) || HasCode(answers, CodeSCARequired)
}

// IsCredentialError はPIN不正/ロック/ログイン失敗系コードの有無を判定する。
func IsCredentialError(answers []Answer) bool {
	return HasCode(answers, CodePinTemporarilyBlocked) ||
		HasCode(answers, CodeLoginFailed) ||
		HasCode(answers, CodeAccountLocked) ||
		HasCode(answers, CodePinInvalid)
}

// IsTanInvalid はTAN不正コードの有無を判定する。
func IsTanInvalid(answers []Answer) bool {
	return HasCode(answers, CodeTanInvalid)
}

// IsTanRequired は手動TAN入力要求コードの有無を判定する。
func IsTanRequired(answers []Answer) bool {
	return HasCode(answers, CodeTanRequired)
}

// FirstUserFacingError はユーザー提示用のエラーメッセージを優先順で返す。
// デカップルド失敗 > デカップルド保留 > 認証情報エラー > TAN不正 >
// エラー帯域（>=9000）/警告帯域（3000-3999）の先頭Answerの文言。
// 保留中のデカップルド承認は警告帯域コードと同時に届くことが多いため、
// 汎用メッセージに埋もれないようデカップルド系を先に報告する。
// 該当がない場合は空文字列を返す。
func FirstUserFacingError(answers []Answer) string {
	if IsDecoupledFailed(answers) {
		return "the approval was declined, has expired, or the device is unreachable"
	}
	if IsDecoupledPending(answers) {
		return "the approval in the banking app is still pending"
	}
	if IsCredentialError(answers) {
		switch {
		case HasCode(answers, CodePinTemporarilyBlocked):
			return "the PIN is temporarily blocked, try again later"
		case HasCode(answers, CodeLoginFailed):
			return "login at the bank failed, check your credentials"
		default:
			return "the account or PIN is locked, contact your bank"
		}
	}
	if IsTanInvalid(answers) {
		return "the TAN was rejected by the bank"
	}
	for _, a := range answers {
		if a.Code >= ErrorRangeStart || (a.Code >= WarningRangeStart && a.Code <= WarningRangeEnd) {
			return a.Text
		}
	}
	return ""
}

// containsStrongAuthPhrase は文言に強認証フレーズが含まれるかどうかを判定する。
func containsStrongAuthPhrase(text string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range strongAuthPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
