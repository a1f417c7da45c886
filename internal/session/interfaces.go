package session

// Store はセッションの検索/生成/破棄を定義する。
// 実装は同時挿入に対して安全でなければならない。セッション内部の直列化は
// Session側のロックが担い、Storeは関与しない。
type Store interface {
	// GetOrCreate は識別子でセッションを検索し、未知の場合は新規生成する。
	// 戻り値createdは新規生成されたかどうかを示す。新規時のみ呼び出し側が
	// 識別子をCookieへ書き戻す。
	GetOrCreate(id string) (sess *Session, created bool)

	// Get は既存セッションを検索する。
	Get(id string) (*Session, bool)

	// Evict はセッションを破棄する。存在しなくてもエラーにしない。
	Evict(id string)

	// ForEach は全セッションを走査する（掃除ジョブ用）。
	ForEach(fn func(*Session))
}
