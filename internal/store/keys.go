package store

// Valkeyキープレフィックス
const (
	KeyPrefixSession = "tanweb:sess:" // セッションレジストリレコード
)
