package config

import "time"

// TANポーリング予算のデフォルト値
const (
	PollMaxAttempts = 60
	PollInterval    = 5 * time.Second
	PollTimeout     = 300 * time.Second
)

// ブリッジ接続設定
const (
	BridgeConnectTimeout = 2 * time.Second
	BridgeRequestTimeout = 30 * time.Second
)

// Circuit Breaker設定
const (
	CBName             = "fints-bridge"
	CBMaxRequests      = 3
	CBInterval         = 10 * time.Second
	CBTimeout          = 30 * time.Second
	CBFailureThreshold = 5
)

// Valkey接続設定
const (
	ValkeyConnectTimeout = 3 * time.Second
	ValkeyCommandTimeout = 2 * time.Second
	ValkeyPoolSize       = 10
)

// セッションレジストリ管理
const (
	SessionRegistryTTL = 24 * time.Hour
)

// セッションCookie設定
const (
	SessionCookieName   = "tanweb_session"
	SessionCookieMaxAge = int(24 * time.Hour / time.Second)
)

// サーバーシャットダウン設定
const (
	ShutdownTimeout = 10 * time.Second
)
