// Package config はアプリケーション設定を提供する。
package config

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// Config はアプリケーション設定を保持する
type Config struct {
	// FinTS製品登録情報（未設定の場合はプロセスを起動しない）
	ProductID      string `envconfig:"PRODUCT_ID" required:"true"`
	ProductVersion string `envconfig:"PRODUCT_VERSION" default:"1.0"`

	// FinTSダイアログブリッジ設定
	BridgeAPIURL string `envconfig:"BRIDGE_API_URL" required:"true"`

	// HTTPサーバー設定
	ListenAddr string `envconfig:"LISTEN_ADDR" default:":8080"`
	GinMode    string `envconfig:"GIN_MODE" default:"release"`

	// セッションCookie設定
	CookieSecure bool `envconfig:"COOKIE_SECURE" default:"true"`

	// Valkey接続設定（セッションレジストリ）
	RedisHost string `envconfig:"REDIS_HOST" required:"true"`
	RedisPort string `envconfig:"REDIS_PORT" required:"true"`
	RedisPass string `envconfig:"REDIS_PASS"`

	// ログ設定
	LogLevel       string `envconfig:"LOG_LEVEL" default:"INFO"`
	LogMaskAccount bool   `envconfig:"LOG_MASK_ACCOUNT" default:"true"`
}

// Load は環境変数から設定を読み込む
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// ValkeyAddr はValkey接続アドレスを "host:port" 形式で返す
func (c *Config) ValkeyAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}

// validate は設定値のバリデーションを行う
func (c *Config) validate() error {
	if strings.TrimSpace(c.ProductID) == "" {
		return fmt.Errorf("PRODUCT_ID must not be empty")
	}
	if !strings.HasPrefix(c.BridgeAPIURL, "http://") && !strings.HasPrefix(c.BridgeAPIURL, "https://") {
		return fmt.Errorf("BRIDGE_API_URL must start with http:// or https://")
	}
	return nil
}
