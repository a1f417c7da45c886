package config

import (
	"os"
	"testing"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("PRODUCT_ID", "TESTPRODUCT123")
	t.Setenv("BRIDGE_API_URL", "http://localhost:9090")
	t.Setenv("REDIS_HOST", "localhost")
	t.Setenv("REDIS_PORT", "6379")
}

func TestLoad(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("REDIS_PASS", "testpass")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.ProductID != "TESTPRODUCT123" {
		t.Errorf("ProductID = %q, want %q", cfg.ProductID, "TESTPRODUCT123")
	}
	if cfg.BridgeAPIURL != "http://localhost:9090" {
		t.Errorf("BridgeAPIURL = %q, want %q", cfg.BridgeAPIURL, "http://localhost:9090")
	}
	if cfg.RedisPass != "testpass" {
		t.Errorf("RedisPass = %q, want %q", cfg.RedisPass, "testpass")
	}
	if cfg.ValkeyAddr() != "localhost:6379" {
		t.Errorf("ValkeyAddr() = %q, want %q", cfg.ValkeyAddr(), "localhost:6379")
	}
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// デフォルト値の確認
	if cfg.ProductVersion != "1.0" {
		t.Errorf("ProductVersion = %q, want %q", cfg.ProductVersion, "1.0")
	}
	if cfg.ListenAddr != ":8080" {
		t.Errorf("ListenAddr = %q, want %q", cfg.ListenAddr, ":8080")
	}
	if cfg.GinMode != "release" {
		t.Errorf("GinMode = %q, want %q", cfg.GinMode, "release")
	}
	if cfg.LogLevel != "INFO" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "INFO")
	}
	if !cfg.LogMaskAccount {
		t.Error("LogMaskAccount = false, want true")
	}
	if !cfg.CookieSecure {
		t.Error("CookieSecure = false, want true")
	}
}

func TestLoadMissingProductID(t *testing.T) {
	t.Setenv("BRIDGE_API_URL", "http://localhost:9090")
	t.Setenv("REDIS_HOST", "localhost")
	t.Setenv("REDIS_PORT", "6379")
	os.Unsetenv("PRODUCT_ID")

	if _, err := Load(); err == nil {
		t.Error("Load() should fail without PRODUCT_ID")
	}
}

func TestLoadInvalidBridgeURL(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("BRIDGE_API_URL", "ftp://bridge.example")

	if _, err := Load(); err == nil {
		t.Error("Load() should reject a non-http bridge URL")
	}
}
