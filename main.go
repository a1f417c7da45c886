// Package main はFinTS TANオーケストレーションサービスのエントリーポイント。
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/oyaguma3/fints-tan-bridge/internal/banking/bridge"
	"github.com/oyaguma3/fints-tan-bridge/internal/config"
	"github.com/oyaguma3/fints-tan-bridge/internal/engine"
	"github.com/oyaguma3/fints-tan-bridge/internal/handler"
	"github.com/oyaguma3/fints-tan-bridge/internal/server"
	"github.com/oyaguma3/fints-tan-bridge/internal/session"
	"github.com/oyaguma3/fints-tan-bridge/internal/store"
	"github.com/oyaguma3/fints-tan-bridge/pkg/valkey"
)

func main() {
	// 1. 設定読み込み
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// 2. ロガー初期化
	initLogger(cfg)

	slog.Info("starting fints-tan-bridge",
		"listen_addr", cfg.ListenAddr,
		"bridge_api_url", cfg.BridgeAPIURL,
		"log_level", cfg.LogLevel,
	)

	// 3. Valkey接続（セッションレジストリ）
	valkeyClient, err := valkey.NewClient(
		valkey.DefaultOptions().
			WithAddr(valkey.BuildAddr(cfg.RedisHost, cfg.RedisPort)).
			WithPassword(cfg.RedisPass),
	)
	if err != nil {
		slog.Error("failed to connect to Valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	slog.Info("connected to Valkey", "addr", cfg.ValkeyAddr())

	// 4. 依存オブジェクト生成
	registry := store.NewRegistry(valkeyClient)
	sessions := session.NewMemoryStore()
	bridgeClient := bridge.New(cfg)
	eng := engine.NewEngine(bridgeClient.Factory(), registry, cfg)
	bankingHandler := handler.NewBankingHandler(eng, sessions, cfg)

	// 5. サーバー起動
	srv := server.New(cfg, bankingHandler)

	// 6. Graceful Shutdown設定
	go func() {
		if err := srv.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// 7. シグナル待機
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	// 開いたままの銀行ダイアログを閉じてから終了する
	sessions.ForEach(func(sess *session.Session) {
		sess.Lock()
		if client := sess.Client(); client != nil {
			if err := client.Close(ctx); err != nil {
				slog.Warn("dialog close error on shutdown",
					"session_id", sess.ID,
					"error", err,
				)
			}
		}
		sess.Unlock()
	})

	slog.Info("server stopped")
}

// initLogger はロガーを初期化する。
func initLogger(cfg *config.Config) {
	level := slog.LevelInfo
	switch strings.ToUpper(cfg.LogLevel) {
	case "DEBUG":
		level = slog.LevelDebug
	case "WARN":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	handler := slog.NewJSONHandler(os.Stdout, opts)
	logger := slog.New(handler).With("app", "fints-tan-bridge")
	slog.SetDefault(logger)
}
