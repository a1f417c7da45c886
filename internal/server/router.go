package server

import (
	"github.com/gin-gonic/gin"

	"github.com/oyaguma3/fints-tan-bridge/internal/handler"
)

// SetupRouter はルーティングを設定する。
func SetupRouter(engine *gin.Engine, h *handler.BankingHandler) {
	// ヘルスチェック
	engine.GET("/healthz", h.HandleHealth)

	// API v1
	v1 := engine.Group("/api/v1")
	{
		v1.POST("/banking", h.HandleBanking)
	}
}
