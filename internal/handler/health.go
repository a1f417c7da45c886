package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthResponse はヘルスチェックのレスポンス。
type HealthResponse struct {
	Status string `json:"status"`
}

// HandleHealth はGET /healthz のハンドラー。
func (h *BankingHandler) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}
