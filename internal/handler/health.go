package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kube-rca/notify-gate/internal/config"
	"github.com/kube-rca/notify-gate/internal/model"
)

// HealthHandler - 헬스체크. 설정 여부(boolean)만 노출하고 시크릿 값은 노출하지 않음
type HealthHandler struct {
	summary config.Summary
	now     func() time.Time
}

func NewHealthHandler(summary config.Summary) *HealthHandler {
	return &HealthHandler{summary: summary, now: time.Now}
}

// Health godoc
// @Summary Liveness and configuration status
// @Tags health
// @Produce json
// @Success 200 {object} model.HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	respond(c, SuccessResponse("Service is healthy", model.HealthData{
		Status:    "ok",
		Timestamp: h.now().UTC(),
		Config:    h.summary,
	}))
}

// NotFound - 등록되지 않은 경로
func NotFound(c *gin.Context) {
	respond(c, ErrorResponse("Not found", http.StatusNotFound))
}

// MethodNotAllowed - notify 경로에 POST 이외의 method
func MethodNotAllowed(c *gin.Context) {
	respond(c, ErrorResponse("Method not allowed", http.StatusMethodNotAllowed))
}
