package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kube-rca/notify-gate/internal/client"
	"github.com/kube-rca/notify-gate/internal/metrics"
	"github.com/kube-rca/notify-gate/internal/model"
	"github.com/kube-rca/notify-gate/internal/service"
	"github.com/rs/zerolog"
)

// Notifier - 서비스 인터페이스
type Notifier interface {
	Authenticate(h http.Header) error
	Notify(ctx context.Context, req model.NotifyRequest, remoteIP string) (*client.SendResult, error)
}

// NotifyHandler - 알림 전송 핸들러
type NotifyHandler struct {
	svc     Notifier
	metrics *metrics.Metrics
	log     zerolog.Logger
}

func NewNotifyHandler(svc Notifier, m *metrics.Metrics, log zerolog.Logger) *NotifyHandler {
	return &NotifyHandler{svc: svc, metrics: m, log: log}
}

// Authenticate - API key 검사 미들웨어 (notify 경로 전용)
func (h *NotifyHandler) Authenticate(c *gin.Context) {
	if err := h.svc.Authenticate(c.Request.Header); err != nil {
		h.fail(c, err)
		return
	}
	c.Next()
}

// Notify godoc
// @Summary Verify a Turnstile token and send a Telegram notification
// @Tags notify
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body model.NotifyRequest true "Notification payload"
// @Success 200 {object} model.Envelope
// @Failure 400,401,403,500 {object} model.ErrorResponse
// @Router /notify [post]
func (h *NotifyHandler) Notify(c *gin.Context) {
	var req model.NotifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.metrics.ObserveOutcome(string(service.ValidationFailure))
		respond(c, ErrorResponse("Invalid JSON body", http.StatusBadRequest))
		return
	}

	result, err := h.svc.Notify(c.Request.Context(), req, remoteIP(c))
	if err != nil {
		h.fail(c, err)
		return
	}

	h.metrics.ObserveOutcome("success")
	var data any
	if result != nil && len(result.Data) > 0 {
		data = result.Data
	}
	respond(c, SuccessResponse("Notification sent successfully", data))
}

func (h *NotifyHandler) fail(c *gin.Context, err error) {
	f, ok := service.AsFailure(err)
	if !ok {
		h.log.Error().Err(err).Str("request_id", c.GetString(requestIDKey)).Msg("unclassified notify error")
		h.metrics.ObserveOutcome("internal")
		respond(c, ErrorResponse("Internal server error", http.StatusInternalServerError))
		return
	}

	h.log.Warn().
		Str("request_id", c.GetString(requestIDKey)).
		Str("kind", string(f.Kind)).
		Str("reason", f.Message).
		Msg("notify request rejected")
	h.metrics.ObserveOutcome(string(f.Kind))
	respond(c, ErrorResponse(f.Message, f.Kind.HTTPStatus()))
}

// Cloudflare 뒤에서는 CF-Connecting-IP, 아니면 gin ClientIP 사용
func remoteIP(c *gin.Context) string {
	if ip := c.GetHeader("CF-Connecting-IP"); ip != "" {
		return ip
	}
	return c.ClientIP()
}
