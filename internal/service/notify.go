package service

import (
	"context"
	"errors"
	"net/http"

	"github.com/kube-rca/notify-gate/internal/client"
	"github.com/kube-rca/notify-gate/internal/model"
	tmpl "github.com/kube-rca/notify-gate/internal/template"
	"github.com/rs/zerolog"
)

// Verifier - challenge 토큰 검증 (Turnstile)
type Verifier interface {
	Verify(ctx context.Context, token, remoteIP string) (*client.TurnstileResponse, error)
}

// Action - 알림 전송 수단
//
// Validate는 네트워크 호출 없이 설정 여부만 확인한다.
type Action interface {
	Validate() error
	Execute(ctx context.Context, text string) (*client.SendResult, error)
}

// NotifyService - 인증 -> 검증 -> 포맷 -> 전송 파이프라인
type NotifyService struct {
	gate     *APIKeyGate
	verifier Verifier
	action   Action
	log      zerolog.Logger
}

func NewNotifyService(gate *APIKeyGate, verifier Verifier, action Action, log zerolog.Logger) *NotifyService {
	return &NotifyService{
		gate:     gate,
		verifier: verifier,
		action:   action,
		log:      log,
	}
}

// Authenticate - API key 검사. 실패 시 AuthFailure
func (s *NotifyService) Authenticate(h http.Header) error {
	err := s.gate.Authenticate(h)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrMissingKey):
		return newFailure(AuthFailure, "Missing API key", err)
	case errors.Is(err, ErrInvalidKey):
		return newFailure(AuthFailure, "Invalid API key", err)
	default:
		return newFailure(AuthFailure, "Unauthorized", err)
	}
}

// Notify - 본문 검증 후 토큰 검증, 메시지 렌더링, 전송까지 수행
//
// 각 단계는 실패 시 *Failure를 반환하고 다음 단계로 진행하지 않는다.
func (s *NotifyService) Notify(ctx context.Context, req model.NotifyRequest, remoteIP string) (*client.SendResult, error) {
	if req.TurnstileToken == "" {
		return nil, newFailure(ValidationFailure, "Missing required field: turnstile_token", nil)
	}
	if req.Message == "" {
		return nil, newFailure(ValidationFailure, "Missing required field: message", nil)
	}

	verifyResp, err := s.verifier.Verify(ctx, req.TurnstileToken, remoteIP)
	if err != nil {
		event := s.log.Warn().Err(err)
		if verifyResp != nil {
			event = event.Strs("error_codes", verifyResp.ErrorCodes)
		}
		event.Msg("turnstile verification failed")
		return nil, verificationFailure(err)
	}
	if verifyResp != nil {
		s.log.Debug().Str("hostname", verifyResp.Hostname).Msg("turnstile verification passed")
	}

	if err := s.action.Validate(); err != nil {
		return nil, deliveryFailure(err)
	}

	text := tmpl.RenderNotification(req)
	result, err := s.action.Execute(ctx, text)
	if err != nil {
		s.log.Error().Err(err).Msg("notification delivery failed")
		return nil, deliveryFailure(err)
	}

	s.log.Info().Int("text_length", len(text)).Msg("notification delivered")
	return result, nil
}

func verificationFailure(err error) *Failure {
	var verr *client.VerificationError
	switch {
	case errors.Is(err, client.ErrTurnstileNotConfigured):
		return newFailure(VerificationFailure, "Turnstile secret key not configured", err)
	case errors.Is(err, client.ErrMissingToken):
		return newFailure(VerificationFailure, "Missing Turnstile token", err)
	case errors.As(err, &verr):
		return newFailure(VerificationFailure, verr.Error(), err)
	default:
		return newFailure(VerificationFailure, "Turnstile verification error: "+err.Error(), err)
	}
}

func deliveryFailure(err error) *Failure {
	var derr *client.DeliveryError
	switch {
	case errors.Is(err, client.ErrTelegramNotConfigured):
		return newFailure(DeliveryFailure, "Telegram bot token or chat ID not configured", err)
	case errors.As(err, &derr):
		return newFailure(DeliveryFailure, derr.Error(), err)
	default:
		return newFailure(DeliveryFailure, err.Error(), err)
	}
}
