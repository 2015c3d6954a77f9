package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/kube-rca/notify-gate/internal/client"
	"github.com/kube-rca/notify-gate/internal/model"
	"github.com/rs/zerolog"
)

type fakeVerifier struct {
	resp  *client.TurnstileResponse
	err   error
	calls int
}

func (f *fakeVerifier) Verify(ctx context.Context, token, remoteIP string) (*client.TurnstileResponse, error) {
	f.calls++
	return f.resp, f.err
}

type fakeAction struct {
	validateErr error
	result      *client.SendResult
	err         error
	calls       int
	lastText    string
}

func (f *fakeAction) Validate() error {
	return f.validateErr
}

func (f *fakeAction) Execute(ctx context.Context, text string) (*client.SendResult, error) {
	f.calls++
	f.lastText = text
	return f.result, f.err
}

func newTestService(v *fakeVerifier, a *fakeAction) *NotifyService {
	return NewNotifyService(NewAPIKeyGate("k3y"), v, a, zerolog.Nop())
}

func validRequest() model.NotifyRequest {
	return model.NotifyRequest{TurnstileToken: "tok", Message: "hello", Subject: "Hi"}
}

func TestNotifySuccess(t *testing.T) {
	v := &fakeVerifier{resp: &client.TurnstileResponse{Success: true}}
	a := &fakeAction{result: &client.SendResult{Success: true, Message: "Message sent successfully", Data: json.RawMessage(`{"message_id":1}`)}}

	res, err := newTestService(v, a).Notify(context.Background(), validRequest(), "203.0.113.7")
	if err != nil {
		t.Fatalf("Notify() unexpected error: %v", err)
	}
	if !res.Success {
		t.Fatalf("expected success result")
	}
	if a.lastText != "<b>Hi</b>\nhello" {
		t.Fatalf("unexpected rendered text %q", a.lastText)
	}
}

func TestNotifyFailures(t *testing.T) {
	tests := []struct {
		name        string
		req         model.NotifyRequest
		verifier    *fakeVerifier
		action      *fakeAction
		wantKind    FailureKind
		wantMessage string
		wantSends   int
	}{
		{
			name:        "missing-token",
			req:         model.NotifyRequest{Message: "m"},
			verifier:    &fakeVerifier{},
			action:      &fakeAction{},
			wantKind:    ValidationFailure,
			wantMessage: "Missing required field: turnstile_token",
		},
		{
			name:        "missing-message",
			req:         model.NotifyRequest{TurnstileToken: "tok"},
			verifier:    &fakeVerifier{},
			action:      &fakeAction{},
			wantKind:    ValidationFailure,
			wantMessage: "Missing required field: message",
		},
		{
			name:        "verifier-not-configured",
			req:         validRequest(),
			verifier:    &fakeVerifier{err: client.ErrTurnstileNotConfigured},
			action:      &fakeAction{},
			wantKind:    VerificationFailure,
			wantMessage: "Turnstile secret key not configured",
		},
		{
			name: "token-rejected",
			req:  validRequest(),
			verifier: &fakeVerifier{
				resp: &client.TurnstileResponse{ErrorCodes: []string{"invalid-input-response"}},
				err:  &client.VerificationError{Codes: []string{"invalid-input-response"}},
			},
			action:      &fakeAction{},
			wantKind:    VerificationFailure,
			wantMessage: "expired",
		},
		{
			name:        "verifier-unreachable",
			req:         validRequest(),
			verifier:    &fakeVerifier{err: errors.New("dial tcp: i/o timeout")},
			action:      &fakeAction{},
			wantKind:    VerificationFailure,
			wantMessage: "i/o timeout",
		},
		{
			name:        "sender-not-configured",
			req:         validRequest(),
			verifier:    &fakeVerifier{resp: &client.TurnstileResponse{Success: true}},
			action:      &fakeAction{validateErr: client.ErrTelegramNotConfigured},
			wantKind:    DeliveryFailure,
			wantMessage: "Telegram bot token or chat ID not configured",
		},
		{
			name:        "provider-rejected",
			req:         validRequest(),
			verifier:    &fakeVerifier{resp: &client.TurnstileResponse{Success: true}},
			action:      &fakeAction{err: &client.DeliveryError{StatusCode: http.StatusBadRequest, Description: "Bad Request: chat not found"}},
			wantKind:    DeliveryFailure,
			wantMessage: "Bad Request: chat not found",
			wantSends:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestService(tt.verifier, tt.action).Notify(context.Background(), tt.req, "")
			f, ok := AsFailure(err)
			if !ok {
				t.Fatalf("expected *Failure, got %v", err)
			}
			if f.Kind != tt.wantKind {
				t.Fatalf("kind = %s, want %s", f.Kind, tt.wantKind)
			}
			if !strings.Contains(f.Message, tt.wantMessage) {
				t.Fatalf("message = %q, want containing %q", f.Message, tt.wantMessage)
			}
			if tt.action.calls != tt.wantSends {
				t.Fatalf("sends = %d, want %d", tt.action.calls, tt.wantSends)
			}
		})
	}
}

func TestNotifyValidationSkipsVerifier(t *testing.T) {
	v := &fakeVerifier{}
	_, _ = newTestService(v, &fakeAction{}).Notify(context.Background(), model.NotifyRequest{}, "")
	if v.calls != 0 {
		t.Fatalf("verifier should not be called for invalid body")
	}
}

func TestAuthenticateMapsToAuthFailure(t *testing.T) {
	svc := newTestService(&fakeVerifier{}, &fakeAction{})

	tests := []struct {
		name    string
		header  http.Header
		wantMsg string
	}{
		{name: "missing", header: http.Header{}, wantMsg: "Missing API key"},
		{name: "invalid", header: http.Header{"X-Api-Key": []string{"bad"}}, wantMsg: "Invalid API key"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, ok := AsFailure(svc.Authenticate(tt.header))
			if !ok || f.Kind != AuthFailure || f.Message != tt.wantMsg {
				t.Fatalf("unexpected failure %+v", f)
			}
			if f.Kind.HTTPStatus() != http.StatusUnauthorized {
				t.Fatalf("expected 401")
			}
		})
	}

	if err := svc.Authenticate(http.Header{"X-Api-Key": []string{"k3y"}}); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
}
