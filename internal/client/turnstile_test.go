package client

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/kube-rca/notify-gate/internal/config"
)

func TestTurnstileVerifyShortCircuits(t *testing.T) {
	tests := []struct {
		name    string
		secret  string
		token   string
		wantErr error
	}{
		{name: "not-configured", secret: "", token: "tok", wantErr: ErrTurnstileNotConfigured},
		{name: "missing-token", secret: "s3cret", token: "", wantErr: ErrMissingToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doer := &fakeDoer{body: `{"success":true}`}
			c := NewTurnstileClient(config.TurnstileConfig{SecretKey: tt.secret}, doer)

			_, err := c.Verify(context.Background(), tt.token, "")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Verify() error = %v, want %v", err, tt.wantErr)
			}
			if doer.calls != 0 {
				t.Fatalf("expected no outbound call, got %d", doer.calls)
			}
		})
	}
}

func TestTurnstileVerifySuccess(t *testing.T) {
	doer := &fakeDoer{body: `{"success":true,"hostname":"example.com"}`}
	c := NewTurnstileClient(config.TurnstileConfig{SecretKey: "s3cret"}, doer)

	resp, err := c.Verify(context.Background(), "tok", "203.0.113.7")
	if err != nil {
		t.Fatalf("Verify() unexpected error: %v", err)
	}
	if !resp.Success || resp.Hostname != "example.com" {
		t.Fatalf("unexpected response %+v", resp)
	}

	if doer.lastReq.URL.String() != turnstileVerifyURL {
		t.Fatalf("unexpected url %s", doer.lastReq.URL)
	}
	if ct := doer.lastReq.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
		t.Fatalf("unexpected content type %q", ct)
	}
	form, err := url.ParseQuery(doer.lastBody)
	if err != nil {
		t.Fatalf("parse form: %v", err)
	}
	if form.Get("secret") != "s3cret" || form.Get("response") != "tok" || form.Get("remoteip") != "203.0.113.7" {
		t.Fatalf("unexpected form %v", form)
	}
}

func TestTurnstileVerifyOmitsEmptyRemoteIP(t *testing.T) {
	doer := &fakeDoer{body: `{"success":true}`}
	c := NewTurnstileClient(config.TurnstileConfig{SecretKey: "s3cret"}, doer)

	if _, err := c.Verify(context.Background(), "tok", ""); err != nil {
		t.Fatalf("Verify() unexpected error: %v", err)
	}
	if strings.Contains(doer.lastBody, "remoteip") {
		t.Fatalf("remoteip should be omitted, body=%s", doer.lastBody)
	}
}

func TestTurnstileVerifyRejected(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "expired",
			body: `{"success":false,"error-codes":["invalid-input-response"]}`,
			want: "The response parameter (token) is invalid or has expired.",
		},
		{
			name: "multiple-with-unknown",
			body: `{"success":false,"error-codes":["timeout-or-duplicate","brand-new-code"]}`,
			want: "The response parameter (token) has already been validated before.; brand-new-code",
		},
		{
			name: "no-codes",
			body: `{"success":false}`,
			want: "Unknown verification error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewTurnstileClient(config.TurnstileConfig{SecretKey: "s3cret"}, &fakeDoer{body: tt.body})

			resp, err := c.Verify(context.Background(), "tok", "")
			var verr *VerificationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *VerificationError, got %v", err)
			}
			if err.Error() != tt.want {
				t.Fatalf("error = %q, want %q", err.Error(), tt.want)
			}
			if resp == nil || resp.Success {
				t.Fatalf("expected raw failed response, got %+v", resp)
			}
		})
	}
}

func TestTurnstileVerifyTransportAndParseErrors(t *testing.T) {
	tests := []struct {
		name string
		doer *fakeDoer
		want string
	}{
		{name: "transport", doer: &fakeDoer{err: errConnRefused}, want: "connection refused"},
		{name: "parse", doer: &fakeDoer{body: "<html>bad gateway</html>"}, want: "failed to parse response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewTurnstileClient(config.TurnstileConfig{SecretKey: "s3cret"}, tt.doer)

			_, err := c.Verify(context.Background(), "tok", "")
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error = %v, want containing %q", err, tt.want)
			}
			if tt.doer.calls != 1 {
				t.Fatalf("expected exactly one call (no retry), got %d", tt.doer.calls)
			}
		})
	}
}
