// Cloudflare Turnstile siteverify API와 통신하는 클라이언트 정의
//
// 환경변수:
//   - TURNSTILE_SECRET_KEY: Turnstile secret key
//
// 요청 형식: application/x-www-form-urlencoded (secret, response, remoteip)
// 응답 형식: {"success": bool, "error-codes": [...], ...}

package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/kube-rca/notify-gate/internal/config"
)

const turnstileVerifyURL = "https://challenges.cloudflare.com/turnstile/v0/siteverify"

var (
	ErrTurnstileNotConfigured = errors.New("turnstile secret key not configured")
	ErrMissingToken           = errors.New("missing turnstile token")
)

// Turnstile error-codes -> 설명
var turnstileErrorMessages = map[string]string{
	"missing-input-secret":   "The secret parameter was not passed.",
	"invalid-input-secret":   "The secret parameter was invalid or did not exist.",
	"missing-input-response": "The response parameter (token) was not passed.",
	"invalid-input-response": "The response parameter (token) is invalid or has expired.",
	"bad-request":            "The request was rejected because it was malformed.",
	"timeout-or-duplicate":   "The response parameter (token) has already been validated before.",
	"internal-error":         "An internal error happened while validating the response.",
}

// TurnstileResponse - siteverify 응답
type TurnstileResponse struct {
	Success     bool     `json:"success"`
	ErrorCodes  []string `json:"error-codes,omitempty"`
	ChallengeTS string   `json:"challenge_ts,omitempty"`
	Hostname    string   `json:"hostname,omitempty"`
	Action      string   `json:"action,omitempty"`
	CData       string   `json:"cdata,omitempty"`
}

// VerificationError - Turnstile이 토큰을 거절한 경우
type VerificationError struct {
	Codes    []string
	Response *TurnstileResponse
}

func (e *VerificationError) Error() string {
	return DescribeTurnstileErrors(e.Codes)
}

// TurnstileClient 구조체 정의
type TurnstileClient struct {
	secretKey string
	verifyURL string
	doer      HTTPDoer
}

// TurnstileClient 객체 생성
func NewTurnstileClient(cfg config.TurnstileConfig, doer HTTPDoer) *TurnstileClient {
	return &TurnstileClient{
		secretKey: cfg.SecretKey,
		verifyURL: turnstileVerifyURL,
		doer:      doer,
	}
}

// Secret key 설정 여부 체크
func (c *TurnstileClient) IsConfigured() bool {
	return c.secretKey != ""
}

// Verify - 토큰 검증 요청 (재시도 없음)
//
// 실패 시 응답을 받은 경우에는 *VerificationError, 그 외 transport/parse 오류는 wrap 해서 반환
func (c *TurnstileClient) Verify(ctx context.Context, token, remoteIP string) (*TurnstileResponse, error) {
	if !c.IsConfigured() {
		return nil, ErrTurnstileNotConfigured
	}
	if token == "" {
		return nil, ErrMissingToken
	}

	form := url.Values{}
	form.Set("secret", c.secretKey)
	form.Set("response", token)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.doer.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach turnstile: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var verifyResp TurnstileResponse
	if err := json.Unmarshal(body, &verifyResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if !verifyResp.Success {
		return &verifyResp, &VerificationError{Codes: verifyResp.ErrorCodes, Response: &verifyResp}
	}

	return &verifyResp, nil
}

// DescribeTurnstileErrors - error-codes를 사람이 읽을 수 있는 메시지로 변환
//
// 알 수 없는 코드는 그대로 사용하고, 여러 개면 "; "로 연결한다.
func DescribeTurnstileErrors(codes []string) string {
	if len(codes) == 0 {
		return "Unknown verification error"
	}
	messages := make([]string, 0, len(codes))
	for _, code := range codes {
		if msg, ok := turnstileErrorMessages[code]; ok {
			messages = append(messages, msg)
			continue
		}
		messages = append(messages, code)
	}
	return strings.Join(messages, "; ")
}
