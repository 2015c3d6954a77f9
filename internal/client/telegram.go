// 외부 Telegram Bot API와 통신하는 클라이언트 정의
//
// 환경변수:
//   - TELEGRAM_BOT_TOKEN: Bot Token (123456:ABC-...)
//   - TELEGRAM_CHAT_ID: 메시지를 받을 chat ID
//
// 메시지는 HTML parse mode로 전송하며 링크 미리보기는 끈다.

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/kube-rca/notify-gate/internal/config"
)

const (
	telegramAPIURLTemplate = "https://api.telegram.org/bot%s/sendMessage"
	defaultDeliveryError   = "Failed to send Telegram message"
)

var ErrTelegramNotConfigured = errors.New("telegram bot token or chat ID not configured")

// TelegramMessage(sendMessage 요청) 구조체 정의
type TelegramMessage struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

// TelegramResponse(sendMessage 응답) 구조체 정의
type TelegramResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result,omitempty"`
	Description string          `json:"description,omitempty"`
	ErrorCode   int             `json:"error_code,omitempty"`
}

// SendResult - 전송 결과
type SendResult struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// DeliveryError - Telegram이 요청을 거절한 경우 (HTTP 오류 또는 ok=false)
type DeliveryError struct {
	StatusCode  int
	Description string
}

func (e *DeliveryError) Error() string {
	if e.Description == "" {
		return defaultDeliveryError
	}
	return e.Description
}

// TelegramClient(메시지 메타데이터) 구조체 정의
type TelegramClient struct {
	botToken string
	chatID   string
	doer     HTTPDoer
}

// TelegramClient 객체 생성
func NewTelegramClient(cfg config.TelegramConfig, doer HTTPDoer) *TelegramClient {
	return &TelegramClient{
		botToken: cfg.BotToken,
		chatID:   cfg.ChatID,
		doer:     doer,
	}
}

// Bot Token과 Chat ID가 모두 설정되어 있는지 체크
func (c *TelegramClient) Validate() error {
	if c.botToken == "" || c.chatID == "" {
		return ErrTelegramNotConfigured
	}
	return nil
}

// Execute - 렌더링된 HTML 텍스트를 chat으로 전송 (재시도 없음)
func (c *TelegramClient) Execute(ctx context.Context, text string) (*SendResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	resp, err := c.send(ctx, TelegramMessage{
		ChatID:                c.chatID,
		Text:                  text,
		ParseMode:             "HTML",
		DisableWebPagePreview: true,
	})
	if err != nil {
		return nil, err
	}

	return &SendResult{
		Success: true,
		Message: "Message sent successfully",
		Data:    resp.Result,
	}, nil
}

// Telegram API 호출
func (c *TelegramClient) send(ctx context.Context, msg TelegramMessage) (*TelegramResponse, error) {
	// JSON 직렬화
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}

	// HTTP 요청 생성 (토큰은 URL에 포함되므로 로그에 남기지 않음)
	endpoint := fmt.Sprintf(telegramAPIURLTemplate, c.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, errors.New("failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")

	// 요청 전송
	resp, err := c.doer.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send message: %w", redactURLError(err))
	}
	defer resp.Body.Close()

	// 응답 읽기
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	// JSON 파싱
	var tgResp TelegramResponse
	if err := json.Unmarshal(body, &tgResp); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, &DeliveryError{StatusCode: resp.StatusCode}
		}
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	// 에러 확인
	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !tgResp.OK {
		return nil, &DeliveryError{StatusCode: resp.StatusCode, Description: tgResp.Description}
	}

	return &tgResp, nil
}

// *url.Error는 요청 URL(봇 토큰 포함)을 메시지에 담으므로 내부 오류만 꺼낸다
func redactURLError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		return urlErr.Err
	}
	return err
}
