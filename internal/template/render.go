// Package template renders a notify payload into Telegram HTML text.
//
// 출력 형식 (각 항목은 줄바꿈으로 구분):
//
//	<b>{subject}</b>
//	{message}
//	{metadata key}: {metadata value}
//
// Telegram HTML parse mode에서 특수하게 해석되는 &, <, > 세 문자만 escape 한다.
package template

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/kube-rca/notify-gate/internal/model"
)

// html.EscapeString은 따옴표까지 바꾸므로 사용하지 않음
var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
)

// EscapeHTML - &, <, > 만 치환
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// RenderNotification - subject, message, metadata를 Telegram 메시지 본문으로 변환
//
// 비어있는 subject/message는 생략하고, 값이 null인 metadata 항목도 생략한다.
// 길이 제한은 두지 않는다 (Telegram 측에서 거절될 수 있음).
func RenderNotification(req model.NotifyRequest) string {
	lines := make([]string, 0, 2+len(req.Metadata))

	if subject := strings.TrimSpace(req.Subject); subject != "" {
		lines = append(lines, "<b>"+EscapeHTML(subject)+"</b>")
	}
	if message := strings.TrimSpace(req.Message); message != "" {
		lines = append(lines, EscapeHTML(message))
	}

	for _, entry := range req.Metadata {
		value, ok := stringifyValue(entry.Value)
		if !ok {
			continue
		}
		lines = append(lines, EscapeHTML(entry.Key)+": "+EscapeHTML(value))
	}

	return strings.Join(lines, "\n")
}

// stringifyValue - JSON 값을 문자열로 변환. null이면 false 반환
func stringifyValue(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", false
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return string(raw), true
		}
		return s, true
	case '{', '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return string(raw), true
		}
		return buf.String(), true
	case 't', 'f':
		return string(raw), true
	default:
		return formatNumber(string(raw)), true
	}
}

// formatNumber - JSON 숫자를 JavaScript String(number)와 같은 형태로 출력
func formatNumber(literal string) string {
	f, err := strconv.ParseFloat(literal, 64)
	if err != nil {
		return literal
	}
	if f == 0 {
		return "0"
	}

	abs := math.Abs(f)
	if abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}

	s := strconv.FormatFloat(f, 'e', -1, 64)
	mantissa, exp, _ := strings.Cut(s, "e")
	sign := exp[:1]
	digits := strings.TrimLeft(exp[1:], "0")
	return mantissa + "e" + sign + digits
}
