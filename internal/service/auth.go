package service

import (
	"errors"
	"net/http"
	"strings"
)

const (
	apiKeyHeader = "X-API-Key"
	bearerPrefix = "Bearer "
)

var (
	ErrMissingKey = errors.New("missing API key")
	ErrInvalidKey = errors.New("invalid API key")
)

// SecureCompare - 두 문자열이 같은지 상수 시간으로 비교
//
// 길이가 다르면 바로 false를 반환한다. 길이는 비밀이 아니라고 가정한다.
// 길이가 같으면 첫 불일치 위치와 상관없이 전체를 순회한다.
func SecureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	var diff byte
	for i := 0; i < len(a); i++ {
		diff |= a[i] ^ b[i]
	}
	return diff == 0
}

// APIKeyGate - 공유 API key 기반 요청 인증
type APIKeyGate struct {
	apiKey string
}

func NewAPIKeyGate(apiKey string) *APIKeyGate {
	return &APIKeyGate{apiKey: apiKey}
}

// Required - API key가 설정되어 있는지 여부
func (g *APIKeyGate) Required() bool {
	return g.apiKey != ""
}

// Authenticate - X-API-Key 또는 Authorization: Bearer 헤더 검사
//
// API key가 설정되지 않은 경우 인증을 건너뛴다.
func (g *APIKeyGate) Authenticate(h http.Header) error {
	if !g.Required() {
		return nil
	}

	candidate := h.Get(apiKeyHeader)
	if candidate == "" {
		if auth := h.Get("Authorization"); strings.HasPrefix(auth, bearerPrefix) {
			candidate = strings.TrimPrefix(auth, bearerPrefix)
		}
	}
	if candidate == "" {
		return ErrMissingKey
	}

	if !SecureCompare(candidate, g.apiKey) {
		return ErrInvalidKey
	}
	return nil
}
