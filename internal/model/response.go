package model

import (
	"time"

	"github.com/kube-rca/notify-gate/internal/config"
)

// Envelope - 모든 엔드포인트가 공통으로 반환하는 응답 형태
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

type HealthData struct {
	Status    string         `json:"status"`
	Timestamp time.Time      `json:"timestamp"`
	Config    config.Summary `json:"config"`
}

// swag 문서용 응답 타입
type HealthResponse struct {
	Success bool       `json:"success"`
	Message string     `json:"message"`
	Data    HealthData `json:"data"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error"`
}
