package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server    ServerConfig
	Log       LogConfig
	Auth      AuthConfig
	Turnstile TurnstileConfig
	Telegram  TelegramConfig
	CORS      CORSConfig
	HTTP      HTTPClientConfig
}

type ServerConfig struct {
	Port    string
	GinMode string
}

type LogConfig struct {
	Level  string
	Pretty bool
}

// API_KEY가 비어있으면 인증을 건너뜀
type AuthConfig struct {
	APIKey string
}

type TurnstileConfig struct {
	SecretKey string
}

type TelegramConfig struct {
	BotToken string
	ChatID   string
}

type CORSConfig struct {
	AllowedOrigins []string
}

// 외부 호출(Turnstile, Telegram)에 공통으로 쓰이는 transport 설정
type HTTPClientConfig struct {
	Timeout time.Duration
}

// Summary는 시크릿 값 대신 설정 여부만 노출
type Summary struct {
	Telegram       bool `json:"telegram"`
	Turnstile      bool `json:"turnstile"`
	APIKeyRequired bool `json:"apiKeyRequired"`
}

func Load() Config {
	return Config{
		Server: ServerConfig{
			Port:    getenv("PORT", "8080"),
			GinMode: getenv("GIN_MODE", "release"),
		},
		Log: LogConfig{
			Level:  getenv("LOG_LEVEL", "info"),
			Pretty: getbool("LOG_PRETTY", false),
		},
		Auth: AuthConfig{
			APIKey: os.Getenv("API_KEY"),
		},
		Turnstile: TurnstileConfig{
			SecretKey: os.Getenv("TURNSTILE_SECRET_KEY"),
		},
		Telegram: TelegramConfig{
			BotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
			ChatID:   os.Getenv("TELEGRAM_CHAT_ID"),
		},
		CORS: CORSConfig{
			AllowedOrigins: ParseOrigins(os.Getenv("ALLOWED_ORIGINS")),
		},
		HTTP: HTTPClientConfig{
			Timeout: getduration("HTTP_CLIENT_TIMEOUT", 10*time.Second),
		},
	}
}

func (c Config) Summary() Summary {
	return Summary{
		Telegram:       c.Telegram.BotToken != "" && c.Telegram.ChatID != "",
		Turnstile:      c.Turnstile.SecretKey != "",
		APIKeyRequired: c.Auth.APIKey != "",
	}
}

// ParseOrigins - 콤마로 구분된 origin 목록 파싱. 미설정이면 ["*"]
func ParseOrigins(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{"*"}
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		origins = append(origins, strings.TrimSpace(part))
	}
	return origins
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getbool(key string, fallback bool) bool {
	val, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return val
}

func getduration(key string, fallback time.Duration) time.Duration {
	val, err := time.ParseDuration(os.Getenv(key))
	if err != nil || val <= 0 {
		return fallback
	}
	return val
}
