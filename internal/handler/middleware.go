package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	allowedOriginKey = "allowed_origin"
	requestIDKey     = "request_id"
	requestIDHeader  = "X-Request-ID"
)

// ResolveAllowedOrigin - 요청 Origin과 허용 목록으로 Access-Control-Allow-Origin 값 결정
//
// 목록에 "*"가 있으면 "*", 요청 origin이 목록에 있으면 그대로 반환한다.
// 둘 다 아니면 목록의 첫 번째 origin을 돌려준다 (목록이 비어있으면 "*").
func ResolveAllowedOrigin(requestOrigin string, allowedOrigins []string) string {
	if requestOrigin == "" {
		requestOrigin = "*"
	}

	for _, allowed := range allowedOrigins {
		if allowed == "*" {
			return "*"
		}
	}
	for _, allowed := range allowedOrigins {
		if allowed == requestOrigin {
			return requestOrigin
		}
	}
	// TODO: 목록에 없는 origin에 첫 번째 origin을 돌려주는 대신 거절할지 결정 필요
	if len(allowedOrigins) > 0 {
		return allowedOrigins[0]
	}
	return "*"
}

func allowedOriginFrom(c *gin.Context) string {
	if origin := c.GetString(allowedOriginKey); origin != "" {
		return origin
	}
	return "*"
}

// CORSMiddleware - 요청마다 허용 origin을 계산하고, OPTIONS는 204로 바로 응답
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := ResolveAllowedOrigin(c.GetHeader("Origin"), allowedOrigins)
		c.Set(allowedOriginKey, origin)

		if c.Request.Method == http.MethodOptions {
			respond(c, Response{Status: http.StatusNoContent})
			return
		}

		// Response 빌더를 거치지 않는 응답(/metrics 등)에도 CORS 헤더가 붙도록 미리 설정
		header := c.Writer.Header()
		for k, v := range corsHeaders(origin) {
			header[k] = v
		}
		c.Next()
	}
}

// RequestIDMiddleware - X-Request-ID가 없으면 새로 발급
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// LoggerMiddleware - 요청 단위 access log
func LoggerMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		event := log.Info()
		if status >= http.StatusInternalServerError {
			event = log.Error()
		} else if status >= http.StatusBadRequest {
			event = log.Warn()
		}
		event.
			Str("request_id", c.GetString(requestIDKey)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Msg("request handled")
	}
}

// RecoveryMiddleware - panic을 500 envelope로 변환
func RecoveryMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered any) {
		log.Error().
			Str("request_id", c.GetString(requestIDKey)).
			Str("panic", fmt.Sprint(recovered)).
			Msg("recovered from panic")
		respond(c, ErrorResponse("Internal server error", http.StatusInternalServerError))
	})
}
