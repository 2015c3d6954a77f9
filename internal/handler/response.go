package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kube-rca/notify-gate/internal/model"
)

const (
	corsAllowMethods = "GET, POST, OPTIONS"
	corsAllowHeaders = "Content-Type, X-API-Key, Authorization"
	corsMaxAge       = "86400"
)

// Response - 상태 코드, 헤더, envelope 본문을 묶은 응답 값
//
// Body가 nil이면 본문 없이 상태 코드만 쓴다 (preflight 204).
type Response struct {
	Status int
	Header http.Header
	Body   *model.Envelope
}

// JSONResponse - envelope를 JSON으로 내보내는 응답 생성
func JSONResponse(status int, env model.Envelope, header http.Header) Response {
	h := header.Clone()
	if h == nil {
		h = http.Header{}
	}
	h.Set("Content-Type", "application/json")
	return Response{Status: status, Header: h, Body: &env}
}

// SuccessResponse - 200 성공 응답
func SuccessResponse(message string, data any) Response {
	return JSONResponse(http.StatusOK, model.Envelope{
		Success: true,
		Message: message,
		Data:    data,
	}, nil)
}

// ErrorResponse - 실패 응답. status가 0이면 400
func ErrorResponse(message string, status int) Response {
	if status == 0 {
		status = http.StatusBadRequest
	}
	return JSONResponse(status, model.Envelope{
		Success: false,
		Message: message,
		Error:   message,
	}, nil)
}

func corsHeaders(origin string) http.Header {
	return http.Header{
		"Access-Control-Allow-Origin":  []string{origin},
		"Access-Control-Allow-Methods": []string{corsAllowMethods},
		"Access-Control-Allow-Headers": []string{corsAllowHeaders},
		"Access-Control-Max-Age":       []string{corsMaxAge},
	}
}

// WithCORS - 기존 응답을 복사하고 CORS 헤더 4개를 덮어쓴다
func WithCORS(resp Response, origin string) Response {
	h := resp.Header.Clone()
	if h == nil {
		h = http.Header{}
	}
	for k, v := range corsHeaders(origin) {
		h[k] = v
	}

	out := Response{Status: resp.Status, Header: h}
	if resp.Body != nil {
		body := *resp.Body
		out.Body = &body
	}
	return out
}

// Write - 응답을 gin context에 기록하고 이후 핸들러 실행을 중단
func (r Response) Write(c *gin.Context) {
	header := c.Writer.Header()
	for k, v := range r.Header {
		header[k] = v
	}

	if r.Body == nil {
		c.AbortWithStatus(r.Status)
		return
	}

	payload, err := json.Marshal(r.Body)
	if err != nil {
		payload = []byte(`{"success":false,"message":"Internal server error","error":"Internal server error"}`)
		r.Status = http.StatusInternalServerError
	}
	c.Data(r.Status, "application/json", payload)
	c.Abort()
}

// respond - 모든 응답은 CORS 헤더를 붙여서 내보낸다
func respond(c *gin.Context, resp Response) {
	WithCORS(resp, allowedOriginFrom(c)).Write(c)
}
