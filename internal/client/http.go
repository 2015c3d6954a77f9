package client

import (
	"net/http"
	"time"
)

// HTTPDoer - 외부 API 호출에 사용하는 transport
//
// *http.Client가 그대로 만족하며, 테스트에서는 fake로 교체한다.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// NewHTTPClient - 기본 timeout이 설정된 http.Client 생성
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &http.Client{Timeout: timeout}
}
