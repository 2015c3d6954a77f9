package client

import (
	"errors"
	"io"
	"net/http"
	"strings"
)

// fakeDoer - 요청을 기록하고 고정 응답을 반환
type fakeDoer struct {
	status int
	body   string
	err    error

	calls    int
	lastReq  *http.Request
	lastBody string
}

func (f *fakeDoer) Do(req *http.Request) (*http.Response, error) {
	f.calls++
	f.lastReq = req
	if req.Body != nil {
		b, _ := io.ReadAll(req.Body)
		f.lastBody = string(b)
	}
	if f.err != nil {
		return nil, f.err
	}
	status := f.status
	if status == 0 {
		status = http.StatusOK
	}
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(f.body)),
		Request:    req,
	}, nil
}

var errConnRefused = errors.New("connection refused")
