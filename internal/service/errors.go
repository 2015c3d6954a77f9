package service

import (
	"errors"
	"net/http"
)

type FailureKind string

const (
	AuthFailure         FailureKind = "auth"
	ValidationFailure   FailureKind = "validation"
	VerificationFailure FailureKind = "verification"
	DeliveryFailure     FailureKind = "delivery"
)

// HTTPStatus - 실패 종류별 응답 status
func (k FailureKind) HTTPStatus() int {
	switch k {
	case AuthFailure:
		return http.StatusUnauthorized
	case ValidationFailure:
		return http.StatusBadRequest
	case VerificationFailure:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Failure - 파이프라인 단계에서 발생한 실패. Message는 응답에 그대로 노출된다.
type Failure struct {
	Kind    FailureKind
	Message string
	Err     error
}

func newFailure(kind FailureKind, message string, err error) *Failure {
	return &Failure{Kind: kind, Message: message, Err: err}
}

func (f *Failure) Error() string {
	return f.Message
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// AsFailure - err에서 *Failure를 꺼낸다
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}
