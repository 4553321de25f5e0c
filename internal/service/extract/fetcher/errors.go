package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	apperrors "github.com/darkkaiser/product-extractor/internal/pkg/errors"
)

// StatusError 허용되지 않은 HTTP 상태 코드를 받았을 때 반환됩니다.
// Cause 에는 상태 코드에 따라 분류된 AppError 가 들어있습니다.
type StatusError struct {
	StatusCode  int
	URL         string
	BodySnippet string
	Cause       error
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("HTTP %d (%s) URL: %s", e.StatusCode, http.StatusText(e.StatusCode), e.URL)
	if e.BodySnippet != "" {
		msg += ", Body: " + e.BodySnippet
	}
	return msg
}

func (e *StatusError) Unwrap() error {
	return e.Cause
}

// StatusCode 에러 체인에 StatusError 가 있으면 그 상태 코드를, 없으면 0 을 반환합니다.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

// IsAuthStatus 세션 쿠키가 만료되었거나 차단되었음을 의미하는 상태 코드인지 확인합니다.
func IsAuthStatus(code int) bool {
	return code == http.StatusUnauthorized || code == http.StatusForbidden || code == http.StatusTooManyRequests
}

// statusErrorType 상태 코드를 AppError 타입으로 분류합니다.
func statusErrorType(code int) apperrors.ErrorType {
	switch {
	case code == http.StatusUnauthorized:
		return apperrors.Unauthorized
	case code == http.StatusForbidden:
		return apperrors.Forbidden
	case code == http.StatusNotFound:
		return apperrors.NotFound
	case code == http.StatusRequestTimeout || code == http.StatusGatewayTimeout:
		return apperrors.Timeout
	case code == http.StatusTooManyRequests || code >= 500:
		return apperrors.Unavailable
	default:
		return apperrors.ExecutionFailed
	}
}

func newStatusError(code int, url, snippet string) error {
	return &StatusError{
		StatusCode:  code,
		URL:         url,
		BodySnippet: snippet,
		Cause:       apperrors.Newf(statusErrorType(code), "HTTP 요청이 실패했습니다. 상태 코드: %d", code),
	}
}

// classifyTransportError 네트워크 계층 에러를 시간 초과와 연결 실패로 구분합니다.
func classifyTransportError(url string, err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.Wrapf(err, apperrors.Timeout, "요청 시간이 초과되었습니다 (%s)", url)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return apperrors.Wrapf(err, apperrors.Timeout, "요청 시간이 초과되었습니다 (%s)", url)
	}
	if errors.Is(err, context.Canceled) {
		return apperrors.Wrapf(err, apperrors.Unavailable, "요청이 취소되었습니다 (%s)", url)
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return newErrResponseBodyTooLarge(tooLarge.Limit)
	}
	return apperrors.Wrapf(err, apperrors.Unavailable, "네트워크 요청에 실패했습니다 (%s)", url)
}

func newErrInvalidRequest(url string, err error) error {
	return apperrors.Wrapf(err, apperrors.InvalidInput, "HTTP 요청을 생성할 수 없습니다 (%s)", url)
}

func newErrResponseBodyTooLarge(limit int64) error {
	return apperrors.Newf(apperrors.ExecutionFailed, "응답 본문이 허용된 크기(%d 바이트)를 초과했습니다", limit)
}
