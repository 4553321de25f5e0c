// Package httputil API 응답과 에러 변환을 위한 공통 유틸리티를 제공합니다.
package httputil

import (
	"net/http"

	"github.com/darkkaiser/product-extractor/internal/service/api/model/response"
	"github.com/labstack/echo/v4"
)

// NewBadRequestError 400 Bad Request 에러를 생성합니다
func NewBadRequestError(message string) error {
	return newHTTPError(http.StatusBadRequest, message)
}

// NewUnsupportedMediaTypeError 415 Unsupported Media Type 에러를 생성합니다
func NewUnsupportedMediaTypeError(message string) error {
	return newHTTPError(http.StatusUnsupportedMediaType, message)
}

// NewTooManyRequestsError 429 Too Many Requests 에러를 생성합니다
func NewTooManyRequestsError(message string) error {
	return newHTTPError(http.StatusTooManyRequests, message)
}

// NewInternalServerError 500 Internal Server Error 에러를 생성합니다
func NewInternalServerError(message string) error {
	return newHTTPError(http.StatusInternalServerError, message)
}

// NewServiceUnavailableError 503 Service Unavailable 에러를 생성합니다
func NewServiceUnavailableError(message string) error {
	return newHTTPError(http.StatusServiceUnavailable, message)
}

func newHTTPError(code int, message string) error {
	return echo.NewHTTPError(code, response.ErrorResponse{
		ResultCode: code,
		Message:    message,
	})
}
