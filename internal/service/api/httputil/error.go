package httputil

import (
	"errors"
	"net/http"

	"github.com/darkkaiser/product-extractor/internal/service/api/constants"
	"github.com/darkkaiser/product-extractor/internal/service/api/model/response"
	applog "github.com/darkkaiser/product-extractor/pkg/log"
	"github.com/labstack/echo/v4"
)

// ErrorHandler Echo 프레임워크의 전역 에러 핸들러입니다.
//
// 핸들러가 반환한 에러를 표준 ErrorResponse JSON 형식으로 변환합니다.
// 추출 실패는 핸들러가 추출 결과 본문으로 직접 응답하므로 여기까지 오지 않습니다.
func ErrorHandler(err error, c echo.Context) {
	code := http.StatusInternalServerError
	message := constants.ErrMsgInternalServer

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		switch m := he.Message.(type) {
		case string:
			message = m
		case response.ErrorResponse:
			message = m.Message
		}

		switch {
		case code == http.StatusNotFound && message == http.StatusText(http.StatusNotFound):
			message = constants.ErrMsgNotFound
		case code == http.StatusRequestEntityTooLarge:
			message = constants.ErrMsgRequestEntityTooLarge
		}
	}

	fields := applog.Fields{
		"path":        c.Request().URL.Path,
		"method":      c.Request().Method,
		"status_code": code,
		"error":       err,
		"remote_ip":   c.RealIP(),
		"request_id":  c.Response().Header().Get(echo.HeaderXRequestID),
	}

	if code >= http.StatusInternalServerError {
		applog.WithComponentAndFields(constants.ComponentErrorHandler, fields).Error(constants.LogMsgHTTP5xxServerError)
	} else if code >= http.StatusBadRequest {
		applog.WithComponentAndFields(constants.ComponentErrorHandler, fields).Warn(constants.LogMsgHTTP4xxClientError)
	}

	// 이미 응답이 전송된 경우 추가 응답을 보내지 않습니다.
	if c.Response().Committed {
		return
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}

	_ = c.JSON(code, response.ErrorResponse{
		ResultCode: code,
		Message:    message,
	})
}
