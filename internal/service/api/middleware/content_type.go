package middleware

import (
	"mime"
	"strings"

	"github.com/darkkaiser/product-extractor/internal/service/api/constants"
	applog "github.com/darkkaiser/product-extractor/pkg/log"
	"github.com/labstack/echo/v4"
)

// RequireJSON 본문이 있는 요청은 Content-Type 이 application/json 이어야 합니다.
// 본문이 없는 요청은 그대로 통과시키며, 이 경우 핸들러가 빈 URL 로 처리합니다.
func RequireJSON() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if req.Body == nil || req.ContentLength == 0 {
				return next(c)
			}

			contentType := req.Header.Get(echo.HeaderContentType)
			mediaType, _, err := mime.ParseMediaType(contentType)
			if err != nil || !strings.EqualFold(mediaType, echo.MIMEApplicationJSON) {
				applog.WithComponentAndFields(constants.ComponentMiddlewareContentType, applog.Fields{
					"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
					"method":     req.Method,
					"path":       req.URL.Path,
					"actual":     contentType,
					"remote_ip":  c.RealIP(),
				}).Warn(constants.LogMsgUnsupportedContentType)

				return ErrUnsupportedMediaType
			}

			return next(c)
		}
	}
}
