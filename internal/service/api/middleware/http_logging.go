package middleware

import (
	"net/url"
	"strconv"
	"time"

	"github.com/darkkaiser/product-extractor/internal/service/api/constants"
	applog "github.com/darkkaiser/product-extractor/pkg/log"
	"github.com/labstack/echo/v4"
)

// sensitiveQueryParams 로그에 남길 때 값을 가려야 하는 쿼리 파라미터 목록입니다.
var sensitiveQueryParams = []string{
	"cookie",
	"token",
	"access_key",
	"secret_key",
	"signature",
}

// HTTPLogger 요청/응답을 구조화된 로그로 기록하는 미들웨어를 반환합니다.
// 핸들러 에러는 여기서 에러 핸들러로 넘겨 최종 상태 코드가 로그에 남도록 합니다.
func HTTPLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			res := c.Response()
			start := time.Now()

			defer func() {
				latency := time.Since(start)

				path := req.URL.Path
				if path == "" {
					path = "/"
				}

				bytesIn := req.Header.Get(echo.HeaderContentLength)
				if bytesIn == "" {
					bytesIn = "0"
				}

				applog.WithComponentAndFields(constants.ComponentMiddlewareHTTPLogger, applog.Fields{
					"method":     req.Method,
					"path":       path,
					"uri":        maskSensitiveQueryParams(req.RequestURI),
					"host":       req.Host,
					"protocol":   req.Proto,
					"remote_ip":  c.RealIP(),
					"user_agent": req.UserAgent(),
					"referer":    req.Referer(),
					"status":     res.Status,
					"bytes_in":   bytesIn,
					"bytes_out":  strconv.FormatInt(res.Size, 10),
					"latency_us": latency.Microseconds(),
					"latency":    latency.String(),
					"request_id": res.Header().Get(echo.HeaderXRequestID),
				}).Info(constants.LogMsgHTTPRequest)
			}()

			if err := next(c); err != nil {
				c.Error(err)
			}
			return nil
		}
	}
}

// maskSensitiveQueryParams URI 의 민감한 쿼리 파라미터 값을 마스킹합니다.
// 파싱에 실패하면 원본을 그대로 반환합니다.
func maskSensitiveQueryParams(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return uri
	}

	q := u.Query()
	masked := false
	for _, param := range sensitiveQueryParams {
		if q.Has(param) {
			q.Set(param, applog.MaskSensitiveData(q.Get(param)))
			masked = true
		}
	}
	if !masked {
		return uri
	}

	u.RawQuery = q.Encode()
	return u.String()
}
