package middleware

import (
	"net/http"
	"runtime"

	"github.com/darkkaiser/product-extractor/internal/service/api/constants"
	applog "github.com/darkkaiser/product-extractor/pkg/log"
	"github.com/labstack/echo/v4"
)

// stackBufferSize panic 발생 시 스택 트레이스를 저장할 버퍼 크기 (4KB)
const stackBufferSize = 4 << 10

// PanicRecovery 핸들러에서 발생한 panic 을 복구하고 스택 트레이스와 함께 기록한 뒤
// 에러 핸들러로 넘깁니다.
//
// 추출 파이프라인은 자체적으로 패닉을 결과 봉투로 바꾸므로, 이 미들웨어는
// 그 바깥(바인딩, 응답 직렬화, 라우팅)에서 생긴 패닉을 위한 최후의 방어선입니다.
func PanicRecovery() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (returnErr error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				// 클라이언트 연결 중단 신호는 net/http 서버가 처리하도록 다시 던집니다.
				if r == http.ErrAbortHandler {
					panic(r)
				}

				err := NewErrPanicRecovered(r)

				stack := make([]byte, stackBufferSize)
				length := runtime.Stack(stack, false)

				fields := applog.Fields{
					"error":  err,
					"stack":  string(stack[:length]),
					"path":   c.Request().URL.Path,
					"method": c.Request().Method,
				}
				if requestID := c.Response().Header().Get(echo.HeaderXRequestID); requestID != "" {
					fields["request_id"] = requestID
				}

				applog.WithComponentAndFields(constants.ComponentMiddlewarePanicRecovery, fields).Error(constants.LogMsgPanicRecovered)

				c.Error(err)
				returnErr = nil
			}()

			return next(c)
		}
	}
}
