package api

import (
	"net/http"
	"time"

	"github.com/darkkaiser/product-extractor/internal/service/api/constants"
	"github.com/darkkaiser/product-extractor/internal/service/api/httputil"
	appmiddleware "github.com/darkkaiser/product-extractor/internal/service/api/middleware"
	applog "github.com/darkkaiser/product-extractor/pkg/log"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// HTTPServerConfig HTTP 서버 생성에 필요한 설정을 정의합니다.
type HTTPServerConfig struct {
	// Debug Echo 프레임워크의 디버그 모드 활성화 여부
	Debug bool

	// AllowOrigins CORS 에서 허용할 Origin 목록
	AllowOrigins []string

	// RequestTimeout 요청 하나의 최대 처리 시간 (0: 기본값 90초)
	// 시간이 지나면 요청 컨텍스트가 취소되고, 추출 파이프라인은 504 결과를 반환합니다.
	RequestTimeout time.Duration
}

// NewHTTPServer 공통 미들웨어를 적용한 Echo 인스턴스를 생성합니다.
//
// 미들웨어 적용 순서:
//  1. PanicRecovery: 다른 미들웨어의 패닉까지 복구하도록 가장 먼저 적용
//  2. RequestID: 이후 로그에 request_id 가 남도록 로깅보다 먼저 적용
//  3. Server 헤더 제거
//  4. HTTPLogger: 429, 413 등 미들웨어가 거부한 요청도 기록
//  5. BodyLimit
//  6. ContextTimeout: 요청 컨텍스트에 마감 시간 설정
//  7. CORS
//  8. Secure: 보안 헤더
//
// IP 별 속도 제한은 비용이 큰 라우트에만 적용하므로 여기에 포함하지 않습니다. (RegisterRoutes 참고)
// 라우트는 반환된 Echo 인스턴스에 별도로 등록해야 합니다.
func NewHTTPServer(cfg HTTPServerConfig) *echo.Echo {
	e := echo.New()

	e.Debug = cfg.Debug
	e.HideBanner = true
	e.HidePort = true

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = constants.DefaultRequestTimeout
	}

	e.Server.ReadTimeout = constants.DefaultReadTimeout
	e.Server.ReadHeaderTimeout = constants.DefaultReadHeaderTimeout
	e.Server.WriteTimeout = timeout + constants.DefaultWriteTimeoutMargin
	e.Server.IdleTimeout = constants.DefaultIdleTimeout

	e.Logger = appmiddleware.Logger{Logger: applog.StandardLogger()}
	e.HTTPErrorHandler = httputil.ErrorHandler

	e.Use(appmiddleware.PanicRecovery())
	e.Use(middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Response().Header().Set(echo.HeaderServer, "")
			return next(c)
		}
	})
	e.Use(appmiddleware.HTTPLogger())
	e.Use(middleware.BodyLimit(constants.DefaultMaxBodySize))
	e.Use(middleware.ContextTimeoutWithConfig(middleware.ContextTimeoutConfig{
		Timeout: timeout,
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
	}))
	e.Use(middleware.Secure())

	return e
}
