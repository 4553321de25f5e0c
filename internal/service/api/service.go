// Package api 상품 추출 HTTP API 서버를 제공합니다.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	_ "github.com/darkkaiser/product-extractor/docs"
	"github.com/darkkaiser/product-extractor/internal/config"
	"github.com/darkkaiser/product-extractor/internal/pkg/version"
	"github.com/darkkaiser/product-extractor/internal/service/contract"
	"github.com/darkkaiser/product-extractor/internal/service/api/constants"
	"github.com/darkkaiser/product-extractor/internal/service/api/handler/extraction"
	"github.com/darkkaiser/product-extractor/internal/service/api/handler/system"
	applog "github.com/darkkaiser/product-extractor/pkg/log"
	"github.com/labstack/echo/v4"
)

// Dependencies API 서비스가 요청을 처리하는 데 사용하는 구성 요소입니다.
type Dependencies struct {
	// Extractor 추출 파이프라인 (필수)
	Extractor extraction.Extractor

	// Refresher 네이버 쿠키 갱신기. 헤드리스 브라우저가 비활성화되면 nil 입니다.
	Refresher extraction.CookieRefresher

	// Session 헬스체크에 노출할 세션 상태
	Session system.SessionSummarizer

	// Browser 헬스체크에 노출할 브라우저 풀 사용 현황 (nil 가능)
	Browser system.BrowserStats

	// Cache 헬스체크에 노출할 캐시 백엔드
	Cache system.CacheDescriber

	// Metrics GET /metrics 핸들러 (nil 가능)
	Metrics http.Handler
}

// Service 상품 추출 API 서버의 생명주기를 관리하는 서비스입니다.
//
// Start 로 시작하면 별도의 고루틴에서 HTTP 서버를 구동하고,
// serviceStopCtx 가 취소되면 Graceful Shutdown 후 serviceStopWG 에 완료를 알립니다.
type Service struct {
	appConfig *config.AppConfig

	deps Dependencies

	buildInfo version.Info

	running   bool
	runningMu sync.Mutex
}

var _ contract.Service = (*Service)(nil)

// NewService Service 인스턴스를 생성합니다.
func NewService(appConfig *config.AppConfig, deps Dependencies, buildInfo version.Info) *Service {
	if appConfig == nil {
		panic(constants.PanicMsgAppConfigRequired)
	}

	return &Service{
		appConfig: appConfig,

		deps: deps,

		buildInfo: buildInfo,
	}
}

// Start API 서비스를 시작합니다.
//
// 이 함수는 즉시 반환되며, 실제 서버는 고루틴에서 실행됩니다.
// 추출 파이프라인이 없으면 에러를 반환하며, 이 경우에도 serviceStopWG.Done() 을 호출합니다.
func (s *Service) Start(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) error {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	applog.WithComponent(constants.ComponentService).Info(constants.LogMsgServiceStarting)

	if s.deps.Extractor == nil {
		defer serviceStopWG.Done()
		return ErrExtractorNotInitialized
	}

	if s.running {
		defer serviceStopWG.Done()
		applog.WithComponent(constants.ComponentService).Warn(constants.LogMsgServiceAlreadyStarted)
		return nil
	}

	s.running = true

	go s.runServiceLoop(serviceStopCtx, serviceStopWG)

	applog.WithComponent(constants.ComponentService).Info(constants.LogMsgServiceStarted)

	return nil
}

func (s *Service) runServiceLoop(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) {
	defer serviceStopWG.Done()

	e := s.setupServer()

	httpServerDone := make(chan struct{})
	go s.startHTTPServer(e, httpServerDone)

	s.waitForShutdown(serviceStopCtx, e, httpServerDone)
}

// setupServer 핸들러를 만들고 Echo 서버에 미들웨어와 라우트를 등록합니다.
func (s *Service) setupServer() *echo.Echo {
	cfg := s.appConfig.HTTPServer

	systemHandler := system.NewHandler(system.Dependencies{
		Port:    cfg.ListenPort,
		Session: s.deps.Session,
		Browser: s.deps.Browser,
		Cache:   s.deps.Cache,
	}, s.buildInfo)
	extractionHandler := extraction.NewHandler(s.deps.Extractor, s.deps.Refresher)

	e := NewHTTPServer(HTTPServerConfig{
		Debug:          s.appConfig.Debug,
		AllowOrigins:   cfg.AllowOrigins,
		RequestTimeout: cfg.RequestTimeout,
	})

	rateLimitPerSecond, rateLimitBurst := cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst
	if rateLimitPerSecond <= 0 {
		rateLimitPerSecond = constants.DefaultRateLimitPerSecond
	}
	if rateLimitBurst <= 0 {
		rateLimitBurst = constants.DefaultRateLimitBurst
	}

	RegisterRoutes(e, RouteConfig{
		RateLimitPerSecond: rateLimitPerSecond,
		RateLimitBurst:     rateLimitBurst,
		StaticDir:          cfg.StaticDir,
		Metrics:            s.deps.Metrics,
	}, systemHandler, extractionHandler)

	return e
}

// startHTTPServer 서버가 종료될 때까지 블로킹되며, 종료되면 done 채널을 닫습니다.
func (s *Service) startHTTPServer(e *echo.Echo, done chan struct{}) {
	defer close(done)

	port := s.appConfig.HTTPServer.ListenPort
	applog.WithComponentAndFields(constants.ComponentService, applog.Fields{
		"port": port,
	}).Info(constants.LogMsgServiceHTTPServerStarting)

	s.handleServerError(e.Start(fmt.Sprintf(":%d", port)))
}

// handleServerError Graceful Shutdown(http.ErrServerClosed)이 아닌 종료는 에러로 기록합니다.
func (s *Service) handleServerError(err error) {
	if err == nil {
		return
	}

	if errors.Is(err, http.ErrServerClosed) {
		applog.WithComponent(constants.ComponentService).Info(constants.LogMsgServiceHTTPServerStopped)
		return
	}

	applog.WithComponentAndFields(constants.ComponentService, applog.Fields{
		"port":  s.appConfig.HTTPServer.ListenPort,
		"error": err,
	}).Error(constants.LogMsgServiceHTTPServerFatalError)
}

// waitForShutdown 종료 신호를 기다린 뒤 Graceful Shutdown 을 수행합니다.
// 서버가 먼저 종료되면(포트 바인딩 실패 등) Shutdown 없이 상태만 정리합니다.
func (s *Service) waitForShutdown(serviceStopCtx context.Context, e *echo.Echo, httpServerDone chan struct{}) {
	select {
	case <-serviceStopCtx.Done():
		applog.WithComponent(constants.ComponentService).Info(constants.LogMsgServiceStopping)
	case <-httpServerDone:
		applog.WithComponent(constants.ComponentService).Error(constants.LogMsgServiceUnexpectedExit)
		s.cleanup()
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		applog.WithComponentAndFields(constants.ComponentService, applog.Fields{
			"error": err,
		}).Error(constants.LogMsgServiceHTTPServerShutdownError)
	}

	<-httpServerDone

	s.cleanup()
}

func (s *Service) cleanup() {
	s.runningMu.Lock()
	s.running = false
	s.runningMu.Unlock()

	applog.WithComponent(constants.ComponentService).Info(constants.LogMsgServiceStopped)
}
