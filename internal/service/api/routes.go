package api

import (
	"net/http"
	"strings"

	"github.com/darkkaiser/product-extractor/internal/service/api/handler/extraction"
	"github.com/darkkaiser/product-extractor/internal/service/api/handler/system"
	appmiddleware "github.com/darkkaiser/product-extractor/internal/service/api/middleware"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// RouteConfig 라우트 등록에 필요한 설정입니다.
type RouteConfig struct {
	// RateLimitPerSecond, RateLimitBurst 추출/쿠키 갱신 라우트의 IP 별 속도 제한
	RateLimitPerSecond int
	RateLimitBurst     int

	// StaticDir 프론트엔드 빌드 결과물 경로. 비어있으면 정적 파일을 제공하지 않습니다.
	StaticDir string

	// Metrics GET /metrics 핸들러. nil 이면 등록하지 않습니다.
	Metrics http.Handler
}

// RegisterRoutes API 서비스의 모든 라우트를 등록합니다.
//
//   - 시스템: GET /api/health, GET /version
//   - 추출: POST /api/extract, POST /api/cookie/refresh (속도 제한)
//   - 운영: GET /metrics, GET /swagger/*
//   - 프론트엔드: 그 외 경로는 StaticDir 의 파일, 없으면 index.html (SPA 라우팅)
func RegisterRoutes(e *echo.Echo, cfg RouteConfig, systemHandler *system.Handler, extractionHandler *extraction.Handler) {
	registerSystemRoutes(e, systemHandler)
	registerExtractionRoutes(e, cfg, extractionHandler)
	registerOperationRoutes(e, cfg)
	registerFrontend(e, cfg.StaticDir)
}

func registerSystemRoutes(e *echo.Echo, h *system.Handler) {
	e.GET("/api/health", h.HealthCheckHandler)
	e.GET("/version", h.VersionHandler)
}

func registerExtractionRoutes(e *echo.Echo, cfg RouteConfig, h *extraction.Handler) {
	limited := e.Group("/api", appmiddleware.RateLimit(cfg.RateLimitPerSecond, cfg.RateLimitBurst))

	limited.POST("/extract", h.ExtractHandler, appmiddleware.RequireJSON())
	limited.POST("/cookie/refresh", h.CookieRefreshHandler)
}

func registerOperationRoutes(e *echo.Echo, cfg RouteConfig) {
	if cfg.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(cfg.Metrics))
	}

	e.GET("/swagger/*", echoSwagger.EchoWrapHandler(
		echoSwagger.URL("/swagger/doc.json"),
		echoSwagger.DeepLinking(true),
		echoSwagger.DocExpansion("list"),
	))
}

// registerFrontend 등록된 라우트에 해당하지 않는 GET 요청에 정적 파일을 제공합니다.
// 파일이 없는 경로는 index.html 로 응답하여 클라이언트 측 라우팅이 동작하도록 합니다.
func registerFrontend(e *echo.Echo, staticDir string) {
	if staticDir == "" {
		return
	}

	e.Use(middleware.StaticWithConfig(middleware.StaticConfig{
		Root:  staticDir,
		Index: "index.html",
		HTML5: true,
		Skipper: func(c echo.Context) bool {
			path := c.Request().URL.Path
			return strings.HasPrefix(path, "/api/") ||
				strings.HasPrefix(path, "/swagger/") ||
				path == "/metrics" ||
				path == "/version"
		},
	}))
}
