// Package system 시스템 엔드포인트 핸들러를 제공합니다.
//
// 헬스체크, 버전 정보 등 서비스 상태를 확인하는 API 를 처리합니다.
package system

import (
	"net/http"
	"runtime"
	"time"

	"github.com/darkkaiser/product-extractor/internal/pkg/version"
	"github.com/darkkaiser/product-extractor/internal/service/api/constants"
	"github.com/darkkaiser/product-extractor/internal/service/api/model/system"
	"github.com/darkkaiser/product-extractor/internal/service/extract/browser"
	"github.com/darkkaiser/product-extractor/internal/service/extract/model"
	"github.com/darkkaiser/product-extractor/internal/service/extract/session"
	applog "github.com/darkkaiser/product-extractor/pkg/log"
	"github.com/labstack/echo/v4"
)

// SessionSummarizer 네이버 세션 상태를 제공합니다. (*session.Refresher, *session.Store)
type SessionSummarizer interface {
	Summary() session.Summary
}

// BrowserStats 헤드리스 브라우저 풀 사용 현황을 제공합니다. (*browser.Pool)
type BrowserStats interface {
	Stats() browser.Stats
}

// CacheDescriber 추출 결과 캐시 백엔드 이름을 제공합니다. (*extract.Pipeline)
type CacheDescriber interface {
	CacheBackend() string
}

// Dependencies 헬스체크가 상태를 조회하는 대상입니다. Browser 는 nil 일 수 있습니다.
type Dependencies struct {
	Port    int
	Session SessionSummarizer
	Browser BrowserStats
	Cache   CacheDescriber
}

// Handler 시스템 엔드포인트 핸들러 (헬스체크, 버전 정보)
type Handler struct {
	deps Dependencies

	buildInfo version.Info

	serverStartTime time.Time
	now             func() time.Time
}

// NewHandler Handler 인스턴스를 생성합니다.
func NewHandler(deps Dependencies, buildInfo version.Info) *Handler {
	return &Handler{
		deps: deps,

		buildInfo: buildInfo,

		serverStartTime: time.Now(),
		now:             time.Now,
	}
}

// HealthCheckHandler godoc
// @Summary 서버 헬스체크
// @Description 서버가 응답 가능한지 확인합니다. 프로세스가 살아있으면 항상 200 과 status "ok" 를 반환합니다.
// @Description
// @Description 응답 필드:
// @Description - cookie: 네이버 세션 상태 (쿠키 값은 포함하지 않음)
// @Description - browser: 헤드리스 브라우저 풀 사용 현황 (비활성화 시 생략)
// @Description - cache: 추출 결과 캐시 백엔드
// @Tags System
// @Produce json
// @Success 200 {object} system.HealthResponse "헬스체크 결과"
// @Router /api/health [get]
func (h *Handler) HealthCheckHandler(c echo.Context) error {
	applog.WithComponentAndFields(constants.ComponentHandler, applog.Fields{
		"endpoint":  "/api/health",
		"method":    c.Request().Method,
		"remote_ip": c.RealIP(),
	}).Debug(constants.LogMsgHealthCheck)

	now := h.now()

	vendors := make([]string, 0, len(model.SupportedVendors))
	for _, v := range model.SupportedVendors {
		vendors = append(vendors, v.String())
	}

	res := system.HealthResponse{
		Status:    constants.HealthStatusOK,
		Timestamp: now,
		Uptime:    int64(now.Sub(h.serverStartTime).Seconds()),
		Port:      h.deps.Port,
		Vendor:    vendors,
	}

	if h.deps.Session != nil {
		summary := h.deps.Session.Summary()
		res.Cookie = system.CookieStatus{
			HasCookie:  summary.HasCookie,
			Refreshing: summary.Refreshing,
		}
		if !summary.LastRefreshed.IsZero() {
			lastRefreshed := summary.LastRefreshed
			res.Cookie.LastRefreshed = &lastRefreshed
		}
	}

	if h.deps.Browser != nil {
		stats := h.deps.Browser.Stats()
		res.Browser = &system.BrowserStatus{
			Engine:   stats.Engine,
			InUse:    stats.InUse,
			Capacity: stats.Capacity,
		}
	}

	if h.deps.Cache != nil {
		res.Cache.Backend = h.deps.Cache.CacheBackend()
	}

	return c.JSON(http.StatusOK, res)
}

// VersionHandler godoc
// @Summary 서버 버전 정보
// @Description 서버의 버전, Git 커밋 해시, 빌드 날짜, 빌드 번호, Go 버전, 플랫폼을 반환합니다.
// @Tags System
// @Produce json
// @Success 200 {object} system.VersionResponse "버전 정보"
// @Router /version [get]
func (h *Handler) VersionHandler(c echo.Context) error {
	applog.WithComponentAndFields(constants.ComponentHandler, applog.Fields{
		"endpoint":  "/version",
		"method":    c.Request().Method,
		"remote_ip": c.RealIP(),
	}).Debug(constants.LogMsgVersionInfo)

	bi := h.buildInfo
	if bi.GoVersion == "" {
		bi.GoVersion = runtime.Version()
	}
	if bi.OS == "" || bi.Arch == "" {
		bi.OS, bi.Arch = runtime.GOOS, runtime.GOARCH
	}

	return c.JSON(http.StatusOK, system.VersionResponse{
		Version:     bi.Version,
		Commit:      bi.Commit,
		BuildDate:   bi.BuildDate,
		BuildNumber: bi.BuildNumber,
		GoVersion:   bi.GoVersion,
		Platform:    bi.OS + "/" + bi.Arch,
		Dirty:       bi.DirtyBuild,
	})
}
