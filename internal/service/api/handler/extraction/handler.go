// Package extraction 상품 추출과 네이버 쿠키 갱신 엔드포인트 핸들러를 제공합니다.
package extraction

import (
	"context"
	"net/http"

	"github.com/darkkaiser/product-extractor/internal/service/api/constants"
	"github.com/darkkaiser/product-extractor/internal/service/api/httputil"
	apisession "github.com/darkkaiser/product-extractor/internal/service/api/model/session"
	"github.com/darkkaiser/product-extractor/internal/service/extract"
	"github.com/darkkaiser/product-extractor/internal/service/extract/model"
	"github.com/darkkaiser/product-extractor/internal/service/extract/session"
	applog "github.com/darkkaiser/product-extractor/pkg/log"
	"github.com/labstack/echo/v4"
)

// refreshReason 수동 갱신 요청임을 Refresher 로그에 남기기 위한 사유입니다.
const refreshReason = "manual"

// Extractor URL 하나에 대한 추출을 수행합니다. (*extract.Pipeline)
type Extractor interface {
	Extract(ctx context.Context, rawURL string) extract.Result
}

// CookieRefresher 네이버 쿠키를 갱신합니다. (*session.Refresher)
type CookieRefresher interface {
	Refresh(ctx context.Context, reason string) (session.Outcome, error)
	Summary() session.Summary
}

// Handler 상품 추출 및 쿠키 갱신 핸들러
type Handler struct {
	extractor Extractor

	// refresher 헤드리스 브라우저가 비활성화되면 nil 입니다.
	refresher CookieRefresher
}

// NewHandler Handler 인스턴스를 생성합니다. refresher 는 nil 일 수 있습니다.
func NewHandler(extractor Extractor, refresher CookieRefresher) *Handler {
	if extractor == nil {
		panic(constants.PanicMsgExtractorRequired)
	}

	return &Handler{
		extractor: extractor,
		refresher: refresher,
	}
}

// ExtractHandler godoc
// @Summary 상품 정보 추출
// @Description 네이버 스마트스토어 또는 쿠팡 상품 URL 에서 상품 정보, 리뷰, Q&A 를 추출합니다.
// @Description
// @Description 응답 본문은 성공과 실패 모두 같은 형식이며, 실패 시 ok 가 false 이고 error 에 사유가 담깁니다.
// @Description debug 에는 시도한 전략과 호출한 엔드포인트, 발생한 오류가 모두 기록됩니다.
// @Description
// @Description 상태 코드:
// @Description - 200: 추출 성공
// @Description - 400: URL 누락, 지원하지 않는 쇼핑몰, 상품 ID 를 찾을 수 없음
// @Description - 502: 모든 추출 전략 실패
// @Description - 504: 대상 사이트 응답 시간 초과
// @Tags Extract
// @Accept json
// @Produce json
// @Param request body model.ExtractionRequest true "추출할 상품 URL"
// @Success 200 {object} model.ExtractionResult "추출 성공"
// @Failure 400 {object} model.ExtractionResult "잘못된 URL"
// @Failure 502 {object} model.ExtractionResult "추출 실패"
// @Failure 504 {object} model.ExtractionResult "시간 초과"
// @Failure 429 {object} response.ErrorResponse "요청 속도 제한 초과"
// @Router /api/extract [post]
func (h *Handler) ExtractHandler(c echo.Context) error {
	var req model.ExtractionRequest
	if err := c.Bind(&req); err != nil {
		return httputil.NewBadRequestError(constants.ErrMsgBadRequestInvalidBody)
	}

	applog.WithComponentAndFields(constants.ComponentHandler, applog.Fields{
		"url":        req.URL,
		"remote_ip":  c.RealIP(),
		"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
	}).Debug(constants.LogMsgExtractRequest)

	res := h.extractor.Extract(c.Request().Context(), req.URL)

	fields := applog.Fields{
		"url":         req.URL,
		"kind":        res.Kind.String(),
		"vendor":      res.Envelope.Vendor,
		"product_id":  res.Envelope.ProductID,
		"cache_hit":   res.Envelope.Debug.CacheHit,
		"duration_ms": res.Envelope.DurationMs,
		"request_id":  c.Response().Header().Get(echo.HeaderXRequestID),
	}
	if res.OK() {
		applog.WithComponentAndFields(constants.ComponentHandler, fields).Info(constants.LogMsgExtractCompleted)
	} else {
		fields["error"] = res.Envelope.Error
		fields["strategy_errors"] = res.Envelope.Debug.Errors
		applog.WithComponentAndFields(constants.ComponentHandler, fields).Warn(constants.LogMsgExtractFailed)
	}

	return c.JSON(res.Kind.HTTPStatus(), res.Envelope)
}

// CookieRefreshHandler godoc
// @Summary 네이버 쿠키 수동 갱신
// @Description 헤드리스 브라우저로 스토어를 방문하여 네이버 쿠키를 즉시 갱신합니다.
// @Description 이미 갱신이 진행 중이면 기다리지 않고 outcome "coalesced" 를 반환합니다.
// @Description 응답에는 쿠키 값이 포함되지 않습니다.
// @Tags Session
// @Produce json
// @Success 200 {object} session.RefreshResponse "갱신 완료 또는 진행 중"
// @Failure 502 {object} session.RefreshResponse "갱신 실패 (기존 쿠키 유지)"
// @Failure 503 {object} response.ErrorResponse "쿠키 갱신 기능 비활성화"
// @Router /api/cookie/refresh [post]
func (h *Handler) CookieRefreshHandler(c echo.Context) error {
	if h.refresher == nil {
		return httputil.NewServiceUnavailableError(constants.ErrMsgCookieRefreshUnavailable)
	}

	applog.WithComponentAndFields(constants.ComponentHandler, applog.Fields{
		"remote_ip":  c.RealIP(),
		"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
	}).Info(constants.LogMsgCookieRefreshStart)

	outcome, err := h.refresher.Refresh(c.Request().Context(), refreshReason)
	summary := h.refresher.Summary()

	res := apisession.RefreshResponse{
		Outcome:             string(outcome),
		HasCookie:           summary.HasCookie,
		ConsecutiveFailures: summary.ConsecutiveFailures,
	}
	if !summary.LastRefreshed.IsZero() {
		lastRefreshed := summary.LastRefreshed
		res.LastRefreshed = &lastRefreshed
	}

	status := http.StatusOK
	if err != nil {
		status = http.StatusBadGateway
		res.Error = constants.ErrMsgCookieRefreshFailed
	}

	applog.WithComponentAndFields(constants.ComponentHandler, applog.Fields{
		"outcome":              outcome,
		"has_cookie":           summary.HasCookie,
		"consecutive_failures": summary.ConsecutiveFailures,
		"error":                err,
	}).Info(constants.LogMsgCookieRefreshDone)

	return c.JSON(status, res)
}
