// Package resolver 네이버 내부 API 호출에 필요한 channelId 를 여러 방법으로 순서대로 찾습니다.
//
//  1. 상품 내부 JSON API 응답에서 알려진 키 경로 탐색
//  2. 상품 페이지 HTML 의 인라인 스크립트와 meta content 정규식 탐색
//  3. 원본 URL 의 경로/쿼리 정규식 탐색
//
// 세 방법이 모두 실패하고 그중 하나라도 인증 계열 상태 코드(401/403/429)를 받았다면
// 쿠키를 한 번 갱신한 뒤 1~3 을 한 번 더 시도합니다.
package resolver

import (
	"context"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/darkkaiser/product-extractor/internal/service/extract/fetcher"
	"github.com/darkkaiser/product-extractor/internal/service/extract/model"
	"github.com/darkkaiser/product-extractor/internal/service/extract/scraper"
	"github.com/darkkaiser/product-extractor/internal/service/extract/session"
	applog "github.com/darkkaiser/product-extractor/pkg/log"
)

const component = "extract.resolver"

// 시도 방법 이름 (debug.attempts 에 기록)
const (
	MethodAPI  = "api"
	MethodHTML = "html"
	MethodURL  = "url"
)

// DefaultAPIBaseURL 네이버 스마트스토어 내부 API 주소
const DefaultAPIBaseURL = "https://smartstore.naver.com"

// channelKeyPaths 상품 API 응답에서 channelId 를 찾을 gjson 경로 (우선순위 순)
var channelKeyPaths = []string{
	"channel.id",
	"channelId",
	"channel.channelId",
	"product.channelId",
	"channel.channelUid",
	"channelUid",
	"product.channel.channelUid",
	"mallId",
	"channel.channelNo",
	"channelNo",
}

// htmlPatterns 인라인 스크립트와 meta content 에서 channelId 를 찾는 정규식 (첫 번째 그룹이 값)
var htmlPatterns = []*regexp.Regexp{
	regexp.MustCompile(`"channelUid"\s*:\s*"([^"]+)"`),
	regexp.MustCompile(`"channelId"\s*:\s*"([^"]+)"`),
	regexp.MustCompile(`"channelNo"\s*:\s*"?(\d+)"?`),
	regexp.MustCompile(`channels/([A-Za-z0-9_-]+)`),
}

// urlPatterns 원본 URL 에서 channelId 를 찾는 정규식
var urlPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/channels/([A-Za-z0-9_-]+)`),
	regexp.MustCompile(`[?&]channel(?:Id|Uid|No)=([A-Za-z0-9_-]+)`),
}

// Refresher 인증 실패 시 쿠키를 갱신합니다.
type Refresher interface {
	Refresh(ctx context.Context, reason string) (session.Outcome, error)
}

// Config Resolver 설정입니다.
type Config struct {
	// APIBaseURL 내부 API 주소. 비어있으면 DefaultAPIBaseURL 을 사용합니다.
	APIBaseURL string

	// Headers 내부 API 요청에 붙일 헤더 (accept, x-client-version 등)
	Headers http.Header
}

// Resolver channelId 조회기입니다.
type Resolver struct {
	scraper   *scraper.Scraper
	refresher Refresher
	cfg       Config
}

// New 새로운 Resolver 를 생성합니다. refresher 가 nil 이면 인증 실패 시 재시도하지 않습니다.
func New(s *scraper.Scraper, refresher Refresher, cfg Config) *Resolver {
	if s == nil {
		panic("resolver: scraper 는 nil 일 수 없습니다")
	}
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = DefaultAPIBaseURL
	}
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")

	return &Resolver{scraper: s, refresher: refresher, cfg: cfg}
}

// ProductLookupURL channelId 를 포함하는 상품 내부 API 주소입니다.
func (r *Resolver) ProductLookupURL(productID string) string {
	return r.cfg.APIBaseURL + "/i/v1/products/" + url.PathEscape(productID)
}

// ResolveChannelID productURL 과 productID 로 channelId 를 찾습니다.
// 모든 시도는 trace 에 기록되며, 끝내 찾지 못하면 NotFound 에러를 반환합니다.
func (r *Resolver) ResolveChannelID(ctx context.Context, productURL, productID string, trace *model.Trace) (string, error) {
	channelID, authFailed := r.cascade(ctx, productURL, productID, trace)
	if channelID != "" {
		return channelID, nil
	}

	if authFailed && r.refresher != nil && ctx.Err() == nil {
		trace.Step("channelId 조회 중 인증 오류 감지: 쿠키 갱신 후 재시도")

		outcome, err := r.refresher.Refresh(ctx, "auth")
		if err != nil {
			trace.Error("session.refresh", err)
		}
		trace.Step("쿠키 갱신 결과: %s", outcome)

		if channelID, _ = r.cascade(ctx, productURL, productID, trace); channelID != "" {
			return channelID, nil
		}
	}

	return "", newErrChannelIDNotFound(productID)
}

// cascade 세 가지 방법을 순서대로 한 번 시도합니다. 두 번째 반환값은 인증 계열 실패가 있었는지 여부입니다.
func (r *Resolver) cascade(ctx context.Context, productURL, productID string, trace *model.Trace) (string, bool) {
	authFailed := false

	steps := []struct {
		method string
		run    func() (string, int, error)
	}{
		{MethodAPI, func() (string, int, error) { return r.fromAPI(ctx, productURL, productID) }},
		{MethodHTML, func() (string, int, error) { return r.fromHTML(ctx, productURL) }},
		{MethodURL, func() (string, int, error) { return FromURL(productURL), 0, nil }},
	}

	for _, step := range steps {
		if ctx.Err() != nil {
			break
		}

		channelID, status, err := step.run()

		attempt := model.Attempt{Method: step.method, Status: status, Found: channelID != ""}
		if err != nil {
			attempt.Error = err.Error()
		}
		trace.Attempt(attempt)

		if fetcher.IsAuthStatus(status) {
			authFailed = true
		}
		if channelID != "" {
			applog.WithComponentAndFields(component, applog.Fields{
				"method":     step.method,
				"product_id": productID,
				"channel_id": channelID,
			}).Debug("channelId 조회 성공")
			return channelID, authFailed
		}
	}

	return "", authFailed
}

func (r *Resolver) fromAPI(ctx context.Context, productURL, productID string) (string, int, error) {
	resp, err := r.scraper.FetchJSON(ctx, r.ProductLookupURL(productID), r.headers(productURL))
	if err != nil {
		return "", fetcher.StatusCode(err), err
	}
	return FromJSON(resp), resp.Status, nil
}

func (r *Resolver) fromHTML(ctx context.Context, productURL string) (string, int, error) {
	page, err := r.scraper.FetchHTML(ctx, productURL, r.headers(productURL))
	if err != nil {
		return "", fetcher.StatusCode(err), err
	}
	return FromHTML(page.Doc), page.Status, nil
}

func (r *Resolver) headers(referer string) http.Header {
	h := r.cfg.Headers.Clone()
	if h == nil {
		h = http.Header{}
	}
	h.Set("Referer", referer)
	return h
}

// FromJSON 알려진 키 경로 중 처음으로 비어있지 않은 문자열/숫자 값을 반환합니다.
func FromJSON(resp *scraper.JSONResponse) string {
	if resp == nil {
		return ""
	}
	for _, path := range channelKeyPaths {
		if v := strings.TrimSpace(resp.Result.Get(path).String()); v != "" {
			return v
		}
	}
	return ""
}

// FromHTML 모든 인라인 <script> 본문과 <meta content> 값을 정규식으로 탐색합니다.
func FromHTML(doc *goquery.Document) string {
	if doc == nil {
		return ""
	}

	var candidates []string
	doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		if _, external := s.Attr("src"); !external {
			candidates = append(candidates, s.Text())
		}
	})
	doc.Find("meta[content]").Each(func(_ int, s *goquery.Selection) {
		candidates = append(candidates, s.AttrOr("content", ""))
	})

	for _, re := range htmlPatterns {
		for _, text := range candidates {
			if m := re.FindStringSubmatch(text); m != nil && m[1] != "" {
				return m[1]
			}
		}
	}
	return ""
}

// FromURL 원본 URL 의 경로/쿼리에서 channelId 를 찾습니다.
func FromURL(rawURL string) string {
	for _, re := range urlPatterns {
		if m := re.FindStringSubmatch(rawURL); m != nil {
			return m[1]
		}
	}
	return ""
}
