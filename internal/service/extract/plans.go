package extract

import (
	"net/http"

	"github.com/darkkaiser/product-extractor/internal/config"
	"github.com/darkkaiser/product-extractor/internal/service/extract/browser"
	"github.com/darkkaiser/product-extractor/internal/service/extract/fetcher"
	"github.com/darkkaiser/product-extractor/internal/service/extract/model"
	"github.com/darkkaiser/product-extractor/internal/service/extract/provider/coupang"
	"github.com/darkkaiser/product-extractor/internal/service/extract/provider/naver"
	"github.com/darkkaiser/product-extractor/internal/service/extract/resolver"
	"github.com/darkkaiser/product-extractor/internal/service/extract/scraper"
	"github.com/darkkaiser/product-extractor/internal/service/extract/session"
	"github.com/darkkaiser/product-extractor/internal/service/extract/strategy"
)

// Deps 쇼핑몰별 Plan 을 구성하는 데 필요한 의존성입니다.
type Deps struct {
	Config *config.AppConfig

	Browser browser.Browser
	Session *session.Store

	// Refresher 가 nil 이면 인증 오류가 나도 쿠키를 갱신하지 않습니다.
	Refresher *session.Refresher

	// Dumper 가 nil 이면 디버그 덤프를 남기지 않습니다.
	Dumper strategy.Dumper

	// Transport 테스트용 RoundTripper (nil: http.DefaultTransport)
	Transport http.RoundTripper

	// 테스트에서 내부 API 주소를 바꿀 때 사용합니다. 비어있으면 각 쇼핑몰의 기본 주소입니다.
	NaverAPIBaseURL string
}

// NewPlans 설정에 따라 네이버와 쿠팡의 추출 Plan 을 만듭니다.
//
// 전략 순서는 내장 JSON, 내부(공식) API, 헤드리스 브라우저, 정적 HTML 입니다.
func NewPlans(d Deps) map[model.Vendor]Plan {
	return map[model.Vendor]Plan{
		model.VendorNaver:   naverPlan(d),
		model.VendorCoupang: coupangPlan(d),
	}
}

func naverPlan(d Deps) Plan {
	cfg := d.Config

	headerCfg := naver.HeaderConfig{
		Accept:         cfg.Naver.Accept,
		AcceptLanguage: cfg.Naver.AcceptLanguage,
		ClientVersion:  cfg.Naver.ClientVersion,
	}

	var src fetcher.SessionSource
	if d.Session != nil {
		src = d.Session
	}
	s := scraper.New(fetcher.New(fetcher.Config{
		Timeout:   cfg.Extractor.StrategyTimeout,
		Session:   src,
		Transport: d.Transport,
	}))

	// nil *Refresher 를 인터페이스에 담으면 nil 검사를 통과하므로 명시적으로 나눕니다.
	var resolverRefresher resolver.Refresher
	var apiRefresher naver.Refresher
	if d.Refresher != nil {
		resolverRefresher = d.Refresher
		apiRefresher = d.Refresher
	}

	apiHeaders := naver.APIHeaders(headerCfg)
	pageHeaders := naver.PageHeaders(headerCfg)

	table := naver.Table().WithLimits(cfg.Extractor.ImageLimit, cfg.Extractor.ReviewLimit, cfg.Extractor.QALimit)

	stateProfile := naver.StateProfile()
	stateProfile.ImageLimit = cfg.Extractor.ImageLimit

	pageOptions := func() browser.PageOptions {
		opts := basePageOptions(cfg)
		if d.Session != nil {
			current := d.Session.Load()
			if current.UserAgent != "" {
				opts.UserAgent = current.UserAgent
			}
			opts.Cookies = browser.ParseCookieString(current.Cookie, session.CookieDomain)
		}
		return opts
	}

	strategies := []strategy.Strategy{
		strategy.NewEmbeddedJSON(s, stateProfile, pageHeaders),
		naver.NewAPI(s, apiRefresher, d.Dumper, naver.APIConfig{
			BaseURL:     d.NaverAPIBaseURL,
			Headers:     apiHeaders,
			ReviewLimit: cfg.Extractor.ReviewLimit,
			QALimit:     cfg.Extractor.QALimit,
			ImageLimit:  cfg.Extractor.ImageLimit,
		}),
	}
	if d.Browser != nil {
		strategies = append(strategies, strategy.NewHeadless(d.Browser, table, pageOptions, d.Dumper, headlessConfig(cfg)))
	}
	strategies = append(strategies, strategy.NewStaticHTML(s, table, pageHeaders))

	return Plan{
		Resolver: resolver.New(s, resolverRefresher, resolver.Config{
			APIBaseURL: d.NaverAPIBaseURL,
			Headers:    apiHeaders,
		}),
		Strategies: strategies,
	}
}

func coupangPlan(d Deps) Plan {
	cfg := d.Config

	defaults := http.Header{}
	defaults.Set("User-Agent", cfg.Browser.UserAgent)

	s := scraper.New(fetcher.New(fetcher.Config{
		Timeout:   cfg.Extractor.StrategyTimeout,
		Headers:   defaults,
		Transport: d.Transport,
	}))

	pageHeaders := coupang.PageHeaders(coupangAcceptLanguage(cfg))
	table := coupang.Table().WithLimits(cfg.Extractor.ImageLimit, cfg.Extractor.ReviewLimit, cfg.Extractor.QALimit)

	stateProfile := coupang.StateProfile()
	stateProfile.ImageLimit = cfg.Extractor.ImageLimit

	strategies := []strategy.Strategy{
		strategy.NewEmbeddedJSON(s, stateProfile, pageHeaders),
		coupang.NewAPI(s, coupang.NewSigner(cfg.Coupang.AccessKey, cfg.Coupang.SecretKey), d.Dumper, coupang.APIConfig{
			BaseURL:    cfg.Coupang.APIBaseURL,
			ImageLimit: cfg.Extractor.ImageLimit,
		}),
	}
	if d.Browser != nil {
		strategies = append(strategies, strategy.NewHeadless(d.Browser, table, func() browser.PageOptions {
			return basePageOptions(cfg)
		}, d.Dumper, headlessConfig(cfg)))
	}
	strategies = append(strategies, strategy.NewStaticHTML(s, table, pageHeaders))

	return Plan{Strategies: strategies}
}

// coupangAcceptLanguage 쿠팡 설정이 비어 있으면 브라우저 locale 을 사용합니다.
func coupangAcceptLanguage(cfg *config.AppConfig) string {
	if cfg.Coupang.AcceptLanguage != "" {
		return cfg.Coupang.AcceptLanguage
	}
	return cfg.Browser.Locale
}

func basePageOptions(cfg *config.AppConfig) browser.PageOptions {
	return browser.PageOptions{
		UserAgent: cfg.Browser.UserAgent,
		Locale:    cfg.Browser.Locale,
		Width:     cfg.Browser.Viewport.Width,
		Height:    cfg.Browser.Viewport.Height,
	}
}

func headlessConfig(cfg *config.AppConfig) strategy.HeadlessConfig {
	hc := strategy.DefaultHeadlessConfig()
	hc.SettleDelay = cfg.Browser.SettleDelay
	hc.ScrollCount = cfg.Browser.ScrollCount
	return hc
}
