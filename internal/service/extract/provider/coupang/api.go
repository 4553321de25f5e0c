package coupang

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/darkkaiser/product-extractor/internal/service/extract/fetcher"
	"github.com/darkkaiser/product-extractor/internal/service/extract/model"
	"github.com/darkkaiser/product-extractor/internal/service/extract/scraper"
	"github.com/darkkaiser/product-extractor/internal/service/extract/strategy"
	applog "github.com/darkkaiser/product-extractor/pkg/log"
	"github.com/darkkaiser/product-extractor/pkg/strutil"
)

const component = "extract.coupang"

// StrategyName 공식 API 전략 이름 (debug.strategies 에 기록)
const StrategyName = "coupang_api"

// EndpointProduct 상품 상세 엔드포인트 이름 (debug.endpoints 에 기록)
const EndpointProduct = "affiliate_product"

// DefaultAPIBaseURL 쿠팡 Open API 게이트웨이 주소
const DefaultAPIBaseURL = "https://api-gateway.coupang.com"

// productPathPrefix 상품 상세 API 경로. 뒤에 productId 가 붙습니다.
const productPathPrefix = "/v2/providers/affiliate_open_api/apis/openapi/products/"

// APIConfig 공식 API 전략 설정입니다.
type APIConfig struct {
	// BaseURL 비어있으면 DefaultAPIBaseURL
	BaseURL    string
	ImageLimit int
}

// API 쿠팡 파트너스 Open API 로 상품 정보를 조회하는 전략입니다.
// 키가 없으면 호출하지 않고 ErrCredentialsMissing 을 반환합니다.
type API struct {
	scraper *scraper.Scraper
	signer  *Signer
	dumper  strategy.Dumper
	cfg     APIConfig
	product strategy.StateProfile
}

var _ strategy.Strategy = (*API)(nil)

// NewAPI 새로운 공식 API 전략을 생성합니다. signer 와 dumper 는 nil 일 수 있습니다.
func NewAPI(s *scraper.Scraper, signer *Signer, dumper strategy.Dumper, cfg APIConfig) *API {
	if s == nil {
		panic("coupang: scraper 는 nil 일 수 없습니다")
	}
	cfg.BaseURL = strings.TrimRight(strutil.FirstNonEmpty(cfg.BaseURL, DefaultAPIBaseURL), "/")

	product := apiProductProfile()
	product.ImageLimit = cfg.ImageLimit

	return &API{scraper: s, signer: signer, dumper: dumper, cfg: cfg, product: product}
}

func (a *API) Name() string { return StrategyName }

func (a *API) Extract(ctx context.Context, in strategy.Input) (*strategy.Output, error) {
	if a.signer == nil {
		in.Trace.Step("쿠팡 Open API 키가 없어 공식 API 를 건너뜁니다")
		return nil, ErrCredentialsMissing
	}

	path := productPathPrefix + url.PathEscape(in.IDs.ProductID)
	rawURL := a.cfg.BaseURL + path

	header := http.Header{}
	header.Set("Authorization", a.signer.Authorization(http.MethodGet, path, ""))
	header.Set("Content-Type", "application/json;charset=UTF-8")

	start := time.Now()
	resp, err := a.scraper.FetchJSON(ctx, rawURL, header)

	r := model.EndpointResult{
		Name:       EndpointProduct,
		URL:        fetcher.RedactRawURL(rawURL),
		OK:         err == nil,
		DurationMs: time.Since(start).Milliseconds(),
	}
	if err != nil {
		r.Status = fetcher.StatusCode(err)
		r.Error = err.Error()
		in.Trace.Endpoint(r)
		return nil, err
	}
	r.Status = resp.Status
	in.Trace.Endpoint(r)

	if a.dumper != nil {
		a.dumper.Response(strategy.DumpName(in)+" "+EndpointProduct, resp.Body)
	}

	if code := resp.Result.Get("rCode"); code.Exists() && code.String() != "0" {
		err := newErrAPIRejected(code.String(), resp.Result.Get("rMessage").String())
		applog.WithComponentAndFields(component, applog.Fields{
			"product_id": in.IDs.ProductID,
			"r_code":     code.String(),
		}).Warn("쿠팡 Open API 호출 거부")
		return nil, err
	}

	out := &strategy.Output{Product: a.product.Product(resp.Result)}
	out.Product.Source = model.SourceDirect
	if !out.Usable() {
		return out, strategy.ErrNoProductData
	}
	return out, nil
}
