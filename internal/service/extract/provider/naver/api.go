package naver

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/darkkaiser/product-extractor/internal/service/extract/fetcher"
	"github.com/darkkaiser/product-extractor/internal/service/extract/model"
	"github.com/darkkaiser/product-extractor/internal/service/extract/scraper"
	"github.com/darkkaiser/product-extractor/internal/service/extract/session"
	"github.com/darkkaiser/product-extractor/internal/service/extract/strategy"
	"github.com/darkkaiser/product-extractor/pkg/maputil"
	"github.com/darkkaiser/product-extractor/pkg/strutil"
	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"
)

// StrategyName 내부 API 전략 이름 (debug.strategies 에 기록)
const StrategyName = "naver_api"

// 내부 API 엔드포인트 이름 (debug.endpoints 에 기록)
const (
	EndpointProduct = "product"
	EndpointReviews = "reviews"
	EndpointQA      = "qa"
)

// DefaultAPIBaseURL 스마트스토어 내부 API 주소
const DefaultAPIBaseURL = "https://smartstore.naver.com"

// Refresher 인증 실패 시 쿠키를 갱신합니다.
type Refresher interface {
	Refresh(ctx context.Context, reason string) (session.Outcome, error)
}

// APIConfig 내부 API 전략 설정입니다.
type APIConfig struct {
	// BaseURL 비어있으면 DefaultAPIBaseURL
	BaseURL string

	Headers http.Header

	ReviewLimit int
	QALimit     int
	ImageLimit  int
}

// API 상품/리뷰/문의 내부 API 를 동시에 호출하는 전략입니다.
// 세 호출은 서로 독립적이며 하나가 실패해도 나머지 결과는 그대로 사용합니다.
type API struct {
	scraper   *scraper.Scraper
	refresher Refresher
	dumper    strategy.Dumper
	cfg       APIConfig
	product   strategy.StateProfile
}

var _ strategy.Strategy = (*API)(nil)

// NewAPI 새로운 내부 API 전략을 생성합니다. refresher 와 dumper 는 nil 일 수 있습니다.
func NewAPI(s *scraper.Scraper, refresher Refresher, dumper strategy.Dumper, cfg APIConfig) *API {
	if s == nil {
		panic("naver: scraper 는 nil 일 수 없습니다")
	}
	cfg.BaseURL = strings.TrimRight(strutil.FirstNonEmpty(cfg.BaseURL, DefaultAPIBaseURL), "/")

	product := apiProductProfile()
	product.ImageLimit = cfg.ImageLimit

	return &API{scraper: s, refresher: refresher, dumper: dumper, cfg: cfg, product: product}
}

func (a *API) Name() string { return StrategyName }

type endpoint struct {
	name string
	url  string
}

type callResult struct {
	resp *scraper.JSONResponse
	err  error
}

// endpointsFor 상품 식별자로 호출할 내부 API 주소 목록을 만듭니다.
func (a *API) endpointsFor(ids model.VendorIdentifiers) []endpoint {
	productID := url.PathEscape(ids.ProductID)
	return []endpoint{
		{EndpointProduct, fmt.Sprintf("%s/i/v2/channels/%s/products/%s?withWindow=false", a.cfg.BaseURL, url.PathEscape(ids.ChannelID), productID)},
		{EndpointReviews, fmt.Sprintf("%s/i/v2/reviews/%s?page=1&size=%d&sort=NEWEST", a.cfg.BaseURL, productID, pageSize(a.cfg.ReviewLimit))},
		{EndpointQA, fmt.Sprintf("%s/i/v2/qnas/%s?page=1&size=%d&sort=NEWEST", a.cfg.BaseURL, productID, pageSize(a.cfg.QALimit))},
	}
}

func (a *API) Extract(ctx context.Context, in strategy.Input) (*strategy.Output, error) {
	if in.IDs.ChannelID == "" {
		in.Trace.Step("channelId 가 없어 네이버 내부 API 를 건너뜁니다")
		return nil, ErrChannelIDRequired
	}

	endpoints := a.endpointsFor(in.IDs)
	header := a.header(in.URL)
	results := a.callAll(ctx, in, endpoints, header)

	// 인증 계열 실패가 있으면 쿠키를 한 번 갱신하고 실패한 엔드포인트만 다시 호출한다.
	if retry := authFailed(endpoints, results); len(retry) > 0 && a.refresher != nil && ctx.Err() == nil {
		outcome, err := a.refresher.Refresh(ctx, "naver api auth")
		if err != nil {
			in.Trace.Error("session.refresh", err)
		}
		in.Trace.Step("내부 API 인증 오류로 쿠키 갱신: %s", outcome)

		if outcome != session.OutcomeFailed {
			retried := a.callAll(ctx, in, pick(endpoints, retry), header)
			for i, idx := range retry {
				results[idx] = retried[i]
			}
		}
	}

	out := &strategy.Output{}
	var productErr error

	for i, ep := range endpoints {
		res := results[i]
		if res.err != nil {
			in.Trace.Error("naver.api."+ep.name, res.err)
			if ep.name == EndpointProduct {
				productErr = res.err
			}
			continue
		}

		switch ep.name {
		case EndpointProduct:
			out.Product = a.productFrom(res.resp.Result)
		case EndpointReviews:
			reviews, err := Reviews(res.resp.Result)
			if err != nil {
				in.Trace.Error("naver.api.reviews", err)
			}
			out.Reviews = limit(reviews, a.cfg.ReviewLimit)
		case EndpointQA:
			qa, err := QA(res.resp.Result)
			if err != nil {
				in.Trace.Error("naver.api.qa", err)
			}
			out.QA = limit(qa, a.cfg.QALimit)
		}
	}
	in.Trace.Step("네이버 내부 API: 리뷰 %d건, 문의 %d건", len(out.Reviews), len(out.QA))

	if productErr != nil {
		return out, productErr
	}
	if !out.Usable() {
		return out, strategy.ErrNoProductData
	}
	return out, nil
}

func (a *API) callAll(ctx context.Context, in strategy.Input, endpoints []endpoint, header http.Header) []callResult {
	results := make([]callResult, len(endpoints))

	var g errgroup.Group
	for i, ep := range endpoints {
		g.Go(func() error {
			results[i] = a.call(ctx, in, ep, header)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (a *API) call(ctx context.Context, in strategy.Input, ep endpoint, header http.Header) callResult {
	start := time.Now()
	resp, err := a.scraper.FetchJSON(ctx, ep.url, header)

	r := model.EndpointResult{
		Name:       ep.name,
		URL:        fetcher.RedactRawURL(ep.url),
		OK:         err == nil,
		DurationMs: time.Since(start).Milliseconds(),
	}
	if err != nil {
		r.Status = fetcher.StatusCode(err)
		r.Error = err.Error()
	} else {
		r.Status = resp.Status
		if a.dumper != nil {
			a.dumper.Response(strategy.DumpName(in)+" "+ep.name, resp.Body)
		}
	}
	in.Trace.Endpoint(r)

	return callResult{resp: resp, err: err}
}

func (a *API) header(referer string) http.Header {
	h := a.cfg.Headers.Clone()
	if h == nil {
		h = http.Header{}
	}
	h.Set("Referer", referer)
	return h
}

func (a *API) productFrom(result gjson.Result) model.ProductRecord {
	p := a.product.Product(result)
	p.Source = model.SourceAPI
	p.Description = strutil.NormalizeSpaces(strutil.StripHTMLTags(p.Description))
	return p
}

// reviewItem 리뷰 API 항목입니다. 같은 의미의 필드가 응답 버전에 따라 다른 이름으로 옵니다.
type reviewItem struct {
	Author        string   `json:"author"`
	WriterID      string   `json:"writerMemberId"`
	Rating        string   `json:"rating"`
	ReviewScore   string   `json:"reviewScore"`
	Content       string   `json:"content"`
	ReviewContent string   `json:"reviewContent"`
	CreatedAt     string   `json:"createdAt"`
	CreateDate    string   `json:"createDate"`
	Images        []string `json:"images"`
	Attaches      []string `json:"reviewAttaches"`
}

// qaItem 문의 API 항목입니다. 답변은 문자열이거나 {"content": ...} 객체입니다.
type qaItem struct {
	Question        string `json:"question"`
	QuestionContent string `json:"questionContent"`
	Answer          string `json:"answer"`
	AnswerContent   string `json:"answerContent"`
	Author          string `json:"author"`
	MaskedWriterID  string `json:"maskedWriterId"`
	CreatedAt       string `json:"createdAt"`
	CreateDate      string `json:"createDate"`
}

// objectKeys 객체로 온 값을 문자열로 평탄화할 때 확인하는 키 (작성자, 이미지, 답변)
var objectKeys = []string{"name", "nickname", "content", "url", "imageUrl", "attachUrl"}

// Reviews 리뷰 API 응답을 ReviewRecord 목록으로 변환합니다. 내용이 없는 항목은 버립니다.
func Reviews(result gjson.Result) ([]model.ReviewRecord, error) {
	items, err := decodeList[reviewItem](result, "reviews", "contents", "data.reviews", "data.contents")
	if err != nil {
		return nil, err
	}

	reviews := make([]model.ReviewRecord, 0, len(items))
	for _, it := range items {
		content := strings.TrimSpace(strutil.FirstNonEmpty(it.Content, it.ReviewContent))
		if content == "" {
			continue
		}
		images := it.Images
		if len(images) == 0 {
			images = it.Attaches
		}
		reviews = append(reviews, model.ReviewRecord{
			Author:  strutil.FirstNonEmpty(it.Author, it.WriterID),
			Rating:  strutil.FirstNonEmpty(it.Rating, it.ReviewScore),
			Content: content,
			Date:    strutil.FirstNonEmpty(it.CreatedAt, it.CreateDate),
			Images:  compact(images),
		})
	}
	return reviews, nil
}

// QA 문의 API 응답을 QARecord 목록으로 변환합니다. 질문이 없는 항목은 버립니다.
func QA(result gjson.Result) ([]model.QARecord, error) {
	items, err := decodeList[qaItem](result, "qnas", "contents", "data.qnas", "data.contents")
	if err != nil {
		return nil, err
	}

	qa := make([]model.QARecord, 0, len(items))
	for _, it := range items {
		question := strings.TrimSpace(strutil.FirstNonEmpty(it.Question, it.QuestionContent))
		if question == "" {
			continue
		}
		qa = append(qa, model.QARecord{
			Question: question,
			Answer:   strings.TrimSpace(strutil.FirstNonEmpty(it.Answer, it.AnswerContent)),
			Author:   strutil.FirstNonEmpty(it.Author, it.MaskedWriterID),
			Date:     strutil.FirstNonEmpty(it.CreatedAt, it.CreateDate),
		})
	}
	return qa, nil
}

func decodeList[T any](result gjson.Result, paths ...string) ([]T, error) {
	for _, path := range paths {
		r := result.Get(path)
		if !r.IsArray() {
			continue
		}
		items, err := maputil.Decode[[]T](r.Value(), maputil.WithDecodeHook(maputil.ObjectToStringHookFunc(objectKeys...)))
		if err != nil {
			return nil, newErrDecodeFailed(path, err)
		}
		return *items, nil
	}
	return nil, nil
}

func authFailed(endpoints []endpoint, results []callResult) []int {
	var idx []int
	for i := range endpoints {
		if results[i].err != nil && fetcher.IsAuthStatus(fetcher.StatusCode(results[i].err)) {
			idx = append(idx, i)
		}
	}
	return idx
}

func pick(endpoints []endpoint, idx []int) []endpoint {
	picked := make([]endpoint, 0, len(idx))
	for _, i := range idx {
		picked = append(picked, endpoints[i])
	}
	return picked
}

func compact(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func limit[T any](items []T, n int) []T {
	if n > 0 && len(items) > n {
		return items[:n]
	}
	return items
}

func pageSize(n int) int {
	if n <= 0 {
		return 20
	}
	return n
}
