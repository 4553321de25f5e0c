// Package extract 상품 URL 하나를 받아 쇼핑몰 판별, 식별자 조회, 추출 전략 실행, 결과 병합,
// 캐시까지 이어지는 추출 파이프라인을 제공합니다.
//
// 파이프라인은 어떤 경우에도 패닉이나 에러를 밖으로 내보내지 않고, 진단 정보가 담긴 Envelope 와
// 그 분류(Kind)를 담은 Result 를 반환합니다.
package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/darkkaiser/product-extractor/internal/service/extract/cache"
	"github.com/darkkaiser/product-extractor/internal/service/extract/metrics"
	"github.com/darkkaiser/product-extractor/internal/service/extract/model"
	"github.com/darkkaiser/product-extractor/internal/service/extract/strategy"
	"github.com/darkkaiser/product-extractor/internal/service/extract/vendor"
	applog "github.com/darkkaiser/product-extractor/pkg/log"
	"golang.org/x/sync/singleflight"
)

const component = "extract.pipeline"

// DefaultStrategyTimeout 전략 하나에 허용하는 기본 시간
const DefaultStrategyTimeout = 30 * time.Second

// ChannelResolver 네이버 channelId 조회기입니다.
type ChannelResolver interface {
	ResolveChannelID(ctx context.Context, productURL, productID string, trace *model.Trace) (string, error)
}

// Plan 쇼핑몰 하나의 추출 방법입니다. Strategies 는 앞에서부터 순서대로 시도합니다.
type Plan struct {
	// Resolver 가 nil 이면 channelId 를 조회하지 않습니다.
	Resolver   ChannelResolver
	Strategies []strategy.Strategy
}

// Config 파이프라인 설정입니다.
type Config struct {
	StrategyTimeout time.Duration
}

// Pipeline 추출 파이프라인입니다.
type Pipeline struct {
	plans   map[model.Vendor]Plan
	cache   cache.Cache
	metrics *metrics.Metrics
	cfg     Config

	group singleflight.Group

	now func() time.Time
}

// New 새로운 Pipeline 을 생성합니다. c 가 nil 이면 캐시를 사용하지 않고, m 은 nil 일 수 있습니다.
func New(plans map[model.Vendor]Plan, c cache.Cache, m *metrics.Metrics, cfg Config) *Pipeline {
	if c == nil {
		c = cache.Nop{}
	}
	if cfg.StrategyTimeout <= 0 {
		cfg.StrategyTimeout = DefaultStrategyTimeout
	}

	return &Pipeline{
		plans:   plans,
		cache:   c,
		metrics: m,
		cfg:     cfg,
		now:     time.Now,
	}
}

// CacheBackend 사용 중인 캐시 백엔드 이름입니다.
func (p *Pipeline) CacheBackend() string {
	return p.cache.Backend()
}

// Extract rawURL 의 상품 정보를 추출합니다.
//
// 캐시에 유효한 결과가 있으면 전략을 실행하지 않고 debug.cacheHit 를 true 로 표시해 반환합니다.
// 같은 URL 에 대한 동시 요청은 하나의 추출을 공유합니다. 실패한 결과는 캐시하지 않습니다.
func (p *Pipeline) Extract(ctx context.Context, rawURL string) (result Result) {
	start := p.now()
	rawURL = strings.TrimSpace(rawURL)

	defer func() {
		if r := recover(); r != nil {
			applog.WithComponentAndFields(component, applog.Fields{
				"url":   rawURL,
				"panic": r,
			}).Error("추출 파이프라인 실행 중 패닉이 발생했습니다")

			env := failedEnvelope(model.VendorIdentifiers{Vendor: model.VendorUnknown}, model.NewTrace(), MessageInternalFail)
			env.Debug.Errors = append(env.Debug.Errors, fmt.Sprintf("panic: %v", r))
			result = Result{Kind: KindUpstreamFailed, Envelope: env}
		}

		result.Envelope.DurationMs = p.now().Sub(start).Milliseconds()
		p.metrics.ObserveExtraction(string(result.Envelope.Vendor), result.Kind.String(), p.now().Sub(start))
	}()

	ids, err := vendor.Identify(rawURL)
	if err != nil {
		return p.rejected(ids, err)
	}

	key := cache.Key(ids.Vendor, rawURL)
	if cached, ok := p.cache.Get(ctx, key); ok {
		p.metrics.ObserveCache(true)
		cached.Debug.CacheHit = true
		return Result{Kind: KindSucceeded, Envelope: cached}
	}
	if p.cache.Backend() != cache.BackendNone {
		p.metrics.ObserveCache(false)
	}

	v, _, shared := p.group.Do(key, func() (any, error) {
		res := p.run(ctx, rawURL, ids)
		if res.OK() {
			p.cache.Set(ctx, key, res.Envelope)
		}
		return res, nil
	})

	res := v.(Result)
	res.Envelope = res.Envelope.Clone()
	if shared {
		res.Envelope.Debug.Steps = append(res.Envelope.Debug.Steps, "동일한 URL 의 동시 요청과 추출 결과를 공유했습니다")
	}
	return res
}

// rejected 네트워크 호출 없이 즉시 거절하는 입력 오류 응답입니다.
func (p *Pipeline) rejected(ids model.VendorIdentifiers, err error) Result {
	trace := model.NewTrace()
	trace.Error("vendor", err)

	kind := KindInvalidRequest
	if errors.Is(err, vendor.ErrUnsupportedVendor) {
		kind = KindUnsupported
		ids.Vendor = model.VendorUnknown
	}

	return Result{Kind: kind, Envelope: failedEnvelope(ids, trace, userMessage(err))}
}

// run 식별자 조회와 전략 실행을 수행합니다. 캐시는 다루지 않습니다.
func (p *Pipeline) run(ctx context.Context, rawURL string, ids model.VendorIdentifiers) Result {
	trace := model.NewTrace()
	trace.Step("쇼핑몰 판별: %s, 상품 번호: %s", ids.Vendor, ids.ProductID)

	logger := applog.WithComponentAndFields(component, applog.Fields{
		"vendor":     ids.Vendor,
		"product_id": ids.ProductID,
	})

	plan, ok := p.plans[ids.Vendor]
	if !ok || len(plan.Strategies) == 0 {
		trace.Step("%s 추출 전략이 구성되지 않았습니다", ids.Vendor)
		return Result{Kind: KindUnsupported, Envelope: failedEnvelope(ids, trace, userMessage(vendor.ErrUnsupportedVendor))}
	}

	if plan.Resolver != nil {
		channelID, err := plan.Resolver.ResolveChannelID(ctx, rawURL, ids.ProductID, trace)
		if err != nil {
			trace.Error("channelId", err)
		} else {
			ids.ChannelID = channelID
			trace.Step("channelId 확인: %s", channelID)
		}
	}

	in := strategy.Input{URL: rawURL, IDs: ids, Trace: trace}

	var (
		errs     []error
		fallback strategy.Output
	)
	for _, s := range plan.Strategies {
		if ctx.Err() != nil {
			trace.Error("pipeline", ctx.Err())
			errs = append(errs, ctx.Err())
			break
		}

		out, err := p.runStrategy(ctx, s, in)
		if err == nil && out.Usable() {
			merge(out, &fallback, trace)
			logger.WithFields(applog.Fields{
				"strategy": s.Name(),
				"source":   out.Product.Source,
				"reviews":  len(out.Reviews),
				"qa":       len(out.QA),
			}).Info("상품 정보 추출 완료")

			return Result{Kind: KindSucceeded, Envelope: envelope(ids, trace, *out)}
		}

		if err == nil {
			err = strategy.ErrNoProductData
		}
		errs = append(errs, err)
		keepPartial(out, &fallback)
	}

	kind, message := classifyFailure(ctx, errs)
	logger.WithFields(applog.Fields{
		"kind":   kind.String(),
		"errors": len(errs),
	}).Warn("모든 추출 전략이 실패했습니다")

	env := failedEnvelope(ids, trace, message)
	env.Reviews = nonNil(fallback.Reviews)
	env.QA = nonNil(fallback.QA)
	return Result{Kind: kind, Envelope: env}
}

// runStrategy 전략 하나를 제한 시간 안에 실행하고 결과를 trace 와 지표에 기록합니다.
func (p *Pipeline) runStrategy(ctx context.Context, s strategy.Strategy, in strategy.Input) (out *strategy.Output, err error) {
	start := p.now()

	sctx, cancel := context.WithTimeout(ctx, p.cfg.StrategyTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			out, err = nil, newErrStrategyPanic(s.Name(), r)
		}

		elapsed := p.now().Sub(start)
		ok := err == nil && out.Usable()

		record := model.StrategyResult{
			Name:       s.Name(),
			OK:         ok,
			DurationMs: elapsed.Milliseconds(),
		}
		if out != nil {
			record.Reviews = len(out.Reviews)
			record.QA = len(out.QA)
		}
		if err != nil {
			record.Error = err.Error()
			in.Trace.Error(s.Name(), err)
		}
		in.Trace.Strategy(record)

		p.metrics.ObserveStrategy(string(in.IDs.Vendor), s.Name(), ok, elapsed)
	}()

	in.Trace.Step("추출 전략 시도: %s", s.Name())
	return s.Extract(sctx, in)
}

// keepPartial 실패한 전략이 얻은 리뷰/문의 중 처음으로 비어있지 않은 것을 보관합니다.
func keepPartial(out *strategy.Output, fallback *strategy.Output) {
	if out == nil {
		return
	}
	if len(fallback.Reviews) == 0 && len(out.Reviews) > 0 {
		fallback.Reviews = out.Reviews
	}
	if len(fallback.QA) == 0 && len(out.QA) > 0 {
		fallback.QA = out.QA
	}
}

// merge 성공한 전략에 리뷰/문의가 없으면 앞서 실패한 전략이 얻은 것으로 채웁니다.
func merge(out *strategy.Output, fallback *strategy.Output, trace *model.Trace) {
	if len(out.Reviews) == 0 && len(fallback.Reviews) > 0 {
		out.Reviews = fallback.Reviews
		trace.Step("이전 전략에서 얻은 리뷰 %d건을 병합했습니다", len(fallback.Reviews))
	}
	if len(out.QA) == 0 && len(fallback.QA) > 0 {
		out.QA = fallback.QA
		trace.Step("이전 전략에서 얻은 문의 %d건을 병합했습니다", len(fallback.QA))
	}
}

func envelope(ids model.VendorIdentifiers, trace *model.Trace, out strategy.Output) *model.ExtractionResult {
	product := out.Product
	product.Images = nonNil(product.Images)

	return &model.ExtractionResult{
		OK:        true,
		Vendor:    ids.Vendor,
		ProductID: ids.ProductID,
		ChannelID: ids.ChannelID,
		Product:   product,
		Reviews:   nonNil(out.Reviews),
		QA:        nonNil(out.QA),
		Debug:     trace.Snapshot(),
	}
}

func failedEnvelope(ids model.VendorIdentifiers, trace *model.Trace, message string) *model.ExtractionResult {
	return &model.ExtractionResult{
		OK:        false,
		Vendor:    ids.Vendor,
		ProductID: ids.ProductID,
		ChannelID: ids.ChannelID,
		Product:   model.ProductRecord{Images: []string{}, Source: model.SourceFailed},
		Reviews:   []model.ReviewRecord{},
		QA:        []model.QARecord{},
		Debug:     trace.Snapshot(),
		Error:     message,
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
