package extract

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	apperrors "github.com/darkkaiser/product-extractor/internal/pkg/errors"
	"github.com/darkkaiser/product-extractor/internal/service/extract/cache"
	"github.com/darkkaiser/product-extractor/internal/service/extract/metrics"
	"github.com/darkkaiser/product-extractor/internal/service/extract/model"
	"github.com/darkkaiser/product-extractor/internal/service/extract/strategy"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	coupangURL = "https://www.coupang.com/vp/products/123456789"
	naverURL   = "https://smartstore.naver.com/miliving/products/5012345678"
)

// countingStrategy strategy.Func 의 호출 횟수를 셉니다.
type countingStrategy struct {
	strategy.Func
	calls atomic.Int32
}

func counting(name string, fn func(ctx context.Context, in strategy.Input) (*strategy.Output, error)) *countingStrategy {
	return &countingStrategy{Func: strategy.Func{StrategyName: name, Fn: fn}}
}

func (s *countingStrategy) Extract(ctx context.Context, in strategy.Input) (*strategy.Output, error) {
	s.calls.Add(1)
	return s.Func.Extract(ctx, in)
}

func succeeding(name string, product model.ProductRecord) *countingStrategy {
	return counting(name, func(context.Context, strategy.Input) (*strategy.Output, error) {
		return &strategy.Output{Product: product}, nil
	})
}

func failing(name string, err error) *countingStrategy {
	return counting(name, func(context.Context, strategy.Input) (*strategy.Output, error) {
		return nil, err
	})
}

type stubResolver struct {
	channelID string
	err       error
	calls     atomic.Int32
}

func (r *stubResolver) ResolveChannelID(_ context.Context, _, _ string, trace *model.Trace) (string, error) {
	r.calls.Add(1)
	trace.Attempt(model.Attempt{Method: "stub", Found: r.err == nil})
	return r.channelID, r.err
}

func newPipeline(plans map[model.Vendor]Plan, c cache.Cache) *Pipeline {
	return New(plans, c, metrics.New(prometheus.NewRegistry()), Config{StrategyTimeout: time.Second})
}

func TestKind_HTTPStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind   Kind
		status int
	}{
		{KindSucceeded, http.StatusOK},
		{KindInvalidRequest, http.StatusBadRequest},
		{KindUnsupported, http.StatusBadRequest},
		{KindUpstreamFailed, http.StatusBadGateway},
		{KindUpstreamTimeout, http.StatusGatewayTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.status, tt.kind.HTTPStatus())
		})
	}
}

func TestPipeline_RejectsWithoutNetwork(t *testing.T) {
	t.Parallel()

	s := succeeding("never", model.ProductRecord{Name: "x"})
	r := &stubResolver{channelID: "c"}
	p := newPipeline(map[model.Vendor]Plan{
		model.VendorNaver:   {Resolver: r, Strategies: []strategy.Strategy{s}},
		model.VendorCoupang: {Strategies: []strategy.Strategy{s}},
	}, nil)

	tests := []struct {
		name    string
		url     string
		kind    Kind
		vendor  model.Vendor
		message string
	}{
		{"URL 없음", "   ", KindInvalidRequest, model.VendorUnknown, "URL이 필요합니다."},
		{"지원하지 않는 쇼핑몰", "https://www.gmarket.co.kr/item?goodscode=1", KindUnsupported, model.VendorUnknown, "지원하지 않는 쇼핑몰입니다."},
		{"상품 번호 없음", "https://www.coupang.com/np/search?q=mouse", KindInvalidRequest, model.VendorCoupang, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res := p.Extract(context.Background(), tt.url)
			assert.Equal(t, tt.kind, res.Kind)

			env := res.Envelope
			require.NotNil(t, env)
			assert.False(t, env.OK)
			assert.Equal(t, tt.vendor, env.Vendor)
			assert.NotEmpty(t, env.Error)
			if tt.message != "" {
				assert.Equal(t, tt.message, env.Error)
			}
			assert.Equal(t, model.SourceFailed, env.Product.Source)
			assert.NotEmpty(t, env.Debug.Errors)
		})
	}

	assert.Zero(t, s.calls.Load(), "입력 오류는 어떤 전략도 실행하지 않아야 합니다")
	assert.Zero(t, r.calls.Load())
}

func TestPipeline_FirstUsableStrategyWins(t *testing.T) {
	t.Parallel()

	first := failing("embedded_json", strategy.ErrStateNotFound)
	second := succeeding("coupang_api", model.ProductRecord{Name: "무선 마우스", Price: "15900", Source: model.SourceDirect})
	third := succeeding("static_html", model.ProductRecord{Name: "unused"})

	p := newPipeline(map[model.Vendor]Plan{
		model.VendorCoupang: {Strategies: []strategy.Strategy{first, second, third}},
	}, nil)

	res := p.Extract(context.Background(), coupangURL)
	require.Equal(t, KindSucceeded, res.Kind)

	env := res.Envelope
	assert.True(t, env.OK)
	assert.Empty(t, env.Error)
	assert.Equal(t, model.VendorCoupang, env.Vendor)
	assert.Equal(t, "123456789", env.ProductID)
	assert.Equal(t, "무선 마우스", env.Product.Name)
	assert.Equal(t, model.SourceDirect, env.Product.Source)
	assert.NotNil(t, env.Product.Images)
	assert.NotNil(t, env.Reviews)
	assert.NotNil(t, env.QA)
	assert.False(t, env.Debug.CacheHit)

	assert.EqualValues(t, 1, first.calls.Load())
	assert.EqualValues(t, 1, second.calls.Load())
	assert.Zero(t, third.calls.Load(), "성공 이후의 전략은 실행하지 않아야 합니다")

	require.Len(t, env.Debug.Strategies, 2)
	assert.False(t, env.Debug.Strategies[0].OK)
	assert.Equal(t, "embedded_json", env.Debug.Strategies[0].Name)
	assert.True(t, env.Debug.Strategies[1].OK)
}

func TestPipeline_EmptyResultFallsThrough(t *testing.T) {
	t.Parallel()

	empty := counting("empty", func(context.Context, strategy.Input) (*strategy.Output, error) {
		return &strategy.Output{Product: model.ProductRecord{Brand: "브랜드만"}}, nil
	})
	next := succeeding("next", model.ProductRecord{Price: "1000", Source: model.SourceHTML})

	p := newPipeline(map[model.Vendor]Plan{
		model.VendorCoupang: {Strategies: []strategy.Strategy{empty, next}},
	}, nil)

	res := p.Extract(context.Background(), coupangURL)
	require.True(t, res.OK())
	assert.Equal(t, "1000", res.Envelope.Product.Price)
	assert.EqualValues(t, 1, next.calls.Load())
}

func TestPipeline_MergesPartialResults(t *testing.T) {
	t.Parallel()

	api := counting("naver_api", func(context.Context, strategy.Input) (*strategy.Output, error) {
		return &strategy.Output{
			Reviews: []model.ReviewRecord{{Author: "kim", Rating: "5", Content: "좋아요"}},
			QA:      []model.QARecord{{Question: "재입고?", Answer: "예정"}},
		}, strategy.ErrNoProductData
	})
	html := counting("static_html", func(context.Context, strategy.Input) (*strategy.Output, error) {
		return &strategy.Output{
			Product: model.ProductRecord{Name: "의자", Source: model.SourceHTML},
			QA:      []model.QARecord{{Question: "색상?", Answer: "검정"}},
		}, nil
	})

	p := newPipeline(map[model.Vendor]Plan{
		model.VendorNaver: {Resolver: &stubResolver{channelID: "ch1"}, Strategies: []strategy.Strategy{api, html}},
	}, nil)

	res := p.Extract(context.Background(), naverURL)
	require.True(t, res.OK())

	env := res.Envelope
	assert.Equal(t, "ch1", env.ChannelID)
	assert.Equal(t, "의자", env.Product.Name)
	assert.Equal(t, []model.ReviewRecord{{Author: "kim", Rating: "5", Content: "좋아요"}}, env.Reviews, "성공한 전략에 리뷰가 없으면 이전 전략의 리뷰를 사용")
	assert.Equal(t, []model.QARecord{{Question: "색상?", Answer: "검정"}}, env.QA, "성공한 전략의 문의가 우선")
	assert.Len(t, env.Debug.Attempts, 1)
}

func TestPipeline_ChannelIDFailureDoesNotStopStrategies(t *testing.T) {
	t.Parallel()

	var gotChannel string
	s := counting("static_html", func(_ context.Context, in strategy.Input) (*strategy.Output, error) {
		gotChannel = in.IDs.ChannelID
		return &strategy.Output{Product: model.ProductRecord{Name: "n"}}, nil
	})

	p := newPipeline(map[model.Vendor]Plan{
		model.VendorNaver: {
			Resolver:   &stubResolver{err: apperrors.New(apperrors.NotFound, "channelId 없음")},
			Strategies: []strategy.Strategy{s},
		},
	}, nil)

	res := p.Extract(context.Background(), naverURL)
	require.True(t, res.OK())
	assert.Empty(t, gotChannel)
	assert.Empty(t, res.Envelope.ChannelID)
	assert.Contains(t, res.Envelope.Debug.Errors[0], "channelId")
}

func TestPipeline_AllStrategiesFail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		errs    []error
		kind    Kind
		message string
	}{
		{
			name:    "일반 실패",
			errs:    []error{strategy.ErrStateNotFound, errors.New("boom")},
			kind:    KindUpstreamFailed,
			message: MessageAllFailed,
		},
		{
			name:    "시간 초과 포함",
			errs:    []error{strategy.ErrStateNotFound, apperrors.New(apperrors.Timeout, "시간 초과")},
			kind:    KindUpstreamTimeout,
			message: MessageTimeout,
		},
		{
			name:    "네트워크 오류 포함",
			errs:    []error{apperrors.Wrap(&netError{}, apperrors.Unavailable, "연결 실패")},
			kind:    KindUpstreamFailed,
			message: MessageNetwork,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var strategies []strategy.Strategy
			for i, err := range tt.errs {
				strategies = append(strategies, failing("s"+string(rune('0'+i)), err))
			}
			p := newPipeline(map[model.Vendor]Plan{model.VendorCoupang: {Strategies: strategies}}, nil)

			res := p.Extract(context.Background(), coupangURL)
			assert.Equal(t, tt.kind, res.Kind)

			env := res.Envelope
			assert.False(t, env.OK)
			assert.Equal(t, tt.message, env.Error)
			assert.Equal(t, model.SourceFailed, env.Product.Source)
			assert.Len(t, env.Debug.Errors, len(tt.errs))
			assert.Len(t, env.Debug.Strategies, len(tt.errs))
		})
	}
}

func TestPipeline_StrategyPanicIsContained(t *testing.T) {
	t.Parallel()

	panicking := counting("panicky", func(context.Context, strategy.Input) (*strategy.Output, error) {
		panic("unexpected")
	})
	next := succeeding("next", model.ProductRecord{Name: "ok"})

	p := newPipeline(map[model.Vendor]Plan{model.VendorCoupang: {Strategies: []strategy.Strategy{panicking, next}}}, nil)

	var res Result
	require.NotPanics(t, func() { res = p.Extract(context.Background(), coupangURL) })
	assert.True(t, res.OK())
	assert.Contains(t, res.Envelope.Debug.Errors[0], "패닉")
}

func TestPipeline_StrategyTimeout(t *testing.T) {
	t.Parallel()

	slow := counting("slow", func(ctx context.Context, _ strategy.Input) (*strategy.Output, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})

	p := New(map[model.Vendor]Plan{model.VendorCoupang: {Strategies: []strategy.Strategy{slow}}}, nil, nil, Config{StrategyTimeout: 20 * time.Millisecond})

	res := p.Extract(context.Background(), coupangURL)
	assert.Equal(t, KindUpstreamTimeout, res.Kind)
	assert.Equal(t, MessageTimeout, res.Envelope.Error)
}

func TestPipeline_CacheRoundTrip(t *testing.T) {
	t.Parallel()

	s := succeeding("static_html", model.ProductRecord{Name: "무선 마우스", Price: "15900", Source: model.SourceHTML})
	p := newPipeline(map[model.Vendor]Plan{model.VendorCoupang: {Strategies: []strategy.Strategy{s}}}, cache.NewMemory(time.Minute))

	first := p.Extract(context.Background(), coupangURL)
	require.True(t, first.OK())
	assert.False(t, first.Envelope.Debug.CacheHit)

	second := p.Extract(context.Background(), coupangURL)
	require.True(t, second.OK())
	assert.True(t, second.Envelope.Debug.CacheHit)
	assert.Equal(t, first.Envelope.Product, second.Envelope.Product)

	assert.EqualValues(t, 1, s.calls.Load(), "캐시 적중 시 전략을 다시 실행하지 않아야 합니다")
}

func TestPipeline_FailuresAreNotCached(t *testing.T) {
	t.Parallel()

	s := failing("static_html", strategy.ErrNoProductData)
	p := newPipeline(map[model.Vendor]Plan{model.VendorCoupang: {Strategies: []strategy.Strategy{s}}}, cache.NewMemory(time.Minute))

	p.Extract(context.Background(), coupangURL)
	res := p.Extract(context.Background(), coupangURL)

	assert.False(t, res.Envelope.Debug.CacheHit)
	assert.EqualValues(t, 2, s.calls.Load())
}

func TestPipeline_Deterministic(t *testing.T) {
	t.Parallel()

	s := succeeding("static_html", model.ProductRecord{Name: "책상", Price: "89000", Images: []string{"https://img/1.jpg"}, Source: model.SourceHTML})
	p := newPipeline(map[model.Vendor]Plan{model.VendorCoupang: {Strategies: []strategy.Strategy{s}}}, nil)

	a := p.Extract(context.Background(), coupangURL)
	b := p.Extract(context.Background(), coupangURL)
	assert.Equal(t, a.Envelope.Product, b.Envelope.Product)
	assert.EqualValues(t, 2, s.calls.Load(), "캐시가 없으면 매번 실행")
}

func TestPipeline_CoalescesConcurrentRequests(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	s := counting("slow", func(context.Context, strategy.Input) (*strategy.Output, error) {
		<-release
		return &strategy.Output{Product: model.ProductRecord{Name: "n"}}, nil
	})
	p := newPipeline(map[model.Vendor]Plan{model.VendorCoupang: {Strategies: []strategy.Strategy{s}}}, nil)

	const n = 5
	var (
		wg      sync.WaitGroup
		started sync.WaitGroup
		results = make([]Result, n)
	)
	started.Add(n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			started.Done()
			results[i] = p.Extract(context.Background(), coupangURL)
		}()
	}
	started.Wait()
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for _, r := range results {
		assert.True(t, r.OK())
	}
	assert.Less(t, s.calls.Load(), int32(n), "동시 요청은 추출을 공유해야 합니다")

	// 공유된 결과를 수정해도 다른 호출자에게 영향이 없어야 합니다.
	results[0].Envelope.Product.Name = "changed"
	assert.Equal(t, "n", results[1].Envelope.Product.Name)
}

func TestPipeline_VendorWithoutPlan(t *testing.T) {
	t.Parallel()

	p := newPipeline(map[model.Vendor]Plan{}, nil)
	res := p.Extract(context.Background(), naverURL)
	assert.Equal(t, KindUnsupported, res.Kind)
	assert.Equal(t, model.VendorNaver, res.Envelope.Vendor)
}

type netError struct{}

func (*netError) Error() string   { return "dial tcp: connection refused" }
func (*netError) Timeout() bool   { return false }
func (*netError) Temporary() bool { return false }
