package naver

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/PuerkitoBio/goquery"
	apperrors "github.com/darkkaiser/product-extractor/internal/pkg/errors"
	"github.com/darkkaiser/product-extractor/internal/service/extract/fetcher"
	"github.com/darkkaiser/product-extractor/internal/service/extract/model"
	"github.com/darkkaiser/product-extractor/internal/service/extract/scraper"
	"github.com/darkkaiser/product-extractor/internal/service/extract/session"
	"github.com/darkkaiser/product-extractor/internal/service/extract/strategy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

const (
	productJSON = `{"product":{"name":"  유기농 현미 4kg ","salePrice":32000,"discountedSalePrice":28800,
"naverShoppingSearchInfo":{"brandName":"논두렁"},"category":{"wholeCategoryName":"식품>쌀>현미"},
"productImages":[{"url":"https://shop-phinf/1.jpg"},{"url":"https://shop-phinf/2.jpg"}],
"detailContent":{"detailContentText":"<p>햅쌀 <b>100%</b></p>"}}}`

	reviewsJSON = `{"contents":[
{"writerMemberId":"abc***","reviewScore":5,"reviewContent":"밥맛이 좋아요","createDate":"2025-10-01",
 "reviewAttaches":[{"attachUrl":"https://review-phinf/1.jpg"}]},
{"writerMemberId":"empty***","reviewScore":1,"reviewContent":"   "}]}`

	qnasJSON = `{"qnas":[{"question":"도정일이 언제인가요?","answer":{"content":"주문 후 도정합니다"},"author":{"name":"kim***"},"createdAt":"2025-09-30"},
{"question":"","answer":"빈 질문"}]}`
)

// fakeStore 스마트스토어 내부 API 를 흉내 내는 테스트 서버입니다.
type fakeStore struct {
	productStatus atomic.Int64
	reviewsStatus atomic.Int64
	qnasStatus    atomic.Int64

	calls atomic.Int64

	mu      sync.Mutex
	headers []http.Header
}

func newFakeStore() *fakeStore {
	s := &fakeStore{}
	s.productStatus.Store(http.StatusOK)
	s.reviewsStatus.Store(http.StatusOK)
	s.qnasStatus.Store(http.StatusOK)
	return s
}

func (s *fakeStore) handler() http.Handler {
	write := func(status *atomic.Int64, body string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			s.calls.Add(1)
			s.mu.Lock()
			s.headers = append(s.headers, r.Header.Clone())
			s.mu.Unlock()

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(int(status.Load()))
			_, _ = io.WriteString(w, body)
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/i/v2/channels/ch-1/products/5012345678", write(&s.productStatus, productJSON))
	mux.HandleFunc("/i/v2/reviews/5012345678", write(&s.reviewsStatus, reviewsJSON))
	mux.HandleFunc("/i/v2/qnas/5012345678", write(&s.qnasStatus, qnasJSON))
	return mux
}

type stubRefresher struct {
	calls   atomic.Int64
	onCall  func()
	outcome session.Outcome
}

func (r *stubRefresher) Refresh(context.Context, string) (session.Outcome, error) {
	r.calls.Add(1)
	if r.onCall != nil {
		r.onCall()
	}
	return r.outcome, nil
}

type responseDumper struct {
	mu    sync.Mutex
	names []string
}

func (d *responseDumper) Page(string, string)           {}
func (d *responseDumper) Frame(string, int, string)     {}
func (d *responseDumper) Screenshot(string, []byte)     {}
func (d *responseDumper) Response(name string, _ []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.names = append(d.names, name)
}

func setupAPI(t *testing.T, store *fakeStore, refresher Refresher, dumper strategy.Dumper) *API {
	t.Helper()

	srv := httptest.NewServer(store.handler())
	t.Cleanup(srv.Close)

	return NewAPI(scraper.New(fetcher.New(fetcher.Config{})), refresher, dumper, APIConfig{
		BaseURL:     srv.URL + "/",
		Headers:     APIHeaders(HeaderConfig{AcceptLanguage: "ko-KR"}),
		ReviewLimit: 10,
		QALimit:     10,
		ImageLimit:  10,
	})
}

func input() strategy.Input {
	return strategy.Input{
		URL:   "https://smartstore.naver.com/rice/products/5012345678",
		IDs:   model.VendorIdentifiers{Vendor: model.VendorNaver, ProductID: "5012345678", ChannelID: "ch-1"},
		Trace: model.NewTrace(),
	}
}

func endpointNames(endpoints []model.EndpointResult) []string {
	names := make([]string, 0, len(endpoints))
	for _, e := range endpoints {
		names = append(names, e.Name)
	}
	return names
}

func TestAPI_Extract(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	dumper := &responseDumper{}
	api := setupAPI(t, store, nil, dumper)
	in := input()

	out, err := api.Extract(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, model.ProductRecord{
		Name:        "유기농 현미 4kg",
		Price:       "28800",
		Brand:       "논두렁",
		Category:    "식품>쌀>현미",
		Images:      []string{"https://shop-phinf/1.jpg", "https://shop-phinf/2.jpg"},
		Description: "햅쌀 100%",
		Source:      model.SourceAPI,
	}, out.Product)

	assert.Equal(t, []model.ReviewRecord{{
		Author:  "abc***",
		Rating:  "5",
		Content: "밥맛이 좋아요",
		Date:    "2025-10-01",
		Images:  []string{"https://review-phinf/1.jpg"},
	}}, out.Reviews, "내용이 비어있는 리뷰는 제외되어야 합니다")

	assert.Equal(t, []model.QARecord{{
		Question: "도정일이 언제인가요?",
		Answer:   "주문 후 도정합니다",
		Author:   "kim***",
		Date:     "2025-09-30",
	}}, out.QA)

	debug := in.Trace.Snapshot()
	assert.ElementsMatch(t, []string{EndpointProduct, EndpointReviews, EndpointQA}, endpointNames(debug.Endpoints))
	for _, e := range debug.Endpoints {
		assert.True(t, e.OK)
		assert.Equal(t, http.StatusOK, e.Status)
	}
	assert.ElementsMatch(t, []string{"naver 5012345678 product", "naver 5012345678 reviews", "naver 5012345678 qa"}, dumper.names)

	store.mu.Lock()
	defer store.mu.Unlock()
	for _, h := range store.headers {
		assert.Equal(t, DefaultClientVersion, h.Get("X-Client-Version"))
		assert.Equal(t, in.URL, h.Get("Referer"))
		assert.Equal(t, "ko-KR", h.Get("Accept-Language"))
	}
}

func TestAPI_Extract_PartialFailure(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.reviewsStatus.Store(http.StatusInternalServerError)
	api := setupAPI(t, store, nil, nil)
	in := input()

	out, err := api.Extract(context.Background(), in)
	require.NoError(t, err, "리뷰 호출 실패가 상품 결과를 막으면 안 됩니다")
	assert.Equal(t, "28800", out.Product.Price)
	assert.Empty(t, out.Reviews)
	assert.Len(t, out.QA, 1)

	debug := in.Trace.Snapshot()
	require.Len(t, debug.Endpoints, 3)
	for _, e := range debug.Endpoints {
		if e.Name == EndpointReviews {
			assert.False(t, e.OK)
			assert.Equal(t, http.StatusInternalServerError, e.Status)
			assert.NotEmpty(t, e.Error)
		} else {
			assert.True(t, e.OK)
		}
	}
	require.Len(t, debug.Errors, 1)
	assert.True(t, strings.HasPrefix(debug.Errors[0], "naver.api.reviews"))
}

func TestAPI_Extract_ProductFailureKeepsReviews(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.productStatus.Store(http.StatusNotFound)
	api := setupAPI(t, store, nil, nil)

	out, err := api.Extract(context.Background(), input())
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, fetcher.StatusCode(err))
	require.NotNil(t, out)
	assert.False(t, out.Usable())
	assert.Len(t, out.Reviews, 1)
	assert.Len(t, out.QA, 1)
}

func TestAPI_Extract_RefreshesOnAuthFailure(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.productStatus.Store(http.StatusUnauthorized)
	refresher := &stubRefresher{
		outcome: session.OutcomeRefreshed,
		onCall:  func() { store.productStatus.Store(http.StatusOK) },
	}
	api := setupAPI(t, store, refresher, nil)
	in := input()

	out, err := api.Extract(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, model.SourceAPI, out.Product.Source)

	assert.EqualValues(t, 1, refresher.calls.Load())
	assert.EqualValues(t, 4, store.calls.Load(), "인증 실패한 상품 API 만 다시 호출해야 합니다")
	assert.Len(t, in.Trace.Snapshot().Endpoints, 4)
}

func TestAPI_Extract_NoRetryWhenRefreshFails(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.productStatus.Store(http.StatusForbidden)
	refresher := &stubRefresher{outcome: session.OutcomeFailed}
	api := setupAPI(t, store, refresher, nil)

	_, err := api.Extract(context.Background(), input())
	require.Error(t, err)
	assert.EqualValues(t, 1, refresher.calls.Load())
	assert.EqualValues(t, 3, store.calls.Load())
}

func TestAPI_Extract_WithoutChannelID(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	api := setupAPI(t, store, nil, nil)
	in := input()
	in.IDs.ChannelID = ""

	out, err := api.Extract(context.Background(), in)
	assert.Nil(t, out)
	assert.ErrorIs(t, err, ErrChannelIDRequired)
	assert.True(t, apperrors.Is(err, apperrors.NotFound))
	assert.Zero(t, store.calls.Load(), "channelId 가 없으면 네트워크 호출을 하지 않아야 합니다")
}

func TestReviews(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		json string
		want []model.ReviewRecord
	}{
		{
			name: "reviews 배열과 작성자 객체",
			json: `{"reviews":[{"author":{"name":"lee***"},"rating":4.5,"content":"괜찮아요","createdAt":"2025-01-02","images":[{"url":"a.jpg"},{"url":""}]}]}`,
			want: []model.ReviewRecord{{Author: "lee***", Rating: "4.5", Content: "괜찮아요", Date: "2025-01-02", Images: []string{"a.jpg"}}},
		},
		{
			name: "목록 없음",
			json: `{"totalElements":0}`,
			want: []model.ReviewRecord{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Reviews(gjson.Parse(tt.json))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTable_ProductPage(t *testing.T) {
	t.Parallel()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<html><head>
<title>유기농 현미 : 논두렁 스토어</title>
<meta property="og:image" content="//shop-phinf/og.jpg">
</head><body>
<div class="breadcrumb"><a>식품</a><a>쌀</a></div>
<div class="product_price_area"><span class="price">28,800<em>원</em></span></div>
<div class="review_list"><ul><li><span class="author">a***</span><span class="review_content">좋아요</span></li></ul></div>
</body></html>`))
	require.NoError(t, err)

	table := Table()
	product := table.ProductRecord(doc)
	assert.Equal(t, "유기농 현미 : 논두렁 스토어", product.Name, "상품명 선택자가 모두 실패하면 <title> 을 사용합니다")
	assert.Equal(t, "28800", product.Price)
	assert.Equal(t, "식품 > 쌀", product.Category)
	assert.Equal(t, []string{"https://shop-phinf/og.jpg"}, product.Images)

	reviews := table.ReviewList(doc)
	require.Len(t, reviews, 1)
	assert.Equal(t, "좋아요", reviews[0].Content)
}

func TestAPIHeaders(t *testing.T) {
	t.Parallel()

	h := APIHeaders(HeaderConfig{})
	assert.Equal(t, "application/json, text/plain, */*", h.Get("Accept"))
	assert.Equal(t, DefaultClientVersion, h.Get("X-Client-Version"))
	assert.Empty(t, h.Get("Accept-Language"))

	h = APIHeaders(HeaderConfig{Accept: "application/json", ClientVersion: "1"})
	assert.Equal(t, "application/json", h.Get("Accept"))
	assert.Equal(t, "1", h.Get("X-Client-Version"))
}
