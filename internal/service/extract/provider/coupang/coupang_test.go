package coupang

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	apperrors "github.com/darkkaiser/product-extractor/internal/pkg/errors"
	"github.com/darkkaiser/product-extractor/internal/service/extract/fetcher"
	"github.com/darkkaiser/product-extractor/internal/service/extract/model"
	"github.com/darkkaiser/product-extractor/internal/service/extract/scraper"
	"github.com/darkkaiser/product-extractor/internal/service/extract/strategy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSign(t *testing.T) {
	t.Parallel()

	// 쿠팡 파트너스 문서의 서명 방식으로 계산한 값
	got := Sign("secret", "250102T030405Z", "GET", "/v2/providers/affiliate_open_api/apis/openapi/products/123", "")
	assert.Len(t, got, 64)
	assert.Regexp(t, `^[0-9a-f]{64}$`, got)

	assert.Equal(t, got, Sign("secret", "250102T030405Z", "GET", "/v2/providers/affiliate_open_api/apis/openapi/products/123", ""), "같은 입력은 같은 서명이어야 합니다")
	assert.NotEqual(t, got, Sign("other", "250102T030405Z", "GET", "/v2/providers/affiliate_open_api/apis/openapi/products/123", ""))
	assert.NotEqual(t, got, Sign("secret", "250102T030406Z", "GET", "/v2/providers/affiliate_open_api/apis/openapi/products/123", ""))
	assert.NotEqual(t, got, Sign("secret", "250102T030405Z", "GET", "/v2/providers/affiliate_open_api/apis/openapi/products/123", "subId=a"))
}

func TestSign_KnownVector(t *testing.T) {
	t.Parallel()

	// RFC 4231 test case 2: key "Jefe", data "what do ya want for nothing?"
	got := Sign("Jefe", "what do ya want ", "for ", "nothing", "?")
	assert.Equal(t, "5bdcc146bf60754e6a042426089575c75a003f089d2739839dec58b964ec3843", got)
}

func TestSignedDate(t *testing.T) {
	t.Parallel()

	kst := time.FixedZone("KST", 9*60*60)
	assert.Equal(t, "250102T030405Z", SignedDate(time.Date(2025, 1, 2, 12, 4, 5, 0, kst)))
}

func TestSigner_Authorization(t *testing.T) {
	t.Parallel()

	assert.Nil(t, NewSigner("", "secret"))
	assert.Nil(t, NewSigner("access", ""))

	s := NewSigner("access", "secret")
	s.now = func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }

	got := s.Authorization(http.MethodGet, "/v2/path", "")
	want := "CEA algorithm=HmacSHA256, access-key=access, signed-date=250102T030405Z, signature=" +
		Sign("secret", "250102T030405Z", http.MethodGet, "/v2/path", "")
	assert.Equal(t, want, got)
}

var authorizationPattern = regexp.MustCompile(`^CEA algorithm=HmacSHA256, access-key=access, signed-date=(\d{6}T\d{6}Z), signature=([0-9a-f]{64})$`)

func setupAPI(t *testing.T, status int, body string) (*API, *atomic.Int64, *atomic.Value) {
	t.Helper()

	var calls atomic.Int64
	var auth atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		auth.Store(r.Header.Get("Authorization"))

		if r.URL.Path != productPathPrefix+"7654321" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	api := NewAPI(scraper.New(fetcher.New(fetcher.Config{})), NewSigner("access", "secret"), nil, APIConfig{BaseURL: srv.URL, ImageLimit: 5})
	return api, &calls, &auth
}

func input() strategy.Input {
	return strategy.Input{
		URL:   "https://www.coupang.com/vp/products/7654321",
		IDs:   model.VendorIdentifiers{Vendor: model.VendorCoupang, ProductID: "7654321"},
		Trace: model.NewTrace(),
	}
}

func TestAPI_Extract(t *testing.T) {
	t.Parallel()

	api, calls, auth := setupAPI(t, http.StatusOK, `{"rCode":"0","rMessage":"","data":{
"productName":"무선 마우스","productPrice":15900,"productImage":"https://thumbnail.coupangcdn.com/1.jpg","categoryName":"컴퓨터"}}`)
	in := input()

	out, err := api.Extract(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, model.ProductRecord{
		Name:     "무선 마우스",
		Price:    "15900",
		Category: "컴퓨터",
		Images:   []string{"https://thumbnail.coupangcdn.com/1.jpg"},
		Source:   model.SourceDirect,
	}, out.Product)

	assert.EqualValues(t, 1, calls.Load())
	m := authorizationPattern.FindStringSubmatch(auth.Load().(string))
	require.NotNil(t, m, "Authorization 헤더 형식이 올바르지 않습니다: %s", auth.Load())
	assert.Equal(t, Sign("secret", m[1], http.MethodGet, productPathPrefix+"7654321", ""), m[2])

	endpoints := in.Trace.Snapshot().Endpoints
	require.Len(t, endpoints, 1)
	assert.Equal(t, EndpointProduct, endpoints[0].Name)
	assert.True(t, endpoints[0].OK)
}

func TestAPI_Extract_Rejected(t *testing.T) {
	t.Parallel()

	api, _, _ := setupAPI(t, http.StatusOK, `{"rCode":"401","rMessage":"Invalid signature"}`)

	out, err := api.Extract(context.Background(), input())
	assert.Nil(t, out)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ExecutionFailed))
	assert.Contains(t, err.Error(), "Invalid signature")
}

func TestAPI_Extract_HTTPError(t *testing.T) {
	t.Parallel()

	api, _, _ := setupAPI(t, http.StatusUnauthorized, `{"code":"ERROR"}`)
	in := input()

	_, err := api.Extract(context.Background(), in)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, fetcher.StatusCode(err))

	endpoints := in.Trace.Snapshot().Endpoints
	require.Len(t, endpoints, 1)
	assert.False(t, endpoints[0].OK)
	assert.Equal(t, http.StatusUnauthorized, endpoints[0].Status)
}

func TestAPI_Extract_WithoutCredentials(t *testing.T) {
	t.Parallel()

	api := NewAPI(scraper.New(fetcher.New(fetcher.Config{})), NewSigner("", ""), nil, APIConfig{})
	in := input()

	out, err := api.Extract(context.Background(), in)
	assert.Nil(t, out)
	assert.ErrorIs(t, err, ErrCredentialsMissing)
	assert.Empty(t, in.Trace.Snapshot().Endpoints, "키가 없으면 호출하지 않아야 합니다")
	assert.Contains(t, in.Trace.Snapshot().Steps, "쿠팡 Open API 키가 없어 공식 API 를 건너뜁니다")
}

func TestTable_ProductPage(t *testing.T) {
	t.Parallel()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<html><body>
<h1 class="prod-buy-header__title"> 무선   마우스 </h1>
<div class="prod-price"><span class="total-price"><strong>15,900원</strong></span></div>
<a class="prod-brand-name">로지텍</a>
<ul class="breadcrumb"><li><a>쿠팡 홈</a></li><li><a>컴퓨터</a></li><li><a>마우스</a></li></ul>
<div class="prod-image">
  <img src="//thumbnail.coupangcdn.com/1.jpg">
  <img src="https://static.coupangcdn.com/placeholder.png" data-src="ignored">
  <img data-src="//thumbnail.coupangcdn.com/2.jpg">
  <img src="//thumbnail.coupangcdn.com/1.jpg">
</div>
<article class="sdp-review__article__list">
  <span class="sdp-review__article__list__info__user__name">박**</span>
  <div class="sdp-review__article__list__info__product-info__star-orange" data-rating="5"></div>
  <div class="sdp-review__article__list__review__content">손에 잘 맞아요</div>
</article>
</body></html>`))
	require.NoError(t, err)

	table := Table()
	product := table.ProductRecord(doc)
	assert.Equal(t, "무선 마우스", product.Name)
	assert.Equal(t, "15900", product.Price)
	assert.Equal(t, "로지텍", product.Brand)
	assert.Equal(t, "쿠팡 홈 > 컴퓨터 > 마우스", product.Category)
	assert.Equal(t, []string{"https://thumbnail.coupangcdn.com/1.jpg", "https://thumbnail.coupangcdn.com/2.jpg"}, product.Images)

	assert.Equal(t, []model.ReviewRecord{{Author: "박**", Rating: "5", Content: "손에 잘 맞아요"}}, table.ReviewList(doc))
	assert.Empty(t, table.QAList(doc))
}

func TestPageHeaders(t *testing.T) {
	t.Parallel()

	h := PageHeaders("ko-KR")
	assert.Equal(t, "https://www.coupang.com/", h.Get("Referer"))
	assert.Equal(t, "https://www.coupang.com", h.Get("Origin"))
	assert.Equal(t, "ko-KR", h.Get("Accept-Language"))
}
