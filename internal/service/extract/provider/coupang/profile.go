package coupang

import (
	"net/http"

	"github.com/darkkaiser/product-extractor/internal/service/extract/selector"
	"github.com/darkkaiser/product-extractor/internal/service/extract/strategy"
)

// Table 쿠팡 상품 페이지(/vp/products/...)의 선택자 테이블입니다. 호출할 때마다 새 값을 반환합니다.
func Table() *selector.Table {
	return &selector.Table{
		Product: []selector.Rule{
			{
				Field: selector.FieldName,
				Selectors: []string{
					"h1.prod-buy-header__title", ".prod-buy-header__title", "h1", ".product-title",
					`[data-testid="product-title"]`,
				},
			},
			{
				Field: selector.FieldPrice,
				Selectors: []string{
					".total-price strong", ".prod-price .total-price", ".total-price", ".price", ".sale-price",
					".prod-price", `[data-testid="price"]`,
				},
				Post: selector.Price,
			},
			{
				Field:     selector.FieldBrand,
				Selectors: []string{".prod-brand-name", ".brand-name", ".product-brand", `[data-testid="brand"]`},
			},
			{
				Field:     selector.FieldCategory,
				Selectors: []string{".breadcrumb a", ".category-path a"},
				Join:      " > ",
			},
			{
				Field:     selector.FieldDescription,
				Selectors: []string{".prod-description", ".product-description", ".detail-content", ".product-detail"},
				Mode:      selector.ModeHTML,
			},
		},
		Images: selector.ListRule{
			Selectors: []string{".prod-image img", ".image img", ".product-image img", ".prod-img img"},
			Attrs:     []string{"src", "data-src", "data-lazy"},
			Skip:      []string{"placeholder", "blank"},
			Post:      selector.AbsoluteURL,
		},
		Reviews: selector.ItemRule{
			Containers: []string{".sdp-review__article__list", ".js_reviewArticleReviewList", ".review_item", `[data-testid="review"]`},
			Fields: []selector.Rule{
				{Field: selector.FieldAuthor, Selectors: []string{".sdp-review__article__list__info__user__name", ".review_author", ".author"}},
				{
					Field:     selector.FieldRating,
					Selectors: []string{".sdp-review__article__list__info__product-info__star-orange"},
					Mode:      selector.ModeAttr,
					Attr:      "data-rating",
				},
				{Field: selector.FieldDate, Selectors: []string{".sdp-review__article__list__info__product-info__reg-date", ".review_date", ".date"}},
				{Field: selector.FieldContent, Selectors: []string{".sdp-review__article__list__review__content", ".review_content", ".content"}},
			},
			Required: selector.FieldContent,
		},
		QA: selector.ItemRule{
			Containers: []string{".prod-inquiry-items", ".prod-inquiry-list__item", ".qa_item", `[data-testid="qa"]`},
			Fields: []selector.Rule{
				{Field: selector.FieldQuestion, Selectors: []string{".prod-inquiry-item__content", ".question", ".qa_question"}},
				{Field: selector.FieldAnswer, Selectors: []string{".prod-inquiry-item__reply .prod-inquiry-item__content", ".prod-inquiry-item__reply", ".answer", ".qa_answer"}},
				{Field: selector.FieldDate, Selectors: []string{".prod-inquiry-item__time"}},
			},
			Required: selector.FieldQuestion,
		},
		ReviewTab: selector.TabRule{
			Selectors: []string{`li[name="review"]`, `a[href*="review"]`, `button[data-tab="review"]`},
			Texts:     []string{"상품평", "리뷰"},
		},
		QATab: selector.TabRule{
			Selectors: []string{`li[name="qna"]`, `a[href*="qna"]`, `button[data-tab="qa"]`},
			Texts:     []string{"상품문의", "Q&A", "문의"},
		},
	}
}

// StateProfile 쿠팡 상품 페이지에 내장된 상태 JSON 의 상품 필드 경로입니다.
func StateProfile() strategy.StateProfile {
	return strategy.StateProfile{
		Markers:       []string{"__INITIAL_STATE__", "__APOLLO_STATE__"},
		NamePaths:     []string{"product.productName", "product.itemName", "product.name", "productName"},
		PricePaths:    []string{"product.price.finalPrice", "product.salePrice", "product.price", "salePrice"},
		BrandPaths:    []string{"product.brandName", "brandName"},
		CategoryPaths: []string{"product.categoryName", "categoryName"},
		ImagePaths:    []string{"product.images.#.origin", "product.images.#.url", "product.productImage"},
	}
}

// apiProductProfile 파트너스 Open API 상품 상세 응답의 상품 필드 경로입니다.
func apiProductProfile() strategy.StateProfile {
	return strategy.StateProfile{
		NamePaths:     []string{"data.productName", "data.0.productName"},
		PricePaths:    []string{"data.productPrice", "data.0.productPrice"},
		BrandPaths:    []string{"data.brandName", "data.0.brandName"},
		CategoryPaths: []string{"data.categoryName", "data.0.categoryName"},
		ImagePaths:    []string{"data.productImage", "data.0.productImage"},
	}
}

// PageHeaders 상품 페이지 요청 헤더입니다. Referer/Origin 이 없으면 쿠팡이 차단 페이지를 돌려줍니다.
func PageHeaders(acceptLanguage string) http.Header {
	h := http.Header{}
	h.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	if acceptLanguage != "" {
		h.Set("Accept-Language", acceptLanguage)
	}
	h.Set("Referer", "https://www.coupang.com/")
	h.Set("Origin", "https://www.coupang.com")
	h.Set("Cache-Control", "max-age=0")
	h.Set("Upgrade-Insecure-Requests", "1")
	return h
}
