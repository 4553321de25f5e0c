// Package naver 네이버 스마트스토어 전용 추출 설정(선택자 테이블, 내장 상태 경로, 요청 헤더)과
// 내부 API 전략을 제공합니다.
package naver

import (
	"net/http"

	"github.com/darkkaiser/product-extractor/internal/service/extract/selector"
	"github.com/darkkaiser/product-extractor/internal/service/extract/strategy"
	"github.com/darkkaiser/product-extractor/pkg/strutil"
)

// DefaultClientVersion 내부 API 가 요구하는 x-client-version 헤더의 기본값입니다.
const DefaultClientVersion = "20251016170128"

// Table 스마트스토어 상품 페이지의 선택자 테이블입니다. 호출할 때마다 새 값을 반환합니다.
func Table() *selector.Table {
	return &selector.Table{
		Product: []selector.Rule{
			{
				Field: selector.FieldName,
				Selectors: []string{
					"h1", "h3._1SY6k", `[data-testid="product-title"]`, ".product_title", ".productName",
					".goods_name", ".product_name", ".product_title_text", ".product_name_text",
					".product_info h1", ".product_detail h1", ".product_name_area h1", ".product_title_area h1",
					".product_name_area h3", ".product_title_area h3",
				},
			},
			{
				Field: selector.FieldPrice,
				Selectors: []string{
					".price", ".product_price", ".goods_price", `[data-testid="price"]`, ".price_value",
					".price_text", ".price_number", ".product_price_text", ".price_area .price",
					".product_price_area .price", ".price_area", ".product_price_area",
				},
				Post: selector.Price,
			},
			{
				Field:     selector.FieldBrand,
				Selectors: []string{".brand_name", ".product_brand", `[data-testid="brand"]`},
			},
			{
				Field:     selector.FieldCategory,
				Selectors: []string{".breadcrumb a", ".category_path a"},
				Join:      " > ",
			},
			{
				Field: selector.FieldDescription,
				Selectors: []string{
					".product_summary", ".goods_summary", ".product_description", ".goods_description",
					".product_info", ".product_detail", ".product_summary_text", ".product_description_text",
				},
			},
		},
		Images: selector.ListRule{
			Selectors: []string{`meta[property="og:image"]`, ".product_image img", ".image_area img", ".thumbnail img"},
			Attrs:     []string{"content", "src", "data-src", "data-lazy"},
			Skip:      []string{"placeholder", "blank"},
			Post:      selector.AbsoluteURL,
		},
		TitleFallback: true,
		Reviews: selector.ItemRule{
			Containers: []string{".review_item", ".review_list li", ".review_content", `[data-testid="review"]`},
			Fields: []selector.Rule{
				{Field: selector.FieldAuthor, Selectors: []string{".review_author", ".author", ".reviewer"}},
				{Field: selector.FieldRating, Selectors: []string{".rating", ".star_rating", ".review_rating"}},
				{Field: selector.FieldDate, Selectors: []string{".review_date", ".date", ".review_time"}},
				{Field: selector.FieldContent, Selectors: []string{".review_content", ".content", ".review_text"}},
			},
			Required: selector.FieldContent,
		},
		QA: selector.ItemRule{
			Containers: []string{".qa_item", ".qa_list li", ".qa_content", `[data-testid="qa"]`},
			Fields: []selector.Rule{
				{Field: selector.FieldQuestion, Selectors: []string{".question", ".qa_question", ".q_text"}},
				{Field: selector.FieldAnswer, Selectors: []string{".answer", ".qa_answer", ".a_text"}},
			},
			Required: selector.FieldQuestion,
		},
		ReviewTab: selector.TabRule{
			Selectors: []string{`a[href*="review"]`, `button[data-tab="review"]`, ".tab_review", ".review_tab"},
			Texts:     []string{"리뷰"},
		},
		QATab: selector.TabRule{
			Selectors: []string{`a[href*="qa"]`, `button[data-tab="qa"]`, ".tab_qa", ".qa_tab"},
			Texts:     []string{"Q&A", "문의"},
		},
	}
}

// StateProfile 상품 페이지에 내장된 상태 JSON(__PRELOADED_STATE__ 등)의 상품 필드 경로입니다.
func StateProfile() strategy.StateProfile {
	return strategy.StateProfile{
		Markers: []string{"__PRELOADED_STATE__", "__INITIAL_STATE__", "__APOLLO_STATE__"},
		NamePaths: []string{
			"product.A.name",
			"simpleProductForDetailPage.A.name",
			"product.name",
			"productName",
			"name",
		},
		PricePaths: []string{
			"product.A.discountedSalePrice",
			"product.A.salePrice",
			"simpleProductForDetailPage.A.discountedSalePrice",
			"product.salePrice",
			"price",
		},
		BrandPaths:    []string{"product.A.naverShoppingSearchInfo.brandName", "product.brandName"},
		CategoryPaths: []string{"product.A.category.wholeCategoryName", "product.categoryName"},
		ImagePaths:    []string{"product.A.productImages.#.url", "product.A.representImage.url"},
	}
}

// apiProductProfile 내부 상품 API 응답의 상품 필드 경로입니다.
func apiProductProfile() strategy.StateProfile {
	return strategy.StateProfile{
		NamePaths:     []string{"product.name", "product.productName", "name", "productName"},
		PricePaths:    []string{"product.discountedSalePrice", "product.salePrice", "discountedSalePrice", "salePrice"},
		BrandPaths:    []string{"product.naverShoppingSearchInfo.brandName", "product.brandName", "brandName"},
		CategoryPaths: []string{"product.category.wholeCategoryName", "product.categoryName", "categoryName"},
		ImagePaths:    []string{"product.productImages.#.url", "product.representImage.url", "product.representativeImageUrl"},
		DescPaths:     []string{"product.detailContent.detailContentText", "product.detailContent", "detailContent"},
	}
}

// HeaderConfig 내부 API 요청 헤더 값입니다.
type HeaderConfig struct {
	Accept         string
	AcceptLanguage string
	ClientVersion  string
}

// APIHeaders 내부 API 요청에 공통으로 붙는 헤더입니다. 쿠키와 User-Agent 는 세션에서 주입됩니다.
func APIHeaders(cfg HeaderConfig) http.Header {
	h := http.Header{}
	h.Set("Accept", strutil.FirstNonEmpty(cfg.Accept, "application/json, text/plain, */*"))
	if cfg.AcceptLanguage != "" {
		h.Set("Accept-Language", cfg.AcceptLanguage)
	}
	h.Set("X-Client-Version", strutil.FirstNonEmpty(cfg.ClientVersion, DefaultClientVersion))
	return h
}

// PageHeaders 상품 페이지 HTML 요청 헤더입니다.
func PageHeaders(cfg HeaderConfig) http.Header {
	h := http.Header{}
	h.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	if cfg.AcceptLanguage != "" {
		h.Set("Accept-Language", cfg.AcceptLanguage)
	}
	return h
}
