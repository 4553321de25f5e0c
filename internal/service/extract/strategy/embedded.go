package strategy

import (
	"context"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/darkkaiser/product-extractor/internal/service/extract/model"
	"github.com/darkkaiser/product-extractor/internal/service/extract/scraper"
	"github.com/darkkaiser/product-extractor/internal/service/extract/selector"
	"github.com/darkkaiser/product-extractor/pkg/strutil"
	"github.com/tidwall/gjson"
)

// StateProfile 내장 상태 JSON 에서 상품 필드를 찾는 방법입니다. 각 필드는 후보 경로를 순서대로 시도합니다.
type StateProfile struct {
	// Markers 상태 JSON 을 할당하는 전역 변수 이름 (예: __PRELOADED_STATE__)
	Markers []string

	NamePaths     []string
	PricePaths    []string
	BrandPaths    []string
	CategoryPaths []string
	ImagePaths    []string
	DescPaths     []string

	ImageLimit int
}

// EmbeddedJSON 페이지 HTML 의 인라인 스크립트에서 전역 상태 JSON 을 찾아 상품 정보를 읽습니다.
type EmbeddedJSON struct {
	scraper *scraper.Scraper
	profile StateProfile
	headers http.Header
}

var _ Strategy = (*EmbeddedJSON)(nil)

// NewEmbeddedJSON 새로운 EmbeddedJSON 전략을 생성합니다.
func NewEmbeddedJSON(s *scraper.Scraper, profile StateProfile, headers http.Header) *EmbeddedJSON {
	return &EmbeddedJSON{scraper: s, profile: profile, headers: headers}
}

func (e *EmbeddedJSON) Name() string { return NameEmbeddedJSON }

func (e *EmbeddedJSON) Extract(ctx context.Context, in Input) (*Output, error) {
	page, err := e.scraper.FetchHTML(ctx, in.URL, e.headers)
	if err != nil {
		return nil, err
	}

	state, marker, err := FindState(page.Doc, e.profile.Markers)
	if err != nil {
		return nil, err
	}
	in.Trace.Step("내장 상태 JSON 발견: %s (%d bytes)", marker, len(state.Raw))

	product := e.profile.Product(state)
	if !product.Usable() {
		return &Output{Product: product}, ErrNoProductData
	}
	return &Output{Product: product}, nil
}

// Product 상태 JSON 에서 상품 정보를 읽습니다.
func (p StateProfile) Product(state gjson.Result) model.ProductRecord {
	product := model.ProductRecord{
		Name:        strutil.NormalizeSpaces(firstString(state, p.NamePaths)),
		Price:       selector.Price(firstString(state, p.PricePaths)),
		Brand:       strutil.NormalizeSpaces(firstString(state, p.BrandPaths)),
		Category:    strutil.NormalizeSpaces(firstString(state, p.CategoryPaths)),
		Description: strings.TrimSpace(firstString(state, p.DescPaths)),
		Source:      model.SourceJSON,
	}

	seen := make(map[string]struct{})
	for _, path := range p.ImagePaths {
		for _, v := range flatten(state.Get(path)) {
			v = selector.AbsoluteURL(v)
			if _, dup := seen[v]; dup {
				continue
			}
			seen[v] = struct{}{}
			product.Images = append(product.Images, v)
			if p.ImageLimit > 0 && len(product.Images) >= p.ImageLimit {
				return product
			}
		}
	}
	return product
}

// FindState 인라인 스크립트에서 marker 뒤에 처음으로 나오는 유효한 JSON 객체를 파싱합니다.
// marker 는 주어진 순서대로 시도하며, marker 는 있지만 유효한 JSON 이 하나도 없으면 ParsingFailed 에러를 반환합니다.
func FindState(doc *goquery.Document, markers []string) (gjson.Result, string, error) {
	if doc == nil {
		return gjson.Result{}, "", ErrStateNotFound
	}

	var scripts []string
	doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		if _, external := s.Attr("src"); !external {
			scripts = append(scripts, s.Text())
		}
	})

	// 참조만 하는 스크립트(if (window.__STATE__) ...)도 있으므로 유효한 JSON 이 나올 때까지 모든 등장 위치를 확인합니다.
	invalidMarker := ""
	for _, marker := range markers {
		for _, body := range scripts {
			for from := 0; ; {
				idx := strings.Index(body[from:], marker)
				if idx < 0 {
					break
				}
				from += idx + len(marker)

				raw, ok := jsonObjectAt(body, from)
				if ok && gjson.Valid(raw) {
					return gjson.Parse(raw), marker, nil
				}
				if invalidMarker == "" {
					invalidMarker = marker
				}
			}
		}
	}

	if invalidMarker != "" {
		return gjson.Result{}, invalidMarker, newErrInvalidState(invalidMarker)
	}
	return gjson.Result{}, "", ErrStateNotFound
}

// jsonObjectAt from 이후 처음 나오는 '{' 부터 짝이 맞는 '}' 까지를 반환합니다. 문자열 안의 괄호는 무시합니다.
func jsonObjectAt(s string, from int) (string, bool) {
	start := strings.IndexByte(s[from:], '{')
	if start < 0 {
		return "", false
	}
	start += from

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

func firstString(state gjson.Result, paths []string) string {
	for _, path := range paths {
		r := state.Get(path)
		if !r.Exists() || r.IsObject() || r.IsArray() {
			continue
		}
		if v := strings.TrimSpace(r.String()); v != "" {
			return v
		}
	}
	return ""
}

func flatten(r gjson.Result) []string {
	if !r.Exists() {
		return nil
	}
	if !r.IsArray() {
		if v := strings.TrimSpace(r.String()); v != "" && !r.IsObject() {
			return []string{v}
		}
		return nil
	}

	var values []string
	for _, item := range r.Array() {
		values = append(values, flatten(item)...)
	}
	return values
}
