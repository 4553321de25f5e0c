package strategy

import (
	"context"
	"net/http"

	"github.com/darkkaiser/product-extractor/internal/service/extract/model"
	"github.com/darkkaiser/product-extractor/internal/service/extract/scraper"
	"github.com/darkkaiser/product-extractor/internal/service/extract/selector"
)

// StaticHTML 단일 GET 응답에 선택자 테이블을 적용합니다.
// 스크립트 실행이나 탭 클릭이 필요한 필드는 얻을 수 없으므로 마지막 수단으로 사용합니다.
type StaticHTML struct {
	scraper *scraper.Scraper
	table   *selector.Table
	headers http.Header
}

var _ Strategy = (*StaticHTML)(nil)

// NewStaticHTML 새로운 StaticHTML 전략을 생성합니다.
func NewStaticHTML(s *scraper.Scraper, table *selector.Table, headers http.Header) *StaticHTML {
	return &StaticHTML{scraper: s, table: table, headers: headers}
}

func (s *StaticHTML) Name() string { return NameStaticHTML }

func (s *StaticHTML) Extract(ctx context.Context, in Input) (*Output, error) {
	page, err := s.scraper.FetchHTML(ctx, in.URL, s.headers)
	if err != nil {
		return nil, err
	}
	in.Trace.Step("정적 HTML 수신 (status=%d, %d bytes)", page.Status, len(page.Raw))

	out := &Output{
		Product: s.table.ProductRecord(page.Doc),
		Reviews: s.table.ReviewList(page.Doc),
		QA:      s.table.QAList(page.Doc),
	}
	out.Product.Source = model.SourceHTML

	if !out.Usable() {
		return out, ErrNoProductData
	}
	return out, nil
}
