package strategy

import (
	"context"
	"time"

	"github.com/darkkaiser/product-extractor/internal/service/extract/browser"
	"github.com/darkkaiser/product-extractor/internal/service/extract/model"
	"github.com/darkkaiser/product-extractor/internal/service/extract/scraper"
	"github.com/darkkaiser/product-extractor/internal/service/extract/selector"
	applog "github.com/darkkaiser/product-extractor/pkg/log"
)

const component = "extract.strategy"

// HeadlessConfig 헤드리스 브라우저 전략 설정입니다.
type HeadlessConfig struct {
	// SettleDelay 페이지 이동 후 동적 콘텐츠를 기다리는 시간
	SettleDelay time.Duration

	// ScrollCount 지연 로딩을 유발하기 위해 스크롤하는 횟수, ScrollDelay 는 스크롤 사이의 대기 시간
	ScrollCount int
	ScrollDelay time.Duration

	// TabDelay 리뷰/문의 탭을 누른 뒤 기다리는 시간
	TabDelay time.Duration
}

// DefaultHeadlessConfig 기본 대기 시간입니다.
func DefaultHeadlessConfig() HeadlessConfig {
	return HeadlessConfig{
		SettleDelay: 3 * time.Second,
		ScrollCount: 3,
		ScrollDelay: time.Second,
		TabDelay:    2 * time.Second,
	}
}

// PageOptionsFunc 요청마다 브라우저 컨텍스트 옵션(UA, 쿠키 등)을 만듭니다.
type PageOptionsFunc func() browser.PageOptions

// Headless 헤드리스 브라우저로 페이지를 렌더링한 뒤 선택자 테이블로 필드를 추출합니다.
// 리뷰/문의는 탭을 눌러 본 뒤 다시 DOM 을 읽습니다.
type Headless struct {
	browser     browser.Browser
	table       *selector.Table
	pageOptions PageOptionsFunc
	dumper      Dumper
	cfg         HeadlessConfig
}

var _ Strategy = (*Headless)(nil)

// NewHeadless 새로운 Headless 전략을 생성합니다. pageOptions 와 dumper 는 nil 일 수 있습니다.
func NewHeadless(b browser.Browser, table *selector.Table, pageOptions PageOptionsFunc, dumper Dumper, cfg HeadlessConfig) *Headless {
	if pageOptions == nil {
		pageOptions = func() browser.PageOptions { return browser.PageOptions{} }
	}
	return &Headless{browser: b, table: table, pageOptions: pageOptions, dumper: dumper, cfg: cfg}
}

func (h *Headless) Name() string { return NameHeadless }

func (h *Headless) Extract(ctx context.Context, in Input) (*Output, error) {
	page, err := h.browser.NewPage(ctx, h.pageOptions())
	if err != nil {
		return nil, err
	}
	defer page.Close()

	status, err := page.Goto(ctx, in.URL)
	if err != nil {
		return nil, err
	}
	in.Trace.Step("브라우저 페이지 이동 완료 (status=%d)", status)

	if err := browser.Sleep(ctx, h.cfg.SettleDelay); err != nil {
		return nil, err
	}
	for i := 0; i < h.cfg.ScrollCount; i++ {
		if err := page.ScrollToBottom(ctx); err != nil {
			in.Trace.Error("headless.scroll", err)
			break
		}
		if err := browser.Sleep(ctx, h.cfg.ScrollDelay); err != nil {
			return nil, err
		}
	}

	html, err := page.Content(ctx)
	if err != nil {
		return nil, err
	}
	h.dump(ctx, in, page, html)

	doc, err := scraper.ParseHTML(html, in.URL)
	if err != nil {
		return nil, err
	}

	out := &Output{Product: h.table.ProductRecord(doc)}
	out.Product.Source = model.SourcePlaywright
	out.Reviews = h.table.ReviewList(doc)
	out.QA = h.table.QAList(doc)

	if len(out.Reviews) == 0 {
		out.Reviews = h.afterTab(ctx, in, page, h.table.ReviewTab, "review").reviews
	}
	if len(out.QA) == 0 {
		out.QA = h.afterTab(ctx, in, page, h.table.QATab, "qa").qa
	}

	if !out.Usable() {
		return out, ErrNoProductData
	}
	return out, nil
}

type tabResult struct {
	reviews []model.ReviewRecord
	qa      []model.QARecord
}

// afterTab 탭을 눌러 본 뒤 DOM 을 다시 읽어 리뷰와 문의를 추출합니다. 탭을 찾지 못하면 빈 결과입니다.
func (h *Headless) afterTab(ctx context.Context, in Input, page browser.Page, tab selector.TabRule, name string) tabResult {
	if !clickTab(ctx, page, tab) {
		in.Trace.Step("%s 탭을 찾지 못했습니다", name)
		return tabResult{}
	}
	if err := browser.Sleep(ctx, h.cfg.TabDelay); err != nil {
		return tabResult{}
	}

	html, err := page.Content(ctx)
	if err != nil {
		in.Trace.Error("headless."+name, err)
		return tabResult{}
	}
	doc, err := scraper.ParseHTML(html, in.URL)
	if err != nil {
		in.Trace.Error("headless."+name, err)
		return tabResult{}
	}

	res := tabResult{reviews: h.table.ReviewList(doc), qa: h.table.QAList(doc)}
	in.Trace.Step("%s 탭 클릭 후 리뷰 %d건, 문의 %d건", name, len(res.reviews), len(res.qa))
	return res
}

func clickTab(ctx context.Context, page browser.Page, tab selector.TabRule) bool {
	for _, sel := range tab.Selectors {
		if page.Click(ctx, sel) == nil {
			return true
		}
	}
	for _, text := range tab.Texts {
		if page.ClickText(ctx, text) == nil {
			return true
		}
	}
	return false
}

func (h *Headless) dump(ctx context.Context, in Input, page browser.Page, html string) {
	if h.dumper == nil {
		return
	}

	name := DumpName(in)
	h.dumper.Page(name, html)

	if shot, err := page.Screenshot(ctx); err == nil {
		h.dumper.Screenshot(name, shot)
	} else {
		applog.WithComponentAndFields(component, applog.Fields{"error": err}).Debug("스크린샷 저장 생략")
	}

	if frames, err := page.FrameContents(ctx); err == nil {
		for i, f := range frames {
			h.dumper.Frame(name, i, f)
		}
	}
}
