// Package browsertest 실제 브라우저 없이 browser.Browser 를 흉내 내는 테스트 더블을 제공합니다.
package browsertest

import (
	"context"
	"errors"
	"sync"

	"github.com/darkkaiser/product-extractor/internal/service/extract/browser"
)

// ErrNoElement 클릭 대상이 등록되지 않았을 때 반환됩니다.
var ErrNoElement = errors.New("browsertest: 일치하는 요소가 없습니다")

// Page 미리 정해둔 HTML 을 돌려주는 가짜 페이지입니다.
// AfterClick 에 선택자(또는 텍스트)를 키로 HTML 을 등록하면, 해당 클릭 이후 Content 가 그 HTML 을 반환합니다.
type Page struct {
	mu sync.Mutex

	HTML       string
	Frames     []string
	Status     int
	GotoErr    error
	AfterClick map[string]string
	DocCookie  string
	JarCookies []browser.Cookie
	Shot       []byte

	Visited []string
	Clicked []string
	Scrolls int
	Closed  bool
}

var _ browser.Page = (*Page)(nil)

func (p *Page) Goto(ctx context.Context, url string) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return 0, err
	}
	p.Visited = append(p.Visited, url)
	if p.GotoErr != nil {
		return 0, p.GotoErr
	}
	if p.Status == 0 {
		return 200, nil
	}
	return p.Status, nil
}

func (p *Page) Content(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.HTML, ctx.Err()
}

func (p *Page) FrameContents(ctx context.Context) ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.Frames...), ctx.Err()
}

func (p *Page) click(key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	html, ok := p.AfterClick[key]
	if !ok {
		return ErrNoElement
	}
	p.Clicked = append(p.Clicked, key)
	p.HTML = html
	return nil
}

func (p *Page) Click(_ context.Context, selector string) error { return p.click(selector) }

func (p *Page) ClickText(_ context.Context, text string) error { return p.click(text) }

func (p *Page) ScrollToBottom(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Scrolls++
	return ctx.Err()
}

func (p *Page) Screenshot(ctx context.Context) ([]byte, error) {
	return p.Shot, ctx.Err()
}

func (p *Page) DocumentCookie(ctx context.Context) (string, error) {
	return p.DocCookie, ctx.Err()
}

func (p *Page) Cookies(ctx context.Context) ([]browser.Cookie, error) {
	return p.JarCookies, ctx.Err()
}

func (p *Page) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Closed = true
	return nil
}

// Browser 호출될 때마다 NewPageFunc 가 만든 Page 를 돌려주는 가짜 엔진입니다.
type Browser struct {
	mu sync.Mutex

	NewPageFunc func() (*Page, error)

	Options []browser.PageOptions
	Pages   []*Page
	closed  bool
}

var _ browser.Engine = (*Browser)(nil)

// New 매번 page 의 사본을 여는 가짜 엔진을 생성합니다. 기록 필드(Visited 등)는 복사하지 않습니다.
func New(page *Page) *Browser {
	return &Browser{
		NewPageFunc: func() (*Page, error) {
			return &Page{
				HTML:       page.HTML,
				Frames:     page.Frames,
				Status:     page.Status,
				GotoErr:    page.GotoErr,
				AfterClick: page.AfterClick,
				DocCookie:  page.DocCookie,
				JarCookies: page.JarCookies,
				Shot:       page.Shot,
			}, nil
		},
	}
}

// Failing 항상 err 로 실패하는 가짜 엔진을 생성합니다.
func Failing(err error) *Browser {
	return &Browser{NewPageFunc: func() (*Page, error) { return nil, err }}
}

func (b *Browser) NewPage(ctx context.Context, opts browser.PageOptions) (browser.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p, err := b.NewPageFunc()

	b.mu.Lock()
	defer b.mu.Unlock()

	b.Options = append(b.Options, opts)
	if err != nil {
		return nil, err
	}
	b.Pages = append(b.Pages, p)
	return p, nil
}

// Calls NewPage 가 호출된 횟수입니다.
func (b *Browser) Calls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.Options)
}

// LastPage 마지막으로 열린 페이지입니다.
func (b *Browser) LastPage() *Page {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.Pages) == 0 {
		return nil
	}
	return b.Pages[len(b.Pages)-1]
}

func (b *Browser) Name() string { return "fake" }

func (b *Browser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

// Closed Close 가 호출되었는지 여부입니다.
func (b *Browser) Closed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}
