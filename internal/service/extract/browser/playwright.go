package browser

import (
	"context"
	"sync"
	"time"

	applog "github.com/darkkaiser/product-extractor/pkg/log"
	pw "github.com/playwright-community/playwright-go"
)

// EnginePlaywright Playwright 엔진 이름
const EnginePlaywright = "playwright"

// clickTimeout 탭/버튼 클릭 시 요소를 기다리는 최대 시간
const clickTimeout = 2 * time.Second

const scrollScript = `() => window.scrollTo(0, document.body ? document.body.scrollHeight : 0)`

// PlaywrightEngine Playwright 드라이버로 Chromium 을 구동합니다.
// 드라이버와 브라우저는 첫 NewPage 호출 시 한 번만 실행되고, 페이지마다 격리된 컨텍스트를 만듭니다.
type PlaywrightEngine struct {
	cfg Config

	mu      sync.Mutex
	pw      *pw.Playwright
	browser pw.Browser
}

var _ Engine = (*PlaywrightEngine)(nil)

// NewPlaywrightEngine 새로운 PlaywrightEngine 을 생성합니다. 브라우저는 아직 실행하지 않습니다.
func NewPlaywrightEngine(cfg Config) *PlaywrightEngine {
	return &PlaywrightEngine{cfg: cfg.withDefaults()}
}

func (e *PlaywrightEngine) Name() string { return EnginePlaywright }

func (e *PlaywrightEngine) launch() (pw.Browser, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.browser != nil && e.browser.IsConnected() {
		return e.browser, nil
	}

	if e.pw == nil {
		instance, err := pw.Run(&pw.RunOptions{Browsers: []string{"chromium"}, Verbose: false})
		if err != nil {
			return nil, newErrLaunchFailed(EnginePlaywright, err)
		}
		e.pw = instance
	}

	opts := pw.BrowserTypeLaunchOptions{
		Headless: pw.Bool(e.cfg.Headless),
		Args:     []string{"--no-sandbox", "--disable-dev-shm-usage", "--disable-blink-features=AutomationControlled"},
	}
	if e.cfg.ExecutablePath != "" {
		opts.ExecutablePath = pw.String(e.cfg.ExecutablePath)
	}

	b, err := e.pw.Chromium.Launch(opts)
	if err != nil {
		return nil, newErrLaunchFailed(EnginePlaywright, err)
	}
	e.browser = b

	applog.WithComponentAndFields(component, applog.Fields{
		"engine":   EnginePlaywright,
		"headless": e.cfg.Headless,
	}).Info("헤드리스 브라우저를 실행했습니다")

	return b, nil
}

// NewPage 격리된 브라우저 컨텍스트를 만들고 쿠키를 주입한 뒤 페이지를 엽니다.
func (e *PlaywrightEngine) NewPage(ctx context.Context, opts PageOptions) (Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, newErrPoolAcquire(err)
	}

	b, err := e.launch()
	if err != nil {
		return nil, err
	}

	opts = opts.withDefaults()
	ctxOpts := pw.BrowserNewContextOptions{
		Locale:   pw.String(opts.Locale),
		Viewport: &pw.Size{Width: opts.Width, Height: opts.Height},
	}
	if opts.UserAgent != "" {
		ctxOpts.UserAgent = pw.String(opts.UserAgent)
	}

	bctx, err := b.NewContext(ctxOpts)
	if err != nil {
		return nil, wrapPageError(ctx, err, "컨텍스트 생성")
	}

	if len(opts.Cookies) > 0 {
		cookies := make([]pw.OptionalCookie, 0, len(opts.Cookies))
		for _, c := range opts.Cookies {
			cookies = append(cookies, pw.OptionalCookie{
				Name:   c.Name,
				Value:  c.Value,
				Domain: pw.String(c.Domain),
				Path:   pw.String(c.Path),
			})
		}
		if err := bctx.AddCookies(cookies); err != nil {
			applog.WithComponentAndFields(component, applog.Fields{
				"count": len(cookies),
				"error": err,
			}).Warn("브라우저 컨텍스트에 쿠키를 주입하지 못했습니다")
		}
	}

	page, err := bctx.NewPage()
	if err != nil {
		_ = bctx.Close()
		return nil, wrapPageError(ctx, err, "페이지 생성")
	}
	page.SetDefaultTimeout(float64(e.cfg.NavigationTimeout.Milliseconds()))

	return &playwrightPage{bctx: bctx, page: page, timeout: e.cfg.NavigationTimeout}, nil
}

// Close 브라우저와 드라이버를 종료합니다.
func (e *PlaywrightEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var firstErr error
	if e.browser != nil {
		if err := e.browser.Close(); err != nil {
			firstErr = err
		}
		e.browser = nil
	}
	if e.pw != nil {
		if err := e.pw.Stop(); err != nil && firstErr == nil {
			firstErr = err
		}
		e.pw = nil
	}
	return firstErr
}

type playwrightPage struct {
	bctx    pw.BrowserContext
	page    pw.Page
	timeout time.Duration

	closeOnce sync.Once
	closeErr  error
}

// timeoutMs ctx 의 남은 시간과 기본 타임아웃 중 짧은 값을 밀리초로 반환합니다.
func (p *playwrightPage) timeoutMs(ctx context.Context) *float64 {
	d := p.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remain := time.Until(deadline); remain < d {
			d = max(remain, time.Millisecond)
		}
	}
	return pw.Float(float64(d.Milliseconds()))
}

func (p *playwrightPage) Goto(ctx context.Context, url string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, wrapPageError(ctx, err, "페이지 이동")
	}

	resp, err := p.page.Goto(url, pw.PageGotoOptions{
		WaitUntil: pw.WaitUntilStateNetworkidle,
		Timeout:   p.timeoutMs(ctx),
	})
	if err != nil {
		return 0, wrapPageError(ctx, err, "페이지 이동")
	}
	if resp == nil {
		return 0, nil
	}
	return resp.Status(), nil
}

func (p *playwrightPage) Content(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", wrapPageError(ctx, err, "HTML 조회")
	}

	html, err := p.page.Content()
	return html, wrapPageError(ctx, err, "HTML 조회")
}

func (p *playwrightPage) FrameContents(ctx context.Context) ([]string, error) {
	main := p.page.MainFrame()

	var contents []string
	for _, f := range p.page.Frames() {
		if ctx.Err() != nil {
			return contents, wrapPageError(ctx, ctx.Err(), "프레임 조회")
		}
		if f == main {
			continue
		}
		if html, err := f.Content(); err == nil && html != "" {
			contents = append(contents, html)
		}
	}
	return contents, nil
}

func (p *playwrightPage) Click(ctx context.Context, selector string) error {
	if err := ctx.Err(); err != nil {
		return wrapPageError(ctx, err, "클릭")
	}

	err := p.page.Locator(selector).First().Click(pw.LocatorClickOptions{
		Timeout: pw.Float(float64(clickTimeout.Milliseconds())),
	})
	return wrapPageError(ctx, err, "클릭")
}

func (p *playwrightPage) ClickText(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return wrapPageError(ctx, err, "클릭")
	}

	err := p.page.GetByText(text).First().Click(pw.LocatorClickOptions{
		Timeout: pw.Float(float64(clickTimeout.Milliseconds())),
	})
	return wrapPageError(ctx, err, "클릭")
}

func (p *playwrightPage) ScrollToBottom(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return wrapPageError(ctx, err, "스크롤")
	}

	_, err := p.page.Evaluate(scrollScript)
	return wrapPageError(ctx, err, "스크롤")
}

func (p *playwrightPage) Screenshot(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, wrapPageError(ctx, err, "스크린샷")
	}

	b, err := p.page.Screenshot(pw.PageScreenshotOptions{FullPage: pw.Bool(true)})
	return b, wrapPageError(ctx, err, "스크린샷")
}

func (p *playwrightPage) DocumentCookie(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", wrapPageError(ctx, err, "쿠키 조회")
	}

	v, err := p.page.Evaluate(`() => document.cookie`)
	if err != nil {
		return "", wrapPageError(ctx, err, "쿠키 조회")
	}
	s, _ := v.(string)
	return s, nil
}

func (p *playwrightPage) Cookies(ctx context.Context) ([]Cookie, error) {
	if err := ctx.Err(); err != nil {
		return nil, wrapPageError(ctx, err, "쿠키 조회")
	}

	raw, err := p.bctx.Cookies()
	if err != nil {
		return nil, wrapPageError(ctx, err, "쿠키 조회")
	}

	cookies := make([]Cookie, 0, len(raw))
	for _, c := range raw {
		cookies = append(cookies, Cookie{Name: c.Name, Value: c.Value, Domain: c.Domain, Path: c.Path})
	}
	return cookies, nil
}

func (p *playwrightPage) Close() error {
	p.closeOnce.Do(func() {
		_ = p.page.Close()
		p.closeErr = p.bctx.Close()
	})
	return p.closeErr
}
