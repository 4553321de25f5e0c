package browser

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	applog "github.com/darkkaiser/product-extractor/pkg/log"
)

// EngineChromedp chromedp(Chrome DevTools Protocol) 엔진 이름
const EngineChromedp = "chromedp"

const frameContentsScript = `Array.from(document.querySelectorAll('iframe')).map(f => {
	try { return f.contentDocument ? f.contentDocument.documentElement.outerHTML : ''; } catch (e) { return ''; }
})`

const clickTextScript = `(text => {
	const nodes = document.querySelectorAll('a, button, li, span, div[role="tab"]');
	for (const n of nodes) {
		if ((n.innerText || '').includes(text)) { n.click(); return true; }
	}
	return false;
})(%q)`

// ChromedpEngine CDP 로 Chrome 을 직접 구동합니다.
// 브라우저 프로세스는 하나만 띄우고 페이지마다 새 브라우저 컨텍스트(시크릿 창)를 만듭니다.
type ChromedpEngine struct {
	cfg Config

	mu            sync.Mutex
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
}

var _ Engine = (*ChromedpEngine)(nil)

// NewChromedpEngine 새로운 ChromedpEngine 을 생성합니다. 브라우저는 아직 실행하지 않습니다.
func NewChromedpEngine(cfg Config) *ChromedpEngine {
	return &ChromedpEngine{cfg: cfg.withDefaults()}
}

func (e *ChromedpEngine) Name() string { return EngineChromedp }

func (e *ChromedpEngine) launch() (context.Context, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.browserCtx != nil && e.browserCtx.Err() == nil {
		return e.browserCtx, nil
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", e.cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
	)
	if e.cfg.ExecutablePath != "" {
		opts = append(opts, chromedp.ExecPath(e.cfg.ExecutablePath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(applog.WithComponent(component).Debugf))

	// 빈 Run 으로 브라우저 프로세스를 실제로 기동합니다.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, newErrLaunchFailed(EngineChromedp, err)
	}

	e.allocCancel = allocCancel
	e.browserCtx = browserCtx
	e.browserCancel = browserCancel

	applog.WithComponentAndFields(component, applog.Fields{
		"engine":   EngineChromedp,
		"headless": e.cfg.Headless,
	}).Info("헤드리스 브라우저를 실행했습니다")

	return browserCtx, nil
}

// NewPage 새 브라우저 컨텍스트에 탭을 열고 UA/로케일/뷰포트/쿠키를 설정합니다.
func (e *ChromedpEngine) NewPage(ctx context.Context, opts PageOptions) (Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, newErrPoolAcquire(err)
	}

	browserCtx, err := e.launch()
	if err != nil {
		return nil, err
	}

	opts = opts.withDefaults()
	tabCtx, tabCancel := chromedp.NewContext(browserCtx, chromedp.WithNewBrowserContext())

	// 탭은 첫 Run 에 전달된 컨텍스트의 수명을 따르므로, 시간 제한이 있는 파생 컨텍스트보다 먼저 탭 컨텍스트로 할당합니다.
	if err := chromedp.Run(tabCtx); err != nil {
		tabCancel()
		return nil, wrapPageError(ctx, err, "탭 생성")
	}

	p := &chromedpPage{tabCtx: tabCtx, tabCancel: tabCancel, timeout: e.cfg.NavigationTimeout}

	actions := []chromedp.Action{
		emulation.SetDeviceMetricsOverride(int64(opts.Width), int64(opts.Height), 1, false),
		emulation.SetLocaleOverride().WithLocale(opts.Locale),
		network.SetExtraHTTPHeaders(network.Headers{"Accept-Language": opts.Locale}),
	}
	if opts.UserAgent != "" {
		actions = append(actions, emulation.SetUserAgentOverride(opts.UserAgent).WithAcceptLanguage(opts.Locale))
	}
	for _, c := range opts.Cookies {
		actions = append(actions, network.SetCookie(c.Name, c.Value).WithDomain(c.Domain).WithPath(c.Path))
	}

	if err := p.run(ctx, "페이지 생성", actions...); err != nil {
		tabCancel()
		return nil, err
	}
	return p, nil
}

// Close 브라우저 프로세스를 종료합니다.
func (e *ChromedpEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.browserCancel != nil {
		e.browserCancel()
		e.browserCancel = nil
		e.browserCtx = nil
	}
	if e.allocCancel != nil {
		e.allocCancel()
		e.allocCancel = nil
	}
	return nil
}

type chromedpPage struct {
	tabCtx    context.Context
	tabCancel context.CancelFunc
	timeout   time.Duration

	closeOnce sync.Once
}

// runContext 탭 컨텍스트에서 파생된 실행 컨텍스트입니다. 호출자의 ctx 가 끝나면 함께 취소됩니다.
func (p *chromedpPage) runContext(ctx context.Context) (context.Context, context.CancelFunc) {
	runCtx, cancel := context.WithTimeout(p.tabCtx, p.timeout)
	stop := context.AfterFunc(ctx, cancel)

	return runCtx, func() {
		stop()
		cancel()
	}
}

func (p *chromedpPage) classify(ctx, runCtx context.Context, err error, action string) error {
	if err != nil && ctx.Err() != nil {
		return wrapPageError(ctx, err, action)
	}
	return wrapPageError(runCtx, err, action)
}

func (p *chromedpPage) run(ctx context.Context, action string, actions ...chromedp.Action) error {
	runCtx, cancel := p.runContext(ctx)
	defer cancel()

	return p.classify(ctx, runCtx, chromedp.Run(runCtx, actions...), action)
}

func (p *chromedpPage) Goto(ctx context.Context, url string) (int, error) {
	runCtx, cancel := p.runContext(ctx)
	defer cancel()

	resp, err := chromedp.RunResponse(runCtx, chromedp.Navigate(url))
	if err != nil {
		return 0, p.classify(ctx, runCtx, err, "페이지 이동")
	}
	if err := chromedp.Run(runCtx, chromedp.WaitReady("body", chromedp.ByQuery)); err != nil {
		return 0, p.classify(ctx, runCtx, err, "페이지 이동")
	}

	if resp == nil {
		return 0, nil
	}
	return int(resp.Status), nil
}

func (p *chromedpPage) Content(ctx context.Context) (string, error) {
	var html string
	err := p.run(ctx, "HTML 조회", chromedp.OuterHTML("html", &html, chromedp.ByQuery))
	return html, err
}

func (p *chromedpPage) FrameContents(ctx context.Context) ([]string, error) {
	var frames []string
	if err := p.run(ctx, "프레임 조회", chromedp.Evaluate(frameContentsScript, &frames)); err != nil {
		return nil, err
	}

	contents := frames[:0]
	for _, f := range frames {
		if strings.TrimSpace(f) != "" {
			contents = append(contents, f)
		}
	}
	return contents, nil
}

func (p *chromedpPage) Click(ctx context.Context, selector string) error {
	clickCtx, cancel := context.WithTimeout(ctx, clickTimeout)
	defer cancel()

	return p.run(clickCtx, "클릭", chromedp.Click(selector, chromedp.ByQuery, chromedp.NodeVisible))
}

func (p *chromedpPage) ClickText(ctx context.Context, text string) error {
	var clicked bool
	if err := p.run(ctx, "클릭", chromedp.Evaluate(fmt.Sprintf(clickTextScript, text), &clicked)); err != nil {
		return err
	}
	if !clicked {
		return wrapPageError(ctx, errElementNotFound, "클릭")
	}
	return nil
}

func (p *chromedpPage) ScrollToBottom(ctx context.Context) error {
	var ignored any
	return p.run(ctx, "스크롤", chromedp.Evaluate(`window.scrollTo(0, document.body ? document.body.scrollHeight : 0)`, &ignored))
}

func (p *chromedpPage) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	err := p.run(ctx, "스크린샷", chromedp.FullScreenshot(&buf, 80))
	return buf, err
}

func (p *chromedpPage) DocumentCookie(ctx context.Context) (string, error) {
	var cookie string
	err := p.run(ctx, "쿠키 조회", chromedp.Evaluate(`document.cookie`, &cookie))
	return cookie, err
}

func (p *chromedpPage) Cookies(ctx context.Context) ([]Cookie, error) {
	var cookies []Cookie
	err := p.run(ctx, "쿠키 조회", chromedp.ActionFunc(func(c context.Context) error {
		raw, err := network.GetCookies().Do(c)
		if err != nil {
			return err
		}
		for _, ck := range raw {
			cookies = append(cookies, Cookie{Name: ck.Name, Value: ck.Value, Domain: ck.Domain, Path: ck.Path})
		}
		return nil
	}))
	return cookies, err
}

func (p *chromedpPage) Close() error {
	p.closeOnce.Do(p.tabCancel)
	return nil
}
