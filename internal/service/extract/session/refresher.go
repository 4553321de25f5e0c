package session

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/darkkaiser/product-extractor/internal/service/extract/browser"
	applog "github.com/darkkaiser/product-extractor/pkg/log"
)

// CookieDomain 주입/수확하는 네이버 쿠키의 도메인
const CookieDomain = ".naver.com"

// Outcome Refresh 호출 결과입니다.
type Outcome string

const (
	// OutcomeRefreshed 새 쿠키로 세션을 교체했습니다.
	OutcomeRefreshed Outcome = "refreshed"
	// OutcomeCoalesced 이미 다른 갱신이 진행 중이라 기존 세션을 그대로 사용합니다.
	OutcomeCoalesced Outcome = "coalesced"
	// OutcomeFailed 갱신을 시도했지만 실패했습니다. 기존 세션은 유지됩니다.
	OutcomeFailed Outcome = "failed"
)

// challengeSelectors 스토어 진입 시 간혹 나타나는 보안 확인(퀴즈) 화면에서 눌러볼 버튼 후보입니다.
// 통과를 보장하지 않으며 실패는 무시합니다.
var challengeSelectors = []string{
	`button[type="submit"]`,
	`#btn_confirm`,
	`.btn_confirm`,
	`input[type="submit"]`,
}

// FailureNotifier 연속 갱신 실패를 운영자에게 알립니다.
type FailureNotifier interface {
	NotifyRefreshFailure(ctx context.Context, consecutiveFailures int, err error)
}

// Summary 외부에 노출해도 되는 세션 상태 요약입니다. 쿠키 값은 포함하지 않습니다.
type Summary struct {
	HasCookie           bool      `json:"hasCookie"`
	LastRefreshed       time.Time `json:"lastRefreshed"`
	Refreshing          bool      `json:"refreshing"`
	ConsecutiveFailures int       `json:"consecutiveFailures"`
}

// RefresherConfig Refresher 설정입니다.
type RefresherConfig struct {
	StorefrontURL string
	UserAgent     string
	Locale        string

	// SettleDelay 스토어 진입 후 쿠키가 설정되기를 기다리는 시간
	SettleDelay time.Duration

	// MaxAge 마지막 갱신 후 이 시간이 지나면 RefreshIfStale 이 갱신합니다. 0 이면 나이로는 갱신하지 않습니다.
	MaxAge time.Duration

	// Timeout 한 번의 갱신에 허용하는 최대 시간
	Timeout time.Duration

	// FailureThreshold 연속 실패가 이 횟수에 도달할 때마다 알림을 보냅니다.
	FailureThreshold int

	// OnOutcome Refresh 가 끝날 때마다 결과와 함께 호출됩니다. (지표 수집용, nil 가능)
	OnOutcome func(Outcome)
}

// Refresher 헤드리스 브라우저로 스토어를 방문해 쿠키를 다시 수확합니다.
//
// 상태는 idle ↔ refreshing 두 가지뿐입니다. 갱신 중에 들어온 호출은 대기하지 않고 즉시
// OutcomeCoalesced 를 반환하며, 호출자는 기존(오래되었을 수 있는) 세션으로 계속 진행합니다.
type Refresher struct {
	store    *Store
	browser  browser.Browser
	notifier FailureNotifier
	cfg      RefresherConfig

	refreshing atomic.Bool
	failures   atomic.Int64

	now func() time.Time
}

// NewRefresher 새로운 Refresher 를 생성합니다. notifier 는 nil 일 수 있습니다.
func NewRefresher(store *Store, b browser.Browser, notifier FailureNotifier, cfg RefresherConfig) *Refresher {
	if store == nil || b == nil {
		panic("session: store 와 browser 는 nil 일 수 없습니다")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.FailureThreshold < 1 {
		cfg.FailureThreshold = 3
	}

	return &Refresher{
		store:    store,
		browser:  b,
		notifier: notifier,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Store 갱신 대상 Store 를 반환합니다.
func (r *Refresher) Store() *Store {
	return r.store
}

// Refresh 쿠키를 즉시 갱신합니다. 이미 갱신 중이면 기다리지 않고 OutcomeCoalesced 를 반환합니다.
func (r *Refresher) Refresh(ctx context.Context, reason string) (Outcome, error) {
	if !r.refreshing.CompareAndSwap(false, true) {
		applog.WithComponentAndFields(component, applog.Fields{
			"reason": reason,
		}).Debug("쿠키 갱신이 이미 진행 중이므로 기존 세션을 사용합니다")
		r.report(OutcomeCoalesced)
		return OutcomeCoalesced, nil
	}
	defer r.refreshing.Store(false)

	logger := applog.WithComponentAndFields(component, applog.Fields{
		"reason":     reason,
		"storefront": r.cfg.StorefrontURL,
	})
	logger.Info("네이버 쿠키 갱신 시작")

	start := r.now()
	cookie, err := r.harvest(ctx)
	if err != nil {
		failures := int(r.failures.Add(1))
		logger.WithFields(applog.Fields{
			"consecutive_failures": failures,
			"error":                err,
		}).Warn("네이버 쿠키 갱신 실패, 기존 세션을 유지합니다")

		if r.notifier != nil && failures%r.cfg.FailureThreshold == 0 {
			r.notifier.NotifyRefreshFailure(ctx, failures, err)
		}
		r.report(OutcomeFailed)
		return OutcomeFailed, newErrRefreshFailed(err)
	}

	r.failures.Store(0)
	r.store.replace(Session{
		Cookie:        cookie,
		UserAgent:     r.userAgent(),
		LastRefreshed: r.now(),
	})

	logger.WithFields(applog.Fields{
		"cookie":      applog.MaskSensitiveData(cookie),
		"duration_ms": r.now().Sub(start).Milliseconds(),
	}).Info("네이버 쿠키 갱신 완료")

	r.report(OutcomeRefreshed)
	return OutcomeRefreshed, nil
}

func (r *Refresher) report(o Outcome) {
	if r.cfg.OnOutcome != nil {
		r.cfg.OnOutcome(o)
	}
}

// RefreshIfStale 마지막 갱신 후 MaxAge 가 지났거나 쿠키가 없으면 갱신합니다.
func (r *Refresher) RefreshIfStale(ctx context.Context) (Outcome, error) {
	if !r.Stale() {
		return "", nil
	}
	return r.Refresh(ctx, "stale")
}

// Stale 세션이 갱신 대상인지 여부를 반환합니다.
func (r *Refresher) Stale() bool {
	s := r.store.Load()
	if !s.HasCookie() {
		return true
	}
	if r.cfg.MaxAge <= 0 {
		return false
	}
	return s.LastRefreshed.IsZero() || r.now().Sub(s.LastRefreshed) >= r.cfg.MaxAge
}

// Summary 현재 세션 상태를 요약합니다.
func (r *Refresher) Summary() Summary {
	s := r.store.Load()
	return Summary{
		HasCookie:           s.HasCookie(),
		LastRefreshed:       s.LastRefreshed,
		Refreshing:          r.refreshing.Load(),
		ConsecutiveFailures: int(r.failures.Load()),
	}
}

func (r *Refresher) userAgent() string {
	if r.cfg.UserAgent != "" {
		return r.cfg.UserAgent
	}
	return r.store.UserAgent()
}

// harvest 스토어를 방문한 뒤 document.cookie 와 쿠키 저장소 중 더 긴 쪽을 반환합니다.
func (r *Refresher) harvest(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	current := r.store.Load()
	page, err := r.browser.NewPage(ctx, browser.PageOptions{
		UserAgent: r.userAgent(),
		Locale:    r.cfg.Locale,
		Cookies:   browser.ParseCookieString(current.Cookie, CookieDomain),
	})
	if err != nil {
		return "", err
	}
	defer page.Close()

	if _, err := page.Goto(ctx, r.cfg.StorefrontURL); err != nil {
		return "", err
	}
	if err := browser.Sleep(ctx, r.cfg.SettleDelay); err != nil {
		return "", err
	}

	r.tryChallenge(ctx, page)

	docCookie, err := page.DocumentCookie(ctx)
	if err != nil {
		docCookie = ""
	}

	var jarCookie string
	if jar, err := page.Cookies(ctx); err == nil {
		jarCookie = browser.CookieHeader(jar)
	}

	cookie := docCookie
	if len(jarCookie) > len(cookie) {
		cookie = jarCookie
	}
	if cookie == "" {
		return "", ErrNoCookieHarvested
	}
	return cookie, nil
}

func (r *Refresher) tryChallenge(ctx context.Context, page browser.Page) {
	for _, sel := range challengeSelectors {
		if err := page.Click(ctx, sel); err == nil {
			applog.WithComponentAndFields(component, applog.Fields{
				"selector": sel,
			}).Debug("보안 확인 화면의 버튼을 눌렀습니다")

			_ = browser.Sleep(ctx, time.Second)
			return
		}
	}
}
