// Package browser 헤드리스 브라우저 엔진(Playwright, chromedp)을 하나의 인터페이스로 추상화하고,
// 동시에 열 수 있는 페이지 수를 제한하는 Pool 을 제공합니다.
package browser

import (
	"context"
	"strings"
	"time"
)

const component = "extract.browser"

// 빈 문자열이면 기본값을 사용합니다.
const (
	DefaultLocale = "ko-KR"
	DefaultWidth  = 1920
	DefaultHeight = 1080
)

// Cookie 브라우저 컨텍스트에 주입하거나 컨텍스트에서 수확한 쿠키입니다.
type Cookie struct {
	Name   string
	Value  string
	Domain string
	Path   string
}

// PageOptions 새 페이지(격리된 브라우저 컨텍스트)의 옵션입니다.
type PageOptions struct {
	UserAgent string
	Locale    string
	Width     int
	Height    int
	Cookies   []Cookie
}

func (o PageOptions) withDefaults() PageOptions {
	if o.Locale == "" {
		o.Locale = DefaultLocale
	}
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	return o
}

// Page 열린 브라우저 탭 하나입니다. Close 는 여러 번 호출해도 안전해야 합니다.
type Page interface {
	// Goto 페이지를 이동하고 네트워크가 유휴 상태가 될 때까지 기다립니다. 응답 상태 코드를 모르면 0 을 반환합니다.
	Goto(ctx context.Context, url string) (int, error)

	// Content 현재 DOM 의 직렬화된 HTML 입니다.
	Content(ctx context.Context) (string, error)

	// FrameContents 하위 프레임들의 HTML 입니다. 접근할 수 없는 프레임은 건너뜁니다.
	FrameContents(ctx context.Context) ([]string, error)

	// Click 선택자와 일치하는 첫 번째 요소를 클릭합니다.
	Click(ctx context.Context, selector string) error

	// ClickText 표시 텍스트에 text 가 포함된 첫 번째 요소를 클릭합니다.
	ClickText(ctx context.Context, text string) error

	// ScrollToBottom 지연 로딩을 유발하기 위해 문서 끝까지 스크롤합니다.
	ScrollToBottom(ctx context.Context) error

	Screenshot(ctx context.Context) ([]byte, error)

	// DocumentCookie 페이지 스크립트에서 보이는 document.cookie 값입니다.
	DocumentCookie(ctx context.Context) (string, error)

	// Cookies 브라우저 컨텍스트의 쿠키 저장소 전체입니다. (HttpOnly 포함)
	Cookies(ctx context.Context) ([]Cookie, error)

	Close() error
}

// Browser 페이지를 여는 주체입니다. 엔진과 Pool 모두 이 인터페이스를 구현합니다.
type Browser interface {
	NewPage(ctx context.Context, opts PageOptions) (Page, error)
}

// Engine 실제 브라우저 프로세스를 관리하는 구현체입니다.
type Engine interface {
	Browser

	// Name 엔진 이름 (playwright, chromedp)
	Name() string

	Close() error
}

// Sleep ctx 가 취소되지 않는 한 d 만큼 기다립니다.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// ParseCookieString "a=1; b=2" 형태의 쿠키 헤더 문자열을 domain 에 속한 쿠키 목록으로 변환합니다.
// 이름이 없거나 '=' 가 없는 항목은 무시합니다.
func ParseCookieString(raw, domain string) []Cookie {
	var cookies []Cookie
	for part := range strings.SplitSeq(raw, ";") {
		name, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		if name = strings.TrimSpace(name); name == "" {
			continue
		}

		cookies = append(cookies, Cookie{
			Name:   name,
			Value:  strings.TrimSpace(value),
			Domain: domain,
			Path:   "/",
		})
	}
	return cookies
}

// CookieHeader 쿠키 목록을 "a=1; b=2" 형태의 헤더 문자열로 합칩니다.
func CookieHeader(cookies []Cookie) string {
	parts := make([]string, 0, len(cookies))
	for _, c := range cookies {
		if c.Name == "" {
			continue
		}
		parts = append(parts, c.Name+"="+c.Value)
	}
	return strings.Join(parts, "; ")
}
