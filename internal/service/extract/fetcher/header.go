package fetcher

import (
	"net/http"
)

// SessionSource 요청 시점의 세션 쿠키와 User-Agent 를 제공합니다.
// 세션은 갱신될 수 있으므로 Fetcher 는 값을 저장하지 않고 매 요청마다 조회합니다.
type SessionSource interface {
	Cookie() string
	UserAgent() string
}

// HeaderFetcher 요청에 없는 헤더만 기본값으로 채웁니다.
// 호출자가 명시한 헤더는 덮어쓰지 않으며 원본 요청은 변경하지 않습니다.
type HeaderFetcher struct {
	delegate Fetcher
	defaults http.Header
	session  SessionSource
}

// NewHeaderFetcher 새로운 HeaderFetcher 를 생성합니다. session 은 nil 일 수 있습니다.
func NewHeaderFetcher(delegate Fetcher, defaults http.Header, session SessionSource) *HeaderFetcher {
	return &HeaderFetcher{
		delegate: delegate,
		defaults: defaults.Clone(),
		session:  session,
	}
}

func (f *HeaderFetcher) Do(req *http.Request) (*http.Response, error) {
	cloned := req.Clone(req.Context())

	if f.session != nil {
		if ua := f.session.UserAgent(); ua != "" && cloned.Header.Get("User-Agent") == "" {
			cloned.Header.Set("User-Agent", ua)
		}
		if cookie := f.session.Cookie(); cookie != "" && cloned.Header.Get("Cookie") == "" {
			cloned.Header.Set("Cookie", cookie)
		}
	}

	for k, vs := range f.defaults {
		if cloned.Header.Get(k) != "" || len(vs) == 0 {
			continue
		}
		cloned.Header[k] = append([]string(nil), vs...)
	}

	return f.delegate.Do(cloned)
}
