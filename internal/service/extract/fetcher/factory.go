package fetcher

import (
	"net/http"
	"time"
)

// Config Fetcher 체인 구성 옵션입니다.
type Config struct {
	// Timeout 개별 요청 타임아웃 (0: 30초)
	Timeout time.Duration

	// MaxBytes 응답 본문 크기 제한 (0: 10MB)
	MaxBytes int64

	// Headers 요청에 없을 때 채울 기본 헤더 (Accept, Accept-Language, Referer 등)
	Headers http.Header

	// Session 쿠키와 User-Agent 제공자 (nil: 주입하지 않음)
	Session SessionSource

	// AllowedStatuses 허용할 상태 코드 (비어있으면 200 만 허용)
	AllowedStatuses []int

	// Transport 테스트나 프록시를 위한 RoundTripper (nil: http.DefaultTransport)
	Transport http.RoundTripper
}

// New Config 로 Fetcher 체인을 구성합니다. 바깥쪽부터 다음 순서입니다.
//
//  1. LoggingFetcher: 헤더 주입 이후의 최종 요청과 결과를 기록
//  2. HeaderFetcher: 세션 쿠키, User-Agent, 기본 헤더 주입
//  3. StatusCodeFetcher: 허용되지 않은 상태 코드를 StatusError 로 변환
//  4. MaxBytesFetcher: 응답 본문 크기 제한
//  5. HTTPFetcher: 실제 네트워크 I/O
//
// 재시도는 하지 않습니다. 인증 오류에 대한 재시도는 세션 갱신 후 호출자가 결정합니다.
func New(cfg Config) Fetcher {
	var f Fetcher = NewHTTPFetcher(cfg.Timeout, cfg.Transport)
	f = NewMaxBytesFetcher(f, cfg.MaxBytes)
	f = NewStatusCodeFetcher(f, cfg.AllowedStatuses...)
	f = NewHeaderFetcher(f, cfg.Headers, cfg.Session)
	return NewLoggingFetcher(f)
}
