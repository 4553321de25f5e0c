// Package fetcher 쇼핑몰 페이지와 내부 API 를 호출하는 HTTP 클라이언트 체인입니다.
//
// 각 기능(상태 코드 검사, 본문 크기 제한, 헤더/세션 주입, 로깅)은 Fetcher 를 감싸는
// 데코레이터로 구현되며 New 가 정해진 순서로 조립합니다.
package fetcher

import (
	"context"
	"io"
	"net/http"
	"sync"
)

// component 로깅용 컴포넌트 이름
const component = "extract.fetcher"

// Fetcher HTTP 요청을 수행합니다.
//
// 반환된 응답의 Body 는 호출자가 닫아야 합니다. 에러를 반환할 때 응답은 항상 nil 입니다.
type Fetcher interface {
	Do(req *http.Request) (*http.Response, error)
}

// FetcherFunc 함수를 Fetcher 로 사용할 수 있게 합니다.
type FetcherFunc func(req *http.Request) (*http.Response, error)

func (f FetcherFunc) Do(req *http.Request) (*http.Response, error) { return f(req) }

// Get 지정된 URL 로 GET 요청을 보냅니다. header 의 값은 요청에 그대로 설정됩니다.
func Get(ctx context.Context, f Fetcher, url string, header http.Header) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, newErrInvalidRequest(url, err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := f.Do(req)
	if err != nil {
		if resp != nil {
			drainAndCloseBody(resp.Body)
		}
		return nil, err
	}
	return resp, nil
}

// ReadAll GET 요청 후 본문 전체를 읽어 반환합니다.
func ReadAll(ctx context.Context, f Fetcher, url string, header http.Header) ([]byte, *http.Response, error) {
	resp, err := Get(ctx, f, url, header)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp, classifyTransportError(url, err)
	}
	return body, resp, nil
}

// maxDrainBytes 커넥션 재사용을 위해 버리는 본문의 최대 크기 (64KB)
const maxDrainBytes = 64 * 1024

var drainBufPool = sync.Pool{
	New: func() any {
		b := make([]byte, 32*1024)
		return &b
	},
}

// drainAndCloseBody Keep-Alive 커넥션을 재사용할 수 있도록 본문을 일정량 비우고 닫습니다.
func drainAndCloseBody(body io.ReadCloser) {
	if body == nil {
		return
	}
	defer body.Close()

	bufPtr := drainBufPool.Get().(*[]byte)
	defer drainBufPool.Put(bufPtr)

	_, _ = io.CopyBuffer(io.Discard, io.LimitReader(body, maxDrainBytes), *bufPtr)
}
