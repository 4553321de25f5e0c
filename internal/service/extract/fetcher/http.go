package fetcher

import (
	"net/http"
	"time"
)

// defaultTimeout 개별 요청의 기본 타임아웃
const defaultTimeout = 30 * time.Second

// HTTPFetcher 실제 네트워크 I/O 를 담당하는 최내곽 Fetcher 입니다.
// 전송 계층 에러는 Timeout 또는 Unavailable 타입의 AppError 로 분류해서 반환합니다.
type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher 새로운 HTTPFetcher 를 생성합니다. timeout 이 0 이하이면 30초를 사용합니다.
func NewHTTPFetcher(timeout time.Duration, transport http.RoundTripper) *HTTPFetcher {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTPFetcher{
		client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

func (h *HTTPFetcher) Do(req *http.Request) (*http.Response, error) {
	resp, err := h.client.Do(req)
	if err != nil {
		if resp != nil {
			drainAndCloseBody(resp.Body)
		}
		return nil, classifyTransportError(redactURL(req.URL), err)
	}
	return resp, nil
}
