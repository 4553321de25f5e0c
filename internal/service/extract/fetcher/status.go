package fetcher

import (
	"io"
	"net/http"
	"slices"
	"strings"
	"unicode/utf8"
)

// bodySnippetBytes 에러 메시지에 포함하는 응답 본문의 최대 크기
const bodySnippetBytes = 512

// StatusCodeFetcher 허용되지 않은 상태 코드를 StatusError 로 변환합니다.
type StatusCodeFetcher struct {
	delegate Fetcher
	allowed  []int
}

// NewStatusCodeFetcher 새로운 StatusCodeFetcher 를 생성합니다. allowed 가 비어있으면 200 만 허용합니다.
func NewStatusCodeFetcher(delegate Fetcher, allowed ...int) *StatusCodeFetcher {
	return &StatusCodeFetcher{delegate: delegate, allowed: allowed}
}

func (f *StatusCodeFetcher) Do(req *http.Request) (*http.Response, error) {
	resp, err := f.delegate.Do(req)
	if err != nil {
		return nil, err
	}

	if f.isAllowed(resp.StatusCode) {
		return resp, nil
	}

	snippet := readSnippet(resp.Body)
	drainAndCloseBody(resp.Body)
	return nil, newStatusError(resp.StatusCode, redactURL(req.URL), snippet)
}

func (f *StatusCodeFetcher) isAllowed(code int) bool {
	if len(f.allowed) == 0 {
		return code == http.StatusOK
	}
	return slices.Contains(f.allowed, code)
}

func readSnippet(body io.Reader) string {
	if body == nil {
		return ""
	}
	buf := make([]byte, bodySnippetBytes)
	n, _ := io.ReadFull(body, buf)
	s := string(buf[:n])
	for !utf8.ValidString(s) && s != "" {
		s = s[:len(s)-1]
	}
	return strings.TrimSpace(s)
}
