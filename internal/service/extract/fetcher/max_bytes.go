package fetcher

import (
	"errors"
	"io"
	"net/http"
)

// DefaultMaxBytes 응답 본문의 기본 크기 제한 (10MB)
const DefaultMaxBytes = 10 * 1024 * 1024

type maxBytesReader struct {
	rc    io.ReadCloser
	limit int64
}

func (r *maxBytesReader) Read(p []byte) (int, error) {
	n, err := r.rc.Read(p)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return n, newErrResponseBodyTooLarge(r.limit)
		}
	}
	return n, err
}

func (r *maxBytesReader) Close() error {
	return r.rc.Close()
}

// MaxBytesFetcher 응답 본문의 크기를 제한합니다.
// Content-Length 로 먼저 차단하고, 헤더가 없거나 조작된 경우에도 실제 읽기 시점에 다시 제한합니다.
type MaxBytesFetcher struct {
	delegate Fetcher
	limit    int64
}

// NewMaxBytesFetcher 새로운 MaxBytesFetcher 를 생성합니다. limit 이 0 이하이면 DefaultMaxBytes 를 사용합니다.
func NewMaxBytesFetcher(delegate Fetcher, limit int64) *MaxBytesFetcher {
	if limit <= 0 {
		limit = DefaultMaxBytes
	}
	return &MaxBytesFetcher{delegate: delegate, limit: limit}
}

func (f *MaxBytesFetcher) Do(req *http.Request) (*http.Response, error) {
	resp, err := f.delegate.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.ContentLength > f.limit {
		drainAndCloseBody(resp.Body)
		return nil, newErrResponseBodyTooLarge(f.limit)
	}

	resp.Body = &maxBytesReader{
		rc:    http.MaxBytesReader(nil, resp.Body, f.limit),
		limit: f.limit,
	}
	return resp, nil
}
