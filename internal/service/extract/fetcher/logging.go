package fetcher

import (
	"net/http"
	"time"

	applog "github.com/darkkaiser/product-extractor/pkg/log"
)

// LoggingFetcher 요청 메서드, 마스킹된 URL, 상태 코드, 소요 시간을 기록합니다.
type LoggingFetcher struct {
	delegate Fetcher
}

// NewLoggingFetcher 새로운 LoggingFetcher 를 생성합니다.
func NewLoggingFetcher(delegate Fetcher) *LoggingFetcher {
	return &LoggingFetcher{delegate: delegate}
}

func (f *LoggingFetcher) Do(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := f.delegate.Do(req)

	fields := applog.Fields{
		"method":   req.Method,
		"url":      redactURL(req.URL),
		"duration": time.Since(start).String(),
	}

	if err != nil {
		fields["error"] = err.Error()
		if code := StatusCode(err); code != 0 {
			fields["status_code"] = code
		}
		applog.WithComponentAndFields(component, fields).
			WithContext(req.Context()).
			Warn("HTTP 요청 실패")
		return nil, err
	}

	fields["status_code"] = resp.StatusCode
	applog.WithComponentAndFields(component, fields).
		WithContext(req.Context()).
		Debug("HTTP 요청 성공")

	return resp, nil
}
