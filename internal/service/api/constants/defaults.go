package constants

import "time"

// 서버 설정 기본값 상수입니다.
const (
	// DefaultRequestTimeout HTTP 요청 처리의 기본 타임아웃 시간
	// 추출 요청은 여러 전략을 순서대로 시도하므로 전략별 타임아웃보다 넉넉해야 합니다.
	DefaultRequestTimeout = 90 * time.Second

	DefaultReadTimeout       = 10 * time.Second
	DefaultReadHeaderTimeout = 5 * time.Second
	DefaultIdleTimeout       = 120 * time.Second

	// DefaultWriteTimeoutMargin 응답 쓰기 제한 시간은 요청 타임아웃에 이 값을 더해 설정합니다.
	DefaultWriteTimeoutMargin = 10 * time.Second

	// DefaultMaxBodySize 요청 본문 최대 크기 (추출 요청은 URL 하나만 담습니다)
	DefaultMaxBodySize = "64K"

	DefaultRateLimitPerSecond = 5
	DefaultRateLimitBurst     = 10

	// ShutdownTimeout Graceful Shutdown 시 최대 대기 시간
	ShutdownTimeout = 5 * time.Second
)
