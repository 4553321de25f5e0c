package middleware

import (
	"fmt"
	"sync"
	"time"

	"github.com/darkkaiser/product-extractor/internal/service/api/constants"
	applog "github.com/darkkaiser/product-extractor/pkg/log"
	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

const (
	// maxTrackedIPs 메모리에 유지할 최대 IP 수. 넘으면 가장 오래 요청이 없던 IP 를 제거합니다.
	maxTrackedIPs = 10000

	retryAfterHeader  = "Retry-After"
	retryAfterSeconds = "1"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ipRateLimiter IP 주소별 토큰 버킷을 관리합니다.
type ipRateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rate     rate.Limit
	burst    int

	now func() time.Time
}

func newIPRateLimiter(requestsPerSecond int, burst int) *ipRateLimiter {
	return &ipRateLimiter{
		visitors: make(map[string]*visitor),
		rate:     rate.Limit(requestsPerSecond),
		burst:    burst,
		now:      time.Now,
	}
}

// allow ip 의 토큰을 하나 소비합니다. 토큰이 없으면 false 를 반환합니다.
func (l *ipRateLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	v, exists := l.visitors[ip]
	if !exists {
		if len(l.visitors) >= maxTrackedIPs {
			l.evictOldest()
		}
		v = &visitor{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.visitors[ip] = v
	}
	v.lastSeen = now

	return v.limiter.AllowN(now, 1)
}

func (l *ipRateLimiter) evictOldest() {
	var oldestIP string
	var oldest time.Time
	for ip, v := range l.visitors {
		if oldestIP == "" || v.lastSeen.Before(oldest) {
			oldestIP, oldest = ip, v.lastSeen
		}
	}
	delete(l.visitors, oldestIP)
}

// RateLimit IP 별로 초당 요청 수를 제한하는 미들웨어를 반환합니다.
// 제한을 넘으면 Retry-After 헤더와 함께 429 를 반환합니다.
//
// 추출 요청 하나가 헤드리스 브라우저를 띄울 수 있으므로, 한 클라이언트가
// 브라우저 풀을 독점하지 못하도록 기본값을 낮게 잡습니다.
//
// requestsPerSecond 또는 burst 가 0 이하이면 panic 이 발생합니다.
func RateLimit(requestsPerSecond int, burst int) echo.MiddlewareFunc {
	if requestsPerSecond <= 0 {
		panic(fmt.Sprintf("RateLimit: requestsPerSecond는 양수여야 합니다 (현재값: %d)", requestsPerSecond))
	}
	if burst <= 0 {
		panic(fmt.Sprintf("RateLimit: burst는 양수여야 합니다 (현재값: %d)", burst))
	}

	return rateLimit(newIPRateLimiter(requestsPerSecond, burst))
}

func rateLimit(limiter *ipRateLimiter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()

			if !limiter.allow(ip) {
				applog.WithComponentAndFields(constants.ComponentMiddlewareRateLimit, applog.Fields{
					"remote_ip": ip,
					"path":      c.Request().URL.Path,
					"method":    c.Request().Method,
				}).Warn(constants.LogMsgRateLimitExceeded)

				c.Response().Header().Set(retryAfterHeader, retryAfterSeconds)
				return ErrRateLimitExceeded
			}

			return next(c)
		}
	}
}
