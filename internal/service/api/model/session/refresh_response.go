package session

import "time"

// RefreshResponse 쿠키 수동 갱신 응답
type RefreshResponse struct {
	// 갱신 결과: refreshed, coalesced, failed
	Outcome string `json:"outcome" example:"refreshed"`
	// 갱신 이후의 세션 상태 (쿠키 값은 포함하지 않음)
	HasCookie           bool       `json:"hasCookie" example:"true"`
	LastRefreshed       *time.Time `json:"lastRefreshed,omitempty"`
	ConsecutiveFailures int        `json:"consecutiveFailures" example:"0"`
	// 갱신 실패 사유
	Error string `json:"error,omitempty"`
}
